package model

import (
	"fmt"
	"strings"
	"time"
)

// Sort selects the ordering of a feed.
type Sort string

const (
	SortNewest         Sort = "newest"
	SortMostReactions  Sort = "most_reactions"
	SortMostComments   Sort = "most_comments"
	SortMostCollected  Sort = "most_collected"
	SortMostTipped     Sort = "most_tipped"
	SortMostDownloaded Sort = "most_downloaded"
	SortHighestRated   Sort = "highest_rated"
	SortRandom         Sort = "random"
)

// rankMetrics maps rank-backed sorts to the metric name stored in item_ranks.
var rankMetrics = map[Sort]string{
	SortMostReactions:  "reactionCount",
	SortMostComments:   "commentCount",
	SortMostCollected:  "collectedCount",
	SortMostTipped:     "tippedAmountCount",
	SortMostDownloaded: "downloadCount",
	SortHighestRated:   "rating",
}

var entitySorts = map[Entity][]Sort{
	EntityImage: {SortNewest, SortMostReactions, SortMostComments, SortMostCollected, SortMostTipped, SortRandom},
	EntityPost:  {SortNewest, SortMostReactions, SortMostComments, SortMostCollected, SortRandom},
	EntityModel: {SortNewest, SortMostReactions, SortMostComments, SortMostCollected, SortMostDownloaded, SortHighestRated, SortRandom},
}

// ParseSort accepts snake_case or CamelCase names ("MostReactions").
func ParseSort(s string) (Sort, error) {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	sort := Sort(strings.ReplaceAll(b.String(), "-", "_"))
	if _, ok := rankMetrics[sort]; ok || sort == SortNewest || sort == SortRandom {
		return sort, nil
	}
	return "", fmt.Errorf("unknown sort: %s", s)
}

// RankMetric returns the precomputed rank metric backing s, if any.
func (s Sort) RankMetric() (string, bool) {
	m, ok := rankMetrics[s]
	return m, ok
}

// Supports reports whether the entity defines sort s.
func (e Entity) Supports(s Sort) bool {
	for _, candidate := range entitySorts[e] {
		if candidate == s {
			return true
		}
	}
	return false
}

// Period is the time window a feed or a rank is computed over.
type Period string

const (
	PeriodDay     Period = "Day"
	PeriodWeek    Period = "Week"
	PeriodMonth   Period = "Month"
	PeriodYear    Period = "Year"
	PeriodAllTime Period = "AllTime"
)

// ParsePeriod is case-insensitive and accepts "all" for AllTime.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	case "alltime", "all", "all_time":
		return PeriodAllTime, nil
	}
	return "", fmt.Errorf("unknown period: %s", s)
}

// Since returns the start of the period ending at now. AllTime returns the
// zero time and false.
func (p Period) Since(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour), true
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

func (p Period) valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return true
	}
	return false
}

// PeriodMode controls whether the period limits item creation time ("normal")
// or only selects which rank timeframe to sort by ("stats").
type PeriodMode string

const (
	PeriodModeNormal PeriodMode = "normal"
	PeriodModeStats  PeriodMode = "stats"
)
