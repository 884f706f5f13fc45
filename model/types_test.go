package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestFilterSpec_Validate(t *testing.T) {
	viewer := &Viewer{UserID: 7}

	tests := []struct {
		name    string
		spec    FilterSpec
		viewer  *Viewer
		wantErr error
	}{
		{
			name: "valid newest image feed",
			spec: FilterSpec{Entity: EntityImage, Limit: 20},
		},
		{
			name:    "missing limit",
			spec:    FilterSpec{Entity: EntityImage},
			wantErr: ErrValidation,
		},
		{
			name:    "random without collection",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Sort: SortRandom},
			wantErr: ErrValidation,
		},
		{
			name: "random with collection",
			spec: FilterSpec{Entity: EntityImage, Limit: 10, Sort: SortRandom, CollectionID: int64p(3)},
		},
		{
			name:    "cursor with skip",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Skip: 1, Cursor: IDCursor(SortNewest, 9)},
			wantErr: ErrValidation,
		},
		{
			name:    "cursor with prioritized users",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Cursor: IDCursor(SortNewest, 9), PrioritizedUserIDs: []int64{1, 2}},
			wantErr: ErrValidation,
		},
		{
			name:    "cursor from another sort",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Sort: SortMostReactions, Cursor: IDCursor(SortNewest, 9)},
			wantErr: ErrValidation,
		},
		{
			name:    "hidden without viewer",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Hidden: true},
			wantErr: ErrUnauthorized,
		},
		{
			name:   "hidden with viewer",
			spec:   FilterSpec{Entity: EntityImage, Limit: 10, Hidden: true},
			viewer: viewer,
		},
		{
			name:    "followed without viewer",
			spec:    FilterSpec{Entity: EntityPost, Limit: 10, FollowedOnly: true},
			wantErr: ErrValidation,
		},
		{
			name:    "tipped sort on posts",
			spec:    FilterSpec{Entity: EntityPost, Limit: 10, Sort: SortMostTipped},
			wantErr: ErrValidation,
		},
		{
			name:    "negative excluded id",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, ExcludedUserIDs: []int64{-3}},
			wantErr: ErrValidation,
		},
		{
			name:    "review selector on models",
			spec:    FilterSpec{Entity: EntityModel, Limit: 10, ReviewID: int64p(1)},
			wantErr: ErrValidation,
		},
		{
			name:    "unknown include",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10, Include: []string{"stats"}},
			wantErr: ErrValidation,
		},
		{
			name:    "invalid viewer id",
			spec:    FilterSpec{Entity: EntityImage, Limit: 10},
			viewer:  &Viewer{UserID: -1},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.WithDefaults().Validate(tt.viewer)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterSpec_WithHiddenPreferences(t *testing.T) {
	prefs := NewHiddenPreferenceSet()
	prefs.HiddenUsers[4] = true
	prefs.HiddenUsers[2] = true
	prefs.HiddenTags[9] = true
	prefs.HiddenImages[11] = true
	prefs.HiddenImages[12] = false

	spec := FilterSpec{Entity: EntityImage, ExcludedUserIDs: []int64{4, 1}}
	merged := spec.WithHiddenPreferences(prefs)

	assert.Equal(t, []int64{1, 2, 4}, merged.ExcludedUserIDs)
	assert.Equal(t, []int64{9}, merged.ExcludedTagIDs)
	assert.Equal(t, []int64{11}, merged.ExcludedImageIDs)
	assert.Equal(t, []int64{4, 1}, spec.ExcludedUserIDs, "the input FilterSpec is left untouched")

	posts := FilterSpec{Entity: EntityPost}.WithHiddenPreferences(prefs)
	assert.Empty(t, posts.ExcludedImageIDs, "image exclusions only apply to image feeds")
}

func TestCursor_EncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		cursor  *Cursor
		encoded string
	}{
		{"id cursor", IDCursor(SortNewest, 4), "newest:4"},
		{"rank cursor", KeyCursor(SortMostReactions, int64p(12), 1045), "most_reactions:12:1045"},
		{"unranked cursor", KeyCursor(SortMostComments, nil, 88), "most_comments:null:88"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.encoded, tt.cursor.Encode())

			got, err := DecodeCursor(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.cursor, got)
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, s := range []string{"", "newest", "newest:abc", "sideways:1", "newest:null", "most_reactions:1:0", "a:b:c:d"} {
		_, err := DecodeCursor(s)
		assert.ErrorIs(t, err, ErrValidation, "input %q", s)
	}
}

func TestPage_JSON(t *testing.T) {
	page := Page{
		Items: []*FeedItem{
			{ID: 5, Entity: EntityImage, NsfwLevel: NsfwPG13},
			{ID: 4, Entity: EntityImage},
		},
		NextCursor: IDCursor(SortNewest, 4),
	}
	data, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"next_cursor":"newest:4"`)
	assert.Contains(t, string(data), `"nsfw_level":"PG-13"`)
	assert.Contains(t, string(data), `"nsfw_level":"None"`)

	var decoded Page
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.NextCursor)
	assert.Equal(t, int64(4), *decoded.NextCursor.Value)
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, NsfwPG13, decoded.Items[0].NsfwLevel)
	assert.Equal(t, NsfwNone, decoded.Items[1].NsfwLevel)
}

func TestFilterSpec_NsfwCeilingJSON(t *testing.T) {
	ceiling := NsfwR
	data, err := json.Marshal(FilterSpec{Entity: EntityImage, NsfwCeiling: &ceiling})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nsfw_ceiling":"R"`)

	var decoded FilterSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.NsfwCeiling)
	assert.Equal(t, NsfwR, *decoded.NsfwCeiling)
}

func TestLevelsUpTo(t *testing.T) {
	assert.Equal(t, []NsfwLevel{NsfwNone}, LevelsUpTo(NsfwNone))
	assert.Equal(t, []NsfwLevel{NsfwNone, NsfwPG}, LevelsUpTo(NsfwPG))
	assert.Equal(t, []NsfwLevel{NsfwNone, NsfwPG, NsfwPG13, NsfwR}, LevelsUpTo(NsfwR))
	assert.Nil(t, LevelsUpTo(NsfwLevel(3)), "3 is not a level code")
}

func TestParseNsfwLevel(t *testing.T) {
	for input, want := range map[string]NsfwLevel{"none": NsfwNone, "PG-13": NsfwPG13, "pg13": NsfwPG13, "x": NsfwX} {
		got, err := ParseNsfwLevel(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseNsfwLevel("NC-17")
	assert.Error(t, err)
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("MostReactions")
	require.NoError(t, err)
	assert.Equal(t, SortMostReactions, got)

	got, err = ParseSort("newest")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, got)

	_, err = ParseSort("Oldest")
	assert.Error(t, err)
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	since, ok := PeriodWeek.Since(now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-7*24*time.Hour), since)

	since, ok = PeriodMonth.Since(now)
	assert.True(t, ok)
	assert.Equal(t, now.AddDate(0, -1, 0), since)

	_, ok = PeriodAllTime.Since(now)
	assert.False(t, ok)
}

func TestFeedItem_Helpers(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	item := &FeedItem{
		Ingestion:   IngestionScanned,
		PublishedAt: &past,
		Tags:        []Tag{{ID: 3, Name: "landscape"}},
	}

	assert.True(t, item.IsScanned())
	assert.True(t, item.IsPublished(now))
	assert.True(t, item.HasTag(3))
	assert.False(t, item.HasTag(4))

	item.PublishedAt = nil
	assert.False(t, item.IsPublished(now))
}
