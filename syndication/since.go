package syndication

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// windowPattern matches windows like "7d", "2w", "3m", "1y".
var windowPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseWindow parses an import window such as "7d".
//
// Supported units:
//   - d: days
//   - w: weeks (7 days)
//   - m: months (30 days)
//   - y: years (365 days)
func ParseWindow(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("window is empty")
	}

	matches := windowPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid window %q (expected <number><unit>, e.g. 7d, 2w, 3m, 1y)", s)
	}
	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in window: %s", matches[1])
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "w":
		day *= 7
	case "m":
		day *= 30
	case "y":
		day *= 365
	}
	if int64(num) > math.MaxInt64/int64(day) {
		return 0, fmt.Errorf("window %q is too large", s)
	}
	return time.Duration(num) * day, nil
}
