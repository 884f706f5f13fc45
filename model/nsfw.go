package model

import (
	"fmt"
	"strconv"
	"strings"
)

// NsfwLevel is a content rating. Levels form a fixed total order; the stored
// code is a bitmask flag and must never be compared numerically.
type NsfwLevel int

const (
	NsfwNone NsfwLevel = 0
	NsfwPG   NsfwLevel = 1
	NsfwPG13 NsfwLevel = 2
	NsfwR    NsfwLevel = 4
	NsfwX    NsfwLevel = 8
	NsfwXXX  NsfwLevel = 16
)

// nsfwOrder is the ordinal table, lowest first.
var nsfwOrder = []NsfwLevel{NsfwNone, NsfwPG, NsfwPG13, NsfwR, NsfwX, NsfwXXX}

var nsfwLabels = map[NsfwLevel]string{
	NsfwNone: "None",
	NsfwPG:   "PG",
	NsfwPG13: "PG-13",
	NsfwR:    "R",
	NsfwX:    "X",
	NsfwXXX:  "XXX",
}

// ParseNsfwLevel accepts a label ("PG-13", "pg13", "x") case-insensitively.
func ParseNsfwLevel(s string) (NsfwLevel, error) {
	norm := strings.ToUpper(strings.ReplaceAll(s, "-", ""))
	for level, label := range nsfwLabels {
		if strings.ToUpper(strings.ReplaceAll(label, "-", "")) == norm {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown nsfw level: %s", s)
}

// Valid reports whether l is one of the defined codes.
func (l NsfwLevel) Valid() bool {
	_, ok := nsfwLabels[l]
	return ok
}

// Ordinal returns the position of l in the rating order, or -1.
func (l NsfwLevel) Ordinal() int {
	for i, level := range nsfwOrder {
		if level == l {
			return i
		}
	}
	return -1
}

func (l NsfwLevel) String() string {
	if label, ok := nsfwLabels[l]; ok {
		return label
	}
	return fmt.Sprintf("NsfwLevel(%d)", int(l))
}

// LevelsUpTo returns every level from None up to and including ceiling.
func LevelsUpTo(ceiling NsfwLevel) []NsfwLevel {
	idx := ceiling.Ordinal()
	if idx < 0 {
		return nil
	}
	levels := make([]NsfwLevel, idx+1)
	copy(levels, nsfwOrder[:idx+1])
	return levels
}

// MarshalText writes the label so encoded levels read back through UnmarshalText.
func (l NsfwLevel) MarshalText() ([]byte, error) {
	if label, ok := nsfwLabels[l]; ok {
		return []byte(label), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

// UnmarshalText accepts a label ("PG-13") or a stored code ("2").
func (l *NsfwLevel) UnmarshalText(b []byte) error {
	s := string(b)
	if code, err := strconv.Atoi(s); err == nil {
		level := NsfwLevel(code)
		if !level.Valid() {
			return fmt.Errorf("unknown nsfw level: %s", s)
		}
		*l = level
		return nil
	}
	level, err := ParseNsfwLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}
