package model

import "sort"

// HiddenPreferenceSet is what a viewer chose not to see.
type HiddenPreferenceSet struct {
	HiddenUsers  map[int64]bool `json:"hidden_users"`
	HiddenTags   map[int64]bool `json:"hidden_tags"`
	HiddenImages map[int64]bool `json:"hidden_images"`
}

// NewHiddenPreferenceSet returns an empty, writable set.
func NewHiddenPreferenceSet() HiddenPreferenceSet {
	return HiddenPreferenceSet{
		HiddenUsers:  map[int64]bool{},
		HiddenTags:   map[int64]bool{},
		HiddenImages: map[int64]bool{},
	}
}

// UserIDs returns the hidden user ids in ascending order.
func (h HiddenPreferenceSet) UserIDs() []int64 { return keys(h.HiddenUsers) }

// TagIDs returns the hidden tag ids in ascending order.
func (h HiddenPreferenceSet) TagIDs() []int64 { return keys(h.HiddenTags) }

// ImageIDs returns the hidden image ids in ascending order.
func (h HiddenPreferenceSet) ImageIDs() []int64 { return keys(h.HiddenImages) }

// Empty reports whether nothing is hidden.
func (h HiddenPreferenceSet) Empty() bool {
	return len(h.UserIDs()) == 0 && len(h.TagIDs()) == 0 && len(h.ImageIDs()) == 0
}

func keys(m map[int64]bool) []int64 {
	ids := make([]int64, 0, len(m))
	for id, hidden := range m {
		if hidden {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// union merges two id lists, dropping duplicates and keeping ascending order.
func union(a, b []int64) []int64 {
	if len(b) == 0 {
		return a
	}
	seen := make(map[int64]bool, len(a)+len(b))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		seen[id] = true
	}
	return keys(seen)
}
