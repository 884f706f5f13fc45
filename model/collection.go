package model

import "time"

// CollectionRead is who may browse a collection.
type CollectionRead string

const (
	CollectionPublic   CollectionRead = "Public"
	CollectionUnlisted CollectionRead = "Unlisted"
	CollectionPrivate  CollectionRead = "Private"
)

// Collection is a curated list of items.
type Collection struct {
	ID               int64          `json:"id"`
	OwnerID          int64          `json:"owner_id"`
	Name             string         `json:"name"`
	Read             CollectionRead `json:"read"`
	SubmissionEndsAt *time.Time     `json:"submission_ends_at,omitempty"`
}

// AcceptingSubmissions reports whether the submission window is still open at now.
func (c *Collection) AcceptingSubmissions(now time.Time) bool {
	return c.SubmissionEndsAt != nil && c.SubmissionEndsAt.After(now)
}

// CollectionPermissions is what a viewer may do with a collection.
type CollectionPermissions struct {
	Read        bool `json:"read"`
	Owner       bool `json:"owner"`
	Contributor bool `json:"contributor"`
}

// HiddenKind is the target type of a hidden preference.
type HiddenKind string

const (
	HiddenUser  HiddenKind = "user"
	HiddenTag   HiddenKind = "tag"
	HiddenImage HiddenKind = "image"
)

// ParseHiddenKind converts a user supplied string to a HiddenKind.
func ParseHiddenKind(s string) (HiddenKind, error) {
	switch HiddenKind(s) {
	case HiddenUser, HiddenTag, HiddenImage:
		return HiddenKind(s), nil
	}
	return "", Invalid("kind", "unknown hidden kind %q", s)
}

// Add records a hidden target in the set.
func (h HiddenPreferenceSet) Add(kind HiddenKind, id int64) {
	switch kind {
	case HiddenUser:
		h.HiddenUsers[id] = true
	case HiddenTag:
		h.HiddenTags[id] = true
	case HiddenImage:
		h.HiddenImages[id] = true
	}
}
