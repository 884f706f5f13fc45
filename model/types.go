// Package model defines the core data structures for feedq.
package model

import (
	"fmt"
	"time"
)

// Entity names the kind of content a feed pages over.
type Entity string

const (
	EntityImage Entity = "image"
	EntityPost  Entity = "post"
	EntityModel Entity = "model"
)

// ParseEntity converts a user supplied string to an Entity.
func ParseEntity(s string) (Entity, error) {
	switch Entity(s) {
	case EntityImage, EntityPost, EntityModel:
		return Entity(s), nil
	case "images":
		return EntityImage, nil
	case "posts":
		return EntityPost, nil
	case "models":
		return EntityModel, nil
	}
	return "", fmt.Errorf("unknown entity: %s", s)
}

// IngestionStatus is the automated scan state of an item.
type IngestionStatus string

const (
	IngestionPending IngestionStatus = "Pending"
	IngestionScanned IngestionStatus = "Scanned"
	IngestionBlocked IngestionStatus = "Blocked"
	IngestionError   IngestionStatus = "Error"
)

// Viewer is the authenticated user a feed is rendered for.
// A nil *Viewer is an anonymous request.
type Viewer struct {
	UserID    int64 `json:"user_id"`
	Moderator bool  `json:"moderator"`
}

// ID returns the viewer's user id, or 0 for anonymous viewers.
func (v *Viewer) ID() int64 {
	if v == nil {
		return 0
	}
	return v.UserID
}

// IsModerator reports whether the viewer bypasses moderation rules.
func (v *Viewer) IsModerator() bool {
	return v != nil && v.Moderator
}

// FeedItem is one image, post or model on a page.
type FeedItem struct {
	ID          int64           `json:"id"`
	Entity      Entity          `json:"entity"`
	OwnerID     int64           `json:"owner_id"`
	Username    string          `json:"username,omitempty"`
	Title       string          `json:"title,omitempty"`
	URL         string          `json:"url,omitempty"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	PostID      *int64          `json:"post_id,omitempty"`
	Index       int             `json:"index,omitempty"`
	NsfwLevel   NsfwLevel       `json:"nsfw_level"`
	Ingestion   IngestionStatus `json:"ingestion"`
	NeedsReview *string         `json:"needs_review,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`

	Tags      []Tag      `json:"tags,omitempty"`
	Reactions []string   `json:"reactions,omitempty"`
	Cosmetics []Cosmetic `json:"cosmetics,omitempty"`
	Report    *Report    `json:"report,omitempty"`
}

// IsScanned returns true once the item passed automated scanning.
func (i *FeedItem) IsScanned() bool {
	return i.Ingestion == IngestionScanned
}

// IsPublished reports whether the item was published before now.
func (i *FeedItem) IsPublished(now time.Time) bool {
	return i.PublishedAt != nil && i.PublishedAt.Before(now)
}

// HasTag checks if the item carries the tag with the given id.
func (i *FeedItem) HasTag(id int64) bool {
	for _, t := range i.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Tag represents a label attached to an item.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Cosmetic is a decoration owned by a user (badge, frame, ...).
type Cosmetic struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Report is a pending moderation report against an item.
type Report struct {
	ID       int64  `json:"id"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// Page is one slice of a feed.
type Page struct {
	Items      []*FeedItem `json:"items"`
	NextCursor *Cursor     `json:"next_cursor,omitempty"`
}

// IDs returns the item ids in page order.
func (p *Page) IDs() []int64 {
	ids := make([]int64, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
