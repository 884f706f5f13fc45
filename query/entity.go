package query

import (
	"fmt"

	"github.com/robertmeta/feedq/model"
)

// Descriptor tells the builders where an entity keeps each attribute. All
// column references are trusted SQL fragments; values always travel as
// arguments.
type Descriptor struct {
	Entity model.Entity
	Table  string
	Alias  string
	Joins  []Join

	ID          string
	Owner       string
	Ingestion   string
	NeedsReview string
	PublishedAt string
	CreatedAt   string
	Nsfw        string
	Title       string

	// Select lists the row shape every entity is scanned into:
	// id, user_id, username, title, url, width, height, post_id, idx,
	// nsfw_level, ingestion, needs_review, created_at, published_at.
	Select []string

	// NewestKey orders the Newest sort; NewestKeyIsID means it is the id.
	NewestKey     string
	NewestKeyIsID bool
}

var descriptors = map[model.Entity]*Descriptor{
	model.EntityImage: {
		Entity: model.EntityImage,
		Table:  "images i",
		Alias:  "i",
		Joins: []Join{
			{Kind: InnerJoin, Table: "users u", On: []Predicate{ColumnCompare{"u.id", OpEq, "i.user_id"}}},
			{Kind: InnerJoin, Table: "posts p", On: []Predicate{ColumnCompare{"p.id", OpEq, "i.post_id"}}},
		},
		ID:          "i.id",
		Owner:       "i.user_id",
		Ingestion:   "i.ingestion",
		NeedsReview: "i.needs_review",
		PublishedAt: "p.published_at",
		CreatedAt:   "i.created_at",
		Nsfw:        "i.nsfw_level",
		Title:       "i.name",
		Select: []string{
			"i.id", "i.user_id", "u.username", "i.name", "i.url", "i.width", "i.height", "i.post_id", "i.idx",
			"i.nsfw_level", "i.ingestion", "i.needs_review", "i.created_at", "p.published_at",
		},
		NewestKey:     "i.id",
		NewestKeyIsID: true,
	},
	model.EntityPost: {
		Entity: model.EntityPost,
		Table:  "posts p",
		Alias:  "p",
		Joins: []Join{
			{Kind: InnerJoin, Table: "users u", On: []Predicate{ColumnCompare{"u.id", OpEq, "p.user_id"}}},
		},
		ID:          "p.id",
		Owner:       "p.user_id",
		Ingestion:   "p.ingestion",
		NeedsReview: "p.needs_review",
		PublishedAt: "p.published_at",
		CreatedAt:   "p.created_at",
		Nsfw:        "p.nsfw_level",
		Title:       "p.title",
		Select: []string{
			"p.id", "p.user_id", "u.username", "p.title", "NULL", "NULL", "NULL", "NULL", "NULL",
			"p.nsfw_level", "p.ingestion", "p.needs_review", "p.created_at", "p.published_at",
		},
		NewestKey: "p.published_at",
	},
	model.EntityModel: {
		Entity: model.EntityModel,
		Table:  "models m",
		Alias:  "m",
		Joins: []Join{
			{Kind: InnerJoin, Table: "users u", On: []Predicate{ColumnCompare{"u.id", OpEq, "m.user_id"}}},
		},
		ID:          "m.id",
		Owner:       "m.user_id",
		Ingestion:   "m.ingestion",
		NeedsReview: "m.needs_review",
		PublishedAt: "m.published_at",
		CreatedAt:   "m.created_at",
		Nsfw:        "m.nsfw_level",
		Title:       "m.name",
		Select: []string{
			"m.id", "m.user_id", "u.username", "m.name", "NULL", "NULL", "NULL", "NULL", "NULL",
			"m.nsfw_level", "m.ingestion", "m.needs_review", "m.created_at", "m.published_at",
		},
		NewestKey:     "m.id",
		NewestKeyIsID: true,
	},
}

// DescriptorFor returns the descriptor of an entity.
func DescriptorFor(e model.Entity) (*Descriptor, error) {
	d, ok := descriptors[e]
	if !ok {
		return nil, fmt.Errorf("no descriptor for entity %q", e)
	}
	return d, nil
}
