package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
)

// Fixture is a batch of rows to seed. Every row carries its own id so
// fixtures can reference each other.
type Fixture struct {
	Users           []User           `toml:"users"`
	Posts           []Post           `toml:"posts"`
	Images          []Image          `toml:"images"`
	Models          []Model          `toml:"models"`
	ModelVersions   []ModelVersion   `toml:"model_versions"`
	ImageResources  []ImageResource  `toml:"image_resources"`
	ResourceReviews []ResourceReview `toml:"resource_reviews"`
	Tags            []model.Tag      `toml:"tags"`
	ItemTags        []ItemTag        `toml:"item_tags"`
	Reactions       []Reaction       `toml:"reactions"`
	Collections     []Collection     `toml:"collections"`
	Contributors    []Contributor    `toml:"contributors"`
	CollectionItems []CollectionItem `toml:"collection_items"`
	Follows         []Follow         `toml:"follows"`
	Hidden          []Hidden         `toml:"hidden"`
	Ranks           []Rank           `toml:"ranks"`
	Cosmetics       []model.Cosmetic `toml:"cosmetics"`
	UserCosmetics   []UserCosmetic   `toml:"user_cosmetics"`
	Reports         []Report         `toml:"reports"`
}

type User struct {
	ID        int64      `toml:"id"`
	Username  string     `toml:"username"`
	DeletedAt *time.Time `toml:"deleted_at"`
}

type Post struct {
	ID             int64                 `toml:"id"`
	UserID         int64                 `toml:"user_id"`
	Title          string                `toml:"title"`
	Detail         string                `toml:"detail"`
	Link           string                `toml:"link"`
	ExternalID     string                `toml:"external_id"`
	NsfwLevel      model.NsfwLevel       `toml:"nsfw_level"`
	Ingestion      model.IngestionStatus `toml:"ingestion"`
	NeedsReview    string                `toml:"needs_review"`
	ModelVersionID int64                 `toml:"model_version_id"`
	PublishedAt    *time.Time            `toml:"published_at"`
	CreatedAt      time.Time             `toml:"created_at"`
}

type Image struct {
	ID                int64                 `toml:"id"`
	UserID            int64                 `toml:"user_id"`
	PostID            int64                 `toml:"post_id"`
	Index             int                   `toml:"index"`
	Name              string                `toml:"name"`
	URL               string                `toml:"url"`
	Width             int                   `toml:"width"`
	Height            int                   `toml:"height"`
	NsfwLevel         model.NsfwLevel       `toml:"nsfw_level"`
	Ingestion         model.IngestionStatus `toml:"ingestion"`
	NeedsReview       string                `toml:"needs_review"`
	GenerationProcess string                `toml:"generation_process"`
	MediaType         string                `toml:"media_type"`
	CreatedAt         time.Time             `toml:"created_at"`
}

type Model struct {
	ID          int64                 `toml:"id"`
	UserID      int64                 `toml:"user_id"`
	Name        string                `toml:"name"`
	Type        string                `toml:"type"`
	NsfwLevel   model.NsfwLevel       `toml:"nsfw_level"`
	Ingestion   model.IngestionStatus `toml:"ingestion"`
	NeedsReview string                `toml:"needs_review"`
	PublishedAt *time.Time            `toml:"published_at"`
	CreatedAt   time.Time             `toml:"created_at"`
}

type ModelVersion struct {
	ID      int64  `toml:"id"`
	ModelID int64  `toml:"model_id"`
	Name    string `toml:"name"`
}

type ImageResource struct {
	ImageID        int64 `toml:"image_id"`
	ModelVersionID int64 `toml:"model_version_id"`
}

type ResourceReview struct {
	ID             int64 `toml:"id"`
	ModelVersionID int64 `toml:"model_version_id"`
	UserID         int64 `toml:"user_id"`
}

type ItemTag struct {
	Entity      model.Entity `toml:"entity"`
	ItemID      int64        `toml:"item_id"`
	TagID       int64        `toml:"tag_id"`
	Disabled    bool         `toml:"disabled"`
	NeedsReview bool         `toml:"needs_review"`
}

type Reaction struct {
	Entity   model.Entity `toml:"entity"`
	ItemID   int64        `toml:"item_id"`
	UserID   int64        `toml:"user_id"`
	Reaction string       `toml:"reaction"`
}

type Collection struct {
	ID               int64                `toml:"id"`
	UserID           int64                `toml:"user_id"`
	Name             string               `toml:"name"`
	Read             model.CollectionRead `toml:"read"`
	SubmissionEndsAt *time.Time           `toml:"submission_ends_at"`
}

type Contributor struct {
	CollectionID int64 `toml:"collection_id"`
	UserID       int64 `toml:"user_id"`
	CanView      bool  `toml:"can_view"`
}

type CollectionItem struct {
	CollectionID int64        `toml:"collection_id"`
	Entity       model.Entity `toml:"entity"`
	ItemID       int64        `toml:"item_id"`
	Status       string       `toml:"status"`
	AddedByID    int64        `toml:"added_by_id"`
	RandomID     *int64       `toml:"random_id"`
}

type Follow struct {
	UserID       int64 `toml:"user_id"`
	TargetUserID int64 `toml:"target_user_id"`
}

type Hidden struct {
	UserID   int64            `toml:"user_id"`
	Kind     model.HiddenKind `toml:"kind"`
	TargetID int64            `toml:"target_id"`
}

// Rank is a RankSnapshot row. A nil Rank is a row the rank job created but
// has not scored yet.
type Rank struct {
	Entity model.Entity `toml:"entity"`
	ItemID int64        `toml:"item_id"`
	Sort   model.Sort   `toml:"sort"`
	Period model.Period `toml:"period"`
	Rank   *int64       `toml:"rank"`
}

type UserCosmetic struct {
	UserID     int64 `toml:"user_id"`
	CosmeticID int64 `toml:"cosmetic_id"`
}

type Report struct {
	ID     int64        `toml:"id"`
	Entity model.Entity `toml:"entity"`
	ItemID int64        `toml:"item_id"`
	UserID int64        `toml:"user_id"`
	Reason string       `toml:"reason"`
	Status string       `toml:"status"`
}

// identityTables have generated ids that fixtures insert explicitly.
var identityTables = []string{
	"users", "posts", "images", "models", "model_versions", "resource_reviews",
	"tags", "collections", "cosmetics", "reports",
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Load inserts a fixture in one transaction.
func (s *Store) Load(ctx context.Context, f *Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Backend("begin fixture", err)
	}
	defer tx.Rollback()

	if err := s.load(ctx, tx, f); err != nil {
		return err
	}
	if s.dialect == query.Postgres {
		for _, table := range identityTables {
			stmt := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return model.Backend("reset "+table+" sequence", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Backend("commit fixture", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, tx execer, f *Fixture) error {
	exec := func(what, stmt string, args ...any) error {
		if _, err := tx.ExecContext(ctx, s.rebind(stmt), args...); err != nil {
			return model.Backend("insert "+what, err)
		}
		return nil
	}

	for _, u := range f.Users {
		if err := exec("user", "INSERT INTO users (id, username, deleted_at) VALUES (?, ?, ?)",
			u.ID, u.Username, unixOrNil(u.DeletedAt)); err != nil {
			return err
		}
	}
	for _, p := range f.Posts {
		if err := exec("post",
			`INSERT INTO posts (id, user_id, title, detail, link, external_id, nsfw_level, ingestion, needs_review,
			model_version_id, published_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.Title, p.Detail, p.Link, stringOrNil(p.ExternalID), int(p.NsfwLevel),
			ingestionOrDefault(p.Ingestion), stringOrNil(p.NeedsReview), idOrNil(p.ModelVersionID),
			unixOrNil(p.PublishedAt), p.CreatedAt.Unix()); err != nil {
			return err
		}
	}
	for _, i := range f.Images {
		mediaType := i.MediaType
		if mediaType == "" {
			mediaType = "image"
		}
		if err := exec("image",
			`INSERT INTO images (id, user_id, post_id, idx, name, url, width, height, nsfw_level, ingestion,
			needs_review, generation_process, media_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.ID, i.UserID, idOrNil(i.PostID), i.Index, i.Name, i.URL, i.Width, i.Height, int(i.NsfwLevel),
			ingestionOrDefault(i.Ingestion), stringOrNil(i.NeedsReview), stringOrNil(i.GenerationProcess),
			mediaType, i.CreatedAt.Unix()); err != nil {
			return err
		}
	}
	for _, m := range f.Models {
		modelType := m.Type
		if modelType == "" {
			modelType = "Checkpoint"
		}
		if err := exec("model",
			`INSERT INTO models (id, user_id, name, type, nsfw_level, ingestion, needs_review, published_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, m.Name, modelType, int(m.NsfwLevel), ingestionOrDefault(m.Ingestion),
			stringOrNil(m.NeedsReview), unixOrNil(m.PublishedAt), m.CreatedAt.Unix()); err != nil {
			return err
		}
	}
	for _, v := range f.ModelVersions {
		if err := exec("model version", "INSERT INTO model_versions (id, model_id, name) VALUES (?, ?, ?)",
			v.ID, v.ModelID, v.Name); err != nil {
			return err
		}
	}
	for _, r := range f.ImageResources {
		if err := exec("image resource", "INSERT INTO image_resources (image_id, model_version_id) VALUES (?, ?)",
			r.ImageID, r.ModelVersionID); err != nil {
			return err
		}
	}
	for _, r := range f.ResourceReviews {
		if err := exec("resource review", "INSERT INTO resource_reviews (id, model_version_id, user_id) VALUES (?, ?, ?)",
			r.ID, r.ModelVersionID, r.UserID); err != nil {
			return err
		}
	}
	for _, t := range f.Tags {
		if err := exec("tag", "INSERT INTO tags (id, name) VALUES (?, ?)", t.ID, t.Name); err != nil {
			return err
		}
	}
	for _, t := range f.ItemTags {
		if err := exec("item tag",
			"INSERT INTO tags_on_items (entity, item_id, tag_id, disabled, needs_review) VALUES (?, ?, ?, ?, ?)",
			string(t.Entity), t.ItemID, t.TagID, boolInt(t.Disabled), boolInt(t.NeedsReview)); err != nil {
			return err
		}
	}
	for _, r := range f.Reactions {
		if err := exec("reaction", "INSERT INTO reactions (entity, item_id, user_id, reaction) VALUES (?, ?, ?, ?)",
			string(r.Entity), r.ItemID, r.UserID, r.Reaction); err != nil {
			return err
		}
	}
	for _, c := range f.Collections {
		read := c.Read
		if read == "" {
			read = model.CollectionPublic
		}
		if err := exec("collection",
			"INSERT INTO collections (id, user_id, name, read_access, submission_ends_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.UserID, c.Name, string(read), unixOrNil(c.SubmissionEndsAt)); err != nil {
			return err
		}
	}
	for _, c := range f.Contributors {
		if err := exec("contributor",
			"INSERT INTO collection_contributors (collection_id, user_id, can_view) VALUES (?, ?, ?)",
			c.CollectionID, c.UserID, boolInt(c.CanView)); err != nil {
			return err
		}
	}
	for _, ci := range f.CollectionItems {
		status := ci.Status
		if status == "" {
			status = query.CollectionItemAccepted
		}
		var randomID any
		if ci.RandomID != nil {
			randomID = *ci.RandomID
		}
		if err := exec("collection item",
			`INSERT INTO collection_items (collection_id, entity, item_id, status, added_by_id, random_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ci.CollectionID, string(ci.Entity), ci.ItemID, status, idOrNil(ci.AddedByID), randomID); err != nil {
			return err
		}
	}
	for _, fl := range f.Follows {
		if err := exec("follow", "INSERT INTO follows (user_id, target_user_id) VALUES (?, ?)",
			fl.UserID, fl.TargetUserID); err != nil {
			return err
		}
	}
	for _, h := range f.Hidden {
		if err := exec("hidden preference", "INSERT INTO hidden_preferences (user_id, kind, target_id) VALUES (?, ?, ?)",
			h.UserID, string(h.Kind), h.TargetID); err != nil {
			return err
		}
	}
	for _, r := range f.Ranks {
		metric, ok := r.Sort.RankMetric()
		if !ok {
			return model.Invalid("ranks", "sort %q is not rank based", r.Sort)
		}
		period := r.Period
		if period == "" {
			period = model.PeriodAllTime
		}
		var rank any
		if r.Rank != nil {
			rank = *r.Rank
		}
		if err := exec("rank", "INSERT INTO item_ranks (entity, item_id, metric, period, rank) VALUES (?, ?, ?, ?, ?)",
			string(r.Entity), r.ItemID, metric, string(period), rank); err != nil {
			return err
		}
	}
	for _, c := range f.Cosmetics {
		if err := exec("cosmetic", "INSERT INTO cosmetics (id, name, type) VALUES (?, ?, ?)",
			c.ID, c.Name, c.Type); err != nil {
			return err
		}
	}
	for _, uc := range f.UserCosmetics {
		if err := exec("user cosmetic", "INSERT INTO user_cosmetics (user_id, cosmetic_id) VALUES (?, ?)",
			uc.UserID, uc.CosmeticID); err != nil {
			return err
		}
	}
	for _, r := range f.Reports {
		status := r.Status
		if status == "" {
			status = query.ReportPending
		}
		if err := exec("report", "INSERT INTO reports (id, entity, item_id, user_id, reason, status) VALUES (?, ?, ?, ?, ?, ?)",
			r.ID, string(r.Entity), r.ItemID, r.UserID, r.Reason, status); err != nil {
			return err
		}
	}
	return nil
}

// CreatePost inserts a post with a generated id. A post whose external id
// the user already imported is skipped; created is false in that case.
func (s *Store) CreatePost(ctx context.Context, p *Post) (created bool, err error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	err = s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO posts (user_id, title, detail, link, external_id, nsfw_level, ingestion, needs_review,
		model_version_id, published_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING RETURNING id`),
		p.UserID, p.Title, p.Detail, p.Link, stringOrNil(p.ExternalID), int(p.NsfwLevel),
		ingestionOrDefault(p.Ingestion), stringOrNil(p.NeedsReview), idOrNil(p.ModelVersionID),
		unixOrNil(p.PublishedAt), p.CreatedAt.Unix(),
	).Scan(&p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, model.Backend("create post", err)
	}
	return true, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func idOrNil(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func ingestionOrDefault(s model.IngestionStatus) string {
	if s == "" {
		return string(model.IngestionScanned)
	}
	return string(s)
}
