package syndication

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/robertmeta/feedq/feed"
	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/store"
)

// PostCreator persists imported posts. CreatePost reports false when a post
// with the same owner and external id already exists.
type PostCreator interface {
	CreatePost(ctx context.Context, p *store.Post) (bool, error)
}

// ImportOptions controls one import.
type ImportOptions struct {
	// UserID owns the created posts.
	UserID int64
	// Window skips entries published longer ago than this. Zero imports all.
	Window time.Duration
	// NsfwLevel is assigned to every created post.
	NsfwLevel model.NsfwLevel
}

// ImportResult counts what happened to the feed's entries.
type ImportResult struct {
	Title      string `json:"title"`
	Created    int    `json:"created"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
}

// Importer turns RSS/Atom entries into draft posts. Drafts are unpublished
// and stay out of public feeds until their owner publishes them.
type Importer struct {
	parser *gofeed.Parser
	posts  PostCreator
	clock  feed.Clock
	logger *slog.Logger
}

// NewImporter creates an Importer writing through posts.
func NewImporter(posts PostCreator, clock feed.Clock, logger *slog.Logger) *Importer {
	if clock == nil {
		clock = feed.RealClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{parser: gofeed.NewParser(), posts: posts, clock: clock, logger: logger}
}

// ImportURL fetches and imports the feed at url.
func (im *Importer) ImportURL(ctx context.Context, url string, opts ImportOptions) (*ImportResult, error) {
	parsed, err := im.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", url, err)
	}
	return im.importFeed(ctx, parsed, opts)
}

// Import parses and imports the feed read from r.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	parsed, err := im.parser.Parse(r)
	if err != nil {
		return nil, model.Invalid("feed", "failed to parse feed: %v", err)
	}
	return im.importFeed(ctx, parsed, opts)
}

func (im *Importer) importFeed(ctx context.Context, parsed *gofeed.Feed, opts ImportOptions) (*ImportResult, error) {
	if opts.UserID == 0 {
		return nil, model.Invalid("user", "imported posts need an owner")
	}
	now := im.clock.Now()
	res := &ImportResult{Title: parsed.Title}

	for _, item := range parsed.Items {
		post, ok := im.convertItem(item, now)
		if !ok {
			res.Skipped++
			continue
		}
		if opts.Window > 0 && post.CreatedAt.Before(now.Add(-opts.Window)) {
			res.Skipped++
			continue
		}
		post.UserID = opts.UserID
		post.NsfwLevel = opts.NsfwLevel

		created, err := im.posts.CreatePost(ctx, post)
		if err != nil {
			return res, err
		}
		if created {
			res.Created++
		} else {
			res.Duplicates++
		}
	}

	im.logger.Info("feed imported", "title", res.Title, "created", res.Created,
		"duplicates", res.Duplicates, "skipped", res.Skipped)
	return res, nil
}

// convertItem maps an entry to a draft post. Entries with neither a guid nor
// a link cannot be deduplicated and are rejected.
func (im *Importer) convertItem(item *gofeed.Item, now time.Time) (*store.Post, bool) {
	post := &store.Post{
		Title:      item.Title,
		Link:       item.Link,
		ExternalID: item.GUID,
	}
	if post.ExternalID == "" {
		post.ExternalID = item.Link
	}
	if post.ExternalID == "" {
		return nil, false
	}
	if post.Title == "" {
		post.Title = post.Link
	}

	// Prefer full content over the summary.
	if item.Content != "" {
		post.Detail = item.Content
	} else {
		post.Detail = item.Description
	}

	switch {
	case item.PublishedParsed != nil:
		post.CreatedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		post.CreatedAt = *item.UpdatedParsed
	default:
		post.CreatedAt = now
	}
	return post, true
}
