// Package feed composes and runs paginated feed queries for images, posts
// and models.
package feed

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
)

// Default page size limits.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Store is the data access the composer runs on.
type Store interface {
	QueryPage(ctx context.Context, plan *query.Plan) ([]query.Row, error)

	ResolveUsername(ctx context.Context, username string) (int64, error)
	FollowedUserIDs(ctx context.Context, userID int64) ([]int64, error)
	Collection(ctx context.Context, id int64) (*model.Collection, error)
	CollectionPermissions(ctx context.Context, viewer *model.Viewer, collectionID int64) (model.CollectionPermissions, error)

	TagsForItems(ctx context.Context, entity model.Entity, ids []int64) (map[int64][]model.Tag, error)
	ReactionsForItems(ctx context.Context, entity model.Entity, userID int64, ids []int64) (map[int64][]string, error)
	CosmeticsForUsers(ctx context.Context, userIDs []int64) (map[int64][]model.Cosmetic, error)
	PendingReports(ctx context.Context, entity model.Entity, ids []int64) (map[int64]*model.Report, error)
}

// Preferences provides a viewer's hidden preferences. Implementations are
// expected to memoize.
type Preferences interface {
	HiddenPreferences(ctx context.Context, userID int64) (model.HiddenPreferenceSet, error)
}

// Composer turns a FilterSpec into a page of hydrated items. It holds no
// per-request state and is safe for concurrent use.
type Composer struct {
	store        Store
	prefs        Preferences
	clock        Clock
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Composer) { c.clock = clock }
}

// WithLogger sets the logger; nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimits sets the page size used when a request has none and the largest
// page size accepted.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(c *Composer) {
		if defaultLimit > 0 {
			c.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			c.maxLimit = maxLimit
		}
	}
}

// NewComposer creates a Composer. prefs may be nil, in which case requests
// only carry the exclusions they were given.
func NewComposer(store Store, prefs Preferences, opts ...Option) *Composer {
	c := &Composer{
		store:        store,
		prefs:        prefs,
		clock:        RealClock{},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose validates spec, merges the viewer's hidden preferences, resolves
// scope selectors, runs the query and hydrates the page. viewer is nil for
// anonymous requests. Errors are the typed failures from package model.
func (c *Composer) Compose(ctx context.Context, viewer *model.Viewer, spec model.FilterSpec) (*model.Page, error) {
	spec = spec.WithDefaults()
	if spec.Limit == 0 {
		spec.Limit = c.defaultLimit
	}
	if spec.Limit > c.maxLimit {
		return nil, model.Invalid("limit", "must be at most %d", c.maxLimit)
	}
	if err := spec.Validate(viewer); err != nil {
		return nil, err
	}

	if viewer != nil && c.prefs != nil {
		hidden, err := c.prefs.HiddenPreferences(ctx, viewer.UserID)
		if err != nil {
			return nil, model.Backend("load hidden preferences", err)
		}
		spec = spec.WithHiddenPreferences(hidden)
	}

	if spec.Hidden && len(spec.ExcludedImageIDs) == 0 {
		c.logger.Debug("hidden feed has nothing hidden", "viewer", viewer.ID())
		return emptyPage(), nil
	}

	now := c.clock.Now()
	in := query.BuildInput{Spec: spec, Viewer: viewer, Now: now}
	if err := c.resolve(ctx, viewer, &in); err != nil {
		return nil, err
	}

	plan, err := query.Build(in)
	if err != nil {
		return nil, err
	}
	if plan.Empty {
		return emptyPage(), nil
	}
	c.logger.Debug("running feed query", "plan", plan.Header)

	rows, err := c.store.QueryPage(ctx, plan)
	if err != nil {
		c.logger.Error("feed query failed", "plan", plan.Header, "error", err)
		return nil, model.Backend("query page", err)
	}

	page := assemble(plan, rows)
	if err := c.hydrate(ctx, viewer, spec, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// resolve runs the collaborator lookups the filters depend on, concurrently.
func (c *Composer) resolve(ctx context.Context, viewer *model.Viewer, in *query.BuildInput) error {
	spec := in.Spec
	g, gctx := errgroup.WithContext(ctx)

	if spec.Username != "" {
		g.Go(func() error {
			id, err := c.store.ResolveUsername(gctx, spec.Username)
			if err != nil {
				return model.Backend("resolve username", err)
			}
			in.OwnerID = &id
			return nil
		})
	}

	if spec.FollowedOnly {
		g.Go(func() error {
			ids, err := c.store.FollowedUserIDs(gctx, viewer.ID())
			if err != nil {
				return model.Backend("load followed users", err)
			}
			in.FollowedIDs = ids
			return nil
		})
	}

	if spec.CollectionID != nil {
		id := *spec.CollectionID
		g.Go(func() error {
			perms, err := c.store.CollectionPermissions(gctx, viewer, id)
			if err != nil {
				return model.Backend("load collection permissions", err)
			}
			if !perms.Read {
				return model.Unauthorized("collection is not readable by this viewer")
			}
			collection, err := c.store.Collection(gctx, id)
			if err != nil {
				return model.Backend("load collection", err)
			}
			in.Collection = &query.CollectionScope{
				ID:              id,
				AcceptedVisible: !collection.AcceptingSubmissions(in.Now),
				ViewerID:        viewer.ID(),
				RandomKey:       spec.Sort == model.SortRandom,
			}
			return nil
		})
	}

	return g.Wait()
}

func emptyPage() *model.Page {
	return &model.Page{Items: []*model.FeedItem{}}
}
