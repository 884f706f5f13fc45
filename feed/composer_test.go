package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
	"github.com/robertmeta/feedq/store"
	"github.com/robertmeta/feedq/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyStore counts queries and injects hydration failures.
type faultyStore struct {
	*store.Store
	queries      int
	tagsErr      error
	reactionsErr error
	cosmeticsErr error
	reportsErr   error
}

func (f *faultyStore) QueryPage(ctx context.Context, plan *query.Plan) ([]query.Row, error) {
	f.queries++
	return f.Store.QueryPage(ctx, plan)
}

func (f *faultyStore) TagsForItems(ctx context.Context, entity model.Entity, ids []int64) (map[int64][]model.Tag, error) {
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.Store.TagsForItems(ctx, entity, ids)
}

func (f *faultyStore) ReactionsForItems(ctx context.Context, entity model.Entity, userID int64, ids []int64) (map[int64][]string, error) {
	if f.reactionsErr != nil {
		return nil, f.reactionsErr
	}
	return f.Store.ReactionsForItems(ctx, entity, userID, ids)
}

func (f *faultyStore) CosmeticsForUsers(ctx context.Context, userIDs []int64) (map[int64][]model.Cosmetic, error) {
	if f.cosmeticsErr != nil {
		return nil, f.cosmeticsErr
	}
	return f.Store.CosmeticsForUsers(ctx, userIDs)
}

func (f *faultyStore) PendingReports(ctx context.Context, entity model.Entity, ids []int64) (map[int64]*model.Report, error) {
	if f.reportsErr != nil {
		return nil, f.reportsErr
	}
	return f.Store.PendingReports(ctx, entity, ids)
}

// stubPreferences serves fixed hidden preferences.
type stubPreferences struct {
	set model.HiddenPreferenceSet
	err error
}

func (p stubPreferences) HiddenPreferences(context.Context, int64) (model.HiddenPreferenceSet, error) {
	return p.set, p.err
}

var errBoom = errors.New("boom")

type env struct {
	store    *faultyStore
	composer *Composer
	clock    *testutil.StubClock
}

func newEnv(t *testing.T, build func(f *store.Fixture, now time.Time), opts ...Option) *env {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.FixedClock()
	f := &store.Fixture{
		Users: []store.User{
			{ID: model.CommunityUserID, Username: "community"},
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
			{ID: 3, Username: "carol"},
		},
	}
	build(f, clock.Now())
	require.NoError(t, s.Load(context.Background(), f))

	fs := &faultyStore{Store: s}
	opts = append([]Option{WithClock(clock)}, opts...)
	return &env{store: fs, composer: NewComposer(fs, nil, opts...), clock: clock}
}

// addImage adds a published image with its own post.
func addImage(f *store.Fixture, now time.Time, id, owner int64, mutate ...func(*store.Image)) {
	published := now.Add(-time.Hour)
	f.Posts = append(f.Posts, store.Post{ID: id, UserID: owner, PublishedAt: &published, CreatedAt: published})
	img := store.Image{ID: id, UserID: owner, PostID: id, Name: "image", CreatedAt: published}
	for _, m := range mutate {
		m(&img)
	}
	f.Images = append(f.Images, img)
}

func fiveImages(f *store.Fixture, now time.Time) {
	for id := int64(1); id <= 5; id++ {
		addImage(f, now, id, 1+id%2)
	}
}

func images(limit int) model.FilterSpec {
	return model.FilterSpec{Entity: model.EntityImage, Limit: limit}
}

func TestCompose_NewestScenario(t *testing.T) {
	e := newEnv(t, fiveImages)
	ctx := context.Background()

	page, err := e.composer.Compose(ctx, nil, images(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, page.IDs())
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "newest:4", page.NextCursor.Encode())

	spec := images(2)
	spec.Cursor = page.NextCursor
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, page.IDs())
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "newest:2", page.NextCursor.Encode())

	spec.Cursor = page.NextCursor
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, page.IDs())
	assert.Nil(t, page.NextCursor)
}

func TestCompose_CursorConsistency(t *testing.T) {
	e := newEnv(t, fiveImages)
	c, err := model.DecodeCursor("newest:4")
	require.NoError(t, err)

	spec := images(10)
	spec.Cursor = c
	page, err := e.composer.Compose(context.Background(), nil, spec)
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	for _, item := range page.Items {
		assert.Less(t, item.ID, int64(4))
	}
}

func TestCompose_Idempotent(t *testing.T) {
	e := newEnv(t, fiveImages)
	ctx := context.Background()

	first, err := e.composer.Compose(ctx, &model.Viewer{UserID: 1}, images(3))
	require.NoError(t, err)
	second, err := e.composer.Compose(ctx, &model.Viewer{UserID: 1}, images(3))
	require.NoError(t, err)
	assert.Equal(t, first.IDs(), second.IDs())
	assert.Equal(t, first.NextCursor, second.NextCursor)
}

// collect follows cursors until the feed ends.
func collect(t *testing.T, c *Composer, viewer *model.Viewer, spec model.FilterSpec) []int64 {
	t.Helper()
	var ids []int64
	for i := 0; i < 100; i++ {
		page, err := c.Compose(context.Background(), viewer, spec)
		require.NoError(t, err)
		ids = append(ids, page.IDs()...)
		if page.NextCursor == nil {
			return ids
		}
		spec.Cursor = page.NextCursor
	}
	t.Fatal("pagination did not terminate")
	return nil
}

func TestCompose_PaginationExhaustive(t *testing.T) {
	rank := func(v int64) *int64 { return &v }
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		for id := int64(1); id <= 9; id++ {
			addImage(f, now, id, 1+id%3)
		}
		ranks := map[int64]*int64{1: rank(3), 2: rank(1), 3: rank(3), 4: nil, 5: rank(2), 6: rank(3), 7: nil, 8: rank(1), 9: nil}
		for id, r := range ranks {
			f.Ranks = append(f.Ranks, store.Rank{Entity: model.EntityImage, ItemID: id, Sort: model.SortMostReactions, Rank: r})
		}

		// posts sharing a publish time, and one never published
		at := now.Add(-2 * time.Hour)
		for id := int64(20); id <= 24; id++ {
			f.Posts = append(f.Posts, store.Post{ID: id, UserID: 1, Title: "p", PublishedAt: &at, CreatedAt: at})
		}
		f.Posts = append(f.Posts, store.Post{ID: 25, UserID: 1, Title: "draft", CreatedAt: at})
	})

	tests := []struct {
		name   string
		viewer *model.Viewer
		spec   model.FilterSpec
		want   []int64
	}{
		{
			name: "rank with ties and unranked items",
			spec: model.FilterSpec{Entity: model.EntityImage, Sort: model.SortMostReactions},
			want: []int64{8, 2, 5, 6, 3, 1, 9, 7, 4},
		},
		{
			name: "newest images",
			spec: model.FilterSpec{Entity: model.EntityImage},
			want: []int64{9, 8, 7, 6, 5, 4, 3, 2, 1},
		},
		{
			name:   "newest posts with equal publish times and a draft",
			viewer: &model.Viewer{UserID: 1},
			spec:   model.FilterSpec{Entity: model.EntityPost, Username: "alice"},
			want:   []int64{9, 6, 3, 24, 23, 22, 21, 20, 25},
		},
	}

	for _, tt := range tests {
		for limit := 1; limit <= 4; limit++ {
			t.Run(tt.name, func(t *testing.T) {
				spec := tt.spec
				spec.Limit = limit
				assert.Equal(t, tt.want, collect(t, e.composer, tt.viewer, spec), "limit %d", limit)
			})
		}
	}
}

func TestCompose_NsfwCeiling(t *testing.T) {
	levels := []model.NsfwLevel{model.NsfwNone, model.NsfwPG, model.NsfwR, model.NsfwX}
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		for i, level := range levels {
			addImage(f, now, int64(i+1), 1, func(img *store.Image) { img.NsfwLevel = level })
		}
	})

	ceiling := model.NsfwPG
	spec := images(10)
	spec.NsfwCeiling = &ceiling
	page, err := e.composer.Compose(context.Background(), nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, page.IDs())
	for _, item := range page.Items {
		assert.LessOrEqual(t, item.NsfwLevel.Ordinal(), ceiling.Ordinal())
	}
}

func TestCompose_ExcludedTags(t *testing.T) {
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		addImage(f, now, 1, 2)
		addImage(f, now, 2, 2)
		addImage(f, now, 3, 1)
		addImage(f, now, 4, 1, func(img *store.Image) { img.Ingestion = model.IngestionPending })
		addImage(f, now, 5, 2)
		f.Tags = []model.Tag{{ID: 10, Name: "gore"}}
		f.ItemTags = []store.ItemTag{
			{Entity: model.EntityImage, ItemID: 1, TagID: 10},
			{Entity: model.EntityImage, ItemID: 3, TagID: 10},
			{Entity: model.EntityImage, ItemID: 4, TagID: 10},
			{Entity: model.EntityImage, ItemID: 5, TagID: 10, Disabled: true},
		}
	})

	spec := images(10)
	spec.ExcludedTagIDs = []int64{10}

	page, err := e.composer.Compose(context.Background(), &model.Viewer{UserID: 1}, spec)
	require.NoError(t, err)
	// 1 is excluded, 3 and 4 are the viewer's own, 5's tag is disabled
	assert.Equal(t, []int64{5, 4, 3, 2}, page.IDs())

	page, err = e.composer.Compose(context.Background(), nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2}, page.IDs())
	for _, item := range page.Items {
		assert.False(t, item.HasTag(10))
	}
}

func TestCompose_HiddenShortCircuit(t *testing.T) {
	e := newEnv(t, fiveImages)

	spec := images(10)
	spec.Hidden = true
	page, err := e.composer.Compose(context.Background(), &model.Viewer{UserID: 1}, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
	assert.Zero(t, e.store.queries)
}

func TestCompose_HiddenShowsOnlyHiddenImages(t *testing.T) {
	set := model.NewHiddenPreferenceSet()
	set.Add(model.HiddenImage, 2)
	set.Add(model.HiddenImage, 4)
	e := newEnv(t, fiveImages)
	c := NewComposer(e.store, stubPreferences{set: set}, WithClock(e.clock))

	spec := images(10)
	spec.Hidden = true
	page, err := c.Compose(context.Background(), &model.Viewer{UserID: 1}, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, page.IDs())

	page, err = c.Compose(context.Background(), &model.Viewer{UserID: 1}, images(10))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 1}, page.IDs())
}

func TestCompose_HiddenPreferences(t *testing.T) {
	set := model.NewHiddenPreferenceSet()
	set.Add(model.HiddenUser, 2)
	e := newEnv(t, fiveImages)

	c := NewComposer(e.store, stubPreferences{set: set}, WithClock(e.clock))
	page, err := c.Compose(context.Background(), &model.Viewer{UserID: 1}, images(10))
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.NotEqual(t, int64(2), item.OwnerID)
	}

	page, err = c.Compose(context.Background(), nil, images(10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 5, "anonymous viewers have no preferences")

	c = NewComposer(e.store, stubPreferences{err: errBoom}, WithClock(e.clock))
	_, err = c.Compose(context.Background(), &model.Viewer{UserID: 1}, images(10))
	assert.ErrorIs(t, err, model.ErrBackend)
}

func TestCompose_ValidationRejectsBeforeQuerying(t *testing.T) {
	cursor := model.IDCursor(model.SortNewest, 4)
	tests := []struct {
		name   string
		mutate func(*model.FilterSpec)
	}{
		{"random without collection", func(s *model.FilterSpec) { s.Sort = model.SortRandom }},
		{"cursor with skip", func(s *model.FilterSpec) { s.Cursor = cursor; s.Skip = 1 }},
		{"cursor with prioritized users", func(s *model.FilterSpec) { s.Cursor = cursor; s.PrioritizedUserIDs = []int64{1, 2} }},
		{"limit above max", func(s *model.FilterSpec) { s.Limit = MaxLimit + 1 }},
		{"negative limit", func(s *model.FilterSpec) { s.Limit = -1 }},
		{"followed only anonymously", func(s *model.FilterSpec) { s.FollowedOnly = true }},
	}

	e := newEnv(t, fiveImages)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := images(2)
			tt.mutate(&spec)
			_, err := e.composer.Compose(context.Background(), nil, spec)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
	assert.Zero(t, e.store.queries)
}

func TestCompose_HiddenRequiresViewer(t *testing.T) {
	e := newEnv(t, fiveImages)
	spec := images(2)
	spec.Hidden = true
	_, err := e.composer.Compose(context.Background(), nil, spec)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestCompose_DefaultLimit(t *testing.T) {
	e := newEnv(t, fiveImages, WithLimits(3, 4))

	page, err := e.composer.Compose(context.Background(), nil, images(0))
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	_, err = e.composer.Compose(context.Background(), nil, images(5))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCompose_ScopeSelectors(t *testing.T) {
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		fiveImages(f, now)
		f.Follows = []store.Follow{{UserID: 3, TargetUserID: 2}}
	})
	ctx := context.Background()

	spec := images(10)
	spec.Username = "alice"
	page, err := e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, page.IDs())

	spec.Username = "nobody"
	_, err = e.composer.Compose(ctx, nil, spec)
	assert.ErrorIs(t, err, model.ErrNotFound)

	spec = images(10)
	spec.FollowedOnly = true
	page, err = e.composer.Compose(ctx, &model.Viewer{UserID: 3}, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 1}, page.IDs())

	page, err = e.composer.Compose(ctx, &model.Viewer{UserID: 1}, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Items, "following nobody matches nothing")
}

func TestCompose_Collections(t *testing.T) {
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		fiveImages(f, now)
		open := now.Add(24 * time.Hour)
		f.Collections = []store.Collection{
			{ID: 1, UserID: 1, Name: "closed"},
			{ID: 2, UserID: 1, Name: "contest", SubmissionEndsAt: &open},
			{ID: 3, UserID: 1, Name: "private", Read: model.CollectionPrivate},
		}
		f.CollectionItems = []store.CollectionItem{
			{CollectionID: 1, Entity: model.EntityImage, ItemID: 1, AddedByID: 1, RandomID: ptr(int64(50))},
			{CollectionID: 1, Entity: model.EntityImage, ItemID: 2, AddedByID: 1, RandomID: ptr(int64(90))},
			{CollectionID: 1, Entity: model.EntityImage, ItemID: 3, AddedByID: 3, Status: query.CollectionItemRejected},
			{CollectionID: 2, Entity: model.EntityImage, ItemID: 4, AddedByID: 2},
			{CollectionID: 2, Entity: model.EntityImage, ItemID: 5, AddedByID: 3, Status: query.CollectionItemReview},
		}
	})
	ctx := context.Background()

	spec := images(10)
	spec.CollectionID = ptr(int64(1))
	page, err := e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, page.IDs())

	spec.Sort = model.SortRandom
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, page.IDs())

	spec = images(10)
	spec.CollectionID = ptr(int64(2))
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Items, "accepted items stay hidden while submissions are open")

	page, err = e.composer.Compose(ctx, &model.Viewer{UserID: 3}, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, page.IDs(), "contributors see their own submissions")

	spec.CollectionID = ptr(int64(3))
	_, err = e.composer.Compose(ctx, &model.Viewer{UserID: 2}, spec)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	spec.CollectionID = ptr(int64(99))
	_, err = e.composer.Compose(ctx, nil, spec)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCompose_Prioritized(t *testing.T) {
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		published := now.Add(-time.Hour)
		f.Posts = []store.Post{
			{ID: 1, UserID: model.CommunityUserID, PublishedAt: &published, CreatedAt: published},
			{ID: 2, UserID: 1, PublishedAt: &published, CreatedAt: published},
			{ID: 3, UserID: 2, PublishedAt: &published, CreatedAt: published},
		}
		f.Images = []store.Image{
			{ID: 1, UserID: model.CommunityUserID, PostID: 1, Index: 2, CreatedAt: published},
			{ID: 2, UserID: model.CommunityUserID, PostID: 1, Index: 1, CreatedAt: published},
			{ID: 3, UserID: 1, PostID: 2, Index: 0, CreatedAt: published},
			{ID: 4, UserID: 2, PostID: 3, Index: 1, CreatedAt: published},
			{ID: 5, UserID: 2, PostID: 3, Index: 0, CreatedAt: published},
		}
	})
	ctx := context.Background()

	spec := images(10)
	spec.PrioritizedUserIDs = []int64{model.CommunityUserID}
	page, err := e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 5, 4, 3}, page.IDs())
	assert.Nil(t, page.NextCursor)

	spec.PrioritizedUserIDs = []int64{1, 2}
	spec.Limit = 2
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, page.IDs())
	assert.NotNil(t, page.NextCursor, "a next cursor signals more rows behind the page")

	spec.Skip = 2
	page, err = e.composer.Compose(ctx, nil, spec)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, page.IDs())
	assert.Nil(t, page.NextCursor)
}

func TestCompose_PrioritizedSkipPagingSignalsMore(t *testing.T) {
	e := newEnv(t, func(f *store.Fixture, now time.Time) {
		for id := int64(1); id <= 5; id++ {
			addImage(f, now, id, 1)
		}
	})
	ctx := context.Background()

	spec := images(2)
	spec.PrioritizedUserIDs = []int64{1}
	var seen []int64
	for skip := 0; ; skip += 2 {
		spec.Skip = skip
		page, err := e.composer.Compose(ctx, nil, spec)
		require.NoError(t, err)
		seen = append(seen, page.IDs()...)
		if page.NextCursor == nil {
			break
		}
		require.Less(t, skip, 10, "paging must terminate")
	}
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, seen)
	assert.Len(t, seen, 5)
}

func TestCompose_Hydration(t *testing.T) {
	build := func(f *store.Fixture, now time.Time) {
		addImage(f, now, 1, 1)
		addImage(f, now, 2, 2)
		f.Tags = []model.Tag{{ID: 1, Name: "cat"}}
		f.ItemTags = []store.ItemTag{{Entity: model.EntityImage, ItemID: 2, TagID: 1}}
		f.Reactions = []store.Reaction{{Entity: model.EntityImage, ItemID: 1, UserID: 3, Reaction: "Like"}}
		f.Cosmetics = []model.Cosmetic{{ID: 1, Name: "gold", Type: "badge"}}
		f.UserCosmetics = []store.UserCosmetic{{UserID: 2, CosmeticID: 1}}
		f.Reports = []store.Report{{ID: 1, Entity: model.EntityImage, ItemID: 1, UserID: 2, Reason: "spam"}}
	}
	viewer := &model.Viewer{UserID: 3, Moderator: true}
	all := []string{model.IncludeTags, model.IncludeReactions, model.IncludeCosmetics, model.IncludeReport}

	t.Run("all attributes", func(t *testing.T) {
		e := newEnv(t, build)
		spec := images(10)
		spec.Include = all
		page, err := e.composer.Compose(context.Background(), viewer, spec)
		require.NoError(t, err)
		require.Equal(t, []int64{2, 1}, page.IDs(), "hydration keeps query order")

		assert.Equal(t, []model.Tag{{ID: 1, Name: "cat"}}, page.Items[0].Tags)
		assert.Equal(t, []model.Cosmetic{{ID: 1, Name: "gold", Type: "badge"}}, page.Items[0].Cosmetics)
		assert.Equal(t, []string{"Like"}, page.Items[1].Reactions)
		require.NotNil(t, page.Items[1].Report)
		assert.Equal(t, "spam", page.Items[1].Report.Reason)
	})

	t.Run("reports need a moderator", func(t *testing.T) {
		e := newEnv(t, build)
		spec := images(10)
		spec.Include = all
		page, err := e.composer.Compose(context.Background(), &model.Viewer{UserID: 3}, spec)
		require.NoError(t, err)
		assert.Nil(t, page.Items[1].Report)
	})

	t.Run("best effort attributes degrade", func(t *testing.T) {
		e := newEnv(t, build)
		e.store.cosmeticsErr = errBoom
		e.store.reportsErr = errBoom
		spec := images(10)
		spec.Include = all
		page, err := e.composer.Compose(context.Background(), viewer, spec)
		require.NoError(t, err)
		assert.Nil(t, page.Items[0].Cosmetics)
		assert.Nil(t, page.Items[1].Report)
		assert.NotNil(t, page.Items[0].Tags)
	})

	t.Run("tags degrade unless requested", func(t *testing.T) {
		e := newEnv(t, build)
		e.store.tagsErr = errBoom
		page, err := e.composer.Compose(context.Background(), viewer, images(10))
		require.NoError(t, err)
		assert.Nil(t, page.Items[0].Tags)

		spec := images(10)
		spec.Include = []string{model.IncludeTags}
		_, err = e.composer.Compose(context.Background(), viewer, spec)
		assert.ErrorIs(t, err, model.ErrBackend)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("requested reactions fail loudly", func(t *testing.T) {
		e := newEnv(t, build)
		e.store.reactionsErr = errBoom
		spec := images(10)
		spec.Include = []string{model.IncludeReactions}
		_, err := e.composer.Compose(context.Background(), viewer, spec)
		assert.ErrorIs(t, err, model.ErrBackend)
	})
}

func TestCompose_Cancelled(t *testing.T) {
	e := newEnv(t, fiveImages)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.composer.Compose(ctx, nil, images(2))
	assert.ErrorIs(t, err, model.ErrBackend)
	assert.ErrorIs(t, err, context.Canceled)
}

func ptr[T any](v T) *T { return &v }
