package feed

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/query"
)

// assemble trims the look-ahead row. When it was present the page continues
// after its last returned item.
func assemble(plan *query.Plan, rows []query.Row) *model.Page {
	more := len(rows) > plan.PageSize
	if more {
		rows = rows[:plan.PageSize]
	}

	page := &model.Page{Items: make([]*model.FeedItem, 0, len(rows))}
	for _, r := range rows {
		page.Items = append(page.Items, r.Item)
	}
	if more && len(rows) > 0 {
		page.NextCursor = plan.CursorFor(rows[len(rows)-1])
	}
	return page
}

// hydrate attaches secondary data to the items in place, in parallel.
// Tags are always loaded and reactions are loaded for signed in viewers;
// either fails the request when named in the include set. Cosmetics and
// reports are best effort.
func (c *Composer) hydrate(ctx context.Context, viewer *model.Viewer, spec model.FilterSpec, items []*model.FeedItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	owners := make([]int64, 0, len(items))
	seenOwner := make(map[int64]bool, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		if !seenOwner[item.OwnerID] {
			seenOwner[item.OwnerID] = true
			owners = append(owners, item.OwnerID)
		}
	}

	var (
		tags      map[int64][]model.Tag
		reactions map[int64][]string
		cosmetics map[int64][]model.Cosmetic
		reports   map[int64]*model.Report
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		tags, err = c.store.TagsForItems(gctx, spec.Entity, ids)
		return c.degrade(model.IncludeTags, spec.Includes(model.IncludeTags), err)
	})

	if viewer != nil {
		g.Go(func() error {
			var err error
			reactions, err = c.store.ReactionsForItems(gctx, spec.Entity, viewer.UserID, ids)
			return c.degrade(model.IncludeReactions, spec.Includes(model.IncludeReactions), err)
		})
	}

	if spec.Includes(model.IncludeCosmetics) {
		g.Go(func() error {
			var err error
			cosmetics, err = c.store.CosmeticsForUsers(gctx, owners)
			return c.degrade(model.IncludeCosmetics, false, err)
		})
	}

	if spec.Includes(model.IncludeReport) && viewer.IsModerator() {
		g.Go(func() error {
			var err error
			reports, err = c.store.PendingReports(gctx, spec.Entity, ids)
			return c.degrade(model.IncludeReport, false, err)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, item := range items {
		item.Tags = tags[item.ID]
		item.Reactions = reactions[item.ID]
		item.Cosmetics = cosmetics[item.OwnerID]
		item.Report = reports[item.ID]
	}
	return nil
}

// degrade decides what a failed hydration means for the request.
func (c *Composer) degrade(attr string, strict bool, err error) error {
	if err == nil {
		return nil
	}
	if strict {
		c.logger.Error("hydration failed", "attribute", attr, "error", err)
		return model.Backend("hydrate "+attr, err)
	}
	c.logger.Warn("hydration degraded", "attribute", attr, "error", err)
	return nil
}
