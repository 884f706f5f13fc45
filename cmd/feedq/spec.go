package main

import (
	"github.com/urfave/cli/v2"

	"github.com/robertmeta/feedq/model"
)

// feedFlags are shared by the images, posts, models and rss commands.
func feedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Page size (default from config)"},
		&cli.StringFlag{Name: "cursor", Aliases: []string{"c"}, Usage: "Continue after this cursor"},
		&cli.IntFlag{Name: "skip", Usage: "Offset into the result (prioritized modes)"},
		&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: string(model.SortNewest), Usage: "newest, most_reactions, most_comments, most_collected, most_tipped, most_downloaded, highest_rated or random"},
		&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Value: string(model.PeriodAllTime), Usage: "Day, Week, Month, Year or AllTime"},
		&cli.StringFlag{Name: "period-mode", Value: string(model.PeriodModeNormal), Usage: "normal or stats"},
		&cli.Int64SliceFlag{Name: "id", Usage: "Only these item ids"},
		&cli.Int64SliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Only items carrying this tag id"},
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Only items owned by this user"},
		&cli.Int64Flag{Name: "post", Usage: "Scope to a post"},
		&cli.Int64Flag{Name: "model", Usage: "Scope to a model"},
		&cli.Int64Flag{Name: "model-version", Usage: "Scope to a model version"},
		&cli.Int64Flag{Name: "review", Usage: "Scope to a resource review (images)"},
		&cli.Int64Flag{Name: "collection", Usage: "Scope to a collection"},
		&cli.BoolFlag{Name: "followed", Usage: "Only items from users the viewer follows"},
		&cli.StringSliceFlag{Name: "reaction", Usage: "Only items the viewer reacted to with this reaction"},
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Title prefix (posts, models)"},
		&cli.StringFlag{Name: "nsfw", Usage: "Highest rating to show (PG, PG-13, R, X, XXX)"},
		&cli.StringSliceFlag{Name: "type", Usage: "Media types (images)"},
		&cli.StringSliceFlag{Name: "generation", Usage: "Generation processes (images)"},
		&cli.StringFlag{Name: "needs-review", Usage: "Moderators: only items needing this review"},
		&cli.BoolFlag{Name: "tag-review", Usage: "Moderators: only items with tags needing review"},
		&cli.BoolFlag{Name: "report-review", Usage: "Moderators: only items with pending reports"},
		&cli.Int64SliceFlag{Name: "prioritize", Usage: "Order these users' items first (-1 for community)"},
		&cli.BoolFlag{Name: "hidden", Usage: "Show only the images the viewer hid"},
		&cli.Int64SliceFlag{Name: "exclude-user", Usage: "Exclude items owned by this user"},
		&cli.Int64SliceFlag{Name: "exclude-tag", Usage: "Exclude items carrying this tag"},
		&cli.Int64SliceFlag{Name: "exclude-image", Usage: "Exclude this image"},
		&cli.StringSliceFlag{Name: "include", Aliases: []string{"i"}, Usage: "Hydrate tags, reactions, cosmetics or report"},
	}
}

// specFromFlags reads the shared feed flags into a FilterSpec. Parse
// failures are validation errors.
func specFromFlags(c *cli.Context, entity model.Entity) (model.FilterSpec, error) {
	spec := model.FilterSpec{
		Entity:             entity,
		Limit:              c.Int("limit"),
		Skip:               c.Int("skip"),
		IDs:                c.Int64Slice("id"),
		Tags:               c.Int64Slice("tag"),
		Username:           c.String("username"),
		FollowedOnly:       c.Bool("followed"),
		Reactions:          c.StringSlice("reaction"),
		Query:              c.String("query"),
		Types:              c.StringSlice("type"),
		Generation:         c.StringSlice("generation"),
		NeedsReview:        c.String("needs-review"),
		TagReview:          c.Bool("tag-review"),
		ReportReview:       c.Bool("report-review"),
		PrioritizedUserIDs: c.Int64Slice("prioritize"),
		Hidden:             c.Bool("hidden"),
		ExcludedUserIDs:    c.Int64Slice("exclude-user"),
		ExcludedTagIDs:     c.Int64Slice("exclude-tag"),
		ExcludedImageIDs:   c.Int64Slice("exclude-image"),
		Include:            c.StringSlice("include"),
		PeriodMode:         model.PeriodMode(c.String("period-mode")),
	}

	var err error
	if spec.Sort, err = model.ParseSort(c.String("sort")); err != nil {
		return spec, model.Invalid("sort", "%v", err)
	}
	if spec.Period, err = model.ParsePeriod(c.String("period")); err != nil {
		return spec, model.Invalid("period", "%v", err)
	}
	if raw := c.String("cursor"); raw != "" {
		if spec.Cursor, err = model.DecodeCursor(raw); err != nil {
			return spec, err
		}
	}
	if raw := c.String("nsfw"); raw != "" {
		level, err := model.ParseNsfwLevel(raw)
		if err != nil {
			return spec, model.Invalid("nsfw", "%v", err)
		}
		spec.NsfwCeiling = &level
	}

	spec.PostID = optionalID(c, "post")
	spec.ModelID = optionalID(c, "model")
	spec.ModelVersionID = optionalID(c, "model-version")
	spec.ReviewID = optionalID(c, "review")
	spec.CollectionID = optionalID(c, "collection")
	return spec, nil
}

func optionalID(c *cli.Context, name string) *int64 {
	if !c.IsSet(name) {
		return nil
	}
	id := c.Int64(name)
	return &id
}

// viewerFromFlags returns nil for anonymous requests.
func viewerFromFlags(c *cli.Context) *model.Viewer {
	if !c.IsSet("viewer") {
		return nil
	}
	return &model.Viewer{UserID: c.Int64("viewer"), Moderator: c.Bool("moderator")}
}
