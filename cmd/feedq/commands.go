package main

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/store"
	"github.com/robertmeta/feedq/syndication"
)

func migrateDB(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	current, latest, err := e.store.SchemaStatus()
	if err != nil {
		return exit(model.Backend("schema status", err))
	}
	return outputJSON(c, map[string]any{
		"dialect": e.store.Dialect().String(),
		"version": current,
		"latest":  latest,
	})
}

func seedDB(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: feedq seed <fixture.toml>", ExitUsageError)
	}

	var fixture store.Fixture
	if _, err := toml.DecodeFile(c.Args().Get(0), &fixture); err != nil {
		return cli.Exit("Failed to read fixture: "+err.Error(), ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	if err := e.store.Load(c.Context, &fixture); err != nil {
		return exit(err)
	}
	return outputJSON(c, map[string]any{
		"success": true,
		"users":   len(fixture.Users),
		"images":  len(fixture.Images),
		"posts":   len(fixture.Posts),
		"models":  len(fixture.Models),
	})
}

func listFeed(c *cli.Context, entity model.Entity) error {
	spec, err := specFromFlags(c, entity)
	if err != nil {
		return exit(err)
	}

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	page, err := e.composer.Compose(c.Context, viewerFromFlags(c), spec)
	if err != nil {
		return exit(err)
	}
	return outputJSON(c, page)
}

func setHidden(c *cli.Context, hide bool) error {
	if c.NArg() < 2 {
		return cli.Exit("Usage: feedq "+c.Command.Name+" <user|tag|image> <id>", ExitUsageError)
	}
	kind, err := model.ParseHiddenKind(c.Args().Get(0))
	if err != nil {
		return exit(err)
	}
	target, err := parseID(c.Args().Get(1))
	if err != nil {
		return exit(err)
	}
	viewer := viewerFromFlags(c)
	if viewer == nil {
		return cli.Exit("--viewer is required", ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	if hide {
		err = e.prefs.Hide(c.Context, viewer.UserID, kind, target)
	} else {
		err = e.prefs.Unhide(c.Context, viewer.UserID, kind, target)
	}
	if err != nil {
		return exit(err)
	}
	return outputJSON(c, map[string]any{
		"success": true,
		"hidden":  hide,
		"kind":    kind,
		"id":      target,
	})
}

func setFollow(c *cli.Context, follow bool) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: feedq "+c.Command.Name+" <user-id>", ExitUsageError)
	}
	target, err := parseID(c.Args().Get(0))
	if err != nil {
		return exit(err)
	}
	viewer := viewerFromFlags(c)
	if viewer == nil {
		return cli.Exit("--viewer is required", ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	if follow {
		err = e.store.Follow(c.Context, viewer.UserID, target)
	} else {
		err = e.store.Unfollow(c.Context, viewer.UserID, target)
	}
	if err != nil {
		return exit(err)
	}
	return outputJSON(c, map[string]any{
		"success":   true,
		"following": follow,
		"user_id":   target,
	})
}

func renderRSS(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: feedq rss <images|posts|models>", ExitUsageError)
	}
	entity, err := model.ParseEntity(c.Args().Get(0))
	if err != nil {
		return exit(model.Invalid("entity", "%v", err))
	}
	spec, err := specFromFlags(c, entity)
	if err != nil {
		return exit(err)
	}

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	page, err := e.composer.Compose(c.Context, viewerFromFlags(c), spec)
	if err != nil {
		return exit(err)
	}

	var w io.Writer = c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cli.Exit("Failed to create output file: "+err.Error(), ExitDataError)
		}
		defer f.Close()
		w = f
	}

	ch := syndication.Channel{
		Title:       c.String("title"),
		Link:        c.String("link"),
		Description: "feedq " + string(entity) + " feed",
	}
	if err := syndication.Render(w, ch, entity, page, time.Now()); err != nil {
		return cli.Exit("Failed to render RSS: "+err.Error(), ExitGeneralError)
	}
	return nil
}

func importFeed(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: feedq import <url|file>", ExitUsageError)
	}
	source := c.Args().Get(0)

	opts := syndication.ImportOptions{UserID: c.Int64("user")}
	if raw := c.String("since"); raw != "" {
		window, err := syndication.ParseWindow(raw)
		if err != nil {
			return exit(model.Invalid("since", "%v", err))
		}
		opts.Window = window
	}
	level, err := model.ParseNsfwLevel(c.String("nsfw"))
	if err != nil {
		return exit(model.Invalid("nsfw", "%v", err))
	}
	opts.NsfwLevel = level

	e, err := setup(c)
	if err != nil {
		return exit(err)
	}
	defer e.Close()

	importer := syndication.NewImporter(e.store, nil, e.logger)

	if !c.Bool("opml") {
		res, err := importOne(c, importer, source, opts)
		if err != nil {
			return exit(err)
		}
		return outputJSON(c, res)
	}

	f, err := os.Open(source)
	if err != nil {
		return cli.Exit("Failed to open OPML file: "+err.Error(), ExitDataError)
	}
	defer f.Close()
	subs, err := syndication.ParseOPML(f)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	results := make(map[string]any, len(subs))
	created := 0
	for _, sub := range subs {
		res, err := importer.ImportURL(c.Context, sub.URL, opts)
		if err != nil {
			e.logger.Warn("feed import failed", "url", sub.URL, "error", err)
			results[sub.URL] = map[string]any{"error": err.Error()}
			continue
		}
		created += res.Created
		results[sub.URL] = res
	}
	return outputJSON(c, map[string]any{
		"feeds":         len(subs),
		"total_created": created,
		"results":       results,
	})
}

// importOne treats source as a URL when it has a scheme, a file otherwise.
func importOne(c *cli.Context, importer *syndication.Importer, source string, opts syndication.ImportOptions) (*syndication.ImportResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return importer.ImportURL(c.Context, source, opts)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, model.Invalid("source", "%v", err)
	}
	defer f.Close()
	return importer.Import(c.Context, f, opts)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, model.Invalid("id", "%q is not a number", s)
	}
	return id, nil
}
