package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/robertmeta/feedq/config"
	"github.com/robertmeta/feedq/feed"
	"github.com/robertmeta/feedq/logging"
	"github.com/robertmeta/feedq/model"
	"github.com/robertmeta/feedq/prefs"
	"github.com/robertmeta/feedq/store"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func newApp(stdout io.Writer) *cli.App {
	feedCommand := func(name string, entity model.Entity) *cli.Command {
		return &cli.Command{
			Name:   name,
			Usage:  fmt.Sprintf("List a page of %s", name),
			Flags:  feedFlags(),
			Action: func(c *cli.Context) error { return listFeed(c, entity) },
		}
	}

	return &cli.App{
		Name:      "feedq",
		Usage:     "Compose and page image, post and model feeds",
		Version:   "0.1.0",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   defaultConfigPath(),
				Usage:   "Configuration file",
				EnvVars: []string{"FEEDQ_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "SQLite database path (overrides the config)",
				EnvVars: []string{"FEEDQ_DB"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides the config)",
			},
			&cli.Int64Flag{
				Name:    "viewer",
				Usage:   "User id the request is made as (anonymous when unset)",
				EnvVars: []string{"FEEDQ_VIEWER"},
			},
			&cli.BoolFlag{
				Name:  "moderator",
				Usage: "Treat the viewer as a moderator",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or upgrade the database schema",
				Action: migrateDB,
			},
			{
				Name:      "seed",
				Usage:     "Load a TOML fixture into the database",
				ArgsUsage: "<fixture.toml>",
				Action:    seedDB,
			},
			feedCommand("images", model.EntityImage),
			feedCommand("posts", model.EntityPost),
			feedCommand("models", model.EntityModel),
			{
				Name:      "hide",
				Usage:     "Hide a user, tag or image from the viewer's feeds",
				ArgsUsage: "<user|tag|image> <id>",
				Action:    func(c *cli.Context) error { return setHidden(c, true) },
			},
			{
				Name:      "unhide",
				Usage:     "Undo hide",
				ArgsUsage: "<user|tag|image> <id>",
				Action:    func(c *cli.Context) error { return setHidden(c, false) },
			},
			{
				Name:      "follow",
				Usage:     "Follow a user",
				ArgsUsage: "<user-id>",
				Action:    func(c *cli.Context) error { return setFollow(c, true) },
			},
			{
				Name:      "unfollow",
				Usage:     "Stop following a user",
				ArgsUsage: "<user-id>",
				Action:    func(c *cli.Context) error { return setFollow(c, false) },
			},
			{
				Name:      "rss",
				Usage:     "Render a feed page as RSS 2.0",
				ArgsUsage: "<images|posts|models>",
				Flags: append(feedFlags(),
					&cli.StringFlag{Name: "title", Value: "feedq", Usage: "Channel title"},
					&cli.StringFlag{Name: "link", Value: "https://localhost", Usage: "Site root item links point into"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default: stdout)"},
				),
				Action: renderRSS,
			},
			{
				Name:      "import",
				Usage:     "Import an RSS/Atom feed's entries as draft posts",
				ArgsUsage: "<url|file>",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Required: true, Usage: "Owner of the created posts"},
					&cli.StringFlag{Name: "since", Usage: "Skip entries older than this window (e.g. 7d, 2w, 3m, 1y)"},
					&cli.StringFlag{Name: "nsfw", Value: "PG", Usage: "Rating assigned to the posts"},
					&cli.BoolFlag{Name: "opml", Usage: "The argument is an OPML file listing feeds to import"},
				},
				Action: importFeed,
			},
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "feedq.toml"
	}
	return filepath.Join(home, ".config", "feedq", "feedq.toml")
}

// env is what one command runs against.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	prefs    *prefs.Provider
	composer *feed.Composer
}

func (e *env) Close() error {
	return e.store.Close()
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.ReadFromFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Database = config.DatabaseConfig{Type: "sqlite", Path: c.String("db")}
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Log.SlogLevel()
	logger := logging.New(os.Stderr, level)

	s, err := openStore(cfg.Database)
	if err != nil {
		return nil, model.Backend("open database", err)
	}
	provider, err := prefs.NewFromConfig(cfg.Preferences, s, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	composer := feed.NewComposer(s, provider,
		feed.WithLogger(logger),
		feed.WithLimits(cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit))

	return &env{cfg: cfg, logger: logger, store: s, prefs: provider, composer: composer}, nil
}

func openStore(db config.DatabaseConfig) (*store.Store, error) {
	if db.Type == "postgres" {
		return store.NewPostgres(db.DSN)
	}
	if db.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(db.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return store.New(db.Path)
}

func outputJSON(c *cli.Context, v any) error {
	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// exit maps typed failures onto exit codes.
func exit(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, model.ErrValidation):
		return cli.Exit(err.Error(), ExitUsageError)
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrBackend):
		return cli.Exit(err.Error(), ExitDataError)
	}
	return cli.Exit(err.Error(), ExitGeneralError)
}
