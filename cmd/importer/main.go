package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"rental_sync/internal/adapters/i18n"
	"rental_sync/internal/adapters/observability"
	redisad "rental_sync/internal/adapters/redis"
	"rental_sync/internal/adapters/wordpress"
	"rental_sync/internal/adapters/yourrentals"
	"rental_sync/internal/app"
	"rental_sync/internal/domain"
	"rental_sync/internal/shared"
	mysqlrepo "rental_sync/internal/storage/mysql"
	"rental_sync/internal/storage/sqlite"
)

const exitSkipped = 2

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "importer")
	cfg.LogWarnings()

	cliApp := &cli.App{
		Name:      "importer",
		Usage:     "import one rental listing into a WordPress post",
		ArgsUsage: "<number> <post_id> [lang]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Value: "mysql", Usage: "attribute store: mysql or sqlite"},
			&cli.StringFlag{Name: "sqlite-path", Value: cfg.SQLitePath, Usage: "database file for --store sqlite"},
			&cli.BoolFlag{Name: "ensure-schema", Usage: "create the postmeta table if it is missing (mysql)"},
			&cli.BoolFlag{Name: "no-cache", Usage: "do not use redis"},
		},
		Action: func(c *cli.Context) error { return importAction(c, cfg) },
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the attributes stored for a post",
				ArgsUsage: "<post_id>",
				Action:    func(c *cli.Context) error { return showAction(c, cfg) },
			},
		},
	}

	// cli.Exit errors carry their own exit code and are handled by Run.
	if err := cliApp.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("importer failed")
		os.Exit(1)
	}
}

func importAction(c *cli.Context, cfg shared.Config) error {
	if c.NArg() < 2 || c.NArg() > 3 {
		return cli.Exit("usage: importer [flags] <number> <post_id> [lang]", 1)
	}
	number, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("number: %v", err), 1)
	}
	postID, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("post_id: %v", err), 1)
	}
	lang := cfg.DefaultLang
	if c.NArg() == 3 {
		lang = c.Args().Get(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openStore(ctx, c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeRepo()

	var cache domain.Cache
	if !c.Bool("no-cache") {
		cache = openCache(ctx, cfg)
	}

	settings, err := cfg.PipelineSettings()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	rentals, err := yourrentals.New(yourrentals.Config{
		APIURL: cfg.RentalAPIURL,
		AppURL: cfg.RentalAppURL,
		SiteID: cfg.BookingSiteID,
		RPS:    cfg.RentalRPS,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	media, err := wordpress.New(wordpress.Config{
		MediaURL: cfg.WPMediaURL,
		Username: cfg.WPUser,
		Password: cfg.WPPassword,
	}, cache, cfg.CacheTTL)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	labels, err := i18n.NewLabels()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	pipeline := app.NewPipeline(settings, repo, media, rentals, labels)
	svc := app.NewImportService(rentals, rentals, pipeline, cache)

	log.Info().Int64("number", number).Int64("post_id", postID).Str("lang", lang).Str("store", c.String("store")).Msg("import starting")
	start := time.Now()
	res, err := svc.Import(ctx, app.ImportRequest{Number: number, PostID: postID, Lang: lang})

	switch {
	case errors.Is(err, domain.ErrPermanentSkip):
		log.Warn().Err(err).Int64("number", number).Msg("listing skipped")
		return cli.Exit(err.Error(), exitSkipped)
	case err != nil:
		return cli.Exit(err.Error(), 1)
	}

	log.Info().
		Int("topics", len(res.Topics)).
		Int("scripts", len(res.Scripts)).
		Int("images", len(res.Images)).
		Int("images_found", res.ImagesFound).
		Dur("took", time.Since(start)).
		Msg("import done")
	return nil
}

func showAction(c *cli.Context, cfg shared.Config) error {
	postID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit("usage: importer [flags] show <post_id>", 1)
	}
	repo, closeRepo, err := openStore(c.Context, c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer closeRepo()

	attrs, err := app.NewQueryService(repo, nil, 0).PostMeta(c.Context, postID)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	for _, a := range attrs {
		fmt.Fprintf(c.App.Writer, "%s\t%q\n", a.Key, a.Value)
	}
	return nil
}

func openStore(ctx context.Context, c *cli.Context, cfg shared.Config) (domain.PostMetaRepository, func(), error) {
	switch c.String("store") {
	case "sqlite":
		s, err := sqlite.Open(c.String("sqlite-path"))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", s.Path()).Msg("using sqlite store")
		return s, func() { _ = s.Close() }, nil
	case "mysql":
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		repo, err := mysqlrepo.New(db, cfg.PostMetaTable)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if c.Bool("ensure-schema") {
			if err := repo.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("ensure schema: %w", err)
			}
		}
		log.Info().Str("table", cfg.PostMetaTable).Msg("database connection ok")
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (mysql|sqlite)", c.String("store"))
	}
}

// openCache returns nil when redis is unreachable; imports then run uncached.
func openCache(ctx context.Context, cfg shared.Config) domain.Cache {
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
		_ = cache.Close()
		return nil
	}
	return cache
}
