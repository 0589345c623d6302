package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "rental_sync/internal/adapters/http_server"
	"rental_sync/internal/adapters/i18n"
	"rental_sync/internal/adapters/observability"
	redisad "rental_sync/internal/adapters/redis"
	"rental_sync/internal/adapters/wordpress"
	"rental_sync/internal/adapters/yourrentals"
	"rental_sync/internal/app"
	"rental_sync/internal/shared"
	mysqlrepo "rental_sync/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")
	cfg.LogWarnings()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	defer db.Close()
	repo, err := mysqlrepo.New(db, cfg.PostMetaTable)
	if err != nil {
		log.Fatal().Err(err).Msg("postmeta repository")
	}
	log.Info().Str("table", cfg.PostMetaTable).Msg("database connection ok")

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	settings, err := cfg.PipelineSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline settings")
	}
	rentals, err := yourrentals.New(yourrentals.Config{
		APIURL: cfg.RentalAPIURL,
		AppURL: cfg.RentalAppURL,
		SiteID: cfg.BookingSiteID,
		RPS:    cfg.RentalRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize rentals client")
	}
	rentals.OnCall = observability.External("yourrentals")

	media, err := wordpress.New(wordpress.Config{
		MediaURL: cfg.WPMediaURL,
		Username: cfg.WPUser,
		Password: cfg.WPPassword,
	}, cache, cfg.CacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize media client")
	}
	media.OnCall = observability.External("wordpress")

	labels, err := i18n.NewLabels()
	if err != nil {
		log.Fatal().Err(err).Msg("labels")
	}

	pipeline := app.NewPipeline(settings, repo, media, rentals, labels)
	imports := app.NewImportService(rentals, rentals, pipeline, cache)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.HTTPTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Imports: imports, Q: q, DefaultLang: cfg.DefaultLang})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
