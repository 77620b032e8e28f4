package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dailywish/go-server/internal/config"
	"github.com/dailywish/go-server/internal/daily"
	"github.com/dailywish/go-server/internal/frame"
	"github.com/dailywish/go-server/internal/httpserver"
	"github.com/dailywish/go-server/internal/kv"
	"github.com/dailywish/go-server/internal/metrics"
	"github.com/dailywish/go-server/internal/render"
	"github.com/dailywish/go-server/internal/wishes"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires the collaborators and serves until SIGINT/SIGTERM.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	list, err := wishes.Load(cfg.WishesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(ctx, cfg.KVOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close key-value store")
		}
	}()

	cache := daily.NewStatsCache(cfg.StatsCacheTTL, cfg.StatsCacheSize)
	var collectors []prometheus.Collector
	if cache != nil {
		collectors = append(collectors, cache)
	}

	rnd, err := render.New()
	if err != nil {
		return err
	}

	srv := httpserver.New(httpserver.Options{
		Wishes:         list,
		Votes:          daily.NewStore(store, cfg.KVNamespace, cache),
		Renderer:       rnd,
		State:          frame.NewStateSigner(cfg.StateSecret, cfg.StateTTL),
		Metrics:        metrics.New(collectors...),
		BaseURL:        cfg.BaseURL,
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	log.Info().Str("port", cfg.Port).Str("base_url", cfg.BaseURL).Int("wishes", list.Len()).Msg("starting daily-wish server")
	return srv.Run(ctx, cfg.Addr(), cfg.ShutdownTimeout)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
