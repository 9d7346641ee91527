package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grifopos/internal/config"
	"grifopos/internal/infra"
	"grifopos/internal/repository"
	"grifopos/internal/router"
	"grifopos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("grifo backend stopped")
	}
	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogger(cfg)

	topologia, err := infra.LoadTopologia(cfg.TopologiaPath)
	if err != nil {
		return fmt.Errorf("topología %s: %w", cfg.TopologiaPath, err)
	}
	log.Info().Int("islas", len(topologia.Islas)).Str("path", cfg.TopologiaPath).Msg("topología cargada")

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// snapshot jobs are enqueued on close and after a verification is saved
	worker.StartWorkerPool(ctx, rdb, &worker.WorkerHandlers{
		Balance: worker.NewBalanceWorker(
			repository.NewTurnoRepository(db),
			repository.NewPrecioRepository(db, rdb, time.Duration(cfg.PrecioCacheTTLMin)*time.Minute),
			repository.NewBalanceCache(rdb, time.Duration(cfg.BalanceTTLHoras)*time.Hour),
		),
	}, cfg.WorkerPoolSize)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.New(cfg, db, rdb, topologia),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("env", cfg.Env).Msgf("grifo backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}
