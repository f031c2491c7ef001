// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	themeapi "github.com/codr1/Coursely/internal/api/themes"
	"github.com/codr1/Coursely/internal/config"
	"github.com/codr1/Coursely/internal/db"
	"github.com/codr1/Coursely/internal/models"
	"github.com/codr1/Coursely/internal/ratelimit"
	"github.com/codr1/Coursely/internal/scheduler"
	"github.com/codr1/Coursely/internal/themes"
)

const (
	defaultConfigPath = "config/config.yaml"
	shutdownTimeout   = 30 * time.Second
)

func setupLogger(environment, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		log.Warn().Str("log_level", level).Msg("Unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config_path", configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment, cfg.App.LogLevel)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := themes.LoadStore(ctx, database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load theme catalog")
	}
	sessions := themes.NewEditorSessions(store, cfg.Themes.EditorSessionTTL)

	limiter := ratelimit.New(&ratelimit.Config{
		Cooldown:     cfg.Themes.GenerationCooldown,
		MaxPerHour:   cfg.Themes.GenerationMaxPerHour,
		MaxIPPerHour: cfg.Themes.GenerationMaxIPPerHour,
	})
	defer limiter.Close()

	defaultMode, _ := models.ParseMode(cfg.Themes.DefaultMode)
	themeapi.InitHandlers(themeapi.Config{
		Store:       store,
		Sessions:    sessions,
		Limiter:     limiter,
		DefaultMode: defaultMode,
		TrustProxy:  cfg.Auth.TrustProxy,
	})

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scheduler")
	}
	if _, err := svc.RegisterEditorSweep(cfg.Themes.EditorSweepCron, sessions); err != nil {
		log.Fatal().Err(err).Msg("Failed to register editor sweep")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
