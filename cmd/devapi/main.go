// Command devapi serves an in-memory hotel REST API seeded with demo data,
// for running the web front end without the real backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grandstay/hotel-web/internal/devapi"
	"github.com/grandstay/hotel-web/internal/infrastructure/config"
	"github.com/grandstay/hotel-web/pkg/logger"
)

func main() {
	cfg := config.LoadDevAPI()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "hotel-devapi",
		Env:     cfg.Env,
	})

	e, _, err := devapi.NewServer(devapi.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Seed:      true,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("dev API setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("admin", devapi.SeedAdminEmail).
			Str("member", devapi.SeedMemberEmail).
			Msg("dev API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("dev API stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dev API shutdown")
	}
}
