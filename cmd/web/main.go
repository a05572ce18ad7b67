// @title        Hotel Web
// @version      1.0
// @description  Session endpoints of the hotel booking web front end.
// @BasePath     /
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/grandstay/hotel-web/docs"
	"github.com/grandstay/hotel-web/internal/api"
	"github.com/grandstay/hotel-web/internal/api/handler"
	"github.com/grandstay/hotel-web/internal/api/middleware"
	"github.com/grandstay/hotel-web/internal/core/ports"
	"github.com/grandstay/hotel-web/internal/core/service"
	"github.com/grandstay/hotel-web/internal/infrastructure/apiclient"
	"github.com/grandstay/hotel-web/internal/infrastructure/config"
	"github.com/grandstay/hotel-web/internal/infrastructure/db/memory"
	mongodb "github.com/grandstay/hotel-web/internal/infrastructure/db/mongo"
	redisdb "github.com/grandstay/hotel-web/internal/infrastructure/db/redis"
	"github.com/grandstay/hotel-web/internal/infrastructure/jobs"
	"github.com/grandstay/hotel-web/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepSpec       = "@every 1m"
	purgeSpec       = "@every 10m"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "hotel-web",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("hotel web stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := jobs.NewScheduler(logger.Component("jobs"))
	checks := map[string]handler.Check{}

	kv, closeStorage, err := openStorage(ctx, cfg, sched, checks, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	client, err := apiclient.New(apiclient.Config{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		RetryMaxElapsed:    cfg.API.RetryMaxElapsed,
		BreakerMaxFailures: cfg.API.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.API.BreakerOpenTimeout,
	}, logger.Component("apiclient"))
	if err != nil {
		return err
	}
	checks["api"] = client.Ping

	registry := service.NewSessionRegistry(kv, client, service.BootstrapPolicy{
		RetryMaxElapsed: cfg.Session.BootstrapRetryMaxElapsed,
	}, cfg.Session.TTL, logger.Component("session"))
	defer registry.Close()

	if err := sched.Add(sweepSpec, jobs.NewSweepSessionsJob(registry, cfg.Session.IdleEvict, logger.Component("jobs"))); err != nil {
		return err
	}

	secret := cfg.Cookie.Secret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("COOKIE_SECRET not set, browser cookies will not survive a restart")
	}

	e, err := api.NewRouter(api.Deps{
		Registry: registry,
		Cookie: middleware.BrowserOptions{
			Secret: secret,
			Secure: cfg.Cookie.Secure,
			MaxAge: cfg.Session.TTL,
		},
		GateSettle:   cfg.Session.GateSettle,
		PaymentDelay: cfg.Checkout.PaymentDelay,
		Checks:       checks,
		Log:          logger.Component("http"),
	})
	if err != nil {
		return err
	}

	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Str("storage", cfg.Session.Backend).Msg("hotel web listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)
	return e.Shutdown(shutdownCtx)
}

// openStorage connects the configured session backend and registers its
// readiness check and housekeeping.
func openStorage(ctx context.Context, cfg *config.Config, sched *jobs.Scheduler, checks map[string]handler.Check, log zerolog.Logger) (ports.KeyValueStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		conn, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		if conn.Embedded() {
			log.Warn().Msg("REDIS_ADDR not set, using an embedded redis; sessions are lost on restart")
		}
		checks["storage"] = func(ctx context.Context) error { return conn.Ping(ctx).Err() }
		return redisdb.NewKVStore(conn.Client), func() { _ = conn.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "hotel-web"})
		if err != nil {
			return nil, nil, err
		}
		kv := mongodb.NewKVStore(db)
		if err := kv.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		checks["storage"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return kv, func() { _ = client.Disconnect(context.Background()) }, nil
	}

	kv := memory.NewStore()
	if err := sched.Add(purgeSpec, jobs.NewPurgeStorageJob(kv, logger.Component("jobs"))); err != nil {
		return nil, nil, err
	}
	return kv, func() {}, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(b)
}
