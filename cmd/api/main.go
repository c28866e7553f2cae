package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/casting-service/internal/api/http"
	"github.com/spec-kit/casting-service/internal/api/http/handlers"
	"github.com/spec-kit/casting-service/internal/auth"
	"github.com/spec-kit/casting-service/internal/config"
	"github.com/spec-kit/casting-service/internal/events"
	"github.com/spec-kit/casting-service/internal/observability"
	"github.com/spec-kit/casting-service/internal/persistence"
	"github.com/spec-kit/casting-service/internal/service"
	"github.com/spec-kit/casting-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := persistence.OpenStorage(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer storage.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	keys, err := newKeyProvider(cfg.Auth, redis, logger)
	if err != nil {
		logger.Fatal("failed to init key source", zap.Error(err))
	}
	verifier := auth.NewVerifier(keys, auth.VerifierConfig{
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		ClockSkew: cfg.Auth.ClockSkew(),
	}, nil)
	guard := auth.NewGuard(verifier, logger)

	dispatcher := events.NewInMemoryDispatcher()
	var publisher service.EventPublisher
	if redis.Enabled() {
		publisher = redis
	}
	auditCtx, stopAudit := context.WithCancel(ctx)
	defer stopAudit()
	auditDone := worker.StartAuditWorker(auditCtx, service.NewAuditService(dispatcher, publisher, logger, cfg.Audit))

	movieService := service.NewMovieService(storage.Movies, dispatcher, logger)
	actorService := service.NewActorService(storage.Actors, dispatcher, logger)

	deps := []handlers.Dependency{{Name: "storage", Pinger: storage}}
	if redis.Enabled() {
		deps = append(deps, handlers.Dependency{Name: "redis", Pinger: redis, Optional: true})
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps...),
		Movies: handlers.NewMoviesHandler(movieService),
		Actors: handlers.NewActorsHandler(actorService),
		Guard:  guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	stopAudit()
	<-auditDone
	logger.Info("stopped", zap.Any("metrics", metrics.Snapshot()))
}

// newKeyProvider selects the verification key source. A configured PEM file
// wins over the JWKS endpoint.
func newKeyProvider(cfg config.AuthConfig, redis *persistence.Redis, logger *zap.Logger) (auth.KeyProvider, error) {
	if cfg.PublicKeyPEMPath != "" {
		key, err := auth.LoadPublicKeyPEM(cfg.PublicKeyPEMPath)
		if err != nil {
			return nil, err
		}
		logger.Info("verifying tokens with static key", zap.String("kid", cfg.PublicKeyID))
		return auth.StaticKeys{cfg.PublicKeyID: key}, nil
	}

	opts := []auth.JWKSOption{
		auth.WithCacheTTL(cfg.JWKSCacheTTL()),
		auth.WithMaxStale(cfg.JWKSMaxStale()),
		auth.WithLogger(logger),
	}
	if redis.Enabled() {
		opts = append(opts, auth.WithDocumentCache(redis))
	}
	logger.Info("verifying tokens with jwks", zap.String("url", cfg.JWKSURL))
	return auth.NewJWKSCache(cfg.JWKSURL, opts...), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
