package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/PointsBridge/app/controllers"
	"github.com/ManuelReschke/PointsBridge/app/repository"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/cache"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/config"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/constants"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/database"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/env"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/loyalty"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/platform"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/provider"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/router"
	"github.com/ManuelReschke/PointsBridge/internal/pkg/session"
)

func main() {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			log.Fatalf("Configuration error: %v", cfgErr)
		}
		log.Fatalf("Unable to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, repo, err := NewApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)); err != nil {
		log.Errorf("listen: %v", err)
	}

	if err := repo.Destroy(); err != nil {
		log.Errorf("close repository: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Errorf("close cache: %v", err)
	}
}

// NewApplication wires storage, upstream clients and routes.
func NewApplication(ctx context.Context, cfg *config.Config) (*fiber.App, repository.Repository, error) {
	repo, err := newRepository(cfg)
	if err != nil {
		return nil, nil, err
	}

	factory, err := platform.NewFactory(ctx, platform.FactoryConfig{
		ClientID:     cfg.PlatformClientID,
		ClientSecret: cfg.PlatformClientSecret,
		IssuerURL:    cfg.PlatformIssuerURL,
		APIBaseURL:   cfg.PlatformAPIURL,
	})
	if err != nil {
		return nil, nil, err
	}

	providerClient, err := provider.NewClient(provider.Config{
		BaseURL:   cfg.ProviderAPIURL,
		APIKey:    cfg.ProviderAPIKey,
		ProgramID: cfg.ProviderProgramID,
	})
	if err != nil {
		return nil, nil, err
	}

	pipeline := loyalty.NewService(repo, factory, loyalty.Options{
		WebhookSecret:    cfg.WebhookSecret,
		StrictSignatures: cfg.StrictSignatures(),
		RefundPolicy:     cfg.RefundPointsPolicy,
	})
	if !cfg.StrictSignatures() {
		log.Warn("Webhook signatures are not enforced (WEBHOOK_SIGNATURE_POLICY=log)")
	}

	rdb := cache.SetupCache(ctx, cache.Options{
		Host:     cfg.CacheHost,
		Port:     cfg.CachePort,
		Password: cfg.CachePassword,
	})

	app := fiber.New(fiber.Config{
		AppName:   "PointsBridge",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Use(swagger.New(swagger.Config{
		BasePath: constants.DocsBasePath,
		FilePath: docsPath(),
		Path:     "v1",
	}))

	router.InstallRouter(app, router.Dependencies{
		Repo:      repo,
		Platform:  factory,
		Provider:  providerClient,
		Webhooks:  pipeline,
		Outcomes:  counter.NewOutcomes(rdb),
		Sessions:  session.NewSessionStore(rdb, !cfg.IsDev),
		OrgAccess: cache.NewOrgAccess(rdb),
		Auth: controllers.AuthConfig{
			ClientID:     cfg.PlatformClientID,
			ClientSecret: cfg.PlatformClientSecret,
			PublicURL:    cfg.PublicURL,
		},
		MetricsUser:     cfg.MetricsUser,
		MetricsPassword: cfg.MetricsPassword,
	})

	return app, repo, nil
}

func newRepository(cfg *config.Config) (repository.Repository, error) {
	if cfg.UseMemoryRepo {
		log.Warn("Using the in-memory repository; data is lost on restart")
		return repository.NewMemoryRepository(), nil
	}
	db, err := database.Open(cfg.DatabaseDSN, cfg.IsDev)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return repository.NewGormRepository(db), nil
}

func docsPath() string {
	for _, base := range []string{"./", "../../"} {
		if _, err := os.Stat(base + "docs/openapi.yml"); err == nil {
			return base + "docs/openapi.yml"
		}
	}
	return "./docs/openapi.yml"
}
