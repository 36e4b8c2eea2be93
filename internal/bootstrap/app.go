// Package bootstrap is the composition root: it connects external
// dependencies (Postgres, Redis, RabbitMQ), registers the built-in
// agents and wires services and handlers into a running App.
package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/agents"
	"agents-backend/internal/agents/bizhealth"
	"agents-backend/internal/agents/contracts"
	"agents-backend/internal/agents/esg"
	"agents-backend/internal/agents/maintenance"
	"agents-backend/internal/agents/pricing"
	"agents-backend/internal/agents/success"
	"agents-backend/internal/assessments"
	"agents-backend/internal/engine"
	"agents-backend/internal/extract"
	"agents-backend/internal/marketplace"
	"agents-backend/internal/pipeline"
	"agents-backend/internal/shared/cache"
	"agents-backend/internal/shared/config"
	"agents-backend/internal/shared/mq"
	"agents-backend/internal/shared/server"
	"agents-backend/internal/shared/storage/db"
	"agents-backend/internal/usage"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Cache     *cache.Cache
	Publisher *mq.Publisher

	Registry *agents.Registry
	Catalog  *marketplace.Catalog
	Pipeline *pipeline.Runner

	UsageService       *usage.Service
	AssessmentsRepo    assessments.Repo
	AssessmentsService *assessments.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB := buildDB(ctx, cfg)

	var reportCache *cache.Cache
	if cfg.RedisAddr != "" {
		reportCache = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ReportCacheTTL)
		if err := reportCache.Ping(ctx); err != nil {
			log.Printf("redis unreachable, running without report cache: %v", err)
			reportCache = nil
		}
	}

	var publisher *mq.Publisher
	if cfg.AMQPURL != "" {
		p, err := mq.DialPublisher(cfg.AMQPURL)
		if err != nil {
			log.Printf("amqp unreachable, processing assessments inline: %v", err)
		} else {
			publisher = p
		}
	}

	registry := buildRegistry(time.Now)
	if cfg.ProfilesDir != "" {
		if err := registerProfiles(registry, cfg.ProfilesDir, time.Now); err != nil {
			log.Printf("loading agent profiles: %v", err)
		}
	}
	catalog := marketplace.NewCatalog(registry, nil)
	runner := pipeline.NewRunner(registry, catalog.Priority, time.Now)

	var usageSvc *usage.Service
	if sqlDB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(sqlDB))
	} else {
		usageSvc = usage.NewService()
	}

	var repo assessments.Repo
	if sqlDB != nil {
		repo = &assessments.PGRepo{DB: sqlDB}
	} else {
		repo = assessments.NewMemoryRepo()
	}

	svc := &assessments.Service{
		Repo:     repo,
		Registry: registry,
		Usage:    usageSvc,
		Cache:    reportCache,
		Pipeline: runner,
	}
	if publisher != nil {
		svc.Jobs = publisher
	}

	app := &App{
		Config:             cfg,
		DB:                 sqlDB,
		Cache:              reportCache,
		Publisher:          publisher,
		Registry:           registry,
		Catalog:            catalog,
		Pipeline:           runner,
		UsageService:       usageSvc,
		AssessmentsRepo:    repo,
		AssessmentsService: svc,
	}

	app.Router = server.NewRouter(server.Deps{
		Config:      cfg,
		Assessments: assessments.NewHandler(svc),
		Usage:       usage.NewHandler(usageSvc),
		Marketplace: marketplace.NewHandler(catalog),
		Extract:     extract.NewHandler(),
	})

	return app, nil
}

// Close releases external connections.
func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		conn.Close()
		return nil
	}
	return conn
}

// registerProfiles loads declarative YAML agent definitions from dir.
func registerProfiles(registry *agents.Registry, dir string, clock agents.Clock) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		profile, err := engine.ParseProfile(data)
		if err != nil {
			return err
		}
		if err := registry.Register(agents.NewProfileAgent(profile, clock)); err != nil {
			return err
		}
		log.Printf("registered profile agent %s from %s", profile.Key, entry.Name())
	}
	return nil
}

func buildRegistry(clock agents.Clock) *agents.Registry {
	registry := agents.NewRegistry()
	registry.MustRegister(bizhealth.New(clock))
	registry.MustRegister(maintenance.New(clock))
	registry.MustRegister(pricing.New(clock))
	registry.MustRegister(success.New(clock))
	registry.MustRegister(contracts.New(clock))
	registry.MustRegister(esg.New(clock))
	return registry
}
