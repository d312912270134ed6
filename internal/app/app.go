// Package app provides application-level wiring and dependency injection
// for the ask-data service following hexagonal architecture.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"askdata/internal/cache"
	"askdata/internal/catalog"
	"askdata/internal/config"
	"askdata/internal/db/repository"
	"askdata/internal/domain"
	"askdata/internal/executor"
	"askdata/internal/planner"
	"askdata/internal/service"
	"askdata/internal/sqlbuilder"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the loaded catalog.
type Deps struct {
	Cfg     *config.Config
	Catalog *catalog.Catalog
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Scorer  domain.SimilarityScorer // optional, nil = keyword ranking only
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Engine  *service.Engine
	Audit   domain.AuditRepository
	Janitor *cache.Janitor
}

// New wires the repositories, cache, executor and engine from the provided
// deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg

	auditRepo := repository.NewAuditRepo(deps.WriteDB, deps.ReadDB)
	cacheRepo := repository.NewCacheRepo(deps.WriteDB, deps.ReadDB)

	resultCache := cache.NewStore(cacheRepo, deps.Logger.With("component", "cache"))
	janitor, err := cache.NewJanitor(resultCache, cfg.CacheSweepSched, deps.Logger.With("component", "cache-janitor"))
	if err != nil {
		return nil, fmt.Errorf("cache janitor: %w", err)
	}

	exec := executor.New(deps.DuckDB, deps.Logger, executor.WithTimeout(cfg.QueryTimeout))

	var validatorOpts []planner.ValidatorOption
	if cfg.MaxLimit > 0 {
		validatorOpts = append(validatorOpts, planner.WithMaxLimit(cfg.MaxLimit))
	}

	engine := service.NewEngine(
		deps.Catalog,
		planner.NewResolver(deps.Catalog, deps.Scorer),
		planner.NewValidator(deps.Catalog, validatorOpts...),
		sqlbuilder.NewBuilder(deps.Catalog),
		exec,
		resultCache,
		auditRepo,
		deps.Logger,
		service.WithCacheTTL(cfg.CacheTTL),
	)

	return &App{
		Engine:  engine,
		Audit:   auditRepo,
		Janitor: janitor,
	}, nil
}
