package api

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"askdata/internal/catalog"
	"askdata/internal/domain"
	"askdata/internal/planner"
	"askdata/internal/service"
	"askdata/internal/sqlbuilder"
)

type stubExecutor struct {
	rs  *domain.ResultSet
	err error
}

func (s *stubExecutor) Query(ctx context.Context, sqlText string, params []interface{}) (*domain.ResultSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rs, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) (*domain.ResultSet, bool) { return nil, false }
func (noopCache) Put(ctx context.Context, key string, rs *domain.ResultSet, ttl time.Duration) {
}
func (noopCache) PurgeExpired(ctx context.Context) (int64, error) { return 0, nil }

type stubAudit struct {
	records []domain.AuditRecord
	total   int64
	err     error
}

func (s *stubAudit) Insert(ctx context.Context, rec *domain.AuditRecord) error { return nil }

func (s *stubAudit) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.records, s.total, nil
}

func newTestServer(t *testing.T, exec domain.RowExecutor, audit domain.AuditRepository) *httptest.Server {
	t.Helper()

	cat, err := catalog.Load("")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	engine := service.NewEngine(
		cat,
		planner.NewResolver(cat, nil),
		planner.NewValidator(cat),
		sqlbuilder.NewBuilder(cat),
		exec,
		noopCache{},
		audit,
		logger,
	)

	r := chi.NewRouter()
	NewHandler(engine, cat, audit, logger).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}
