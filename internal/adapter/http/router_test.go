package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/adapter/http/handler"
	apimiddleware "github.com/iho/cashbook/internal/adapter/http/middleware"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/usecase"
	"github.com/iho/cashbook/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"entry_ids":["e1"],"confirmed_total":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected settlement to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.checkedKey != "/api/v1/settlements:key-123" {
		t.Fatalf("expected idempotency store to be used, got key %q", store.checkedKey)
	}
	if !store.updated {
		t.Fatalf("expected successful response to be stored")
	}
}

func TestNewRouter_ServesFinanceViews(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	for _, target := range []string{
		"/api/v1/finance/dashboard?period=2024-02&as_of=2024-02-15",
		"/api/v1/finance/summary?period=2024-02",
		"/api/v1/finance/delinquency?as_of=2024-02-15",
		"/api/v1/finance/statement?period=2024-02&filter=INFLOW",
		"/api/v1/entries?period=2024-02",
		"/api/v1/settlements/status",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `cashbook_http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Fatalf("expected request counter in metrics output, got:\n%s", rec.Body.String())
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.CORSAllowedOrigins = []string{"http://localhost:5173"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/settlements", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", apimiddleware.IdempotencyKeyHeader)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/finance/dashboard",
		"GET /api/v1/finance/summary",
		"GET /api/v1/finance/delinquency",
		"GET /api/v1/finance/statement",
		"POST /api/v1/entries/",
		"GET /api/v1/entries/",
		"DELETE /api/v1/entries/{id}",
		"POST /api/v1/settlements/",
		"POST /api/v1/settlements/quote",
		"GET /api/v1/settlements/status",
		"POST /api/v1/invoices/recurring",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

// newRouterConfig wires real use cases over in-memory fakes holding one
// overdue inflow of 100.
func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	logger := zerolog.Nop()
	entryRepo := mocks.NewFakeEntryRepository(&domain.Entry{
		ID:            "e1",
		Description:   "Monthly retainer",
		Amount:        decimal.NewFromInt(100),
		Direction:     domain.DirectionInflow,
		Category:      domain.CategoryContract,
		DueDate:       time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentPix,
	})
	clientRepo := mocks.NewFakeClientRepository()
	outboxRepo := mocks.NewFakeOutboxRepository()
	txManager := mocks.NewFakeTxManager()
	idGen := mocks.NewSequenceIDGenerator("id")

	snapshots := usecase.NewSnapshotStore(entryRepo, clientRepo, usecase.SnapshotConfig{}, logger, nil)
	dashboardUC := usecase.NewDashboardUseCase(snapshots)
	entryUC := usecase.NewEntryUseCase(txManager, entryRepo, clientRepo, outboxRepo, idGen, snapshots, logger, nil)
	settlementUC := usecase.NewSettlementUseCase(txManager, entryRepo, outboxRepo, idGen, nil, mocks.NewFakeLocker(),
		snapshots, usecase.SettlementConfig{}, logger, nil)
	invoiceUC := usecase.NewRecurringInvoiceUseCase(txManager, stubInvoiceGenerator{}, outboxRepo, idGen, snapshots, logger, nil)

	cfg := RouterConfig{
		FinanceHandler:    handler.NewFinanceHandler(dashboardUC),
		EntryHandler:      handler.NewEntryHandler(entryUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		InvoiceHandler:    handler.NewInvoiceHandler(invoiceUC),
		HealthHandler:     handler.NewHealthHandlerWithChecks(),
		Logger:            logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubInvoiceGenerator struct{}

func (stubInvoiceGenerator) Generate(ctx context.Context, tx usecase.Transaction, period domain.Period, createdAt time.Time) (int, error) {
	return 0, nil
}

type stubIdempotencyStore struct {
	checkedKey string
	updated    bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkedKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updated = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
