package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/leadcrm/internal/config"
	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/ingestion"
	"github.com/rpattn/leadcrm/internal/leads"
	"github.com/rpattn/leadcrm/internal/middleware"
	"github.com/rpattn/leadcrm/internal/repository"
)

type memoryStore struct {
	inserted []domain.Lead
}

func (m *memoryStore) Acquire(ctx context.Context) (repository.LeadSession, error) { return m, nil }

func (m *memoryStore) InsertLead(ctx context.Context, lead domain.Lead) (int64, error) {
	m.inserted = append(m.inserted, lead)
	return int64(len(m.inserted)), nil
}

func (m *memoryStore) Release() error { return nil }

type emptyLeadRepo struct{}

func (emptyLeadRepo) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	return lead, nil
}

func (emptyLeadRepo) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	return domain.Lead{}, repository.ErrNotFound
}

func (emptyLeadRepo) List(ctx context.Context, filter domain.LeadFilter, limit int, offset int) ([]domain.Lead, int, error) {
	return []domain.Lead{}, 0, nil
}

func (emptyLeadRepo) UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus) (domain.Lead, error) {
	return domain.Lead{}, repository.ErrNotFound
}

func (emptyLeadRepo) Reassign(ctx context.Context, id int64, employeeID string) (domain.Lead, error) {
	return domain.Lead{}, repository.ErrNotFound
}

func (emptyLeadRepo) AssignMany(ctx context.Context, ids []int64, employeeID string) (int64, error) {
	return 0, repository.ErrNotFound
}

type emptyEmployeeRepo struct{}

func (emptyEmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	return []domain.Employee{}, nil
}

func (emptyEmployeeRepo) GetByEmployeeIDs(ctx context.Context, ids []string) ([]domain.Employee, error) {
	return nil, nil
}

func (emptyEmployeeRepo) Upsert(ctx context.Context, employees []domain.Employee) (int, error) {
	return len(employees), nil
}

func newTestRouter(t *testing.T, cfg config.Config) (http.Handler, *memoryStore) {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := &memoryStore{}
	registry := prometheus.NewRegistry()
	ingest := ingestion.NewService(store, nil, ingestion.WithLogger(log), ingestion.WithMetrics(ingestion.NewMetrics(registry)))

	return newRouter(routerDeps{
		cfg:       cfg,
		log:       log,
		ingest:    ingest,
		leads:     leads.NewService(emptyLeadRepo{}, emptyEmployeeRepo{}, log),
		employees: emptyEmployeeRepo{},
		gatherer:  registry,
	}), store
}

func upload(t *testing.T, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/leads/upload-csv", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, config.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestUploadRouteIsWired(t *testing.T) {
	router, store := newTestRouter(t, config.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "Customer Name,Mobile Number\nAsha,9876543210\n"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"processedCount":1,"failedCount":0,"failedRows":[]}`, rec.Body.String())
	assert.Len(t, store.inserted, 1)
}

func TestUploadRouteIsRateLimited(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.UploadRPS = 0.001
	cfg.RateLimit.UploadBurst = 1
	router, _ := newTestRouter(t, cfg)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, upload(t, "Customer Name,Mobile Number\n"))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, upload(t, "Customer Name,Mobile Number\n"))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, config.Default())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "Customer Name,Mobile Number\nAsha,9876543210\n"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leadcrm_ingestion_rows_total")
}

func TestMetricsCanBeDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	router, _ := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflightForConsole(t *testing.T) {
	router, _ := newTestRouter(t, config.Default())

	req := httptest.NewRequest(http.MethodOptions, "/api/leads/upload-csv", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRootCommandWiresSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["seed-employees"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}
