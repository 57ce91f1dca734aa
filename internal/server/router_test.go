package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pledgewatch/pledgewatch/internal/api/handlers"
	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/service"
)

type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) Create(ctx context.Context, input service.CreateCompanyInput) (*domain.Company, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) List(ctx context.Context) ([]*domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Company), args.Error(1)
}

func (m *MockCompanyService) Stats(ctx context.Context, name string) (*domain.CompanyStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyStats), args.Error(1)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Alert), args.Error(1)
}

func (m *MockAlertService) MarkRead(ctx context.Context, alertID string) error {
	args := m.Called(ctx, alertID)
	return args.Error(0)
}

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, companyName, query string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, companyName, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) History(ctx context.Context, companyName string, limit int) ([]*domain.AnalysisResult, error) {
	args := m.Called(ctx, companyName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalysisResult), args.Error(1)
}

type MockNewsService struct {
	mock.Mock
}

func (m *MockNewsService) Ingest(ctx context.Context, input service.NewsIngestInput) (*domain.NewsArticle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NewsArticle), args.Error(1)
}

func (m *MockNewsService) Recent(ctx context.Context, companyName string, limit int) ([]*domain.NewsArticle, error) {
	args := m.Called(ctx, companyName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NewsArticle), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, input service.IngestDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListByCompany(ctx context.Context, companyName string) ([]*domain.Document, error) {
	args := m.Called(ctx, companyName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func newTestRouter(companySvc *MockCompanyService, newsSvc *MockNewsService, analysisSvc *MockAnalysisService, alertSvc *MockAlertService, docSvc *MockDocumentService) http.Handler {
	return NewRouter(RouterConfig{
		CompanyHandler:  handlers.NewCompanyHandler(companySvc),
		DocumentHandler: handlers.NewDocumentHandler(docSvc),
		NewsHandler:     handlers.NewNewsHandler(newsSvc),
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc),
		AlertHandler:    handlers.NewAlertHandler(alertSvc),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockCompanyService), new(MockNewsService), new(MockAnalysisService), new(MockAlertService), new(MockDocumentService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data["status"])
}

func TestRouter_Routes(t *testing.T) {
	company := &domain.Company{ID: "company-1", Name: "TechCorp", CreatedAt: time.Now().UTC()}

	t.Run("company routes are wired", func(t *testing.T) {
		companySvc := new(MockCompanyService)
		companySvc.On("List", mock.Anything).Return([]*domain.Company{company}, nil)
		companySvc.On("GetByName", mock.Anything, "TechCorp").Return(company, nil)

		router := newTestRouter(companySvc, new(MockNewsService), new(MockAnalysisService), new(MockAlertService), new(MockDocumentService))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/TechCorp", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("analyze route is wired", func(t *testing.T) {
		analysisSvc := new(MockAnalysisService)
		analysisSvc.On("Analyze", mock.Anything, "TechCorp", "").Return(&domain.AnalysisResult{
			ID:        "result-1",
			CompanyID: "company-1",
			Level:     domain.ContradictionNone,
			CreatedAt: time.Now().UTC(),
		}, nil)

		router := newTestRouter(new(MockCompanyService), new(MockNewsService), analysisSvc, new(MockAlertService), new(MockDocumentService))

		body, _ := json.Marshal(map[string]string{"company": "TechCorp"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("alerts routes are wired", func(t *testing.T) {
		alertSvc := new(MockAlertService)
		alertSvc.On("ListUnread", mock.Anything, "").Return([]*domain.Alert{}, nil)
		alertSvc.On("MarkRead", mock.Anything, "alert-1").Return(nil)

		router := newTestRouter(new(MockCompanyService), new(MockNewsService), new(MockAnalysisService), alertSvc, new(MockDocumentService))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alerts/alert-1/read", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown route returns 404", func(t *testing.T) {
		router := newTestRouter(new(MockCompanyService), new(MockNewsService), new(MockAnalysisService), new(MockAlertService), new(MockDocumentService))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("request id header is set", func(t *testing.T) {
		router := newTestRouter(new(MockCompanyService), new(MockNewsService), new(MockAnalysisService), new(MockAlertService), new(MockDocumentService))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}
