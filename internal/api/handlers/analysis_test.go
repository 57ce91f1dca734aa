package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

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

func analysisRouter(h *AnalysisHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/analyze", h.Analyze)
	r.Get("/companies/{name}/analyses", h.HistoryByCompany)
	return r
}

func newTestResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:                "result-1",
		CompanyID:         "company-1",
		Query:             "toxic waste commitments",
		Level:             domain.ContradictionHigh,
		ConfidenceScore:   0.85,
		Analysis:          "Pledged zero waste while dumping it.",
		KeyContradictions: []string{"zero waste pledge vs dumping report"},
		Fallback:          false,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	t.Run("runs an analysis", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("Analyze", mock.Anything, "TechCorp", "toxic waste commitments").Return(newTestResult(), nil)

		body, _ := json.Marshal(AnalyzeRequest{Company: "TechCorp", Query: "toxic waste commitments"})
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		analysisRouter(NewAnalysisHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data AnalysisResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "HIGH", resp.Data.Level)
		assert.Equal(t, 0.85, resp.Data.ConfidenceScore)
		assert.False(t, resp.Data.Fallback)
	})

	t.Run("missing company is rejected", func(t *testing.T) {
		svc := new(MockAnalysisService)

		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte(`{"query":"q"}`)))
		rec := httptest.NewRecorder()

		analysisRouter(NewAnalysisHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown company maps to 404", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("Analyze", mock.Anything, "ghost", "").Return(nil, domain.ErrCompanyNotFound)

		body, _ := json.Marshal(AnalyzeRequest{Company: "ghost"})
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		analysisRouter(NewAnalysisHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAnalysisHandler_HistoryByCompany(t *testing.T) {
	t.Run("returns history with an explicit limit", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("History", mock.Anything, "TechCorp", 5).Return([]*domain.AnalysisResult{newTestResult()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/companies/TechCorp/analyses?limit=5", nil)
		rec := httptest.NewRecorder()

		analysisRouter(NewAnalysisHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []AnalysisResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "result-1", resp.Data[0].ID)
	})

	t.Run("non-numeric limit is rejected", func(t *testing.T) {
		svc := new(MockAnalysisService)

		req := httptest.NewRequest(http.MethodGet, "/companies/TechCorp/analyses?limit=lots", nil)
		rec := httptest.NewRecorder()

		analysisRouter(NewAnalysisHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
