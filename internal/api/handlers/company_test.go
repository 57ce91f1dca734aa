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

func newTestCompany() *domain.Company {
	return &domain.Company{
		ID:        "company-1",
		Name:      "TechCorp",
		Industry:  "Technology",
		CreatedAt: time.Now().UTC(),
	}
}

func companyRouter(h *CompanyHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/companies", h.Create)
	r.Get("/companies", h.List)
	r.Get("/companies/{name}", h.Get)
	r.Get("/companies/{name}/stats", h.Stats)
	return r
}

func TestCompanyHandler_Create(t *testing.T) {
	t.Run("creates a company", func(t *testing.T) {
		svc := new(MockCompanyService)
		svc.On("Create", mock.Anything, service.CreateCompanyInput{
			Name:     "TechCorp",
			Industry: "Technology",
		}).Return(newTestCompany(), nil)

		body, _ := json.Marshal(CreateCompanyRequest{Name: "TechCorp", Industry: "Technology"})
		req := httptest.NewRequest(http.MethodPost, "/companies", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Data CompanyResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "company-1", resp.Data.ID)
		assert.Equal(t, "TechCorp", resp.Data.Name)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		svc := new(MockCompanyService)

		req := httptest.NewRequest(http.MethodPost, "/companies", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate company maps to 409", func(t *testing.T) {
		svc := new(MockCompanyService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrCompanyAlreadyExists)

		body, _ := json.Marshal(CreateCompanyRequest{Name: "TechCorp"})
		req := httptest.NewRequest(http.MethodPost, "/companies", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		svc := new(MockCompanyService)

		req := httptest.NewRequest(http.MethodPost, "/companies", bytes.NewReader([]byte(`{not json`)))
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCompanyHandler_Get(t *testing.T) {
	t.Run("unknown company maps to 404", func(t *testing.T) {
		svc := new(MockCompanyService)
		svc.On("GetByName", mock.Anything, "ghost").Return(nil, domain.ErrCompanyNotFound)

		req := httptest.NewRequest(http.MethodGet, "/companies/ghost", nil)
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCompanyHandler_Stats(t *testing.T) {
	t.Run("returns aggregate counts", func(t *testing.T) {
		svc := new(MockCompanyService)
		svc.On("Stats", mock.Anything, "TechCorp").Return(&domain.CompanyStats{
			CompanyName:        "TechCorp",
			DocumentCount:      2,
			NewsCount:          7,
			AnalysisCount:      3,
			LatestContradLevel: domain.ContradictionHigh,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/companies/TechCorp/stats", nil)
		rec := httptest.NewRecorder()

		companyRouter(NewCompanyHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data CompanyStatsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 7, resp.Data.NewsCount)
		assert.Equal(t, "HIGH", resp.Data.LatestContradLevel)
	})
}
