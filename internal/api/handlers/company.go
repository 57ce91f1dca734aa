package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pledgewatch/pledgewatch/internal/api"
	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/service"
)

type CompanyService interface {
	Create(ctx context.Context, input service.CreateCompanyInput) (*domain.Company, error)
	GetByName(ctx context.Context, name string) (*domain.Company, error)
	List(ctx context.Context) ([]*domain.Company, error)
	Stats(ctx context.Context, name string) (*domain.CompanyStats, error)
}

type CompanyHandler struct {
	svc CompanyService
}

func NewCompanyHandler(svc CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Website     string `json:"website"`
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Website     string `json:"website,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type CompanyStatsResponse struct {
	CompanyName        string `json:"company_name"`
	DocumentCount      int    `json:"document_count"`
	NewsCount          int    `json:"news_count"`
	AnalysisCount      int    `json:"analysis_count"`
	LatestContradLevel string `json:"latest_contradiction_level,omitempty"`
}

func companyToResponse(c *domain.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Industry:    c.Industry,
		Website:     c.Website,
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	company, err := h.svc.Create(r.Context(), service.CreateCompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Website:     req.Website,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, companyToResponse(company))
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*CompanyResponse, 0, len(companies))
	for _, c := range companies {
		resp = append(resp, companyToResponse(c))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	company, err := h.svc.GetByName(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, companyToResponse(company))
}

func (h *CompanyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stats, err := h.svc.Stats(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &CompanyStatsResponse{
		CompanyName:        stats.CompanyName,
		DocumentCount:      stats.DocumentCount,
		NewsCount:          stats.NewsCount,
		AnalysisCount:      stats.AnalysisCount,
		LatestContradLevel: string(stats.LatestContradLevel),
	})
}
