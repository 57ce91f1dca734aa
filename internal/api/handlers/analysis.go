package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pledgewatch/pledgewatch/internal/api"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type AnalysisService interface {
	Analyze(ctx context.Context, companyName, query string) (*domain.AnalysisResult, error)
	History(ctx context.Context, companyName string, limit int) ([]*domain.AnalysisResult, error)
}

type AnalysisHandler struct {
	svc AnalysisService
}

func NewAnalysisHandler(svc AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

type AnalyzeRequest struct {
	Company string `json:"company"`
	Query   string `json:"query"`
}

type AnalysisResponse struct {
	ID                string   `json:"id"`
	CompanyID         string   `json:"company_id"`
	Query             string   `json:"query"`
	Level             string   `json:"contradiction_level"`
	ConfidenceScore   float64  `json:"confidence_score"`
	Analysis          string   `json:"analysis"`
	KeyContradictions []string `json:"key_contradictions,omitempty"`
	PromisesExcerpt   string   `json:"promises_excerpt,omitempty"`
	ActionsExcerpt    string   `json:"actions_excerpt,omitempty"`
	Fallback          bool     `json:"fallback"`
	CreatedAt         string   `json:"created_at"`
}

func analysisToResponse(r *domain.AnalysisResult) *AnalysisResponse {
	return &AnalysisResponse{
		ID:                r.ID,
		CompanyID:         r.CompanyID,
		Query:             r.Query,
		Level:             string(r.Level),
		ConfidenceScore:   r.ConfidenceScore,
		Analysis:          r.Analysis,
		KeyContradictions: r.KeyContradictions,
		PromisesExcerpt:   r.PromisesExcerpt,
		ActionsExcerpt:    r.ActionsExcerpt,
		Fallback:          r.Fallback,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Company == "" {
		api.Error(w, http.StatusBadRequest, "company is required")
		return
	}

	result, err := h.svc.Analyze(r.Context(), req.Company, req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, analysisToResponse(result))
}

func (h *AnalysisHandler) HistoryByCompany(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	results, err := h.svc.History(r.Context(), name, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*AnalysisResponse, 0, len(results))
	for _, result := range results {
		resp = append(resp, analysisToResponse(result))
	}
	api.Success(w, http.StatusOK, resp)
}
