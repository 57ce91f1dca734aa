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
	"github.com/pledgewatch/pledgewatch/internal/service"
)

type NewsService interface {
	Ingest(ctx context.Context, input service.NewsIngestInput) (*domain.NewsArticle, error)
	Recent(ctx context.Context, companyName string, limit int) ([]*domain.NewsArticle, error)
}

type NewsHandler struct {
	svc NewsService
}

func NewNewsHandler(svc NewsService) *NewsHandler {
	return &NewsHandler{svc: svc}
}

type IngestNewsRequest struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Severity    string `json:"severity"`
}

type NewsResponse struct {
	ID             string   `json:"id"`
	CompanyID      string   `json:"company_id"`
	Title          string   `json:"title"`
	Content        string   `json:"content,omitempty"`
	URL            string   `json:"url,omitempty"`
	Source         string   `json:"source,omitempty"`
	PublishedAt    string   `json:"published_at"`
	SentimentScore float64  `json:"sentiment_score"`
	RelevanceScore float64  `json:"relevance_score"`
	Severity       string   `json:"severity"`
	Keywords       []string `json:"keywords,omitempty"`
}

func newsToResponse(a *domain.NewsArticle) *NewsResponse {
	return &NewsResponse{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		Title:          a.Title,
		Content:        a.Content,
		URL:            a.URL,
		Source:         a.Source,
		PublishedAt:    a.PublishedAt.Format(time.RFC3339),
		SentimentScore: a.SentimentScore,
		RelevanceScore: a.RelevanceScore,
		Severity:       string(a.Severity),
		Keywords:       a.Keywords,
	}
}

func (h *NewsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Company == "" {
		api.Error(w, http.StatusBadRequest, "company is required")
		return
	}
	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	var publishedAt time.Time
	if req.PublishedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "published_at must be RFC3339")
			return
		}
		publishedAt = parsed
	}

	article, err := h.svc.Ingest(r.Context(), service.NewsIngestInput{
		CompanyName: req.Company,
		Title:       req.Title,
		Content:     req.Content,
		URL:         req.URL,
		Source:      req.Source,
		PublishedAt: publishedAt,
		Severity:    req.Severity,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, newsToResponse(article))
}

func (h *NewsHandler) RecentByCompany(w http.ResponseWriter, r *http.Request) {
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

	articles, err := h.svc.Recent(r.Context(), name, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*NewsResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, newsToResponse(a))
	}
	api.Success(w, http.StatusOK, resp)
}
