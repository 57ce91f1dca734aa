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

type DocumentService interface {
	Ingest(ctx context.Context, input service.IngestDocumentInput) (*domain.Document, error)
	ListByCompany(ctx context.Context, companyName string) ([]*domain.Document, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type UploadDocumentRequest struct {
	Company string `json:"company"`
	Type    string `json:"document_type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type DocumentResponse struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	Type         string `json:"document_type"`
	Title        string `json:"title"`
	PassageCount int    `json:"passage_count"`
	CreatedAt    string `json:"created_at"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:           d.ID,
		CompanyID:    d.CompanyID,
		Type:         string(d.Type),
		Title:        d.Title,
		PassageCount: len(d.Passages),
		CreatedAt:    d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Company == "" {
		api.Error(w, http.StatusBadRequest, "company is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	docType := domain.DocumentType(req.Type)
	if req.Type == "" {
		docType = domain.DocumentTypeOther
	}

	doc, err := h.svc.Ingest(r.Context(), service.IngestDocumentInput{
		Company: req.Company,
		Type:    docType,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	docs, err := h.svc.ListByCompany(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, documentToResponse(d))
	}
	api.Success(w, http.StatusOK, resp)
}
