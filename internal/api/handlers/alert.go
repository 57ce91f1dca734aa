package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pledgewatch/pledgewatch/internal/api"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type AlertService interface {
	ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error)
	MarkRead(ctx context.Context, alertID string) error
}

type AlertHandler struct {
	svc AlertService
}

func NewAlertHandler(svc AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

type AlertResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Type        string `json:"alert_type"`
	Level       string `json:"level"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

func alertToResponse(a *domain.Alert) *AlertResponse {
	return &AlertResponse{
		ID:          a.ID,
		CompanyID:   a.CompanyID,
		CompanyName: a.CompanyName,
		Type:        string(a.Type),
		Level:       string(a.Level),
		Title:       a.Title,
		Message:     a.Message,
		Read:        a.Read,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AlertHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")

	alerts, err := h.svc.ListUnread(r.Context(), companyID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, alertToResponse(a))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "read"})
}
