package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pledgewatch/pledgewatch/internal/api"
	"github.com/pledgewatch/pledgewatch/internal/api/handlers"
	"github.com/pledgewatch/pledgewatch/internal/api/middleware"
)

type RouterConfig struct {
	CompanyHandler  *handlers.CompanyHandler
	DocumentHandler *handlers.DocumentHandler
	NewsHandler     *handlers.NewsHandler
	AnalysisHandler *handlers.AnalysisHandler
	AlertHandler    *handlers.AlertHandler
	WebSocket       http.HandlerFunc
	Health          http.HandlerFunc
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	health := cfg.Health
	if health == nil {
		health = func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		}
	}
	r.Get("/health", health)

	r.Route("/companies", func(r chi.Router) {
		r.Post("/", cfg.CompanyHandler.Create)
		r.Get("/", cfg.CompanyHandler.List)
		r.Get("/{name}", cfg.CompanyHandler.Get)
		r.Get("/{name}/stats", cfg.CompanyHandler.Stats)
		r.Get("/{name}/documents", cfg.DocumentHandler.ListByCompany)
		r.Get("/{name}/news", cfg.NewsHandler.RecentByCompany)
		r.Get("/{name}/analyses", cfg.AnalysisHandler.HistoryByCompany)
	})

	r.Post("/upload-document", cfg.DocumentHandler.Upload)
	r.Post("/news", cfg.NewsHandler.Ingest)
	r.Post("/analyze", cfg.AnalysisHandler.Analyze)

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", cfg.AlertHandler.ListUnread)
		r.Post("/{id}/read", cfg.AlertHandler.MarkRead)
	})

	if cfg.WebSocket != nil {
		r.Get("/ws", cfg.WebSocket)
	}

	return r
}
