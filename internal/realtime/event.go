// Package realtime fans pipeline events out to WebSocket subscribers.
// Connections receive a bounded replay of recent alerts on attach, then
// live events in generation order.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// Event types on the wire.
const (
	EventTypeAlert            = "alert"
	EventTypeNewsUpdate       = "news_update"
	EventTypeAnalysisComplete = "analysis_complete"
)

// Event is the wire envelope for one broadcast message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type alertPayload struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Type        string `json:"alert_type"`
	Level       string `json:"level"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
}

type newsPayload struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"company_id"`
	Title       string   `json:"title"`
	Source      string   `json:"source,omitempty"`
	Severity    string   `json:"severity"`
	Sentiment   float64  `json:"sentiment_score"`
	Relevance   float64  `json:"relevance_score"`
	Keywords    []string `json:"keywords,omitempty"`
	PublishedAt string   `json:"published_at"`
}

type analysisPayload struct {
	ID                string   `json:"id"`
	CompanyID         string   `json:"company_id"`
	Level             string   `json:"contradiction_level"`
	ConfidenceScore   float64  `json:"confidence_score"`
	Analysis          string   `json:"analysis"`
	KeyContradictions []string `json:"key_contradictions,omitempty"`
	Fallback          bool     `json:"fallback"`
	CreatedAt         string   `json:"created_at"`
}

// NewAlertEvent wraps an alert for the wire.
func NewAlertEvent(alert *domain.Alert) Event {
	payload, _ := json.Marshal(alertPayload{
		ID:          alert.ID,
		CompanyID:   alert.CompanyID,
		CompanyName: alert.CompanyName,
		Type:        string(alert.Type),
		Level:       string(alert.Level),
		Title:       alert.Title,
		Message:     alert.Message,
		CreatedAt:   alert.CreatedAt.Format(time.RFC3339),
	})
	return Event{Type: EventTypeAlert, Payload: payload}
}

// NewNewsEvent wraps an ingested article for the wire.
func NewNewsEvent(article *domain.NewsArticle) Event {
	payload, _ := json.Marshal(newsPayload{
		ID:          article.ID,
		CompanyID:   article.CompanyID,
		Title:       article.Title,
		Source:      article.Source,
		Severity:    string(article.Severity),
		Sentiment:   article.SentimentScore,
		Relevance:   article.RelevanceScore,
		Keywords:    article.Keywords,
		PublishedAt: article.PublishedAt.Format(time.RFC3339),
	})
	return Event{Type: EventTypeNewsUpdate, Payload: payload}
}

// NewAnalysisEvent wraps a completed analysis for the wire.
func NewAnalysisEvent(result *domain.AnalysisResult) Event {
	payload, _ := json.Marshal(analysisPayload{
		ID:                result.ID,
		CompanyID:         result.CompanyID,
		Level:             string(result.Level),
		ConfidenceScore:   result.ConfidenceScore,
		Analysis:          result.Analysis,
		KeyContradictions: result.KeyContradictions,
		Fallback:          result.Fallback,
		CreatedAt:         result.CreatedAt.Format(time.RFC3339),
	})
	return Event{Type: EventTypeAnalysisComplete, Payload: payload}
}
