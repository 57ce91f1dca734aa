package domain

import (
	"fmt"
	"time"
)

// Severity represents the severity of a news item
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// NewsArticle represents an ingested news item about a company.
// Articles are immutable after ingestion.
type NewsArticle struct {
	ID             string
	CompanyID      string
	Title          string
	Content        string
	URL            string
	Source         string
	PublishedAt    time.Time
	SentimentScore float64 // [-1, 1]
	RelevanceScore float64 // [0, 1]
	Severity       Severity
	Keywords       []string
	CreatedAt      time.Time
}

// ValidateNewsArticle validates a NewsArticle instance
func ValidateNewsArticle(a *NewsArticle) error {
	if a == nil {
		return fmt.Errorf("news article cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("news article ID is required")
	}

	if a.CompanyID == "" {
		return fmt.Errorf("news article CompanyID is required")
	}

	if a.Title == "" {
		return fmt.Errorf("news article Title is required")
	}

	if !IsValidSeverity(a.Severity) {
		return fmt.Errorf("news article Severity is invalid: %s", a.Severity)
	}

	if a.SentimentScore < -1 || a.SentimentScore > 1 {
		return ErrInvalidSentimentScore
	}

	return nil
}

// IsValidSeverity checks if a Severity is valid
func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
