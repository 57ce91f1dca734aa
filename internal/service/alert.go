package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// DefaultConfidenceThreshold gates alerting on MEDIUM-level findings
const DefaultConfidenceThreshold = 0.5

// AlertConfig controls alert classification
type AlertConfig struct {
	Cooldown            time.Duration
	ConfidenceThreshold float64
}

// AlertService maps analysis results and high-severity news into
// deduplicated alerts. A finding for a company/severity tier already
// alerted inside the cool-down window is suppressed.
type AlertService struct {
	alerts      AlertRepositoryInterface
	broadcaster Broadcaster
	cooldown    *cooldownCache
	threshold   float64
	uuidGen     UUIDGenerator
}

// NewAlertService creates a new AlertService instance
func NewAlertService(alerts AlertRepositoryInterface, broadcaster Broadcaster, cfg AlertConfig) *AlertService {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &AlertService{
		alerts:      alerts,
		broadcaster: broadcaster,
		cooldown:    newCooldownCache(cfg.Cooldown),
		threshold:   threshold,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// ClassifyResult turns an analysis result into an alert when it crosses
// the severity thresholds. Returns nil (and no error) when the result
// does not warrant one or the cool-down suppresses it.
func (s *AlertService) ClassifyResult(ctx context.Context, companyName string, result *domain.AnalysisResult) (*domain.Alert, error) {
	var level domain.Severity
	switch result.Level {
	case domain.ContradictionHigh:
		level = domain.SeverityHigh
	case domain.ContradictionMedium:
		if result.ConfidenceScore < s.threshold {
			return nil, nil
		}
		level = domain.SeverityMedium
	default:
		// LOW and NONE never alert.
		return nil, nil
	}

	alert := &domain.Alert{
		ID:             s.uuidGen.NewString(),
		CompanyID:      result.CompanyID,
		CompanyName:    companyName,
		Type:           domain.AlertTypeContradiction,
		Level:          level,
		Title:          fmt.Sprintf("Contradiction detected for %s", companyName),
		Message:        fmt.Sprintf("Analysis found %s level contradictions", result.Level),
		SourceResultID: result.ID,
		CreatedAt:      time.Now().UTC(),
	}
	return s.emit(ctx, alert)
}

// ClassifyArticle turns a high-severity news article into an alert.
// Lower severities never alert directly; they only feed analysis.
func (s *AlertService) ClassifyArticle(ctx context.Context, companyName string, article *domain.NewsArticle) (*domain.Alert, error) {
	if article.Severity != domain.SeverityHigh {
		return nil, nil
	}

	alert := &domain.Alert{
		ID:             s.uuidGen.NewString(),
		CompanyID:      article.CompanyID,
		CompanyName:    companyName,
		Type:           domain.AlertTypeNews,
		Level:          domain.SeverityHigh,
		Title:          fmt.Sprintf("High severity news for %s", companyName),
		Message:        article.Title,
		SourceResultID: article.ID,
		CreatedAt:      time.Now().UTC(),
	}
	return s.emit(ctx, alert)
}

func (s *AlertService) emit(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.emit", telemetry.SpanAttributes{
		Company:   alert.CompanyName,
		Operation: "alert",
	})
	defer span.End()

	if err := domain.ValidateAlert(alert); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid alert", err)
	}

	// Claim the window before persisting so concurrent classifications
	// of the same company and tier cannot both pass the gate.
	key := cooldownKey(alert.CompanyID, alert.Level)
	if !s.cooldown.TryMark(key) {
		return nil, nil
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		s.cooldown.Release(key)
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.AlertCreated(alert)
	}
	return alert, nil
}

// ListUnread returns unread alerts, optionally scoped to one company.
func (s *AlertService) ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error) {
	return s.alerts.ListUnread(ctx, companyID)
}

// MarkRead acknowledges an alert.
func (s *AlertService) MarkRead(ctx context.Context, alertID string) error {
	return s.alerts.MarkRead(ctx, alertID)
}

// RehydrateCooldown restores cool-down windows from persisted alerts so
// a restart does not re-alert inside an active window.
func (s *AlertService) RehydrateCooldown(ctx context.Context, companyIDs []string) error {
	levels := []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh}
	for _, companyID := range companyIDs {
		for _, level := range levels {
			created, err := s.alerts.LastCreated(ctx, companyID, level)
			if err != nil {
				return err
			}
			if !created.IsZero() {
				s.cooldown.MarkAt(cooldownKey(companyID, level), created)
			}
		}
	}
	return nil
}

func cooldownKey(companyID string, level domain.Severity) string {
	return companyID + "|" + string(level)
}
