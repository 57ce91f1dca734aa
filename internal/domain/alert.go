package domain

import (
	"fmt"
	"time"
)

// AlertType distinguishes what produced an alert
type AlertType string

const (
	AlertTypeContradiction AlertType = "CONTRADICTION"
	AlertTypeNews          AlertType = "NEWS"
)

// Alert is a deduplicated finding surfaced to subscribers. Read is the
// only mutable field; everything else is fixed at creation.
type Alert struct {
	ID             string
	CompanyID      string
	CompanyName    string
	Type           AlertType
	Level          Severity
	Title          string
	Message        string
	SourceResultID string // analysis result or news article that produced it
	Read           bool
	CreatedAt      time.Time
}

// ValidateAlert validates an Alert instance
func ValidateAlert(a *Alert) error {
	if a == nil {
		return fmt.Errorf("alert cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("alert ID is required")
	}

	if a.CompanyID == "" {
		return fmt.Errorf("alert CompanyID is required")
	}

	if !IsValidSeverity(a.Level) {
		return ErrInvalidSeverity
	}

	if !isValidAlertType(a.Type) {
		return fmt.Errorf("alert Type is invalid: %s", a.Type)
	}

	return nil
}

// isValidAlertType checks if an AlertType is valid
func isValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypeContradiction, AlertTypeNews:
		return true
	}
	return false
}
