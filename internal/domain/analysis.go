package domain

import (
	"fmt"
	"time"
)

// ContradictionLevel is the ordinal severity of a detected inconsistency
// between stated commitments and observed actions.
type ContradictionLevel string

const (
	ContradictionNone   ContradictionLevel = "NONE"
	ContradictionLow    ContradictionLevel = "LOW"
	ContradictionMedium ContradictionLevel = "MEDIUM"
	ContradictionHigh   ContradictionLevel = "HIGH"
)

// AnalysisResult is the outcome of one analyzer invocation. Results are
// created exactly once and never mutated; history per company is
// append-only.
type AnalysisResult struct {
	ID                 string
	CompanyID          string
	Query              string
	Level              ContradictionLevel
	ConfidenceScore    float64 // [0, 1]
	Analysis           string
	KeyContradictions  []string
	PromisesExcerpt    string
	ActionsExcerpt     string
	Fallback           bool // true when produced by the heuristic scorer
	CreatedAt          time.Time
}

// ValidateAnalysisResult validates an AnalysisResult instance
func ValidateAnalysisResult(r *AnalysisResult) error {
	if r == nil {
		return fmt.Errorf("analysis result cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("analysis result ID is required")
	}

	if r.CompanyID == "" {
		return fmt.Errorf("analysis result CompanyID is required")
	}

	if !IsValidContradictionLevel(r.Level) {
		return ErrInvalidContradictionLevel
	}

	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return ErrInvalidConfidenceScore
	}

	// Key contradictions accompany a finding, never a clean result.
	if r.Level == ContradictionNone && len(r.KeyContradictions) > 0 {
		return fmt.Errorf("key contradictions must be empty when level is NONE")
	}

	return nil
}

// IsValidContradictionLevel checks if a ContradictionLevel is valid
func IsValidContradictionLevel(l ContradictionLevel) bool {
	switch l {
	case ContradictionNone, ContradictionLow, ContradictionMedium, ContradictionHigh:
		return true
	}
	return false
}

// LevelRank orders contradiction levels for comparisons (NONE < LOW < MEDIUM < HIGH).
func LevelRank(l ContradictionLevel) int {
	switch l {
	case ContradictionLow:
		return 1
	case ContradictionMedium:
		return 2
	case ContradictionHigh:
		return 3
	default:
		return 0
	}
}
