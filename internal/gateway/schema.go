package gateway

import (
	"encoding/json"
	"strings"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// assessmentResponse is the strict wire schema expected from the
// reasoning provider. Anything that does not validate is rejected and
// routed to the fallback; untyped fields never flow downstream.
type assessmentResponse struct {
	ContradictionLevel string   `json:"contradiction_level"`
	ConfidenceScore    *float64 `json:"confidence_score"`
	Analysis           string   `json:"analysis"`
	KeyContradictions  []string `json:"key_contradictions"`
}

// parsedAssessment is a validated assessment
type parsedAssessment struct {
	Level             domain.ContradictionLevel
	ConfidenceScore   float64
	Analysis          string
	KeyContradictions []string
}

// parseAssessment extracts and validates the JSON assessment from the
// provider's response text. Providers occasionally wrap the JSON in
// prose, so the outermost braces are located first.
func parseAssessment(response string) (*parsedAssessment, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, domain.ErrGatewaySchemaInvalid
	}

	var raw assessmentResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGatewaySchema, "malformed assessment JSON", err)
	}

	level := domain.ContradictionLevel(strings.ToUpper(strings.TrimSpace(raw.ContradictionLevel)))
	if !domain.IsValidContradictionLevel(level) {
		return nil, domain.ErrGatewaySchemaInvalid
	}

	if raw.ConfidenceScore == nil || *raw.ConfidenceScore < 0 || *raw.ConfidenceScore > 1 {
		return nil, domain.ErrGatewaySchemaInvalid
	}

	if strings.TrimSpace(raw.Analysis) == "" {
		return nil, domain.ErrGatewaySchemaInvalid
	}

	contradictions := make([]string, 0, len(raw.KeyContradictions))
	for _, c := range raw.KeyContradictions {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			contradictions = append(contradictions, trimmed)
		}
	}

	// A clean verdict cannot carry findings.
	if level == domain.ContradictionNone && len(contradictions) > 0 {
		return nil, domain.ErrGatewaySchemaInvalid
	}

	return &parsedAssessment{
		Level:             level,
		ConfidenceScore:   *raw.ConfidenceScore,
		Analysis:          raw.Analysis,
		KeyContradictions: contradictions,
	}, nil
}
