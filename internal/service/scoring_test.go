package service

import (
	"testing"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAssessSeverity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected domain.Severity
	}{
		{"high keyword", "TechCorp fined for toxic dumping", domain.SeverityHigh},
		{"lawsuit", "Company sued over data practices", domain.SeverityHigh},
		{"medium keyword", "TechCorp announces layoffs amid restructuring", domain.SeverityMedium},
		{"boycott", "Consumers call for boycott of retailer", domain.SeverityMedium},
		{"benign", "TechCorp announces record partnership and expansion", domain.SeverityLow},
		{"high outranks medium", "Layoffs follow fraud investigation", domain.SeverityHigh},
		{"empty", "", domain.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, assessSeverity(tt.text))
		})
	}
}

func TestCalculateSentiment(t *testing.T) {
	assert.Equal(t, 0.0, calculateSentiment(""))

	positive := calculateSentiment("Record success and growth this quarter, excellent profit")
	assert.Greater(t, positive, 0.0)

	negative := calculateSentiment("Scandal and crisis deepen after loss")
	assert.Less(t, negative, 0.0)

	// Clamped to [-1, 1].
	extreme := calculateSentiment("scandal crisis loss failure bad negative problem controversy")
	assert.GreaterOrEqual(t, extreme, -1.0)
}

func TestCalculateRelevance(t *testing.T) {
	assert.Equal(t, 0.0, calculateRelevance("unrelated text", "TechCorp"))

	r := calculateRelevance("TechCorp reports earnings; TechCorp stock up", "TechCorp")
	assert.Equal(t, 1.0, r)

	partial := calculateRelevance("TechCorp in the news", "TechCorp")
	assert.InDelta(t, 0.5, partial, 0.001)
}

func TestExtractKeywords(t *testing.T) {
	kws := extractKeywords("TechCorp fined after fraud investigation triggers layoffs")
	assert.Contains(t, kws, "fraud")
	assert.Contains(t, kws, "investigation")
	assert.Contains(t, kws, "layoffs")
	assert.NotContains(t, kws, "boycott")

	// No duplicates.
	seen := map[string]int{}
	for _, k := range kws {
		seen[k]++
		assert.Equal(t, 1, seen[k])
	}
}
