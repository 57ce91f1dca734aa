package gateway

import (
	"fmt"
	"strings"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

const (
	// FallbackConfidenceCap keeps heuristic confidence strictly below
	// what the primary path can report, signalling reduced reliability.
	FallbackConfidenceCap = 0.6

	maxReportedContradictions = 3
)

// negativeKeywords flag concerning actions in news content. High-weight
// keywords escalate a finding straight to HIGH.
var negativeKeywords = []struct {
	word       string
	highWeight bool
}{
	{"lawsuit", true},
	{"fraud", true},
	{"fine", true},
	{"fined", true},
	{"violation", true},
	{"illegal", true},
	{"criminal", true},
	{"dumping", true},
	{"toxic", true},
	{"penalty", false},
	{"scandal", false},
	{"layoffs", false},
	{"discrimination", false},
	{"pollution", false},
	{"breach", false},
	{"investigation", false},
	{"charges", false},
	{"misconduct", false},
	{"abuse", false},
	{"exploit", false},
}

// commitmentKeywords identify promise language in document passages
var commitmentKeywords = []string{
	"commit",
	"pledge",
	"promise",
	"value",
	"ethical",
	"responsible",
	"sustainable",
	"inclusive",
	"transparent",
	"integrity",
	"compliance",
	"mission",
}

// scoreHeuristic is the deterministic fallback scorer: plain keyword
// co-occurrence between negative-action language in articles and
// commitment language in passages. No semantic matching.
func scoreHeuristic(input AssessmentInput) *domain.AnalysisResult {
	commitment := findCommitmentKeyword(input.Passages)

	var (
		flagged        int
		hasHighWeight  bool
		contradictions []string
	)

	if commitment != "" {
		for _, article := range input.Articles {
			text := strings.ToLower(article.Title + " " + article.Content)
			for _, kw := range negativeKeywords {
				if !strings.Contains(text, kw.word) {
					continue
				}
				flagged++
				if kw.highWeight {
					hasHighWeight = true
				}
				if len(contradictions) < maxReportedContradictions {
					contradictions = append(contradictions,
						fmt.Sprintf("%s: evidence of %q against stated commitment (%q)", article.Title, kw.word, commitment))
				}
				break // one flag per article
			}
		}
	}

	level := levelFromFlags(flagged, hasHighWeight)
	confidence := confidenceFromFlags(flagged, hasHighWeight)

	if level == domain.ContradictionNone {
		contradictions = nil
	}

	return &domain.AnalysisResult{
		Level:             level,
		ConfidenceScore:   confidence,
		Analysis:          heuristicAnalysisText(level, flagged, len(input.Passages), len(input.Articles)),
		KeyContradictions: contradictions,
		Fallback:          true,
	}
}

func findCommitmentKeyword(passages []string) string {
	for _, passage := range passages {
		text := strings.ToLower(passage)
		for _, kw := range commitmentKeywords {
			if strings.Contains(text, kw) {
				return kw
			}
		}
	}
	return ""
}

func levelFromFlags(flagged int, hasHighWeight bool) domain.ContradictionLevel {
	switch {
	case flagged == 0:
		return domain.ContradictionNone
	case hasHighWeight || flagged >= 4:
		return domain.ContradictionHigh
	case flagged >= 2:
		return domain.ContradictionMedium
	default:
		return domain.ContradictionLow
	}
}

func confidenceFromFlags(flagged int, hasHighWeight bool) float64 {
	if flagged == 0 {
		return 0.3
	}
	confidence := 0.35 + 0.05*float64(flagged)
	if hasHighWeight {
		confidence += 0.1
	}
	if confidence > FallbackConfidenceCap {
		confidence = FallbackConfidenceCap
	}
	return confidence
}

func heuristicAnalysisText(level domain.ContradictionLevel, flagged, passages, articles int) string {
	switch level {
	case domain.ContradictionNone:
		return fmt.Sprintf("Keyword screening found no contradictions across %d commitment passages and %d recent articles. Actions appear consistent with stated commitments.", passages, articles)
	default:
		return fmt.Sprintf("Keyword screening flagged %d of %d recent articles as contradicting stated commitments (%d passages reviewed). Assessment produced by the local heuristic scorer.", flagged, articles, passages)
	}
}
