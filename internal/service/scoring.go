package service

import (
	"strings"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// Keyword lexicons for scoring incoming news. These are screening
// heuristics, not validated classifiers; severity thresholds live in the
// classifier configuration.
var (
	highSeverityKeywords = []string{
		"lawsuit", "sued", "fine", "penalty", "violation", "illegal",
		"fraud", "scandal", "investigation", "charges", "criminal",
		"breach", "hack", "data leak", "privacy violation",
		"discrimination", "harassment", "toxic", "abuse",
	}

	mediumSeverityKeywords = []string{
		"layoffs", "fired", "closure", "complaint", "criticism",
		"controversy", "dispute", "delay", "problem", "issue",
		"protest", "boycott", "strike", "union", "regulation",
	}

	lowSeverityKeywords = []string{
		"announcement", "launch", "expansion", "growth",
		"partnership", "acquisition", "investment", "funding",
	}

	positiveSentimentWords = []string{
		"success", "growth", "profit", "win", "achievement", "positive", "good", "excellent",
	}

	negativeSentimentWords = []string{
		"failure", "loss", "scandal", "problem", "bad", "negative", "crisis", "controversy",
	}

	businessTerms = []string{
		"financial", "earnings", "revenue", "stock", "shares", "market", "business", "corporate",
	}
)

// assessSeverity scores article text against the severity lexicons. Any
// high-tier keyword is enough for HIGH; any medium-tier keyword for
// MEDIUM; everything else is LOW.
func assessSeverity(text string) domain.Severity {
	lower := strings.ToLower(text)

	for _, kw := range highSeverityKeywords {
		if strings.Contains(lower, kw) {
			return domain.SeverityHigh
		}
	}
	for _, kw := range mediumSeverityKeywords {
		if strings.Contains(lower, kw) {
			return domain.SeverityMedium
		}
	}
	return domain.SeverityLow
}

// calculateSentiment is a word-count sentiment estimate clamped to [-1, 1].
func calculateSentiment(text string) float64 {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveSentimentWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeSentimentWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	totalWords := len(strings.Fields(text))
	if totalWords == 0 {
		return 0
	}

	denom := float64(totalWords) / 10
	if denom < 1 {
		denom = 1
	}

	sentiment := float64(positive-negative) / denom
	if sentiment > 1 {
		return 1
	}
	if sentiment < -1 {
		return -1
	}
	return sentiment
}

// calculateRelevance estimates how relevant article text is to a
// company, capped at 1.
func calculateRelevance(text, company string) float64 {
	lower := strings.ToLower(text)

	mentions := strings.Count(lower, strings.ToLower(company))

	var business int
	for _, term := range businessTerms {
		if strings.Contains(lower, term) {
			business++
		}
	}

	relevance := float64(mentions)*0.5 + float64(business)*0.1
	if relevance > 1 {
		return 1
	}
	return relevance
}

// extractKeywords returns the severity-lexicon keywords present in the
// text, in lexicon order without duplicates.
func extractKeywords(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	for _, lexicon := range [][]string{highSeverityKeywords, mediumSeverityKeywords, lowSeverityKeywords} {
		for _, kw := range lexicon {
			if !seen[kw] && strings.Contains(lower, kw) {
				seen[kw] = true
				found = append(found, kw)
			}
		}
	}
	return found
}
