// Package gateway wraps the external reasoning provider behind a strict
// response schema, with a deterministic local fallback scorer. Assess
// always returns a well-formed result: failures of the primary provider
// are absorbed, never surfaced to the caller.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

const (
	// DefaultTimeout bounds the primary reasoning call
	DefaultTimeout = 8 * time.Second
	// excerptLimit truncates stored promise/action excerpts
	excerptLimit = 500
)

// Reasoner is the capability interface for the external reasoning provider
type Reasoner interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AssessmentInput carries the retrieved context for one assessment
type AssessmentInput struct {
	Company  string
	Query    string
	Passages []string
	Articles []*domain.NewsArticle
}

// Config controls gateway behavior
type Config struct {
	Timeout time.Duration
}

// Gateway scores contradictions between commitments and actions. When
// the primary provider is nil, times out, or returns a response that
// fails schema validation, the deterministic heuristic scorer takes over.
type Gateway struct {
	reasoner Reasoner
	timeout  time.Duration
}

// New creates a Gateway. A nil reasoner is valid and routes every
// assessment through the fallback scorer.
func New(reasoner Reasoner, cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		reasoner: reasoner,
		timeout:  timeout,
	}
}

// Assess produces a contradiction assessment for the given context. The
// returned result has Level, ConfidenceScore, Analysis, KeyContradictions,
// the excerpts, and Fallback populated; identity fields are the caller's
// responsibility.
func (g *Gateway) Assess(ctx context.Context, input AssessmentInput) *domain.AnalysisResult {
	if g.reasoner == nil {
		return g.fallback(input, domain.ErrGatewayUnconfigured)
	}

	result, err := g.assessPrimary(ctx, input)
	if err != nil {
		log.Printf("gateway: primary assessment failed for %s, using fallback: %v", input.Company, err)
		return g.fallback(input, err)
	}
	return result
}

func (g *Gateway) assessPrimary(ctx context.Context, input AssessmentInput) (*domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.reasoner.Complete(ctx, assessmentSystemPrompt, buildUserPrompt(input))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrGatewayTimeout
		}
		return nil, err
	}

	parsed, err := parseAssessment(response)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		Level:             parsed.Level,
		ConfidenceScore:   parsed.ConfidenceScore,
		Analysis:          parsed.Analysis,
		KeyContradictions: parsed.KeyContradictions,
		PromisesExcerpt:   truncate(joinPassages(input.Passages), excerptLimit),
		ActionsExcerpt:    truncate(joinArticles(input.Articles), excerptLimit),
		Fallback:          false,
	}, nil
}

func (g *Gateway) fallback(input AssessmentInput, cause error) *domain.AnalysisResult {
	result := scoreHeuristic(input)
	result.PromisesExcerpt = truncate(joinPassages(input.Passages), excerptLimit)
	result.ActionsExcerpt = truncate(joinArticles(input.Articles), excerptLimit)
	_ = cause // recorded in logs by the caller; not part of the result
	return result
}

const assessmentSystemPrompt = `You are an expert corporate analyst specializing in identifying contradictions between company statements and actions.

Your task is to:
1. Objectively compare company promises/commitments with recent actions
2. Identify contradictions or inconsistencies
3. Rate contradiction level: NONE, LOW, MEDIUM, HIGH
4. Provide confidence score (0.0 to 1.0)
5. List specific contradictions found
6. Be evidence-based and cite specific examples

Respond ONLY with valid JSON in this exact format:
{
    "contradiction_level": "HIGH",
    "confidence_score": 0.85,
    "analysis": "Detailed explanation of contradictions found...",
    "key_contradictions": ["contradiction 1", "contradiction 2"]
}`

func buildUserPrompt(input AssessmentInput) string {
	query := input.Query
	if query == "" {
		query = "General corporate behavior"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nQuery Focus: %s\n\n", input.Company, query)
	b.WriteString("OFFICIAL COMMITMENTS:\n")
	b.WriteString(joinPassages(input.Passages))
	b.WriteString("\n\nRECENT ACTIONS:\n")
	b.WriteString(joinArticles(input.Articles))
	b.WriteString("\n\nAnalyze for contradictions between stated values and actual behavior.")
	return b.String()
}

func joinPassages(passages []string) string {
	return strings.Join(passages, "\n")
}

func joinArticles(articles []*domain.NewsArticle) string {
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Title, a.Content))
	}
	return strings.Join(lines, "\n")
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
