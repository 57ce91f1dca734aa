package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/gateway"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// AnalysisConfig controls context retrieval for assessments
type AnalysisConfig struct {
	TopKPassages   int
	RecentArticles int
}

// DefaultAnalysisConfig returns the standard retrieval limits
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		TopKPassages:   5,
		RecentArticles: 10,
	}
}

// AnalysisService runs contradiction assessments. Concurrent requests
// for the same company are serialized; requests for different companies
// run in parallel. Every invocation appends exactly one result to the
// company's history.
type AnalysisService struct {
	companies CompanyRepositoryInterface
	documents DocumentRepositoryInterface
	news      NewsRepositoryInterface
	analyses  AnalysisRepositoryInterface

	embedder    EmbeddingClient
	index       PassageIndex
	assessor    Assessor
	alertSvc    *AlertService
	broadcaster Broadcaster

	locks   *keyedLock
	cfg     AnalysisConfig
	uuidGen UUIDGenerator
	logger  *slog.Logger
}

// NewAnalysisService creates a new AnalysisService instance
func NewAnalysisService(
	companies CompanyRepositoryInterface,
	documents DocumentRepositoryInterface,
	news NewsRepositoryInterface,
	analyses AnalysisRepositoryInterface,
	embedder EmbeddingClient,
	index PassageIndex,
	assessor Assessor,
	alertSvc *AlertService,
	broadcaster Broadcaster,
	cfg AnalysisConfig,
	logger *slog.Logger,
) *AnalysisService {
	if cfg.TopKPassages <= 0 {
		cfg.TopKPassages = DefaultAnalysisConfig().TopKPassages
	}
	if cfg.RecentArticles <= 0 {
		cfg.RecentArticles = DefaultAnalysisConfig().RecentArticles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		companies:   companies,
		documents:   documents,
		news:        news,
		analyses:    analyses,
		embedder:    embedder,
		index:       index,
		assessor:    assessor,
		alertSvc:    alertSvc,
		broadcaster: broadcaster,
		locks:       newKeyedLock(),
		cfg:         cfg,
		uuidGen:     &DefaultUUIDGenerator{},
		logger:      logger,
	}
}

// Analyze assesses a company's commitments against its recent news. An
// empty query is synthesized from the company's document titles. The
// call is total: retrieval gaps and provider failures degrade the
// assessment rather than failing it; only unknown companies and
// persistence errors are surfaced.
func (s *AnalysisService) Analyze(ctx context.Context, companyName, query string) (*domain.AnalysisResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.Analyze", telemetry.SpanAttributes{
		Company:   companyName,
		Operation: "analyze",
	})
	defer span.End()

	company, err := s.companies.GetByName(ctx, companyName)
	if err != nil {
		return nil, err
	}

	// One in-flight assessment per company; different companies proceed
	// concurrently.
	s.locks.Lock(company.ID)
	defer s.locks.Unlock(company.ID)

	query = strings.TrimSpace(query)
	if query == "" {
		query = s.synthesizeQuery(ctx, company)
	}

	passages, err := s.retrievePassages(ctx, company.ID, query)
	if err != nil {
		return nil, err
	}

	articles, err := s.news.GetRecent(ctx, company.ID, s.cfg.RecentArticles)
	if err != nil {
		return nil, err
	}

	var result *domain.AnalysisResult
	if len(passages) == 0 && len(articles) == 0 {
		// Nothing to contradict; no point invoking the assessor.
		result = &domain.AnalysisResult{
			Level:           domain.ContradictionNone,
			ConfidenceScore: 0.0,
			Analysis:        "No commitment documents or recent news available for " + company.Name + "; nothing to assess.",
		}
	} else {
		texts := make([]string, len(passages))
		for i, p := range passages {
			texts[i] = p.Text
		}
		result = s.assessor.Assess(ctx, gateway.AssessmentInput{
			Company:  company.Name,
			Query:    query,
			Passages: texts,
			Articles: articles,
		})
	}

	result.ID = s.uuidGen.NewString()
	result.CompanyID = company.ID
	result.Query = query
	result.CreatedAt = time.Now().UTC()

	if err := domain.ValidateAnalysisResult(result); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "assessor produced invalid result", err)
	}
	if err := s.analyses.Create(ctx, result); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.AnalysisCompleted(result)
	}

	if s.alertSvc != nil {
		if _, err := s.alertSvc.ClassifyResult(ctx, company.Name, result); err != nil {
			// The result is already persisted; alerting failures are
			// logged, not propagated.
			s.logger.Error("alert classification failed",
				"company", company.Name,
				"analysis_id", result.ID,
				"error", err)
		}
	}

	return result, nil
}

// History returns a company's past results, newest first.
func (s *AnalysisService) History(ctx context.Context, companyName string, limit int) ([]*domain.AnalysisResult, error) {
	company, err := s.companies.GetByName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	return s.analyses.ListByCompany(ctx, company.ID, limit)
}

// retrievePassages finds the passages most similar to the query. The
// in-memory index is global across companies, so it over-fetches and
// filters by company; when the index is cold the database vector search
// answers instead.
func (s *AnalysisService) retrievePassages(ctx context.Context, companyID, query string) ([]domain.Passage, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to embed query", err)
	}

	if s.index != nil && s.index.Len() > 0 {
		hits, err := s.index.Query(embedding, s.cfg.TopKPassages*4)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.PassageID
		}
		candidates, err := s.documents.GetPassages(ctx, ids)
		if err != nil {
			return nil, err
		}
		passages := make([]domain.Passage, 0, s.cfg.TopKPassages)
		for _, p := range candidates {
			if p.CompanyID != companyID {
				continue
			}
			passages = append(passages, p)
			if len(passages) == s.cfg.TopKPassages {
				break
			}
		}
		if len(passages) > 0 {
			return passages, nil
		}
	}

	return s.documents.SearchPassages(ctx, companyID, embedding, s.cfg.TopKPassages)
}

// synthesizeQuery builds a retrieval query from the company's document
// titles when the caller supplies none.
func (s *AnalysisService) synthesizeQuery(ctx context.Context, company *domain.Company) string {
	titles, err := s.documents.Titles(ctx, company.ID)
	if err != nil || len(titles) == 0 {
		return company.Name + " commitments and pledges"
	}
	if len(titles) > 5 {
		titles = titles[:5]
	}
	return company.Name + " commitments: " + strings.Join(titles, "; ")
}
