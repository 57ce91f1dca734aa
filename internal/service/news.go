package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// NewsIngestInput is the caller-supplied shape of a news article.
// Severity is optional; when absent or invalid it is assessed from the
// article text.
type NewsIngestInput struct {
	CompanyName string
	Title       string
	Content     string
	URL         string
	Source      string
	PublishedAt time.Time
	Severity    string
}

// NewsService ingests articles, scores them, and hands high-severity
// ones to the alert classifier.
type NewsService struct {
	news        NewsRepositoryInterface
	companies   CompanyRepositoryInterface
	alertSvc    *AlertService
	broadcaster Broadcaster
	uuidGen     UUIDGenerator
	logger      *slog.Logger
}

// NewNewsService creates a new NewsService instance
func NewNewsService(news NewsRepositoryInterface, companies CompanyRepositoryInterface, alertSvc *AlertService, broadcaster Broadcaster, logger *slog.Logger) *NewsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsService{
		news:        news,
		companies:   companies,
		alertSvc:    alertSvc,
		broadcaster: broadcaster,
		uuidGen:     &DefaultUUIDGenerator{},
		logger:      logger,
	}
}

// Ingest scores and persists an article. The article's company must
// already exist. Scoring never fails; missing severity is derived from
// the title and content.
func (s *NewsService) Ingest(ctx context.Context, input NewsIngestInput) (*domain.NewsArticle, error) {
	ctx, span := telemetry.StartSpan(ctx, "NewsService.Ingest", telemetry.SpanAttributes{
		Company:   input.CompanyName,
		Operation: "news_ingest",
	})
	defer span.End()

	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "company name is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "article title is required")
	}

	company, err := s.companies.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	text := input.Title + " " + input.Content

	severity := domain.Severity(strings.ToUpper(strings.TrimSpace(input.Severity)))
	if !domain.IsValidSeverity(severity) {
		severity = assessSeverity(text)
	}

	publishedAt := input.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	article := &domain.NewsArticle{
		ID:             s.uuidGen.NewString(),
		CompanyID:      company.ID,
		Title:          strings.TrimSpace(input.Title),
		Content:        input.Content,
		URL:            input.URL,
		Source:         input.Source,
		PublishedAt:    publishedAt,
		SentimentScore: calculateSentiment(text),
		RelevanceScore: calculateRelevance(text, company.Name),
		Severity:       severity,
		Keywords:       extractKeywords(text),
		CreatedAt:      time.Now().UTC(),
	}

	if err := domain.ValidateNewsArticle(article); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid news article", err)
	}

	if err := s.news.Create(ctx, article); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.NewsIngested(article)
	}

	if s.alertSvc != nil {
		if _, err := s.alertSvc.ClassifyArticle(ctx, company.Name, article); err != nil {
			// Alerting is downstream of ingestion; the article is
			// already durable, so log instead of failing the request.
			s.logger.Error("news alert classification failed",
				"company", company.Name,
				"article_id", article.ID,
				"error", err)
		}
	}

	return article, nil
}

// Recent returns the newest articles for a company, newest first.
func (s *NewsService) Recent(ctx context.Context, companyName string, limit int) ([]*domain.NewsArticle, error) {
	company, err := s.companies.GetByName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.news.GetRecent(ctx, company.ID, limit)
}
