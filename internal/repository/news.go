package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type NewsRepository struct {
	db dbtx
}

func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: pool}
}

func NewNewsRepositoryWithTx(tx pgx.Tx) *NewsRepository {
	return &NewsRepository{db: tx}
}

func (r *NewsRepository) Create(ctx context.Context, a *domain.NewsArticle) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO news_articles (id, company_id, title, content, url, source, published_at,
		                            sentiment_score, relevance_score, severity, keywords, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.CompanyID, a.Title, a.Content, a.URL, a.Source, a.PublishedAt,
		a.SentimentScore, a.RelevanceScore, a.Severity, a.Keywords, a.CreatedAt,
	)
	return err
}

func (r *NewsRepository) GetByID(ctx context.Context, id string) (*domain.NewsArticle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, company_id, title, content, url, source, published_at,
		        sentiment_score, relevance_score, severity, keywords, created_at
		 FROM news_articles WHERE id = $1`,
		id,
	)
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrCodeNotFound, "news article not found")
		}
		return nil, err
	}
	return a, nil
}

// GetRecent returns the most recent articles for a company, newest first.
func (r *NewsRepository) GetRecent(ctx context.Context, companyID string, limit int) ([]*domain.NewsArticle, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, title, content, url, source, published_at,
		        sentiment_score, relevance_score, severity, keywords, created_at
		 FROM news_articles WHERE company_id = $1
		 ORDER BY published_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// RecentBySeverity returns articles of the given severity ingested after
// the cutoff. The background sweep uses it to pick up HIGH articles that
// have not produced an alert yet.
func (r *NewsRepository) RecentBySeverity(ctx context.Context, companyID string, severity domain.Severity, since time.Time) ([]*domain.NewsArticle, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, title, content, url, source, published_at,
		        sentiment_score, relevance_score, severity, keywords, created_at
		 FROM news_articles
		 WHERE company_id = $1 AND severity = $2 AND created_at > $3
		 ORDER BY published_at DESC`,
		companyID, severity, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticle(row pgx.Row) (*domain.NewsArticle, error) {
	var a domain.NewsArticle
	err := row.Scan(&a.ID, &a.CompanyID, &a.Title, &a.Content, &a.URL, &a.Source, &a.PublishedAt,
		&a.SentimentScore, &a.RelevanceScore, &a.Severity, &a.Keywords, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanArticles(rows pgx.Rows) ([]*domain.NewsArticle, error) {
	var articles []*domain.NewsArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
