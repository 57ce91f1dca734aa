package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// AnalysisRepository persists analysis results. The table is
// append-only: results are never updated or deleted.
type AnalysisRepository struct {
	db dbtx
}

func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: pool}
}

func NewAnalysisRepositoryWithTx(tx pgx.Tx) *AnalysisRepository {
	return &AnalysisRepository{db: tx}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *domain.AnalysisResult) error {
	keyContradictions := a.KeyContradictions
	if keyContradictions == nil {
		keyContradictions = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO analyses (id, company_id, query, level, confidence_score, analysis,
		                       key_contradictions, promises_excerpt, actions_excerpt, fallback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CompanyID, a.Query, a.Level, a.ConfidenceScore, a.Analysis,
		keyContradictions, a.PromisesExcerpt, a.ActionsExcerpt, a.Fallback, a.CreatedAt,
	)
	return err
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, company_id, query, level, confidence_score, analysis,
		        key_contradictions, promises_excerpt, actions_excerpt, fallback, created_at
		 FROM analyses WHERE id = $1`,
		id,
	)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrCodeNotFound, "analysis not found")
		}
		return nil, err
	}
	return a, nil
}

// ListByCompany returns a company's analysis history, newest first.
func (r *AnalysisRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, query, level, confidence_score, analysis,
		        key_contradictions, promises_excerpt, actions_excerpt, fallback, created_at
		 FROM analyses WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.AnalysisResult
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func scanAnalysis(row pgx.Row) (*domain.AnalysisResult, error) {
	var a domain.AnalysisResult
	err := row.Scan(&a.ID, &a.CompanyID, &a.Query, &a.Level, &a.ConfidenceScore, &a.Analysis,
		&a.KeyContradictions, &a.PromisesExcerpt, &a.ActionsExcerpt, &a.Fallback, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
