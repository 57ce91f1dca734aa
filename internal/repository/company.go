package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type CompanyRepository struct {
	db dbtx
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: pool}
}

func NewCompanyRepositoryWithTx(tx pgx.Tx) *CompanyRepository {
	return &CompanyRepository{db: tx}
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, name, description, industry, website, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.Industry, c.Website, c.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrCompanyAlreadyExists
	}
	return err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, industry, website, created_at
		 FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, industry, website, created_at
		 FROM companies WHERE lower(name) = lower($1)`,
		name,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]*domain.Company, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, industry, website, created_at
		 FROM companies ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, &c)
	}
	return companies, rows.Err()
}

// Stats aggregates what the pipeline knows about a company.
func (r *CompanyRepository) Stats(ctx context.Context, companyID string) (*domain.CompanyStats, error) {
	var stats domain.CompanyStats
	var latest *string
	err := r.db.QueryRow(ctx,
		`SELECT c.name,
		        (SELECT count(*) FROM documents d WHERE d.company_id = c.id),
		        (SELECT count(*) FROM news_articles n WHERE n.company_id = c.id),
		        (SELECT count(*) FROM analyses a WHERE a.company_id = c.id),
		        (SELECT a.level FROM analyses a WHERE a.company_id = c.id ORDER BY a.created_at DESC LIMIT 1)
		 FROM companies c WHERE c.id = $1`,
		companyID,
	).Scan(&stats.CompanyName, &stats.DocumentCount, &stats.NewsCount, &stats.AnalysisCount, &latest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	stats.LatestContradLevel = domain.ContradictionNone
	if latest != nil {
		stats.LatestContradLevel = domain.ContradictionLevel(*latest)
	}
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the Postgres unique_violation code
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
