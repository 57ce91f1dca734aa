package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document, archiveKey string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, company_id, doc_type, title, content, archive_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.CompanyID, d.Type, d.Title, d.Content, archiveKey, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, company_id, doc_type, title, content, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.CompanyID, &d.Type, &d.Title, &d.Content, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) ListByCompany(ctx context.Context, companyID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, doc_type, title, content, created_at
		 FROM documents WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Type, &d.Title, &d.Content, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

// Titles returns document titles for a company, newest first. Used to
// synthesize a retrieval query when the caller provides none.
func (r *DocumentRepository) Titles(ctx context.Context, companyID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title FROM documents WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// CreatePassages inserts a document's passages with their embeddings.
func (r *DocumentRepository) CreatePassages(ctx context.Context, passages []domain.Passage) error {
	for _, p := range passages {
		var embedding any
		if p.Embedding != nil {
			embedding = pgvector.NewVector(p.Embedding)
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO passages (id, document_id, company_id, position, text, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.DocumentID, p.CompanyID, p.Index, p.Text, embedding,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// AllPassages streams every embedded passage. Used to rebuild the
// in-memory index on startup.
func (r *DocumentRepository) AllPassages(ctx context.Context) ([]domain.Passage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, company_id, position, text, embedding
		 FROM passages WHERE embedding IS NOT NULL ORDER BY document_id, position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPassages(rows)
}

// GetPassages returns passages by ID, preserving the order of ids.
func (r *DocumentRepository) GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, company_id, position, text, embedding
		 FROM passages WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passages, err := scanPassages(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}

	ordered := make([]domain.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// SearchPassages runs a cosine-distance similarity search in SQL. It
// backs retrieval when the in-memory index has nothing for the company
// (cold start before a rebuild completes).
func (r *DocumentRepository) SearchPassages(ctx context.Context, companyID string, embedding []float32, limit int) ([]domain.Passage, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, company_id, position, text, embedding
		 FROM passages
		 WHERE company_id = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		companyID, pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPassages(rows)
}

func scanPassages(rows pgx.Rows) ([]domain.Passage, error) {
	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		var vec *pgvector.Vector
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.CompanyID, &p.Index, &p.Text, &vec); err != nil {
			return nil, err
		}
		if vec != nil {
			p.Embedding = vec.Slice()
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}
