package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pledgewatch/pledgewatch/internal/domain"
)

type AlertRepository struct {
	db dbtx
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: pool}
}

func NewAlertRepositoryWithTx(tx pgx.Tx) *AlertRepository {
	return &AlertRepository{db: tx}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO alerts (id, company_id, alert_type, level, title, message, source_result_id, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CompanyID, a.Type, a.Level, a.Title, a.Message, a.SourceResultID, a.Read, a.CreatedAt,
	)
	return err
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	row := r.db.QueryRow(ctx,
		`SELECT a.id, a.company_id, c.name, a.alert_type, a.level, a.title, a.message,
		        a.source_result_id, a.read, a.created_at
		 FROM alerts a JOIN companies c ON c.id = a.company_id
		 WHERE a.id = $1`,
		id,
	)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListUnread returns unread alerts, optionally filtered by company,
// newest first.
func (r *AlertRepository) ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error) {
	query := `SELECT a.id, a.company_id, c.name, a.alert_type, a.level, a.title, a.message,
	                 a.source_result_id, a.read, a.created_at
	          FROM alerts a JOIN companies c ON c.id = a.company_id
	          WHERE NOT a.read`
	args := []any{}
	if companyID != "" {
		query += ` AND a.company_id = $1`
		args = append(args, companyID)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkRead flips the alert's read flag, the only mutable field.
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE alerts SET read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// LastCreated returns when the most recent alert for the company and
// severity tier was created. Used to rehydrate the cool-down cache on
// startup so a restart does not defeat deduplication.
func (r *AlertRepository) LastCreated(ctx context.Context, companyID string, level domain.Severity) (time.Time, error) {
	var created time.Time
	err := r.db.QueryRow(ctx,
		`SELECT created_at FROM alerts
		 WHERE company_id = $1 AND level = $2
		 ORDER BY created_at DESC LIMIT 1`,
		companyID, level,
	).Scan(&created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return created, nil
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	err := row.Scan(&a.ID, &a.CompanyID, &a.CompanyName, &a.Type, &a.Level, &a.Title, &a.Message,
		&a.SourceResultID, &a.Read, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
