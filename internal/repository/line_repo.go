package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

type LineRepo struct {
	db *sql.DB
}

func NewLineRepo(db *sql.DB) *LineRepo {
	return &LineRepo{db: db}
}

const lineColumns = `id, promotion_header_id, target_type, target_id, line_type, start_date, end_date, active, created_at, updated_at`

func scanLine(row interface{ Scan(...interface{}) error }) (*models.PromotionLine, error) {
	var l models.PromotionLine
	var start, end sql.NullTime
	err := row.Scan(&l.ID, &l.HeaderID, &l.Target, &l.TargetID, &l.Type, &start, &end, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		l.StartDate = &start.Time
	}
	if end.Valid {
		l.EndDate = &end.Time
	}
	return &l, nil
}

func (r *LineRepo) Create(ctx context.Context, l *models.PromotionLine) error {
	query := `
		INSERT INTO promotion_lines
		(promotion_header_id, target_type, target_id, line_type, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		l.HeaderID, l.Target, l.TargetID, l.Type, l.StartDate, l.EndDate, l.Active,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return apperr.Databasef(err, "failed to create promotion line")
	}
	return nil
}

func (r *LineRepo) Get(ctx context.Context, id int) (*models.PromotionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM promotion_lines WHERE id = $1`
	l, err := scanLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("promotion line %d not found", id)
		}
		return nil, apperr.Databasef(err, "failed to fetch promotion line")
	}
	return l, nil
}

func (r *LineRepo) ListByHeader(ctx context.Context, headerID int) ([]*models.PromotionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM promotion_lines WHERE promotion_header_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, headerID)
	if err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion lines")
	}
	defer rows.Close()

	var lines []*models.PromotionLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, apperr.Databasef(err, "failed to scan promotion line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion lines")
	}
	return lines, nil
}

func (r *LineRepo) Update(ctx context.Context, l *models.PromotionLine) error {
	query := `
		UPDATE promotion_lines
		SET target_type = $2, target_id = $3, line_type = $4, start_date = $5, end_date = $6, active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		l.ID, l.Target, l.TargetID, l.Type, l.StartDate, l.EndDate, l.Active,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("promotion line %d not found", l.ID)
		}
		return apperr.Databasef(err, "failed to update promotion line")
	}
	return nil
}

// Delete removes a line and its details in one transaction.
func (r *LineRepo) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Databasef(err, "failed to start transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_details WHERE promotion_line_id = $1`, id); err != nil {
		return apperr.Databasef(err, "failed to delete promotion details")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM promotion_lines WHERE id = $1`, id)
	if err != nil {
		return apperr.Databasef(err, "failed to delete promotion line")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Databasef(err, "failed to delete promotion line")
	}
	if affected == 0 {
		return apperr.NotFoundf("promotion line %d not found", id)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Databasef(err, "failed to commit line delete")
	}
	return nil
}
