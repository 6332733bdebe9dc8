package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

type HeaderRepo struct {
	db *sql.DB
}

func NewHeaderRepo(db *sql.DB) *HeaderRepo {
	return &HeaderRepo{db: db}
}

const headerColumns = `id, name, start_date, end_date, active, created_at, updated_at`

func scanHeader(row interface{ Scan(...interface{}) error }) (*models.PromotionHeader, error) {
	var h models.PromotionHeader
	var end sql.NullTime
	if err := row.Scan(&h.ID, &h.Name, &h.StartDate, &end, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		h.EndDate = &end.Time
	}
	return &h, nil
}

func (r *HeaderRepo) Create(ctx context.Context, h *models.PromotionHeader) error {
	query := `
		INSERT INTO promotion_headers (name, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, h.Name, h.StartDate, h.EndDate, h.Active).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return apperr.Databasef(err, "failed to create promotion header")
	}
	return nil
}

func (r *HeaderRepo) Get(ctx context.Context, id int) (*models.PromotionHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM promotion_headers WHERE id = $1`
	h, err := scanHeader(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("promotion header %d not found", id)
		}
		return nil, apperr.Databasef(err, "failed to fetch promotion header")
	}
	return h, nil
}

func (r *HeaderRepo) List(ctx context.Context) ([]*models.PromotionHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM promotion_headers ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion headers")
	}
	defer rows.Close()

	var headers []*models.PromotionHeader
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, apperr.Databasef(err, "failed to scan promotion header")
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion headers")
	}
	return headers, nil
}

func (r *HeaderRepo) Update(ctx context.Context, h *models.PromotionHeader) error {
	query := `
		UPDATE promotion_headers
		SET name = $2, start_date = $3, end_date = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, h.ID, h.Name, h.StartDate, h.EndDate, h.Active).
		Scan(&h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("promotion header %d not found", h.ID)
		}
		return apperr.Databasef(err, "failed to update promotion header")
	}
	return nil
}

// Delete removes a header together with its lines and details. The cascade
// is an explicit walk inside one transaction, not a foreign-key side effect.
func (r *HeaderRepo) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Databasef(err, "failed to start transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM promotion_details
		WHERE promotion_line_id IN (SELECT id FROM promotion_lines WHERE promotion_header_id = $1)
	`, id)
	if err != nil {
		return apperr.Databasef(err, "failed to delete promotion details")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_lines WHERE promotion_header_id = $1`, id); err != nil {
		return apperr.Databasef(err, "failed to delete promotion lines")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM promotion_headers WHERE id = $1`, id)
	if err != nil {
		return apperr.Databasef(err, "failed to delete promotion header")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Databasef(err, "failed to delete promotion header")
	}
	if affected == 0 {
		return apperr.NotFoundf("promotion header %d not found", id)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Databasef(err, "failed to commit header delete")
	}
	return nil
}

// ActivePromotions assembles the header -> line -> detail aggregates for all
// headers flagged active. Window filtering is left to the evaluator so the
// result is cacheable regardless of the evaluation timestamp.
func (r *HeaderRepo) ActivePromotions(ctx context.Context, _ time.Time) ([]*models.PromotionMeta, error) {
	query := `SELECT ` + headerColumns + ` FROM promotion_headers WHERE active = TRUE ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Databasef(err, "failed to list active promotions")
	}
	defer rows.Close()

	var metas []*models.PromotionMeta
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, apperr.Databasef(err, "failed to scan promotion header")
		}
		metas = append(metas, &models.PromotionMeta{PromotionHeader: *h})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Databasef(err, "failed to list active promotions")
	}

	lineRepo := NewLineRepo(r.db)
	detailRepo := NewDetailRepo(r.db)
	for _, meta := range metas {
		lines, err := lineRepo.ListByHeader(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if !line.Active {
				continue
			}
			details, err := detailRepo.ListByLine(ctx, line.ID)
			if err != nil {
				return nil, err
			}
			lm := models.LineMeta{PromotionLine: *line}
			for _, d := range details {
				lm.Details = append(lm.Details, *d)
			}
			meta.Lines = append(meta.Lines, lm)
		}
	}
	return metas, nil
}
