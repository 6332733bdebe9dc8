package repository

import (
	"context"
	"database/sql"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

// BatchRepo writes a whole header -> lines -> details aggregate in a single
// transaction. The quick-promotion wizard uses it so a failure on any step
// leaves nothing committed.
type BatchRepo struct {
	db *sql.DB
}

func NewBatchRepo(db *sql.DB) *BatchRepo {
	return &BatchRepo{db: db}
}

// CreateBatch inserts the aggregate and fills in the generated ids on meta.
// All-or-nothing: any insert error rolls the transaction back.
func (r *BatchRepo) CreateBatch(ctx context.Context, meta *models.PromotionMeta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Databasef(err, "failed to start transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertHeader := `
		INSERT INTO promotion_headers (name, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insertHeader,
		meta.Name, meta.StartDate, meta.EndDate, meta.PromotionHeader.Active,
	).Scan(&meta.ID, &meta.PromotionHeader.CreatedAt, &meta.PromotionHeader.UpdatedAt)
	if err != nil {
		return apperr.Databasef(err, "failed to create promotion header")
	}

	insertLine := `
		INSERT INTO promotion_lines
		(promotion_header_id, target_type, target_id, line_type, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	insertDetail := `
		INSERT INTO promotion_details
		(promotion_line_id, discount_percent, discount_amount, min_amount, max_discount,
		 condition_quantity, free_quantity, condition_product_id, gift_product_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for i := range meta.Lines {
		line := &meta.Lines[i]
		line.HeaderID = meta.ID
		err = tx.QueryRowContext(ctx, insertLine,
			line.HeaderID, line.Target, line.TargetID, line.Type,
			line.StartDate, line.EndDate, line.PromotionLine.Active,
		).Scan(&line.ID, &line.PromotionLine.CreatedAt, &line.PromotionLine.UpdatedAt)
		if err != nil {
			return apperr.Databasef(err, "failed to create promotion line")
		}

		for j := range line.Details {
			d := &line.Details[j]
			d.LineID = line.ID
			err = tx.QueryRowContext(ctx, insertDetail,
				d.LineID, d.DiscountPercent, d.DiscountAmount, d.MinAmount, d.MaxDiscount,
				d.ConditionQuantity, d.FreeQuantity, d.ConditionProductID, d.GiftProductID, d.Active,
			).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
			if err != nil {
				return apperr.Databasef(err, "failed to create promotion detail")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Databasef(err, "failed to commit quick promotion")
	}
	return nil
}
