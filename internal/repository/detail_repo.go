package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

type DetailRepo struct {
	db *sql.DB
}

func NewDetailRepo(db *sql.DB) *DetailRepo {
	return &DetailRepo{db: db}
}

const detailColumns = `id, promotion_line_id, discount_percent, discount_amount, min_amount, max_discount,
	condition_quantity, free_quantity, condition_product_id, gift_product_id, active, created_at, updated_at`

func scanDetail(row interface{ Scan(...interface{}) error }) (*models.PromotionDetail, error) {
	var d models.PromotionDetail
	var percent, amount, minAmount, maxDiscount decimal.NullDecimal
	var condQty, freeQty, condProduct, giftProduct sql.NullInt64
	err := row.Scan(
		&d.ID, &d.LineID, &percent, &amount, &minAmount, &maxDiscount,
		&condQty, &freeQty, &condProduct, &giftProduct, &d.Active, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if percent.Valid {
		d.DiscountPercent = &percent.Decimal
	}
	if amount.Valid {
		d.DiscountAmount = &amount.Decimal
	}
	if minAmount.Valid {
		d.MinAmount = &minAmount.Decimal
	}
	if maxDiscount.Valid {
		d.MaxDiscount = &maxDiscount.Decimal
	}
	if condQty.Valid {
		v := int(condQty.Int64)
		d.ConditionQuantity = &v
	}
	if freeQty.Valid {
		v := int(freeQty.Int64)
		d.FreeQuantity = &v
	}
	if condProduct.Valid {
		v := int(condProduct.Int64)
		d.ConditionProductID = &v
	}
	if giftProduct.Valid {
		v := int(giftProduct.Int64)
		d.GiftProductID = &v
	}
	return &d, nil
}

func (r *DetailRepo) Create(ctx context.Context, d *models.PromotionDetail) error {
	query := `
		INSERT INTO promotion_details
		(promotion_line_id, discount_percent, discount_amount, min_amount, max_discount,
		 condition_quantity, free_quantity, condition_product_id, gift_product_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.LineID, d.DiscountPercent, d.DiscountAmount, d.MinAmount, d.MaxDiscount,
		d.ConditionQuantity, d.FreeQuantity, d.ConditionProductID, d.GiftProductID, d.Active,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return apperr.Databasef(err, "failed to create promotion detail")
	}
	return nil
}

func (r *DetailRepo) Get(ctx context.Context, id int) (*models.PromotionDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM promotion_details WHERE id = $1`
	d, err := scanDetail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("promotion detail %d not found", id)
		}
		return nil, apperr.Databasef(err, "failed to fetch promotion detail")
	}
	return d, nil
}

func (r *DetailRepo) ListByLine(ctx context.Context, lineID int) ([]*models.PromotionDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM promotion_details WHERE promotion_line_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, lineID)
	if err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion details")
	}
	defer rows.Close()

	var details []*models.PromotionDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, apperr.Databasef(err, "failed to scan promotion detail")
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Databasef(err, "failed to list promotion details")
	}
	return details, nil
}

func (r *DetailRepo) Update(ctx context.Context, d *models.PromotionDetail) error {
	query := `
		UPDATE promotion_details
		SET discount_percent = $2, discount_amount = $3, min_amount = $4, max_discount = $5,
		    condition_quantity = $6, free_quantity = $7, condition_product_id = $8, gift_product_id = $9,
		    active = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.DiscountPercent, d.DiscountAmount, d.MinAmount, d.MaxDiscount,
		d.ConditionQuantity, d.FreeQuantity, d.ConditionProductID, d.GiftProductID, d.Active,
	).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("promotion detail %d not found", d.ID)
		}
		return apperr.Databasef(err, "failed to update promotion detail")
	}
	return nil
}

func (r *DetailRepo) SetActive(ctx context.Context, id int, active bool) error {
	query := `UPDATE promotion_details SET active = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return apperr.Databasef(err, "failed to update promotion detail")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Databasef(err, "failed to update promotion detail")
	}
	if affected == 0 {
		return apperr.NotFoundf("promotion detail %d not found", id)
	}
	return nil
}
