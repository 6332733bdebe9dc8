package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openretail/promotion-service/internal/models"
)

type DetailRepo interface {
	Create(ctx context.Context, d *models.PromotionDetail) error
	Get(ctx context.Context, id int) (*models.PromotionDetail, error)
	ListByLine(ctx context.Context, lineID int) ([]*models.PromotionDetail, error)
	Update(ctx context.Context, d *models.PromotionDetail) error
	SetActive(ctx context.Context, id int, active bool) error
}

// Invalidator lets write paths drop the evaluator's cached aggregate.
type Invalidator interface {
	Invalidate()
}

type CreateDetailInput struct {
	LineID             int
	DiscountPercent    *decimal.Decimal
	DiscountAmount     *decimal.Decimal
	MinAmount          *decimal.Decimal
	MaxDiscount        *decimal.Decimal
	ConditionQuantity  *int
	FreeQuantity       *int
	ConditionProductID *int
	GiftProductID      *int
	Active             bool
}

// UpdateDetailInput replaces the mechanism fields wholesale: the detail is a
// single parameter set, so partial numeric merges would blur which mechanism
// the caller intends. Active is merged separately.
type UpdateDetailInput struct {
	DiscountPercent    *decimal.Decimal
	DiscountAmount     *decimal.Decimal
	MinAmount          *decimal.Decimal
	MaxDiscount        *decimal.Decimal
	ConditionQuantity  *int
	FreeQuantity       *int
	ConditionProductID *int
	GiftProductID      *int
	Active             *bool
}

type DetailService struct {
	details DetailRepo
	lines   LineRepo
	cache   Invalidator
}

func NewDetailService(details DetailRepo, lines LineRepo, cache Invalidator) *DetailService {
	return &DetailService{details: details, lines: lines, cache: cache}
}

// Create validates the fields against the parent line's declared mechanism
// before storing anything.
func (s *DetailService) Create(ctx context.Context, in CreateDetailInput) (*models.PromotionDetail, error) {
	line, err := s.lines.Get(ctx, in.LineID)
	if err != nil {
		return nil, err
	}

	d := &models.PromotionDetail{
		LineID:             in.LineID,
		DiscountPercent:    in.DiscountPercent,
		DiscountAmount:     in.DiscountAmount,
		MinAmount:          in.MinAmount,
		MaxDiscount:        in.MaxDiscount,
		ConditionQuantity:  in.ConditionQuantity,
		FreeQuantity:       in.FreeQuantity,
		ConditionProductID: in.ConditionProductID,
		GiftProductID:      in.GiftProductID,
		Active:             in.Active,
	}
	if err := d.ValidateFor(line.Type); err != nil {
		return nil, err
	}

	if err := s.details.Create(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate()
	return d, nil
}

func (s *DetailService) Get(ctx context.Context, id int) (*models.PromotionDetail, error) {
	return s.details.Get(ctx, id)
}

func (s *DetailService) ListByLine(ctx context.Context, lineID int) ([]*models.PromotionDetail, error) {
	if _, err := s.lines.Get(ctx, lineID); err != nil {
		return nil, err
	}
	return s.details.ListByLine(ctx, lineID)
}

// Update re-applies the type-conditioned validation against the parent line.
func (s *DetailService) Update(ctx context.Context, id int, in UpdateDetailInput) (*models.PromotionDetail, error) {
	d, err := s.details.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	line, err := s.lines.Get(ctx, d.LineID)
	if err != nil {
		return nil, err
	}

	d.DiscountPercent = in.DiscountPercent
	d.DiscountAmount = in.DiscountAmount
	d.MinAmount = in.MinAmount
	d.MaxDiscount = in.MaxDiscount
	d.ConditionQuantity = in.ConditionQuantity
	d.FreeQuantity = in.FreeQuantity
	d.ConditionProductID = in.ConditionProductID
	d.GiftProductID = in.GiftProductID
	if in.Active != nil {
		d.Active = *in.Active
	}

	if err := d.ValidateFor(line.Type); err != nil {
		return nil, err
	}

	if err := s.details.Update(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate()
	return d, nil
}

// SetActive parks or revives the rule independently of the line and header
// active flags.
func (s *DetailService) SetActive(ctx context.Context, id int, active bool) (*models.PromotionDetail, error) {
	if err := s.details.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.details.Get(ctx, id)
}

func (s *DetailService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
