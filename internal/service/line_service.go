package service

import (
	"context"
	"time"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

type LineRepo interface {
	Create(ctx context.Context, l *models.PromotionLine) error
	Get(ctx context.Context, id int) (*models.PromotionLine, error)
	ListByHeader(ctx context.Context, headerID int) ([]*models.PromotionLine, error)
	Update(ctx context.Context, l *models.PromotionLine) error
	Delete(ctx context.Context, id int) error
}

type CreateLineInput struct {
	HeaderID  int
	Target    models.TargetType
	TargetID  int
	Type      models.LineType
	StartDate *time.Time
	EndDate   *time.Time
	Active    bool
}

type UpdateLineInput struct {
	Target    *models.TargetType
	TargetID  *int
	Type      *models.LineType
	StartDate *time.Time
	EndDate   *time.Time
	Active    *bool
}

type LineService struct {
	lines   LineRepo
	headers HeaderRepo
	details DetailRepo
	cache   Invalidator
}

func NewLineService(lines LineRepo, headers HeaderRepo, details DetailRepo, cache Invalidator) *LineService {
	return &LineService{lines: lines, headers: headers, details: details, cache: cache}
}

// Create attaches a scoped discount declaration to an existing header.
// Whether the target id resolves to a real product/category/customer is the
// catalog's concern; only the pairing and enum values are enforced here.
// Line dates may lie in the past to allow backfilling historical campaigns.
func (s *LineService) Create(ctx context.Context, in CreateLineInput) (*models.PromotionLine, error) {
	if err := validateLineFields(in.Target, in.TargetID, in.Type); err != nil {
		return nil, err
	}
	if in.StartDate != nil && in.EndDate != nil {
		if err := checkDateOrder(*in.StartDate, in.EndDate); err != nil {
			return nil, err
		}
	}
	if _, err := s.headers.Get(ctx, in.HeaderID); err != nil {
		return nil, err
	}

	l := &models.PromotionLine{
		HeaderID:  in.HeaderID,
		Target:    in.Target,
		TargetID:  in.TargetID,
		Type:      in.Type,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Active:    in.Active,
	}
	if err := s.lines.Create(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate()
	return l, nil
}

func (s *LineService) Get(ctx context.Context, id int) (*models.PromotionLine, error) {
	return s.lines.Get(ctx, id)
}

func (s *LineService) ListByHeader(ctx context.Context, headerID int) ([]*models.PromotionLine, error) {
	if _, err := s.headers.Get(ctx, headerID); err != nil {
		return nil, err
	}
	return s.lines.ListByHeader(ctx, headerID)
}

// Update applies partial edits. Changing the line type is rejected while
// details exist, since their fields were validated against the old type.
func (s *LineService) Update(ctx context.Context, id int, in UpdateLineInput) (*models.PromotionLine, error) {
	l, err := s.lines.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Type != nil && *in.Type != l.Type {
		existing, err := s.details.ListByLine(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, apperr.Validationf("cannot change line type while details exist")
		}
		l.Type = *in.Type
	}
	if in.Target != nil {
		l.Target = *in.Target
	}
	if in.TargetID != nil {
		l.TargetID = *in.TargetID
	}
	if in.StartDate != nil {
		l.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		l.EndDate = in.EndDate
	}
	if in.Active != nil {
		l.Active = *in.Active
	}

	if err := validateLineFields(l.Target, l.TargetID, l.Type); err != nil {
		return nil, err
	}
	if l.StartDate != nil && l.EndDate != nil {
		if err := checkDateOrder(*l.StartDate, l.EndDate); err != nil {
			return nil, err
		}
	}

	if err := s.lines.Update(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate()
	return l, nil
}

// Delete removes the line and its details, independent of the header.
func (s *LineService) Delete(ctx context.Context, id int) error {
	if err := s.lines.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *LineService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func validateLineFields(target models.TargetType, targetID int, lineType models.LineType) error {
	details := map[string]string{}
	if !target.Valid() {
		details["target_type"] = "must be one of PRODUCT, CATEGORY, CUSTOMER"
	}
	if targetID <= 0 {
		details["target_id"] = "must be a positive identifier"
	}
	if !lineType.Valid() {
		details["type"] = "must be one of DISCOUNT_PERCENT, DISCOUNT_AMOUNT, BUY_X_GET_Y"
	}
	if len(details) > 0 {
		return apperr.Validationf("invalid promotion line").WithDetails(details)
	}
	return nil
}
