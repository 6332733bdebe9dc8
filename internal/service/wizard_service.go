package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

// BatchRepo writes one header with its lines and details atomically.
type BatchRepo interface {
	CreateBatch(ctx context.Context, meta *models.PromotionMeta) error
}

type QuickLineInput struct {
	Target    models.TargetType
	TargetID  int
	Type      models.LineType
	StartDate *time.Time
	EndDate   *time.Time
	Active    bool
	Detail    *CreateDetailInput
}

type QuickPromotionInput struct {
	Header CreateHeaderInput
	Lines  []QuickLineInput
}

// WizardService is the quick-promotion flow: one header plus N lines and
// their details, created as a single all-or-nothing batch. The whole input
// is validated before anything is written, replacing the sequential
// fire-and-forget creation that could leave earlier lines committed after a
// later one failed.
type WizardService struct {
	batch BatchRepo
	cache Invalidator
	now   func() time.Time
}

func NewWizardService(batch BatchRepo, cache Invalidator) *WizardService {
	return &WizardService{batch: batch, cache: cache, now: time.Now}
}

func (s *WizardService) Create(ctx context.Context, in QuickPromotionInput) (*models.PromotionMeta, error) {
	if strings.TrimSpace(in.Header.Name) == "" {
		return nil, apperr.Validationf("name must not be empty")
	}
	if err := checkDateOrder(in.Header.StartDate, in.Header.EndDate); err != nil {
		return nil, err
	}
	if in.Header.StartDate.Before(startOfDay(s.now())) {
		return nil, apperr.Validationf("start_date must not be in the past")
	}
	if len(in.Lines) == 0 {
		return nil, apperr.Validationf("quick promotion needs at least one line")
	}

	meta := &models.PromotionMeta{
		PromotionHeader: models.PromotionHeader{
			Name:      strings.TrimSpace(in.Header.Name),
			StartDate: in.Header.StartDate,
			EndDate:   in.Header.EndDate,
			Active:    in.Header.Active,
		},
	}

	for i, ql := range in.Lines {
		if err := validateLineFields(ql.Target, ql.TargetID, ql.Type); err != nil {
			return nil, wizardLineError(i, err)
		}
		if ql.StartDate != nil && ql.EndDate != nil {
			if err := checkDateOrder(*ql.StartDate, ql.EndDate); err != nil {
				return nil, wizardLineError(i, err)
			}
		}

		lm := models.LineMeta{
			PromotionLine: models.PromotionLine{
				Target:    ql.Target,
				TargetID:  ql.TargetID,
				Type:      ql.Type,
				StartDate: ql.StartDate,
				EndDate:   ql.EndDate,
				Active:    ql.Active,
			},
		}
		if ql.Detail != nil {
			d := models.PromotionDetail{
				DiscountPercent:    ql.Detail.DiscountPercent,
				DiscountAmount:     ql.Detail.DiscountAmount,
				MinAmount:          ql.Detail.MinAmount,
				MaxDiscount:        ql.Detail.MaxDiscount,
				ConditionQuantity:  ql.Detail.ConditionQuantity,
				FreeQuantity:       ql.Detail.FreeQuantity,
				ConditionProductID: ql.Detail.ConditionProductID,
				GiftProductID:      ql.Detail.GiftProductID,
				Active:             ql.Detail.Active,
			}
			if err := d.ValidateFor(ql.Type); err != nil {
				return nil, wizardLineError(i, err)
			}
			lm.Details = append(lm.Details, d)
		}
		meta.Lines = append(meta.Lines, lm)
	}

	if err := s.batch.CreateBatch(ctx, meta); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	return meta, nil
}

func wizardLineError(index int, err error) error {
	if e, ok := err.(*apperr.Error); ok {
		wrapped := apperr.Validationf("line %d: %s", index+1, e.Message)
		if e.Details != nil {
			prefixed := make(map[string]string, len(e.Details))
			for k, v := range e.Details {
				prefixed[fmt.Sprintf("lines[%d].%s", index, k)] = v
			}
			wrapped.Details = prefixed
		}
		return wrapped
	}
	return err
}
