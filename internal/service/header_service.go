package service

import (
	"context"
	"strings"
	"time"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

// HeaderRepo is the storage the header service needs (interface so tests can
// swap in an in-memory store).
type HeaderRepo interface {
	Create(ctx context.Context, h *models.PromotionHeader) error
	Get(ctx context.Context, id int) (*models.PromotionHeader, error)
	List(ctx context.Context) ([]*models.PromotionHeader, error)
	Update(ctx context.Context, h *models.PromotionHeader) error
	Delete(ctx context.Context, id int) error
}

type CreateHeaderInput struct {
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
}

// UpdateHeaderInput carries partial edits. ClearEndDate distinguishes
// "make the campaign open-ended" from "leave the end date alone".
type UpdateHeaderInput struct {
	Name         *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Active       *bool
}

type HeaderService struct {
	repo  HeaderRepo
	now   func() time.Time
	cache Invalidator
}

func NewHeaderService(repo HeaderRepo, cache Invalidator) *HeaderService {
	return &HeaderService{repo: repo, now: time.Now, cache: cache}
}

// Create validates and stores a new campaign shell. Start dates in the past
// are rejected at creation time only; edits and line windows may backfill.
func (s *HeaderService) Create(ctx context.Context, in CreateHeaderInput) (*models.PromotionHeader, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validationf("name must not be empty")
	}
	if err := checkDateOrder(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if in.StartDate.Before(startOfDay(s.now())) {
		return nil, apperr.Validationf("start_date must not be in the past")
	}

	h := &models.PromotionHeader{
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Active:    in.Active,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate()
	return h, nil
}

func (s *HeaderService) Get(ctx context.Context, id int) (*models.PromotionHeader, error) {
	return s.repo.Get(ctx, id)
}

func (s *HeaderService) List(ctx context.Context) ([]*models.PromotionHeader, error) {
	return s.repo.List(ctx)
}

// Update applies partial edits, re-checking the date-order invariant whenever
// either date changes.
func (s *HeaderService) Update(ctx context.Context, id int, in UpdateHeaderInput) (*models.PromotionHeader, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validationf("name must not be empty")
		}
		h.Name = strings.TrimSpace(*in.Name)
	}
	if in.StartDate != nil {
		h.StartDate = *in.StartDate
	}
	if in.ClearEndDate {
		h.EndDate = nil
	} else if in.EndDate != nil {
		h.EndDate = in.EndDate
	}
	if in.Active != nil {
		h.Active = *in.Active
	}

	if in.StartDate != nil || in.EndDate != nil || in.ClearEndDate {
		if err := checkDateOrder(h.StartDate, h.EndDate); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate()
	return h, nil
}

// ToggleActive flips the manual switch without touching dates.
func (s *HeaderService) ToggleActive(ctx context.Context, id int) (*models.PromotionHeader, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Active = !h.Active
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	s.invalidate()
	return h, nil
}

// Delete removes the header and cascades to its lines and details. The
// destructive-action confirmation belongs to the caller, not here.
func (s *HeaderService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *HeaderService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func checkDateOrder(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return apperr.Validationf("end_date must be after start_date")
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
