package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/testutil"
)

type HeaderServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *testutil.InMemoryPromotionStore
	svc   *HeaderService
	now   time.Time
}

func TestHeaderService(t *testing.T) {
	suite.Run(t, new(HeaderServiceSuite))
}

func (s *HeaderServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewInMemoryPromotionStore()
	s.svc = NewHeaderService(s.store.Headers(), nil)
	s.now = time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.now }
}

func (s *HeaderServiceSuite) date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *HeaderServiceSuite) TestCreate() {
	end := s.date(2025, 12, 31)
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{
		Name:      "KM Thang 9",
		StartDate: s.date(2025, 9, 1),
		EndDate:   &end,
		Active:    true,
	})
	s.NoError(err)
	s.Greater(h.ID, 0)
	s.Equal("KM Thang 9", h.Name)
	s.True(h.Active)

	// round-trip
	got, err := s.svc.Get(s.ctx, h.ID)
	s.NoError(err)
	s.Equal(h.Name, got.Name)
	s.Equal(h.StartDate, got.StartDate)
	s.Equal(*h.EndDate, *got.EndDate)
	s.Equal(h.Active, got.Active)
}

func (s *HeaderServiceSuite) TestCreateRejectsInvertedDates() {
	end := s.date(2025, 9, 1)
	_, err := s.svc.Create(s.ctx, CreateHeaderInput{
		Name:      "Bad",
		StartDate: s.date(2025, 12, 31),
		EndDate:   &end,
		Active:    true,
	})
	s.Error(err)
	s.True(apperr.IsValidation(err))
}

func (s *HeaderServiceSuite) TestCreateRejectsEqualDates() {
	day := s.date(2025, 9, 1)
	_, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "Same", StartDate: day, EndDate: &day})
	s.True(apperr.IsValidation(err))
}

func (s *HeaderServiceSuite) TestCreateRejectsEmptyName() {
	_, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "   ", StartDate: s.date(2025, 9, 1)})
	s.True(apperr.IsValidation(err))
}

func (s *HeaderServiceSuite) TestCreateRejectsPastStart() {
	_, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "Old", StartDate: s.date(2025, 8, 1)})
	s.True(apperr.IsValidation(err))

	// same day is fine
	_, err = s.svc.Create(s.ctx, CreateHeaderInput{Name: "Today", StartDate: s.date(2025, 8, 15)})
	s.NoError(err)
}

func (s *HeaderServiceSuite) TestOpenEndedHeader() {
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "Open", StartDate: s.date(2025, 9, 1), Active: true})
	s.NoError(err)
	s.Nil(h.EndDate)
}

func (s *HeaderServiceSuite) TestUpdateRechecksDates() {
	end := s.date(2025, 12, 31)
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "KM", StartDate: s.date(2025, 9, 1), EndDate: &end, Active: true})
	s.Require().NoError(err)

	// moving the start past the end must fail
	badStart := s.date(2026, 1, 1)
	_, err = s.svc.Update(s.ctx, h.ID, UpdateHeaderInput{StartDate: &badStart})
	s.True(apperr.IsValidation(err))

	// clearing the end date makes any start valid
	updated, err := s.svc.Update(s.ctx, h.ID, UpdateHeaderInput{StartDate: &badStart, ClearEndDate: true})
	s.NoError(err)
	s.Nil(updated.EndDate)
	s.Equal(badStart, updated.StartDate)
}

func (s *HeaderServiceSuite) TestUpdateAllowsBackdatedEdits() {
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "KM", StartDate: s.date(2025, 9, 1), Active: true})
	s.Require().NoError(err)

	// the past-start rule applies at creation only
	past := s.date(2025, 1, 1)
	updated, err := s.svc.Update(s.ctx, h.ID, UpdateHeaderInput{StartDate: &past})
	s.NoError(err)
	s.Equal(past, updated.StartDate)
}

func (s *HeaderServiceSuite) TestToggleActiveIsIdempotentPair() {
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "KM", StartDate: s.date(2025, 9, 1), Active: true})
	s.Require().NoError(err)

	once, err := s.svc.ToggleActive(s.ctx, h.ID)
	s.NoError(err)
	s.False(once.Active)

	twice, err := s.svc.ToggleActive(s.ctx, h.ID)
	s.NoError(err)
	s.True(twice.Active)
}

func (s *HeaderServiceSuite) TestDeleteCascades() {
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "KM", StartDate: s.date(2025, 9, 1), Active: true})
	s.Require().NoError(err)

	lineSvc := NewLineService(s.store.Lines(), s.store.Headers(), s.store.Details(), nil)
	line, err := lineSvc.Create(s.ctx, CreateLineInput{
		HeaderID: h.ID, Target: "PRODUCT", TargetID: 5, Type: "DISCOUNT_PERCENT", Active: true,
	})
	s.Require().NoError(err)

	detailSvc := NewDetailService(s.store.Details(), s.store.Lines(), nil)
	pct := dec("20")
	_, err = detailSvc.Create(s.ctx, CreateDetailInput{LineID: line.ID, DiscountPercent: &pct, Active: true})
	s.Require().NoError(err)

	s.NoError(s.svc.Delete(s.ctx, h.ID))
	headers, lines, details := s.store.Counts()
	s.Zero(headers)
	s.Zero(lines)
	s.Zero(details)

	err = s.svc.Delete(s.ctx, h.ID)
	s.True(apperr.IsNotFound(err))
}

func (s *HeaderServiceSuite) TestUpdateNameValidation() {
	h, err := s.svc.Create(s.ctx, CreateHeaderInput{Name: "KM", StartDate: s.date(2025, 9, 1)})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, h.ID, UpdateHeaderInput{Name: lo.ToPtr(" ")})
	s.True(apperr.IsValidation(err))

	updated, err := s.svc.Update(s.ctx, h.ID, UpdateHeaderInput{Name: lo.ToPtr("KM Thang 10")})
	s.NoError(err)
	s.Equal("KM Thang 10", updated.Name)
}
