package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
	"github.com/openretail/promotion-service/internal/testutil"
)

type LineServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *testutil.InMemoryPromotionStore
	svc      *LineService
	headerID int
}

func TestLineService(t *testing.T) {
	suite.Run(t, new(LineServiceSuite))
}

func (s *LineServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewInMemoryPromotionStore()
	s.svc = NewLineService(s.store.Lines(), s.store.Headers(), s.store.Details(), nil)

	headerSvc := NewHeaderService(s.store.Headers(), nil)
	headerSvc.now = func() time.Time { return time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC) }
	h, err := headerSvc.Create(s.ctx, CreateHeaderInput{
		Name:      "KM Thang 9",
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
	})
	s.Require().NoError(err)
	s.headerID = h.ID
}

func (s *LineServiceSuite) TestCreate() {
	line, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: s.headerID,
		Target:   models.TargetProduct,
		TargetID: 5,
		Type:     models.LineDiscountPercent,
		Active:   true,
	})
	s.NoError(err)
	s.Greater(line.ID, 0)
	s.Equal(s.headerID, line.HeaderID)
}

func (s *LineServiceSuite) TestCreateRejectsUnknownTargetType() {
	_, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: s.headerID,
		Target:   models.TargetType("SUPPLIER"),
		TargetID: 5,
		Type:     models.LineDiscountPercent,
	})
	s.Error(err)
	s.True(apperr.IsValidation(err))
}

func (s *LineServiceSuite) TestCreateRejectsUnknownLineType() {
	_, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: s.headerID,
		Target:   models.TargetProduct,
		TargetID: 5,
		Type:     models.LineType("FREE_SHIPPING"),
	})
	s.True(apperr.IsValidation(err))
}

func (s *LineServiceSuite) TestCreateRejectsMissingHeader() {
	_, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: 999,
		Target:   models.TargetProduct,
		TargetID: 5,
		Type:     models.LineDiscountPercent,
	})
	s.True(apperr.IsNotFound(err))
}

func (s *LineServiceSuite) TestCreateAllowsPastWindow() {
	// historical lines are legitimate; only header creation rejects the past
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	line, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID:  s.headerID,
		Target:    models.TargetCategory,
		TargetID:  3,
		Type:      models.LineDiscountAmount,
		StartDate: &start,
		EndDate:   &end,
		Active:    true,
	})
	s.NoError(err)
	s.Equal(start, *line.StartDate)
}

func (s *LineServiceSuite) TestCreateRejectsInvertedWindow() {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID:  s.headerID,
		Target:    models.TargetProduct,
		TargetID:  5,
		Type:      models.LineDiscountPercent,
		StartDate: &start,
		EndDate:   &end,
	})
	s.True(apperr.IsValidation(err))
}

func (s *LineServiceSuite) TestUpdateTypeBlockedWhileDetailsExist() {
	line, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: s.headerID, Target: models.TargetProduct, TargetID: 5,
		Type: models.LineDiscountPercent, Active: true,
	})
	s.Require().NoError(err)

	detailSvc := NewDetailService(s.store.Details(), s.store.Lines(), nil)
	pct := dec("10")
	_, err = detailSvc.Create(s.ctx, CreateDetailInput{LineID: line.ID, DiscountPercent: &pct, Active: true})
	s.Require().NoError(err)

	newType := models.LineBuyXGetY
	_, err = s.svc.Update(s.ctx, line.ID, UpdateLineInput{Type: &newType})
	s.True(apperr.IsValidation(err))

	// retargeting is always fine
	updated, err := s.svc.Update(s.ctx, line.ID, UpdateLineInput{TargetID: lo.ToPtr(6)})
	s.NoError(err)
	s.Equal(6, updated.TargetID)
}

func (s *LineServiceSuite) TestDeleteCascadesToDetails() {
	line, err := s.svc.Create(s.ctx, CreateLineInput{
		HeaderID: s.headerID, Target: models.TargetProduct, TargetID: 5,
		Type: models.LineDiscountPercent, Active: true,
	})
	s.Require().NoError(err)

	detailSvc := NewDetailService(s.store.Details(), s.store.Lines(), nil)
	pct := dec("10")
	_, err = detailSvc.Create(s.ctx, CreateDetailInput{LineID: line.ID, DiscountPercent: &pct, Active: true})
	s.Require().NoError(err)

	s.NoError(s.svc.Delete(s.ctx, line.ID))
	headers, lines, details := s.store.Counts()
	s.Equal(1, headers) // header survives
	s.Zero(lines)
	s.Zero(details)
}

func (s *LineServiceSuite) TestListByHeader() {
	for i := 0; i < 3; i++ {
		_, err := s.svc.Create(s.ctx, CreateLineInput{
			HeaderID: s.headerID, Target: models.TargetProduct, TargetID: i + 1,
			Type: models.LineDiscountPercent, Active: true,
		})
		s.Require().NoError(err)
	}
	lines, err := s.svc.ListByHeader(s.ctx, s.headerID)
	s.NoError(err)
	s.Len(lines, 3)

	_, err = s.svc.ListByHeader(s.ctx, 999)
	s.True(apperr.IsNotFound(err))
}
