package models

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/promotion-service/internal/apperr"
)

func TestDetailValidateForPercent(t *testing.T) {
	pct := decimal.NewFromInt(20)

	d := &PromotionDetail{DiscountPercent: &pct}
	require.NoError(t, d.ValidateFor(LineDiscountPercent))

	t.Run("missing percent", func(t *testing.T) {
		d := &PromotionDetail{}
		err := d.ValidateFor(LineDiscountPercent)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("percent out of range", func(t *testing.T) {
		over := decimal.NewFromInt(101)
		d := &PromotionDetail{DiscountPercent: &over}
		assert.Error(t, d.ValidateFor(LineDiscountPercent))

		negative := decimal.NewFromInt(-1)
		d = &PromotionDetail{DiscountPercent: &negative}
		assert.Error(t, d.ValidateFor(LineDiscountPercent))
	})

	t.Run("amount field rejected on percent line", func(t *testing.T) {
		amount := decimal.NewFromInt(5000)
		d := &PromotionDetail{DiscountPercent: &pct, DiscountAmount: &amount}
		err := d.ValidateFor(LineDiscountPercent)
		require.Error(t, err)
		var e *apperr.Error
		require.ErrorAs(t, err, &e)
		assert.Contains(t, e.Details, "discount_amount")
	})

	t.Run("min and max allowed", func(t *testing.T) {
		minAmt := decimal.NewFromInt(200000)
		maxDisc := decimal.NewFromInt(100000)
		d := &PromotionDetail{DiscountPercent: &pct, MinAmount: &minAmt, MaxDiscount: &maxDisc}
		assert.NoError(t, d.ValidateFor(LineDiscountPercent))
	})
}

func TestDetailValidateForAmount(t *testing.T) {
	amount := decimal.NewFromInt(30000)
	d := &PromotionDetail{DiscountAmount: &amount}
	require.NoError(t, d.ValidateFor(LineDiscountAmount))

	negative := decimal.NewFromInt(-1)
	d = &PromotionDetail{DiscountAmount: &negative}
	assert.Error(t, d.ValidateFor(LineDiscountAmount))

	d = &PromotionDetail{DiscountAmount: &amount, FreeQuantity: lo.ToPtr(1)}
	assert.Error(t, d.ValidateFor(LineDiscountAmount))
}

func TestDetailValidateForBuyXGetY(t *testing.T) {
	d := &PromotionDetail{ConditionQuantity: lo.ToPtr(3), FreeQuantity: lo.ToPtr(1)}
	require.NoError(t, d.ValidateFor(LineBuyXGetY))

	t.Run("missing free quantity", func(t *testing.T) {
		d := &PromotionDetail{ConditionQuantity: lo.ToPtr(3)}
		err := d.ValidateFor(LineBuyXGetY)
		require.Error(t, err)
		var e *apperr.Error
		require.ErrorAs(t, err, &e)
		assert.Contains(t, e.Details, "free_quantity")
	})

	t.Run("zero quantities rejected", func(t *testing.T) {
		d := &PromotionDetail{ConditionQuantity: lo.ToPtr(0), FreeQuantity: lo.ToPtr(1)}
		assert.Error(t, d.ValidateFor(LineBuyXGetY))

		d = &PromotionDetail{ConditionQuantity: lo.ToPtr(3), FreeQuantity: lo.ToPtr(0)}
		assert.Error(t, d.ValidateFor(LineBuyXGetY))
	})

	t.Run("percent field rejected", func(t *testing.T) {
		pct := decimal.NewFromInt(10)
		d := &PromotionDetail{ConditionQuantity: lo.ToPtr(3), FreeQuantity: lo.ToPtr(1), DiscountPercent: &pct}
		assert.Error(t, d.ValidateFor(LineBuyXGetY))
	})

	t.Run("gift and condition product refs allowed", func(t *testing.T) {
		d := &PromotionDetail{
			ConditionQuantity:  lo.ToPtr(2),
			FreeQuantity:       lo.ToPtr(1),
			ConditionProductID: lo.ToPtr(7),
			GiftProductID:      lo.ToPtr(9),
		}
		assert.NoError(t, d.ValidateFor(LineBuyXGetY))
	})
}

func TestHeaderInWindow(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	h := &PromotionHeader{StartDate: start, EndDate: &end}
	assert.False(t, h.InWindow(start.Add(-time.Second)))
	assert.True(t, h.InWindow(start))
	assert.True(t, h.InWindow(end))
	assert.False(t, h.InWindow(end.Add(time.Second)))

	open := &PromotionHeader{StartDate: start}
	assert.True(t, open.InWindow(start.AddDate(10, 0, 0)))
}

func TestLineWindowInheritsHeader(t *testing.T) {
	headerStart := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	headerEnd := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	h := &PromotionHeader{StartDate: headerStart, EndDate: &headerEnd}

	t.Run("no own window", func(t *testing.T) {
		l := &PromotionLine{}
		assert.True(t, l.InWindow(h, headerStart.AddDate(0, 1, 0)))
		assert.False(t, l.InWindow(h, headerStart.Add(-time.Hour)))
	})

	t.Run("narrower window", func(t *testing.T) {
		lineStart := headerStart.AddDate(0, 1, 0)
		lineEnd := headerStart.AddDate(0, 2, 0)
		l := &PromotionLine{StartDate: &lineStart, EndDate: &lineEnd}
		assert.False(t, l.InWindow(h, headerStart))
		assert.True(t, l.InWindow(h, lineStart))
		assert.False(t, l.InWindow(h, lineEnd.Add(time.Second)))
	})

	t.Run("window outside header allowed", func(t *testing.T) {
		// backfilled lines can predate the campaign
		lineStart := headerStart.AddDate(-1, 0, 0)
		l := &PromotionLine{StartDate: &lineStart}
		assert.True(t, l.InWindow(h, headerStart.AddDate(0, -6, 0)))
	})
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TargetProduct.Valid())
	assert.True(t, TargetCategory.Valid())
	assert.True(t, TargetCustomer.Valid())
	assert.False(t, TargetType("SUPPLIER").Valid())

	assert.True(t, LineBuyXGetY.Valid())
	assert.False(t, LineType("FREE_SHIPPING").Valid())
}
