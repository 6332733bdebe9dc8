package handlers

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/promotion-service/internal/apperr"
)

func TestParseStartDateNormalizesToStartOfDay(t *testing.T) {
	got, err := parseStartDate("2025-09-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseEndDateNormalizesToEndOfDay(t *testing.T) {
	got, err := parseEndDate("2025-09-30")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 9, 30, 23, 59, 59, 0, time.UTC), *got)
}

func TestParseDateKeepsExplicitTimestamps(t *testing.T) {
	got, err := parseEndDate("2025-09-30T14:30:00+07:00")
	require.NoError(t, err)
	require.NotNil(t, got)
	// explicit time is preserved, only converted to UTC
	assert.Equal(t, time.Date(2025, 9, 30, 7, 30, 0, 0, time.UTC), *got)
}

func TestParseDateEmptyMeansUnset(t *testing.T) {
	got, err := parseStartDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseEndDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := parseStartDate("30/09/2025")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestActiveDefaultsToTrue(t *testing.T) {
	assert.True(t, activeOrDefault(nil))
	assert.True(t, activeOrDefault(lo.ToPtr(true)))
	assert.False(t, activeOrDefault(lo.ToPtr(false)))
}

func TestCreateHeaderRequestToInput(t *testing.T) {
	req := createHeaderRequest{Name: "KM Thang 9", StartDate: "2025-09-01", EndDate: "2025-09-30"}
	in, err := req.toInput()
	require.NoError(t, err)
	assert.Equal(t, "KM Thang 9", in.Name)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), in.StartDate)
	require.NotNil(t, in.EndDate)
	assert.Equal(t, time.Date(2025, 9, 30, 23, 59, 59, 0, time.UTC), *in.EndDate)
	assert.True(t, in.Active)
}

func TestCreateHeaderRequestRejectsBlankStart(t *testing.T) {
	req := createHeaderRequest{Name: "KM", StartDate: "  "}
	_, err := req.toInput()
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateHeaderRequestClearEndDate(t *testing.T) {
	req := updateHeaderRequest{EndDate: lo.ToPtr("")}
	in, err := req.toInput()
	require.NoError(t, err)
	assert.True(t, in.ClearEndDate)
	assert.Nil(t, in.EndDate)

	// absent field leaves the end date alone
	in, err = (&updateHeaderRequest{Name: lo.ToPtr("KM")}).toInput()
	require.NoError(t, err)
	assert.False(t, in.ClearEndDate)
}

func TestEvaluateRequestToContext(t *testing.T) {
	req := evaluateRequest{
		CustomerID: 42,
		Timestamp:  "2025-09-15",
		Items: []evaluateItemRequest{
			{ProductID: 5, CategoryID: 2, Quantity: 3, UnitPrice: decimal.RequireFromString("100000")},
		},
	}
	ctx, err := req.toContext()
	require.NoError(t, err)
	assert.Equal(t, 42, ctx.CustomerID)
	assert.Equal(t, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), ctx.At)
	require.Len(t, ctx.Items, 1)
	assert.True(t, ctx.Items[0].UnitPrice.Equal(decimal.RequireFromString("100000")))
}

func TestQuickPromotionRequestToInput(t *testing.T) {
	pct := decimal.RequireFromString("10")
	req := quickPromotionRequest{
		Name:      "KM Khai Truong",
		StartDate: "2025-09-01",
		Lines: []quickLineRequest{
			{
				Target: "PRODUCT", TargetID: 5, Type: "DISCOUNT_PERCENT",
				EndDate: "2025-09-15",
				Detail:  &detailFields{DiscountPercent: &pct},
			},
		},
	}
	in, err := req.toInput()
	require.NoError(t, err)
	require.Len(t, in.Lines, 1)
	require.NotNil(t, in.Lines[0].EndDate)
	assert.Equal(t, time.Date(2025, 9, 15, 23, 59, 59, 0, time.UTC), *in.Lines[0].EndDate)
	require.NotNil(t, in.Lines[0].Detail)
	assert.True(t, in.Lines[0].Detail.Active)
}
