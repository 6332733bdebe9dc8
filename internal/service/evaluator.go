package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

// PromotionReader supplies the active-flagged promotion aggregates; window
// filtering happens here so the read is cacheable for any timestamp.
type PromotionReader interface {
	ActivePromotions(ctx context.Context, at time.Time) ([]*models.PromotionMeta, error)
}

// MetaCache is the optional read-through cache in front of PromotionReader.
type MetaCache interface {
	Get() ([]*models.PromotionMeta, bool)
	Set(metas []*models.PromotionMeta)
	Invalidate()
}

// Evaluator decides which promotion details apply to a purchase and what
// they are worth.
//
// Resolution policy across competing details is best-single-discount: every
// matching detail is computed as a candidate, the largest monetary award
// wins, nothing stacks. Ties go to the earliest-created header.
type Evaluator struct {
	reader PromotionReader
	cache  MetaCache
	now    func() time.Time
}

func NewEvaluator(reader PromotionReader, cache MetaCache) *Evaluator {
	return &Evaluator{reader: reader, cache: cache, now: time.Now}
}

// Evaluate walks header -> line -> detail, filtering by active flags and
// windows, and returns every candidate award plus the winner.
func (e *Evaluator) Evaluate(ctx context.Context, purchase models.PurchaseContext) (*models.EvaluationResult, error) {
	if len(purchase.Items) == 0 {
		return nil, apperr.Validationf("purchase must contain at least one item")
	}
	for _, it := range purchase.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validationf("item quantity must be positive")
		}
		if it.UnitPrice.IsNegative() {
			return nil, apperr.Validationf("item unit_price must not be negative")
		}
	}

	at := purchase.At
	if at.IsZero() {
		at = e.now()
	}

	metas, err := e.loadPromotions(ctx, at)
	if err != nil {
		return nil, err
	}

	result := &models.EvaluationResult{
		Candidates:    []models.AppliedDiscount{},
		TotalDiscount: decimal.Zero,
	}
	for _, meta := range metas {
		if !meta.PromotionHeader.Active || !meta.InWindow(at) {
			continue
		}
		for _, line := range meta.Lines {
			if !line.PromotionLine.Active || !line.InWindow(&meta.PromotionHeader, at) {
				continue
			}
			qualifying, matched := qualifyingAmount(&line.PromotionLine, purchase)
			if !matched {
				continue
			}
			for _, detail := range line.Details {
				if !detail.Active {
					continue
				}
				if award, ok := applyDetail(&line.PromotionLine, &detail, qualifying, purchase); ok {
					award.HeaderID = meta.ID
					result.Candidates = append(result.Candidates, award)
				}
			}
		}
	}

	if len(result.Candidates) > 0 {
		best := lo.MaxBy(result.Candidates, func(a, b models.AppliedDiscount) bool {
			return a.Discount.GreaterThan(b.Discount)
		})
		result.Best = &best
		result.TotalDiscount = best.Discount
	}
	return result, nil
}

func (e *Evaluator) loadPromotions(ctx context.Context, at time.Time) ([]*models.PromotionMeta, error) {
	if e.cache != nil {
		if metas, ok := e.cache.Get(); ok {
			return metas, nil
		}
	}
	metas, err := e.reader.ActivePromotions(ctx, at)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(metas)
	}
	return metas, nil
}

// qualifyingAmount computes the purchase subtotal a line's discount is
// measured against. PRODUCT and CATEGORY lines qualify on the matching
// items' subtotal; CUSTOMER lines qualify on the order total.
func qualifyingAmount(line *models.PromotionLine, purchase models.PurchaseContext) (decimal.Decimal, bool) {
	switch line.Target {
	case models.TargetCustomer:
		if purchase.CustomerID != line.TargetID {
			return decimal.Zero, false
		}
		return purchase.OrderTotal(), true
	case models.TargetProduct:
		items := lo.Filter(purchase.Items, func(it models.PurchaseItem, _ int) bool {
			return it.ProductID == line.TargetID
		})
		return sumSubtotals(items)
	case models.TargetCategory:
		items := lo.Filter(purchase.Items, func(it models.PurchaseItem, _ int) bool {
			return it.CategoryID == line.TargetID
		})
		return sumSubtotals(items)
	}
	return decimal.Zero, false
}

func sumSubtotals(items []models.PurchaseItem) (decimal.Decimal, bool) {
	if len(items) == 0 {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total, true
}

func applyDetail(line *models.PromotionLine, d *models.PromotionDetail, qualifying decimal.Decimal, purchase models.PurchaseContext) (models.AppliedDiscount, bool) {
	award := models.AppliedDiscount{
		LineID:           line.ID,
		DetailID:         d.ID,
		Type:             line.Type,
		Target:           line.Target,
		TargetID:         line.TargetID,
		QualifyingAmount: qualifying,
	}

	switch line.Type {
	case models.LineDiscountPercent:
		if d.DiscountPercent == nil || belowMinAmount(d, qualifying) {
			return award, false
		}
		discount := qualifying.Mul(*d.DiscountPercent).Div(decimal.NewFromInt(100))
		award.Discount = capDiscount(d, discount)
		return award, true
	case models.LineDiscountAmount:
		if d.DiscountAmount == nil || belowMinAmount(d, qualifying) {
			return award, false
		}
		award.Discount = capDiscount(d, *d.DiscountAmount)
		return award, true
	case models.LineBuyXGetY:
		return applyBuyXGetY(line, d, award, purchase)
	}
	return award, false
}

func belowMinAmount(d *models.PromotionDetail, qualifying decimal.Decimal) bool {
	return d.MinAmount != nil && qualifying.LessThan(*d.MinAmount)
}

func capDiscount(d *models.PromotionDetail, discount decimal.Decimal) decimal.Decimal {
	if d.MaxDiscount != nil && discount.GreaterThan(*d.MaxDiscount) {
		return *d.MaxDiscount
	}
	return discount
}

// applyBuyXGetY grants free units once per condition_quantity multiple:
// floor(purchased / condition_quantity) * free_quantity. The condition
// product defaults to the line's target; the gift defaults to the condition
// product. The award's monetary value is the free units priced at the gift
// product's unit price (falling back to the condition product's) so awards
// can be ranked against percent and amount discounts.
func applyBuyXGetY(line *models.PromotionLine, d *models.PromotionDetail, award models.AppliedDiscount, purchase models.PurchaseContext) (models.AppliedDiscount, bool) {
	if d.ConditionQuantity == nil || d.FreeQuantity == nil {
		return award, false
	}

	conditionProduct := 0
	if d.ConditionProductID != nil {
		conditionProduct = *d.ConditionProductID
	} else if line.Target == models.TargetProduct {
		conditionProduct = line.TargetID
	}
	if conditionProduct == 0 {
		return award, false
	}

	purchased := 0
	for _, it := range purchase.Items {
		if it.ProductID == conditionProduct {
			purchased += it.Quantity
		}
	}
	times := purchased / *d.ConditionQuantity
	if times == 0 {
		return award, false
	}

	gift := conditionProduct
	if d.GiftProductID != nil {
		gift = *d.GiftProductID
	}
	award.FreeQuantity = times * *d.FreeQuantity
	award.GiftProductID = gift
	award.Discount = unitPriceOf(purchase, gift, conditionProduct).Mul(decimal.NewFromInt(int64(award.FreeQuantity)))
	return award, true
}

func unitPriceOf(purchase models.PurchaseContext, productID, fallbackID int) decimal.Decimal {
	for _, it := range purchase.Items {
		if it.ProductID == productID {
			return it.UnitPrice
		}
	}
	for _, it := range purchase.Items {
		if it.ProductID == fallbackID {
			return it.UnitPrice
		}
	}
	return decimal.Zero
}
