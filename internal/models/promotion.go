package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openretail/promotion-service/internal/apperr"
)

// TargetType names the domain a line's target id belongs to.
type TargetType string

const (
	TargetProduct  TargetType = "PRODUCT"
	TargetCategory TargetType = "CATEGORY"
	TargetCustomer TargetType = "CUSTOMER"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetProduct, TargetCategory, TargetCustomer:
		return true
	}
	return false
}

// LineType is the discount mechanism a line declares. It decides which
// detail fields are required and which are forbidden.
type LineType string

const (
	LineDiscountPercent LineType = "DISCOUNT_PERCENT"
	LineDiscountAmount  LineType = "DISCOUNT_AMOUNT"
	LineBuyXGetY        LineType = "BUY_X_GET_Y"
)

func (t LineType) Valid() bool {
	switch t {
	case LineDiscountPercent, LineDiscountAmount, LineBuyXGetY:
		return true
	}
	return false
}

// PromotionHeader is the campaign shell. A nil EndDate means the campaign is
// open-ended. Active is a manual switch independent of the date window.
type PromotionHeader struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// InWindow reports whether at falls inside the header's validity window.
func (h *PromotionHeader) InWindow(at time.Time) bool {
	if at.Before(h.StartDate) {
		return false
	}
	if h.EndDate != nil && at.After(*h.EndDate) {
		return false
	}
	return true
}

// PromotionLine scopes a header to one target and one mechanism. Its window
// is optional; an unset bound falls back to the header's window.
type PromotionLine struct {
	ID        int        `json:"id"`
	HeaderID  int        `json:"promotion_header_id"`
	Target    TargetType `json:"target_type"`
	TargetID  int        `json:"target_id"`
	Type      LineType   `json:"type"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// InWindow checks the line's own window where set, inheriting the header's
// bounds where not. Line windows are allowed to lie outside the header's.
func (l *PromotionLine) InWindow(header *PromotionHeader, at time.Time) bool {
	start := header.StartDate
	if l.StartDate != nil {
		start = *l.StartDate
	}
	if at.Before(start) {
		return false
	}
	end := header.EndDate
	if l.EndDate != nil {
		end = l.EndDate
	}
	if end != nil && at.After(*end) {
		return false
	}
	return true
}

// PromotionDetail carries the numeric parameters of its line's mechanism.
// Fields irrelevant to the line type are nil, never zero: an evaluator must
// not read an absent DiscountPercent as 0%.
type PromotionDetail struct {
	ID                 int              `json:"id"`
	LineID             int              `json:"promotion_line_id"`
	DiscountPercent    *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	MinAmount          *decimal.Decimal `json:"min_amount,omitempty"`
	MaxDiscount        *decimal.Decimal `json:"max_discount,omitempty"`
	ConditionQuantity  *int             `json:"condition_quantity,omitempty"`
	FreeQuantity       *int             `json:"free_quantity,omitempty"`
	ConditionProductID *int             `json:"condition_product_id,omitempty"`
	GiftProductID      *int             `json:"gift_product_id,omitempty"`
	Active             bool             `json:"active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

var (
	percentFloor = decimal.Zero
	percentCeil  = decimal.NewFromInt(100)
)

// ValidateFor checks the detail against its parent line's mechanism type:
// required fields must be present and in range, and fields belonging to a
// different mechanism must be absent.
func (d *PromotionDetail) ValidateFor(t LineType) error {
	details := map[string]string{}

	switch t {
	case LineDiscountPercent:
		if d.DiscountPercent == nil {
			details["discount_percent"] = "required for DISCOUNT_PERCENT"
		} else if d.DiscountPercent.LessThan(percentFloor) || d.DiscountPercent.GreaterThan(percentCeil) {
			details["discount_percent"] = "must be between 0 and 100"
		}
		if d.DiscountAmount != nil {
			details["discount_amount"] = "not allowed for DISCOUNT_PERCENT"
		}
		d.requireNoQuantityFields(details)
	case LineDiscountAmount:
		if d.DiscountAmount == nil {
			details["discount_amount"] = "required for DISCOUNT_AMOUNT"
		} else if d.DiscountAmount.IsNegative() {
			details["discount_amount"] = "must not be negative"
		}
		if d.DiscountPercent != nil {
			details["discount_percent"] = "not allowed for DISCOUNT_AMOUNT"
		}
		d.requireNoQuantityFields(details)
	case LineBuyXGetY:
		if d.ConditionQuantity == nil {
			details["condition_quantity"] = "required for BUY_X_GET_Y"
		} else if *d.ConditionQuantity < 1 {
			details["condition_quantity"] = "must be at least 1"
		}
		if d.FreeQuantity == nil {
			details["free_quantity"] = "required for BUY_X_GET_Y"
		} else if *d.FreeQuantity < 1 {
			details["free_quantity"] = "must be at least 1"
		}
		if d.DiscountPercent != nil {
			details["discount_percent"] = "not allowed for BUY_X_GET_Y"
		}
		if d.DiscountAmount != nil {
			details["discount_amount"] = "not allowed for BUY_X_GET_Y"
		}
		if d.MinAmount != nil {
			details["min_amount"] = "not allowed for BUY_X_GET_Y"
		}
		if d.MaxDiscount != nil {
			details["max_discount"] = "not allowed for BUY_X_GET_Y"
		}
	default:
		return apperr.Validationf("unknown line type %q", t)
	}

	if d.MinAmount != nil && d.MinAmount.IsNegative() {
		details["min_amount"] = "must not be negative"
	}
	if d.MaxDiscount != nil && d.MaxDiscount.IsNegative() {
		details["max_discount"] = "must not be negative"
	}

	if len(details) > 0 {
		return apperr.Validationf("detail fields do not match line type %s", t).WithDetails(details)
	}
	return nil
}

func (d *PromotionDetail) requireNoQuantityFields(details map[string]string) {
	if d.ConditionQuantity != nil {
		details["condition_quantity"] = "only allowed for BUY_X_GET_Y"
	}
	if d.FreeQuantity != nil {
		details["free_quantity"] = "only allowed for BUY_X_GET_Y"
	}
	if d.ConditionProductID != nil {
		details["condition_product_id"] = "only allowed for BUY_X_GET_Y"
	}
	if d.GiftProductID != nil {
		details["gift_product_id"] = "only allowed for BUY_X_GET_Y"
	}
}

// LineMeta bundles a line with its details for evaluation.
type LineMeta struct {
	PromotionLine
	Details []PromotionDetail `json:"details"`
}

// PromotionMeta is the read model the evaluator walks: a header with all of
// its lines and their details.
type PromotionMeta struct {
	PromotionHeader
	Lines []LineMeta `json:"lines"`
}
