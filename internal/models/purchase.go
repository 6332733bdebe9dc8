package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItem is one order line of the purchase being evaluated.
type PurchaseItem struct {
	ProductID  int             `json:"product_id"`
	CategoryID int             `json:"category_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (i PurchaseItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseContext is the evaluator input: who is buying what, and when.
type PurchaseContext struct {
	CustomerID int            `json:"customer_id"`
	Items      []PurchaseItem `json:"items"`
	At         time.Time      `json:"timestamp"`
}

func (p PurchaseContext) OrderTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// AppliedDiscount is one matching detail with its computed award.
type AppliedDiscount struct {
	HeaderID         int             `json:"header_id"`
	LineID           int             `json:"line_id"`
	DetailID         int             `json:"detail_id"`
	Type             LineType        `json:"type"`
	Target           TargetType      `json:"target_type"`
	TargetID         int             `json:"target_id"`
	QualifyingAmount decimal.Decimal `json:"qualifying_amount"`
	Discount         decimal.Decimal `json:"discount"`
	FreeQuantity     int             `json:"free_quantity,omitempty"`
	GiftProductID    int             `json:"gift_product_id,omitempty"`
}

// EvaluationResult lists every candidate award and the single winner under
// the best-single-discount policy. TotalDiscount equals the winner's value,
// or zero when nothing matched.
type EvaluationResult struct {
	Best          *AppliedDiscount  `json:"best,omitempty"`
	Candidates    []AppliedDiscount `json:"candidates"`
	TotalDiscount decimal.Decimal   `json:"total_discount"`
}
