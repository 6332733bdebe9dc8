package handlers

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
	"github.com/openretail/promotion-service/internal/service"
)

const dateOnly = "2006-01-02"

// parseStartDate accepts RFC3339 or a bare date. Date-only start bounds are
// normalized to T00:00:00 UTC per the wire contract. Empty means unset.
func parseStartDate(s string) (*time.Time, error) {
	return parseDate(s, false)
}

// parseEndDate normalizes date-only end bounds to T23:59:59 UTC.
func parseEndDate(s string) (*time.Time, error) {
	return parseDate(s, true)
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return nil, apperr.Validationf("invalid date %q; use YYYY-MM-DD or RFC3339", s)
	}
	if endOfDay {
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	t = t.UTC()
	return &t, nil
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}

// --- Headers ---

type createHeaderRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
	Active    *bool  `json:"active"`
}

func (req *createHeaderRequest) toInput() (service.CreateHeaderInput, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return service.CreateHeaderInput{}, err
	}
	if start == nil {
		return service.CreateHeaderInput{}, apperr.Validationf("start_date must not be empty")
	}
	end, err := parseEndDate(req.EndDate)
	if err != nil {
		return service.CreateHeaderInput{}, err
	}
	return service.CreateHeaderInput{
		Name:      req.Name,
		StartDate: *start,
		EndDate:   end,
		Active:    activeOrDefault(req.Active),
	}, nil
}

type updateHeaderRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Active    *bool   `json:"active"`
}

func (req *updateHeaderRequest) toInput() (service.UpdateHeaderInput, error) {
	in := service.UpdateHeaderInput{Name: req.Name, Active: req.Active}
	if req.StartDate != nil {
		start, err := parseStartDate(*req.StartDate)
		if err != nil {
			return in, err
		}
		if start == nil {
			return in, apperr.Validationf("start_date must not be empty")
		}
		in.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseEndDate(*req.EndDate)
		if err != nil {
			return in, err
		}
		if end == nil {
			// explicit empty end date makes the campaign open-ended
			in.ClearEndDate = true
		} else {
			in.EndDate = end
		}
	}
	return in, nil
}

// --- Lines ---

type createLineRequest struct {
	HeaderID  int    `json:"promotion_header_id" validate:"required,gt=0"`
	Target    string `json:"target_type" validate:"required"`
	TargetID  int    `json:"target_id" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    *bool  `json:"active"`
}

func (req *createLineRequest) toInput() (service.CreateLineInput, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return service.CreateLineInput{}, err
	}
	end, err := parseEndDate(req.EndDate)
	if err != nil {
		return service.CreateLineInput{}, err
	}
	return service.CreateLineInput{
		HeaderID:  req.HeaderID,
		Target:    models.TargetType(req.Target),
		TargetID:  req.TargetID,
		Type:      models.LineType(req.Type),
		StartDate: start,
		EndDate:   end,
		Active:    activeOrDefault(req.Active),
	}, nil
}

type updateLineRequest struct {
	Target    *string `json:"target_type"`
	TargetID  *int    `json:"target_id"`
	Type      *string `json:"type"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Active    *bool   `json:"active"`
}

func (req *updateLineRequest) toInput() (service.UpdateLineInput, error) {
	in := service.UpdateLineInput{TargetID: req.TargetID, Active: req.Active}
	if req.Target != nil {
		t := models.TargetType(*req.Target)
		in.Target = &t
	}
	if req.Type != nil {
		t := models.LineType(*req.Type)
		in.Type = &t
	}
	if req.StartDate != nil {
		start, err := parseStartDate(*req.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseEndDate(*req.EndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = end
	}
	return in, nil
}

// --- Details ---

type detailFields struct {
	DiscountPercent    *decimal.Decimal `json:"discount_percent"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	MinAmount          *decimal.Decimal `json:"min_amount"`
	MaxDiscount        *decimal.Decimal `json:"max_discount"`
	ConditionQuantity  *int             `json:"condition_quantity"`
	FreeQuantity       *int             `json:"free_quantity"`
	ConditionProductID *int             `json:"condition_product_id"`
	GiftProductID      *int             `json:"gift_product_id"`
	Active             *bool            `json:"active"`
}

type createDetailRequest struct {
	LineID int `json:"promotion_line_id" validate:"required,gt=0"`
	detailFields
}

func (req *createDetailRequest) toInput() service.CreateDetailInput {
	return service.CreateDetailInput{
		LineID:             req.LineID,
		DiscountPercent:    req.DiscountPercent,
		DiscountAmount:     req.DiscountAmount,
		MinAmount:          req.MinAmount,
		MaxDiscount:        req.MaxDiscount,
		ConditionQuantity:  req.ConditionQuantity,
		FreeQuantity:       req.FreeQuantity,
		ConditionProductID: req.ConditionProductID,
		GiftProductID:      req.GiftProductID,
		Active:             activeOrDefault(req.Active),
	}
}

type updateDetailRequest struct {
	detailFields
}

func (req *updateDetailRequest) toInput() service.UpdateDetailInput {
	return service.UpdateDetailInput{
		DiscountPercent:    req.DiscountPercent,
		DiscountAmount:     req.DiscountAmount,
		MinAmount:          req.MinAmount,
		MaxDiscount:        req.MaxDiscount,
		ConditionQuantity:  req.ConditionQuantity,
		FreeQuantity:       req.FreeQuantity,
		ConditionProductID: req.ConditionProductID,
		GiftProductID:      req.GiftProductID,
		Active:             req.Active,
	}
}

// --- Quick promotion ---

type quickLineRequest struct {
	Target    string        `json:"target_type" validate:"required"`
	TargetID  int           `json:"target_id" validate:"required,gt=0"`
	Type      string        `json:"type" validate:"required"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Active    *bool         `json:"active"`
	Detail    *detailFields `json:"detail"`
}

type quickPromotionRequest struct {
	Name      string             `json:"name" validate:"required"`
	StartDate string             `json:"start_date" validate:"required"`
	EndDate   string             `json:"end_date"`
	Active    *bool              `json:"active"`
	Lines     []quickLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req *quickPromotionRequest) toInput() (service.QuickPromotionInput, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return service.QuickPromotionInput{}, err
	}
	if start == nil {
		return service.QuickPromotionInput{}, apperr.Validationf("start_date must not be empty")
	}
	end, err := parseEndDate(req.EndDate)
	if err != nil {
		return service.QuickPromotionInput{}, err
	}
	in := service.QuickPromotionInput{
		Header: service.CreateHeaderInput{
			Name:      req.Name,
			StartDate: *start,
			EndDate:   end,
			Active:    activeOrDefault(req.Active),
		},
	}
	for _, ql := range req.Lines {
		lineStart, err := parseStartDate(ql.StartDate)
		if err != nil {
			return in, err
		}
		lineEnd, err := parseEndDate(ql.EndDate)
		if err != nil {
			return in, err
		}
		qLine := service.QuickLineInput{
			Target:    models.TargetType(ql.Target),
			TargetID:  ql.TargetID,
			Type:      models.LineType(ql.Type),
			StartDate: lineStart,
			EndDate:   lineEnd,
			Active:    activeOrDefault(ql.Active),
		}
		if ql.Detail != nil {
			qLine.Detail = &service.CreateDetailInput{
				DiscountPercent:    ql.Detail.DiscountPercent,
				DiscountAmount:     ql.Detail.DiscountAmount,
				MinAmount:          ql.Detail.MinAmount,
				MaxDiscount:        ql.Detail.MaxDiscount,
				ConditionQuantity:  ql.Detail.ConditionQuantity,
				FreeQuantity:       ql.Detail.FreeQuantity,
				ConditionProductID: ql.Detail.ConditionProductID,
				GiftProductID:      ql.Detail.GiftProductID,
				Active:             activeOrDefault(ql.Detail.Active),
			}
		}
		in.Lines = append(in.Lines, qLine)
	}
	return in, nil
}

// --- Evaluation ---

type evaluateItemRequest struct {
	ProductID  int             `json:"product_id" validate:"required,gt=0"`
	CategoryID int             `json:"category_id"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type evaluateRequest struct {
	CustomerID int                   `json:"customer_id"`
	Timestamp  string                `json:"timestamp"`
	Items      []evaluateItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req *evaluateRequest) toContext() (models.PurchaseContext, error) {
	ctx := models.PurchaseContext{CustomerID: req.CustomerID}
	if strings.TrimSpace(req.Timestamp) != "" {
		at, err := parseStartDate(req.Timestamp)
		if err != nil {
			return ctx, err
		}
		ctx.At = *at
	}
	for _, it := range req.Items {
		ctx.Items = append(ctx.Items, models.PurchaseItem{
			ProductID:  it.ProductID,
			CategoryID: it.CategoryID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	return ctx, nil
}
