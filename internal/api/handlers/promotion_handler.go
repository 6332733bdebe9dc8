package handlers

import (
	"net/http"

	"github.com/openretail/promotion-service/internal/service"
)

// PromotionHandler serves the flows that span the whole aggregate: the
// quick-promotion wizard and purchase evaluation.
type PromotionHandler struct {
	wizard    *service.WizardService
	evaluator *service.Evaluator
}

func NewPromotionHandler(wizard *service.WizardService, evaluator *service.Evaluator) *PromotionHandler {
	return &PromotionHandler{wizard: wizard, evaluator: evaluator}
}

// Quick handles POST /promotions/quick: one header plus N lines and details
// created atomically.
func (h *PromotionHandler) Quick(w http.ResponseWriter, r *http.Request) {
	var req quickPromotionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	meta, err := h.wizard.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, meta)
}

// Evaluate handles POST /promotions/evaluate
func (h *PromotionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	purchase, err := req.toContext()
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.evaluator.Evaluate(r.Context(), purchase)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
