package handlers

import (
	"net/http"

	"github.com/openretail/promotion-service/internal/service"
)

type DetailHandler struct {
	details *service.DetailService
}

func NewDetailHandler(details *service.DetailService) *DetailHandler {
	return &DetailHandler{details: details}
}

// Create handles POST /promotions/details
func (h *DetailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDetailRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.details.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, detail)
}

// Update handles PUT /promotions/details/{id}
func (h *DetailHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateDetailRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.details.Update(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

// Activate handles PUT /promotions/details/{id}/activate
func (h *DetailHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles PUT /promotions/details/{id}/deactivate
func (h *DetailHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *DetailHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.details.SetActive(r.Context(), id, active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}
