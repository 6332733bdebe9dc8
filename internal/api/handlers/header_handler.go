package handlers

import (
	"net/http"

	"github.com/openretail/promotion-service/internal/service"
)

type HeaderHandler struct {
	headers *service.HeaderService
	lines   *service.LineService
}

func NewHeaderHandler(headers *service.HeaderService, lines *service.LineService) *HeaderHandler {
	return &HeaderHandler{headers: headers, lines: lines}
}

// List handles GET /promotions/headers
func (h *HeaderHandler) List(w http.ResponseWriter, r *http.Request) {
	headers, err := h.headers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, headers)
}

// Get handles GET /promotions/headers/{id}
func (h *HeaderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	header, err := h.headers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, header)
}

// Create handles POST /promotions/headers
func (h *HeaderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHeaderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	header, err := h.headers.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, header)
}

// Update handles PUT /promotions/headers/{id}
func (h *HeaderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateHeaderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	header, err := h.headers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, header)
}

// ToggleActive handles PUT /promotions/headers/{id}/toggle
func (h *HeaderHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	header, err := h.headers.ToggleActive(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, header)
}

// Delete handles DELETE /promotions/headers/{id}. The cascade to lines and
// details is intentional; confirmation happens at the caller.
func (h *HeaderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.headers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"deleted": id})
}

// ListLines handles GET /promotions/headers/{id}/lines/all
func (h *HeaderHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.lines.ListByHeader(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, lines)
}
