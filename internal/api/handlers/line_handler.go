package handlers

import (
	"net/http"

	"github.com/openretail/promotion-service/internal/service"
)

type LineHandler struct {
	lines   *service.LineService
	details *service.DetailService
}

func NewLineHandler(lines *service.LineService, details *service.DetailService) *LineHandler {
	return &LineHandler{lines: lines, details: details}
}

// Create handles POST /promotions/lines
func (h *LineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLineRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.lines.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, line)
}

// Update handles PUT /promotions/lines/{id}
func (h *LineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateLineRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.lines.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, line)
}

// Delete handles DELETE /promotions/lines/{id}
func (h *LineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.lines.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"deleted": id})
}

// ListDetails handles GET /promotions/lines/{id}/details/all
func (h *LineHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := h.details.ListByLine(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, details)
}
