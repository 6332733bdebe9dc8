package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/openretail/promotion-service/internal/apperr"
)

var validate = validator.New()

type envelope struct {
	Data interface{} `json:"data"`
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Data: v})
}

// writeError maps the error taxonomy onto HTTP. Internal causes are logged,
// clients only see the code and message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	payload := errorPayload{Code: apperr.CodeInternal, Message: "internal error"}
	if e, ok := err.(*apperr.Error); ok {
		payload.Code = e.Code
		payload.Message = e.Message
		payload.Details = e.Details
	}
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: payload})
}

// decodeAndValidate decodes the JSON body into req and runs struct tags
// through the validator, turning field failures into a validation error.
func decodeAndValidate(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		details := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok {
			for _, fe := range fieldErrs {
				details[fe.Field()] = "failed " + fe.Tag() + " check"
			}
		}
		return apperr.Validationf("request validation failed").WithDetails(details)
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

func urlParamInt(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}
