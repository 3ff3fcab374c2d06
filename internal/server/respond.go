package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"billing/internal/analytics"
	"billing/internal/checkout"
	"billing/internal/report"
	"billing/internal/store"
	"github.com/rs/zerolog/hlog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// fail maps err onto a status code, logs server-side failures and writes
// the error body. message is shown for 500s instead of the internal error.
func fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg(message)
		resp := ErrorResponse{Error: message}
		var checkoutErr *checkout.CheckoutError
		if errors.As(err, &checkoutErr) {
			resp.Details = checkoutErr.Details
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSONError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, analytics.ErrInvalidWindow),
		errors.Is(err, report.ErrMissingData),
		errors.Is(err, report.ErrUnsupportedFormat),
		errors.Is(err, checkout.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrAlreadyPaid),
		errors.Is(err, checkout.ErrNotificationMismatch):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrInvalidSignature):
		return http.StatusUnauthorized
	default:
		var checkoutErr *checkout.CheckoutError
		if errors.As(err, &checkoutErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
