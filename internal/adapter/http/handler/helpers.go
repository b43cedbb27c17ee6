package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status it maps to.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	// a failed settlement may wrap the cause that aborted it
	case errors.Is(err, domain.ErrSettlementFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSettlementUnconfirmed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSettlementInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryPaid), errors.Is(err, domain.ErrMissingEntryID):
		return http.StatusBadRequest
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSnapshotUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
