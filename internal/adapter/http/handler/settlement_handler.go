package handler

import (
	"net/http"

	"github.com/iho/cashbook/internal/adapter/http/dto"
)

// SettlementHandler handles settlement requests.
type SettlementHandler struct {
	settlements SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlements SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// Quote resolves a settlement request without changing anything.
func (h *SettlementHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.SettlementQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quote, err := h.settlements.Quote(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, err, "failed to quote settlement")
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}

// Submit settles the unsettled entries of the request.
func (h *SettlementHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitSettlementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.settlements.Submit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "settlement rejected")
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromResult(result))
}

// Status reports whether settlements are being dispatched.
func (h *SettlementHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SettlementStatusResponse{
		Busy:     h.settlements.IsBusy(),
		InFlight: h.settlements.InFlight(),
	})
}
