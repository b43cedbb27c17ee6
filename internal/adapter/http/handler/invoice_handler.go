package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/iho/cashbook/internal/adapter/http/dto"
)

// InvoiceHandler triggers recurring invoice generation.
type InvoiceHandler struct {
	invoices InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Trigger generates the missing contract invoices of a period. The body is optional.
func (h *InvoiceHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req dto.RecurringInvoiceRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := dto.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	result, err := h.invoices.Trigger(r.Context(), period)
	if err != nil {
		writeDomainError(w, err, "failed to generate invoices")
		return
	}

	writeJSON(w, http.StatusOK, dto.RecurringInvoiceFromResult(result))
}
