package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entries EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entries EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// Create creates an entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}

	entry, err := h.entries.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// List lists the entries of a period, optionally filtered by q and filter.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	period, filter, ok := parseStatementQuery(w, r)
	if !ok {
		return
	}

	entries, err := h.entries.List(r.Context(), usecase.ListEntriesInput{
		Period: period,
		Filter: filter,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryListResponse{
		Entries: dto.EntriesFromDomain(entries),
		Count:   len(entries),
	})
}

// Delete removes an unpaid entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", domain.ErrMissingEntryID.Error())
		return
	}

	if err := h.entries.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to delete entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
