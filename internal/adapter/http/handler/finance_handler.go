package handler

import (
	"net/http"
	"time"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// FinanceHandler serves the read models of the finance dashboard.
type FinanceHandler struct {
	dashboard DashboardService
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(dashboard DashboardService) *FinanceHandler {
	return &FinanceHandler{dashboard: dashboard}
}

// Dashboard returns summary, collection list and statement built from one snapshot.
func (h *FinanceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	period, filter, ok := parseStatementQuery(w, r)
	if !ok {
		return
	}

	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	view, err := h.dashboard.Load(r.Context(), usecase.DashboardInput{
		Period: period,
		AsOf:   asOf,
		Filter: filter,
	})
	if err != nil {
		writeDomainError(w, err, "failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromView(view))
}

// Summary returns the KPIs of a period.
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	view, err := h.dashboard.Summary(r.Context(), period)
	if err != nil {
		writeDomainError(w, err, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{
		SummaryBody: dto.SummaryFromDomain(view.Summary),
		Snapshot:    dto.SnapshotFromInfo(view.Snapshot),
	})
}

// Delinquency returns the collection list.
func (h *FinanceHandler) Delinquency(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	view, err := h.dashboard.Delinquency(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, err, "failed to compute delinquency")
		return
	}

	writeJSON(w, http.StatusOK, dto.DelinquencyResponse{
		DelinquencyBody: dto.DelinquencyFromDomain(view.Delinquency),
		Snapshot:        dto.SnapshotFromInfo(view.Snapshot),
	})
}

// Statement returns the filtered entries of a period.
func (h *FinanceHandler) Statement(w http.ResponseWriter, r *http.Request) {
	period, filter, ok := parseStatementQuery(w, r)
	if !ok {
		return
	}

	view, err := h.dashboard.Statement(r.Context(), period, filter)
	if err != nil {
		writeDomainError(w, err, "failed to build statement")
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementResponse{
		StatementBody: dto.StatementFromDomain(view.Period, view.Entries),
		Snapshot:      dto.SnapshotFromInfo(view.Snapshot),
	})
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (domain.Period, bool) {
	period, err := dto.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return domain.Period{}, false
	}
	return period, true
}

func parseAsOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	asOf, err := dto.ParseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return time.Time{}, false
	}
	return asOf, true
}

func parseStatementQuery(w http.ResponseWriter, r *http.Request) (domain.Period, domain.StatementFilter, bool) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return domain.Period{}, domain.StatementFilter{}, false
	}

	quick, err := domain.ParseQuickFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return domain.Period{}, domain.StatementFilter{}, false
	}

	return period, domain.StatementFilter{Query: r.URL.Query().Get("q"), Quick: quick}, true
}
