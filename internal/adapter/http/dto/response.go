package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SnapshotResponse tells the client which snapshot a view was derived from.
type SnapshotResponse struct {
	FetchedAt   time.Time `json:"fetched_at"`
	StaleReason string    `json:"stale_reason,omitempty"`
	Version     uint64    `json:"version"`
	Stale       bool      `json:"stale"`
}

// SnapshotFromInfo converts snapshot info to a response.
func SnapshotFromInfo(info usecase.SnapshotInfo) SnapshotResponse {
	return SnapshotResponse{
		Version:     info.Version,
		FetchedAt:   info.FetchedAt,
		Stale:       info.Stale,
		StaleReason: info.StaleReason,
	}
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID               string          `json:"id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Direction        string          `json:"direction"`
	Category         string          `json:"category"`
	DueDate          string          `json:"due_date"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"payment_method"`
	InstallmentIndex *int            `json:"installment_index,omitempty"`
	InstallmentTotal *int            `json:"installment_total,omitempty"`
	ClientID         string          `json:"client_id,omitempty"`
	ContractID       string          `json:"contract_id,omitempty"`
	ReceiptRef       string          `json:"receipt_ref,omitempty"`
	AttachmentRefs   []string        `json:"attachment_refs"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.Entry) EntryResponse {
	attachments := e.AttachmentRefs
	if attachments == nil {
		attachments = []string{}
	}

	return EntryResponse{
		ID:               e.ID,
		Description:      e.Description,
		Amount:           e.Amount,
		Direction:        string(e.Direction),
		Category:         string(e.Category),
		DueDate:          e.DueDate.Format(DateLayout),
		Status:           string(e.Status),
		PaymentMethod:    string(e.PaymentMethod),
		InstallmentIndex: e.InstallmentIndex,
		InstallmentTotal: e.InstallmentTotal,
		ClientID:         e.ClientID,
		ContractID:       e.ContractID,
		ReceiptRef:       e.ReceiptRef,
		AttachmentRefs:   attachments,
		PaidAt:           e.PaidAt,
		CreatedAt:        e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryFromDomain(e))
	}
	return out
}

// EntryListResponse represents a list of entries.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

type CategoryAmountResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type ClientRankingResponse struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	VisitCount int             `json:"visit_count"`
}

// SummaryBody holds the period KPIs.
type SummaryBody struct {
	Period             string                   `json:"period"`
	InflowTotal        decimal.Decimal          `json:"inflow_total"`
	OutflowTotal       decimal.Decimal          `json:"outflow_total"`
	NetResult          decimal.Decimal          `json:"net_result"`
	CategoryBreakdown  []CategoryAmountResponse `json:"category_breakdown"`
	OperationalRanking []ClientRankingResponse  `json:"operational_ranking"`
	EntryCount         int                      `json:"entry_count"`
}

// SummaryFromDomain converts a domain summary.
func SummaryFromDomain(s domain.Summary) SummaryBody {
	body := SummaryBody{
		Period:             s.Period.String(),
		InflowTotal:        s.InflowTotal,
		OutflowTotal:       s.OutflowTotal,
		NetResult:          s.NetResult,
		CategoryBreakdown:  make([]CategoryAmountResponse, 0, len(s.CategoryBreakdown)),
		OperationalRanking: make([]ClientRankingResponse, 0, len(s.OperationalRanking)),
		EntryCount:         s.EntryCount,
	}

	for _, c := range s.CategoryBreakdown {
		body.CategoryBreakdown = append(body.CategoryBreakdown, CategoryAmountResponse{
			Category: string(c.Category),
			Amount:   c.Amount,
		})
	}

	for _, r := range s.OperationalRanking {
		body.OperationalRanking = append(body.OperationalRanking, ClientRankingResponse{
			ClientID:   r.ClientID,
			ClientName: r.ClientName,
			TotalCost:  r.TotalCost,
			VisitCount: r.VisitCount,
		})
	}

	return body
}

// SummaryResponse is the period summary with its snapshot info.
type SummaryResponse struct {
	SummaryBody
	Snapshot SnapshotResponse `json:"snapshot"`
}

// CollectionLineResponse is one row of the collection list.
type CollectionLineResponse struct {
	Kind           string          `json:"kind"`
	ClientID       string          `json:"client_id,omitempty"`
	ClientName     string          `json:"client_name,omitempty"`
	Description    string          `json:"description"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	EntryCount     int             `json:"entry_count"`
	OldestDueDate  string          `json:"oldest_due_date"`
	MemberEntryIDs []string        `json:"member_entry_ids"`
}

// DelinquencyBody is the collection list.
type DelinquencyBody struct {
	AsOf       string                   `json:"as_of"`
	AllClear   bool                     `json:"all_clear"`
	Total      decimal.Decimal          `json:"total"`
	EntryCount int                      `json:"entry_count"`
	Lines      []CollectionLineResponse `json:"lines"`
}

// DelinquencyFromDomain converts a grouping result.
func DelinquencyFromDomain(d domain.Delinquency) DelinquencyBody {
	body := DelinquencyBody{
		AsOf:       d.AsOf.Format(DateLayout),
		AllClear:   d.AllClear(),
		Total:      d.Total,
		EntryCount: d.EntryCount,
		Lines:      make([]CollectionLineResponse, 0, len(d.Lines)),
	}

	for _, l := range d.Lines {
		body.Lines = append(body.Lines, CollectionLineResponse{
			Kind:           string(l.Kind),
			ClientID:       l.ClientID,
			ClientName:     l.ClientName,
			Description:    l.Description,
			TotalAmount:    l.TotalAmount,
			EntryCount:     l.EntryCount,
			OldestDueDate:  l.OldestDueDate.Format(DateLayout),
			MemberEntryIDs: l.MemberEntryIDs,
		})
	}

	return body
}

// DelinquencyResponse is the collection list with its snapshot info.
type DelinquencyResponse struct {
	DelinquencyBody
	Snapshot SnapshotResponse `json:"snapshot"`
}

// StatementBody is the filtered statement of a period.
type StatementBody struct {
	Period  string          `json:"period"`
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

// StatementFromDomain converts a statement.
func StatementFromDomain(period domain.Period, entries []*domain.Entry) StatementBody {
	return StatementBody{
		Period:  period.String(),
		Entries: EntriesFromDomain(entries),
		Count:   len(entries),
	}
}

// StatementResponse is the statement with its snapshot info.
type StatementResponse struct {
	StatementBody
	Snapshot SnapshotResponse `json:"snapshot"`
}

// DashboardResponse bundles every view derived from one snapshot.
type DashboardResponse struct {
	Summary     SummaryBody      `json:"summary"`
	Delinquency DelinquencyBody  `json:"delinquency"`
	Statement   StatementBody    `json:"statement"`
	Snapshot    SnapshotResponse `json:"snapshot"`
}

// DashboardFromView converts a dashboard view.
func DashboardFromView(v *usecase.DashboardView) DashboardResponse {
	return DashboardResponse{
		Summary:     SummaryFromDomain(v.Summary),
		Delinquency: DelinquencyFromDomain(v.Delinquency),
		Statement:   StatementFromDomain(v.Summary.Period, v.Statement),
		Snapshot:    SnapshotFromInfo(v.Snapshot),
	}
}

// SettlementQuoteResponse is what a settlement would do.
type SettlementQuoteResponse struct {
	EntryIDs        []string        `json:"entry_ids"`
	AlreadyPaid     []string        `json:"already_paid"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	SnapshotVersion uint64          `json:"snapshot_version"`
}

// QuoteFromDomain converts a settlement quote.
func QuoteFromDomain(q *domain.SettlementQuote) SettlementQuoteResponse {
	return SettlementQuoteResponse{
		EntryIDs:        nonNil(q.EntryIDs),
		AlreadyPaid:     nonNil(q.AlreadyPaid),
		Total:           q.Total,
		Count:           q.Count(),
		SnapshotVersion: q.SnapshotVersion,
	}
}

// SettlementResponse reports a completed settlement.
type SettlementResponse struct {
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
	EntryIDs        []string        `json:"entry_ids"`
	AlreadyPaid     []string        `json:"already_paid"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	SnapshotVersion uint64          `json:"snapshot_version"`
	NoOp            bool            `json:"no_op"`
	Stale           bool            `json:"stale"`
}

// SettlementFromResult converts a settlement result.
func SettlementFromResult(r *usecase.SettlementResult) SettlementResponse {
	resp := SettlementResponse{
		EntryIDs:        nonNil(r.EntryIDs),
		AlreadyPaid:     nonNil(r.AlreadyPaid),
		Total:           r.Total,
		Count:           len(r.EntryIDs),
		SnapshotVersion: r.SnapshotVersion,
		NoOp:            r.NoOp,
		Stale:           r.Stale,
	}
	if !r.SettledAt.IsZero() {
		at := r.SettledAt
		resp.SettledAt = &at
	}
	return resp
}

// SettlementStatusResponse reports settlement dispatch activity.
type SettlementStatusResponse struct {
	Busy     bool `json:"busy"`
	InFlight int  `json:"in_flight"`
}

// RecurringInvoiceResponse reports a generation run.
type RecurringInvoiceResponse struct {
	Period    string `json:"period"`
	Generated int    `json:"generated"`
	Stale     bool   `json:"stale"`
}

// RecurringInvoiceFromResult converts a generation result.
func RecurringInvoiceFromResult(r *usecase.RecurringInvoiceResult) RecurringInvoiceResponse {
	return RecurringInvoiceResponse{
		Period:    r.Period.String(),
		Generated: r.Generated,
		Stale:     r.Stale,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
