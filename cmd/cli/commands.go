package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/cashbook/internal/adapter/http/dto"
)

func summaryCmd(opts *options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the KPIs of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if period != "" {
				query.Set("period", period)
			}

			var resp dto.SummaryResponse
			if done, err := fetch(cmd, opts, "/api/v1/finance/summary", query, &resp); done || err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Period:   %s\n", resp.Period)
			fmt.Fprintf(w, "Inflow:   %s\n", money(resp.InflowTotal))
			fmt.Fprintf(w, "Outflow:  %s\n", money(resp.OutflowTotal))
			fmt.Fprintf(w, "Net:      %s\n", money(resp.NetResult))
			fmt.Fprintf(w, "Entries:  %d\n", resp.EntryCount)

			if len(resp.CategoryBreakdown) > 0 {
				fmt.Fprintln(w, "\nRevenue by category:")
				tw := newTable(w)
				for _, c := range resp.CategoryBreakdown {
					fmt.Fprintf(tw, "  %s\t%s\n", c.Category, money(c.Amount))
				}
				_ = tw.Flush()
			}

			if len(resp.OperationalRanking) > 0 {
				fmt.Fprintln(w, "\nSite visits by client:")
				tw := newTable(w)
				for _, r := range resp.OperationalRanking {
					fmt.Fprintf(tw, "  %s\t%d visits\t%s\n", truncate(r.ClientName, 32), r.VisitCount, money(r.TotalCost))
				}
				_ = tw.Flush()
			}

			staleNote(w, resp.Snapshot.Stale, resp.Snapshot.StaleReason)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Period as YYYY-MM (default: current month)")
	return cmd
}

func delinquencyCmd(opts *options) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "delinquency",
		Short: "List overdue receivables to collect",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if asOf != "" {
				query.Set("as_of", asOf)
			}

			var resp dto.DelinquencyResponse
			if done, err := fetch(cmd, opts, "/api/v1/finance/delinquency", query, &resp); done || err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if resp.AllClear {
				fmt.Fprintf(w, "All clear as of %s\n", resp.AsOf)
				staleNote(w, resp.Snapshot.Stale, resp.Snapshot.StaleReason)
				return nil
			}

			tw := newTable(w)
			fmt.Fprintln(tw, "OLDEST DUE\tKIND\tDESCRIPTION\tENTRIES\tTOTAL\tIDS")
			for _, l := range resp.Lines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					l.OldestDueDate, l.Kind, truncate(l.Description, 32), l.EntryCount,
					money(l.TotalAmount), strings.Join(l.MemberEntryIDs, ","))
			}
			_ = tw.Flush()

			fmt.Fprintf(w, "\n%d entries, %s overdue as of %s\n", resp.EntryCount, money(resp.Total), resp.AsOf)
			staleNote(w, resp.Snapshot.Stale, resp.Snapshot.StaleReason)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Reference date as YYYY-MM-DD (default: today)")
	return cmd
}

func statementCmd(opts *options) *cobra.Command {
	var period, q, filter string

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "List the entries of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if period != "" {
				query.Set("period", period)
			}
			if q != "" {
				query.Set("q", q)
			}
			if filter != "" {
				query.Set("filter", filter)
			}

			var resp dto.StatementResponse
			if done, err := fetch(cmd, opts, "/api/v1/finance/statement", query, &resp); done || err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			tw := newTable(w)
			fmt.Fprintln(tw, "DUE\tID\tDESCRIPTION\tCATEGORY\tDIRECTION\tSTATUS\tAMOUNT")
			for _, e := range resp.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.DueDate, e.ID, truncate(e.Description, 32), e.Category, e.Direction, e.Status, money(e.Amount))
			}
			_ = tw.Flush()

			fmt.Fprintf(w, "\n%d entries in %s\n", resp.Count, resp.Period)
			staleNote(w, resp.Snapshot.Stale, resp.Snapshot.StaleReason)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Period as YYYY-MM (default: current month)")
	cmd.Flags().StringVarP(&q, "query", "q", "", "Free-text search over description and client")
	cmd.Flags().StringVar(&filter, "filter", "", "ALL, INFLOW, OUTFLOW or a category")
	return cmd
}

func settleCmd(opts *options) *cobra.Command {
	var yes bool
	var key, clientID, asOf string

	cmd := &cobra.Command{
		Use:   "settle [ENTRY_ID...]",
		Short: "Mark entries as paid after confirming the total",
		Long: "Mark entries as paid after confirming the total.\n\n" +
			"Pass entry ids, or --client to settle everything that client has overdue.",
		Args: func(cmd *cobra.Command, args []string) error {
			if clientID == "" && len(args) == 0 {
				return errors.New("pass entry ids or --client")
			}
			if clientID != "" && len(args) > 0 {
				return errors.New("entry ids and --client are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			w := cmd.OutOrStdout()

			ids := args
			if clientID != "" {
				var err error
				if ids, err = overdueEntryIDs(cmd, client, clientID, asOf); err != nil {
					return err
				}
			}

			var quote dto.SettlementQuoteResponse
			err := client.post(cmd.Context(), "/api/v1/settlements/quote",
				dto.SettlementQuoteRequest{EntryIDs: ids}, nil, &quote)
			if err != nil {
				return err
			}

			if len(quote.AlreadyPaid) > 0 {
				fmt.Fprintf(w, "Already paid, skipped: %s\n", strings.Join(quote.AlreadyPaid, ", "))
			}
			if quote.Count == 0 {
				fmt.Fprintln(w, "Nothing to settle.")
				return nil
			}

			fmt.Fprintf(w, "Settle %d entries totalling %s? ", quote.Count, money(quote.Total))
			if !yes {
				ok, err := confirm(cmd)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(w, "Aborted.")
					return nil
				}
			} else {
				fmt.Fprintln(w, "yes")
			}

			if key == "" {
				key = ulid.Make().String()
			}

			var result dto.SettlementResponse
			err = client.post(cmd.Context(), "/api/v1/settlements",
				dto.SubmitSettlementRequest{EntryIDs: quote.EntryIDs, ConfirmedTotal: quote.Total},
				map[string]string{"Idempotency-Key": key}, &result)
			if err != nil {
				return err
			}

			if opts.json {
				printJSON(w, result)
				return nil
			}

			fmt.Fprintf(w, "Settled %d entries, total %s.\n", result.Count, money(result.Total))
			if result.Stale {
				fmt.Fprintln(w, "WARNING: settlement recorded but views could not be refreshed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse a key to retry a settlement safely (default: new ULID)")
	cmd.Flags().StringVar(&clientID, "client", "", "Settle the client's overdue collection line")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Reference date for --client as YYYY-MM-DD (default: today)")
	return cmd
}

// overdueEntryIDs expands a client's collection line into its member entries.
func overdueEntryIDs(cmd *cobra.Command, client *apiClient, clientID, asOf string) ([]string, error) {
	query := url.Values{}
	if asOf != "" {
		query.Set("as_of", asOf)
	}

	var resp dto.DelinquencyResponse
	if err := client.get(cmd.Context(), "/api/v1/finance/delinquency", query, &resp); err != nil {
		return nil, err
	}

	for _, line := range resp.Lines {
		if line.ClientID == clientID {
			return line.MemberEntryIDs, nil
		}
	}
	return nil, fmt.Errorf("client %s has nothing overdue as of %s", clientID, resp.AsOf)
}

func invoicesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Recurring contract invoices",
	}

	var period string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the missing contract invoices of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.RecurringInvoiceResponse
			err := newAPIClient(opts).post(cmd.Context(), "/api/v1/invoices/recurring",
				dto.RecurringInvoiceRequest{Period: period}, nil, &resp)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.json {
				printJSON(w, resp)
				return nil
			}

			fmt.Fprintf(w, "Generated %d invoices for %s\n", resp.Generated, resp.Period)
			if resp.Stale {
				fmt.Fprintln(w, "WARNING: invoices recorded but views could not be refreshed")
			}
			return nil
		},
	}
	generateCmd.Flags().StringVar(&period, "period", "", "Period as YYYY-MM (default: current month)")

	cmd.AddCommand(generateCmd)
	return cmd
}

// fetch GETs path into out. With --json it prints the raw body and reports done.
func fetch(cmd *cobra.Command, opts *options, path string, query url.Values, out any) (bool, error) {
	client := newAPIClient(opts)

	if opts.json {
		var raw json.RawMessage
		if err := client.get(cmd.Context(), path, query, &raw); err != nil {
			return true, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return true, err
		}
		printJSON(cmd.OutOrStdout(), v)
		return true, nil
	}

	return false, client.get(cmd.Context(), path, query, out)
}

func confirm(cmd *cobra.Command) (bool, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
