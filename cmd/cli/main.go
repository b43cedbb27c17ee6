package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
	json    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cashbook",
		Short:         "Cashbook CLI tool",
		Long:          `A command line interface for the Cashbook finance API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("CASHBOOK_URL", "http://localhost:8080"), "Base URL of the Cashbook API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		summaryCmd(opts),
		delinquencyCmd(opts),
		statementCmd(opts),
		settleCmd(opts),
		invoicesCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
