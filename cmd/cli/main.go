package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/iho/transferhub/internal/adapter/http/middleware"
	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	userID  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "transferhub-cli",
		Short:         "TransferHub CLI tool",
		Long:          `A command line interface for operating the TransferHub API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TransferHub API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("USER"), "Acting user sent as "+middleware.UserIDHeader)

	rootCmd.AddCommand(ledgerCmd(), payrollCmd(), reconciliationCmd(), customerCmd(), migrateCmd())
	return rootCmd
}

// Ledger commands

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Transfer ledger operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/"+url.PathEscape(args[0]), nil, "")
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), body)
		},
	}

	var company, reference string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a company's ledger entries or look one up by reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if reference != "" {
				q.Set("reference", reference)
			} else {
				q.Set("company_id", company)
				q.Set("limit", strconv.Itoa(limit))
				q.Set("offset", strconv.Itoa(offset))
			}
			body, err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/ledger?"+q.Encode(), nil, "")
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), body)
			return nil
		},
	}
	listCmd.Flags().StringVar(&company, "company", "", "Company ID")
	listCmd.Flags().StringVar(&reference, "reference", "", "Correlation reference")
	listCmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var note, key string
	refundCmd := &cobra.Command{
		Use:   "refund <id>",
		Short: "Refund a completed debit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"user_id": userID, "note": note}
			path := "/api/v1/ledger/" + url.PathEscape(args[0]) + "/refund"
			body, err := newAPIClient().do(cmd.Context(), http.MethodPost, path, req, idempotencyKey(key))
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), body)
		},
	}
	refundCmd.Flags().StringVar(&note, "note", "", "Refund note")
	refundCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")

	cmd.AddCommand(getCmd, listCmd, refundCmd)
	return cmd
}

// Payroll commands

func payrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Salary cycle operations",
	}

	var key string
	postCmd := &cobra.Command{
		Use:   "post <cycle-id>",
		Short: "Post a salary cycle as one group transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"user_id": userID}
			path := "/api/v1/payroll/cycles/" + url.PathEscape(args[0]) + "/post"
			body, err := newAPIClient().do(cmd.Context(), http.MethodPost, path, req, idempotencyKey(key))
			if err != nil {
				return err
			}

			data := gjson.GetBytes(body, "data")
			fmt.Fprintf(cmd.OutOrStdout(), "Cycle %s batch %s: %d submitted, %d succeeded, %d failed, posted=%v\n",
				data.Get("cycle_id").String(),
				data.Get("batch_reference").String(),
				data.Get("submitted").Int(),
				len(data.Get("succeeded").Array()),
				len(data.Get("failed").Array()),
				data.Get("posted").Bool(),
			)
			return nil
		},
	}
	postCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")

	cmd.AddCommand(postCmd)
	return cmd
}

// Reconciliation commands

func reconciliationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reconciliation",
		Aliases: []string{"cases"},
		Short:   "Reconciliation case operations",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List open reconciliation cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			body, err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/reconciliation/cases?"+q.Encode(), nil, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cases := gjson.GetBytes(body, "data").Array()
			if len(cases) == 0 {
				fmt.Fprintln(out, "No open cases")
				return nil
			}
			fmt.Fprintf(out, "%-26s  %-22s  %-16s  %s\n", "ID", "KIND", "REFERENCE", "OPENED")
			for _, c := range cases {
				fmt.Fprintf(out, "%-26s  %-22s  %-16s  %s\n",
					c.Get("id").String(),
					truncate(c.Get("kind").String(), 22),
					c.Get("reference").String(),
					c.Get("created_at").String(),
				)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var (
		note    string
		outcome string
		bankRef string
		paid    []string
	)
	resolveCmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Apply what the bank shows for a case and close it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"resolved_by":    userID,
				"outcome":        outcome,
				"bank_reference": bankRef,
				"paid_entries":   paid,
				"note":           note,
			}
			path := "/api/v1/reconciliation/cases/" + url.PathEscape(args[0]) + "/resolve"
			body, err := newAPIClient().do(cmd.Context(), http.MethodPost, path, req, "")
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), body)
		},
	}
	resolveCmd.Flags().StringVar(&note, "note", "", "Resolution note")
	resolveCmd.Flags().StringVar(&outcome, "outcome", "", "What the bank shows: completed or failed")
	resolveCmd.Flags().StringVar(&bankRef, "bank-reference", "", "Bank reference of a completed transfer")
	resolveCmd.Flags().StringSliceVar(&paid, "paid", nil, "Salary entry ids the bank paid")
	_ = resolveCmd.MarkFlagRequired("outcome")

	cmd.AddCommand(listCmd, resolveCmd)
	return cmd
}

// Customer commands

func customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Core banking customer lookups",
	}

	for _, sub := range []struct {
		use, short, suffix string
	}{
		{"show <customer-id>", "Show status, mode and accounts", ""},
		{"status <customer-id>", "Show the customer status code", "/status"},
		{"accounts <customer-id>", "List the customer's accounts", "/accounts"},
	} {
		suffix := sub.suffix
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := "/api/v1/customers/" + url.PathEscape(args[0]) + suffix
				body, err := newAPIClient().do(cmd.Context(), http.MethodGet, path, nil, "")
				if err != nil {
					return err
				}
				return printData(cmd.OutOrStdout(), body)
			},
		})
	}

	return cmd
}

// Migration commands

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	logr := logger.New(logger.Config{Level: "info", Format: "console", Output: os.Stderr})

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath, logr)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath, logr)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath, logr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%v\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

type apiClient struct {
	baseURL string
	userID  string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: baseURL,
		userID:  userID,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends the request and returns the body of a 2xx response.
// A 202 means the outcome is unknown; its body is returned together with an error.
func (c *apiClient) do(ctx context.Context, method, path string, payload any, key string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set(middleware.UserIDHeader, c.userID)
	}
	if key != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return body, fmt.Errorf("outcome unknown (status %d): %s", resp.StatusCode, errorMessage(body))
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	default:
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, errorMessage(body))
	}
}

func errorMessage(body []byte) string {
	res := gjson.ParseBytes(body)
	if msg := res.Get("message").String(); msg != "" {
		return msg
	}
	if e := res.Get("error").String(); e != "" {
		return e
	}
	return truncate(string(body), 200)
}

func idempotencyKey(key string) string {
	if key != "" {
		return key
	}
	return ulid.Make().String()
}

// printData pretty-prints the envelope's data field.
func printData(w io.Writer, body []byte) error {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return printJSON(w, body)
	}
	return printJSON(w, []byte(data.Raw))
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func printEntries(w io.Writer, body []byte) {
	entries := gjson.GetBytes(body, "data").Array()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries")
		return
	}
	fmt.Fprintf(w, "%-26s  %-16s  %-8s  %-9s  %14s  %s\n", "ID", "REFERENCE", "KIND", "STATUS", "AMOUNT", "DESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%-26s  %-16s  %-8s  %-9s  %14s  %s\n",
			e.Get("id").String(),
			e.Get("reference").String(),
			e.Get("kind").String(),
			e.Get("status").String(),
			e.Get("amount").String()+" "+e.Get("currency").String(),
			truncate(e.Get("description").String(), 30),
		)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
