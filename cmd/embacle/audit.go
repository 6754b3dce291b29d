package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/cli"
	"embacle-hq/embacle/pkg/config"
)

var auditFlags struct {
	provider string
	model    string
	surface  string
	status   string
	since    string
	until    string
	limit    int
	offset   int
	format   string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the request audit trail",
	Long: `Query and maintain the audit database.

The audit trail records metadata for every brokered request: provider,
model, token usage, duration, and outcome. Prompt and response text is
never stored.

Subcommands:
  list   - List audit records with filters
  show   - Show a single record by id
  prune  - Apply the retention policy now

Examples:
  # Most recent records
  embacle audit list

  # Failed claude_code requests from the REST front
  embacle audit list --provider claude_code --status error --surface rest

  # Full record as JSON
  embacle audit show 4f6f1c2e-... --format json`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records",
	RunE:  runAuditList,
}

var auditShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single audit record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditShow,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	RunE:  runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditShowCmd, auditPruneCmd)

	auditListCmd.Flags().StringVar(&auditFlags.provider, "provider", "", "filter by provider")
	auditListCmd.Flags().StringVar(&auditFlags.model, "model", "", "filter by model")
	auditListCmd.Flags().StringVar(&auditFlags.surface, "surface", "", "filter by surface (rest, mcp)")
	auditListCmd.Flags().StringVar(&auditFlags.status, "status", "", "filter by status (ok, error)")
	auditListCmd.Flags().StringVar(&auditFlags.since, "since", "", "records at or after this RFC3339 time")
	auditListCmd.Flags().StringVar(&auditFlags.until, "until", "", "records at or before this RFC3339 time")
	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditListCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditListCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")

	auditShowCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
}

// openAuditForQuery opens the configured audit store read side for the
// CLI. Unlike the serve path it requires audit to be configured, since
// querying a store that was never written to is a usage error.
func openAuditForQuery() (audit.Storage, *config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	storage, err := audit.NewSQLiteStorage(&audit.SQLiteConfig{
		Driver:  cfg.Audit.Driver,
		Path:    cfg.Audit.Path,
		WALMode: true,
	})
	if err != nil {
		return nil, nil, cli.NewCommandError("audit", err)
	}
	return storage, cfg, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return err
	}

	storage, _, err := openAuditForQuery()
	if err != nil {
		return err
	}
	defer storage.Close()

	query := &audit.Query{
		Provider: auditFlags.provider,
		Model:    auditFlags.model,
		Surface:  auditFlags.surface,
		Status:   auditFlags.status,
		Limit:    auditFlags.limit,
		Offset:   auditFlags.offset,
	}
	if auditFlags.since != "" {
		t, err := time.Parse(time.RFC3339, auditFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		query.Since = &t
	}
	if auditFlags.until != "" {
		t, err := time.Parse(time.RFC3339, auditFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		query.Until = &t
	}

	records, err := storage.List(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, records)
	}

	table := cli.NewTable(os.Stdout, "TIME", "SURFACE", "KIND", "PROVIDER", "MODEL", "TOKENS", "MS", "STATUS", "ID")
	for _, rec := range records {
		model := rec.Model
		if model == "" {
			model = "-"
		}
		table.Row(
			rec.Time.UTC().Format(time.RFC3339),
			rec.Surface,
			rec.Kind,
			rec.Provider,
			model,
			strconv.FormatInt(rec.TotalTokens, 10),
			strconv.FormatInt(rec.DurationMs, 10),
			rec.Status,
			rec.ID,
		)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d records\n", len(records))
	return nil
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return err
	}

	storage, _, err := openAuditForQuery()
	if err != nil {
		return err
	}
	defer storage.Close()

	rec, err := storage.Get(context.Background(), args[0])
	if err != nil {
		return cli.NewCommandError("audit show", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, rec)
	}

	fmt.Printf("ID:         %s\n", rec.ID)
	fmt.Printf("Request ID: %s\n", rec.RequestID)
	fmt.Printf("Time:       %s\n", rec.Time.UTC().Format(time.RFC3339))
	fmt.Printf("Surface:    %s\n", rec.Surface)
	fmt.Printf("Kind:       %s\n", rec.Kind)
	fmt.Printf("Provider:   %s\n", rec.Provider)
	fmt.Printf("Model:      %s\n", rec.Model)
	fmt.Printf("Prompt:     %d chars\n", rec.PromptChars)
	fmt.Printf("Tokens:     %d prompt, %d completion, %d total\n",
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens)
	fmt.Printf("Duration:   %d ms\n", rec.DurationMs)
	fmt.Printf("Status:     %s\n", rec.Status)
	if rec.Status == audit.StatusError {
		fmt.Printf("Error kind: %s\n", rec.ErrorKind)
		fmt.Printf("Error:      %s\n", rec.Error)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	storage, cfg, err := openAuditForQuery()
	if err != nil {
		return err
	}
	defer storage.Close()

	pruner := audit.NewPruner(storage, &audit.PrunerConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		MaxRecords:    cfg.Audit.MaxRecords,
	})

	pruned, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Printf("✓ Pruned %d records\n", pruned)
	return nil
}
