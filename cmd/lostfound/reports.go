package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/format"
)

type reportsClient interface {
	Reports(ctx context.Context, c domain.Criteria, pages int) (listing[domain.Report], error)
}

// NewReportsCmd creates the reports command with explicit dependencies.
func NewReportsCmd(client reportsClient) *cobra.Command {
	if client == nil {
		panic("NewReportsCmd: client dependency cannot be nil")
	}

	var (
		filters    domain.FilterOptions
		pages      int
		formatName string
	)

	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "List reports filed against posts",
		Long: `List reports filed against posts.

USAGE:
    lostfound reports [OPTIONS]

OPTIONS:
    --from <date>        Only reports filed on or after YYYY-MM-DD
    --to <date>          Only reports filed on or before YYYY-MM-DD
    --status <status>    Only reports with this status
    --query <text>       Search report messages and reporters
    --pages <n>          Number of pages to load (default: 1)
    --format <format>    Output format: table (default), simple, compact, json
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := filters.ToCriteria()
			if err != nil {
				return fmt.Errorf("reports: %w", err)
			}
			if criteria.Status != "" && !domain.ReportStatus(criteria.Status).IsValid() {
				return fmt.Errorf("reports: invalid status %q", filters.Status)
			}
			if pages < 1 {
				return fmt.Errorf("reports: --pages must be at least 1")
			}
			kind, err := format.ParseKind(formatName)
			if err != nil {
				return fmt.Errorf("reports: %w", err)
			}

			result, err := client.Reports(cmd.Context(), criteria, pages)
			if err != nil {
				return fmt.Errorf("reports: %w", err)
			}
			out := cmd.OutOrStdout()
			if err := format.New(kind, format.ReportLayout()).Format(result.Items, out); err != nil {
				return err
			}
			if kind == format.KindJSON {
				return nil
			}
			return format.FormatSummary(out, len(result.Items), result.Loaded, result.Total, result.HasMore)
		},
	}

	f := reportsCmd.Flags()
	f.StringVar(&filters.From, "from", "", "Only reports filed on or after YYYY-MM-DD")
	f.StringVar(&filters.To, "to", "", "Only reports filed on or before YYYY-MM-DD")
	f.StringVar(&filters.Status, "status", "", "Only reports with this status")
	f.StringVar(&filters.Query, "query", "", "Search report messages and reporters")
	f.IntVar(&pages, "pages", 1, "Number of pages to load")
	f.StringVar(&formatName, "format", "table", "Output format: table, simple, compact, json")

	return reportsCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewReportsCmd(client))
}
