package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/format"
)

type notificationsClient interface {
	Notifications(ctx context.Context, c domain.Criteria, pages int, cached bool) (listing[domain.Notification], error)
}

// NewNotificationsCmd creates the notifications command with explicit dependencies.
func NewNotificationsCmd(client notificationsClient) *cobra.Command {
	if client == nil {
		panic("NewNotificationsCmd: client dependency cannot be nil")
	}

	var (
		unread     bool
		read       bool
		query      string
		pages      int
		cached     bool
		formatName string
	)

	notificationsCmd := &cobra.Command{
		Use:   "notifications",
		Short: "List claim and return notifications",
		Long: `List claim and return notifications.

The last fetched list is kept on disk and shown with --cached when the
server cannot be reached.

USAGE:
    lostfound notifications [OPTIONS]

OPTIONS:
    --unread             Only unread notifications
    --read               Only read notifications
    --query <text>       Search titles and messages
    --pages <n>          Number of pages to load (default: 1)
    --cached             Show the stored list without contacting the server
    --format <format>    Output format: table (default), simple, compact, json
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := domain.FilterOptions{Query: query}
			switch {
			case unread:
				filters.Read = string(domain.ReadFilterUnread)
			case read:
				filters.Read = string(domain.ReadFilterRead)
			}
			criteria, err := filters.ToCriteria()
			if err != nil {
				return fmt.Errorf("notifications: %w", err)
			}
			if pages < 1 {
				return fmt.Errorf("notifications: --pages must be at least 1")
			}
			kind, err := format.ParseKind(formatName)
			if err != nil {
				return fmt.Errorf("notifications: %w", err)
			}

			result, err := client.Notifications(cmd.Context(), criteria, pages, cached)
			if err != nil {
				return fmt.Errorf("notifications: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := format.New(kind, format.NotificationLayout()).Format(result.Items, out); err != nil {
				return err
			}
			if kind == format.KindJSON {
				return nil
			}
			return format.FormatUnread(out, domain.CountUnread(result.Items), len(result.Items))
		},
	}

	f := notificationsCmd.Flags()
	f.BoolVar(&unread, "unread", false, "Only unread notifications")
	f.BoolVar(&read, "read", false, "Only read notifications")
	f.StringVar(&query, "query", "", "Search titles and messages")
	f.IntVar(&pages, "pages", 1, "Number of pages to load")
	f.BoolVar(&cached, "cached", false, "Show the stored list without contacting the server")
	f.StringVar(&formatName, "format", "table", "Output format: table, simple, compact, json")
	notificationsCmd.MarkFlagsMutuallyExclusive("unread", "read")

	return notificationsCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewNotificationsCmd(client))
}
