package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
)

type markAllReadClient interface {
	MarkAllNotificationsRead(ctx context.Context) (int, error)
}

// NewMarkAllReadCmd creates the mark-all-read command with explicit dependencies.
func NewMarkAllReadCmd(client markAllReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkAllReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-all-read",
		Short: "Mark every notification as read",
		Long: `Mark every loaded notification as read.

Each notification is confirmed with the server separately. Failures are
reported together; notifications already marked stay read.

USAGE:
    lostfound mark-all-read

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := client.MarkAllNotificationsRead(cmd.Context())
			if err != nil {
				return fmt.Errorf("mark-all-read: %w", err)
			}
			if count == 0 {
				colors.Info("No unread notifications")
				return nil
			}
			colors.Success(fmt.Sprintf("%d notifications marked as read", count))
			return nil
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewMarkAllReadCmd(client))
}
