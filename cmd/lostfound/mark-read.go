package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
)

type markReadClient interface {
	MarkNotificationRead(ctx context.Context, id int64) error
}

// NewMarkReadCmd creates the mark-read command with explicit dependencies.
func NewMarkReadCmd(client markReadClient) *cobra.Command {
	if client == nil {
		panic("NewMarkReadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "mark-read <id>",
		Short: "Mark a notification as read",
		Long: `Mark a notification as read by ID.

The notification is marked locally first. If the server rejects the
change the error is reported but the notification stays read.

USAGE:
    lostfound mark-read <id>

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return fmt.Errorf("mark-read: %w", err)
			}
			if err := client.MarkNotificationRead(cmd.Context(), id); err != nil {
				return fmt.Errorf("mark-read: %w", err)
			}
			colors.Success(fmt.Sprintf("Notification %d marked as read", id))
			return nil
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewMarkReadCmd(client))
}
