package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
)

type deleteClient interface {
	DeletePost(ctx context.Context, postID int64) error
}

// NewDeleteCmd creates the delete command with explicit dependencies.
func NewDeleteCmd(client deleteClient) *cobra.Command {
	if client == nil {
		panic("NewDeleteCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Long: `Delete a post you created.

USAGE:
    lostfound delete <post-id>

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			if err := client.DeletePost(cmd.Context(), postID); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			colors.Success(fmt.Sprintf("Post %d deleted", postID))
			return nil
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewDeleteCmd(client))
}
