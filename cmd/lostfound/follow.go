package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
)

type followClient interface {
	ToggleFollow(ctx context.Context, threadID int64) (bool, error)
}

// NewFollowCmd creates the follow command with explicit dependencies.
func NewFollowCmd(client followClient) *cobra.Command {
	if client == nil {
		panic("NewFollowCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "follow <thread-id>",
		Short: "Follow or unfollow a post's thread",
		Long: `Toggle following the discussion thread of a post.

If the server rejects the change the previous state is restored.

USAGE:
    lostfound follow <thread-id>

OPTIONS:
    -h, --help           Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threadID, err := parseID(args[0])
			if err != nil {
				return fmt.Errorf("follow: %w", err)
			}
			followed, err := client.ToggleFollow(cmd.Context(), threadID)
			if err != nil {
				return fmt.Errorf("follow: %w", err)
			}
			if followed {
				colors.Success(fmt.Sprintf("Following thread %d", threadID))
			} else {
				colors.Success(fmt.Sprintf("Stopped following thread %d", threadID))
			}
			return nil
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewFollowCmd(client))
}
