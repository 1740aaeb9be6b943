package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/config"
	"github.com/cristianoliveira/lostfound/internal/feed"
	"github.com/cristianoliveira/lostfound/internal/tui"
)

type tuiClient interface {
	Browse(ctx context.Context, opts tui.Options) error
}

// NewTUICmd creates the tui command with explicit dependencies.
func NewTUICmd(client tuiClient) *cobra.Command {
	if client == nil {
		panic("NewTUICmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "tui",
		Short: "Browse posts interactively",
		Long: `Browse posts interactively.

KEYS:
    j/k         Move down/up (moving past the end loads more)
    h/l, tab    Previous/next building
    n           Load the next page
    r           Refresh, or retry after an error
    7           Toggle the time window
    /           Search; esc clears
    f           Follow or unfollow the post's thread
    d           Delete your own post
    ?           Show all keys
    q           Quit

USAGE:
    lostfound tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Browse(cmd.Context(), tui.Options{
				Buildings:  config.GetList("buildings", nil),
				WindowDays: config.GetInt("default_time_window_days", 7),
			})
		},
	}
}

// Browse opens the home feed in the terminal browser.
func (s *service) Browse(ctx context.Context, opts tui.Options) error {
	return s.withSession(ctx, func(sess *session) error {
		screen := feed.NewHome(sess.deps)
		defer screen.Close()
		opts.UserID = sess.deps.UserID
		opts.Admin = sess.deps.Admin
		colors.Debug(fmt.Sprintf("starting tui with %d building tabs", len(opts.Buildings)))
		return tui.Run(ctx, screen, opts)
	})
}

func init() {
	cmd.RootCmd.AddCommand(NewTUICmd(client))
}
