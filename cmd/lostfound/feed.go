package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/config"
	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/format"
)

type feedClient interface {
	Posts(ctx context.Context, list postList, c domain.Criteria, pages int) (listing[domain.Post], error)
}

const feedCommandLong = `List lost-and-found posts.

USAGE:
    lostfound feed [OPTIONS]

OPTIONS:
    --building <name>    Only posts in this building ("All" for every building)
    --days <n>           Only posts found in the last n days (0 for no limit)
    --from <date>        Only posts found on or after YYYY-MM-DD
    --to <date>          Only posts found on or before YYYY-MM-DD
    --floor <floor>      Only posts on this floor
    --status <status>    Only posts with this status (OPEN, WITH_SECURITY, RETURNED, PENDING, ARCHIVED)
    --query <text>       Search titles, descriptions and rooms
    --pages <n>          Number of pages to load (default: 1)
    --archived           List archived posts
    --mine               List your own posts
    --group-by <field>   Group posts by building, floor or status
    --format <format>    Output format: table (default), simple, compact, json
    -h, --help           Show this help`

type feedOptions struct {
	filters  domain.FilterOptions
	pages    int
	archived bool
	mine     bool
	groupBy  string
	format   string
}

// NewFeedCmd creates the feed command with explicit dependencies.
func NewFeedCmd(client feedClient) *cobra.Command {
	if client == nil {
		panic("NewFeedCmd: client dependency cannot be nil")
	}

	var opts feedOptions
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "List lost-and-found posts",
		Long:  feedCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				opts.filters.Days = config.GetInt("default_time_window_days", 7)
			}
			return runFeed(cmd, client, opts)
		},
	}

	f := feedCmd.Flags()
	f.StringVar(&opts.filters.Building, "building", "", "Only posts in this building")
	f.IntVar(&opts.filters.Days, "days", 7, "Only posts found in the last n days (0 for no limit)")
	f.StringVar(&opts.filters.From, "from", "", "Only posts found on or after YYYY-MM-DD")
	f.StringVar(&opts.filters.To, "to", "", "Only posts found on or before YYYY-MM-DD")
	f.StringVar(&opts.filters.Floor, "floor", "", "Only posts on this floor")
	f.StringVar(&opts.filters.Status, "status", "", "Only posts with this status")
	f.StringVar(&opts.filters.Query, "query", "", "Search titles, descriptions and rooms")
	f.IntVar(&opts.pages, "pages", 1, "Number of pages to load")
	f.BoolVar(&opts.archived, "archived", false, "List archived posts")
	f.BoolVar(&opts.mine, "mine", false, "List your own posts")
	f.StringVar(&opts.groupBy, "group-by", "", "Group posts by building, floor or status")
	f.StringVar(&opts.format, "format", "table", "Output format: table, simple, compact, json")
	feedCmd.MarkFlagsMutuallyExclusive("archived", "mine")

	return feedCmd
}

func runFeed(cmd *cobra.Command, client feedClient, opts feedOptions) error {
	if opts.filters.From != "" || opts.filters.To != "" {
		// An explicit range replaces the relative window.
		opts.filters.Days = 0
	}
	criteria, err := opts.filters.ToCriteria()
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if criteria.Status != "" {
		status, err := domain.ParsePostStatus(criteria.Status)
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		if opts.archived && status != domain.StatusArchived {
			return fmt.Errorf("feed: --archived lists only %s posts, got --status %s", domain.StatusArchived, status)
		}
	}
	if opts.pages < 1 {
		return fmt.Errorf("feed: --pages must be at least 1")
	}
	groupBy := domain.GroupByMode(opts.groupBy)
	if opts.groupBy != "" && !groupBy.IsValid() {
		return fmt.Errorf("feed: invalid group-by %q: must be building, floor or status", opts.groupBy)
	}
	kind, err := format.ParseKind(opts.format)
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}

	list := homePosts
	switch {
	case opts.archived:
		list = archivedPosts
	case opts.mine:
		list = myPosts
	}

	result, err := client.Posts(cmd.Context(), list, criteria, opts.pages)
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}

	out := cmd.OutOrStdout()
	formatter := format.New(kind, format.PostLayout())
	if opts.groupBy != "" && groupBy != domain.GroupByNone {
		err = format.FormatGroups(domain.GroupPosts(result.Items, groupBy), formatter, out)
	} else {
		err = formatter.Format(result.Items, out)
	}
	if err != nil {
		return err
	}
	if kind == format.KindJSON {
		return nil
	}
	return format.FormatSummary(out, len(result.Items), result.Loaded, result.Total, result.HasMore)
}

func init() {
	cmd.RootCmd.AddCommand(NewFeedCmd(client))
}
