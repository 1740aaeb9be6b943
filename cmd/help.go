package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/internal/version"
)

// helpCmd represents the help command
var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show this help message",
	Long:  `Show this help message.`,
	Run: func(cmd *cobra.Command, args []string) {
		target, _, err := cmd.Root().Find(args)
		if len(args) == 0 || err != nil || target == nil {
			printHelpText(cmd.Root())
			return
		}
		printCommandHelp(target)
	},
}

func init() {
	RootCmd.SetHelpCommand(helpCmd)
}

// commandOrder is the order commands are listed in the help text.
var commandOrder = []string{
	"feed",
	"notifications",
	"mark-read",
	"mark-all-read",
	"follow",
	"delete",
	"reports",
	"tui",
	"help",
	"version",
}

func printHelpText(root *cobra.Command) {
	var lines []string
	for _, name := range commandOrder {
		for _, c := range root.Commands() {
			if c.Name() == name {
				lines = append(lines, fmt.Sprintf("    %-22s %s", c.Use, c.Short))
				break
			}
		}
	}

	fmt.Fprintf(root.OutOrStdout(), `lostfound %s

%s

USAGE:
    lostfound [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --debug         Print debug output
    -q, --quiet     Suppress informational output
    -h, --help      Show help message
`, version.String(), root.Short, strings.Join(lines, "\n"))
}

func printCommandHelp(cmd *cobra.Command) {
	text := cmd.Long
	if text == "" {
		text = cmd.Short
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
}
