// Package cmd holds the root command of the lostfound CLI. Subcommands
// register themselves from package main.
package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/config"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/version"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:               "lostfound",
	Short:             "Browse and manage campus lost-and-found posts.",
	Long:              `Browse and manage campus lost-and-found posts from the terminal.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

var (
	debugFlag bool
	quietFlag bool
)

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to subcommands.
func ExecuteContext(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			printCommandHelp(cmd)
			return
		}
		printHelpText(cmd)
	})

	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output and log at debug level")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress informational output")
}

// setup loads configuration and starts logging before any subcommand runs.
// Flags override the configured values.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	if cmd.Flags().Changed("debug") {
		config.Set("debug", strconv.FormatBool(debugFlag))
	}
	if cmd.Flags().Changed("quiet") {
		config.Set("quiet", strconv.FormatBool(quietFlag))
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning("file logging disabled:", err.Error())
	}
	logging.GetGlobal().Debug("command started", "command", cmd.CommandPath(), "version", version.String())
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	logging.GetGlobal().Debug("command finished", "command", cmd.CommandPath())
}
