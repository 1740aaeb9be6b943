package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianoliveira/lostfound/cmd"
	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(os.Args[1:], func() error { return cmd.ExecuteContext(ctx) })
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, execute func() error) int {
	cmd.RootCmd.SetArgs(args)
	defer func() {
		if err := logging.ShutdownGlobal(); err != nil {
			colors.Debug("shutdown logger:", err.Error())
		}
	}()

	if err := execute(); err != nil {
		logging.GetGlobal().Error("command failed", "error", err)
		colors.Error(err.Error())
		return 1
	}
	return 0
}
