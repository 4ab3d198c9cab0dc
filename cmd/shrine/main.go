// Package main provides the entry point for the shrine CLI, wired with
// urfave/cli/v3: *cli.Command.Action adapts flags into a call to a Run*
// function in cmd/shrine/commands, which holds the actual logic and never
// sees a *cli.Command.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/shrine/cmd/shrine/commands"
	"github.com/allisson/shrine/internal/config"
	"github.com/allisson/shrine/internal/shrine/agent"
	"github.com/allisson/shrine/internal/shrinelog"
)

func main() {
	// agent.ForegroundSubcommand is a hidden entry point: the detached
	// child process spawned by `agent start` re-execs this binary with it
	// instead of going back through the cli.Command tree, so it reaches
	// agent.Run directly in its own process group.
	if len(os.Args) > 1 && os.Args[1] == agent.ForegroundSubcommand {
		runForeground(os.Args[2:])
		return
	}

	cmd := &cli.Command{
		Name:    "shrine",
		Usage:   "a local secrets vault",
		Version: "1.0.0",
		Commands: []*cli.Command{
			initCommand(),
			setCommand(),
			getCommand(),
			rmCommand(),
			lsCommand(),
			dumpCommand(),
			importCommand(),
			convertCommand(),
			infoCommand(),
			configCommand(),
			agentCommand(),
		},
	}

	// Core errors are typed; here they are reduced to their human-readable
	// line on stderr plus a non-zero exit code. Structured logging stays on
	// the logger each Run* function receives.
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runForeground(args []string) {
	cfg := config.Load()
	logger := shrinelog.New(os.Stderr, cfg.LogLevel)
	withMetrics := false
	for _, a := range args {
		if a == "--metrics" {
			withMetrics = true
		}
	}
	if err := commands.RunAgentForeground(logger, cfg.XDGRuntimeDir, withMetrics, cfg.GetGinMode()); err != nil {
		logger.Error("agent exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	cfg := config.Load()
	return shrinelog.New(os.Stderr, cfg.LogLevel)
}
