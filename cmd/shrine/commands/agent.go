package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/shrine/internal/shrine/agent"
)

// RunAgentStart resolves the agent's runtime paths under xdgRuntimeDir and
// launches it as a detached process re-executing execPath.
func RunAgentStart(out io.Writer, logger *slog.Logger, execPath, xdgRuntimeDir string, withMetrics bool) error {
	paths, err := agent.ResolvePaths(xdgRuntimeDir)
	if err != nil {
		return err
	}
	if err := agent.Start(execPath, paths, withMetrics); err != nil {
		return err
	}
	logger.Info("agent started", slog.String("socket", paths.Socket))
	fmt.Fprintln(out, "agent started")
	return nil
}

// RunAgentStop signals a running agent to shut down and waits for it to
// remove its pid file.
func RunAgentStop(out io.Writer, logger *slog.Logger, xdgRuntimeDir string) error {
	paths, err := agent.ResolvePaths(xdgRuntimeDir)
	if err != nil {
		return err
	}
	if err := agent.Stop(paths); err != nil {
		return err
	}
	logger.Info("agent stopped")
	fmt.Fprintln(out, "agent stopped")
	return nil
}

// RunAgentStatus reports whether the agent is running and reachable.
func RunAgentStatus(ctx context.Context, out io.Writer, logger *slog.Logger, xdgRuntimeDir string) error {
	paths, err := agent.ResolvePaths(xdgRuntimeDir)
	if err != nil {
		return err
	}
	running, pid := agent.IsRunning(paths)
	if !running {
		fmt.Fprintln(out, "agent is not running")
		return nil
	}

	client := agent.NewClient(paths.Socket)
	ok, err := client.Status(ctx)
	if err != nil || !ok {
		fmt.Fprintf(out, "agent process %d is running but not responding on %s\n", pid, paths.Socket)
		return nil
	}
	fmt.Fprintf(out, "agent running (pid %d, socket %s)\n", pid, paths.Socket)
	return nil
}

// RunAgentClearPasswords asks the running agent to drop every cached
// password.
func RunAgentClearPasswords(ctx context.Context, out io.Writer, logger *slog.Logger, xdgRuntimeDir string) error {
	paths, err := agent.ResolvePaths(xdgRuntimeDir)
	if err != nil {
		return err
	}
	if running, _ := agent.IsRunning(paths); !running {
		return fmt.Errorf("agent is not running")
	}
	client := agent.NewClient(paths.Socket)
	if err := client.ClearPasswords(ctx); err != nil {
		return err
	}
	logger.Info("agent passwords cleared")
	fmt.Fprintln(out, "passwords cleared")
	return nil
}

// RunAgentForeground is invoked by the hidden re-exec subcommand
// (agent.ForegroundSubcommand) to run the agent in the foreground of the
// detached child process spawned by RunAgentStart.
func RunAgentForeground(logger *slog.Logger, xdgRuntimeDir string, withMetrics bool, ginMode string) error {
	paths, err := agent.ResolvePaths(xdgRuntimeDir)
	if err != nil {
		return err
	}
	return agent.Run(logger, paths, withMetrics, ginMode)
}
