package agent

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/shrine/internal/metrics"
)

// Run starts the agent server on paths.Socket and blocks until SIGINT or
// SIGTERM (signal.NotifyContext, then a graceful Shutdown). On return, the
// socket and pid file are removed.
func Run(logger *slog.Logger, paths Paths, withMetrics bool, ginMode string) error {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	var provider *metrics.Provider
	cacheMetrics := metrics.NewNoOpCacheMetrics()
	if withMetrics {
		var err error
		provider, err = metrics.NewProvider(metricsNamespace)
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.Error("failed to shut down metrics provider", slog.Any("error", err))
			}
		}()
		cacheMetrics, err = metrics.NewCacheMetrics(provider.MeterProvider(), metricsNamespace)
		if err != nil {
			return err
		}
	}

	srv := NewServer(logger, provider, cacheMetrics)
	if err := srv.Listen(paths.Socket); err != nil {
		return err
	}
	defer func() { _ = RemoveSocket(paths.Socket) }()

	if err := WritePidFile(paths.Pid, os.Getpid()); err != nil {
		logger.Warn("failed to write pid file", slog.Any("error", err))
	}
	defer func() { _ = RemovePidFile(paths.Pid) }()

	logger.Info("agent listening", slog.String("socket", paths.Socket))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	logger.Info("agent shutting down")
	return srv.Shutdown(context.Background())
}
