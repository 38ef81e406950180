// Package bootstrap assembles the service and runs it until a shutdown
// signal arrives.
package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/controller"
	"github.com/rendis/resume-forge/internal/adapters/primary/http/middleware"
	"github.com/rendis/resume-forge/internal/core/service/document"
	"github.com/rendis/resume-forge/internal/core/service/job"
	"github.com/rendis/resume-forge/internal/infra/config"
	"github.com/rendis/resume-forge/internal/infra/server"
)

const shutdownGrace = 10 * time.Second

// Run boots the service and blocks until SIGINT/SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := initialize(ctx)
	if err != nil {
		return err
	}
	defer app.cleanup()

	srv := server.New(app.cfg.Port, app.engine, app.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("shutdown did not drain cleanly", slog.Any("error", err))
		return err
	}
	return nil
}

// newEngine mounts the middleware chain and every controller.
func newEngine(cfg *config.Config, orch *document.Orchestrator, queue *job.Queue, store *job.Store, limiter *middleware.RateLimiter, logger *slog.Logger) *gin.Engine {
	return server.NewEngine(cfg.GinMode,
		[]gin.HandlerFunc{
			middleware.CORS(),
			middleware.BodyLimit(maxRequestBody),
			limiter.Handler(),
		},
		controller.NewSystemController(orch, logger),
		controller.NewTemplateController(logger),
		controller.NewRenderController(orch, cfg.RequestTimeout, logger),
		controller.NewAnalysisController(orch, logger),
		controller.NewJobController(queue, store, logger),
	)
}
