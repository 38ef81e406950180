package bootstrap

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/middleware"
	"github.com/rendis/resume-forge/internal/adapters/secondary/keyvalue"
	"github.com/rendis/resume-forge/internal/adapters/secondary/typstcompiler"
	"github.com/rendis/resume-forge/internal/core/port"
	"github.com/rendis/resume-forge/internal/core/service/document"
	"github.com/rendis/resume-forge/internal/core/service/docx"
	"github.com/rendis/resume-forge/internal/core/service/job"
	"github.com/rendis/resume-forge/internal/infra/config"
	"github.com/rendis/resume-forge/internal/infra/logging"
)

// maxRequestBody caps JSON/YAML payloads before parsing.
const maxRequestBody = 10 << 20

// appComponents holds everything the engine needs at runtime plus the
// teardown hooks, in reverse construction order.
type appComponents struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *gin.Engine

	cleanups []func()
}

func (a *appComponents) cleanup() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// initialize wires the full dependency graph by hand.
func initialize(ctx context.Context) (*appComponents, error) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	app := &appComponents{cfg: cfg, logger: logger}

	kv := connectKV(ctx, cfg, logger, app)

	compiler := typstcompiler.New(typstcompiler.Options{
		BinPath:        cfg.Typst.BinPath,
		Timeout:        cfg.Typst.CompileTimeout,
		FontDirs:       cfg.Typst.FontDirs,
		MaxConcurrent:  cfg.Typst.MaxConcurrent,
		AcquireTimeout: cfg.Typst.AcquireTimeout,
	}, logger)
	// Warm up off the request path; /health reports readiness.
	go func() {
		if err := compiler.Warmup(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "compiler warmup failed", slog.Any("error", err))
		}
	}()

	cache, err := document.NewCache(kv, document.CacheOptions{
		Enabled:   cfg.CacheEnabled,
		TTL:       cfg.PDFCacheTTL,
		SourceTTL: cfg.TypstCacheTTL,
	}, logger)
	if err != nil {
		return nil, err
	}

	orch := document.NewOrchestrator(cache, compiler, docx.NewGenerator(),
		document.OrchestratorOptions{MaxArtifactBytes: cfg.MaxPDFSizeBytes}, logger)

	jobStore := job.NewStore(kv, job.StoreOptions{})
	queue := job.NewQueue(jobStore, orch, job.QueueOptions{
		Workers:    cfg.JobWorkers,
		Capacity:   cfg.JobQueueCapacity,
		JobTimeout: cfg.JobTimeout,
	}, logger)
	queue.Start(ctx)
	app.cleanups = append(app.cleanups, queue.Stop)

	limiter := middleware.NewRateLimiter(kv, middleware.RateLimitOptions{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	}, logger)

	app.engine = newEngine(cfg, orch, queue, jobStore, limiter, logger)
	return app, nil
}

// connectKV dials Redis and falls back to the in-memory store when the
// backend is unreachable, so local runs work without infrastructure.
func connectKV(ctx context.Context, cfg *config.Config, logger *slog.Logger, app *appComponents) port.KeyValueStore {
	rds := keyvalue.NewRedis(keyvalue.RedisOptions{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.SSL,
	})
	if err := rds.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "redis unreachable, using in-memory store",
			slog.String("addr", cfg.Redis.Addr()), slog.Any("error", err))
		_ = rds.Close()
		return keyvalue.NewMemory()
	}
	logger.InfoContext(ctx, "redis connected", slog.String("addr", cfg.Redis.Addr()))
	app.cleanups = append(app.cleanups, func() { _ = rds.Close() })
	return rds
}
