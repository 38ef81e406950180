// Package typstcompiler shells out to the typst binary to turn markup into
// PDF bytes. Compilation runs fully through pipes; no source or output ever
// touches disk.
package typstcompiler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rendis/resume-forge/internal/core/entity"
)

// Options configures the compiler adapter.
type Options struct {
	// BinPath is the typst executable; resolved via PATH when not absolute.
	BinPath string
	// Timeout bounds a single compilation.
	Timeout time.Duration
	// FontDirs are extra font catalog directories passed as --font-path.
	FontDirs []string
	// MaxConcurrent caps simultaneous compiler processes.
	MaxConcurrent int
	// AcquireTimeout bounds the wait for a compiler slot.
	AcquireTimeout time.Duration
}

func (o *Options) withDefaults() {
	if o.BinPath == "" {
		o.BinPath = "typst"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = 10 * time.Second
	}
}

// Compiler is the typst-binary implementation of port.PDFCompiler.
type Compiler struct {
	opts   Options
	sem    chan struct{}
	logger *slog.Logger

	warmupOnce sync.Once
	warmupErr  error
	ready      atomic.Bool
}

func New(opts Options, logger *slog.Logger) *Compiler {
	opts.withDefaults()
	return &Compiler{
		opts:   opts,
		sem:    make(chan struct{}, opts.MaxConcurrent),
		logger: logger,
	}
}

// warmupProbe is compiled once at startup to force the font catalog load so
// the first real request does not pay it.
const warmupProbe = "#set text(font: \"New Computer Modern\")\nwarmup\n"

// Warmup resolves the binary and compiles a probe document. The first call
// does the work; later calls return the recorded result.
func (c *Compiler) Warmup(ctx context.Context) error {
	c.warmupOnce.Do(func() {
		started := time.Now()
		if _, err := exec.LookPath(c.opts.BinPath); err != nil {
			c.warmupErr = entity.NewError(entity.CodeDependencyMissing,
				"typst binary not found").
				WithContext("bin_path", c.opts.BinPath).
				WithCause(err)
			return
		}
		if _, err := c.run(ctx, warmupProbe); err != nil {
			c.warmupErr = entity.NewError(entity.CodeDependencyMissing,
				"typst warmup compilation failed").WithCause(err)
			return
		}
		c.ready.Store(true)
		c.logger.InfoContext(ctx, "typst compiler warmed up",
			slog.String("bin_path", c.opts.BinPath),
			slog.Int("max_concurrent", c.opts.MaxConcurrent),
			slog.Duration("took", time.Since(started)))
	})
	return c.warmupErr
}

// Ready reports whether warmup has completed successfully.
func (c *Compiler) Ready() bool { return c.ready.Load() }

// Compile renders the markup to PDF under the concurrency cap.
func (c *Compiler) Compile(ctx context.Context, source string) ([]byte, error) {
	acquire := time.NewTimer(c.opts.AcquireTimeout)
	defer acquire.Stop()

	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-acquire.C:
		return nil, entity.NewError(entity.CodeResourceExhausted,
			"all compiler slots are busy").
			WithContext("max_concurrent", c.opts.MaxConcurrent)
	case <-ctx.Done():
		return nil, entity.NewError(entity.CodeRequestTimeout,
			"request cancelled while waiting for a compiler slot").WithCause(ctx.Err())
	}

	started := time.Now()
	pdf, err := c.run(ctx, source)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "typst compilation finished",
		slog.Int("source_bytes", len(source)),
		slog.Int("pdf_bytes", len(pdf)),
		slog.Duration("took", time.Since(started)))
	return pdf, nil
}

func (c *Compiler) run(ctx context.Context, source string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	args := []string{"compile"}
	for _, dir := range c.opts.FontDirs {
		args = append(args, "--font-path", dir)
	}
	// "- -" reads markup from stdin and writes the PDF to stdout.
	args = append(args, "-", "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.opts.BinPath, args...)
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, entity.NewError(entity.CodeRequestTimeout,
				"document compilation timed out").
				WithContext("timeout", c.opts.Timeout.String())
		}
		c.logger.ErrorContext(ctx, "typst compilation failed",
			slog.String("stderr", stderr.String()),
			slog.Any("error", err))
		return nil, entity.CompilationError(stderr.String()).WithCause(err)
	}

	pdf := stdout.Bytes()
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, entity.NewError(entity.CodePDFGeneration,
			"compiler produced no PDF output").
			WithContext("output_bytes", len(pdf))
	}
	return pdf, nil
}
