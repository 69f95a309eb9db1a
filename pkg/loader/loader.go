// Package loader reads a definitions file from disk and resolves it,
// logging, tracing and counting each stage.
package loader

import (
	"context"
	"io/fs"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/internal/pipeline"
	"github.com/ajitpratap0/strata/pkg/definitions"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/observability"
)

// ReadAll returns the contents of the file at path. A missing file fails
// with a file_not_found error naming path.
func ReadAll(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: reading the user's definitions file is the point
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFound(path, err)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read definitions file").
			WithDetail(errors.DetailPath, path)
	}
	return data, nil
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger; the global logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithMetrics records stage latency and counts on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(ld *Loader) { ld.metrics = c }
}

// WithTracer traces stages on t instead of the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(ld *Loader) { ld.tracer = t }
}

// WithWorkers flattens roots on up to n goroutines. n <= 1 flattens
// sequentially.
func WithWorkers(n int) Option {
	return func(ld *Loader) { ld.workers = n }
}

// Loader runs the read, parse and flatten stages for definitions files.
type Loader struct {
	log     *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
	workers int
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	ld := &Loader{workers: 1}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// logFor returns the configured logger tagged with path, or the global
// one carrying the context fields (path included).
func (ld *Loader) logFor(ctx context.Context, path string) *zap.Logger {
	if ld.log != nil {
		return ld.log.With(zap.String(string(logger.DefinitionsFileKey), path))
	}
	return logger.WithContext(ctx)
}

// Load reads and parses the definitions file at path into its roots.
// Errors are returned, not logged; the caller decides how to report them.
func (ld *Loader) Load(ctx context.Context, path string) ([]definitions.Node, error) {
	ctx = logger.ContextWithDefinitionsFile(ctx, path)
	log := ld.logFor(ctx, path)
	st := observability.NewStageTracer(ld.tracer, path)

	var data []byte
	err := st.Trace(ctx, metrics.StageRead, func(ctx context.Context) error {
		timer := metrics.NewTimer(metrics.StageRead)
		var err error
		data, err = ReadAll(ctx, path)
		ld.observe(timer)
		return err
	})
	if err != nil {
		ld.countError(err)
		return nil, err
	}
	log.Debug("read definitions", zap.Int("bytes", len(data)))

	var roots []definitions.Node
	err = st.Trace(ctx, metrics.StageParse, func(ctx context.Context) error {
		timer := metrics.NewTimer(metrics.StageParse)
		var err error
		roots, err = definitions.ParseAll(data,
			definitions.WithLogger(log),
			definitions.WithFallbackHook(ld.fallback))
		ld.observe(timer)
		return err
	})
	if ld.metrics != nil {
		ld.metrics.DocumentParsed(err)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("parsed definitions", zap.Int("roots", len(roots)))

	return roots, nil
}

// Resolve loads the file at path and flattens it into resolved leaves.
func (ld *Loader) Resolve(ctx context.Context, path string) ([]definitions.Resolved, error) {
	roots, err := ld.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	ctx = logger.ContextWithDefinitionsFile(ctx, path)
	log := ld.logFor(ctx, path)
	st := observability.NewStageTracer(ld.tracer, path)

	var leaves []definitions.Resolved
	err = st.Trace(ctx, metrics.StageFlatten, func(ctx context.Context) error {
		timer := metrics.NewTimer(metrics.StageFlatten)
		defer ld.observe(timer)

		if ld.workers <= 1 {
			leaves = definitions.Flatten(roots)
			return nil
		}
		var err error
		leaves, err = pipeline.NewParallelFlattener(
			pipeline.ParallelConfig{Name: path, NumWorkers: ld.workers}, log,
		).Flatten(ctx, roots)
		return err
	})
	if err != nil {
		ld.countError(err)
		return nil, err
	}

	if ld.metrics != nil {
		ld.metrics.LeavesResolved(len(leaves))
	}
	log.Info("resolved definitions",
		zap.Int("roots", len(roots)),
		zap.Int("leaves", len(leaves)))
	for i := range leaves {
		log.Debug("resolved leaf", zap.Int("index", i), zap.String("summary", leaves[i].Summary()))
	}

	return leaves, nil
}

func (ld *Loader) observe(t *metrics.Timer) {
	if ld.metrics != nil {
		ld.metrics.ObserveStage(t)
	}
}

func (ld *Loader) countError(err error) {
	if ld.metrics != nil {
		ld.metrics.Error(err)
	}
}

func (ld *Loader) fallback(f definitions.Fallback) {
	if ld.metrics != nil {
		ld.metrics.Fallback(f.Field)
	}
}
