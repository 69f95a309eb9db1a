// Package pipeline resolves definition trees concurrently.
package pipeline

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/strata/pkg/definitions"
)

// ParallelConfig configures the parallel flattener
type ParallelConfig struct {
	Name       string
	NumWorkers int // 0 = auto (NumCPU)
}

// ParallelFlattener flattens independent roots on a bounded number of
// goroutines. Output keeps root order, so it is identical to
// definitions.Flatten on the same input.
type ParallelFlattener struct {
	name       string
	logger     *zap.Logger
	numWorkers int

	// Performance metrics
	rootsProcessed  int64
	leavesResolved  int64
	processingNanos int64
}

// NewParallelFlattener creates a flattener; a nil logger logs nothing.
func NewParallelFlattener(config ParallelConfig, logger *zap.Logger) *ParallelFlattener {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParallelFlattener{
		name:       config.Name,
		logger:     logger,
		numWorkers: config.NumWorkers,
	}
}

// Flatten resolves every root. Cancelling ctx stops scheduling roots that
// have not started; the context error is returned and no partial result.
func (p *ParallelFlattener) Flatten(ctx context.Context, roots []definitions.Node) ([]definitions.Resolved, error) {
	start := time.Now()
	perRoot := make([][]definitions.Resolved, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.numWorkers)

	for i := range roots {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perRoot[i] = definitions.FlattenNode(roots[i])
			atomic.AddInt64(&p.rootsProcessed, 1)
			atomic.AddInt64(&p.leavesResolved, int64(len(perRoot[i])))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, leaves := range perRoot {
		total += len(leaves)
	}
	out := make([]definitions.Resolved, 0, total)
	for _, leaves := range perRoot {
		out = append(out, leaves...)
	}

	elapsed := time.Since(start)
	atomic.AddInt64(&p.processingNanos, elapsed.Nanoseconds())
	p.logger.Debug("Parallel flatten completed",
		zap.String("name", p.name),
		zap.Int("roots", len(roots)),
		zap.Int("leaves", total),
		zap.Int("workers", p.numWorkers),
		zap.Duration("duration", elapsed))

	return out, nil
}

// Stats reports totals over every Flatten call.
type Stats struct {
	RootsProcessed int64
	LeavesResolved int64
	ProcessingTime time.Duration
}

// GetStats returns the accumulated totals
func (p *ParallelFlattener) GetStats() Stats {
	return Stats{
		RootsProcessed: atomic.LoadInt64(&p.rootsProcessed),
		LeavesResolved: atomic.LoadInt64(&p.leavesResolved),
		ProcessingTime: time.Duration(atomic.LoadInt64(&p.processingNanos)),
	}
}

// FlattenParallel flattens roots with at most workers goroutines.
func FlattenParallel(ctx context.Context, roots []definitions.Node, workers int) ([]definitions.Resolved, error) {
	return NewParallelFlattener(ParallelConfig{Name: "flatten", NumWorkers: workers}, nil).Flatten(ctx, roots)
}
