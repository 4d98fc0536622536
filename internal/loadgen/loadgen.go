// Package loadgen keeps a synthetic write workload running against the test
// pools while the rest of the scenario mutates the cluster underneath it.
package loadgen

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logquarry/duptrim/internal/stopchannel"
)

// Bencher issues one bounded synthetic write burst against a pool.
type Bencher interface {
	Bench(ctx context.Context, pool string, duration time.Duration, blockSize int64) error
}

// Generator runs write bursts against each pool in turn until stopped. It is
// load, not an oracle: burst failures are logged and swallowed, and never
// abort the scenario.
type Generator struct {
	config
	sc *stopchannel.StopChannel
	g  *errgroup.Group
}

func New(opts ...Option) (*Generator, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Generator{
		config: cfg,
		sc:     stopchannel.New(),
	}, nil
}

// Start launches the background task. It must be called at most once.
func (gen *Generator) Start(ctx context.Context) {
	gen.g, ctx = errgroup.WithContext(ctx)
	gen.g.Go(func() error {
		gen.run(ctx)
		return nil
	})
	gen.logger.Info("started background load",
		zap.Strings("pools", gen.pools),
		zap.Duration("burstDuration", gen.burstDuration),
	)
}

// Stop signals the task to stop after its current burst and waits for it.
// The task is never force-killed; in-flight bursts finish cleanly. Repeated
// calls are no-ops.
func (gen *Generator) Stop() {
	if gen.sc.Stopped() {
		return
	}
	gen.sc.Stop()
	if gen.g != nil {
		_ = gen.g.Wait()
	}
	gen.logger.Info("stopped background load")
}

func (gen *Generator) run(ctx context.Context) {
	for {
		for _, pool := range gen.pools {
			if gen.quit(ctx) {
				return
			}
			if err := gen.bencher.Bench(ctx, pool, gen.burstDuration, gen.blockSize); err != nil {
				gen.logger.Warn("write burst failed",
					zap.String("pool", pool),
					zap.Error(err),
				)
			}
			if !gen.pause(ctx) {
				return
			}
		}
	}
}

func (gen *Generator) quit(ctx context.Context) bool {
	select {
	case <-gen.sc.StopC():
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (gen *Generator) pause(ctx context.Context) bool {
	timer := time.NewTimer(gen.poolPause)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-gen.sc.StopC():
		return false
	case <-ctx.Done():
		return false
	}
}
