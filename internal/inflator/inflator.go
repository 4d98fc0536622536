// Package inflator grows the replog entry pool across the corrupted
// replicas until it reaches a target average size.
package inflator

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/internal/mempool"
	"github.com/logquarry/duptrim/internal/topology"
	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

// Cluster is the control-plane surface the inflator needs: write bursts to
// keep perturbing the replog, a configuration clamp, and the maintenance
// guard around the trim test.
type Cluster interface {
	Bench(ctx context.Context, pool string, duration time.Duration, blockSize int64) error
	SetConfig(ctx context.Context, section, key, value string) error
	SetFlag(ctx context.Context, flag string) error
	UnsetFlag(ctx context.Context, flag string) error
}

// Sampler reads the replog pool size of one store daemon.
type Sampler interface {
	Sample(ctx context.Context, store types.StoreID) (mempool.Sample, error)
}

// TrimTester exercises the offline trim path on one replica.
type TrimTester interface {
	VerifyOfflineTrim(ctx context.Context, store types.StoreID, ptid types.PartitionID) (ok bool, err error)
}

// Inflator polls replog pool sizes and issues low-volume write bursts until
// the mean item count across all replicas reaches the target. Polling is
// the only signal available: the pool size is an approximation exposed via
// periodic introspection, not an event source.
type Inflator struct {
	config
}

func New(opts ...Option) (*Inflator, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Inflator{config: cfg}, nil
}

// Inflate drives the replog pool up across the replicas of the given
// partitions. Terminal outcomes:
//   - nil: the mean item count converged to the target.
//   - derrors.ErrTrimTestFailed: the one-shot offline trim test failed.
//   - derrors.ErrInflationTimedOut: the deadline passed before convergence.
//
// Sampling errors propagate as is; a failed sample aborts inflation rather
// than skewing the mean.
//
// The trim test fires the first time the mean crosses the trim threshold
// and never again in the same run. The mean it sees is the most recent
// completed sample; reacting one iteration after the burst that crossed the
// threshold is expected.
func (inf *Inflator) Inflate(ctx context.Context, parts []topology.Partition, pools []string) error {
	if err := inf.cluster.SetConfig(ctx, "store", "store_max_log_entries", inf.logEntriesClamp); err != nil {
		return err
	}

	stores := distinctStores(parts)
	if len(stores) == 0 {
		return errors.New("inflator: no stores")
	}

	deadline := time.Now().Add(inf.timeout)
	trimTested := false

	for {
		var sum int64
		for _, store := range stores {
			sample, err := inf.sampler.Sample(ctx, store)
			if err != nil {
				return err
			}
			sum += sample.Items
		}
		mean := sum / int64(len(stores))

		if mean >= inf.targetAvgItems {
			inf.logger.Info("inflated replog pool to target",
				zap.Int64("meanItems", mean),
				zap.Int("stores", len(stores)),
			)
			return nil
		}
		inf.logger.Debug("replog pool below target",
			zap.Int64("meanItems", mean),
			zap.Int64("target", inf.targetAvgItems),
		)

		for _, pool := range pools {
			if err := inf.cluster.Bench(ctx, pool, inf.burstDuration, inf.blockSize); err != nil {
				inf.logger.Warn("inflation burst failed",
					zap.String("pool", pool),
					zap.Error(err),
				)
			}
			inf.wait(ctx, inf.poolPause)
		}

		if mean >= inf.trimThreshold && !trimTested {
			trimTested = true
			if err := inf.runTrimTest(ctx, parts, mean); err != nil {
				return err
			}
		}

		if time.Now().After(deadline) {
			inf.logger.Error("replog pool not inflated before deadline",
				zap.Int64("meanItems", mean),
				zap.Duration("timeout", inf.timeout),
			)
			return errors.WithStack(derrors.ErrInflationTimedOut)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// runTrimTest pauses inflation and verifies offline trimming on a randomly
// chosen replica. Automatic data movement is disabled around the test so
// the stopped replica does not trigger recovery; the guard is cleared on
// every path out.
func (inf *Inflator) runTrimTest(ctx context.Context, parts []topology.Partition, mean int64) error {
	part := parts[rand.Intn(len(parts))]
	store := part.Acting[rand.Intn(len(part.Acting))]
	inf.logger.Info("testing offline trim",
		zap.Int64("meanItems", mean),
		zap.String("partition", part.ID.String()),
		zap.String("store", store.String()),
	)

	if err := inf.cluster.SetFlag(ctx, cluster.FlagNoOut); err != nil {
		return err
	}
	inf.wait(ctx, inf.guardSettle)
	defer func() {
		if err := inf.cluster.UnsetFlag(ctx, cluster.FlagNoOut); err != nil {
			inf.logger.Error("clearing guard after trim test", zap.Error(err))
		}
	}()

	ok, err := inf.trimTester.VerifyOfflineTrim(ctx, store, part.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(derrors.ErrTrimTestFailed,
			"partition %s store %s", part.ID.String(), store.String())
	}
	return nil
}

func (inf *Inflator) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func distinctStores(parts []topology.Partition) []types.StoreID {
	seen := make(map[types.StoreID]bool)
	var stores []types.StoreID
	for _, part := range parts {
		for _, store := range part.Acting {
			if !seen[store] {
				seen[store] = true
				stores = append(stores, store)
			}
		}
	}
	return stores
}
