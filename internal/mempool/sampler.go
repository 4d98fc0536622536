// Package mempool samples the approximate in-memory footprint of the replog
// entry pool on live store daemons.
package mempool

import (
	"context"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v2"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

// PoolReplog is the name of the replog entry pool in mempool dumps.
const PoolReplog = "replog"

// Sample is a point-in-time approximation of the replog entries resident in
// one store daemon. It is never exact; the daemon reports shard estimates.
type Sample struct {
	Items int64
	Bytes int64
}

// Dumper queries a live store daemon for mempool statistics.
type Dumper interface {
	DumpMempool(ctx context.Context, store types.StoreID) (cluster.MempoolStats, error)
}

// Sampler reads replog pool samples. Only the latest sample per store is
// retained.
type Sampler struct {
	dumper Dumper
	logger *zap.Logger

	mu     *xsync.RBMutex
	latest map[types.StoreID]Sample
}

func NewSampler(dumper Dumper, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		dumper: dumper,
		logger: logger.Named("mempool"),
		mu:     xsync.NewRBMutex(),
		latest: make(map[types.StoreID]Sample),
	}
}

// Sample reads the replog pool usage of a store daemon. An unreachable
// daemon or a dump without the replog pool fails with
// derrors.ErrSampleUnavailable; it never defaults to a zero sample, which
// would corrupt averages computed from the result.
func (s *Sampler) Sample(ctx context.Context, store types.StoreID) (Sample, error) {
	stats, err := s.dumper.DumpMempool(ctx, store)
	if err != nil {
		return Sample{}, errors.Wrapf(derrors.ErrSampleUnavailable, "store %s: %s", store.String(), err.Error())
	}
	usage, ok := stats.Mempool.ByPool[PoolReplog]
	if !ok {
		return Sample{}, errors.Wrapf(derrors.ErrSampleUnavailable, "store %s: no %s pool in dump", store.String(), PoolReplog)
	}

	sample := Sample{Items: usage.Items, Bytes: usage.Bytes}
	s.mu.Lock()
	s.latest[store] = sample
	s.mu.Unlock()

	s.logger.Debug("sampled replog mempool",
		zap.String("store", store.String()),
		zap.Int64("items", sample.Items),
		zap.Int64("bytes", sample.Bytes),
	)
	return sample, nil
}

// Latest returns the most recent sample taken from the store, if any.
func (s *Sampler) Latest(store types.StoreID) (Sample, bool) {
	t := s.mu.RLock()
	sample, ok := s.latest[store]
	s.mu.RUnlock(t)
	return sample, ok
}
