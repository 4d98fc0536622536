package mempool

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

type fakeDumper struct {
	stats map[types.StoreID]cluster.MempoolStats
	err   error
}

var _ Dumper = (*fakeDumper)(nil)

func (f *fakeDumper) DumpMempool(_ context.Context, store types.StoreID) (cluster.MempoolStats, error) {
	if f.err != nil {
		return cluster.MempoolStats{}, f.err
	}
	return f.stats[store], nil
}

func mempoolStats(items, bytes int64) cluster.MempoolStats {
	var stats cluster.MempoolStats
	stats.Mempool.ByPool = map[string]cluster.MempoolUsage{
		PoolReplog: {Items: items, Bytes: bytes},
	}
	return stats
}

func TestSamplerSample(t *testing.T) {
	dumper := &fakeDumper{
		stats: map[types.StoreID]cluster.MempoolStats{
			1: mempoolStats(635, 313144),
		},
	}
	sampler := NewSampler(dumper, nil)

	sample, err := sampler.Sample(context.Background(), types.StoreID(1))
	require.NoError(t, err)
	require.Equal(t, Sample{Items: 635, Bytes: 313144}, sample)

	latest, ok := sampler.Latest(types.StoreID(1))
	require.True(t, ok)
	require.Equal(t, sample, latest)
}

func TestSamplerDumpFailure(t *testing.T) {
	dumper := &fakeDumper{err: errors.New("daemon not responding")}
	sampler := NewSampler(dumper, nil)

	_, err := sampler.Sample(context.Background(), types.StoreID(1))
	require.ErrorIs(t, err, derrors.ErrSampleUnavailable)

	_, ok := sampler.Latest(types.StoreID(1))
	assert.False(t, ok)
}

func TestSamplerMissingPool(t *testing.T) {
	var stats cluster.MempoolStats
	stats.Mempool.ByPool = map[string]cluster.MempoolUsage{
		"bufferlist": {Items: 10, Bytes: 4096},
	}
	dumper := &fakeDumper{stats: map[types.StoreID]cluster.MempoolStats{1: stats}}
	sampler := NewSampler(dumper, nil)

	_, err := sampler.Sample(context.Background(), types.StoreID(1))
	require.ErrorIs(t, err, derrors.ErrSampleUnavailable)
}

func TestSamplerLatestRetainsLastSample(t *testing.T) {
	dumper := &fakeDumper{
		stats: map[types.StoreID]cluster.MempoolStats{
			1: mempoolStats(100, 1000),
		},
	}
	sampler := NewSampler(dumper, nil)

	_, err := sampler.Sample(context.Background(), types.StoreID(1))
	require.NoError(t, err)

	// failure after a successful sample keeps the last good value
	dumper.err = errors.New("daemon restarting")
	_, err = sampler.Sample(context.Background(), types.StoreID(1))
	require.Error(t, err)

	latest, ok := sampler.Latest(types.StoreID(1))
	require.True(t, ok)
	require.Equal(t, Sample{Items: 100, Bytes: 1000}, latest)
}
