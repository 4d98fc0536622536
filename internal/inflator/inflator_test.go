package inflator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logquarry/duptrim/internal/mempool"
	"github.com/logquarry/duptrim/internal/topology"
	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

type fakeCluster struct {
	mu       sync.Mutex
	benches  int
	configs  []string
	setFlags []string
	unsets   []string
}

var _ Cluster = (*fakeCluster)(nil)

func (f *fakeCluster) Bench(context.Context, string, time.Duration, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.benches++
	return nil
}

func (f *fakeCluster) SetConfig(_ context.Context, section, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, section+"/"+key+"="+value)
	return nil
}

func (f *fakeCluster) SetFlag(_ context.Context, flag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setFlags = append(f.setFlags, flag)
	return nil
}

func (f *fakeCluster) UnsetFlag(_ context.Context, flag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsets = append(f.unsets, flag)
	return nil
}

// fakeSampler returns start on the first sample of each store and grows the
// value by step per subsequent sample, mimicking a replog filling under load.
type fakeSampler struct {
	start int64
	step  int64
	err   error
	calls map[types.StoreID]int64
}

var _ Sampler = (*fakeSampler)(nil)

func (f *fakeSampler) Sample(_ context.Context, store types.StoreID) (mempool.Sample, error) {
	if f.err != nil {
		return mempool.Sample{}, f.err
	}
	if f.calls == nil {
		f.calls = make(map[types.StoreID]int64)
	}
	items := f.start + f.step*f.calls[store]
	f.calls[store]++
	return mempool.Sample{Items: items, Bytes: items * 500}, nil
}

type fakeTrimTester struct {
	calls int
	ok    bool
	err   error
}

var _ TrimTester = (*fakeTrimTester)(nil)

func (f *fakeTrimTester) VerifyOfflineTrim(context.Context, types.StoreID, types.PartitionID) (bool, error) {
	f.calls++
	return f.ok, f.err
}

func testParts() []topology.Partition {
	return []topology.Partition{
		{ID: types.PartitionID{Pool: 8, Shard: 0}, Acting: []types.StoreID{1, 5, 10}},
		{ID: types.PartitionID{Pool: 9, Shard: 0}, Acting: []types.StoreID{5, 2, 1}},
	}
}

func newTestInflator(t *testing.T, cluster Cluster, sampler Sampler, tester TrimTester, opts ...Option) *Inflator {
	t.Helper()
	opts = append([]Option{
		WithCluster(cluster),
		WithSampler(sampler),
		WithTrimTester(tester),
		WithPoolPause(0),
		WithGuardSettle(0),
	}, opts...)
	inf, err := New(opts...)
	require.NoError(t, err)
	return inf
}

func TestInflatorConvergesImmediately(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 200}
	tester := &fakeTrimTester{ok: true}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(100),
		WithTrimTestThreshold(10),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1"})
	require.NoError(t, err)
	assert.Zero(t, cluster.benches)
	assert.Zero(t, tester.calls)
	require.Equal(t, []string{"store/store_max_log_entries=" + DefaultLogEntriesClamp}, cluster.configs)
}

func TestInflatorTrimTestFiresOnce(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 0, step: 20}
	tester := &fakeTrimTester{ok: true}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(100),
		WithTrimTestThreshold(10),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1", "duptrim-2"})
	require.NoError(t, err)

	// the mean crossed the threshold on several iterations but the test
	// runs exactly once, wrapped in a balanced noout guard
	require.Equal(t, 1, tester.calls)
	require.Equal(t, []string{"noout"}, cluster.setFlags)
	require.Equal(t, []string{"noout"}, cluster.unsets)
	assert.Positive(t, cluster.benches)
}

func TestInflatorTrimTestFailure(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 50, step: 10}
	tester := &fakeTrimTester{ok: false}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(1000),
		WithTrimTestThreshold(10),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1"})
	require.ErrorIs(t, err, derrors.ErrTrimTestFailed)
	require.Equal(t, cluster.setFlags, cluster.unsets)
}

func TestInflatorTrimTestError(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 50, step: 10}
	tester := &fakeTrimTester{err: errors.New("replica host unreachable")}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(1000),
		WithTrimTestThreshold(10),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1"})
	require.Error(t, err)
	require.NotErrorIs(t, err, derrors.ErrTrimTestFailed)
	require.Equal(t, cluster.setFlags, cluster.unsets)
}

func TestInflatorTimeout(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 0, step: 0}
	tester := &fakeTrimTester{ok: true}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(100),
		WithTrimTestThreshold(10),
		WithTimeout(0),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1"})
	require.ErrorIs(t, err, derrors.ErrInflationTimedOut)
	assert.Zero(t, tester.calls)
}

func TestInflatorSampleFailureAborts(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{err: errors.Wrap(derrors.ErrSampleUnavailable, "store 5")}
	tester := &fakeTrimTester{ok: true}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(100),
		WithTrimTestThreshold(10),
	)

	err := inf.Inflate(context.Background(), testParts(), []string{"duptrim-1"})
	require.ErrorIs(t, err, derrors.ErrSampleUnavailable)
	assert.Zero(t, cluster.benches)
}

func TestInflatorContextCancel(t *testing.T) {
	cluster := &fakeCluster{}
	sampler := &fakeSampler{start: 0, step: 1}
	tester := &fakeTrimTester{ok: true}
	inf := newTestInflator(t, cluster, sampler, tester,
		WithTargetAverageItems(1_000_000),
		WithTrimTestThreshold(1),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := inf.Inflate(ctx, testParts(), []string{"duptrim-1"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInflatorNoStores(t *testing.T) {
	inf := newTestInflator(t, &fakeCluster{}, &fakeSampler{}, &fakeTrimTester{ok: true})
	err := inf.Inflate(context.Background(), nil, []string{"duptrim-1"})
	require.Error(t, err)
}

func TestInflatorValidation(t *testing.T) {
	_, err := New(WithSampler(&fakeSampler{}), WithTrimTester(&fakeTrimTester{}))
	require.Error(t, err)

	_, err = New(
		WithCluster(&fakeCluster{}),
		WithSampler(&fakeSampler{}),
		WithTrimTester(&fakeTrimTester{}),
		WithTargetAverageItems(10),
		WithTrimTestThreshold(20),
	)
	require.Error(t, err)
}
