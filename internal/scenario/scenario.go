// Package scenario sequences the duplicate-injection, inflation, trim, and
// upgrade phases into one end-to-end run and owns the cleanup path.
package scenario

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/internal/injector"
	"github.com/logquarry/duptrim/internal/mempool"
	"github.com/logquarry/duptrim/internal/topology"
	"github.com/logquarry/duptrim/pkg/types"
)

// Cluster is the control-plane surface the orchestrator itself uses.
// Injection, inflation, and trimming go through their own components.
type Cluster interface {
	FSID(ctx context.Context) (string, error)
	CreatePool(ctx context.Context, name string, replicas int) error
	DeletePool(ctx context.Context, name string) error
	PoolID(ctx context.Context, name string) (types.PoolID, error)
	SetFlag(ctx context.Context, flag string) error
	UnsetFlag(ctx context.Context, flag string) error
}

type Topology interface {
	ActingSet(ctx context.Context, ptid types.PartitionID) ([]types.StoreID, error)
	Stores() []types.StoreID
}

type Sampler interface {
	Sample(ctx context.Context, store types.StoreID) (mempool.Sample, error)
}

type Injector interface {
	InjectBatch(ctx context.Context, ptid types.PartitionID, acting []types.StoreID, fsid string) ([]injector.ReplicaResult, error)
}

type Inflator interface {
	Inflate(ctx context.Context, parts []topology.Partition, pools []string) error
}

type LoadGenerator interface {
	Start(ctx context.Context)
	Stop()
}

type Upgrader interface {
	Upgrade(ctx context.Context, image string) error
}

// Scenario is the end-to-end run: create pools, corrupt every replica's
// replog with duplicates, inflate the duplicate count under background
// load, verify trimming, and upgrade the cluster.
type Scenario struct {
	config

	created []string
	guards  []string
	started bool
}

func New(opts ...Option) (*Scenario, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Scenario{config: cfg}, nil
}

// Run executes the scenario. A nil error is a Pass. Cleanup always runs,
// whatever phase fails; cleanup failures are logged and reported only when
// the run itself succeeded.
func (s *Scenario) Run(ctx context.Context) (err error) {
	defer func() {
		cleanupErr := s.cleanup(ctx)
		if cleanupErr != nil {
			s.logger.Error("cleanup failed", zap.Error(cleanupErr))
			if err == nil {
				err = cleanupErr
			}
		}
		if err != nil {
			s.logger.Error("scenario failed", zap.Error(err))
		} else {
			s.logger.Info("scenario passed")
		}
	}()

	for _, pool := range s.pools {
		if err := s.cluster.CreatePool(ctx, pool, s.replicas); err != nil {
			return err
		}
		s.created = append(s.created, pool)
	}
	s.logger.Info("created test pools", zap.Strings("pools", s.pools))

	s.loadgen.Start(ctx)
	s.started = true

	fsid, err := s.cluster.FSID(ctx)
	if err != nil {
		return err
	}

	parts, err := s.resolvePartitions(ctx)
	if err != nil {
		return err
	}

	if err := s.baselineSample(ctx); err != nil {
		return err
	}

	if err := s.setGuard(ctx, cluster.FlagNoOut); err != nil {
		return err
	}
	if err := s.setGuard(ctx, cluster.FlagPause); err != nil {
		return err
	}
	s.wait(ctx, s.guardSettle)

	for _, part := range parts {
		results, err := s.injector.InjectBatch(ctx, part.ID, part.Acting, fsid)
		if err != nil {
			return err
		}
		for _, res := range results {
			s.logger.Info("injected duplicates",
				zap.String("partition", part.ID.String()),
				zap.String("store", res.Store.String()),
				zap.Int("pre", res.Pre),
				zap.Int("post", res.Post),
			)
		}
	}

	if err := s.clearGuard(ctx, cluster.FlagPause); err != nil {
		return err
	}
	if err := s.clearGuard(ctx, cluster.FlagNoOut); err != nil {
		return err
	}
	s.wait(ctx, s.guardSettle)

	if err := s.inflator.Inflate(ctx, parts, s.pools); err != nil {
		return err
	}

	if s.upgrader != nil && len(s.upgradeImage) > 0 {
		if err := s.upgrader.Upgrade(ctx, s.upgradeImage); err != nil {
			return err
		}
	}
	return nil
}

// resolvePartitions picks one partition per test pool and resolves its
// acting set. Acting sets stay fixed for the whole run.
func (s *Scenario) resolvePartitions(ctx context.Context) ([]topology.Partition, error) {
	parts := make([]topology.Partition, 0, len(s.pools))
	for _, pool := range s.pools {
		pid, err := s.cluster.PoolID(ctx, pool)
		if err != nil {
			return nil, err
		}
		ptid := types.PartitionID{Pool: pid, Shard: s.shard}
		acting, err := s.topology.ActingSet(ctx, ptid)
		if err != nil {
			return nil, err
		}
		parts = append(parts, topology.Partition{ID: ptid, Acting: acting})
	}
	return parts, nil
}

func (s *Scenario) baselineSample(ctx context.Context) error {
	for _, store := range s.topology.Stores() {
		sample, err := s.sampler.Sample(ctx, store)
		if err != nil {
			return err
		}
		s.logger.Info("baseline replog pool sample",
			zap.String("store", store.String()),
			zap.Int64("items", sample.Items),
			zap.Int64("bytes", sample.Bytes),
		)
	}
	return nil
}

func (s *Scenario) setGuard(ctx context.Context, flag string) error {
	if err := s.cluster.SetFlag(ctx, flag); err != nil {
		return err
	}
	s.guards = append(s.guards, flag)
	s.logger.Info("set maintenance guard", zap.String("flag", flag))
	return nil
}

func (s *Scenario) clearGuard(ctx context.Context, flag string) error {
	for i, held := range s.guards {
		if held != flag {
			continue
		}
		if err := s.cluster.UnsetFlag(ctx, flag); err != nil {
			return err
		}
		s.guards = append(s.guards[:i], s.guards[i+1:]...)
		s.logger.Info("cleared maintenance guard", zap.String("flag", flag))
		return nil
	}
	return nil
}

// cleanup releases everything the run acquired: the background load task,
// any maintenance guard still held, and the test pools. A stuck guard is a
// leaked resource with operational impact well beyond the test, so guards
// are cleared even when earlier cleanup steps fail.
func (s *Scenario) cleanup(ctx context.Context) error {
	var err error

	if s.started {
		s.loadgen.Stop()
		s.started = false
	}

	for _, flag := range append([]string(nil), s.guards...) {
		if clearErr := s.clearGuard(ctx, flag); clearErr != nil {
			err = multierr.Append(err, clearErr)
		}
	}

	for _, pool := range s.created {
		if delErr := s.cluster.DeletePool(ctx, pool); delErr != nil {
			err = multierr.Append(err, delErr)
		}
	}
	s.created = nil
	return err
}

func (s *Scenario) wait(ctx context.Context, d time.Duration) {
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
