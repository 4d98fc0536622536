// Package injector corrupts the on-disk replog of every replica of a
// partition with a fixed batch of duplicate entries.
package injector

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/internal/cot"
	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

// DaemonController stops and starts store daemons and resolves their hosts.
type DaemonController interface {
	FindStoreHost(ctx context.Context, store types.StoreID) (string, error)
	ControlDaemon(ctx context.Context, action cluster.DaemonAction, store types.StoreID) error
}

// ToolRunner is the offline tool surface the injector needs.
type ToolRunner interface {
	EnsureScript(ctx context.Context, host string) error
	Run(ctx context.Context, host string, store types.StoreID, ptid types.PartitionID, task cot.Task, startDaemon bool, fsid, image string) error
	DupCount(ctx context.Context, host string, fsid string, store types.StoreID, ptid types.PartitionID) (int, error)
}

// ReplicaResult records the duplicate counts observed around one injection.
type ReplicaResult struct {
	Store types.StoreID
	Pre   int
	Post  int
}

// Injector writes duplicate entries into stopped replicas through the
// offline tool and verifies the exact delta.
type Injector struct {
	config
}

func New(opts ...Option) (*Injector, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Injector{config: cfg}, nil
}

// InjectBatch injects exactly one batch of duplicates into every replica of
// the partition. All replicas are stopped up front so the offline tool never
// races a live daemon, each replica is processed in acting-set order, and
// the whole set is restarted as a batch afterwards, on failure paths too.
//
// A delta other than the configured batch size fails with
// derrors.ErrUnexpectedDelta and is never retried: the on-disk replog is in
// an undefined mixture at that point.
func (in *Injector) InjectBatch(ctx context.Context, ptid types.PartitionID, acting []types.StoreID, fsid string) (results []ReplicaResult, err error) {
	in.logger.Info("stopping replicas of partition",
		zap.String("partition", ptid.String()),
		zap.Int("replicas", len(acting)),
	)
	for _, store := range acting {
		if stopErr := in.daemons.ControlDaemon(ctx, cluster.DaemonStop, store); stopErr != nil {
			err = stopErr
			break
		}
	}

	defer func() {
		for _, store := range acting {
			if startErr := in.daemons.ControlDaemon(ctx, cluster.DaemonRestart, store); startErr != nil {
				in.logger.Error("restarting replica",
					zap.String("partition", ptid.String()),
					zap.String("store", store.String()),
					zap.Error(startErr),
				)
				if err != nil {
					// The original failure wins; the restart
					// failure is still reported alongside it.
					err = multierr.Append(err, startErr)
				} else {
					err = startErr
				}
			}
		}
	}()

	if err != nil {
		return nil, err
	}

	for _, store := range acting {
		res, injErr := in.injectReplica(ctx, ptid, store, fsid)
		if injErr != nil {
			return results, injErr
		}
		results = append(results, res)
	}

	in.logger.Info("injected duplicates into all replicas of partition",
		zap.String("partition", ptid.String()),
	)
	return results, nil
}

func (in *Injector) injectReplica(ctx context.Context, ptid types.PartitionID, store types.StoreID, fsid string) (ReplicaResult, error) {
	host, err := in.daemons.FindStoreHost(ctx, store)
	if err != nil {
		return ReplicaResult{}, err
	}
	if err := in.tool.EnsureScript(ctx, host); err != nil {
		return ReplicaResult{}, err
	}

	if err := in.tool.Run(ctx, host, store, ptid, cot.TaskLog, false, fsid, ""); err != nil {
		return ReplicaResult{}, err
	}
	pre, err := in.tool.DupCount(ctx, host, fsid, store, ptid)
	if err != nil {
		return ReplicaResult{}, err
	}
	in.logger.Debug("duplicate count before injection",
		zap.String("partition", ptid.String()),
		zap.String("store", store.String()),
		zap.Int("dups", pre),
	)

	if err := in.tool.Run(ctx, host, store, ptid, cot.TaskInjectDups, false, fsid, in.image); err != nil {
		return ReplicaResult{}, err
	}

	if err := in.tool.Run(ctx, host, store, ptid, cot.TaskLog, false, fsid, ""); err != nil {
		return ReplicaResult{}, err
	}
	post, err := in.tool.DupCount(ctx, host, fsid, store, ptid)
	if err != nil {
		return ReplicaResult{}, err
	}
	in.logger.Debug("duplicate count after injection",
		zap.String("partition", ptid.String()),
		zap.String("store", store.String()),
		zap.Int("dups", post),
	)

	if post-pre != in.batchSize {
		return ReplicaResult{}, errors.Wrapf(derrors.ErrUnexpectedDelta,
			"partition %s store %s: pre %d post %d want +%d",
			ptid.String(), store.String(), pre, post, in.batchSize)
	}
	return ReplicaResult{Store: store, Pre: pre, Post: post}, nil
}
