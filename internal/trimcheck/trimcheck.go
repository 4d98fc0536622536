// Package trimcheck verifies that the offline tool can compact duplicate
// entries out of a replica's replog.
package trimcheck

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cot"
	"github.com/logquarry/duptrim/pkg/types"
)

// Cluster is the control-plane surface the verifier needs.
type Cluster interface {
	FSID(ctx context.Context) (string, error)
	FindStoreHost(ctx context.Context, store types.StoreID) (string, error)
}

// ToolRunner is the offline tool surface the verifier needs. The wrapper
// script is expected to be present on the host already; injection puts it
// there on every replica beforehand.
type ToolRunner interface {
	Run(ctx context.Context, host string, store types.StoreID, ptid types.PartitionID, task cot.Task, startDaemon bool, fsid, image string) error
	DupCount(ctx context.Context, host string, fsid string, store types.StoreID, ptid types.PartitionID) (int, error)
}

// Verifier exercises the offline trim path on one replica.
type Verifier struct {
	config
}

func New(opts ...Option) (*Verifier, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Verifier{config: cfg}, nil
}

// VerifyOfflineTrim trims the duplicates of one partition replica offline
// and checks the count left behind. A count at or above the safety bound
// returns ok=false with a nil error: the trim genuinely failed to compact,
// which is a test verdict, not an operational fault.
func (v *Verifier) VerifyOfflineTrim(ctx context.Context, store types.StoreID, ptid types.PartitionID) (ok bool, err error) {
	host, err := v.cluster.FindStoreHost(ctx, store)
	if err != nil {
		return false, err
	}
	fsid, err := v.cluster.FSID(ctx)
	if err != nil {
		return false, err
	}

	if err := v.tool.Run(ctx, host, store, ptid, cot.TaskLog, false, fsid, ""); err != nil {
		return false, err
	}
	pre, err := v.tool.DupCount(ctx, host, fsid, store, ptid)
	if err != nil {
		return false, err
	}
	v.logger.Info("duplicate count before trim",
		zap.String("partition", ptid.String()),
		zap.String("store", store.String()),
		zap.Int("dups", pre),
	)

	if err := v.tool.Run(ctx, host, store, ptid, cot.TaskTrimDups, false, fsid, v.image); err != nil {
		return false, err
	}

	// The daemon restarts with the final log dump.
	if err := v.tool.Run(ctx, host, store, ptid, cot.TaskLog, true, fsid, ""); err != nil {
		return false, err
	}
	v.wait(ctx, v.settle)

	post, err := v.tool.DupCount(ctx, host, fsid, store, ptid)
	if err != nil {
		return false, err
	}
	if post >= v.safetyBound {
		v.logger.Error("duplicates not trimmed",
			zap.String("partition", ptid.String()),
			zap.String("store", store.String()),
			zap.Int("dups", post),
			zap.Int("safetyBound", v.safetyBound),
		)
		return false, nil
	}

	v.logger.Info("duplicates trimmed",
		zap.String("partition", ptid.String()),
		zap.String("store", store.String()),
		zap.Int("pre", pre),
		zap.Int("post", post),
	)
	return true, nil
}

func (v *Verifier) wait(ctx context.Context, d time.Duration) {
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
