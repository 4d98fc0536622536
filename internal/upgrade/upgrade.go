// Package upgrade triggers a rolling version upgrade of the cluster and
// waits for its outcome. The harness treats the upgrade as atomic: it either
// completes or fails, and nothing in between is inspected.
package upgrade

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/pkg/derrors"
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultTimeout      = 2 * time.Hour
)

// Driver performs a rolling upgrade to the target image.
type Driver interface {
	Upgrade(ctx context.Context, image string) error
}

// Cluster is the control-plane surface the CLI driver needs.
type Cluster interface {
	StartUpgrade(ctx context.Context, image string) error
	GetUpgradeStatus(ctx context.Context) (cluster.UpgradeStatus, error)
}

// CLIDriver drives the upgrade through the cluster CLI and polls its status
// until completion.
type CLIDriver struct {
	cluster      Cluster
	pollInterval time.Duration
	timeout      time.Duration
	logger       *zap.Logger
}

var _ Driver = (*CLIDriver)(nil)

func NewCLIDriver(c Cluster, logger *zap.Logger) *CLIDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIDriver{
		cluster:      c,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		logger:       logger.Named("upgrade"),
	}
}

func (d *CLIDriver) Upgrade(ctx context.Context, image string) error {
	d.logger.Info("starting rolling upgrade", zap.String("image", image))
	if err := d.cluster.StartUpgrade(ctx, image); err != nil {
		return err
	}

	deadline := time.Now().Add(d.timeout)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	// The control plane may not have registered the upgrade yet on the
	// first polls; an idle status only counts as completion once the
	// upgrade has been seen running or the status names the target image.
	seenInProgress := false
	for {
		status, err := d.cluster.GetUpgradeStatus(ctx)
		if err != nil {
			return err
		}
		if status.Failed {
			return errors.Wrap(derrors.ErrUpgradeFailed, status.Message)
		}
		if status.InProgress {
			seenInProgress = true
			d.logger.Debug("upgrade in progress",
				zap.String("targetImage", status.TargetImage),
				zap.String("message", status.Message),
			)
		} else if seenInProgress || status.TargetImage == image {
			d.logger.Info("upgrade completed", zap.String("image", image))
			return nil
		}

		if time.Now().After(deadline) {
			return errors.Wrap(derrors.ErrUpgradeFailed, "timed out")
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SetPollInterval overrides the status polling cadence; tests shrink it.
func (d *CLIDriver) SetPollInterval(interval time.Duration) {
	d.pollInterval = interval
}

// SetTimeout overrides the completion deadline; tests shrink it.
func (d *CLIDriver) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}
