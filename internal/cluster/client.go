package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/pkg/types"
	"github.com/logquarry/duptrim/pkg/util/units"
)

// Flags pausing automatic cluster maintenance. The noout flag stops
// automatic data movement away from down stores; the pause flag suspends
// client IO.
const (
	FlagNoOut = "noout"
	FlagPause = "pause"
)

// DaemonAction is an operation on a store daemon through its init system.
type DaemonAction string

const (
	DaemonStop    DaemonAction = "stop"
	DaemonStart   DaemonAction = "start"
	DaemonRestart DaemonAction = "restart"
)

// MempoolUsage is a point-in-time approximation of the items and bytes
// resident in one in-memory pool of a store daemon.
type MempoolUsage struct {
	Items int64 `json:"items"`
	Bytes int64 `json:"bytes"`
}

// MempoolStats is the decoded output of "storectl tell store.<id> mempool".
type MempoolStats struct {
	Mempool struct {
		ByPool map[string]MempoolUsage `json:"by_pool"`
	} `json:"mempool"`
}

// UpgradeStatus is the decoded output of "storectl upgrade status".
type UpgradeStatus struct {
	InProgress  bool   `json:"in_progress"`
	Failed      bool   `json:"failed"`
	TargetImage string `json:"target_image"`
	Message     string `json:"message"`
}

// Client wraps the cluster control-plane CLI. Every method shells out
// through the Executor and decodes the JSON the CLI prints.
type Client struct {
	config
}

func NewClient(opts ...Option) (*Client, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Client{config: cfg}, nil
}

func (c *Client) run(ctx context.Context, command string) (string, error) {
	c.logger.Debug("running cluster command", zap.String("command", command))
	return c.executor.Exec(ctx, c.adminHost, command, ExecOptions{Sudo: true})
}

func (c *Client) runJSON(ctx context.Context, command string, v any) error {
	out, err := c.run(ctx, command+" --format json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return errors.Wrapf(err, "cluster: decode output of %q", command)
	}
	return nil
}

// FSID returns the unique identity of the cluster.
func (c *Client) FSID(ctx context.Context) (string, error) {
	var rsp struct {
		FSID string `json:"fsid"`
	}
	cmd := fmt.Sprintf("%s fsid", c.cliPath)
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return "", err
	}
	if len(rsp.FSID) == 0 {
		return "", errors.New("cluster: empty fsid")
	}
	return rsp.FSID, nil
}

// CreatePool creates a replicated pool.
func (c *Client) CreatePool(ctx context.Context, name string, replicas int) error {
	cmd := fmt.Sprintf("%s pool create %s --replicas %d", c.cliPath, name, replicas)
	_, err := c.run(ctx, cmd)
	return err
}

// DeletePool removes a pool and all of its data.
func (c *Client) DeletePool(ctx context.Context, name string) error {
	cmd := fmt.Sprintf("%s pool delete %s --yes-i-really-mean-it", c.cliPath, name)
	_, err := c.run(ctx, cmd)
	return err
}

// PoolID resolves the numeric id of a pool by name.
func (c *Client) PoolID(ctx context.Context, name string) (types.PoolID, error) {
	var rsp struct {
		PoolID types.PoolID `json:"pool_id"`
	}
	cmd := fmt.Sprintf("%s pool stats %s", c.cliPath, name)
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return 0, err
	}
	return rsp.PoolID, nil
}

// PartitionMap returns the acting set of a partition and its primary. The
// primary is negative if the partition has none.
func (c *Client) PartitionMap(ctx context.Context, ptid types.PartitionID) (acting []types.StoreID, primary types.StoreID, err error) {
	var rsp struct {
		Acting        []types.StoreID `json:"acting"`
		ActingPrimary types.StoreID   `json:"acting_primary"`
	}
	cmd := fmt.Sprintf("%s partition map %s", c.cliPath, ptid.String())
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return nil, 0, err
	}
	return rsp.Acting, rsp.ActingPrimary, nil
}

// DumpMempool queries a live store daemon for its mempool statistics.
func (c *Client) DumpMempool(ctx context.Context, store types.StoreID) (MempoolStats, error) {
	var rsp MempoolStats
	cmd := fmt.Sprintf("%s tell store.%s mempool", c.cliPath, store.String())
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return MempoolStats{}, err
	}
	return rsp, nil
}

// SetFlag sets a cluster-wide maintenance flag.
func (c *Client) SetFlag(ctx context.Context, flag string) error {
	cmd := fmt.Sprintf("%s flag set %s", c.cliPath, flag)
	_, err := c.run(ctx, cmd)
	return err
}

// UnsetFlag clears a cluster-wide maintenance flag.
func (c *Client) UnsetFlag(ctx context.Context, flag string) error {
	cmd := fmt.Sprintf("%s flag unset %s", c.cliPath, flag)
	_, err := c.run(ctx, cmd)
	return err
}

// SetConfig updates a configuration key for a daemon section.
func (c *Client) SetConfig(ctx context.Context, section, key, value string) error {
	cmd := fmt.Sprintf("%s config set %s %s %s", c.cliPath, section, key, value)
	_, err := c.run(ctx, cmd)
	return err
}

// FindStoreHost resolves the host running the given store daemon.
func (c *Client) FindStoreHost(ctx context.Context, store types.StoreID) (string, error) {
	var rsp struct {
		Host string `json:"host"`
	}
	cmd := fmt.Sprintf("%s store find %s", c.cliPath, store.String())
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return "", err
	}
	if len(rsp.Host) == 0 {
		return "", errors.Errorf("cluster: no host for store %s", store.String())
	}
	return rsp.Host, nil
}

// ControlDaemon stops, starts, or restarts a store daemon on its host.
func (c *Client) ControlDaemon(ctx context.Context, action DaemonAction, store types.StoreID) error {
	host, err := c.FindStoreHost(ctx, store)
	if err != nil {
		return err
	}
	c.logger.Info("controlling store daemon",
		zap.String("action", string(action)),
		zap.String("store", store.String()),
		zap.String("host", host),
	)
	cmd := fmt.Sprintf("systemctl %s store@%s", action, store.String())
	_, err = c.executor.Exec(ctx, host, cmd, ExecOptions{Sudo: true})
	return err
}

// Bench runs one bounded synthetic write burst against a pool without
// persisting the written objects.
func (c *Client) Bench(ctx context.Context, pool string, duration time.Duration, blockSize int64) error {
	cmd := fmt.Sprintf("%s --pool %s --block-size %s --duration %ds --no-persist write",
		c.benchPath, pool, units.ToByteSizeString(float64(blockSize)), int(duration.Seconds()))
	_, err := c.executor.Exec(ctx, c.adminHost, cmd, ExecOptions{Sudo: true, LongRunning: true})
	return err
}

// StartUpgrade begins a rolling upgrade to the target image.
func (c *Client) StartUpgrade(ctx context.Context, image string) error {
	cmd := fmt.Sprintf("%s upgrade start --image %s", c.cliPath, image)
	_, err := c.run(ctx, cmd)
	return err
}

// GetUpgradeStatus reports the progress of a rolling upgrade.
func (c *Client) GetUpgradeStatus(ctx context.Context) (UpgradeStatus, error) {
	var rsp UpgradeStatus
	cmd := fmt.Sprintf("%s upgrade status", c.cliPath)
	if err := c.runJSON(ctx, cmd, &rsp); err != nil {
		return UpgradeStatus{}, err
	}
	return rsp, nil
}
