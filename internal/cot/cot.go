// Package cot drives the offline log-maintenance tool against the on-disk
// replog of a stopped store replica.
package cot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/pkg/types"
)

// Task is a subcommand of the offline tool.
type Task string

const (
	// TaskLog dumps the replog of a partition replica to a JSON file.
	TaskLog Task = "log"
	// TaskInjectDups appends a fixed batch of duplicate entries to the
	// on-disk replog.
	TaskInjectDups Task = "inject-dups"
	// TaskTrimDups compacts duplicate entries out of the on-disk replog.
	TaskTrimDups Task = "trim-dups"
)

// Runner copies and invokes the offline tool on replica hosts.
type Runner struct {
	config
}

func NewRunner(opts ...Option) (*Runner, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Runner{config: cfg}, nil
}

// EnsureScript fetches the tool wrapper script onto the host and makes it
// executable. Fetching is idempotent; an existing script is overwritten.
func (r *Runner) EnsureScript(ctx context.Context, host string) error {
	if _, err := r.executor.Exec(ctx, host, fmt.Sprintf("curl -k %s -O", r.scriptURL), cluster.ExecOptions{Sudo: true}); err != nil {
		return errors.Wrapf(err, "cot: fetch script onto host %s", host)
	}
	if _, err := r.executor.Exec(ctx, host, fmt.Sprintf("chmod 755 %s", r.scriptName), cluster.ExecOptions{Sudo: true}); err != nil {
		return errors.Wrapf(err, "cot: chmod script on host %s", host)
	}
	r.logger.Debug("offline tool script ready", zap.String("host", host))
	return nil
}

// Run invokes one offline tool task against the replog of the partition
// replica on the store daemon. The wrapper script owns the daemon state for
// the duration of the task and leaves the daemon running afterwards when
// startDaemon is set; callers stop replicas beforehand only when they need
// the whole acting set down at once.
func (r *Runner) Run(ctx context.Context, host string, store types.StoreID, ptid types.PartitionID, task Task, startDaemon bool, fsid, image string) error {
	startFlag := 0
	if startDaemon {
		startFlag = 1
	}
	cmd := fmt.Sprintf("sh %s -o %s -p %s -t %s -s %d -f %s",
		r.scriptName, store.String(), ptid.String(), task, startFlag, fsid)
	if len(image) > 0 {
		cmd += " -i " + image
	}

	r.logger.Info("running offline tool",
		zap.String("host", host),
		zap.String("store", store.String()),
		zap.String("partition", ptid.String()),
		zap.String("task", string(task)),
	)
	if _, err := r.executor.Exec(ctx, host, cmd, cluster.ExecOptions{Sudo: true, LongRunning: true}); err != nil {
		return errors.Wrapf(err, "cot: task %s on store %s", task, store.String())
	}
	return nil
}

// DumpPath returns the path of the replog dump the log task writes for the
// partition replica.
func (r *Runner) DumpPath(fsid string, store types.StoreID, ptid types.PartitionID) string {
	return fmt.Sprintf("%s/%s/store.%s/log-%s.%s.log", r.logRoot, fsid, store.String(), ptid.String(), store.String())
}

// DupCount reads the replog dump of the partition replica and returns the
// number of duplicate entries in it.
func (r *Runner) DupCount(ctx context.Context, host string, fsid string, store types.StoreID, ptid types.PartitionID) (int, error) {
	path := r.DumpPath(fsid, store, ptid)
	out, err := r.executor.Exec(ctx, host, "cat "+path, cluster.ExecOptions{Sudo: true})
	if err != nil {
		return 0, errors.Wrapf(err, "cot: read dump %s", path)
	}

	var dump struct {
		PGLog struct {
			Dups []json.RawMessage `json:"dups"`
		} `json:"pg_log_t"`
	}
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		return 0, errors.Wrapf(err, "cot: decode dump %s", path)
	}
	return len(dump.PGLog.Dups), nil
}
