package upgrade

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/pkg/derrors"
)

type fakeCluster struct {
	started  []string
	statuses []cluster.UpgradeStatus
	startErr error
	polls    int
}

var _ Cluster = (*fakeCluster)(nil)

func (f *fakeCluster) StartUpgrade(_ context.Context, image string) error {
	f.started = append(f.started, image)
	return f.startErr
}

func (f *fakeCluster) GetUpgradeStatus(context.Context) (cluster.UpgradeStatus, error) {
	status := f.statuses[f.polls]
	if f.polls < len(f.statuses)-1 {
		f.polls++
	}
	return status, nil
}

func newTestDriver(c *fakeCluster) *CLIDriver {
	d := NewCLIDriver(c, nil)
	d.SetPollInterval(time.Millisecond)
	return d
}

func TestCLIDriverUpgradeCompletes(t *testing.T) {
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: true, TargetImage: "store:v2", Message: "upgrading store.1"},
			{InProgress: true, TargetImage: "store:v2", Message: "upgrading store.2"},
			{InProgress: false},
		},
	}
	driver := newTestDriver(c)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.NoError(t, err)
	require.Equal(t, []string{"store:v2"}, c.started)
	assert.Equal(t, 2, c.polls)
}

func TestCLIDriverWaitsForUpgradeRegistration(t *testing.T) {
	// the status endpoint lags StartUpgrade; the first idle status must
	// not be mistaken for completion
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: false},
			{InProgress: true, TargetImage: "store:v2"},
			{InProgress: false},
		},
	}
	driver := newTestDriver(c)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.polls)
}

func TestCLIDriverCompletesOnTargetImageMatch(t *testing.T) {
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: false, TargetImage: "store:v2"},
		},
	}
	driver := newTestDriver(c)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.NoError(t, err)
	assert.Zero(t, c.polls)
}

func TestCLIDriverUpgradeFails(t *testing.T) {
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: true},
			{Failed: true, Message: "store.3 did not come back"},
		},
	}
	driver := newTestDriver(c)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.ErrorIs(t, err, derrors.ErrUpgradeFailed)
	require.Contains(t, err.Error(), "store.3 did not come back")
}

func TestCLIDriverUpgradeTimesOut(t *testing.T) {
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: true},
		},
	}
	driver := newTestDriver(c)
	driver.SetTimeout(0)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.ErrorIs(t, err, derrors.ErrUpgradeFailed)
	require.Contains(t, err.Error(), "timed out")
}

func TestCLIDriverStartFailure(t *testing.T) {
	c := &fakeCluster{startErr: errors.New("another upgrade in progress")}
	driver := newTestDriver(c)

	err := driver.Upgrade(context.Background(), "store:v2")
	require.Error(t, err)
	require.NotErrorIs(t, err, derrors.ErrUpgradeFailed)
	assert.Zero(t, c.polls)
}

func TestCLIDriverContextCancel(t *testing.T) {
	c := &fakeCluster{
		statuses: []cluster.UpgradeStatus{
			{InProgress: true},
		},
	}
	driver := newTestDriver(c)
	driver.SetPollInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := driver.Upgrade(ctx, "store:v2")
	require.ErrorIs(t, err, context.Canceled)
}
