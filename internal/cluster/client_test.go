package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

type fakeExecutor struct {
	outputs map[string]string
	calls   []string
}

var _ Executor = (*fakeExecutor)(nil)

func (f *fakeExecutor) Exec(_ context.Context, host, command string, _ ExecOptions) (string, error) {
	f.calls = append(f.calls, host+"|"+command)
	if out, ok := f.outputs[command]; ok {
		return out, nil
	}
	return "", &CommandError{Host: host, Command: command, Code: 22, Output: "unknown command"}
}

func newTestClient(t *testing.T, outputs map[string]string) (*Client, *fakeExecutor) {
	t.Helper()
	fe := &fakeExecutor{outputs: outputs}
	client, err := NewClient(WithExecutor(fe))
	require.NoError(t, err)
	return client, fe
}

func TestClientFSID(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl fsid --format json": `{"fsid":"7d7f8f2e"}`,
	})

	fsid, err := client.FSID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "7d7f8f2e", fsid)
}

func TestClientFSIDEmpty(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl fsid --format json": `{}`,
	})

	_, err := client.FSID(context.Background())
	require.Error(t, err)
}

func TestClientPartitionMap(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl partition map 8.0 --format json": `{"acting":[1,5,10],"acting_primary":1}`,
	})

	acting, primary, err := client.PartitionMap(context.Background(), types.PartitionID{Pool: 8, Shard: 0})
	require.NoError(t, err)
	require.Equal(t, []types.StoreID{1, 5, 10}, acting)
	require.Equal(t, types.StoreID(1), primary)
}

func TestClientDumpMempool(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl tell store.5 mempool --format json": `{"mempool":{"by_pool":{"replog":{"items":635,"bytes":313144}}}}`,
	})

	stats, err := client.DumpMempool(context.Background(), types.StoreID(5))
	require.NoError(t, err)
	require.Equal(t, MempoolUsage{Items: 635, Bytes: 313144}, stats.Mempool.ByPool["replog"])
}

func TestClientControlDaemon(t *testing.T) {
	client, fe := newTestClient(t, map[string]string{
		"storectl store find 5 --format json": `{"host":"node-3"}`,
		"systemctl stop store@5":              "",
	})

	err := client.ControlDaemon(context.Background(), DaemonStop, types.StoreID(5))
	require.NoError(t, err)
	require.Contains(t, fe.calls, "node-3|systemctl stop store@5")
}

func TestClientBenchCommand(t *testing.T) {
	client, fe := newTestClient(t, map[string]string{
		"storebench --pool duptrim-1 --block-size 2KiB --duration 50s --no-persist write": "",
	})

	err := client.Bench(context.Background(), "duptrim-1", 50*time.Second, 2<<10)
	require.NoError(t, err)
	require.Len(t, fe.calls, 1)
	assert.Equal(t, "admin|storebench --pool duptrim-1 --block-size 2KiB --duration 50s --no-persist write", fe.calls[0])
}

func TestClientCommandFailure(t *testing.T) {
	client, _ := newTestClient(t, nil)

	err := client.SetFlag(context.Background(), FlagNoOut)
	require.Error(t, err)
	require.ErrorIs(t, err, derrors.ErrOperationFailed)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 22, cmdErr.Code)
}

func TestClientUpgradeStatus(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl upgrade status --format json": `{"in_progress":true,"target_image":"store:v2","message":"upgrading store.3"}`,
	})

	status, err := client.GetUpgradeStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.InProgress)
	assert.False(t, status.Failed)
	assert.Equal(t, "store:v2", status.TargetImage)
}

func TestClientDecodeError(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"storectl pool stats duptrim-1 --format json": `not json`,
	})

	_, err := client.PoolID(context.Background(), "duptrim-1")
	require.Error(t, err)
}

func TestClientNoExecutor(t *testing.T) {
	_, err := NewClient()
	require.Error(t, err)
}
