package stopchannel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStopChannel(t *testing.T) {
	sc := New()
	require.False(t, sc.Stopped())

	select {
	case <-sc.StopC():
		require.Fail(t, "stop channel closed before Stop")
	default:
	}

	sc.Stop()
	require.True(t, sc.Stopped())

	select {
	case <-sc.StopC():
	default:
		require.Fail(t, "stop channel open after Stop")
	}
}

func TestStopChannelStopTwice(t *testing.T) {
	sc := New()
	sc.Stop()
	sc.Stop()
	require.True(t, sc.Stopped())
}

func TestStopChannelConcurrentStop(t *testing.T) {
	sc := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Stop()
		}()
	}
	wg.Wait()
	require.True(t, sc.Stopped())
}
