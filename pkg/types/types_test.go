package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionID(t *testing.T) {
	tcs := []struct {
		input   string
		parsed  PartitionID
		isErr   bool
		renders string
	}{
		{input: "8.0", parsed: PartitionID{Pool: 8, Shard: 0}, renders: "8.0"},
		{input: "120.31", parsed: PartitionID{Pool: 120, Shard: 31}, renders: "120.31"},
		{input: "8", isErr: true},
		{input: "8.x", isErr: true},
		{input: "x.0", isErr: true},
		{input: "", isErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.input, func(t *testing.T) {
			ptid, err := ParsePartitionID(tc.input)
			if tc.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.parsed, ptid)
			require.Equal(t, tc.renders, ptid.String())
		})
	}
}

func TestStoreID(t *testing.T) {
	sid, err := ParseStoreID("5")
	require.NoError(t, err)
	require.Equal(t, StoreID(5), sid)
	require.Equal(t, "5", sid.String())
	assert.False(t, sid.Invalid())

	sid, err = ParseStoreID("-1")
	require.NoError(t, err)
	assert.True(t, sid.Invalid())

	_, err = ParseStoreID("store")
	require.Error(t, err)
}
