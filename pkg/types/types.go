package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PoolID identifies a logical pool in the cluster.
type PoolID int32

var _ fmt.Stringer = (*PoolID)(nil)

func ParsePoolID(s string) (PoolID, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	return PoolID(id), err
}

func (pid PoolID) String() string {
	return strconv.FormatInt(int64(pid), 10)
}

// ShardID is the index of a partition within its pool.
type ShardID int32

var _ fmt.Stringer = (*ShardID)(nil)

func (sid ShardID) String() string {
	return strconv.FormatInt(int64(sid), 10)
}

// StoreID identifies a store daemon holding replog replicas.
type StoreID int32

const MinStoreID = StoreID(0)

var _ fmt.Stringer = (*StoreID)(nil)

func ParseStoreID(s string) (StoreID, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	return StoreID(id), err
}

func (sid StoreID) String() string {
	return strconv.FormatInt(int64(sid), 10)
}

func (sid StoreID) Invalid() bool {
	return sid < MinStoreID
}

// PartitionID identifies a shard of a pool, rendered as "<pool>.<shard>",
// for instance "8.0".
type PartitionID struct {
	Pool  PoolID
	Shard ShardID
}

var _ fmt.Stringer = (*PartitionID)(nil)

func ParsePartitionID(s string) (PartitionID, error) {
	pool, shard, found := strings.Cut(s, ".")
	if !found {
		return PartitionID{}, fmt.Errorf("partition id: invalid format %q", s)
	}
	pid, err := ParsePoolID(pool)
	if err != nil {
		return PartitionID{}, fmt.Errorf("partition id: %w", err)
	}
	sid, err := strconv.ParseInt(shard, 10, 32)
	if err != nil {
		return PartitionID{}, fmt.Errorf("partition id: %w", err)
	}
	return PartitionID{Pool: pid, Shard: ShardID(sid)}, nil
}

func (ptid PartitionID) String() string {
	return ptid.Pool.String() + "." + ptid.Shard.String()
}
