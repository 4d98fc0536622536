// Package topology resolves which store daemons hold the replicas of a
// partition.
package topology

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/pkg/derrors"
	"github.com/logquarry/duptrim/pkg/types"
)

// Partition pairs a partition with its resolved acting set.
type Partition struct {
	ID     types.PartitionID
	Acting []types.StoreID
}

// Mapper resolves the replica placement of a partition.
type Mapper interface {
	PartitionMap(ctx context.Context, ptid types.PartitionID) (acting []types.StoreID, primary types.StoreID, err error)
}

// Topology caches acting sets for the lifetime of a scenario run. Placement
// changes after the first resolution are deliberately not tracked: replicas
// are stopped and started during injection, but set membership is assumed
// stable for the whole run.
type Topology struct {
	mapper   Mapper
	cache    map[types.PartitionID][]types.StoreID
	resolved []types.PartitionID
	logger   *zap.Logger
}

func New(mapper Mapper, logger *zap.Logger) *Topology {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Topology{
		mapper: mapper,
		cache:  make(map[types.PartitionID][]types.StoreID),
		logger: logger.Named("topology"),
	}
}

// ActingSet returns the ordered replica set of the partition. The first
// resolution is cached. It fails with derrors.ErrNoPrimary if the partition
// has no primary replica.
func (tp *Topology) ActingSet(ctx context.Context, ptid types.PartitionID) ([]types.StoreID, error) {
	if acting, ok := tp.cache[ptid]; ok {
		return acting, nil
	}

	acting, primary, err := tp.mapper.PartitionMap(ctx, ptid)
	if err != nil {
		return nil, err
	}
	if primary.Invalid() || len(acting) == 0 {
		return nil, errors.Wrapf(derrors.ErrNoPrimary, "partition %s", ptid.String())
	}

	tp.logger.Info("resolved acting set",
		zap.String("partition", ptid.String()),
		zap.Int32s("acting", storeIDs(acting)),
		zap.Int32("primary", int32(primary)),
	)
	tp.cache[ptid] = acting
	tp.resolved = append(tp.resolved, ptid)
	return acting, nil
}

// Stores returns every distinct store across the cached acting sets in
// resolution order.
func (tp *Topology) Stores() []types.StoreID {
	seen := make(map[types.StoreID]bool)
	var stores []types.StoreID
	for _, ptid := range tp.resolved {
		for _, store := range tp.cache[ptid] {
			if !seen[store] {
				seen[store] = true
				stores = append(stores, store)
			}
		}
	}
	return stores
}

func storeIDs(stores []types.StoreID) []int32 {
	ids := make([]int32, len(stores))
	for i, store := range stores {
		ids[i] = int32(store)
	}
	return ids
}
