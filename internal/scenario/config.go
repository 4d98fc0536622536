package scenario

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/logquarry/duptrim/pkg/types"
)

const (
	DefaultReplicationFactor = 3
	DefaultShard             = types.ShardID(0)

	// DefaultGuardSettle is how long the harness waits after flipping a
	// cluster-wide guard for it to take effect on every daemon.
	DefaultGuardSettle = 10 * time.Second
)

var defaultPools = []string{"duptrim-1", "duptrim-2", "duptrim-3"}

// DefaultPools returns the default test pool names.
func DefaultPools() []string {
	return append([]string(nil), defaultPools...)
}

type config struct {
	cluster      Cluster
	topology     Topology
	sampler      Sampler
	injector     Injector
	inflator     Inflator
	loadgen      LoadGenerator
	upgrader     Upgrader
	pools        []string
	replicas     int
	shard        types.ShardID
	upgradeImage string
	guardSettle  time.Duration
	logger       *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		pools:       defaultPools,
		replicas:    DefaultReplicationFactor,
		shard:       DefaultShard,
		guardSettle: DefaultGuardSettle,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("scenario")
	return cfg, nil
}

func (cfg config) validate() error {
	switch {
	case cfg.cluster == nil:
		return errors.New("scenario: no cluster")
	case cfg.topology == nil:
		return errors.New("scenario: no topology")
	case cfg.sampler == nil:
		return errors.New("scenario: no sampler")
	case cfg.injector == nil:
		return errors.New("scenario: no injector")
	case cfg.inflator == nil:
		return errors.New("scenario: no inflator")
	case cfg.loadgen == nil:
		return errors.New("scenario: no load generator")
	case len(cfg.pools) == 0:
		return errors.New("scenario: no pools")
	case cfg.replicas <= 0:
		return errors.New("scenario: invalid replication factor")
	}
	return nil
}

type Option interface {
	apply(*config)
}

type funcOption struct {
	f func(*config)
}

func newFuncOption(f func(*config)) *funcOption {
	return &funcOption{f: f}
}

func (fo *funcOption) apply(cfg *config) {
	fo.f(cfg)
}

func WithCluster(cluster Cluster) Option {
	return newFuncOption(func(cfg *config) {
		cfg.cluster = cluster
	})
}

func WithTopology(topology Topology) Option {
	return newFuncOption(func(cfg *config) {
		cfg.topology = topology
	})
}

func WithSampler(sampler Sampler) Option {
	return newFuncOption(func(cfg *config) {
		cfg.sampler = sampler
	})
}

func WithInjector(injector Injector) Option {
	return newFuncOption(func(cfg *config) {
		cfg.injector = injector
	})
}

func WithInflator(inflator Inflator) Option {
	return newFuncOption(func(cfg *config) {
		cfg.inflator = inflator
	})
}

func WithLoadGenerator(loadgen LoadGenerator) Option {
	return newFuncOption(func(cfg *config) {
		cfg.loadgen = loadgen
	})
}

// WithUpgrader sets the driver performing the rolling upgrade after
// inflation. Without it the upgrade phase is skipped.
func WithUpgrader(upgrader Upgrader) Option {
	return newFuncOption(func(cfg *config) {
		cfg.upgrader = upgrader
	})
}

func WithPools(pools []string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.pools = pools
	})
}

func WithReplicationFactor(replicas int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.replicas = replicas
	})
}

func WithShard(shard types.ShardID) Option {
	return newFuncOption(func(cfg *config) {
		cfg.shard = shard
	})
}

func WithUpgradeImage(upgradeImage string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.upgradeImage = upgradeImage
	})
}

func WithGuardSettle(guardSettle time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.guardSettle = guardSettle
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
