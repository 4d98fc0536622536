package inflator

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTargetAverageItems is the mean replog item count per store
	// the inflation loop drives towards.
	DefaultTargetAverageItems = 5_000_000
	// DefaultTrimTestThreshold is the mean item count at which the
	// offline trim is exercised once.
	DefaultTrimTestThreshold = 1_000_000
	// DefaultTimeout bounds the whole inflation by wall clock.
	DefaultTimeout = 4 * time.Hour

	// DefaultLogEntriesClamp is forced into the store configuration so
	// that live trimming cannot keep up and the replog pool grows.
	DefaultLogEntriesClamp = "10"

	defaultBurstDuration = 50 * time.Second
	defaultBlockSize     = 2 << 10
	defaultPoolPause     = time.Second
	defaultGuardSettle   = 2 * time.Second
)

type config struct {
	cluster         Cluster
	sampler         Sampler
	trimTester      TrimTester
	targetAvgItems  int64
	trimThreshold   int64
	timeout         time.Duration
	logEntriesClamp string
	burstDuration   time.Duration
	blockSize       int64
	poolPause       time.Duration
	guardSettle     time.Duration
	logger          *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		targetAvgItems:  DefaultTargetAverageItems,
		trimThreshold:   DefaultTrimTestThreshold,
		timeout:         DefaultTimeout,
		logEntriesClamp: DefaultLogEntriesClamp,
		burstDuration:   defaultBurstDuration,
		blockSize:       defaultBlockSize,
		poolPause:       defaultPoolPause,
		guardSettle:     defaultGuardSettle,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("inflator")
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.cluster == nil {
		return errors.New("inflator: no cluster")
	}
	if cfg.sampler == nil {
		return errors.New("inflator: no sampler")
	}
	if cfg.trimTester == nil {
		return errors.New("inflator: no trim tester")
	}
	if cfg.targetAvgItems <= 0 || cfg.trimThreshold <= 0 {
		return errors.New("inflator: invalid target")
	}
	if cfg.trimThreshold > cfg.targetAvgItems {
		return errors.New("inflator: trim threshold above target")
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

func WithSampler(sampler Sampler) Option {
	return newFuncOption(func(cfg *config) {
		cfg.sampler = sampler
	})
}

func WithTrimTester(trimTester TrimTester) Option {
	return newFuncOption(func(cfg *config) {
		cfg.trimTester = trimTester
	})
}

func WithTargetAverageItems(targetAvgItems int64) Option {
	return newFuncOption(func(cfg *config) {
		cfg.targetAvgItems = targetAvgItems
	})
}

func WithTrimTestThreshold(trimThreshold int64) Option {
	return newFuncOption(func(cfg *config) {
		cfg.trimThreshold = trimThreshold
	})
}

func WithTimeout(timeout time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.timeout = timeout
	})
}

func WithLogEntriesClamp(logEntriesClamp string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logEntriesClamp = logEntriesClamp
	})
}

func WithBurstDuration(burstDuration time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.burstDuration = burstDuration
	})
}

func WithBlockSize(blockSize int64) Option {
	return newFuncOption(func(cfg *config) {
		cfg.blockSize = blockSize
	})
}

func WithPoolPause(poolPause time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.poolPause = poolPause
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
