package loadgen

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBurstDuration = 50 * time.Second
	DefaultBlockSize     = 2 << 10
	DefaultPoolPause     = time.Second
)

type config struct {
	bencher       Bencher
	pools         []string
	burstDuration time.Duration
	blockSize     int64
	poolPause     time.Duration
	logger        *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		burstDuration: DefaultBurstDuration,
		blockSize:     DefaultBlockSize,
		poolPause:     DefaultPoolPause,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("loadgen")
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.bencher == nil {
		return errors.New("loadgen: no bencher")
	}
	if len(cfg.pools) == 0 {
		return errors.New("loadgen: no pools")
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

func WithBencher(bencher Bencher) Option {
	return newFuncOption(func(cfg *config) {
		cfg.bencher = bencher
	})
}

func WithPools(pools []string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.pools = pools
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

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
