package trimcheck

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultSafetyBound is the largest duplicate count an offline trim may
// leave behind and still count as successful.
const DefaultSafetyBound = 3000

const defaultSettle = 2 * time.Second

type config struct {
	cluster     Cluster
	tool        ToolRunner
	image       string
	safetyBound int
	settle      time.Duration
	logger      *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		safetyBound: DefaultSafetyBound,
		settle:      defaultSettle,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("trimcheck")
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.cluster == nil {
		return errors.New("trimcheck: no cluster")
	}
	if cfg.tool == nil {
		return errors.New("trimcheck: no tool runner")
	}
	if len(cfg.image) == 0 {
		return errors.New("trimcheck: no tool image")
	}
	if cfg.safetyBound <= 0 {
		return errors.New("trimcheck: invalid safety bound")
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

func WithToolRunner(tool ToolRunner) Option {
	return newFuncOption(func(cfg *config) {
		cfg.tool = tool
	})
}

func WithImage(image string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.image = image
	})
}

func WithSafetyBound(safetyBound int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.safetyBound = safetyBound
	})
}

func WithSettle(settle time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.settle = settle
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
