package injector

import (
	"errors"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of duplicate entries the offline tool
// appends per inject-dups invocation.
const DefaultBatchSize = 100

type config struct {
	daemons   DaemonController
	tool      ToolRunner
	image     string
	batchSize int
	logger    *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("injector")
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.daemons == nil {
		return errors.New("injector: no daemon controller")
	}
	if cfg.tool == nil {
		return errors.New("injector: no tool runner")
	}
	if len(cfg.image) == 0 {
		return errors.New("injector: no tool image")
	}
	if cfg.batchSize <= 0 {
		return errors.New("injector: invalid batch size")
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

func WithDaemonController(daemons DaemonController) Option {
	return newFuncOption(func(cfg *config) {
		cfg.daemons = daemons
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

func WithBatchSize(batchSize int) Option {
	return newFuncOption(func(cfg *config) {
		cfg.batchSize = batchSize
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
