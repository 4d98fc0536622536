package cluster

import (
	"errors"

	"go.uber.org/zap"
)

const (
	DefaultAdminHost = "admin"
	DefaultCLIPath   = "storectl"
	DefaultBenchPath = "storebench"
)

type config struct {
	executor  Executor
	adminHost string
	cliPath   string
	benchPath string
	logger    *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		adminHost: DefaultAdminHost,
		cliPath:   DefaultCLIPath,
		benchPath: DefaultBenchPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	cfg.logger = cfg.logger.Named("cluster")
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.executor == nil {
		return errors.New("cluster: no executor")
	}
	if len(cfg.adminHost) == 0 {
		return errors.New("cluster: no admin host")
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

func WithExecutor(executor Executor) Option {
	return newFuncOption(func(cfg *config) {
		cfg.executor = executor
	})
}

func WithAdminHost(adminHost string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.adminHost = adminHost
	})
}

func WithCLIPath(cliPath string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.cliPath = cliPath
	})
}

func WithBenchPath(benchPath string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.benchPath = benchPath
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
