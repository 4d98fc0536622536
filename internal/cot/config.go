package cot

import (
	"errors"

	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
)

const (
	DefaultScriptURL  = "https://artifacts.logquarry.io/tools/run_logtool.sh"
	DefaultScriptName = "run_logtool.sh"
	DefaultLogRoot    = "/var/log/store"
)

type config struct {
	executor   cluster.Executor
	scriptURL  string
	scriptName string
	logRoot    string
	logger     *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		scriptURL:  DefaultScriptURL,
		scriptName: DefaultScriptName,
		logRoot:    DefaultLogRoot,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.executor == nil {
		return config{}, errors.New("cot: no executor")
	}
	cfg.logger = cfg.logger.Named("cot")
	return cfg, nil
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

func WithExecutor(executor cluster.Executor) Option {
	return newFuncOption(func(cfg *config) {
		cfg.executor = executor
	})
}

func WithScriptURL(scriptURL string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.scriptURL = scriptURL
	})
}

func WithScriptName(scriptName string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.scriptName = scriptName
	})
}

func WithLogRoot(logRoot string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logRoot = logRoot
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
