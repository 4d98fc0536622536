package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/internal/cot"
	"github.com/logquarry/duptrim/internal/flags"
	"github.com/logquarry/duptrim/internal/inflator"
	"github.com/logquarry/duptrim/internal/injector"
	"github.com/logquarry/duptrim/internal/loadgen"
	"github.com/logquarry/duptrim/internal/mempool"
	"github.com/logquarry/duptrim/internal/scenario"
	"github.com/logquarry/duptrim/internal/topology"
	"github.com/logquarry/duptrim/internal/trimcheck"
	"github.com/logquarry/duptrim/internal/upgrade"
	"github.com/logquarry/duptrim/pkg/util/log"
	"github.com/logquarry/duptrim/pkg/util/units"
)

func main() {
	app := newDupTrimApp()
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "duptrim: %+v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logOpts, err := flags.ParseLoggerFlags(c, "duptrim.log")
	if err != nil {
		return err
	}
	logger, err := log.New(logOpts...)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	blockSize, err := units.FromByteSizeString(c.String(flagBlockSize.Name), 1)
	if err != nil {
		return err
	}

	client, err := cluster.NewClient(
		cluster.WithExecutor(cluster.NewShellExecutor()),
		cluster.WithAdminHost(c.String(flagAdminHost.Name)),
		cluster.WithCLIPath(c.String(flagCLIPath.Name)),
		cluster.WithBenchPath(c.String(flagBenchPath.Name)),
		cluster.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	tool, err := cot.NewRunner(
		cot.WithExecutor(cluster.NewShellExecutor()),
		cot.WithScriptURL(c.String(flagScriptURL.Name)),
		cot.WithLogRoot(c.String(flagLogRoot.Name)),
		cot.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	image := c.String(flagImage.Name)

	inj, err := injector.New(
		injector.WithDaemonController(client),
		injector.WithToolRunner(tool),
		injector.WithImage(image),
		injector.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	verifier, err := trimcheck.New(
		trimcheck.WithCluster(client),
		trimcheck.WithToolRunner(tool),
		trimcheck.WithImage(image),
		trimcheck.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	sampler := mempool.NewSampler(client, logger)

	inf, err := inflator.New(
		inflator.WithCluster(client),
		inflator.WithSampler(sampler),
		inflator.WithTrimTester(verifier),
		inflator.WithTargetAverageItems(c.Int64(flagTargetAverageItems.Name)),
		inflator.WithTrimTestThreshold(c.Int64(flagTrimTestThreshold.Name)),
		inflator.WithTimeout(c.Duration(flagInflationTimeout.Name)),
		inflator.WithBurstDuration(c.Duration(flagBurstDuration.Name)),
		inflator.WithBlockSize(blockSize),
		inflator.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	pools := c.StringSlice(flagPools.Name)
	scenarioOpts := []scenario.Option{
		scenario.WithCluster(client),
		scenario.WithTopology(topology.New(client, logger)),
		scenario.WithSampler(sampler),
		scenario.WithInjector(inj),
		scenario.WithInflator(inf),
		scenario.WithReplicationFactor(c.Int(flagReplicationFactor.Name)),
		scenario.WithGuardSettle(c.Duration(flagGuardSettle.Name)),
		scenario.WithLogger(logger),
	}
	if len(pools) > 0 {
		scenarioOpts = append(scenarioOpts, scenario.WithPools(pools))
	} else {
		pools = scenario.DefaultPools()
	}

	gen, err := loadgen.New(
		loadgen.WithBencher(client),
		loadgen.WithPools(pools),
		loadgen.WithBurstDuration(c.Duration(flagBurstDuration.Name)),
		loadgen.WithBlockSize(blockSize),
		loadgen.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	scenarioOpts = append(scenarioOpts, scenario.WithLoadGenerator(gen))

	if upgradeImage := c.String(flagUpgradeImage.Name); len(upgradeImage) > 0 {
		scenarioOpts = append(scenarioOpts,
			scenario.WithUpgrader(upgrade.NewCLIDriver(client, logger)),
			scenario.WithUpgradeImage(upgradeImage),
		)
	}

	sc, err := scenario.New(scenarioOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting duptrim scenario", zap.Strings("pools", pools))
	return sc.Run(ctx)
}
