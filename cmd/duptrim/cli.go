package main

import (
	"github.com/urfave/cli/v2"

	"github.com/logquarry/duptrim/internal/cluster"
	"github.com/logquarry/duptrim/internal/cot"
	"github.com/logquarry/duptrim/internal/flags"
	"github.com/logquarry/duptrim/internal/inflator"
	"github.com/logquarry/duptrim/internal/loadgen"
	"github.com/logquarry/duptrim/internal/scenario"
)

const (
	appName = "duptrim"
	version = "0.0.1"
)

func newDupTrimApp() *cli.App {
	return &cli.App{
		Name:    appName,
		Usage:   "replog duplicate-entry trimming harness",
		Version: version,
		Commands: []*cli.Command{
			newRunCommand(),
		},
	}
}

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Action:  run,
		Flags: []cli.Flag{
			flagAdminHost.StringFlag(false, cluster.DefaultAdminHost),
			flagCLIPath.StringFlag(false, cluster.DefaultCLIPath),
			flagBenchPath.StringFlag(false, cluster.DefaultBenchPath),

			flagPools.StringSliceFlag(false, nil),
			flagReplicationFactor.IntFlag(false, scenario.DefaultReplicationFactor),
			flagImage.StringFlag(true, ""),
			flagUpgradeImage.StringFlag(false, ""),

			flagScriptURL.StringFlag(false, cot.DefaultScriptURL),
			flagLogRoot.StringFlag(false, cot.DefaultLogRoot),

			flagTargetAverageItems.Int64Flag(false, inflator.DefaultTargetAverageItems),
			flagTrimTestThreshold.Int64Flag(false, inflator.DefaultTrimTestThreshold),
			flagInflationTimeout.DurationFlag(false, inflator.DefaultTimeout),
			flagBurstDuration.DurationFlag(false, loadgen.DefaultBurstDuration),
			flagBlockSize.StringFlag(false, "2KiB"),
			flagGuardSettle.DurationFlag(false, scenario.DefaultGuardSettle),

			// logger options
			flags.LogDir,
			flags.LogToStderr,
			flags.LogFileMaxSizeMB,
			flags.LogFileMaxBackups,
			flags.LogFileRetentionDays,
			flags.LogFileNameUTC,
			flags.LogFileCompression,
			flags.LogHumanReadable,
			flags.LogLevel,
		},
	}
}
