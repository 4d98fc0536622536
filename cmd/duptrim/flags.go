package main

import (
	"github.com/logquarry/duptrim/internal/flags"
)

var (
	flagAdminHost = &flags.FlagDesc{
		Name:  "admin-host",
		Envs:  []string{"ADMIN_HOST"},
		Usage: "Host running the cluster control-plane CLI.",
	}
	flagCLIPath = &flags.FlagDesc{
		Name:  "cli-path",
		Envs:  []string{"CLI_PATH"},
		Usage: "Path of the cluster control-plane CLI binary.",
	}
	flagBenchPath = &flags.FlagDesc{
		Name:  "bench-path",
		Envs:  []string{"BENCH_PATH"},
		Usage: "Path of the synthetic write benchmark binary.",
	}
	flagPools = &flags.FlagDesc{
		Name:  "pool",
		Envs:  []string{"POOLS"},
		Usage: "Test pool names; one partition per pool is corrupted.",
	}
	flagReplicationFactor = &flags.FlagDesc{
		Name:  "replication-factor",
		Envs:  []string{"REPLICATION_FACTOR"},
		Usage: "Replica count of the test pools.",
	}
	flagImage = &flags.FlagDesc{
		Name:  "image",
		Envs:  []string{"IMAGE"},
		Usage: "Container image providing the offline log tool.",
	}
	flagUpgradeImage = &flags.FlagDesc{
		Name:  "upgrade-image",
		Envs:  []string{"UPGRADE_IMAGE"},
		Usage: "Target image for the rolling upgrade; skip the upgrade phase if empty.",
	}
	flagScriptURL = &flags.FlagDesc{
		Name:  "script-url",
		Envs:  []string{"SCRIPT_URL"},
		Usage: "URL of the offline tool wrapper script copied to replica hosts.",
	}
	flagLogRoot = &flags.FlagDesc{
		Name:  "log-root",
		Envs:  []string{"LOG_ROOT"},
		Usage: "Root directory of replog dumps written by the offline tool.",
	}
	flagTargetAverageItems = &flags.FlagDesc{
		Name:  "target-average-items",
		Envs:  []string{"TARGET_AVERAGE_ITEMS"},
		Usage: "Mean replog item count per store the inflation drives towards.",
	}
	flagTrimTestThreshold = &flags.FlagDesc{
		Name:  "trim-test-threshold",
		Envs:  []string{"TRIM_TEST_THRESHOLD"},
		Usage: "Mean replog item count at which the offline trim test fires once.",
	}
	flagInflationTimeout = &flags.FlagDesc{
		Name:  "inflation-timeout",
		Envs:  []string{"INFLATION_TIMEOUT"},
		Usage: "Wall-clock bound on the inflation loop.",
	}
	flagBurstDuration = &flags.FlagDesc{
		Name:  "burst-duration",
		Envs:  []string{"BURST_DURATION"},
		Usage: "Duration of one synthetic write burst.",
	}
	flagBlockSize = &flags.FlagDesc{
		Name:  "block-size",
		Envs:  []string{"BLOCK_SIZE"},
		Usage: "Write size of the synthetic workload, e.g. 2KiB.",
	}
	flagGuardSettle = &flags.FlagDesc{
		Name:  "guard-settle",
		Envs:  []string{"GUARD_SETTLE"},
		Usage: "Wait after flipping a cluster-wide guard flag.",
	}
)
