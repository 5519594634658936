// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/urfave/cli"
)

var (
	// ConfigFlag TOML configuration file
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	// ValidatorsFlag validator count of the default configuration
	ValidatorsFlag = cli.IntFlag{
		Name:  "validators",
		Usage: "Validator count of the default configuration, ignored with --config",
	}
	// LogFlag global log level
	LogFlag = cli.StringFlag{
		Name:  "log",
		Usage: "Global log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	// LogFormatFlag log line format
	LogFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Usage: "Log line format: console or coloured",
	}
	// LogCallerFlag caller details of the log lines
	LogCallerFlag = cli.StringFlag{
		Name:  "log-caller",
		Usage: "Comma separated caller details appended to log lines among file, line and func",
	}
	// SeedFlag run seed
	SeedFlag = cli.Uint64Flag{
		Name:  "seed",
		Usage: "Seed of the leader rotation, relay sampling and random executions",
	}
	// ModeFlag exploration mode override
	ModeFlag = cli.StringFlag{
		Name:  "mode",
		Usage: "Exploration mode: exhaustive, bounded or statistical. Selected from the validator count if unset",
	}
	// DepthFlag depth limit
	DepthFlag = cli.IntFlag{
		Name:  "depth",
		Usage: "Maximum number of actions of an explored execution",
	}
	// SamplesFlag statistical sample count
	SamplesFlag = cli.IntFlag{
		Name:  "samples",
		Usage: "Number of random executions in statistical mode",
	}
	// WorkersFlag statistical worker count
	WorkersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "Number of workers running random executions in statistical mode",
	}
	// TimeBudgetFlag wall clock budget
	TimeBudgetFlag = cli.DurationFlag{
		Name:  "time-budget",
		Usage: "Wall clock budget of the run, eg. 90s. The report is partial once elapsed",
	}
	// PropertiesFlag selected properties
	PropertiesFlag = cli.StringSliceFlag{
		Name:  "property",
		Usage: "Property to check, can be repeated. All properties are checked if unset",
	}
	// OutputFlag output file
	OutputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "Output file, standard output if unset",
	}
	// CompressFlag zstd compression of the report
	CompressFlag = cli.BoolFlag{
		Name:  "compress",
		Usage: "Compress the report with zstd",
	}
	// MetricsAddressFlag prometheus listening address
	MetricsAddressFlag = cli.StringFlag{
		Name:  "metrics-address",
		Usage: "Listening address of the prometheus metrics server, disabled if unset",
	}
	// PprofAddressFlag pprof listening address
	PprofAddressFlag = cli.StringFlag{
		Name:  "pprof-address",
		Usage: "Listening address of the pprof profiling server, disabled if unset",
	}
)

// configFlags are the flags overriding configuration values.
var configFlags = []cli.Flag{
	ConfigFlag,
	ValidatorsFlag,
	LogFlag,
	LogFormatFlag,
	LogCallerFlag,
	SeedFlag,
	ModeFlag,
	DepthFlag,
	SamplesFlag,
	WorkersFlag,
	TimeBudgetFlag,
	PropertiesFlag,
	OutputFlag,
}

var verifyFlags = append(append([]cli.Flag(nil), configFlags...),
	CompressFlag,
	MetricsAddressFlag,
	PprofAddressFlag,
)

var exportFlags = configFlags
