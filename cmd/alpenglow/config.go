// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ChainSafe/alpenglow/config"
	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/urfave/cli"
)

// createConfig loads the configuration file given with --config, or the
// default configuration, and applies the flag overrides.
func createConfig(ctx *cli.Context) (cfg *config.Config, err error) {
	if file := ctx.String(ConfigFlag.Name); file != "" {
		cfg, err = config.Load(file)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
	} else {
		validators := config.DefaultValidators
		if ctx.IsSet(ValidatorsFlag.Name) {
			validators = ctx.Int(ValidatorsFlag.Name)
		}
		cfg = config.FromModel(model.DefaultConfig(validators))
	}

	setGlobalConfig(ctx, &cfg.Global)
	setExplorationConfig(ctx, &cfg.Exploration)

	errWriter := ctx.App.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	if err = setLogging(cfg.Global, errWriter); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setGlobalConfig sets the global configuration from the flags set.
func setGlobalConfig(ctx *cli.Context, cfg *config.GlobalConfig) {
	if ctx.IsSet(LogFlag.Name) {
		cfg.LogLvl = ctx.String(LogFlag.Name)
	}
	if ctx.IsSet(LogFormatFlag.Name) {
		cfg.LogFormat = ctx.String(LogFormatFlag.Name)
	}
	if ctx.IsSet(LogCallerFlag.Name) {
		cfg.LogCaller = ctx.String(LogCallerFlag.Name)
	}
	if ctx.IsSet(SeedFlag.Name) {
		cfg.Seed = ctx.Uint64(SeedFlag.Name)
	}
	if ctx.IsSet(OutputFlag.Name) {
		cfg.Output = ctx.String(OutputFlag.Name)
	}
	if ctx.IsSet(CompressFlag.Name) {
		cfg.Compress = ctx.Bool(CompressFlag.Name)
	}
	if ctx.IsSet(MetricsAddressFlag.Name) {
		cfg.MetricsAddress = ctx.String(MetricsAddressFlag.Name)
	}
	if ctx.IsSet(PprofAddressFlag.Name) {
		cfg.PprofAddress = ctx.String(PprofAddressFlag.Name)
	}
}

// setExplorationConfig sets the exploration budgets from the flags set.
func setExplorationConfig(ctx *cli.Context, cfg *config.ExplorationConfig) {
	if ctx.IsSet(ModeFlag.Name) {
		cfg.Mode = ctx.String(ModeFlag.Name)
	}
	if ctx.IsSet(DepthFlag.Name) {
		cfg.MaxDepth = ctx.Int(DepthFlag.Name)
	}
	if ctx.IsSet(SamplesFlag.Name) {
		cfg.Samples = ctx.Int(SamplesFlag.Name)
	}
	if ctx.IsSet(WorkersFlag.Name) {
		cfg.Workers = ctx.Int(WorkersFlag.Name)
	}
	if ctx.IsSet(TimeBudgetFlag.Name) {
		cfg.TimeBudget = ctx.Duration(TimeBudgetFlag.Name).String()
	}
	if ctx.IsSet(PropertiesFlag.Name) {
		cfg.Properties = ctx.StringSlice(PropertiesFlag.Name)
	}
}

// setLogging patches the global logger from the global configuration.
// Unset values keep the current settings. Logs are written to errWriter
// when the report is written to the standard output.
func setLogging(cfg config.GlobalConfig, errWriter io.Writer) error {
	var options []log.Option

	if cfg.LogLvl != "" {
		level, err := log.ParseLevel(cfg.LogLvl)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		options = append(options, log.SetLevel(level))
	}

	if cfg.LogFormat != "" {
		format, err := log.ParseFormat(cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("parsing log format: %w", err)
		}
		options = append(options, log.SetFormat(format))
	}

	if cfg.LogCaller != "" {
		caller, err := log.ParseCaller(cfg.LogCaller)
		if err != nil {
			return fmt.Errorf("parsing log caller: %w", err)
		}
		options = append(options, log.SetCaller(caller))
	}

	if cfg.Output == "" && errWriter != nil {
		options = append(options, log.SetWriter(errWriter))
	}

	if len(options) > 0 {
		log.Patch(options...)
	}
	return nil
}
