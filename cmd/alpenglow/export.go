// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/config"
	"github.com/urfave/cli"
)

var errNoOutput = errors.New("an output file must be given with --output")

// exportConfigAction is the action for the "export-config" subcommand
func exportConfigAction(ctx *cli.Context) error {
	cfg, err := createConfig(ctx)
	if err != nil {
		return err
	}

	output := cfg.Global.Output
	if output == "" {
		return errNoOutput
	}

	// --output names the exported file, not a report
	cfg.Global.Output = ""

	if _, err = cfg.ToModel(); err != nil {
		return err
	}

	if err = config.Export(cfg, output); err != nil {
		return fmt.Errorf("exporting configuration: %w", err)
	}
	return nil
}
