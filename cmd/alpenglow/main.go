// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"os"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/urfave/cli"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

var (
	verifyCommand = cli.Command{
		Action:    verifyAction,
		Name:      "verify",
		Usage:     "Explore the protocol executions of a configuration and check its properties",
		ArgsUsage: "",
		Flags:     verifyFlags,
		Description: "The verify command loads the configuration, explores the executions in the\n" +
			"\tselected mode and writes the JSON report. It exits with a non zero status\n" +
			"\tif a property is violated.\n" +
			"\tUsage: alpenglow verify --config config.toml --output report.json",
	}
	exportConfigCommand = cli.Command{
		Action:    exportConfigAction,
		Name:      "export-config",
		Usage:     "Export the configuration, flag overrides applied, to a TOML file",
		ArgsUsage: "",
		Flags:     exportFlags,
		Description: "The export-config command writes the configuration in use as a TOML file.\n" +
			"\tUsage: alpenglow export-config --validators 7 --output config.toml",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "alpenglow"
	app.Usage = "Alpenglow consensus formal verification"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		verifyCommand,
		exportConfigCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Critical(err.Error())
		os.Exit(1)
	}
}
