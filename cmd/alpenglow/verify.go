// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ChainSafe/alpenglow/internal/metrics"
	"github.com/ChainSafe/alpenglow/internal/pprof"
	"github.com/ChainSafe/alpenglow/lib/services"
	"github.com/ChainSafe/alpenglow/lib/verify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

var errPropertiesViolated = errors.New("properties violated")

// verifyAction is the action for the "verify" subcommand
func verifyAction(ctx *cli.Context) error {
	cfg, err := createConfig(ctx)
	if err != nil {
		return err
	}

	modelConfig, err := cfg.ToModel()
	if err != nil {
		return err
	}

	gatherer := prometheus.NewRegistry()
	observer, err := verify.NewPrometheus(gatherer)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	registry := services.NewServiceRegistry(logger)
	if address := cfg.Global.MetricsAddress; address != "" {
		registry.RegisterService(metrics.NewServer(address, gatherer))
	}
	if address := cfg.Global.PprofAddress; address != "" {
		registry.RegisterService(pprof.NewService(pprof.Settings{ListeningAddress: address}, logger))
	}
	if err = registry.StartAll(); err != nil {
		return err
	}
	defer registry.StopAll()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := verify.Run(runCtx, modelConfig, observer)
	if err != nil {
		return fmt.Errorf("running verification: %w", err)
	}

	if err = writeReport(report, cfg.Global.Output, cfg.Global.Compress, ctx.App.Writer); err != nil {
		return err
	}

	var violated []string
	for _, result := range report.Results {
		logger.Infof("%s: %s", result.Property, result.Verdict)
		if result.Verdict == verify.Violated {
			violated = append(violated, result.Property)
			logger.Warnf("%s violated: %s\n%s", result.Property, result.Reason, result.Counterexample)
		}
	}
	if len(violated) > 0 {
		return fmt.Errorf("%w: %s", errPropertiesViolated, strings.Join(violated, ", "))
	}
	return nil
}

// writeReport writes the report to the output file, or to the writer
// given if the output is empty.
func writeReport(report *verify.Report, output string, compress bool, stdout io.Writer) (err error) {
	if output == "" {
		return report.Encode(stdout, compress)
	}

	f, err := os.Create(filepath.Clean(output))
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing report file: %w", closeErr)
		}
	}()

	if err = report.Encode(f, compress); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Infof("report %s written to %s", report.RunID, output)
	return nil
}
