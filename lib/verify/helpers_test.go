// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/properties"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/require"
)

// testConfig returns four validators with stakes [40, 30, 20, 10] over
// a single slot, the last validator equivocating.
func testConfig(mode string, names ...string) model.Config {
	config := model.DefaultConfig(4)
	config.Stakes = []types.Stake{40, 30, 20, 10}
	config.Byzantine = []types.ValidatorID{3}
	config.Strategies = []string{"equivocation"}
	config.MaxSlot = 1
	config.Economics.ActionBudget = 0
	config.Exploration.Mode = mode
	config.Exploration.Properties = names
	return config
}

// freeSlashingConfig returns a configuration in which misbehaving is
// never penalised, so deviating pays more than honesty in every
// terminal state.
func freeSlashingConfig(mode string) model.Config {
	config := testConfig(mode, properties.Safety, properties.EconomicEquilibrium)
	config.Economics.SlashingRates = [4]float64{}
	return config
}

func runEngine(t *testing.T, config model.Config, observer Observer) *Report {
	t.Helper()

	report, err := Run(context.Background(), config, observer)
	require.NoError(t, err)
	require.Len(t, report.Results, len(resultNames(config)))
	return report
}

func resultNames(config model.Config) []string {
	if len(config.Exploration.Properties) > 0 {
		return config.Exploration.Properties
	}
	selected, _ := properties.ByName()
	names := make([]string, len(selected))
	for i, property := range selected {
		names[i] = property.Name
	}
	return names
}

// requireTerminal checks that no action is enabled in the state.
func requireTerminal(t *testing.T, config model.Config, state *model.State) {
	t.Helper()

	machine, err := newMachine(&config)
	require.NoError(t, err)
	defer machine.Close()

	require.Empty(t, machine.Enabled(state))
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
