// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T, config model.Config, adversary Adversary) (*Machine, *model.State) {
	t.Helper()

	states, err := model.InitialStates(config)
	require.NoError(t, err)

	machine, err := NewMachine(&config, adversary)
	require.NoError(t, err)
	t.Cleanup(machine.Close)

	return machine, states[0]
}

// weightedConfig returns four validators with stakes [40, 30, 20, 10],
// the last one byzantine.
func weightedConfig() model.Config {
	config := model.DefaultConfig(4)
	config.Stakes = []types.Stake{40, 30, 20, 10}
	config.Byzantine = []types.ValidatorID{3}
	return config
}

func mustApply(t *testing.T, machine *Machine, state *model.State, actions ...Action) *model.State {
	t.Helper()

	for _, action := range actions {
		next, err := machine.Apply(state, action)
		require.NoError(t, err, action.String())
		state = next
	}
	return state
}

// disseminate applies the pending rotations and chunk propagations.
func disseminate(t *testing.T, machine *Machine, state *model.State) *model.State {
	t.Helper()

	for {
		action, ok := machine.nextDissemination(state)
		if !ok {
			return state
		}
		state = mustApply(t, machine, state, action)
	}
}

func fastVote(validator types.ValidatorID, slot types.Slot) Action {
	return Action{Kind: Vote, Validator: validator, Slot: slot, Block: model.CanonicalBlock, Path: types.Fast}
}
