// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (*model.Config, *model.State) {
	t.Helper()

	config := model.DefaultConfig(4)
	config.Stakes = []types.Stake{40, 30, 20, 10}
	config.Byzantine = []types.ValidatorID{3}
	config.Economics.StakeUnit = 10
	config.Economics.MinActiveStake = 10
	config.Economics.ActionBudget = 2

	states, err := model.InitialStates(config)
	require.NoError(t, err)
	return &config, states[0]
}

func certify(state *model.State, slot types.Slot, voters ...types.ValidatorID) {
	slotState := state.Slot(slot)
	slotState.Certificate = &model.Certificate{
		Slot:   slot,
		Voters: voters,
		Stake:  state.StakeOf(voters),
	}
}
