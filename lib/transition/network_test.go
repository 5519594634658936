// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failureConfig(lossRate float64, delay types.Tick) model.Config {
	config := model.DefaultConfig(4)
	config.MaxFailures = 1
	config.LossRate = lossRate
	config.FailureDelay = delay
	config.FailureTicks = 3
	return config
}

func Test_Machine_linkFailureLosesVotes(t *testing.T) {
	t.Parallel()

	config := failureConfig(1, 0)
	machine, state := newTestMachine(t, config, nil)
	state = disseminate(t, machine, state)

	leader := state.Slot(1).Leader
	failed := (leader + 1) % 4
	healthy := (leader + 2) % 4

	inject := Action{Kind: InjectNetworkFailure, Validator: failed}
	require.Contains(t, machine.Enabled(state), inject)
	state = mustApply(t, machine, state, inject)

	failure := state.Network.Failure(failed)
	require.NotNil(t, failure)
	assert.Equal(t, types.Tick(3), failure.Until)
	assert.Equal(t, 1, state.Network.FailuresUsed)
	assert.True(t, state.Slot(1).Disrupted)

	_, err := machine.Apply(state, fastVote(failed, 1))
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, ErrUndeliverable)
	assert.NotContains(t, machine.Enabled(state), fastVote(failed, 1))

	_, err = machine.Apply(state, fastVote(healthy, 1))
	assert.NoError(t, err)

	_, err = machine.Apply(state, Action{Kind: InjectNetworkFailure, Validator: healthy})
	assert.ErrorIs(t, err, ErrFailureBudget)
	for _, action := range machine.Enabled(state) {
		assert.NotEqual(t, InjectNetworkFailure, action.Kind)
	}
}

func Test_Machine_linkFailureDelaysVotes(t *testing.T) {
	t.Parallel()

	config := failureConfig(0, 1)
	config.MaxFailures = 2
	machine, state := newTestMachine(t, config, nil)
	state = disseminate(t, machine, state)

	failed := (state.Slot(1).Leader + 1) % 4
	state = mustApply(t, machine, state, Action{Kind: InjectNetworkFailure, Validator: failed})

	_, err := machine.Apply(state, Action{Kind: InjectNetworkFailure, Validator: failed})
	assert.ErrorIs(t, err, ErrFailureActive)

	_, err = machine.Apply(state, fastVote(failed, 1))
	assert.ErrorIs(t, err, ErrUndeliverable)

	state = mustApply(t, machine, state, Action{Kind: AdvanceTime})
	assert.Contains(t, machine.Enabled(state), fastVote(failed, 1))
	mustApply(t, machine, state, fastVote(failed, 1))
}

func Test_Machine_linkFailureDropsRelays(t *testing.T) {
	t.Parallel()

	machine, state := newTestMachine(t, failureConfig(1, 0), nil)
	state = mustApply(t, machine, state, Action{Kind: RotateLeader, Slot: 1})

	slotState := state.Slot(1)
	failed := (slotState.Leader + 1) % 4
	state = mustApply(t, machine, state, Action{Kind: InjectNetworkFailure, Validator: failed})
	slotState = state.Slot(1)

	for _, chunk := range slotState.Proposal.Chunks {
		var expected []types.ValidatorID
		for _, id := range chunk.Relays {
			if id != failed {
				expected = append(expected, id)
			}
		}
		assert.Equal(t, expected, machine.relaySet(state, slotState, chunk), "chunk %d", chunk.Index)
	}
}

func Test_Machine_linkFailureExpires(t *testing.T) {
	t.Parallel()

	config := failureConfig(1, 0)
	config.FailureTicks = 1
	machine, state := newTestMachine(t, config, nil)
	state = disseminate(t, machine, state)

	failed := (state.Slot(1).Leader + 1) % 4
	state = mustApply(t, machine, state,
		Action{Kind: InjectNetworkFailure, Validator: failed},
		Action{Kind: AdvanceTime})

	assert.Empty(t, state.Network.Failures)
	assert.Equal(t, 1, state.Network.FailuresUsed)
	mustApply(t, machine, state, fastVote(failed, 1))
}
