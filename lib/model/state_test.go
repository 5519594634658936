// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/erasure"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (*Config, *State) {
	t.Helper()

	config := DefaultConfig(4)
	config.Stakes = []types.Stake{40, 30, 20, 10}
	config.Byzantine = []types.ValidatorID{3}
	config.ExtraDistributions = [][]types.Stake{{25, 25, 25, 25}}

	states, err := InitialStates(config)
	require.NoError(t, err)
	require.Len(t, states, 2)
	return &config, states[0]
}

func Test_InitialStates(t *testing.T) {
	t.Parallel()

	config := DefaultConfig(4)
	config.Stakes = []types.Stake{40, 30, 20, 10}
	config.Byzantine = []types.ValidatorID{3}
	config.Crashed = []types.ValidatorID{2}
	config.ExtraDistributions = [][]types.Stake{{25, 25, 25, 25}}

	states, err := InitialStates(config)
	require.NoError(t, err)
	require.Len(t, states, 2)

	state := states[0]
	assert.Equal(t, types.Stake(100), state.TotalStake())
	assert.Equal(t, types.Stake(10), state.StakeByStatus(types.Byzantine))
	assert.Equal(t, types.Stake(20), state.StakeByStatus(types.Crashed))
	assert.Len(t, state.Slots, 2)
	assert.Equal(t, types.Slot(2), state.Slots[1].Slot)
	assert.Equal(t, types.Stake(4000), state.Ledger.Pool)
	assert.Equal(t, types.Stake(4100), state.Ledger.InitialSupply)
	assert.Equal(t, types.Stake(25), states[1].Validators[0].Stake)

	config.Stakes = nil
	_, err = InitialStates(config)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func Test_SlotState_votes(t *testing.T) {
	t.Parallel()

	var slot SlotState
	slot.AddVote(Vote{Validator: 2, Slot: 1, Block: 0, Path: types.Slow})
	slot.AddVote(Vote{Validator: 0, Slot: 1, Block: 1, Path: types.Fast})
	slot.AddVote(Vote{Validator: 2, Slot: 1, Block: 0, Path: types.Fast})
	slot.AddVote(Vote{Validator: 1, Slot: 1, Block: 0, Path: types.Fast})

	assert.Equal(t, []types.ValidatorID{1, 2}, slot.Voters(0, false))
	assert.Equal(t, []types.ValidatorID{1, 2}, slot.Voters(0, true))
	assert.Equal(t, []types.ValidatorID{0}, slot.Voters(1, false))
	assert.Equal(t, []types.BlockID{0, 1}, slot.VotedBlocks())
	assert.True(t, slot.HasVote(2, 0, types.Slow))
	assert.False(t, slot.HasVote(0, 0, types.Fast))
	assert.True(t, slot.HasVoted(0, types.Fast))
	assert.False(t, slot.HasVoted(0, types.Slow))

	slot.AddTimeout(3)
	slot.AddTimeout(1)
	assert.Equal(t, []types.ValidatorID{1, 3}, slot.Timeouts)
	assert.True(t, slot.HasTimedOut(3))
	assert.False(t, slot.Decided())
}

func Test_Network_Connected(t *testing.T) {
	t.Parallel()

	network := Network{}
	assert.True(t, network.Connected(0, 3))

	network.Partition = &Partition{
		A: []types.ValidatorID{0, 1},
		B: []types.ValidatorID{2, 3},
	}
	assert.True(t, network.Connected(0, 1))
	assert.True(t, network.Connected(3, 2))
	assert.False(t, network.Connected(1, 2))
}

func Test_Failure_Lost(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		lossRate float64
		lost     int
	}{
		"no_loss":    {lossRate: 0, lost: 0},
		"total_loss": {lossRate: 1, lost: 100},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			failure := Failure{LossRate: testCase.lossRate, Seed: 7}
			lost := 0
			for slot := types.Slot(1); slot <= 100; slot++ {
				if failure.Lost(0, 1, slot) {
					lost++
				}
			}
			assert.Equal(t, testCase.lost, lost)
		})
	}

	failure := Failure{LossRate: 0.5, Seed: 7}
	lost := 0
	for slot := types.Slot(1); slot <= 1000; slot++ {
		first := failure.Lost(2, 3, slot)
		assert.Equal(t, first, failure.Lost(2, 3, slot))
		if first {
			lost++
		}
	}
	assert.InDelta(t, 500, lost, 100)
}

func Test_Network_Delivered(t *testing.T) {
	t.Parallel()

	network := Network{}
	assert.True(t, network.Delivered(0, 1, 1, 0, 0))
	assert.False(t, network.Degraded())

	network.AddFailure(Failure{Validator: 3, Delay: 2, Until: 6})
	network.AddFailure(Failure{Validator: 1, LossRate: 1, Until: 4})
	assert.Equal(t, []types.ValidatorID{1, 3}, []types.ValidatorID{
		network.Failures[0].Validator, network.Failures[1].Validator})
	assert.Equal(t, 2, network.FailuresUsed)
	assert.True(t, network.Degraded())
	require.NotNil(t, network.Failure(3))
	assert.Nil(t, network.Failure(0))

	assert.True(t, network.Delivered(0, 2, 1, 0, 0))
	assert.False(t, network.Delivered(0, 1, 1, 0, 0))
	assert.False(t, network.Delivered(1, 0, 1, 0, 0))
	assert.False(t, network.Delivered(3, 0, 1, 0, 1))
	assert.True(t, network.Delivered(3, 0, 1, 0, 2))

	network.Expire(4)
	require.Len(t, network.Failures, 1)
	assert.Equal(t, types.ValidatorID(3), network.Failures[0].Validator)
	assert.True(t, network.Delivered(0, 1, 1, 0, 4))

	network.Expire(6)
	assert.Nil(t, network.Failures)
	assert.False(t, network.Degraded())
	assert.Equal(t, 2, network.FailuresUsed)
}

func Test_State_ResponsiveStake(t *testing.T) {
	t.Parallel()

	_, state := newTestState(t)
	assert.Equal(t, types.Stake(0), state.ResponsiveStake(1))

	block, err := erasure.NewBlock(1, CanonicalBlock, 0, 1, 1)
	require.NoError(t, err)
	slot := state.Slot(1)
	slot.Rotated = true
	slot.Proposal = block

	assert.Equal(t, types.Stake(90), state.ResponsiveStake(1))

	state.Network.Partition = &Partition{
		A: []types.ValidatorID{0, 1},
		B: []types.ValidatorID{2, 3},
	}
	assert.Equal(t, types.Stake(70), state.ResponsiveStake(1))

	slot.Disrupted = true
	assert.Equal(t, types.Stake(0), state.ResponsiveStake(1))
	assert.Nil(t, state.Slot(3))
	assert.Nil(t, state.Validator(4))
}

func Test_State_Clone(t *testing.T) {
	t.Parallel()

	_, state := newTestState(t)
	block, err := erasure.NewBlock(1, CanonicalBlock, 0, 2, 1.5)
	require.NoError(t, err)
	state.Slots[0].Proposal = block
	state.Slots[0].Certificate = &Certificate{Slot: 1, Voters: []types.ValidatorID{0, 1}}
	state.Network.AddFailure(Failure{Validator: 2, Until: 5})

	before, err := state.Digest()
	require.NoError(t, err)

	clone := state.Clone()
	cloneDigest, err := clone.Digest()
	require.NoError(t, err)
	assert.Equal(t, before, cloneDigest)

	clone.Time++
	clone.Validators[0].Stake = 1
	clone.Slots[0].AddVote(Vote{Validator: 1, Slot: 1})
	clone.Slots[0].Certificate.Voters[0] = 3
	err = clone.Slots[0].Proposal.MarkAvailable(0, 2)
	require.NoError(t, err)
	clone.Ledger.Pending[0] = 7
	clone.Network.Failures[0].Until = 9

	after, err := state.Digest()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	changed, err := clone.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, before.Hash, changed.Hash)
	assert.NotEqual(t, before.Fingerprint, changed.Fingerprint)
}
