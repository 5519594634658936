// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EpochSlots(t *testing.T) {
	t.Parallel()

	config := model.DefaultConfig(4)
	config.MaxSlot = 6

	assert.Equal(t, []types.Slot{1, 2, 3, 4}, EpochSlots(&config, 0))
	assert.Equal(t, []types.Slot{5, 6}, EpochSlots(&config, 1))
	assert.Empty(t, EpochSlots(&config, 2))
}

func Test_DistributeRewards(t *testing.T) {
	t.Parallel()

	config, state := newTestState(t)

	err := DistributeRewards(config, state, 0)
	assert.ErrorIs(t, err, ErrEpochNotComplete)

	certify(state, 1, 0, 1, 2)
	state.Slot(2).Skip = &model.SkipCertificate{Slot: 2, Timeouts: []types.ValidatorID{0, 1, 2}}

	rewards := CalculateEpochRewards(config, state, 0)
	// stake x 0.05 x half of the epoch slots
	assert.Equal(t, []types.Stake{1, 0, 0, 0}, rewards.PerValidator)

	certify(state, 2, 0, 1, 2, 3)
	state.Slot(2).Skip = nil
	rewards = CalculateEpochRewards(config, state, 0)
	assert.Equal(t, []types.Stake{2, 1, 1, 0}, rewards.PerValidator)
	assert.Equal(t, types.Stake(4), rewards.Total)

	pool := state.Ledger.Pool
	err = DistributeRewards(config, state, 0)
	require.NoError(t, err)
	assert.Equal(t, pool-4, state.Ledger.Pool)
	assert.Equal(t, []types.Stake{2, 1, 1, 0}, state.Ledger.Pending)
	assert.Equal(t, []uint32{0}, state.Ledger.RewardedEpochs)

	err = DistributeRewards(config, state, 0)
	assert.ErrorIs(t, err, ErrEpochRewarded)
	assert.NoError(t, CheckInvariants(config, state))
}

func Test_DistributeRewards_insufficientPool(t *testing.T) {
	t.Parallel()

	config, state := newTestState(t)
	certify(state, 1, 0, 1, 2)
	certify(state, 2, 0, 1, 2)
	state.Ledger.Pool = 1
	state.Ledger.InitialSupply = state.TotalStake() + 1

	err := DistributeRewards(config, state, 0)
	assert.ErrorIs(t, err, ErrInsufficientPool)
	assert.EqualError(t, err, "rewards pool cannot cover epoch rewards: 4 needed, 1 in pool")
}
