// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rotation

import (
	"testing"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeights() []types.Weighted {
	return []types.Weighted{
		{ID: 0, Stake: 40},
		{ID: 1, Stake: 30},
		{ID: 2, Stake: 20},
		{ID: 3, Stake: 10},
	}
}

func Test_LeaderForSlot(t *testing.T) {
	t.Parallel()

	seed := common.MustBlake2bHash([]byte("leader"))

	tests := map[string]struct {
		slot          types.Slot
		weights       []types.Weighted
		expectedError error
	}{
		"valid": {
			slot:    1,
			weights: testWeights(),
		},
		"slot_zero": {
			slot:          0,
			weights:       testWeights(),
			expectedError: ErrInvalidSlot,
		},
		"no_stake": {
			slot:          1,
			weights:       []types.Weighted{{ID: 0}},
			expectedError: ErrNoStake,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			first, err := LeaderForSlot(seed, tt.slot, tt.weights)
			assert.ErrorIs(t, err, tt.expectedError)
			if tt.expectedError != nil {
				return
			}
			second, err := LeaderForSlot(seed, tt.slot, tt.weights)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func Test_LeaderForSlot_skipsZeroStake(t *testing.T) {
	t.Parallel()

	weights := []types.Weighted{{ID: 0, Stake: 0}, {ID: 1, Stake: 5}, {ID: 2, Stake: 0}}
	for slot := types.Slot(1); slot <= 100; slot++ {
		leader, err := LeaderForSlot(common.Hash{}, slot, weights)
		require.NoError(t, err)
		assert.Equal(t, types.ValidatorID(1), leader)
	}
}

func Test_WindowOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), WindowOf(1, 4))
	assert.Equal(t, uint32(0), WindowOf(4, 4))
	assert.Equal(t, uint32(1), WindowOf(5, 4))

	first, last := Bounds(1, 4)
	assert.Equal(t, types.Slot(5), first)
	assert.Equal(t, types.Slot(8), last)
}

func Test_ComputeWindow(t *testing.T) {
	t.Parallel()

	seed := common.MustBlake2bHash([]byte("window"))
	window, err := ComputeWindow(seed, 2, 3, testWeights())
	require.NoError(t, err)

	assert.Equal(t, uint32(2), window.ID)
	assert.Equal(t, types.Slot(7), window.FirstSlot)
	assert.Equal(t, types.Slot(9), window.LastSlot)
	require.Len(t, window.Leaders, 3)

	for slot := window.FirstSlot; slot <= window.LastSlot; slot++ {
		expected, err := LeaderForSlot(seed, slot, testWeights())
		require.NoError(t, err)
		leader, ok := window.Leader(slot)
		require.True(t, ok)
		assert.Equal(t, expected, leader)
	}

	_, ok := window.Leader(10)
	assert.False(t, ok)

	_, err = ComputeWindow(seed, 0, 0, testWeights())
	assert.ErrorIs(t, err, ErrInvalidWindowSize)
}
