// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rotation

import (
	"math"
	"testing"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ChiSquareCritical(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dof      int
		alpha    float64
		expected float64
		delta    float64
	}{
		"three_dof_five_percent": {
			dof:      3,
			alpha:    0.05,
			expected: 7.815,
			delta:    0.1,
		},
		"ten_dof_tenth_percent": {
			dof:      10,
			alpha:    0.001,
			expected: 29.588,
			delta:    0.3,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, ChiSquareCritical(tt.dof, tt.alpha), tt.delta)
		})
	}
}

func Test_ChiSquare_stakeWeightedScheduleIsFair(t *testing.T) {
	t.Parallel()

	seed := common.MustBlake2bHash([]byte("fairness"))
	counts := make(map[types.ValidatorID]int)
	for slot := types.Slot(1); slot <= 4000; slot++ {
		leader, err := LeaderForSlot(seed, slot, testWeights())
		require.NoError(t, err)
		counts[leader]++
	}

	result := ChiSquare(counts, testWeights(), 0.001)

	assert.True(t, result.Fair, "statistic %f critical %f", result.Statistic, result.CriticalValue)
	assert.Equal(t, 3, result.DegreesOfFreedom)
	assert.Equal(t, 4000, result.Samples)
}

func Test_ChiSquare_unfair(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		counts  map[types.ValidatorID]int
		weights []types.Weighted
	}{
		"single_leader": {
			counts:  map[types.ValidatorID]int{3: 1000},
			weights: testWeights(),
		},
		"unstaked_leader": {
			counts:  map[types.ValidatorID]int{0: 40, 1: 30, 2: 20, 3: 10, 9: 1},
			weights: testWeights(),
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			result := ChiSquare(tt.counts, tt.weights, 0.001)
			assert.False(t, result.Fair)
		})
	}
}

func Test_ChiSquare_noSamples(t *testing.T) {
	t.Parallel()

	result := ChiSquare(nil, testWeights(), 0.001)
	assert.True(t, result.Fair)
	assert.Equal(t, 0.0, result.Statistic)
	assert.False(t, math.IsNaN(result.CriticalValue))
}
