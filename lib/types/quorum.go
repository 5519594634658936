// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import "math"

// quorumEpsilon absorbs the representation error of decimal fractions
// such as 0.6, so that 60% of 100 is 60 and not 61.
const quorumEpsilon = 1e-9

// QuorumStake returns the minimum stake that is at least the given
// fraction of the total stake.
func QuorumStake(total Stake, fraction float64) Stake {
	if fraction <= 0 {
		return 0
	}
	return Stake(math.Ceil(float64(total)*fraction - quorumEpsilon))
}

// MeetsQuorum returns true if stake is at least the given fraction of total.
func MeetsQuorum(stake, total Stake, fraction float64) bool {
	if total == 0 {
		return false
	}
	return stake >= QuorumStake(total, fraction)
}
