// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// utilityTolerance absorbs floating point error when comparing utilities.
const utilityTolerance = 1e-9

// Profile describes the expected outcome of a behaviour.
type Profile struct {
	Success     float64
	Detection   float64
	PenaltyRate float64
}

// Utility returns stake x reward rate x success - stake x detection x penalty rate.
func Utility(stake types.Stake, rewardRate float64, profile Profile) float64 {
	s := float64(stake)
	return s*rewardRate*profile.Success - s*profile.Detection*profile.PenaltyRate
}

// Deviation is a strategy a validator may deviate to.
type Deviation interface {
	Name() string
	// Profile returns the expected outcome of the deviation for an
	// attacker controlling the given stake fraction.
	Profile(fraction float64, params model.Parameters) Profile
}

// HonestProfile returns the outcome of honest behaviour: rewards are earned
// in proportion to the honest stake able to finalize, nothing is slashed.
func HonestProfile(state *model.State) Profile {
	total := state.TotalStake()
	if total == 0 {
		return Profile{}
	}
	return Profile{
		Success: float64(state.StakeByStatus(types.Honest)) / float64(total),
	}
}

// Comparison holds the utilities of honesty and of one deviation for a validator.
type Comparison struct {
	Validator types.ValidatorID
	Strategy  string
	Honest    float64
	Deviation float64
}

// Profitable returns true if the deviation pays more than honesty.
func (c Comparison) Profitable() bool {
	return c.Deviation > c.Honest+utilityTolerance
}

// Compare computes, for every validator and every deviation, the utility of
// honesty and of the deviation. A validator deviating joins the existing
// byzantine stake.
func Compare(state *model.State, deviations []Deviation) []Comparison {
	total := state.TotalStake()
	if total == 0 {
		return nil
	}

	params := state.Ledger.Params
	honest := HonestProfile(state)
	byzantine := state.StakeByStatus(types.Byzantine)

	comparisons := make([]Comparison, 0, len(state.Validators)*len(deviations))
	for _, v := range state.Validators {
		controlled := byzantine
		if v.Status != types.Byzantine {
			controlled += v.Stake
		}
		fraction := float64(controlled) / float64(total)

		for _, deviation := range deviations {
			comparisons = append(comparisons, Comparison{
				Validator: v.ID,
				Strategy:  deviation.Name(),
				Honest:    Utility(v.Stake, params.RewardRate, honest),
				Deviation: Utility(v.Stake, params.RewardRate, deviation.Profile(fraction, params)),
			})
		}
	}
	return comparisons
}
