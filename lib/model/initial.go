// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/types"
)

// InitialStates validates the configuration and returns one initial
// state per configured stake distribution.
func InitialStates(cfg Config) ([]*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	distributions := append([][]types.Stake{cfg.Stakes}, cfg.ExtraDistributions...)
	states := make([]*State, 0, len(distributions))
	for i, stakes := range distributions {
		state := newState(&cfg, stakes)
		logger.Debugf("initial state %d: %d validators, total stake %d, byzantine stake %d",
			i, len(state.Validators), state.TotalStake(), state.StakeByStatus(types.Byzantine))
		states = append(states, state)
	}

	return states, nil
}

// NewState builds the initial state for a single stake distribution.
// The configuration must have been validated.
func NewState(cfg *Config, stakes []types.Stake) (*State, error) {
	if len(stakes) != cfg.Validators {
		return nil, fmt.Errorf("%w: %d stakes given for %d validators",
			ErrConfiguration, len(stakes), cfg.Validators)
	}
	return newState(cfg, stakes), nil
}

func newState(cfg *Config, stakes []types.Stake) *State {
	validators := make([]Validator, cfg.Validators)
	for i := range validators {
		validators[i] = Validator{
			ID:     types.ValidatorID(i),
			Stake:  stakes[i],
			Status: types.Honest,
		}
	}
	for _, id := range cfg.Byzantine {
		validators[id].Status = types.Byzantine
	}
	for _, id := range cfg.Crashed {
		validators[id].Status = types.Crashed
	}

	slots := make([]SlotState, cfg.MaxSlot)
	for i := range slots {
		slots[i].Slot = types.Slot(i + 1)
	}

	total := sumStakes(stakes)
	return &State{
		Validators: validators,
		Slots:      slots,
		Ledger: Ledger{
			Pending:       make([]types.Stake, cfg.Validators),
			Pool:          cfg.Economics.RewardsPool,
			InitialSupply: total + cfg.Economics.RewardsPool,
			Params: Parameters{
				RewardRate:    cfg.Economics.RewardRate,
				SlashingRates: cfg.Economics.SlashingRates,
			},
		},
	}
}
