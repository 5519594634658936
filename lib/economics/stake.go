// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

func checkBudget(cfg *model.Config, state *model.State) error {
	if state.Ledger.ActionsUsed >= cfg.Economics.ActionBudget {
		return fmt.Errorf("%w: %d used", ErrBudgetExhausted, state.Ledger.ActionsUsed)
	}
	return nil
}

// CanDeposit returns an error if the validator cannot deposit a stake unit.
func CanDeposit(cfg *model.Config, state *model.State, id types.ValidatorID) error {
	if cfg.Economics.StakeUnit == 0 {
		return ErrStakeUnitDisabled
	}
	if err := checkBudget(cfg, state); err != nil {
		return err
	}

	validator := state.Validator(id)
	if validator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, id)
	}
	if validator.Status == types.Crashed {
		return fmt.Errorf("%w: %d", ErrValidatorCrashed, id)
	}
	return nil
}

// Deposit adds one stake unit to the validator.
func Deposit(cfg *model.Config, state *model.State, id types.ValidatorID) error {
	if err := CanDeposit(cfg, state, id); err != nil {
		return err
	}

	state.Validator(id).Stake += cfg.Economics.StakeUnit
	state.Ledger.TotalDeposited += cfg.Economics.StakeUnit
	state.Ledger.ActionsUsed++
	return nil
}

// CanWithdraw returns an error if the validator cannot withdraw a stake
// unit while staying above the minimum active stake.
func CanWithdraw(cfg *model.Config, state *model.State, id types.ValidatorID) error {
	unit := cfg.Economics.StakeUnit
	if unit == 0 {
		return ErrStakeUnitDisabled
	}
	if err := checkBudget(cfg, state); err != nil {
		return err
	}

	validator := state.Validator(id)
	if validator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, id)
	}
	if validator.Stake < unit {
		return fmt.Errorf("%w: %d staked, %d requested", ErrInsufficientStake, validator.Stake, unit)
	}
	if validator.Stake-unit < cfg.Economics.MinActiveStake {
		return fmt.Errorf("%w: %d left, minimum %d", ErrBelowMinimumStake,
			validator.Stake-unit, cfg.Economics.MinActiveStake)
	}
	if state.TotalStake() == unit {
		return ErrNoStakeLeft
	}
	return nil
}

// Withdraw removes one stake unit from the validator.
func Withdraw(cfg *model.Config, state *model.State, id types.ValidatorID) error {
	if err := CanWithdraw(cfg, state, id); err != nil {
		return err
	}

	state.Validator(id).Stake -= cfg.Economics.StakeUnit
	state.Ledger.TotalWithdrawn += cfg.Economics.StakeUnit
	state.Ledger.ActionsUsed++
	return nil
}

// CanUpdateParameters returns an error if no scheduled parameter
// update can be applied.
func CanUpdateParameters(cfg *model.Config, state *model.State) error {
	if state.Ledger.ParamUpdates >= len(cfg.Economics.Schedule) {
		return ErrNoScheduledUpdate
	}
	return checkBudget(cfg, state)
}

// UpdateParameters applies the next entry of the parameter schedule.
func UpdateParameters(cfg *model.Config, state *model.State) error {
	if err := CanUpdateParameters(cfg, state); err != nil {
		return err
	}

	state.Ledger.Params = cfg.Economics.Schedule[state.Ledger.ParamUpdates]
	state.Ledger.ParamUpdates++
	state.Ledger.ActionsUsed++
	return nil
}
