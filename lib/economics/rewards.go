// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"fmt"
	"math"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "economics"))

// EpochSlots returns the slots of an epoch that exist in the run.
// Epochs coincide with leader windows.
func EpochSlots(cfg *model.Config, epoch uint32) (slots []types.Slot) {
	first, last := rotation.Bounds(epoch, cfg.WindowSize)
	if last > cfg.MaxSlot {
		last = cfg.MaxSlot
	}
	for slot := first; slot <= last; slot++ {
		slots = append(slots, slot)
	}
	return slots
}

// EpochComplete returns true once every slot of the epoch is decided.
func EpochComplete(cfg *model.Config, state *model.State, epoch uint32) bool {
	slots := EpochSlots(cfg, epoch)
	if len(slots) == 0 {
		return false
	}
	for _, slot := range slots {
		slotState := state.Slot(slot)
		if slotState == nil || !slotState.Decided() {
			return false
		}
	}
	return true
}

// Rewards is the outcome of an epoch reward calculation.
type Rewards struct {
	Epoch        uint32
	PerValidator []types.Stake
	Total        types.Stake
}

// CalculateEpochRewards computes the reward of every validator for the
// epoch: stake x reward rate x the share of the epoch slots in which
// the validator signed the certificate.
func CalculateEpochRewards(cfg *model.Config, state *model.State, epoch uint32) Rewards {
	slots := EpochSlots(cfg, epoch)
	rewards := Rewards{
		Epoch:        epoch,
		PerValidator: make([]types.Stake, len(state.Validators)),
	}
	if len(slots) == 0 {
		return rewards
	}

	participation := make([]int, len(state.Validators))
	for _, slot := range slots {
		slotState := state.Slot(slot)
		if slotState == nil || slotState.Certificate == nil {
			continue
		}
		for _, voter := range slotState.Certificate.Voters {
			if int(voter) < len(participation) {
				participation[voter]++
			}
		}
	}

	rate := state.Ledger.Params.RewardRate
	for i, v := range state.Validators {
		if participation[i] == 0 || v.Status == types.Byzantine {
			continue
		}
		share := float64(participation[i]) / float64(len(slots))
		reward := types.Stake(math.Floor(float64(v.Stake) * rate * share))
		rewards.PerValidator[i] = reward
		rewards.Total += reward
	}

	return rewards
}

// CanDistributeRewards returns the epoch rewards if they can be
// distributed, or the reason they cannot.
func CanDistributeRewards(cfg *model.Config, state *model.State, epoch uint32) (Rewards, error) {
	if state.Ledger.Rewarded(epoch) {
		return Rewards{}, fmt.Errorf("%w: epoch %d", ErrEpochRewarded, epoch)
	}
	if !EpochComplete(cfg, state, epoch) {
		return Rewards{}, fmt.Errorf("%w: epoch %d", ErrEpochNotComplete, epoch)
	}

	rewards := CalculateEpochRewards(cfg, state, epoch)
	if rewards.Total > state.Ledger.Pool {
		return Rewards{}, fmt.Errorf("%w: %d needed, %d in pool",
			ErrInsufficientPool, rewards.Total, state.Ledger.Pool)
	}
	return rewards, nil
}

// DistributeRewards moves the epoch rewards from the pool to the
// pending balances.
func DistributeRewards(cfg *model.Config, state *model.State, epoch uint32) error {
	rewards, err := CanDistributeRewards(cfg, state, epoch)
	if err != nil {
		return err
	}

	for i, reward := range rewards.PerValidator {
		state.Ledger.Pending[i] += reward
	}
	state.Ledger.Pool -= rewards.Total
	state.Ledger.RewardedEpochs = append(state.Ledger.RewardedEpochs, epoch)

	logger.Debugf("distributed %d rewards for epoch %d, pool left %d", rewards.Total, epoch, state.Ledger.Pool)
	return nil
}
