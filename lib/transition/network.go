// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// minPartitionSize is the smallest validator set that can be split.
const minPartitionSize = 4

// split returns the partition sides: the first half of the validators
// and the rest.
func split(validators int) (a, b []types.ValidatorID) {
	for i := 0; i < validators; i++ {
		if i < validators/2 {
			a = append(a, types.ValidatorID(i))
		} else {
			b = append(b, types.ValidatorID(i))
		}
	}
	return a, b
}

func (m *Machine) networkActions(state *model.State) (actions []Action) {
	if state.Network.Partition != nil {
		actions = append(actions, Action{Kind: HealPartition})
	} else {
		a, b := split(len(state.Validators))
		action := Action{Kind: NetworkPartition, SideA: a, SideB: b}
		if m.checkPartition(state, action) == nil {
			actions = append(actions, action)
		}
	}

	for _, v := range state.Validators {
		action := Action{Kind: InjectNetworkFailure, Validator: v.ID}
		if m.checkFailure(state, action) == nil {
			actions = append(actions, action)
		}
	}
	return actions
}

func (m *Machine) checkPartition(state *model.State, action Action) error {
	if state.Network.Partition != nil {
		return ErrPartitionActive
	}
	if state.Network.PartitionsUsed >= m.config.MaxPartitions {
		return fmt.Errorf("%w: %d used", ErrPartitionBudget, state.Network.PartitionsUsed)
	}
	if len(state.Validators) < minPartitionSize {
		return fmt.Errorf("%w: %d", ErrTooFewValidators, len(state.Validators))
	}

	a, b := split(len(state.Validators))
	if !equalIDs(a, action.SideA) || !equalIDs(b, action.SideB) {
		return fmt.Errorf("%w: %v | %v", ErrPartitionMismatch, action.SideA, action.SideB)
	}
	return nil
}

func (m *Machine) checkHeal(state *model.State) error {
	if state.Network.Partition == nil {
		return ErrNoPartition
	}
	return nil
}

func (m *Machine) checkFailure(state *model.State, action Action) error {
	if state.Validator(action.Validator) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, action.Validator)
	}
	if state.Network.FailuresUsed >= m.config.MaxFailures {
		return fmt.Errorf("%w: %d used", ErrFailureBudget, state.Network.FailuresUsed)
	}
	if state.Network.Failure(action.Validator) != nil {
		return fmt.Errorf("%w: %d", ErrFailureActive, action.Validator)
	}
	return nil
}

// failure returns the link failure of the validator starting now. Each
// failure of a run draws its losses from its own seed.
func (m *Machine) failure(state *model.State, id types.ValidatorID) model.Failure {
	return model.Failure{
		Validator: id,
		Delay:     m.config.FailureDelay,
		LossRate:  m.config.LossRate,
		Seed:      common.Fingerprint(m.config.Seed, common.Uint64Bytes(uint64(state.Network.FailuresUsed))),
		Until:     state.Time + m.config.FailureTicks,
	}
}
