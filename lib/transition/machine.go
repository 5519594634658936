// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "transition"))

// Adversary injects the actions of byzantine validators.
type Adversary interface {
	// Actions returns the byzantine actions the adversary wants to take
	// in the state. Actions whose preconditions fail are dropped.
	Actions(state *model.State) []Action
	// Withholds returns true if the validator never relays chunks.
	Withholds(id types.ValidatorID) bool
}

// Machine enumerates and applies the actions of the protocol for one
// configuration. Apply never modifies the state given.
type Machine struct {
	config    *model.Config
	scheduler *rotation.Scheduler
	adversary Adversary
}

// NewMachine creates a machine for the configuration, which must have
// been validated. The adversary may be nil.
func NewMachine(cfg *model.Config, adversary Adversary) (*Machine, error) {
	scheduler, err := rotation.NewScheduler(cfg.SeedHash(), cfg.WindowSize, nil)
	if err != nil {
		return nil, fmt.Errorf("creating leader scheduler: %w", err)
	}

	return &Machine{
		config:    cfg,
		scheduler: scheduler,
		adversary: adversary,
	}, nil
}

// Config returns the configuration of the machine.
func (m *Machine) Config() *model.Config {
	return m.config
}

// Close releases the leader schedule cache.
func (m *Machine) Close() {
	m.scheduler.Close()
}

// Enabled returns the actions whose preconditions hold in the state, in
// a deterministic order. Leader rotation and chunk dissemination take
// priority over everything else and are returned one at a time.
func (m *Machine) Enabled(state *model.State) []Action {
	if action, ok := m.nextDissemination(state); ok {
		return []Action{action}
	}

	actions := m.consensusActions(state)
	urgent := m.hasUrgent(state, actions)

	if m.adversary != nil {
		for _, action := range m.adversary.Actions(state) {
			if m.Check(state, action) == nil {
				actions = append(actions, action)
			}
		}
	}

	actions = append(actions, m.economicActions(state)...)
	actions = append(actions, m.networkActions(state)...)

	if !urgent && state.Time < m.config.EffectiveHorizon() {
		actions = append(actions, Action{Kind: AdvanceTime})
	}
	return actions
}

// Apply returns the state reached by taking the action. A failed
// precondition returns a RejectedError matching ErrInvalidAction, any
// other error is an engine fault.
func (m *Machine) Apply(state *model.State, action Action) (*model.State, error) {
	if err := m.Check(state, action); err != nil {
		return nil, err
	}

	next := state.Clone()
	if err := m.apply(next, action); err != nil {
		return nil, fmt.Errorf("applying %s: %w", action, err)
	}
	m.markDisrupted(next)

	logger.Tracef("applied %s at time %d", action, state.Time)
	return next, nil
}

// Check returns a RejectedError if the preconditions of the action do
// not hold in the state.
func (m *Machine) Check(state *model.State, action Action) error {
	var err error
	switch action.Kind {
	case AdvanceTime:
		err = m.checkAdvanceTime(state)
	case Vote:
		err = m.checkVote(state, action)
	case ByzantineVote:
		err = m.checkByzantineVote(state, action.Validator, action)
	case CoordinatedVote:
		err = m.checkCoordinatedVote(state, action)
	case Certify:
		err = m.checkCertify(state, action)
	case Timeout:
		err = m.checkTimeout(state, action)
	case SkipCertify:
		err = m.checkSkipCertify(state, action)
	case PropagateChunk:
		err = m.checkPropagateChunk(state, action)
	case RotateLeader:
		err = m.checkRotateLeader(state, action)
	case DistributeRewards, SlashValidator, StakeDeposit, StakeWithdrawal,
		ReportSlashing, UpdateEconomicParameters:
		err = m.checkEconomic(state, action)
	case NetworkPartition:
		err = m.checkPartition(state, action)
	case HealPartition:
		err = m.checkHeal(state)
	case InjectNetworkFailure:
		err = m.checkFailure(state, action)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(action.Kind))
	}

	if err != nil {
		return reject(action, err)
	}
	return nil
}

func (m *Machine) apply(state *model.State, action Action) error {
	switch action.Kind {
	case AdvanceTime:
		state.Time++
		state.Network.Expire(state.Time)
		return nil
	case Vote, ByzantineVote:
		state.Slot(action.Slot).AddVote(model.Vote{
			Validator: action.Validator,
			Slot:      action.Slot,
			Block:     action.Block,
			Path:      action.Path,
		})
		return nil
	case CoordinatedVote:
		slotState := state.Slot(action.Slot)
		for _, voter := range action.Voters {
			slotState.AddVote(model.Vote{
				Validator: voter,
				Slot:      action.Slot,
				Block:     action.Block,
				Path:      action.Path,
			})
		}
		return nil
	case Certify:
		m.applyCertify(state, action)
		return nil
	case Timeout:
		state.Slot(action.Slot).AddTimeout(action.Validator)
		return nil
	case SkipCertify:
		slotState := state.Slot(action.Slot)
		slotState.Skip = &model.SkipCertificate{
			Slot:     action.Slot,
			Timeouts: append([]types.ValidatorID(nil), slotState.Timeouts...),
			Time:     state.Time,
		}
		logger.Debugf("slot %d skipped at time %d", action.Slot, state.Time)
		return nil
	case PropagateChunk:
		return state.Slot(action.Slot).Proposal.MarkAvailable(action.Chunk, action.Relays...)
	case RotateLeader:
		return m.applyRotateLeader(state, action)
	case DistributeRewards, SlashValidator, StakeDeposit, StakeWithdrawal,
		ReportSlashing, UpdateEconomicParameters:
		return m.applyEconomic(state, action)
	case NetworkPartition:
		state.Network.Partition = &model.Partition{
			A:     append([]types.ValidatorID(nil), action.SideA...),
			B:     append([]types.ValidatorID(nil), action.SideB...),
			Since: state.Time,
		}
		state.Network.PartitionsUsed++
		return nil
	case HealPartition:
		state.Network.Partition = nil
		return nil
	case InjectNetworkFailure:
		state.Network.AddFailure(m.failure(state, action.Validator))
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(action.Kind))
	}
}

func (m *Machine) checkAdvanceTime(state *model.State) error {
	if state.Time >= m.config.EffectiveHorizon() {
		return fmt.Errorf("%w: %d", ErrHorizonReached, state.Time)
	}
	if _, ok := m.nextDissemination(state); ok {
		return ErrUrgentAction
	}
	if m.hasUrgent(state, m.consensusActions(state)) {
		return ErrUrgentAction
	}
	return nil
}

// hasUrgent returns true if time cannot pass before one of the actions
// is taken: certificates form as soon as a quorum exists, timeouts fire
// at their deadline and honest votes are delivered by the voting deadline.
func (m *Machine) hasUrgent(state *model.State, actions []Action) bool {
	for _, action := range actions {
		switch action.Kind {
		case Certify, Timeout, SkipCertify:
			return true
		case Vote:
			if state.Time == m.config.VotingDeadline(action.Slot) {
				return true
			}
		}
	}
	return false
}

// markDisrupted flags the slots open for voting while a partition or a
// link failure is active.
func (m *Machine) markDisrupted(state *model.State) {
	if !state.Network.Degraded() {
		return
	}
	for i := range state.Slots {
		slotState := &state.Slots[i]
		if state.Time >= m.config.SlotStart(slotState.Slot) &&
			state.Time <= m.config.VotingDeadline(slotState.Slot) {
			slotState.Disrupted = true
		}
	}
}
