// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"fmt"
	"sort"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var paths = [...]types.Path{types.Fast, types.Slow}

// consensusActions enumerates honest votes, certificates, timeouts and
// skip certificates.
func (m *Machine) consensusActions(state *model.State) (actions []Action) {
	for i := range state.Slots {
		slotState := &state.Slots[i]
		slot := slotState.Slot

		if slotState.Proposal != nil {
			for _, v := range state.Validators {
				for _, path := range paths {
					action := Action{
						Kind:      Vote,
						Validator: v.ID,
						Slot:      slot,
						Block:     slotState.Proposal.ID,
						Path:      path,
					}
					if m.checkVote(state, action) == nil {
						actions = append(actions, action)
					}
				}
			}
		}

		for _, block := range slotState.VotedBlocks() {
			// only the strongest certificate a block qualifies for
			for _, path := range paths {
				action := Action{Kind: Certify, Slot: slot, Block: block, Path: path}
				if m.checkCertify(state, action) == nil {
					actions = append(actions, action)
					break
				}
			}
		}

		for _, v := range state.Validators {
			action := Action{Kind: Timeout, Validator: v.ID, Slot: slot}
			if m.checkTimeout(state, action) == nil {
				actions = append(actions, action)
			}
		}

		action := Action{Kind: SkipCertify, Slot: slot}
		if m.checkSkipCertify(state, action) == nil {
			actions = append(actions, action)
		}
	}
	return actions
}

// votingSlot returns the slot if a vote of the validator for it can be
// delivered now: voting is open, the leader is known and reachable, no
// link failure delays or drops the vote and the slot was neither skipped
// nor fast certified.
func (m *Machine) votingSlot(state *model.State, slot types.Slot, voter types.ValidatorID) (
	*model.SlotState, error) {
	slotState := state.Slot(slot)
	if slotState == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	if state.Time < m.config.SlotStart(slot) {
		return nil, fmt.Errorf("%w: slot %d starts at %d", ErrSlotNotStarted, slot, m.config.SlotStart(slot))
	}
	if state.Time > m.config.VotingDeadline(slot) {
		return nil, fmt.Errorf("%w: slot %d closed at %d", ErrVotingClosed, slot, m.config.VotingDeadline(slot))
	}
	if !slotState.Rotated {
		return nil, fmt.Errorf("%w: slot %d", ErrLeaderNotRotated, slot)
	}
	if slotState.Skip != nil {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotSkipped, slot)
	}
	if slotState.Certificate != nil && slotState.Certificate.Path == types.Fast {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotFinalized, slot)
	}
	if !state.Network.Connected(voter, slotState.Leader) {
		return nil, fmt.Errorf("%w: %d from leader %d", ErrDisconnected, voter, slotState.Leader)
	}
	if !state.Network.Delivered(voter, slotState.Leader, slot, m.config.SlotStart(slot), state.Time) {
		return nil, fmt.Errorf("%w: vote of %d in slot %d", ErrUndeliverable, voter, slot)
	}
	return slotState, nil
}

func (m *Machine) checkVote(state *model.State, action Action) error {
	validator := state.Validator(action.Validator)
	if validator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, action.Validator)
	}
	if validator.Status != types.Honest {
		return fmt.Errorf("%w: %d is %s", ErrNotHonest, validator.ID, validator.Status)
	}

	slotState, err := m.votingSlot(state, action.Slot, action.Validator)
	if err != nil {
		return err
	}
	if slotState.Proposal == nil {
		return fmt.Errorf("%w: slot %d", ErrNoProposal, action.Slot)
	}
	if action.Block != slotState.Proposal.ID {
		return fmt.Errorf("%w: block %d in slot %d", ErrUnknownBlock, action.Block, action.Slot)
	}
	if m.config.RequireAvailability && !slotState.Proposal.Reconstructable {
		return fmt.Errorf("%w: %d of %d chunks", ErrBlockUnavailable,
			slotState.Proposal.AvailableCount(), slotState.Proposal.Threshold)
	}
	if slotState.HasTimedOut(action.Validator) {
		return ErrTimedOut
	}
	if slotState.HasVoted(action.Validator, action.Path) {
		return fmt.Errorf("%w: %d on %s path", ErrAlreadyVoted, action.Validator, action.Path)
	}
	if action.Path == types.Slow {
		if slotState.Certificate != nil {
			return fmt.Errorf("%w: slot %d", ErrSlotFinalized, action.Slot)
		}
		if !slotState.HasVote(action.Validator, action.Block, types.Fast) {
			return ErrFastVoteMissing
		}
	}
	return nil
}

func (m *Machine) checkByzantineVote(state *model.State, voter types.ValidatorID, action Action) error {
	validator := state.Validator(voter)
	if validator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, voter)
	}
	if validator.Status != types.Byzantine {
		return fmt.Errorf("%w: %d is %s", ErrNotByzantine, voter, validator.Status)
	}
	if action.Block != model.CanonicalBlock && action.Block != model.ConflictingBlock {
		return fmt.Errorf("%w: block %d", ErrUnknownBlock, action.Block)
	}

	slotState, err := m.votingSlot(state, action.Slot, voter)
	if err != nil {
		return err
	}
	if slotState.HasVote(voter, action.Block, action.Path) {
		return fmt.Errorf("%w: %d for block %d on %s path", ErrAlreadyVoted, voter, action.Block, action.Path)
	}
	return nil
}

func (m *Machine) checkCoordinatedVote(state *model.State, action Action) error {
	if len(action.Voters) == 0 {
		return ErrEmptyCoalition
	}
	for _, voter := range action.Voters {
		if err := m.checkByzantineVote(state, voter, action); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) checkCertify(state *model.State, action Action) error {
	slotState := state.Slot(action.Slot)
	if slotState == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, action.Slot)
	}
	if state.Time > m.config.VotingDeadline(action.Slot) {
		return fmt.Errorf("%w: slot %d closed at %d", ErrVotingClosed, action.Slot,
			m.config.VotingDeadline(action.Slot))
	}
	if slotState.Skip != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotSkipped, action.Slot)
	}
	if cert := slotState.Certificate; cert != nil {
		if cert.Block != action.Block {
			return fmt.Errorf("%w: block %d certified in slot %d", ErrConflictingCertificate,
				cert.Block, action.Slot)
		}
		if cert.Path == types.Fast || action.Path == types.Slow {
			return fmt.Errorf("%w: %s certificate for block %d", ErrCertificateExists, cert.Path, cert.Block)
		}
	}

	fraction := m.config.SlowThreshold
	if action.Path == types.Fast {
		fraction = m.config.FastThreshold
	}
	stake := state.StakeOf(slotState.Voters(action.Block, action.Path == types.Fast))
	total := state.TotalStake()
	if !types.MeetsQuorum(stake, total, fraction) {
		return fmt.Errorf("%w: %s path has %d of %d needed", ErrQuorumNotMet, action.Path, stake,
			types.QuorumStake(total, fraction))
	}
	return nil
}

func (m *Machine) applyCertify(state *model.State, action Action) {
	slotState := state.Slot(action.Slot)
	voters := slotState.Voters(action.Block, action.Path == types.Fast)
	slotState.Certificate = &model.Certificate{
		Slot:       action.Slot,
		Block:      action.Block,
		Path:       action.Path,
		Voters:     voters,
		Stake:      state.StakeOf(voters),
		TotalStake: state.TotalStake(),
		Time:       state.Time,
	}

	for i := range state.Finalized {
		if state.Finalized[i].Slot == action.Slot {
			state.Finalized[i].Path = action.Path
			logger.Debugf("slot %d certificate upgraded to %s path", action.Slot, action.Path)
			return
		}
	}

	state.Finalized = append(state.Finalized, model.FinalizedBlock{
		Slot:        action.Slot,
		Block:       action.Block,
		Path:        action.Path,
		FinalizedAt: state.Time,
	})
	sort.Slice(state.Finalized, func(i, j int) bool {
		return state.Finalized[i].Slot < state.Finalized[j].Slot
	})
	logger.Debugf("slot %d finalized block %d on %s path at time %d",
		action.Slot, action.Block, action.Path, state.Time)
}

func (m *Machine) checkTimeout(state *model.State, action Action) error {
	validator := state.Validator(action.Validator)
	if validator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, action.Validator)
	}
	if validator.Status != types.Honest {
		return fmt.Errorf("%w: %d is %s", ErrNotHonest, validator.ID, validator.Status)
	}

	slotState := state.Slot(action.Slot)
	if slotState == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, action.Slot)
	}
	if state.Time < m.config.TimeoutDeadline(action.Slot) {
		return fmt.Errorf("%w: slot %d times out at %d", ErrTimeoutNotReached, action.Slot,
			m.config.TimeoutDeadline(action.Slot))
	}
	if slotState.Skip != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotSkipped, action.Slot)
	}
	if slotState.Certificate != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotFinalized, action.Slot)
	}
	if slotState.HasTimedOut(action.Validator) {
		return fmt.Errorf("%w: %d", ErrAlreadyTimedOut, action.Validator)
	}
	return nil
}

func (m *Machine) checkSkipCertify(state *model.State, action Action) error {
	slotState := state.Slot(action.Slot)
	if slotState == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, action.Slot)
	}
	if slotState.Certificate != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotFinalized, action.Slot)
	}
	if slotState.Skip != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotSkipped, action.Slot)
	}
	if len(slotState.Timeouts) < m.config.TimeoutThreshold {
		return fmt.Errorf("%w: %d of %d timeouts", ErrTimeoutThresholdNotMet,
			len(slotState.Timeouts), m.config.TimeoutThreshold)
	}
	return nil
}
