// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/erasure"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// nextDissemination returns the first pending leader rotation or chunk
// propagation. Propagations of different chunks commute, so only the
// lowest propagatable chunk is proposed.
func (m *Machine) nextDissemination(state *model.State) (Action, bool) {
	for i := range state.Slots {
		slotState := &state.Slots[i]

		// rotations are scheduled when their slot starts
		rotate := Action{Kind: RotateLeader, Slot: slotState.Slot}
		if state.Time >= m.config.SlotStart(slotState.Slot) && m.checkRotateLeader(state, rotate) == nil {
			return rotate, true
		}

		if slotState.Proposal == nil || m.withholds(slotState.Leader) {
			continue
		}
		for _, chunk := range slotState.Proposal.Chunks {
			if chunk.Available() {
				continue
			}
			action := Action{
				Kind:   PropagateChunk,
				Slot:   slotState.Slot,
				Chunk:  chunk.Index,
				Relays: m.relaySet(state, slotState, chunk),
			}
			if m.checkPropagateChunk(state, action) == nil {
				return action, true
			}
		}
	}
	return Action{}, false
}

func (m *Machine) withholds(id types.ValidatorID) bool {
	return m.adversary != nil && m.adversary.Withholds(id)
}

// relaySet returns the assigned relays of the chunk able to forward it:
// live, not withholding and receiving the chunk from the leader now.
func (m *Machine) relaySet(state *model.State, slotState *model.SlotState,
	chunk erasure.Chunk) (relays []types.ValidatorID) {
	for _, id := range chunk.Relays {
		validator := state.Validator(id)
		if validator == nil || validator.Status == types.Crashed || m.withholds(id) {
			continue
		}
		if !state.Network.Delivered(slotState.Leader, id, slotState.Slot,
			m.config.SlotStart(slotState.Slot), state.Time) {
			continue
		}
		relays = append(relays, id)
	}
	return relays
}

func (m *Machine) checkRotateLeader(state *model.State, action Action) error {
	slotState := state.Slot(action.Slot)
	if slotState == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, action.Slot)
	}
	if slotState.Rotated {
		return fmt.Errorf("%w: slot %d", ErrLeaderRotated, action.Slot)
	}

	// leaders may be rotated ahead of time for the next window only
	current := rotation.WindowOf(m.config.CurrentSlot(state.Time), m.config.WindowSize)
	window := rotation.WindowOf(action.Slot, m.config.WindowSize)
	switch {
	case window < current:
		return fmt.Errorf("%w: slot %d in window %d, current window is %d",
			ErrWindowPassed, action.Slot, window, current)
	case window > current+1:
		return fmt.Errorf("%w: slot %d in window %d, current window is %d",
			ErrWindowAhead, action.Slot, window, current)
	}
	return nil
}

func (m *Machine) applyRotateLeader(state *model.State, action Action) error {
	weights := state.Weights()
	id := rotation.WindowOf(action.Slot, m.config.WindowSize)

	window, ok := state.Window(id)
	if !ok {
		var err error
		window, err = m.scheduler.Window(id, weights)
		if err != nil {
			return fmt.Errorf("computing leader schedule of window %d: %w", id, err)
		}
		state.Windows = append(state.Windows, window)
	}

	leader, ok := window.Leader(action.Slot)
	if !ok {
		return fmt.Errorf("slot %d is outside window %d", action.Slot, id)
	}

	slotState := state.Slot(action.Slot)
	slotState.Rotated = true
	slotState.Leader = leader
	state.LeaderHistory = append(state.LeaderHistory, model.LeaderRecord{
		Slot:   action.Slot,
		Leader: leader,
	})

	if state.Validator(leader).Status == types.Crashed {
		logger.Debugf("leader %d of slot %d is crashed, no proposal", leader, action.Slot)
		return nil
	}

	block, err := erasure.NewBlock(action.Slot, model.CanonicalBlock, leader,
		m.config.ReconstructionThreshold, m.config.Redundancy)
	if err != nil {
		return fmt.Errorf("creating proposal of slot %d: %w", action.Slot, err)
	}
	err = erasure.AssignRelays(m.config.SeedHash(), block, weights, m.config.RelaysPerChunk)
	if err != nil {
		return fmt.Errorf("assigning relays of slot %d: %w", action.Slot, err)
	}
	slotState.Proposal = block

	logger.Debugf("slot %d led by validator %d with %d chunks", action.Slot, leader, len(block.Chunks))
	return nil
}

func (m *Machine) checkPropagateChunk(state *model.State, action Action) error {
	slotState := state.Slot(action.Slot)
	if slotState == nil {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, action.Slot)
	}
	if slotState.Proposal == nil {
		return fmt.Errorf("%w: slot %d", ErrNoProposal, action.Slot)
	}
	if m.withholds(slotState.Leader) {
		return fmt.Errorf("%w: leader %d", ErrWithheld, slotState.Leader)
	}
	if int(action.Chunk) >= len(slotState.Proposal.Chunks) {
		return fmt.Errorf("%w: %d of %d", ErrChunkOutOfRange, action.Chunk, len(slotState.Proposal.Chunks))
	}

	chunk := slotState.Proposal.Chunks[action.Chunk]
	if chunk.Available() {
		return fmt.Errorf("%w: chunk %d", ErrChunkAvailable, action.Chunk)
	}

	relays := m.relaySet(state, slotState, chunk)
	if len(relays) < m.config.MinRelays {
		return fmt.Errorf("%w: %d of %d", ErrNotEnoughRelays, len(relays), m.config.MinRelays)
	}
	if !equalIDs(relays, action.Relays) {
		return fmt.Errorf("%w: %v instead of %v", ErrRelayMismatch, action.Relays, relays)
	}
	return nil
}

func equalIDs(a, b []types.ValidatorID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
