// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package properties

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/economics"
	"github.com/ChainSafe/alpenglow/lib/erasure"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// thresholdEpsilon absorbs the representation error of stake fractions.
const thresholdEpsilon = 1e-9

// checkSafety checks that a slot is decided at most once, that the
// finalized ledger agrees with the certificates and that honest
// validators never vote for two blocks of a slot.
func checkSafety(s *Suite, state *model.State) error {
	finalized := make(map[types.Slot]model.FinalizedBlock, len(state.Finalized))
	for _, entry := range state.Finalized {
		if _, ok := finalized[entry.Slot]; ok {
			return fmt.Errorf("slot %d finalized twice", entry.Slot)
		}
		finalized[entry.Slot] = entry
	}

	for i := range state.Slots {
		slotState := &state.Slots[i]
		slot := slotState.Slot
		cert := slotState.Certificate

		if cert != nil && slotState.Skip != nil {
			return fmt.Errorf("slot %d has a certificate and a skip certificate", slot)
		}

		entry, ok := finalized[slot]
		switch {
		case cert == nil && ok:
			return fmt.Errorf("slot %d finalized block %d without a certificate", slot, entry.Block)
		case cert != nil && !ok:
			return fmt.Errorf("slot %d certified block %d missing from the finalized ledger", slot, cert.Block)
		case cert != nil && (cert.Slot != slot || entry.Block != cert.Block):
			return fmt.Errorf("slot %d finalized block %d but certified block %d", slot, entry.Block, cert.Block)
		}

		for _, v := range state.Validators {
			if v.Status != types.Honest {
				continue
			}
			var voted []types.BlockID
			for _, vote := range slotState.Votes {
				if vote.Validator == v.ID && !containsBlock(voted, vote.Block) {
					voted = append(voted, vote.Block)
				}
			}
			if len(voted) > 1 {
				return fmt.Errorf("honest validator %d voted for blocks %v in slot %d", v.ID, voted, slot)
			}
		}
	}
	return nil
}

// checkByzantineResilience checks that safety holds while the byzantine
// stake is within the tolerated threshold, and that no two blocks of a
// slot then gather a slow quorum of voters.
func checkByzantineResilience(s *Suite, state *model.State) error {
	total := state.TotalStake()
	if total == 0 {
		return nil
	}
	byzantine := state.StakeByStatus(types.Byzantine)
	if float64(byzantine) > float64(total)*s.config.ByzantineThreshold+thresholdEpsilon {
		return nil
	}

	if err := checkSafety(s, state); err != nil {
		return fmt.Errorf("safety broken with byzantine stake %d of %d: %w", byzantine, total, err)
	}

	for i := range state.Slots {
		slotState := &state.Slots[i]
		var quorate []types.BlockID
		for _, block := range slotState.VotedBlocks() {
			stake := state.StakeOf(slotState.Voters(block, false))
			if types.MeetsQuorum(stake, total, s.config.SlowThreshold) {
				quorate = append(quorate, block)
			}
		}
		if len(quorate) > 1 {
			return fmt.Errorf("blocks %v of slot %d all reach a slow quorum with byzantine stake %d of %d",
				quorate, slotState.Slot, byzantine, total)
		}
	}
	return nil
}

// checkCertificateValidity checks that certificate voters voted for the
// certified block on the certified path, that no honest voter of a
// certificate equivocated and that the quorum was met on formation.
func checkCertificateValidity(s *Suite, state *model.State) error {
	for i := range state.Slots {
		slotState := &state.Slots[i]
		cert := slotState.Certificate
		if cert == nil {
			continue
		}

		for _, voter := range cert.Voters {
			votedFor := slotState.HasVote(voter, cert.Block, types.Fast)
			if cert.Path == types.Slow {
				votedFor = votedFor || slotState.HasVote(voter, cert.Block, types.Slow)
			}
			if !votedFor {
				return fmt.Errorf("voter %d of the %s certificate of slot %d did not vote for block %d",
					voter, cert.Path, cert.Slot, cert.Block)
			}

			validator := state.Validator(voter)
			if validator == nil || validator.Status != types.Honest {
				continue
			}
			for _, vote := range slotState.Votes {
				if vote.Validator == voter && vote.Block != cert.Block {
					return fmt.Errorf("honest voter %d of the certificate of slot %d also voted for block %d",
						voter, cert.Slot, vote.Block)
				}
			}
		}

		fraction := s.config.SlowThreshold
		if cert.Path == types.Fast {
			fraction = s.config.FastThreshold
		}
		if !types.MeetsQuorum(cert.Stake, cert.TotalStake, fraction) {
			return fmt.Errorf("%s certificate of slot %d has stake %d of %d, below quorum",
				cert.Path, cert.Slot, cert.Stake, cert.TotalStake)
		}
	}
	return nil
}

// checkErasureAvailability checks that a proposal is flagged
// reconstructable exactly when enough of its chunks are available.
func checkErasureAvailability(s *Suite, state *model.State) error {
	for i := range state.Slots {
		proposal := state.Slots[i].Proposal
		if proposal == nil {
			continue
		}

		n, err := erasure.ChunkCount(proposal.Threshold, proposal.Redundancy)
		if err != nil {
			return fmt.Errorf("proposal of slot %d: %w", proposal.Slot, err)
		}
		if int(n) != len(proposal.Chunks) {
			return fmt.Errorf("proposal of slot %d has %d chunks instead of %d", proposal.Slot, len(proposal.Chunks), n)
		}

		available := proposal.AvailableCount()
		if proposal.Reconstructable != (available >= proposal.Threshold) {
			return fmt.Errorf("proposal of slot %d flagged reconstructable=%t with %d of %d chunks",
				proposal.Slot, proposal.Reconstructable, available, proposal.Threshold)
		}
	}
	return nil
}

// checkBoundedFinalization checks that certificates form within
// min(fast latency, 2 x slow latency) of the slot start.
func checkBoundedFinalization(s *Suite, state *model.State) error {
	bound := s.config.FinalizationBound()
	for i := range state.Slots {
		cert := state.Slots[i].Certificate
		if cert == nil {
			continue
		}
		start := s.config.SlotStart(cert.Slot)
		if cert.Time < start || cert.Time-start > bound {
			return fmt.Errorf("slot %d certified at %d, outside [%d, %d]", cert.Slot, cert.Time, start, start+bound)
		}
	}
	return nil
}

func checkEconomicInvariants(s *Suite, state *model.State) error {
	return economics.CheckInvariants(s.config, state)
}

func containsBlock(blocks []types.BlockID, block types.BlockID) bool {
	for _, candidate := range blocks {
		if candidate == block {
			return true
		}
	}
	return false
}
