// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// Clone returns a deep copy of the state. Transitions always work on
// a clone so that earlier states stay valid for trace reporting.
func (s *State) Clone() *State {
	clone := &State{
		Time:          s.Time,
		Validators:    append([]Validator(nil), s.Validators...),
		Slots:         make([]SlotState, len(s.Slots)),
		LeaderHistory: append([]LeaderRecord(nil), s.LeaderHistory...),
		Finalized:     append([]FinalizedBlock(nil), s.Finalized...),
		Network:       s.Network.clone(),
		Ledger:        s.Ledger.clone(),
	}

	for i := range s.Slots {
		clone.Slots[i] = s.Slots[i].clone()
	}

	if s.Windows != nil {
		clone.Windows = make([]rotation.Window, len(s.Windows))
		for i, window := range s.Windows {
			window.Leaders = append([]types.ValidatorID(nil), window.Leaders...)
			clone.Windows[i] = window
		}
	}

	return clone
}

func (s SlotState) clone() SlotState {
	clone := s
	clone.Votes = append([]Vote(nil), s.Votes...)
	clone.Timeouts = append([]types.ValidatorID(nil), s.Timeouts...)

	if s.Proposal != nil {
		clone.Proposal = s.Proposal.Clone()
	}

	if s.Certificate != nil {
		certificate := *s.Certificate
		certificate.Voters = append([]types.ValidatorID(nil), s.Certificate.Voters...)
		clone.Certificate = &certificate
	}

	if s.Skip != nil {
		skip := *s.Skip
		skip.Timeouts = append([]types.ValidatorID(nil), s.Skip.Timeouts...)
		clone.Skip = &skip
	}

	return clone
}

func (n Network) clone() Network {
	clone := n
	if n.Partition != nil {
		partition := *n.Partition
		partition.A = append([]types.ValidatorID(nil), n.Partition.A...)
		partition.B = append([]types.ValidatorID(nil), n.Partition.B...)
		clone.Partition = &partition
	}
	if n.Failures != nil {
		clone.Failures = append([]Failure(nil), n.Failures...)
	}
	return clone
}

func (l Ledger) clone() Ledger {
	clone := l
	clone.Pending = append([]types.Stake(nil), l.Pending...)
	clone.Evidence = append([]Evidence(nil), l.Evidence...)
	clone.RewardedEpochs = append([]uint32(nil), l.RewardedEpochs...)
	return clone
}
