// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"sort"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/erasure"
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// CanonicalBlock is the block every leader proposes. Byzantine validators
// may vote for ConflictingBlock instead.
const (
	CanonicalBlock   types.BlockID = 0
	ConflictingBlock types.BlockID = 1
)

// Validator is a member of the validator set.
type Validator struct {
	ID     types.ValidatorID `json:"id"`
	Stake  types.Stake       `json:"stake"`
	Status types.Status      `json:"status"`
}

// Vote is a vote of a validator for a block on a path.
type Vote struct {
	Validator types.ValidatorID `json:"validator"`
	Slot      types.Slot        `json:"slot"`
	Block     types.BlockID     `json:"block"`
	Path      types.Path        `json:"path"`
}

// Certificate proves a block was finalized for a slot.
type Certificate struct {
	Slot       types.Slot          `json:"slot"`
	Block      types.BlockID       `json:"block"`
	Path       types.Path          `json:"path"`
	Voters     []types.ValidatorID `json:"voters"`
	Stake      types.Stake         `json:"stake"`
	TotalStake types.Stake         `json:"totalStake"`
	Time       types.Tick          `json:"time"`
}

// SkipCertificate proves a slot was skipped after enough timeouts.
type SkipCertificate struct {
	Slot     types.Slot          `json:"slot"`
	Timeouts []types.ValidatorID `json:"timeouts"`
	Time     types.Tick          `json:"time"`
}

// FinalizedBlock is an entry of the finalized ledger.
type FinalizedBlock struct {
	Slot        types.Slot    `json:"slot"`
	Block       types.BlockID `json:"block"`
	Path        types.Path    `json:"path"`
	FinalizedAt types.Tick    `json:"finalizedAt"`
}

// LeaderRecord is an entry of the leader history.
type LeaderRecord struct {
	Slot   types.Slot        `json:"slot"`
	Leader types.ValidatorID `json:"leader"`
}

// SlotState holds everything that happened in one slot.
type SlotState struct {
	Slot        types.Slot          `json:"slot"`
	Rotated     bool                `json:"rotated"`
	Leader      types.ValidatorID   `json:"leader"`
	Proposal    *erasure.Block      `json:"proposal,omitempty"`
	Votes       []Vote              `json:"votes,omitempty"`
	Timeouts    []types.ValidatorID `json:"timeouts,omitempty"`
	Certificate *Certificate        `json:"certificate,omitempty"`
	Skip        *SkipCertificate    `json:"skip,omitempty"`
	// Disrupted is set when a partition was in place while the slot
	// was open for voting.
	Disrupted bool `json:"disrupted,omitempty"`
}

// Decided returns true if the slot has a certificate or a skip certificate.
func (s *SlotState) Decided() bool {
	return s.Certificate != nil || s.Skip != nil
}

// HasVote returns true if the exact vote was cast.
func (s *SlotState) HasVote(validator types.ValidatorID, block types.BlockID, path types.Path) bool {
	for _, vote := range s.Votes {
		if vote.Validator == validator && vote.Block == block && vote.Path == path {
			return true
		}
	}
	return false
}

// HasVoted returns true if the validator cast any vote on the path.
func (s *SlotState) HasVoted(validator types.ValidatorID, path types.Path) bool {
	for _, vote := range s.Votes {
		if vote.Validator == validator && vote.Path == path {
			return true
		}
	}
	return false
}

// HasTimedOut returns true if the validator timed out on the slot.
func (s *SlotState) HasTimedOut(validator types.ValidatorID) bool {
	for _, id := range s.Timeouts {
		if id == validator {
			return true
		}
	}
	return false
}

// AddVote inserts a vote keeping votes sorted.
func (s *SlotState) AddVote(vote Vote) {
	s.Votes = append(s.Votes, vote)
	sort.Slice(s.Votes, func(i, j int) bool {
		a, b := s.Votes[i], s.Votes[j]
		if a.Validator != b.Validator {
			return a.Validator < b.Validator
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Block < b.Block
	})
}

// AddTimeout inserts a timeout keeping timeouts sorted.
func (s *SlotState) AddTimeout(validator types.ValidatorID) {
	s.Timeouts = append(s.Timeouts, validator)
	sort.Slice(s.Timeouts, func(i, j int) bool { return s.Timeouts[i] < s.Timeouts[j] })
}

// Voters returns the distinct validators with a vote for the block. With
// fastOnly set, only votes on the fast path are considered.
func (s *SlotState) Voters(block types.BlockID, fastOnly bool) []types.ValidatorID {
	var voters []types.ValidatorID
	for _, vote := range s.Votes {
		if vote.Block != block || (fastOnly && vote.Path != types.Fast) {
			continue
		}
		if len(voters) > 0 && voters[len(voters)-1] == vote.Validator {
			continue
		}
		voters = append(voters, vote.Validator)
	}
	return voters
}

// VotedBlocks returns the distinct blocks voted for in the slot, sorted.
func (s *SlotState) VotedBlocks() []types.BlockID {
	seen := make(map[types.BlockID]struct{})
	var blocks []types.BlockID
	for _, vote := range s.Votes {
		if _, ok := seen[vote.Block]; ok {
			continue
		}
		seen[vote.Block] = struct{}{}
		blocks = append(blocks, vote.Block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}

// Partition splits the validator set in two sides that cannot communicate.
type Partition struct {
	A     []types.ValidatorID `json:"a"`
	B     []types.ValidatorID `json:"b"`
	Since types.Tick          `json:"since"`
}

// Failure degrades the links of a validator until a tick. Its messages
// are delayed and a seeded share of them is lost.
type Failure struct {
	Validator types.ValidatorID `json:"validator"`
	Delay     types.Tick        `json:"delay"`
	LossRate  float64           `json:"lossRate"`
	Seed      uint64            `json:"seed"`
	Until     types.Tick        `json:"until"`
}

// lossResolution is the granularity of the loss draws.
const lossResolution = 10_000

// Lost returns true if the message of the slot sent from a to b is
// lost. The draw only depends on the failure seed and the message, so
// a lost message stays lost for the whole failure.
func (f *Failure) Lost(from, to types.ValidatorID, slot types.Slot) bool {
	key := make([]byte, 0, 24)
	key = append(key, common.Uint64Bytes(uint64(from))...)
	key = append(key, common.Uint64Bytes(uint64(to))...)
	key = append(key, common.Uint64Bytes(uint64(slot))...)
	draw := common.Fingerprint(f.Seed, key) % lossResolution
	return float64(draw) < f.LossRate*lossResolution
}

// Network is the network condition.
type Network struct {
	Partition      *Partition `json:"partition,omitempty"`
	PartitionsUsed int        `json:"partitionsUsed"`
	Failures       []Failure  `json:"failures,omitempty"`
	FailuresUsed   int        `json:"failuresUsed"`
}

// Failure returns the active failure of the validator, if any.
func (n *Network) Failure(id types.ValidatorID) *Failure {
	for i := range n.Failures {
		if n.Failures[i].Validator == id {
			return &n.Failures[i]
		}
	}
	return nil
}

// AddFailure records a failure, keeping the failures sorted by validator.
func (n *Network) AddFailure(failure Failure) {
	n.Failures = append(n.Failures, failure)
	sort.Slice(n.Failures, func(i, j int) bool {
		return n.Failures[i].Validator < n.Failures[j].Validator
	})
	n.FailuresUsed++
}

// Expire removes the failures over at the given tick.
func (n *Network) Expire(now types.Tick) {
	active := n.Failures[:0]
	for _, failure := range n.Failures {
		if now < failure.Until {
			active = append(active, failure)
		}
	}
	if len(active) == 0 {
		active = nil
	}
	n.Failures = active
}

// Degraded returns true if a partition or a link failure is active.
func (n *Network) Degraded() bool {
	return n.Partition != nil || len(n.Failures) > 0
}

// Delivered returns true if a message of the slot, sent from a to b at
// tick sent, is delivered at tick now.
func (n *Network) Delivered(from, to types.ValidatorID, slot types.Slot, sent, now types.Tick) bool {
	if !n.Connected(from, to) {
		return false
	}
	for i := range n.Failures {
		failure := &n.Failures[i]
		if failure.Validator != from && failure.Validator != to {
			continue
		}
		if now >= failure.Until {
			continue
		}
		if now < sent+failure.Delay || failure.Lost(from, to, slot) {
			return false
		}
	}
	return true
}

// Connected returns true if messages from a are delivered to b.
func (n *Network) Connected(a, b types.ValidatorID) bool {
	if n.Partition == nil {
		return true
	}
	return contains(n.Partition.A, a) == contains(n.Partition.A, b)
}

// State is one point of a protocol execution.
type State struct {
	Time          types.Tick        `json:"time"`
	Validators    []Validator       `json:"validators"`
	Slots         []SlotState       `json:"slots"`
	Windows       []rotation.Window `json:"windows,omitempty"`
	LeaderHistory []LeaderRecord    `json:"leaderHistory,omitempty"`
	Finalized     []FinalizedBlock  `json:"finalized,omitempty"`
	Network       Network           `json:"network"`
	Ledger        Ledger            `json:"ledger"`
}

// Slot returns the state of a slot, or nil if it is out of range.
func (s *State) Slot(slot types.Slot) *SlotState {
	if slot == 0 || int(slot) > len(s.Slots) {
		return nil
	}
	return &s.Slots[slot-1]
}

// Validator returns a validator, or nil if the id is out of range.
func (s *State) Validator(id types.ValidatorID) *Validator {
	if int(id) >= len(s.Validators) {
		return nil
	}
	return &s.Validators[id]
}

// Weights returns the current stake distribution.
func (s *State) Weights() []types.Weighted {
	weights := make([]types.Weighted, len(s.Validators))
	for i, v := range s.Validators {
		weights[i] = types.Weighted{ID: v.ID, Stake: v.Stake}
	}
	return weights
}

// TotalStake returns the stake of all validators.
func (s *State) TotalStake() (total types.Stake) {
	for _, v := range s.Validators {
		total += v.Stake
	}
	return total
}

// StakeByStatus returns the stake of the validators with the status.
func (s *State) StakeByStatus(status types.Status) (total types.Stake) {
	for _, v := range s.Validators {
		if v.Status == status {
			total += v.Stake
		}
	}
	return total
}

// StakeOf returns the stake of the validators given.
func (s *State) StakeOf(ids []types.ValidatorID) (total types.Stake) {
	for _, id := range ids {
		if v := s.Validator(id); v != nil {
			total += v.Stake
		}
	}
	return total
}

// Window returns the leader schedule stored for the window, if any.
func (s *State) Window(id uint32) (rotation.Window, bool) {
	for _, window := range s.Windows {
		if window.ID == id {
			return window, true
		}
	}
	return rotation.Window{}, false
}

// ResponsiveStake returns the honest stake that could vote for the
// slot proposal: honest validators connected to a live leader that
// proposed. Disrupted slots have no responsive stake.
func (s *State) ResponsiveStake(slot types.Slot) types.Stake {
	slotState := s.Slot(slot)
	if slotState == nil || !slotState.Rotated || slotState.Proposal == nil || slotState.Disrupted {
		return 0
	}

	var total types.Stake
	for _, v := range s.Validators {
		if v.Status != types.Honest {
			continue
		}
		if !s.Network.Connected(v.ID, slotState.Leader) {
			continue
		}
		total += v.Stake
	}
	return total
}

// FinalizedBlock returns the finalized ledger entry of a slot.
func (s *State) FinalizedBlock(slot types.Slot) (FinalizedBlock, bool) {
	for _, entry := range s.Finalized {
		if entry.Slot == slot {
			return entry, true
		}
	}
	return FinalizedBlock{}, false
}

func contains(ids []types.ValidatorID, id types.ValidatorID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
