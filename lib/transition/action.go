// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// ErrUnknownKind is returned when decoding or applying an action kind
// that does not exist.
var ErrUnknownKind = errors.New("unknown action kind")

// Kind identifies an action of the catalogue.
type Kind uint8

// Action kinds
const (
	AdvanceTime Kind = iota
	Vote
	ByzantineVote
	CoordinatedVote
	Certify
	Timeout
	SkipCertify
	PropagateChunk
	RotateLeader
	DistributeRewards
	SlashValidator
	StakeDeposit
	StakeWithdrawal
	ReportSlashing
	UpdateEconomicParameters
	NetworkPartition
	HealPartition
	InjectNetworkFailure
)

var kindNames = [...]string{
	AdvanceTime:              "AdvanceTime",
	Vote:                     "Vote",
	ByzantineVote:            "ByzantineVote",
	CoordinatedVote:          "CoordinatedVote",
	Certify:                  "Certify",
	Timeout:                  "Timeout",
	SkipCertify:              "SkipCertify",
	PropagateChunk:           "PropagateChunk",
	RotateLeader:             "RotateLeader",
	DistributeRewards:        "DistributeRewards",
	SlashValidator:           "SlashValidator",
	StakeDeposit:             "StakeDeposit",
	StakeWithdrawal:          "StakeWithdrawal",
	ReportSlashing:           "ReportSlashing",
	UpdateEconomicParameters: "UpdateEconomicParameters",
	NetworkPartition:         "NetworkPartition",
	HealPartition:            "HealPartition",
	InjectNetworkFailure:     "InjectNetworkFailure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, text)
}

// Action is one step of a protocol execution. Only the fields relevant
// to the kind are set.
type Action struct {
	Kind Kind `json:"kind"`

	Validator types.ValidatorID `json:"validator,omitempty"`
	Slot      types.Slot        `json:"slot,omitempty"`
	Block     types.BlockID     `json:"block,omitempty"`
	Path      types.Path        `json:"path,omitempty"`

	// Voters are the members of a coordinated vote.
	Voters []types.ValidatorID `json:"voters,omitempty"`

	Chunk  uint32              `json:"chunk,omitempty"`
	Relays []types.ValidatorID `json:"relays,omitempty"`

	Epoch        uint32             `json:"epoch,omitempty"`
	Evidence     int                `json:"evidence,omitempty"`
	EvidenceKind model.EvidenceKind `json:"evidenceKind,omitempty"`

	SideA []types.ValidatorID `json:"sideA,omitempty"`
	SideB []types.ValidatorID `json:"sideB,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case AdvanceTime, HealPartition, UpdateEconomicParameters:
		return a.Kind.String()
	case Vote, ByzantineVote:
		return fmt.Sprintf("%s(validator=%d, slot=%d, block=%d, %s)",
			a.Kind, a.Validator, a.Slot, a.Block, a.Path)
	case CoordinatedVote:
		return fmt.Sprintf("%s(voters=%v, slot=%d, block=%d, %s)",
			a.Kind, a.Voters, a.Slot, a.Block, a.Path)
	case Certify:
		return fmt.Sprintf("%s(slot=%d, block=%d, %s)", a.Kind, a.Slot, a.Block, a.Path)
	case Timeout:
		return fmt.Sprintf("%s(validator=%d, slot=%d)", a.Kind, a.Validator, a.Slot)
	case SkipCertify, RotateLeader:
		return fmt.Sprintf("%s(slot=%d)", a.Kind, a.Slot)
	case PropagateChunk:
		return fmt.Sprintf("%s(slot=%d, chunk=%d, relays=%v)", a.Kind, a.Slot, a.Chunk, a.Relays)
	case DistributeRewards:
		return fmt.Sprintf("%s(epoch=%d)", a.Kind, a.Epoch)
	case SlashValidator:
		return fmt.Sprintf("%s(evidence=%d)", a.Kind, a.Evidence)
	case StakeDeposit, StakeWithdrawal, InjectNetworkFailure:
		return fmt.Sprintf("%s(validator=%d)", a.Kind, a.Validator)
	case ReportSlashing:
		return fmt.Sprintf("%s(%s, validator=%d, slot=%d)", a.Kind, a.EvidenceKind, a.Validator, a.Slot)
	case NetworkPartition:
		return fmt.Sprintf("%s(%v | %v)", a.Kind, a.SideA, a.SideB)
	default:
		return a.Kind.String()
	}
}
