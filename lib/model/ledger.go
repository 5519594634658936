// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/types"
)

// Severity grades a protocol violation and selects its slashing rate.
type Severity uint8

const (
	// Minor violations such as isolated liveness faults.
	Minor Severity = iota
	// Moderate violations such as conflicting votes across paths.
	Moderate
	// Severe violations such as double voting on one path.
	Severe
	// Critical violations such as coordinated attacks.
	Critical
)

// DefaultSlashingRates are the slashing rates indexed by severity.
var DefaultSlashingRates = [4]float64{0.05, 0.15, 0.30, 0.50}

// ErrUnknownSeverity is returned when decoding an unknown severity name.
var ErrUnknownSeverity = errors.New("unknown severity")

var severityNames = [...]string{"minor", "moderate", "severe", "critical"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSeverity, text)
}

// EvidenceKind is the kind of misbehaviour a slashing evidence proves.
type EvidenceKind uint8

const (
	// DoubleVote is two votes for different blocks on the same path and slot.
	DoubleVote EvidenceKind = iota
	// CrossPathEquivocation is votes for different blocks on different paths.
	CrossPathEquivocation
	// CoordinatedAttack is double voting by several validators in one slot.
	CoordinatedAttack
)

var evidenceKindNames = [...]string{"double-vote", "cross-path-equivocation", "coordinated-attack"}

func (k EvidenceKind) String() string {
	if int(k) < len(evidenceKindNames) {
		return evidenceKindNames[k]
	}
	return fmt.Sprintf("evidence(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k EvidenceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EvidenceKind) UnmarshalText(text []byte) error {
	for i, name := range evidenceKindNames {
		if name == string(text) {
			*k = EvidenceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown evidence kind: %s", text)
}

// Severity returns the severity attached to the evidence kind.
func (k EvidenceKind) Severity() Severity {
	switch k {
	case DoubleVote:
		return Severe
	case CrossPathEquivocation:
		return Moderate
	default:
		return Critical
	}
}

// Evidence is a slashing evidence record.
type Evidence struct {
	Kind      EvidenceKind      `json:"kind"`
	Violator  types.ValidatorID `json:"violator"`
	Slot      types.Slot        `json:"slot"`
	Severity  Severity          `json:"severity"`
	Reporter  types.ValidatorID `json:"reporter"`
	Timestamp types.Tick        `json:"timestamp"`
	Applied   bool              `json:"applied"`
	Amount    types.Stake       `json:"amount"`
}

// Parameters are the economic rates in force.
type Parameters struct {
	RewardRate    float64    `json:"rewardRate" validate:"gte=0,lte=1"`
	SlashingRates [4]float64 `json:"slashingRates" validate:"dive,gte=0,lte=1"`
}

// SlashingRate returns the slashing rate for a severity.
func (p Parameters) SlashingRate(severity Severity) float64 {
	if int(severity) >= len(p.SlashingRates) {
		return 0
	}
	return p.SlashingRates[severity]
}

// Ledger is the economic ledger carried by every state. Staked balances
// live on the validators, the ledger tracks everything else.
type Ledger struct {
	Pending        []types.Stake `json:"pending"`
	Pool           types.Stake   `json:"pool"`
	InitialSupply  types.Stake   `json:"initialSupply"`
	TotalSlashed   types.Stake   `json:"totalSlashed"`
	TotalDeposited types.Stake   `json:"totalDeposited"`
	TotalWithdrawn types.Stake   `json:"totalWithdrawn"`
	Evidence       []Evidence    `json:"evidence,omitempty"`
	Params         Parameters    `json:"params"`
	RewardedEpochs []uint32      `json:"rewardedEpochs,omitempty"`
	ParamUpdates   int           `json:"paramUpdates"`
	ActionsUsed    int           `json:"actionsUsed"`
}

// HasEvidence returns true if evidence of the given kind against the
// violator for the slot was already reported.
func (l *Ledger) HasEvidence(kind EvidenceKind, violator types.ValidatorID, slot types.Slot) bool {
	for _, evidence := range l.Evidence {
		if evidence.Kind == kind && evidence.Violator == violator && evidence.Slot == slot {
			return true
		}
	}
	return false
}

// Rewarded returns true if rewards for the epoch were distributed.
func (l *Ledger) Rewarded(epoch uint32) bool {
	for _, rewarded := range l.RewardedEpochs {
		if rewarded == epoch {
			return true
		}
	}
	return false
}
