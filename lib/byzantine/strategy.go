// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package byzantine

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// ErrUnknownStrategy is returned when parsing a strategy name that does not exist.
var ErrUnknownStrategy = errors.New("unknown byzantine strategy")

// Kind is a byzantine strategy.
type Kind uint8

const (
	// Equivocation votes for two different blocks in the same slot.
	Equivocation Kind = iota
	// SelectiveWithholding never relays chunks and never votes.
	SelectiveWithholding
	// Coalition has all attackers vote for the conflicting block together.
	Coalition
	// StrategicTiming delays votes until the voting deadline.
	StrategicTiming
)

// Kinds lists every strategy.
var Kinds = []Kind{Equivocation, SelectiveWithholding, Coalition, StrategicTiming}

type profile struct {
	name      string
	required  float64
	detection float64
	severity  model.Severity
}

var profiles = [...]profile{
	Equivocation:         {name: "equivocation", required: 0.2, detection: 0.9, severity: model.Severe},
	SelectiveWithholding: {name: "withholding", required: 0.4, detection: 0.2, severity: model.Minor},
	Coalition:            {name: "coalition", required: 0.2, detection: 0.6, severity: model.Critical},
	StrategicTiming:      {name: "timing", required: 0, detection: 0.3, severity: model.Moderate},
}

// ParseKind returns the strategy with the name given.
func ParseKind(name string) (Kind, error) {
	for i, p := range profiles {
		if p.name == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func (k Kind) String() string {
	if int(k) < len(profiles) {
		return profiles[k].name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the strategy by name.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(profiles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(k))
	}
	return []byte(profiles[k].name), nil
}

// UnmarshalText decodes a strategy name.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// RequiredStakeFraction returns the stake fraction the attackers need
// for the strategy to succeed with certainty.
func (k Kind) RequiredStakeFraction() float64 {
	return profiles[k].required
}

// Withholds returns true if validators following the strategy never relay chunks.
func (k Kind) Withholds() bool {
	return k == SelectiveWithholding
}

// Estimate is the expected outcome of a strategy.
type Estimate struct {
	Success   float64
	Detection float64
	Severity  model.Severity
}

// Estimate returns the expected outcome of the strategy for attackers
// controlling the stake fraction given. Success grows linearly up to
// the required stake fraction.
func (k Kind) Estimate(fraction float64) Estimate {
	p := profiles[k]
	success := 1.0
	if p.required > 0 {
		success = fraction / p.required
	}
	if success < 0 {
		success = 0
	}
	if success > 1 {
		success = 1
	}

	return Estimate{
		Success:   success,
		Detection: p.detection,
		Severity:  p.severity,
	}
}

// Actions returns the actions the attackers take in the state with the
// strategy, for every slot open for voting.
func (k Kind) Actions(cfg *model.Config, state *model.State, attackers []types.ValidatorID) (
	actions []transition.Action) {
	if len(attackers) == 0 {
		return nil
	}

	for i := range state.Slots {
		slotState := &state.Slots[i]
		if !slotState.Rotated || slotState.Decided() {
			continue
		}
		slot := slotState.Slot
		if state.Time < cfg.SlotStart(slot) || state.Time > cfg.VotingDeadline(slot) {
			continue
		}

		switch k {
		case Equivocation:
			for _, attacker := range attackers {
				actions = append(actions,
					vote(attacker, slot, model.CanonicalBlock, types.Fast),
					vote(attacker, slot, model.ConflictingBlock, types.Fast),
					vote(attacker, slot, model.ConflictingBlock, types.Slow),
				)
			}
		case Coalition:
			for _, path := range []types.Path{types.Fast, types.Slow} {
				actions = append(actions, transition.Action{
					Kind:   transition.CoordinatedVote,
					Voters: append([]types.ValidatorID(nil), attackers...),
					Slot:   slot,
					Block:  model.ConflictingBlock,
					Path:   path,
				})
			}
		case StrategicTiming:
			if state.Time != cfg.VotingDeadline(slot) {
				continue
			}
			for _, attacker := range attackers {
				actions = append(actions, vote(attacker, slot, model.CanonicalBlock, types.Fast))
			}
		}
	}
	return actions
}

func vote(validator types.ValidatorID, slot types.Slot, block types.BlockID, path types.Path) transition.Action {
	return transition.Action{
		Kind:      transition.ByzantineVote,
		Validator: validator,
		Slot:      slot,
		Block:     block,
		Path:      path,
	}
}
