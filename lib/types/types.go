// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"errors"
	"fmt"
)

// ValidatorID identifies a validator by its index in the validator set.
type ValidatorID uint32

// Slot is a consensus slot number, starting at 1.
type Slot uint32

// BlockID identifies a block proposal within a slot.
type BlockID uint32

// Stake is an amount of staked tokens.
type Stake uint64

// Tick is a unit of logical time.
type Tick uint64

// Path is the voting path a vote or certificate belongs to.
type Path uint8

const (
	// Fast is the single round path requiring 80% of the stake.
	Fast Path = iota
	// Slow is the two round path requiring 60% of the stake.
	Slow
)

// ErrUnknownPath is returned when decoding an unknown path name.
var ErrUnknownPath = errors.New("unknown path")

func (p Path) String() string {
	switch p {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	default:
		return fmt.Sprintf("path(%d)", p)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fast":
		*p = Fast
	case "slow":
		*p = Slow
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPath, text)
	}
	return nil
}

// Status is the behaviour of a validator, fixed for a run.
type Status uint8

const (
	// Honest validators follow the protocol.
	Honest Status = iota
	// Byzantine validators may deviate arbitrarily.
	Byzantine
	// Crashed validators take no action at all.
	Crashed
)

// ErrUnknownStatus is returned when decoding an unknown status name.
var ErrUnknownStatus = errors.New("unknown status")

func (s Status) String() string {
	switch s {
	case Honest:
		return "honest"
	case Byzantine:
		return "byzantine"
	case Crashed:
		return "crashed"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "honest":
		*s = Honest
	case "byzantine":
		*s = Byzantine
	case "crashed":
		*s = Crashed
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStatus, text)
	}
	return nil
}

// Weighted pairs a validator with the stake it is weighted by.
type Weighted struct {
	ID    ValidatorID `json:"id"`
	Stake Stake       `json:"stake"`
}

// TotalWeight returns the sum of the weights.
func TotalWeight(weights []Weighted) (total Stake) {
	for _, w := range weights {
		total += w.Stake
	}
	return total
}
