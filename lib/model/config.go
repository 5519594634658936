// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/go-playground/validator/v10"
)

// ErrConfiguration is returned for an inconsistent or invalid configuration.
// Configurations are never silently corrected.
var ErrConfiguration = errors.New("invalid configuration")

// Exploration modes that can be forced in the configuration.
const (
	ModeExhaustive  = "exhaustive"
	ModeBounded     = "bounded"
	ModeStatistical = "statistical"
)

// Config is the full description of a verification run.
type Config struct {
	Validators         int           `validate:"min=1"`
	Stakes             []types.Stake `validate:"required"`
	ExtraDistributions [][]types.Stake
	Byzantine          []types.ValidatorID
	Crashed            []types.ValidatorID
	Strategies         []string `validate:"omitempty,dive,oneof=equivocation withholding coalition timing"`

	FastThreshold      float64 `validate:"gt=0,lte=1"`
	SlowThreshold      float64 `validate:"gt=0,lte=1"`
	ByzantineThreshold float64 `validate:"gte=0,lte=1"`

	Redundancy              float64 `validate:"gte=1"`
	ReconstructionThreshold uint32  `validate:"min=1"`
	RelaysPerChunk          int     `validate:"min=1"`
	MinRelays               int     `validate:"min=1"`
	RequireAvailability     bool

	TimeoutThreshold int        `validate:"min=1"`
	WindowSize       uint32     `validate:"min=1"`
	MaxSlot          types.Slot `validate:"min=1"`
	SlotTicks        types.Tick `validate:"min=1"`
	FastLatency      types.Tick
	SlowLatency      types.Tick
	TimeoutTicks     types.Tick `validate:"min=1"`
	// Horizon is the last reachable tick. Zero derives it from the
	// slot count so that the last slot can still time out.
	Horizon types.Tick

	MaxPartitions int `validate:"gte=0"`
	// MaxFailures bounds the link failures injected in a run. A failed
	// validator has its messages delayed by FailureDelay ticks and lost
	// with probability LossRate for FailureTicks ticks.
	MaxFailures  int        `validate:"gte=0"`
	FailureDelay types.Tick
	FailureTicks types.Tick
	LossRate     float64 `validate:"gte=0,lte=1"`
	Seed         uint64

	Economics   EconomicConfig
	Exploration Exploration
}

// EconomicConfig holds the initial economic parameters.
type EconomicConfig struct {
	RewardRate     float64    `validate:"gte=0,lte=1"`
	SlashingRates  [4]float64 `validate:"dive,gte=0,lte=1"`
	RewardsPool    types.Stake
	MinActiveStake types.Stake
	StakeUnit      types.Stake
	ActionBudget   int          `validate:"gte=0"`
	Schedule       []Parameters `validate:"omitempty,dive"`
}

// Exploration holds the budgets of the verification engine.
type Exploration struct {
	Mode          string  `validate:"omitempty,oneof=exhaustive bounded statistical"`
	MaxStates     int     `validate:"min=1"`
	MaxDepth      int     `validate:"min=1"`
	Samples       int     `validate:"gte=0"`
	Workers       int     `validate:"min=1"`
	Confidence    float64 `validate:"gt=0,lt=1"`
	ErrorBound    float64 `validate:"gt=0,lt=1"`
	// TimeBudget stops the search when elapsed, zero means no limit.
	TimeBudget    time.Duration
	Properties    []string
	FairnessSlots int     `validate:"gte=0"`
	FairnessAlpha float64 `validate:"gt=0,lt=1"`
}

// DefaultConfig returns a configuration with equal stakes for the
// given number of validators.
func DefaultConfig(validators int) Config {
	stakes := make([]types.Stake, validators)
	for i := range stakes {
		stakes[i] = 100
	}

	return Config{
		Validators:              validators,
		Stakes:                  stakes,
		FastThreshold:           0.8,
		SlowThreshold:           0.6,
		ByzantineThreshold:      0.2,
		Redundancy:              1.6,
		ReconstructionThreshold: 5,
		RelaysPerChunk:          2,
		MinRelays:               1,
		TimeoutThreshold:        (2*validators + 2) / 3,
		WindowSize:              4,
		MaxSlot:                 2,
		SlotTicks:               3,
		FastLatency:             1,
		SlowLatency:             1,
		TimeoutTicks:            2,
		FailureDelay:            1,
		FailureTicks:            3,
		LossRate:                0.5,
		Seed:                    1,
		Economics: EconomicConfig{
			RewardRate:    0.05,
			SlashingRates: DefaultSlashingRates,
			RewardsPool:   types.Stake(1000 * validators),
			ActionBudget:  1,
		},
		Exploration: Exploration{
			MaxStates:     1_000_000,
			MaxDepth:      100,
			Samples:       10_000,
			Workers:       4,
			Confidence:    0.95,
			ErrorBound:    0.05,
			FairnessSlots: 2000,
			FairnessAlpha: 0.001,
		},
	}
}

// Validate checks the configuration invariants and returns an error
// wrapping ErrConfiguration on the first failure.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrConfiguration, err)
	}

	if len(c.Stakes) != c.Validators {
		return fmt.Errorf("%w: %d stakes given for %d validators",
			ErrConfiguration, len(c.Stakes), c.Validators)
	}

	distributions := append([][]types.Stake{c.Stakes}, c.ExtraDistributions...)
	for i, stakes := range distributions {
		if len(stakes) != c.Validators {
			return fmt.Errorf("%w: distribution %d has %d stakes for %d validators",
				ErrConfiguration, i, len(stakes), c.Validators)
		}
		if sumStakes(stakes) == 0 {
			return fmt.Errorf("%w: distribution %d has zero total stake", ErrConfiguration, i)
		}
		for id, stake := range stakes {
			if stake != 0 && stake < c.Economics.MinActiveStake {
				return fmt.Errorf("%w: distribution %d gives validator %d stake %d below minimum active stake %d",
					ErrConfiguration, i, id, stake, c.Economics.MinActiveStake)
			}
		}
	}

	if c.SlowThreshold > c.FastThreshold {
		return fmt.Errorf("%w: slow threshold %v exceeds fast threshold %v",
			ErrConfiguration, c.SlowThreshold, c.FastThreshold)
	}

	if c.TimeoutThreshold > c.Validators {
		return fmt.Errorf("%w: timeout threshold %d exceeds validator count %d",
			ErrConfiguration, c.TimeoutThreshold, c.Validators)
	}

	if c.MaxFailures > 0 && c.FailureTicks == 0 {
		return fmt.Errorf("%w: link failures enabled with a zero failure duration", ErrConfiguration)
	}

	if c.MinRelays > c.RelaysPerChunk {
		return fmt.Errorf("%w: minimum relays %d exceeds relays per chunk %d",
			ErrConfiguration, c.MinRelays, c.RelaysPerChunk)
	}

	statuses := make(map[types.ValidatorID]types.Status)
	for _, group := range []struct {
		ids    []types.ValidatorID
		status types.Status
	}{
		{ids: c.Byzantine, status: types.Byzantine},
		{ids: c.Crashed, status: types.Crashed},
	} {
		for _, id := range group.ids {
			if int(id) >= c.Validators {
				return fmt.Errorf("%w: %s validator %d out of range",
					ErrConfiguration, group.status, id)
			}
			if previous, ok := statuses[id]; ok {
				return fmt.Errorf("%w: validator %d is both %s and %s",
					ErrConfiguration, id, previous, group.status)
			}
			statuses[id] = group.status
		}
	}

	if c.Horizon != 0 && c.Horizon < c.SlotStart(c.MaxSlot) {
		return fmt.Errorf("%w: horizon %d ends before the last slot starts at %d",
			ErrConfiguration, c.Horizon, c.SlotStart(c.MaxSlot))
	}

	return nil
}

// SeedHash returns the blake2b digest of the seed, used as the
// leader rotation and relay sampling randomness.
func (c *Config) SeedHash() common.Hash {
	return common.MustBlake2bHash(common.Uint64Bytes(c.Seed))
}

// SlotStart returns the tick at which the slot begins.
func (c *Config) SlotStart(slot types.Slot) types.Tick {
	if slot == 0 {
		return 0
	}
	return types.Tick(slot-1) * c.SlotTicks
}

// FinalizationBound returns min(fast latency, 2 x slow latency), the
// longest time a slot may take from its start to certification.
func (c *Config) FinalizationBound() types.Tick {
	bound := 2 * c.SlowLatency
	if c.FastLatency < bound {
		bound = c.FastLatency
	}
	return bound
}

// VotingDeadline returns the last tick at which votes for the slot
// are delivered.
func (c *Config) VotingDeadline(slot types.Slot) types.Tick {
	return c.SlotStart(slot) + c.FinalizationBound()
}

// TimeoutDeadline returns the tick from which validators time out on the slot.
func (c *Config) TimeoutDeadline(slot types.Slot) types.Tick {
	return c.SlotStart(slot) + c.TimeoutTicks
}

// EffectiveHorizon returns the last reachable tick.
func (c *Config) EffectiveHorizon() types.Tick {
	if c.Horizon != 0 {
		return c.Horizon
	}
	return c.TimeoutDeadline(c.MaxSlot)
}

// CurrentSlot returns the slot in progress at the given tick.
func (c *Config) CurrentSlot(t types.Tick) types.Slot {
	return types.Slot(t/c.SlotTicks) + 1
}

func sumStakes(stakes []types.Stake) (total types.Stake) {
	for _, stake := range stakes {
		total += stake
	}
	return total
}
