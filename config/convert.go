// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"
	"time"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// FromModel converts a model configuration to its TOML representation.
func FromModel(cfg model.Config) *Config {
	c := &Config{
		Global: GlobalConfig{
			Seed: cfg.Seed,
		},
		Validators: ValidatorsConfig{
			Count:              cfg.Validators,
			Stakes:             fromStakes(cfg.Stakes),
			Byzantine:          fromIDs(cfg.Byzantine),
			Crashed:            fromIDs(cfg.Crashed),
			Strategies:         cfg.Strategies,
			FastThreshold:      cfg.FastThreshold,
			SlowThreshold:      cfg.SlowThreshold,
			ByzantineThreshold: cfg.ByzantineThreshold,
		},
		Erasure: ErasureConfig{
			Redundancy:              cfg.Redundancy,
			ReconstructionThreshold: cfg.ReconstructionThreshold,
			RelaysPerChunk:          cfg.RelaysPerChunk,
			MinRelays:               cfg.MinRelays,
			RequireAvailability:     cfg.RequireAvailability,
		},
		Timing: TimingConfig{
			TimeoutThreshold: cfg.TimeoutThreshold,
			WindowSize:       cfg.WindowSize,
			MaxSlot:          uint32(cfg.MaxSlot),
			SlotTicks:        uint64(cfg.SlotTicks),
			FastLatency:      uint64(cfg.FastLatency),
			SlowLatency:      uint64(cfg.SlowLatency),
			TimeoutTicks:     uint64(cfg.TimeoutTicks),
			Horizon:          uint64(cfg.Horizon),
			MaxPartitions:    cfg.MaxPartitions,
			MaxFailures:      cfg.MaxFailures,
			FailureDelay:     uint64(cfg.FailureDelay),
			FailureTicks:     uint64(cfg.FailureTicks),
			LossRate:         cfg.LossRate,
		},
		Economics: EconomicsConfig{
			RewardRate:     cfg.Economics.RewardRate,
			SlashingRates:  append([]float64(nil), cfg.Economics.SlashingRates[:]...),
			RewardsPool:    uint64(cfg.Economics.RewardsPool),
			MinActiveStake: uint64(cfg.Economics.MinActiveStake),
			StakeUnit:      uint64(cfg.Economics.StakeUnit),
			ActionBudget:   cfg.Economics.ActionBudget,
		},
		Exploration: ExplorationConfig{
			Mode:          cfg.Exploration.Mode,
			MaxStates:     cfg.Exploration.MaxStates,
			MaxDepth:      cfg.Exploration.MaxDepth,
			Samples:       cfg.Exploration.Samples,
			Workers:       cfg.Exploration.Workers,
			Confidence:    cfg.Exploration.Confidence,
			ErrorBound:    cfg.Exploration.ErrorBound,
			Properties:    cfg.Exploration.Properties,
			FairnessSlots: cfg.Exploration.FairnessSlots,
			FairnessAlpha: cfg.Exploration.FairnessAlpha,
		},
	}

	for _, stakes := range cfg.ExtraDistributions {
		c.Validators.Distributions = append(c.Validators.Distributions, fromStakes(stakes))
	}
	for _, parameters := range cfg.Economics.Schedule {
		c.Economics.Schedule = append(c.Economics.Schedule, ParametersConfig{
			RewardRate:    parameters.RewardRate,
			SlashingRates: append([]float64(nil), parameters.SlashingRates[:]...),
		})
	}
	if cfg.Exploration.TimeBudget > 0 {
		c.Exploration.TimeBudget = cfg.Exploration.TimeBudget.String()
	}

	return c
}

// ToModel converts the configuration to a model configuration and
// validates it. Errors wrap model.ErrConfiguration.
func (c *Config) ToModel() (cfg model.Config, err error) {
	cfg = model.Config{
		Validators:              c.Validators.Count,
		Stakes:                  toStakes(c.Validators.Stakes),
		Byzantine:               toIDs(c.Validators.Byzantine),
		Crashed:                 toIDs(c.Validators.Crashed),
		Strategies:              c.Validators.Strategies,
		FastThreshold:           c.Validators.FastThreshold,
		SlowThreshold:           c.Validators.SlowThreshold,
		ByzantineThreshold:      c.Validators.ByzantineThreshold,
		Redundancy:              c.Erasure.Redundancy,
		ReconstructionThreshold: c.Erasure.ReconstructionThreshold,
		RelaysPerChunk:          c.Erasure.RelaysPerChunk,
		MinRelays:               c.Erasure.MinRelays,
		RequireAvailability:     c.Erasure.RequireAvailability,
		TimeoutThreshold:        c.Timing.TimeoutThreshold,
		WindowSize:              c.Timing.WindowSize,
		MaxSlot:                 types.Slot(c.Timing.MaxSlot),
		SlotTicks:               types.Tick(c.Timing.SlotTicks),
		FastLatency:             types.Tick(c.Timing.FastLatency),
		SlowLatency:             types.Tick(c.Timing.SlowLatency),
		TimeoutTicks:            types.Tick(c.Timing.TimeoutTicks),
		Horizon:                 types.Tick(c.Timing.Horizon),
		MaxPartitions:           c.Timing.MaxPartitions,
		MaxFailures:             c.Timing.MaxFailures,
		FailureDelay:            types.Tick(c.Timing.FailureDelay),
		FailureTicks:            types.Tick(c.Timing.FailureTicks),
		LossRate:                c.Timing.LossRate,
		Seed:                    c.Global.Seed,
		Economics: model.EconomicConfig{
			RewardRate:     c.Economics.RewardRate,
			RewardsPool:    types.Stake(c.Economics.RewardsPool),
			MinActiveStake: types.Stake(c.Economics.MinActiveStake),
			StakeUnit:      types.Stake(c.Economics.StakeUnit),
			ActionBudget:   c.Economics.ActionBudget,
		},
		Exploration: model.Exploration{
			Mode:          c.Exploration.Mode,
			MaxStates:     c.Exploration.MaxStates,
			MaxDepth:      c.Exploration.MaxDepth,
			Samples:       c.Exploration.Samples,
			Workers:       c.Exploration.Workers,
			Confidence:    c.Exploration.Confidence,
			ErrorBound:    c.Exploration.ErrorBound,
			Properties:    c.Exploration.Properties,
			FairnessSlots: c.Exploration.FairnessSlots,
			FairnessAlpha: c.Exploration.FairnessAlpha,
		},
	}

	for _, stakes := range c.Validators.Distributions {
		cfg.ExtraDistributions = append(cfg.ExtraDistributions, toStakes(stakes))
	}

	cfg.Economics.SlashingRates, err = toRates(c.Economics.SlashingRates)
	if err != nil {
		return cfg, fmt.Errorf("economics: %w", err)
	}
	for i, entry := range c.Economics.Schedule {
		rates, err := toRates(entry.SlashingRates)
		if err != nil {
			return cfg, fmt.Errorf("economics schedule entry %d: %w", i, err)
		}
		cfg.Economics.Schedule = append(cfg.Economics.Schedule, model.Parameters{
			RewardRate:    entry.RewardRate,
			SlashingRates: rates,
		})
	}

	if c.Exploration.TimeBudget != "" {
		cfg.Exploration.TimeBudget, err = time.ParseDuration(c.Exploration.TimeBudget)
		if err != nil {
			return cfg, fmt.Errorf("%w: time budget: %s", model.ErrConfiguration, err)
		}
	}

	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func toRates(rates []float64) (array [4]float64, err error) {
	if len(rates) != len(array) {
		return array, fmt.Errorf("%w: %d slashing rates given, one per severity expected (%d)",
			model.ErrConfiguration, len(rates), len(array))
	}
	copy(array[:], rates)
	return array, nil
}

func fromStakes(stakes []types.Stake) []uint64 {
	values := make([]uint64, len(stakes))
	for i, stake := range stakes {
		values[i] = uint64(stake)
	}
	return values
}

func toStakes(values []uint64) []types.Stake {
	stakes := make([]types.Stake, len(values))
	for i, value := range values {
		stakes[i] = types.Stake(value)
	}
	return stakes
}

func fromIDs(ids []types.ValidatorID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	values := make([]uint32, len(ids))
	for i, id := range ids {
		values[i] = uint32(id)
	}
	return values
}

func toIDs(values []uint32) []types.ValidatorID {
	if len(values) == 0 {
		return nil
	}
	ids := make([]types.ValidatorID, len(values))
	for i, value := range values {
		ids[i] = types.ValidatorID(value)
	}
	return ids
}
