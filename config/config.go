// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

// Config is the TOML representation of a verification run.
type Config struct {
	Global      GlobalConfig      `toml:"global,omitempty"`
	Validators  ValidatorsConfig  `toml:"validators,omitempty"`
	Erasure     ErasureConfig     `toml:"erasure,omitempty"`
	Timing      TimingConfig      `toml:"timing,omitempty"`
	Economics   EconomicsConfig   `toml:"economics,omitempty"`
	Exploration ExplorationConfig `toml:"exploration,omitempty"`
}

// GlobalConfig is to marshal/unmarshal toml global config vars
type GlobalConfig struct {
	LogLvl         string `toml:"log,omitempty"`
	LogFormat      string `toml:"log-format,omitempty"`
	LogCaller      string `toml:"log-caller,omitempty"`
	Seed           uint64 `toml:"seed"`
	Output         string `toml:"output,omitempty"`
	Compress       bool   `toml:"compress,omitempty"`
	MetricsAddress string `toml:"metrics-address,omitempty"`
	PprofAddress   string `toml:"pprof-address,omitempty"`
}

// ValidatorsConfig describes the validator set and its faults.
type ValidatorsConfig struct {
	Count              int        `toml:"count,omitempty"`
	Stakes             []uint64   `toml:"stakes,omitempty"`
	Distributions      [][]uint64 `toml:"distributions,omitempty"`
	Byzantine          []uint32   `toml:"byzantine,omitempty"`
	Crashed            []uint32   `toml:"crashed,omitempty"`
	Strategies         []string   `toml:"strategies,omitempty"`
	FastThreshold      float64    `toml:"fast-threshold,omitempty"`
	SlowThreshold      float64    `toml:"slow-threshold,omitempty"`
	ByzantineThreshold float64    `toml:"byzantine-threshold"`
}

// ErasureConfig holds the block dissemination parameters.
type ErasureConfig struct {
	Redundancy              float64 `toml:"redundancy,omitempty"`
	ReconstructionThreshold uint32  `toml:"reconstruction-threshold,omitempty"`
	RelaysPerChunk          int     `toml:"relays-per-chunk,omitempty"`
	MinRelays               int     `toml:"min-relays,omitempty"`
	RequireAvailability     bool    `toml:"require-availability"`
}

// TimingConfig holds the slot, latency and timeout parameters in ticks.
type TimingConfig struct {
	TimeoutThreshold int     `toml:"timeout-threshold,omitempty"`
	WindowSize       uint32  `toml:"window-size,omitempty"`
	MaxSlot          uint32  `toml:"max-slot,omitempty"`
	SlotTicks        uint64  `toml:"slot-ticks,omitempty"`
	FastLatency      uint64  `toml:"fast-latency"`
	SlowLatency      uint64  `toml:"slow-latency"`
	TimeoutTicks     uint64  `toml:"timeout-ticks,omitempty"`
	Horizon          uint64  `toml:"horizon"`
	MaxPartitions    int     `toml:"max-partitions"`
	MaxFailures      int     `toml:"max-failures"`
	FailureDelay     uint64  `toml:"failure-delay"`
	FailureTicks     uint64  `toml:"failure-ticks"`
	LossRate         float64 `toml:"loss-rate"`
}

// EconomicsConfig holds the initial economic parameters.
type EconomicsConfig struct {
	RewardRate     float64            `toml:"reward-rate"`
	SlashingRates  []float64          `toml:"slashing-rates,omitempty"`
	RewardsPool    uint64             `toml:"rewards-pool"`
	MinActiveStake uint64             `toml:"min-active-stake"`
	StakeUnit      uint64             `toml:"stake-unit"`
	ActionBudget   int                `toml:"action-budget"`
	Schedule       []ParametersConfig `toml:"schedule,omitempty"`
}

// ParametersConfig is one entry of the governance schedule.
type ParametersConfig struct {
	RewardRate    float64   `toml:"reward-rate"`
	SlashingRates []float64 `toml:"slashing-rates"`
}

// ExplorationConfig holds the verification engine budgets.
type ExplorationConfig struct {
	Mode          string   `toml:"mode,omitempty"`
	MaxStates     int      `toml:"max-states,omitempty"`
	MaxDepth      int      `toml:"max-depth,omitempty"`
	Samples       int      `toml:"samples"`
	Workers       int      `toml:"workers,omitempty"`
	Confidence    float64  `toml:"confidence,omitempty"`
	ErrorBound    float64  `toml:"error-bound,omitempty"`
	TimeBudget    string   `toml:"time-budget,omitempty"`
	Properties    []string `toml:"properties,omitempty"`
	FairnessSlots int      `toml:"fairness-slots"`
	FairnessAlpha float64  `toml:"fairness-alpha,omitempty"`
}
