// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package byzantine

import (
	"github.com/ChainSafe/alpenglow/lib/economics"
	"github.com/ChainSafe/alpenglow/lib/model"
)

// Deviation evaluates a strategy as a deviation from honest behaviour.
type Deviation struct {
	Kind Kind
}

// Name returns the strategy name.
func (d Deviation) Name() string {
	return d.Kind.String()
}

// Profile returns the expected outcome of the strategy, penalised at
// the slashing rate of its severity.
func (d Deviation) Profile(fraction float64, params model.Parameters) economics.Profile {
	estimate := d.Kind.Estimate(fraction)
	return economics.Profile{
		Success:     estimate.Success,
		Detection:   estimate.Detection,
		PenaltyRate: params.SlashingRate(estimate.Severity),
	}
}

// Deviations returns a deviation for every strategy.
func Deviations() []economics.Deviation {
	deviations := make([]economics.Deviation, len(Kinds))
	for i, kind := range Kinds {
		deviations[i] = Deviation{Kind: kind}
	}
	return deviations
}
