// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rotation

import (
	"math"

	"github.com/ChainSafe/alpenglow/lib/types"
)

// FairnessResult is the outcome of a chi-square goodness of fit test of
// observed leader counts against the stake distribution.
type FairnessResult struct {
	Statistic        float64 `json:"statistic"`
	DegreesOfFreedom int     `json:"degreesOfFreedom"`
	CriticalValue    float64 `json:"criticalValue"`
	Samples          int     `json:"samples"`
	Fair             bool    `json:"fair"`
}

// ChiSquare tests whether leader counts are consistent with stake
// proportional selection at significance level alpha. A validator
// without stake that was selected anyway makes the result unfair.
func ChiSquare(counts map[types.ValidatorID]int, weights []types.Weighted, alpha float64) FairnessResult {
	total := types.TotalWeight(weights)

	samples := 0
	for _, count := range counts {
		samples += count
	}

	result := FairnessResult{Samples: samples, Fair: true}
	if samples == 0 || total == 0 {
		return result
	}

	staked := make(map[types.ValidatorID]struct{}, len(weights))
	categories := 0
	for _, w := range weights {
		if w.Stake == 0 {
			continue
		}
		staked[w.ID] = struct{}{}
		categories++

		expected := float64(samples) * float64(w.Stake) / float64(total)
		diff := float64(counts[w.ID]) - expected
		result.Statistic += diff * diff / expected
	}

	for id, count := range counts {
		if _, ok := staked[id]; !ok && count > 0 {
			result.Statistic = math.Inf(1)
		}
	}

	result.DegreesOfFreedom = categories - 1
	if result.DegreesOfFreedom < 1 {
		result.Fair = !math.IsInf(result.Statistic, 0)
		return result
	}

	result.CriticalValue = ChiSquareCritical(result.DegreesOfFreedom, alpha)
	result.Fair = result.Statistic <= result.CriticalValue
	return result
}

// ChiSquareCritical approximates the upper alpha quantile of the
// chi-square distribution with the Wilson-Hilferty transformation.
func ChiSquareCritical(dof int, alpha float64) float64 {
	k := float64(dof)
	z := math.Sqrt2 * math.Erfinv(1-2*alpha)
	term := 1 - 2/(9*k) + z*math.Sqrt(2/(9*k))
	return k * term * term * term
}
