// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import "math"

// Interval is a confidence interval on a rate.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Wilson returns the two sided Wilson score interval of the rate of
// successes over trials at the confidence level.
func Wilson(successes, trials int, confidence float64) Interval {
	if trials == 0 {
		return Interval{Lower: 0, Upper: 1}
	}

	z := zScore(confidence)
	n := float64(trials)
	p := float64(successes) / n
	z2 := z * z

	denominator := 1 + z2/n
	center := (p + z2/(2*n)) / denominator
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denominator

	return Interval{
		Lower: math.Max(0, center-margin),
		Upper: math.Min(1, center+margin),
	}
}

// zScore returns the standard normal quantile bounding the two sided
// interval at the confidence level.
func zScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}

// RequiredSamples returns the number of violation free samples needed
// to bound the violation rate by errorBound at the confidence level.
func RequiredSamples(confidence, errorBound float64) int {
	return int(math.Ceil(math.Log(1-confidence) / math.Log(1-errorBound)))
}
