// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RequiredSamples(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		confidence float64
		errorBound float64
		samples    int
	}{
		"95% within 5%": {
			confidence: 0.95,
			errorBound: 0.05,
			samples:    59,
		},
		"99% within 1%": {
			confidence: 0.99,
			errorBound: 0.01,
			samples:    459,
		},
		"50% within 50%": {
			confidence: 0.5,
			errorBound: 0.5,
			samples:    1,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			samples := RequiredSamples(testCase.confidence, testCase.errorBound)
			assert.Equal(t, testCase.samples, samples)
		})
	}
}

func Test_Wilson(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		successes int
		trials    int
		interval  Interval
	}{
		"no trial": {
			interval: Interval{Lower: 0, Upper: 1},
		},
		"no success": {
			trials:   59,
			interval: Interval{Lower: 0, Upper: 0.0611},
		},
		"half": {
			successes: 5,
			trials:    10,
			interval:  Interval{Lower: 0.2366, Upper: 0.7634},
		},
		"all": {
			successes: 10,
			trials:    10,
			interval:  Interval{Lower: 0.7225, Upper: 1},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			interval := Wilson(testCase.successes, testCase.trials, 0.95)
			assert.InDelta(t, testCase.interval.Lower, interval.Lower, 1e-3)
			assert.InDelta(t, testCase.interval.Upper, interval.Upper, 1e-3)
		})
	}
}

func Test_zScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.95996, zScore(0.95), 1e-4)
	assert.InDelta(t, 2.57583, zScore(0.99), 1e-4)
}
