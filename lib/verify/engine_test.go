// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/properties"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewEngine(t *testing.T) {
	t.Parallel()

	config := testConfig("", properties.Safety)
	engine, err := NewEngine(config, nil)
	require.NoError(t, err)
	defer engine.Close()
	assert.Equal(t, model.ModeExhaustive, engine.Mode())

	config.Exploration.Properties = []string{"liveness"}
	_, err = NewEngine(config, nil)
	assert.ErrorIs(t, err, properties.ErrUnknownProperty)

	config = testConfig("")
	config.FastThreshold = 1.5
	_, err = NewEngine(config, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func Test_Engine_exhaustiveVerified(t *testing.T) {
	t.Parallel()

	config := testConfig(model.ModeExhaustive,
		properties.Safety, properties.CertificateValidity,
		properties.ErasureAvailability, properties.EconomicInvariants)
	report := runEngine(t, config, nil)

	assert.False(t, report.Partial)
	assert.False(t, report.Violated())
	for _, result := range report.Results {
		assert.Equal(t, Verified, result.Verdict, result.Property)
		assert.Equal(t, 1.0, result.Confidence)
		assert.Nil(t, result.Counterexample)
	}

	stats := report.Statistics
	assert.Equal(t, stats.States, stats.Distinct)
	assert.Greater(t, stats.States, 1)
	assert.Greater(t, stats.Terminal, 0)
	assert.GreaterOrEqual(t, stats.Transitions, stats.States-1)
}

func Test_Engine_exhaustiveCounterexample(t *testing.T) {
	t.Parallel()

	config := freeSlashingConfig(model.ModeExhaustive)
	report := runEngine(t, config, nil)
	require.True(t, report.Violated())

	safety, ok := report.Result(properties.Safety)
	require.True(t, ok)
	assert.Equal(t, Verified, safety.Verdict)

	equilibrium, ok := report.Result(properties.EconomicEquilibrium)
	require.True(t, ok)
	assert.Equal(t, Violated, equilibrium.Verdict)
	assert.Equal(t, "eventually", equilibrium.Kind)
	assert.Contains(t, equilibrium.Reason, "validator 0 gains")
	assert.Equal(t, report.Statistics.Terminal, equilibrium.Violations)

	trace := equilibrium.Counterexample
	require.NotNil(t, trace)
	require.Greater(t, trace.Len(), 0)
	requireTerminal(t, config, trace.Final())
	require.NoError(t, Replay(config, trace))

	// No terminal state is shallower than the counterexample.
	bounded := config
	bounded.Exploration.Mode = model.ModeBounded
	bounded.Exploration.MaxDepth = trace.Len() - 1
	shallow := runEngine(t, bounded, nil)
	result, ok := shallow.Result(properties.EconomicEquilibrium)
	require.True(t, ok)
	assert.Equal(t, VerifiedUpToDepth, result.Verdict)
}

func Test_Engine_exhaustiveStateLimit(t *testing.T) {
	t.Parallel()

	config := testConfig(model.ModeExhaustive, properties.Safety)
	config.Exploration.MaxStates = 5
	report := runEngine(t, config, nil)

	assert.True(t, report.Partial)
	assert.Equal(t, reasonStateLimit, report.Reason)
	assert.Equal(t, 5, report.Statistics.Distinct)

	result := report.Results[0]
	assert.Equal(t, VerifiedUpToDepth, result.Verdict)
	assert.Less(t, result.Depth, report.Statistics.Depth+1)
}

func Test_Engine_cancelled(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		mode string
	}{
		"exhaustive":  {mode: model.ModeExhaustive},
		"bounded":     {mode: model.ModeBounded},
		"statistical": {mode: model.ModeStatistical},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			config := testConfig(testCase.mode, properties.Safety)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			report, err := Run(ctx, config, nil)
			require.NoError(t, err)
			assert.True(t, report.Partial)
			assert.Equal(t, reasonTimeBudget, report.Reason)
			require.Len(t, report.Results, 1)
			assert.Equal(t, Indeterminate, report.Results[0].Verdict)
		})
	}
}

func Test_Engine_bounded(t *testing.T) {
	t.Parallel()

	config := testConfig(model.ModeBounded, properties.Safety, properties.CertificateValidity)
	config.Exploration.MaxDepth = 4
	report := runEngine(t, config, nil)

	assert.False(t, report.Partial)
	assert.Equal(t, 4, report.Statistics.Depth)
	assert.Greater(t, report.Statistics.Truncated, 0)
	for _, result := range report.Results {
		assert.Equal(t, VerifiedUpToDepth, result.Verdict, result.Property)
		assert.Equal(t, 4, result.Depth)
	}
}

func Test_Engine_boundedCounterexample(t *testing.T) {
	t.Parallel()

	config := freeSlashingConfig(model.ModeBounded)
	report := runEngine(t, config, nil)

	result, ok := report.Result(properties.EconomicEquilibrium)
	require.True(t, ok)
	require.Equal(t, Violated, result.Verdict)
	require.NotNil(t, result.Counterexample)
	requireTerminal(t, config, result.Counterexample.Final())
	assert.NoError(t, Replay(config, result.Counterexample))
}

func Test_Engine_statistical(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		samples int
		verdict Verdict
		reason  string
	}{
		"enough samples": {
			samples: 59,
			verdict: StatisticallyVerified,
		},
		"too few samples": {
			samples: 10,
			verdict: Indeterminate,
			reason:  "insufficient sample: 10 of 59 required samples",
		},
		"no sample": {
			verdict: Indeterminate,
			reason:  "insufficient sample: 0 of 59 required samples",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			config := testConfig(model.ModeStatistical, properties.Safety)
			config.Exploration.Samples = testCase.samples
			report := runEngine(t, config, nil)

			assert.False(t, report.Partial)
			assert.Equal(t, testCase.samples, report.Statistics.Samples)
			assert.Equal(t, 59, report.Statistics.Required)

			result := report.Results[0]
			assert.Equal(t, testCase.verdict, result.Verdict)
			assert.Equal(t, testCase.reason, result.Reason)
			assert.Equal(t, testCase.samples, result.Samples)
			assert.Equal(t, 0.95, result.Confidence)
			require.NotNil(t, result.Interval)
			assert.Equal(t, Wilson(0, testCase.samples, 0.95), *result.Interval)
		})
	}
}

func Test_Engine_statisticalCounterexample(t *testing.T) {
	t.Parallel()

	config := freeSlashingConfig(model.ModeStatistical)
	config.Exploration.Samples = 20
	report := runEngine(t, config, nil)

	assert.Equal(t, 20, report.Statistics.Samples)
	assert.Equal(t, 20, report.Statistics.Terminal)
	assert.Greater(t, report.Statistics.Coverage, uint64(0))

	result, ok := report.Result(properties.EconomicEquilibrium)
	require.True(t, ok)
	assert.Equal(t, Violated, result.Verdict)
	assert.Equal(t, 20, result.Violations)
	assert.Equal(t, Wilson(20, 20, 0.95), *result.Interval)

	require.NotNil(t, result.Counterexample)
	requireTerminal(t, config, result.Counterexample.Final())
	assert.NoError(t, Replay(config, result.Counterexample))
}

func Test_Engine_observer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	observer := NewMockObserver(ctrl)
	observer.EXPECT().StatesExplored(1).MinTimes(1)
	observer.EXPECT().ActionsRejected(gomock.Any()).AnyTimes()
	observer.EXPECT().PropertyViolated(properties.EconomicEquilibrium).MinTimes(1)
	observer.EXPECT().SampleCompleted().Times(5)

	config := freeSlashingConfig(model.ModeStatistical)
	config.Exploration.Samples = 5
	runEngine(t, config, observer)
}
