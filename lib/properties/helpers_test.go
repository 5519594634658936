// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package properties

import (
	"sort"
	"testing"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/stretchr/testify/require"
)

// runToTerminal takes the first enabled action until none is left and
// returns every state visited, the terminal state last.
func runToTerminal(t *testing.T, config model.Config) []*model.State {
	t.Helper()

	states, err := model.InitialStates(config)
	require.NoError(t, err)
	machine, err := transition.NewMachine(&config, nil)
	require.NoError(t, err)
	defer machine.Close()

	trace := []*model.State{states[0]}
	for step := 0; step < 1000; step++ {
		state := trace[len(trace)-1]
		enabled := machine.Enabled(state)
		if len(enabled) == 0 {
			return trace
		}
		next, err := machine.Apply(state, enabled[0])
		require.NoError(t, err)
		trace = append(trace, next)
	}
	require.FailNow(t, "no terminal state reached")
	return nil
}

func violatedProperties(violations []Violation) []string {
	names := make([]string, 0, len(violations))
	for _, violation := range violations {
		names = append(names, violation.Property)
	}
	sort.Strings(names)
	return names
}

func withoutFinalized(state *model.State, slot types.Slot) {
	entries := state.Finalized[:0]
	for _, entry := range state.Finalized {
		if entry.Slot != slot {
			entries = append(entries, entry)
		}
	}
	state.Finalized = entries
}
