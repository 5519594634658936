// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"fmt"
	"math"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
)

// node is a state of the arena. Only the states of the frontier and of
// the roots are kept, the others are rebuilt from the parent links.
type node struct {
	state       *model.State
	fingerprint uint64
	parent      int
	action      transition.Action
	depth       int
	root        int
}

// exhaustive runs a breadth first search of the reachable states. States
// are dequeued by increasing depth, so the first violation found for a
// property has the shortest trace.
func (e *Engine) exhaustive(ctx context.Context, report *Report) error {
	stats := &report.Statistics
	tracker := newTracker(e.suite.Properties(), e.observer)
	maxStates := e.config.Exploration.MaxStates

	var nodes []node
	index := make(map[common.Hash]int)
	for i, state := range e.initial {
		digest, err := state.Digest()
		if err != nil {
			return fmt.Errorf("%w: %s", ErrEngineFault, err)
		}
		if _, ok := index[digest.Hash]; ok {
			continue
		}
		index[digest.Hash] = len(nodes)
		nodes = append(nodes, node{state: state, fingerprint: digest.Fingerprint, parent: -1, root: i})
	}

	// checkedDepth is the depth up to which every reachable state was
	// checked, lowered when a budget cuts the search.
	checkedDepth := math.MaxInt

	for head := 0; head < len(nodes); head++ {
		current := nodes[head]
		if ctx.Err() != nil {
			report.Partial, report.Reason = true, reasonTimeBudget
			checkedDepth = minInt(checkedDepth, current.depth-1)
			break
		}

		state := current.state
		if current.depth > stats.Depth {
			stats.Depth = current.depth
		}
		stats.States++

		enabled := e.machine.Enabled(state)
		terminal := len(enabled) == 0
		if terminal {
			stats.Terminal++
		}
		violations := e.check(state, terminal)
		err := tracker.record(violations, current.depth, func() (*Trace, error) {
			return e.traceTo(nodes, head)
		})
		if err != nil {
			return err
		}
		if tracker.allViolated() {
			logger.Debugf("every property violated after %d states", stats.States)
			break
		}

		for _, action := range enabled {
			next, err := e.apply(state, action)
			if err != nil {
				return err
			}
			if next == nil {
				stats.Rejected++
				continue
			}
			stats.Transitions++

			digest, err := next.Digest()
			if err != nil {
				return fmt.Errorf("%w: %s", ErrEngineFault, err)
			}
			if seen, ok := index[digest.Hash]; ok {
				if nodes[seen].fingerprint != digest.Fingerprint {
					return fmt.Errorf("%w: hash collision on state %s", ErrEngineFault, digest.Hash.Short())
				}
				continue
			}
			if len(nodes) >= maxStates {
				if !report.Partial {
					logger.Warnf("state limit %d reached at depth %d", maxStates, current.depth+1)
				}
				report.Partial, report.Reason = true, reasonStateLimit
				checkedDepth = minInt(checkedDepth, current.depth)
				continue
			}

			index[digest.Hash] = len(nodes)
			nodes = append(nodes, node{
				state:       next,
				fingerprint: digest.Fingerprint,
				parent:      head,
				action:      action,
				depth:       current.depth + 1,
				root:        current.root,
			})
		}

		if current.parent >= 0 {
			nodes[head].state = nil
		}
	}
	stats.Distinct = len(nodes)

	report.Results = tracker.results(func(result Result) Result {
		switch {
		case !report.Partial:
			result.Verdict = Verified
			result.Confidence = 1
		case checkedDepth >= 0:
			result.Verdict = VerifiedUpToDepth
			result.Depth = checkedDepth
		default:
			result.Verdict = Indeterminate
			result.Reason = report.Reason
		}
		return result
	})
	return nil
}

// traceTo rebuilds the trace leading to the node.
func (e *Engine) traceTo(nodes []node, i int) (*Trace, error) {
	var actions []transition.Action
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		actions = append(actions, nodes[i].action)
	}
	for left, right := 0, len(actions)-1; left < right; left, right = left+1, right-1 {
		actions[left], actions[right] = actions[right], actions[left]
	}
	return e.buildTrace(nodes[i].root, actions)
}
