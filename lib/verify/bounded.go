// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
)

type visit struct {
	depth       int
	fingerprint uint64
}

// depthSearch is a depth first search down to a depth limit. A state is
// explored again only when reached at a shallower depth than before.
type depthSearch struct {
	engine   *Engine
	report   *Report
	tracker  *tracker
	maxDepth int
	visited  map[common.Hash]visit

	distribution int
	actions      []transition.Action
	states       []*model.State
	stopped      bool
}

func (e *Engine) bounded(ctx context.Context, report *Report) error {
	s := &depthSearch{
		engine:   e,
		report:   report,
		tracker:  newTracker(e.suite.Properties(), e.observer),
		maxDepth: e.config.Exploration.MaxDepth,
		visited:  make(map[common.Hash]visit),
	}

	for i, state := range e.initial {
		digest, err := state.Digest()
		if err != nil {
			return fmt.Errorf("%w: %s", ErrEngineFault, err)
		}
		if _, ok := s.visited[digest.Hash]; ok {
			continue
		}
		s.visited[digest.Hash] = visit{fingerprint: digest.Fingerprint}

		s.distribution = i
		s.states = append(s.states[:0], state)
		s.actions = s.actions[:0]
		if err := s.explore(ctx, state, 0); err != nil {
			return err
		}
		if s.stopped {
			break
		}
	}
	report.Statistics.Distinct = len(s.visited)

	report.Results = s.tracker.results(func(result Result) Result {
		if report.Partial {
			result.Verdict = Indeterminate
			result.Reason = report.Reason
			return result
		}
		result.Verdict = VerifiedUpToDepth
		result.Depth = s.maxDepth
		return result
	})
	return nil
}

func (s *depthSearch) explore(ctx context.Context, state *model.State, depth int) error {
	if ctx.Err() != nil {
		s.report.Partial, s.report.Reason = true, reasonTimeBudget
		s.stopped = true
		return nil
	}

	stats := &s.report.Statistics
	stats.States++
	if depth > stats.Depth {
		stats.Depth = depth
	}

	enabled := s.engine.machine.Enabled(state)
	terminal := len(enabled) == 0
	if terminal {
		stats.Terminal++
	}
	violations := s.engine.check(state, terminal)
	err := s.tracker.record(violations, depth, func() (*Trace, error) {
		return newTrace(s.distribution, s.actions, s.states), nil
	})
	if err != nil {
		return err
	}
	if s.tracker.allViolated() {
		s.stopped = true
		return nil
	}

	if terminal {
		return nil
	}
	if depth >= s.maxDepth {
		stats.Truncated++
		return nil
	}

	for _, action := range enabled {
		next, err := s.engine.apply(state, action)
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
		seen, ok := s.visited[digest.Hash]
		switch {
		case ok && seen.fingerprint != digest.Fingerprint:
			return fmt.Errorf("%w: hash collision on state %s", ErrEngineFault, digest.Hash.Short())
		case ok && seen.depth <= depth+1:
			continue
		case !ok && len(s.visited) >= s.engine.config.Exploration.MaxStates:
			if !s.report.Partial {
				logger.Warnf("state limit %d reached at depth %d", len(s.visited), depth+1)
			}
			s.report.Partial, s.report.Reason = true, reasonStateLimit
			continue
		}
		s.visited[digest.Hash] = visit{depth: depth + 1, fingerprint: digest.Fingerprint}

		s.actions = append(s.actions, action)
		s.states = append(s.states, next)
		err = s.explore(ctx, next, depth+1)
		s.actions = s.actions[:len(s.actions)-1]
		s.states = s.states[:len(s.states)-1]
		if err != nil {
			return err
		}
		if s.stopped {
			return nil
		}
	}
	return nil
}
