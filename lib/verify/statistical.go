// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/properties"
	"github.com/ChainSafe/alpenglow/lib/transition"
	bloomfilter "github.com/holiman/bloomfilter/v2"
	"golang.org/x/sync/errgroup"
)

const (
	coverageBits   = 8 * 1024 * 1024 * 8
	coverageHashes = 4
)

// firstViolation is the first violation of a property in a sample and
// the number of actions taken before it.
type firstViolation struct {
	violation properties.Violation
	step      int
}

type sample struct {
	index        int
	distribution int
	states       int
	transitions  int
	rejected     int
	depth        int
	terminal     bool
	truncated    bool
	fingerprints []uint64
	violations   []firstViolation

	// path is only kept for samples with a violation.
	actions []transition.Action
	path    []*model.State
}

func (s *sample) observe(violations []properties.Violation, step int) {
	for _, violation := range violations {
		seen := false
		for _, first := range s.violations {
			if first.violation.Property == violation.Property {
				seen = true
				break
			}
		}
		if !seen {
			s.violations = append(s.violations, firstViolation{violation: violation, step: step})
		}
	}
}

// statistical runs random executions on a pool of workers. Each sample
// is seeded from the configuration seed and its index, and samples are
// reduced in index order, so the report does not depend on scheduling.
func (e *Engine) statistical(ctx context.Context, report *Report) error {
	exploration := e.config.Exploration
	report.Statistics.Required = RequiredSamples(exploration.Confidence, exploration.ErrorBound)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	samples := make(chan *sample, exploration.Workers)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(jobs)
		for i := 0; i < exploration.Samples; i++ {
			select {
			case jobs <- i:
			case <-groupCtx.Done():
				return nil
			}
		}
		return nil
	})
	for w := 0; w < exploration.Workers; w++ {
		group.Go(func() error {
			for index := range jobs {
				s, err := e.walk(groupCtx, index)
				if err != nil {
					return err
				}
				if s == nil {
					return nil
				}
				select {
				case samples <- s:
				case <-groupCtx.Done():
					return nil
				}
			}
			return nil
		})
	}

	var groupErr error
	go func() {
		groupErr = group.Wait()
		close(samples)
	}()

	r, err := newReducer(e, report)
	if err != nil {
		return err
	}
	for s := range samples {
		if err := r.add(s); err != nil {
			return err
		}
	}
	if groupErr != nil {
		return groupErr
	}
	if err := r.flush(); err != nil {
		return err
	}

	completed := report.Statistics.Samples
	if completed < exploration.Samples {
		report.Partial, report.Reason = true, reasonTimeBudget
	}
	report.Statistics.Coverage = r.coverage

	report.Results = r.tracker.results(func(result Result) Result {
		result.Confidence = exploration.Confidence
		if completed < report.Statistics.Required {
			result.Verdict = Indeterminate
			result.Reason = fmt.Sprintf("%s: %d of %d required samples",
				ErrInsufficientSample, completed, report.Statistics.Required)
		} else {
			result.Verdict = StatisticallyVerified
		}
		return result
	})
	for i := range report.Results {
		result := &report.Results[i]
		result.Samples = completed
		interval := Wilson(result.Violations, completed, exploration.Confidence)
		result.Interval = &interval
	}
	return nil
}

// walk runs the random execution of the sample index given. It returns
// nil if the context is done before the execution ends.
func (e *Engine) walk(ctx context.Context, index int) (*sample, error) {
	seed := common.Fingerprint(e.config.Seed, common.Uint64Bytes(uint64(index)))
	random := rand.New(rand.NewSource(int64(seed))) //nolint:gosec

	s := &sample{
		index:        index,
		distribution: random.Intn(len(e.initial)),
	}
	state := e.initial[s.distribution]
	s.path = append(s.path, state)

	for step := 0; ; step++ {
		if ctx.Err() != nil {
			return nil, nil
		}

		digest, err := state.Digest()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrEngineFault, err)
		}
		s.fingerprints = append(s.fingerprints, digest.Fingerprint)
		s.states++
		s.depth = step

		enabled := e.machine.Enabled(state)
		s.terminal = len(enabled) == 0
		s.observe(e.check(state, s.terminal), step)
		if s.terminal {
			break
		}
		if step >= e.config.Exploration.MaxDepth {
			s.truncated = true
			break
		}

		action, next, err := e.pick(random, state, enabled, s)
		if err != nil {
			return nil, err
		}
		s.transitions++
		s.actions = append(s.actions, action)
		s.path = append(s.path, next)
		state = next
	}

	if len(s.violations) == 0 {
		s.actions, s.path = nil, nil
	}
	return s, nil
}

// pick applies a uniformly drawn enabled action, drawing again if the
// action is rejected.
func (e *Engine) pick(random *rand.Rand, state *model.State, enabled []transition.Action, s *sample) (
	transition.Action, *model.State, error) {
	candidates := append([]transition.Action(nil), enabled...)
	for len(candidates) > 0 {
		i := random.Intn(len(candidates))
		action := candidates[i]
		next, err := e.apply(state, action)
		if err != nil {
			return transition.Action{}, nil, err
		}
		if next != nil {
			return action, next, nil
		}
		s.rejected++
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	return transition.Action{}, nil, fmt.Errorf("%w: none of %d enabled actions applies at time %d",
		ErrEngineFault, len(enabled), state.Time)
}

type fingerprintHasher uint64

func (f fingerprintHasher) Write(p []byte) (n int, err error) { panic("not implemented") }
func (f fingerprintHasher) Sum(b []byte) []byte               { panic("not implemented") }
func (f fingerprintHasher) Reset()                            { panic("not implemented") }
func (f fingerprintHasher) BlockSize() int                    { panic("not implemented") }
func (f fingerprintHasher) Size() int                         { return 8 }
func (f fingerprintHasher) Sum64() uint64                     { return uint64(f) }

// reducer is the single aggregation point of the samples.
type reducer struct {
	engine  *Engine
	report  *Report
	tracker *tracker

	bloom    *bloomfilter.Filter
	coverage uint64

	next    int
	pending map[int]*sample
}

func newReducer(e *Engine, report *Report) (*reducer, error) {
	bloom, err := bloomfilter.New(coverageBits, coverageHashes)
	if err != nil {
		return nil, fmt.Errorf("creating coverage filter: %w", err)
	}
	return &reducer{
		engine:  e,
		report:  report,
		tracker: newTracker(e.suite.Properties(), e.observer),
		bloom:   bloom,
		pending: make(map[int]*sample),
	}, nil
}

// add buffers the sample and reduces every sample now in sequence.
func (r *reducer) add(s *sample) error {
	r.pending[s.index] = s
	for {
		next, ok := r.pending[r.next]
		if !ok {
			return nil
		}
		delete(r.pending, r.next)
		r.next++
		if err := r.reduce(next); err != nil {
			return err
		}
	}
}

// flush reduces the samples left after a gap in the sequence.
func (r *reducer) flush() error {
	indexes := make([]int, 0, len(r.pending))
	for index := range r.pending {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		if err := r.reduce(r.pending[index]); err != nil {
			return err
		}
		delete(r.pending, index)
	}
	return nil
}

func (r *reducer) reduce(s *sample) error {
	r.engine.observer.SampleCompleted()

	stats := &r.report.Statistics
	stats.Samples++
	stats.States += s.states
	stats.Transitions += s.transitions
	stats.Rejected += s.rejected
	if s.depth > stats.Depth {
		stats.Depth = s.depth
	}
	if s.terminal {
		stats.Terminal++
	}
	if s.truncated {
		stats.Truncated++
	}

	for _, fingerprint := range s.fingerprints {
		if r.bloom.Contains(fingerprintHasher(fingerprint)) {
			continue
		}
		r.bloom.Add(fingerprintHasher(fingerprint))
		r.coverage++
	}

	for _, first := range s.violations {
		first := first
		err := r.tracker.record([]properties.Violation{first.violation}, first.step, func() (*Trace, error) {
			return newTrace(s.distribution, s.actions[:first.step], s.path[:first.step+1]), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
