// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/byzantine"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/properties"
	"github.com/ChainSafe/alpenglow/lib/transition"
	"github.com/google/uuid"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "verify"))

const (
	reasonStateLimit = "state limit reached"
	reasonTimeBudget = "time budget exhausted"
)

// Engine explores the executions of one configuration and checks the
// selected properties on them.
type Engine struct {
	config   model.Config
	mode     string
	initial  []*model.State
	machine  *transition.Machine
	suite    *properties.Suite
	observer Observer
}

// NewEngine validates the configuration and creates an engine for it.
// The observer may be nil.
func NewEngine(cfg model.Config, observer Observer) (*Engine, error) {
	initial, err := model.InitialStates(cfg)
	if err != nil {
		return nil, err
	}

	if observer == nil {
		observer = noopObserver{}
	}

	e := &Engine{
		config:   cfg,
		mode:     SelectMode(cfg.Validators, cfg.Exploration.Mode),
		initial:  initial,
		observer: observer,
	}

	e.suite, err = properties.NewSuite(&e.config)
	if err != nil {
		return nil, err
	}

	e.machine, err = newMachine(&e.config)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func newMachine(cfg *model.Config) (*transition.Machine, error) {
	assignments, err := byzantine.Assign(cfg)
	if err != nil {
		return nil, fmt.Errorf("assigning byzantine strategies: %w", err)
	}
	return transition.NewMachine(cfg, byzantine.NewAdversary(cfg, assignments))
}

// Mode returns the exploration mode of the engine.
func (e *Engine) Mode() string {
	return e.mode
}

// Close releases the resources of the engine.
func (e *Engine) Close() {
	e.machine.Close()
}

// Run explores the executions in the engine mode and returns the
// report. Exhausted budgets end the run with a partial report. Only
// engine faults and context errors other than the budget are returned.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if budget := e.config.Exploration.TimeBudget; budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	report := &Report{
		RunID:  uuid.New(),
		Mode:   e.mode,
		Config: e.config,
	}
	logger.Infof("run %s: checking %d properties over %d initial states in %s mode",
		report.RunID, len(e.suite.Properties()), len(e.initial), e.mode)

	start := time.Now()
	var err error
	switch e.mode {
	case model.ModeExhaustive:
		err = e.exhaustive(ctx, report)
	case model.ModeBounded:
		err = e.bounded(ctx, report)
	case model.ModeStatistical:
		err = e.statistical(ctx, report)
	default:
		err = fmt.Errorf("%w: unknown exploration mode %q", model.ErrConfiguration, e.mode)
	}
	if err != nil {
		return nil, err
	}
	report.Statistics.Duration = time.Since(start)

	if report.Partial {
		logger.Warnf("run %s is partial: %s", report.RunID, report.Reason)
	}
	logger.Infof("run %s done in %s: %d states, %d transitions, violations found: %t",
		report.RunID, report.Statistics.Duration, report.Statistics.States,
		report.Statistics.Transitions, report.Violated())
	return report, nil
}

// Run creates an engine for the configuration, runs it and closes it.
func Run(ctx context.Context, cfg model.Config, observer Observer) (*Report, error) {
	engine, err := NewEngine(cfg, observer)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	return engine.Run(ctx)
}

// apply applies the action and returns a nil state if it is rejected.
func (e *Engine) apply(state *model.State, action transition.Action) (*model.State, error) {
	next, err := e.machine.Apply(state, action)
	switch {
	case errors.Is(err, transition.ErrInvalidAction):
		e.observer.ActionsRejected(1)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %s", ErrEngineFault, err)
	}
	return next, nil
}

// check runs the property checks on a state, including the eventually
// properties if the state is terminal.
func (e *Engine) check(state *model.State, terminal bool) []properties.Violation {
	e.observer.StatesExplored(1)
	violations := e.suite.CheckState(state)
	if terminal {
		violations = append(violations, e.suite.CheckTerminal(state)...)
	}
	return violations
}

// buildTrace replays the actions from an initial state to rebuild the
// states of a trace.
func (e *Engine) buildTrace(distribution int, actions []transition.Action) (*Trace, error) {
	state := e.initial[distribution]
	trace := &Trace{
		Distribution: distribution,
		Initial:      state,
		Steps:        make([]Step, 0, len(actions)),
	}
	for _, action := range actions {
		next, err := e.machine.Apply(state, action)
		if err != nil {
			return nil, fmt.Errorf("%w: rebuilding trace at %s: %s", ErrEngineFault, action, err)
		}
		trace.Steps = append(trace.Steps, Step{Action: action, State: next})
		state = next
	}
	return trace, nil
}

// newTrace copies a search path into a trace. states holds the initial
// state followed by the state reached by each action.
func newTrace(distribution int, actions []transition.Action, states []*model.State) *Trace {
	trace := &Trace{
		Distribution: distribution,
		Initial:      states[0],
		Steps:        make([]Step, len(actions)),
	}
	for i, action := range actions {
		trace.Steps[i] = Step{Action: action, State: states[i+1]}
	}
	return trace
}

type finding struct {
	count  int
	reason string
	trace  *Trace
}

// tracker keeps, for each property, the number of violations and the
// shortest counterexample found.
type tracker struct {
	properties []properties.Property
	findings   map[string]*finding
	observer   Observer
}

func newTracker(selected []properties.Property, observer Observer) *tracker {
	return &tracker{
		properties: selected,
		findings:   make(map[string]*finding),
		observer:   observer,
	}
}

// record counts the violations found after length actions. build is
// only called when the trace is shorter than the known counterexample.
func (t *tracker) record(violations []properties.Violation, length int, build func() (*Trace, error)) error {
	for _, violation := range violations {
		t.observer.PropertyViolated(violation.Property)

		f, ok := t.findings[violation.Property]
		if !ok {
			f = new(finding)
			t.findings[violation.Property] = f
			logger.Warnf("property %s violated after %d actions: %s", violation.Property, length, violation.Reason)
		}
		f.count++

		if f.trace != nil && f.trace.Len() <= length {
			continue
		}
		trace, err := build()
		if err != nil {
			return err
		}
		f.trace = trace
		f.reason = violation.Reason
	}
	return nil
}

func (t *tracker) allViolated() bool {
	return len(t.findings) == len(t.properties)
}

// results returns one result per property. Properties without violation
// are completed by holds.
func (t *tracker) results(holds func(Result) Result) []Result {
	results := make([]Result, 0, len(t.properties))
	for _, property := range t.properties {
		result := Result{
			Property: property.Name,
			Kind:     property.Kind.String(),
		}

		f, ok := t.findings[property.Name]
		if !ok {
			results = append(results, holds(result))
			continue
		}

		result.Verdict = Violated
		result.Violations = f.count
		result.Reason = f.reason
		result.Counterexample = f.trace
		results = append(results, result)
	}
	return results
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
