// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/qdm12/gotree"
)

// Verdict is the outcome of checking one property.
type Verdict uint8

// Verdicts
const (
	Verified Verdict = iota
	Violated
	VerifiedUpToDepth
	StatisticallyVerified
	Indeterminate
)

var verdictNames = [...]string{
	Verified:              "verified",
	Violated:              "violated",
	VerifiedUpToDepth:     "verified-up-to-depth",
	StatisticallyVerified: "statistically-verified",
	Indeterminate:         "indeterminate",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return fmt.Sprintf("Verdict(%d)", uint8(v))
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	if int(v) >= len(verdictNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVerdict, uint8(v))
	}
	return []byte(verdictNames[v]), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(text []byte) error {
	for i, name := range verdictNames {
		if name == string(text) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownVerdict, text)
}

// Step is an action and the state it leads to.
type Step struct {
	Action transition.Action `json:"action"`
	State  *model.State      `json:"state"`
}

// Trace is an execution starting from the initial state of one of the
// configured stake distributions.
type Trace struct {
	Distribution int          `json:"distribution"`
	Initial      *model.State `json:"initial"`
	Steps        []Step       `json:"steps"`
}

// Len returns the number of actions of the trace.
func (t *Trace) Len() int {
	return len(t.Steps)
}

// Final returns the last state of the trace.
func (t *Trace) Final() *model.State {
	if len(t.Steps) == 0 {
		return t.Initial
	}
	return t.Steps[len(t.Steps)-1].State
}

// Actions returns the actions of the trace in order.
func (t *Trace) Actions() []transition.Action {
	actions := make([]transition.Action, len(t.Steps))
	for i, step := range t.Steps {
		actions[i] = step.Action
	}
	return actions
}

// String returns a printable tree of the trace actions.
func (t *Trace) String() string {
	tree := gotree.New("Trace from distribution %d", t.Distribution)
	for i, step := range t.Steps {
		tree.Appendf("%d: %s", i+1, step.Action)
	}
	return tree.String()
}

// Result is the outcome of one property.
type Result struct {
	Property string  `json:"property"`
	Kind     string  `json:"kind"`
	Verdict  Verdict `json:"verdict"`
	// Depth is the depth up to which the property was checked.
	Depth int `json:"depth,omitempty"`
	// Samples and Violations count the executions sampled and the
	// executions, or states in the searches, violating the property.
	Samples    int       `json:"samples,omitempty"`
	Violations int       `json:"violations,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Interval   *Interval `json:"interval,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	// Counterexample is the shortest violating execution found.
	Counterexample *Trace `json:"counterexample,omitempty"`
}

// Statistics describe the work done by a run.
type Statistics struct {
	States      int `json:"states"`
	Distinct    int `json:"distinct"`
	Transitions int `json:"transitions"`
	Rejected    int `json:"rejected"`
	Terminal    int `json:"terminal"`
	Truncated   int `json:"truncated"`
	Depth       int `json:"depth"`
	Samples     int `json:"samples,omitempty"`
	Required    int `json:"requiredSamples,omitempty"`
	// Coverage is the estimated number of distinct states sampled.
	Coverage uint64        `json:"coverage,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the result of a verification run.
type Report struct {
	RunID      uuid.UUID    `json:"runId"`
	Mode       string       `json:"mode"`
	Partial    bool         `json:"partial"`
	Reason     string       `json:"reason,omitempty"`
	Config     model.Config `json:"config"`
	Results    []Result     `json:"results"`
	Statistics Statistics   `json:"statistics"`
}

// Violated returns true if any property is violated.
func (r *Report) Violated() bool {
	for _, result := range r.Results {
		if result.Verdict == Violated {
			return true
		}
	}
	return false
}

// Result returns the result of the property with the name given.
func (r *Report) Result(property string) (result Result, ok bool) {
	for _, result := range r.Results {
		if result.Property == property {
			return result, true
		}
	}
	return result, false
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Encode writes the report as JSON, compressed with zstd if compress
// is true.
func (r *Report) Encode(w io.Writer, compress bool) error {
	if !compress {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return nil
	}

	compressor, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := json.NewEncoder(compressor).Encode(r); err != nil {
		_ = compressor.Close()
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// DecodeReport reads a report written by Encode, compressed or not.
func DecodeReport(r io.Reader) (*Report, error) {
	buffered := bufio.NewReader(r)
	var reader io.Reader = buffered

	magic, err := buffered.Peek(len(zstdMagic))
	if err == nil && bytes.Equal(magic, zstdMagic) {
		decompressor, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer decompressor.Close()
		reader = decompressor
	}

	report := new(Report)
	if err := json.NewDecoder(reader).Decode(report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return report, nil
}

// Replay applies the actions of the trace from the initial state of its
// stake distribution and checks that every recorded state is reproduced.
func Replay(cfg model.Config, trace *Trace) error {
	initial, err := model.InitialStates(cfg)
	if err != nil {
		return err
	}
	if trace.Distribution < 0 || trace.Distribution >= len(initial) {
		return fmt.Errorf("%w: distribution %d of %d", ErrReplayMismatch, trace.Distribution, len(initial))
	}

	machine, err := newMachine(&cfg)
	if err != nil {
		return err
	}
	defer machine.Close()

	state := initial[trace.Distribution]
	if trace.Initial != nil {
		if err := sameState(state, trace.Initial); err != nil {
			return fmt.Errorf("initial state: %w", err)
		}
	}

	for i, step := range trace.Steps {
		next, err := machine.Apply(state, step.Action)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if step.State != nil {
			if err := sameState(next, step.State); err != nil {
				return fmt.Errorf("step %d (%s): %w", i, step.Action, err)
			}
		}
		state = next
	}
	return nil
}

func sameState(actual, recorded *model.State) error {
	actualHash, err := actual.Hash()
	if err != nil {
		return err
	}
	recordedHash, err := recorded.Hash()
	if err != nil {
		return err
	}
	if actualHash != recordedHash {
		return fmt.Errorf("%w: state %s, recorded %s", ErrReplayMismatch, actualHash.Short(), recordedHash.Short())
	}
	return nil
}
