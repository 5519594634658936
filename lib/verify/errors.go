// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import "errors"

var (
	// ErrEngineFault is returned when the exploration engine finds itself
	// in an inconsistent state, such as two states sharing a hash.
	ErrEngineFault = errors.New("engine fault")
	// ErrInsufficientSample is the reason given for properties left
	// indeterminate by a statistical run with too few samples.
	ErrInsufficientSample = errors.New("insufficient sample")
	// ErrReplayMismatch is returned when replaying a trace does not
	// reproduce a recorded state.
	ErrReplayMismatch = errors.New("replay mismatch")
	ErrUnknownVerdict = errors.New("unknown verdict")
)
