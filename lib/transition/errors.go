// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is matched by every rejection of an action whose
// preconditions do not hold in the state.
var ErrInvalidAction = errors.New("invalid action")

// Precondition failures
var (
	ErrUnknownValidator       = errors.New("unknown validator")
	ErrUnknownSlot            = errors.New("unknown slot")
	ErrNotHonest              = errors.New("validator is not honest")
	ErrNotByzantine           = errors.New("validator is not byzantine")
	ErrSlotNotStarted         = errors.New("slot has not started")
	ErrVotingClosed           = errors.New("voting deadline passed")
	ErrTimeoutNotReached      = errors.New("timeout deadline not reached")
	ErrLeaderNotRotated       = errors.New("slot leader not rotated")
	ErrLeaderRotated          = errors.New("slot leader already rotated")
	ErrNoProposal             = errors.New("slot has no proposal")
	ErrUnknownBlock           = errors.New("block was not proposed")
	ErrDisconnected           = errors.New("validator is disconnected from the leader")
	ErrUndeliverable          = errors.New("message is delayed or lost")
	ErrBlockUnavailable       = errors.New("block cannot be reconstructed")
	ErrSlotFinalized          = errors.New("slot already has a certificate")
	ErrSlotSkipped            = errors.New("slot already has a skip certificate")
	ErrAlreadyVoted           = errors.New("validator already voted on this path")
	ErrFastVoteMissing        = errors.New("slow vote requires a fast vote for the block")
	ErrTimedOut               = errors.New("validator timed out on the slot")
	ErrAlreadyTimedOut        = errors.New("validator already timed out on the slot")
	ErrQuorumNotMet           = errors.New("quorum not met")
	ErrConflictingCertificate = errors.New("slot has a certificate for another block")
	ErrCertificateExists      = errors.New("an equal or stronger certificate exists")
	ErrTimeoutThresholdNotMet = errors.New("timeout threshold not met")
	ErrChunkAvailable         = errors.New("chunk already available")
	ErrChunkOutOfRange        = errors.New("chunk index out of range")
	ErrRelayMismatch          = errors.New("relay set does not match the assignment")
	ErrNotEnoughRelays        = errors.New("not enough relays")
	ErrWithheld               = errors.New("leader withholds its chunks")
	ErrHorizonReached         = errors.New("time horizon reached")
	ErrUrgentAction           = errors.New("an urgent action is pending")
	ErrPartitionActive        = errors.New("a partition is already active")
	ErrNoPartition            = errors.New("no partition is active")
	ErrPartitionBudget        = errors.New("partition budget exhausted")
	ErrPartitionMismatch      = errors.New("partition sides do not match the split")
	ErrTooFewValidators       = errors.New("too few validators to partition")
	ErrFailureActive          = errors.New("validator links already failed")
	ErrFailureBudget          = errors.New("link failure budget exhausted")
	ErrWindowPassed           = errors.New("slot window is over")
	ErrWindowAhead            = errors.New("slot window is beyond the next window")
	ErrEmptyCoalition         = errors.New("coordinated vote without voters")
)

// RejectedError is returned when the preconditions of an action do
// not hold. It matches ErrInvalidAction and unwraps to the reason.
type RejectedError struct {
	Action Action
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidAction, e.Action, e.Err)
}

// Unwrap returns the reason of the rejection.
func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Is returns true for ErrInvalidAction.
func (e *RejectedError) Is(target error) bool {
	return target == ErrInvalidAction
}

func reject(action Action, err error) error {
	return &RejectedError{Action: action, Err: err}
}
