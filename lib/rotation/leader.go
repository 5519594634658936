// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rotation

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var (
	// ErrNoStake is returned when the validator set carries no stake.
	ErrNoStake = errors.New("validator set has no stake")
	// ErrInvalidWindowSize is returned when the window size is zero.
	ErrInvalidWindowSize = errors.New("window size must be at least 1")
	// ErrInvalidSlot is returned for slot zero, slots start at 1.
	ErrInvalidSlot = errors.New("slots start at 1")
)

// Window is a run of consecutive slots with a precomputed leader schedule.
type Window struct {
	ID        uint32              `json:"id"`
	FirstSlot types.Slot          `json:"firstSlot"`
	LastSlot  types.Slot          `json:"lastSlot"`
	Leaders   []types.ValidatorID `json:"leaders"`
}

// Leader returns the leader of a slot inside the window.
func (w Window) Leader(slot types.Slot) (types.ValidatorID, bool) {
	if slot < w.FirstSlot || slot > w.LastSlot {
		return 0, false
	}
	return w.Leaders[slot-w.FirstSlot], true
}

// WindowOf returns the window id containing the slot.
func WindowOf(slot types.Slot, size uint32) uint32 {
	if slot == 0 || size == 0 {
		return 0
	}
	return (uint32(slot) - 1) / size
}

// Bounds returns the first and last slot of a window.
func Bounds(window, size uint32) (first, last types.Slot) {
	first = types.Slot(window*size + 1)
	last = types.Slot((window + 1) * size)
	return first, last
}

// LeaderForSlot picks the leader of a slot with probability proportional
// to stake. The draw is blake2b(seed || LE(slot)) reduced modulo the
// total stake.
func LeaderForSlot(seed common.Hash, slot types.Slot, weights []types.Weighted) (types.ValidatorID, error) {
	if slot == 0 {
		return 0, ErrInvalidSlot
	}

	total := types.TotalWeight(weights)
	if total == 0 {
		return 0, ErrNoStake
	}

	digest := common.Blake2bHashParts(seed[:], common.Uint64Bytes(uint64(slot)))
	randBig := new(big.Int).SetBytes(digest[:])
	num := new(big.Int).SetUint64(uint64(total))
	target := types.Stake(new(big.Int).Mod(randBig, num).Uint64())

	var cumulative types.Stake
	for _, w := range weights {
		cumulative += w.Stake
		if target < cumulative {
			return w.ID, nil
		}
	}

	// unreachable since target < total
	return weights[len(weights)-1].ID, nil
}

// ComputeWindow computes the leader schedule of a whole window.
func ComputeWindow(seed common.Hash, window, size uint32, weights []types.Weighted) (Window, error) {
	if size == 0 {
		return Window{}, ErrInvalidWindowSize
	}

	first, last := Bounds(window, size)
	leaders := make([]types.ValidatorID, 0, size)
	for slot := first; slot <= last; slot++ {
		leader, err := LeaderForSlot(seed, slot, weights)
		if err != nil {
			return Window{}, fmt.Errorf("computing leader for slot %d: %w", slot, err)
		}
		leaders = append(leaders, leader)
	}

	return Window{
		ID:        window,
		FirstSlot: first,
		LastSlot:  last,
		Leaders:   leaders,
	}, nil
}
