// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package erasure

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// ErrNoStake is returned when no validator has stake to be sampled from.
var ErrNoStake = errors.New("no validator with stake")

// AssignRelays picks, for every chunk of the block, relaysPerChunk distinct
// validators with probability proportional to their stake. The draw is
// deterministic for a given seed and block.
func AssignRelays(seed common.Hash, block *Block, weights []types.Weighted, relaysPerChunk int) error {
	candidates := make([]types.Weighted, 0, len(weights))
	for _, w := range weights {
		if w.Stake > 0 {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return ErrNoStake
	}

	if relaysPerChunk > len(candidates) {
		relaysPerChunk = len(candidates)
	}

	for i := range block.Chunks {
		relays, err := sampleWithoutReplacement(seed, block, uint32(i), candidates, relaysPerChunk)
		if err != nil {
			return fmt.Errorf("sampling relays for chunk %d: %w", i, err)
		}
		block.Chunks[i].Relays = relays
	}
	return nil
}

func sampleWithoutReplacement(seed common.Hash, block *Block, chunk uint32,
	candidates []types.Weighted, count int) ([]types.ValidatorID, error) {
	remaining := append([]types.Weighted(nil), candidates...)
	picked := make([]types.ValidatorID, 0, count)

	for draw := 0; draw < count; draw++ {
		total := types.TotalWeight(remaining)
		if total == 0 {
			return nil, ErrNoStake
		}

		digest := common.Blake2bHashParts(seed[:],
			common.Uint64Bytes(uint64(block.Slot)),
			common.Uint64Bytes(uint64(block.ID)),
			common.Uint64Bytes(uint64(chunk)),
			common.Uint64Bytes(uint64(draw)))
		target := types.Stake(binary.LittleEndian.Uint64(digest[:8]) % uint64(total))

		index := pickWeighted(remaining, target)
		picked = append(picked, remaining[index].ID)
		remaining = append(remaining[:index], remaining[index+1:]...)
	}

	return mergeIDs(nil, picked), nil
}

// pickWeighted returns the index of the weight whose cumulative range
// contains target.
func pickWeighted(weights []types.Weighted, target types.Stake) int {
	var cumulative types.Stake
	for i, w := range weights {
		cumulative += w.Stake
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
