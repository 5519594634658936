// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package erasure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var (
	// ErrInvalidThreshold is returned when the reconstruction threshold is zero.
	ErrInvalidThreshold = errors.New("reconstruction threshold must be at least 1")
	// ErrInvalidRedundancy is returned when the redundancy factor is below 1.
	ErrInvalidRedundancy = errors.New("redundancy factor must be at least 1")
	// ErrChunkIndexOutOfRange is returned when a chunk index is not part of the block.
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")
	// ErrNotEnoughChunks is returned when reconstruction is attempted with
	// fewer available chunks than the threshold.
	ErrNotEnoughChunks = errors.New("not enough chunks to reconstruct block")
)

// redundancyEpsilon absorbs the representation error of k*r for decimal
// redundancy factors such as 1.6.
const redundancyEpsilon = 1e-9

// Chunk is one erasure coded piece of a block.
type Chunk struct {
	Index   uint32              `json:"index"`
	Hash    common.Hash         `json:"hash"`
	Relays  []types.ValidatorID `json:"relays,omitempty"`
	Holders []types.ValidatorID `json:"holders,omitempty"`
}

// Available returns true once at least one validator holds the chunk.
func (c Chunk) Available() bool {
	return len(c.Holders) > 0
}

// Block is a block proposal split into erasure coded chunks.
// Any Threshold available chunks are enough to rebuild it.
type Block struct {
	Slot            types.Slot        `json:"slot"`
	ID              types.BlockID     `json:"id"`
	Leader          types.ValidatorID `json:"leader"`
	Redundancy      float64           `json:"redundancy"`
	Threshold       uint32            `json:"threshold"`
	Chunks          []Chunk           `json:"chunks"`
	Reconstructable bool              `json:"reconstructable"`
}

// ChunkCount returns the total number of chunks n = ceil(k * r).
func ChunkCount(threshold uint32, redundancy float64) (uint32, error) {
	if threshold < 1 {
		return 0, ErrInvalidThreshold
	}
	if redundancy < 1 || math.IsNaN(redundancy) || math.IsInf(redundancy, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRedundancy, redundancy)
	}
	return uint32(math.Ceil(float64(threshold)*redundancy - redundancyEpsilon)), nil
}

// NewBlock creates the erasure coded form of a block. No chunk is
// available until it has been relayed.
func NewBlock(slot types.Slot, id types.BlockID, leader types.ValidatorID,
	threshold uint32, redundancy float64) (*Block, error) {
	n, err := ChunkCount(threshold, redundancy)
	if err != nil {
		return nil, fmt.Errorf("computing chunk count: %w", err)
	}

	chunks := make([]Chunk, n)
	for i := range chunks {
		chunks[i] = Chunk{
			Index: uint32(i),
			Hash: common.Blake2bHashParts(
				common.Uint64Bytes(uint64(slot)),
				common.Uint64Bytes(uint64(id)),
				common.Uint64Bytes(uint64(i)),
			),
		}
	}

	return &Block{
		Slot:       slot,
		ID:         id,
		Leader:     leader,
		Redundancy: redundancy,
		Threshold:  threshold,
		Chunks:     chunks,
	}, nil
}

// AvailableCount returns the number of chunks held by at least one validator.
func (b *Block) AvailableCount() (count uint32) {
	for _, chunk := range b.Chunks {
		if chunk.Available() {
			count++
		}
	}
	return count
}

// CanReconstruct returns true if enough chunks are available to rebuild the block.
func (b *Block) CanReconstruct() bool {
	return b.AvailableCount() >= b.Threshold
}

// MarkAvailable records the holders of a chunk and refreshes the
// reconstruction flag.
func (b *Block) MarkAvailable(index uint32, holders ...types.ValidatorID) error {
	if int(index) >= len(b.Chunks) {
		return fmt.Errorf("%w: %d >= %d", ErrChunkIndexOutOfRange, index, len(b.Chunks))
	}

	chunk := &b.Chunks[index]
	chunk.Holders = mergeIDs(chunk.Holders, holders)
	b.Reconstructable = b.CanReconstruct()
	return nil
}

// Reconstruct returns the hashes of the chunks a reconstruction would use,
// that is the first Threshold available chunks in index order.
func (b *Block) Reconstruct() ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, b.Threshold)
	for _, chunk := range b.Chunks {
		if !chunk.Available() {
			continue
		}
		hashes = append(hashes, chunk.Hash)
		if uint32(len(hashes)) == b.Threshold {
			return hashes, nil
		}
	}
	return nil, fmt.Errorf("%w: %d available, %d needed",
		ErrNotEnoughChunks, len(hashes), b.Threshold)
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	clone := *b
	clone.Chunks = make([]Chunk, len(b.Chunks))
	for i, chunk := range b.Chunks {
		clone.Chunks[i] = Chunk{
			Index:   chunk.Index,
			Hash:    chunk.Hash,
			Relays:  append([]types.ValidatorID(nil), chunk.Relays...),
			Holders: append([]types.ValidatorID(nil), chunk.Holders...),
		}
	}
	return &clone
}

func mergeIDs(existing, added []types.ValidatorID) []types.ValidatorID {
	seen := make(map[types.ValidatorID]struct{}, len(existing)+len(added))
	merged := make([]types.ValidatorID, 0, len(existing)+len(added))
	for _, ids := range [][]types.ValidatorID{existing, added} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
