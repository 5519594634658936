// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rotation

import (
	"fmt"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/common"
	"github.com/ChainSafe/alpenglow/lib/types"
	"github.com/dgraph-io/ristretto"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "rotation"))

// DefaultCacheConfig is the cache configuration used by NewScheduler
// when none is given.
var DefaultCacheConfig = ristretto.Config{
	NumCounters: 1 << 14,
	MaxCost:     1 << 12,
	BufferItems: 64,
}

// Scheduler computes window schedules and caches them by seed, window
// and stake distribution. It is safe for concurrent use.
type Scheduler struct {
	seed  common.Hash
	size  uint32
	cache *ristretto.Cache
}

// NewScheduler creates a scheduler for the given seed and window size.
func NewScheduler(seed common.Hash, windowSize uint32, config *ristretto.Config) (*Scheduler, error) {
	if windowSize == 0 {
		return nil, ErrInvalidWindowSize
	}

	if config == nil {
		defaultConfig := DefaultCacheConfig
		config = &defaultConfig
	}

	cache, err := ristretto.NewCache(config)
	if err != nil {
		return nil, fmt.Errorf("creating schedule cache: %w", err)
	}

	return &Scheduler{
		seed:  seed,
		size:  windowSize,
		cache: cache,
	}, nil
}

// WindowSize returns the number of slots per window.
func (s *Scheduler) WindowSize() uint32 {
	return s.size
}

// Window returns the schedule of a window for the stake distribution given.
func (s *Scheduler) Window(window uint32, weights []types.Weighted) (Window, error) {
	key := s.cacheKey(window, weights)
	if value, ok := s.cache.Get(key); ok {
		cached := value.(Window)
		cached.Leaders = append([]types.ValidatorID(nil), cached.Leaders...)
		return cached, nil
	}

	computed, err := ComputeWindow(s.seed, window, s.size, weights)
	if err != nil {
		return Window{}, err
	}

	logger.Tracef("computed leader schedule for window %d: %v", window, computed.Leaders)
	stored := computed
	stored.Leaders = append([]types.ValidatorID(nil), computed.Leaders...)
	s.cache.Set(key, stored, 1)
	return computed, nil
}

// Leader returns the leader of a slot for the stake distribution given.
func (s *Scheduler) Leader(slot types.Slot, weights []types.Weighted) (types.ValidatorID, error) {
	if slot == 0 {
		return 0, ErrInvalidSlot
	}

	window, err := s.Window(WindowOf(slot, s.size), weights)
	if err != nil {
		return 0, err
	}

	leader, _ := window.Leader(slot)
	return leader, nil
}

// Close releases the cache resources.
func (s *Scheduler) Close() {
	s.cache.Close()
}

func (s *Scheduler) cacheKey(window uint32, weights []types.Weighted) []byte {
	parts := make([][]byte, 0, 2+2*len(weights))
	parts = append(parts, s.seed[:], common.Uint64Bytes(uint64(window)))
	for _, w := range weights {
		parts = append(parts, common.Uint64Bytes(uint64(w.ID)), common.Uint64Bytes(uint64(w.Stake)))
	}
	key := common.Blake2bHashParts(parts...)
	return key.ToBytes()
}
