// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package properties

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/alpenglow/lib/byzantine"
	"github.com/ChainSafe/alpenglow/lib/economics"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/rotation"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// checkProgress checks that, with more honest stake than the slow
// quorum, every slot is decided and every slot with a live honest leader
// whose proposal could be voted on undisturbed is finalized.
func checkProgress(s *Suite, state *model.State) error {
	total := state.TotalStake()
	honest := state.StakeByStatus(types.Honest)
	if float64(honest) <= float64(total)*s.config.SlowThreshold+thresholdEpsilon {
		return nil
	}

	for i := range state.Slots {
		slotState := &state.Slots[i]
		if !slotState.Decided() {
			return fmt.Errorf("slot %d undecided with honest stake %d of %d", slotState.Slot, honest, total)
		}
		if slotState.Certificate != nil || !s.votable(state, slotState) {
			continue
		}
		leader := state.Validator(slotState.Leader)
		if leader != nil && leader.Status == types.Honest {
			return fmt.Errorf("slot %d of honest leader %d skipped with honest stake %d of %d",
				slotState.Slot, leader.ID, honest, total)
		}
	}
	return nil
}

// checkFastPath checks that slots with enough responsive stake for a
// fast quorum are fast certified within the fast latency.
func checkFastPath(s *Suite, state *model.State) error {
	total := state.TotalStake()
	for i := range state.Slots {
		slotState := &state.Slots[i]
		responsive := state.ResponsiveStake(slotState.Slot)
		if !types.MeetsQuorum(responsive, total, s.config.FastThreshold) || !s.votable(state, slotState) {
			continue
		}

		cert := slotState.Certificate
		if cert == nil || cert.Path != types.Fast {
			return fmt.Errorf("slot %d has responsive stake %d of %d but no fast certificate",
				slotState.Slot, responsive, total)
		}
		if cert.Time-s.config.SlotStart(slotState.Slot) > s.config.FastLatency {
			return fmt.Errorf("slot %d fast certified at %d, later than the fast latency %d",
				slotState.Slot, cert.Time, s.config.FastLatency)
		}
	}
	return nil
}

// votable returns true if honest validators could vote for the slot
// proposal without disruption.
func (s *Suite) votable(state *model.State, slotState *model.SlotState) bool {
	if !slotState.Rotated || slotState.Proposal == nil || slotState.Disrupted {
		return false
	}
	return !s.config.RequireAvailability || slotState.Proposal.Reconstructable
}

// checkFairness runs a chi-square test of the leader history, extended
// with synthetic slots drawn from the same schedule, against the stake
// distribution.
func (s *Suite) checkFairness(state *model.State) error {
	weights := state.Weights()
	counts := make(map[types.ValidatorID]int)
	for _, record := range state.LeaderHistory {
		counts[record.Leader]++
	}

	synthetic, err := s.syntheticLeaders(weights)
	if err != nil {
		return err
	}
	for id, count := range synthetic {
		counts[id] += count
	}

	result := rotation.ChiSquare(counts, weights, s.config.Exploration.FairnessAlpha)
	if !result.Fair {
		return fmt.Errorf("leader selection is not proportional to stake: chi-square %.3f exceeds %.3f "+
			"with %d degrees of freedom over %d slots",
			result.Statistic, result.CriticalValue, result.DegreesOfFreedom, result.Samples)
	}
	return nil
}

// syntheticLeaders returns the leader counts of the slots following the
// last configured slot, memoized by stake distribution.
func (s *Suite) syntheticLeaders(weights []types.Weighted) (map[types.ValidatorID]int, error) {
	key := weightsKey(weights)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if counts, ok := s.synthetic[key]; ok {
		return counts, nil
	}

	seed := s.config.SeedHash()
	counts := make(map[types.ValidatorID]int)
	first := s.config.MaxSlot + 1
	for slot := first; slot < first+types.Slot(s.config.Exploration.FairnessSlots); slot++ {
		leader, err := rotation.LeaderForSlot(seed, slot, weights)
		if err != nil {
			return nil, fmt.Errorf("drawing leader of slot %d: %w", slot, err)
		}
		counts[leader]++
	}

	s.synthetic[key] = counts
	return counts, nil
}

func weightsKey(weights []types.Weighted) string {
	var builder strings.Builder
	for _, w := range weights {
		fmt.Fprintf(&builder, "%d:%d,", w.ID, w.Stake)
	}
	return builder.String()
}

// checkEquilibrium checks that no validator gains by switching to a
// byzantine strategy.
func checkEquilibrium(s *Suite, state *model.State) error {
	for _, comparison := range economics.Compare(state, byzantine.Deviations()) {
		if comparison.Profitable() {
			return fmt.Errorf("validator %d gains %.4f with the %s strategy against %.4f when honest",
				comparison.Validator, comparison.Deviation, comparison.Strategy, comparison.Honest)
		}
	}
	return nil
}
