// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"fmt"
	"math"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// DetectEvidence returns the slashing evidence supported by the votes of
// the state that was not reported yet. The reporter is the honest
// validator with the lowest id.
func DetectEvidence(state *model.State) []model.Evidence {
	reporter := types.ValidatorID(0)
	for _, v := range state.Validators {
		if v.Status == types.Honest {
			reporter = v.ID
			break
		}
	}

	var found []model.Evidence
	for i := range state.Slots {
		slotState := &state.Slots[i]
		offenders := detectSlot(slotState)

		for _, offender := range offenders {
			candidates := []model.EvidenceKind{offender.kind}
			if len(offenders) > 1 {
				candidates = append(candidates, model.CoordinatedAttack)
			}
			for _, kind := range candidates {
				if state.Ledger.HasEvidence(kind, offender.validator, slotState.Slot) {
					continue
				}
				found = append(found, model.Evidence{
					Kind:      kind,
					Violator:  offender.validator,
					Slot:      slotState.Slot,
					Severity:  kind.Severity(),
					Reporter:  reporter,
					Timestamp: state.Time,
				})
			}
		}
	}
	return found
}

type offender struct {
	validator types.ValidatorID
	kind      model.EvidenceKind
}

func detectSlot(slotState *model.SlotState) (offenders []offender) {
	type blocks struct {
		fast, slow map[types.BlockID]struct{}
	}
	byValidator := make(map[types.ValidatorID]*blocks)
	var order []types.ValidatorID
	for _, vote := range slotState.Votes {
		entry, ok := byValidator[vote.Validator]
		if !ok {
			entry = &blocks{
				fast: make(map[types.BlockID]struct{}),
				slow: make(map[types.BlockID]struct{}),
			}
			byValidator[vote.Validator] = entry
			order = append(order, vote.Validator)
		}
		if vote.Path == types.Fast {
			entry.fast[vote.Block] = struct{}{}
		} else {
			entry.slow[vote.Block] = struct{}{}
		}
	}

	for _, id := range order {
		entry := byValidator[id]
		if len(entry.fast) > 1 || len(entry.slow) > 1 {
			offenders = append(offenders, offender{validator: id, kind: model.DoubleVote})
			continue
		}
		for block := range entry.slow {
			if _, ok := entry.fast[block]; !ok && len(entry.fast) > 0 {
				offenders = append(offenders, offender{validator: id, kind: model.CrossPathEquivocation})
			}
		}
	}
	return offenders
}

// CanReportEvidence returns the complete evidence matching the kind,
// violator and slot given if it is supported by the votes and was not
// reported yet.
func CanReportEvidence(state *model.State, evidence model.Evidence) (model.Evidence, error) {
	if state.Ledger.HasEvidence(evidence.Kind, evidence.Violator, evidence.Slot) {
		return model.Evidence{}, fmt.Errorf("%w: %s by %d in slot %d", ErrEvidenceReported,
			evidence.Kind, evidence.Violator, evidence.Slot)
	}

	for _, candidate := range DetectEvidence(state) {
		if candidate.Kind == evidence.Kind && candidate.Violator == evidence.Violator &&
			candidate.Slot == evidence.Slot {
			return candidate, nil
		}
	}

	return model.Evidence{}, fmt.Errorf("%w: %s by %d in slot %d", ErrEvidenceNotDerivable,
		evidence.Kind, evidence.Violator, evidence.Slot)
}

// ReportEvidence records evidence after checking it is supported by the votes.
func ReportEvidence(state *model.State, evidence model.Evidence) error {
	candidate, err := CanReportEvidence(state, evidence)
	if err != nil {
		return err
	}

	state.Ledger.Evidence = append(state.Ledger.Evidence, candidate)
	logger.Debugf("reported %s evidence against validator %d for slot %d",
		candidate.Kind, candidate.Violator, candidate.Slot)
	return nil
}

// CanApplySlashing returns an error if the evidence at the index
// cannot be applied.
func CanApplySlashing(state *model.State, index int) error {
	if index < 0 || index >= len(state.Ledger.Evidence) {
		return fmt.Errorf("%w: index %d", ErrUnknownEvidence, index)
	}

	evidence := state.Ledger.Evidence[index]
	if evidence.Applied {
		return fmt.Errorf("%w: index %d", ErrEvidenceApplied, index)
	}
	if state.Validator(evidence.Violator) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownValidator, evidence.Violator)
	}
	return nil
}

// ApplySlashing slashes the violator of a reported evidence by the rate
// of its severity. Critical violations mark the validator byzantine.
func ApplySlashing(state *model.State, index int) error {
	if err := CanApplySlashing(state, index); err != nil {
		return err
	}

	evidence := &state.Ledger.Evidence[index]
	validator := state.Validator(evidence.Violator)
	rate := state.Ledger.Params.SlashingRate(evidence.Severity)
	amount := types.Stake(math.Floor(float64(validator.Stake) * rate))
	validator.Stake -= amount
	state.Ledger.TotalSlashed += amount
	evidence.Applied = true
	evidence.Amount = amount

	if evidence.Severity == model.Critical && validator.Status == types.Honest {
		validator.Status = types.Byzantine
	}

	logger.Debugf("slashed validator %d by %d for %s evidence", validator.ID, amount, evidence.Kind)
	return nil
}

// Slashed returns true if applied evidence exists against the validator.
func Slashed(state *model.State, id types.ValidatorID) bool {
	for _, evidence := range state.Ledger.Evidence {
		if evidence.Applied && evidence.Violator == id {
			return true
		}
	}
	return false
}
