// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import "errors"

var (
	ErrEpochNotComplete     = errors.New("epoch is not complete")
	ErrEpochRewarded        = errors.New("epoch rewards already distributed")
	ErrInsufficientPool     = errors.New("rewards pool cannot cover epoch rewards")
	ErrUnknownValidator     = errors.New("unknown validator")
	ErrUnknownEvidence      = errors.New("evidence not found")
	ErrEvidenceApplied      = errors.New("evidence already applied")
	ErrEvidenceNotDerivable = errors.New("evidence is not supported by the votes")
	ErrEvidenceReported     = errors.New("evidence already reported")
	ErrBudgetExhausted      = errors.New("economic action budget exhausted")
	ErrStakeUnitDisabled    = errors.New("stake unit is zero")
	ErrValidatorCrashed     = errors.New("validator is crashed")
	ErrInsufficientStake    = errors.New("insufficient stake")
	ErrBelowMinimumStake    = errors.New("stake would drop below minimum active stake")
	ErrNoStakeLeft          = errors.New("total stake would drop to zero")
	ErrNoScheduledUpdate    = errors.New("no scheduled parameter update left")
)
