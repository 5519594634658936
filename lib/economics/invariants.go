// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

// ErrInvariantBroken is wrapped by every economic invariant failure.
var ErrInvariantBroken = errors.New("economic invariant broken")

// CheckInvariants checks conservation of value, slashing bookkeeping and
// the minimum active stake.
func CheckInvariants(cfg *model.Config, state *model.State) error {
	ledger := &state.Ledger

	var held types.Stake
	for i, v := range state.Validators {
		held += v.Stake
		if i < len(ledger.Pending) {
			held += ledger.Pending[i]
		}
	}
	held += ledger.Pool + ledger.TotalSlashed + ledger.TotalWithdrawn
	supply := ledger.InitialSupply + ledger.TotalDeposited
	if held != supply {
		return fmt.Errorf("%w: value not conserved, %d held for a supply of %d",
			ErrInvariantBroken, held, supply)
	}

	var slashed types.Stake
	for _, evidence := range ledger.Evidence {
		if evidence.Applied {
			slashed += evidence.Amount
		}
	}
	if slashed != ledger.TotalSlashed {
		return fmt.Errorf("%w: evidence slashed %d but ledger recorded %d",
			ErrInvariantBroken, slashed, ledger.TotalSlashed)
	}

	if state.TotalStake() == 0 {
		return fmt.Errorf("%w: total stake is zero", ErrInvariantBroken)
	}

	for _, v := range state.Validators {
		if v.Stake == 0 || v.Stake >= cfg.Economics.MinActiveStake || Slashed(state, v.ID) {
			continue
		}
		return fmt.Errorf("%w: validator %d has stake %d below minimum %d",
			ErrInvariantBroken, v.ID, v.Stake, cfg.Economics.MinActiveStake)
	}

	return nil
}
