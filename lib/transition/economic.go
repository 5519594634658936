// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

import (
	"github.com/ChainSafe/alpenglow/lib/economics"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/rotation"
)

// economicActions enumerates the ledger operations. Reports and
// slashings commute, so only the first pending one of each is proposed.
func (m *Machine) economicActions(state *model.State) (actions []Action) {
	lastEpoch := rotation.WindowOf(m.config.MaxSlot, m.config.WindowSize)
	for epoch := uint32(0); epoch <= lastEpoch; epoch++ {
		if _, err := economics.CanDistributeRewards(m.config, state, epoch); err == nil {
			actions = append(actions, Action{Kind: DistributeRewards, Epoch: epoch})
		}
	}

	if evidence := economics.DetectEvidence(state); len(evidence) > 0 {
		actions = append(actions, Action{
			Kind:         ReportSlashing,
			Validator:    evidence[0].Violator,
			Slot:         evidence[0].Slot,
			EvidenceKind: evidence[0].Kind,
		})
	}

	for i, evidence := range state.Ledger.Evidence {
		if !evidence.Applied {
			actions = append(actions, Action{Kind: SlashValidator, Evidence: i})
			break
		}
	}

	for _, v := range state.Validators {
		if economics.CanDeposit(m.config, state, v.ID) == nil {
			actions = append(actions, Action{Kind: StakeDeposit, Validator: v.ID})
		}
		if economics.CanWithdraw(m.config, state, v.ID) == nil {
			actions = append(actions, Action{Kind: StakeWithdrawal, Validator: v.ID})
		}
	}

	if economics.CanUpdateParameters(m.config, state) == nil {
		actions = append(actions, Action{Kind: UpdateEconomicParameters})
	}
	return actions
}

func (m *Machine) checkEconomic(state *model.State, action Action) (err error) {
	switch action.Kind {
	case DistributeRewards:
		_, err = economics.CanDistributeRewards(m.config, state, action.Epoch)
	case SlashValidator:
		err = economics.CanApplySlashing(state, action.Evidence)
	case StakeDeposit:
		err = economics.CanDeposit(m.config, state, action.Validator)
	case StakeWithdrawal:
		err = economics.CanWithdraw(m.config, state, action.Validator)
	case ReportSlashing:
		_, err = economics.CanReportEvidence(state, reportedEvidence(action))
	case UpdateEconomicParameters:
		err = economics.CanUpdateParameters(m.config, state)
	}
	return err
}

func (m *Machine) applyEconomic(state *model.State, action Action) error {
	switch action.Kind {
	case DistributeRewards:
		return economics.DistributeRewards(m.config, state, action.Epoch)
	case SlashValidator:
		return economics.ApplySlashing(state, action.Evidence)
	case StakeDeposit:
		return economics.Deposit(m.config, state, action.Validator)
	case StakeWithdrawal:
		return economics.Withdraw(m.config, state, action.Validator)
	case ReportSlashing:
		return economics.ReportEvidence(state, reportedEvidence(action))
	case UpdateEconomicParameters:
		return economics.UpdateParameters(m.config, state)
	}
	return nil
}

func reportedEvidence(action Action) model.Evidence {
	return model.Evidence{
		Kind:     action.EvidenceKind,
		Violator: action.Validator,
		Slot:     action.Slot,
	}
}
