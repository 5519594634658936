// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Severity_text(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal([]Severity{Minor, Critical})
	require.NoError(t, err)
	assert.Equal(t, `["minor","critical"]`, string(encoded))

	var decoded []Severity
	err = json.Unmarshal(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, []Severity{Minor, Critical}, decoded)

	var s Severity
	assert.ErrorIs(t, s.UnmarshalText([]byte("mild")), ErrUnknownSeverity)
}

func Test_EvidenceKind_Severity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Severe, DoubleVote.Severity())
	assert.Equal(t, Moderate, CrossPathEquivocation.Severity())
	assert.Equal(t, Critical, CoordinatedAttack.Severity())
}

func Test_Parameters_SlashingRate(t *testing.T) {
	t.Parallel()

	params := Parameters{SlashingRates: DefaultSlashingRates}
	assert.Equal(t, 0.05, params.SlashingRate(Minor))
	assert.Equal(t, 0.5, params.SlashingRate(Critical))
	assert.Equal(t, 0.0, params.SlashingRate(Severity(9)))
}

func Test_Ledger_lookups(t *testing.T) {
	t.Parallel()

	ledger := Ledger{
		Evidence:       []Evidence{{Kind: DoubleVote, Violator: 2, Slot: 1}},
		RewardedEpochs: []uint32{0},
	}
	assert.True(t, ledger.HasEvidence(DoubleVote, 2, 1))
	assert.False(t, ledger.HasEvidence(CoordinatedAttack, 2, 1))
	assert.True(t, ledger.Rewarded(0))
	assert.False(t, ledger.Rewarded(1))
}
