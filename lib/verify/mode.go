// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import "github.com/ChainSafe/alpenglow/lib/model"

const (
	exhaustiveValidators = 10
	boundedValidators    = 50
)

// SelectMode returns the exploration mode for the number of validators.
// A non empty override is returned as is.
func SelectMode(validators int, override string) string {
	if override != "" {
		return override
	}

	switch {
	case validators <= exhaustiveValidators:
		return model.ModeExhaustive
	case validators <= boundedValidators:
		return model.ModeBounded
	default:
		return model.ModeStatistical
	}
}
