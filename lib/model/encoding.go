// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package model

import (
	"encoding/json"
	"fmt"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/common"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "model"))

// fingerprintSeed seeds the xx64 digest kept next to the blake2b hash.
const fingerprintSeed = 0x616c70656e676c6f

// Encode returns the canonical encoding of the state. States only hold
// slices and structs, so the JSON encoding is deterministic.
func (s *State) Encode() ([]byte, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return encoded, nil
}

// Digest is the content address of a state.
type Digest struct {
	Hash        common.Hash
	Fingerprint uint64
}

// Digest returns the blake2b hash and the xx64 fingerprint of the
// canonical encoding.
func (s *State) Digest() (Digest, error) {
	encoded, err := s.Encode()
	if err != nil {
		return Digest{}, err
	}

	hash, err := common.Blake2bHash(encoded)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing state: %w", err)
	}

	return Digest{
		Hash:        hash,
		Fingerprint: common.Fingerprint(fingerprintSeed, encoded),
	}, nil
}

// Hash returns the blake2b hash of the canonical encoding.
func (s *State) Hash() (common.Hash, error) {
	digest, err := s.Digest()
	if err != nil {
		return common.Hash{}, err
	}
	return digest.Hash, nil
}
