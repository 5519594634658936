// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// Blake2bHash returns the 256-bit blake2b hash of the input data
func Blake2bHash(in []byte) (Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}

	_, err = h.Write(in)
	if err != nil {
		return [32]byte{}, err
	}

	hash := h.Sum(nil)
	var buf = [32]byte{}
	copy(buf[:], hash)
	return buf, nil
}

// MustBlake2bHash returns the 256-bit blake2b hash of the input data. It panics if it fails to hash.
func MustBlake2bHash(in []byte) Hash {
	hash, err := Blake2bHash(in)
	if err != nil {
		panic(err)
	}

	return hash
}

// Blake2bHashParts hashes the concatenation of the given parts.
func Blake2bHashParts(parts ...[]byte) Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}

	for _, part := range parts {
		_, _ = h.Write(part)
	}

	var buf Hash
	copy(buf[:], h.Sum(nil))
	return buf
}

// Twox64 returns the xx64 hash of the input data
func Twox64(in []byte) ([]byte, error) {
	hasher := xxhash.NewS64(0)
	_, err := hasher.Write(in)
	if err != nil {
		return nil, err
	}

	res := hasher.Sum64()
	hash := make([]byte, 8)
	binary.LittleEndian.PutUint64(hash, res)
	return hash, nil
}

// Fingerprint returns the seeded xx64 digest of the input data.
// It is used as a second, independent digest next to blake2b.
func Fingerprint(seed uint64, in []byte) uint64 {
	return xxhash.Checksum64S(in, seed)
}

// Uint64Bytes returns the little endian encoding of v.
func Uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
