// Copyright 2026 The Monforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot hashes and archives game images. Before a run
// writes anything back, the original image is stored as a compressed
// snapshot; the BLAKE3 hashes it records are also what the run report
// and the verify command use to talk about image identity.
package snapshot

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// Domain separation keys for keyed hashing: the same bytes hashed as
// a whole image and as a single container must not collide. The key
// bytes are the ASCII domain name zero-padded to 32, which keeps them
// readable in hex dumps without costing anything cryptographically.
var (
	imageDomainKey = [32]byte{
		'm', 'o', 'n', 'f', 'o', 'r', 'g', 'e', '.', 'i', 'm', 'a', 'g', 'e',
	}
	containerDomainKey = [32]byte{
		'm', 'o', 'n', 'f', 'o', 'r', 'g', 'e', '.', 'c', 'o', 'n', 't', 'a', 'i', 'n', 'e', 'r',
	}
)

// HashImage computes the image-domain hash of a full image.
func HashImage(data []byte) Hash {
	return keyedHash(imageDomainKey, data)
}

// HashContainer computes the container-domain hash of one container
// blob. Used by the run report to record per-container before/after
// identities.
func HashContainer(data []byte) Hash {
	return keyedHash(containerDomainKey, data)
}

func keyedHash(key [32]byte, data []byte) Hash {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var result Hash
	hasher.Sum(result[:0])
	return result
}

// String returns the full lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, enough for log lines.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:6])
}

// ParseHash parses the full hex form.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 64 {
		return h, fmt.Errorf("hash must be 64 hex characters, got %d", len(s))
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash: %w", err)
	}
	copy(h[:], decoded)
	return h, nil
}
