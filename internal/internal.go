// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal holds the values and small helpers shared across every other internal
// package: fixed protocol byte lengths, the per-deployment Configuration, and the RNG/zeroize
// chokepoints. Nothing here is exported to library consumers directly; it is reassembled behind
// the top-level Configuration type.
package internal

import (
	"crypto/rand"
	"errors"

	"github.com/go-opaque/opaque/internal/ksf"
)

// Fixed protocol byte lengths for the ristretto255-SHA512 suite (spec §3: Ns, Npk, Nh, Nm, Nn,
// Nok, Nsk).
const (
	ScalarLength  = 32 // Ns
	ElementLength = 32 // Npk
	HashLength    = 64 // Nh
	MACLength     = 64 // Nm
	NonceLength   = 32 // Nn
	SeedLength    = 32 // Nok
	SecretKeyLen  = 32 // Nsk

	// EnvelopeSizeInternal is Nn + Nm for Internal mode (empty InnerEnvelope).
	EnvelopeSizeInternal = NonceLength + MACLength

	// EnvelopeSizeExternal is Nn + Nsk + Nm for External mode.
	EnvelopeSizeExternal = NonceLength + SecretKeyLen + MACLength
)

// Mode selects how the client's AKE key pair is managed across registration and login.
type Mode byte

const (
	// Internal mode: the client key pair is deterministically derived from the OPRF-derived
	// randomized password and the envelope nonce; the InnerEnvelope carries no ciphertext.
	Internal Mode = iota

	// External mode: the client supplies its own long-term secret key at registration, and
	// the envelope stores it XOR-masked under a password-derived pad.
	External
)

// Available reports whether m is a mode this implementation knows how to handle.
func (m Mode) Available() bool {
	return m == Internal || m == External
}

// EnvelopeSize returns the wire size of an Envelope under this mode.
func (m Mode) EnvelopeSize() int {
	if m == External {
		return EnvelopeSizeExternal
	}

	return EnvelopeSizeInternal
}

// ErrConfigurationInvalidLength is returned when decoding a Configuration from too few bytes.
var ErrConfigurationInvalidLength = errors.New("opaque: invalid configuration encoding length")

// Configuration bundles the per-deployment parameters every layer needs: the Harden selection and
// its tuning, the AKE mode, and an optional application-specific context string mixed into the
// AKE transcript. The group, hash, KDF and MAC are pinned to ristretto255/SHA-512 (no cipher
// agility, per spec Non-goals), so they aren't represented here.
type Configuration struct {
	Context   []byte
	KSF       ksf.Identifier
	KSFParams ksf.Parameters
	Mode      Mode
}

// RandomBytes returns length cryptographically secure random bytes, read from crypto/rand. Every
// nonce and masking nonce in the protocol is drawn through this one function; scalars (blinds and
// key shares) come from group.RandomScalar. Mirrors
// group.RandomScalar's error return for the same failure mode.
func RandomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return b, nil
}

// Zeroize overwrites b with zeroes in place. Callers use this on every secret-bearing buffer
// (blinds, randomized passwords, auth/masking/MAC keys, session keys) once its holder is
// dropped or on any error path, per spec §5's secret hygiene requirement.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
