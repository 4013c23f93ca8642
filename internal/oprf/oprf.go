// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package oprf implements the base-mode (non-verifiable) Oblivious Pseudorandom Function over
// Ristretto255/SHA-512, per draft-irtf-cfrg-voprf-06, suite ristretto255-SHA512 (suite_id 0x0001).
// Generalized from the teacher's multi-ciphersuite Ciphersuite registry down to this single fixed
// suite, since cipher agility beyond it is explicitly out of scope.
package oprf

import (
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/tag"
)

const (
	modeBase = 0x00
	suiteID  = 0x0001

	// SeedLength is the size of the per-client OPRF key seed input (Nok).
	SeedLength = 32
)

func contextString() []byte {
	return encoding.Concatenate(encoding.I2OSP(modeBase, 1), encoding.I2OSP(suiteID, 2))
}

func hashToGroupDST() []byte {
	return append([]byte(tag.OPRFVersionPrefix), contextString()...)
}

func finalizeDST() []byte {
	return append([]byte(tag.OPRFFinalizePrefix), contextString()...)
}

// Blind draws a fresh blinding scalar and returns it alongside the blinded group element
// blind·HashToGroup(input).
func Blind(input []byte) (blind *group.Scalar, blindedElement *group.Element, err error) {
	p, err := group.HashToGroup(input, hashToGroupDST())
	if err != nil {
		return nil, nil, err
	}

	blind, err = group.RandomScalar()
	if err != nil {
		return nil, nil, err
	}

	return blind, blind.Multiply(p), nil
}

// Evaluate computes oprfKey·blindedElement. The base mode does not produce a DLEQ proof.
func Evaluate(oprfKey *group.Scalar, blindedElement *group.Element) *group.Element {
	return oprfKey.Multiply(blindedElement)
}

// Finalize removes the blind from evaluatedElement and hashes it together with the original
// input to produce the Nh-byte OPRF output.
func Finalize(input []byte, blind *group.Scalar, evaluatedElement *group.Element) []byte {
	n := blind.Invert().Multiply(evaluatedElement)
	encodedN := n.Encode()

	hashInput := encoding.Concatenate(
		encoding.EncodeVector(input),
		encoding.EncodeVector(encodedN),
		encoding.EncodeVector(finalizeDST()),
	)

	return hash.Sum512(hashInput)
}

// DeriveKeyPair deterministically derives a nonzero scalar (and its public key) from seed, using
// the "OPAQUE-HashToScalar" domain separation label shared by envelope key recovery.
func DeriveKeyPair(seed []byte) (sk *group.Scalar, pk *group.Element, err error) {
	sk, err = group.HashToScalar(seed, []byte(tag.DeriveKeyPair))
	if err != nil {
		return nil, nil, err
	}

	return sk, sk.ScalarBaseMult(), nil
}

// DeriveOprfKey computes the per-client OPRF key from the deployment-wide oprfSeed and a
// credential identifier, per DeriveOprfKey(oprf_seed, credential_identifier).
func DeriveOprfKey(oprfSeed, credentialIdentifier []byte) (*group.Scalar, error) {
	kdf := hash.New()
	ikm := kdf.Expand(oprfSeed, encoding.SuffixString(credentialIdentifier, tag.ExpandOPRF), SeedLength)

	sk, _, err := DeriveKeyPair(ikm)

	return sk, err
}
