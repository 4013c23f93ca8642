// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package oprf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque/internal/oprf"
)

func TestBlindEvaluateFinalize_Agreement(t *testing.T) {
	sk, _, err := oprf.DeriveKeyPair([]byte("server oprf key seed material"))
	require.NoError(t, err)

	blind, blinded, err := oprf.Blind([]byte("correct horse battery staple"))
	require.NoError(t, err)

	evaluated := oprf.Evaluate(sk, blinded)
	output := oprf.Finalize([]byte("correct horse battery staple"), blind, evaluated)

	require.Len(t, output, 64)

	// Re-running the whole exchange with the same key and password yields the same output.
	blind2, blinded2, err := oprf.Blind([]byte("correct horse battery staple"))
	require.NoError(t, err)

	evaluated2 := oprf.Evaluate(sk, blinded2)
	output2 := oprf.Finalize([]byte("correct horse battery staple"), blind2, evaluated2)

	require.Equal(t, output, output2)
}

func TestFinalize_DifferentPasswordDiffers(t *testing.T) {
	sk, _, err := oprf.DeriveKeyPair([]byte("server oprf key seed material"))
	require.NoError(t, err)

	blind, blinded, err := oprf.Blind([]byte("correct horse battery staple"))
	require.NoError(t, err)
	evaluated := oprf.Evaluate(sk, blinded)
	output := oprf.Finalize([]byte("correct horse battery staple"), blind, evaluated)

	blindW, blindedW, err := oprf.Blind([]byte("wrong"))
	require.NoError(t, err)
	evaluatedW := oprf.Evaluate(sk, blindedW)
	outputW := oprf.Finalize([]byte("wrong"), blindW, evaluatedW)

	require.NotEqual(t, output, outputW)
}

func TestDeriveOprfKey_PerClient(t *testing.T) {
	seed := make([]byte, 64)

	skAlice, err := oprf.DeriveOprfKey(seed, []byte("alice@example.com"))
	require.NoError(t, err)

	skBob, err := oprf.DeriveOprfKey(seed, []byte("bob@example.com"))
	require.NoError(t, err)

	require.NotEqual(t, skAlice.Encode(), skBob.Encode())

	// Deterministic for the same identifier.
	skAliceAgain, err := oprf.DeriveOprfKey(seed, []byte("alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, skAlice.Encode(), skAliceAgain.Encode())
}
