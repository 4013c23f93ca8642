// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque/internal/encoding"
)

func TestI2OSP_OS2IP_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		value, length int
	}{
		{0, 1}, {255, 1}, {256, 2}, {65535, 2}, {1, 4}, {1 << 20, 4},
	} {
		encoded := encoding.I2OSP(tc.value, tc.length)
		require.Len(t, encoded, tc.length)
		require.Equal(t, tc.value, encoding.OS2IP(encoded))
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	data := []byte("a server identity or similar variable-length field")
	encoded := encoding.EncodeVector(data)

	field, rest, err := encoding.DecodeVector(encoded)
	require.NoError(t, err)
	require.Equal(t, data, field)
	require.Empty(t, rest)
}

func TestDecodeVector_Truncated(t *testing.T) {
	_, _, err := encoding.DecodeVector([]byte{0, 5, 1, 2})
	require.Error(t, err)
}

func TestXor_RoundTrip(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{9, 8, 7, 6}

	c, err := encoding.Xor(a, b)
	require.NoError(t, err)

	back, err := encoding.Xor(c, b)
	require.NoError(t, err)
	require.Equal(t, a, back)
}

func TestXor_LengthMismatch(t *testing.T) {
	_, err := encoding.Xor([]byte{1}, []byte{1, 2})
	require.ErrorIs(t, err, encoding.ErrLengthMismatch)
}

func TestCTEqual(t *testing.T) {
	require.True(t, encoding.CTEqual([]byte("abc"), []byte("abc")))
	require.False(t, encoding.CTEqual([]byte("abc"), []byte("abd")))
	require.False(t, encoding.CTEqual([]byte("abc"), []byte("ab")))
}
