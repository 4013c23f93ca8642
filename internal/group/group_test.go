// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package group_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque/internal/group"
)

func TestRandomScalar_Nonzero(t *testing.T) {
	for i := 0; i < 20; i++ {
		s, err := group.RandomScalar()
		require.NoError(t, err)
		require.Len(t, s.Encode(), group.ScalarLength)
		require.False(t, s.IsZero())
	}
}

func TestScalarInvert_RoundTrip(t *testing.T) {
	s, err := group.RandomScalar()
	require.NoError(t, err)

	p := s.Multiply(group.Base())
	unblinded := s.Invert().Multiply(p)

	require.True(t, unblinded.Equal(group.Base()))
}

func TestHashToGroup_Deterministic(t *testing.T) {
	dst := []byte("VOPRF06-HashToGroup-test")

	p1, err := group.HashToGroup([]byte("correct horse battery staple"), dst)
	require.NoError(t, err)

	p2, err := group.HashToGroup([]byte("correct horse battery staple"), dst)
	require.NoError(t, err)

	require.True(t, p1.Equal(p2))

	p3, err := group.HashToGroup([]byte("wrong"), dst)
	require.NoError(t, err)
	require.False(t, p1.Equal(p3))
}

func TestDecodeElement_RejectsWrongLength(t *testing.T) {
	_, err := group.DecodeElement([]byte{1, 2, 3})
	require.ErrorIs(t, err, group.ErrInvalidElement)
}

func TestDecodeScalar_RoundTrip(t *testing.T) {
	s, err := group.RandomScalar()
	require.NoError(t, err)

	decoded, err := group.DecodeScalar(s.Encode())
	require.NoError(t, err)
	require.Equal(t, s.Encode(), decoded.Encode())
}
