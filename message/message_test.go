// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/message"
)

func TestDeserializeCredentialResponse_Truncated(t *testing.T) {
	// A well-formed Internal-mode CredentialResponse is 32+32+(32+96) = 192 bytes; truncating
	// to 95 bytes must fail rather than silently parse a short message.
	truncated := make([]byte, 95)

	_, err := message.DeserializeCredentialResponse(internal.Internal, truncated)
	require.ErrorIs(t, err, message.ErrDeserialization)
}

func TestRegistrationRequest_SerializeDeserialize(t *testing.T) {
	req := &message.RegistrationRequest{BlindedElement: group.Base()}

	decoded, err := message.DeserializeRegistrationRequest(req.Serialize())
	require.NoError(t, err)
	require.True(t, decoded.BlindedElement.Equal(group.Base()))
}

func TestDeserializeKE3_WrongLength(t *testing.T) {
	_, err := message.DeserializeKE3(make([]byte, 10))
	require.ErrorIs(t, err, message.ErrDeserialization)
}
