// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package message

import (
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/group"
)

// KE1 is the client's first AKE message: a CredentialRequest plus its ephemeral DH share.
type KE1 struct {
	CredentialRequest *CredentialRequest
	ClientNonce       []byte
	ClientKeyshare    *group.Element
}

// Serialize returns credential_request || client_nonce || client_keyshare.
func (m *KE1) Serialize() []byte {
	out := m.CredentialRequest.Serialize()
	out = append(out, m.ClientNonce...)

	return append(out, m.ClientKeyshare.Encode()...)
}

// DeserializeKE1 parses a KE1.
func DeserializeKE1(data []byte) (*KE1, error) {
	expected := internal.ElementLength + internal.NonceLength + internal.ElementLength
	if len(data) != expected {
		return nil, ErrDeserialization
	}

	req, err := DeserializeCredentialRequest(data[:internal.ElementLength])
	if err != nil {
		return nil, err
	}

	rest := data[internal.ElementLength:]
	nonce := rest[:internal.NonceLength]

	keyshare, err := group.DecodeElement(rest[internal.NonceLength:])
	if err != nil {
		return nil, ErrDeserialization
	}

	return &KE1{CredentialRequest: req, ClientNonce: nonce, ClientKeyshare: keyshare}, nil
}

// InnerKE2 is the mode-dependent part of KE2, covered by the AKE transcript preamble before the
// server MAC is computed.
type InnerKE2 struct {
	CredentialResponse *CredentialResponse
	ServerNonce        []byte
	ServerKeyshare     *group.Element
}

// Serialize returns credential_response || server_nonce || server_keyshare.
func (m *InnerKE2) Serialize() []byte {
	out := m.CredentialResponse.Serialize()
	out = append(out, m.ServerNonce...)

	return append(out, m.ServerKeyshare.Encode()...)
}

// KE2 is the server's reply: an InnerKE2 plus the server's MAC over the transcript.
type KE2 struct {
	InnerKE2  *InnerKE2
	ServerMac []byte
}

// Serialize returns inner_ke2 || server_mac.
func (m *KE2) Serialize() []byte {
	return append(m.InnerKE2.Serialize(), m.ServerMac...)
}

// DeserializeKE2 parses a KE2 for the given envelope mode.
func DeserializeKE2(mode internal.Mode, data []byte) (*KE2, error) {
	credResponseLen := internal.ElementLength + internal.NonceLength + internal.ElementLength + mode.EnvelopeSize()
	innerLen := credResponseLen + internal.NonceLength + internal.ElementLength
	expected := innerLen + internal.MACLength

	if len(data) != expected {
		return nil, ErrDeserialization
	}

	credResponse, err := DeserializeCredentialResponse(mode, data[:credResponseLen])
	if err != nil {
		return nil, err
	}

	rest := data[credResponseLen:]
	serverNonce := rest[:internal.NonceLength]

	serverKeyshare, err := group.DecodeElement(rest[internal.NonceLength : internal.NonceLength+internal.ElementLength])
	if err != nil {
		return nil, ErrDeserialization
	}

	serverMac := rest[internal.NonceLength+internal.ElementLength:]

	return &KE2{
		InnerKE2: &InnerKE2{
			CredentialResponse: credResponse,
			ServerNonce:        serverNonce,
			ServerKeyshare:     serverKeyshare,
		},
		ServerMac: serverMac,
	}, nil
}

// KE3 is the client's final AKE message: its MAC over the transcript including the server's MAC.
type KE3 struct {
	ClientMac []byte
}

// Serialize returns client_mac.
func (m *KE3) Serialize() []byte {
	out := make([]byte, len(m.ClientMac))
	copy(out, m.ClientMac)

	return out
}

// DeserializeKE3 parses a KE3.
func DeserializeKE3(data []byte) (*KE3, error) {
	if len(data) != internal.MACLength {
		return nil, ErrDeserialization
	}

	return &KE3{ClientMac: data}, nil
}
