// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package message holds the wire types exchanged between client and server: one Go type per
// message named in the protocol, each with a Serialize method and a package-level Deserialize
// function, so a transport layer never has to hand-roll byte layouts.
package message

import (
	"errors"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/keyrecovery"
)

// ErrDeserialization is returned when a message's encoded bytes are too short or otherwise
// malformed for its fixed wire layout.
var ErrDeserialization = errors.New("opaque: malformed message encoding")

// RegistrationRequest is the client's first registration message: a blinded OPRF input.
type RegistrationRequest struct {
	BlindedElement *group.Element
}

// Serialize returns blinded_element.
func (m *RegistrationRequest) Serialize() []byte {
	return m.BlindedElement.Encode()
}

// DeserializeRegistrationRequest parses a RegistrationRequest.
func DeserializeRegistrationRequest(data []byte) (*RegistrationRequest, error) {
	if len(data) != internal.ElementLength {
		return nil, ErrDeserialization
	}

	e, err := group.DecodeElement(data)
	if err != nil {
		return nil, ErrDeserialization
	}

	return &RegistrationRequest{BlindedElement: e}, nil
}

// RegistrationResponse is the server's reply to a RegistrationRequest.
type RegistrationResponse struct {
	EvaluatedElement *group.Element
	ServerPublicKey  *group.Element
}

// Serialize returns evaluated_element || server_pk.
func (m *RegistrationResponse) Serialize() []byte {
	return append(m.EvaluatedElement.Encode(), m.ServerPublicKey.Encode()...)
}

// DeserializeRegistrationResponse parses a RegistrationResponse.
func DeserializeRegistrationResponse(data []byte) (*RegistrationResponse, error) {
	if len(data) != 2*internal.ElementLength {
		return nil, ErrDeserialization
	}

	z, err := group.DecodeElement(data[:internal.ElementLength])
	if err != nil {
		return nil, ErrDeserialization
	}

	pk, err := group.DecodeElement(data[internal.ElementLength:])
	if err != nil {
		return nil, ErrDeserialization
	}

	return &RegistrationResponse{EvaluatedElement: z, ServerPublicKey: pk}, nil
}

// RegistrationRecord is the record the server stores for a credential identifier once
// registration completes (the protocol calls this "RegistrationUpload" when it is in flight from
// client to server, and "record" once stored).
type RegistrationRecord struct {
	ClientPublicKey *group.Element
	MaskingKey      []byte
	Envelope        *keyrecovery.Envelope
}

// Serialize returns client_pk || masking_key || envelope.
func (m *RegistrationRecord) Serialize() []byte {
	out := m.ClientPublicKey.Encode()
	out = append(out, m.MaskingKey...)

	return append(out, m.Envelope.Serialize()...)
}

// DeserializeRegistrationRecord parses a RegistrationRecord encoded under the given mode.
func DeserializeRegistrationRecord(mode internal.Mode, data []byte) (*RegistrationRecord, error) {
	minLen := internal.ElementLength + internal.HashLength + mode.EnvelopeSize()
	if len(data) != minLen {
		return nil, ErrDeserialization
	}

	pk, err := group.DecodeElement(data[:internal.ElementLength])
	if err != nil {
		return nil, ErrDeserialization
	}

	rest := data[internal.ElementLength:]
	maskingKey := rest[:internal.HashLength]

	env, err := keyrecovery.Deserialize(mode, rest[internal.HashLength:])
	if err != nil {
		return nil, ErrDeserialization
	}

	return &RegistrationRecord{ClientPublicKey: pk, MaskingKey: maskingKey, Envelope: env}, nil
}
