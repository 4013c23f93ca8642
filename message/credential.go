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

// CredentialRequest is wire-identical to RegistrationRequest; it is a distinct Go type so the
// AKE layer's API reads at the right altitude (a login can't accidentally be handed a
// registration message, even though the bytes on the wire are the same).
type CredentialRequest struct {
	BlindedElement *group.Element
}

// Serialize returns blinded_element.
func (m *CredentialRequest) Serialize() []byte {
	return m.BlindedElement.Encode()
}

// DeserializeCredentialRequest parses a CredentialRequest.
func DeserializeCredentialRequest(data []byte) (*CredentialRequest, error) {
	req, err := DeserializeRegistrationRequest(data)
	if err != nil {
		return nil, err
	}

	return &CredentialRequest{BlindedElement: req.BlindedElement}, nil
}

// CredentialResponse is the server's reply during login: the OPRF evaluation plus the masked
// server public key and envelope.
type CredentialResponse struct {
	EvaluatedElement *group.Element
	MaskingNonce     []byte
	MaskedResponse   []byte
}

// NewCredentialResponse bundles an already-computed evaluation and mask into a CredentialResponse.
func NewCredentialResponse(evaluatedElement *group.Element, maskingNonce, maskedResponse []byte) *CredentialResponse {
	return &CredentialResponse{
		EvaluatedElement: evaluatedElement,
		MaskingNonce:     maskingNonce,
		MaskedResponse:   maskedResponse,
	}
}

// Serialize returns evaluated_element || masking_nonce || masked_response.
func (m *CredentialResponse) Serialize() []byte {
	out := m.EvaluatedElement.Encode()
	out = append(out, m.MaskingNonce...)

	return append(out, m.MaskedResponse...)
}

// DeserializeCredentialResponse parses a CredentialResponse for the given envelope mode (which
// determines the expected masked_response length, Npk+Ne).
func DeserializeCredentialResponse(mode internal.Mode, data []byte) (*CredentialResponse, error) {
	expected := internal.ElementLength + internal.NonceLength + internal.ElementLength + mode.EnvelopeSize()
	if len(data) != expected {
		return nil, ErrDeserialization
	}

	z, err := group.DecodeElement(data[:internal.ElementLength])
	if err != nil {
		return nil, ErrDeserialization
	}

	rest := data[internal.ElementLength:]
	maskingNonce := rest[:internal.NonceLength]
	maskedResponse := rest[internal.NonceLength:]

	return &CredentialResponse{
		EvaluatedElement: z,
		MaskingNonce:     maskingNonce,
		MaskedResponse:   maskedResponse,
	}, nil
}
