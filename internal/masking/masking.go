// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package masking hides the server's public key and the client's envelope inside a
// CredentialResponse, so a passive observer of the response cannot distinguish a known credential
// identifier from an unknown one. Grounded on the teacher's server.go call to
// masking.Mask(conf, maskingNonce, record.MaskingKey, serverPublicKey, record.Envelope).
package masking

import (
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/tag"
)

func pad(maskingKey, maskingNonce []byte, length int) []byte {
	kdf := hash.New()
	return kdf.Expand(maskingKey, encoding.SuffixString(maskingNonce, tag.CredentialResponsePad), length)
}

// Mask produces a masking nonce (fresh if maskingNonce is empty) and the masked response bytes
// pad XOR (serverPublicKey || envelope), per spec §4.7 step 3-4.
func Mask(maskingKey, maskingNonce, serverPublicKey []byte, envelope *keyrecovery.Envelope) (nonce, maskedResponse []byte, err error) {
	if len(maskingNonce) == 0 {
		maskingNonce, err = internal.RandomBytes(internal.NonceLength)
		if err != nil {
			return nil, nil, err
		}
	}

	plaintext := encoding.Concatenate(serverPublicKey, envelope.Serialize())
	p := pad(maskingKey, maskingNonce, len(plaintext))

	masked, err := encoding.Xor(p, plaintext)
	if err != nil {
		return nil, nil, err
	}

	return maskingNonce, masked, nil
}

// Unmask reverses Mask, returning the server's public key and the parsed Envelope.
func Unmask(mode internal.Mode, maskingKey, maskingNonce, maskedResponse []byte) (serverPublicKey []byte, envelope *keyrecovery.Envelope, err error) {
	envelopeSize := mode.EnvelopeSize()

	p := pad(maskingKey, maskingNonce, internal.ElementLength+envelopeSize)

	plaintext, err := encoding.Xor(p, maskedResponse)
	if err != nil {
		return nil, nil, err
	}

	serverPublicKey = plaintext[:internal.ElementLength]

	envelope, err = keyrecovery.Deserialize(mode, plaintext[internal.ElementLength:])
	if err != nil {
		return nil, nil, err
	}

	return serverPublicKey, envelope, nil
}

// FakeMaskingKey deterministically derives a masking key from the deployment's oprfSeed and a
// credential identifier, for use when no record exists for that identifier. Because it is a
// deterministic function of public-ish inputs (not randomized per request), a CredentialResponse
// built from it has exactly the same length and byte distribution as one built from a real
// record's random masking key, so the server's response gives no account-existence oracle
// (spec §4.7 step 6, testable property #6).
func FakeMaskingKey(oprfSeed, credentialIdentifier []byte) []byte {
	kdf := hash.New()
	return kdf.Expand(oprfSeed, encoding.SuffixString(credentialIdentifier, tag.FakeMaskingKey), internal.HashLength)
}
