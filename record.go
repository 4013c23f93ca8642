// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/masking"
)

// fakeMaskingKey derives GetFakeRecord's masking key deterministically from oprfSeed and
// credentialIdentifier via masking.FakeMaskingKey; a genuine record's masking key instead comes
// from the client's randomized password at registration. Both are Nh bytes and feed the same
// masking step.
func fakeMaskingKey(oprfSeed, credentialIdentifier []byte) []byte {
	return masking.FakeMaskingKey(oprfSeed, credentialIdentifier)
}

// fakeEnvelope returns a zero-filled Envelope of the correct wire size for mode. Its auth tag will
// simply never verify, which is fine: the fake path exists so the CredentialResponse looks right
// on the wire, not so the handshake can succeed.
func fakeEnvelope(mode internal.Mode) *keyrecovery.Envelope {
	var encryptedCreds []byte
	if mode == internal.External {
		encryptedCreds = make([]byte, internal.SecretKeyLen)
	}

	return &keyrecovery.Envelope{
		Nonce:    make([]byte, internal.NonceLength),
		InnerEnv: keyrecovery.InnerEnvelope{EncryptedCreds: encryptedCreds},
		AuthTag:  make([]byte, internal.MACLength),
	}
}
