// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake

import (
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/masking"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/message"
)

// ServerState holds the expected client MAC and the negotiated session key between ServerInit and
// the state's Finish call. It is single-use: Finish zeroizes its secrets and refuses a second
// call.
type ServerState struct {
	expectedClientMac []byte
	sessionKey        []byte
	done              bool
}

// ServerInit evaluates the OPRF, masks the server's public key and record's envelope behind the
// server's KE2, and derives the session key and both parties' MAC keys from a fresh 3DH exchange. record
// may be a genuine RegistrationRecord or one built by GetFakeRecord for an unknown credential
// identifier; ServerInit treats both identically, which is what keeps an unknown identifier's
// response indistinguishable from a known one's.
func ServerInit(
	conf *internal.Configuration,
	serverPrivateKey *group.Scalar, serverPublicKey *group.Element, serverIdentity []byte,
	record *message.RegistrationRecord, credentialIdentifier, oprfSeed []byte,
	clientIdentity []byte, ke1 *message.KE1,
) (*message.KE2, *ServerState, error) {
	oprfKey, err := oprf.DeriveOprfKey(oprfSeed, credentialIdentifier)
	if err != nil {
		return nil, nil, err
	}

	evaluatedElement := oprf.Evaluate(oprfKey, ke1.CredentialRequest.BlindedElement)

	maskingNonce, maskedResponse, err := masking.Mask(record.MaskingKey, nil, serverPublicKey.Encode(), record.Envelope)
	if err != nil {
		return nil, nil, err
	}

	serverKeyshareScalar, err := group.RandomScalar()
	if err != nil {
		return nil, nil, err
	}

	serverNonce, err := internal.RandomBytes(internal.NonceLength)
	if err != nil {
		return nil, nil, err
	}

	innerKE2 := &message.InnerKE2{
		CredentialResponse: message.NewCredentialResponse(evaluatedElement, maskingNonce, maskedResponse),
		ServerNonce:        serverNonce,
		ServerKeyshare:     serverKeyshareScalar.ScalarBaseMult(),
	}
	defer serverKeyshareScalar.Zeroize()

	creds := keyrecovery.CreateCleartextCredentials(
		serverPublicKey.Encode(), record.ClientPublicKey.Encode(), serverIdentity, clientIdentity,
	)

	transcript, preambleHash := newPreambleTranscript(conf.Context, creds.ClientIdentity, ke1, creds.ServerIdentity, innerKE2)

	ikm := tripleDH(
		serverKeyshareScalar, ke1.ClientKeyshare,
		serverPrivateKey, ke1.ClientKeyshare,
		serverKeyshareScalar, record.ClientPublicKey,
	)
	defer internal.Zeroize(ikm)

	keys := deriveKeys(ikm, preambleHash)

	serverMac := macTag(keys.ServerMacKey, preambleHash)
	internal.Zeroize(keys.ServerMacKey)

	transcript.Write(serverMac)
	expectedClientMac := macTag(keys.ClientMacKey, transcript.Sum())
	internal.Zeroize(keys.ClientMacKey)

	ke2 := &message.KE2{InnerKE2: innerKE2, ServerMac: serverMac}
	state := &ServerState{expectedClientMac: expectedClientMac, sessionKey: keys.SessionKey}

	return ke2, state, nil
}

// Finish verifies ke3's MAC against the expected value computed in ServerInit and, on success,
// returns the session key negotiated with the client.
func (s *ServerState) Finish(ke3 *message.KE3) ([]byte, error) {
	if s.done {
		return nil, ErrStateReused
	}

	s.done = true

	defer internal.Zeroize(s.expectedClientMac)

	if !encoding.CTEqual(ke3.ClientMac, s.expectedClientMac) {
		internal.Zeroize(s.sessionKey)
		return nil, ErrHandshake
	}

	return s.sessionKey, nil
}

// ExpectedMAC returns the client MAC value ServerInit expects in the matching KE3, so a caller
// can compare it out-of-band (e.g. in tests) without waiting for Finish.
func (s *ServerState) ExpectedMAC() []byte {
	return s.expectedClientMac
}

// SessionKey returns the session key negotiated in ServerInit, available before Finish is called.
func (s *ServerState) SessionKey() []byte {
	return s.sessionKey
}

// Serialize encodes the ServerState so it can be persisted between ServerInit and Finish across a
// process boundary: expected_client_mac || session_key.
func (s *ServerState) Serialize() []byte {
	return encoding.Concatenate(s.expectedClientMac, s.sessionKey)
}

// DeserializeServerState parses a ServerState previously produced by Serialize.
func DeserializeServerState(data []byte) (*ServerState, error) {
	if len(data) != internal.MACLength+internal.HashLength {
		return nil, ErrInvalidState
	}

	return &ServerState{
		expectedClientMac: data[:internal.MACLength],
		sessionKey:        data[internal.MACLength:],
	}, nil
}
