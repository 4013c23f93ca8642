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
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/masking"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/internal/tag"
	"github.com/go-opaque/opaque/message"
)

// ClientState holds a single login attempt's secrets between ClientInit and the state's Finish
// call. It is single-use: Finish zeroizes its secrets and refuses a second call.
type ClientState struct {
	password          []byte
	blind             *group.Scalar
	clientSecretShare *group.Scalar
	ke1               *message.KE1
	done              bool
}

// ClientInit blinds password, draws a fresh ephemeral DH share, and returns the client's KE1
// alongside the state needed to process the server's KE2.
func ClientInit(password []byte) (*message.KE1, *ClientState, error) {
	blind, blindedElement, err := oprf.Blind(password)
	if err != nil {
		return nil, nil, err
	}

	clientSecretShare, err := group.RandomScalar()
	if err != nil {
		return nil, nil, err
	}

	clientNonce, err := internal.RandomBytes(internal.NonceLength)
	if err != nil {
		return nil, nil, err
	}

	ke1 := &message.KE1{
		CredentialRequest: &message.CredentialRequest{BlindedElement: blindedElement},
		ClientNonce:       clientNonce,
		ClientKeyshare:    clientSecretShare.ScalarBaseMult(),
	}

	pwd := make([]byte, len(password))
	copy(pwd, password)

	return ke1, &ClientState{password: pwd, blind: blind, clientSecretShare: clientSecretShare, ke1: ke1}, nil
}

// Finish recovers the client's envelope from ke2, verifies the server's MAC over the transcript,
// and returns the client's KE3 plus the shared session key and export key. An envelope that does
// not verify returns keyrecovery.ErrEnvelopeRecovery, a server MAC that does not verify returns
// ErrHandshake, and a second call on the same state returns ErrStateReused.
func (s *ClientState) Finish(
	conf *internal.Configuration, clientIdentity, serverIdentity []byte, ke2 *message.KE2,
) (ke3 *message.KE3, sessionKey, exportKey []byte, err error) {
	if s.done {
		return nil, nil, nil, ErrStateReused
	}

	s.done = true

	defer func() {
		s.blind.Zeroize()
		s.clientSecretShare.Zeroize()
		internal.Zeroize(s.password)
	}()

	oprfOutput := oprf.Finalize(s.password, s.blind, ke2.InnerKE2.CredentialResponse.EvaluatedElement)
	defer internal.Zeroize(oprfOutput)

	hardened, err := conf.KSF.Harden(oprfOutput, conf.KSFParams)
	if err != nil {
		return nil, nil, nil, err
	}

	kdf := hash.New()
	randomizedPwd := kdf.Extract(nil, hardened)
	defer internal.Zeroize(randomizedPwd)

	maskingKey := kdf.Expand(randomizedPwd, []byte(tag.MaskingKey), internal.HashLength)
	defer internal.Zeroize(maskingKey)

	serverPublicKeyBytes, envelope, err := masking.Unmask(
		conf.Mode, maskingKey, ke2.InnerKE2.CredentialResponse.MaskingNonce, ke2.InnerKE2.CredentialResponse.MaskedResponse,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	clientPrivateKeyBytes, exportKey, err := keyrecovery.RecoverEnvelope(
		conf, randomizedPwd, serverPublicKeyBytes, envelope, serverIdentity, clientIdentity,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	defer internal.Zeroize(clientPrivateKeyBytes)

	serverPublicKey, err := group.DecodeElement(serverPublicKeyBytes)
	if err != nil {
		internal.Zeroize(exportKey)
		return nil, nil, nil, err
	}

	clientPrivateKey, err := group.DecodeScalar(clientPrivateKeyBytes)
	if err != nil {
		internal.Zeroize(exportKey)
		return nil, nil, nil, err
	}

	defer clientPrivateKey.Zeroize()

	creds := keyrecovery.CreateCleartextCredentials(
		serverPublicKeyBytes, clientPrivateKey.ScalarBaseMult().Encode(), serverIdentity, clientIdentity,
	)

	transcript, preambleHash := newPreambleTranscript(conf.Context, creds.ClientIdentity, s.ke1, creds.ServerIdentity, ke2.InnerKE2)

	ikm := tripleDH(
		s.clientSecretShare, ke2.InnerKE2.ServerKeyshare,
		s.clientSecretShare, serverPublicKey,
		clientPrivateKey, ke2.InnerKE2.ServerKeyshare,
	)
	defer internal.Zeroize(ikm)

	keys := deriveKeys(ikm, preambleHash)
	defer internal.Zeroize(keys.ClientMacKey)

	expectedServerMac := macTag(keys.ServerMacKey, preambleHash)
	internal.Zeroize(keys.ServerMacKey)

	if !encoding.CTEqual(ke2.ServerMac, expectedServerMac) {
		internal.Zeroize(keys.SessionKey)
		internal.Zeroize(exportKey)

		return nil, nil, nil, ErrHandshake
	}

	transcript.Write(ke2.ServerMac)
	clientMac := macTag(keys.ClientMacKey, transcript.Sum())

	return &message.KE3{ClientMac: clientMac}, keys.SessionKey, exportKey, nil
}
