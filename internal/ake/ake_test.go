// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ake_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/ake"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/ksf"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/message"
)

func testConfiguration() *internal.Configuration {
	return &internal.Configuration{Context: []byte("ake-test"), KSF: ksf.Identity, Mode: internal.Internal}
}

// register runs the registration protocol end to end (without going through the message
// round-trip, since this package doesn't depend on the top-level API) and returns the resulting
// RegistrationRecord.
func register(t *testing.T, conf *internal.Configuration, password, oprfSeed, credentialIdentifier, serverPublicKey, serverIdentity, clientIdentity []byte) *message.RegistrationRecord {
	t.Helper()

	blind, blindedElement, err := oprf.Blind(password)
	require.NoError(t, err)

	oprfKey, err := oprf.DeriveOprfKey(oprfSeed, credentialIdentifier)
	require.NoError(t, err)

	evaluatedElement := oprf.Evaluate(oprfKey, blindedElement)
	oprfOutput := oprf.Finalize(password, blind, evaluatedElement)

	hardened, err := conf.KSF.Harden(oprfOutput, conf.KSFParams)
	require.NoError(t, err)

	randomizedPwd := hash.New().Extract(nil, hardened)

	envelope, clientPublicKeyBytes, maskingKey, _, err := keyrecovery.CreateEnvelope(
		conf, randomizedPwd, serverPublicKey, nil, serverIdentity, clientIdentity,
	)
	require.NoError(t, err)

	clientPublicKey, err := group.DecodeElement(clientPublicKeyBytes)
	require.NoError(t, err)

	return &message.RegistrationRecord{ClientPublicKey: clientPublicKey, MaskingKey: maskingKey, Envelope: envelope}
}

func TestAKE_EndToEndAgreement(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	record := register(t, conf, password, oprfSeed, credentialIdentifier, pk.Encode(), nil, nil)

	ke1, clientState, err := ake.ClientInit(password)
	require.NoError(t, err)

	ke2, serverState, err := ake.ServerInit(conf, sk, pk, nil, record, credentialIdentifier, oprfSeed, nil, ke1)
	require.NoError(t, err)

	ke3, clientSessionKey, _, err := clientState.Finish(conf, nil, nil, ke2)
	require.NoError(t, err)

	serverSessionKey, err := serverState.Finish(ke3)
	require.NoError(t, err)

	require.Equal(t, serverSessionKey, clientSessionKey)
}

func TestAKE_WrongPasswordFailsHandshake(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")

	record := register(t, conf, []byte("correct horse"), oprfSeed, credentialIdentifier, pk.Encode(), nil, nil)

	ke1, clientState, err := ake.ClientInit([]byte("wrong password"))
	require.NoError(t, err)

	ke2, _, err := ake.ServerInit(conf, sk, pk, nil, record, credentialIdentifier, oprfSeed, nil, ke1)
	require.NoError(t, err)

	_, _, _, err = clientState.Finish(conf, nil, nil, ke2)
	require.Error(t, err)
}

func TestAKE_TamperedRecordFailsHandshake(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	record := register(t, conf, password, oprfSeed, credentialIdentifier, pk.Encode(), nil, nil)
	record.Envelope.AuthTag[0] ^= 0xff

	ke1, clientState, err := ake.ClientInit(password)
	require.NoError(t, err)

	ke2, _, err := ake.ServerInit(conf, sk, pk, nil, record, credentialIdentifier, oprfSeed, nil, ke1)
	require.NoError(t, err)

	_, _, _, err = clientState.Finish(conf, nil, nil, ke2)
	require.ErrorIs(t, err, keyrecovery.ErrEnvelopeRecovery)
}

func TestAKE_ServerKeyMismatchFailsHandshake(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	otherSk, err := group.RandomScalar()
	require.NoError(t, err)
	otherPk := otherSk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	// Register against pk, but the server at login time answers with a different key pair.
	record := register(t, conf, password, oprfSeed, credentialIdentifier, pk.Encode(), nil, nil)

	ke1, clientState, err := ake.ClientInit(password)
	require.NoError(t, err)

	ke2, _, err := ake.ServerInit(conf, otherSk, otherPk, nil, record, credentialIdentifier, oprfSeed, nil, ke1)
	require.NoError(t, err)

	_, _, _, err = clientState.Finish(conf, nil, nil, ke2)
	require.ErrorIs(t, err, keyrecovery.ErrEnvelopeRecovery)
}

func TestAKE_IdentityMismatchFailsHandshake(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	record := register(t, conf, password, oprfSeed, credentialIdentifier, pk.Encode(), []byte("server.example"), []byte("alice@example.com"))

	ke1, clientState, err := ake.ClientInit(password)
	require.NoError(t, err)

	ke2, _, err := ake.ServerInit(conf, sk, pk, []byte("server.example"), record, credentialIdentifier, oprfSeed, []byte("alice@example.com"), ke1)
	require.NoError(t, err)

	// The client insists on a different bound server identity than what was registered.
	_, _, _, err = clientState.Finish(conf, []byte("alice@example.com"), []byte("impostor.example"), ke2)
	require.Error(t, err)
}

func TestAKE_StateSingleUse(t *testing.T) {
	conf := testConfiguration()

	sk, err := group.RandomScalar()
	require.NoError(t, err)
	pk := sk.ScalarBaseMult()

	oprfSeed, err := internal.RandomBytes(internal.SeedLength)
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	record := register(t, conf, password, oprfSeed, credentialIdentifier, pk.Encode(), nil, nil)

	ke1, clientState, err := ake.ClientInit(password)
	require.NoError(t, err)

	ke2, serverState, err := ake.ServerInit(conf, sk, pk, nil, record, credentialIdentifier, oprfSeed, nil, ke1)
	require.NoError(t, err)

	ke3, _, _, err := clientState.Finish(conf, nil, nil, ke2)
	require.NoError(t, err)

	_, err = serverState.Finish(ke3)
	require.NoError(t, err)

	_, err = serverState.Finish(ke3)
	require.ErrorIs(t, err, ake.ErrStateReused)

	_, _, _, err = clientState.Finish(conf, nil, nil, ke2)
	require.ErrorIs(t, err, ake.ErrStateReused)
}
