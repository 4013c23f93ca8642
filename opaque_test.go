// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-opaque/opaque"
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/ake"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/ksf"
)

func testConfig() *opaque.Configuration {
	return &opaque.Configuration{KSF: ksf.Identity, Mode: internal.Internal, Context: []byte("opaque-test")}
}

// register runs a full registration exchange over the wire message types and returns the
// resulting record.
func register(t *testing.T, conf *opaque.Configuration, password []byte, serverPublicKey []byte, credentialIdentifier, oprfSeed []byte) *opaque.ClientRecord {
	t.Helper()

	client, err := conf.Client()
	require.NoError(t, err)

	server, err := conf.Server()
	require.NoError(t, err)

	req, err := client.RegistrationRequest(password)
	require.NoError(t, err)

	spk, err := group.DecodeElement(serverPublicKey)
	require.NoError(t, err)

	resp, err := server.RegistrationResponse(req, spk, credentialIdentifier, oprfSeed)
	require.NoError(t, err)

	record, _, err := client.RegistrationFinalize(resp, nil, nil, nil)
	require.NoError(t, err)

	return &opaque.ClientRecord{RegistrationRecord: record, CredentialIdentifier: credentialIdentifier}
}

func TestOpaque_EndToEndAgreement(t *testing.T) {
	conf := testConfig()

	sk, pk, err := conf.KeyGen()
	require.NoError(t, err)

	server, err := conf.Server()
	require.NoError(t, err)

	oprfSeed, err := conf.GenerateOPRFSeed()
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	clientRecord := register(t, conf, password, pk, credentialIdentifier, oprfSeed)

	require.NoError(t, server.SetKeyMaterial(nil, sk, pk, oprfSeed))

	client, err := conf.Client()
	require.NoError(t, err)

	ke1, err := client.LoginInit(password)
	require.NoError(t, err)

	ke2, err := server.GenerateKE2(ke1, clientRecord)
	require.NoError(t, err)

	ke3, clientSessionKey, _, err := client.LoginFinish(nil, nil, ke2)
	require.NoError(t, err)

	serverSessionKey, err := server.LoginFinish(ke3)
	require.NoError(t, err)

	require.Equal(t, serverSessionKey, clientSessionKey)
	require.Equal(t, server.SessionKey(), serverSessionKey)
}

func TestOpaque_WrongPasswordFails(t *testing.T) {
	conf := testConfig()

	sk, pk, err := conf.KeyGen()
	require.NoError(t, err)

	server, err := conf.Server()
	require.NoError(t, err)

	oprfSeed, err := conf.GenerateOPRFSeed()
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")

	clientRecord := register(t, conf, []byte("correct horse"), pk, credentialIdentifier, oprfSeed)
	require.NoError(t, server.SetKeyMaterial(nil, sk, pk, oprfSeed))

	client, err := conf.Client()
	require.NoError(t, err)

	ke1, err := client.LoginInit([]byte("wrong password"))
	require.NoError(t, err)

	ke2, err := server.GenerateKE2(ke1, clientRecord)
	require.NoError(t, err)

	_, _, _, err = client.LoginFinish(nil, nil, ke2)
	require.ErrorIs(t, err, keyrecovery.ErrEnvelopeRecovery)
}

func TestOpaque_MissingRecordIndistinguishable(t *testing.T) {
	conf := testConfig()

	sk, pk, err := conf.KeyGen()
	require.NoError(t, err)

	server, err := conf.Server()
	require.NoError(t, err)

	oprfSeed, err := conf.GenerateOPRFSeed()
	require.NoError(t, err)
	require.NoError(t, server.SetKeyMaterial(nil, sk, pk, oprfSeed))

	realRecord := register(t, conf, []byte("correct horse"), pk, []byte("alice"), oprfSeed)
	fakeRecord, err := conf.GetFakeRecord([]byte("bob-does-not-exist"), oprfSeed)
	require.NoError(t, err)

	client1, err := conf.Client()
	require.NoError(t, err)
	ke1a, err := client1.LoginInit([]byte("anything"))
	require.NoError(t, err)

	client2, err := conf.Client()
	require.NoError(t, err)
	ke1b, err := client2.LoginInit([]byte("anything"))
	require.NoError(t, err)

	ke2Real, err := server.GenerateKE2(ke1a, realRecord)
	require.NoError(t, err)

	ke2Fake, err := server.GenerateKE2(ke1b, fakeRecord)
	require.NoError(t, err)

	require.Len(t, ke2Fake.Serialize(), len(ke2Real.Serialize()))
}

func TestOpaque_ClientStateSingleUse(t *testing.T) {
	conf := testConfig()

	sk, pk, err := conf.KeyGen()
	require.NoError(t, err)

	server, err := conf.Server()
	require.NoError(t, err)

	oprfSeed, err := conf.GenerateOPRFSeed()
	require.NoError(t, err)
	credentialIdentifier := []byte("alice")
	password := []byte("correct horse battery staple")

	clientRecord := register(t, conf, password, pk, credentialIdentifier, oprfSeed)
	require.NoError(t, server.SetKeyMaterial(nil, sk, pk, oprfSeed))

	client, err := conf.Client()
	require.NoError(t, err)

	ke1, err := client.LoginInit(password)
	require.NoError(t, err)

	ke2, err := server.GenerateKE2(ke1, clientRecord)
	require.NoError(t, err)

	_, _, _, err = client.LoginFinish(nil, nil, ke2)
	require.NoError(t, err)

	_, _, _, err = client.LoginFinish(nil, nil, ke2)
	require.ErrorIs(t, err, ake.ErrStateReused)
}

func TestOpaque_ConfigurationSerializeRoundTrip(t *testing.T) {
	conf := testConfig()

	decoded, err := opaque.DeserializeConfiguration(conf.Serialize())
	require.NoError(t, err)
	require.Equal(t, conf.Mode, decoded.Mode)
	require.Equal(t, conf.KSF, decoded.KSF)
	require.Equal(t, conf.Context, decoded.Context)
}
