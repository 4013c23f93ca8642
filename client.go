// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/ake"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/keyrecovery"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/message"
)

var (
	// ErrNoRegistrationState is returned when RegistrationFinalize is called without a prior,
	// not-yet-consumed call to RegistrationRequest.
	ErrNoRegistrationState = errors.New("opaque: no pending registration request")

	// ErrNoClientState is returned when LoginFinish is called without a prior, not-yet-consumed
	// call to LoginInit.
	ErrNoClientState = errors.New("opaque: no pending login attempt")
)

// Client represents an OPAQUE client, exposing registration and login under a fixed
// Configuration.
type Client struct {
	conf       *internal.Configuration
	regState   *clientRegistrationState
	loginState *ake.ClientState
}

// NewClient returns a newly instantiated Client from the Configuration.
func NewClient(c *Configuration) (*Client, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Client{conf: conf}, nil
}

// clientRegistrationState holds the blind between RegistrationRequest and RegistrationFinalize.
// It is single-use: RegistrationFinalize zeroizes it and refuses a second call.
type clientRegistrationState struct {
	password []byte
	blind    *group.Scalar
	done     bool
}

// RegistrationRequest blinds password and returns the client's first registration message.
func (c *Client) RegistrationRequest(password []byte) (*message.RegistrationRequest, error) {
	blind, blindedElement, err := oprf.Blind(password)
	if err != nil {
		return nil, err
	}

	pwd := make([]byte, len(password))
	copy(pwd, password)

	c.regState = &clientRegistrationState{password: pwd, blind: blind}

	return &message.RegistrationRequest{BlindedElement: blindedElement}, nil
}

// RegistrationFinalize completes registration: it unblinds the server's OPRF evaluation, seals a
// fresh Envelope under the resulting randomized password, and returns the RegistrationRecord the
// server should store plus the client's export key. clientPrivateKey is ignored under Internal
// mode and required under External mode.
func (c *Client) RegistrationFinalize(
	resp *message.RegistrationResponse, clientPrivateKey, serverIdentity, clientIdentity []byte,
) (*message.RegistrationRecord, []byte, error) {
	if c.regState == nil || c.regState.done {
		return nil, nil, ErrNoRegistrationState
	}

	c.regState.done = true

	defer func() {
		c.regState.blind.Zeroize()
		internal.Zeroize(c.regState.password)
	}()

	oprfOutput := oprf.Finalize(c.regState.password, c.regState.blind, resp.EvaluatedElement)
	defer internal.Zeroize(oprfOutput)

	hardened, err := c.conf.KSF.Harden(oprfOutput, c.conf.KSFParams)
	if err != nil {
		return nil, nil, err
	}

	randomizedPwd := hash.New().Extract(nil, hardened)
	defer internal.Zeroize(randomizedPwd)

	envelope, clientPublicKeyBytes, maskingKey, exportKey, err := keyrecovery.CreateEnvelope(
		c.conf, randomizedPwd, resp.ServerPublicKey.Encode(), clientPrivateKey, serverIdentity, clientIdentity,
	)
	if err != nil {
		return nil, nil, err
	}

	clientPublicKey, err := group.DecodeElement(clientPublicKeyBytes)
	if err != nil {
		internal.Zeroize(exportKey)
		return nil, nil, err
	}

	record := &message.RegistrationRecord{
		ClientPublicKey: clientPublicKey,
		MaskingKey:      maskingKey,
		Envelope:        envelope,
	}

	return record, exportKey, nil
}

// LoginInit blinds password and returns the client's KE1, the first message of the login AKE.
func (c *Client) LoginInit(password []byte) (*message.KE1, error) {
	ke1, state, err := ake.ClientInit(password)
	if err != nil {
		return nil, err
	}

	c.loginState = state

	return ke1, nil
}

// LoginFinish processes the server's KE2, returning the client's KE3 plus the negotiated session
// key and export key. A verification failure returns internal/ake.ErrHandshake or
// internal/keyrecovery.ErrEnvelopeRecovery; either indicates a wrong password, a tampered record,
// or a server that does not hold the expected key material.
func (c *Client) LoginFinish(
	clientIdentity, serverIdentity []byte, ke2 *message.KE2,
) (*message.KE3, []byte, []byte, error) {
	if c.loginState == nil {
		return nil, nil, nil, ErrNoClientState
	}

	return c.loginState.Finish(c.conf, clientIdentity, serverIdentity, ke2)
}
