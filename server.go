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
	"fmt"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/ake"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/message"
)

var (
	// ErrNoServerKeyMaterial indicates that the server's key material has not been set.
	ErrNoServerKeyMaterial = errors.New("opaque: key material not set: call SetKeyMaterial() first")

	// ErrNoAKEState indicates that GenerateKE2 has not (yet, or successfully) been called, so
	// there is no pending login attempt to finish.
	ErrNoAKEState = errors.New("opaque: no pending login attempt")

	// ErrInvalidOPRFSeedLength indicates that the OPRF seed is not of the right length.
	ErrInvalidOPRFSeedLength = errors.New("opaque: OPRF seed must be Nh bytes")

	// ErrZeroServerSecretKey indicates that the server's private key is a zero scalar.
	ErrZeroServerSecretKey = errors.New("opaque: server secret key is zero")
)

// Server represents an OPAQUE server, exposing its functions and holding its per-configuration
// and per-session state.
type Server struct {
	Deserialize *Deserializer
	conf        *internal.Configuration
	*keyMaterial
	akeState *ake.ServerState
}

type keyMaterial struct {
	serverIdentity  []byte
	serverSecretKey *group.Scalar
	serverPublicKey *group.Element
	oprfSeed        []byte
}

// NewServer returns a Server instantiation given the application Configuration.
func NewServer(c *Configuration) (*Server, error) {
	if c == nil {
		c = DefaultConfiguration()
	}

	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Server{
		Deserialize: &Deserializer{conf: conf},
		conf:        conf,
	}, nil
}

// RegistrationResponse returns a RegistrationResponse message to the input RegistrationRequest
// message.
func (s *Server) RegistrationResponse(
	req *message.RegistrationRequest, serverPublicKey *group.Element, credentialIdentifier, oprfSeed []byte,
) (*message.RegistrationResponse, error) {
	oprfKey, err := oprf.DeriveOprfKey(oprfSeed, credentialIdentifier)
	if err != nil {
		return nil, err
	}

	z := oprf.Evaluate(oprfKey, req.BlindedElement)

	return &message.RegistrationResponse{EvaluatedElement: z, ServerPublicKey: serverPublicKey}, nil
}

// SetKeyMaterial sets the server's identity and mandatory key material to be used during
// GenerateKE2. All these values must be the same as used during client registration and remain
// the same across protocol execution for a given registered client.
//
//   - serverIdentity can be nil, in which case it defaults to serverPublicKey.
//   - serverSecretKey is the server's secret AKE key.
//   - serverPublicKey is the server's public AKE key corresponding to serverSecretKey.
//   - oprfSeed is the long-term, deployment-wide OPRF input seed (Nh bytes).
func (s *Server) SetKeyMaterial(serverIdentity, serverSecretKey, serverPublicKey, oprfSeed []byte) error {
	sks, err := group.DecodeScalar(serverSecretKey)
	if err != nil {
		return fmt.Errorf("opaque: invalid server AKE secret key: %w", err)
	}

	if len(oprfSeed) != internal.HashLength {
		return ErrInvalidOPRFSeedLength
	}

	spk, err := group.DecodeElement(serverPublicKey)
	if err != nil {
		return fmt.Errorf("opaque: invalid server public key: %w", err)
	}

	if sks.IsZero() {
		return ErrZeroServerSecretKey
	}

	s.keyMaterial = &keyMaterial{
		serverIdentity:  serverIdentity,
		serverSecretKey: sks,
		serverPublicKey: spk,
		oprfSeed:        oprfSeed,
	}

	return nil
}

// GenerateKE2 responds to a KE1 message with a KE2 message, given the client's stored record.
// record may come from GetFakeRecord when no record exists for the credential identifier; the
// response is shaped identically either way.
func (s *Server) GenerateKE2(ke1 *message.KE1, record *ClientRecord) (*message.KE2, error) {
	if s.keyMaterial == nil {
		return nil, ErrNoServerKeyMaterial
	}

	ke2, state, err := ake.ServerInit(
		s.conf, s.serverSecretKey, s.serverPublicKey, s.serverIdentity,
		record.RegistrationRecord, record.CredentialIdentifier, s.oprfSeed, record.ClientIdentity, ke1,
	)
	if err != nil {
		return nil, err
	}

	s.akeState = state

	return ke2, nil
}

// LoginFinish verifies the KE3 received from the client and returns the negotiated session key.
func (s *Server) LoginFinish(ke3 *message.KE3) ([]byte, error) {
	if s.akeState == nil {
		return nil, ErrNoAKEState
	}

	return s.akeState.Finish(ke3)
}

// SessionKey returns the session key negotiated by the previous successful GenerateKE2 call.
func (s *Server) SessionKey() []byte {
	if s.akeState == nil {
		return nil
	}

	return s.akeState.SessionKey()
}

// ExpectedMAC returns the expected client MAC if the previous call to GenerateKE2 was successful.
func (s *Server) ExpectedMAC() []byte {
	if s.akeState == nil {
		return nil
	}

	return s.akeState.ExpectedMAC()
}

// SetAKEState sets the internal AKE state of the server from bytes previously produced by
// SerializeState, for servers that persist state between GenerateKE2 and LoginFinish instead of
// holding it in memory.
func (s *Server) SetAKEState(state []byte) error {
	akeState, err := ake.DeserializeServerState(state)
	if err != nil {
		return fmt.Errorf("opaque: setting AKE state: %w", err)
	}

	s.akeState = akeState

	return nil
}

// SerializeState returns the internal AKE state of the server serialized to bytes.
func (s *Server) SerializeState() []byte {
	if s.akeState == nil {
		return nil
	}

	return s.akeState.Serialize()
}
