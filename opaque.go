// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package opaque implements OPAQUE, an asymmetric password-authenticated key exchange protocol
// that is secure against pre-computation attacks. It enables a client to authenticate to a server
// without ever revealing its password to the server. Protocol details can be found on the IETF
// RFC page (https://datatracker.ietf.org/doc/draft-irtf-cfrg-opaque) and on the GitHub
// specification repository (https://github.com/cfrg/draft-irtf-cfrg-opaque). This implementation
// fixes the ciphersuite to ristretto255/SHA-512; unlike the multi-ciphersuite OPAQUE libraries it
// is descended from, Group/OPRF/AKE identifiers aren't configurable.
package opaque

import (
	"errors"
	"fmt"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/ksf"
	"github.com/go-opaque/opaque/message"
)

const confIDsLength = 2

var (
	// errInvalidKSFid is returned when a Configuration names a key-stretching function this
	// implementation doesn't know how to run.
	errInvalidKSFid = errors.New("opaque: invalid KSF id")

	// errInvalidMode is returned when a Configuration names an envelope Mode this
	// implementation doesn't know how to handle.
	errInvalidMode = errors.New("opaque: invalid envelope mode")
)

// Configuration represents an OPAQUE deployment's parameters: how the OPRF output is stretched
// before use, which envelope Mode the client's key pair is managed under, and an optional
// application context mixed into every AKE transcript.
type Configuration struct {
	Context   []byte
	KSF       ksf.Identifier
	KSFParams ksf.Parameters
	Mode      internal.Mode
}

// DefaultConfiguration returns a configuration with strong parameters: Argon2id stretching and
// Internal envelope mode.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		KSF:  ksf.Argon2id,
		Mode: internal.Internal,
	}
}

// Client returns a newly instantiated Client from the Configuration.
func (c *Configuration) Client() (*Client, error) {
	return NewClient(c)
}

// Server returns a newly instantiated Server from the Configuration.
func (c *Configuration) Server() (*Server, error) {
	return NewServer(c)
}

// GenerateOPRFSeed returns an OPRF seed of the correct length (Nh) for this configuration.
func (c *Configuration) GenerateOPRFSeed() ([]byte, error) {
	return RandomBytes(internal.HashLength)
}

// KeyGen returns a fresh AKE key pair for use as a server's long-term key, or a client's in
// External mode.
func (c *Configuration) KeyGen() (secretKey, publicKey []byte, err error) {
	sk, err := group.RandomScalar()
	if err != nil {
		return nil, nil, err
	}

	return sk.Encode(), sk.ScalarBaseMult().Encode(), nil
}

// verify returns an error on the first non-compliant parameter, nil otherwise.
func (c *Configuration) verify() error {
	if !c.KSF.Available() {
		return errInvalidKSFid
	}

	if !c.Mode.Available() {
		return errInvalidMode
	}

	return nil
}

// toInternal builds the internal representation of the configuration parameters.
func (c *Configuration) toInternal() (*internal.Configuration, error) {
	if err := c.verify(); err != nil {
		return nil, err
	}

	return &internal.Configuration{
		Context:   c.Context,
		KSF:       c.KSF,
		KSFParams: c.KSFParams,
		Mode:      c.Mode,
	}, nil
}

// Deserializer returns a Deserializer for messages exchanged under this Configuration.
func (c *Configuration) Deserializer() (*Deserializer, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	return &Deserializer{conf: conf}, nil
}

// Serialize returns the byte encoding of the Configuration: mode, KSF identifier, and context.
func (c *Configuration) Serialize() []byte {
	ids := []byte{byte(c.Mode), byte(c.KSF)}

	return encoding.Concatenate(ids, encoding.EncodeVector(c.Context))
}

// DeserializeConfiguration decodes a Configuration previously produced by Serialize. KSFParams is
// not itself carried on the wire (it is deployment-local tuning, not a protocol parameter) and
// comes back zero-valued, which Harden treats as its conservative defaults.
func DeserializeConfiguration(encoded []byte) (*Configuration, error) {
	if len(encoded) < confIDsLength+2 {
		return nil, internal.ErrConfigurationInvalidLength
	}

	ctx, _, err := encoding.DecodeVector(encoded[confIDsLength:])
	if err != nil {
		return nil, fmt.Errorf("opaque: decoding configuration context: %w", err)
	}

	c := &Configuration{
		Mode:    internal.Mode(encoded[0]),
		KSF:     ksf.Identifier(encoded[1]),
		Context: ctx,
	}

	if err := c.verify(); err != nil {
		return nil, err
	}

	return c, nil
}

// ClientRecord is a server-side structure enabling the storage of user relevant information.
type ClientRecord struct {
	*message.RegistrationRecord
	CredentialIdentifier []byte
	ClientIdentity       []byte
}

// GetFakeRecord creates a fake Client record to be used when no existing client record exists,
// to defend against client enumeration attacks: its masking key is a deterministic function of
// oprfSeed and credentialIdentifier, so the CredentialResponse it produces is indistinguishable
// in length and byte distribution from one built from a genuine record.
func (c *Configuration) GetFakeRecord(credentialIdentifier, oprfSeed []byte) (*ClientRecord, error) {
	conf, err := c.toInternal()
	if err != nil {
		return nil, err
	}

	sk, err := group.RandomScalar()
	if err != nil {
		return nil, err
	}

	regRecord := &message.RegistrationRecord{
		ClientPublicKey: sk.ScalarBaseMult(),
		MaskingKey:      fakeMaskingKey(oprfSeed, credentialIdentifier),
		Envelope:        fakeEnvelope(conf.Mode),
	}

	return &ClientRecord{
		RegistrationRecord:   regRecord,
		CredentialIdentifier: credentialIdentifier,
	}, nil
}

// RandomBytes returns length cryptographically secure random bytes.
func RandomBytes(length int) ([]byte, error) {
	return internal.RandomBytes(length)
}
