// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keyrecovery builds and recovers the credential Envelope: the client-side key material
// sealed under the OPRF-derived randomized password and bound to the server's identity via an
// HMAC auth tag. Both the Internal (deterministically derived client key) and External
// (client-supplied key, XOR-masked) modes described in the original Rust envelope.rs are
// implemented here, generalized from the teacher's Internal-only snippet.
package keyrecovery

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/oprf"
	"github.com/go-opaque/opaque/internal/tag"
)

// ErrEnvelopeRecovery is returned when an Envelope's auth tag does not match: wrong password, a
// tampered record, or a mismatched server key.
var ErrEnvelopeRecovery = errors.New("opaque: envelope recovery failed")

// ErrInvalidEnvelopeEncoding is returned when an Envelope's wire encoding has the wrong length for
// its mode.
var ErrInvalidEnvelopeEncoding = errors.New("opaque: invalid envelope encoding")

// InnerEnvelope is the mode-dependent part of the Envelope: empty under Internal mode, or the
// XOR-masked client secret key under External mode.
type InnerEnvelope struct {
	EncryptedCreds []byte
}

// Serialize returns the InnerEnvelope's wire encoding (empty slice under Internal mode).
func (ie InnerEnvelope) Serialize() []byte {
	return ie.EncryptedCreds
}

// Envelope is the client's sealed credential package, stored by the server alongside the client's
// public key and masking key (message.RegistrationRecord).
type Envelope struct {
	Nonce    []byte
	InnerEnv InnerEnvelope
	AuthTag  []byte
}

// Serialize returns nonce || inner_env || auth_tag.
func (e *Envelope) Serialize() []byte {
	return encoding.Concatenate(e.Nonce, e.InnerEnv.Serialize(), e.AuthTag)
}

// Deserialize parses an Envelope encoded under the given mode.
func Deserialize(mode internal.Mode, data []byte) (*Envelope, error) {
	if len(data) != mode.EnvelopeSize() {
		return nil, ErrInvalidEnvelopeEncoding
	}

	nonce := data[:internal.NonceLength]
	rest := data[internal.NonceLength:]

	var inner InnerEnvelope
	if mode == internal.External {
		inner.EncryptedCreds = rest[:internal.SecretKeyLen]
		rest = rest[internal.SecretKeyLen:]
	}

	return &Envelope{Nonce: nonce, InnerEnv: inner, AuthTag: rest}, nil
}

// CleartextCredentials is the (untransmitted) triple bound into the envelope's auth tag: the
// server's public key, and the server/client identities, each defaulting to the corresponding
// encoded public key when not supplied.
type CleartextCredentials struct {
	ServerPublicKey []byte
	ServerIdentity  []byte
	ClientIdentity  []byte
}

// CreateCleartextCredentials applies the identity defaulting rule from spec §3: server_identity
// defaults to serverPublicKey, client_identity defaults to clientPublicKey.
func CreateCleartextCredentials(serverPublicKey, clientPublicKey, serverIdentity, clientIdentity []byte) *CleartextCredentials {
	if len(serverIdentity) == 0 {
		serverIdentity = serverPublicKey
	}

	if len(clientIdentity) == 0 {
		clientIdentity = clientPublicKey
	}

	return &CleartextCredentials{
		ServerPublicKey: serverPublicKey,
		ServerIdentity:  serverIdentity,
		ClientIdentity:  clientIdentity,
	}
}

// Serialize returns the byte string the auth tag MACs over, alongside the envelope nonce and
// inner envelope.
func (c *CleartextCredentials) Serialize() []byte {
	return encoding.Concatenate(
		encoding.EncodeVector(c.ServerPublicKey),
		encoding.EncodeVector(c.ServerIdentity),
		encoding.EncodeVector(c.ClientIdentity),
	)
}

func deriveAuthKeyPair(randomizedPwd, nonce []byte) (*group.Scalar, *group.Element, error) {
	kdf := hash.New()
	seed := kdf.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.PrivateKey), internal.SecretKeyLen)

	return oprf.DeriveKeyPair(seed)
}

// buildInnerEnvelope constructs the mode-dependent InnerEnvelope and returns the client's public
// key. Under Internal mode the client key pair is entirely derived from randomizedPwd and nonce;
// under External mode, clientPrivateKey must be supplied by the caller.
func buildInnerEnvelope(mode internal.Mode, randomizedPwd, nonce, clientPrivateKey []byte) (InnerEnvelope, []byte, []byte, error) {
	switch mode {
	case internal.Internal:
		sk, pk, err := deriveAuthKeyPair(randomizedPwd, nonce)
		if err != nil {
			return InnerEnvelope{}, nil, nil, err
		}

		return InnerEnvelope{}, pk.Encode(), sk.Encode(), nil

	case internal.External:
		kdf := hash.New()
		pad := kdf.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.Pad), len(clientPrivateKey))

		encryptedCreds, err := encoding.Xor(clientPrivateKey, pad)
		if err != nil {
			return InnerEnvelope{}, nil, nil, err
		}

		sk, err := group.DecodeScalar(clientPrivateKey)
		if err != nil {
			return InnerEnvelope{}, nil, nil, err
		}

		pk := sk.ScalarBaseMult()

		return InnerEnvelope{EncryptedCreds: encryptedCreds}, pk.Encode(), clientPrivateKey, nil

	default:
		return InnerEnvelope{}, nil, nil, errors.New("opaque: unknown envelope mode")
	}
}

// recoverKeys reverses buildInnerEnvelope, returning the client's private and public keys.
func recoverKeys(mode internal.Mode, randomizedPwd, nonce []byte, inner InnerEnvelope) (clientPrivateKey, clientPublicKey []byte, err error) {
	switch mode {
	case internal.Internal:
		sk, pk, err := deriveAuthKeyPair(randomizedPwd, nonce)
		if err != nil {
			return nil, nil, err
		}

		return sk.Encode(), pk.Encode(), nil

	case internal.External:
		kdf := hash.New()
		pad := kdf.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.Pad), len(inner.EncryptedCreds))

		clientPrivateKey, err := encoding.Xor(inner.EncryptedCreds, pad)
		if err != nil {
			return nil, nil, err
		}

		sk, err := group.DecodeScalar(clientPrivateKey)
		if err != nil {
			return nil, nil, err
		}

		return clientPrivateKey, sk.ScalarBaseMult().Encode(), nil

	default:
		return nil, nil, errors.New("opaque: unknown envelope mode")
	}
}

func authTag(randomizedPwd []byte, nonce []byte, inner InnerEnvelope, creds *CleartextCredentials) []byte {
	kdf := hash.New()
	authKey := kdf.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.AuthKey), internal.HashLength)

	mac := hmac.New(sha512.New, authKey)
	mac.Write(encoding.Concatenate(nonce, inner.Serialize(), creds.Serialize()))

	return mac.Sum(nil)
}

// CreateEnvelope builds a fresh Envelope, client public key, masking key, and export key from the
// OPRF-derived randomizedPwd, per spec §4.5 CreateEnvelope.
func CreateEnvelope(
	conf *internal.Configuration,
	randomizedPwd, serverPublicKey, clientPrivateKey, serverIdentity, clientIdentity []byte,
) (envelope *Envelope, clientPublicKey, maskingKey, exportKey []byte, err error) {
	nonce, err := internal.RandomBytes(internal.NonceLength)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	kdf := hash.New()
	exportKey = kdf.Expand(randomizedPwd, encoding.SuffixString(nonce, tag.ExportKey), internal.HashLength)
	maskingKey = kdf.Expand(randomizedPwd, []byte(tag.MaskingKey), internal.HashLength)

	inner, clientPublicKey, _, err := buildInnerEnvelope(conf.Mode, randomizedPwd, nonce, clientPrivateKey)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	creds := CreateCleartextCredentials(serverPublicKey, clientPublicKey, serverIdentity, clientIdentity)
	tagBytes := authTag(randomizedPwd, nonce, inner, creds)

	envelope = &Envelope{Nonce: nonce, InnerEnv: inner, AuthTag: tagBytes}

	return envelope, clientPublicKey, maskingKey, exportKey, nil
}

// RecoverEnvelope verifies envelope's auth tag and, on success, returns the client's private key
// and export key. Returns ErrEnvelopeRecovery on any mismatch: wrong password, tampered record, or
// mismatched server key/identity (spec §4.5 RecoverEnvelope, testable properties #2, #3, #4, #5).
func RecoverEnvelope(
	conf *internal.Configuration,
	randomizedPwd, serverPublicKey []byte,
	envelope *Envelope,
	serverIdentity, clientIdentity []byte,
) (clientPrivateKey, exportKey []byte, err error) {
	kdf := hash.New()
	exportKey = kdf.Expand(randomizedPwd, encoding.SuffixString(envelope.Nonce, tag.ExportKey), internal.HashLength)

	clientPrivateKey, clientPublicKey, err := recoverKeys(conf.Mode, randomizedPwd, envelope.Nonce, envelope.InnerEnv)
	if err != nil {
		internal.Zeroize(exportKey)
		return nil, nil, err
	}

	creds := CreateCleartextCredentials(serverPublicKey, clientPublicKey, serverIdentity, clientIdentity)
	expectedTag := authTag(randomizedPwd, envelope.Nonce, envelope.InnerEnv, creds)

	if !encoding.CTEqual(envelope.AuthTag, expectedTag) {
		internal.Zeroize(exportKey)
		internal.Zeroize(clientPrivateKey)

		return nil, nil, ErrEnvelopeRecovery
	}

	return clientPrivateKey, exportKey, nil
}
