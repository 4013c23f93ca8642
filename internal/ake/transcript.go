// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ake implements the 3DH authenticated key exchange that follows credential retrieval:
// KE1/KE2/KE3, the transcript preamble they're built from, and the key schedule that turns a
// triple Diffie-Hellman secret into a session key and MAC keys. Grounded on the teacher's
// internal/ake/3dh.go (initTranscript, deriveKeys, k3dh, core3DH), generalized to carry explicit
// client/server Identities throughout rather than assuming the public key stands in for them.
package ake

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"

	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/internal/encoding"
	"github.com/go-opaque/opaque/internal/group"
	"github.com/go-opaque/opaque/internal/hash"
	"github.com/go-opaque/opaque/internal/tag"
	"github.com/go-opaque/opaque/message"
)

// ErrHandshake is returned when a peer's MAC over the AKE transcript does not verify: a tampered
// message, a mismatched identity, or an attacker without the client's or server's long-term key.
var ErrHandshake = errors.New("opaque: AKE handshake verification failed")

// ErrStateReused is returned when a ClientState or ServerState's Finish method is called more
// than once; each login attempt's ephemeral secrets are single-use.
var ErrStateReused = errors.New("opaque: AKE state used more than once")

// ErrInvalidState is returned when a serialized ServerState has the wrong length to decode.
var ErrInvalidState = errors.New("opaque: invalid AKE state length")

// buildPreamble assembles the transcript digest input: the version tag, deployment context,
// both parties' identities, and both AKE messages up to (but not including) the MAC being
// computed over it.
func buildPreamble(context, clientIdentity []byte, ke1 *message.KE1, serverIdentity []byte, innerKE2 *message.InnerKE2) []byte {
	return encoding.Concatenate(
		[]byte(tag.VersionTag),
		encoding.EncodeVector(context),
		encoding.EncodeVector(clientIdentity),
		ke1.Serialize(),
		encoding.EncodeVector(serverIdentity),
		innerKE2.Serialize(),
	)
}

// newPreambleTranscript starts a running transcript hash over the preamble bytes and returns it
// alongside H(preamble). The caller keeps writing to the same transcript as later messages (the
// peer's MAC) are produced, so a second Sum() call gives H(preamble || laterMessage) without
// re-hashing the preamble from scratch: the same running-hash.Hash technique the teacher's
// core3DH uses, so the client and server MAC is computed over a fresh digest of the full
// concatenation rather than a concatenation of digests.
func newPreambleTranscript(context, clientIdentity []byte, ke1 *message.KE1, serverIdentity []byte, innerKE2 *message.InnerKE2) (*hash.Transcript, []byte) {
	t := hash.NewTranscript()
	t.Write(buildPreamble(context, clientIdentity, ke1, serverIdentity, innerKE2))

	return t, t.Sum()
}

// keySchedule holds the key material derived from the 3DH secret and the transcript hash.
type keySchedule struct {
	ServerMacKey []byte
	ClientMacKey []byte
	SessionKey   []byte
}

// deriveKeys turns the 3DH IKM and the preamble's digest into a handshake secret, session key,
// and per-party MAC keys, per the key schedule: prk = Extract(ikm); handshake/session =
// Expand(prk, label || H(preamble)); Km2/Km3 = Expand(handshake, label).
func deriveKeys(ikm, preambleHash []byte) *keySchedule {
	kdf := hash.New()

	prk := kdf.Extract(nil, ikm)
	defer internal.Zeroize(prk)

	handshakeSecret := kdf.Expand(prk, encoding.Concatenate([]byte(tag.Handshake), preambleHash), kdf.Size())
	defer internal.Zeroize(handshakeSecret)

	sessionKey := kdf.Expand(prk, encoding.Concatenate([]byte(tag.SessionKey), preambleHash), kdf.Size())

	return &keySchedule{
		ServerMacKey: kdf.Expand(handshakeSecret, []byte(tag.MacServer), internal.MACLength),
		ClientMacKey: kdf.Expand(handshakeSecret, []byte(tag.MacClient), internal.MACLength),
		SessionKey:   sessionKey,
	}
}

// tripleDH concatenates the three ECDH shared secrets that make up the 3DH IKM. Commutativity of
// scalar multiplication is what lets the client and server compute the same value from their
// respective halves of each pair.
func tripleDH(s1 *group.Scalar, p1 *group.Element, s2 *group.Scalar, p2 *group.Element, s3 *group.Scalar, p3 *group.Element) []byte {
	return encoding.Concat3(
		s1.Multiply(p1).Encode(),
		s2.Multiply(p2).Encode(),
		s3.Multiply(p3).Encode(),
	)
}

// macTag computes HMAC-SHA-512(key, data).
func macTag(key, data []byte) []byte {
	m := hmac.New(sha512.New, key)
	m.Write(data)

	return m.Sum(nil)
}
