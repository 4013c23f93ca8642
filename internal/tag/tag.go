// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package tag holds the domain-separation strings used throughout the protocol, so every
// package derives them from a single source instead of each carrying its own copy.
package tag

const (
	// OPRFVersionPrefix prefixes the OPRF hash-to-group domain separation tag.
	OPRFVersionPrefix = "VOPRF06-HashToGroup-"

	// OPRFFinalizePrefix prefixes the OPRF finalize domain separation tag.
	OPRFFinalizePrefix = "VOPRF06-Finalize-"

	// DeriveKeyPair is the label used when deriving a scalar/public-key pair from a seed.
	DeriveKeyPair = "OPAQUE-HashToScalar"

	// ExpandOPRF suffixes a credential identifier when deriving the per-client OPRF key seed.
	ExpandOPRF = "OprfKey"

	// AuthKey labels the envelope authentication key derivation.
	AuthKey = "AuthKey"

	// ExportKey labels the client export key derivation.
	ExportKey = "ExportKey"

	// MaskingKey labels the masking key derivation.
	MaskingKey = "MaskingKey"

	// CredentialResponsePad labels the masking pad derivation.
	CredentialResponsePad = "CredentialResponsePad"

	// PrivateKey labels the Internal-mode client private key seed derivation.
	PrivateKey = "PrivateKey"

	// Pad labels the External-mode client secret key encryption pad derivation.
	Pad = "Pad"

	// VersionTag prefixes the AKE transcript preamble.
	VersionTag = "OPAQUEv1-"

	// Handshake labels the handshake secret derivation.
	Handshake = "HandshakeSecret"

	// SessionKey labels the session key derivation.
	SessionKey = "SessionKey"

	// MacServer labels the server MAC key derivation.
	MacServer = "ServerMAC"

	// MacClient labels the client MAC key derivation.
	MacClient = "ClientMAC"

	// FakeMaskingKey labels the deterministic masking-key derivation used when no record
	// exists for a credential identifier, so the server's response is indistinguishable from
	// the known-record case.
	FakeMaskingKey = "FakeMaskingKey"
)
