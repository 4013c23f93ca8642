// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ksf implements the pluggable "Harden" key-stretching step applied to the OPRF output
// before it is fed into HKDF-Extract. It is a function-typed configuration value, not global
// state, so a Configuration can be instantiated once per deployment with whatever parameters that
// deployment's threat model calls for.
package ksf

import (
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// ErrUnknownIdentifier is returned when Harden is called with an Identifier this package doesn't
// implement.
var ErrUnknownIdentifier = errors.New("opaque: unknown key-stretching function identifier")

// Identifier selects a registered key-stretching function.
type Identifier byte

const (
	// Identity performs no stretching; only safe for tests and deterministic vectors.
	Identity Identifier = iota

	// Argon2id stretches with golang.org/x/crypto/argon2 in its Argon2id variant.
	Argon2id

	// Scrypt stretches with golang.org/x/crypto/scrypt, the classic OPAQUE-draft alternative MHF.
	Scrypt
)

// Parameters tunes the chosen key-stretching function. Zero values fall back to conservative
// interactive-login defaults.
type Parameters struct {
	// Argon2 tuning.
	Time    uint32
	Memory  uint32
	Threads uint8

	// Scrypt tuning (N must be a power of two).
	N, R, P int

	// OutputLength is the number of bytes to return; defaults to the input length if zero.
	OutputLength int
}

func (p Parameters) withDefaults(inputLen int) Parameters {
	out := p

	if out.OutputLength == 0 {
		out.OutputLength = inputLen
	}

	if out.Time == 0 {
		out.Time = 3
	}

	if out.Memory == 0 {
		out.Memory = 64 * 1024
	}

	if out.Threads == 0 {
		out.Threads = 4
	}

	if out.N == 0 {
		out.N = 32768
	}

	if out.R == 0 {
		out.R = 8
	}

	if out.P == 0 {
		out.P = 1
	}

	return out
}

// Harden stretches ikm according to id and params, returning OutputLength bytes (or len(ikm) if
// unset). Identity returns ikm unchanged (truncated/not, per spec it's pass-through).
func (id Identifier) Harden(ikm []byte, params Parameters) ([]byte, error) {
	p := params.withDefaults(len(ikm))

	switch id {
	case Identity:
		return ikm, nil
	case Argon2id:
		return argon2.IDKey(ikm, nil, p.Time, p.Memory, p.Threads, uint32(p.OutputLength)), nil
	case Scrypt:
		return scrypt.Key(ikm, nil, p.N, p.R, p.P, p.OutputLength)
	default:
		return nil, ErrUnknownIdentifier
	}
}

// Available reports whether id is one this package knows how to run.
func (id Identifier) Available() bool {
	return id == Identity || id == Argon2id || id == Scrypt
}
