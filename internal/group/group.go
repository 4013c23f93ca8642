// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package group wraps github.com/gtank/ristretto255 behind the Scalar/Element vocabulary the rest
// of the protocol uses, and adds the two group-level operations the protocol needs beyond what
// the library exposes directly: a nonzero random scalar and hash-to-group.
package group

import (
	"crypto/rand"
	"errors"

	"github.com/gtank/ristretto255"

	"github.com/go-opaque/opaque/internal/encoding"
	ihash "github.com/go-opaque/opaque/internal/hash"
)

// ScalarLength is the encoded size of a Ristretto255 scalar (Ns in the protocol's notation).
const ScalarLength = 32

// ElementLength is the encoded size of a compressed Ristretto255 element (Npk).
const ElementLength = 32

// uniformBytesLength is the input size FromUniformBytes requires for both scalars and elements.
const uniformBytesLength = 64

// ErrInvalidScalar is returned when decoding a non-canonical or otherwise invalid scalar encoding.
var ErrInvalidScalar = errors.New("opaque: invalid scalar encoding")

// ErrInvalidElement is returned when decoding a non-canonical or otherwise invalid element
// encoding, including the group identity element where it isn't permitted.
var ErrInvalidElement = errors.New("opaque: invalid element encoding")

// Scalar is an element of the Ristretto255 scalar field.
type Scalar struct {
	s *ristretto255.Scalar
}

// Element is a compressed Ristretto255 group element.
type Element struct {
	e *ristretto255.Element
}

// Base returns the group's base point B.
func Base() *Element {
	return &Element{e: ristretto255.NewElement().Base()}
}

// RandomScalar draws a uniformly random, nonzero scalar using crypto/rand.
func RandomScalar() (*Scalar, error) {
	for {
		b := make([]byte, uniformBytesLength)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}

		s := ristretto255.NewScalar().FromUniformBytes(b)
		if s.Equal(ristretto255.NewScalar().Zero()) == 1 {
			continue
		}

		return &Scalar{s: s}, nil
	}
}

// HashToGroup maps input onto a uniformly random group element via expand_message_xmd, per
// hash-to-curve §3: RistrettoPoint::from_uniform_bytes(expand_message_xmd(input, dst, 64)).
func HashToGroup(input, dst []byte) (*Element, error) {
	uniform, err := ihash.ExpandMessageXMD(input, dst, uniformBytesLength)
	if err != nil {
		return nil, err
	}

	return &Element{e: ristretto255.NewElement().FromUniformBytes(uniform)}, nil
}

// HashToScalar maps input onto a uniformly random, nonzero scalar via expand_message_xmd. This is
// the group-side step of DeriveKeyPair.
func HashToScalar(input, dst []byte) (*Scalar, error) {
	uniform, err := ihash.ExpandMessageXMD(input, dst, uniformBytesLength)
	if err != nil {
		return nil, err
	}

	s := ristretto255.NewScalar().FromUniformBytes(uniform)
	if s.Equal(ristretto255.NewScalar().Zero()) == 1 {
		// Resample deterministically by re-expanding with a counter appended; astronomically
		// unlikely in practice, but the protocol requires a nonzero key.
		return HashToScalar(encoding.Concatenate(input, []byte{0}), dst)
	}

	return &Scalar{s: s}, nil
}

// DecodeScalar decodes a canonical 32-byte scalar encoding.
func DecodeScalar(data []byte) (*Scalar, error) {
	if len(data) != ScalarLength {
		return nil, ErrInvalidScalar
	}

	s := ristretto255.NewScalar()
	if err := s.Decode(data); err != nil {
		return nil, ErrInvalidScalar
	}

	return &Scalar{s: s}, nil
}

// DecodeElement decodes a canonical 32-byte compressed element encoding.
func DecodeElement(data []byte) (*Element, error) {
	if len(data) != ElementLength {
		return nil, ErrInvalidElement
	}

	e := ristretto255.NewElement()
	if err := e.Decode(data); err != nil {
		return nil, ErrInvalidElement
	}

	return &Element{e: e}, nil
}

// Encode returns the canonical 32-byte encoding of s.
func (s *Scalar) Encode() []byte {
	return s.s.Encode(nil)
}

// Zeroize destroys s's value in place, so a dropped secret scalar (a blind, an ephemeral or
// long-term private key) doesn't linger in memory.
func (s *Scalar) Zeroize() {
	s.s.Zero()
}

// IsZero reports whether s is the zero scalar; a zero AKE secret key would make every DH share it
// produces the identity element.
func (s *Scalar) IsZero() bool {
	return s.s.Equal(ristretto255.NewScalar().Zero()) == 1
}

// Invert returns the multiplicative inverse of s.
func (s *Scalar) Invert() *Scalar {
	return &Scalar{s: ristretto255.NewScalar().Invert(s.s)}
}

// ScalarBaseMult returns s·B.
func (s *Scalar) ScalarBaseMult() *Element {
	return &Element{e: ristretto255.NewElement().ScalarBaseMult(s.s)}
}

// Multiply returns s·e.
func (s *Scalar) Multiply(e *Element) *Element {
	return &Element{e: ristretto255.NewElement().ScalarMult(s.s, e.e)}
}

// Encode returns the canonical 32-byte compressed encoding of e.
func (e *Element) Encode() []byte {
	return e.e.Encode(nil)
}

// Equal reports whether e and other encode the same group element.
func (e *Element) Equal(other *Element) bool {
	return e.e.Equal(other.e) == 1
}
