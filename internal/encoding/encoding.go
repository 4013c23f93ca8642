// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package encoding provides the wire-level primitives shared by every other package: big-endian
// length prefixing, constant-time xor and comparison, and small concatenation helpers. Nothing
// here is specific to a group or a hash, so OPRF, the envelope, and the AKE transcript all derive
// their serialization from this single place instead of each carrying its own copy.
package encoding

import (
	"crypto/subtle"
	"errors"
)

// ErrLengthMismatch is returned when two byte strings that must be the same length are not.
var ErrLengthMismatch = errors.New("opaque: length mismatch")

// I2OSP encodes a non-negative integer as a big-endian byte string of exactly length bytes.
func I2OSP(value, length int) []byte {
	if length <= 0 {
		return nil
	}

	out := make([]byte, length)

	v := value
	for i := length - 1; i >= 0; i-- {
		out[i] = byte(v & 0xff)
		v >>= 8
	}

	return out
}

// OS2IP decodes a big-endian byte string into an integer.
func OS2IP(data []byte) int {
	v := 0
	for _, b := range data {
		v = v<<8 | int(b)
	}

	return v
}

// EncodeVector returns I2OSP(len(data), 2) || data, the standard 2-byte length-prefixed encoding
// used for variable-length fields (identities, contexts) throughout the wire format.
func EncodeVector(data []byte) []byte {
	return EncodeVectorLen(data, 2)
}

// EncodeVectorLen is EncodeVector but with a caller-chosen length-prefix size.
func EncodeVectorLen(data []byte, lenBytes int) []byte {
	return Concatenate(I2OSP(len(data), lenBytes), data)
}

// DecodeVector reads a 2-byte length-prefixed field off the front of data and returns the field,
// the remaining bytes, and an error if data is too short to hold the declared length.
func DecodeVector(data []byte) (field, rest []byte, err error) {
	if len(data) < 2 {
		return nil, nil, errors.New("opaque: truncated vector length")
	}

	l := OS2IP(data[:2])
	if len(data) < 2+l {
		return nil, nil, errors.New("opaque: truncated vector body")
	}

	return data[2 : 2+l], data[2+l:], nil
}

// Concatenate returns the concatenation of all the given byte strings.
func Concatenate(parts ...[]byte) []byte {
	total := 0
	for _, p := range parts {
		total += len(p)
	}

	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// Concat3 concatenates exactly three byte strings; used by tripleDH to build the 3DH IKM, where
// the arity is fixed and allocating a variadic slice would be wasteful.
func Concat3(a, b, c []byte) []byte {
	out := make([]byte, 0, len(a)+len(b)+len(c))
	out = append(out, a...)
	out = append(out, b...)

	return append(out, c...)
}

// SuffixString appends a plain string suffix to a byte string; used when building HKDF info
// parameters like nonce || "AuthKey".
func SuffixString(data []byte, suffix string) []byte {
	return Concatenate(data, []byte(suffix))
}

// Xor returns a XOR b. Both slices must have equal length, and the operation runs in constant
// time with respect to the byte values (not the lengths, which are public).
func Xor(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}

	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}

	return out, nil
}

// CTEqual reports whether a and b are equal, in constant time. Unequal lengths are reported as
// unequal without leaking timing on the content.
func CTEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}
