// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package hash wraps SHA-512, HKDF-Extract/Expand, and expand_message_xmd behind a single type so
// the OPRF, envelope, and AKE layers all derive key material the same way.
package hash

import (
	"crypto/sha512"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/go-opaque/opaque/internal/encoding"
)

// Size is the SHA-512 digest size in bytes (Nh in the protocol's notation).
const Size = sha512.Size

// blockSize is SHA-512's input block size (r_in_bytes in expand_message_xmd).
const blockSize = 128

// ErrExpandTooLarge is returned when expand_message_xmd is asked for more output than 255 blocks
// of the underlying hash can produce.
var ErrExpandTooLarge = errors.New("opaque: requested expansion exceeds 255 hash blocks")

// KDF bundles HKDF-Extract and HKDF-Expand over SHA-512.
type KDF struct{}

// New returns the fixed SHA-512-based KDF used by this ciphersuite.
func New() *KDF {
	return &KDF{}
}

// Size returns the output size of the underlying hash.
func (*KDF) Size() int {
	return Size
}

// Extract implements HKDF-Extract(salt, ikm) per RFC 5869.
func (*KDF) Extract(salt, ikm []byte) []byte {
	return hkdf.Extract(sha512.New, ikm, salt)
}

// Expand implements HKDF-Expand(prk, info, length) per RFC 5869.
func (*KDF) Expand(prk, info []byte, length int) []byte {
	reader := hkdf.Expand(sha512.New, prk, info)

	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		// hkdf.Expand's reader only fails when length exceeds 255*Size, which every caller
		// in this package stays well under; surfacing a panic here would hide a programming
		// error rather than a runtime condition.
		panic(err)
	}

	return out
}

// Sum512 returns the plain SHA-512 digest of data.
func Sum512(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// Transcript is an incremental SHA-512 hash used to build the AKE preamble digest: bytes are
// written as protocol messages are processed, and Sum() may be called repeatedly without
// disturbing further writes (mirroring the teacher's running "p.Hash.Write(...); p.Hash.Sum()"
// pattern).
type Transcript struct {
	h hash.Hash
}

// NewTranscript returns an empty transcript hash.
func NewTranscript() *Transcript {
	return &Transcript{h: sha512.New()}
}

// Write appends data to the transcript.
func (t *Transcript) Write(data []byte) {
	t.h.Write(data)
}

// Sum returns the current digest without resetting the transcript.
func (t *Transcript) Sum() []byte {
	return t.h.Sum(nil)
}

// ExpandMessageXMD implements expand_message_xmd from RFC 9380 §5.3.1 using SHA-512, with
// b_in_bytes=64 and r_in_bytes=128 as fixed by this ciphersuite.
func ExpandMessageXMD(msg, dst []byte, lengthInBytes int) ([]byte, error) {
	ell := (lengthInBytes + Size - 1) / Size
	if ell > 255 {
		return nil, ErrExpandTooLarge
	}

	dstPrime := encoding.Concatenate(dst, encoding.I2OSP(len(dst), 1))
	zPad := make([]byte, blockSize)
	libStr := encoding.I2OSP(lengthInBytes, 2)

	msgPrime := encoding.Concatenate(zPad, msg, libStr, encoding.I2OSP(0, 1), dstPrime)

	b0 := Sum512(msgPrime)
	b1 := Sum512(encoding.Concatenate(b0, encoding.I2OSP(1, 1), dstPrime))

	uniformBytes := make([]byte, 0, ell*Size)
	uniformBytes = append(uniformBytes, b1...)

	prev := b1
	for i := 2; i <= ell; i++ {
		xored, err := encoding.Xor(b0, prev)
		if err != nil {
			return nil, err
		}

		bi := Sum512(encoding.Concatenate(xored, encoding.I2OSP(i, 1), dstPrime))
		uniformBytes = append(uniformBytes, bi...)
		prev = bi
	}

	return uniformBytes[:lengthInBytes], nil
}
