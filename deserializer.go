// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"github.com/go-opaque/opaque/internal"
	"github.com/go-opaque/opaque/message"
)

// Deserializer parses wire messages under a fixed Configuration; envelope-bearing messages need
// the configuration's Mode to know their expected length.
type Deserializer struct {
	conf *internal.Configuration
}

// RegistrationRequest parses a RegistrationRequest.
func (d *Deserializer) RegistrationRequest(data []byte) (*message.RegistrationRequest, error) {
	return message.DeserializeRegistrationRequest(data)
}

// RegistrationResponse parses a RegistrationResponse.
func (d *Deserializer) RegistrationResponse(data []byte) (*message.RegistrationResponse, error) {
	return message.DeserializeRegistrationResponse(data)
}

// RegistrationRecord parses a RegistrationRecord.
func (d *Deserializer) RegistrationRecord(data []byte) (*message.RegistrationRecord, error) {
	return message.DeserializeRegistrationRecord(d.conf.Mode, data)
}

// KE1 parses a KE1.
func (d *Deserializer) KE1(data []byte) (*message.KE1, error) {
	return message.DeserializeKE1(data)
}

// KE2 parses a KE2.
func (d *Deserializer) KE2(data []byte) (*message.KE2, error) {
	return message.DeserializeKE2(d.conf.Mode, data)
}

// KE3 parses a KE3.
func (d *Deserializer) KE3(data []byte) (*message.KE3, error) {
	return message.DeserializeKE3(data)
}
