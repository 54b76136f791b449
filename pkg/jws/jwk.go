/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws implements the detached-payload compact JWS envelope and
// JWK type this protocol's signed_data fields use (ES256K over
// secp256k1), grounded on the JWK/Headers shape trustbloc-did-go's
// internal/jws package exposes to its operation parser.
package jws

import (
	"errors"
)

const (
	secp256k1Kty = "EC"
	secp256k1Crv = "secp256k1"
)

// JWK is a JSON Web Key restricted to the secp256k1 public key this
// protocol's ES256K signatures are verified against.
type JWK struct {
	Kty string `json:"kty,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`

	// Nonce is an optional, protocol-bounded-length value that lets two
	// otherwise-identical keys produce different commitments.
	Nonce string `json:"nonce,omitempty"`
}

// ErrInvalidKey is returned when a JWK fails structural validation.
var ErrInvalidKey = errors.New("invalid JWK")

// Validate checks the mandatory JWK fields are present.
func (k *JWK) Validate() error {
	if k == nil {
		return ErrInvalidKey
	}

	if k.Kty == "" || k.Crv == "" || k.X == "" {
		return ErrInvalidKey
	}

	if !IsSecp256k1(k.Kty, k.Crv) {
		return ErrInvalidKey
	}

	if k.Y == "" {
		return ErrInvalidKey
	}

	return nil
}

// IsSecp256k1 reports whether kty/crv identify a secp256k1 EC key, the
// only curve ES256K signs over.
func IsSecp256k1(kty, crv string) bool {
	return kty == secp256k1Kty && crv == secp256k1Crv
}
