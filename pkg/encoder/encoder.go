/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package encoder provides base64URL encoding used for every hash,
// reveal value, and delta on the wire.
package encoder

import (
	"encoding/base64"
	"errors"
	"regexp"
)

var base64URLAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// EncodeToString encodes bytes into an unpadded base64URL string.
func EncodeToString(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeString decodes an unpadded base64URL string, rejecting anything
// outside the base64URL alphabet (including padded input) before handing
// it to the standard decoder.
func DecodeString(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("encoded string cannot be empty")
	}

	if !base64URLAlphabet.MatchString(s) {
		return nil, errors.New("not a valid base64URL string")
	}

	return base64.RawURLEncoding.DecodeString(s)
}

// IsBase64URLString reports whether s is a non-empty, unpadded base64URL string.
func IsBase64URLString(s string) bool {
	_, err := DecodeString(s)
	return err == nil
}
