/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package hashing implements the multihash discipline spec §4.1
// requires: every hash is a multihash-wrapped SHA-256, base64url
// encoded, and only ever compared byte-for-byte against a canonical
// re-encoding of the candidate content.
package hashing

import (
	"crypto"
	"hash"

	"github.com/multiformats/go-multihash"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-node/pkg/encoder"
)

// ComputeMultihash computes the multihash for bytes using multihashCode.
func ComputeMultihash(multihashCode uint, content []byte) ([]byte, error) {
	h, err := GetHash(multihashCode)
	if err != nil {
		return nil, err
	}

	if _, err := h.Write(content); err != nil {
		return nil, err
	}

	return multihash.Encode(h.Sum(nil), uint64(multihashCode))
}

// GetHash returns the hash.Hash for the given multihash code.
func GetHash(multihashCode uint) (h hash.Hash, err error) {
	switch multihashCode {
	case protocol.MultihashCodeSHA256:
		h = crypto.SHA256.New()
	default:
		err = protocol.NewError(protocol.ErrMultihashUnsupportedHashAlgorithm,
			"algorithm code %d not supported", multihashCode)
	}

	return h, err
}

// IsSupportedMultihash reports whether encodedMultihash decodes to a
// multihash code the go-multihash registry recognizes.
func IsSupportedMultihash(encodedMultihash string) bool {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	return multihash.ValidCode(code)
}

// IsComputedUsingHashAlgorithm reports whether encodedMultihash was produced
// using the exact multihash code supplied.
func IsComputedUsingHashAlgorithm(encodedMultihash string, code uint64) bool {
	mhCode, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	return mhCode == code
}

// IsComputedUsingMultihashAlgorithms reports whether encodedMultihash was
// produced using one of the supplied multihash codes.
func IsComputedUsingMultihashAlgorithms(encodedMultihash string, codes []uint) bool {
	mhCode, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	for _, code := range codes {
		if uint64(code) == mhCode {
			return true
		}
	}

	return false
}

// GetMultihashCode returns the multihash code embedded in encodedMultihash.
func GetMultihashCode(encodedMultihash string) (uint64, error) {
	mhBytes, err := encoder.DecodeString(encodedMultihash)
	if err != nil {
		return 0, err
	}

	mh, err := multihash.Decode(mhBytes)
	if err != nil {
		return 0, protocol.NewError(protocol.ErrInvalidHash, "%s", err.Error())
	}

	return mh.Code, nil
}

// IsValidHash verifies that encodedContent, multihash-computed, matches
// encodedMultihash exactly (requiring the candidate to itself be a
// canonical base64url encoding of the multihash bytes).
func IsValidHash(encodedContent, encodedMultihash string) error {
	content, err := encoder.DecodeString(encodedContent)
	if err != nil {
		return err
	}

	return IsValidHashOfBytes(content, encodedMultihash)
}

// IsValidHashOfBytes verifies that content, multihash-computed, matches
// encodedMultihash exactly.
func IsValidHashOfBytes(content []byte, encodedMultihash string) error {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return err
	}

	if !IsLatestHashAlgorithm(code) {
		return protocol.NewError(protocol.ErrMultihashNotLatestSupportedHashAlgorithm,
			"multihash code %d is not the latest supported hash algorithm", code)
	}

	computed, err := ComputeMultihash(uint(code), content)
	if err != nil {
		return err
	}

	if encoder.EncodeToString(computed) != encodedMultihash {
		return protocol.NewError(protocol.ErrInvalidHash, "supplied hash doesn't match content")
	}

	return nil
}

// IsLatestHashAlgorithm reports whether code is the one algorithm this
// version of the protocol produces hashes with (SHA2-256).
func IsLatestHashAlgorithm(code uint64) bool {
	return code == protocol.MultihashCodeSHA256
}

// CalculateModelMultihash canonicalizes model and computes its multihash,
// base64url-encoded.
func CalculateModelMultihash(model interface{}, multihashCode uint) (string, error) {
	canonical, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", err
	}

	mh, err := ComputeMultihash(multihashCode, canonical)
	if err != nil {
		return "", err
	}

	return encoder.EncodeToString(mh), nil
}

// IsValidModelMultihash verifies that model, canonicalized and hashed,
// matches encodedMultihash.
func IsValidModelMultihash(model interface{}, encodedMultihash string) error {
	canonical, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return err
	}

	return IsValidHashOfBytes(canonical, encodedMultihash)
}
