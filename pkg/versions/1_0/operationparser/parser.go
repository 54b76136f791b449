/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operationparser implements parse(buf) -> Operation (spec
// §4.2): additive-strict structural validation per operation kind,
// hash-binding checks, and the delta-absent-on-mismatch
// forward-compatibility rule. Grounded on
// trustbloc-did-go/method/sidetreelongform/sidetree-core/versions/1_0/operationparser/recover.go
// and method.go, generalized to the other three operation kinds.
package operationparser

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/canonicalizer"
	"github.com/trustbloc/sidetree-node/pkg/commitment"
	"github.com/trustbloc/sidetree-node/pkg/encoder"
	"github.com/trustbloc/sidetree-node/pkg/hashing"
	"github.com/trustbloc/sidetree-node/pkg/jws"
)

// Parser parses and validates operation requests against a configured protocol.
type Parser struct {
	protocol.Protocol
}

// New returns a Parser configured with p.
func New(p protocol.Protocol) *Parser {
	return &Parser{Protocol: p}
}

// Parse dispatches buf to the kind-specific parser named by opType,
// returning a validated Operation (spec §4.2). batch indicates the
// request is embedded in a batch file (fewer outer properties allowed,
// per the "embedded" shapes spec §4.2 enumerates) rather than a
// freestanding client submission.
func (p *Parser) Parse(opType operation.Type, buf []byte, batch bool) (*operation.Operation, error) {
	switch opType {
	case operation.TypeCreate:
		return p.ParseCreateOperation(buf, batch)
	case operation.TypeUpdate:
		return p.ParseUpdateOperation(buf, batch)
	case operation.TypeRecover:
		return p.ParseRecoverOperation(buf, batch)
	case operation.TypeDeactivate:
		return p.ParseDeactivateOperation(buf, batch)
	default:
		return nil, protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "unknown operation type: %q", opType)
	}
}

// validateAllowedProperties enforces additive-strict parsing: raw must
// decode to a JSON object with no property outside allowed. It does not
// require every allowed property to be present; each kind's parser
// checks the properties it needs.
func validateAllowedProperties(raw []byte, allowed []string) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "invalid operation JSON: %s", err.Error())
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}

	for k := range m {
		if !allowedSet[k] {
			return protocol.NewError(protocol.ErrOperationAdditionalPropertyNotAllowed,
				"property %q is not allowed for this operation", k)
		}
	}

	return nil
}

func (p *Parser) validateDidSuffixAndRevealValue(didSuffix, revealValue string) error {
	if didSuffix == "" || !encoder.IsBase64URLString(didSuffix) {
		return protocol.NewError(protocol.ErrDidSuffixMissingOrInvalid, "did_suffix missing or not a base64url string")
	}

	if revealValue == "" || !encoder.IsBase64URLString(revealValue) {
		return protocol.NewError(protocol.ErrRevealValueMissingOrInvalid, "reveal_value missing or not a base64url string")
	}

	if uint(len(revealValue)) > p.MaxEncodedRevealValueLength {
		return protocol.NewError(protocol.ErrRevealValueTooLong, "reveal_value length %d exceeds maximum %d",
			len(revealValue), p.MaxEncodedRevealValueLength)
	}

	return nil
}

// parseSignedData parses compactJWS and validates its protected headers
// against the configured signature algorithms (spec §4.2).
func (p *Parser) parseSignedData(compactJWS string) (*jws.JSONWebSignature, error) {
	if compactJWS == "" {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "missing signed data")
	}

	sig, err := jws.ParseCompactJWS(compactJWS)
	if err != nil {
		return nil, err
	}

	if err := jws.ValidateHeadersOnly(sig.ProtectedHeaders, p.SignatureAlgorithms); err != nil {
		return nil, err
	}

	return sig, nil
}

func (p *Parser) validateSigningKey(key *jws.JWK) error {
	if key == nil {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "missing signing key")
	}

	if err := key.Validate(); err != nil {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "signing key validation failed: %s", err.Error())
	}

	if !contains(p.KeyAlgorithms, key.Crv) {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid,
			"key algorithm %q is not in the allowed list %v", key.Crv, p.KeyAlgorithms)
	}

	return p.validateNonce(key.Nonce)
}

func (p *Parser) validateNonce(nonce string) error {
	if nonce == "" {
		return nil
	}

	b, err := encoder.DecodeString(nonce)
	if err != nil {
		return protocol.NewError(protocol.ErrNotBase64URLString, "failed to decode nonce: %s", err.Error())
	}

	if uint(len(b)) != p.NonceSize {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid,
			"nonce size %d doesn't match configured nonce size %d", len(b), p.NonceSize)
	}

	return nil
}

// validateCommitment checks that reveal_value equals
// commitment.GetCommitment(jwk), the multihash of the canonicalized
// signing key, computed with the multihash code reveal_value carries.
func (p *Parser) validateCommitment(jwk *jws.JWK, revealValue string) error {
	code, err := hashing.GetMultihashCode(revealValue)
	if err != nil {
		return err
	}

	computed, err := commitment.GetCommitment(jwk, uint(code))
	if err != nil {
		return protocol.NewError(protocol.ErrInvalidHash, "calculate commitment: %s", err.Error())
	}

	if computed != revealValue {
		return protocol.NewError(protocol.ErrInvalidHash, "signing key doesn't match reveal value")
	}

	return nil
}

// validateDelta enforces the delta-absent-on-mismatch forward-compatibility
// rule (spec §4.2): an oversize or hash-mismatched delta is dropped, not rejected.
func (p *Parser) validateDelta(delta *operation.Delta, deltaHash string) *operation.Delta {
	if delta == nil {
		return nil
	}

	canonical, err := canonicalizer.MarshalCanonical(delta)
	if err != nil {
		return nil
	}

	if uint(len(canonical)) > p.MaxDeltaSizeInBytes {
		return nil
	}

	if err := hashing.IsValidHashOfBytes(canonical, deltaHash); err != nil {
		return nil
	}

	return delta
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

func unmarshalErr(kind string, err error) error {
	return protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "failed to unmarshal %s request: %s", kind, err.Error())
}
