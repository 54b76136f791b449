/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/sha256"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/encoder"
)

// HeaderAlgorithm and HeaderKeyID are the only protected header members
// this protocol's JWS envelope allows (spec §4.2).
const (
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"

	// AlgorithmES256K is the only signature algorithm this protocol accepts.
	AlgorithmES256K = "ES256K"
)

// Headers is a decoded JWS protected header.
type Headers map[string]interface{}

// Algorithm returns the "alg" header value.
func (h Headers) Algorithm() (string, bool) {
	v, ok := h[HeaderAlgorithm]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// KeyID returns the "kid" header value, if present.
func (h Headers) KeyID() (string, bool) {
	v, ok := h[HeaderKeyID]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// JSONWebSignature is a parsed compact, detached-payload JWS.
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte

	protectedB64 string
	signature    []byte
}

// ParseCompactJWS splits and decodes a compact JWS of the form
// "header.payload.signature". The payload segment may be empty
// (detached payload), in which case Payload is nil.
func ParseCompactJWS(compact string) (*JSONWebSignature, error) {
	if compact == "" {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "missing signed data")
	}

	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid,
			"compact JWS must have exactly three segments, got %d", len(parts))
	}

	headerBytes, err := encoder.DecodeString(parts[0])
	if err != nil {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid protected header encoding: %s", err.Error())
	}

	var headers Headers
	if err := json.Unmarshal(headerBytes, &headers); err != nil {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid protected header JSON: %s", err.Error())
	}

	var payload []byte

	if parts[1] != "" {
		payload, err = encoder.DecodeString(parts[1])
		if err != nil {
			return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid payload encoding: %s", err.Error())
		}
	}

	sig, err := encoder.DecodeString(parts[2])
	if err != nil {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid signature encoding: %s", err.Error())
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		protectedB64:     parts[0],
		signature:        sig,
	}, nil
}

// ValidateHeadersOnly validates that the protected header has an "alg"
// from allowedAlgorithms and no members other than "alg" and the
// optional "kid".
func ValidateHeadersOnly(headers Headers, allowedAlgorithms []string) error {
	if headers == nil {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "missing protected headers")
	}

	alg, ok := headers.Algorithm()
	if !ok || alg == "" {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "algorithm must be present in the protected header")
	}

	allowed := map[string]bool{HeaderAlgorithm: true, HeaderKeyID: true}

	for k := range headers {
		if !allowed[k] {
			return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid protected header member: %s", k)
		}
	}

	for _, a := range allowedAlgorithms {
		if a == alg {
			return nil
		}
	}

	return protocol.NewError(protocol.ErrJWSAlgorithmNotSupported, "algorithm '%s' is not in the allowed list %v", alg, allowedAlgorithms)
}

// signingInput reconstructs the two-segment signing input
// "header.payload" used both to sign and to verify.
func signingInput(protectedB64 string, payload []byte) []byte {
	return []byte(protectedB64 + "." + encoder.EncodeToString(payload))
}

// Sign produces a compact JWS over payload using an ES256K private key.
// kid, if non-empty, is placed in the protected header.
func Sign(payload []byte, privateKey *btcec.PrivateKey, kid string) (string, error) {
	headers := Headers{HeaderAlgorithm: AlgorithmES256K}
	if kid != "" {
		headers[HeaderKeyID] = kid
	}

	headerBytes, err := json.Marshal(headers)
	if err != nil {
		return "", err
	}

	protectedB64 := encoder.EncodeToString(headerBytes)

	digest := sha256.Sum256(signingInput(protectedB64, payload))

	sig, err := signRaw(privateKey, digest[:])
	if err != nil {
		return "", err
	}

	return protectedB64 + "." + encoder.EncodeToString(payload) + "." + encoder.EncodeToString(sig), nil
}

// signRaw produces a fixed 64-byte R||S signature, the compact-JWS wire
// format ES256K expects (as opposed to btcec's default DER encoding).
func signRaw(privateKey *btcec.PrivateKey, digest []byte) ([]byte, error) {
	sig := btcecdsa.Sign(privateKey, digest)

	r, s := parseDERRS(sig.Serialize())
	if r == nil {
		return nil, protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "failed to serialize ES256K signature")
	}

	out := make([]byte, 64)
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	copy(out[32-len(rBytes):32], rBytes)
	copy(out[64-len(sBytes):64], sBytes)

	return out, nil
}

// Verify checks sig (the detached JWS) was produced by the holder of
// publicKey over its own payload.
func Verify(sig *JSONWebSignature, publicKey *btcec.PublicKey) error {
	if len(sig.signature) != 64 {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "ES256K signature must be 64 bytes, got %d", len(sig.signature))
	}

	r := new(big.Int).SetBytes(sig.signature[:32])
	s := new(big.Int).SetBytes(sig.signature[32:])

	der := rsToDER(r, s)

	parsedSig, err := btcecdsa.ParseDERSignature(der)
	if err != nil {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "invalid ES256K signature encoding: %s", err.Error())
	}

	digest := sha256.Sum256(signingInput(sig.protectedB64, sig.Payload))

	if !parsedSig.Verify(digest[:], publicKey) {
		return protocol.NewError(protocol.ErrJWSCompactFormatInvalid, "JWS signature verification failed")
	}

	return nil
}

// parseDERRS extracts r/s from a DER-encoded ECDSA signature, letting
// Sign/Verify work in the fixed-size R||S form the compact JWS wire
// format uses without depending on btcec's unexported signature fields.
func parseDERRS(der []byte) (r, s *big.Int) {
	// DER: 0x30 len 0x02 rlen r 0x02 slen s
	if len(der) < 6 || der[0] != 0x30 {
		return nil, nil
	}

	idx := 2

	rlen := int(der[idx+1])
	r = new(big.Int).SetBytes(der[idx+2 : idx+2+rlen])
	idx += 2 + rlen

	slen := int(der[idx+1])
	s = new(big.Int).SetBytes(der[idx+2 : idx+2+slen])

	return r, s
}

// rsToDER encodes raw r/s values into the minimal DER form ParseDERSignature expects.
func rsToDER(r, s *big.Int) []byte {
	rBytes := asn1Int(r)
	sBytes := asn1Int(s)

	body := append(append([]byte{0x02, byte(len(rBytes))}, rBytes...), append([]byte{0x02, byte(len(sBytes))}, sBytes...)...)

	return append([]byte{0x30, byte(len(body))}, body...)
}

func asn1Int(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}

	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}

	return b
}
