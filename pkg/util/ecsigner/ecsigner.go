/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecsigner implements the Signer a client uses to produce the
// signed_data JWS for update/recover/deactivate requests, grounded on
// Moopli-sidetree-core-go's restapi/helper/update_test.go usage of
// ecsigner.New(privateKey, "ES256", "key-1").
package ecsigner

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/trustbloc/sidetree-node/pkg/jws"
)

// Signer signs canonicalized model bytes into a compact ES256K JWS.
type Signer struct {
	privateKey *btcec.PrivateKey
	algorithm  string
	kid        string
}

// New returns a Signer over privateKey. algorithm is carried for
// diagnostics only — this protocol version always signs with ES256K.
func New(privateKey *btcec.PrivateKey, algorithm, kid string) *Signer {
	return &Signer{privateKey: privateKey, algorithm: algorithm, kid: kid}
}

// Sign produces a compact JWS over payload.
func (s *Signer) Sign(payload []byte) (string, error) {
	if s.kid == "" {
		return "", errKidRequired
	}

	return jws.Sign(payload, s.privateKey, s.kid)
}

// Headers returns the protected headers this signer will place on its
// next signature.
func (s *Signer) Headers() jws.Headers {
	return jws.Headers{jws.HeaderAlgorithm: jws.AlgorithmES256K, jws.HeaderKeyID: s.kid}
}

var errKidRequired = signerError("kid must be present in the protected header")

type signerError string

func (e signerError) Error() string { return string(e) }
