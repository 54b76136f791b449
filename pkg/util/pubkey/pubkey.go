/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pubkey converts a secp256k1 JWK into the btcec public key
// this protocol's signature verifiers need, mirroring the role
// trustbloc-did-go's internal/jws.JWK.PublicKeyBytes plays for the
// teacher's operation parser.
package pubkey

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/trustbloc/sidetree-node/pkg/encoder"
	"github.com/trustbloc/sidetree-node/pkg/jws"
)

// FromJWK builds a *btcec.PublicKey from a secp256k1 JWK's x/y coordinates.
func FromJWK(key *jws.JWK) (*btcec.PublicKey, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	xBytes, err := encoder.DecodeString(key.X)
	if err != nil {
		return nil, err
	}

	yBytes, err := encoder.DecodeString(key.Y)
	if err != nil {
		return nil, err
	}

	x := new(big.Int).SetBytes(xBytes)
	y := new(big.Int).SetBytes(yBytes)

	if !btcec.S256().IsOnCurve(x, y) {
		return nil, jws.ErrInvalidKey
	}

	fieldX, err := fieldVal(x)
	if err != nil {
		return nil, err
	}

	fieldY, err := fieldVal(y)
	if err != nil {
		return nil, err
	}

	return btcec.NewPublicKey(fieldX, fieldY), nil
}

func fieldVal(v *big.Int) (*btcec.FieldVal, error) {
	var f btcec.FieldVal

	b := make([]byte, 32)
	v.FillBytes(b)

	if overflow := f.SetByteSlice(b); overflow {
		return nil, jws.ErrInvalidKey
	}

	return &f, nil
}
