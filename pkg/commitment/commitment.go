/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package commitment computes the commitment value embedded in
// suffix_data/signed_data for the next recovery/update operation,
// grounded on trustbloc-did-go's
// versions/1_0/operationparser/recover.go use of
// commitment.GetCommitment(jwk, multihashCode).
package commitment

import (
	"github.com/trustbloc/sidetree-node/pkg/hashing"
	"github.com/trustbloc/sidetree-node/pkg/jws"
)

// GetCommitment computes the commitment for jwk: canonicalize the JWK,
// multihash it, base64url-encode. The operation parser requires the
// reveal_value of an operation signed with this key to equal this same
// value (operationparser's validateCommitment).
func GetCommitment(jwk *jws.JWK, multihashCode uint) (string, error) {
	if err := jwk.Validate(); err != nil {
		return "", err
	}

	return hashing.CalculateModelMultihash(jwk, multihashCode)
}
