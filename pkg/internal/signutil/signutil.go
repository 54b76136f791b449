/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signutil canonicalizes a signed-data model and hands it to a
// Signer, grounded on Moopli-sidetree-core-go's
// restapi/helper/update.go use of signutil.SignModel.
package signutil

import (
	"github.com/trustbloc/sidetree-node/pkg/canonicalizer"
)

// Signer produces a compact JWS over an arbitrary payload.
type Signer interface {
	Sign(payload []byte) (string, error)
}

// SignModel canonicalizes model and signs the resulting bytes.
func SignModel(model interface{}, signer Signer) (string, error) {
	payload, err := canonicalizer.MarshalCanonical(model)
	if err != nil {
		return "", err
	}

	return signer.Sign(payload)
}
