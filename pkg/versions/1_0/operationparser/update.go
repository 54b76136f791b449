/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

// ParseUpdateOperation parses and validates an Update request (spec
// §4.2): reveal_value must hash-bind to signed_data.update_key; delta
// is dropped (not rejected) on hash mismatch or oversize.
func (p *Parser) ParseUpdateOperation(buf []byte, batch bool) (*operation.Operation, error) {
	allowed := []string{"type", "didSuffix", "revealValue", "signedData", "delta"}
	if batch {
		allowed = []string{"didSuffix", "revealValue", "signedData"}
	}

	if err := validateAllowedProperties(buf, allowed); err != nil {
		return nil, err
	}

	var req model.UpdateRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		return nil, unmarshalErr("update", err)
	}

	if err := p.validateDidSuffixAndRevealValue(req.DidSuffix, req.RevealValue); err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForUpdate(req.SignedData)
	if err != nil {
		return nil, err
	}

	if err := p.validateCommitment(signedData.UpdateKey, req.RevealValue); err != nil {
		return nil, err
	}

	return &operation.Operation{
		Type:            operation.TypeUpdate,
		UniqueSuffix:    req.DidSuffix,
		OperationBuffer: buf,
		SignedData:      req.SignedData,
		RevealValue:     req.RevealValue,
		Delta:           p.validateDelta(req.Delta, signedData.DeltaHash),
	}, nil
}

func (p *Parser) parseSignedDataForUpdate(compactJWS string) (*model.UpdateSignedDataModel, error) {
	sig, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	var signedData model.UpdateSignedDataModel
	if err := json.Unmarshal(sig.Payload, &signedData); err != nil {
		return nil, unmarshalErr("update signed data", err)
	}

	if err := p.validateSigningKey(signedData.UpdateKey); err != nil {
		return nil, err
	}

	return &signedData, nil
}
