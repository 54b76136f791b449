/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

// ParseDeactivateOperation parses and validates a Deactivate request
// (spec §4.2): signed_data.did_suffix MUST equal the outer did_suffix,
// and no delta is ever present for this kind.
func (p *Parser) ParseDeactivateOperation(buf []byte, batch bool) (*operation.Operation, error) {
	allowed := []string{"type", "didSuffix", "revealValue", "signedData"}
	if batch {
		allowed = []string{"didSuffix", "revealValue", "signedData"}
	}

	if err := validateAllowedProperties(buf, allowed); err != nil {
		return nil, err
	}

	var req model.DeactivateRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		return nil, unmarshalErr("deactivate", err)
	}

	if err := p.validateDidSuffixAndRevealValue(req.DidSuffix, req.RevealValue); err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForDeactivate(req.SignedData)
	if err != nil {
		return nil, err
	}

	if signedData.DidSuffix != req.DidSuffix {
		return nil, protocol.NewError(protocol.ErrDidSuffixMissingOrInvalid,
			"signed_data.did_suffix does not match operation did_suffix")
	}

	if err := p.validateCommitment(signedData.RecoveryKey, req.RevealValue); err != nil {
		return nil, err
	}

	return &operation.Operation{
		Type:            operation.TypeDeactivate,
		UniqueSuffix:    req.DidSuffix,
		OperationBuffer: buf,
		SignedData:      req.SignedData,
		RevealValue:     req.RevealValue,
	}, nil
}

func (p *Parser) parseSignedDataForDeactivate(compactJWS string) (*model.DeactivateSignedDataModel, error) {
	sig, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	var signedData model.DeactivateSignedDataModel
	if err := json.Unmarshal(sig.Payload, &signedData); err != nil {
		return nil, unmarshalErr("deactivate signed data", err)
	}

	if err := p.validateSigningKey(signedData.RecoveryKey); err != nil {
		return nil, err
	}

	return &signedData, nil
}

