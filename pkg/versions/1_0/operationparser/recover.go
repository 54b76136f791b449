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

// ParseRecoverOperation parses and validates a Recover request (spec
// §4.2), grounded on
// trustbloc-did-go/method/sidetreelongform/sidetree-core/versions/1_0/operationparser/recover.go.
func (p *Parser) ParseRecoverOperation(buf []byte, batch bool) (*operation.Operation, error) {
	allowed := []string{"type", "didSuffix", "revealValue", "signedData", "delta"}
	if batch {
		allowed = []string{"didSuffix", "revealValue", "signedData"}
	}

	if err := validateAllowedProperties(buf, allowed); err != nil {
		return nil, err
	}

	var req model.RecoverRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		return nil, unmarshalErr("recover", err)
	}

	if err := p.validateDidSuffixAndRevealValue(req.DidSuffix, req.RevealValue); err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForRecover(req.SignedData)
	if err != nil {
		return nil, err
	}

	if err := p.validateCommitment(signedData.RecoveryKey, req.RevealValue); err != nil {
		return nil, err
	}

	return &operation.Operation{
		Type:            operation.TypeRecover,
		UniqueSuffix:    req.DidSuffix,
		OperationBuffer: buf,
		SignedData:      req.SignedData,
		RevealValue:     req.RevealValue,
		Delta:           p.validateDelta(req.Delta, signedData.DeltaHash),
	}, nil
}

func (p *Parser) parseSignedDataForRecover(compactJWS string) (*model.RecoverSignedDataModel, error) {
	sig, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	var signedData model.RecoverSignedDataModel
	if err := json.Unmarshal(sig.Payload, &signedData); err != nil {
		return nil, unmarshalErr("recover signed data", err)
	}

	if err := p.validateSigningKey(signedData.RecoveryKey); err != nil {
		return nil, err
	}

	if signedData.RecoveryCommitment == "" || !isValidMultihashString(signedData.RecoveryCommitment) {
		return nil, protocol.NewError(protocol.ErrInvalidHash, "signed_data.recovery_commitment missing or malformed")
	}

	return &signedData, nil
}
