/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/hashing"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

// ParseCreateOperation parses and validates a Create request (spec
// §4.2): did_suffix = multihash(canonical(suffix_data)), delta dropped
// (not rejected) when it fails to hash-bind to suffix_data.DeltaHash.
func (p *Parser) ParseCreateOperation(buf []byte, batch bool) (*operation.Operation, error) {
	allowed := []string{"type", "suffixData", "delta"}
	if batch {
		allowed = []string{"suffixData"}
	}

	if err := validateAllowedProperties(buf, allowed); err != nil {
		return nil, err
	}

	var req model.CreateRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		return nil, unmarshalErr("create", err)
	}

	if req.SuffixData == nil {
		return nil, protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "missing suffix_data")
	}

	if err := p.validateSuffixData(req.SuffixData); err != nil {
		return nil, err
	}

	didSuffix, err := hashing.CalculateModelMultihash(req.SuffixData, p.HashAlgorithmInMultihashCode)
	if err != nil {
		return nil, err
	}

	return &operation.Operation{
		Type:            operation.TypeCreate,
		UniqueSuffix:    didSuffix,
		OperationBuffer: buf,
		SuffixData:      req.SuffixData,
		Delta:           p.validateDelta(req.Delta, req.SuffixData.DeltaHash),
	}, nil
}

func (p *Parser) validateSuffixData(suffixData *operation.SuffixData) error {
	if suffixData.DeltaHash == "" || !isValidMultihashString(suffixData.DeltaHash) {
		return protocol.NewError(protocol.ErrInvalidHash, "suffix_data.delta_hash missing or malformed")
	}

	if suffixData.RecoveryCommitment == "" || !isValidMultihashString(suffixData.RecoveryCommitment) {
		return protocol.NewError(protocol.ErrInvalidHash, "suffix_data.recovery_commitment missing or malformed")
	}

	return nil
}

func isValidMultihashString(s string) bool {
	_, err := hashing.GetMultihashCode(s)
	return err == nil
}
