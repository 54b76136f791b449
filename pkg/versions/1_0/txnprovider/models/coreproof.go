/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// CoreProofFile is the spec §3 CoreProofFile: detached-payload JWS
// compact strings carried verbatim, one per recover/deactivate operation.
type CoreProofFile struct {
	Operations CoreProofOperations `json:"operations"`
}

// CoreProofOperations is the operations object of a CoreProofFile.
type CoreProofOperations struct {
	Recover    []string `json:"recover,omitempty"`
	Deactivate []string `json:"deactivate,omitempty"`
}

// CreateCoreProofFile assembles a CoreProofFile from the recover and
// deactivate operations of this batch (spec §4.4 step 6).
func CreateCoreProofFile(recovers, deactivates []*operation.Operation) *CoreProofFile {
	file := &CoreProofFile{}

	for _, op := range recovers {
		file.Operations.Recover = append(file.Operations.Recover, op.SignedData)
	}

	for _, op := range deactivates {
		file.Operations.Deactivate = append(file.Operations.Deactivate, op.SignedData)
	}

	return file
}

var coreProofFileProperties = []string{"operations"}

var coreProofOperationsProperties = []string{"recover", "deactivate"}

// ParseCoreProofFile unmarshals buf into a CoreProofFile. Cross-file
// count validation against the core-index file happens in the
// transaction provider (spec §4.5 step 4), not here. Unknown top-level
// or nested properties are rejected (spec §2/§6/§9).
func ParseCoreProofFile(buf []byte) (*CoreProofFile, error) {
	top, err := topLevelProperties(buf)
	if err != nil {
		return nil, err
	}

	for k := range top {
		if !stringInSlice(k, coreProofFileProperties) {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed in a core proof file", k)
		}
	}

	if err := validateObjectProperties(top["operations"], coreProofOperationsProperties); err != nil {
		return nil, err
	}

	var file CoreProofFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid core proof file: %s", err.Error())
	}

	return &file, nil
}

// Count returns the total number of proofs this file carries.
func (f *CoreProofFile) Count() int {
	return len(f.Operations.Recover) + len(f.Operations.Deactivate)
}
