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

// ProvisionalProofFile is the spec §3 ProvisionalProofFile.
type ProvisionalProofFile struct {
	Operations ProvisionalProofOperations `json:"operations"`
}

// ProvisionalProofOperations is the operations object of a ProvisionalProofFile.
type ProvisionalProofOperations struct {
	Update []string `json:"update,omitempty"`
}

// CreateProvisionalProofFile assembles a ProvisionalProofFile from the
// update operations of this batch (spec §4.4 step 7).
func CreateProvisionalProofFile(updates []*operation.Operation) *ProvisionalProofFile {
	file := &ProvisionalProofFile{}

	for _, op := range updates {
		file.Operations.Update = append(file.Operations.Update, op.SignedData)
	}

	return file
}

var provisionalProofFileProperties = []string{"operations"}

var provisionalProofOperationsProperties = []string{"update"}

// ParseProvisionalProofFile unmarshals buf into a ProvisionalProofFile.
// Cross-file count validation against the provisional-index file
// happens in the transaction provider (spec §4.5 step 6). Unknown
// top-level or nested properties are rejected (spec §2/§6/§9).
func ParseProvisionalProofFile(buf []byte) (*ProvisionalProofFile, error) {
	top, err := topLevelProperties(buf)
	if err != nil {
		return nil, err
	}

	for k := range top {
		if !stringInSlice(k, provisionalProofFileProperties) {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed in a provisional proof file", k)
		}
	}

	if err := validateObjectProperties(top["operations"], provisionalProofOperationsProperties); err != nil {
		return nil, err
	}

	var file ProvisionalProofFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid provisional proof file: %s", err.Error())
	}

	return &file, nil
}

// Count returns the number of proofs this file carries.
func (f *ProvisionalProofFile) Count() int {
	return len(f.Operations.Update)
}
