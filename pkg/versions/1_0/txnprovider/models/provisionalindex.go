/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

// Chunk references a single chunk file (this version mandates exactly one, spec §3).
type Chunk struct {
	ChunkFileURI string `json:"chunkFileUri"`
}

// ProvisionalIndexFile is the spec §3 ProvisionalIndexFile.
type ProvisionalIndexFile struct {
	ProvisionalProofFileURI string                     `json:"provisionalProofFileUri,omitempty"`
	Operations              ProvisionalIndexOperations `json:"operations,omitempty"`
	Chunks                  []Chunk                    `json:"chunks"`
}

// ProvisionalIndexOperations is the operations object of a ProvisionalIndexFile.
type ProvisionalIndexOperations struct {
	Update []model.EmbeddedUpdateReference `json:"update,omitempty"`
}

// CreateProvisionalIndexFile assembles a ProvisionalIndexFile listing
// only {did_suffix, reveal_value} references for updates (spec §4.4 step 9).
func CreateProvisionalIndexFile(provisionalProofFileURI, chunkFileURI string, updates []*operation.Operation) *ProvisionalIndexFile {
	file := &ProvisionalIndexFile{
		ProvisionalProofFileURI: provisionalProofFileURI,
		Chunks:                  []Chunk{{ChunkFileURI: chunkFileURI}},
	}

	for _, op := range updates {
		file.Operations.Update = append(file.Operations.Update,
			model.EmbeddedUpdateReference{DidSuffix: op.UniqueSuffix, RevealValue: op.RevealValue})
	}

	return file
}

var provisionalIndexFileProperties = []string{"provisionalProofFileUri", "operations", "chunks"}

var provisionalIndexOperationsProperties = []string{"update"}

var chunkProperties = []string{"chunkFileUri"}

// ParseProvisionalIndexFile unmarshals buf and checks the structural
// invariants spec §3 assigns to ProvisionalIndexFile: exactly one chunk
// entry, and provisional_proof_file_uri/operations.update are mutually
// required or mutually absent. Unknown top-level or nested properties
// anywhere in the file are rejected (spec §2/§6/§9).
func ParseProvisionalIndexFile(buf []byte) (*ProvisionalIndexFile, error) {
	top, err := topLevelProperties(buf)
	if err != nil {
		return nil, err
	}

	for k := range top {
		if !stringInSlice(k, provisionalIndexFileProperties) {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed in a provisional index file", k)
		}
	}

	if err := validateObjectProperties(top["operations"], provisionalIndexOperationsProperties); err != nil {
		return nil, err
	}

	var operations struct {
		Update []json.RawMessage `json:"update"`
	}

	if len(top["operations"]) > 0 {
		if err := json.Unmarshal(top["operations"], &operations); err != nil {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid operations object: %s", err.Error())
		}
	}

	for _, u := range operations.Update {
		if err := validateObjectProperties(u, embeddedRevealReferenceProperties); err != nil {
			return nil, err
		}
	}

	if err := validateArrayProperties(top["chunks"], chunkProperties); err != nil {
		return nil, err
	}

	var file ProvisionalIndexFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid provisional index file: %s", err.Error())
	}

	if len(file.Chunks) != 1 {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty,
			"provisional index file must reference exactly one chunk file, got %d", len(file.Chunks))
	}

	hasProof := file.ProvisionalProofFileURI != ""
	hasUpdates := len(file.Operations.Update) > 0

	if hasProof != hasUpdates {
		return nil, protocol.NewError(protocol.ErrProvisionalIndexFileProofMismatch,
			"provisional_proof_file_uri and operations.update must be mutually present or mutually absent")
	}

	return &file, nil
}
