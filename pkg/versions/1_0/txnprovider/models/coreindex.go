/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package models defines the five CAS file shapes spec §3 enumerates
// (CoreIndexFile, ProvisionalIndexFile, CoreProofFile,
// ProvisionalProofFile, ChunkFile) and their Create*/Parse* builders,
// grounded on the naming convention
// trustbloc-did-go/method/sidetreelongform/sidetree-core/versions/1_0/txnprovider/models/chunk_test.go
// exercises (CreateChunkFile/ParseChunkFile operating on already
// json.Marshal'd bytes — decompression is the caller's concern).
package models

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

// CoreIndexFile is the spec §3 CoreIndexFile.
type CoreIndexFile struct {
	WriterLockID            string              `json:"writerLockId,omitempty"`
	ProvisionalIndexFileURI string              `json:"provisionalIndexFileUri,omitempty"`
	CoreProofFileURI        string              `json:"coreProofFileUri,omitempty"`
	Operations              CoreIndexOperations `json:"operations"`
}

// CoreIndexOperations is the operations object of a CoreIndexFile.
type CoreIndexOperations struct {
	Create     []model.EmbeddedCreateReference             `json:"create,omitempty"`
	Recover    []model.EmbeddedRecoverOrDeactivateReference `json:"recover,omitempty"`
	Deactivate []model.EmbeddedRecoverOrDeactivateReference `json:"deactivate,omitempty"`
}

// CreateCoreIndexFile assembles a CoreIndexFile from its constituent
// operations (spec §4.4 step 10).
func CreateCoreIndexFile(writerLockID, provisionalIndexFileURI, coreProofFileURI string,
	creates []*operation.Operation, recovers, deactivates []*operation.Operation,
) *CoreIndexFile {
	file := &CoreIndexFile{
		WriterLockID:            writerLockID,
		ProvisionalIndexFileURI: provisionalIndexFileURI,
		CoreProofFileURI:        coreProofFileURI,
	}

	for _, op := range creates {
		file.Operations.Create = append(file.Operations.Create, model.EmbeddedCreateReference{SuffixData: op.SuffixData})
	}

	for _, op := range recovers {
		file.Operations.Recover = append(file.Operations.Recover,
			model.EmbeddedRecoverOrDeactivateReference{DidSuffix: op.UniqueSuffix, RevealValue: op.RevealValue})
	}

	for _, op := range deactivates {
		file.Operations.Deactivate = append(file.Operations.Deactivate,
			model.EmbeddedRecoverOrDeactivateReference{DidSuffix: op.UniqueSuffix, RevealValue: op.RevealValue})
	}

	return file
}

var coreIndexFileProperties = []string{"writerLockId", "provisionalIndexFileUri", "coreProofFileUri", "operations"}

var coreIndexOperationsProperties = []string{"create", "recover", "deactivate"}

var embeddedCreateReferenceProperties = []string{"suffixData"}

var embeddedRevealReferenceProperties = []string{"didSuffix", "revealValue"}

var suffixDataProperties = []string{"deltaHash", "recoveryCommitment", "anchorOrigin", "type"}

// ParseCoreIndexFile unmarshals buf and checks the structural
// invariants spec §3 assigns to CoreIndexFile: provisional_index_file_uri
// is required when any create/recover is present and forbidden when
// only deactivates are present; core_proof_file_uri is required iff
// any recover or deactivate is present. Unknown top-level or nested
// properties anywhere in the file are rejected (spec §2/§6/§9).
func ParseCoreIndexFile(buf []byte) (*CoreIndexFile, error) {
	top, err := topLevelProperties(buf)
	if err != nil {
		return nil, err
	}

	for k := range top {
		if !stringInSlice(k, coreIndexFileProperties) {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed in a core index file", k)
		}
	}

	if err := validateObjectProperties(top["operations"], coreIndexOperationsProperties); err != nil {
		return nil, err
	}

	var operations struct {
		Create     []json.RawMessage `json:"create"`
		Recover    []json.RawMessage `json:"recover"`
		Deactivate []json.RawMessage `json:"deactivate"`
	}

	if len(top["operations"]) > 0 {
		if err := json.Unmarshal(top["operations"], &operations); err != nil {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid operations object: %s", err.Error())
		}
	}

	for _, c := range operations.Create {
		if err := validateObjectProperties(c, embeddedCreateReferenceProperties); err != nil {
			return nil, err
		}

		var ref struct {
			SuffixData json.RawMessage `json:"suffixData"`
		}

		if err := json.Unmarshal(c, &ref); err != nil {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid create reference: %s", err.Error())
		}

		if err := validateObjectProperties(ref.SuffixData, suffixDataProperties); err != nil {
			return nil, err
		}
	}

	for _, r := range operations.Recover {
		if err := validateObjectProperties(r, embeddedRevealReferenceProperties); err != nil {
			return nil, err
		}
	}

	for _, d := range operations.Deactivate {
		if err := validateObjectProperties(d, embeddedRevealReferenceProperties); err != nil {
			return nil, err
		}
	}

	var file CoreIndexFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid core index file: %s", err.Error())
	}

	needsProvisional := len(file.Operations.Create) > 0 || len(file.Operations.Recover) > 0
	onlyDeactivates := len(file.Operations.Create) == 0 && len(file.Operations.Recover) == 0 &&
		len(file.Operations.Deactivate) > 0

	if needsProvisional && file.ProvisionalIndexFileURI == "" {
		return nil, protocol.NewError(protocol.ErrCoreIndexFileProvisionalURIMissing,
			"provisional_index_file_uri is required when create or recover operations are present")
	}

	if onlyDeactivates && file.ProvisionalIndexFileURI != "" {
		return nil, protocol.NewError(protocol.ErrCoreIndexFileProvisionalURINotAllowed,
			"provisional_index_file_uri is not allowed when only deactivate operations are present")
	}

	needsCoreProof := len(file.Operations.Recover) > 0 || len(file.Operations.Deactivate) > 0

	if needsCoreProof && file.CoreProofFileURI == "" {
		return nil, protocol.NewError(protocol.ErrCoreIndexFileProofURIMissing,
			"core_proof_file_uri is required when recover or deactivate operations are present")
	}

	return &file, nil
}

// OperationCount returns the number of create+recover+deactivate
// operations this file references (the anchor string's claimed count,
// spec §4.5 step 3).
func (f *CoreIndexFile) OperationCount() int {
	return len(f.Operations.Create) + len(f.Operations.Recover) + len(f.Operations.Deactivate)
}
