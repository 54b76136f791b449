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

// ChunkFile is the spec §3 ChunkFile.
type ChunkFile struct {
	Deltas []*operation.Delta `json:"deltas"`
}

// CreateChunkFile assembles a ChunkFile from the deltas of create,
// recover, and update operations in that order (spec §4.4 step 8).
func CreateChunkFile(ops []*operation.Operation) *ChunkFile {
	file := &ChunkFile{}

	for _, op := range ops {
		if op.Delta != nil {
			file.Deltas = append(file.Deltas, op.Delta)
		}
	}

	return file
}

var chunkFileProperties = []string{"deltas"}

var deltaProperties = []string{"updateCommitment", "patches"}

// ParseChunkFile unmarshals buf into a ChunkFile. Cross-file delta
// count validation against the two index files happens in the
// transaction provider (spec §4.5 step 7). Unknown top-level or
// per-delta properties are rejected (spec §2/§6/§9); a patch's own
// internal shape is not validated here since patch semantics are out
// of scope (spec §1 Non-goals) — only the delta envelope around it is.
func ParseChunkFile(buf []byte) (*ChunkFile, error) {
	top, err := topLevelProperties(buf)
	if err != nil {
		return nil, err
	}

	for k := range top {
		if !stringInSlice(k, chunkFileProperties) {
			return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed in a chunk file", k)
		}
	}

	if err := validateArrayProperties(top["deltas"], deltaProperties); err != nil {
		return nil, err
	}

	var file ChunkFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid chunk file: %s", err.Error())
	}

	return &file, nil
}
