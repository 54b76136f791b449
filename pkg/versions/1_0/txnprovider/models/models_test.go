/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

func testOp(kind operation.Type, suffix string, withDelta bool) *operation.Operation {
	op := &operation.Operation{
		Type:         kind,
		UniqueSuffix: suffix,
	}

	switch kind {
	case operation.TypeCreate:
		op.SuffixData = &operation.SuffixData{DeltaHash: "deltaHash-" + suffix, RecoveryCommitment: "rc-" + suffix}
	default:
		op.SignedData = "signed-data-" + suffix
		op.RevealValue = "reveal-" + suffix
	}

	if withDelta {
		op.Delta = &operation.Delta{UpdateCommitment: "uc-" + suffix}
	}

	return op
}

func getTestOperations(createOpsNum, updateOpsNum, recoverOpsNum, deactivateOpsNum int) (creates, updates, recovers, deactivates []*operation.Operation) {
	for i := 0; i < createOpsNum; i++ {
		creates = append(creates, testOp(operation.TypeCreate, "create-suffix", true))
	}

	for i := 0; i < updateOpsNum; i++ {
		updates = append(updates, testOp(operation.TypeUpdate, "update-suffix", true))
	}

	for i := 0; i < recoverOpsNum; i++ {
		recovers = append(recovers, testOp(operation.TypeRecover, "recover-suffix", true))
	}

	for i := 0; i < deactivateOpsNum; i++ {
		deactivates = append(deactivates, testOp(operation.TypeDeactivate, "deactivate-suffix", false))
	}

	return creates, updates, recovers, deactivates
}

func TestCoreIndexFile(t *testing.T) {
	t.Run("round trip with all kinds", func(t *testing.T) {
		creates, _, recovers, deactivates := getTestOperations(2, 0, 1, 1)

		file := CreateCoreIndexFile("lock-1", "provisional-uri", "core-proof-uri", creates, recovers, deactivates)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		parsed, err := ParseCoreIndexFile(buf)
		require.NoError(t, err)
		require.Equal(t, 4, parsed.OperationCount())
		require.Equal(t, "lock-1", parsed.WriterLockID)
	})

	t.Run("only deactivates omits provisional index uri", func(t *testing.T) {
		_, _, _, deactivates := getTestOperations(0, 0, 0, 2)

		file := CreateCoreIndexFile("", "", "core-proof-uri", nil, nil, deactivates)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		parsed, err := ParseCoreIndexFile(buf)
		require.NoError(t, err)
		require.Equal(t, 2, parsed.OperationCount())
	})

	t.Run("missing provisional index uri with creates present is rejected", func(t *testing.T) {
		creates, _, _, _ := getTestOperations(1, 0, 0, 0)

		file := CreateCoreIndexFile("", "", "", creates, nil, nil)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseCoreIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("provisional index uri not allowed with only deactivates", func(t *testing.T) {
		_, _, _, deactivates := getTestOperations(0, 0, 0, 1)

		file := CreateCoreIndexFile("", "should-not-be-here", "core-proof-uri", nil, nil, deactivates)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseCoreIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("missing core proof uri with recovers present is rejected", func(t *testing.T) {
		_, _, recovers, _ := getTestOperations(0, 0, 1, 0)

		file := CreateCoreIndexFile("", "provisional-uri", "", nil, recovers, nil)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseCoreIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("unknown top-level property rejected", func(t *testing.T) {
		creates, _, _, _ := getTestOperations(1, 0, 0, 0)

		file := CreateCoreIndexFile("", "provisional-uri", "", creates, nil, nil)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		mutated := append(buf[:len(buf)-1], []byte(`,"bogus":"x"}`)...)

		_, err = ParseCoreIndexFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under operations.create is rejected", func(t *testing.T) {
		mutated := []byte(`{"operations":{"create":[{"suffixData":{"deltaHash":"h","recoveryCommitment":"r"},"bogus":"x"}]}}`)

		_, err := ParseCoreIndexFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under suffixData is rejected", func(t *testing.T) {
		mutated := []byte(`{"operations":{"create":[{"suffixData":{"deltaHash":"h","recoveryCommitment":"r","bogus":"x"}}]}}`)

		_, err := ParseCoreIndexFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under operations.recover entry is rejected", func(t *testing.T) {
		mutated := []byte(`{"coreProofFileUri":"p","operations":{"recover":[{"didSuffix":"a","revealValue":"b","bogus":"x"}]}}`)

		_, err := ParseCoreIndexFile(mutated)
		require.Error(t, err)
	})
}

func TestProvisionalIndexFile(t *testing.T) {
	t.Run("round trip with updates", func(t *testing.T) {
		_, updates, _, _ := getTestOperations(0, 2, 0, 0)

		file := CreateProvisionalIndexFile("provisional-proof-uri", "chunk-uri", updates)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		parsed, err := ParseProvisionalIndexFile(buf)
		require.NoError(t, err)
		require.Len(t, parsed.Operations.Update, 2)
	})

	t.Run("no updates, no proof uri", func(t *testing.T) {
		file := CreateProvisionalIndexFile("", "chunk-uri", nil)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseProvisionalIndexFile(buf)
		require.NoError(t, err)
	})

	t.Run("proof uri without updates is rejected", func(t *testing.T) {
		file := CreateProvisionalIndexFile("provisional-proof-uri", "chunk-uri", nil)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseProvisionalIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("updates without proof uri is rejected", func(t *testing.T) {
		_, updates, _, _ := getTestOperations(0, 1, 0, 0)

		file := &ProvisionalIndexFile{
			Chunks: []Chunk{{ChunkFileURI: "chunk-uri"}},
		}

		for _, op := range updates {
			file.Operations.Update = append(file.Operations.Update,
				model.EmbeddedUpdateReference{DidSuffix: op.UniqueSuffix, RevealValue: op.RevealValue})
		}

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseProvisionalIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("wrong chunk count is rejected", func(t *testing.T) {
		file := &ProvisionalIndexFile{Chunks: []Chunk{}}

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseProvisionalIndexFile(buf)
		require.Error(t, err)

		file.Chunks = []Chunk{{ChunkFileURI: "a"}, {ChunkFileURI: "b"}}

		buf, err = json.Marshal(file)
		require.NoError(t, err)

		_, err = ParseProvisionalIndexFile(buf)
		require.Error(t, err)
	})

	t.Run("unknown top-level property rejected", func(t *testing.T) {
		_, updates, _, _ := getTestOperations(0, 1, 0, 0)

		file := CreateProvisionalIndexFile("provisional-proof-uri", "chunk-uri", updates)

		buf, err := json.Marshal(file)
		require.NoError(t, err)

		mutated := append(buf[:len(buf)-1], []byte(`,"bogus":"x"}`)...)

		_, err = ParseProvisionalIndexFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under operations.update entry is rejected", func(t *testing.T) {
		mutated := []byte(`{"chunks":[{"chunkFileUri":"c"}],"operations":{"update":[{"didSuffix":"a","revealValue":"b","bogus":"x"}]}}`)

		_, err := ParseProvisionalIndexFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under chunks entry is rejected", func(t *testing.T) {
		mutated := []byte(`{"chunks":[{"chunkFileUri":"c","bogus":"x"}]}`)

		_, err := ParseProvisionalIndexFile(mutated)
		require.Error(t, err)
	})
}

func TestCoreProofFile(t *testing.T) {
	_, _, recovers, deactivates := getTestOperations(0, 0, 2, 3)

	file := CreateCoreProofFile(recovers, deactivates)

	buf, err := json.Marshal(file)
	require.NoError(t, err)

	parsed, err := ParseCoreProofFile(buf)
	require.NoError(t, err)
	require.Equal(t, 5, parsed.Count())
	require.Len(t, parsed.Operations.Recover, 2)
	require.Len(t, parsed.Operations.Deactivate, 3)

	t.Run("unknown top-level property rejected", func(t *testing.T) {
		mutated := append(buf[:len(buf)-1], []byte(`,"bogus":"x"}`)...)

		_, err := ParseCoreProofFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under operations is rejected", func(t *testing.T) {
		mutated := []byte(`{"operations":{"recover":["sig"],"bogus":"x"}}`)

		_, err := ParseCoreProofFile(mutated)
		require.Error(t, err)
	})
}

func TestProvisionalProofFile(t *testing.T) {
	_, updates, _, _ := getTestOperations(0, 4, 0, 0)

	file := CreateProvisionalProofFile(updates)

	buf, err := json.Marshal(file)
	require.NoError(t, err)

	parsed, err := ParseProvisionalProofFile(buf)
	require.NoError(t, err)
	require.Equal(t, 4, parsed.Count())

	t.Run("unknown top-level property rejected", func(t *testing.T) {
		mutated := append(buf[:len(buf)-1], []byte(`,"bogus":"x"}`)...)

		_, err := ParseProvisionalProofFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under operations is rejected", func(t *testing.T) {
		mutated := []byte(`{"operations":{"update":["sig"],"bogus":"x"}}`)

		_, err := ParseProvisionalProofFile(mutated)
		require.Error(t, err)
	})
}

func TestChunkFile(t *testing.T) {
	creates, updates, recovers, _ := getTestOperations(2, 3, 1, 2)

	var all []*operation.Operation
	all = append(all, creates...)
	all = append(all, recovers...)
	all = append(all, updates...)

	file := CreateChunkFile(all)

	buf, err := json.Marshal(file)
	require.NoError(t, err)

	parsed, err := ParseChunkFile(buf)
	require.NoError(t, err)
	require.Len(t, parsed.Deltas, 6)

	t.Run("unknown top-level property rejected", func(t *testing.T) {
		mutated := append(buf[:len(buf)-1], []byte(`,"bogus":"x"}`)...)

		_, err := ParseChunkFile(mutated)
		require.Error(t, err)
	})

	t.Run("unknown property nested under a delta entry is rejected", func(t *testing.T) {
		mutated := []byte(`{"deltas":[{"updateCommitment":"uc","patches":[],"bogus":"x"}]}`)

		_, err := ParseChunkFile(mutated)
		require.Error(t, err)
	})
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := ParseCoreIndexFile([]byte("not json"))
	require.Error(t, err)

	_, err = ParseProvisionalIndexFile([]byte("not json"))
	require.Error(t, err)

	_, err = ParseCoreProofFile([]byte("not json"))
	require.Error(t, err)

	_, err = ParseProvisionalProofFile([]byte("not json"))
	require.Error(t, err)

	_, err = ParseChunkFile([]byte("not json"))
	require.Error(t, err)
}
