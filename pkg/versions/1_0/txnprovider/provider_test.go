/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprovider

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/api/txn"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/txnprovider/models"
)

func anchorStringFor(t *testing.T, cas *mockCAS, count int, coreIndexURI string) string {
	t.Helper()

	return strconv.Itoa(count) + "." + coreIndexURI
}

// TestGetTxnOperations_SingleCreate covers scenario S1: a single create
// operation, its delta carried by the chunk file.
func TestGetTxnOperations_SingleCreate(t *testing.T) {
	cas := newMockCAS()

	create := newCreateOp("a")

	chunkFile := models.CreateChunkFile([]*operation.Operation{create})
	chunkURI, err := cas.put(chunkFile)
	require.NoError(t, err)

	provisionalIndex := models.CreateProvisionalIndexFile("", chunkURI, nil)
	provisionalURI, err := cas.put(provisionalIndex)
	require.NoError(t, err)

	coreIndex := models.CreateCoreIndexFile("", provisionalURI, "", []*operation.Operation{create}, nil, nil)
	coreIndexURI, err := cas.put(coreIndex)
	require.NoError(t, err)

	transaction := &txn.SidetreeTxn{
		AnchorString:      anchorStringFor(t, cas, 1, coreIndexURI),
		TransactionTime:   100,
		TransactionNumber: 1,
	}

	provider := New(protocol.Default(), cas, nil)

	ops, err := provider.GetTxnOperations(transaction)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, operation.TypeCreate, ops[0].Type)
	require.NotEmpty(t, ops[0].EncodedDelta)
	require.Equal(t, uint(0), ops[0].OperationIndex)
}

// TestGetTxnOperations_DeactivateOnly covers scenario S2: a
// deactivate-only batch needs no provisional-index file.
func TestGetTxnOperations_DeactivateOnly(t *testing.T) {
	cas := newMockCAS()

	deactivate := &operation.Operation{
		Type:         operation.TypeDeactivate,
		UniqueSuffix: "deactivated-did",
		RevealValue:  "reveal-value",
	}

	coreProof := models.CreateCoreProofFile(nil, []*operation.Operation{deactivate})
	coreProofURI, err := cas.put(coreProof)
	require.NoError(t, err)

	coreIndex := models.CreateCoreIndexFile("", "", coreProofURI, nil, nil, []*operation.Operation{deactivate})
	coreIndexURI, err := cas.put(coreIndex)
	require.NoError(t, err)

	transaction := &txn.SidetreeTxn{
		AnchorString:      anchorStringFor(t, cas, 1, coreIndexURI),
		TransactionTime:   100,
		TransactionNumber: 2,
	}

	provider := New(protocol.Default(), cas, nil)

	ops, err := provider.GetTxnOperations(transaction)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, operation.TypeDeactivate, ops[0].Type)
	require.Empty(t, ops[0].EncodedDelta)
}

// TestGetTxnOperations_OverClaimPenalty covers scenario S3: updates
// that overflow the remaining operation budget are discarded wholesale,
// not rejected.
func TestGetTxnOperations_OverClaimPenalty(t *testing.T) {
	cas := newMockCAS()

	create := newCreateOp("b")

	updateRefs := []model.EmbeddedUpdateReference{
		{DidSuffix: "update-1", RevealValue: "reveal-1"},
		{DidSuffix: "update-2", RevealValue: "reveal-2"},
	}

	chunkFile := models.CreateChunkFile([]*operation.Operation{create})
	chunkURI, err := cas.put(chunkFile)
	require.NoError(t, err)

	provisionalProof := models.CreateProvisionalProofFile([]*operation.Operation{
		{SignedData: "sig-update-1"}, {SignedData: "sig-update-2"},
	})
	provisionalProofURI, err := cas.put(provisionalProof)
	require.NoError(t, err)

	provisionalIndex := &models.ProvisionalIndexFile{
		ProvisionalProofFileURI: provisionalProofURI,
		Chunks:                  []models.Chunk{{ChunkFileURI: chunkURI}},
	}
	provisionalIndex.Operations.Update = updateRefs
	provisionalURI, err := cas.put(provisionalIndex)
	require.NoError(t, err)

	coreIndex := models.CreateCoreIndexFile("", provisionalURI, "", []*operation.Operation{create}, nil, nil)
	coreIndexURI, err := cas.put(coreIndex)
	require.NoError(t, err)

	// Anchor string claims 2 operations total, leaving only 1 slot for
	// updates after the single create; the provisional index lists 2.
	transaction := &txn.SidetreeTxn{
		AnchorString:      anchorStringFor(t, cas, 2, coreIndexURI),
		TransactionTime:   100,
		TransactionNumber: 3,
	}

	provider := New(protocol.Default(), cas, nil)

	ops, err := provider.GetTxnOperations(transaction)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, operation.TypeCreate, ops[0].Type)
}

// TestGetTxnOperations_DuplicateSuffixPenalty covers scenario S4: a
// did_suffix claimed by both the core-index and provisional-index
// files discards every update reference.
func TestGetTxnOperations_DuplicateSuffixPenalty(t *testing.T) {
	cas := newMockCAS()

	create := newCreateOp("c")

	updateRefs := []model.EmbeddedUpdateReference{
		{DidSuffix: create.UniqueSuffix, RevealValue: "reveal-1"},
	}

	chunkFile := models.CreateChunkFile([]*operation.Operation{create})
	chunkURI, err := cas.put(chunkFile)
	require.NoError(t, err)

	provisionalProof := models.CreateProvisionalProofFile([]*operation.Operation{{SignedData: "sig-update-1"}})
	provisionalProofURI, err := cas.put(provisionalProof)
	require.NoError(t, err)

	provisionalIndex := &models.ProvisionalIndexFile{
		ProvisionalProofFileURI: provisionalProofURI,
		Chunks:                  []models.Chunk{{ChunkFileURI: chunkURI}},
	}
	provisionalIndex.Operations.Update = updateRefs
	provisionalURI, err := cas.put(provisionalIndex)
	require.NoError(t, err)

	coreIndex := models.CreateCoreIndexFile("", provisionalURI, "", []*operation.Operation{create}, nil, nil)
	coreIndexURI, err := cas.put(coreIndex)
	require.NoError(t, err)

	transaction := &txn.SidetreeTxn{
		AnchorString:      anchorStringFor(t, cas, 5, coreIndexURI),
		TransactionTime:   100,
		TransactionNumber: 4,
	}

	provider := New(protocol.Default(), cas, nil)

	ops, err := provider.GetTxnOperations(transaction)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, operation.TypeCreate, ops[0].Type)
}

// TestGetTxnOperations_CASNotReachable covers scenario S5: a
// transient CAS failure propagates as a retry-eligible error.
func TestGetTxnOperations_CASNotReachable(t *testing.T) {
	cas := newMockCAS()
	cas.readErr = protocol.NewError(protocol.ErrCASNotReachable, "cas unreachable")

	transaction := &txn.SidetreeTxn{
		AnchorString:      "1.some-uri",
		TransactionTime:   100,
		TransactionNumber: 5,
	}

	provider := New(protocol.Default(), cas, nil)

	_, err := provider.GetTxnOperations(transaction)
	require.Error(t, err)

	code, ok := protocol.CodeOf(err)
	require.True(t, ok)
	require.True(t, protocol.IsTransient(code))
}
