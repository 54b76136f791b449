/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txnprovider downloads and validates the CAS files an anchor
// string references and composes the AnchoredOperation records the
// transaction processor stores (spec §4.5 steps 3-8), grounded on
// Moopli-sidetree-core-go/pkg/observer/observer_test.go's TxnOpsProvider
// interface (GetTxnOperations(*txn.SidetreeTxn)) and mockDCAS's
// Read(key)/Write(content) shape for the CAS client this package
// depends on.
package txnprovider

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/api/txn"
	"github.com/trustbloc/sidetree-node/pkg/compression"
	"github.com/trustbloc/sidetree-node/pkg/valuetimelock"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/operationparser"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/txnprovider/models"
)

// CAS is the content-addressable store the provider downloads files
// from (and the batch writer uploads to).
type CAS interface {
	Read(uri string) ([]byte, error)
	Write(content []byte) (string, error)
}

// LockResolver resolves a writer_lock_id to its ValueTimeLock record.
type LockResolver interface {
	ResolveLock(lockID string) (*valuetimelock.ValueTimeLock, error)
}

// OperationProvider downloads and validates the CAS files an anchor
// string references, composing the batch's AnchoredOperation records.
type OperationProvider struct {
	protocol.Protocol
	cas    CAS
	locks  LockResolver
	parser *operationparser.Parser
}

// New returns an OperationProvider configured with p.
func New(p protocol.Protocol, cas CAS, locks LockResolver) *OperationProvider {
	return &OperationProvider{Protocol: p, cas: cas, locks: locks, parser: operationparser.New(p)}
}

// GetTxnOperations downloads the core-index file (and, as needed, the
// core-proof, provisional-index, provisional-proof, and chunk files)
// and composes the batch's AnchoredOperation records in the strict
// order spec §4.5 step 8 requires: creates, recovers, deactivates,
// updates, with operation_index increasing monotonically from zero.
func (p *OperationProvider) GetTxnOperations(transaction *txn.SidetreeTxn) ([]*operation.AnchoredOperation, error) {
	anchor, err := txn.ParseAnchorString(transaction.AnchorString, p.MaxOperationsPerBatch)
	if err != nil {
		return nil, err
	}

	coreIndexBuf, err := p.download(anchor.CoreIndexFileURI, p.MaxAnchorFileSizeInBytes)
	if err != nil {
		return nil, err
	}

	coreIndex, err := models.ParseCoreIndexFile(coreIndexBuf)
	if err != nil {
		return nil, err
	}

	if coreIndex.OperationCount() > int(anchor.NumberOfOperations) {
		return nil, protocol.NewError(protocol.ErrAnchoredDataNumberOfOperationsNotPositiveInteger,
			"core index file references %d operations, more than the claimed %d", coreIndex.OperationCount(), anchor.NumberOfOperations)
	}

	if coreIndex.WriterLockID != "" {
		if err := p.verifyWriterLock(coreIndex.WriterLockID, anchor.NumberOfOperations, transaction); err != nil {
			return nil, err
		}
	}

	creates, err := p.parseCreates(coreIndex)
	if err != nil {
		return nil, err
	}

	recovers, deactivates, err := p.parseRecoversAndDeactivates(coreIndex)
	if err != nil {
		return nil, err
	}

	coreProofCount := len(recovers) + len(deactivates)
	if coreIndex.CoreProofFileURI != "" {
		if err := p.attachCoreProofs(coreIndex.CoreProofFileURI, recovers, deactivates); err != nil {
			return nil, err
		}
	} else if coreProofCount != 0 {
		return nil, protocol.NewError(protocol.ErrProofFileCountMismatch, "core proof file uri missing but recover/deactivate operations are present")
	}

	remainingBudget := int(anchor.NumberOfOperations) - len(creates) - coreProofCount

	updates, createDeltas, recoverDeltas, updateDeltas, err := p.processProvisionalContent(coreIndex, creates, recovers, remainingBudget)
	if err != nil {
		return nil, err
	}

	return compose(creates, recovers, deactivates, updates, createDeltas, recoverDeltas, updateDeltas), nil
}

func (p *OperationProvider) download(uri string, maxSize uint) ([]byte, error) {
	compressed, err := p.cas.Read(uri)
	if err != nil {
		return nil, err
	}

	return compression.Decompress(compressed, maxSize, p.EstimatedDecompressionMultiplier)
}

func (p *OperationProvider) verifyWriterLock(lockID string, paidCount uint, transaction *txn.SidetreeTxn) error {
	if p.locks == nil {
		return nil
	}

	lock, err := p.locks.ResolveLock(lockID)
	if err != nil {
		return err
	}

	return valuetimelock.Verify(lock, uint64(paidCount), transaction.TransactionTime, transaction.WriterIdentity, p.Protocol)
}

func (p *OperationProvider) parseCreates(coreIndex *models.CoreIndexFile) ([]*operation.Operation, error) {
	ops := make([]*operation.Operation, 0, len(coreIndex.Operations.Create))

	for _, ref := range coreIndex.Operations.Create {
		buf, err := json.Marshal(model.EmbeddedCreateReference{SuffixData: ref.SuffixData})
		if err != nil {
			return nil, err
		}

		op, err := p.parser.ParseCreateOperation(buf, true)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, nil
}

func (p *OperationProvider) parseRecoversAndDeactivates(coreIndex *models.CoreIndexFile) ([]*operation.Operation, []*operation.Operation, error) {
	recovers := make([]*operation.Operation, 0, len(coreIndex.Operations.Recover))
	deactivates := make([]*operation.Operation, 0, len(coreIndex.Operations.Deactivate))

	for _, ref := range coreIndex.Operations.Recover {
		recovers = append(recovers, &operation.Operation{
			Type:         operation.TypeRecover,
			UniqueSuffix: ref.DidSuffix,
			RevealValue:  ref.RevealValue,
		})
	}

	for _, ref := range coreIndex.Operations.Deactivate {
		deactivates = append(deactivates, &operation.Operation{
			Type:         operation.TypeDeactivate,
			UniqueSuffix: ref.DidSuffix,
			RevealValue:  ref.RevealValue,
		})
	}

	return recovers, deactivates, nil
}

// attachCoreProofs downloads the core proof file and, per spec §4.5
// step 4, requires its proof count equal recover+deactivate count
// exactly. Proofs are assigned positionally: recovers first, then
// deactivates, matching the order CreateCoreProofFile writes them in.
func (p *OperationProvider) attachCoreProofs(uri string, recovers, deactivates []*operation.Operation) error {
	buf, err := p.download(uri, p.MaxProofFileSizeInBytes)
	if err != nil {
		return err
	}

	proofFile, err := models.ParseCoreProofFile(buf)
	if err != nil {
		return err
	}

	if proofFile.Count() != len(recovers)+len(deactivates) {
		return protocol.NewError(protocol.ErrProofFileCountMismatch,
			"core proof file has %d proofs, expected %d", proofFile.Count(), len(recovers)+len(deactivates))
	}

	for i, op := range recovers {
		op.SignedData = proofFile.Operations.Recover[i]
	}

	for i, op := range deactivates {
		op.SignedData = proofFile.Operations.Deactivate[i]
	}

	return nil
}

// processProvisionalContent implements spec §4.5 steps 5-7: retry
// eligible errors propagate, other download/parse errors degrade to
// "no provisional content", and over-claiming or duplicate-suffix
// writers are penalized by discarding every update reference rather
// than rejecting the batch.
func (p *OperationProvider) processProvisionalContent(coreIndex *models.CoreIndexFile, creates, recovers []*operation.Operation, remainingBudget int,
) (updates []*operation.Operation, createDeltas, recoverDeltas, updateDeltas []*operation.Delta, err error) {
	if coreIndex.ProvisionalIndexFileURI == "" {
		return nil, nil, nil, nil, nil
	}

	buf, dlErr := p.download(coreIndex.ProvisionalIndexFileURI, p.MaxMapFileSizeInBytes)
	if dlErr != nil {
		if protocol.IsTransient(codeOf(dlErr)) {
			return nil, nil, nil, nil, dlErr
		}
		// Non-retry-eligible failure: provisional content is undefined,
		// continue with core-index operations only.
		return nil, nil, nil, nil, nil
	}

	provisionalIndex, parseErr := models.ParseProvisionalIndexFile(buf)
	if parseErr != nil {
		return nil, nil, nil, nil, nil
	}

	updates = parseUpdateReferences(provisionalIndex)

	if penalize(updates, remainingBudget, creates, recovers) {
		updates = nil
	}

	deactivated := make(map[string]bool, len(coreIndex.Operations.Deactivate))
	for _, ref := range coreIndex.Operations.Deactivate {
		deactivated[ref.DidSuffix] = true
	}

	for _, op := range updates {
		if deactivated[op.UniqueSuffix] {
			updates = nil
			break
		}
	}

	if len(updates) > 0 && provisionalIndex.ProvisionalProofFileURI != "" {
		if err := p.attachProvisionalProofs(provisionalIndex.ProvisionalProofFileURI, updates); err != nil {
			if protocol.IsTransient(codeOf(err)) {
				return nil, nil, nil, nil, err
			}

			updates = nil
		}
	}

	if len(provisionalIndex.Chunks) != 1 {
		return updates, nil, nil, nil, nil
	}

	createDeltas, recoverDeltas, updateDeltas = p.downloadChunkDeltas(provisionalIndex.Chunks[0].ChunkFileURI, len(creates), len(recovers), len(updates))

	return updates, createDeltas, recoverDeltas, updateDeltas, nil
}

func parseUpdateReferences(provisionalIndex *models.ProvisionalIndexFile) []*operation.Operation {
	updates := make([]*operation.Operation, 0, len(provisionalIndex.Operations.Update))

	for _, ref := range provisionalIndex.Operations.Update {
		updates = append(updates, &operation.Operation{
			Type:         operation.TypeUpdate,
			UniqueSuffix: ref.DidSuffix,
			RevealValue:  ref.RevealValue,
		})
	}

	return updates
}

// penalize reports whether updates must be discarded wholesale: either
// they overflow the operation budget left after create/recover/deactivate,
// or a did_suffix appears in both the core-index create/recover
// references and the provisional-index references (spec §4.5 step 5).
// Core-index deactivate references are checked by the caller,
// processProvisionalContent.
func penalize(updates []*operation.Operation, remainingBudget int, creates, recovers []*operation.Operation) bool {
	if len(updates) > remainingBudget {
		return true
	}

	seen := make(map[string]bool, len(creates)+len(recovers))

	for _, op := range creates {
		seen[op.UniqueSuffix] = true
	}

	for _, op := range recovers {
		seen[op.UniqueSuffix] = true
	}

	for _, op := range updates {
		if seen[op.UniqueSuffix] {
			return true
		}
	}

	return false
}

func (p *OperationProvider) attachProvisionalProofs(uri string, updates []*operation.Operation) error {
	buf, err := p.download(uri, p.MaxProofFileSizeInBytes)
	if err != nil {
		return err
	}

	proofFile, err := models.ParseProvisionalProofFile(buf)
	if err != nil {
		return err
	}

	if proofFile.Count() != len(updates) {
		return protocol.NewError(protocol.ErrProofFileCountMismatch,
			"provisional proof file has %d proofs, expected %d", proofFile.Count(), len(updates))
	}

	for i, op := range updates {
		op.SignedData = proofFile.Operations.Update[i]
	}

	return nil
}

// downloadChunkDeltas downloads the chunk file and slices its deltas
// by position (spec §4.5 step 7-8): creates first, then recovers, then
// updates. A delta-count mismatch treats the chunk file as entirely
// absent rather than failing the transaction.
func (p *OperationProvider) downloadChunkDeltas(uri string, createCount, recoverCount, updateCount int) (createDeltas, recoverDeltas, updateDeltas []*operation.Delta) {
	buf, err := p.download(uri, p.MaxChunkFileSizeInBytes)
	if err != nil {
		return nil, nil, nil
	}

	chunkFile, err := models.ParseChunkFile(buf)
	if err != nil {
		return nil, nil, nil
	}

	if len(chunkFile.Deltas) != createCount+recoverCount+updateCount {
		return nil, nil, nil
	}

	createDeltas = chunkFile.Deltas[:createCount]
	recoverDeltas = chunkFile.Deltas[createCount : createCount+recoverCount]
	updateDeltas = chunkFile.Deltas[createCount+recoverCount:]

	return createDeltas, recoverDeltas, updateDeltas
}

// compose assembles the final AnchoredOperation sequence in the strict
// order spec §4.5 step 8 mandates, with operation_index increasing
// monotonically from zero. TransactionTime/TransactionNumber are left
// zero; the transaction processor fills them in on insert.
func compose(creates, recovers, deactivates, updates []*operation.Operation, createDeltas, recoverDeltas, updateDeltas []*operation.Delta,
) []*operation.AnchoredOperation {
	anchored := make([]*operation.AnchoredOperation, 0, len(creates)+len(recovers)+len(deactivates)+len(updates))
	index := uint(0)

	attach := func(op *operation.Operation, delta *operation.Delta) {
		a := &operation.AnchoredOperation{
			Type:           op.Type,
			UniqueSuffix:   op.UniqueSuffix,
			SignedData:     op.SignedData,
			RevealValue:    op.RevealValue,
			OperationIndex: index,
		}

		if op.SuffixData != nil {
			a.EncodedSuffixData, _ = json.Marshal(op.SuffixData) //nolint:errcheck
		}

		if delta != nil {
			a.EncodedDelta, _ = json.Marshal(delta) //nolint:errcheck
		}

		anchored = append(anchored, a)
		index++
	}

	for i, op := range creates {
		var delta *operation.Delta
		if i < len(createDeltas) {
			delta = createDeltas[i]
		}

		attach(op, delta)
	}

	for i, op := range recovers {
		var delta *operation.Delta
		if i < len(recoverDeltas) {
			delta = recoverDeltas[i]
		}

		attach(op, delta)
	}

	for _, op := range deactivates {
		attach(op, nil)
	}

	for i, op := range updates {
		var delta *operation.Delta
		if i < len(updateDeltas) {
			delta = updateDeltas[i]
		}

		attach(op, delta)
	}

	return anchored
}

func codeOf(err error) protocol.ErrorCode {
	code, _ := protocol.CodeOf(err)
	return code
}
