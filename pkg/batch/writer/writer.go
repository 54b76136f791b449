/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package writer implements the batch writer's per-tick assembly
// algorithm (spec §4.4): drain the operation queue into the five CAS
// file types, anchor the resulting anchor string with the ledger, and
// gate resubmission on MIN_CONFIRMATIONS. Providers/New/Write follow
// the Providers-struct-plus-New idiom trustbloc-orb's
// pkg/txnprocessor/txnprocessor.go establishes and this repo's
// txnprocessor.Providers reuses; the edge-core logger is the same one
// wired there.
package writer

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/api/txn"
	"github.com/trustbloc/sidetree-node/pkg/batch/opqueue"
	"github.com/trustbloc/sidetree-node/pkg/compression"
	"github.com/trustbloc/sidetree-node/pkg/fee"
	"github.com/trustbloc/sidetree-node/pkg/store/confirmation"
	"github.com/trustbloc/sidetree-node/pkg/valuetimelock"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/operationparser"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/txnprovider/models"
)

var logger = log.New("sidetree-batch-writer")

// CAS is the content-addressable store the writer uploads files to.
type CAS interface {
	Write(content []byte) (string, error)
}

// Ledger is the chain/ledger client the writer queries and submits to.
type Ledger interface {
	CurrentTime() (uint64, error)
	NormalizedFee(transactionTime uint64) (uint64, error)
	WriterValueTimeLock() (*valuetimelock.ValueTimeLock, error)
	WriterIdentity() string
	WriteAnchor(anchorString string, minimumFee uint64) error
}

// Queue is the subset of opqueue.Queue the writer drains.
type Queue interface {
	Peek(n int) []opqueue.QueuedOperation
	Dequeue(n int) []opqueue.QueuedOperation
}

// ConfirmationStore is the subset of confirmation.Store the writer
// gates resubmission against.
type ConfirmationStore interface {
	LastSubmitted() *confirmation.Confirmation
	Submit(anchorString string, t uint64)
}

// Providers bundles Writer's dependencies.
type Providers struct {
	Protocol     protocol.Protocol
	Queue        Queue
	CAS          CAS
	Ledger       Ledger
	Confirmation ConfirmationStore
}

// Writer assembles and anchors batches on each tick (spec §4.4).
type Writer struct {
	*Providers
	parser *operationparser.Parser
}

// New returns a Writer configured with providers.
func New(providers *Providers) *Writer {
	return &Writer{Providers: providers, parser: operationparser.New(providers.Protocol)}
}

// Write runs a single tick of the batch assembly algorithm, returning
// the number of operations anchored. Any CAS upload or ledger
// submission failure aborts the tick without draining the queue or
// recording a confirmation row (spec §4.4 failure semantics).
func (w *Writer) Write() (int, error) {
	currentTime, err := w.Ledger.CurrentTime()
	if err != nil {
		return 0, errors.Wrap(err, "failed to query ledger time")
	}

	normalizedFee, err := w.Ledger.NormalizedFee(currentTime)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query normalized fee")
	}

	lock, err := w.Ledger.WriterValueTimeLock()
	if err != nil {
		return 0, errors.Wrap(err, "failed to query writer value time lock")
	}

	allowed := valuetimelock.Allowed(lock, w.Protocol)
	if allowed > uint64(w.Protocol.MaxOperationsPerBatch) {
		allowed = uint64(w.Protocol.MaxOperationsPerBatch)
	}

	queued := w.Queue.Peek(int(allowed))
	if len(queued) == 0 {
		return 0, nil
	}

	if !w.confirmationGatePasses(currentTime) {
		logger.Debugf("last submitted batch is not yet confirmed enough blocks ago, skipping this tick")
		return 0, nil
	}

	creates, recovers, deactivates, updates, err := w.partition(queued)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse queued operations")
	}

	coreProofURI, err := w.uploadCoreProofFile(recovers, deactivates)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upload core proof file")
	}

	provisionalProofURI, err := w.uploadProvisionalProofFile(updates)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upload provisional proof file")
	}

	chunkURI, err := w.uploadChunkFile(creates, recovers, updates)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upload chunk file")
	}

	var provisionalIndexURI string

	if chunkURI != "" {
		provisionalIndexURI, err = w.uploadProvisionalIndexFile(provisionalProofURI, chunkURI, updates)
		if err != nil {
			return 0, errors.Wrap(err, "failed to upload provisional index file")
		}
	}

	writerLockID := ""
	if lock != nil {
		writerLockID = lock.Identifier
	}

	coreIndexURI, err := w.uploadCoreIndexFile(writerLockID, provisionalIndexURI, coreProofURI, creates, recovers, deactivates)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upload core index file")
	}

	anchorString := txn.AnchorString{NumberOfOperations: uint(len(queued)), CoreIndexFileURI: coreIndexURI}.Serialize()

	minimumFee := uint64(fee.MinimumTransactionFee(float64(normalizedFee), uint64(len(queued)), w.Protocol.NormalizedToPerOperationFeeFactor))

	if err := w.Ledger.WriteAnchor(anchorString, minimumFee); err != nil {
		return 0, errors.Wrap(err, "failed to submit anchor string to ledger")
	}

	w.Confirmation.Submit(anchorString, currentTime)

	w.Queue.Dequeue(len(queued))

	logger.Debugf("anchored %d operations as %q", len(queued), anchorString)

	return len(queued), nil
}

// confirmationGatePasses reports whether the writer may submit a new
// batch: either nothing has been submitted yet, or the last submission
// has accrued at least MinConfirmations confirmations (spec §4.4 step 4,
// scenario S8). The confirming block itself counts as the first
// confirmation, so the count is currentTime-ConfirmedAt+1, inclusive.
func (w *Writer) confirmationGatePasses(currentTime uint64) bool {
	last := w.Confirmation.LastSubmitted()
	if last == nil {
		return true
	}

	if last.ConfirmedAt == nil {
		return false
	}

	return currentTime >= *last.ConfirmedAt+w.Protocol.MinConfirmations-1
}

func (w *Writer) partition(queued []opqueue.QueuedOperation) (creates, recovers, deactivates, updates []*operation.Operation, err error) {
	for _, q := range queued {
		opType, parseErr := operationType(q.OperationBuffer)
		if parseErr != nil {
			return nil, nil, nil, nil, parseErr
		}

		op, parseErr := w.parser.Parse(opType, q.OperationBuffer, false)
		if parseErr != nil {
			return nil, nil, nil, nil, parseErr
		}

		switch op.Type {
		case operation.TypeCreate:
			creates = append(creates, op)
		case operation.TypeRecover:
			recovers = append(recovers, op)
		case operation.TypeDeactivate:
			deactivates = append(deactivates, op)
		case operation.TypeUpdate:
			updates = append(updates, op)
		}
	}

	return creates, recovers, deactivates, updates, nil
}

func (w *Writer) uploadCoreProofFile(recovers, deactivates []*operation.Operation) (string, error) {
	if len(recovers) == 0 && len(deactivates) == 0 {
		return "", nil
	}

	return w.upload(models.CreateCoreProofFile(recovers, deactivates))
}

func (w *Writer) uploadProvisionalProofFile(updates []*operation.Operation) (string, error) {
	if len(updates) == 0 {
		return "", nil
	}

	return w.upload(models.CreateProvisionalProofFile(updates))
}

// uploadChunkFile builds and uploads the chunk file from the deltas of
// create, recover, update operations in that order (spec §4.4 step 8).
func (w *Writer) uploadChunkFile(creates, recovers, updates []*operation.Operation) (string, error) {
	if len(creates) == 0 && len(recovers) == 0 && len(updates) == 0 {
		return "", nil
	}

	all := make([]*operation.Operation, 0, len(creates)+len(recovers)+len(updates))
	all = append(all, creates...)
	all = append(all, recovers...)
	all = append(all, updates...)

	return w.upload(models.CreateChunkFile(all))
}

func (w *Writer) uploadProvisionalIndexFile(provisionalProofURI, chunkURI string, updates []*operation.Operation) (string, error) {
	return w.upload(models.CreateProvisionalIndexFile(provisionalProofURI, chunkURI, updates))
}

func (w *Writer) uploadCoreIndexFile(writerLockID, provisionalIndexURI, coreProofURI string, creates, recovers, deactivates []*operation.Operation) (string, error) {
	return w.upload(models.CreateCoreIndexFile(writerLockID, provisionalIndexURI, coreProofURI, creates, recovers, deactivates))
}

func (w *Writer) upload(file interface{}) (string, error) {
	buf, err := json.Marshal(file)
	if err != nil {
		return "", err
	}

	compressed, err := compression.Compress(buf)
	if err != nil {
		return "", err
	}

	return w.CAS.Write(compressed)
}

// operationType reads the envelope's "type" field off a queued
// operation request buffer (spec §3 request envelope).
func operationType(buf []byte) (operation.Type, error) {
	var envelope struct {
		Type operation.Type `json:"type"`
	}

	if err := json.Unmarshal(buf, &envelope); err != nil {
		return "", protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "invalid operation JSON: %s", err.Error())
	}

	if envelope.Type == "" {
		return "", protocol.NewError(protocol.ErrOperationTypeUnknownOrMissing, "missing operation type")
	}

	return envelope.Type, nil
}
