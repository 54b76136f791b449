/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txnprocessor implements process(transaction) -> bool (spec
// §4.5): the fee check and the final insert_or_replace into the
// operation store, wrapping a TxnOperationsProvider for the CAS-backed
// steps. Grounded on trustbloc-orb's pkg/txnprocessor/txnprocessor.go
// (Providers{OpStore, OperationProtocolProvider}, New, Process, the
// edge-core logger and github.com/pkg/errors wrapping), adapted to the
// true/false retry signal spec §4.5 step 10 defines in place of orb's
// plain error return.
package txnprocessor

import (
	"github.com/pkg/errors"
	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/api/txn"
	"github.com/trustbloc/sidetree-node/pkg/fee"
)

var logger = log.New("sidetree-txn-processor")

// OperationStore is the store Process upserts composed operations into.
type OperationStore interface {
	InsertOrReplace(ops []*operation.AnchoredOperation) error
}

// TxnOperationsProvider downloads and composes a transaction's
// AnchoredOperation records (pkg/versions/1_0/txnprovider.OperationProvider).
type TxnOperationsProvider interface {
	GetTxnOperations(transaction *txn.SidetreeTxn) ([]*operation.AnchoredOperation, error)
}

// Providers bundles TxnProcessor's dependencies.
type Providers struct {
	Protocol                  protocol.Protocol
	OperationProtocolProvider TxnOperationsProvider
	OpStore                   OperationStore
}

// TxnProcessor processes ledger transactions into the operation store
// (spec §4.5).
type TxnProcessor struct {
	*Providers
}

// New returns a TxnProcessor configured with providers.
func New(providers *Providers) *TxnProcessor {
	return &TxnProcessor{Providers: providers}
}

// Process downloads, validates, and stores a transaction's operations.
// It returns true when the transaction is done with (success or a
// permanent skip) and false when the caller should retry later (spec
// §4.5 step 10).
func (p *TxnProcessor) Process(sidetreeTxn txn.SidetreeTxn) bool {
	logger.Debugf("processing sidetree txn: %+v", sidetreeTxn)

	anchor, err := txn.ParseAnchorString(sidetreeTxn.AnchorString, p.Protocol.MaxOperationsPerBatch)
	if err != nil {
		logger.Warnf("permanently skipping transaction %d: %s", sidetreeTxn.TransactionNumber, err)
		return true
	}

	if err := fee.Verify(float64(sidetreeTxn.FeePaid), int64(anchor.NumberOfOperations), float64(sidetreeTxn.NormalizedFee), p.Protocol); err != nil {
		logger.Warnf("permanently skipping transaction %d: fee check failed: %s", sidetreeTxn.TransactionNumber, err)
		return true
	}

	txnOps, err := p.OperationProtocolProvider.GetTxnOperations(&sidetreeTxn)
	if err != nil {
		if protocol.IsTransient(codeOf(err)) {
			logger.Infof("retrying transaction %d later: %s", sidetreeTxn.TransactionNumber, err)
			return false
		}

		logger.Warnf("permanently skipping transaction %d: %s", sidetreeTxn.TransactionNumber, err)
		return true
	}

	if err := p.processTxnOperations(txnOps, sidetreeTxn); err != nil {
		logger.Infof("retrying transaction %d later: %s", sidetreeTxn.TransactionNumber, err)
		return false
	}

	return true
}

func (p *TxnProcessor) processTxnOperations(txnOps []*operation.AnchoredOperation, sidetreeTxn txn.SidetreeTxn) error {
	logger.Debugf("processing %d transaction operations", len(txnOps))

	for _, op := range txnOps {
		op.TransactionTime = sidetreeTxn.TransactionTime
		op.TransactionNumber = sidetreeTxn.TransactionNumber
	}

	if err := p.OpStore.InsertOrReplace(txnOps); err != nil {
		return errors.Wrapf(err, "failed to store operations from anchor string[%s]", sidetreeTxn.AnchorString)
	}

	return nil
}

func codeOf(err error) protocol.ErrorCode {
	code, _ := protocol.CodeOf(err)
	return code
}
