/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package throughput implements the per-block throughput limiter (spec
// §4.8): given transactions that share a block height, greedily admit
// the highest-fee-first subset that fits the remaining per-block
// operation budget.
package throughput

import (
	"sort"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/api/txn"
)

// Limiter selects transactions to anchor under a configured per-block
// operation budget.
type Limiter struct {
	maxOpsPerBlock uint64
}

// New returns a Limiter bounded by maxOpsPerBlock.
func New(maxOpsPerBlock uint64) *Limiter {
	return &Limiter{maxOpsPerBlock: maxOpsPerBlock}
}

// candidate pairs a transaction with its claimed operation count,
// decoded once from its anchor string up front.
type candidate struct {
	tx      txn.SidetreeTxn
	opCount uint64
}

// SelectTransactions greedily admits transactions by (fee_paid desc,
// transaction_number asc) tie-break, accepting a candidate only if it
// does not overflow the remaining budget after alreadyAnchored
// operations in this block height. Returns the selected set sorted by
// transaction_number ascending (spec §4.8, testable property #8,
// scenario S7).
func (l *Limiter) SelectTransactions(transactions []txn.SidetreeTxn, alreadyAnchored uint64, maxOperationsPerBatch uint,
) ([]txn.SidetreeTxn, error) {
	if err := requireSameBlock(transactions); err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(transactions))

	for _, t := range transactions {
		anchor, err := txn.ParseAnchorString(t.AnchorString, maxOperationsPerBatch)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, candidate{tx: t, opCount: uint64(anchor.NumberOfOperations)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].tx.FeePaid != candidates[j].tx.FeePaid {
			return candidates[i].tx.FeePaid > candidates[j].tx.FeePaid
		}

		return candidates[i].tx.TransactionNumber < candidates[j].tx.TransactionNumber
	})

	budget := int64(l.maxOpsPerBlock) - int64(alreadyAnchored)

	selected := make([]txn.SidetreeTxn, 0, len(candidates))

	for _, c := range candidates {
		if int64(c.opCount) > budget {
			continue
		}

		selected = append(selected, c.tx)
		budget -= int64(c.opCount)
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].TransactionNumber < selected[j].TransactionNumber
	})

	return selected, nil
}

func requireSameBlock(transactions []txn.SidetreeTxn) error {
	if len(transactions) == 0 {
		return nil
	}

	first := transactions[0].TransactionTime

	for _, t := range transactions[1:] {
		if t.TransactionTime != first {
			return protocol.NewError(protocol.ErrTransactionsNotInSameBlock,
				"transaction %d is not in the same block as transaction %d", t.TransactionNumber, transactions[0].TransactionNumber)
		}
	}

	return nil
}
