/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operation implements the operation store (spec §4.9): the
// exclusive owner of persisted anchored operations, keyed by
// (did_suffix, transaction_number, operation_index, kind) with get()
// ordered by (transaction_number, operation_index). In-memory,
// mutex-guarded, following the same store idiom as opqueue.Queue;
// a durable backing store is an embedding-server concern.
package operation

import (
	"sort"
	"sync"

	apioperation "github.com/trustbloc/sidetree-node/pkg/api/operation"
)

// Store is an in-memory operation store.
type Store struct {
	mu  sync.Mutex
	ops map[string]map[[4]string]*apioperation.AnchoredOperation
}

// New returns an empty Store.
func New() *Store {
	return &Store{ops: make(map[string]map[[4]string]*apioperation.AnchoredOperation)}
}

// InsertOrReplace upserts ops, keyed by (did_suffix, transaction_number,
// operation_index, kind) (spec §4.9). Repeated insertion of identical
// operations is idempotent (testable property #7).
func (s *Store) InsertOrReplace(ops []*apioperation.AnchoredOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		bucket, ok := s.ops[op.UniqueSuffix]
		if !ok {
			bucket = make(map[[4]string]*apioperation.AnchoredOperation)
			s.ops[op.UniqueSuffix] = bucket
		}

		bucket[op.UniqueKey()] = op
	}

	return nil
}

// Get returns didSuffix's anchored operations ordered by
// (transaction_number asc, operation_index asc) (spec §4.9).
func (s *Store) Get(didSuffix string) ([]*apioperation.AnchoredOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.ops[didSuffix]

	out := make([]*apioperation.AnchoredOperation, 0, len(bucket))
	for _, op := range bucket {
		out = append(out, op)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionNumber != out[j].TransactionNumber {
			return out[i].TransactionNumber < out[j].TransactionNumber
		}

		return out[i].OperationIndex < out[j].OperationIndex
	})

	return out, nil
}

// Delete removes entries. When afterTxNumber is non-nil, only entries
// with transaction_number strictly greater than it are removed;
// otherwise every entry is removed (spec §4.9).
func (s *Store) Delete(afterTxNumber *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if afterTxNumber == nil {
		s.ops = make(map[string]map[[4]string]*apioperation.AnchoredOperation)

		return nil
	}

	for suffix, bucket := range s.ops {
		for key, op := range bucket {
			if op.TransactionNumber > *afterTxNumber {
				delete(bucket, key)
			}
		}

		if len(bucket) == 0 {
			delete(s.ops, suffix)
		}
	}

	return nil
}

// DeleteUpdatesEarlierThan removes update-kind entries for didSuffix
// strictly before (txNumber, opIndex) (spec §4.9's pruning optimization).
func (s *Store) DeleteUpdatesEarlierThan(didSuffix string, txNumber uint64, opIndex uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.ops[didSuffix]

	for key, op := range bucket {
		if op.Type != apioperation.TypeUpdate {
			continue
		}

		if op.TransactionNumber < txNumber || (op.TransactionNumber == txNumber && op.OperationIndex < opIndex) {
			delete(bucket, key)
		}
	}

	return nil
}
