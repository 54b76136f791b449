/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package opqueue implements the per-node operation queue the batch
// writer drains on each tick (spec §4.3): FIFO insertion order, at most
// one queued operation per did_suffix, atomic peek/dequeue over the
// oldest n entries. Thread-safety follows the mutex-guarded in-memory
// store idiom used throughout the retrieved corpus's cache/store types
// (e.g. certenIO-certen-validator's liteclient/cache.AccountCache).
package opqueue

import (
	"sync"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// QueuedOperation is a single queued request awaiting batching (spec §3).
type QueuedOperation struct {
	UniqueSuffix    string
	OperationBuffer []byte
}

// Queue is an in-memory, mutex-guarded operation queue. Durability
// beyond process lifetime (spec §4.3's "MUST survive process
// restarts") is a storage-layer concern this type defers to whatever
// backing store its embedding server chooses; this type owns only the
// ordering and uniqueness invariants.
type Queue struct {
	mu      sync.Mutex
	entries []QueuedOperation
	index   map[string]bool
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{index: make(map[string]bool)}
}

// Enqueue appends op, failing if its did_suffix is already queued
// (spec §4.3, testable property #5).
func (q *Queue) Enqueue(uniqueSuffix string, operationBuffer []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index[uniqueSuffix] {
		return protocol.NewError(protocol.ErrQueueingMultipleOperationsPerDidNotAllowed,
			"an operation for did_suffix %q is already queued", uniqueSuffix)
	}

	q.entries = append(q.entries, QueuedOperation{UniqueSuffix: uniqueSuffix, OperationBuffer: operationBuffer})
	q.index[uniqueSuffix] = true

	return nil
}

// Peek returns up to n of the oldest queued entries without modifying state.
func (q *Queue) Peek(n int) []QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > len(q.entries) {
		n = len(q.entries)
	}

	out := make([]QueuedOperation, n)
	copy(out, q.entries[:n])

	return out
}

// Dequeue atomically removes and returns up to n of the oldest queued entries.
func (q *Queue) Dequeue(n int) []QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > len(q.entries) {
		n = len(q.entries)
	}

	out := make([]QueuedOperation, n)
	copy(out, q.entries[:n])

	for _, e := range out {
		delete(q.index, e.UniqueSuffix)
	}

	q.entries = q.entries[n:]

	return out
}

// Contains reports whether uniqueSuffix already has a queued operation.
func (q *Queue) Contains(uniqueSuffix string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.index[uniqueSuffix]
}

// Size returns the number of queued operations.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}
