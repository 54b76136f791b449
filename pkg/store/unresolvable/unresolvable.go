/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package unresolvable implements the unresolvable-transaction store
// (spec §4.11): transactions the transaction processor could not
// finish processing are recorded here with an exponential backoff
// schedule, so the observer driver can retry them without starving
// progress on later transactions.
package unresolvable

import (
	"sort"
	"sync"

	"github.com/trustbloc/sidetree-node/pkg/api/txn"
)

const defaultDueForRetryLimit = 100

// Entry is a single unresolvable-transaction row (spec §3).
type Entry struct {
	Transaction    txn.SidetreeTxn
	FirstFetchTime uint64
	RetryAttempts  uint
	NextRetryTime  uint64
}

type key struct {
	transactionTime   uint64
	transactionNumber uint64
}

// Store is an in-memory unresolvable-transaction store.
type Store struct {
	mu          sync.Mutex
	entries     map[key]*Entry
	baseDelayMS uint64
	now         func() uint64
}

// New returns an empty Store. baseDelayMS is the base of the
// exponential backoff formula in spec §4.11; now supplies the current
// time in the same units as transaction times (injected for
// deterministic tests).
func New(baseDelayMS uint64, now func() uint64) *Store {
	return &Store{entries: make(map[key]*Entry), baseDelayMS: baseDelayMS, now: now}
}

// Record inserts transaction on first sighting with retry_attempts = 0
// and next_retry_time = now; on subsequent sightings it increments
// attempts and reschedules per the exponential backoff formula (spec §4.11).
func (s *Store) Record(transaction txn.SidetreeTxn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{transaction.TransactionTime, transaction.TransactionNumber}

	existing, ok := s.entries[k]
	if !ok {
		now := s.now()
		s.entries[k] = &Entry{
			Transaction:    transaction,
			FirstFetchTime: now,
			RetryAttempts:  0,
			NextRetryTime:  now,
		}

		return
	}

	delay := (uint64(1) << existing.RetryAttempts) * s.baseDelayMS
	existing.RetryAttempts++
	existing.NextRetryTime = existing.FirstFetchTime + delay
}

// DueForRetry returns rows whose next_retry_time has elapsed, ordered
// by next_retry_time ascending, up to limit entries (default 100).
func (s *Store) DueForRetry(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultDueForRetryLimit
	}

	now := s.now()

	due := make([]Entry, 0, len(s.entries))

	for _, e := range s.entries {
		if e.NextRetryTime <= now {
			due = append(due, *e)
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i].NextRetryTime < due[j].NextRetryTime })

	if len(due) > limit {
		due = due[:limit]
	}

	return due
}

// Remove deletes transaction's row, if present.
func (s *Store) Remove(transaction txn.SidetreeTxn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key{transaction.TransactionTime, transaction.TransactionNumber})
}

// RemoveLaterThan removes every row with transaction_number greater
// than txNumber; a nil txNumber removes every row.
func (s *Store) RemoveLaterThan(txNumber *uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txNumber == nil {
		s.entries = make(map[key]*Entry)

		return
	}

	for k := range s.entries {
		if k.transactionNumber > *txNumber {
			delete(s.entries, k)
		}
	}
}
