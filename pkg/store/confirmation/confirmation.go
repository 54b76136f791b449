/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package confirmation implements the confirmation store (spec §4.10):
// tracks submit/confirm state per anchor string so the batch writer can
// gate on MIN_CONFIRMATIONS before draining the queue again.
package confirmation

import (
	"sync"
)

// Confirmation is a single submit/confirm row (spec §3).
type Confirmation struct {
	AnchorString string
	SubmittedAt  uint64
	ConfirmedAt  *uint64
}

// Store is an in-memory confirmation store.
type Store struct {
	mu   sync.Mutex
	rows []*Confirmation
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Submit inserts a new row for anchorString submitted at t (spec §4.10).
func (s *Store) Submit(anchorString string, t uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, &Confirmation{AnchorString: anchorString, SubmittedAt: t})
}

// Confirm sets confirmed_at on every row matching anchorString (spec §4.10).
func (s *Store) Confirm(anchorString string, t uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.AnchorString == anchorString {
			confirmedAt := t
			row.ConfirmedAt = &confirmedAt
		}
	}
}

// ResetAfter clears confirmed_at on rows confirmed after t, supporting
// ledger reorgs (spec §4.10, scenario S9). A nil t clears the entire store.
func (s *Store) ResetAfter(t *uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == nil {
		s.rows = nil

		return
	}

	for _, row := range s.rows {
		if row.ConfirmedAt != nil && *row.ConfirmedAt > *t {
			row.ConfirmedAt = nil
		}
	}
}

// LastSubmitted returns the row with the maximum submitted_at, or nil
// if the store is empty (spec §4.10).
func (s *Store) LastSubmitted() *Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *Confirmation

	for _, row := range s.rows {
		if last == nil || row.SubmittedAt > last.SubmittedAt {
			last = row
		}
	}

	if last == nil {
		return nil
	}

	copied := *last

	return &copied
}
