/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package observer runs the ledger-watching driver: it reads
// transactions the Ledger client delivers, hands each to a
// TxnProcessor, and routes retry-eligible transactions to the
// unresolvable-transaction store instead of blocking later
// transactions on them (spec §4.11, §9's cooperative-task guidance).
// Grounded on Moopli-sidetree-core-go/pkg/observer/observer_test.go's
// Providers{Ledger, TxnOpsProvider}/New/Start/Stop shape and its
// channel-driven run loop, generalized to dispatch into this repo's
// txnprocessor.TxnProcessor and unresolvable.Store instead of
// recomputing storage logic inline.
package observer

import (
	"sync"

	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/sidetree-node/pkg/api/txn"
	"github.com/trustbloc/sidetree-node/pkg/store/unresolvable"
)

var logger = log.New("sidetree-observer")

// Ledger is the chain/ledger client the observer watches.
type Ledger interface {
	RegisterForSidetreeTxn() <-chan []txn.SidetreeTxn
}

// TxnProcessor processes a single ledger transaction, returning true
// when done with it (success or permanent skip) and false to retry later.
type TxnProcessor interface {
	Process(sidetreeTxn txn.SidetreeTxn) bool
}

// UnresolvableStore records transactions the processor could not
// finish, scheduling their retry per an exponential backoff.
type UnresolvableStore interface {
	Record(transaction txn.SidetreeTxn)
	Remove(transaction txn.SidetreeTxn)
	DueForRetry(limit int) []unresolvable.Entry
}

// Providers bundles Observer's dependencies.
type Providers struct {
	Ledger       Ledger
	TxnProcessor TxnProcessor
	Unresolvable UnresolvableStore
}

// Observer drives transaction processing off the ledger's notification channel.
type Observer struct {
	*Providers
	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns an Observer configured with providers.
func New(providers *Providers) *Observer {
	return &Observer{Providers: providers, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
}

// Start launches the observer's run loop in its own goroutine.
func (o *Observer) Start() {
	go o.run()
}

// Stop signals the run loop to exit and waits for it to finish.
func (o *Observer) Stop() {
	close(o.stopCh)
	<-o.doneCh
}

func (o *Observer) run() {
	defer close(o.doneCh)

	sidetreeTxnCh := o.Ledger.RegisterForSidetreeTxn()

	for {
		select {
		case <-o.stopCh:
			return
		case txns, ok := <-sidetreeTxnCh:
			if !ok {
				return
			}

			o.processBatch(txns)
		}
	}
}

// processBatch processes each transaction in ledger order. A
// retry-eligible transaction is recorded in the unresolvable store and
// does not block subsequent transactions in the same batch (spec §9).
func (o *Observer) processBatch(txns []txn.SidetreeTxn) {
	for _, t := range txns {
		if o.TxnProcessor.Process(t) {
			if o.Unresolvable != nil {
				o.Unresolvable.Remove(t)
			}

			continue
		}

		logger.Infof("transaction %d did not resolve, recording for retry", t.TransactionNumber)

		if o.Unresolvable != nil {
			o.Unresolvable.Record(t)
		}
	}
}

// RetryUnresolved processes every transaction the unresolvable store
// reports as due, up to limit entries (spec §4.11's due_for_retry driver loop).
func (o *Observer) RetryUnresolved(limit int) {
	if o.Unresolvable == nil {
		return
	}

	due := o.Unresolvable.DueForRetry(limit)

	var wg sync.WaitGroup

	for _, entry := range due {
		entry := entry

		wg.Add(1)

		go func() {
			defer wg.Done()

			o.processBatch([]txn.SidetreeTxn{entry.Transaction})
		}()
	}

	wg.Wait()
}
