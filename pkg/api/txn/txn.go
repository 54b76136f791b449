/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txn defines the anchor string wire format and the ledger
// transaction shape the observer feeds to the transaction processor,
// grounded field-for-field on Moopli-sidetree-core-go's
// pkg/observer/observer_test.go txn.SidetreeTxn literals
// ({Namespace, TransactionTime, TransactionNumber, AnchorString}) and
// trustbloc-did-go's versions/1_0/txnprocessor/txnprocessor_test.go
// (&txn.SidetreeTxn{TransactionTime: 20, TransactionNumber: 2}).
package txn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// SidetreeTxn is a single ledger transaction carrying an anchor string.
type SidetreeTxn struct {
	Namespace           string
	TransactionTime     uint64
	TransactionNumber   uint64
	AnchorString        string
	ProtocolGenesisTime uint64

	// FeePaid is the fee paid for this transaction (consumed by fee.Verify).
	FeePaid uint64

	// NormalizedFee is the ledger's per-transaction-time fee rate.
	NormalizedFee uint64

	// WriterIdentity identifies the writer, used for value-time-lock
	// owner comparisons (§9 open question: follows whatever identity
	// shape the ledger client supplies).
	WriterIdentity string
}

var anchorStringPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// AnchorString is the parsed "<N>.<core-index-uri>" ledger payload.
type AnchorString struct {
	NumberOfOperations uint
	CoreIndexFileURI   string
}

// Serialize renders the anchor string wire format (spec §6): a single
// '.' delimiter between a leading-zero-free decimal count and the
// core-index file URI.
func (a AnchorString) Serialize() string {
	return strconv.FormatUint(uint64(a.NumberOfOperations), 10) + "." + a.CoreIndexFileURI
}

// ParseAnchorString deserializes and validates an anchor string,
// enforcing a positive integer with no leading zeros bounded by
// maxOperationsPerBatch (spec §4.5 step 1, §6, S6).
func ParseAnchorString(s string, maxOperationsPerBatch uint) (*AnchorString, error) {
	idx := strings.Index(s, ".")
	if idx < 0 || strings.Count(s, ".") != 1 {
		return nil, protocol.NewError(protocol.ErrAnchoredDataIncorrectFormat,
			"anchor string must contain exactly one '.' delimiter: %q", s)
	}

	countPart := s[:idx]
	uriPart := s[idx+1:]

	if !anchorStringPattern.MatchString(countPart) {
		return nil, protocol.NewError(protocol.ErrAnchoredDataNumberOfOperationsNotPositiveInteger,
			"number of operations must be a positive integer with no leading zeros: %q", countPart)
	}

	count, err := strconv.ParseUint(countPart, 10, 64)
	if err != nil {
		return nil, protocol.NewError(protocol.ErrAnchoredDataNumberOfOperationsNotPositiveInteger,
			"failed to parse number of operations: %s", err.Error())
	}

	if count > uint64(maxOperationsPerBatch) {
		return nil, protocol.NewError(protocol.ErrAnchoredDataNumberOfOperationsNotPositiveInteger,
			"number of operations %d exceeds maxOperationsPerBatch %d", count, maxOperationsPerBatch)
	}

	if uriPart == "" {
		return nil, protocol.NewError(protocol.ErrAnchoredDataIncorrectFormat, "core index file URI is empty")
	}

	return &AnchorString{NumberOfOperations: uint(count), CoreIndexFileURI: uriPart}, nil
}
