/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operation defines the tagged-variant Operation and its
// anchored counterpart (spec §3), grounded on
// Moopli-sidetree-core-go/pkg/api/batch/operation.go's
// OperationType/AnchoredOperation, regrouped under api/operation the
// way trustbloc-did-go's versions/1_0/model/operation.go does.
package operation

import "strconv"

// Type is one of the four operation kinds.
type Type string

//nolint:gochecknoglobals
const (
	TypeCreate     Type = "create"
	TypeUpdate     Type = "update"
	TypeRecover    Type = "recover"
	TypeDeactivate Type = "deactivate"
)

// Operation is a parsed, validated request of any kind (spec §3).
type Operation struct {
	// Type is the operation kind.
	Type Type

	// UniqueSuffix (did_suffix) identifies the DID this operation targets.
	UniqueSuffix string

	// OperationBuffer holds the request bytes exactly as the parser
	// received them; they are not re-canonicalized.
	OperationBuffer []byte

	// SignedData is the compact JWS carried by update/recover/deactivate.
	SignedData string

	// RevealValue hashes to the commitment written by the prior operation.
	RevealValue string

	// SuffixData is present only for Create.
	SuffixData *SuffixData

	// Delta is present for Create/Update/Recover unless pruned (spec §4.2).
	Delta *Delta
}

// SuffixData is the Create operation's suffix data object.
type SuffixData struct {
	DeltaHash          string      `json:"deltaHash,omitempty"`
	RecoveryCommitment string      `json:"recoveryCommitment,omitempty"`
	AnchorOrigin       interface{} `json:"anchorOrigin,omitempty"`
	Type               string      `json:"type,omitempty"`
}

// Delta is the patch-carrying delta object.
type Delta struct {
	UpdateCommitment string        `json:"updateCommitment,omitempty"`
	Patches          []interface{} `json:"patches,omitempty"`
}

// AnchoredOperation is an Operation plus the ledger coordinates the
// transaction processor assigned it (spec §3's AnchoredOperation).
type AnchoredOperation struct {
	Type         Type   `json:"type"`
	UniqueSuffix string `json:"uniqueSuffix"`

	SignedData  string `json:"signedData,omitempty"`
	RevealValue string `json:"revealValue,omitempty"`

	EncodedDelta      []byte `json:"encodedDelta,omitempty"`
	EncodedSuffixData []byte `json:"encodedSuffixData,omitempty"`

	TransactionTime   uint64 `json:"transactionTime"`
	TransactionNumber uint64 `json:"transactionNumber"`
	OperationIndex    uint   `json:"operationIndex"`
}

// UniqueKey returns the primary key spec §3 defines for AnchoredOperation:
// (did_suffix, transaction_number, operation_index, kind).
func (op *AnchoredOperation) UniqueKey() [4]string {
	return [4]string{
		op.UniqueSuffix,
		strconv.FormatUint(op.TransactionNumber, 10),
		strconv.FormatUint(uint64(op.OperationIndex), 10),
		string(op.Type),
	}
}
