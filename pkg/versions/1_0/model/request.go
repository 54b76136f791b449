/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package model defines the on-the-wire request and signed-data shapes
// for each operation kind (spec §3), field names and JSON tags
// grounded verbatim on
// trustbloc-did-go/method/sidetreelongform/sidetree-core/versions/1_0/model/request.go.
package model

import (
	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/jws"
)

// CreateRequest is the full-form Create request.
type CreateRequest struct {
	Operation  operation.Type        `json:"type,omitempty"`
	SuffixData *operation.SuffixData `json:"suffixData,omitempty"`
	Delta      *operation.Delta      `json:"delta,omitempty"`
}

// EmbeddedCreateReference is the shape a Create operation takes when
// embedded in a core-index file ({suffix_data} only, spec §4.2).
type EmbeddedCreateReference struct {
	SuffixData *operation.SuffixData `json:"suffixData,omitempty"`
}

// UpdateRequest is the full-form Update request.
type UpdateRequest struct {
	Operation   operation.Type   `json:"type"`
	DidSuffix   string           `json:"didSuffix"`
	RevealValue string           `json:"revealValue"`
	SignedData  string           `json:"signedData"`
	Delta       *operation.Delta `json:"delta"`
}

// EmbeddedUpdateReference is the shape an Update operation takes when
// embedded in a provisional-index file ({did_suffix, reveal_value}).
type EmbeddedUpdateReference struct {
	DidSuffix   string `json:"didSuffix"`
	RevealValue string `json:"revealValue"`
}

// RecoverRequest is the full-form Recover request.
type RecoverRequest struct {
	Operation   operation.Type   `json:"type"`
	DidSuffix   string           `json:"didSuffix"`
	RevealValue string           `json:"revealValue"`
	SignedData  string           `json:"signedData"`
	Delta       *operation.Delta `json:"delta"`
}

// DeactivateRequest is the full-form Deactivate request.
type DeactivateRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
}

// EmbeddedRecoverOrDeactivateReference is the shape a Recover or
// Deactivate operation takes when embedded in a core-index file
// ({did_suffix, reveal_value}).
type EmbeddedRecoverOrDeactivateReference struct {
	DidSuffix   string `json:"didSuffix"`
	RevealValue string `json:"revealValue"`
}

// UpdateSignedDataModel is the JWS payload signed for an Update.
type UpdateSignedDataModel struct {
	UpdateKey *jws.JWK `json:"updateKey"`
	DeltaHash string   `json:"deltaHash"`
}

// RecoverSignedDataModel is the JWS payload signed for a Recover.
type RecoverSignedDataModel struct {
	DeltaHash          string   `json:"deltaHash"`
	RecoveryKey        *jws.JWK `json:"recoveryKey"`
	RecoveryCommitment string   `json:"recoveryCommitment"`
}

// DeactivateSignedDataModel is the JWS payload signed for a Deactivate.
type DeactivateSignedDataModel struct {
	DidSuffix   string   `json:"didSuffix"`
	RecoveryKey *jws.JWK `json:"recoveryKey"`
}
