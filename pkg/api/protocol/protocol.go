/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package protocol defines protocol parameters and the closed set of
// error codes the core raises, mirroring the sidetree-core-go pattern
// of threading a single Protocol struct through every component that
// needs a configured limit.
package protocol

// Protocol defines the protocol parameters enumerated in spec §6/§7.
type Protocol struct {
	// MaxOperationsPerBatch is the maximum number of operations a single
	// anchor string may claim.
	MaxOperationsPerBatch uint

	// MaxAnchorFileSizeInBytes bounds the decoded core-index file.
	MaxAnchorFileSizeInBytes uint

	// MaxMapFileSizeInBytes bounds the decoded provisional-index file.
	MaxMapFileSizeInBytes uint

	// MaxProofFileSizeInBytes bounds the decoded core/provisional proof files.
	MaxProofFileSizeInBytes uint

	// MaxChunkFileSizeInBytes bounds the decoded chunk file.
	MaxChunkFileSizeInBytes uint

	// MaxDeltaSizeInBytes bounds an individual delta.
	MaxDeltaSizeInBytes uint

	// MaxEncodedRevealValueLength bounds reveal_value length.
	MaxEncodedRevealValueLength uint

	// HashAlgorithmInMultihashCode is fixed to 0x12 (SHA2-256).
	HashAlgorithmInMultihashCode uint

	// NormalizedToPerOperationFeeFactor scales the per-operation fee floor.
	NormalizedToPerOperationFeeFactor float64

	// NormalizedFeeToPerOperationFeeMultiplier scales the lock amount requirement.
	NormalizedFeeToPerOperationFeeMultiplier float64

	// ValueTimeLockAmountMultiplier further scales the lock amount requirement.
	ValueTimeLockAmountMultiplier float64

	// MaxNumberOfOperationsForNoValueTimeLock is the free operation allowance.
	MaxNumberOfOperationsForNoValueTimeLock uint64

	// EstimatedDecompressionMultiplier bounds the decompressed:compressed size ratio.
	EstimatedDecompressionMultiplier uint

	// MinConfirmations gates the batch writer's resubmission (default 6).
	MinConfirmations uint64

	// MaxConcurrentDownloads is carried as a protocol parameter only: no
	// component in this repository reads it, and txnprovider downloads a
	// transaction's CAS files one after another without a concurrency limit.
	MaxConcurrentDownloads uint

	// SignatureAlgorithms lists acceptable JWS "alg" values (ES256K only, per spec §4.2).
	SignatureAlgorithms []string

	// KeyAlgorithms lists acceptable JWK "crv" values.
	KeyAlgorithms []string

	// NonceSize is the expected decoded length of a JWK's optional nonce.
	NonceSize uint
}

// Default returns the protocol parameter set used throughout this repo's
// tests and reference wiring: SHA-256 multihash, ES256K/secp256k1, and the
// size/ratio bounds carried over from the Sidetree reference protocol.
func Default() Protocol {
	return Protocol{
		MaxOperationsPerBatch:                    10000,
		MaxAnchorFileSizeInBytes:                  1000 * 1000,
		MaxMapFileSizeInBytes:                     1000 * 1000,
		MaxProofFileSizeInBytes:                   2500 * 1000,
		MaxChunkFileSizeInBytes:                   10 * 1000 * 1000,
		MaxDeltaSizeInBytes:                       1000,
		MaxEncodedRevealValueLength:               100,
		HashAlgorithmInMultihashCode:               MultihashCodeSHA256,
		NormalizedToPerOperationFeeFactor:          0.5,
		NormalizedFeeToPerOperationFeeMultiplier:   1,
		ValueTimeLockAmountMultiplier:              10,
		MaxNumberOfOperationsForNoValueTimeLock:    100,
		EstimatedDecompressionMultiplier:           4,
		MinConfirmations:                           6,
		MaxConcurrentDownloads:                     20,
		SignatureAlgorithms:                        []string{"ES256K"},
		KeyAlgorithms:                              []string{"secp256k1"},
		NonceSize:                                  16,
	}
}

// MultihashCodeSHA256 is the multihash code for SHA2-256 (0x12).
const MultihashCodeSHA256 = 0x12

// ErrorCode enumerates the closed set of validation/protocol errors the
// core raises (spec §7). Codes are concept-level, not Go type names.
type ErrorCode string

//nolint:gochecknoglobals
const (
	// Multihash.
	ErrMultihashUnsupportedHashAlgorithm         ErrorCode = "multihash_unsupported_hash_algorithm"
	ErrMultihashNotLatestSupportedHashAlgorithm   ErrorCode = "multihash_not_latest_supported_hash_algorithm"
	ErrInvalidHash                                ErrorCode = "invalid_hash"

	// Encoding.
	ErrNotBase64URLString ErrorCode = "not_base64url_string"

	// Anchor string.
	ErrAnchoredDataNumberOfOperationsNotPositiveInteger ErrorCode = "anchored_data_number_of_operations_not_positive_integer"
	ErrAnchoredDataIncorrectFormat                      ErrorCode = "anchored_data_incorrect_format"

	// Operation parsing.
	ErrOperationAdditionalPropertyNotAllowed ErrorCode = "operation_additional_property_not_allowed"
	ErrOperationTypeUnknownOrMissing          ErrorCode = "operation_type_unknown_or_missing"
	ErrDidSuffixMissingOrInvalid               ErrorCode = "did_suffix_missing_or_invalid"
	ErrRevealValueMissingOrInvalid             ErrorCode = "reveal_value_missing_or_invalid"
	ErrRevealValueTooLong                      ErrorCode = "reveal_value_too_long"
	ErrJWSCompactFormatInvalid                 ErrorCode = "jws_compact_format_invalid"
	ErrJWSAlgorithmNotSupported                ErrorCode = "jws_algorithm_not_supported"

	// File validation.
	ErrCoreIndexFileProvisionalURIMissing  ErrorCode = "core_index_file_provisional_uri_missing"
	ErrCoreIndexFileProvisionalURINotAllowed ErrorCode = "core_index_file_provisional_uri_not_allowed"
	ErrCoreIndexFileProofURIMissing         ErrorCode = "core_index_file_proof_uri_missing"
	ErrProvisionalIndexFileProofMismatch    ErrorCode = "provisional_index_file_proof_mismatch"
	ErrProofFileCountMismatch               ErrorCode = "proof_file_count_mismatch"
	ErrChunkFileDeltaCountMismatch          ErrorCode = "chunk_file_delta_count_mismatch"
	ErrUnexpectedProperty                   ErrorCode = "unexpected_property"
	ErrCompressorMaxAllowedDecompressedDataSizeExceeded ErrorCode = "compressor_max_allowed_decompressed_data_size_exceeded"

	// Fee / protocol violations.
	ErrOperationCountLessThanZero             ErrorCode = "operation_count_less_than_zero"
	ErrTransactionFeePaidLessThanNormalizedFee ErrorCode = "transaction_fee_paid_less_than_normalized_fee"
	ErrTransactionFeePaidInvalid               ErrorCode = "transaction_fee_paid_invalid"

	// Value time lock.
	ErrValueTimeLockRequired       ErrorCode = "value_time_lock_required"
	ErrValueTimeLockWrongOwner     ErrorCode = "value_time_lock_wrong_owner"
	ErrValueTimeLockOutsideWindow  ErrorCode = "value_time_lock_outside_window"
	ErrValueTimeLockAmountTooSmall ErrorCode = "value_time_lock_amount_too_small"

	// Queue.
	ErrQueueingMultipleOperationsPerDidNotAllowed ErrorCode = "queueing_multiple_operations_per_did_not_allowed"

	// Throughput limiter.
	ErrTransactionsNotInSameBlock ErrorCode = "transactions_not_in_same_block"

	// CAS fetch results. Only ErrCASNotReachable and ErrNotFound are
	// transient (retry-eligible); see IsTransient.
	ErrCASNotReachable ErrorCode = "cas_not_reachable"
	ErrNotFound         ErrorCode = "not_found"
	ErrMaxSizeExceeded  ErrorCode = "max_size_exceeded"
	ErrNotAFile         ErrorCode = "not_a_file"
)
