/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fee implements the per-transaction fee floor and verification
// the transaction processor enforces before trusting a batch (spec §4.6).
package fee

import (
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// MinimumTransactionFee returns the lowest fee a transaction claiming
// opCount operations may pay at normalizedFee (spec §4.6).
func MinimumTransactionFee(normalizedFee float64, opCount uint64, normalizedToPerOperationFeeFactor float64) float64 {
	perOperation := normalizedFee * normalizedToPerOperationFeeFactor * float64(opCount)

	if normalizedFee > perOperation {
		return normalizedFee
	}

	return perOperation
}

// Verify checks feePaid against normalizedFee for a transaction
// claiming opCount operations (spec §4.6).
func Verify(feePaid float64, opCount int64, normalizedFee float64, p protocol.Protocol) error {
	if opCount <= 0 {
		return protocol.NewError(protocol.ErrOperationCountLessThanZero, "operation count %d is not positive", opCount)
	}

	if feePaid < normalizedFee {
		return protocol.NewError(protocol.ErrTransactionFeePaidLessThanNormalizedFee,
			"fee paid %f is less than normalized fee %f", feePaid, normalizedFee)
	}

	perOperationFee := feePaid / float64(opCount)
	requiredPerOperationFee := normalizedFee * p.NormalizedToPerOperationFeeFactor

	if perOperationFee < requiredPerOperationFee {
		return protocol.NewError(protocol.ErrTransactionFeePaidInvalid,
			"fee paid per operation %f is less than the required %f", perOperationFee, requiredPerOperationFee)
	}

	return nil
}
