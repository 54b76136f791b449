/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package valuetimelock verifies a writer's value-time-lock covers the
// batch it anchored and computes how many operations a lock permits
// (spec §4.7).
package valuetimelock

import (
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// ValueTimeLock is the read-only external lock record (spec §3).
type ValueTimeLock struct {
	Identifier            string
	Owner                 string
	AmountLocked          uint64
	LockTransactionTime   uint64
	UnlockTransactionTime uint64
	NormalizedFee         uint64
}

// Verify checks lock covers opCount operations by writer at
// transactionTime, per the required-amount formula in spec §4.7. lock
// may be nil when opCount is within the free allowance.
func Verify(lock *ValueTimeLock, opCount uint64, transactionTime uint64, writer string, p protocol.Protocol) error {
	if opCount <= p.MaxNumberOfOperationsForNoValueTimeLock {
		return nil
	}

	if lock == nil {
		return protocol.NewError(protocol.ErrValueTimeLockRequired,
			"a value time lock is required for %d operations", opCount)
	}

	if lock.Owner != writer {
		return protocol.NewError(protocol.ErrValueTimeLockWrongOwner,
			"lock owner %q does not match writer %q", lock.Owner, writer)
	}

	if transactionTime < lock.LockTransactionTime || transactionTime >= lock.UnlockTransactionTime {
		return protocol.NewError(protocol.ErrValueTimeLockOutsideWindow,
			"transaction time %d is outside the lock window [%d, %d)",
			transactionTime, lock.LockTransactionTime, lock.UnlockTransactionTime)
	}

	required := requiredAmount(lock.NormalizedFee, opCount, p)
	if lock.AmountLocked < required {
		return protocol.NewError(protocol.ErrValueTimeLockAmountTooSmall,
			"lock amount %d is less than the required %d", lock.AmountLocked, required)
	}

	return nil
}

// Allowed returns how many operations lock permits; nil yields the
// protocol's free allowance (spec §4.7).
func Allowed(lock *ValueTimeLock, p protocol.Protocol) uint64 {
	if lock == nil {
		return p.MaxNumberOfOperationsForNoValueTimeLock
	}

	denominator := float64(lock.NormalizedFee) * p.NormalizedFeeToPerOperationFeeMultiplier * p.ValueTimeLockAmountMultiplier
	if denominator <= 0 {
		return p.MaxNumberOfOperationsForNoValueTimeLock
	}

	return uint64(float64(lock.AmountLocked) / denominator)
}

func requiredAmount(normalizedFee, opCount uint64, p protocol.Protocol) uint64 {
	required := float64(normalizedFee) * p.NormalizedFeeToPerOperationFeeMultiplier * float64(opCount) * p.ValueTimeLockAmountMultiplier

	return uint64(required)
}
