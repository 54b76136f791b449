/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/util/ecsigner"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

func defaultParser() *Parser {
	return New(protocol.Default())
}

func TestParseCreateOperation(t *testing.T) {
	p := defaultParser()

	_, _, recoveryCommitment, err := generateKeyAndCommitment()
	require.NoError(t, err)

	_, _, updateCommitment, err := generateKeyAndCommitment()
	require.NoError(t, err)

	buf, err := marshalCreateRequest(recoveryCommitment, updateCommitment)
	require.NoError(t, err)

	op, err := p.ParseCreateOperation(buf, false)
	require.NoError(t, err)
	require.Equal(t, operation.TypeCreate, op.Type)
	require.NotEmpty(t, op.UniqueSuffix)
	require.NotNil(t, op.Delta)

	t.Run("additional property rejected", func(t *testing.T) {
		mutated := append([]byte(nil), buf[:len(buf)-1]...)
		mutated = append(mutated, []byte(`,"bogus":"x"}`)...)

		_, err := p.ParseCreateOperation(mutated, false)
		require.Error(t, err)
		code, ok := protocol.CodeOf(err)
		require.True(t, ok)
		require.Equal(t, protocol.ErrOperationAdditionalPropertyNotAllowed, code)
	})

	t.Run("embedded form omits type", func(t *testing.T) {
		embeddedBuf, err := marshalEmbeddedCreateReference(op.SuffixData)
		require.NoError(t, err)

		embedded, err := p.ParseCreateOperation(embeddedBuf, true)
		require.NoError(t, err)
		require.Equal(t, op.UniqueSuffix, embedded.UniqueSuffix)
	})
}

func TestParseUpdateOperation(t *testing.T) {
	p := defaultParser()

	didSuffix := mustSuffix(t)

	updatePriv, updateKey, revealValue, err := generateKeyAndCommitment()
	require.NoError(t, err)

	_, _, nextUpdateCommitment, err := generateKeyAndCommitment()
	require.NoError(t, err)

	signer := ecsigner.New(updatePriv, "ES256K", "key-1")

	buf, err := marshalUpdateRequest(didSuffix, updateKey, signer, revealValue, nextUpdateCommitment)
	require.NoError(t, err)

	op, err := p.ParseUpdateOperation(buf, false)
	require.NoError(t, err)
	require.Equal(t, operation.TypeUpdate, op.Type)
	require.Equal(t, didSuffix, op.UniqueSuffix)
	require.NotNil(t, op.Delta)

	t.Run("oversize delta dropped, not rejected", func(t *testing.T) {
		tiny := p.Protocol
		tiny.MaxDeltaSizeInBytes = 1

		tp := New(tiny)

		op, err := tp.ParseUpdateOperation(buf, false)
		require.NoError(t, err)
		require.Nil(t, op.Delta)
	})

	t.Run("commitment mismatch rejected", func(t *testing.T) {
		_, wrongKey, _, err := generateKeyAndCommitment()
		require.NoError(t, err)

		bad, err := marshalUpdateRequest(didSuffix, wrongKey, signer, revealValue, nextUpdateCommitment)
		require.NoError(t, err)

		_, err = p.ParseUpdateOperation(bad, false)
		require.Error(t, err)
	})
}

func TestParseRecoverOperation(t *testing.T) {
	p := defaultParser()

	didSuffix := mustSuffix(t)

	recoveryPriv, recoveryKey, revealValue, err := generateKeyAndCommitment()
	require.NoError(t, err)

	_, _, nextRecoveryCommitment, err := generateKeyAndCommitment()
	require.NoError(t, err)

	_, _, nextUpdateCommitment, err := generateKeyAndCommitment()
	require.NoError(t, err)

	signer := ecsigner.New(recoveryPriv, "ES256K", "key-1")

	buf, err := marshalRecoverRequest(didSuffix, recoveryKey, signer, revealValue, nextRecoveryCommitment, nextUpdateCommitment)
	require.NoError(t, err)

	op, err := p.ParseRecoverOperation(buf, false)
	require.NoError(t, err)
	require.Equal(t, operation.TypeRecover, op.Type)
	require.Equal(t, didSuffix, op.UniqueSuffix)
	require.NotNil(t, op.Delta)
}

func TestParseDeactivateOperation(t *testing.T) {
	p := defaultParser()

	didSuffix := mustSuffix(t)

	recoveryPriv, recoveryKey, revealValue, err := generateKeyAndCommitment()
	require.NoError(t, err)

	signer := ecsigner.New(recoveryPriv, "ES256K", "key-1")

	buf, err := marshalDeactivateRequest(didSuffix, recoveryKey, signer, revealValue)
	require.NoError(t, err)

	op, err := p.ParseDeactivateOperation(buf, false)
	require.NoError(t, err)
	require.Equal(t, operation.TypeDeactivate, op.Type)
	require.Equal(t, didSuffix, op.UniqueSuffix)
	require.Nil(t, op.Delta)

	t.Run("did_suffix mismatch rejected", func(t *testing.T) {
		otherSuffix := mustSuffix(t)

		// Outer did_suffix differs from the one inside the signed data.
		bad, err := marshalJSON(model.DeactivateRequest{
			Operation:   operation.TypeDeactivate,
			DidSuffix:   otherSuffix,
			RevealValue: revealValue,
			SignedData:  op.SignedData,
		})
		require.NoError(t, err)

		_, err = p.ParseDeactivateOperation(bad, false)
		require.Error(t, err)

		code, ok := protocol.CodeOf(err)
		require.True(t, ok)
		require.Equal(t, protocol.ErrDidSuffixMissingOrInvalid, code)
	})
}

func mustSuffix(t *testing.T) string {
	t.Helper()

	_, _, suffix, err := generateKeyAndCommitment()
	require.NoError(t, err)

	return suffix
}
