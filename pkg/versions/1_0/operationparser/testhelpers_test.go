/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operationparser

import (
	"encoding/json"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/commitment"
	"github.com/trustbloc/sidetree-node/pkg/encoder"
	"github.com/trustbloc/sidetree-node/pkg/hashing"
	"github.com/trustbloc/sidetree-node/pkg/internal/signutil"
	"github.com/trustbloc/sidetree-node/pkg/jws"
	"github.com/trustbloc/sidetree-node/pkg/patch"
	"github.com/trustbloc/sidetree-node/pkg/util/ecsigner"
	"github.com/trustbloc/sidetree-node/pkg/versions/1_0/model"
)

func modelMultihash(m interface{}) (string, error) {
	return hashing.CalculateModelMultihash(m, protocol.MultihashCodeSHA256)
}

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func generateKeyAndCommitment() (*btcec.PrivateKey, *jws.JWK, string, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, "", err
	}

	jwk := jwkFromPrivateKey(priv)

	c, err := commitment.GetCommitment(jwk, protocol.MultihashCodeSHA256)
	if err != nil {
		return nil, nil, "", err
	}

	return priv, jwk, c, nil
}

func jwkFromPrivateKey(priv *btcec.PrivateKey) *jws.JWK {
	pub := priv.PubKey()

	xBytes := pub.X().Bytes()
	yBytes := pub.Y().Bytes()

	return &jws.JWK{
		Kty: "EC",
		Crv: "secp256k1",
		X:   encoder.EncodeToString(xBytes[:]),
		Y:   encoder.EncodeToString(yBytes[:]),
	}
}

func generateDelta(updateCommitment string) *operation.Delta {
	p, _ := patch.NewJSONPatch(`{"action":"add-public-keys"}`)

	return &operation.Delta{
		Patches:          []interface{}{p},
		UpdateCommitment: updateCommitment,
	}
}

func marshalCreateRequest(recoveryCommitment, updateCommitment string) ([]byte, error) {
	delta := generateDelta(updateCommitment)

	deltaHash, err := modelMultihash(delta)
	if err != nil {
		return nil, err
	}

	suffixData := &operation.SuffixData{
		DeltaHash:          deltaHash,
		RecoveryCommitment: recoveryCommitment,
	}

	req := model.CreateRequest{
		Operation:  operation.TypeCreate,
		SuffixData: suffixData,
		Delta:      delta,
	}

	return marshalJSON(req)
}

func marshalEmbeddedCreateReference(suffixData *operation.SuffixData) ([]byte, error) {
	return marshalJSON(model.EmbeddedCreateReference{SuffixData: suffixData})
}

func marshalUpdateRequest(didSuffix string, updateKey *jws.JWK, updateSigner *ecsigner.Signer,
	revealValue, nextUpdateCommitment string,
) ([]byte, error) {
	delta := generateDelta(nextUpdateCommitment)

	deltaHash, err := modelMultihash(delta)
	if err != nil {
		return nil, err
	}

	signedDataModel := model.UpdateSignedDataModel{
		UpdateKey: updateKey,
		DeltaHash: deltaHash,
	}

	jwsSig, err := signutil.SignModel(signedDataModel, updateSigner)
	if err != nil {
		return nil, err
	}

	req := model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   didSuffix,
		RevealValue: revealValue,
		SignedData:  jwsSig,
		Delta:       delta,
	}

	return marshalJSON(req)
}

func marshalRecoverRequest(didSuffix string, recoveryKey *jws.JWK, recoverySigner *ecsigner.Signer,
	revealValue, nextRecoveryCommitment, nextUpdateCommitment string,
) ([]byte, error) {
	delta := generateDelta(nextUpdateCommitment)

	deltaHash, err := modelMultihash(delta)
	if err != nil {
		return nil, err
	}

	signedDataModel := model.RecoverSignedDataModel{
		DeltaHash:          deltaHash,
		RecoveryKey:        recoveryKey,
		RecoveryCommitment: nextRecoveryCommitment,
	}

	jwsSig, err := signutil.SignModel(signedDataModel, recoverySigner)
	if err != nil {
		return nil, err
	}

	req := model.RecoverRequest{
		Operation:   operation.TypeRecover,
		DidSuffix:   didSuffix,
		RevealValue: revealValue,
		SignedData:  jwsSig,
		Delta:       delta,
	}

	return marshalJSON(req)
}

func marshalDeactivateRequest(didSuffix string, recoveryKey *jws.JWK, recoverySigner *ecsigner.Signer,
	revealValue string,
) ([]byte, error) {
	signedDataModel := model.DeactivateSignedDataModel{
		DidSuffix:   didSuffix,
		RecoveryKey: recoveryKey,
	}

	jwsSig, err := signutil.SignModel(signedDataModel, recoverySigner)
	if err != nil {
		return nil, err
	}

	req := model.DeactivateRequest{
		Operation:   operation.TypeDeactivate,
		DidSuffix:   didSuffix,
		RevealValue: revealValue,
		SignedData:  jwsSig,
	}

	return marshalJSON(req)
}
