/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnprovider

import (
	"encoding/json"
	"strconv"

	"github.com/trustbloc/sidetree-node/pkg/api/operation"
	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
	"github.com/trustbloc/sidetree-node/pkg/compression"
	"github.com/trustbloc/sidetree-node/pkg/encoder"
	"github.com/trustbloc/sidetree-node/pkg/hashing"
)

// mockCAS is an in-memory CAS keyed by a counter-derived URI, grounded
// on Moopli-sidetree-core-go/pkg/observer/observer_test.go's mockDCAS
// (Read(key)/Write(content)).
type mockCAS struct {
	files      map[string][]byte
	readErr    error
	readErrURI string
	counter    int
}

func newMockCAS() *mockCAS {
	return &mockCAS{files: make(map[string][]byte)}
}

func (m *mockCAS) Read(uri string) ([]byte, error) {
	if m.readErr != nil && (m.readErrURI == "" || m.readErrURI == uri) {
		return nil, m.readErr
	}

	content, ok := m.files[uri]
	if !ok {
		return nil, protocol.NewError(protocol.ErrNotFound, "file not found: %s", uri)
	}

	return content, nil
}

func (m *mockCAS) Write(content []byte) (string, error) {
	m.counter++
	uri := "uri-" + strconv.Itoa(m.counter)
	m.files[uri] = content

	return uri, nil
}

// put gzip-compresses v (marshaled as JSON) and writes it to the CAS,
// returning its URI, mirroring how the batch writer uploads CAS files.
func (m *mockCAS) put(v interface{}) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	compressed, err := compression.Compress(buf)
	if err != nil {
		return "", err
	}

	return m.Write(compressed)
}

func newCreateOp(suffixSeed string) *operation.Operation {
	delta := &operation.Delta{UpdateCommitment: "uc-" + suffixSeed}

	deltaHash, err := hashing.CalculateModelMultihash(delta, protocol.MultihashCodeSHA256)
	if err != nil {
		panic(err)
	}

	recoveryCommitmentHash, err := hashing.ComputeMultihash(protocol.MultihashCodeSHA256, []byte("rc-"+suffixSeed))
	if err != nil {
		panic(err)
	}

	suffixData := &operation.SuffixData{
		DeltaHash:          deltaHash,
		RecoveryCommitment: encoder.EncodeToString(recoveryCommitmentHash),
	}

	didSuffix, err := hashing.CalculateModelMultihash(suffixData, protocol.MultihashCodeSHA256)
	if err != nil {
		panic(err)
	}

	return &operation.Operation{
		Type:         operation.TypeCreate,
		UniqueSuffix: didSuffix,
		SuffixData:   suffixData,
		Delta:        delta,
	}
}

