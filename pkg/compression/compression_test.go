/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	content := []byte(strings.Repeat("sidetree", 1000))

	compressed, err := Compress(content)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	decompressed, err := Decompress(compressed, 1000*1000, 4)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, decompressed))
}

func TestDecompressRatioExceeded(t *testing.T) {
	content := []byte(strings.Repeat("a", 100000))

	compressed, err := Compress(content)
	require.NoError(t, err)

	_, err = Decompress(compressed, 1000*1000, 1)
	require.Error(t, err)

	code, ok := protocol.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, protocol.ErrCompressorMaxAllowedDecompressedDataSizeExceeded, code)
}

func TestDecompressInvalidStream(t *testing.T) {
	_, err := Decompress([]byte("not gzip"), 1000, 4)
	require.Error(t, err)
}
