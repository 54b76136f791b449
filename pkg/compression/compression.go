/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package compression implements the gzip envelope every CAS file uses
// (spec §6): compress on write, decompress on read with both an
// absolute size cap and a compressed:decompressed ratio cap so a small
// malicious blob cannot inflate into an unbounded allocation. gzip
// itself is a standard-library concern — no third-party gzip codec
// appears anywhere in the retrieved corpus (certenIO-certen-validator's
// proof bundle format also reaches for compress/gzip directly) — so
// this stays on the standard library rather than a substitute.
package compression

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// Compress gzips content.
func Compress(content []byte) ([]byte, error) {
	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(content); err != nil {
		return nil, err
	}

	if err := gz.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress gunzips compressed, rejecting output that exceeds
// maxDecompressedSize or a decompressed:compressed ratio of
// decompressionMultiplier (spec §4.9/§6's
// CompressorMaxAllowedDecompressedDataSizeExceeded bound).
func Decompress(compressed []byte, maxDecompressedSize uint, decompressionMultiplier uint) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, protocol.NewError(protocol.ErrCompressorMaxAllowedDecompressedDataSizeExceeded,
			"invalid gzip stream: %s", err.Error())
	}
	defer reader.Close() //nolint:errcheck

	ratioCap := uint64(len(compressed)) * uint64(decompressionMultiplier)
	if ratioCap > uint64(maxDecompressedSize) {
		ratioCap = uint64(maxDecompressedSize)
	}

	limited := io.LimitReader(reader, int64(ratioCap)+1)

	content, err := io.ReadAll(limited)
	if err != nil {
		return nil, protocol.NewError(protocol.ErrCompressorMaxAllowedDecompressedDataSizeExceeded,
			"failed to decompress: %s", err.Error())
	}

	if uint64(len(content)) > ratioCap {
		return nil, protocol.NewError(protocol.ErrCompressorMaxAllowedDecompressedDataSizeExceeded,
			"decompressed size exceeds the allowed bound")
	}

	return content, nil
}
