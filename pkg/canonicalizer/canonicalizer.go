/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package canonicalizer implements JSON canonicalization per RFC 8785
// (JCS): object members sorted by UTF-16 code unit, no insignificant
// whitespace, and numbers/strings serialized per the spec's rules. Every
// hash check in this repo canonicalizes before hashing, so two
// differently-formatted encodings of the same value must always produce
// the same bytes here.
package canonicalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// MarshalCanonical marshals v to JCS-canonical JSON bytes.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encodeCanonical(&buf, generic); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return encodeString(buf, val)
	case float64:
		return encodeNumber(buf, val)
	case []interface{}:
		return encodeArray(buf, val)
	case map[string]interface{}:
		return encodeObject(buf, val)
	default:
		return fmt.Errorf("canonicalizer: unsupported type %T", v)
	}

	return nil
}

func encodeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeCanonical(buf, elem); err != nil {
			return err
		}
	}

	buf.WriteByte(']')

	return nil
}

func encodeObject(buf *bytes.Buffer, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := utf16.Encode([]rune(keys[i])), utf16.Encode([]rune(keys[j]))
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeString(buf, k); err != nil {
			return err
		}

		buf.WriteByte(':')

		if err := encodeCanonical(buf, obj[k]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

// encodeString writes a JSON string using Go's encoder with HTML
// escaping turned off, since JCS does not escape '<', '>', or '&'.
func encodeString(buf *bytes.Buffer, s string) error {
	var sb bytes.Buffer

	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return err
	}

	buf.Write(bytes.TrimRight(sb.Bytes(), "\n"))

	return nil
}

func encodeNumber(buf *bytes.Buffer, f float64) error {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("canonicalizer: number %v is not representable in JSON", f)
	}

	if f == 0 {
		buf.WriteString("0")
		return nil
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	buf.WriteString(mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0"))

	return nil
}
