/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package patch carries the structural envelope of a document patch —
// an opaque, canonically-hashable JSON action — without interpreting
// it. Per spec.md's Non-goals, what a patch does to a DID document is
// out of scope for this core; only its shape as delta payload matters
// here, grounded on Moopli-sidetree-core-go's
// restapi/helper/update_test.go (patch.NewJSONPatch) and
// trustbloc-did-go's versions/1_0/client/create.go
// (patch.PatchesFromDocument, patch.Patch).
package patch

import (
	"encoding/json"
	"errors"
)

// ActionKey is the conventional key naming a patch's action, e.g. "add-services".
const ActionKey = "action"

// Patch is a single document patch: an opaque JSON object carried
// verbatim inside a delta's Patches list.
type Patch map[string]interface{}

// NewJSONPatch parses a single JSON object as a Patch.
func NewJSONPatch(s string) (Patch, error) {
	var p Patch

	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}

	return p, nil
}

// PatchesFromDocument wraps an opaque document string as a single
// "replace" patch, the form a create request uses when the caller
// supplies a full document instead of a patch list.
func PatchesFromDocument(doc string) ([]Patch, error) {
	var content interface{}

	if err := json.Unmarshal([]byte(doc), &content); err != nil {
		return nil, err
	}

	return []Patch{{ActionKey: "replace", "document": content}}, nil
}

// GetValue returns the value under key, erroring if key is absent.
func (p Patch) GetValue(key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.New("patch is missing key: " + key)
	}

	return v, nil
}
