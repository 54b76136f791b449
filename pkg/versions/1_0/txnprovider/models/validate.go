/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"encoding/json"

	"github.com/trustbloc/sidetree-node/pkg/api/protocol"
)

// validateObjectProperties enforces additive-strict parsing on a single
// JSON object: raw must decode to an object containing only the
// properties named in allowed. Mirrors
// operationparser.validateAllowedProperties, generalized to the CAS
// file shapes' top-level and nested objects (spec §2/§6/§9: all five
// file types reject unknown top-level or nested properties, not just
// operation requests). A nil/absent raw value is not validated here;
// callers check presence separately where presence itself is required.
func validateObjectProperties(raw json.RawMessage, allowed []string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return protocol.NewError(protocol.ErrUnexpectedProperty, "invalid file JSON: %s", err.Error())
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}

	for k := range m {
		if !allowedSet[k] {
			return protocol.NewError(protocol.ErrUnexpectedProperty, "property %q is not allowed here", k)
		}
	}

	return nil
}

// validateArrayProperties applies validateObjectProperties to every
// element of a JSON array property.
func validateArrayProperties(raw json.RawMessage, allowed []string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return protocol.NewError(protocol.ErrUnexpectedProperty, "invalid file JSON: %s", err.Error())
	}

	for _, e := range elems {
		if err := validateObjectProperties(e, allowed); err != nil {
			return err
		}
	}

	return nil
}

// stringInSlice reports whether s appears in list.
func stringInSlice(s string, list []string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

// topLevelProperties decodes raw into its top-level property map,
// rejecting non-object JSON.
func topLevelProperties(raw []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, protocol.NewError(protocol.ErrUnexpectedProperty, "invalid file JSON: %s", err.Error())
	}

	return m, nil
}
