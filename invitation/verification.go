// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/mitchellh/mapstructure"
)

// Presentation request attachment formats
const (
	FormatDIFPresentationExchange = "dif/presentation-exchange/definitions@v1.0"
	FormatIndyProofRequest        = "hlindy/proof-req@v2.0"

	// some agents advertise the DIF format with the singular form
	formatDIFPresentationExchangeAlt = "dif/presentation-exchange/definition@v1.0"
)

// Placeholders used when a DIF input descriptor lacks the corresponding field
const (
	NameNotFound    = "Name not found"
	PurposeNotFound = "Purpose not found"
	IDNotFound      = "Id not found"
)

const firstInputDescriptorPath = "$.presentation_definition.input_descriptors[0]"

type inputDescriptor struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Purpose string `mapstructure:"purpose"`
}

type indyProofRequest struct {
	Name                string                           `json:"name"`
	CredDefID           string                           `json:"cred_def_id"`
	RequestedAttributes map[string]indyRequestedAttribute `json:"requested_attributes"`
}

type indyRequestedAttribute struct {
	Name         string                   `json:"name"`
	Names        []string                 `json:"names"`
	Restrictions []map[string]interface{} `json:"restrictions"`
}

// ExtractVerification infers a human readable name and purpose, and the
// requested document types, from the document attached to a presentation
// request. The document is interpreted according to the first recognised
// entry in formats, DIF presentation exchange taking precedence over Indy.
// Extraction is best effort: it never fails, unrecognised formats or
// documents yield empty details.
func ExtractVerification(formats []string, doc json.RawMessage) *VerificationDetails {
	if len(doc) == 0 {
		return &VerificationDetails{}
	}

	switch {
	case hasFormat(formats, FormatDIFPresentationExchange, formatDIFPresentationExchangeAlt):
		return difVerification(doc)
	case hasFormat(formats, FormatIndyProofRequest):
		return indyVerification(doc)
	default:
		return &VerificationDetails{}
	}
}

func hasFormat(formats []string, wanted ...string) bool {
	for _, f := range formats {
		for _, w := range wanted {
			if f == w {
				return true
			}
		}
	}

	return false
}

func difVerification(doc json.RawMessage) *VerificationDetails {
	var (
		v          interface{}
		descriptor inputDescriptor
	)

	if err := json.Unmarshal(doc, &v); err == nil {
		if d, err := jsonpath.Get(firstInputDescriptorPath, v); err == nil {
			// a field of the wrong kind is left empty and replaced below
			_ = mapstructure.Decode(d, &descriptor)
		}
	}

	return &VerificationDetails{
		Name:          valueOr(descriptor.Name, NameNotFound),
		Purpose:       valueOr(descriptor.Purpose, PurposeNotFound),
		DocumentTypes: []string{valueOr(descriptor.ID, IDNotFound)},
	}
}

func indyVerification(doc json.RawMessage) *VerificationDetails {
	var req indyProofRequest

	// type mismatches leave the offending fields empty, the rest is usable
	_ = json.Unmarshal(doc, &req)

	var purpose, docTypes []string

	referents := make([]string, 0, len(req.RequestedAttributes))
	for k := range req.RequestedAttributes {
		referents = append(referents, k)
	}
	sort.Strings(referents)

	for _, ref := range referents {
		attr := req.RequestedAttributes[ref]

		if attr.Name != "" {
			purpose = append(purpose, attr.Name)
		}

		for _, n := range attr.Names {
			if n != "" {
				purpose = append(purpose, n)
			}
		}

		for _, r := range attr.Restrictions {
			docTypes = appendRestrictionValues(docTypes, r)
		}
	}

	if req.CredDefID != "" {
		docTypes = []string{req.CredDefID}
	}

	return &VerificationDetails{
		Name:          req.Name,
		Purpose:       strings.Join(purpose, " "),
		DocumentTypes: docTypes,
	}
}

func appendRestrictionValues(docTypes []string, restriction map[string]interface{}) []string {
	keys := make([]string, 0, len(restriction))
	for k := range restriction {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s, ok := restriction[k].(string)
		if !ok || s == "" || contains(docTypes, s) {
			continue
		}
		docTypes = append(docTypes, s)
	}

	return docTypes
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func valueOr(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
