// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// agents differ in the base64 alphabet and padding they use for attachments
var payloadEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode builds a Preview out of the supplied JSON document, which is either
// an invitation envelope as returned by the agency, or a Preview previously
// serialized with json.Marshal.
func Decode(data []byte) (*Preview, error) {
	var top map[string]json.RawMessage

	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("malformed invitation: %w", err)
	}

	if isSerializedPreview(top) {
		var p Preview

		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}

		return &p, nil
	}

	var env Envelope

	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed invitation envelope: %w", err)
	}

	return DecodeEnvelope(&env)
}

func isSerializedPreview(top map[string]json.RawMessage) bool {
	if _, ok := top["invitation"]; ok {
		return false
	}

	if _, ok := top["jsonRepresentation"]; ok {
		return true
	}

	_, hasID := top["id"]
	_, hasType := top["type"]

	return hasID && hasType
}

// DecodeEnvelope normalizes an invitation envelope into a Preview. Missing
// required fields, an undeclared or unknown message type and a corrupted
// embedded document are all fatal.
func DecodeEnvelope(env *Envelope) (*Preview, error) {
	if env == nil || env.Invitation == nil {
		return nil, &MissingFieldError{Field: "invitation"}
	}

	inv := env.Invitation

	id, err := attachmentID(inv.Requests)
	if err != nil {
		return nil, err
	}

	if inv.URL == "" {
		return nil, &MissingFieldError{Field: "url"}
	}

	t, err := attachmentType(inv.Requests)
	if err != nil {
		return nil, err
	}

	doc, err := attachmentPayload(inv.Requests)
	if err != nil {
		return nil, err
	}

	p := Preview{
		ID:                 id,
		URL:                inv.URL,
		Label:              inv.Label,
		Comment:            inv.Comment,
		Type:               t,
		Formats:            attachmentFormats(inv.Requests),
		JSONRepresentation: doc,
	}

	switch t {
	case OfferCredential:
		p.Details = offerDetails(inv.Requests)
	case RequestPresentation:
		p.Details = ExtractVerification(p.Formats, doc)
	}

	return &p, nil
}

// attachmentID returns the id of the first inline message carrying one. If no
// inline message does, the id of the first identified attachment is used.
func attachmentID(atts []Attachment) (string, error) {
	for _, a := range atts {
		if a.Data.JSON != nil && a.Data.JSON.ID != "" {
			return a.Data.JSON.ID, nil
		}
	}

	for _, a := range atts {
		if a.ID != "" {
			return a.ID, nil
		}
	}

	return "", &MissingFieldError{Field: "id"}
}

// attachmentType returns the type of the first inline message declaring one.
// A declared type that is not a string is reported as unknown.
func attachmentType(atts []Attachment) (InvitationType, error) {
	for _, a := range atts {
		if a.Data.JSON == nil || !declared(a.Data.JSON.Type) {
			continue
		}

		var uri string
		if err := json.Unmarshal(a.Data.JSON.Type, &uri); err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownInvitationType, a.Data.JSON.Type)
		}

		return TypeFromMessageType(uri)
	}

	return "", ErrMissingTypeDeclaration
}

func declared(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	return s != "" && s != "null" && s != `""`
}

func attachmentFormats(atts []Attachment) []string {
	var formats []string

	for _, a := range atts {
		if a.Data.JSON == nil {
			continue
		}

		for _, f := range a.Data.JSON.Formats {
			formats = append(formats, f.Format)
		}
	}

	return formats
}

// attachmentPayload locates the first base64 document attached to an offer or
// a presentation request and decodes it. A nil document (and no error) is
// returned if there is none.
func attachmentPayload(atts []Attachment) (json.RawMessage, error) {
	for _, a := range atts {
		if a.Data.JSON == nil {
			continue
		}

		for _, p := range a.Data.JSON.payloadAttachments() {
			if p.Data.Base64 != "" {
				return decodePayload(p.Data.Base64)
			}
		}
	}

	return nil, nil
}

func decodePayload(s string) (json.RawMessage, error) {
	var (
		raw []byte
		err error
	)

	for _, enc := range payloadEncodings {
		if raw, err = enc.DecodeString(s); err == nil {
			break
		}
	}

	if err != nil {
		return nil, &InvalidBase64ContentError{Err: err}
	}

	// marshalling a RawMessage validates and compacts it, which also makes the
	// stored form stable across Preview serialization round-trips
	doc, err := json.Marshal(json.RawMessage(raw))
	if err != nil {
		return nil, &InvalidBase64ContentError{Err: err}
	}

	return doc, nil
}

func offerDetails(atts []Attachment) *CredentialOfferDetails {
	for _, a := range atts {
		if a.Data.JSON != nil && a.Data.JSON.CredentialPreview != nil {
			return &CredentialOfferDetails{
				Attributes: append([]CredentialAttribute(nil), a.Data.JSON.CredentialPreview.Attributes...),
			}
		}
	}

	return &CredentialOfferDetails{}
}
