// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package invitation

import "encoding/json"

// Message type URIs recognised in the inline attachment messages
const (
	OfferCredentialV2Type     = "https://didcomm.org/issue-credential/2.0/offer-credential"
	RequestPresentationV2Type = "https://didcomm.org/present-proof/2.0/request-presentation"
)

// Envelope models the agency's wrapping of an out-of-band invitation
type Envelope struct {
	Invitation *OutOfBandInvitation `json:"invitation"`
}

// OutOfBandInvitation carries the fields of the invitation that are relevant
// to building a preview. Unknown fields (services, handshake protocols, ...)
// are ignored.
type OutOfBandInvitation struct {
	Label    string       `json:"label,omitempty"`
	URL      string       `json:"url,omitempty"`
	Comment  string       `json:"comment,omitempty"`
	Requests []Attachment `json:"requests~attach,omitempty"`
}

// Attachment is a DIDComm attachment decorator
type Attachment struct {
	ID       string         `json:"@id,omitempty"`
	MimeType string         `json:"mime-type,omitempty"`
	Data     AttachmentData `json:"data"`
}

// AttachmentData holds either an inline JSON message or a base64 encoded
// document
type AttachmentData struct {
	JSON   *AttachedMessage `json:"json,omitempty"`
	Base64 string           `json:"base64,omitempty"`
}

// AttachedMessage is the inline offer-credential or request-presentation
// message found in the invitation's requests~attach.
type AttachedMessage struct {
	ID                   string             `json:"@id,omitempty"`
	Type                 json.RawMessage    `json:"@type,omitempty"`
	Comment              string             `json:"comment,omitempty"`
	Formats              []AttachmentFormat `json:"formats,omitempty"`
	CredentialPreview    *CredentialPreview `json:"credential_preview,omitempty"`
	Offers               []Attachment       `json:"offers~attach,omitempty"`
	RequestPresentations []Attachment       `json:"request_presentations~attach,omitempty"`
}

// AttachmentFormat binds an attachment id to its format identifier
type AttachmentFormat struct {
	AttachID string `json:"attach_id,omitempty"`
	Format   string `json:"format"`
}

// CredentialPreview lists the attributes an issuer proposes to include in the
// credential being offered
type CredentialPreview struct {
	Type       string                `json:"@type,omitempty"`
	Attributes []CredentialAttribute `json:"attributes"`
}

// CredentialAttribute is a single name/value pair of a credential preview
type CredentialAttribute struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	MimeType string `json:"mime-type,omitempty"`
}

// payloadAttachments returns the offer and request-presentation attachments
// of the message, in this order.
func (o *AttachedMessage) payloadAttachments() []Attachment {
	atts := make([]Attachment, 0, len(o.Offers)+len(o.RequestPresentations))
	atts = append(atts, o.Offers...)

	return append(atts, o.RequestPresentations...)
}
