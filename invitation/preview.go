// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"encoding/json"
	"fmt"
)

// InvitationType tells whether an invitation offers a credential or requests
// a presentation
type InvitationType string

const (
	OfferCredential     InvitationType = "offer-credential"
	RequestPresentation InvitationType = "request-presentation"
)

// TypeFromMessageType maps a DIDComm message type URI to the corresponding
// InvitationType
func TypeFromMessageType(uri string) (InvitationType, error) {
	switch uri {
	case OfferCredentialV2Type:
		return OfferCredential, nil
	case RequestPresentationV2Type:
		return RequestPresentation, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInvitationType, uri)
	}
}

func (o InvitationType) String() string {
	return string(o)
}

func (o InvitationType) MarshalText() ([]byte, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	return []byte(o), nil
}

func (o *InvitationType) UnmarshalText(text []byte) error {
	t := InvitationType(text)
	if err := t.validate(); err != nil {
		return err
	}
	*o = t
	return nil
}

func (o InvitationType) validate() error {
	switch o {
	case OfferCredential, RequestPresentation:
		return nil
	case "":
		return ErrMissingTypeDeclaration
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInvitationType, string(o))
	}
}

// Details is the type-specific part of a Preview. It is either a
// *CredentialOfferDetails or a *VerificationDetails.
type Details interface {
	invitationType() InvitationType
}

// CredentialOfferDetails describes the credential being offered
type CredentialOfferDetails struct {
	Attributes []CredentialAttribute
}

func (o *CredentialOfferDetails) invitationType() InvitationType {
	return OfferCredential
}

// VerificationDetails describes what a verifier is asking for
type VerificationDetails struct {
	Name          string
	Purpose       string
	DocumentTypes []string
}

func (o *VerificationDetails) invitationType() InvitationType {
	return RequestPresentation
}

// Preview is the normalized, read-only projection of an invitation that
// callers render and later hand back to accept the invitation.
type Preview struct {
	ID      string
	URL     string
	Label   string
	Comment string
	Type    InvitationType
	Formats []string

	// JSONRepresentation is the document embedded (base64) in the offer or
	// request-presentation attachment, in compact form. It is nil when the
	// invitation carries no such document.
	JSONRepresentation json.RawMessage

	Details Details
}

// Verification returns the verification details, or nil if the preview is not
// a presentation request
func (o *Preview) Verification() *VerificationDetails {
	d, _ := o.Details.(*VerificationDetails)
	return d
}

// CredentialOffer returns the offer details, or nil if the preview is not a
// credential offer
func (o *Preview) CredentialOffer() *CredentialOfferDetails {
	d, _ := o.Details.(*CredentialOfferDetails)
	return d
}

func (o *Preview) Name() string {
	if v := o.Verification(); v != nil {
		return v.Name
	}
	return ""
}

func (o *Preview) Purpose() string {
	if v := o.Verification(); v != nil {
		return v.Purpose
	}
	return ""
}

func (o *Preview) DocumentTypes() []string {
	if v := o.Verification(); v != nil {
		return v.DocumentTypes
	}
	return nil
}

// previewJSON is the serialized form of a Preview: the common fields plus the
// flattened details of either kind.
type previewJSON struct {
	ID                 string                `json:"id"`
	URL                string                `json:"url"`
	Label              string                `json:"label,omitempty"`
	Comment            string                `json:"comment,omitempty"`
	Type               InvitationType        `json:"type"`
	Formats            []string              `json:"formats,omitempty"`
	JSONRepresentation json.RawMessage       `json:"jsonRepresentation,omitempty"`
	DocumentTypes      []string              `json:"documentTypes,omitempty"`
	Name               string                `json:"name,omitempty"`
	Purpose            string                `json:"purpose,omitempty"`
	Attributes         []CredentialAttribute `json:"attributes,omitempty"`
}

func (o Preview) MarshalJSON() ([]byte, error) {
	j := previewJSON{
		ID:                 o.ID,
		URL:                o.URL,
		Label:              o.Label,
		Comment:            o.Comment,
		Type:               o.Type,
		Formats:            o.Formats,
		JSONRepresentation: o.JSONRepresentation,
	}

	if o.Details != nil && o.Details.invitationType() != o.Type {
		return nil, fmt.Errorf(
			"%s details attached to a %s preview", o.Details.invitationType(), o.Type,
		)
	}

	switch d := o.Details.(type) {
	case *CredentialOfferDetails:
		j.Attributes = d.Attributes
	case *VerificationDetails:
		j.Name = d.Name
		j.Purpose = d.Purpose
		j.DocumentTypes = d.DocumentTypes
	}

	return json.Marshal(j)
}

func (o *Preview) UnmarshalJSON(data []byte) error {
	var j previewJSON

	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	if j.ID == "" {
		return &MissingFieldError{Field: "id"}
	}

	if j.URL == "" {
		return &MissingFieldError{Field: "url"}
	}

	if j.Type == "" {
		return ErrMissingTypeDeclaration
	}

	*o = Preview{
		ID:                 j.ID,
		URL:                j.URL,
		Label:              j.Label,
		Comment:            j.Comment,
		Type:               j.Type,
		Formats:            j.Formats,
		JSONRepresentation: j.JSONRepresentation,
	}

	switch j.Type {
	case OfferCredential:
		o.Details = &CredentialOfferDetails{Attributes: j.Attributes}
	case RequestPresentation:
		o.Details = &VerificationDetails{
			Name:          j.Name,
			Purpose:       j.Purpose,
			DocumentTypes: j.DocumentTypes,
		}
	}

	return nil
}
