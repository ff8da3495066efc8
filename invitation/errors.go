// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownInvitationType is returned when an attachment declares a
	// message type that is neither an offer-credential nor a
	// request-presentation.
	ErrUnknownInvitationType = errors.New("unknown invitation type")

	// ErrMissingTypeDeclaration is returned when no attachment declares a
	// message type at all.
	ErrMissingTypeDeclaration = errors.New("missing @type")

	// ErrInvalidBase64Content is matched by every InvalidBase64ContentError.
	ErrInvalidBase64Content = errors.New("invalid base64 content")
)

// MissingFieldError reports a structurally required field that is absent
// from the invitation envelope.
type MissingFieldError struct {
	Field string
}

func (o *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", o.Field)
}

// IsMissingField reports whether err is a MissingFieldError for the named
// field.
func IsMissingField(err error, field string) bool {
	var mfe *MissingFieldError

	return errors.As(err, &mfe) && mfe.Field == field
}

// InvalidBase64ContentError wraps the failure to decode the embedded payload,
// either at the base64 or at the JSON stage.
type InvalidBase64ContentError struct {
	Err error
}

func (o *InvalidBase64ContentError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidBase64Content, o.Err)
}

func (o *InvalidBase64ContentError) Unwrap() error {
	return o.Err
}

func (o *InvalidBase64ContentError) Is(target error) bool {
	return target == ErrInvalidBase64Content
}
