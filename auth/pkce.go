// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import "golang.org/x/oauth2"

// PKCE holds the code verifier of a single authorization code flow (RFC 7636)
type PKCE struct {
	Verifier string
}

// NewPKCE generates a fresh high-entropy code verifier
func NewPKCE() *PKCE {
	return &PKCE{Verifier: oauth2.GenerateVerifier()}
}

// Challenge returns the S256 code challenge for the verifier
func (o *PKCE) Challenge() string {
	return oauth2.S256ChallengeFromVerifier(o.Verifier)
}
