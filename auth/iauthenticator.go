// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0
package auth

// IAuthenticator produces the value of the Authorization header attached to
// every request sent to the agency. An empty header means no authorization.
type IAuthenticator interface {
	Configure(cfg map[string]interface{}) error
	EncodeHeader() (string, error)
}
