// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0
package auth

type NullAuthenticator struct{}

func (o *NullAuthenticator) Configure(cfg map[string]interface{}) error {
	return checkUnexpected(cfg)
}

func (o *NullAuthenticator) EncodeHeader() (string, error) {
	return "", nil
}
