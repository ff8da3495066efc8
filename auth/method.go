// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package auth

import "fmt"

// Method is the enumeration of authentication methods accepted by the
// agency. It implements the pflag.Value interface.
type Method string

const (
	MethodPassthrough Method = "passthrough"
	MethodBearer      Method = "bearer"
	MethodOauth2      Method = "oauth2"
)

// String representation of the Method
func (o *Method) String() string {
	return string(*o)
}

// Set the value of the Method
func (o *Method) Set(v string) error {
	switch v {
	case "none", "passthrough":
		*o = MethodPassthrough
	case "bearer", "token":
		*o = MethodBearer
	case "oauth2":
		*o = MethodOauth2
	default:
		return fmt.Errorf("unexpected Method %q", v)
	}

	return nil
}

// Type returns the string representing the type name (used by pflag).
func (o *Method) Type() string {
	return "Method"
}

// NewAuthenticator returns an authenticator for the method, configured from
// cfg.
func NewAuthenticator(m Method, cfg map[string]interface{}) (IAuthenticator, error) {
	var a IAuthenticator

	switch m {
	case MethodPassthrough, "":
		a = &NullAuthenticator{}
	case MethodBearer:
		a = &BearerAuthenticator{}
	case MethodOauth2:
		a = &Oauth2Authenticator{}
	default:
		return nil, fmt.Errorf("unexpected Method %q", string(m))
	}

	if err := a.Configure(cfg); err != nil {
		return nil, fmt.Errorf("configuring %s authenticator: %w", m.String(), err)
	}

	return a, nil
}
