// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ibm-verify/dc-apiclient/auth"
)

// CorrelationIDHeader carries a per-request identifier the agency echoes in
// its logs
const CorrelationIDHeader = "X-Correlation-ID"

// Client holds configuration data associated with the HTTP(s) session
type Client struct {
	HTTPClient http.Client
	Auth       auth.IAuthenticator
}

// NewClient instantiates a new Client using the supplied authenticator. A nil
// authenticator sends unauthenticated requests.
func NewClient(a auth.IAuthenticator) *Client {
	if a == nil {
		a = &auth.NullAuthenticator{}
	}

	return &Client{
		HTTPClient: http.Client{
			Timeout: 5 * time.Second,
		},
		Auth: a,
	}
}

// GetResource issues a GET request for uri, asking for the accept media type
func (c Client) GetResource(accept, uri string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("GET %q, request creation failed: %w", uri, err)
	}

	req.Header.Set("Accept", accept)

	return c.do(req)
}

// PostResource POSTs body (of media type ct) to uri, asking for the accept
// media type
func (c Client) PostResource(body []byte, ct, accept, uri string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, uri, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("POST %q, request creation failed: %w", uri, err)
	}

	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", accept)

	return c.do(req)
}

// PostJSON serializes v and POSTs it to uri
func (c Client) PostJSON(v interface{}, accept, uri string) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("POST %q, serializing request body: %w", uri, err)
	}

	return c.PostResource(body, JSONMediaType, accept, uri)
}

func (c Client) do(req *http.Request) (*http.Response, error) {
	if c.Auth != nil {
		header, err := c.Auth.EncodeHeader()
		if err != nil {
			return nil, fmt.Errorf("%s %q, authorization failed: %w", req.Method, req.URL, err)
		}

		if header != "" {
			req.Header.Set("Authorization", header)
		}
	}

	req.Header.Set(CorrelationIDHeader, uuid.NewString())

	hc := &c.HTTPClient

	return hc.Do(req)
}
