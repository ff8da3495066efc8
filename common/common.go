// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const JSONMediaType = "application/json"

// MaxBodySize bounds the size of response bodies read into memory
const MaxBodySize = 4 << 20

func ResolveReference(baseURI, referenceURI string) (string, error) {
	u, err := url.Parse(referenceURI)
	if err != nil {
		return "", fmt.Errorf("parsing reference URI: %w", err)
	}

	if u.IsAbs() {
		return referenceURI, nil
	}

	base, err := url.Parse(baseURI)
	if err != nil {
		return "", fmt.Errorf("parsing base URI: %w", err)
	}

	return base.ResolveReference(u).String(), nil
}

func DecodeJSONBody(res *http.Response, j interface{}) error {
	defer res.Body.Close()

	return json.NewDecoder(res.Body).Decode(j)
}

// ReadBody buffers the whole response body (up to MaxBodySize) and closes it
func ReadBody(res *http.Response) ([]byte, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxBodySize)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	return body, nil
}

// Extract Location header and resolve it to the supplied base (if non-empty)
func ExtractLocation(res *http.Response, base string) (string, error) {
	var err error

	loc := res.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("no Location header found in response")
	}

	if base != "" {
		if loc, err = ResolveReference(base, loc); err != nil {
			return "", fmt.Errorf("the returned Location %q is not a valid URI: %w", loc, err)
		}
	}

	return loc, nil
}
