// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// BearerAuthenticator presents an access token obtained out of band, e.g. by
// the application's own login flow.
type BearerAuthenticator struct {
	AccessToken string
}

func (o *BearerAuthenticator) Configure(cfg map[string]interface{}) error {
	decoded := struct {
		AccessToken string                 `mapstructure:"access_token"`
		Rest        map[string]interface{} `mapstructure:",remain"`
	}{}

	if err := mapstructure.Decode(cfg, &decoded); err != nil {
		return err
	}

	o.AccessToken = decoded.AccessToken

	if err := o.validate(); err != nil {
		return err
	}

	return checkUnexpected(decoded.Rest)
}

func (o *BearerAuthenticator) EncodeHeader() (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf("Bearer %s", o.AccessToken), nil
}

func (o *BearerAuthenticator) validate() error {
	if o.AccessToken == "" {
		return errors.New("missing access_token")
	}

	return nil
}

func checkUnexpected(rest map[string]interface{}) error {
	if len(rest) == 0 {
		return nil
	}

	unexpected := make([]string, 0, len(rest))
	for k := range rest {
		unexpected = append(unexpected, k)
	}
	sort.Strings(unexpected)

	return fmt.Errorf("unexpected fields in config: %s",
		strings.Join(unexpected, ", "))
}
