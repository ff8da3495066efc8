// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Supported OAuth2 grant types
const (
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
	GrantAuthorizationCode = "authorization_code"
)

var defaultScopes = []string{"openid"}

// Oauth2Authenticator obtains access tokens from an OAuth2 token endpoint and
// keeps them fresh, using the refresh token when the server issued one.
type Oauth2Authenticator struct {
	TokenURL     string
	AuthURL      string
	RedirectURL  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	GrantType    string
	Scopes       []string

	Token *oauth2.Token

	// HTTPClient, if set, carries the token endpoint requests. The default
	// HTTP client is used otherwise.
	HTTPClient *http.Client

	mu sync.Mutex
}

func (o *Oauth2Authenticator) Configure(cfg map[string]interface{}) error {
	decoded := struct {
		TokenURL     string                 `mapstructure:"token_url"`
		AuthURL      string                 `mapstructure:"auth_url"`
		RedirectURL  string                 `mapstructure:"redirect_url"`
		ClientID     string                 `mapstructure:"client_id"`
		ClientSecret string                 `mapstructure:"client_secret"`
		Username     string                 `mapstructure:"username"`
		Password     string                 `mapstructure:"password"`
		GrantType    string                 `mapstructure:"grant_type"`
		Scopes       []string               `mapstructure:"scopes"`
		Rest         map[string]interface{} `mapstructure:",remain"`
	}{}

	if err := mapstructure.Decode(cfg, &decoded); err != nil {
		return err
	}

	o.TokenURL = decoded.TokenURL
	o.AuthURL = decoded.AuthURL
	o.RedirectURL = decoded.RedirectURL
	o.ClientID = decoded.ClientID
	o.ClientSecret = decoded.ClientSecret
	o.Username = decoded.Username
	o.Password = decoded.Password
	o.GrantType = decoded.GrantType
	o.Scopes = decoded.Scopes

	if err := o.validate(); err != nil {
		return err
	}

	return checkUnexpected(decoded.Rest)
}

func (o *Oauth2Authenticator) EncodeHeader() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Token.Valid() {
		tok, err := o.obtainToken()
		if err != nil {
			return "", err
		}
		o.Token = tok
	}

	return fmt.Sprintf("%s %s", o.Token.Type(), o.Token.AccessToken), nil
}

// AuthCodeURL returns the URL of the authorization endpoint the user agent
// must be sent to. The PKCE challenge derived from pkce is included.
func (o *Oauth2Authenticator) AuthCodeURL(state string, pkce *PKCE) (string, error) {
	if o.AuthURL == "" {
		return "", errors.New("missing auth_url")
	}

	if pkce == nil {
		return "", errors.New("no PKCE verifier supplied")
	}

	return o.config().AuthCodeURL(state, oauth2.S256ChallengeOption(pkce.Verifier)), nil
}

// Exchange trades the authorization code returned to the redirect URL for a
// token, proving possession of the PKCE verifier.
func (o *Oauth2Authenticator) Exchange(code string, pkce *PKCE) error {
	if pkce == nil {
		return errors.New("no PKCE verifier supplied")
	}

	tok, err := o.config().Exchange(o.tokenContext(), code, oauth2.VerifierOption(pkce.Verifier))
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	o.mu.Lock()
	o.Token = tok
	o.mu.Unlock()

	return nil
}

func (o *Oauth2Authenticator) obtainToken() (*oauth2.Token, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	ctx := o.tokenContext()

	if o.Token != nil && o.Token.RefreshToken != "" {
		tok, err := o.config().TokenSource(ctx, o.Token).Token()
		if err == nil {
			return tok, nil
		}
		log.Printf("token refresh failed: %v", err)
	}

	switch o.grantType() {
	case GrantPassword:
		return o.config().PasswordCredentialsToken(ctx, o.Username, o.Password)
	case GrantClientCredentials:
		cc := clientcredentials.Config{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			TokenURL:     o.TokenURL,
			Scopes:       o.scopes(),
		}
		return cc.Token(ctx)
	default:
		return nil, errors.New("no valid token: authorization code flow must be completed")
	}
}

func (o *Oauth2Authenticator) tokenContext() context.Context {
	ctx := context.Background()

	if o.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.HTTPClient)
	}

	return ctx
}

func (o *Oauth2Authenticator) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURL,
		Scopes:       o.scopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  o.AuthURL,
			TokenURL: o.TokenURL,
		},
	}
}

func (o *Oauth2Authenticator) grantType() string {
	if o.GrantType == "" {
		return GrantPassword
	}
	return o.GrantType
}

func (o *Oauth2Authenticator) scopes() []string {
	if len(o.Scopes) == 0 {
		return defaultScopes
	}
	return o.Scopes
}

func (o *Oauth2Authenticator) validate() error {
	if o.ClientID == "" {
		return errors.New("missing client_id")
	}

	if o.TokenURL == "" {
		return errors.New("missing token_url")
	}

	if _, err := url.Parse(o.TokenURL); err != nil {
		return fmt.Errorf("invalid token_url: %w", err)
	}

	switch o.grantType() {
	case GrantPassword:
		if o.Username == "" {
			return errors.New("missing username")
		}

		if o.Password == "" {
			return errors.New("missing password")
		}
	case GrantClientCredentials:
		if o.ClientSecret == "" {
			return errors.New("missing client_secret")
		}
	case GrantAuthorizationCode:
		if o.RedirectURL == "" {
			return errors.New("missing redirect_url")
		}
	default:
		return fmt.Errorf("unsupported grant_type %q", o.GrantType)
	}

	return nil
}
