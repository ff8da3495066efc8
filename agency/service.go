// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package agency

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ibm-verify/dc-apiclient/auth"
	"github.com/ibm-verify/dc-apiclient/common"
	"github.com/ibm-verify/dc-apiclient/invitation"
)

const (
	InvitationProcessorPath = "invitation_processor"

	// DefaultMaxElapsedTime bounds the retries of FetchInvitation
	DefaultMaxElapsedTime = 15 * time.Second
)

// Service is the primary interface to the digital credentials agency API.
type Service struct {
	// Client is the underlying client used for HTTP requests.
	Client *common.Client

	// EndPointURI is the top-level agency API URL. Individual operations
	// endpoints are relative to this.
	EndPointURI *url.URL

	// BackOff, if set, supplies the retry policy of FetchInvitation. An
	// exponential back-off bounded by DefaultMaxElapsedTime is used
	// otherwise.
	BackOff func() backoff.BackOff
}

type processorRequest struct {
	URL     string `json:"url"`
	Inspect bool   `json:"inspect"`
}

// NewService creates a new Service instance using the provided endpoint URI
// and a default HTTP client authenticating with a.
func NewService(uri string, a auth.IAuthenticator) (*Service, error) {
	s := Service{Client: common.NewClient(a)}

	if err := s.SetEndpointURI(uri); err != nil {
		return nil, err
	}

	return &s, nil
}

// NewTLSService is like NewService but requires an HTTPS endpoint, trusting
// the system roots plus the certificates found in certPaths.
func NewTLSService(uri string, a auth.IAuthenticator, certPaths []string) (*Service, error) {
	s, err := newHTTPSService(uri, a)
	if err != nil {
		return nil, err
	}

	transport, err := auth.NewTLSTransport(certPaths)
	if err != nil {
		return nil, err
	}

	s.Client.HTTPClient.Transport = transport

	return s, nil
}

// NewInsecureTLSService is like NewTLSService but skips the verification of
// the agency certificate.
func NewInsecureTLSService(uri string, a auth.IAuthenticator) (*Service, error) {
	s, err := newHTTPSService(uri, a)
	if err != nil {
		return nil, err
	}

	s.Client.HTTPClient.Transport = auth.NewInsecureTLSTransport()

	return s, nil
}

func newHTTPSService(uri string, a auth.IAuthenticator) (*Service, error) {
	s, err := NewService(uri, a)
	if err != nil {
		return nil, err
	}

	if s.EndPointURI.Scheme != "https" {
		return nil, fmt.Errorf("expected HTTPS scheme, found %q", s.EndPointURI.Scheme)
	}

	return s, nil
}

// SetClient sets the HTTP(s) client connection configuration
func (o *Service) SetClient(client *common.Client) error {
	if client == nil {
		return errors.New("no client supplied")
	}
	o.Client = client
	return nil
}

// SetEndpointURI sets the URI of the agency API endpoint.
func (o *Service) SetEndpointURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("malformed URI: %w", err)
	}

	if !u.IsAbs() {
		return fmt.Errorf("URI is not absolute: %q", uri)
	}

	o.EndPointURI = u

	return nil
}

// PreviewInvitation asks the agency to inspect the invitation found at
// invitationURL without acting on it, and returns its preview.
func (o *Service) PreviewInvitation(invitationURL string) (*invitation.Preview, error) {
	if invitationURL == "" {
		return nil, errors.New("no invitation URL supplied")
	}

	res, err := o.Client.PostJSON(
		processorRequest{URL: invitationURL, Inspect: true},
		common.JSONMediaType,
		o.processorURI(),
	)
	if err != nil {
		return nil, fmt.Errorf("post request failed: %w", err)
	}

	if err := common.CheckResponse(res, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}

	return previewFromResponse(res)
}

// ProcessInvitation accepts a previously previewed invitation. If the agency
// returns the location of the resource it created (connection, credential
// or verification), it is returned resolved against the endpoint.
func (o *Service) ProcessInvitation(preview *invitation.Preview) (string, error) {
	if preview == nil || preview.URL == "" {
		return "", errors.New("no invitation preview supplied")
	}

	processorURI := o.processorURI()

	res, err := o.Client.PostJSON(
		processorRequest{URL: preview.URL, Inspect: false},
		common.JSONMediaType,
		processorURI,
	)
	if err != nil {
		return "", fmt.Errorf("post request failed: %w", err)
	}

	if err := common.CheckResponse(
		res, http.StatusOK, http.StatusCreated, http.StatusAccepted,
	); err != nil {
		return "", err
	}

	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()

	if res.Header.Get("Location") == "" {
		return "", nil
	}

	return common.ExtractLocation(res, processorURI)
}

// FetchInvitation retrieves the raw invitation envelope published at
// invitationURL and returns its preview. Transport errors and 5xx responses
// are retried; any other failure is returned at once. The invitation host is
// not the agency, so the agency credentials are never sent to it.
func (o *Service) FetchInvitation(invitationURL string) (*invitation.Preview, error) {
	if invitationURL == "" {
		return nil, errors.New("no invitation URL supplied")
	}

	fetcher := *o.Client
	fetcher.Auth = &auth.NullAuthenticator{}

	var body []byte

	op := func() error {
		res, err := fetcher.GetResource(common.JSONMediaType, invitationURL)
		if err != nil {
			return err
		}

		if err := common.CheckResponse(res, http.StatusOK); err != nil {
			if res.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		if body, err = common.ReadBody(res); err != nil {
			return backoff.Permanent(err)
		}

		return nil
	}

	notify := func(err error, d time.Duration) {
		log.Printf("GET %s failed, retrying in %s: %v", invitationURL, d, err)
	}

	if err := backoff.RetryNotify(op, o.backOff(), notify); err != nil {
		return nil, fmt.Errorf("fetching invitation: %w", err)
	}

	p, err := invitation.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decoding invitation: %w", err)
	}

	return p, nil
}

func (o *Service) processorURI() string {
	return o.EndPointURI.JoinPath(InvitationProcessorPath).String()
}

func (o *Service) backOff() backoff.BackOff {
	if o.BackOff != nil {
		return o.BackOff()
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = DefaultMaxElapsedTime

	return b
}

func previewFromResponse(res *http.Response) (*invitation.Preview, error) {
	body, err := common.ReadBody(res)
	if err != nil {
		return nil, err
	}

	p, err := invitation.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decoding invitation preview: %w", err)
	}

	return p, nil
}
