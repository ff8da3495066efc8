package agency

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ibm-verify/dc-apiclient/auth"
	"github.com/ibm-verify/dc-apiclient/common"
	"github.com/ibm-verify/dc-apiclient/invitation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInvitationURL = "http://issuer.example/invitations/42"

var (
	testEndpointURI = &url.URL{
		Scheme: "http",
		Host:   "agency.example",
		Path:   "/diagency/v1.0/diagency",
	}

	testProofRequest = `{
		"name": "Proof of Employment",
		"requested_attributes": {
			"a": {"name": "employer", "restrictions": [{"cred_def_id": "CD:42:tag"}]}
		}
	}`
)

func testEnvelope() []byte {
	env := map[string]interface{}{
		"invitation": map[string]interface{}{
			"label": "Acme Corp",
			"url":   "https://agency.example/diagency/a2a/v1/messages/7",
			"requests~attach": []interface{}{
				map[string]interface{}{
					"@id": "request-0",
					"data": map[string]interface{}{
						"json": map[string]interface{}{
							"@id":   "req-1",
							"@type": invitation.RequestPresentationV2Type,
							"formats": []interface{}{
								map[string]interface{}{"attach_id": "pr", "format": invitation.FormatIndyProofRequest},
							},
							"request_presentations~attach": []interface{}{
								map[string]interface{}{
									"@id": "pr",
									"data": map[string]interface{}{
										"base64": base64.StdEncoding.EncodeToString([]byte(testProofRequest)),
									},
								},
							},
						},
					},
				},
			},
		},
	}

	data, _ := json.Marshal(env)
	return data
}

func testService(client *common.Client) *Service {
	return &Service{
		EndPointURI: testEndpointURI,
		Client:      client,
		BackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
		},
	}
}

func TestService_NewService(t *testing.T) {
	_, err := NewService(string([]byte{0x7f}), nil)
	assert.EqualError(t, err, "malformed URI: parse \"\\x7f\": net/url: invalid control character in URL")

	_, err = NewService("test", nil)
	assert.EqualError(t, err, "URI is not absolute: \"test\"")

	service, err := NewService("http://agency.example:9999/diagency/v1.0", nil)
	assert.NoError(t, err)
	assert.Equal(t, "agency.example:9999", service.EndPointURI.Host)
	assert.IsType(t, &auth.NullAuthenticator{}, service.Client.Auth)
}

func TestService_TLS_NewTLSService(t *testing.T) {
	_, err := NewTLSService("http://agency.example:9999/diagency/v1.0", nil, nil)
	assert.Contains(t, err.Error(), "expected HTTPS scheme")

	service, err := NewTLSService("https://agency.example:9999/diagency/v1.0", nil, nil)
	require.NoError(t, err)
	transport := service.Client.HTTPClient.Transport.(*http.Transport)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestService_TLS_NewInsecureTLSService(t *testing.T) {
	_, err := NewInsecureTLSService("http://agency.example:9999/diagency/v1.0", nil)
	assert.Contains(t, err.Error(), "expected HTTPS scheme")

	service, err := NewInsecureTLSService("https://agency.example:9999/diagency/v1.0", nil)
	require.NoError(t, err)
	transport := service.Client.HTTPClient.Transport.(*http.Transport)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestService_SetClient(t *testing.T) {
	service, err := NewService("http://agency.example:9999/diagency/v1.0", nil)
	require.NoError(t, err)

	err = service.SetClient(nil)
	assert.EqualError(t, err, "no client supplied")

	client := common.NewClient(nil)
	err = service.SetClient(client)
	assert.NoError(t, err)
}

func TestService_PreviewInvitation(t *testing.T) {
	expectedURI := testEndpointURI.JoinPath(InvitationProcessorPath)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, common.JSONMediaType, r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer s3cr3t", r.Header.Get("Authorization"))
		assert.Equal(t, expectedURI.RequestURI(), r.RequestURI)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"url":"`+testInvitationURL+`","inspect":true}`, string(body))

		w.Header().Set("Content-Type", common.JSONMediaType)
		w.WriteHeader(http.StatusOK)
		_, err = w.Write(testEnvelope())
		assert.NoError(t, err)
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	client.Auth = &auth.BearerAuthenticator{AccessToken: "s3cr3t"}

	preview, err := testService(client).PreviewInvitation(testInvitationURL)
	require.NoError(t, err)

	assert.Equal(t, "req-1", preview.ID)
	assert.Equal(t, "Acme Corp", preview.Label)
	assert.Equal(t, invitation.RequestPresentation, preview.Type)
	assert.Equal(t, "Proof of Employment", preview.Name())
	assert.Equal(t, "employer", preview.Purpose())
	assert.Equal(t, []string{"CD:42:tag"}, preview.DocumentTypes())

	_, err = testService(client).PreviewInvitation("")
	assert.EqualError(t, err, "no invitation URL supplied")
}

func TestService_PreviewInvitation_Problem(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"Not Found","status":404,"detail":"no such invitation"}`))
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	_, err := testService(client).PreviewInvitation(testInvitationURL)
	assert.EqualError(t, err, "404 Not Found: no such invitation")
}

func TestService_PreviewInvitation_BadEnvelope(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"invitation": {"requests~attach": []}}`))
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	_, err := testService(client).PreviewInvitation(testInvitationURL)
	assert.True(t, invitation.IsMissingField(err, "id"))
	assert.EqualError(t, err, `decoding invitation preview: missing field "id"`)
}

func TestService_ProcessInvitation(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t,
			`{"url":"https://agency.example/diagency/a2a/v1/messages/7","inspect":false}`,
			string(body),
		)

		w.Header().Set("Location", "verifications/99")
		w.WriteHeader(http.StatusCreated)
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	preview, err := invitation.Decode(testEnvelope())
	require.NoError(t, err)

	loc, err := testService(client).ProcessInvitation(preview)
	require.NoError(t, err)
	assert.Equal(t, "http://agency.example/diagency/v1.0/diagency/verifications/99", loc)

	_, err = testService(client).ProcessInvitation(nil)
	assert.EqualError(t, err, "no invitation preview supplied")
}

func TestService_ProcessInvitation_NoLocation(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	loc, err := testService(client).ProcessInvitation(&invitation.Preview{URL: "https://agency.example/cb"})
	require.NoError(t, err)
	assert.Empty(t, loc)
}

func TestService_FetchInvitation_Retry(t *testing.T) {
	attempts := 0

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/invitations/42", r.URL.Path)

		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(testEnvelope())
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	preview, err := testService(client).FetchInvitation(testInvitationURL)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "req-1", preview.ID)
}

func TestService_FetchInvitation_WithoutAgencyCredentials(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(testEnvelope())
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	client.Auth = &auth.BearerAuthenticator{AccessToken: "agency-secret"}

	preview, err := testService(client).FetchInvitation(testInvitationURL)
	require.NoError(t, err)
	assert.Equal(t, "req-1", preview.ID)
	assert.IsType(t, &auth.BearerAuthenticator{}, client.Auth)
}

func TestService_FetchInvitation_Exhausted(t *testing.T) {
	attempts := 0

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	_, err := testService(client).FetchInvitation(testInvitationURL)
	assert.EqualError(t, err, "fetching invitation: unexpected HTTP response code 502")
	assert.Equal(t, 3, attempts)
}

func TestService_FetchInvitation_NoRetryOnClientError(t *testing.T) {
	attempts := 0

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusGone)
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	_, err := testService(client).FetchInvitation(testInvitationURL)
	assert.EqualError(t, err, "fetching invitation: unexpected HTTP response code 410")
	assert.Equal(t, 1, attempts)
}

func TestService_FetchInvitation_InvalidPayload(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"invitation": {"url": "https://agency.example/cb", "requests~attach": [
			{"data": {"json": {"@id": "x", "@type": "https://didcomm.org/issue-credential/2.0/offer-credential",
			"offers~attach": [{"data": {"base64": "%%%"}}]}}}
		]}}`))
	})

	client, teardown := common.NewTestingHTTPClient(h)
	defer teardown()

	_, err := testService(client).FetchInvitation(testInvitationURL)
	assert.ErrorIs(t, err, invitation.ErrInvalidBase64Content)
}
