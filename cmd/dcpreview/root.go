// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ibm-verify/dc-apiclient/agency"
	"github.com/ibm-verify/dc-apiclient/auth"
	"github.com/ibm-verify/dc-apiclient/common"
	"github.com/google/uuid"
	"github.com/ibm-verify/dc-apiclient/invitation"
	"github.com/spf13/cobra"
)

type options struct {
	agencyURI  string
	authMethod auth.Method
	authConfig map[string]string
	caCerts    []string
	insecure   bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := options{authMethod: auth.MethodPassthrough}

	cmd := &cobra.Command{
		Use:          "dcpreview",
		Short:        "Preview and accept digital credential invitations",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.agencyURI, "agency", "", "agency API endpoint, e.g. https://agency.example/diagency/v1.0/diagency")
	flags.Var(&opts.authMethod, "auth", "authentication method: passthrough, bearer or oauth2")
	flags.StringToStringVar(&opts.authConfig, "auth-config", nil,
		"authenticator settings, e.g. access_token=..., or client_id=...,token_url=...")
	flags.StringSliceVar(&opts.caCerts, "ca-cert", nil, "additional CA certificates (PEM) to trust")
	flags.BoolVar(&opts.insecure, "insecure", false, "skip verification of the agency certificate")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "HTTP request timeout")

	cmd.AddCommand(
		newDecodeCmd(),
		newFetchCmd(&opts),
		newPreviewCmd(&opts),
		newProcessCmd(&opts),
		newLoginCmd(&opts),
	)

	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode an invitation envelope read from file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			p, err := invitation.Decode(data)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newFetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <invitation-url>",
		Short: "Download an invitation envelope and decode it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			svc := agency.Service{Client: client}

			p, err := svc.FetchInvitation(args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <invitation-url>",
		Short: "Have the agency inspect an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}

			p, err := svc.PreviewInvitation(args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newProcessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process <invitation-url>",
		Short: "Preview an invitation through the agency and accept it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}

			p, err := svc.PreviewInvitation(args[0])
			if err != nil {
				return err
			}

			loc, err := svc.ProcessInvitation(p)
			if err != nil {
				return err
			}

			if loc != "" {
				fmt.Fprintln(cmd.OutOrStdout(), loc)
			}

			return nil
		},
	}
}

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token with the OAuth2 authorization code flow",
		Long: `Prints the authorization URL to stderr and reads the authorization code
returned to the redirect URL from the first line of stdin. The token is
written to stdout; its access_token can be used with --auth bearer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.authenticator()
			if err != nil {
				return err
			}

			oa2a, ok := a.(*auth.Oauth2Authenticator)
			if !ok || oa2a.GrantType != auth.GrantAuthorizationCode {
				return errors.New("login requires --auth oauth2 with grant_type=authorization_code")
			}

			pkce := auth.NewPKCE()

			authURL, err := oa2a.AuthCodeURL(uuid.NewString(), pkce)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Open the following URL and paste the returned code:\n%s\n", authURL)

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading authorization code: %w", err)
			}

			code = strings.TrimSpace(code)
			if code == "" {
				return errors.New("no authorization code supplied")
			}

			if err := oa2a.Exchange(code, pkce); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), oa2a.Token)
		},
	}
}

func (o *options) authenticator() (auth.IAuthenticator, error) {
	cfg := make(map[string]interface{}, len(o.authConfig))

	for k, v := range o.authConfig {
		if k == "scopes" {
			cfg[k] = strings.Fields(strings.ReplaceAll(v, ";", " "))
			continue
		}
		cfg[k] = v
	}

	a, err := auth.NewAuthenticator(o.authMethod, cfg)
	if err != nil {
		return nil, err
	}

	// token endpoint requests honour the same TLS settings as the agency ones
	if oa2a, ok := a.(*auth.Oauth2Authenticator); ok {
		t, err := o.transport()
		if err != nil {
			return nil, err
		}
		oa2a.HTTPClient = &http.Client{Transport: t, Timeout: o.timeout}
	}

	return a, nil
}

// transport returns nil when the default transport will do
func (o *options) transport() (http.RoundTripper, error) {
	switch {
	case o.insecure:
		return auth.NewInsecureTLSTransport(), nil
	case len(o.caCerts) > 0:
		t, err := auth.NewTLSTransport(o.caCerts)
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	return nil, nil
}

func (o *options) client() (*common.Client, error) {
	a, err := o.authenticator()
	if err != nil {
		return nil, err
	}

	t, err := o.transport()
	if err != nil {
		return nil, err
	}

	client := common.NewClient(a)
	client.HTTPClient.Timeout = o.timeout
	client.HTTPClient.Transport = t

	return client, nil
}

func (o *options) service() (*agency.Service, error) {
	if o.agencyURI == "" {
		return nil, errors.New("no agency endpoint supplied (use --agency)")
	}

	client, err := o.client()
	if err != nil {
		return nil, err
	}

	svc := agency.Service{Client: client}

	if err := svc.SetEndpointURI(o.agencyURI); err != nil {
		return nil, err
	}

	return &svc, nil
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(args[0])
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
