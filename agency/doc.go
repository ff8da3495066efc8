// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

/*
Package agency is a client of the digital credentials agency API.

A Service is bound to the agency endpoint and to an authenticator producing
the holder's Authorization header:

	a, err := auth.NewAuthenticator(auth.MethodBearer, map[string]interface{}{
		"access_token": token,
	})
	if err != nil { ... }

	svc, err := agency.NewTLSService("https://agency.example/diagency/v1.0/diagency", a, nil)
	if err != nil { ... }

Invitations are first previewed, so that the holder can decide whether to
accept them:

	preview, err := svc.PreviewInvitation(invitationURL)
	if err != nil { ... }

	fmt.Println(preview.Label, preview.Name(), preview.Purpose())

and then processed:

	location, err := svc.ProcessInvitation(preview)

Alternatively, the raw invitation envelope can be downloaded from the URL it
is published at and decoded locally:

	preview, err := svc.FetchInvitation(invitationURL)
*/
package agency
