// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

/*
Package apiclient is the Go client of the IBM Security Verify digital
credentials agency.

The functionality is split across the following packages:

	invitation  decodes out-of-band invitations (credential offers and
	            presentation requests) into previews; no I/O
	agency      previews and processes invitations through the agency,
	            downloads published invitations
	auth        Authorization header providers: bearer token, OAuth2
	            (password, client credentials, authorization code + PKCE)
	common      HTTP plumbing shared by the above

The dcpreview command under cmd/ exposes the same operations on the command
line.
*/
package apiclient
