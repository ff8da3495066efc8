// Copyright 2024 Contributors to the Verify DC API client project.
// SPDX-License-Identifier: Apache-2.0

/*
Package invitation turns the out-of-band invitations handed out by a digital
credentials agency into previews that can be shown to a holder before the
invitation is accepted.

An invitation is wrapped by the agency in an envelope:

	{
	  "invitation": {
	    "label": "Acme Bank",
	    "url": "https://agency.example/diagency/a2a/v1/messages/...",
	    "requests~attach": [
	      {
	        "@id": "request-0",
	        "data": {
	          "json": {
	            "@id": "abc123",
	            "@type": "https://didcomm.org/present-proof/2.0/request-presentation",
	            "formats": [{"attach_id": "pd", "format": "dif/presentation-exchange/definitions@v1.0"}],
	            "request_presentations~attach": [{"@id": "pd", "data": {"base64": "eyJwcmVz..."}}]
	          }
	        }
	      }
	    ]
	  }
	}

Decode normalizes it:

	preview, err := invitation.Decode(body)
	if err != nil {
		// errors.As(err, new(*invitation.MissingFieldError)),
		// errors.Is(err, invitation.ErrUnknownInvitationType), ...
	}

	switch preview.Type {
	case invitation.OfferCredential:
		for _, a := range preview.CredentialOffer().Attributes { ... }
	case invitation.RequestPresentation:
		fmt.Println(preview.Name(), preview.Purpose(), preview.DocumentTypes())
	}

A Preview serializes to JSON, and Decode accepts that serialization back.
*/
package invitation
