package invitation

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDIFRequest = `{
		"options": {"challenge": "3fa85f64", "domain": "verifier.example"},
		"presentation_definition": {
			"id": "32f54163-7166-48f1-93d8-ff217bdb0653",
			"input_descriptors": [
				{
					"id": "citizenship_input",
					"name": "EU Driver's License",
					"purpose": "We need to verify your driving entitlement",
					"constraints": {"fields": [{"path": ["$.credentialSubject.dob"]}]}
				},
				{"id": "second_input", "name": "Ignored"}
			]
		}
	}`

	testIndyRequest = `{
		"name": "Proof of Employment",
		"version": "1.0",
		"nonce": "1234567890",
		"requested_attributes": {
			"attr2_referent": {
				"name": "employer",
				"restrictions": [{"schema_id": "S:employment:1.0", "issuer_did": "did:sov:issuer"}]
			},
			"attr1_referent": {
				"names": ["given_name", "family_name"],
				"restrictions": [{"schema_id": "S:employment:1.0"}, {"cred_def_id": "CD:42:tag"}]
			}
		},
		"requested_predicates": {}
	}`
)

func TestExtractVerification_DIF(t *testing.T) {
	v := ExtractVerification([]string{FormatDIFPresentationExchange}, json.RawMessage(testDIFRequest))

	assert.Equal(t, "EU Driver's License", v.Name)
	assert.Equal(t, "We need to verify your driving entitlement", v.Purpose)
	assert.Equal(t, []string{"citizenship_input"}, v.DocumentTypes)
}

func TestExtractVerification_DIFSingularFormat(t *testing.T) {
	v := ExtractVerification(
		[]string{"dif/presentation-exchange/definition@v1.0"},
		json.RawMessage(testDIFRequest),
	)

	assert.Equal(t, "EU Driver's License", v.Name)
}

func TestExtractVerification_DIFPlaceholders(t *testing.T) {
	doc := `{"presentation_definition": {"input_descriptors": [{"id": "only_id", "name": "Only name"}]}}`

	v := ExtractVerification([]string{FormatDIFPresentationExchange}, json.RawMessage(doc))
	assert.Equal(t, "Only name", v.Name)
	assert.Equal(t, PurposeNotFound, v.Purpose)
	assert.Equal(t, []string{"only_id"}, v.DocumentTypes)

	doc = `{"presentation_definition": {"input_descriptors": []}}`

	v = ExtractVerification([]string{FormatDIFPresentationExchange}, json.RawMessage(doc))
	assert.Equal(t, NameNotFound, v.Name)
	assert.Equal(t, PurposeNotFound, v.Purpose)
	assert.Equal(t, []string{IDNotFound}, v.DocumentTypes)

	doc = `{"presentation_definition": {"input_descriptors": [{"name": 7}]}}`

	v = ExtractVerification([]string{FormatDIFPresentationExchange}, json.RawMessage(doc))
	assert.Equal(t, NameNotFound, v.Name)
	assert.Equal(t, "Purpose not found", v.Purpose)
}

func TestExtractVerification_Indy(t *testing.T) {
	v := ExtractVerification([]string{FormatIndyProofRequest}, json.RawMessage(testIndyRequest))

	assert.Equal(t, "Proof of Employment", v.Name)
	assert.Equal(t, "given_name family_name employer", v.Purpose)
	assert.Equal(t, []string{"S:employment:1.0", "CD:42:tag", "did:sov:issuer"}, v.DocumentTypes)
}

func TestExtractVerification_IndyCredDefID(t *testing.T) {
	doc := `{
		"name": "Proof",
		"cred_def_id": "CD:7:default",
		"requested_attributes": {
			"a": {"name": "score", "restrictions": [{"schema_id": "S:1"}]}
		}
	}`

	v := ExtractVerification([]string{FormatIndyProofRequest}, json.RawMessage(doc))
	assert.Equal(t, "Proof", v.Name)
	assert.Equal(t, "score", v.Purpose)
	assert.Equal(t, []string{"CD:7:default"}, v.DocumentTypes)
}

func TestExtractVerification_DIFTakesPrecedence(t *testing.T) {
	v := ExtractVerification(
		[]string{FormatIndyProofRequest, FormatDIFPresentationExchange},
		json.RawMessage(testDIFRequest),
	)
	assert.Equal(t, "EU Driver's License", v.Name)
}

func TestExtractVerification_Unrecognised(t *testing.T) {
	v := ExtractVerification([]string{"anoncreds/proof-request@v1.0"}, json.RawMessage(testIndyRequest))
	assert.Equal(t, &VerificationDetails{}, v)

	v = ExtractVerification([]string{FormatIndyProofRequest}, nil)
	assert.Equal(t, &VerificationDetails{}, v)
}

func TestDecode_RequestPresentationDetails(t *testing.T) {
	env := testEnvelope(testAttachment("att-0", map[string]interface{}{
		"@id":   "req-1",
		"@type": RequestPresentationV2Type,
		"formats": []interface{}{
			map[string]interface{}{"attach_id": "pd", "format": FormatDIFPresentationExchange},
		},
		"request_presentations~attach": []interface{}{
			map[string]interface{}{
				"@id":  "pd",
				"data": map[string]interface{}{"base64": base64.StdEncoding.EncodeToString([]byte(testDIFRequest))},
			},
		},
	}))

	p, err := Decode(toBytes(t, env))
	require.NoError(t, err)

	assert.Equal(t, RequestPresentation, p.Type)
	assert.Equal(t, "EU Driver's License", p.Name())
	assert.Equal(t, "We need to verify your driving entitlement", p.Purpose())
	assert.Equal(t, []string{"citizenship_input"}, p.DocumentTypes())
	assert.Nil(t, p.CredentialOffer())
}

func TestDecode_RequestPresentationWithoutPayload(t *testing.T) {
	env := testEnvelope(testAttachment("att-0", map[string]interface{}{
		"@id":   "req-1",
		"@type": RequestPresentationV2Type,
		"formats": []interface{}{
			map[string]interface{}{"attach_id": "pd", "format": FormatDIFPresentationExchange},
		},
	}))

	p, err := Decode(toBytes(t, env))
	require.NoError(t, err)
	assert.Equal(t, &VerificationDetails{}, p.Verification())
}
