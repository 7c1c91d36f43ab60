package adapter

import (
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/docdata-orchestrator/internal/report"
)

func TestProceedRequest_MarshalsMethodInputAsNamedElement(t *testing.T) {
	req := ProceedRequest{
		PaymentID: "500",
		AuthorizationResult: MethodInput{
			Type:   "iDealAuthorizationResult",
			Fields: map[string]string{"transactionId": "T1", "entranceCode": "E1"},
		},
	}
	req.SetHeader(RequestHeader{Version: APIVersion, Merchant: Merchant{Name: "shop", Password: "pw"}})

	raw, err := xml.Marshal(req)
	require.NoError(t, err)
	out := string(raw)

	assert.Contains(t, out, `<proceedRequest xmlns="`+Namespace+`" version="1.3">`)
	assert.Contains(t, out, `<merchant name="shop" password="pw"></merchant>`)
	assert.Contains(t, out, `<paymentId>500</paymentId>`)
	assert.Contains(t, out, `<iDealAuthorizationResult><entranceCode>E1</entranceCode><transactionId>T1</transactionId></iDealAuthorizationResult>`)
	assert.NotContains(t, out, "authorizationResult>")
}

func TestProceedRequest_EmptyMethodInputIsOmitted(t *testing.T) {
	raw, err := xml.Marshal(ProceedRequest{PaymentID: "500"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "authorizationResult")
}

func TestCaptureResponse_DecodeErrors(t *testing.T) {
	body := `<captureResponse><captureErrors><error code="REQUEST_DATA_INCORRECT">No amount authorized available to capture.</error></captureErrors></captureResponse>`
	var resp CaptureResponse
	require.NoError(t, xml.Unmarshal([]byte(body), &resp))

	assert.Nil(t, resp.CaptureSuccess)
	first := resp.CaptureErrors.First()
	assert.Equal(t, "REQUEST_DATA_INCORRECT", first.Code)
	assert.Equal(t, "No amount authorized available to capture.", first.Message)

	var none *Errors
	assert.Equal(t, Error{}, none.First())
}

func TestProceedResponse_DecodeSuccess(t *testing.T) {
	body := `<proceedResponse><proceedSuccess><success code="SUCCESS">Operation successful.</success>` +
		`<paymentResponse><paymentSuccess><status>AUTHORIZED</status><id>3058909231</id></paymentSuccess></paymentResponse>` +
		`</proceedSuccess></proceedResponse>`
	var resp ProceedResponse
	require.NoError(t, xml.Unmarshal([]byte(body), &resp))

	require.NotNil(t, resp.ProceedSuccess)
	assert.True(t, resp.ProceedSuccess.Success.OK())
	assert.Equal(t, report.PaymentID("3058909231"), resp.ProceedSuccess.PaymentResponse.PaymentSuccess.ID)
}

func TestTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	var err error = &TransportError{Operation: "status", Err: cause}

	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "gateway status")
	assert.False(t, IsTransportError(cause))
}
