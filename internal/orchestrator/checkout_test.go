package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	adaptermock "github.com/yourorg/docdata-orchestrator/internal/adapter/mock"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

func validCreateInput() CreateInput {
	return CreateInput{
		MerchantID:             testMerchantID,
		MerchantOrderReference: "order-1001",
		Amount:                 1000,
		Currency:               "EUR",
		Description:            "Order 1001",
		Shopper: ShopperInput{
			ID:     "cust-42",
			Name:   NameInput{Title: "Mr.", FirstName: "Jan", LastName: "Jansen"},
			Email:  "jan@example.com",
			Gender: "male",
		},
		Address: AddressInput{
			Street:      "Kalverstraat",
			HouseNumber: "1",
			PostalCode:  "1012NX",
			City:        "Amsterdam",
			Country:     "NL",
		},
	}
}

func TestCreate_BuildsGatewayRequest(t *testing.T) {
	gw := adaptermock.NewMockAdapter("mock")
	var sent adapter.CreateRequest
	gw.CreateFunc = func(_ context.CallContext, req adapter.CreateRequest) (adapter.CreateResponse, error) {
		sent = req
		return adapter.CreateResponse{CreateSuccess: &adapter.CreateSuccess{
			Success: adapter.Success{Code: adapter.CodeSuccess, Message: "Operation successful."},
			Key:     "KEY123",
		}}, nil
	}
	orc, j := newTestOrchestrator(t, gw)

	res, err := orc.Create(newTraceCtx(), validCreateInput())
	require.NoError(t, err)
	assert.True(t, res.Successful)
	assert.Equal(t, "KEY123", res.TransactionReference)

	assert.Equal(t, "order-1001", sent.MerchantOrderReference)
	assert.Equal(t, report.Amount{Value: 1000, Currency: "EUR"}, sent.TotalGrossAmount)
	assert.Equal(t, "standard", sent.PaymentPreferences.Profile, "merchant default profile")
	assert.Equal(t, 7, sent.PaymentPreferences.NumberOfDaysToPay)
	assert.Equal(t, "nl", sent.Shopper.Language.Code, "merchant default language")
	assert.Equal(t, "M", sent.Shopper.Gender)
	assert.Equal(t, "Mr.", sent.Shopper.Name.Prefix)
	assert.Equal(t, "Jansen", sent.BillTo.Name.Last, "bill-to name falls back to the shopper")
	assert.Equal(t, "NL", sent.BillTo.Address.Country.Code)

	entries, _ := j.List(newTraceCtx().Context())
	require.Len(t, entries, 1)
	assert.Equal(t, "KEY123", entries[0].OrderKey)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"MissingReference", func(in *CreateInput) { in.MerchantOrderReference = "" }, "merchantOrderReference"},
		{"ZeroAmount", func(in *CreateInput) { in.Amount = 0 }, "amount"},
		{"LowercaseCurrency", func(in *CreateInput) { in.Currency = "eur" }, "currency"},
		{"MissingShopperID", func(in *CreateInput) { in.Shopper.ID = "" }, "shopper.id"},
		{"LongFirstName", func(in *CreateInput) {
			in.Shopper.Name.FirstName = "Abcdefghijklmnopqrstuvwxyzabcdefghijk"
		}, "shopper.name.firstName"},
		{"InvalidEmail", func(in *CreateInput) { in.Shopper.Email = "not-an-email" }, "shopper.email"},
		{"UppercaseLanguage", func(in *CreateInput) { in.Shopper.Language = "NL" }, "shopper.language"},
		{"MissingStreet", func(in *CreateInput) { in.Address.Street = "" }, "address.street"},
		{"LowercaseCountry", func(in *CreateInput) { in.Address.Country = "nl" }, "address.country"},
		{"UnknownCountry", func(in *CreateInput) { in.Address.Country = "XX" }, "address.country"},
		{"EmptyBillToName", func(in *CreateInput) { in.BillTo = &NameInput{} }, "billToName.firstName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := adaptermock.NewMockAdapter("mock")
			orc, _ := newTestOrchestrator(t, gw)
			in := validCreateInput()
			tt.mutate(&in)

			_, err := orc.Create(newTraceCtx(), in)
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), err.Error())
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, gw.Calls())
		})
	}
}

func TestGender(t *testing.T) {
	assert.Equal(t, "M", gender("m"))
	assert.Equal(t, "F", gender(" Female "))
	assert.Equal(t, "U", gender(""))
	assert.Equal(t, "U", gender("X"))
}

func TestStart_ReturnsRedirect(t *testing.T) {
	gw := adaptermock.NewMockAdapter("mock")
	var sent adapter.StartRequest
	gw.StartFunc = func(_ context.CallContext, req adapter.StartRequest) (adapter.StartResponse, error) {
		sent = req
		return adapter.StartResponse{StartSuccess: &adapter.StartSuccess{
			Success: adapter.Success{Code: adapter.CodeSuccess},
			PaymentResponse: adapter.PaymentResponse{
				PaymentSuccess:  &adapter.PaymentSuccess{Status: string(report.StateRedirectedForAuthentication), ID: "4711"},
				PaymentRedirect: &adapter.PaymentRedirect{URL: "https://acs.example.com/3ds", Method: "POST"},
			},
		}}, nil
	}
	orc, _ := newTestOrchestrator(t, gw)

	res, err := orc.Start(newTraceCtx(), StartInput{
		MerchantID:    testMerchantID,
		OrderKey:      "K1",
		PaymentMethod: "MASTERCARD",
		ReturnURL:     "https://shop.example.com/return",
		InputType:     "masterCardPaymentInput",
		Input:         map[string]string{"cardHolderName": "J Jansen"},
	})
	require.NoError(t, err)
	assert.True(t, res.Successful)
	assert.Equal(t, "https://acs.example.com/3ds", res.RedirectURL)
	assert.Equal(t, report.PaymentID("4711"), res.PaymentID)
	assert.Equal(t, "K1", sent.PaymentOrderKey)
	assert.Equal(t, "masterCardPaymentInput", sent.Payment.Input.Type)
}

func TestStart_Validation(t *testing.T) {
	gw := adaptermock.NewMockAdapter("mock")
	orc, _ := newTestOrchestrator(t, gw)

	_, err := orc.Start(newTraceCtx(), StartInput{MerchantID: testMerchantID, OrderKey: "K1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = orc.Start(newTraceCtx(), StartInput{MerchantID: testMerchantID, OrderKey: "K1", PaymentMethod: "IDEAL", ReturnURL: "not a url"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())
}

func TestCreateAndStart(t *testing.T) {
	t.Run("AttachesStartOutcome", func(t *testing.T) {
		gw := adaptermock.NewMockAdapter("mock")
		gw.CreateFunc = func(_ context.CallContext, _ adapter.CreateRequest) (adapter.CreateResponse, error) {
			return adapter.CreateResponse{CreateSuccess: &adapter.CreateSuccess{
				Success: adapter.Success{Code: adapter.CodeSuccess}, Key: "KEY123",
			}}, nil
		}
		gw.StartFunc = func(_ context.CallContext, req adapter.StartRequest) (adapter.StartResponse, error) {
			return adapter.StartResponse{StartSuccess: &adapter.StartSuccess{
				Success: adapter.Success{Code: adapter.CodeSuccess},
				PaymentResponse: adapter.PaymentResponse{
					PaymentSuccess:  &adapter.PaymentSuccess{Status: "STARTED", ID: "1"},
					PaymentRedirect: &adapter.PaymentRedirect{URL: "https://pay.example.com/" + req.PaymentOrderKey},
				},
			}}, nil
		}
		orc, _ := newTestOrchestrator(t, gw)

		res, err := orc.CreateAndStart(newTraceCtx(), validCreateInput(), StartInput{PaymentMethod: "IDEAL"})
		require.NoError(t, err)
		assert.True(t, res.Successful)
		assert.Equal(t, "KEY123", res.TransactionReference)
		assert.Equal(t, "https://pay.example.com/KEY123", res.RedirectURL)
		assert.Equal(t, []string{adapter.OpCreate, adapter.OpStart}, operations(gw.Calls()))
	})

	t.Run("FailedCreateSkipsStart", func(t *testing.T) {
		gw := adaptermock.NewMockAdapter("mock")
		gw.CreateFunc = func(_ context.CallContext, _ adapter.CreateRequest) (adapter.CreateResponse, error) {
			return adapter.CreateResponse{CreateErrors: gatewayErrors("REQUEST_DATA_INCORRECT", "Duplicate merchant order reference")}, nil
		}
		orc, _ := newTestOrchestrator(t, gw)

		res, err := orc.CreateAndStart(newTraceCtx(), validCreateInput(), StartInput{PaymentMethod: "IDEAL"})
		require.NoError(t, err)
		assert.False(t, res.Successful)
		assert.Equal(t, "Duplicate merchant order reference", res.Message)
		assert.Equal(t, []string{adapter.OpCreate}, operations(gw.Calls()))
	})

	t.Run("FailedStartFailsResult", func(t *testing.T) {
		gw := adaptermock.NewMockAdapter("mock")
		gw.StartFunc = func(_ context.CallContext, _ adapter.StartRequest) (adapter.StartResponse, error) {
			return adapter.StartResponse{StartErrors: gatewayErrors("REQUEST_DATA_INCORRECT", "Unknown payment method")}, nil
		}
		orc, _ := newTestOrchestrator(t, gw)

		res, err := orc.CreateAndStart(newTraceCtx(), validCreateInput(), StartInput{PaymentMethod: "NOPE"})
		require.NoError(t, err)
		assert.False(t, res.Successful)
		assert.Equal(t, adapter.OpStart, res.Operation)
		assert.NotEmpty(t, res.TransactionReference, "the created order key is kept")
	})
}

func TestCancel(t *testing.T) {
	gw := adaptermock.NewMockAdapter("mock")
	orc, _ := newTestOrchestrator(t, gw)

	res, err := orc.Cancel(newTraceCtx(), CancelInput{MerchantID: testMerchantID, OrderKey: "K1"})
	require.NoError(t, err)
	assert.True(t, res.Successful)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "K1", gw.CallsFor(adapter.OpCancel)[0].OrderKey)

	gw.CancelFunc = func(_ context.CallContext, _ adapter.CancelRequest) (adapter.CancelResponse, error) {
		return adapter.CancelResponse{}, &adapter.TransportError{Operation: adapter.OpCancel, Err: errors.New("timeout")}
	}
	_, err = orc.Cancel(newTraceCtx(), CancelInput{MerchantID: testMerchantID, OrderKey: "K1"})
	assert.True(t, adapter.IsTransportError(err))
}
