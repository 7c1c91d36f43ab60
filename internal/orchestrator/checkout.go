package orchestrator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/report"
	"github.com/yourorg/docdata-orchestrator/internal/result"
)

// NameInput is a person's name as the gateway accepts it.
type NameInput struct {
	Title     string `json:"title" validate:"max=50"`
	Initials  string `json:"initials" validate:"max=35"`
	FirstName string `json:"firstName" validate:"required,max=35"`
	LastName  string `json:"lastName" validate:"required,max=35"`
}

// AddressInput is a billing address.
type AddressInput struct {
	Street              string `json:"street" validate:"required,max=100"`
	HouseNumber         string `json:"houseNumber" validate:"required,max=35"`
	HouseNumberAddition string `json:"houseNumberAddition" validate:"max=35"`
	PostalCode          string `json:"postalCode" validate:"required,max=50"`
	City                string `json:"city" validate:"required,max=35"`
	State               string `json:"state" validate:"max=35"`
	Country             string `json:"country" validate:"required,iso3166_1_alpha2,uppercase"`
}

// ShopperInput describes the customer paying the order.
type ShopperInput struct {
	ID       string    `json:"id" validate:"required,max=50"`
	Name     NameInput `json:"name"`
	Email    string    `json:"email" validate:"required,email,max=100"`
	Language string    `json:"language" validate:"omitempty,len=2,lowercase"`
	Gender   string    `json:"gender"`
	Phone    string    `json:"phone" validate:"max=50"`
}

// CreateInput registers a new order.
type CreateInput struct {
	MerchantID             string       `json:"-"`
	MerchantOrderReference string       `json:"merchantOrderReference" validate:"required,max=50"`
	Amount                 int64        `json:"amount" validate:"gt=0"`
	Currency               string       `json:"currency" validate:"required,len=3,alpha,uppercase"`
	Description            string       `json:"description" validate:"max=50"`
	ReceiptText            string       `json:"receiptText" validate:"max=50"`
	Shopper                ShopperInput `json:"shopper"`
	BillTo                 *NameInput   `json:"billToName,omitempty" validate:"omitempty"`
	Address                AddressInput `json:"address"`
	PaymentProfile         string       `json:"paymentProfile"`
	PaymentDays            int          `json:"paymentDays" validate:"gte=0"`
}

// StartInput starts a payment with a given method on an existing order.
type StartInput struct {
	MerchantID    string            `json:"-"`
	OrderKey      string            `json:"-"`
	PaymentMethod string            `json:"paymentMethod" validate:"required"`
	ReturnURL     string            `json:"returnUrl" validate:"omitempty,url"`
	InputType     string            `json:"inputType"`
	Input         map[string]string `json:"input"`
}

type CancelInput struct {
	MerchantID string
	OrderKey   string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct reports the first failed rule as a *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.SplitN(fe.Namespace(), ".", 2)
		name := fe.Field()
		if len(field) == 2 {
			name = field[1]
		}
		reason := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		if fe.Param() != "" {
			reason = fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
		}
		return &ValidationError{Field: name, Reason: reason}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}

// gender maps free input onto the gateway's M, F or U.
func gender(g string) string {
	switch strings.ToUpper(strings.TrimSpace(g)) {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	default:
		return "U"
	}
}

func (o *Orchestrator) buildCreateRequest(in CreateInput, merchant context.MerchantConfig) adapter.CreateRequest {
	language := in.Shopper.Language
	if language == "" {
		language = merchant.Language
	}
	if language == "" {
		language = "en"
	}
	profile := in.PaymentProfile
	if profile == "" {
		profile = merchant.PaymentProfile
	}
	days := in.PaymentDays
	if days == 0 {
		days = merchant.PaymentDays
	}
	billTo := in.Shopper.Name
	if in.BillTo != nil {
		billTo = *in.BillTo
	}
	return adapter.CreateRequest{
		MerchantOrderReference: in.MerchantOrderReference,
		PaymentPreferences: adapter.PaymentPreferences{
			Profile:           profile,
			NumberOfDaysToPay: days,
		},
		Shopper: adapter.Shopper{
			ID: in.Shopper.ID,
			Name: adapter.Name{
				Prefix:   in.Shopper.Name.Title,
				Initials: in.Shopper.Name.Initials,
				First:    in.Shopper.Name.FirstName,
				Last:     in.Shopper.Name.LastName,
			},
			Email:       in.Shopper.Email,
			Language:    adapter.CodeAttr{Code: language},
			Gender:      gender(in.Shopper.Gender),
			PhoneNumber: in.Shopper.Phone,
		},
		TotalGrossAmount: report.Amount{Value: in.Amount, Currency: in.Currency},
		BillTo: adapter.BillTo{
			Name: adapter.Name{
				Prefix:   billTo.Title,
				Initials: billTo.Initials,
				First:    billTo.FirstName,
				Last:     billTo.LastName,
			},
			Address: adapter.Address{
				Street:              in.Address.Street,
				HouseNumber:         in.Address.HouseNumber,
				HouseNumberAddition: in.Address.HouseNumberAddition,
				PostalCode:          in.Address.PostalCode,
				City:                in.Address.City,
				State:               in.Address.State,
				Country:             adapter.CodeAttr{Code: in.Address.Country},
			},
		},
		Description: in.Description,
		ReceiptText: in.ReceiptText,
	}
}

// Create registers a new order. The issued order key is the result's
// transaction reference.
func (o *Orchestrator) Create(tc context.TraceContext, in CreateInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Create", adapter.OpCreate, in.MerchantID, "")
	defer r.end()
	if err == nil {
		err = validateStruct(in)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	r.transition(ActionDispatched)
	req := o.buildCreateRequest(in, r.dc.ActiveMerchantConfig)
	resp, err := o.gateway.Create(r.ctx, r.call(adapter.OpCreate), req)
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	res := result.FromCreate(resp, result.Reference{})
	r.orderKey = res.TransactionReference
	return r.finish(res, outcomeDispatched, ""), nil
}

// Start starts a payment on an existing order and returns the redirect the
// shopper has to follow, if any.
func (o *Orchestrator) Start(tc context.TraceContext, in StartInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Start", adapter.OpStart, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = required("orderKey", in.OrderKey)
	}
	if err == nil {
		err = validateStruct(in)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	r.transition(ActionDispatched)
	resp, err := o.gateway.Start(r.ctx, r.call(adapter.OpStart), adapter.StartRequest{
		PaymentOrderKey: in.OrderKey,
		ReturnURL:       in.ReturnURL,
		Payment: adapter.StartPayment{
			PaymentMethod: in.PaymentMethod,
			Input:         adapter.MethodInput{Type: in.InputType, Fields: in.Input},
		},
	})
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	return r.finish(result.FromStart(resp, result.Reference{OrderKey: in.OrderKey}), outcomeDispatched, ""), nil
}

// CreateAndStart creates an order and starts a payment on it with the
// issued key. The start outcome (payment id, redirect, failure) is attached
// to the create result. A failed create skips the start call.
func (o *Orchestrator) CreateAndStart(tc context.TraceContext, create CreateInput, start StartInput) (result.OperationResult, error) {
	ctx, span := o.tracer.Start(tc.Context(), "Orchestrator.CreateAndStart")
	defer span.End()
	tc = tc.WithContext(ctx)

	created, err := o.Create(tc, create)
	if err != nil || !created.Successful {
		return created, err
	}

	start.MerchantID = create.MerchantID
	start.OrderKey = created.TransactionReference
	started, err := o.Start(tc, start)
	if err != nil {
		return created, err
	}

	created.PaymentID = started.PaymentID
	created.PaymentStatus = started.PaymentStatus
	created.RedirectURL = started.RedirectURL
	if !started.Successful {
		created.Operation = started.Operation
		created.Successful = false
		created.Code = started.Code
		created.Message = started.Message
	}
	return created, nil
}

// Cancel cancels an order.
func (o *Orchestrator) Cancel(tc context.TraceContext, in CancelInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Cancel", adapter.OpCancel, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = required("orderKey", in.OrderKey)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	r.transition(ActionDispatched)
	resp, err := o.gateway.Cancel(r.ctx, r.call(adapter.OpCancel), adapter.CancelRequest{PaymentOrderKey: in.OrderKey})
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	return r.finish(result.FromCancel(resp, result.Reference{OrderKey: in.OrderKey}), outcomeDispatched, ""), nil
}
