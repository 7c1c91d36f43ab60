package adapter

import (
	"encoding/xml"
	"sort"

	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Namespace is the default namespace of every request element.
const Namespace = "http://www.docdatapayments.com/services/paymentservice/1_3/"

// APIVersion is sent as the version attribute of every request element.
const APIVersion = "1.3"

// Success codes used by the gateway.
const (
	CodeSuccess = "SUCCESS"
)

// Merchant identifies the merchant inside a request element.
type Merchant struct {
	Name     string `xml:"name,attr"`
	Password string `xml:"password,attr"`
}

// RequestHeader is embedded in every request. The transport fills it in.
type RequestHeader struct {
	Version  string   `xml:"version,attr"`
	Merchant Merchant `xml:"merchant"`
}

// SetHeader replaces the envelope header.
func (h *RequestHeader) SetHeader(v RequestHeader) { *h = v }

// MethodInput is a payment-method specific block such as an
// iDealAuthorizationResult. It is encoded as an element named Type whose
// children are Fields, in key order.
type MethodInput struct {
	Type   string
	Fields map[string]string
}

// Empty reports whether there is nothing to send.
func (m MethodInput) Empty() bool { return m.Type == "" }

func (m MethodInput) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if m.Empty() {
		return nil
	}
	start := xml.StartElement{Name: xml.Name{Local: m.Type}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := e.EncodeElement(m.Fields[k], xml.StartElement{Name: xml.Name{Local: k}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// CodeAttr is an element carrying only a code attribute, like <country code="NL"/>.
type CodeAttr struct {
	Code string `xml:"code,attr"`
}

// Name is a shopper or bill-to name.
type Name struct {
	Prefix   string `xml:"prefix,omitempty"`
	Initials string `xml:"initials,omitempty"`
	First    string `xml:"first"`
	Last     string `xml:"last"`
}

// Address is a bill-to address.
type Address struct {
	Street              string   `xml:"street"`
	HouseNumber         string   `xml:"houseNumber"`
	HouseNumberAddition string   `xml:"houseNumberAddition,omitempty"`
	PostalCode          string   `xml:"postalCode"`
	City                string   `xml:"city"`
	State               string   `xml:"state,omitempty"`
	Country             CodeAttr `xml:"country"`
}

// Shopper describes the paying customer.
type Shopper struct {
	ID          string   `xml:"id,attr"`
	Name        Name     `xml:"name"`
	Email       string   `xml:"email"`
	Language    CodeAttr `xml:"language"`
	Gender      string   `xml:"gender"`
	PhoneNumber string   `xml:"phoneNumber,omitempty"`
}

// BillTo is the billing party.
type BillTo struct {
	Name    Name    `xml:"name"`
	Address Address `xml:"address"`
}

// PaymentPreferences control the hosted payment page.
type PaymentPreferences struct {
	Profile           string `xml:"profile"`
	NumberOfDaysToPay int    `xml:"numberOfDaysToPay"`
}

// CreateRequest registers a new payment order.
type CreateRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ createRequest"`
	RequestHeader
	MerchantOrderReference string             `xml:"merchantOrderReference"`
	PaymentPreferences     PaymentPreferences `xml:"paymentPreferences"`
	Shopper                Shopper            `xml:"shopper"`
	TotalGrossAmount       report.Amount      `xml:"totalGrossAmount"`
	BillTo                 BillTo             `xml:"billTo"`
	Description            string             `xml:"description,omitempty"`
	ReceiptText            string             `xml:"receiptText,omitempty"`
}

// StartPayment is the payment block of a start request.
type StartPayment struct {
	PaymentMethod string      `xml:"paymentMethod"`
	Input         MethodInput `xml:"input"`
}

// StartRequest starts a payment on an existing order.
type StartRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ startRequest"`
	RequestHeader
	PaymentOrderKey string       `xml:"paymentOrderKey"`
	ReturnURL       string       `xml:"returnUrl,omitempty"`
	Payment         StartPayment `xml:"payment"`
}

// StatusRequest asks for the payment report of an order. The transport sets
// XMLName, since status and statusExtended share the body.
type StatusRequest struct {
	XMLName xml.Name
	RequestHeader
	PaymentOrderKey string `xml:"paymentOrderKey"`
}

// CaptureRequest captures an authorized attempt. A nil Amount captures the
// authorized amount.
type CaptureRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ captureRequest"`
	RequestHeader
	PaymentID                report.PaymentID `xml:"paymentId"`
	MerchantCaptureReference string           `xml:"merchantCaptureReference,omitempty"`
	Amount                   *report.Amount   `xml:"amount,omitempty"`
}

// ProceedRequest completes the follow-up step of one attempt.
type ProceedRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ proceedRequest"`
	RequestHeader
	PaymentID           report.PaymentID `xml:"paymentId"`
	AuthorizationResult MethodInput      `xml:"authorizationResult"`
}

// RefundRequest refunds part or all of a captured attempt.
type RefundRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ refundRequest"`
	RequestHeader
	PaymentID               report.PaymentID `xml:"paymentId"`
	MerchantRefundReference string           `xml:"merchantRefundReference,omitempty"`
	Amount                  report.Amount    `xml:"amount"`
}

// CancelRequest cancels an order.
type CancelRequest struct {
	XMLName xml.Name `xml:"http://www.docdatapayments.com/services/paymentservice/1_3/ cancelRequest"`
	RequestHeader
	PaymentOrderKey string `xml:"paymentOrderKey"`
}

// Success is the success element of a response.
type Success struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// OK reports whether the gateway answered with the SUCCESS code.
func (s Success) OK() bool { return s.Code == CodeSuccess }

// Error is one error element of a response.
type Error struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// Errors is the error branch of a response.
type Errors struct {
	Errors []Error `xml:"error"`
}

// First returns the first reported error, or a zero Error.
func (e *Errors) First() Error {
	if e == nil || len(e.Errors) == 0 {
		return Error{}
	}
	return e.Errors[0]
}

// Outcome is a success branch that carries nothing but the success element.
type Outcome struct {
	Success Success `xml:"success"`
}

// PaymentSuccess is the outcome of one payment attempt.
type PaymentSuccess struct {
	Status string           `xml:"status"`
	ID     report.PaymentID `xml:"id"`
}

// PaymentRedirect tells the shopper where to go next.
type PaymentRedirect struct {
	URL    string `xml:"redirectUrl"`
	Method string `xml:"method,omitempty"`
}

// PaymentResponse is embedded in start and proceed successes.
type PaymentResponse struct {
	PaymentSuccess  *PaymentSuccess  `xml:"paymentSuccess"`
	PaymentRedirect *PaymentRedirect `xml:"paymentRedirect"`
	PaymentError    *Error           `xml:"paymentError"`
}

// CreateSuccess carries the issued order key.
type CreateSuccess struct {
	Success Success `xml:"success"`
	Key     string  `xml:"key"`
}

// CreateResponse is the answer to a create call.
type CreateResponse struct {
	CreateSuccess *CreateSuccess `xml:"createSuccess"`
	CreateErrors  *Errors        `xml:"createErrors"`
}

// StartSuccess is the success branch of a start call.
type StartSuccess struct {
	Success         Success         `xml:"success"`
	PaymentResponse PaymentResponse `xml:"paymentResponse"`
}

// StartResponse is the answer to a start call.
type StartResponse struct {
	StartSuccess *StartSuccess `xml:"startSuccess"`
	StartErrors  *Errors       `xml:"startErrors"`
}

// StatusSuccess carries the payment report.
type StatusSuccess struct {
	Success Success       `xml:"success"`
	Report  report.Report `xml:"report"`
}

// StatusResponse is the answer to status and statusExtended calls.
type StatusResponse struct {
	StatusSuccess *StatusSuccess `xml:"statusSuccess"`
	StatusErrors  *Errors        `xml:"statusErrors"`
}

// CaptureResponse is the answer to a capture call.
type CaptureResponse struct {
	CaptureSuccess *Outcome `xml:"captureSuccess"`
	CaptureErrors  *Errors  `xml:"captureErrors"`
}

// ProceedSuccess is the success branch of a proceed call.
type ProceedSuccess struct {
	Success         Success         `xml:"success"`
	PaymentResponse PaymentResponse `xml:"paymentResponse"`
}

// ProceedResponse is the answer to a proceed call.
type ProceedResponse struct {
	ProceedSuccess *ProceedSuccess `xml:"proceedSuccess"`
	ProceedErrors  *Errors         `xml:"proceedErrors"`
}

// RefundResponse is the answer to a refund call.
type RefundResponse struct {
	RefundSuccess *Outcome `xml:"refundSuccess"`
	RefundErrors  *Errors  `xml:"refundErrors"`
}

// CancelResponse is the answer to a cancel call.
type CancelResponse struct {
	CancelSuccess *Outcome `xml:"cancelSuccess"`
	CancelErrors  *Errors  `xml:"cancelErrors"`
}
