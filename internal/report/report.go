// Package report models the payment report returned by the gateway's status
// operations and turns it into an ordered list of payment attempts.
//
// The gateway sends the payment field (and the capture records under each
// authorization) either as a single object or as a list. Decoding is the only
// place that shape is looked at: everything past this package sees slices.
package report

import (
	"bytes"
	"encoding/json"
)

// Amount is a minor-unit amount with its ISO 4217 currency.
type Amount struct {
	Value    int64  `xml:",chardata" json:"value"`
	Currency string `xml:"currency,attr" json:"currency"`
}

// PaymentID is the gateway-assigned attempt id. JSON reports carry it as a
// number or a string.
type PaymentID string

func (id *PaymentID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = PaymentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = PaymentID(n.String())
	return nil
}

func (id PaymentID) String() string { return string(id) }

// ApproximateTotals are the order-level counters kept by the gateway.
type ApproximateTotals struct {
	Registered       int64  `xml:"totalRegistered" json:"totalRegistered"`
	ShopperPending   int64  `xml:"totalShopperPending" json:"totalShopperPending"`
	AcquirerPending  int64  `xml:"totalAcquirerPending" json:"totalAcquirerPending"`
	AcquirerApproved int64  `xml:"totalAcquirerApproved" json:"totalAcquirerApproved"`
	Captured         int64  `xml:"totalCaptured" json:"totalCaptured"`
	Refunded         int64  `xml:"totalRefunded" json:"totalRefunded"`
	Chargedback      int64  `xml:"totalChargedback" json:"totalChargedback"`
	Reversed         int64  `xml:"totalReversed" json:"totalReversed"`
	ExchangedTo      string `xml:"exchangedTo,attr,omitempty" json:"exchangedTo,omitempty"`
	ExchangeRateDate string `xml:"exchangeRateDate,attr,omitempty" json:"exchangeRateDate,omitempty"`
}

// FullyCaptured reports whether everything registered on the order has been captured.
func (t *ApproximateTotals) FullyCaptured() bool {
	return t != nil && t.Registered > 0 && t.Registered == t.Captured
}

// FullyApproved reports whether the acquirer approved everything registered on the order.
func (t *ApproximateTotals) FullyApproved() bool {
	return t != nil && t.Registered > 0 && t.Registered == t.AcquirerApproved
}

// Capture is one capture record under an authorization.
type Capture struct {
	Status CaptureState `xml:"status" json:"status"`
	Amount *Amount      `xml:"amount,omitempty" json:"amount,omitempty"`
}

// Marker is a refund, chargeback, reversal or cancellation record.
type Marker struct {
	Status string  `xml:"status,omitempty" json:"status,omitempty"`
	Amount *Amount `xml:"amount,omitempty" json:"amount,omitempty"`
}

// Captures decodes a JSON capture field that is absent, one object or a list.
type Captures []Capture

func (c *Captures) UnmarshalJSON(data []byte) error {
	many, err := decodeOneOrMany[Capture](data)
	*c = many
	return err
}

// Markers decodes a JSON marker field that is absent, one object or a list.
type Markers []Marker

func (m *Markers) UnmarshalJSON(data []byte) error {
	many, err := decodeOneOrMany[Marker](data)
	*m = many
	return err
}

// Authorization is the authorization part of a payment attempt.
type Authorization struct {
	Status          AuthorizationState `xml:"status" json:"status"`
	Amount          *Amount            `xml:"amount,omitempty" json:"amount,omitempty"`
	ConfidenceLevel string             `xml:"confidenceLevel,omitempty" json:"confidenceLevel,omitempty"`
	Captures        Captures           `xml:"capture" json:"capture,omitempty"`
	Refunds         Markers            `xml:"refund" json:"refund,omitempty"`
	Chargebacks     Markers            `xml:"chargeback" json:"chargeback,omitempty"`
	Reversals       Markers            `xml:"reversal" json:"reversal,omitempty"`
	Cancellation    *Marker            `xml:"cancellation,omitempty" json:"cancellation,omitempty"`
}

// Attempt is one try at paying an order.
type Attempt struct {
	ID            PaymentID     `xml:"id" json:"id"`
	PaymentMethod string        `xml:"paymentMethod" json:"paymentMethod"`
	Authorization Authorization `xml:"authorization" json:"authorization"`
}

// Payments decodes a JSON payment field that is absent, one object or a list.
type Payments []Attempt

func (p *Payments) UnmarshalJSON(data []byte) error {
	many, err := decodeOneOrMany[Attempt](data)
	*p = many
	return err
}

// ConsideredSafe is the gateway's fraud verdict on the order.
type ConsideredSafe struct {
	Value  bool   `xml:"value" json:"value"`
	Level  string `xml:"level,omitempty" json:"level,omitempty"`
	Date   string `xml:"date,omitempty" json:"date,omitempty"`
	Reason string `xml:"reason,omitempty" json:"reason,omitempty"`
}

// Report is the body of a successful status or statusExtended call.
type Report struct {
	Totals         *ApproximateTotals `xml:"approximateTotals" json:"approximateTotals,omitempty"`
	Payments       Payments           `xml:"payment" json:"payment,omitempty"`
	ConsideredSafe *ConsideredSafe    `xml:"consideredSafe,omitempty" json:"consideredSafe,omitempty"`
}

func decodeOneOrMany[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
