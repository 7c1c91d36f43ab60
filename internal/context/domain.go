package context

import (
	"fmt"
	"time"
)

// MerchantConfig holds the gateway account of one merchant.
type MerchantConfig struct {
	ID             string
	Name           string // merchant name sent in every envelope
	Password       string
	TestMode       bool
	PaymentProfile string
	PaymentDays    int
	Language       string
	Timeout        time.Duration // per gateway call, connection and response
}

// Validate checks the fields the gateway envelope cannot do without.
func (m MerchantConfig) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("merchant %q: name is required", m.ID)
	}
	if m.Password == "" {
		return fmt.Errorf("merchant %q: password is required", m.ID)
	}
	return nil
}

// DomainContext carries the business data resolved for one caller request.
type DomainContext struct {
	MerchantID           string
	ActiveMerchantConfig MerchantConfig
}

// BuildDomainContext resolves a DomainContext for merchantID.
func BuildDomainContext(merchantID string, merchantCfg MerchantConfig) (DomainContext, error) {
	if merchantID == "" {
		return DomainContext{}, fmt.Errorf("merchant ID cannot be empty")
	}
	if err := merchantCfg.Validate(); err != nil {
		return DomainContext{}, err
	}
	return DomainContext{
		MerchantID:           merchantID,
		ActiveMerchantConfig: merchantCfg,
	}, nil
}

// Credentials returns the envelope credentials of the active merchant.
func (d DomainContext) Credentials() Credentials {
	return Credentials{
		MerchantName: d.ActiveMerchantConfig.Name,
		Password:     d.ActiveMerchantConfig.Password,
	}
}
