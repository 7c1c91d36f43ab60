package report

// Classification holds the predicates derived from one attempt. Unknown
// states never make an attempt look done.
type Classification struct {
	Authorized     bool
	Cancelled      bool
	Captured       bool
	Capturable     bool
	PendingPromise bool
	Proceedable    bool
	HasCapture     bool
	HasRefund      bool
	HasChargeback  bool
	HasReversal    bool
	FullyProcessed bool
}

// Classify evaluates an attempt against the known state vocabulary.
func Classify(a Attempt) Classification {
	auth := a.Authorization
	c := Classification{
		HasCapture:    len(auth.Captures) > 0,
		HasRefund:     len(auth.Refunds) > 0,
		HasChargeback: len(auth.Chargebacks) > 0,
		HasReversal:   len(auth.Reversals) > 0,
	}

	c.Cancelled = auth.Status.Is(StateCanceled) || auth.Cancellation != nil
	c.Authorized = auth.Status.Is(StateAuthorized) && !c.Cancelled

	if c.HasCapture {
		c.Captured = true
		for _, capture := range auth.Captures {
			if !capture.Status.Terminal() {
				c.Captured = false
			}
			if capture.Status.Started() {
				c.PendingPromise = c.Authorized
			}
		}
	}

	c.Capturable = c.Authorized && !c.Captured
	c.Proceedable = auth.Status.Proceedable() &&
		!c.HasCapture && !c.HasRefund && !c.HasChargeback && !c.HasReversal
	c.FullyProcessed = c.Captured || c.HasRefund || c.HasChargeback || c.HasReversal
	return c
}
