package report

// Attempts is an ordered list of payment attempts, oldest first.
type Attempts []Attempt

// Normalize turns a report into its attempts, oldest first. A nil report or a
// report without a payment field yields an empty list, never an error. The
// returned slice is a copy.
func Normalize(r *Report) Attempts {
	if r == nil || len(r.Payments) == 0 {
		return Attempts{}
	}
	out := make(Attempts, len(r.Payments))
	copy(out, r.Payments)
	return out
}

// MostRecent returns the last attempt added to the order.
func (a Attempts) MostRecent() (Attempt, bool) {
	if len(a) == 0 {
		return Attempt{}, false
	}
	return a[len(a)-1], true
}

// NewestFirst returns the attempts in reverse order.
func (a Attempts) NewestFirst() Attempts {
	out := make(Attempts, len(a))
	for i := range a {
		out[len(a)-1-i] = a[i]
	}
	return out
}
