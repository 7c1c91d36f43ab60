// Package reporting summarizes journal entries for operations staff.
package reporting

import (
	"time"

	"github.com/yourorg/docdata-orchestrator/internal/journal"
)

// RetrospectiveReport summarizes operation outcomes over a set of journal entries.
type RetrospectiveReport struct {
	TotalOperations    int            `json:"totalOperations"`
	Successful         int            `json:"successful"`
	Failed             int            `json:"failed"`
	Synthesized        int            `json:"synthesized"` // answered locally, without an action call
	OrdersTouched      int            `json:"ordersTouched"`
	ByOperation        map[string]int `json:"byOperation"`
	ErrorBreakdown     map[string]int `json:"errorBreakdown"` // failed entries by code
	DateFrom           time.Time      `json:"dateFrom"`
	DateTo             time.Time      `json:"dateTo"`
	ProcessingDuration time.Duration  `json:"processingDuration"`
}

// RetrospectiveReporter generates retrospective reports from journal entries.
type RetrospectiveReporter struct{}

func NewRetrospectiveReporter() *RetrospectiveReporter {
	return &RetrospectiveReporter{}
}

// GenerateRetrospective analyzes entries in any order.
func (rr *RetrospectiveReporter) GenerateRetrospective(entries []journal.Entry) (*RetrospectiveReport, error) {
	report := &RetrospectiveReport{
		ByOperation:    make(map[string]int),
		ErrorBreakdown: make(map[string]int),
	}
	if len(entries) == 0 {
		return report, nil
	}

	orders := make(map[string]struct{})
	report.DateFrom = entries[0].Timestamp
	report.DateTo = entries[0].Timestamp

	for _, e := range entries {
		report.TotalOperations++
		if e.Timestamp.Before(report.DateFrom) {
			report.DateFrom = e.Timestamp
		}
		if e.Timestamp.After(report.DateTo) {
			report.DateTo = e.Timestamp
		}
		if e.Operation != "" {
			report.ByOperation[e.Operation]++
		}
		if e.OrderKey != "" {
			orders[e.OrderKey] = struct{}{}
		}
		if e.Synthesized {
			report.Synthesized++
		}

		if e.Successful {
			report.Successful++
			continue
		}
		report.Failed++
		if e.Code != "" {
			report.ErrorBreakdown[e.Code]++
		}
	}

	report.OrdersTouched = len(orders)
	report.ProcessingDuration = report.DateTo.Sub(report.DateFrom)
	return report, nil
}
