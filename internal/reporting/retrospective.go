// Package reporting keeps a bounded, in-memory journal of payment outcomes
// and summarizes it into retrospective reports.
package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// LogEntry records the outcome of one ProcessPayment call.
type LogEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
	Reference string          `json:"reference"`
	Method    string          `json:"method"`
	Strategy  string          `json:"strategy,omitempty"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Duration  time.Duration   `json:"duration_ns"`
}

// RetrospectiveReport summarizes payment activity over a set of log entries.
type RetrospectiveReport struct {
	TotalRequests         int                        `json:"total_requests"`
	SuccessfulPayments    int                        `json:"successful_payments"`
	FailedPayments        int                        `json:"failed_payments"`
	AmountByCurrency      map[string]decimal.Decimal `json:"amount_by_currency"` // successful payments only
	FeesByCurrency        map[string]decimal.Decimal `json:"fees_by_currency"`   // successful payments only
	MethodUsage           map[string]int             `json:"method_usage"`
	FailureBreakdown      map[string]int             `json:"failure_breakdown"` // keyed by result message
	DateFrom              time.Time                  `json:"date_from"`
	DateTo                time.Time                  `json:"date_to"`
	ProcessingDuration    time.Duration              `json:"processing_duration_ns"` // DateTo - DateFrom
	AverageProcessingTime time.Duration              `json:"average_processing_time_ns"`
}

// RetrospectiveReporter generates retrospective reports from log entries.
type RetrospectiveReporter struct{}

// NewRetrospectiveReporter creates a new RetrospectiveReporter.
func NewRetrospectiveReporter() *RetrospectiveReporter {
	return &RetrospectiveReporter{}
}

func newReport() *RetrospectiveReport {
	return &RetrospectiveReport{
		AmountByCurrency: make(map[string]decimal.Decimal),
		FeesByCurrency:   make(map[string]decimal.Decimal),
		MethodUsage:      make(map[string]int),
		FailureBreakdown: make(map[string]int),
	}
}

// GenerateRetrospective analyzes entries and produces a RetrospectiveReport.
// Entries need not be sorted.
func (rr *RetrospectiveReporter) GenerateRetrospective(entries []LogEntry) (*RetrospectiveReport, error) {
	report := newReport()
	if len(entries) == 0 {
		return report, nil
	}

	report.DateFrom = entries[0].Timestamp
	report.DateTo = entries[0].Timestamp

	var totalDuration time.Duration
	for _, e := range entries {
		report.TotalRequests++
		totalDuration += e.Duration

		if e.Timestamp.Before(report.DateFrom) {
			report.DateFrom = e.Timestamp
		}
		if e.Timestamp.After(report.DateTo) {
			report.DateTo = e.Timestamp
		}

		if e.Method != "" {
			report.MethodUsage[e.Method]++
		}

		if e.Success {
			report.SuccessfulPayments++
			report.AmountByCurrency[e.Currency] = report.AmountByCurrency[e.Currency].Add(e.Amount)
			report.FeesByCurrency[e.Currency] = report.FeesByCurrency[e.Currency].Add(e.Fee)
			continue
		}
		report.FailedPayments++
		if e.Message != "" {
			report.FailureBreakdown[e.Message]++
		}
	}

	report.ProcessingDuration = report.DateTo.Sub(report.DateFrom)
	report.AverageProcessingTime = totalDuration / time.Duration(report.TotalRequests)
	return report, nil
}
