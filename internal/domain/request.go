// Package domain holds the value types shared by every payment strategy:
// the request a caller submits, the result a strategy produces, the closed
// set of payment method identifiers, and the error taxonomy used to tell
// invalid input apart from business failures.
package domain

import (
	"maps"

	"github.com/shopspring/decimal"
)

// PaymentRequest describes a single payment attempt.
// It is validated once at construction and never mutated afterwards;
// strategies and the processor only read it.
type PaymentRequest struct {
	amount    decimal.Decimal
	currency  string
	reference string
	metadata  map[string]any
}

// NewPaymentRequest validates and builds a PaymentRequest.
// A non-positive amount or an empty reference fails with *ValidationError.
// The metadata map is copied, so later changes by the caller are not observed.
func NewPaymentRequest(amount decimal.Decimal, currency, reference string, metadata map[string]any) (*PaymentRequest, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "payment amount must be positive"}
	}
	if reference == "" {
		return nil, &ValidationError{Field: "reference", Reason: "reference cannot be empty"}
	}

	var md map[string]any
	if metadata != nil {
		md = maps.Clone(metadata)
	}

	return &PaymentRequest{
		amount:    amount,
		currency:  currency,
		reference: reference,
		metadata:  md,
	}, nil
}

// MustPaymentRequest is like NewPaymentRequest but panics on invalid input.
// Intended for tests and fixed demo data.
func MustPaymentRequest(amount decimal.Decimal, currency, reference string, metadata map[string]any) *PaymentRequest {
	req, err := NewPaymentRequest(amount, currency, reference, metadata)
	if err != nil {
		panic(err)
	}
	return req
}

func (r *PaymentRequest) Amount() decimal.Decimal { return r.amount }
func (r *PaymentRequest) Currency() string        { return r.currency }
func (r *PaymentRequest) Reference() string       { return r.reference }

// MetadataValue looks up a single metadata key.
func (r *PaymentRequest) MetadataValue(key string) (any, bool) {
	if r.metadata == nil {
		return nil, false
	}
	v, ok := r.metadata[key]
	return v, ok
}

// Metadata returns a copy of the request metadata (nil when none was given).
func (r *PaymentRequest) Metadata() map[string]any {
	if r.metadata == nil {
		return nil
	}
	return maps.Clone(r.metadata)
}
