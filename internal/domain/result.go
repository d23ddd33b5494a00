package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentResult is the outcome of processing a PaymentRequest.
// A failed result is ordinary data (e.g. missing metadata), not an error.
type PaymentResult struct {
	Success        bool
	Message        string
	TransactionID  string           // empty when the provider issued none
	Fee            *decimal.Decimal // nil when no fee was computed
	ProcessingTime time.Duration    // measured wall-clock time, 0 when not reported
}

// Succeeded builds a successful result.
func Succeeded(message, transactionID string, fee decimal.Decimal, elapsed time.Duration) PaymentResult {
	return PaymentResult{
		Success:        true,
		Message:        message,
		TransactionID:  transactionID,
		Fee:            &fee,
		ProcessingTime: elapsed,
	}
}

// Failed builds a failed result carrying only a message and the elapsed time.
func Failed(message string, elapsed time.Duration) PaymentResult {
	return PaymentResult{
		Success:        false,
		Message:        message,
		ProcessingTime: elapsed,
	}
}

// resultJSON is the wire shape used by the HTTP layer and the CLI.
type resultJSON struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message"`
	TransactionID    string           `json:"transaction_id,omitempty"`
	Fee              *decimal.Decimal `json:"fee,omitempty"`
	ProcessingTimeMs float64          `json:"processing_time_ms"`
}

// MarshalJSON reports the processing time in fractional milliseconds.
func (r PaymentResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:          r.Success,
		Message:          r.Message,
		TransactionID:    r.TransactionID,
		Fee:              r.Fee,
		ProcessingTimeMs: float64(r.ProcessingTime) / float64(time.Millisecond),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *PaymentResult) UnmarshalJSON(data []byte) error {
	var aux resultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Success = aux.Success
	r.Message = aux.Message
	r.TransactionID = aux.TransactionID
	r.Fee = aux.Fee
	r.ProcessingTime = time.Duration(aux.ProcessingTimeMs * float64(time.Millisecond))
	return nil
}
