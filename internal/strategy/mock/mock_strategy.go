package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

// MockStrategy is a scriptable implementation of strategy.Strategy for tests
// and demos. It counts invocations and is safe for concurrent use.
type MockStrategy struct {
	StrategyName string
	ProcessFunc  func(ctx context.Context, req *domain.PaymentRequest, call int) (domain.PaymentResult, error)

	mu    sync.Mutex
	calls int
}

// NewMockStrategy creates a new MockStrategy.
func NewMockStrategy(name string) *MockStrategy {
	return &MockStrategy{StrategyName: name}
}

// Process implements strategy.Strategy.
// It calls ProcessFunc with the 1-based call number if defined, otherwise
// returns a default successful result.
func (m *MockStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	fn := m.ProcessFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req, call)
	}

	startTime := time.Now()
	return domain.Succeeded("Mock payment processed", "MK-"+uuid.NewString(), decimal.Zero, time.Since(startTime)), nil
}

// Name implements strategy.Strategy.
func (m *MockStrategy) Name() string {
	return m.StrategyName
}

// Calls reports how many times Process has been invoked.
func (m *MockStrategy) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FailFirst returns a ProcessFunc that fails the first n calls with message
// and succeeds afterwards.
func FailFirst(n int, message string) func(context.Context, *domain.PaymentRequest, int) (domain.PaymentResult, error) {
	return func(_ context.Context, req *domain.PaymentRequest, call int) (domain.PaymentResult, error) {
		if call <= n {
			return domain.Failed(message, time.Millisecond), nil
		}
		return domain.Succeeded("Mock payment processed", "MK-"+req.Reference(), decimal.Zero, time.Millisecond), nil
	}
}

// AlwaysFail returns a ProcessFunc that reports a business failure on every call.
func AlwaysFail(message string) func(context.Context, *domain.PaymentRequest, int) (domain.PaymentResult, error) {
	return func(context.Context, *domain.PaymentRequest, int) (domain.PaymentResult, error) {
		return domain.Failed(message, time.Millisecond), nil
	}
}

// Fault returns a ProcessFunc that always returns err.
func Fault(err error) func(context.Context, *domain.PaymentRequest, int) (domain.PaymentResult, error) {
	return func(context.Context, *domain.PaymentRequest, int) (domain.PaymentResult, error) {
		return domain.PaymentResult{}, err
	}
}
