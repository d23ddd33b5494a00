// Package processor is the single entry point callers use to pay. It
// resolves the strategy for a method, decorates it with the configured
// circuit breaker and retry policy, and converts every outcome, faults and
// panics included, into a PaymentResult.
package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/payment-strategy/internal/circuitbreaker"
	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/policy"
	"github.com/yourorg/payment-strategy/internal/reporting"
	"github.com/yourorg/payment-strategy/internal/retry"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

// DefaultMaxRetries is the attempt bound EnableRetry callers usually pass.
const DefaultMaxRetries = 3

const nilRequestMessage = "Payment processing failed: payment request cannot be nil"

// Resolver looks strategies up by method. *registry.Registry and
// *registry.Factory both satisfy it.
type Resolver interface {
	Resolve(method domain.Method) (strategy.Strategy, error)
	List() map[domain.Method]string
}

// Recorder receives one entry per ProcessPayment call.
type Recorder interface {
	Record(entry reporting.LogEntry)
}

// Option configures a Processor.
type Option func(*Processor)

// WithRetry enables retry from the start with the given attempt bound.
func WithRetry(maxRetries int) Option {
	return func(p *Processor) {
		p.retryEnabled = true
		p.maxRetries = clampRetries(maxRetries)
	}
}

// WithRetryOptions passes options to every retry decorator the processor builds.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(p *Processor) {
		p.retryOpts = append(p.retryOpts, opts...)
	}
}

// WithCircuitBreakers guards every strategy with the breaker for its method.
func WithCircuitBreakers(set *circuitbreaker.Set) Option {
	return func(p *Processor) {
		p.breakers = set
	}
}

// WithPolicy evaluates admission rules before a strategy is resolved.
func WithPolicy(enforcer *policy.PaymentPolicyEnforcer) Option {
	return func(p *Processor) {
		p.policy = enforcer
	}
}

// WithRecorder sends an entry per processed payment to r.
func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		p.recorder = r
	}
}

// Processor processes payments. It is safe for concurrent use.
type Processor struct {
	resolver  Resolver
	breakers  *circuitbreaker.Set
	policy    *policy.PaymentPolicyEnforcer
	recorder  Recorder
	retryOpts []retry.Option

	mu           sync.RWMutex
	retryEnabled bool
	maxRetries   int
}

// NewProcessor creates a Processor backed by resolver. Retry starts disabled
// unless WithRetry is given.
func NewProcessor(resolver Resolver, opts ...Option) *Processor {
	if resolver == nil {
		panic("strategy resolver cannot be nil")
	}
	p := &Processor{
		resolver:   resolver,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnableRetry makes subsequent calls retry failed results up to maxRetries
// attempts. Values below 1 are treated as 1.
func (p *Processor) EnableRetry(maxRetries int) {
	n := clampRetries(maxRetries)
	p.mu.Lock()
	p.retryEnabled = true
	p.maxRetries = n
	p.mu.Unlock()
	log.Printf("Processor: retry enabled with max %d attempts", n)
}

// DisableRetry makes subsequent calls invoke strategies once.
func (p *Processor) DisableRetry() {
	p.mu.Lock()
	p.retryEnabled = false
	p.mu.Unlock()
	log.Printf("Processor: retry disabled")
}

// RetryEnabled reports whether retry is on and the configured attempt bound.
func (p *Processor) RetryEnabled() (bool, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.retryEnabled, p.maxRetries
}

// ListAvailablePaymentMethods returns method -> strategy name for every
// registered method.
func (p *Processor) ListAvailablePaymentMethods() map[domain.Method]string {
	return p.resolver.List()
}

// ProcessPayment processes req with the strategy registered for method.
// It never returns an error and never panics: lookup failures, policy
// rejections, faults and panics all come back as failed results.
func (p *Processor) ProcessPayment(ctx context.Context, method domain.Method, req *domain.PaymentRequest) domain.PaymentResult {
	start := time.Now()

	ctx, span := otel.Tracer("processor").Start(ctx, "Processor.ProcessPayment",
		trace.WithAttributes(attribute.String("payment.method", string(method))))
	defer span.End()

	res, outcome, strategyName := p.process(ctx, method, req, start)

	elapsed := time.Since(start)
	paymentsProcessedTotal.WithLabelValues(string(method), outcome).Inc()
	paymentProcessingDurationSeconds.WithLabelValues(string(method)).Observe(elapsed.Seconds())

	if res.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, res.Message)
	}
	span.SetAttributes(
		attribute.String("payment.outcome", outcome),
		attribute.String("payment.transaction_id", res.TransactionID),
	)

	if req == nil {
		log.Printf("Processor: %s payment (nil request): %s", method, res.Message)
		return res
	}

	span.SetAttributes(attribute.String("payment.reference", req.Reference()))
	log.Printf("Processor: %s payment %s of %s %s: success=%t message=%q",
		method, req.Reference(), req.Amount(), req.Currency(), res.Success, res.Message)

	if p.recorder != nil {
		fee := decimal.Zero
		if res.Fee != nil {
			fee = *res.Fee
		}
		p.recorder.Record(reporting.LogEntry{
			Timestamp: start,
			RequestID: RequestIDFromContext(ctx),
			Reference: req.Reference(),
			Method:    string(method),
			Strategy:  strategyName,
			Currency:  req.Currency(),
			Amount:    req.Amount(),
			Fee:       fee,
			Success:   res.Success,
			Message:   res.Message,
			Duration:  elapsed,
		})
	}
	return res
}

func (p *Processor) process(ctx context.Context, method domain.Method, req *domain.PaymentRequest, start time.Time) (domain.PaymentResult, string, string) {
	if req == nil {
		return domain.Failed(nilRequestMessage, time.Since(start)), outcomeError, ""
	}

	if p.policy != nil {
		decision, err := p.policy.Evaluate(method, req)
		if err != nil {
			return failure(err, start), outcomeError, ""
		}
		if !decision.Allowed {
			return domain.Failed("Payment rejected: "+decision.Reason, time.Since(start)), outcomeRejected, ""
		}
	}

	s, err := p.resolver.Resolve(method)
	if err != nil {
		return failure(err, start), outcomeError, ""
	}

	s = p.decorate(method, s)

	res, err := invoke(ctx, s, req)
	if err != nil {
		return failure(err, start), outcomeError, s.Name()
	}
	if res.Success {
		return res, outcomeSuccess, s.Name()
	}
	return res, outcomeFailure, s.Name()
}

// decorate applies the breaker and, when enabled, the retry decorator. The
// retry configuration is read once so a concurrent toggle never affects a
// call already in flight.
func (p *Processor) decorate(method domain.Method, s strategy.Strategy) strategy.Strategy {
	if p.breakers != nil {
		s = p.breakers.Wrap(method, s)
	}

	enabled, maxRetries := p.RetryEnabled()
	if !enabled {
		return s
	}

	opts := make([]retry.Option, 0, len(p.retryOpts)+1)
	opts = append(opts, retry.OnAttempt(func(attempt int, _ domain.PaymentResult) {
		if attempt > 1 {
			paymentRetryAttemptsTotal.WithLabelValues(string(method)).Inc()
		}
	}))
	opts = append(opts, p.retryOpts...)
	return retry.NewRetryableStrategy(s, maxRetries, opts...)
}

func invoke(ctx context.Context, s strategy.Strategy, req *domain.PaymentRequest) (res domain.PaymentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Process(ctx, req)
}

func failure(err error, start time.Time) domain.PaymentResult {
	return domain.Failed(fmt.Sprintf("Payment processing failed: %v", err), time.Since(start))
}

func clampRetries(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
