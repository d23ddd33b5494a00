// Package policy gates payment requests with admission rules written as
// govaluate expressions, e.g. "amount <= 10000 && currency != 'XYZ'".
package policy

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/yourorg/payment-strategy/internal/domain"
)

// RuleConfig is an admission rule as it appears in configuration.
type RuleConfig struct {
	Name       string
	Expression string
}

// Decision is the outcome of evaluating a request against the rules.
type Decision struct {
	Allowed bool
	Rule    string // the rule that rejected the request, empty when allowed
	Reason  string
}

type compiledRule struct {
	name string
	expr *govaluate.EvaluableExpression
}

// PaymentPolicyEnforcer holds rules compiled once at construction.
// It is read-only after construction and safe for concurrent use.
type PaymentPolicyEnforcer struct {
	rules []compiledRule
}

// NewPaymentPolicyEnforcer compiles rules in the order given. Evaluation
// follows the same order.
func NewPaymentPolicyEnforcer(rules []RuleConfig) (*PaymentPolicyEnforcer, error) {
	ppe := &PaymentPolicyEnforcer{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if strings.TrimSpace(r.Expression) == "" {
			return nil, fmt.Errorf("policy rule '%s' has an empty expression", r.Name)
		}
		expr, err := govaluate.NewEvaluableExpression(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule '%s': %w", r.Name, err)
		}
		ppe.rules = append(ppe.rules, compiledRule{name: r.Name, expr: expr})
	}
	return ppe, nil
}

// Len reports the number of rules.
func (ppe *PaymentPolicyEnforcer) Len() int {
	return len(ppe.rules)
}

// Evaluate checks req against every rule. All rules must yield true; the
// first false one rejects the request. A rule that fails to evaluate or
// yields a non-boolean is an error.
func (ppe *PaymentPolicyEnforcer) Evaluate(method domain.Method, req *domain.PaymentRequest) (Decision, error) {
	if req == nil {
		return Decision{}, fmt.Errorf("policy: payment request cannot be nil")
	}
	if len(ppe.rules) == 0 {
		return Decision{Allowed: true}, nil
	}

	params := Parameters(method, req)
	for _, r := range ppe.rules {
		out, err := r.expr.Evaluate(params)
		if err != nil {
			return Decision{}, fmt.Errorf("evaluating rule '%s': %w", r.name, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return Decision{}, fmt.Errorf("rule '%s' did not evaluate to a boolean, got %T", r.name, out)
		}
		if !ok {
			return Decision{
				Allowed: false,
				Rule:    r.name,
				Reason:  fmt.Sprintf("rejected by policy rule '%s'", r.name),
			}, nil
		}
	}
	return Decision{Allowed: true}, nil
}

// Parameters builds the expression variables for a request. Metadata values
// that are strings, booleans or numbers are exposed as meta_<key>.
func Parameters(method domain.Method, req *domain.PaymentRequest) map[string]interface{} {
	amount, _ := req.Amount().Float64()
	params := map[string]interface{}{
		"amount":    amount,
		"currency":  req.Currency(),
		"method":    string(method),
		"reference": req.Reference(),
	}
	for k, v := range req.Metadata() {
		switch val := v.(type) {
		case string, bool, float64:
			params["meta_"+k] = val
		case int:
			params["meta_"+k] = float64(val)
		case int64:
			params["meta_"+k] = float64(val)
		}
	}
	return params
}
