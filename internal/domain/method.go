package domain

import "fmt"

// Method identifies a payment method. It is the registry key and the
// selector a caller passes to the processor.
type Method string

const (
	CreditCard   Method = "credit_card"
	PayPal       Method = "paypal"
	Crypto       Method = "crypto"
	BankTransfer Method = "bank_transfer"
	WeChatPay    Method = "wechat_pay"
)

var allMethods = []Method{CreditCard, PayPal, Crypto, BankTransfer, WeChatPay}

// Methods returns every known payment method in declaration order.
func Methods() []Method {
	out := make([]Method, len(allMethods))
	copy(out, allMethods)
	return out
}

// Valid reports whether m is a member of the enumeration.
func (m Method) Valid() bool {
	for _, known := range allMethods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) String() string { return string(m) }

// ParseMethod converts an identifier such as "credit_card" into a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", &ValidationError{Field: "method", Reason: fmt.Sprintf("unknown payment method %q", s)}
	}
	return m, nil
}
