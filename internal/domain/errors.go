package domain

import "fmt"

// ValidationError reports malformed caller input. It is always returned to
// the immediate caller and never swallowed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that no strategy is registered for a method.
type NotFoundError struct {
	Method Method
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no strategy registered for %s", e.Method)
}

// TypeMismatchError reports an attempt to register a value that does not
// satisfy the strategy contract.
type TypeMismatchError struct {
	Method Method
	Got    string // dynamic type of the rejected value
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("strategy for %s must implement Strategy, got %s", e.Method, e.Got)
}
