// Package monitor validates inbound JSON payloads against JSON schemas
// before they are decoded into domain types.
package monitor

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/payment_request.json
var paymentRequestSchema []byte

// PaymentRequestSchema returns the embedded schema for payment request bodies.
func PaymentRequestSchema() []byte {
	out := make([]byte, len(paymentRequestSchema))
	copy(out, paymentRequestSchema)
	return out
}

// ContractMonitor validates incoming requests against a JSON schema.
type ContractMonitor struct {
	schema *gojsonschema.Schema
}

// NewContractMonitor creates a new ContractMonitor with the given schema file path.
// A relative schemaPath is resolved against the working directory.
func NewContractMonitor(schemaPath string) (*ContractMonitor, error) {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving schema path %s: %w", schemaPath, err)
	}
	return newContractMonitor(schemaPath, gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(abs)))
}

// NewPaymentRequestMonitor creates a ContractMonitor for payment request bodies
// using the embedded schema.
func NewPaymentRequestMonitor() (*ContractMonitor, error) {
	return newContractMonitor("payment_request.json", gojsonschema.NewBytesLoader(paymentRequestSchema))
}

func newContractMonitor(name string, loader gojsonschema.JSONLoader) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("error loading or compiling schema %s: %w", name, err)
	}
	return &ContractMonitor{schema: schema}, nil
}

// Validate validates the given request body against the loaded JSON schema.
// It returns true if valid, or false and a list of validation errors if invalid.
// The error is non-nil only when the body is not JSON at all.
func (cm *ContractMonitor) Validate(requestBody []byte) (bool, []string, error) {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(requestBody))
	if err != nil {
		return false, nil, fmt.Errorf("error during validation: %w", err)
	}

	if result.Valid() {
		return true, nil, nil
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, errors, nil
}

// FormatErrors formats a slice of validation error strings into a single string.
func FormatErrors(validationErrors []string) string {
	if len(validationErrors) == 0 {
		return ""
	}
	return "Validation errors: " + strings.Join(validationErrors, "; ")
}
