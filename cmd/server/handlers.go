package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/monitor"
	"github.com/yourorg/payment-strategy/internal/processor"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	maxPaymentBodyBytes = 64 << 10
)

type handlers struct {
	deps *dependencies
}

// paymentRequestBody is the JSON body of POST /v1/payments/:method. Amount
// accepts a JSON number or a numeric string.
type paymentRequestBody struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
	Metadata  map[string]any  `json:"metadata"`
}

type retryUpdate struct {
	Enabled    *bool `json:"enabled"`
	MaxRetries int   `json:"max_retries"`
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) processPayment(c *gin.Context) {
	method, err := domain.ParseMethod(c.Param("method"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPaymentBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	valid, violations, err := h.deps.monitor.Validate(body)
	if err != nil {
		log.Printf("Error validating request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": monitor.FormatErrors(violations)})
		return
	}

	var in paymentRequestBody
	if err := json.Unmarshal(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	req, err := domain.NewPaymentRequest(in.Amount, in.Currency, in.Reference, in.Metadata)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error(), "field": vErr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx := processor.ContextWithRequestID(c.Request.Context(), c.GetString(requestIDKey))
	res := h.deps.processor.ProcessPayment(ctx, method, req)
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.processor.ListAvailablePaymentMethods())
}

func (h *handlers) updateRetry(c *gin.Context) {
	var in retryUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if in.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: enabled is required"})
		return
	}

	if *in.Enabled {
		maxRetries := in.MaxRetries
		if maxRetries == 0 {
			maxRetries = processor.DefaultMaxRetries
		}
		h.deps.processor.EnableRetry(maxRetries)
	} else {
		h.deps.processor.DisableRetry()
	}

	enabled, maxRetries := h.deps.processor.RetryEnabled()
	c.JSON(http.StatusOK, gin.H{"enabled": enabled, "max_retries": maxRetries})
}

func (h *handlers) report(c *gin.Context) {
	report, err := h.deps.reporter.GenerateRetrospective(h.deps.journal.Entries())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
