// Package config loads service settings from the environment, after
// merging an optional .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/payment-strategy/internal/circuitbreaker"
	"github.com/yourorg/payment-strategy/internal/policy"
)

// Config holds every setting the server and CLI read.
type Config struct {
	Environment    string
	Server         ServerConfig
	Payment        PaymentConfig
	CircuitBreaker CircuitBreakerConfig
	Policy         PolicyConfig
	Journal        JournalConfig
	OpenTelemetry  OpenTelemetryConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PaymentConfig configures strategies and the retry decorator.
type PaymentConfig struct {
	RetryEnabled    bool
	MaxRetries      int
	BackoffUnit     time.Duration
	SimulateLatency bool
}

// CircuitBreakerConfig configures per-method breakers.
type CircuitBreakerConfig struct {
	Enabled             bool
	FailureThreshold    int
	OpenTimeout         time.Duration
	HalfOpenMaxRequests int
}

// PolicyConfig holds admission rules as "name=expression" pairs separated
// by ";".
type PolicyConfig struct {
	Rules string
}

// JournalConfig sizes the in-memory outcome journal.
type JournalConfig struct {
	Size int
}

// OpenTelemetryConfig configures tracing.
type OpenTelemetryConfig struct {
	Enabled       bool
	ServiceName   string
	TraceExporter string // "stdout" or "none"
}

// Load reads the configuration.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Payment: PaymentConfig{
			RetryEnabled:    getEnvAsBool("PAYMENT_RETRY_ENABLED", false),
			MaxRetries:      getEnvAsInt("PAYMENT_MAX_RETRIES", 3),
			BackoffUnit:     getEnvAsDuration("PAYMENT_BACKOFF_UNIT", time.Second),
			SimulateLatency: getEnvAsBool("PAYMENT_SIMULATE_LATENCY", true),
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             getEnvAsBool("CIRCUIT_BREAKER_ENABLED", false),
			FailureThreshold:    getEnvAsInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			OpenTimeout:         getEnvAsDuration("CIRCUIT_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			HalfOpenMaxRequests: getEnvAsInt("CIRCUIT_BREAKER_HALF_OPEN_MAX_REQUESTS", 1),
		},
		Policy: PolicyConfig{
			Rules: getEnv("PAYMENT_POLICY_RULES", ""),
		},
		Journal: JournalConfig{
			Size: getEnvAsInt("JOURNAL_SIZE", 1000),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:       getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:   getEnv("OTEL_SERVICE_NAME", "payment-strategy"),
			TraceExporter: getEnv("OTEL_TRACES_EXPORTER", "stdout"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive, got %d", c.Server.Port)
	}
	if c.Payment.MaxRetries < 1 {
		return fmt.Errorf("PAYMENT_MAX_RETRIES must be at least 1, got %d", c.Payment.MaxRetries)
	}
	if c.Payment.BackoffUnit < 0 {
		return fmt.Errorf("PAYMENT_BACKOFF_UNIT cannot be negative")
	}
	if c.CircuitBreaker.FailureThreshold < 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	if c.CircuitBreaker.HalfOpenMaxRequests < 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_HALF_OPEN_MAX_REQUESTS must be at least 1")
	}
	if c.Journal.Size < 1 {
		return fmt.Errorf("JOURNAL_SIZE must be at least 1, got %d", c.Journal.Size)
	}
	switch c.OpenTelemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported OTEL_TRACES_EXPORTER %q", c.OpenTelemetry.TraceExporter)
	}
	if _, err := c.Policy.RuleConfigs(); err != nil {
		return err
	}
	return nil
}

// RuleConfigs parses Rules into policy rules, preserving order.
func (p PolicyConfig) RuleConfigs() ([]policy.RuleConfig, error) {
	var rules []policy.RuleConfig
	for _, part := range strings.Split(p.Rules, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, expr, ok := strings.Cut(part, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" {
			return nil, fmt.Errorf("PAYMENT_POLICY_RULES: malformed rule %q, want name=expression", part)
		}
		rules = append(rules, policy.RuleConfig{Name: name, Expression: expr})
	}
	return rules, nil
}

// Breakers converts the settings into a breaker configuration.
func (c CircuitBreakerConfig) Breakers() circuitbreaker.Config {
	return circuitbreaker.Config{
		FailureThreshold:    uint32(c.FailureThreshold),
		OpenTimeout:         c.OpenTimeout,
		HalfOpenMaxRequests: uint32(c.HalfOpenMaxRequests),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Config: ignoring malformed %s=%q, using default %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Config: ignoring malformed %s=%q, using default %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Config: ignoring malformed %s=%q, using default %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
