package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yourorg/payment-strategy/internal/circuitbreaker"
	"github.com/yourorg/payment-strategy/internal/config"
	"github.com/yourorg/payment-strategy/internal/monitor"
	"github.com/yourorg/payment-strategy/internal/policy"
	"github.com/yourorg/payment-strategy/internal/processor"
	"github.com/yourorg/payment-strategy/internal/registry"
	"github.com/yourorg/payment-strategy/internal/reporting"
	"github.com/yourorg/payment-strategy/internal/retry"
	"github.com/yourorg/payment-strategy/internal/strategy"
	"github.com/yourorg/payment-strategy/internal/telemetry"
)

// dependencies are the long-lived components shared by every request.
type dependencies struct {
	serviceName string
	factory     *registry.Factory
	processor   *processor.Processor
	journal     *reporting.Journal
	reporter    *reporting.RetrospectiveReporter
	monitor     *monitor.ContractMonitor
}

func newDependencies(cfg *config.Config) (*dependencies, error) {
	var strategyOpts []strategy.Option
	if !cfg.Payment.SimulateLatency {
		strategyOpts = append(strategyOpts, strategy.WithoutLatency())
	}

	factory := registry.NewFactory(registry.DefaultPopulate(strategyOpts...))
	registry.Discover(factory.Registry(), strategy.NewWeChatPayStrategy(strategyOpts...))

	journal := reporting.NewJournal(cfg.Journal.Size)
	procOpts := []processor.Option{
		processor.WithRecorder(journal),
		processor.WithRetryOptions(retry.WithBackoffUnit(cfg.Payment.BackoffUnit)),
	}
	if cfg.Payment.RetryEnabled {
		procOpts = append(procOpts, processor.WithRetry(cfg.Payment.MaxRetries))
	}
	if cfg.CircuitBreaker.Enabled {
		procOpts = append(procOpts, processor.WithCircuitBreakers(circuitbreaker.NewSet(cfg.CircuitBreaker.Breakers())))
	}

	rules, err := cfg.Policy.RuleConfigs()
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		enforcer, err := policy.NewPaymentPolicyEnforcer(rules)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize policy enforcer: %w", err)
		}
		procOpts = append(procOpts, processor.WithPolicy(enforcer))
	}

	contract, err := monitor.NewPaymentRequestMonitor()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize contract monitor: %w", err)
	}

	return &dependencies{
		serviceName: cfg.OpenTelemetry.ServiceName,
		factory:     factory,
		processor:   processor.NewProcessor(factory, procOpts...),
		journal:     journal,
		reporter:    reporting.NewRetrospectiveReporter(),
		monitor:     contract,
	}, nil
}

func setupRouter(deps *dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(deps.serviceName))
	router.Use(requestIDMiddleware())

	h := &handlers{deps: deps}

	router.GET("/healthz", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/payments/:method", h.processPayment)
	v1.GET("/payment-methods", h.listPaymentMethods)
	v1.PUT("/retry", h.updateRetry)
	v1.GET("/report", h.report)

	return router
}

func main() {
	log.Println("Starting server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tracerShutdown, err := telemetry.InitTracer(&cfg.OpenTelemetry, nil)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	deps, err := newDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      setupRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
