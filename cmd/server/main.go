package main

import (
	stdcontext "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/docdata-orchestrator/internal/adapter/soap"
	"github.com/yourorg/docdata-orchestrator/internal/circuitbreaker"
	"github.com/yourorg/docdata-orchestrator/internal/config"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/journal"
	"github.com/yourorg/docdata-orchestrator/internal/logger"
	"github.com/yourorg/docdata-orchestrator/internal/monitor"
	"github.com/yourorg/docdata-orchestrator/internal/orchestrator"
	"github.com/yourorg/docdata-orchestrator/internal/policy"
	"github.com/yourorg/docdata-orchestrator/internal/selector"
	"github.com/yourorg/docdata-orchestrator/internal/status"
	"github.com/yourorg/docdata-orchestrator/internal/tracing"
)

const serviceName = "docdata-orchestrator"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	var log *zap.Logger
	if cfg.Logging.Development {
		log, err = logger.NewDevelopment(serviceName)
	} else {
		log, err = logger.New(serviceName)
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	shutdownTracer, err := tracing.InitTracer(cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(stdcontext.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder journal.Recorder = journal.NewMemoryRecorder()
	if cfg.Journal.DSN != "" {
		pg, err := journal.OpenPostgres(ctx, cfg.Journal.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		recorder = pg
		log.Info("journal backed by postgres")
	}

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:  cfg.CircuitBreaker.FailureThreshold,
		OpenTimeout:       cfg.CircuitBreaker.OpenTimeout,
		HalfOpenSuccesses: cfg.CircuitBreaker.HalfOpenSuccesses,
	})
	gateway := soap.NewSOAPAdapter(&http.Client{}, soap.Options{
		LiveEndpoint: cfg.Gateway.LiveEndpoint,
		TestEndpoint: cfg.Gateway.TestEndpoint,
		Timeout:      cfg.Gateway.Timeout,
		Breaker:      breaker,
		Logger:       log,
	})

	reconciler, err := policy.NewReconciler(policy.DefaultRules())
	if err != nil {
		return fmt.Errorf("failed to compile reconciliation rules: %w", err)
	}

	merchants := context.NewInMemoryMerchantConfigRepository()
	merchants.AddConfig(cfg.MerchantConfig())

	orch := orchestrator.NewOrchestrator(gateway, selector.NewSelector(), reconciler, merchants, orchestrator.Options{
		Journal:     recorder,
		Logger:      log,
		Interpreter: status.NewInterpreter(cfg.Status.PendingMethods, cfg.Status.AcceptShopperPending),
	})

	contracts, err := monitor.LoadContractsFromDir(cfg.Server.SchemaDir)
	if err != nil {
		return fmt.Errorf("failed to load request contracts: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           setupRouter(newServer(orch, recorder, contracts, cfg.Merchant.ID, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.Bool("test_mode", cfg.Gateway.TestMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to run server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
