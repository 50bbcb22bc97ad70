// Command server exposes the underwriting pipeline as an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"uwcli/internal/config"
	"uwcli/internal/infrastructure"
	"uwcli/internal/pipeline"
	transport "uwcli/internal/transport/http"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging)

	p := pipeline.New(logger, pipelineConfig(cfg))
	router := transport.NewRouter(cfg.Server, p, Version, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "version", Version)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutdown requested", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
		logger.Info("server stopped")
	}
}

// pipelineConfig maps the file/env configuration onto the stage parameters.
func pipelineConfig(cfg *config.Config) pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.RentRoll.UnderpricedThreshold = cfg.Underwriting.UnderpricedThreshold
	pc.Trend.LowVolatilityCV = cfg.Underwriting.LowVolatilityCV
	pc.Trend.MinMonthlyGrowth = cfg.Underwriting.MinMonthlyGrowth
	pc.Rules.VacancyFloorPct = cfg.Underwriting.VacancyFloorRate
	pc.Rules.MinExpenseRatio = cfg.Underwriting.ExpenseRatioFloor
	pc.Rules.ReservePerUnit = cfg.Underwriting.ReservesPerUnit
	return pc
}
