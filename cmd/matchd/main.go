package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tickerlab/matchd/internal/config"
	"github.com/tickerlab/matchd/internal/engine"
	"github.com/tickerlab/matchd/internal/event"
	"github.com/tickerlab/matchd/internal/handler"
	"github.com/tickerlab/matchd/internal/protocol"
	"github.com/tickerlab/matchd/internal/server"
	"github.com/tickerlab/matchd/internal/service"
	"github.com/tickerlab/matchd/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("HTTP_PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level. Events go to stdout,
	// so logs go to stderr to keep the event stream clean.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Event egress: wire-format lines on stdout, plus the trade log
	// feeding the market-data endpoints.
	tradeLog := store.NewTradeLog(cfg.TradeLogSize)
	sink := event.MultiSink{protocol.NewLineSink(os.Stdout), tradeLog}
	clock := event.NewClock()

	// Matching core.
	eng := engine.New(sink, clock, cfg.QueueSize, logger)

	// Command ingress.
	srv := server.New(cfg.ListenNetwork, cfg.ListenAddr, eng, logger)
	if err := srv.Listen(); err != nil {
		logger.Error("listen failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Market-data HTTP surface.
	marketSvc := service.NewMarketDataService(eng, tradeLog, cfg.DepthLevelsMax)
	router := handler.NewRouter(marketSvc, logger)
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpSrv := &http.Server{
		Addr:         httpAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	go func() {
		logger.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop ingress first so no command races a
	// worker stop, then drain and join workers, then stop the HTTP
	// surface.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := eng.Shutdown(shutdownCtx); err != nil {
		logger.Error("engine shutdown error", slog.String("error", err.Error()))
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
