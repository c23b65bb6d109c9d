// restaurantia: voice agent tool backend for restaurant table bookings.
// Exposes book_table / end_call to the voice pipeline over WebSocket and REST,
// writes reservations to Airtable or Google Sheets and notifies n8n.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/teslashibe/restaurantia/internal/config"
	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
	"github.com/teslashibe/restaurantia/pkg/call"
	"github.com/teslashibe/restaurantia/pkg/cloud"
	"github.com/teslashibe/restaurantia/pkg/notify"
	"github.com/teslashibe/restaurantia/pkg/store"
	"github.com/teslashibe/restaurantia/pkg/voice"
	"github.com/teslashibe/restaurantia/pkg/web"
)

var version = "1.0.0"

type flags struct {
	port    string
	backend string
	debug   bool
	envFile string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.port, "port", "", "HTTP server port (overrides PORT)")
	flag.StringVar(&f.backend, "store", "", "Record store: airtable or sheets (overrides STORE_BACKEND)")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging and request logs")
	flag.StringVar(&f.envFile, "env", "", "Extra env file to load before .env.local and .env")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	files := []string{config.DefaultEnvFileLocal, config.DefaultEnvFile}
	if f.envFile != "" {
		files = append([]string{f.envFile}, files...)
	}
	cfg := config.Load(files...)
	if f.port != "" {
		cfg.Port = f.port
	}
	if f.backend != "" {
		cfg.StoreBackend = f.backend
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}

	log.Init(cfg.LogLevel, cfg.Production)
	logger := log.L()

	fmt.Println()
	fmt.Println("🍽️  Restaurantia v" + version)
	fmt.Println("   Table booking tools for voice agents")
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		logger.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("❌ Record store setup failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	hook := notify.NewWebhook(cfg.WebhookURL,
		notify.WithTimeout(cfg.WebhookTimeout),
		notify.WithLogger(logger),
	)
	if !hook.Enabled() {
		logger.Warn("⚠️  N8N_WEBHOOK_URL not set, notifications disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	toolMetrics := voice.NewMetrics(reg)

	svc := booking.NewService(st, hook,
		booking.WithLogger(logger),
		booking.WithMetrics(booking.NewMetrics(reg)),
		booking.WithStoreTimeout(cfg.StoreTimeout),
		booking.WithNotifyTimeout(cfg.WebhookTimeout),
	)

	base := []call.Option{call.WithLogger(logger)}
	if cfg.StrictEndCall {
		base = append(base, call.WithStrictEndCall())
	}
	factory := call.NewFactory(svc, base...)

	callHub := cloud.NewHub(factory,
		cloud.WithLogger(logger),
		cloud.WithToolMetrics(toolMetrics),
	)

	server := web.NewServer(cfg.Port, factory,
		web.WithLogger(logger),
		web.WithGatherer(reg),
		web.WithToolMetrics(toolMetrics),
		web.WithCallHub(callHub),
		web.WithRequestLogging(f.debug),
	)

	logger.Info("🚀 Starting server",
		"store", cfg.StoreBackend,
		"websocket", fmt.Sprintf("ws://localhost:%s/ws/call", cfg.Port),
		"health", fmt.Sprintf("http://localhost:%s/healthz", cfg.Port),
		"strict_end_call", cfg.StrictEndCall,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("❌ Server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("👋 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}

	logger.Info("✅ Goodbye!")
}

// newStore builds the configured record store.
func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (booking.Persister, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		creds, err := os.ReadFile(cfg.SheetsCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read sheets credentials: %w", err)
		}
		return store.NewSheets(ctx,
			store.WithCredentialsJSON(creds),
			store.WithBase(cfg.SheetsSpreadsheetID),
			store.WithTable(cfg.SheetsSheet),
			store.WithTimeout(cfg.StoreTimeout),
			store.WithLogger(logger),
		)
	default:
		return store.NewAirtable(
			store.WithAPIKey(cfg.AirtableToken),
			store.WithBaseURL(cfg.AirtableBaseURL),
			store.WithBase(cfg.AirtableBaseID),
			store.WithTable(cfg.AirtableTable),
			store.WithTimeout(cfg.StoreTimeout),
			store.WithLogger(logger),
		)
	}
}
