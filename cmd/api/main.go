package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/mikelzubi/mimapa/internal/adapters/http"
	"github.com/mikelzubi/mimapa/internal/adapters/media"
	"github.com/mikelzubi/mimapa/internal/adapters/memory"
	natsadapter "github.com/mikelzubi/mimapa/internal/adapters/nats"
	"github.com/mikelzubi/mimapa/internal/adapters/nominatim"
	"github.com/mikelzubi/mimapa/internal/adapters/postgres"
	"github.com/mikelzubi/mimapa/internal/adapters/valkey"
	"github.com/mikelzubi/mimapa/internal/core/ports"
	"github.com/mikelzubi/mimapa/internal/core/usecases"
	"github.com/mikelzubi/mimapa/internal/pkg/config"
	"github.com/mikelzubi/mimapa/internal/pkg/logging"
	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
	"github.com/mikelzubi/mimapa/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("mimapa-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("mimapa-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Active-marker slot: Valkey-backed when configured, in-process otherwise.
	var slot ports.ActiveMarkerCache = memory.NewSlot()
	if cfg.Valkey.Enabled {
		vslot, err := valkey.NewSlot(cfg.Valkey.Addr, cfg.Valkey.SlotTTL())
		if err != nil {
			slog.Warn("valkey unavailable, keeping in-process slot", "error", err)
		} else {
			defer vslot.Close()
			slot = vslot
		}
	}

	// NATS: visit event publisher plus a raw connection for the
	// WebSocket relay. Both are optional.
	var events ports.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}

		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		}
	}

	// External services
	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout())
	mediaStore := media.New(cfg.Media.BaseURL, cfg.Media.Timeout())

	// Repos
	markerRepo := postgres.NewMarkerRepo(db)
	visitRepo := postgres.NewVisitRepo(db)

	// Use cases
	markerSvc := usecases.NewMarkerService(markerRepo, visitRepo, geocoder, slot, events)
	visitSvc := usecases.NewVisitService(visitRepo)

	deps := &http.Dependencies{
		Markers: markerSvc,
		Visits:  visitSvc,
		Media:   mediaStore,
		NATS:    natsConn,
		DB:      db,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // marker images ride through /v1/media
		AppName:      "MiMapa API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-Email",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool gauges for Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
