package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/meteo-station/internal/api/http"
	"github.com/i474232898/meteo-station/internal/config"
	"github.com/i474232898/meteo-station/internal/console"
	"github.com/i474232898/meteo-station/internal/db"
	"github.com/i474232898/meteo-station/internal/logging"
	"github.com/i474232898/meteo-station/internal/publish"
	"github.com/i474232898/meteo-station/internal/scheduler"
	"github.com/i474232898/meteo-station/internal/station"
	"github.com/i474232898/meteo-station/internal/store"
)

const appName = "meteo-station"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration (.env included).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logOut := os.Stdout
	if cfg.ConsoleMenu {
		// keep the menu readable
		logOut = os.Stderr
	}
	lg := logging.New(logOut, cfg, version, appName)
	slog.SetDefault(lg)

	// Record store.
	var (
		recordStore station.Store
		conn        *sql.DB
	)
	switch cfg.StoreDriver {
	case "memory":
		recordStore = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	default:
		conn, err = db.Open(cfg)
		if err != nil {
			lg.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		if err := db.Migrate(conn, lg); err != nil {
			lg.Error("failed to migrate database", "error", err)
			_ = db.Close(conn)
			os.Exit(1)
		}
		recordStore = store.NewSQLiteStore(conn)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			lg.Error("close database", "error", err)
		}
	}()

	// Optional sinks.
	var sinks []station.Sink
	if cfg.MQTTBroker != "" {
		mq := publish.NewMQTTPublisher(cfg, lg)
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mq.Connect(connectCtx); err != nil {
			// auto-reconnect keeps trying; publishes fail until then
			lg.Warn("mqtt not connected at startup", "error", err)
		}
		cancel()
		defer mq.Close()
		sinks = append(sinks, mq)
	}
	if cfg.InfluxURL != "" {
		iw := publish.NewInfluxWriter(cfg)
		defer iw.Close()
		sinks = append(sinks, iw)
	}

	// Acquisition pipeline with a shared outbound client.
	fetcher := station.NewHTTPFetcher(station.FetcherConfig{
		Client:    &http.Client{Timeout: cfg.FetchTimeout},
		RateLimit: cfg.FetchRateLimit,
		RateBurst: cfg.FetchRateBurst,
	})
	acquirer := station.NewAcquirer(fetcher, cfg.StationURL, cfg.FetchTimeout, lg)
	service := station.NewService(acquirer, recordStore, sinks, lg)

	sched := scheduler.New(service, cfg.FetchInterval, lg)
	if cfg.SchedulerAutostart {
		sched.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// a fetch may take the whole fetch timeout
		WriteTimeout: cfg.FetchTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	if !cfg.ConsoleMenu {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service, sched)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", "error", err)
		}
	}()
	lg.Info("meteo-station started", "port", cfg.Port, "station_url", cfg.StationURL, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ConsoleMenu {
		go func() {
			menu := console.NewMenu(os.Stdin, os.Stdout, service, sched)
			if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
				lg.Error("console menu stopped", "error", err)
			}
			stop()
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+10*time.Second)
	defer cancel()

	if err := sched.Shutdown(shutdownCtx); err != nil {
		lg.Error("scheduler shutdown", "error", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", "error", err)
	}
	lg.Info("meteo-station stopped")
}
