// eyemouse-server: WebSocket backend for the EyeMouse browser extension.
// Drives per-client gaze calibration and turns webcam frames into pointer
// coordinates and blink gestures.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/eyemouse/go-eyemouse/internal/config"
	"github.com/eyemouse/go-eyemouse/internal/log"
	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/metrics"
	"github.com/eyemouse/go-eyemouse/pkg/server"
	"github.com/eyemouse/go-eyemouse/pkg/session"
)

var (
	version   = "1.0.0"
	debug     = flag.Bool("debug", false, "Enable debug logging")
	modelPath = flag.String("model", "", "Path to the YuNet face model (overrides default)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Server.LogLevel
	if *debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println()
	fmt.Println("👁  EyeMouse Backend v" + version)
	fmt.Printf("   Artifacts: %s\n", cfg.Storage.TempDir)
	fmt.Println()

	estimatorCfg := gaze.DefaultConfig()
	if *modelPath != "" {
		estimatorCfg.ModelPath = *modelPath
	}

	settings := session.Settings{
		ScreenWidth:           cfg.Screen.Width,
		ScreenHeight:          cfg.Screen.Height,
		MinCalibrationSamples: cfg.Calibration.MinSamples,
		MinTuneSamples:        cfg.Calibration.MinTuneSamples,
		TunePoints:            cfg.Calibration.TunePoints,
		TuneMargin:            cfg.Calibration.TuneMargin,
		ArtifactRoot:          cfg.Storage.TempDir,
	}
	settings.Timing.FaceWait = cfg.Calibration.FaceWait
	settings.Timing.Pulse = cfg.Calibration.Pulse
	settings.Timing.Capture = cfg.Calibration.Capture

	registry := session.NewRegistry(settings, func() (gaze.Estimator, error) {
		return gaze.NewRidgeEstimator(estimatorCfg)
	})

	app := fiber.New(fiber.Config{
		AppName:               "eyemouse-server",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// The extension connects from a chrome-extension:// origin
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if *debug {
		app.Use(logger.New())
	}

	hub := server.NewHub(registry, cfg.WebSocket.MessageSizeLimit)
	hub.RegisterRoutes(app)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "EyeMouse Backend Server"})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		stats := hub.Stats()
		return c.JSON(fiber.Map{
			"status":   "ok",
			"version":  version,
			"sessions": stats.Sessions,
		})
	})

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(metrics.Handler()))
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		log.Info("shutting down")
		registry.CloseAll()
		app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
