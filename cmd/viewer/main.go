package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"render-loop/app"
	"render-loop/internal/window"
	"render-loop/metrics"
	"render-loop/renderer"
	"render-loop/scene"
)

var (
	width       = flag.Int("width", 1500, "window width in pixels")
	height      = flag.Int("height", 1000, "window height in pixels")
	title       = flag.String("title", "Render Loop", "initial window title")
	logLevel    = flag.String("log", "info", "Log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "text", "Log format (text, json)")
	metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	minFPS      = flag.Int("min-fps", 30, "coarsen the render resolution below this framerate")
	maxFPS      = flag.Int("max-fps", 75, "refine the render resolution above this framerate")
	maxScale    = flag.Int("max-scale", 8, "largest render resolution divisor")
)

func main() {
	flag.Parse()

	session := uuid.New().String()
	logger := newLogger(*logLevel, *logFormat).With("session", session[:8])
	slog.SetDefault(logger)

	if err := run(logger, session); err != nil {
		logger.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, session string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	windowConfig := window.DefaultConfig()
	windowConfig.Width = *width
	windowConfig.Height = *height
	windowConfig.Title = *title

	renderConfig := renderer.DefaultConfig()
	renderConfig.MinFramerate = *minFPS
	renderConfig.MaxFramerate = *maxFPS
	renderConfig.MaxScale = *maxScale
	if err := renderConfig.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	win, err := window.New(windowConfig)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	renderEngine, err := renderer.NewRenderEngine(win, win.Screen, renderConfig, logger)
	if err != nil {
		win.Terminate()
		return fmt.Errorf("create render engine: %w", err)
	}

	s := scene.NewScene()

	cfg := app.DefaultConfig()
	cfg.Screen = win.Screen
	loop := app.New(win, renderEngine, s, cfg, logger)

	if *metricsAddr != "" {
		collector := metrics.NewCollector(session)
		collector.SetScale(renderEngine.Scale())
		renderEngine.OnScaleChange = collector.SetScale
		loop.Framerate().SetObserver(collector)
		go func() {
			if err := collector.Serve(ctx, *metricsAddr, logger); err != nil {
				logger.Error("metrics server", "err", err)
			}
		}()
	}

	printControls()
	return loop.Run(ctx)
}

func newLogger(level, format string) *slog.Logger {
	var leveler slog.LevelVar
	switch strings.ToLower(level) {
	case "debug":
		leveler.Set(slog.LevelDebug)
	case "warn":
		leveler.Set(slog.LevelWarn)
	case "error":
		leveler.Set(slog.LevelError)
	default:
		leveler.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: &leveler}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func printControls() {
	fmt.Println("CONTROLS:")
	fmt.Println("  W / S  - Walk forward / backward")
	fmt.Println("  A / D  - Strafe left / right")
	fmt.Println("  Mouse  - Hold away from centre to turn")
	fmt.Println("EXIT: ESC")
}
