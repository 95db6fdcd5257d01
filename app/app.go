// Package app drives the per-frame control loop: input, look, render, timing.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"render-loop/core"
	"render-loop/input"
	"render-loop/scene"
	"render-loop/timing"
)

// Window is the windowing and event service the loop runs against.
type Window interface {
	PollEvents()
	IsKeyPressed(key int) bool
	GetCursorPos() (float64, float64)
	SetCursorPos(x, y float64)
	SetTitle(title string)
	ShouldClose() bool
	Now() time.Duration
	Terminate()
}

// Renderer draws frames and reacts to framerate measurements.
type Renderer interface {
	RenderScene(s *scene.Scene) error
	AdaptResolution(framerate int)
}

// Destroyer is implemented by renderers holding resources tied to the
// window's context. They are released before the window goes away.
type Destroyer interface {
	Destroy()
}

// Scene receives the player commands produced each frame.
type Scene interface {
	MovePlayer(dx, dy float64)
	SpinPlayer(d [2]float64)
}

type Config struct {
	Screen   core.ScreenGeometry
	Movement input.MovementKeys
	QuitKey  int
}

func DefaultConfig() Config {
	return Config{
		Screen:   core.ScreenGeometry{Width: 1500, Height: 1000},
		Movement: input.DefaultMovementKeys(),
		QuitKey:  core.KeyEscape,
	}
}

// App owns the loop state. The scene it mutates and draws belongs to the
// caller.
type App struct {
	window   Window
	renderer Renderer
	scene    Scene
	drawn    *scene.Scene
	cfg      Config
	logger   *slog.Logger

	look      *input.LookController
	framerate *timing.FramerateController

	state  State
	frames uint64
}

// New wires the controllers. target is drawn by the renderer and receives the
// player commands.
func New(window Window, renderer Renderer, target *scene.Scene, cfg Config, logger *slog.Logger) *App {
	return NewWithSink(window, renderer, target, target, cfg, logger)
}

// NewWithSink is New with player commands routed to sink instead of target.
func NewWithSink(window Window, renderer Renderer, target *scene.Scene, sink Scene, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		window:    window,
		renderer:  renderer,
		scene:     sink,
		drawn:     target,
		cfg:       cfg,
		logger:    logger.With("component", "app"),
		look:      input.NewLookController(window, cfg.Screen),
		framerate: timing.NewFramerateController(window.Now(), window, renderer, logger),
		state:     Running,
	}
}

// Framerate exposes the framerate controller, e.g. to attach an observer.
func (a *App) Framerate() *timing.FramerateController { return a.framerate }

// State returns the lifecycle state.
func (a *App) State() State { return a.state }

// Frames returns how many iterations have completed.
func (a *App) Frames() uint64 { return a.frames }

// Run loops until the window asks to close, the quit key is pressed or ctx is
// done. The window is terminated exactly once on the way out, including when
// rendering fails; that error is returned.
func (a *App) Run(ctx context.Context) (err error) {
	if a.state != Running {
		return fmt.Errorf("app already %s", a.state)
	}
	a.logger.Info("main loop started",
		"width", a.cfg.Screen.Width, "height", a.cfg.Screen.Height)

	defer func() {
		a.shutdown()
		attrs := []any{"frames", a.frames, "err", err}
		if s, ok := a.framerate.LastSample(); ok {
			attrs = append(attrs, "last_fps", s.Framerate)
		}
		a.logger.Info("main loop stopped", attrs...)
	}()

	for a.state == Running {
		if err := a.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step runs one iteration of the loop.
//
// The iteration that notices a quit request skips the player commands but
// still polls events, renders a last frame and updates timing. Once an
// iteration leaves Running, Step shuts the window down before returning, and
// later calls do nothing.
func (a *App) Step(ctx context.Context) error {
	if a.state != Running {
		return nil
	}
	defer func() {
		if a.state != Running {
			a.shutdown()
		}
	}()
	if a.quitRequested(ctx) {
		a.transition(Terminating)
	}

	if a.state == Running {
		frameTime := a.framerate.FrameTime()
		dx, dy := input.ComputeDisplacement(a.window, a.cfg.Movement, frameTime)
		a.scene.MovePlayer(dx, dy)

		theta, phi := a.look.ComputeLookDelta(frameTime)
		a.scene.SpinPlayer([2]float64{theta, phi})
	}

	a.window.PollEvents()

	if err := a.renderer.RenderScene(a.drawn); err != nil {
		a.transition(Terminating)
		return fmt.Errorf("render frame %d: %w", a.frames, err)
	}

	a.framerate.OnFrameRendered(a.window.Now())
	a.frames++
	return nil
}

func (a *App) quitRequested(ctx context.Context) bool {
	if a.window.ShouldClose() || a.window.IsKeyPressed(a.cfg.QuitKey) {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (a *App) shutdown() {
	if a.state == Terminated {
		return
	}
	a.transition(Terminated)
	if d, ok := a.renderer.(Destroyer); ok {
		d.Destroy()
	}
	a.window.Terminate()
}

func (a *App) transition(to State) {
	if a.state == to {
		return
	}
	a.logger.Debug("state change", "from", a.state, "to", to, "frame", a.frames)
	a.state = to
}
