package renderer

import (
	"fmt"
	"log/slog"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-loop/core"
	"render-loop/internal/opengl"
	"render-loop/scene"
)

// Presenter shows the finished frame on screen. GetFramebufferSize reports
// the default framebuffer in pixels, which is larger than the window on HiDPI
// displays.
type Presenter interface {
	SwapBuffers()
	GetFramebufferSize() (int, int)
}

type Config struct {
	InitialScale int
	MaxScale     int
	MinFramerate int
	MaxFramerate int
}

func DefaultConfig() Config {
	return Config{
		InitialScale: 1,
		MaxScale:     8,
		MinFramerate: 30,
		MaxFramerate: 75,
	}
}

// Validate reports whether the thresholds describe a usable scaler.
func (c Config) Validate() error {
	if c.MaxScale < 1 {
		return fmt.Errorf("max scale %d must be at least 1", c.MaxScale)
	}
	if c.InitialScale < 1 || c.InitialScale > c.MaxScale {
		return fmt.Errorf("initial scale %d outside [1, %d]", c.InitialScale, c.MaxScale)
	}
	if c.MinFramerate < 0 || c.MinFramerate > c.MaxFramerate {
		return fmt.Errorf("framerate band [%d, %d] is empty", c.MinFramerate, c.MaxFramerate)
	}
	return nil
}

// RenderEngine draws the scene into a render target sized screen/scale and
// stretches it over the window's framebuffer. AdaptResolution trades sharpness for speed.
type RenderEngine struct {
	caster    *opengl.RayCaster
	target    *opengl.RenderTarget
	presenter Presenter
	screen    core.ScreenGeometry
	scaler    ResolutionScaler
	logger    *slog.Logger

	// OnScaleChange, if set, is called after the render target was resized.
	OnScaleChange func(scale int)

	resizeErr error
}

// NewRenderEngine loads GL and builds the render target. The window's GL
// context must be current.
func NewRenderEngine(presenter Presenter, screen core.ScreenGeometry, cfg Config, logger *slog.Logger) (*RenderEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "renderer")

	version, err := opengl.Init()
	if err != nil {
		return nil, err
	}
	logger.Info("OpenGL initialized", "version", version)

	caster, err := opengl.NewRayCaster()
	if err != nil {
		return nil, fmt.Errorf("failed to create ray caster: %w", err)
	}

	scaler := ResolutionScaler{
		Scale:        cfg.InitialScale,
		MaxScale:     cfg.MaxScale,
		MinFramerate: cfg.MinFramerate,
		MaxFramerate: cfg.MaxFramerate,
	}
	size := screen.Scaled(scaler.Scale)
	target, err := opengl.NewRenderTarget(size.Width, size.Height)
	if err != nil {
		caster.Destroy()
		return nil, fmt.Errorf("failed to create render target: %w", err)
	}

	return &RenderEngine{
		caster:    caster,
		target:    target,
		presenter: presenter,
		screen:    screen,
		scaler:    scaler,
		logger:    logger,
	}, nil
}

// RenderScene draws one frame. Errors are not recovered from.
func (re *RenderEngine) RenderScene(s *scene.Scene) error {
	if re.resizeErr != nil {
		return fmt.Errorf("resize render target: %w", re.resizeErr)
	}
	if s == nil || s.Player == nil {
		return fmt.Errorf("no scene or player")
	}

	p := s.Player
	re.caster.Draw(re.target, opengl.View{
		Position:   p.Position,
		Forwards:   p.Forwards,
		Right:      p.Right,
		Up:         p.Up,
		SkyZenith:  s.SkyZenith,
		SkyHorizon: s.SkyHorizon,
		FloorA:     s.FloorA,
		FloorB:     s.FloorB,
		TileSize:   s.TileSize,
	})
	if fb, ok := framebufferSize(re.presenter); ok {
		re.target.BlitToScreen(fb.Width, fb.Height)
	}
	gl.Flush()
	re.presenter.SwapBuffers()

	return opengl.CheckError("render scene")
}

// framebufferSize is queried every frame since the window may move between
// monitors of different density. A minimised window reports 0×0.
func framebufferSize(p Presenter) (core.ScreenGeometry, bool) {
	w, h := p.GetFramebufferSize()
	if w <= 0 || h <= 0 {
		return core.ScreenGeometry{}, false
	}
	return core.ScreenGeometry{Width: w, Height: h}, true
}

// AdaptResolution feeds a framerate measurement to the scaler and resizes the
// render target when the factor moves. A failed resize surfaces from the next
// RenderScene.
func (re *RenderEngine) AdaptResolution(framerate int) {
	prev := re.scaler.Scale
	if !re.scaler.Adapt(framerate) {
		return
	}
	size := re.screen.Scaled(re.scaler.Scale)
	if err := re.target.Resize(size.Width, size.Height); err != nil {
		re.resizeErr = err
		return
	}
	re.logger.Info("resolution adapted",
		"fps", framerate, "from_scale", prev, "to_scale", re.scaler.Scale,
		"width", size.Width, "height", size.Height)
	if re.OnScaleChange != nil {
		re.OnScaleChange(re.scaler.Scale)
	}
}

// Scale returns the current downscale factor.
func (re *RenderEngine) Scale() int { return re.scaler.Scale }

// Destroy releases all GPU resources.
func (re *RenderEngine) Destroy() {
	re.target.Destroy()
	re.caster.Destroy()
}
