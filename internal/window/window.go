package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"render-loop/core"
)

func init() {
	runtime.LockOSThread()
}

// Window owns the glfw window, its GL context and the cursor.
type Window struct {
	Handle *glfw.Window
	Screen core.ScreenGeometry
	Title  string

	DoubleBuffered bool

	terminated bool
}

type Config struct {
	Width        int
	Height       int
	Title        string
	GLMajor      int
	GLMinor      int
	DoubleBuffer bool
	HideCursor   bool
}

func DefaultConfig() Config {
	return Config{
		Width:        1500,
		Height:       1000,
		Title:        "Render Loop",
		GLMajor:      4,
		GLMinor:      1,
		DoubleBuffer: false,
		HideCursor:   true,
	}
}

// New initialises glfw, opens a window with a forward-compatible core
// GL context, makes the context current and parks the hidden cursor at the
// centre of the screen.
func New(config Config) (*Window, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", config.Width, config.Height)
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, config.GLMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, config.GLMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, boolToInt(config.DoubleBuffer))
	glfw.WindowHint(glfw.Resizable, glfw.False)

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()

	window := &Window{
		Handle: handle,
		Screen: core.ScreenGeometry{Width: config.Width, Height: config.Height},
		Title:  config.Title,

		DoubleBuffered: config.DoubleBuffer,
	}

	if config.HideCursor {
		handle.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
	}
	window.SetCursorPos(window.Screen.Center())

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// SwapBuffers presents the back buffer. It is a no-op for single-buffered
// windows, where the renderer's flush is enough.
func (w *Window) SwapBuffers() {
	if w.DoubleBuffered {
		w.Handle.SwapBuffers()
	}
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

func (w *Window) SetCursorPos(x, y float64) {
	w.Handle.SetCursorPos(x, y)
}

// Now reports the glfw timer, which is monotonic and starts at Init.
func (w *Window) Now() time.Duration {
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

// Terminate destroys the window and releases glfw. Calls after the first are
// no-ops.
func (w *Window) Terminate() {
	if w.terminated {
		return
	}
	w.terminated = true
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
