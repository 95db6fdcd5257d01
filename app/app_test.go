package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"render-loop/core"
	"render-loop/scene"
)

// fakeWindow is a scripted window. The clock advances by step on every poll,
// so each loop iteration takes exactly one step of wall time.
type fakeWindow struct {
	log *[]string

	pressed    map[int]bool
	closeAfter int // ShouldClose becomes true on this check; 0 = never
	checks     int
	cursorX    float64
	cursorY    float64
	titles     []string
	now        time.Duration
	step       time.Duration
	polls      int
	terminated int
	onPoll     func(w *fakeWindow)
}

func (w *fakeWindow) record(s string) { *w.log = append(*w.log, s) }

func (w *fakeWindow) PollEvents() {
	w.record("poll")
	w.polls++
	w.now += w.step
	if w.onPoll != nil {
		w.onPoll(w)
	}
}

func (w *fakeWindow) IsKeyPressed(key int) bool { return w.pressed[key] }

func (w *fakeWindow) GetCursorPos() (float64, float64) { return w.cursorX, w.cursorY }

func (w *fakeWindow) SetCursorPos(x, y float64) {
	w.record("recenter")
	w.cursorX, w.cursorY = x, y
}

func (w *fakeWindow) SetTitle(title string) { w.titles = append(w.titles, title) }

func (w *fakeWindow) ShouldClose() bool {
	w.checks++
	return w.closeAfter > 0 && w.checks >= w.closeAfter
}

func (w *fakeWindow) Now() time.Duration { return w.now }

func (w *fakeWindow) Terminate() {
	w.record("terminate")
	w.terminated++
}

type fakeRenderer struct {
	log     *[]string
	adapted []int
	failAt  int // 1-based frame to fail on; 0 = never
	frames  int
}

func (r *fakeRenderer) RenderScene(*scene.Scene) error {
	*r.log = append(*r.log, "render")
	r.frames++
	if r.failAt > 0 && r.frames == r.failAt {
		return errors.New("device lost")
	}
	return nil
}

func (r *fakeRenderer) AdaptResolution(framerate int) {
	*r.log = append(*r.log, "adapt")
	r.adapted = append(r.adapted, framerate)
}

type move struct{ dx, dy float64 }

type fakeScene struct {
	log   *[]string
	moves []move
	spins [][2]float64
}

func (s *fakeScene) MovePlayer(dx, dy float64) {
	*s.log = append(*s.log, "move")
	s.moves = append(s.moves, move{dx, dy})
}

func (s *fakeScene) SpinPlayer(d [2]float64) {
	*s.log = append(*s.log, "spin")
	s.spins = append(s.spins, d)
}

type harness struct {
	log      []string
	window   *fakeWindow
	renderer *fakeRenderer
	scene    *fakeScene
	app      *App
}

func newHarness(step time.Duration) *harness {
	h := &harness{}
	h.window = &fakeWindow{log: &h.log, pressed: map[int]bool{}, step: step}
	h.renderer = &fakeRenderer{log: &h.log}
	h.scene = &fakeScene{log: &h.log}
	cfg := DefaultConfig()
	h.window.cursorX, h.window.cursorY = cfg.Screen.Center()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.app = NewWithSink(h.window, h.renderer, scene.NewScene(), h.scene, cfg, logger)
	return h
}

func (h *harness) count(op string) int {
	n := 0
	for _, s := range h.log {
		if s == op {
			n++
		}
	}
	return n
}

func TestIterationOrder(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	if err := h.app.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := "move,recenter,spin,poll,render"
	if got := strings.Join(h.log, ","); got != want {
		t.Errorf("iteration order = %s, want %s", got, want)
	}
	if h.app.State() != Running {
		t.Errorf("state = %v, want running", h.app.State())
	}
}

func TestEscapeTerminates(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.window.onPoll = func(w *fakeWindow) {
		if w.polls == 3 {
			w.pressed[core.KeyEscape] = true
			w.pressed[core.KeyW] = true
		}
	}

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Three full iterations, then one terminating pass.
	if h.renderer.frames != 4 {
		t.Errorf("rendered %d frames, want 4", h.renderer.frames)
	}
	if len(h.scene.moves) != 3 || len(h.scene.spins) != 3 {
		t.Errorf("moves=%d spins=%d, want 3 each", len(h.scene.moves), len(h.scene.spins))
	}
	if h.window.terminated != 1 {
		t.Errorf("terminated %d times, want 1", h.window.terminated)
	}
	if h.app.State() != Terminated {
		t.Errorf("state = %v, want terminated", h.app.State())
	}
	if last := h.log[len(h.log)-1]; last != "terminate" {
		t.Errorf("last operation = %s, want terminate", last)
	}
}

func TestShouldCloseTerminates(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.window.closeAfter = 1

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.count("move") != 0 || h.count("spin") != 0 {
		t.Errorf("player commands issued after close: %v", h.log)
	}
	want := "poll,render,terminate"
	if got := strings.Join(h.log, ","); got != want {
		t.Errorf("log = %s, want %s", got, want)
	}
}

func TestContextCancelTerminates(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	h.window.onPoll = func(w *fakeWindow) {
		if w.polls == 5 {
			cancel()
		}
	}

	if err := h.app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.renderer.frames != 6 {
		t.Errorf("rendered %d frames, want 6", h.renderer.frames)
	}
	if h.window.terminated != 1 {
		t.Errorf("terminated %d times, want 1", h.window.terminated)
	}
}

func TestRenderFailureStopsLoop(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.renderer.failAt = 2

	err := h.app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "device lost") {
		t.Fatalf("Run error = %v, want device lost", err)
	}
	if h.window.terminated != 1 {
		t.Errorf("terminated %d times, want 1", h.window.terminated)
	}
	if h.app.State() != Terminated {
		t.Errorf("state = %v, want terminated", h.app.State())
	}
	if h.app.Frames() != 1 {
		t.Errorf("completed frames = %d, want 1", h.app.Frames())
	}

	if err := h.app.Run(context.Background()); err == nil {
		t.Error("second Run succeeded on a terminated app")
	}
	if h.window.terminated != 1 {
		t.Errorf("terminated %d times after second Run, want 1", h.window.terminated)
	}
}

func TestNoMotionBeforeFirstSample(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.window.pressed[core.KeyW] = true
	h.window.cursorX, h.window.cursorY = 0, 0

	h.app.Step(context.Background())
	if m := h.scene.moves[0]; m.dx != 0 || m.dy != 0 {
		t.Errorf("first move = %+v, want zero with an empty frame budget", m)
	}
	if s := h.scene.spins[0]; s[0] != 0 || s[1] != 0 {
		t.Errorf("first spin = %v, want zero with an empty frame budget", s)
	}
	if h.window.cursorX != 750 || h.window.cursorY != 500 {
		t.Errorf("cursor = (%v, %v), want recentred", h.window.cursorX, h.window.cursorY)
	}
}

func TestMotionScalesWithSampledBudget(t *testing.T) {
	// 100 frames of 10ms close a window at 1s with 99 counted frames, which
	// is above 60fps, so the budget becomes 1000/99 ms.
	h := newHarness(10 * time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		h.app.Step(ctx)
	}
	if len(h.window.titles) != 1 || h.window.titles[0] != "Running at 99 fps." {
		t.Fatalf("titles = %q", h.window.titles)
	}
	if len(h.renderer.adapted) != 1 || h.renderer.adapted[0] != 99 {
		t.Fatalf("adapted = %v, want [99]", h.renderer.adapted)
	}

	h.window.pressed[core.KeyD] = true
	h.window.cursorX = 700
	h.app.Step(ctx)

	budget := 1000.0 / 99
	m := h.scene.moves[len(h.scene.moves)-1]
	wantDy := 0.1 * budget / 16
	if math.Abs(m.dx) > 1e-9 || math.Abs(m.dy-wantDy) > 1e-9 {
		t.Errorf("move = %+v, want (0, %v)", m, wantDy)
	}
	s := h.scene.spins[len(h.scene.spins)-1]
	wantTheta := budget / 16.667 * 50
	if math.Abs(s[0]-wantTheta) > 1e-9 || s[1] != 0 {
		t.Errorf("spin = %v, want [%v 0]", s, wantTheta)
	}
}

func TestSlowFramesCapBudget(t *testing.T) {
	// 50ms frames: 19 counted frames per window, so 19 fps and a 60fps budget.
	h := newHarness(50 * time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		h.app.Step(ctx)
	}
	if got := h.app.Framerate().FrameTime(); got != 1000.0/60 {
		t.Errorf("frame budget = %v, want %v", got, 1000.0/60)
	}
	if len(h.renderer.adapted) != 1 || h.renderer.adapted[0] != 19 {
		t.Errorf("adapted = %v, want [19]", h.renderer.adapted)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Running:     "running",
		Terminating: "terminating",
		Terminated:  "terminated",
		State(9):    "State(9)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

type destroyingRenderer struct {
	*fakeRenderer
}

func (r destroyingRenderer) Destroy() { *r.log = append(*r.log, "destroy") }

func TestRendererReleasedBeforeWindow(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.window.closeAfter = 1
	a := NewWithSink(h.window, destroyingRenderer{h.renderer}, scene.NewScene(), h.scene,
		DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "poll,render,destroy,terminate"
	if got := strings.Join(h.log, ","); got != want {
		t.Errorf("log = %s, want %s", got, want)
	}
}

func TestRealSceneWalks(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	s := scene.NewScene()
	a := New(h.window, h.renderer, s, DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		a.Step(ctx)
	}

	start := s.Player.Position
	h.window.pressed[core.KeyW] = true
	a.Step(ctx)
	if got := s.Player.Position.X() - start.X(); got <= 0 {
		t.Errorf("player moved %v along +x, want forward motion", got)
	}
}

func TestStepShutsDownOnQuit(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.window.closeAfter = 1
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.app.Step(ctx); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if h.app.State() != Terminated {
		t.Errorf("state = %v, want terminated", h.app.State())
	}
	if h.window.terminated != 1 {
		t.Errorf("terminated %d times, want 1", h.window.terminated)
	}
	if h.renderer.frames != 1 {
		t.Errorf("rendered %d frames, want 1", h.renderer.frames)
	}
}

func TestStepShutsDownOnRenderFailure(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	h.renderer.failAt = 1

	if err := h.app.Step(context.Background()); err == nil {
		t.Fatal("Step succeeded on a failing renderer")
	}
	if h.app.State() != Terminated || h.window.terminated != 1 {
		t.Errorf("state = %v terminated = %d, want terminated once", h.app.State(), h.window.terminated)
	}
}

func TestRunLogsLastFramerate(t *testing.T) {
	h := newHarness(10 * time.Millisecond)
	var out bytes.Buffer
	a := NewWithSink(h.window, h.renderer, scene.NewScene(), h.scene,
		DefaultConfig(), slog.New(slog.NewTextHandler(&out, nil)))
	h.window.onPoll = func(w *fakeWindow) {
		if w.polls == 150 {
			w.closeAfter = w.checks + 1
		}
	}

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "last_fps=99") {
		t.Errorf("stop log missing last_fps=99:\n%s", out.String())
	}
}
