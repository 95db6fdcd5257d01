// Package timing measures the achieved framerate and derives the per-frame
// time budget used to scale motion.
package timing

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	// SampleInterval is the length of one measurement window.
	SampleInterval = time.Second

	// ReferenceFramerate caps the frame budget: below this rate motion is not
	// sped up to compensate for slow frames.
	ReferenceFramerate = 60
)

// SamplingState is the state of the measurement window.
type SamplingState int

const (
	// Accumulating counts frames until SampleInterval has elapsed.
	Accumulating SamplingState = iota
	// Sampled is entered for the frame that closes a window. It publishes the
	// measurement, restarts the window and falls back to Accumulating within
	// the same call.
	Sampled
)

func (s SamplingState) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Sampled:
		return "sampled"
	}
	return fmt.Sprintf("SamplingState(%d)", int(s))
}

// TitleSetter receives the human readable framerate.
type TitleSetter interface {
	SetTitle(title string)
}

// ResolutionAdapter is told the measured framerate once per window.
type ResolutionAdapter interface {
	AdaptResolution(framerate int)
}

// Sample is one closed measurement window.
type Sample struct {
	Framerate int
	Frames    int
	Elapsed   time.Duration
	FrameTime float64 // ms
}

// Observer is notified after every Sample, e.g. to export metrics.
type Observer interface {
	ObserveSample(s Sample)
}

// FramerateController counts rendered frames over roughly one second windows.
// At the end of each window it publishes the framerate to the window title,
// updates the frame budget and asks the renderer to adapt its resolution.
// There is no smoothing across windows.
type FramerateController struct {
	title    TitleSetter
	adapter  ResolutionAdapter
	observer Observer
	logger   *slog.Logger

	state       SamplingState
	lastSample  time.Duration
	currentTime time.Duration
	frameCount  int
	frameTime   float64
	last        Sample
}

// NewFramerateController starts the first window at start. The frame budget
// is zero until the first window closes.
func NewFramerateController(start time.Duration, title TitleSetter, adapter ResolutionAdapter, logger *slog.Logger) *FramerateController {
	if logger == nil {
		logger = slog.Default()
	}
	return &FramerateController{
		title:       title,
		adapter:     adapter,
		logger:      logger.With("component", "framerate"),
		state:       Accumulating,
		lastSample:  start,
		currentTime: start,
	}
}

// SetObserver installs an observer for closed windows. nil removes it.
func (fc *FramerateController) SetObserver(o Observer) {
	fc.observer = o
}

// OnFrameRendered records one frame at time now and reports whether it closed
// a measurement window.
func (fc *FramerateController) OnFrameRendered(now time.Duration) bool {
	fc.currentTime = now
	if now-fc.lastSample >= SampleInterval {
		fc.state = Sampled
	}

	switch fc.state {
	case Sampled:
		fc.publish(now)
		// The closing frame belongs to neither window.
		fc.frameCount = 0
		fc.state = Accumulating
		return true
	default:
		fc.frameCount++
		return false
	}
}

func (fc *FramerateController) publish(now time.Duration) {
	elapsed := now - fc.lastSample
	framerate := int(math.Floor(float64(fc.frameCount) / elapsed.Seconds()))

	fc.lastSample = now
	fc.frameTime = FrameBudget(framerate)
	fc.last = Sample{
		Framerate: framerate,
		Frames:    fc.frameCount,
		Elapsed:   elapsed,
		FrameTime: fc.frameTime,
	}

	if fc.title != nil {
		fc.title.SetTitle(Title(framerate))
	}
	if fc.adapter != nil {
		fc.adapter.AdaptResolution(framerate)
	}
	if fc.observer != nil {
		fc.observer.ObserveSample(fc.last)
	}
	fc.logger.Debug("framerate sampled",
		"fps", framerate, "frames", fc.last.Frames,
		"elapsed", elapsed, "frame_time_ms", fc.frameTime)
}

// FrameBudget is the time in milliseconds attributed to one frame at the given
// framerate. It never exceeds the budget of ReferenceFramerate.
func FrameBudget(framerate int) float64 {
	return 1000.0 / float64(max(ReferenceFramerate, framerate))
}

// Title formats the window title for a framerate.
func Title(framerate int) string {
	return fmt.Sprintf("Running at %d fps.", framerate)
}

// FrameTime returns the current per-frame budget in milliseconds.
func (fc *FramerateController) FrameTime() float64 { return fc.frameTime }

// FrameCount returns the frames counted in the open window.
func (fc *FramerateController) FrameCount() int { return fc.frameCount }

// State returns the sampling state. Outside OnFrameRendered it is always
// Accumulating.
func (fc *FramerateController) State() SamplingState { return fc.state }

// LastSample returns the most recent closed window and whether there is one.
func (fc *FramerateController) LastSample() (Sample, bool) {
	return fc.last, fc.last.Elapsed > 0
}

// LastSampleTime and CurrentTime expose the window boundaries.
func (fc *FramerateController) LastSampleTime() time.Duration { return fc.lastSample }
func (fc *FramerateController) CurrentTime() time.Duration    { return fc.currentTime }
