// Package metrics exports framerate measurements to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"render-loop/timing"
)

const namespace = "render_loop"

// Collector holds the loop's gauges. It is safe to update from the render
// thread while the HTTP handler scrapes it.
type Collector struct {
	registry *prometheus.Registry

	framerate *prometheus.GaugeVec
	frameTime *prometheus.GaugeVec
	scale     *prometheus.GaugeVec
	samples   *prometheus.CounterVec
	frames    *prometheus.CounterVec

	session string
}

// NewCollector registers the loop metrics on a fresh registry. session labels
// every series so runs can be told apart.
func NewCollector(session string) *Collector {
	labels := []string{"session"}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		framerate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "framerate_fps",
			Help:      "Framerate measured over the last sampling window.",
		}, labels),
		frameTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frame_time_budget_ms",
			Help:      "Milliseconds attributed to one frame when scaling motion.",
		}, labels),
		scale: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_scale",
			Help:      "Integer downscale factor of the render target.",
		}, labels),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Closed framerate sampling windows.",
		}, labels),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames counted in closed sampling windows.",
		}, labels),
		session: session,
	}
	c.registry.MustRegister(c.framerate, c.frameTime, c.scale, c.samples, c.frames)
	return c
}

// ObserveSample implements timing.Observer.
func (c *Collector) ObserveSample(s timing.Sample) {
	c.framerate.WithLabelValues(c.session).Set(float64(s.Framerate))
	c.frameTime.WithLabelValues(c.session).Set(s.FrameTime)
	c.samples.WithLabelValues(c.session).Inc()
	c.frames.WithLabelValues(c.session).Add(float64(s.Frames))
}

// SetScale records the render target's downscale factor.
func (c *Collector) SetScale(scale int) {
	c.scale.WithLabelValues(c.session).Set(float64(scale))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled. It returns the listen error
// if the server never came up.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", "err", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
