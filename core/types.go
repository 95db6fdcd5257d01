package core

type Color struct {
	R, G, B, A float32
}

// ScreenGeometry is the window size in pixels. It is fixed for the lifetime
// of the process.
type ScreenGeometry struct {
	Width  int
	Height int
}

// Center returns the cursor position the look controls measure against.
// Cursor recentring and delta computation must use the same point, otherwise
// odd sizes leave a permanent half-pixel drift.
func (s ScreenGeometry) Center() (float64, float64) {
	return float64(s.Width) / 2, float64(s.Height) / 2
}

// Scaled returns the geometry divided by an integer downscale factor, never
// smaller than 1×1.
func (s ScreenGeometry) Scaled(factor int) ScreenGeometry {
	if factor < 1 {
		factor = 1
	}
	w, h := s.Width/factor, s.Height/factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return ScreenGeometry{Width: w, Height: h}
}
