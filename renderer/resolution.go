package renderer

// ResolutionScaler picks the integer downscale factor of the render target
// from the measured framerate. It moves at most one step per measurement.
type ResolutionScaler struct {
	Scale        int // current factor, 1 = native resolution
	MaxScale     int
	MinFramerate int // below this the image gets coarser
	MaxFramerate int // above this the image gets finer
}

// Adapt applies one framerate measurement and reports whether Scale changed.
func (rs *ResolutionScaler) Adapt(framerate int) bool {
	prev := rs.Scale
	switch {
	case framerate < rs.MinFramerate && rs.Scale < rs.MaxScale:
		rs.Scale++
	case framerate > rs.MaxFramerate && rs.Scale > 1:
		rs.Scale--
	}
	return rs.Scale != prev
}
