package input

import "render-loop/core"

// Cursor is the pointer the look controls read and recentre.
type Cursor interface {
	GetCursorPos() (float64, float64)
	SetCursorPos(x, y float64)
}

const lookFrameTime = 16.667 // ms, one 60fps tick

// LookController turns the cursor's offset from the screen centre into a
// rotation. The cursor is put back at the centre after every read, so a
// pointer held away from the centre keeps turning the view each frame.
type LookController struct {
	cursor Cursor
	screen core.ScreenGeometry
}

func NewLookController(cursor Cursor, screen core.ScreenGeometry) *LookController {
	return &LookController{cursor: cursor, screen: screen}
}

// LookDelta is the pure part of ComputeLookDelta.
func LookDelta(screen core.ScreenGeometry, x, y, frameTime float64) (theta, phi float64) {
	cx, cy := screen.Center()
	rate := frameTime / lookFrameTime
	return rate * (cx - x), rate * (cy - y)
}

// ComputeLookDelta reads the cursor, returns the theta/phi increments for this
// frame and recentres the cursor.
func (lc *LookController) ComputeLookDelta(frameTime float64) (theta, phi float64) {
	x, y := lc.cursor.GetCursorPos()
	theta, phi = LookDelta(lc.screen, x, y, frameTime)
	lc.Recenter()
	return theta, phi
}

// Recenter moves the cursor to the screen centre.
func (lc *LookController) Recenter() {
	lc.cursor.SetCursorPos(lc.screen.Center())
}
