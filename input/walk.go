// Package input turns raw keyboard and cursor state into player motion
// commands.
package input

import (
	"math"

	"render-loop/core"
)

// KeySource reports whether a key is currently held down.
type KeySource interface {
	IsKeyPressed(key int) bool
}

// Combo is a bitmask of movement directions.
type Combo int

const (
	ComboForward  Combo = 1 << iota // bit0
	ComboLeft                       // bit1
	ComboBackward                   // bit2
	ComboRight                      // bit3
)

// MovementKeys binds the four walk directions to key codes.
type MovementKeys struct {
	Forward  int
	Left     int
	Backward int
	Right    int
}

func DefaultMovementKeys() MovementKeys {
	return MovementKeys{
		Forward:  core.KeyW,
		Left:     core.KeyA,
		Backward: core.KeyS,
		Right:    core.KeyD,
	}
}

// walkAngles maps a combo to a walk heading in degrees, 0 being straight
// ahead and 90 a strafe to the left. Contradictory pairs (forward+backward,
// left+right) have no entry and produce no motion.
var walkAngles = map[Combo]float64{
	1:  0,
	2:  90,
	3:  45,
	4:  180,
	6:  135,
	7:  90,
	8:  270,
	9:  315,
	11: 0,
	12: 225,
	13: 270,
	14: 180,
}

const (
	walkSpeed     = 0.1
	walkFrameTime = 16.0 // ms, the frame time walkSpeed is tuned for
)

// WalkAngle returns the heading for combo in degrees, and false when the combo
// does not move the player.
func WalkAngle(combo Combo) (float64, bool) {
	angle, ok := walkAngles[combo]
	return angle, ok
}

// ReadCombo samples the movement keys in priority order forward, left,
// backward, right. Only the first held key contributes; the rest are not
// queried at all, so holding W and A together still walks straight ahead.
//
// The multi-bit entries of the walk table are unreachable through this path.
func ReadCombo(keys KeySource, bindings MovementKeys) Combo {
	switch {
	case keys.IsKeyPressed(bindings.Forward):
		return ComboForward
	case keys.IsKeyPressed(bindings.Left):
		return ComboLeft
	case keys.IsKeyPressed(bindings.Backward):
		return ComboBackward
	case keys.IsKeyPressed(bindings.Right):
		return ComboRight
	}
	return 0
}

// Displacement converts a combo into a forward/right step for one frame.
// frameTime is the per-frame budget in milliseconds; the step is linear in it
// so walking speed does not depend on the framerate. Screen-space y points
// the other way from the walk angle, hence the negated sine.
func Displacement(combo Combo, frameTime float64) (dx, dy float64) {
	angle, ok := WalkAngle(combo)
	if !ok {
		return 0, 0
	}
	rad := angle * math.Pi / 180
	rate := frameTime / walkFrameTime
	dx = walkSpeed * rate * math.Cos(rad)
	dy = -walkSpeed * rate * math.Sin(rad)
	return dx, dy
}

// ComputeDisplacement reads the movement keys and returns this frame's step.
func ComputeDisplacement(keys KeySource, bindings MovementKeys, frameTime float64) (dx, dy float64) {
	return Displacement(ReadCombo(keys, bindings), frameTime)
}
