package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch is kept just short of straight up/down so the basis never collapses.
const maxPitch = 89.0

var worldUp = mgl32.Vec3{0, 0, 1}

// Camera is a first-person camera in a z-up world. Theta is the heading in
// degrees around +z, measured from +x; Phi is the pitch in degrees above the
// xy plane.
type Camera struct {
	Position mgl32.Vec3
	Theta    float32
	Phi      float32

	Forwards mgl32.Vec3
	Right    mgl32.Vec3
	Up       mgl32.Vec3
}

func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{Position: position}
	c.recalculateVectors()
	return c
}

// Move walks the camera along its own basis: forwards first, then right.
func (c *Camera) Move(forwards, right float32) {
	c.Position = c.Position.
		Add(c.Forwards.Mul(forwards)).
		Add(c.Right.Mul(right))
}

// Spin turns the camera by dTheta/dPhi degrees. Heading wraps into [0, 360),
// pitch is clamped to ±89.
func (c *Camera) Spin(dTheta, dPhi float32) {
	c.Theta = wrapDegrees(c.Theta + dTheta)
	c.Phi = mgl32.Clamp(c.Phi+dPhi, -maxPitch, maxPitch)
	c.recalculateVectors()
}

func (c *Camera) recalculateVectors() {
	theta := float64(mgl32.DegToRad(c.Theta))
	phi := float64(mgl32.DegToRad(c.Phi))

	c.Forwards = mgl32.Vec3{
		float32(math.Cos(theta) * math.Cos(phi)),
		float32(math.Sin(theta) * math.Cos(phi)),
		float32(math.Sin(phi)),
	}
	c.Right = c.Forwards.Cross(worldUp).Normalize()
	c.Up = c.Right.Cross(c.Forwards).Normalize()
}

func wrapDegrees(d float32) float32 {
	d = float32(math.Mod(float64(d), 360))
	if d < 0 {
		d += 360
	}
	return d
}
