package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"render-loop/core"
)

// Scene is what the renderer draws: a player camera standing on an endless
// checkered floor under a gradient sky.
type Scene struct {
	Player *Camera

	SkyZenith  core.Color
	SkyHorizon core.Color
	FloorA     core.Color
	FloorB     core.Color
	TileSize   float32
}

func NewScene() *Scene {
	return &Scene{
		Player:     NewCamera(mgl32.Vec3{0, 0, 1}),
		SkyZenith:  core.Color{R: 0.18, G: 0.22, B: 0.50, A: 1},
		SkyHorizon: core.Color{R: 0.70, G: 0.78, B: 0.90, A: 1},
		FloorA:     core.Color{R: 0.62, G: 0.58, B: 0.52, A: 1},
		FloorB:     core.Color{R: 0.32, G: 0.30, B: 0.28, A: 1},
		TileSize:   1,
	}
}

// MovePlayer moves the player dForwards along its heading and dRight to its
// right.
func (s *Scene) MovePlayer(dForwards, dRight float64) {
	s.Player.Move(float32(dForwards), float32(dRight))
}

// SpinPlayer applies a [theta, phi] increment in degrees.
func (s *Scene) SpinPlayer(d [2]float64) {
	s.Player.Spin(float32(d[0]), float32(d[1]))
}
