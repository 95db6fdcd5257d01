package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"render-loop/core"
)

// View is everything the ray-cast pass needs for one frame.
type View struct {
	Position mgl32.Vec3
	Forwards mgl32.Vec3
	Right    mgl32.Vec3
	Up       mgl32.Vec3

	SkyZenith  core.Color
	SkyHorizon core.Color
	FloorA     core.Color
	FloorB     core.Color
	TileSize   float32
}

// rayVertSrc covers the viewport with one triangle built from gl_VertexID.
const rayVertSrc = `
#version 410 core
out vec2 ndc;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    ndc         = pos[gl_VertexID];
}
` + "\x00"

// rayFragSrc casts one primary ray per pixel against the z=0 floor and shades
// misses with the sky gradient.
const rayFragSrc = `
#version 410 core
in  vec2 ndc;
out vec4 outColor;

uniform vec3  camPos;
uniform vec3  camForwards;
uniform vec3  camRight;
uniform vec3  camUp;
uniform float aspect;
uniform vec3  skyZenith;
uniform vec3  skyHorizon;
uniform vec3  floorA;
uniform vec3  floorB;
uniform float tileSize;

void main() {
    vec3 dir = normalize(camForwards + ndc.x * aspect * camRight + ndc.y * camUp);

    if (dir.z < 0.0 && camPos.z > 0.0) {
        float t   = -camPos.z / dir.z;
        vec2  hit = camPos.xy + t * dir.xy;
        vec2  cell = floor(hit / tileSize);
        vec3  base = mod(cell.x + cell.y, 2.0) < 1.0 ? floorA : floorB;
        float fog  = clamp(t / 200.0, 0.0, 1.0);
        outColor = vec4(mix(base, skyHorizon, fog), 1.0);
        return;
    }

    float h = clamp(dir.z, 0.0, 1.0);
    outColor = vec4(mix(skyHorizon, skyZenith, h), 1.0);
}
` + "\x00"

// RayCaster draws the floor-and-sky scene with a single fullscreen pass.
type RayCaster struct {
	prog    uint32
	quadVAO uint32

	camPosLoc      int32
	camForwardsLoc int32
	camRightLoc    int32
	camUpLoc       int32
	aspectLoc      int32
	skyZenithLoc   int32
	skyHorizonLoc  int32
	floorALoc      int32
	floorBLoc      int32
	tileSizeLoc    int32
}

func NewRayCaster() (*RayCaster, error) {
	prog, err := newProgram(rayVertSrc, rayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("ray-cast shader: %w", err)
	}
	rc := &RayCaster{
		prog:           prog,
		camPosLoc:      gl.GetUniformLocation(prog, gl.Str("camPos\x00")),
		camForwardsLoc: gl.GetUniformLocation(prog, gl.Str("camForwards\x00")),
		camRightLoc:    gl.GetUniformLocation(prog, gl.Str("camRight\x00")),
		camUpLoc:       gl.GetUniformLocation(prog, gl.Str("camUp\x00")),
		aspectLoc:      gl.GetUniformLocation(prog, gl.Str("aspect\x00")),
		skyZenithLoc:   gl.GetUniformLocation(prog, gl.Str("skyZenith\x00")),
		skyHorizonLoc:  gl.GetUniformLocation(prog, gl.Str("skyHorizon\x00")),
		floorALoc:      gl.GetUniformLocation(prog, gl.Str("floorA\x00")),
		floorBLoc:      gl.GetUniformLocation(prog, gl.Str("floorB\x00")),
		tileSizeLoc:    gl.GetUniformLocation(prog, gl.Str("tileSize\x00")),
	}
	gl.GenVertexArrays(1, &rc.quadVAO)
	return rc, nil
}

// Draw renders v into target.
func (rc *RayCaster) Draw(target *RenderTarget, v View) {
	target.Bind()
	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(rc.prog)

	gl.Uniform3f(rc.camPosLoc, v.Position.X(), v.Position.Y(), v.Position.Z())
	gl.Uniform3f(rc.camForwardsLoc, v.Forwards.X(), v.Forwards.Y(), v.Forwards.Z())
	gl.Uniform3f(rc.camRightLoc, v.Right.X(), v.Right.Y(), v.Right.Z())
	gl.Uniform3f(rc.camUpLoc, v.Up.X(), v.Up.Y(), v.Up.Z())
	gl.Uniform1f(rc.aspectLoc, float32(target.Width)/float32(target.Height))
	setColor(rc.skyZenithLoc, v.SkyZenith)
	setColor(rc.skyHorizonLoc, v.SkyHorizon)
	setColor(rc.floorALoc, v.FloorA)
	setColor(rc.floorBLoc, v.FloorB)
	gl.Uniform1f(rc.tileSizeLoc, v.TileSize)

	gl.BindVertexArray(rc.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// Destroy frees the shader program and VAO.
func (rc *RayCaster) Destroy() {
	if rc.prog != 0 {
		gl.DeleteProgram(rc.prog)
		rc.prog = 0
	}
	if rc.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &rc.quadVAO)
		rc.quadVAO = 0
	}
}

func setColor(loc int32, c core.Color) {
	gl.Uniform3f(loc, c.R, c.G, c.B)
}
