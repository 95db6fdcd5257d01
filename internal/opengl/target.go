package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an off-screen colour buffer the scene is drawn into at a
// reduced resolution before being stretched over the window.
type RenderTarget struct {
	FBO      uint32
	ColorTex uint32
	Width    int32
	Height   int32
}

func NewRenderTarget(width, height int) (*RenderTarget, error) {
	rt := &RenderTarget{}
	if err := rt.alloc(width, height); err != nil {
		rt.free()
		return nil, err
	}
	return rt, nil
}

func (rt *RenderTarget) alloc(width, height int) error {
	rt.Width = int32(width)
	rt.Height = int32(height)

	gl.GenTextures(1, &rt.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, rt.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		rt.Width, rt.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &rt.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, rt.ColorTex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("render target %dx%d incomplete (0x%X)", width, height, status)
	}
	return nil
}

func (rt *RenderTarget) free() {
	if rt.FBO != 0 {
		gl.DeleteFramebuffers(1, &rt.FBO)
		rt.FBO = 0
	}
	if rt.ColorTex != 0 {
		gl.DeleteTextures(1, &rt.ColorTex)
		rt.ColorTex = 0
	}
}

// Resize reallocates the colour buffer at the new pixel dimensions.
func (rt *RenderTarget) Resize(width, height int) error {
	if int32(width) == rt.Width && int32(height) == rt.Height {
		return nil
	}
	rt.free()
	return rt.alloc(width, height)
}

// Bind directs subsequent draws into the target.
func (rt *RenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.FBO)
	gl.Viewport(0, 0, rt.Width, rt.Height)
}

// BlitToScreen stretches the target over the default framebuffer without
// filtering, so a coarse target shows as crisp blocks.
func (rt *RenderTarget) BlitToScreen(screenW, screenH int) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, rt.FBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, rt.Width, rt.Height,
		0, 0, int32(screenW), int32(screenH),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Destroy frees the GPU resources owned by the target.
func (rt *RenderTarget) Destroy() {
	rt.free()
}
