package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-pipeline/internal/gfx"
)

// G-buffer attribute textures, in attachment order.
const (
	GBufferPosition = iota
	GBufferDiffuse
	GBufferNormal
	GBufferNumTextures
)

const finalAttachment = gl.COLOR_ATTACHMENT0 + 4

// GBuffer holds the per-pixel attributes written by the geometry pass and
// the accumulation target the light passes blend into.
type GBuffer struct {
	FBO          uint32
	Textures     [GBufferNumTextures]uint32
	DepthTexture uint32
	FinalTexture uint32
	Width        int32
	Height       int32
}

var _ gfx.GeometryBuffer = (*GBuffer)(nil)

// NewGBuffer allocates the attachments at width×height.
func NewGBuffer(width, height int) (*GBuffer, error) {
	g := &GBuffer{Width: int32(width), Height: int32(height)}

	gl.GenFramebuffers(1, &g.FBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, g.FBO)

	gl.GenTextures(GBufferNumTextures, &g.Textures[0])
	for i, tex := range g.Textures {
		allocTexture(tex, g.Width, g.Height, attributeFormat)
		gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, tex, 0)
	}

	g.DepthTexture = newTexture(g.Width, g.Height, depthStencilFormat)
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.TEXTURE_2D, g.DepthTexture, 0)

	g.FinalTexture = newTexture(g.Width, g.Height, accumulationFormat)
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, finalAttachment, gl.TEXTURE_2D, g.FinalTexture, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		g.Destroy()
		return nil, fmt.Errorf("gbuffer: %w: status=0x%X", gfx.ErrFramebufferIncomplete, status)
	}
	return g, nil
}

func (g *GBuffer) Size() (int32, int32) { return g.Width, g.Height }

// StartFrame clears only the accumulation target.
func (g *GBuffer) StartFrame() {
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, g.FBO)
	gl.DrawBuffer(finalAttachment)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (g *GBuffer) BindForGeometryPass() {
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, g.FBO)
	drawBuffers := [GBufferNumTextures]uint32{
		gl.COLOR_ATTACHMENT0,
		gl.COLOR_ATTACHMENT1,
		gl.COLOR_ATTACHMENT2,
	}
	gl.DrawBuffers(GBufferNumTextures, &drawBuffers[0])
}

// BindForStencilPass disables every colour target; only depth and stencil
// are affected.
func (g *GBuffer) BindForStencilPass() {
	gl.DrawBuffer(gl.NONE)
}

// BindForLightPass targets the accumulation texture and binds the attribute
// textures to units 0, 1 and 2.
func (g *GBuffer) BindForLightPass() {
	gl.DrawBuffer(finalAttachment)
	for i, tex := range g.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}
}

// BindForFinalPass makes the accumulation texture the read source and the
// default framebuffer the draw target, ready for a blit.
func (g *GBuffer) BindForFinalPass() {
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.FBO)
	gl.ReadBuffer(finalAttachment)
}

// Destroy frees GPU resources.
func (g *GBuffer) Destroy() {
	if g.FBO != 0 {
		gl.DeleteFramebuffers(1, &g.FBO)
		g.FBO = 0
	}
	if g.Textures[0] != 0 {
		gl.DeleteTextures(GBufferNumTextures, &g.Textures[0])
		g.Textures = [GBufferNumTextures]uint32{}
	}
	deleteTexture(&g.DepthTexture)
	deleteTexture(&g.FinalTexture)
}
