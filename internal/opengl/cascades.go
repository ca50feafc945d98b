package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-pipeline/internal/gfx"
)

const (
	NumCascades = 3
	// CascadeTextureUnit is the unit of cascade 0; cascade i uses unit+i.
	CascadeTextureUnit = 1
)

// CascadedShadowMapFBO owns one depth texture per cascade and a single
// framebuffer whose depth attachment is retargeted per cascade.
type CascadedShadowMapFBO struct {
	FBO      uint32
	Textures [NumCascades]uint32
	Width    int32
	Height   int32
}

var _ gfx.CascadeTargets = (*CascadedShadowMapFBO)(nil)

// NewCascadedShadowMapFBO allocates the cascade textures at width×height
// with cascade 0 attached.
func NewCascadedShadowMapFBO(width, height int) (*CascadedShadowMapFBO, error) {
	c := &CascadedShadowMapFBO{Width: int32(width), Height: int32(height)}

	gl.GenFramebuffers(1, &c.FBO)
	gl.GenTextures(NumCascades, &c.Textures[0])
	for _, tex := range c.Textures {
		allocTexture(tex, c.Width, c.Height, shadowDepthFormat)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.NONE)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, c.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, c.Textures[0], 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		c.Destroy()
		return nil, fmt.Errorf("cascaded shadow map: %w: status=0x%X", gfx.ErrFramebufferIncomplete, status)
	}
	return c, nil
}

func (c *CascadedShadowMapFBO) Size() int { return NumCascades }

func (c *CascadedShadowMapFBO) Dimensions() (int32, int32) { return c.Width, c.Height }

// BindForWriting attaches cascade i as the depth target.
func (c *CascadedShadowMapFBO) BindForWriting(i int) error {
	if i < 0 || i >= NumCascades {
		return fmt.Errorf("%w: %d of %d", gfx.ErrCascadeIndex, i, NumCascades)
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, c.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, c.Textures[i], 0)
	return nil
}

// BindForReading binds every cascade to its texture unit at once.
func (c *CascadedShadowMapFBO) BindForReading() {
	for i, tex := range c.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + CascadeTextureUnit + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}
}

// Destroy frees GPU resources.
func (c *CascadedShadowMapFBO) Destroy() {
	if c.FBO != 0 {
		gl.DeleteFramebuffers(1, &c.FBO)
		c.FBO = 0
	}
	if c.Textures[0] != 0 {
		gl.DeleteTextures(NumCascades, &c.Textures[0])
		c.Textures = [NumCascades]uint32{}
	}
}
