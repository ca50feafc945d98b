package opengl

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"

	"render-pipeline/internal/gfx"
)

func TestEnumMapping(t *testing.T) {
	assert.Equal(t, uint32(gl.DEPTH_TEST), capability(gfx.DepthTest))
	assert.Equal(t, uint32(gl.STENCIL_TEST), capability(gfx.StencilTest))
	assert.Equal(t, uint32(gl.BLEND), capability(gfx.Blend))
	assert.Equal(t, uint32(gl.CULL_FACE), capability(gfx.CullFaceTest))

	assert.Equal(t, uint32(gl.ALWAYS), compareFunc(gfx.Always))
	assert.Equal(t, uint32(gl.NOTEQUAL), compareFunc(gfx.NotEqual))
	assert.Equal(t, uint32(gl.LESS), compareFunc(gfx.Less))
	assert.Equal(t, uint32(gl.LEQUAL), compareFunc(gfx.LessEqual))

	assert.Equal(t, uint32(gl.KEEP), stencilOp(gfx.Keep))
	assert.Equal(t, uint32(gl.INCR_WRAP), stencilOp(gfx.IncrWrap))
	assert.Equal(t, uint32(gl.DECR_WRAP), stencilOp(gfx.DecrWrap))

	assert.Equal(t, uint32(gl.FRONT), faceEnum(gfx.Front))
	assert.Equal(t, uint32(gl.BACK), faceEnum(gfx.Back))

	assert.Equal(t, uint32(gl.FUNC_ADD), blendEquation(gfx.FuncAdd))
	assert.Equal(t, uint32(gl.ONE), blendFactor(gfx.One))
	assert.Equal(t, uint32(gl.ZERO), blendFactor(gfx.Zero))
}

func TestEnumMappingPanicsOnUnknownValues(t *testing.T) {
	assert.Panics(t, func() { capability(gfx.Capability(99)) })
	assert.Panics(t, func() { compareFunc(gfx.CompareFunc(99)) })
	assert.Panics(t, func() { stencilOp(gfx.StencilOp(99)) })
	assert.Panics(t, func() { faceEnum(gfx.Face(99)) })
	assert.Panics(t, func() { blendEquation(gfx.BlendEquation(99)) })
	assert.Panics(t, func() { blendFactor(gfx.BlendFactor(99)) })
}
