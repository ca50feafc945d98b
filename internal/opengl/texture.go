package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// textureFormat describes how a framebuffer attachment texture is stored
// and sampled.
type textureFormat struct {
	internalFormat int32
	format         uint32
	xtype          uint32
	filter         int32
	clampToEdge    bool
}

var (
	attributeFormat    = textureFormat{internalFormat: gl.RGB32F, format: gl.RGB, xtype: gl.FLOAT, filter: gl.NEAREST}
	accumulationFormat = textureFormat{internalFormat: gl.RGBA, format: gl.RGB, xtype: gl.FLOAT, filter: gl.NEAREST}
	depthStencilFormat = textureFormat{
		internalFormat: gl.DEPTH32F_STENCIL8,
		format:         gl.DEPTH_STENCIL,
		xtype:          gl.FLOAT_32_UNSIGNED_INT_24_8_REV,
		filter:         gl.NEAREST,
	}
	shadowDepthFormat = textureFormat{
		internalFormat: gl.DEPTH_COMPONENT32F,
		format:         gl.DEPTH_COMPONENT,
		xtype:          gl.FLOAT,
		filter:         gl.LINEAR,
		clampToEdge:    true,
	}
)

// allocTexture gives tex uninitialised storage of width×height in f and
// leaves it bound to TEXTURE_2D. The OpenGL context must be current.
func allocTexture(tex uint32, width, height int32, f textureFormat) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internalFormat, width, height, 0, f.format, f.xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, f.filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, f.filter)
	if f.clampToEdge {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
}

// newTexture generates and allocates a single texture.
func newTexture(width, height int32, f textureFormat) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	allocTexture(id, width, height, f)
	return id
}

// deleteTexture frees a texture and zeroes its id. Zero ids are skipped.
func deleteTexture(id *uint32) {
	if *id == 0 {
		return
	}
	gl.DeleteTextures(1, id)
	*id = 0
}
