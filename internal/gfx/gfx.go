// Package gfx declares the GPU state and resource contracts the rendering
// techniques are written against. internal/opengl implements them with
// go-gl; gfxtest records calls for tests.
package gfx

import (
	"errors"
	"fmt"
	"io/fs"

	"render-pipeline/math"
)

var (
	ErrCascadeIndex          = errors.New("cascade index out of range")
	ErrFramebufferIncomplete = errors.New("framebuffer incomplete")
	ErrMissingUniform        = errors.New("missing uniform")
	ErrCompile               = errors.New("shader compile failed")
	ErrLink                  = errors.New("program link failed")
)

// Device is the subset of fixed-function pipeline state the techniques
// toggle between passes.
type Device interface {
	Enable(c Capability)
	Disable(c Capability)
	DepthMask(write bool)
	Clear(mask ClearMask)
	StencilFunc(f CompareFunc, ref int32, mask uint32)
	StencilOpSeparate(face Face, sfail, dpfail, dppass StencilOp)
	BlendEquation(eq BlendEquation)
	BlendFunc(src, dst BlendFactor)
	CullFace(face Face)
	Viewport(x, y, width, height int32)
	BindDefaultFramebuffer()
	// BlitFramebuffer copies the bound read buffer into the bound draw
	// buffer at the same size.
	BlitFramebuffer(width, height int32)
	// CheckError drains the driver error queue.
	CheckError() error
}

// GeometryBuffer is the deferred-shading G-buffer. Exactly one Bind phase
// is active at a time.
type GeometryBuffer interface {
	StartFrame()
	BindForGeometryPass()
	BindForStencilPass()
	BindForLightPass()
	BindForFinalPass()
	Size() (width, height int32)
}

// CascadeTargets is the set of depth textures a cascaded shadow map renders
// into, one cascade at a time.
type CascadeTargets interface {
	Size() int
	BindForWriting(cascade int) error
	BindForReading()
	Dimensions() (width, height int32)
}

// Shader is a linked program with resolved uniform locations.
type Shader interface {
	Use()
	SetMat4(name string, m math.Mat4)
	SetVec3(name string, v math.Vec3)
	SetVec2(name string, v math.Vec2)
	SetFloat(name string, f float32)
	SetInt(name string, i int32)
}

// ProgramSpec names a program's sources and every uniform it must expose.
type ProgramSpec struct {
	Name     string
	Vertex   string
	Fragment string
	Uniforms []string
}

// Compiler builds linked programs from a ProgramSpec.
type Compiler interface {
	Compile(spec ProgramSpec) (Shader, error)
}

// ReadSources loads the vertex and fragment source of spec from fsys.
func ReadSources(fsys fs.FS, spec ProgramSpec) (vertex, fragment string, err error) {
	v, err := fs.ReadFile(fsys, spec.Vertex)
	if err != nil {
		return "", "", fmt.Errorf("program %s: %w", spec.Name, err)
	}
	f, err := fs.ReadFile(fsys, spec.Fragment)
	if err != nil {
		return "", "", fmt.Errorf("program %s: %w", spec.Name, err)
	}
	return string(v), string(f), nil
}
