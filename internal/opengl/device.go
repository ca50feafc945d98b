package opengl

import (
	"errors"
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-pipeline/internal/gfx"
)

// ErrDriver wraps errors drained from glGetError.
var ErrDriver = errors.New("gl error")

// Init loads the GL function pointers for the current context.
func Init() (version string, err error) {
	if err := gl.Init(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return gl.GoStr(gl.GetString(gl.VERSION)), nil
}

// Device issues fixed-function state changes on the current context.
type Device struct{}

var _ gfx.Device = Device{}

func (Device) Enable(c gfx.Capability)  { gl.Enable(capability(c)) }
func (Device) Disable(c gfx.Capability) { gl.Disable(capability(c)) }
func (Device) DepthMask(write bool)     { gl.DepthMask(write) }

func (Device) Clear(mask gfx.ClearMask) {
	var bits uint32
	if mask&gfx.ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&gfx.StencilBuffer != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (Device) StencilFunc(f gfx.CompareFunc, ref int32, mask uint32) {
	gl.StencilFunc(compareFunc(f), ref, mask)
}

func (Device) StencilOpSeparate(face gfx.Face, sfail, dpfail, dppass gfx.StencilOp) {
	gl.StencilOpSeparate(faceEnum(face), stencilOp(sfail), stencilOp(dpfail), stencilOp(dppass))
}

func (Device) BlendEquation(eq gfx.BlendEquation) { gl.BlendEquation(blendEquation(eq)) }

func (Device) BlendFunc(src, dst gfx.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (Device) CullFace(face gfx.Face)             { gl.CullFace(faceEnum(face)) }
func (Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (Device) BindDefaultFramebuffer()            { gl.BindFramebuffer(gl.FRAMEBUFFER, 0) }

func (Device) BlitFramebuffer(width, height int32) {
	gl.BlitFramebuffer(0, 0, width, height, 0, 0, width, height, gl.COLOR_BUFFER_BIT, gl.LINEAR)
}

// CheckError drains every pending driver error. It returns nil when the
// queue was empty.
func (Device) CheckError() error {
	var names []string
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		names = append(names, errorName(code))
		if len(names) > 32 {
			break
		}
	}
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDriver, strings.Join(names, ", "))
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	}
	return fmt.Sprintf("0x%X", code)
}

// The enum mappers panic on values they do not know: a new gfx constant
// must be mapped here before it can reach the driver.

func capability(c gfx.Capability) uint32 {
	switch c {
	case gfx.DepthTest:
		return gl.DEPTH_TEST
	case gfx.StencilTest:
		return gl.STENCIL_TEST
	case gfx.Blend:
		return gl.BLEND
	case gfx.CullFaceTest:
		return gl.CULL_FACE
	}
	panic(fmt.Sprintf("opengl: unmapped %v", c))
}

func compareFunc(f gfx.CompareFunc) uint32 {
	switch f {
	case gfx.Always:
		return gl.ALWAYS
	case gfx.NotEqual:
		return gl.NOTEQUAL
	case gfx.Less:
		return gl.LESS
	case gfx.LessEqual:
		return gl.LEQUAL
	}
	panic(fmt.Sprintf("opengl: unmapped %v", f))
}

func stencilOp(op gfx.StencilOp) uint32 {
	switch op {
	case gfx.Keep:
		return gl.KEEP
	case gfx.IncrWrap:
		return gl.INCR_WRAP
	case gfx.DecrWrap:
		return gl.DECR_WRAP
	}
	panic(fmt.Sprintf("opengl: unmapped %v", op))
}

func faceEnum(f gfx.Face) uint32 {
	switch f {
	case gfx.Front:
		return gl.FRONT
	case gfx.Back:
		return gl.BACK
	}
	panic(fmt.Sprintf("opengl: unmapped %v", f))
}

func blendEquation(eq gfx.BlendEquation) uint32 {
	switch eq {
	case gfx.FuncAdd:
		return gl.FUNC_ADD
	}
	panic(fmt.Sprintf("opengl: unmapped %v", eq))
}

func blendFactor(f gfx.BlendFactor) uint32 {
	switch f {
	case gfx.One:
		return gl.ONE
	case gfx.Zero:
		return gl.ZERO
	}
	panic(fmt.Sprintf("opengl: unmapped %v", f))
}
