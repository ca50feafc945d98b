// Package gfxtest provides recording fakes of the gfx contracts. Every fake
// appends to a shared Recorder so tests can assert on the exact order of
// GPU-facing calls across devices, buffers, shaders and meshes.
package gfxtest

import (
	"fmt"
	"slices"
	"strings"

	"render-pipeline/internal/gfx"
	"render-pipeline/math"
)

type Recorder struct {
	Calls []string
	// Errors collects misuse the fakes detect, such as uploads to a uniform
	// the program does not declare.
	Errors []string
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) Reset() {
	r.Calls = nil
	r.Errors = nil
}

// Count returns how many recorded calls equal call.
func (r *Recorder) Count(call string) int {
	n := 0
	for _, c := range r.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// Index returns the position of the first call equal to call at or after
// from, or -1.
func (r *Recorder) Index(call string, from int) int {
	if from < 0 || from >= len(r.Calls) {
		return -1
	}
	i := slices.Index(r.Calls[from:], call)
	if i < 0 {
		return -1
	}
	return from + i
}

// Filter returns the calls that start with any of the prefixes, in order.
func (r *Recorder) Filter(prefixes ...string) []string {
	var out []string
	for _, c := range r.Calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

type Device struct {
	*Recorder
	Err error
}

var _ gfx.Device = (*Device)(nil)

func (d *Device) Enable(c gfx.Capability)  { d.record("Enable(%v)", c) }
func (d *Device) Disable(c gfx.Capability) { d.record("Disable(%v)", c) }
func (d *Device) DepthMask(write bool)     { d.record("DepthMask(%t)", write) }
func (d *Device) Clear(mask gfx.ClearMask) { d.record("Clear(%v)", mask) }

func (d *Device) StencilFunc(f gfx.CompareFunc, ref int32, mask uint32) {
	d.record("StencilFunc(%v,%d,0x%X)", f, ref, mask)
}

func (d *Device) StencilOpSeparate(face gfx.Face, sfail, dpfail, dppass gfx.StencilOp) {
	d.record("StencilOpSeparate(%v,%v,%v,%v)", face, sfail, dpfail, dppass)
}

func (d *Device) BlendEquation(eq gfx.BlendEquation)  { d.record("BlendEquation(%v)", eq) }
func (d *Device) BlendFunc(src, dst gfx.BlendFactor)  { d.record("BlendFunc(%v,%v)", src, dst) }
func (d *Device) CullFace(face gfx.Face)              { d.record("CullFace(%v)", face) }
func (d *Device) Viewport(x, y, width, height int32)  { d.record("Viewport(%d,%d,%d,%d)", x, y, width, height) }
func (d *Device) BindDefaultFramebuffer()             { d.record("BindDefaultFramebuffer") }
func (d *Device) BlitFramebuffer(width, height int32) { d.record("BlitFramebuffer(%d,%d)", width, height) }

func (d *Device) CheckError() error {
	d.record("CheckError")
	return d.Err
}

type GBuffer struct {
	*Recorder
	Width, Height int32
}

var _ gfx.GeometryBuffer = (*GBuffer)(nil)

func (g *GBuffer) StartFrame()          { g.record("GBuffer.StartFrame") }
func (g *GBuffer) BindForGeometryPass() { g.record("GBuffer.BindForGeometryPass") }
func (g *GBuffer) BindForStencilPass()  { g.record("GBuffer.BindForStencilPass") }
func (g *GBuffer) BindForLightPass()    { g.record("GBuffer.BindForLightPass") }
func (g *GBuffer) BindForFinalPass()    { g.record("GBuffer.BindForFinalPass") }
func (g *GBuffer) Size() (int32, int32) { return g.Width, g.Height }

type Cascades struct {
	*Recorder
	Count         int
	Width, Height int32
}

var _ gfx.CascadeTargets = (*Cascades)(nil)

func (c *Cascades) Size() int { return c.Count }

func (c *Cascades) BindForWriting(i int) error {
	if i < 0 || i >= c.Count {
		return fmt.Errorf("%w: %d", gfx.ErrCascadeIndex, i)
	}
	c.record("Cascades.BindForWriting(%d)", i)
	return nil
}

func (c *Cascades) BindForReading()            { c.record("Cascades.BindForReading") }
func (c *Cascades) Dimensions() (int32, int32) { return c.Width, c.Height }

// Shader records Use and remembers the last value uploaded per uniform.
type Shader struct {
	*Recorder
	Spec   gfx.ProgramSpec
	Values map[string]any
}

var _ gfx.Shader = (*Shader)(nil)

func (s *Shader) Use() { s.record("Use(%s)", s.Spec.Name) }

func (s *Shader) set(name string, v any) {
	if !slices.Contains(s.Spec.Uniforms, name) {
		s.Errors = append(s.Errors, fmt.Sprintf("%s: undeclared uniform %s", s.Spec.Name, name))
	}
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[name] = v
}

func (s *Shader) SetMat4(name string, m math.Mat4) { s.set(name, m) }
func (s *Shader) SetVec3(name string, v math.Vec3) { s.set(name, v) }
func (s *Shader) SetVec2(name string, v math.Vec2) { s.set(name, v) }
func (s *Shader) SetFloat(name string, f float32)  { s.set(name, f) }
func (s *Shader) SetInt(name string, i int32)      { s.set(name, i) }

// Compiler hands out recording shaders. Fail, when set, is returned for the
// program of that name.
type Compiler struct {
	*Recorder
	Shaders map[string]*Shader
	Fail    map[string]error
}

var _ gfx.Compiler = (*Compiler)(nil)

func (c *Compiler) Compile(spec gfx.ProgramSpec) (gfx.Shader, error) {
	if err := c.Fail[spec.Name]; err != nil {
		return nil, err
	}
	if c.Shaders == nil {
		c.Shaders = make(map[string]*Shader)
	}
	s := &Shader{Recorder: c.Recorder, Spec: spec}
	c.Shaders[spec.Name] = s
	return s, nil
}

// Drawable records each draw by name.
type Drawable struct {
	*Recorder
	Name  string
	Draws int
}

func (d *Drawable) Draw() {
	d.Draws++
	d.record("Draw(%s)", d.Name)
}

// New returns a Recorder with wired fakes sharing it.
func New(width, height int32) (*Recorder, *Device, *GBuffer, *Cascades, *Compiler) {
	r := &Recorder{}
	return r,
		&Device{Recorder: r},
		&GBuffer{Recorder: r, Width: width, Height: height},
		&Cascades{Recorder: r, Count: 3, Width: width, Height: height},
		&Compiler{Recorder: r}
}
