package opengl

import (
	"fmt"
	"io/fs"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-pipeline/internal/gfx"
	"render-pipeline/math"
)

// Program is a linked GL program with every declared uniform location
// resolved at compile time.
type Program struct {
	Name     string
	ID       uint32
	uniforms map[string]int32
}

var _ gfx.Shader = (*Program)(nil)

func (p *Program) Use() { gl.UseProgram(p.ID) }

// location returns -1 for names the program was not compiled with, which
// GL ignores on upload.
func (p *Program) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (p *Program) SetMat4(name string, m math.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0][0])
}

func (p *Program) SetVec3(name string, v math.Vec3) {
	gl.Uniform3f(p.location(name), v.X, v.Y, v.Z)
}

func (p *Program) SetVec2(name string, v math.Vec2) {
	gl.Uniform2f(p.location(name), v.X, v.Y)
}

func (p *Program) SetFloat(name string, f float32) { gl.Uniform1f(p.location(name), f) }
func (p *Program) SetInt(name string, i int32)     { gl.Uniform1i(p.location(name), i) }

// Destroy deletes the GL program.
func (p *Program) Destroy() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// Compiler builds programs from GLSL sources inside Sources and tracks them
// for release.
type Compiler struct {
	Sources  fs.FS
	programs []*Program
}

var _ gfx.Compiler = (*Compiler)(nil)

func NewCompiler(sources fs.FS) *Compiler {
	return &Compiler{Sources: sources}
}

// Compile reads, compiles and links spec, then resolves every uniform it
// lists. A uniform the driver reports as inactive fails with
// gfx.ErrMissingUniform.
func (c *Compiler) Compile(spec gfx.ProgramSpec) (gfx.Shader, error) {
	vertSrc, fragSrc, err := gfx.ReadSources(c.Sources, spec)
	if err != nil {
		return nil, err
	}
	id, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", spec.Name, err)
	}

	p := &Program{Name: spec.Name, ID: id, uniforms: make(map[string]int32, len(spec.Uniforms))}
	for _, name := range spec.Uniforms {
		loc := gl.GetUniformLocation(id, gl.Str(name+"\x00"))
		if loc < 0 {
			p.Destroy()
			return nil, fmt.Errorf("program %s: %w %q", spec.Name, gfx.ErrMissingUniform, name)
		}
		p.uniforms[name] = loc
	}
	c.programs = append(c.programs, p)
	return p, nil
}

// Destroy deletes every program this compiler produced.
func (c *Compiler) Destroy() {
	for _, p := range c.programs {
		p.Destroy()
	}
	c.programs = nil
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: %v", gfx.ErrLink, log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %v", gfx.ErrCompile, log)
	}
	return shader, nil
}
