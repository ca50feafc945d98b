package gfx

import (
	"fmt"
	"strings"
)

type Capability int

const (
	DepthTest Capability = iota
	StencilTest
	Blend
	CullFaceTest
)

func (c Capability) String() string {
	switch c {
	case DepthTest:
		return "DepthTest"
	case StencilTest:
		return "StencilTest"
	case Blend:
		return "Blend"
	case CullFaceTest:
		return "CullFace"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

type ClearMask uint8

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
	StencilBuffer
)

func (m ClearMask) String() string {
	var parts []string
	if m&ColorBuffer != 0 {
		parts = append(parts, "Color")
	}
	if m&DepthBuffer != 0 {
		parts = append(parts, "Depth")
	}
	if m&StencilBuffer != 0 {
		parts = append(parts, "Stencil")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

type CompareFunc int

const (
	Always CompareFunc = iota
	NotEqual
	Less
	LessEqual
)

func (f CompareFunc) String() string {
	switch f {
	case Always:
		return "Always"
	case NotEqual:
		return "NotEqual"
	case Less:
		return "Less"
	case LessEqual:
		return "LessEqual"
	}
	return fmt.Sprintf("CompareFunc(%d)", int(f))
}

type StencilOp int

const (
	Keep StencilOp = iota
	IncrWrap
	DecrWrap
)

func (op StencilOp) String() string {
	switch op {
	case Keep:
		return "Keep"
	case IncrWrap:
		return "IncrWrap"
	case DecrWrap:
		return "DecrWrap"
	}
	return fmt.Sprintf("StencilOp(%d)", int(op))
}

type Face int

const (
	Front Face = iota
	Back
)

func (f Face) String() string {
	switch f {
	case Front:
		return "Front"
	case Back:
		return "Back"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

type BlendEquation int

const (
	FuncAdd BlendEquation = iota
)

func (eq BlendEquation) String() string {
	if eq == FuncAdd {
		return "Add"
	}
	return fmt.Sprintf("BlendEquation(%d)", int(eq))
}

type BlendFactor int

const (
	One BlendFactor = iota
	Zero
)

func (f BlendFactor) String() string {
	switch f {
	case One:
		return "One"
	case Zero:
		return "Zero"
	}
	return fmt.Sprintf("BlendFactor(%d)", int(f))
}
