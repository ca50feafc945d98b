package core

import (
	"render-pipeline/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// RGB drops alpha, the form light colours are uploaded in.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved layout uploaded to vertex attributes 0-3.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

// Transform places one mesh instance in world space.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quaternion
	Scale       math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Translation: math.Vec3Zero,
		Rotation:    math.QuaternionIdentity(),
		Scale:       math.Vec3One,
	}
}

// Final composes translation, rotation and scale (T·R·S: scale applies
// first). It is recomputed on every call so it always reflects the current
// fields.
func (t Transform) Final() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Translation)
	return scale.Mul(rotation).Mul(translation)
}

// Rotate appends a rotation of angle radians around axis.
func (t *Transform) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	t.Rotation = rotation.Mul(t.Rotation).Normalize()
}
