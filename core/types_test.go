package core

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-pipeline/math"
)

func TestTransformFinalMatchesTRS(t *testing.T) {
	tr := NewTransform()
	tr.Translation = math.NewVec3(1, -2, 10)
	tr.Scale = math.NewVec3(0.5, 2, 1)
	tr.Rotate(math.Vec3Up, 0.6)

	oracle := mgl32.Translate3D(1, -2, 10).
		Mul4(mgl32.QuatRotate(0.6, mgl32.Vec3{0, 1, 0}).Mat4()).
		Mul4(mgl32.Scale3D(0.5, 2, 1))

	got := tr.Final().Flatten()
	for i := range got {
		assert.InDelta(t, oracle[i], got[i], 1e-5, "element %d", i)
	}
}

func TestTransformFinalTracksMutation(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, math.Mat4Identity(), tr.Final())

	tr.Translation = math.NewVec3(0, 0, 5)
	p := tr.Final().MulPoint(math.Vec3Zero)
	assert.Equal(t, math.NewVec3(0, 0, 5), p)

	tr.Scale = math.NewVec3(2, 2, 2)
	p = tr.Final().MulPoint(math.NewVec3(1, 0, 0))
	assert.Equal(t, math.NewVec3(2, 0, 5), p)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, "info", "test")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown", "pass", "geometry")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "loud", "test")
	assert.Error(t, err)
}
