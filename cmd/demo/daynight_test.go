package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-pipeline/math"
	"render-pipeline/scene"
)

func TestDayNightWraps(t *testing.T) {
	dn := NewDayNight()
	dn.Update(dn.Speed * 1.25)
	assert.InDelta(t, 0.25, dn.Time, 1e-5)

	dn.Active = false
	dn.Update(10)
	assert.InDelta(t, 0.25, dn.Time, 1e-5)
}

func TestDayNightSunDirection(t *testing.T) {
	dn := &DayNight{}
	noon := dn.Direction()
	assert.Less(t, noon.Y, float32(-0.9))

	dn.Time = 0.5
	assert.Greater(t, dn.Direction().Y, float32(0.9))
	assert.InDelta(t, 1, dn.Direction().Length(), 1e-5)
}

func TestSamplePaletteHitsKeyframes(t *testing.T) {
	for _, p := range palettes {
		got := samplePalette(p.t)
		assert.InDelta(t, p.diffuse, got.diffuse, 1e-5, "t=%v", p.t)
		assert.InDelta(t, p.sun.R, got.sun.R, 1e-5, "t=%v", p.t)
	}

	// Halfway through the wrap segment from sunrise back to noon.
	last, first := palettes[len(palettes)-1], palettes[0]
	mid := samplePalette((last.t + 1) / 2)
	assert.InDelta(t, (last.diffuse+first.diffuse)/2, mid.diffuse, 1e-5)
}

func TestDayNightApply(t *testing.T) {
	sun := scene.NewDirectionalLight("sun", math.Vec3One, 0, 1, math.NewVec3(0, -1, 0))
	dn := &DayNight{Time: 0.5}
	dn.Apply(sun)

	assert.Equal(t, dn.Direction(), sun.Direction)
	assert.InDelta(t, 0.12, sun.DiffuseIntensity, 1e-5)
	assert.NotPanics(t, func() { dn.Apply(nil) })
}

func TestTimeOfDayStr(t *testing.T) {
	assert.Equal(t, "12:00 AM", (&DayNight{Time: 0}).TimeOfDayStr())
	assert.Equal(t, "06:00 AM", (&DayNight{Time: 0.25}).TimeOfDayStr())
	assert.Equal(t, "12:00 PM", (&DayNight{Time: 0.5}).TimeOfDayStr())
	assert.Equal(t, "06:00 PM", (&DayNight{Time: 0.75}).TimeOfDayStr())
}

type countingUploader struct {
	uploads int
}

type nopDrawable struct{}

func (nopDrawable) Draw() {}

func (c *countingUploader) upload(*scene.Mesh) (scene.Drawable, error) {
	c.uploads++
	return nopDrawable{}, nil
}

func TestBuildDefaultScene(t *testing.T) {
	var up countingUploader
	meshes, lights, err := buildDefaultScene(up.upload, true)
	require.NoError(t, err)

	assert.Equal(t, 3, up.uploads)
	assert.Equal(t, 21, meshes.InstanceCount())
	require.NotNil(t, firstDirectional(lights))

	sorted := scene.SortLights(lights)
	assert.Len(t, sorted.Point, 4)
	assert.Len(t, sorted.Spot, 1)

	_, _, err = buildDefaultScene(up.upload, false)
	require.NoError(t, err)
	assert.Equal(t, 5, up.uploads)
}

func TestDebugOverlay(t *testing.T) {
	var o DebugOverlay
	o.Add("FPS: %d", 60)
	o.Add("%s", "csm")
	assert.Equal(t, "FPS: 60 | csm", o.Text())
	o.Clear()
	assert.Empty(t, o.Text())
}
