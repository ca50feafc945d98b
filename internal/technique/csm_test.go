package technique

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-pipeline/core"
	"render-pipeline/internal/gfx"
	"render-pipeline/internal/gfx/gfxtest"
	"render-pipeline/math"
	"render-pipeline/scene"
)

type csmFixture struct {
	rec      *gfxtest.Recorder
	compiler *gfxtest.Compiler
	cam      *scene.Camera
	box      *gfxtest.Drawable
	csm      *CascadedShadowMap
}

func newCSMFixture(t *testing.T) *csmFixture {
	t.Helper()
	rec, dev, _, targets, compiler := gfxtest.New(1024, 1024)
	cam := scene.NewCamera(800, 600)
	cam.SetPosition(math.NewVec3(0, 5, -20))
	cam.SetLookAt(math.NewVec3(0, -0.2, 1))

	csm, err := NewCascadedShadowMap(cam, targets, DefaultSplits, Resources{Device: dev, Compiler: compiler})
	require.NoError(t, err)
	rec.Reset()

	return &csmFixture{
		rec:      rec,
		compiler: compiler,
		cam:      cam,
		box:      &gfxtest.Drawable{Recorder: rec, Name: "box"},
		csm:      csm,
	}
}

func (f *csmFixture) meshes() scene.Meshes {
	m := scene.Meshes{}
	m.Add("box", f.box, core.NewTransform())
	return m
}

func TestCascadeEnds(t *testing.T) {
	ends, err := CascadeEnds(0.1, 200, DefaultSplits)
	require.NoError(t, err)
	assert.Equal(t, [4]float32{0.1, 25, 90, 200}, ends)

	for _, splits := range [][2]float32{{90, 25}, {0.05, 90}, {25, 250}, {25, 25}} {
		_, err := CascadeEnds(0.1, 200, splits)
		assert.ErrorIs(t, err, ErrCascadeSplits, "splits %v", splits)
	}
}

func TestCascadeBoundsContainEverySliceCorner(t *testing.T) {
	cam := scene.NewCamera(1280, 720)
	cam.SetPosition(math.NewVec3(3, 10, -4))
	cam.SetLookAt(math.NewVec3(0.3, -0.4, 1))
	cam.SetFarPlane(150)
	lightDir := math.NewVec3(1, -1, 0.5)

	ends, err := CascadeEnds(cam.NearPlane(), cam.FarPlane(), DefaultSplits)
	require.NoError(t, err)
	bounds := CascadeBounds(cam, lightDir, ends)

	viewInv := cam.View().Inverse()
	lightCam := LightCamera(cam, lightDir)
	lightView := lightCam.View()
	const eps = 1e-2

	for i, b := range bounds {
		assert.Less(t, b.Left, b.Right)
		assert.Less(t, b.Bottom, b.Top)
		assert.Less(t, b.Near, b.Far)

		for _, c := range frustumSliceCorners(cam, ends[i], ends[i+1]) {
			p := lightView.MulPoint(viewInv.MulPoint(c))
			assert.True(t, p.X >= b.Left-eps && p.X <= b.Right+eps, "cascade %d x %v", i, p)
			assert.True(t, p.Y >= b.Bottom-eps && p.Y <= b.Top+eps, "cascade %d y %v", i, p)
			assert.True(t, p.Z >= b.Near-eps && p.Z <= b.Far+eps, "cascade %d z %v", i, p)
		}
	}

	// Deeper slices are wider.
	assert.Greater(t, bounds[2].Right-bounds[2].Left, bounds[0].Right-bounds[0].Left)
}

func TestLightCameraIsIndependentCopy(t *testing.T) {
	cam := scene.NewCamera(800, 600)
	cam.SetPosition(math.NewVec3(1, 2, 3))
	before := cam.View()

	light := LightCamera(cam, math.NewVec3(0, -1, 1))
	assert.Equal(t, math.Vec3Zero, light.Position())
	assert.InDelta(t, 1, light.LookAt().Length(), 1e-6)
	assert.Equal(t, before, cam.View())
	assert.Equal(t, math.NewVec3(1, 2, 3), cam.Position())
}

func TestLightCameraStraightDown(t *testing.T) {
	cam := scene.NewCamera(800, 600)
	light := LightCamera(cam, math.NewVec3(0, -1, 0))
	view := light.View()
	for _, row := range view {
		for _, v := range row {
			assert.False(t, math32.IsNaN(v), "NaN in light view %v", view)
		}
	}
}

func TestCascadedShadowMapPassOrder(t *testing.T) {
	f := newCSMFixture(t)

	require.NoError(t, f.csm.Render(f.meshes(), []scene.Light{testDirectionalLight()}))

	expected := []string{
		"Viewport(0,0,1024,1024)",
		"Enable(DepthTest)",
		"DepthMask(true)",
		"Use(csm_shadow_map)",
		"Cascades.BindForWriting(0)",
		"Clear(Depth)",
		"Draw(box)",
		"Cascades.BindForWriting(1)",
		"Clear(Depth)",
		"Draw(box)",
		"Cascades.BindForWriting(2)",
		"Clear(Depth)",
		"Draw(box)",

		"BindDefaultFramebuffer",
		"Viewport(0,0,800,600)",
		"Clear(Color|Depth)",
		"Use(csm_lighting)",
		"Cascades.BindForReading",
		"Draw(box)",
	}
	assert.Equal(t, expected, f.rec.Calls)
	assert.Empty(t, f.rec.Errors)
}

func TestCascadedShadowMapStoresBoundsOnSharedCamera(t *testing.T) {
	f := newCSMFixture(t)
	sun := testDirectionalLight()
	position := f.cam.Position()

	require.NoError(t, f.csm.Render(f.meshes(), []scene.Light{sun}))

	want := CascadeBounds(f.cam, sun.Direction, f.csm.Ends())
	assert.Equal(t, NumCascades, f.cam.OrthogonalProjectionCount())
	for i := range want {
		got, err := f.cam.OrthogonalProjectionBounds(i)
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}
	assert.Equal(t, position, f.cam.Position())
}

func TestCascadedShadowMapLightWVPCoversSlice(t *testing.T) {
	f := newCSMFixture(t)
	require.NoError(t, f.csm.Render(f.meshes(), []scene.Light{testDirectionalLight()}))

	values := f.compiler.Shaders[ProgramCSMLighting].Values
	viewInv := f.cam.View().Inverse()
	depths := []float32{10, 50, 95}

	for i, depth := range depths {
		wvp, ok := values[indexed(uniformLightWVP, i)].(math.Mat4)
		require.True(t, ok)

		// The box has an identity transform, so its light WVP is the
		// cascade's light view-projection.
		world := viewInv.MulPoint(math.NewVec3(0, 0, depth))
		ndc := world.ToVec4(1).MulMat(wvp)
		for _, v := range []float32{ndc.X, ndc.Y, ndc.Z} {
			assert.True(t, v >= -1.001 && v <= 1.001, "cascade %d ndc %v", i, ndc)
		}
	}
}

func TestCascadedShadowMapClipSpaceEnds(t *testing.T) {
	f := newCSMFixture(t)
	proj := f.cam.Projection()
	ends := f.csm.Ends()

	for i := 0; i < NumCascades; i++ {
		want := ends[i+1]*proj[2][2] + proj[3][2]
		assert.InDelta(t, want, f.csm.endsClip[i], 1e-4)
	}
	// Depth increases with distance, so the shader's first-match search
	// picks the nearest cascade.
	assert.Less(t, f.csm.endsClip[0], f.csm.endsClip[1])
	assert.Less(t, f.csm.endsClip[1], f.csm.endsClip[2])
}

func TestCascadedShadowMapInvalidProjectionSkipsGPU(t *testing.T) {
	f := newCSMFixture(t)
	require.NoError(t, f.csm.SetDirectionalLight(testDirectionalLight()))

	lightCam := LightCamera(f.cam, math.NewVec3(1, -1, 0))
	require.NoError(t, lightCam.SetOrthogonalProjectionBounds(0, scene.OrthoBounds{
		Left: 1, Right: 1, Bottom: -1, Top: 1, Near: 0, Far: 10,
	}))

	_, err := f.csm.shadowPass(&lightCam, f.meshes())
	require.ErrorIs(t, err, scene.ErrInvalidProjection)
	assert.Empty(t, f.rec.Calls)
}

func TestCascadedShadowMapLightSelection(t *testing.T) {
	f := newCSMFixture(t)

	err := f.csm.Render(f.meshes(), nil)
	assert.ErrorIs(t, err, ErrNilLight)
	assert.Empty(t, f.rec.Calls)

	assert.ErrorIs(t, f.csm.SetDirectionalLight(nil), ErrNilLight)

	first := testDirectionalLight()
	second := scene.NewDirectionalLight("moon", math.NewVec3(0.2, 0.2, 0.4), 0, 0.3, math.NewVec3(0, -1, 1))
	require.NoError(t, f.csm.Render(f.meshes(), []scene.Light{testPointLight(), first, second}))
	values := f.compiler.Shaders[ProgramCSMLighting].Values
	assert.Equal(t, first.Direction, values["gDirectionalLight.Direction"])

	// Without a directional light in the list the previous one stays.
	require.NoError(t, f.csm.Render(f.meshes(), nil))
	assert.Equal(t, first.Direction, values["gDirectionalLight.Direction"])

	// A nil entry fails the frame even when a light is already set.
	f.rec.Reset()
	err = f.csm.Render(f.meshes(), []scene.Light{(*scene.DirectionalLight)(nil)})
	assert.ErrorIs(t, err, ErrNilLight)
	assert.Empty(t, f.rec.Calls)
}

func TestCascadedShadowMapFloor(t *testing.T) {
	f := newCSMFixture(t)
	floor := &gfxtest.Drawable{Recorder: f.rec, Name: "floor"}
	f.csm.SetFloor(floor, core.NewTransform())

	require.NoError(t, f.csm.Render(f.meshes(), []scene.Light{testDirectionalLight()}))

	// The floor only receives shadows.
	assert.Equal(t, 1, floor.Draws)
	assert.Equal(t, 4, f.box.Draws)
	assert.Less(t, f.rec.Index("Use(csm_lighting)", 0), f.rec.Index("Draw(floor)", 0))
}

func TestNewCascadedShadowMapErrors(t *testing.T) {
	_, dev, _, targets, compiler := gfxtest.New(512, 512)
	res := Resources{Device: dev, Compiler: compiler}

	_, err := NewCascadedShadowMap(nil, targets, DefaultSplits, res)
	assert.ErrorIs(t, err, ErrNoCamera)

	_, err = NewCascadedShadowMap(scene.NewCamera(512, 512), targets, [2]float32{200, 300}, res)
	assert.ErrorIs(t, err, ErrCascadeSplits)

	targets.Count = 2
	_, err = NewCascadedShadowMap(scene.NewCamera(512, 512), targets, DefaultSplits, res)
	assert.ErrorIs(t, err, gfx.ErrCascadeIndex)
}
