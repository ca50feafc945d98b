package technique

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-pipeline/core"
	"render-pipeline/internal/gfx"
	"render-pipeline/internal/gfx/gfxtest"
	"render-pipeline/math"
	"render-pipeline/scene"
)

type deferredFixture struct {
	rec      *gfxtest.Recorder
	compiler *gfxtest.Compiler
	cam      *scene.Camera
	sphere   *gfxtest.Drawable
	quad     *gfxtest.Drawable
	box      *gfxtest.Drawable
	ds       *DeferredShading
}

func newDeferredFixture(t *testing.T) *deferredFixture {
	t.Helper()
	rec, dev, gbuf, _, compiler := gfxtest.New(800, 600)
	f := &deferredFixture{
		rec:      rec,
		compiler: compiler,
		cam:      scene.NewCamera(800, 600),
		sphere:   &gfxtest.Drawable{Recorder: rec, Name: "sphere"},
		quad:     &gfxtest.Drawable{Recorder: rec, Name: "quad"},
		box:      &gfxtest.Drawable{Recorder: rec, Name: "box"},
	}
	ds, err := NewDeferredShading(f.cam, gbuf, f.sphere, f.quad, Resources{Device: dev, Compiler: compiler})
	require.NoError(t, err)
	f.ds = ds
	rec.Reset()
	return f
}

func (f *deferredFixture) meshes() scene.Meshes {
	m := scene.Meshes{}
	m.Add("box", f.box, core.NewTransform())
	return m
}

func (f *deferredFixture) shader(name string) *gfxtest.Shader {
	return f.compiler.Shaders[name]
}

func testPointLight() *scene.PointLight {
	return scene.NewPointLight("bulb", math.NewVec3(1, 1, 1), 0.1, 1, math.NewVec3(0, 1, 5), scene.Attenuation{Constant: 1, Exp: 1})
}

func testDirectionalLight() *scene.DirectionalLight {
	return scene.NewDirectionalLight("sun", math.NewVec3(1, 1, 0.9), 0.2, 0.8, math.NewVec3(1, -1, 0))
}

func TestDeferredShadingPassOrder(t *testing.T) {
	f := newDeferredFixture(t)

	err := f.ds.Render(f.meshes(), []scene.Light{testPointLight(), testDirectionalLight()})
	require.NoError(t, err)

	expected := []string{
		"GBuffer.StartFrame",

		"Use(geometry_pass)",
		"GBuffer.BindForGeometryPass",
		"DepthMask(true)",
		"Clear(Color|Depth)",
		"Enable(DepthTest)",
		"Draw(box)",
		"DepthMask(false)",

		"Enable(StencilTest)",

		"Use(null)",
		"GBuffer.BindForStencilPass",
		"Enable(DepthTest)",
		"Disable(CullFace)",
		"Clear(Depth|Stencil)",
		"StencilFunc(Always,0,0x0)",
		"StencilOpSeparate(Back,Keep,IncrWrap,Keep)",
		"StencilOpSeparate(Front,Keep,DecrWrap,Keep)",
		"Draw(sphere)",

		"GBuffer.BindForLightPass",
		"Use(point_light_pass)",
		"StencilFunc(NotEqual,0,0xFF)",
		"Disable(DepthTest)",
		"Enable(Blend)",
		"BlendEquation(Add)",
		"BlendFunc(One,One)",
		"Enable(CullFace)",
		"CullFace(Front)",
		"Draw(sphere)",
		"CullFace(Back)",
		"Disable(Blend)",

		"Disable(StencilTest)",

		"GBuffer.BindForLightPass",
		"Use(dir_light_pass)",
		"Disable(DepthTest)",
		"Disable(CullFace)",
		"Enable(Blend)",
		"BlendEquation(Add)",
		"BlendFunc(One,One)",
		"Draw(quad)",
		"Disable(Blend)",

		"Disable(Blend)",
		"GBuffer.BindForFinalPass",
		"BlitFramebuffer(800,600)",
	}
	assert.Equal(t, expected, f.rec.Calls)
	assert.Empty(t, f.rec.Errors)
}

func TestDeferredShadingStencilPrecedesEachVolume(t *testing.T) {
	f := newDeferredFixture(t)
	spot := scene.NewSpotLight("torch", math.NewVec3(1, 0.8, 0.6), 0, 1, math.NewVec3(2, 2, 2),
		scene.Attenuation{Constant: 1, Linear: 0.1, Exp: 0.5}, math.NewVec3(0, -1, 0), 30)

	err := f.ds.Render(f.meshes(), []scene.Light{spot, testPointLight(), testPointLight()})
	require.NoError(t, err)

	programs := f.rec.Filter("Use(")
	assert.Equal(t, []string{
		"Use(geometry_pass)",
		"Use(null)", "Use(point_light_pass)",
		"Use(null)", "Use(point_light_pass)",
		"Use(null)", "Use(spot_light_pass)",
		"Use(dir_light_pass)",
	}, programs)
	assert.Equal(t, 6, f.sphere.Draws)
	assert.Empty(t, f.rec.Errors)
}

func TestDeferredShadingNoDirectionalLights(t *testing.T) {
	f := newDeferredFixture(t)

	require.NoError(t, f.ds.Render(f.meshes(), nil))

	assert.Zero(t, f.quad.Draws)
	assert.Zero(t, f.sphere.Draws)
	assert.Equal(t, 1, f.box.Draws)
	assert.Equal(t, "BlitFramebuffer(800,600)", f.rec.Calls[len(f.rec.Calls)-1])
}

func TestDeferredShadingOneQuadPerDirectionalLight(t *testing.T) {
	f := newDeferredFixture(t)

	lights := []scene.Light{testDirectionalLight(), testDirectionalLight(), testDirectionalLight()}
	require.NoError(t, f.ds.Render(scene.Meshes{}, lights))

	assert.Equal(t, 3, f.quad.Draws)
	assert.Equal(t, math.Mat4Identity(), f.shader(ProgramDirLightPass).Values[uniformWVP])
}

func TestDeferredShadingUnboundedLightFailsBeforeDrawing(t *testing.T) {
	f := newDeferredFixture(t)
	forever := scene.NewPointLight("forever", math.NewVec3(1, 1, 1), 0, 1, math.Vec3Zero, scene.Attenuation{Constant: 1})

	err := f.ds.Render(f.meshes(), []scene.Light{forever})
	require.ErrorIs(t, err, ErrUnboundedAttenuation)
	assert.Contains(t, err.Error(), "forever")
	assert.Empty(t, f.rec.Calls)
}

func TestDeferredShadingNilLightFailsBeforeDrawing(t *testing.T) {
	for name, l := range map[string]scene.Light{
		"interface":   nil,
		"point":       (*scene.PointLight)(nil),
		"spot":        (*scene.SpotLight)(nil),
		"directional": (*scene.DirectionalLight)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			f := newDeferredFixture(t)
			err := f.ds.Render(f.meshes(), []scene.Light{testPointLight(), l})
			require.ErrorIs(t, err, ErrNilLight)
			assert.Empty(t, f.rec.Calls)
		})
	}
}

func TestDeferredShadingUniformUploads(t *testing.T) {
	f := newDeferredFixture(t)
	f.cam.SetPosition(math.NewVec3(0, 2, -10))

	point := testPointLight()
	spot := scene.NewSpotLight("torch", math.NewVec3(1, 0.8, 0.6), 0, 1, math.NewVec3(2, 2, 2),
		scene.Attenuation{Constant: 1, Linear: 0.1, Exp: 0.5}, math.NewVec3(0, -1, 0), 60)
	sun := testDirectionalLight()

	require.NoError(t, f.ds.Render(f.meshes(), []scene.Light{point, spot, sun}))
	require.Empty(t, f.rec.Errors)

	pp := f.shader(ProgramPointLightPass).Values
	assert.Equal(t, point.Position, pp["gPointLight.Position"])
	assert.Equal(t, point.Attenuation.Exp, pp["gPointLight.Atten.Exp"])
	assert.Equal(t, point.Color, pp["gPointLight.Base.Color"])
	assert.Equal(t, math.NewVec3(0, 2, -10), pp[uniformEyeWorldPos])
	assert.Equal(t, math.NewVec2(800, 600), pp[uniformScreenSize])
	assert.Equal(t, int32(0), pp[uniformPositionMap])
	assert.Equal(t, int32(1), pp[uniformColorMap])
	assert.Equal(t, int32(2), pp[uniformNormalMap])

	r, err := LightVolumeRadius(point.Color, point.DiffuseIntensity, point.Attenuation)
	require.NoError(t, err)
	want := lightVolume(point.Position, r).Mul(f.cam.View()).Mul(f.cam.Projection())
	assert.Equal(t, want, pp[uniformWVP])

	sp := f.shader(ProgramSpotLightPass).Values
	assert.InDelta(t, 0.5, sp["gSpotLight.Cutoff"], 1e-6)
	assert.Equal(t, spot.Position, sp["gSpotLight.Base.Position"])
	assert.Equal(t, spot.Color, sp["gSpotLight.Base.Base.Color"])

	dp := f.shader(ProgramDirLightPass).Values
	assert.Equal(t, sun.Direction, dp["gDirectionalLight.Direction"])
	assert.Equal(t, sun.DiffuseIntensity, dp["gDirectionalLight.Base.DiffuseIntensity"])

	gp := f.shader(ProgramGeometryPass).Values
	assert.Equal(t, math.Mat4Identity(), gp[uniformWorld])
}

func TestLightVolumeScalesUnitSphere(t *testing.T) {
	m := lightVolume(math.NewVec3(1, 2, 3), 4)
	p := m.MulPoint(math.NewVec3(1, 0, 0))
	assert.InDelta(t, 5, p.X, 1e-6)
	assert.InDelta(t, 2, p.Y, 1e-6)
	assert.InDelta(t, 3, p.Z, 1e-6)
}

func TestNewDeferredShadingErrors(t *testing.T) {
	rec, dev, gbuf, _, compiler := gfxtest.New(64, 64)
	sphere := &gfxtest.Drawable{Recorder: rec, Name: "sphere"}
	quad := &gfxtest.Drawable{Recorder: rec, Name: "quad"}
	res := Resources{Device: dev, Compiler: compiler}

	_, err := NewDeferredShading(nil, gbuf, sphere, quad, res)
	assert.ErrorIs(t, err, ErrNoCamera)

	_, err = NewDeferredShading(scene.NewCamera(64, 64), gbuf, nil, quad, res)
	assert.ErrorIs(t, err, ErrMissingMesh)

	compiler.Fail = map[string]error{ProgramSpotLightPass: errors.Join(gfx.ErrMissingUniform, errors.New("gSpotLight.Cutoff"))}
	_, err = NewDeferredShading(scene.NewCamera(64, 64), gbuf, sphere, quad, res)
	assert.ErrorIs(t, err, gfx.ErrMissingUniform)
}

func TestDeferredShadingSetGeometryBuffer(t *testing.T) {
	f := newDeferredFixture(t)
	f.ds.SetGeometryBuffer(&gfxtest.GBuffer{Recorder: f.rec, Width: 1920, Height: 1080})

	require.NoError(t, f.ds.Render(f.meshes(), nil))
	assert.Equal(t, "BlitFramebuffer(1920,1080)", f.rec.Calls[len(f.rec.Calls)-1])
}
