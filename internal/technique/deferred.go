package technique

import (
	"fmt"

	"github.com/charmbracelet/log"

	"render-pipeline/internal/gfx"
	"render-pipeline/math"
	"render-pipeline/scene"
)

// DeferredShading renders the scene into a G-buffer and then accumulates
// every light on top of it. Point and spot lights are bounded by a sphere
// whose stencil footprint restricts shading to the pixels inside it.
type DeferredShading struct {
	Material Material

	cam    *scene.Camera
	dev    gfx.Device
	gbuf   gfx.GeometryBuffer
	sphere scene.Drawable
	quad   scene.Drawable
	logger *log.Logger

	geometry gfx.Shader
	null     gfx.Shader
	point    gfx.Shader
	spot     gfx.Shader
	dir      gfx.Shader
}

var _ Technique = (*DeferredShading)(nil)

// NewDeferredShading compiles the deferred programs. sphere must be a unit
// sphere centred at the origin; quad must cover clip space at z=0.
func NewDeferredShading(cam *scene.Camera, gbuf gfx.GeometryBuffer, sphere, quad scene.Drawable, res Resources) (*DeferredShading, error) {
	if cam == nil {
		return nil, ErrNoCamera
	}
	if sphere == nil || quad == nil {
		return nil, fmt.Errorf("deferred shading: %w", ErrMissingMesh)
	}

	shaders, err := compileAll(res.Compiler,
		GeometryPassSpec(),
		NullSpec(),
		PointLightPassSpec(),
		SpotLightPassSpec(),
		DirLightPassSpec(),
	)
	if err != nil {
		return nil, fmt.Errorf("deferred shading: %w", err)
	}

	ds := &DeferredShading{
		Material: DefaultMaterial(),
		cam:      cam,
		dev:      res.Device,
		gbuf:     gbuf,
		sphere:   sphere,
		quad:     quad,
		logger:   res.logger(),
		geometry: shaders[0],
		null:     shaders[1],
		point:    shaders[2],
		spot:     shaders[3],
		dir:      shaders[4],
	}

	for _, s := range []gfx.Shader{ds.point, ds.spot, ds.dir} {
		s.Use()
		setGBufferSamplers(s)
	}

	ds.logger.Info("Deferred shading ready")
	return ds, nil
}

// SetGeometryBuffer swaps in a G-buffer, for instance after a resize.
func (ds *DeferredShading) SetGeometryBuffer(gbuf gfx.GeometryBuffer) {
	ds.gbuf = gbuf
}

// Render draws one frame. Light volumes are sized before any GPU work, so an
// unbounded light fails the frame without touching the G-buffer.
func (ds *DeferredShading) Render(meshes scene.Meshes, lights []scene.Light) error {
	if err := checkLights(lights); err != nil {
		return fmt.Errorf("deferred shading: %w", err)
	}
	sorted := scene.SortLights(lights)

	pointRadii := make([]float32, len(sorted.Point))
	for i, l := range sorted.Point {
		r, err := LightVolumeRadius(l.Color, l.DiffuseIntensity, l.Attenuation)
		if err != nil {
			return fmt.Errorf("point light %q: %w", l.Name, err)
		}
		pointRadii[i] = r
	}
	spotRadii := make([]float32, len(sorted.Spot))
	for i, l := range sorted.Spot {
		r, err := LightVolumeRadius(l.Color, l.DiffuseIntensity, l.Attenuation)
		if err != nil {
			return fmt.Errorf("spot light %q: %w", l.Name, err)
		}
		spotRadii[i] = r
	}

	ds.gbuf.StartFrame()
	ds.geometryPass(meshes)

	// Point and spot volumes need the stencil test; the directional pass
	// covers the whole screen and does not.
	ds.dev.Enable(gfx.StencilTest)

	for i, l := range sorted.Point {
		world := lightVolume(l.Position, pointRadii[i])
		ds.stencilPass(world)
		ds.lightPass(ds.point, world, func(s gfx.Shader) {
			setPointLight(s, uniformPointLight, l)
		})
	}

	for i, l := range sorted.Spot {
		world := lightVolume(l.Position, spotRadii[i])
		ds.stencilPass(world)
		ds.lightPass(ds.spot, world, func(s gfx.Shader) {
			setSpotLight(s, uniformSpotLight, l)
		})
	}

	ds.dev.Disable(gfx.StencilTest)

	ds.directionalLightPass(sorted.Directional)
	ds.finalPass()
	return nil
}

func (ds *DeferredShading) wvp(world math.Mat4) math.Mat4 {
	return world.Mul(ds.cam.View()).Mul(ds.cam.Projection())
}

func lightVolume(position math.Vec3, radius float32) math.Mat4 {
	return math.Mat4Scale(math.NewVec3(radius, radius, radius)).Mul(math.Mat4Translation(position))
}

func (ds *DeferredShading) geometryPass(meshes scene.Meshes) {
	ds.geometry.Use()
	ds.gbuf.BindForGeometryPass()

	// Only the geometry pass updates the depth buffer.
	ds.dev.DepthMask(true)
	ds.dev.Clear(gfx.ColorBuffer | gfx.DepthBuffer)
	ds.dev.Enable(gfx.DepthTest)

	meshes.ForEachInstance(func(mesh scene.Drawable, world math.Mat4) {
		ds.geometry.SetMat4(uniformWVP, ds.wvp(world))
		ds.geometry.SetMat4(uniformWorld, world)
		mesh.Draw()
	})

	// Lighting must read depth without writing it.
	ds.dev.DepthMask(false)
}

// stencilPass marks the pixels whose stored geometry lies inside the volume:
// back faces failing the depth test increment, front faces decrement, so
// only fragments between the two keep a non-zero count.
func (ds *DeferredShading) stencilPass(world math.Mat4) {
	ds.null.Use()
	ds.gbuf.BindForStencilPass()

	ds.dev.Enable(gfx.DepthTest)
	ds.dev.Disable(gfx.CullFaceTest)
	ds.dev.Clear(gfx.DepthBuffer | gfx.StencilBuffer)

	// The stencil test must always pass; only the depth test matters here.
	ds.dev.StencilFunc(gfx.Always, 0, 0)
	ds.dev.StencilOpSeparate(gfx.Back, gfx.Keep, gfx.IncrWrap, gfx.Keep)
	ds.dev.StencilOpSeparate(gfx.Front, gfx.Keep, gfx.DecrWrap, gfx.Keep)

	ds.null.SetMat4(uniformWVP, ds.wvp(world))
	ds.sphere.Draw()
}

func (ds *DeferredShading) lightPass(s gfx.Shader, world math.Mat4, upload func(gfx.Shader)) {
	ds.gbuf.BindForLightPass()
	s.Use()

	ds.dev.StencilFunc(gfx.NotEqual, 0, 0xFF)
	ds.dev.Disable(gfx.DepthTest)
	ds.dev.Enable(gfx.Blend)
	ds.dev.BlendEquation(gfx.FuncAdd)
	ds.dev.BlendFunc(gfx.One, gfx.One)

	// Front culling keeps the volume visible with the eye inside it.
	ds.dev.Enable(gfx.CullFaceTest)
	ds.dev.CullFace(gfx.Front)

	ds.setShared(s, ds.wvp(world))
	upload(s)
	ds.sphere.Draw()

	ds.dev.CullFace(gfx.Back)
	ds.dev.Disable(gfx.Blend)
}

func (ds *DeferredShading) directionalLightPass(lights []*scene.DirectionalLight) {
	ds.gbuf.BindForLightPass()
	ds.dir.Use()

	ds.dev.Disable(gfx.DepthTest)
	ds.dev.Disable(gfx.CullFaceTest)
	ds.dev.Enable(gfx.Blend)
	ds.dev.BlendEquation(gfx.FuncAdd)
	ds.dev.BlendFunc(gfx.One, gfx.One)

	// The quad is already in clip space.
	ds.setShared(ds.dir, math.Mat4Identity())
	for _, l := range lights {
		setDirectionalLight(ds.dir, uniformDirectionalLight, l)
		ds.quad.Draw()
	}

	ds.dev.Disable(gfx.Blend)
}

func (ds *DeferredShading) finalPass() {
	ds.dev.Disable(gfx.Blend)
	ds.gbuf.BindForFinalPass()
	w, h := ds.gbuf.Size()
	ds.dev.BlitFramebuffer(w, h)
}

func (ds *DeferredShading) setShared(s gfx.Shader, wvp math.Mat4) {
	w, h := ds.gbuf.Size()
	s.SetMat4(uniformWVP, wvp)
	s.SetVec3(uniformEyeWorldPos, ds.cam.Position())
	s.SetVec2(uniformScreenSize, math.NewVec2(float32(w), float32(h)))
	setMaterial(s, ds.Material)
}
