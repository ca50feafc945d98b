package technique

import (
	"fmt"

	"github.com/charmbracelet/log"

	"render-pipeline/core"
	"render-pipeline/internal/gfx"
	"render-pipeline/math"
	"render-pipeline/scene"
)

// CascadedShadowMap lights the scene with one directional light whose
// shadows come from NumCascades depth maps, each fitted to a slice of the
// camera frustum.
type CascadedShadowMap struct {
	Material Material

	cam     *scene.Camera
	dev     gfx.Device
	targets gfx.CascadeTargets
	logger  *log.Logger

	shadow   gfx.Shader
	lighting gfx.Shader

	light    *scene.DirectionalLight
	ends     [NumCascades + 1]float32
	endsClip [NumCascades]float32

	floor          scene.Drawable
	floorTransform core.Transform
}

var _ Technique = (*CascadedShadowMap)(nil)

// NewCascadedShadowMap compiles the shadow and lighting programs and
// reserves NumCascades orthogonal slots on cam. Cascade ends are derived
// from cam's current near and far planes.
func NewCascadedShadowMap(cam *scene.Camera, targets gfx.CascadeTargets, splits [NumCascades - 1]float32, res Resources) (*CascadedShadowMap, error) {
	if cam == nil {
		return nil, ErrNoCamera
	}
	if n := targets.Size(); n != NumCascades {
		return nil, fmt.Errorf("cascaded shadow map: %w: %d targets, want %d", gfx.ErrCascadeIndex, n, NumCascades)
	}

	ends, err := CascadeEnds(cam.NearPlane(), cam.FarPlane(), splits)
	if err != nil {
		return nil, err
	}
	if err := cam.SetOrthogonalProjectionCount(NumCascades); err != nil {
		return nil, err
	}

	shaders, err := compileAll(res.Compiler, CSMShadowMapSpec(), CSMLightingSpec(NumCascades))
	if err != nil {
		return nil, fmt.Errorf("cascaded shadow map: %w", err)
	}

	csm := &CascadedShadowMap{
		Material: DefaultMaterial(),
		cam:      cam,
		dev:      res.Device,
		targets:  targets,
		logger:   res.logger(),
		shadow:   shaders[0],
		lighting: shaders[1],
		ends:     ends,
		endsClip: clipSpaceEnds(cam.Projection(), ends),
	}

	csm.lighting.Use()
	for i := 0; i < NumCascades; i++ {
		csm.lighting.SetInt(indexed(uniformShadowMap, i), int32(1+i))
		csm.lighting.SetFloat(indexed(uniformCascadeEnd, i), csm.endsClip[i])
	}

	csm.logger.Info("Cascaded shadow map ready", "ends", ends)
	return csm, nil
}

func (csm *CascadedShadowMap) SetDirectionalLight(l *scene.DirectionalLight) error {
	if l == nil {
		return ErrNilLight
	}
	csm.light = l
	return nil
}

// SetFloor adds a receiver drawn in the lighting pass only.
func (csm *CascadedShadowMap) SetFloor(mesh scene.Drawable, t core.Transform) {
	csm.floor = mesh
	csm.floorTransform = t
}

// Ends returns the view-space depths delimiting the cascades.
func (csm *CascadedShadowMap) Ends() [NumCascades + 1]float32 { return csm.ends }

// Render draws the shadow maps and then the lit scene. The first
// directional light in lights replaces the current one.
func (csm *CascadedShadowMap) Render(meshes scene.Meshes, lights []scene.Light) error {
	if err := checkLights(lights); err != nil {
		return fmt.Errorf("cascaded shadow map: %w", err)
	}
	if dirs := scene.SortLights(lights).Directional; len(dirs) > 0 {
		csm.light = dirs[0]
	}
	if csm.light == nil {
		return fmt.Errorf("cascaded shadow map: %w: no directional light", ErrNilLight)
	}

	bounds := CascadeBounds(csm.cam, csm.light.Direction, csm.ends)
	for i, b := range bounds {
		if err := csm.cam.SetOrthogonalProjectionBounds(i, b); err != nil {
			return err
		}
	}
	lightCam := LightCamera(csm.cam, csm.light.Direction)

	lightVP, err := csm.shadowPass(&lightCam, meshes)
	if err != nil {
		return err
	}
	csm.renderPass(meshes, lightVP)
	return nil
}

// shadowPass renders depth from the light into every cascade and returns
// the light view-projection of each. All projections are resolved before
// the first GPU call.
func (csm *CascadedShadowMap) shadowPass(lightCam *scene.Camera, meshes scene.Meshes) ([NumCascades]math.Mat4, error) {
	var lightVP [NumCascades]math.Mat4
	view := lightCam.View()
	for i := range lightVP {
		ortho, err := lightCam.OrthogonalProjection(i)
		if err != nil {
			return lightVP, fmt.Errorf("cascade %d: %w", i, err)
		}
		lightVP[i] = view.Mul(ortho)
	}

	w, h := csm.targets.Dimensions()
	csm.dev.Viewport(0, 0, w, h)
	csm.dev.Enable(gfx.DepthTest)
	csm.dev.DepthMask(true)
	csm.shadow.Use()

	for i := range lightVP {
		if err := csm.targets.BindForWriting(i); err != nil {
			return lightVP, err
		}
		csm.dev.Clear(gfx.DepthBuffer)
		meshes.ForEachInstance(func(mesh scene.Drawable, world math.Mat4) {
			csm.shadow.SetMat4(uniformWVP, world.Mul(lightVP[i]))
			mesh.Draw()
		})
	}
	return lightVP, nil
}

func (csm *CascadedShadowMap) renderPass(meshes scene.Meshes, lightVP [NumCascades]math.Mat4) {
	csm.dev.BindDefaultFramebuffer()
	w, h := csm.cam.FrameBufferDimensions()
	csm.dev.Viewport(0, 0, int32(w), int32(h))
	csm.dev.Clear(gfx.ColorBuffer | gfx.DepthBuffer)

	csm.lighting.Use()
	csm.targets.BindForReading()

	csm.lighting.SetVec3(uniformEyeWorldPos, csm.cam.Position())
	setDirectionalLight(csm.lighting, uniformDirectionalLight, csm.light)
	setMaterial(csm.lighting, csm.Material)
	for i := 0; i < NumCascades; i++ {
		csm.lighting.SetFloat(indexed(uniformCascadeEnd, i), csm.endsClip[i])
	}

	viewProj := csm.cam.View().Mul(csm.cam.Projection())
	draw := func(mesh scene.Drawable, world math.Mat4) {
		csm.lighting.SetMat4(uniformWVP, world.Mul(viewProj))
		csm.lighting.SetMat4(uniformWorld, world)
		for i := range lightVP {
			csm.lighting.SetMat4(indexed(uniformLightWVP, i), world.Mul(lightVP[i]))
		}
		mesh.Draw()
	}

	if csm.floor != nil {
		draw(csm.floor, csm.floorTransform.Final())
	}
	meshes.ForEachInstance(draw)
}
