package renderer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"render-pipeline/core"
	"render-pipeline/internal/config"
	"render-pipeline/internal/gfx"
	"render-pipeline/internal/opengl"
	"render-pipeline/internal/technique"
	"render-pipeline/math"
	"render-pipeline/scene"
	"render-pipeline/shaders"
)

// RenderEngine owns every GL object of the pipeline and drives one
// technique per frame. All methods must be called from the thread that
// owns the GL context.
type RenderEngine struct {
	Camera *scene.Camera

	logger    *log.Logger
	debug     bool
	device    gfx.Device
	technique technique.Technique

	meshes  scene.Meshes
	lights  []scene.Light
	watcher *scene.Watcher
	updates <-chan *scene.SceneFile

	// GL resources, nil in tests.
	compiler *opengl.Compiler
	cache    *opengl.MeshCache
	gbuf     *opengl.GBuffer
	cascades *opengl.CascadedShadowMapFBO
	deferred *technique.DeferredShading
}

// NewRenderEngine creates the GL resources for cfg.Technique. A current
// OpenGL 4.1 context is required.
func NewRenderEngine(cfg *config.Config, cam *scene.Camera, logger *log.Logger) (*RenderEngine, error) {
	version, err := opengl.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized", "version", version)

	var sources fs.FS = shaders.FS
	if cfg.Shaders.Dir != "" {
		sources = os.DirFS(cfg.Shaders.Dir)
		logger.Info("Loading shaders from disk", "dir", cfg.Shaders.Dir)
	}

	re := &RenderEngine{
		Camera:   cam,
		logger:   logger,
		debug:    cfg.Debug,
		device:   opengl.Device{},
		meshes:   scene.Meshes{},
		compiler: opengl.NewCompiler(sources),
		cache:    &opengl.MeshCache{},
	}
	res := technique.Resources{Device: re.device, Compiler: re.compiler, Logger: logger}

	switch cfg.Technique {
	case config.TechniqueDeferred:
		err = re.initDeferred(res)
	case config.TechniqueCSM:
		err = re.initCSM(res, cfg.Cascades)
	default:
		err = fmt.Errorf("unknown technique %q", cfg.Technique)
	}
	if err != nil {
		re.Destroy()
		return nil, err
	}

	logger.Info("Render engine initialized", "technique", cfg.Technique, "debug", cfg.Debug)
	return re, nil
}

func (re *RenderEngine) initDeferred(res technique.Resources) error {
	w, h := re.Camera.FrameBufferDimensions()
	gbuf, err := opengl.NewGBuffer(w, h)
	if err != nil {
		return fmt.Errorf("gbuffer: %w", err)
	}
	re.gbuf = gbuf

	sphere, err := re.cache.Upload(scene.CreateSphere(1, 24, 16))
	if err != nil {
		return fmt.Errorf("light volume: %w", err)
	}
	quad, err := re.cache.Upload(scene.CreateScreenQuad())
	if err != nil {
		return fmt.Errorf("screen quad: %w", err)
	}

	ds, err := technique.NewDeferredShading(re.Camera, gbuf, sphere, quad, res)
	if err != nil {
		return err
	}
	re.deferred = ds
	re.technique = ds
	return nil
}

func (re *RenderEngine) initCSM(res technique.Resources, cfg config.Cascades) error {
	cascades, err := opengl.NewCascadedShadowMapFBO(cfg.Resolution, cfg.Resolution)
	if err != nil {
		return fmt.Errorf("cascades: %w", err)
	}
	re.cascades = cascades

	csm, err := technique.NewCascadedShadowMap(re.Camera, cascades, cfg.Splits, res)
	if err != nil {
		return err
	}

	floor, err := re.cache.Upload(scene.CreatePlane(200, 200, 1))
	if err != nil {
		return fmt.Errorf("floor: %w", err)
	}
	csm.SetFloor(floor, core.NewTransform())

	re.technique = csm
	return nil
}

// LoadScene builds the meshes and lights of a scene file and keeps
// watching it; later edits replace the lights between frames.
func (re *RenderEngine) LoadScene(path string) error {
	sf, err := scene.LoadSceneFile(path)
	if err != nil {
		return err
	}
	meshes, err := sf.BuildMeshes(re.cache.Upload)
	if err != nil {
		return fmt.Errorf("scene %q: %w", path, err)
	}
	re.SetScene(meshes, sf.Lights)

	w, err := scene.WatchSceneFile(path, re.logger)
	if err != nil {
		re.logger.Warn("Scene hot reload disabled", "path", path, "err", err)
		return nil
	}
	re.watcher = w
	re.updates = w.Updates()

	re.logger.Info("Scene loaded", "path", path, "meshes", len(meshes), "instances", meshes.InstanceCount(), "lights", len(sf.Lights))
	return nil
}

// UploadMesh makes CPU geometry drawable; the engine releases it on Destroy.
func (re *RenderEngine) UploadMesh(mesh *scene.Mesh) (scene.Drawable, error) {
	return re.cache.Upload(mesh)
}

func (re *RenderEngine) SetScene(meshes scene.Meshes, lights []scene.Light) {
	re.meshes = meshes
	re.lights = lights
}

func (re *RenderEngine) Lights() []scene.Light { return re.lights }

// Render draws one frame after applying any reloaded scene lights.
func (re *RenderEngine) Render() error {
	re.applyUpdates()
	re.Camera.OnRender()

	if err := re.technique.Render(re.meshes, re.lights); err != nil {
		return err
	}

	if re.debug {
		if err := re.device.CheckError(); err != nil {
			re.logger.Warn("GL error after frame", "err", err)
		}
	}
	return nil
}

func (re *RenderEngine) applyUpdates() {
	select {
	case sf := <-re.updates:
		re.lights = sf.Lights
		re.logger.Info("Scene lights reloaded", "lights", len(sf.Lights))
	default:
	}
}

// Resize follows a framebuffer size change. The deferred G-buffer is
// recreated at the new size.
func (re *RenderEngine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	re.Camera.SetFrameBufferDimensions(width, height)
	re.device.Viewport(0, 0, int32(width), int32(height))

	if re.deferred == nil {
		return nil
	}
	gbuf, err := opengl.NewGBuffer(width, height)
	if err != nil {
		return fmt.Errorf("resize gbuffer: %w", err)
	}
	re.gbuf.Destroy()
	re.gbuf = gbuf
	re.deferred.SetGeometryBuffer(gbuf)
	re.logger.Debug("G-buffer resized", "width", width, "height", height)
	return nil
}

// MoveCamera translates the camera by step in dir.
func (re *RenderEngine) MoveCamera(dir scene.MoveDirection, step float32) {
	re.Camera.Move(dir, step)
}

// LookAt points the camera from position toward target.
func (re *RenderEngine) LookAt(position, target math.Vec3) {
	re.Camera.SetPosition(position)
	re.Camera.SetLookAt(target.Sub(position))
}

func (re *RenderEngine) Destroy() {
	var errs []error
	if re.watcher != nil {
		errs = append(errs, re.watcher.Close())
		re.watcher = nil
	}
	if re.cache != nil {
		re.cache.Destroy()
	}
	if re.compiler != nil {
		re.compiler.Destroy()
	}
	if re.gbuf != nil {
		re.gbuf.Destroy()
		re.gbuf = nil
	}
	if re.cascades != nil {
		re.cascades.Destroy()
		re.cascades = nil
	}
	if err := errors.Join(errs...); err != nil {
		re.logger.Warn("Render engine shutdown", "err", err)
	}
}
