// Package technique implements the frame-level rendering pipelines: deferred
// shading with stencil-culled light volumes, and a directional light with
// cascaded shadow maps. Both are written against the gfx contracts and
// share the scene camera by pointer.
package technique

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"render-pipeline/internal/gfx"
	"render-pipeline/scene"
)

var (
	ErrNoCamera             = errors.New("technique requires a camera")
	ErrNilLight             = errors.New("nil light")
	ErrUnboundedAttenuation = errors.New("attenuation never reaches the visibility threshold")
	ErrCascadeSplits        = errors.New("cascade splits must lie strictly between near and far")
	ErrMissingMesh          = errors.New("missing helper mesh")
)

// Technique renders one frame of a scene.
type Technique interface {
	Render(meshes scene.Meshes, lights []scene.Light) error
}

// checkLights rejects nil entries, including typed nil pointers, which
// SortLights would otherwise file under their variant.
func checkLights(lights []scene.Light) error {
	for i, l := range lights {
		isNil := false
		switch l := l.(type) {
		case nil:
			isNil = true
		case *scene.DirectionalLight:
			isNil = l == nil
		case *scene.PointLight:
			isNil = l == nil
		case *scene.SpotLight:
			isNil = l == nil
		}
		if isNil {
			return fmt.Errorf("light %d: %w", i, ErrNilLight)
		}
	}
	return nil
}

// Resources are the shared collaborators every technique is built from.
type Resources struct {
	Device   gfx.Device
	Compiler gfx.Compiler
	Logger   *log.Logger
}

func (r Resources) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.New(io.Discard)
}

// Material is the specular response applied uniformly to every surface.
type Material struct {
	SpecularIntensity float32
	SpecularPower     float32
}

func DefaultMaterial() Material {
	return Material{SpecularIntensity: 1, SpecularPower: 32}
}
