package technique

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-pipeline/internal/gfx"
	"render-pipeline/shaders"
)

// uniformRoot strips struct members and array indices: "gPointLight.Base.Color"
// and "gShadowMap[2]" declare as "gPointLight" and "gShadowMap".
func uniformRoot(name string) string {
	if i := strings.IndexAny(name, ".["); i >= 0 {
		return name[:i]
	}
	return name
}

func TestProgramSpecsMatchEmbeddedSources(t *testing.T) {
	for _, spec := range AllSpecs(NumCascades) {
		t.Run(spec.Name, func(t *testing.T) {
			vertex, fragment, err := gfx.ReadSources(shaders.FS, spec)
			require.NoError(t, err)

			seen := map[string]bool{}
			for _, u := range spec.Uniforms {
				assert.False(t, seen[u], "duplicate uniform %s", u)
				seen[u] = true

				root := uniformRoot(u)
				declared := strings.Contains(vertex, " "+root+";") ||
					strings.Contains(vertex, " "+root+"[") ||
					strings.Contains(fragment, " "+root+";") ||
					strings.Contains(fragment, " "+root+"[")
				assert.True(t, declared, "%s not declared in %s or %s", root, spec.Vertex, spec.Fragment)
			}
		})
	}
}

func TestSpotLightUniformsNestPointLight(t *testing.T) {
	assert.Equal(t, []string{
		"gSpotLight.Base.Base.Color",
		"gSpotLight.Base.Base.AmbientIntensity",
		"gSpotLight.Base.Base.DiffuseIntensity",
		"gSpotLight.Base.Position",
		"gSpotLight.Base.Atten.Constant",
		"gSpotLight.Base.Atten.Linear",
		"gSpotLight.Base.Atten.Exp",
		"gSpotLight.Direction",
		"gSpotLight.Cutoff",
	}, spotLightUniforms(uniformSpotLight))
}

func TestCSMLightingSpecIndexesCascades(t *testing.T) {
	spec := CSMLightingSpec(NumCascades)
	for i := 0; i < NumCascades; i++ {
		assert.Contains(t, spec.Uniforms, indexed(uniformLightWVP, i))
		assert.Contains(t, spec.Uniforms, indexed(uniformShadowMap, i))
		assert.Contains(t, spec.Uniforms, indexed(uniformCascadeEnd, i))
	}
	assert.NotContains(t, spec.Uniforms, indexed(uniformShadowMap, NumCascades))
}
