package technique

import (
	"fmt"

	"github.com/chewxy/math32"

	"render-pipeline/internal/gfx"
	"render-pipeline/math"
	"render-pipeline/scene"
)

const (
	uniformWVP               = "gWVP"
	uniformWorld             = "gWorld"
	uniformPositionMap       = "gPositionMap"
	uniformColorMap          = "gColorMap"
	uniformNormalMap         = "gNormalMap"
	uniformEyeWorldPos       = "gEyeWorldPos"
	uniformSpecularIntensity = "gMatSpecularIntensity"
	uniformSpecularPower     = "gSpecularPower"
	uniformScreenSize        = "gScreenSize"
	uniformPointLight        = "gPointLight"
	uniformSpotLight         = "gSpotLight"
	uniformDirectionalLight  = "gDirectionalLight"
	uniformLightWVP          = "gLightWVP"
	uniformShadowMap         = "gShadowMap"
	uniformCascadeEnd        = "gCascadeEndClipSpace"
)

// Program names, as reported in errors and logs.
const (
	ProgramGeometryPass   = "geometry_pass"
	ProgramNull           = "null"
	ProgramPointLightPass = "point_light_pass"
	ProgramSpotLightPass  = "spot_light_pass"
	ProgramDirLightPass   = "dir_light_pass"
	ProgramCSMShadowMap   = "csm_shadow_map"
	ProgramCSMLighting    = "csm_lighting"
)

func indexed(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

func baseLightUniforms(prefix string) []string {
	return []string{
		prefix + ".Color",
		prefix + ".AmbientIntensity",
		prefix + ".DiffuseIntensity",
	}
}

func directionalLightUniforms(prefix string) []string {
	return append(baseLightUniforms(prefix+".Base"), prefix+".Direction")
}

func pointLightUniforms(prefix string) []string {
	return append(baseLightUniforms(prefix+".Base"),
		prefix+".Position",
		prefix+".Atten.Constant",
		prefix+".Atten.Linear",
		prefix+".Atten.Exp",
	)
}

func spotLightUniforms(prefix string) []string {
	return append(pointLightUniforms(prefix+".Base"),
		prefix+".Direction",
		prefix+".Cutoff",
	)
}

// lightPassUniforms are shared by every deferred light-accumulation program.
func lightPassUniforms() []string {
	return []string{
		uniformWVP,
		uniformPositionMap,
		uniformColorMap,
		uniformNormalMap,
		uniformEyeWorldPos,
		uniformSpecularIntensity,
		uniformSpecularPower,
		uniformScreenSize,
	}
}

func GeometryPassSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramGeometryPass,
		Vertex:   "deferred/geometry_pass.vert",
		Fragment: "deferred/geometry_pass.frag",
		Uniforms: []string{uniformWVP, uniformWorld},
	}
}

func NullSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramNull,
		Vertex:   "deferred/null.vert",
		Fragment: "deferred/null.frag",
		Uniforms: []string{uniformWVP},
	}
}

func PointLightPassSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramPointLightPass,
		Vertex:   "deferred/light_pass.vert",
		Fragment: "deferred/point_light_pass.frag",
		Uniforms: append(lightPassUniforms(), pointLightUniforms(uniformPointLight)...),
	}
}

func SpotLightPassSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramSpotLightPass,
		Vertex:   "deferred/light_pass.vert",
		Fragment: "deferred/spot_light_pass.frag",
		Uniforms: append(lightPassUniforms(), spotLightUniforms(uniformSpotLight)...),
	}
}

func DirLightPassSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramDirLightPass,
		Vertex:   "deferred/light_pass.vert",
		Fragment: "deferred/dir_light_pass.frag",
		Uniforms: append(lightPassUniforms(), directionalLightUniforms(uniformDirectionalLight)...),
	}
}

func CSMShadowMapSpec() gfx.ProgramSpec {
	return gfx.ProgramSpec{
		Name:     ProgramCSMShadowMap,
		Vertex:   "csm/shadow_map.vert",
		Fragment: "csm/shadow_map.frag",
		Uniforms: []string{uniformWVP},
	}
}

func CSMLightingSpec(cascades int) gfx.ProgramSpec {
	uniforms := []string{
		uniformWVP,
		uniformWorld,
		uniformEyeWorldPos,
		uniformSpecularIntensity,
		uniformSpecularPower,
	}
	for i := 0; i < cascades; i++ {
		uniforms = append(uniforms,
			indexed(uniformLightWVP, i),
			indexed(uniformShadowMap, i),
			indexed(uniformCascadeEnd, i),
		)
	}
	return gfx.ProgramSpec{
		Name:     ProgramCSMLighting,
		Vertex:   "csm/lighting.vert",
		Fragment: "csm/lighting.frag",
		Uniforms: append(uniforms, directionalLightUniforms(uniformDirectionalLight)...),
	}
}

// AllSpecs lists every program the techniques compile.
func AllSpecs(cascades int) []gfx.ProgramSpec {
	return []gfx.ProgramSpec{
		GeometryPassSpec(),
		NullSpec(),
		PointLightPassSpec(),
		SpotLightPassSpec(),
		DirLightPassSpec(),
		CSMShadowMapSpec(),
		CSMLightingSpec(cascades),
	}
}

// ── uniform uploads ───────────────────────────────────────────────────────────

func setBaseLight(s gfx.Shader, prefix string, b *scene.BaseLight) {
	s.SetVec3(prefix+".Color", b.Color)
	s.SetFloat(prefix+".AmbientIntensity", b.AmbientIntensity)
	s.SetFloat(prefix+".DiffuseIntensity", b.DiffuseIntensity)
}

func setDirectionalLight(s gfx.Shader, prefix string, l *scene.DirectionalLight) {
	setBaseLight(s, prefix+".Base", &l.BaseLight)
	s.SetVec3(prefix+".Direction", l.Direction)
}

func setPointLight(s gfx.Shader, prefix string, l *scene.PointLight) {
	setBaseLight(s, prefix+".Base", &l.BaseLight)
	s.SetVec3(prefix+".Position", l.Position)
	s.SetFloat(prefix+".Atten.Constant", l.Attenuation.Constant)
	s.SetFloat(prefix+".Atten.Linear", l.Attenuation.Linear)
	s.SetFloat(prefix+".Atten.Exp", l.Attenuation.Exp)
}

// setSpotLight uploads the cutoff as the cosine of the cone half-angle.
func setSpotLight(s gfx.Shader, prefix string, l *scene.SpotLight) {
	setPointLight(s, prefix+".Base", &l.PointLight)
	s.SetVec3(prefix+".Direction", l.Direction)
	s.SetFloat(prefix+".Cutoff", math32.Cos(math.ToRadian(l.Cutoff)))
}

func setMaterial(s gfx.Shader, m Material) {
	s.SetFloat(uniformSpecularIntensity, m.SpecularIntensity)
	s.SetFloat(uniformSpecularPower, m.SpecularPower)
}

// setGBufferSamplers points the attribute samplers at the units
// GeometryBuffer.BindForLightPass binds.
func setGBufferSamplers(s gfx.Shader) {
	s.SetInt(uniformPositionMap, 0)
	s.SetInt(uniformColorMap, 1)
	s.SetInt(uniformNormalMap, 2)
}

func compileAll(c gfx.Compiler, specs ...gfx.ProgramSpec) ([]gfx.Shader, error) {
	out := make([]gfx.Shader, len(specs))
	for i, spec := range specs {
		s, err := c.Compile(spec)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
