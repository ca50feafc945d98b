package scene

import (
	"fmt"

	reMath "render-pipeline/math"
)

type LightType int

const (
	LightUndefined LightType = iota
	LightDirectional
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "undefined"
}

// ParseLightType maps a scene-file tag to a LightType.
func ParseLightType(s string) (LightType, error) {
	switch s {
	case "directional":
		return LightDirectional, nil
	case "point":
		return LightPoint, nil
	case "spot":
		return LightSpot, nil
	}
	return LightUndefined, fmt.Errorf("%w: %q", ErrUnknownLightType, s)
}

// Light is implemented only by *DirectionalLight, *PointLight and
// *SpotLight. Consumers switch on the concrete type.
type Light interface {
	Type() LightType
	Base() *BaseLight
	sealed()
}

type BaseLight struct {
	Name             string
	Color            reMath.Vec3
	AmbientIntensity float32
	DiffuseIntensity float32
}

func (b *BaseLight) Base() *BaseLight { return b }
func (b *BaseLight) sealed()          {}

func newBaseLight(name string, color reMath.Vec3, ambient, diffuse float32) BaseLight {
	return BaseLight{
		Name:             name,
		Color:            color,
		AmbientIntensity: reMath.Clamp(ambient, 0, 1),
		DiffuseIntensity: reMath.Clamp(diffuse, 0, 1),
	}
}

type DirectionalLight struct {
	BaseLight
	Direction reMath.Vec3
}

func NewDirectionalLight(name string, color reMath.Vec3, ambient, diffuse float32, direction reMath.Vec3) *DirectionalLight {
	return &DirectionalLight{
		BaseLight: newBaseLight(name, color, ambient, diffuse),
		Direction: direction.Normalize(),
	}
}

func (*DirectionalLight) Type() LightType { return LightDirectional }

// Attenuation coefficients of constant + linear*d + exp*d^2.
type Attenuation struct {
	Constant float32
	Linear   float32
	Exp      float32
}

// DefaultAttenuation fades a light of full intensity out within about 30
// units.
var DefaultAttenuation = Attenuation{Constant: 1, Exp: 0.3}

// At evaluates the attenuation at distance d.
func (a Attenuation) At(d float32) float32 {
	return a.Constant + a.Linear*d + a.Exp*d*d
}

type PointLight struct {
	BaseLight
	Position    reMath.Vec3
	Attenuation Attenuation
}

func NewPointLight(name string, color reMath.Vec3, ambient, diffuse float32, position reMath.Vec3, atten Attenuation) *PointLight {
	return &PointLight{
		BaseLight:   newBaseLight(name, color, ambient, diffuse),
		Position:    position,
		Attenuation: atten,
	}
}

func (*PointLight) Type() LightType { return LightPoint }

type SpotLight struct {
	PointLight
	Direction reMath.Vec3
	// Cutoff is the cone half-angle in degrees, within [0, 90].
	Cutoff float32
}

func NewSpotLight(name string, color reMath.Vec3, ambient, diffuse float32, position reMath.Vec3, atten Attenuation, direction reMath.Vec3, cutoff float32) *SpotLight {
	return &SpotLight{
		PointLight: *NewPointLight(name, color, ambient, diffuse, position, atten),
		Direction:  direction.Normalize(),
		Cutoff:     reMath.Clamp(cutoff, 0, 90),
	}
}

func (*SpotLight) Type() LightType { return LightSpot }

// Lights splits a mixed list by variant, keeping relative order.
type Lights struct {
	Directional []*DirectionalLight
	Point       []*PointLight
	Spot        []*SpotLight
}

func SortLights(lights []Light) Lights {
	var out Lights
	for _, l := range lights {
		switch l := l.(type) {
		case *DirectionalLight:
			out.Directional = append(out.Directional, l)
		case *PointLight:
			out.Point = append(out.Point, l)
		case *SpotLight:
			out.Spot = append(out.Spot, l)
		}
	}
	return out
}
