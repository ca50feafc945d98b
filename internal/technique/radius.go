package technique

import (
	"fmt"

	"github.com/chewxy/math32"

	"render-pipeline/math"
	"render-pipeline/scene"
)

// VisibilityThreshold is the ratio of peak light intensity to attenuation
// below which a light's contribution is treated as invisible.
const VisibilityThreshold = 256

// LightVolumeRadius returns the distance at which a light of the given
// colour and diffuse intensity attenuates to 1/VisibilityThreshold of its
// brightest channel, by solving
//
//	constant + linear*d + exp*d² = VisibilityThreshold * maxChannel * diffuse
//
// for d. With exp == 0 the linear root is used; with both zero the light
// never fades and ErrUnboundedAttenuation is returned.
func LightVolumeRadius(color math.Vec3, diffuse float32, a scene.Attenuation) (float32, error) {
	target := VisibilityThreshold * color.MaxComponent() * diffuse

	if a.Exp == 0 {
		if a.Linear <= 0 {
			return 0, fmt.Errorf("%w: %+v", ErrUnboundedAttenuation, a)
		}
		return math32.Max(0, (target-a.Constant)/a.Linear), nil
	}

	disc := a.Linear*a.Linear - 4*a.Exp*(a.Constant-target)
	if disc < 0 {
		return 0, nil
	}
	return math32.Max(0, (-a.Linear+math32.Sqrt(disc))/(2*a.Exp)), nil
}
