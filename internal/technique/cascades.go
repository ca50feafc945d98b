package technique

import (
	"fmt"

	"github.com/chewxy/math32"

	"render-pipeline/math"
	"render-pipeline/scene"
)

// NumCascades is the number of view-frustum slices a CascadedShadowMap fits.
const NumCascades = 3

// DefaultSplits are the view-space depths between cascades.
var DefaultSplits = [NumCascades - 1]float32{25, 90}

// CascadeEnds returns [near, splits..., far], failing unless the splits lie
// strictly inside (near, far) in increasing order.
func CascadeEnds(near, far float32, splits [NumCascades - 1]float32) ([NumCascades + 1]float32, error) {
	var ends [NumCascades + 1]float32
	ends[0] = near
	copy(ends[1:], splits[:])
	ends[NumCascades] = far

	for i := 1; i < len(ends); i++ {
		if !(ends[i-1] < ends[i]) {
			return ends, fmt.Errorf("%w: near %g, splits %v, far %g", ErrCascadeSplits, near, splits, far)
		}
	}
	return ends, nil
}

// LightCamera returns an independent copy of cam placed at the origin and
// looking along dir. When dir is (anti)parallel to world up, +Z is used as
// up instead so the basis stays defined.
func LightCamera(cam *scene.Camera, dir math.Vec3) scene.Camera {
	light := *cam
	up := math.Vec3Up
	if math32.Abs(dir.Normalize().Dot(up)) > 0.999 {
		up = math.Vec3Front
	}
	light.SetPosition(math.Vec3Zero)
	light.SetLookAt(dir)
	light.SetUp(up)
	return light
}

// frustumSliceCorners returns the eight view-space corners of the part of
// cam's frustum between depths zNear and zFar.
func frustumSliceCorners(cam *scene.Camera, zNear, zFar float32) [8]math.Vec3 {
	tanHalfV := math32.Tan(math.ToRadian(cam.VerticalFoV() / 2))
	tanHalfH := math32.Tan(math.ToRadian(cam.VerticalFoV() * cam.AspectRatio() / 2))

	xn, yn := zNear*tanHalfH, zNear*tanHalfV
	xf, yf := zFar*tanHalfH, zFar*tanHalfV

	return [8]math.Vec3{
		{X: xn, Y: yn, Z: zNear},
		{X: -xn, Y: yn, Z: zNear},
		{X: xn, Y: -yn, Z: zNear},
		{X: -xn, Y: -yn, Z: zNear},
		{X: xf, Y: yf, Z: zFar},
		{X: -xf, Y: yf, Z: zFar},
		{X: xf, Y: -yf, Z: zFar},
		{X: -xf, Y: -yf, Z: zFar},
	}
}

// CascadeBounds fits a light-space box around each slice of cam's frustum
// delimited by ends.
func CascadeBounds(cam *scene.Camera, lightDir math.Vec3, ends [NumCascades + 1]float32) [NumCascades]scene.OrthoBounds {
	viewInv := cam.View().Inverse()
	lightCam := LightCamera(cam, lightDir)
	lightView := lightCam.View()

	var out [NumCascades]scene.OrthoBounds
	for i := 0; i < NumCascades; i++ {
		corners := frustumSliceCorners(cam, ends[i], ends[i+1])
		var inLight [8]math.Vec3
		for j, c := range corners {
			inLight[j] = lightView.MulPoint(viewInv.MulPoint(c))
		}
		box := scene.AABBFromPoints(inLight[:])
		out[i] = scene.OrthoBounds{
			Left:   box.Min.X,
			Right:  box.Max.X,
			Bottom: box.Min.Y,
			Top:    box.Max.Y,
			Near:   box.Min.Z,
			Far:    box.Max.Z,
		}
	}
	return out
}

// clipSpaceEnds projects each cascade's far depth through proj.
func clipSpaceEnds(proj math.Mat4, ends [NumCascades + 1]float32) [NumCascades]float32 {
	var out [NumCascades]float32
	for i := 0; i < NumCascades; i++ {
		out[i] = math.NewVec4(0, 0, ends[i+1], 1).MulMat(proj).Z
	}
	return out
}
