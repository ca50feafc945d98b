package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	reMath "render-pipeline/math"
)

const (
	// MaxOrthogonalProjections is the number of cascade slots a camera carries.
	MaxOrthogonalProjections = 8

	// EdgeMargin is the distance in pixels from a window border at which the
	// pointer starts scrolling the view.
	EdgeMargin = 10
	// EdgeStep is the per-frame angle change in degrees while edge scrolling.
	EdgeStep float32 = 0.5

	mouseSensitivity float32 = 20
)

type cacheState uint8

const (
	cacheDirty cacheState = iota
	cacheClean
)

// OrthoSide names one face of an orthogonal projection box.
type OrthoSide int

const (
	SideLeft OrthoSide = iota
	SideRight
	SideTop
	SideBottom
	SideNear
	SideFar
)

func (s OrthoSide) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideNear:
		return "near"
	case SideFar:
		return "far"
	}
	return fmt.Sprintf("OrthoSide(%d)", int(s))
}

// OrthoBounds is the light-space box covered by one cascade.
type OrthoBounds struct {
	Left, Right, Top, Bottom, Near, Far float32
}

func (b OrthoBounds) valid() bool {
	return b.Left < b.Right && b.Bottom < b.Top && b.Near < b.Far
}

type orthoSlot struct {
	bounds OrthoBounds
	matrix reMath.Mat4
	state  cacheState
}

// MoveDirection is a keyboard-driven translation of the camera.
type MoveDirection int

const (
	MoveForward MoveDirection = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

type pointer struct {
	x, y int
}

// Camera is a left-handed perspective camera looking down +Z by default.
// View, perspective and orthogonal matrices are cached and rebuilt lazily
// after a setter marks them dirty. Copying a Camera by value yields an
// independent camera.
type Camera struct {
	position reMath.Vec3
	lookAt   reMath.Vec3
	up       reMath.Vec3

	verticalFoV   float32
	aspectRatio   float32
	nearPlane     float32
	farPlane      float32
	focalDistance float32

	view      reMath.Mat4
	viewState cacheState
	proj      reMath.Mat4
	projState cacheState

	orthoCount int
	ortho      [MaxOrthogonalProjections]orthoSlot

	angleH float32
	angleV float32

	width, height int
	mouse         pointer
}

// NewCamera returns a camera at the origin looking down +Z with a 60 degree
// vertical field of view, sized for a width x height framebuffer.
func NewCamera(width, height int) *Camera {
	c := &Camera{
		position:      reMath.Vec3Zero,
		lookAt:        reMath.Vec3Front,
		up:            reMath.Vec3Up,
		verticalFoV:   60,
		aspectRatio:   1,
		nearPlane:     0.1,
		farPlane:      100,
		focalDistance: 1,
	}
	c.SetFrameBufferDimensions(width, height)
	c.initAngles()
	return c
}

func (c *Camera) Position() reMath.Vec3 { return c.position }
func (c *Camera) LookAt() reMath.Vec3   { return c.lookAt }
func (c *Camera) Up() reMath.Vec3       { return c.up }

func (c *Camera) VerticalFoV() float32   { return c.verticalFoV }
func (c *Camera) AspectRatio() float32   { return c.aspectRatio }
func (c *Camera) NearPlane() float32     { return c.nearPlane }
func (c *Camera) FarPlane() float32      { return c.farPlane }
func (c *Camera) FocalDistance() float32 { return c.focalDistance }

// Angles returns the horizontal and vertical orientation angles in degrees.
func (c *Camera) Angles() (float32, float32) { return c.angleH, c.angleV }

func (c *Camera) FrameBufferDimensions() (int, int) { return c.width, c.height }

func (c *Camera) SetPosition(p reMath.Vec3) {
	c.position = p
	c.viewState = cacheDirty
}

// SetLookAt stores the normalized direction and re-derives the orientation
// angles from it.
func (c *Camera) SetLookAt(v reMath.Vec3) {
	c.lookAt = v.Normalize()
	c.initAngles()
	c.viewState = cacheDirty
}

func (c *Camera) SetUp(v reMath.Vec3) {
	c.up = v.Normalize()
	c.viewState = cacheDirty
}

func (c *Camera) SetVerticalFoV(degrees float32) {
	c.verticalFoV = degrees
	c.projState = cacheDirty
}

func (c *Camera) SetNearPlane(near float32) {
	c.nearPlane = near
	c.projState = cacheDirty
}

func (c *Camera) SetFarPlane(far float32) {
	c.farPlane = far
	c.projState = cacheDirty
}

func (c *Camera) SetFocalDistance(d float32) {
	c.focalDistance = d
}

// SetFrameBufferDimensions updates the aspect ratio and recentres the
// tracked pointer.
func (c *Camera) SetFrameBufferDimensions(width, height int) {
	c.width = width
	c.height = height
	if height > 0 {
		c.aspectRatio = float32(width) / float32(height)
	}
	c.mouse = pointer{x: width / 2, y: height / 2}
	c.projState = cacheDirty
}

func (c *Camera) View() reMath.Mat4 {
	if c.viewState == cacheDirty {
		n := c.lookAt
		u := c.up.Cross(n).Normalize()
		v := n.Cross(u)
		translation := reMath.Mat4Translation(c.position.Negate())
		c.view = translation.Mul(reMath.Mat4Basis(u, v, n))
		c.viewState = cacheClean
	}
	return c.view
}

func (c *Camera) Projection() reMath.Mat4 {
	if c.projState == cacheDirty {
		c.proj = reMath.Mat4PerspectiveLH(c.verticalFoV, c.aspectRatio, c.nearPlane, c.farPlane)
		c.projState = cacheClean
	}
	return c.proj
}

func (c *Camera) OrthogonalProjectionCount() int { return c.orthoCount }

// SetOrthogonalProjectionCount sets how many cascade slots are in use.
func (c *Camera) SetOrthogonalProjectionCount(n int) error {
	if n < 0 || n > MaxOrthogonalProjections {
		return fmt.Errorf("%w: %d orthogonal projections, at most %d", ErrProjectionSlot, n, MaxOrthogonalProjections)
	}
	c.orthoCount = n
	return nil
}

// SetOrthogonalProjectionParameter sets one side of slot i. Bounds are only
// validated when the matrix is rebuilt.
func (c *Camera) SetOrthogonalProjectionParameter(i int, side OrthoSide, value float32) error {
	if err := c.checkSlot(i); err != nil {
		return err
	}
	b := &c.ortho[i].bounds
	switch side {
	case SideLeft:
		b.Left = value
	case SideRight:
		b.Right = value
	case SideTop:
		b.Top = value
	case SideBottom:
		b.Bottom = value
	case SideNear:
		b.Near = value
	case SideFar:
		b.Far = value
	default:
		return fmt.Errorf("%w: unknown side %v", ErrInvalidProjection, side)
	}
	c.ortho[i].state = cacheDirty
	return nil
}

// SetOrthogonalProjectionBounds replaces all six sides of slot i.
func (c *Camera) SetOrthogonalProjectionBounds(i int, b OrthoBounds) error {
	if err := c.checkSlot(i); err != nil {
		return err
	}
	c.ortho[i].bounds = b
	c.ortho[i].state = cacheDirty
	return nil
}

func (c *Camera) OrthogonalProjectionBounds(i int) (OrthoBounds, error) {
	if err := c.checkSlot(i); err != nil {
		return OrthoBounds{}, err
	}
	return c.ortho[i].bounds, nil
}

// OrthogonalProjection returns the box-to-NDC matrix of slot i, failing
// with ErrInvalidProjection when the stored bounds are empty or inverted.
func (c *Camera) OrthogonalProjection(i int) (reMath.Mat4, error) {
	if err := c.checkSlot(i); err != nil {
		return reMath.Mat4{}, err
	}
	slot := &c.ortho[i]
	if slot.state == cacheDirty {
		b := slot.bounds
		if !b.valid() {
			return reMath.Mat4{}, fmt.Errorf("%w: slot %d bounds %+v", ErrInvalidProjection, i, b)
		}
		slot.matrix = reMath.Mat4OrthographicLH(b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far)
		slot.state = cacheClean
	}
	return slot.matrix, nil
}

func (c *Camera) checkSlot(i int) error {
	if i < 0 || i >= c.orthoCount {
		return fmt.Errorf("%w: slot %d of %d", ErrProjectionSlot, i, c.orthoCount)
	}
	return nil
}

// RotateFromMouse turns the camera by the pointer movement since the last
// call and records the pointer for edge scrolling.
func (c *Camera) RotateFromMouse(x, y int) {
	dx := x - c.mouse.x
	dy := y - c.mouse.y
	c.mouse = pointer{x: x, y: y}

	c.angleH += float32(dx) / mouseSensitivity
	c.angleV += float32(dy) / mouseSensitivity

	c.updateOrientation()
}

// OnRender applies edge scrolling once per frame. It reports whether the
// orientation changed.
func (c *Camera) OnRender() bool {
	if c.width <= 0 || c.height <= 0 {
		return false
	}
	changed := false

	switch {
	case c.mouse.x <= EdgeMargin:
		c.angleH -= EdgeStep
		changed = true
	case c.mouse.x >= c.width-EdgeMargin:
		c.angleH += EdgeStep
		changed = true
	}

	if c.mouse.y <= EdgeMargin && c.angleV > -90 {
		c.angleV = reMath.Clamp(c.angleV-EdgeStep, -90, 90)
		changed = true
	} else if c.mouse.y >= c.height-EdgeMargin && c.angleV < 90 {
		c.angleV = reMath.Clamp(c.angleV+EdgeStep, -90, 90)
		changed = true
	}

	if changed {
		c.updateOrientation()
	}
	return changed
}

// Move translates the camera by step along the view direction or the
// derived right axis.
func (c *Camera) Move(dir MoveDirection, step float32) {
	switch dir {
	case MoveForward:
		c.position = c.position.Add(c.lookAt.Mul(step))
	case MoveBackward:
		c.position = c.position.Sub(c.lookAt.Mul(step))
	case MoveLeft:
		left := c.lookAt.Cross(c.up).Normalize()
		c.position = c.position.Add(left.Mul(step))
	case MoveRight:
		right := c.up.Cross(c.lookAt).Normalize()
		c.position = c.position.Add(right.Mul(step))
	case MoveUp:
		c.position.Y += step
	case MoveDown:
		c.position.Y -= step
	default:
		return
	}
	c.viewState = cacheDirty
}

// initAngles derives the horizontal and vertical angles from lookAt.
func (c *Camera) initAngles() {
	h := reMath.NewVec3(c.lookAt.X, 0, c.lookAt.Z).Normalize()
	h.Z = reMath.Clamp(h.Z, -1, 1)

	if h.Z >= 0 {
		if h.X >= 0 {
			c.angleH = 360 - reMath.ToDegree(math32.Asin(h.Z))
		} else {
			c.angleH = 180 + reMath.ToDegree(math32.Asin(h.Z))
		}
	} else {
		if h.X >= 0 {
			c.angleH = reMath.ToDegree(math32.Asin(-h.Z))
		} else {
			c.angleH = 180 - reMath.ToDegree(math32.Asin(-h.Z))
		}
	}

	c.angleV = -reMath.ToDegree(math32.Asin(reMath.Clamp(c.lookAt.Y, -1, 1)))
}

// updateOrientation rebuilds lookAt and up from the angles: the base view
// vector is turned around world up, then around the resulting horizontal
// axis.
func (c *Camera) updateOrientation() {
	view := reMath.Vec3Right
	yaw := reMath.QuaternionFromAxisAngle(reMath.Vec3Up, reMath.ToRadian(c.angleH))
	view = yaw.RotateVector(view).Normalize()

	hAxis := reMath.Vec3Up.Cross(view).Normalize()
	pitch := reMath.QuaternionFromAxisAngle(hAxis, reMath.ToRadian(c.angleV))
	view = pitch.RotateVector(view).Normalize()

	c.lookAt = view
	c.up = view.Cross(hAxis).Normalize()
	c.viewState = cacheDirty
}
