package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix for row vectors: a point p is transformed as p·M and
// the translation lives in row 3. Its memory layout is the column-major
// layout GLSL expects, so it is uploaded with transpose=false.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m·other; applied to a row vector, m acts first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

// MulPoint transforms p with w=1 and drops w without dividing.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return p.ToVec4(1).MulMat(m).ToVec3()
}

// Flatten returns the 16 elements in memory order.
func (m Mat4) Flatten() [16]float32 {
	var out [16]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m[i][j]
		}
	}
	return out
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4PerspectiveLH builds a left-handed perspective projection looking down
// +Z. fovY is in degrees. Depth maps near to -1 and far to +1 after the
// perspective divide, and clip w equals view-space z.
func Mat4PerspectiveLH(fovY, aspect, near, far float32) Mat4 {
	tanHalfFov := math32.Tan(ToRadian(fovY / 2))
	zRange := near - far

	var m Mat4
	m[0][0] = 1 / (tanHalfFov * aspect)
	m[1][1] = 1 / tanHalfFov
	m[2][2] = (-near - far) / zRange
	m[2][3] = 1
	m[3][2] = 2 * far * near / zRange
	return m
}

// Mat4OrthographicLH maps the box [left,right]x[bottom,top]x[near,far] to
// the [-1,1] cube. The caller validates the bounds.
func Mat4OrthographicLH(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = 2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}

// Mat4Basis builds the rotation that takes world space into the frame whose
// axes are u, v and n.
func Mat4Basis(u, v, n Vec3) Mat4 {
	return Mat4{
		{u.X, v.X, n.X, 0},
		{u.Y, v.Y, n.Y, 0},
		{u.Z, v.Z, n.Z, 0},
		{0, 0, 0, 1},
	}
}

// Inverse returns the inverse of m using Gauss-Jordan elimination with
// partial pivoting. A singular matrix yields the identity.
func (m Mat4) Inverse() Mat4 {
	var a [4][8]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = float64(m[i][j])
		}
		a[i][4+i] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if abs64(a[row][col]) > abs64(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return Mat4Identity()
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for j := 0; j < 8; j++ {
			a[col][j] *= inv
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row][col]
			for j := 0; j < 8; j++ {
				a[row][j] -= f * a[col][j]
			}
		}
	}

	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = float32(a[i][4+j])
		}
	}
	return out
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
