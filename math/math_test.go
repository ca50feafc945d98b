package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-5

func nearlyEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if result := v1.Add(v2); result != NewVec3(5, 7, 9) {
		t.Errorf("Add: got %v", result)
	}
	if result := v2.Sub(v1); result != NewVec3(3, 3, 3) {
		t.Errorf("Sub: got %v", result)
	}
	if dot := v1.Dot(v2); dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}
	if cross := Vec3Right.Cross(Vec3Up); cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
	if m := NewVec3(0.2, 0.9, 0.4).MaxComponent(); m != 0.9 {
		t.Errorf("MaxComponent: expected 0.9, got %v", m)
	}
}

func TestVec3Normalize(t *testing.T) {
	normalized := NewVec3(3, 0, 4).Normalize()
	if !nearlyEqual(normalized.Length(), 1) {
		t.Errorf("Normalize: expected length 1, got %v", normalized.Length())
	}
	if Vec3Zero.Normalize() != Vec3Zero {
		t.Error("Normalize: zero vector must stay zero")
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if got := m.MulPoint(Vec3Zero); got != translation {
		t.Errorf("Translation: expected %v, got %v", translation, got)
	}
}

func TestMat4MatchesMathGL(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVec3(1, 1, 0), 0.7)
	ours := Mat4Scale(NewVec3(2, 3, 4)).Mul(q.ToMat4()).Mul(Mat4Translation(NewVec3(5, -6, 7)))

	oracle := mgl32.Translate3D(5, -6, 7).
		Mul4(mgl32.QuatRotate(0.7, mgl32.Vec3{1, 1, 0}.Normalize()).Mat4()).
		Mul4(mgl32.Scale3D(2, 3, 4))

	flat := ours.Flatten()
	for i := range flat {
		if !nearlyEqual(flat[i], oracle[i]) {
			t.Fatalf("element %d: expected %v, got %v", i, oracle[i], flat[i])
		}
	}
}

func TestMat4Inverse(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, 1.1)
	m := Mat4Scale(NewVec3(2, 2, 2)).Mul(q.ToMat4()).Mul(Mat4Translation(NewVec3(3, 4, 5)))

	product := m.Mul(m.Inverse())
	identity := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !nearlyEqual(product[i][j], identity[i][j]) {
				t.Errorf("Inverse: [%d][%d] = %v", i, j, product[i][j])
			}
		}
	}
}

func TestQuaternionRotation(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	result := q.RotateVector(Vec3Right)

	if !nearlyEqual(result.X, 0) || !nearlyEqual(result.Y, 0) || !nearlyEqual(result.Z, -1) {
		t.Errorf("Quaternion rotation: expected (0,0,-1), got %v", result)
	}
}

func TestMat4PerspectiveLH(t *testing.T) {
	m := Mat4PerspectiveLH(60, 16.0/9.0, 0.1, 100)

	if !nearlyEqual(m[1][1], float32(1/math.Tan(math.Pi/6))) {
		t.Errorf("Perspective: [1][1] = %v", m[1][1])
	}
	if m[2][3] != 1 {
		t.Errorf("Perspective: w must carry view-space z, got %v", m[2][3])
	}

	near := NewVec4(0, 0, 0.1, 1).MulMat(m)
	far := NewVec4(0, 0, 100, 1).MulMat(m)
	if !nearlyEqual(near.Z/near.W, -1) || !nearlyEqual(far.Z/far.W, 1) {
		t.Errorf("Perspective: depth range (%v, %v)", near.Z/near.W, far.Z/far.W)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(120, -90, 90) != 90 || Clamp(-95.5, -90.0, 90.0) != -90 || Clamp(3, 0, 5) != 3 {
		t.Error("Clamp: unexpected result")
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Translation(NewVec3(1, 2, 3))

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
