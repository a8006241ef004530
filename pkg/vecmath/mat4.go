package vecmath

import (
	"errors"
	"math"
)

// ErrSingular is returned when Inverse meets a zero pivot or produces
// non-finite entries.
var ErrSingular = errors.New("vecmath: singular matrix")

// Mat4 is a row-major 4x4 affine transform acting on column vectors.
// Translation lives in the last column.
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a matrix that moves points by (x, y, z).
func Translation(x, y, z float64) Mat4 {
	m := Identity()
	m[0][3] = x
	m[1][3] = y
	m[2][3] = z
	return m
}

// Scaling returns a matrix that scales each axis independently.
func Scaling(x, y, z float64) Mat4 {
	m := Identity()
	m[0][0] = x
	m[1][1] = y
	m[2][2] = z
	return m
}

// RotationX returns a right-handed rotation about the X axis.
func RotationX(rad float64) Mat4 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationY returns a right-handed rotation about the Y axis.
func RotationY(rad float64) Mat4 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationZ returns a right-handed rotation about the Z axis.
func RotationZ(rad float64) Mat4 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m × o. Applied to a point, o acts first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// MulPoint transforms p as a point (homogeneous coordinate 1). The resulting
// homogeneous coordinate is ignored.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// MulDir transforms d as a direction (homogeneous coordinate 0), so only the
// upper-left 3x3 block participates.
func (m Mat4) MulDir(d Vec3) Vec3 {
	return Vec3{
		m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// Inverse inverts m by Gauss-Jordan elimination on [m | I].
//
// No pivoting is performed: rows are eliminated in their natural order, so
// matrices with a small leading diagonal lose precision and an exactly zero
// pivot fails with ErrSingular.
func (m Mat4) Inverse() (Mat4, error) {
	var a [4][8]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = m[i][j]
			if i == j {
				a[i][j+4] = 1
			}
		}
	}

	// Forward elimination below the diagonal.
	for i := 0; i < 3; i++ {
		if a[i][i] == 0 {
			return Mat4{}, ErrSingular
		}
		for j := i + 1; j < 4; j++ {
			f := a[j][i] / a[i][i]
			for k := i + 1; k < 8; k++ {
				a[j][k] -= f * a[i][k]
			}
			a[j][i] = 0
		}
	}

	// Back substitution.
	for i := 3; i >= 0; i-- {
		if a[i][i] == 0 {
			return Mat4{}, ErrSingular
		}
		for k := i + 1; k < 8; k++ {
			a[i][k] /= a[i][i]
		}
		a[i][i] = 1
		for j := 0; j < i; j++ {
			for k := i + 1; k < 8; k++ {
				a[j][k] -= a[i][k] * a[j][i]
			}
			a[j][i] = 0
		}
	}

	var inv Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := a[i][j+4]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Mat4{}, ErrSingular
			}
			inv[i][j] = v
		}
	}
	return inv, nil
}

// ApproxEqual reports whether every entry of m and o differs by at most tol.
func (m Mat4) ApproxEqual(o Mat4, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-o[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
