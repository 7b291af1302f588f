package stitchgo

import "math"

// Matrix is a 2D affine transform stored as six coefficients (a b c d e f),
// applied to a point as:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
//
// Operations compose by post-multiplication: the most recently applied
// operation acts in the already-transformed frame, i.e. calling PostRotate
// after PostScale rotates the already-scaled coordinate system rather than
// the original one. This mirrors the postConcat convention used by most
// 2D graphics matrix APIs.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Reset sets m to the identity matrix.
func (m *Matrix) Reset() {
	*m = Identity()
}

// PointInMatrixSpace maps (x, y) through the matrix.
func (m Matrix) PointInMatrixSpace(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Multiply returns the matrix representing "apply other, then apply m" --
// i.e. the composition m ∘ other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// PostTranslate post-multiplies a translation by (tx, ty).
func (m *Matrix) PostTranslate(tx, ty float64) {
	t := Matrix{A: 1, D: 1, E: tx, F: ty}
	*m = t.Multiply(*m)
}

// PostScale post-multiplies a scale by (sx, sy) about the pivot (px, py).
// Implemented as translate-to-origin / scale / translate-back, folded into
// a single elementary matrix before composing.
func (m *Matrix) PostScale(sx, sy, px, py float64) {
	e := Matrix{
		A: sx,
		D: sy,
		E: px - sx*px,
		F: py - sy*py,
	}
	*m = e.Multiply(*m)
}

// PostScaleUniform post-multiplies a uniform scale about the origin.
func (m *Matrix) PostScaleUniform(s float64) {
	m.PostScale(s, s, 0, 0)
}

// PostRotate post-multiplies a rotation of deg degrees about the pivot
// (px, py). Implemented as translate-to-origin / rotate / translate-back,
// folded into a single elementary matrix before composing.
func (m *Matrix) PostRotate(deg, px, py float64) {
	theta := deg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	e := Matrix{
		A: cos,
		B: sin,
		C: -sin,
		D: cos,
		E: px - px*cos + py*sin,
		F: py - px*sin - py*cos,
	}
	*m = e.Multiply(*m)
}

// PostRotateOrigin post-multiplies a rotation of deg degrees about the
// origin.
func (m *Matrix) PostRotateOrigin(deg float64) {
	m.PostRotate(deg, 0, 0)
}

// Equal reports whether m and other have identical coefficients.
func (m Matrix) Equal(other Matrix) bool {
	return m.A == other.A && m.B == other.B && m.C == other.C &&
		m.D == other.D && m.E == other.E && m.F == other.F
}
