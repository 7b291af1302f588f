package stitchgo

import "testing"

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func TestIdentityPointInMatrixSpace(t *testing.T) {
	m := Identity()
	x, y := m.PointInMatrixSpace(12, 34)
	if !almostEqual(x, 12) || !almostEqual(y, 34) {
		t.Fatalf("identity moved point: got (%v,%v)", x, y)
	}
}

func TestPostRotateAboutPivot(t *testing.T) {
	m := Identity()
	m.PostRotate(90, 100, 100)
	x, y := m.PointInMatrixSpace(50, 50)
	if !almostEqual(x, 150) || !almostEqual(y, 50) {
		t.Fatalf("rotate 90 about (100,100) of (50,50): got (%v,%v), want (150,50)", x, y)
	}
}

func TestPostScaleAboutPivot(t *testing.T) {
	m := Identity()
	m.PostScale(2, 2, 50, 50)
	// the pivot itself is a fixed point.
	px, py := m.PointInMatrixSpace(50, 50)
	if !almostEqual(px, 50) || !almostEqual(py, 50) {
		t.Fatalf("pivot should be fixed: got (%v,%v)", px, py)
	}
	x, y := m.PointInMatrixSpace(25, 25)
	if !almostEqual(x, 0) || !almostEqual(y, 0) {
		t.Fatalf("scale 2x about (50,50) of (25,25): got (%v,%v), want (0,0)", x, y)
	}
}

func TestPostTranslateComposesAfterExisting(t *testing.T) {
	m := Identity()
	m.PostRotate(90, 0, 0)
	m.PostTranslate(10, 0)
	// Apply rotate first, then translate: (1,0) -> (0,1) -> (10,1).
	x, y := m.PointInMatrixSpace(1, 0)
	if !almostEqual(x, 10) || !almostEqual(y, 1) {
		t.Fatalf("composed transform: got (%v,%v), want (10,1)", x, y)
	}
}

func TestMatrixResetIsIdentity(t *testing.T) {
	m := Identity()
	m.PostScale(3, 3, 0, 0)
	m.Reset()
	if !m.Equal(Identity()) {
		t.Fatalf("Reset did not restore identity: %+v", m)
	}
}

func TestMatrixEqual(t *testing.T) {
	a := Identity()
	b := Identity()
	a.PostTranslate(1, 2)
	b.PostTranslate(1, 2)
	if !a.Equal(b) {
		t.Fatalf("equal matrices compared unequal")
	}
	b.PostTranslate(0.0001, 0)
	if a.Equal(b) {
		t.Fatalf("unequal matrices compared equal")
	}
}
