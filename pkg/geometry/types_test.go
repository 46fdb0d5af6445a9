package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func pointsClose(a, b Point2D, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestAffineIdentity(t *testing.T) {
	p := Point2D{X: 3.5, Y: -2.25}
	got := Identity().Apply(p)
	if !pointsClose(got, p, eps) {
		t.Errorf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestAffineCompose(t *testing.T) {
	// Translate then scale, composed as Scale * Translate.
	tr := Scaling(2).Compose(Translation(1, 0))
	got := tr.Apply(Point2D{X: 1, Y: 1})
	want := Point2D{X: 4, Y: 2}
	if !pointsClose(got, want, eps) {
		t.Errorf("composed transform applied = %v, want %v", got, want)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(12, -7).
		Compose(Rotation(0.8)).
		Compose(Scaling(1.6))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular for an invertible transform")
	}

	points := []Point2D{
		{X: 0, Y: 0},
		{X: 100, Y: 50},
		{X: -3.25, Y: 7.5},
	}
	for _, p := range points {
		got := inv.Apply(tr.Apply(p))
		if !pointsClose(got, p, 1e-9) {
			t.Errorf("inverse round trip of %v = %v", p, got)
		}
	}
}

func TestAffineInverseSingular(t *testing.T) {
	if _, ok := Scaling(0).Inverse(); ok {
		t.Error("Inverse() of zero scale should report singular")
	}
}

func TestRotationDirection(t *testing.T) {
	// Positive angle rotates +X toward +Y (y-down screen convention
	// makes this clockwise on screen).
	got := Rotation(math.Pi / 2).Apply(Point2D{X: 1, Y: 0})
	want := Point2D{X: 0, Y: 1}
	if !pointsClose(got, want, eps) {
		t.Errorf("Rotation(pi/2).Apply(1,0) = %v, want %v", got, want)
	}
}

func TestLayerTransformOrder(t *testing.T) {
	// Scale by 2, rotate 90 degrees, then translate by (10, 20).
	lt := LayerTransform{X: 10, Y: 20, Scale: 2, Rotation: math.Pi / 2}
	got := lt.ToAffine().Apply(Point2D{X: 1, Y: 0})
	// Scaled to (2,0), rotated to (0,2), translated to (10,22).
	want := Point2D{X: 10, Y: 22}
	if !pointsClose(got, want, 1e-9) {
		t.Errorf("ToAffine().Apply = %v, want %v", got, want)
	}
}

func TestLayerTransformLocalRoundTrip(t *testing.T) {
	lt := LayerTransform{X: -4, Y: 9, Scale: 0.5, Rotation: 1.1}
	p := Point2D{X: 33, Y: -21}
	got := lt.ToLocal(lt.ToWorld(p))
	if !pointsClose(got, p, 1e-9) {
		t.Errorf("ToLocal(ToWorld(%v)) = %v", p, got)
	}
}

func TestRectIntIntersect(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	got := a.Intersect(b)
	want := RectInt{X: 5, Y: 5, Width: 5, Height: 5}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	c := RectInt{X: 20, Y: 20, Width: 5, Height: 5}
	if !a.Intersect(c).Empty() {
		t.Error("disjoint Intersect should be empty")
	}
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point2D{
		{X: 3, Y: 1},
		{X: -2, Y: 5},
		{X: 0, Y: 0},
	})
	want := Rect{X: -2, Y: 0, Width: 5, Height: 5}
	if box != want {
		t.Errorf("BoundingBox = %+v, want %+v", box, want)
	}
}
