package geometry

import (
	"math"
	"testing"
)

func TestFitAffineRecoversSimilarity(t *testing.T) {
	want := Translation(5, -3).
		Compose(Rotation(0.4)).
		Compose(Scaling(1.5))

	src := []Point2D{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 8},
		{X: 0, Y: 8},
	}
	dst := make([]Point2D, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p)
	}

	got, err := FitAffine(src, dst)
	if err != nil {
		t.Fatalf("FitAffine: %v", err)
	}
	for _, p := range src {
		a := want.Apply(p)
		b := got.Apply(p)
		if !pointsClose(a, b, 1e-6) {
			t.Errorf("fitted transform maps %v to %v, want %v", p, b, a)
		}
	}
}

func TestFitAffineTooFewPoints(t *testing.T) {
	src := []Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	dst := []Point2D{{X: 0, Y: 0}, {X: 2, Y: 2}}
	if _, err := FitAffine(src, dst); err == nil {
		t.Error("FitAffine with 2 correspondences should fail")
	}
}

func TestSimilarityFromAffine(t *testing.T) {
	lt := LayerTransform{X: 7, Y: -2, Scale: 2.5, Rotation: -0.9}
	got := SimilarityFromAffine(lt.ToAffine())

	if math.Abs(got.Scale-lt.Scale) > 1e-9 {
		t.Errorf("Scale = %v, want %v", got.Scale, lt.Scale)
	}
	if math.Abs(got.Rotation-lt.Rotation) > 1e-9 {
		t.Errorf("Rotation = %v, want %v", got.Rotation, lt.Rotation)
	}
	if math.Abs(got.X-lt.X) > 1e-9 || math.Abs(got.Y-lt.Y) > 1e-9 {
		t.Errorf("translation = (%v, %v), want (%v, %v)", got.X, got.Y, lt.X, lt.Y)
	}
}
