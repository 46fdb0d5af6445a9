package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FitAffine computes the least-squares affine transform mapping src points
// onto dst points. Needs at least 3 correspondences.
func FitAffine(src, dst []Point2D) (AffineTransform, error) {
	n := len(src)
	if len(dst) != n {
		return AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 3 {
		return AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", n)
	}

	// Build overdetermined system A * params = B with
	// params = [a, b, tx, c, d, ty].
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		// x' = a*x + b*y + tx
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		// y' = c*x + d*y + ty
		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	// Solve using QR decomposition
	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return AffineTransform{}, err
	}

	return AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// SimilarityFromAffine extracts the closest translation + uniform scale +
// rotation from a general affine transform, discarding shear.
func SimilarityFromAffine(t AffineTransform) LayerTransform {
	rotation := math.Atan2(t.C-t.B, t.A+t.D)
	scale := math.Sqrt((t.A*t.A + t.B*t.B + t.C*t.C + t.D*t.D) / 2)
	if scale < 1e-6 {
		scale = 1e-6
	}
	return LayerTransform{
		X:        t.TX,
		Y:        t.TY,
		Scale:    scale,
		Rotation: rotation,
	}
}
