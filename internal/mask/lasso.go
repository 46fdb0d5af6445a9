// Package mask rasterizes closed lasso paths into binary coverage
// bitmaps and applies them to a raster's alpha channel.
package mask

import (
	"math"
	"sort"

	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// MinLassoPoints is the smallest path that encloses area. Shorter paths
// are silently ignored on release.
const MinLassoPoints = 3

// Bitmap is a binary coverage mask with the same dimensions as the
// raster it applies to.
type Bitmap struct {
	width  int
	height int
	bits   []bool
}

// NewBitmap creates an empty (all-outside) bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// Width returns the bitmap width.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height.
func (b *Bitmap) Height() int { return b.height }

// Inside reports whether the pixel is covered.
func (b *Bitmap) Inside(x, y int) bool {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return false
	}
	return b.bits[y*b.width+x]
}

// Rasterize scan-fills a closed polygon in layer-local coordinates into
// a bitmap of the given size using the even-odd rule: per row, edge
// crossings are collected at the pixel-center scanline, sorted, and
// filled in pairs. Paths with fewer than MinLassoPoints produce an
// empty bitmap.
func Rasterize(polygon []geometry.Point2D, width, height int) *Bitmap {
	b := NewBitmap(width, height)
	if len(polygon) < MinLassoPoints {
		return b
	}

	n := len(polygon)
	xs := make([]float64, 0, n)

	for y := 0; y < height; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]

		for i := 0; i < n; i++ {
			p1 := polygon[i]
			p2 := polygon[(i+1)%n]
			// Half-open test per edge so shared vertices count once.
			if (p1.Y > cy) == (p2.Y > cy) {
				continue
			}
			t := (cy - p1.Y) / (p2.Y - p1.Y)
			xs = append(xs, p1.X+t*(p2.X-p1.X))
		}

		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)

		row := y * width
		for i := 0; i+1 < len(xs); i += 2 {
			// Pixels whose center lies in [xs[i], xs[i+1]).
			x0 := int(math.Ceil(xs[i] - 0.5))
			x1 := int(math.Ceil(xs[i+1]-0.5)) - 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= width {
				x1 = width - 1
			}
			for x := x0; x <= x1; x++ {
				b.bits[row+x] = true
			}
		}
	}
	return b
}

// ApplyAlpha produces a new raster identical to src except that alpha is
// forced to zero wherever the bitmap is outside. RGB channels are left
// untouched. The bitmap must match the raster dimensions.
func ApplyAlpha(src *raster.Raster, b *Bitmap) *raster.Raster {
	w, h := src.Width(), src.Height()
	pix := make([]uint8, len(src.Pix()))
	copy(pix, src.Pix())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !b.Inside(x, y) {
				pix[(y*w+x)*4+3] = 0
			}
		}
	}

	masked, err := raster.FromPix(w, h, pix)
	if err != nil {
		panic(err)
	}
	return masked
}
