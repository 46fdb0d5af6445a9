// Package raster provides the immutable RGBA8 pixel buffer and the
// bilinear resampling primitive the warp engine is built on.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Raster is a fixed-size RGBA8 pixel grid. A Raster is never mutated in
// place after creation: editing operations produce a replacement Raster
// and swap it into the owning layer.
type Raster struct {
	width  int
	height int
	pix    []uint8 // RGBA interleaved, len = width*height*4
}

// New creates a fully transparent raster of the given size.
func New(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}, nil
}

// FromPix wraps an RGBA8 pixel buffer as a raster, taking ownership of
// the slice. The caller must not touch pix afterwards.
func FromPix(width, height int, pix []uint8) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer length %d does not match %dx%d", len(pix), width, height)
	}
	return &Raster{width: width, height: height, pix: pix}, nil
}

// FromImage converts any decoded image into a raster.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != w*4 || !bounds.Min.Eq(image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	pix := make([]uint8, w*h*4)
	copy(pix, rgba.Pix)
	return &Raster{width: w, height: h, pix: pix}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the raster height in pixels.
func (r *Raster) Height() int {
	return r.height
}

// Bounds returns the raster bounds as an image rectangle.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// At returns the pixel at integer coordinates. Out-of-range coordinates
// return transparent black.
func (r *Raster) At(x, y int) color.RGBA {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return color.RGBA{}
	}
	i := (y*r.width + x) * 4
	return color.RGBA{R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: r.pix[i+3]}
}

// Pix exposes the underlying pixel buffer for read-only hot loops.
func (r *Raster) Pix() []uint8 {
	return r.pix
}

// Clone returns a deep copy, used when capturing history snapshots.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.pix))
	copy(pix, r.pix)
	return &Raster{width: r.width, height: r.height, pix: pix}
}

// ToRGBA copies the raster into a standard library image for display
// and encoding.
func (r *Raster) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// Equal reports whether two rasters have identical dimensions and pixels.
func (r *Raster) Equal(other *Raster) bool {
	if other == nil || r.width != other.width || r.height != other.height {
		return false
	}
	for i := range r.pix {
		if r.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}
