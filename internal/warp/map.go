// Package warp implements the displacement-map warp engine: the
// per-layer coordinate remapping grid, the brush stroke applicator that
// mutates it, and the bake step that renders it into new pixel data.
package warp

import (
	"math"
)

// DisplacementMap stores, for every destination pixel of a raster, the
// fractional source coordinate to sample from the layer's unmodified
// pixels. A fresh map holds the identity mapping. Stored coordinates are
// never clamped; clamping happens at sample time.
//
// Map dimensions always match the associated raster. The map must be
// reset whenever the active layer or its raster identity changes,
// otherwise coordinates from the previous raster would corrupt output.
type DisplacementMap struct {
	width  int
	height int
	mapX   []float32
	mapY   []float32
}

// NewIdentity allocates a map of the given size filled with the
// identity mapping.
func NewIdentity(width, height int) *DisplacementMap {
	m := &DisplacementMap{}
	m.Reset(width, height)
	return m
}

// Reset reallocates the map for a new raster size and fills it with the
// identity mapping.
func (m *DisplacementMap) Reset(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width = width
	m.height = height
	m.mapX = make([]float32, width*height)
	m.mapY = make([]float32, width*height)

	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			m.mapX[row+x] = float32(x)
			m.mapY[row+x] = float32(y)
		}
	}
}

// Width returns the map width.
func (m *DisplacementMap) Width() int {
	return m.width
}

// Height returns the map height.
func (m *DisplacementMap) Height() int {
	return m.height
}

// At returns the stored source coordinate for destination pixel (x, y).
func (m *DisplacementMap) At(x, y int) (u, v float64) {
	i := y*m.width + x
	return float64(m.mapX[i]), float64(m.mapY[i])
}

func (m *DisplacementMap) set(x, y int, u, v float64) {
	i := y*m.width + x
	m.mapX[i] = float32(u)
	m.mapY[i] = float32(v)
}

// IsIdentity reports whether every entry still maps a pixel to itself.
// Used to decide whether a bake is pending before masking.
func (m *DisplacementMap) IsIdentity() bool {
	for y := 0; y < m.height; y++ {
		row := y * m.width
		for x := 0; x < m.width; x++ {
			if m.mapX[row+x] != float32(x) || m.mapY[row+x] != float32(y) {
				return false
			}
		}
	}
	return true
}

// SampleCoord bilinearly interpolates the map itself at a fractional
// position. Stroke updates compose the new local warp with whatever
// distortion already exists by reading the old map through this.
func (m *DisplacementMap) SampleCoord(u, v float64) (su, sv float64) {
	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	x1 := x0 + 1
	y1 := y0 + 1

	fx := u - float64(x0)
	fy := v - float64(y0)

	x0 = clampInt(x0, 0, m.width-1)
	x1 = clampInt(x1, 0, m.width-1)
	y0 = clampInt(y0, 0, m.height-1)
	y1 = clampInt(y1, 0, m.height-1)

	i00 := y0*m.width + x0
	i10 := y0*m.width + x1
	i01 := y1*m.width + x0
	i11 := y1*m.width + x1

	su = lerp(
		lerp(float64(m.mapX[i00]), float64(m.mapX[i10]), fx),
		lerp(float64(m.mapX[i01]), float64(m.mapX[i11]), fx),
		fy)
	sv = lerp(
		lerp(float64(m.mapY[i00]), float64(m.mapY[i10]), fx),
		lerp(float64(m.mapY[i01]), float64(m.mapY[i11]), fx),
		fy)
	return su, sv
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
