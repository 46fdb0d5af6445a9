package raster

import (
	"image/color"
	"math"
)

// Sample bilinearly interpolates the raster at fractional coordinates
// (u, v). The four integer neighbors are each clamped to the raster
// edges independently (edge-clamp, never wrap), so lookups outside the
// raster resolve to border pixels rather than failing. This is the only
// interpolation policy used anywhere in the editor.
func Sample(r *Raster, u, v float64) color.RGBA {
	sr, sg, sb, sa := SampleFloat(r, u, v)
	return color.RGBA{
		R: uint8(sr + 0.5),
		G: uint8(sg + 0.5),
		B: uint8(sb + 0.5),
		A: uint8(sa + 0.5),
	}
}

// SampleFloat is Sample without the final quantization, returning each
// channel in [0, 255]. The compositor blends from these to avoid
// rounding twice.
func SampleFloat(r *Raster, u, v float64) (sr, sg, sb, sa float64) {
	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	x1 := x0 + 1
	y1 := y0 + 1

	fx := u - float64(x0)
	fy := v - float64(y0)

	x0 = clampInt(x0, 0, r.width-1)
	x1 = clampInt(x1, 0, r.width-1)
	y0 = clampInt(y0, 0, r.height-1)
	y1 = clampInt(y1, 0, r.height-1)

	i00 := (y0*r.width + x0) * 4
	i10 := (y0*r.width + x1) * 4
	i01 := (y1*r.width + x0) * 4
	i11 := (y1*r.width + x1) * 4

	pix := r.pix
	for c := 0; c < 4; c++ {
		top := lerp(float64(pix[i00+c]), float64(pix[i10+c]), fx)
		bot := lerp(float64(pix[i01+c]), float64(pix[i11+c]), fx)
		switch c {
		case 0:
			sr = lerp(top, bot, fy)
		case 1:
			sg = lerp(top, bot, fy)
		case 2:
			sb = lerp(top, bot, fy)
		case 3:
			sa = lerp(top, bot, fy)
		}
	}
	return sr, sg, sb, sa
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
