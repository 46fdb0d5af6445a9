package warp

import (
	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// RenderRegion renders a region of src through the displacement map into
// an RGBA8 buffer of region size: each destination pixel looks up its
// stored source coordinate and bilinearly samples src there. The same
// routine serves live preview (partial regions) and baking (the whole
// raster). The region must lie within the raster bounds.
func RenderRegion(m *DisplacementMap, src *raster.Raster, region geometry.RectInt) []uint8 {
	out := make([]uint8, region.Width*region.Height*4)

	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			u, v := m.At(x, y)
			c := raster.Sample(src, u, v)

			i := ((y-region.Y)*region.Width + (x - region.X)) * 4
			out[i] = c.R
			out[i+1] = c.G
			out[i+2] = c.B
			out[i+3] = c.A
		}
	}
	return out
}

// Bake renders the pending distortion into a new raster of the same
// dimensions. Baking is destructive: the original pixel data is
// discarded by the caller when it swaps the result in. The caller must
// also reset the map to identity afterwards, or the warp would be
// applied twice on the next stroke.
func Bake(m *DisplacementMap, src *raster.Raster) *raster.Raster {
	region := geometry.RectInt{Width: src.Width(), Height: src.Height()}
	pix := RenderRegion(m, src, region)
	baked, err := raster.FromPix(src.Width(), src.Height(), pix)
	if err != nil {
		// Dimensions come straight from src, so this cannot fail.
		panic(err)
	}
	return baked
}
