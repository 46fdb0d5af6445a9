package layer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// BlendMode specifies how a layer is composited over the layers below.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendDifference
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDarken:
		return "Darken"
	case BlendLighten:
		return "Lighten"
	case BlendDifference:
		return "Difference"
	default:
		return "Unknown"
	}
}

// BlendModes lists every mode in display order for UI selectors.
func BlendModes() []BlendMode {
	return []BlendMode{
		BlendNormal, BlendMultiply, BlendScreen, BlendOverlay,
		BlendDarken, BlendLighten, BlendDifference,
	}
}

// Compositor renders a layer stack into a fixed-size canvas. Each layer
// is drawn by inverse-mapping destination pixels through the layer's
// affine placement and bilinearly sampling its raster, then blending
// with the mode and opacity.
type Compositor struct {
	Width     int
	Height    int
	BackColor color.RGBA
}

// NewCompositor creates a compositor with the standard dark background.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		Width:     width,
		Height:    height,
		BackColor: color.RGBA{40, 40, 40, 255},
	}
}

// Render produces the composited frame. overrides substitutes a
// replacement raster per layer id; the session uses this to show the
// active layer through its pending displacement map without touching
// the layer's committed pixels.
func (c *Compositor) Render(s *Stack, overrides map[string]*raster.Raster) *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	for _, l := range s.Layers {
		src := l.Raster
		if overrides != nil {
			if o, ok := overrides[l.ID]; ok {
				src = o
			}
		}
		if src == nil || !l.Visible || l.Opacity <= 0 {
			continue
		}
		c.compositeLayer(result, l, src)
	}

	return result
}

// Flatten renders all visible layers over a transparent background, for
// export.
func (c *Compositor) Flatten(s *Stack) *image.RGBA {
	saved := c.BackColor
	c.BackColor = color.RGBA{}
	defer func() { c.BackColor = saved }()
	return c.Render(s, nil)
}

// compositeLayer blends a single layer onto the destination frame.
func (c *Compositor) compositeLayer(dst *image.RGBA, l *Layer, src *raster.Raster) {
	t := l.Transform.ToAffine()
	inv, ok := t.Inverse()
	if !ok {
		return
	}

	w := float64(src.Width())
	h := float64(src.Height())

	// Clip to the transformed raster's world-space bounding box.
	corners := []geometry.Point2D{
		t.Apply(geometry.Point2D{X: 0, Y: 0}),
		t.Apply(geometry.Point2D{X: w, Y: 0}),
		t.Apply(geometry.Point2D{X: w, Y: h}),
		t.Apply(geometry.Point2D{X: 0, Y: h}),
	}
	bbox := geometry.BoundingBox(corners)

	x0 := clampInt(int(math.Floor(bbox.X)), 0, c.Width)
	y0 := clampInt(int(math.Floor(bbox.Y)), 0, c.Height)
	x1 := clampInt(int(math.Ceil(bbox.X+bbox.Width))+1, 0, c.Width)
	y1 := clampInt(int(math.Ceil(bbox.Y+bbox.Height))+1, 0, c.Height)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			local := inv.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			if local.X < -0.5 || local.X > w-0.5 || local.Y < -0.5 || local.Y > h-0.5 {
				continue
			}

			sr, sg, sb, sa := raster.SampleFloat(src, local.X, local.Y)
			c.blendPixel(dst, x, y, sr/255, sg/255, sb/255, sa/255, l.Blend, l.Opacity)
		}
	}
}

// blendPixel performs the blend operation for one destination pixel with
// source channels in [0, 1].
func (c *Compositor) blendPixel(dst *image.RGBA, x, y int, sr, sg, sb, sa float64, mode BlendMode, opacity float64) {
	i := dst.PixOffset(x, y)
	dr := float64(dst.Pix[i]) / 255
	dg := float64(dst.Pix[i+1]) / 255
	db := float64(dst.Pix[i+2]) / 255
	da := float64(dst.Pix[i+3]) / 255

	var rf [3]float64

	switch mode {
	case BlendMultiply:
		rf[0] = sr * dr
		rf[1] = sg * dg
		rf[2] = sb * db

	case BlendScreen:
		rf[0] = 1 - (1-sr)*(1-dr)
		rf[1] = 1 - (1-sg)*(1-dg)
		rf[2] = 1 - (1-sb)*(1-db)

	case BlendOverlay:
		sf := [3]float64{sr, sg, sb}
		df := [3]float64{dr, dg, db}
		for k := 0; k < 3; k++ {
			if df[k] < 0.5 {
				rf[k] = 2 * sf[k] * df[k]
			} else {
				rf[k] = 1 - 2*(1-sf[k])*(1-df[k])
			}
		}

	case BlendDarken:
		rf[0] = math.Min(sr, dr)
		rf[1] = math.Min(sg, dg)
		rf[2] = math.Min(sb, db)

	case BlendLighten:
		rf[0] = math.Max(sr, dr)
		rf[1] = math.Max(sg, dg)
		rf[2] = math.Max(sb, db)

	case BlendDifference:
		rf[0] = math.Abs(sr - dr)
		rf[1] = math.Abs(sg - dg)
		rf[2] = math.Abs(sb - db)

	default: // BlendNormal
		rf[0] = sr
		rf[1] = sg
		rf[2] = sb
	}

	alpha := sa * opacity
	finalR := rf[0]*alpha + dr*(1-alpha)
	finalG := rf[1]*alpha + dg*(1-alpha)
	finalB := rf[2]*alpha + db*(1-alpha)
	finalA := alpha + da*(1-alpha)

	dst.Pix[i] = uint8(clamp01(finalR)*255 + 0.5)
	dst.Pix[i+1] = uint8(clamp01(finalG)*255 + 0.5)
	dst.Pix[i+2] = uint8(clamp01(finalB)*255 + 0.5)
	dst.Pix[i+3] = uint8(clamp01(finalA)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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
