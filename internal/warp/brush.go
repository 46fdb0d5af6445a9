package warp

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// Tool identifies a warp-family brush.
type Tool int

const (
	ToolWarp        Tool = iota // drag pixels along the stroke
	ToolBloat                   // magnify under the brush
	ToolPucker                  // shrink under the brush
	ToolTwirlCW                 // rotate clockwise around the brush center
	ToolTurbulence              // jitter pixels with smooth random noise
	ToolReconstruct             // fade accumulated distortion back out
)

func (t Tool) String() string {
	switch t {
	case ToolWarp:
		return "Warp"
	case ToolBloat:
		return "Bloat"
	case ToolPucker:
		return "Pucker"
	case ToolTwirlCW:
		return "Twirl"
	case ToolTurbulence:
		return "Turbulence"
	case ToolReconstruct:
		return "Reconstruct"
	default:
		return "Unknown"
	}
}

// BrushSettings holds the user-facing brush parameters. Size is the
// brush diameter in screen pixels; Strength is in [0, 1].
type BrushSettings struct {
	Size     float64
	Strength float64
}

// Fixed damping parameters. They keep per-event displacement small
// enough that strokes stay controllable; they are tool constants, not
// user settings.
const (
	pinchFactor     = 0.1 // bloat/pucker displacement per event
	twirlStep       = 0.1 // radians per event at full power
	turbulenceSigma = 2.0 // std-dev of turbulence jitter in layer pixels
)

// Applicator applies brush strokes to a displacement map. It carries the
// noise source for the turbulence tool so strokes are reproducible under
// a fixed seed.
type Applicator struct {
	noise distuv.Normal
}

// NewApplicator creates a stroke applicator. The seed only affects the
// turbulence tool.
func NewApplicator(seed uint64) *Applicator {
	return &Applicator{
		noise: distuv.Normal{
			Mu:    0,
			Sigma: turbulenceSigma,
			Src:   rand.NewSource(seed),
		},
	}
}

// ApplyStroke recomputes the map for one pointer-move segment from prev
// to curr, both in layer-local coordinates. viewScale is zoom times the
// layer's scale; the screen-space brush size is divided by it so strokes
// feel the same at any zoom or layer scale. Returns the damaged region
// and false when the event was a no-op (degenerate radius or brush fully
// off the raster).
//
// The update never samples and writes the same cell in one pass: it
// reads the old map, writes a scratch buffer covering only the brush
// bounding box, then commits the scratch back. Cost is bounded by brush
// area, not raster area.
func (a *Applicator) ApplyStroke(m *DisplacementMap, tool Tool, prev, curr geometry.Point2D, bs BrushSettings, viewScale float64) (geometry.RectInt, bool) {
	if m == nil || m.width == 0 || m.height == 0 || viewScale <= 0 {
		return geometry.RectInt{}, false
	}

	radius := (bs.Size / 2) / viewScale
	if radius <= 0 {
		return geometry.RectInt{}, false
	}

	// Both edges derive from the center independently so a fractional
	// center still covers every cell within the radius.
	x0 := int(math.Floor(curr.X - radius))
	y0 := int(math.Floor(curr.Y - radius))
	x1 := int(math.Floor(curr.X + radius))
	y1 := int(math.Floor(curr.Y + radius))
	box := geometry.RectInt{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1}
	box = box.Intersect(geometry.RectInt{Width: m.width, Height: m.height})
	if box.Empty() {
		return geometry.RectInt{}, false
	}

	delta := curr.Sub(prev)
	radiusSq := radius * radius

	scratchX := make([]float32, box.Width*box.Height)
	scratchY := make([]float32, box.Width*box.Height)

	for y := box.Y; y < box.Y+box.Height; y++ {
		for x := box.X; x < box.X+box.Width; x++ {
			si := (y-box.Y)*box.Width + (x - box.X)
			mi := y*m.width + x

			offX := float64(x) - curr.X
			offY := float64(y) - curr.Y
			distSq := offX*offX + offY*offY
			if distSq >= radiusSq {
				scratchX[si] = m.mapX[mi]
				scratchY[si] = m.mapY[mi]
				continue
			}

			// Smoothstep falloff: full power at the center, zero at
			// the rim, C1-continuous so stroke edges leave no seam.
			factor := (radius - math.Sqrt(distSq)) / radius
			smooth := factor * factor * (3 - 2*factor)
			power := smooth * bs.Strength

			if tool == ToolReconstruct {
				// Blend the stored coordinate back toward identity
				// instead of composing a new displacement.
				u := lerp(float64(m.mapX[mi]), float64(x), power)
				v := lerp(float64(m.mapY[mi]), float64(y), power)
				scratchX[si] = float32(u)
				scratchY[si] = float32(v)
				continue
			}

			lx, ly := a.lookupPoint(tool, float64(x), float64(y), offX, offY, power, delta, curr)

			// Resample the existing map at the lookup point so this
			// event composes with the distortion already present.
			u, v := m.SampleCoord(lx, ly)
			scratchX[si] = float32(u)
			scratchY[si] = float32(v)
		}
	}

	for y := box.Y; y < box.Y+box.Height; y++ {
		srcRow := (y - box.Y) * box.Width
		dstRow := y * m.width
		copy(m.mapX[dstRow+box.X:dstRow+box.X+box.Width], scratchX[srcRow:srcRow+box.Width])
		copy(m.mapY[dstRow+box.X:dstRow+box.X+box.Width], scratchY[srcRow:srcRow+box.Width])
	}

	return box, true
}

// lookupPoint computes where the new warp wants to read the existing map
// for destination pixel (px, py).
func (a *Applicator) lookupPoint(tool Tool, px, py, offX, offY, power float64, delta, center geometry.Point2D) (float64, float64) {
	switch tool {
	case ToolBloat:
		return px - offX*power*pinchFactor, py - offY*power*pinchFactor
	case ToolPucker:
		return px + offX*power*pinchFactor, py + offY*power*pinchFactor
	case ToolTwirlCW:
		angle := twirlStep * power
		cos := math.Cos(angle)
		sin := math.Sin(angle)
		rx := offX*cos - offY*sin
		ry := offX*sin + offY*cos
		return center.X + rx, center.Y + ry
	case ToolTurbulence:
		return px + a.noise.Rand()*power, py + a.noise.Rand()*power
	default: // ToolWarp
		return px - delta.X*power, py - delta.Y*power
	}
}
