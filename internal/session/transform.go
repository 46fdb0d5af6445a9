package session

import (
	"math"

	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// Handle identifies a transform-tool hit zone.
type Handle int

const (
	HandleNone Handle = iota
	HandleBody
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleRotate
)

// handleHitRadius is the pick radius around a handle in screen pixels.
const handleHitRadius = 10.0

// rotateHandleOffset is how far above the top edge the rotate handle
// sits, in screen pixels.
const rotateHandleOffset = 28.0

// transformDrag tracks an in-progress transform gesture. The layer's
// affine fields are previewed during the drag and committed once on
// release; the displacement map is never involved.
type transformDrag struct {
	handle     Handle
	layerID    string
	start      geometry.LayerTransform // placement when the drag began
	startWorld geometry.Point2D        // pointer position when the drag began
	changed    bool
}

// cornerLocals returns the raster corners in layer-local space, in
// top-left, top-right, bottom-right, bottom-left order.
func cornerLocals(l *layer.Layer) [4]geometry.Point2D {
	w := float64(l.Width())
	h := float64(l.Height())
	return [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
}

// rotateHandleWorld returns the rotate handle position in world space:
// above the midpoint of the top edge, offset in screen units.
func rotateHandleWorld(l *layer.Layer, zoom float64) geometry.Point2D {
	t := l.Transform.ToAffine()
	w := float64(l.Width())
	topMid := t.Apply(geometry.Point2D{X: w / 2, Y: 0})
	center := t.Apply(geometry.Point2D{X: w / 2, Y: float64(l.Height()) / 2})

	// Direction from center through the top edge, extended by the
	// screen-space offset.
	dx := topMid.X - center.X
	dy := topMid.Y - center.Y
	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		return topMid
	}
	off := rotateHandleOffset / zoom
	return geometry.Point2D{
		X: topMid.X + dx/dist*off,
		Y: topMid.Y + dy/dist*off,
	}
}

// TransformHandles returns the active layer's corner positions and the
// rotate handle position in world space, for overlay drawing. ok is
// false when the transform tool has nothing to show.
func (s *Session) TransformHandles() (corners [4]geometry.Point2D, rotate geometry.Point2D, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tool != ToolTransform {
		return corners, rotate, false
	}
	l := s.stack.Active()
	if l == nil || l.Raster == nil || s.zoom <= 0 {
		return corners, rotate, false
	}

	t := l.Transform.ToAffine()
	for i, c := range cornerLocals(l) {
		corners[i] = t.Apply(c)
	}
	return corners, rotateHandleWorld(l, s.zoom), true
}

// hitTestTransform resolves which handle a world-space pointer press
// lands on. Handle picks win over the body so small layers stay
// scalable.
func hitTestTransform(l *layer.Layer, world geometry.Point2D, zoom float64) Handle {
	if l == nil || l.Raster == nil || zoom <= 0 {
		return HandleNone
	}

	pick := handleHitRadius / zoom

	if world.Distance(rotateHandleWorld(l, zoom)) <= pick {
		return HandleRotate
	}

	t := l.Transform.ToAffine()
	corners := cornerLocals(l)
	handles := [4]Handle{HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft}
	for i, c := range corners {
		if world.Distance(t.Apply(c)) <= pick {
			return handles[i]
		}
	}

	if l.LocalBounds().Contains(l.Transform.ToLocal(world)) {
		return HandleBody
	}
	return HandleNone
}

// resolveTransformDrag computes the placement for the current pointer
// position of an active transform drag.
func resolveTransformDrag(l *layer.Layer, d *transformDrag, world geometry.Point2D) geometry.LayerTransform {
	switch d.handle {
	case HandleBody:
		nt := d.start
		nt.X += world.X - d.startWorld.X
		nt.Y += world.Y - d.startWorld.Y
		return nt

	case HandleRotate:
		center := d.start.ToWorld(geometry.Point2D{
			X: float64(l.Width()) / 2,
			Y: float64(l.Height()) / 2,
		})
		a0 := math.Atan2(d.startWorld.Y-center.Y, d.startWorld.X-center.X)
		a1 := math.Atan2(world.Y-center.Y, world.X-center.X)
		nt := d.start
		nt.Rotation += a1 - a0
		return nt

	case HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft:
		return resolveCornerDrag(l, d, world)

	default:
		return d.start
	}
}

// resolveCornerDrag fits the placement to the four corner
// correspondences with the dragged corner moved to the pointer: a
// least-squares affine over the corners, reduced back to translation +
// uniform scale + rotation. Keeping the three fixed corners in the fit
// anchors the layer instead of letting it fly with the pointer.
func resolveCornerDrag(l *layer.Layer, d *transformDrag, world geometry.Point2D) geometry.LayerTransform {
	corners := cornerLocals(l)
	draggedIdx := map[Handle]int{
		HandleTopLeft:     0,
		HandleTopRight:    1,
		HandleBottomRight: 2,
		HandleBottomLeft:  3,
	}[d.handle]

	t0 := d.start.ToAffine()
	src := corners[:]
	dst := make([]geometry.Point2D, 4)
	for i, c := range corners {
		if i == draggedIdx {
			dst[i] = world
		} else {
			dst[i] = t0.Apply(c)
		}
	}

	fitted, err := geometry.FitAffine(src, dst)
	if err != nil {
		return d.start
	}
	nt := geometry.SimilarityFromAffine(fitted)
	if nt.Scale <= 0.01 {
		nt.Scale = 0.01
	}
	return nt
}
