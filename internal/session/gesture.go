package session

import (
	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/internal/mask"
	"github.com/jaysonragasa/liquifylab/internal/warp"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// Pointer gesture state machine: Idle -> Active on PointerDown,
// Active -> Active on PointerMove, Active -> Idle on PointerUp. World
// coordinates are canvas coordinates divided by zoom; each tool converts
// to the active layer's local frame as needed. With no active raster the
// tools are simply inert.

// PointerDown starts a gesture at a world-space position.
func (s *Session) PointerDown(world geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gestureActive {
		return
	}

	l := s.stack.Active()
	if l == nil || l.Raster == nil {
		return
	}

	switch {
	case s.tool.IsBrush():
		if !s.ensureMapLocked() {
			return
		}
		s.lastLocal = l.Transform.ToLocal(world)
		s.strokeChanged = false
		s.gestureActive = true

	case s.tool == ToolLasso:
		if !s.ensureMapLocked() {
			return
		}
		s.lassoPath = []geometry.Point2D{l.Transform.ToLocal(world)}
		s.gestureActive = true

	case s.tool == ToolTransform:
		handle := hitTestTransform(l, world, s.zoom)
		if handle == HandleNone {
			return
		}
		s.drag = &transformDrag{
			handle:     handle,
			layerID:    l.ID,
			start:      l.Transform,
			startWorld: world,
		}
		s.gestureActive = true
	}
}

// PointerMove feeds one move event into the active gesture. Brush tools
// apply one incremental map update per event; the lasso collects one
// path point per event; the transform tool previews without committing.
func (s *Session) PointerMove(world geometry.Point2D) {
	s.mu.Lock()

	if !s.gestureActive {
		s.mu.Unlock()
		return
	}

	l := s.stack.Active()
	if l == nil || l.Raster == nil {
		s.mu.Unlock()
		return
	}

	switch {
	case s.tool.IsBrush():
		if s.dmap == nil {
			s.mu.Unlock()
			return
		}
		local := l.Transform.ToLocal(world)
		viewScale := s.zoom * l.Transform.Scale
		box, ok := s.applicator.ApplyStroke(
			s.dmap, s.tool.warpTool(), s.lastLocal, local, s.brush, viewScale)
		if ok {
			s.strokeChanged = true
			s.updatePreviewLocked(box)
		}
		s.lastLocal = local
		s.mu.Unlock()

	case s.tool == ToolLasso:
		s.lassoPath = append(s.lassoPath, l.Transform.ToLocal(world))
		s.mu.Unlock()

	case s.tool == ToolTransform:
		d := s.drag
		if d == nil || d.layerID != l.ID {
			s.mu.Unlock()
			return
		}
		l.Transform = resolveTransformDrag(l, d, world)
		d.changed = true
		update := PreviewUpdate{LayerID: l.ID, Transform: l.Transform}
		s.mu.Unlock()
		s.Emit(EventLayerPreview, update)

	default:
		s.mu.Unlock()
	}
}

// PointerUp finishes the gesture: warp brushes bake the pending map into
// new pixels, the lasso rasterizes and applies its mask, the transform
// tool commits its final placement. Each completed action becomes one
// history snapshot.
func (s *Session) PointerUp(world geometry.Point2D) {
	_ = world

	s.mu.Lock()

	if !s.gestureActive {
		s.mu.Unlock()
		return
	}
	s.gestureActive = false

	l := s.stack.Active()
	if l == nil || l.Raster == nil {
		s.lassoPath = nil
		s.drag = nil
		s.mu.Unlock()
		return
	}

	switch {
	case s.tool.IsBrush():
		if !s.strokeChanged || s.dmap == nil {
			s.mu.Unlock()
			return
		}
		s.bakeActiveLocked(l)
		s.strokeChanged = false
		s.mu.Unlock()
		s.commit()

	case s.tool == ToolLasso:
		path := s.lassoPath
		s.lassoPath = nil
		if len(path) < mask.MinLassoPoints || s.dmap == nil ||
			geometry.PolygonArea(path) == 0 {
			s.mu.Unlock()
			return
		}
		// Any pending warp must be baked first so the mask applies to
		// final pixel positions.
		if !s.dmap.IsIdentity() {
			s.bakeActiveLocked(l)
		}
		bm := mask.Rasterize(path, l.Raster.Width(), l.Raster.Height())
		l.Raster = mask.ApplyAlpha(l.Raster, bm)
		s.dmap.Reset(l.Raster.Width(), l.Raster.Height())
		s.resetPreviewLocked(l.Raster)
		s.mu.Unlock()
		s.commit()

	case s.tool == ToolTransform:
		d := s.drag
		s.drag = nil
		if d == nil || !d.changed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.commit()

	default:
		s.mu.Unlock()
	}
}

// PointerLeave is treated exactly like PointerUp so a gesture released
// outside the canvas still reaches Idle.
func (s *Session) PointerLeave() {
	s.PointerUp(geometry.Point2D{})
}

// LassoPath returns a copy of the in-progress lasso path in layer-local
// coordinates, for overlay drawing.
func (s *Session) LassoPath() []geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lassoPath) == 0 {
		return nil
	}
	out := make([]geometry.Point2D, len(s.lassoPath))
	copy(out, s.lassoPath)
	return out
}

// bakeActiveLocked renders the pending map into a replacement raster and
// resets the map to identity over it. The old pixels are gone after
// this; undo goes through history snapshots, not replayed operations.
func (s *Session) bakeActiveLocked(l *layer.Layer) {
	l.Raster = warp.Bake(s.dmap, l.Raster)
	s.dmap.Reset(l.Raster.Width(), l.Raster.Height())
	s.resetPreviewLocked(l.Raster)
}

// updatePreviewLocked re-renders only the damaged region of the preview
// through the map.
func (s *Session) updatePreviewLocked(box geometry.RectInt) {
	l := s.stack.Active()
	if l == nil || l.Raster == nil || s.previewPix == nil {
		return
	}
	buf := warp.RenderRegion(s.dmap, l.Raster, box)
	w := l.Raster.Width()
	for y := 0; y < box.Height; y++ {
		srcOff := y * box.Width * 4
		dstOff := ((box.Y+y)*w + box.X) * 4
		copy(s.previewPix[dstOff:dstOff+box.Width*4], buf[srcOff:srcOff+box.Width*4])
	}
}
