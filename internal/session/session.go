// Package session ties the warp engine together: it owns the layer
// stack, the active layer's displacement map, the pointer gesture state
// machine, and the undo/redo history, and reports changes through
// events.
package session

import (
	"fmt"
	"image"
	"sync"

	"github.com/jaysonragasa/liquifylab/internal/history"
	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/internal/warp"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// Tool is the active editing tool.
type Tool int

const (
	ToolWarp Tool = iota
	ToolBloat
	ToolPucker
	ToolTwirl
	ToolTurbulence
	ToolReconstruct
	ToolLasso
	ToolTransform
)

func (t Tool) String() string {
	switch t {
	case ToolWarp:
		return "Warp"
	case ToolBloat:
		return "Bloat"
	case ToolPucker:
		return "Pucker"
	case ToolTwirl:
		return "Twirl"
	case ToolTurbulence:
		return "Turbulence"
	case ToolReconstruct:
		return "Reconstruct"
	case ToolLasso:
		return "Lasso"
	case ToolTransform:
		return "Transform"
	default:
		return "Unknown"
	}
}

// IsBrush reports whether the tool belongs to the warp-brush family.
func (t Tool) IsBrush() bool {
	return t >= ToolWarp && t <= ToolReconstruct
}

func (t Tool) warpTool() warp.Tool {
	switch t {
	case ToolBloat:
		return warp.ToolBloat
	case ToolPucker:
		return warp.ToolPucker
	case ToolTwirl:
		return warp.ToolTwirlCW
	case ToolTurbulence:
		return warp.ToolTurbulence
	case ToolReconstruct:
		return warp.ToolReconstruct
	default:
		return warp.ToolWarp
	}
}

// EventType identifies session events.
type EventType int

const (
	// EventStackChanged fires after any committed change to layers or
	// pixels, including undo and redo.
	EventStackChanged EventType = iota
	// EventHistoryChanged fires whenever undo/redo availability moves.
	EventHistoryChanged
	// EventLayerPreview carries live transform-drag updates that bypass
	// history; only the final commit on release is historied.
	EventLayerPreview
	// EventModified fires when the dirty flag changes.
	EventModified
	EventProjectLoaded
	EventProjectSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// PreviewUpdate is the EventLayerPreview payload.
type PreviewUpdate struct {
	LayerID   string
	Transform geometry.LayerTransform
}

// Session is the editing engine. All mutation happens on the
// input-handling path behind one mutex (single-writer discipline);
// rendering takes the read lock and sees a consistent state.
type Session struct {
	mu sync.RWMutex

	stack      *layer.Stack
	hist       *history.History
	applicator *warp.Applicator

	tool  Tool
	brush warp.BrushSettings
	zoom  float64

	// Displacement map for the active layer. The map and the preview
	// belong to exactly one layer at a time; switching layers, undoing,
	// or replacing the raster swaps them out wholesale.
	dmap       *warp.DisplacementMap
	mapLayerID string

	// previewPix is the active raster rendered through the map,
	// updated region-by-region per stroke. previewRaster aliases it so
	// the compositor can read it without copying per frame.
	previewPix    []uint8
	previewRaster *raster.Raster

	gestureActive bool
	lastLocal     geometry.Point2D
	strokeChanged bool
	lassoPath     []geometry.Point2D
	drag          *transformDrag

	projectPath string
	modified    bool
	listeners   map[EventType][]EventListener
}

// New creates an empty session. maxHistory bounds the number of undo
// snapshots; noiseSeed feeds the turbulence brush.
func New(maxHistory int, noiseSeed uint64) *Session {
	return &Session{
		stack:      layer.NewStack(),
		hist:       history.New(maxHistory),
		applicator: warp.NewApplicator(noiseSeed),
		tool:       ToolWarp,
		brush:      warp.BrushSettings{Size: 80, Strength: 0.7},
		zoom:       1,
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Stack returns the live layer stack. Callers must treat it as
// read-only and go through session methods for mutation.
func (s *Session) Stack() *layer.Stack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack
}

// ActiveLayer returns the active layer, or nil.
func (s *Session) ActiveLayer() *layer.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack.Active()
}

// Tool returns the current tool.
func (s *Session) Tool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetTool switches the active tool. An in-flight gesture is finished
// first so no stroke is left dangling.
func (s *Session) SetTool(t Tool) {
	s.PointerUp(geometry.Point2D{})
	s.mu.Lock()
	s.tool = t
	s.mu.Unlock()
}

// Brush returns the current brush settings.
func (s *Session) Brush() warp.BrushSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brush
}

// SetBrush updates the brush settings.
func (s *Session) SetBrush(b warp.BrushSettings) {
	s.mu.Lock()
	if b.Strength < 0 {
		b.Strength = 0
	}
	if b.Strength > 1 {
		b.Strength = 1
	}
	s.brush = b
	s.mu.Unlock()
}

// Zoom returns the current view zoom.
func (s *Session) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// SetZoom records the view zoom so brush radii and handle picks stay
// consistent in screen space.
func (s *Session) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	s.mu.Lock()
	s.zoom = z
	s.mu.Unlock()
}

// Modified reports whether there are uncommitted project changes.
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// CanUndo reports whether an undo step exists.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo step exists.
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanRedo()
}

// AddLayerFromFile decodes an image file into a new top layer. On
// failure nothing is added.
func (s *Session) AddLayerFromFile(path string) error {
	l, err := layer.Load(path)
	if err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	s.addLayer(l)
	return nil
}

// AddLayerFromImage wraps an already-decoded image as a new top layer.
// This is the entry point for externally generated imagery.
func (s *Session) AddLayerFromImage(name string, img image.Image) *layer.Layer {
	l := layer.FromImage(name, img)
	s.addLayer(l)
	return l
}

func (s *Session) addLayer(l *layer.Layer) {
	s.mu.Lock()
	s.stack.Add(l)
	s.invalidateMapLocked()
	s.mu.Unlock()
	s.commit()
}

// DuplicateLayer deep-copies a layer and places the copy above it.
func (s *Session) DuplicateLayer(id string) {
	s.mu.Lock()
	src := s.stack.Get(id)
	if src == nil {
		s.mu.Unlock()
		return
	}
	dup := src.Duplicate()
	s.stack.Add(dup)
	s.stack.Move(dup.ID, s.stack.IndexOf(id)+1)
	s.invalidateMapLocked()
	s.mu.Unlock()
	s.commit()
}

// DeleteLayer removes a layer from the stack.
func (s *Session) DeleteLayer(id string) {
	s.mu.Lock()
	if !s.stack.Remove(id) {
		s.mu.Unlock()
		return
	}
	s.invalidateMapLocked()
	s.mu.Unlock()
	s.commit()
}

// MoveLayer repositions a layer in paint order.
func (s *Session) MoveLayer(id string, index int) {
	s.mu.Lock()
	if !s.stack.Move(id, index) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.commit()
}

// SetActiveLayer changes which layer editing tools operate on. The
// displacement map is invalidated: it belongs to one layer at a time.
func (s *Session) SetActiveLayer(id string) {
	s.mu.Lock()
	if s.stack.IndexOf(id) < 0 || s.stack.ActiveID == id {
		s.mu.Unlock()
		return
	}
	s.stack.ActiveID = id
	s.invalidateMapLocked()
	s.mu.Unlock()
	s.commit()
}

// RenameLayer sets a layer's display name.
func (s *Session) RenameLayer(id, name string) {
	s.mu.Lock()
	l := s.stack.Get(id)
	if l == nil || l.Name == name {
		s.mu.Unlock()
		return
	}
	l.Name = name
	s.mu.Unlock()
	s.commit()
}

// SetLayerVisible toggles layer visibility.
func (s *Session) SetLayerVisible(id string, visible bool) {
	s.mu.Lock()
	l := s.stack.Get(id)
	if l == nil || l.Visible == visible {
		s.mu.Unlock()
		return
	}
	l.Visible = visible
	s.mu.Unlock()
	s.commit()
}

// SetLayerOpacity sets layer opacity in [0, 1].
func (s *Session) SetLayerOpacity(id string, opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	s.mu.Lock()
	l := s.stack.Get(id)
	if l == nil || l.Opacity == opacity {
		s.mu.Unlock()
		return
	}
	l.Opacity = opacity
	s.mu.Unlock()
	s.commit()
}

// SetLayerBlend sets the layer blend mode.
func (s *Session) SetLayerBlend(id string, mode layer.BlendMode) {
	s.mu.Lock()
	l := s.stack.Get(id)
	if l == nil || l.Blend == mode {
		s.mu.Unlock()
		return
	}
	l.Blend = mode
	s.mu.Unlock()
	s.commit()
}

// SetLayerTransform writes the affine placement directly and commits.
// The map is untouched: transform and warp are orthogonal.
func (s *Session) SetLayerTransform(id string, t geometry.LayerTransform) {
	if t.Scale <= 0 {
		return
	}
	s.mu.Lock()
	l := s.stack.Get(id)
	if l == nil {
		s.mu.Unlock()
		return
	}
	l.Transform = t
	s.mu.Unlock()
	s.commit()
}

// Undo restores the previous snapshot, swapping out the whole
// map+raster pair atomically.
func (s *Session) Undo() bool {
	s.mu.Lock()
	restored := s.hist.Undo()
	if restored == nil {
		s.mu.Unlock()
		return false
	}
	s.stack = restored
	s.invalidateMapLocked()
	s.modified = true
	s.mu.Unlock()

	s.Emit(EventStackChanged, nil)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventModified, true)
	return true
}

// Redo restores the next snapshot.
func (s *Session) Redo() bool {
	s.mu.Lock()
	restored := s.hist.Redo()
	if restored == nil {
		s.mu.Unlock()
		return false
	}
	s.stack = restored
	s.invalidateMapLocked()
	s.modified = true
	s.mu.Unlock()

	s.Emit(EventStackChanged, nil)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventModified, true)
	return true
}

// Render composites the current stack into a frame of the given size.
// While a warp is pending, the active layer is drawn through its
// displacement map via the preview buffer instead of its committed
// raster. Render is a pure function of session state; the host decides
// the cadence.
func (s *Session) Render(width, height int) *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var overrides map[string]*raster.Raster
	if s.previewRaster != nil && s.mapLayerID != "" {
		overrides = map[string]*raster.Raster{s.mapLayerID: s.previewRaster}
	}

	comp := layer.NewCompositor(width, height)
	return comp.Render(s.stack, overrides)
}

// Flatten composites all visible layers over transparency at the given
// canvas size, for export.
func (s *Session) Flatten(width, height int) *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comp := layer.NewCompositor(width, height)
	return comp.Flatten(s.stack)
}

// ExportPNG flattens and writes a PNG file.
func (s *Session) ExportPNG(path string, width, height int) error {
	return layer.ExportPNG(s.Flatten(width, height), path)
}

// Reset discards all layers, history, and the project binding, leaving
// an empty session.
func (s *Session) Reset() {
	s.mu.Lock()
	s.stack = layer.NewStack()
	s.hist.Reset()
	s.invalidateMapLocked()
	s.projectPath = ""
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventStackChanged, nil)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventModified, false)
}

// commit snapshots the stack and announces the change.
func (s *Session) commit() {
	s.mu.Lock()
	s.hist.Commit(s.stack)
	s.modified = true
	s.mu.Unlock()

	s.Emit(EventStackChanged, nil)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventModified, true)
}

// ensureMapLocked (re)initializes the displacement map and preview for
// the active layer if they are missing or stale. Returns false when
// there is no raster to edit.
func (s *Session) ensureMapLocked() bool {
	l := s.stack.Active()
	if l == nil || l.Raster == nil {
		return false
	}

	w, h := l.Raster.Width(), l.Raster.Height()
	if s.dmap != nil && s.mapLayerID == l.ID &&
		s.dmap.Width() == w && s.dmap.Height() == h {
		return true
	}

	s.dmap = warp.NewIdentity(w, h)
	s.mapLayerID = l.ID
	s.resetPreviewLocked(l.Raster)
	return true
}

// resetPreviewLocked rebuilds the preview as a straight copy of the
// raster (what an identity map renders to).
func (s *Session) resetPreviewLocked(r *raster.Raster) {
	s.previewPix = make([]uint8, len(r.Pix()))
	copy(s.previewPix, r.Pix())
	// The wrapped raster aliases previewPix: later region updates are
	// visible to the compositor without copying each frame.
	pr, err := raster.FromPix(r.Width(), r.Height(), s.previewPix)
	if err != nil {
		panic(err)
	}
	s.previewRaster = pr
}

// invalidateMapLocked discards the map and preview. Called whenever the
// active layer or its raster identity changes out from under them.
func (s *Session) invalidateMapLocked() {
	s.dmap = nil
	s.mapLayerID = ""
	s.previewPix = nil
	s.previewRaster = nil
	s.gestureActive = false
	s.strokeChanged = false
	s.lassoPath = nil
	s.drag = nil
}
