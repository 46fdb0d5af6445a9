package session

import (
	"image"
	"image/color"
	"testing"

	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/internal/warp"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// testImage builds a 16x16 gradient so warped pixels are detectable.
func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 100, A: 255})
		}
	}
	return img
}

func newTestSession(t *testing.T) (*Session, *raster.Raster) {
	t.Helper()
	s := New(10, 1)
	l := s.AddLayerFromImage("test", testImage())
	if l == nil || l.Raster == nil {
		t.Fatal("AddLayerFromImage did not produce a raster")
	}
	return s, l.Raster.Clone()
}

func TestAddLayerCommitsHistory(t *testing.T) {
	s := New(10, 1)
	if s.CanUndo() {
		t.Error("fresh session should not allow undo")
	}
	s.AddLayerFromImage("a", testImage())
	s.AddLayerFromImage("b", testImage())
	if !s.CanUndo() {
		t.Error("second layer add should be undoable")
	}
	if got := len(s.Stack().Layers); got != 2 {
		t.Errorf("layer count = %d, want 2", got)
	}
}

func TestBrushStrokeBakesAndCommits(t *testing.T) {
	s, original := newTestSession(t)
	s.SetTool(ToolWarp)
	s.SetBrush(warp.BrushSettings{Size: 8, Strength: 1})

	s.PointerDown(geometry.Point2D{X: 7, Y: 8})
	s.PointerMove(geometry.Point2D{X: 8, Y: 8})
	s.PointerUp(geometry.Point2D{X: 8, Y: 8})

	l := s.ActiveLayer()
	if l.Raster.Equal(original) {
		t.Fatal("stroke did not change the raster")
	}
	if !s.CanUndo() {
		t.Fatal("stroke was not committed to history")
	}

	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	if !s.ActiveLayer().Raster.Equal(original) {
		t.Error("undo did not restore the original pixels")
	}
	if !s.Redo() {
		t.Fatal("Redo failed")
	}
	if s.ActiveLayer().Raster.Equal(original) {
		t.Error("redo did not restore the warped pixels")
	}
}

func TestStrokeWithoutMovementIsNoOp(t *testing.T) {
	s, original := newTestSession(t)
	s.SetTool(ToolWarp)

	canUndo := s.CanUndo()
	s.PointerDown(geometry.Point2D{X: 8, Y: 8})
	s.PointerUp(geometry.Point2D{X: 8, Y: 8})

	if !s.ActiveLayer().Raster.Equal(original) {
		t.Error("down+up without movement changed pixels")
	}
	if s.CanUndo() != canUndo {
		t.Error("down+up without movement created a history entry")
	}
}

func TestGestureOnEmptySessionIsInert(t *testing.T) {
	s := New(10, 1)
	s.PointerDown(geometry.Point2D{X: 5, Y: 5})
	s.PointerMove(geometry.Point2D{X: 6, Y: 5})
	s.PointerUp(geometry.Point2D{X: 6, Y: 5})
	if s.CanUndo() {
		t.Error("gesture without layers created history")
	}
}

func TestPointerLeaveFinishesStroke(t *testing.T) {
	s, original := newTestSession(t)
	s.SetTool(ToolBloat)
	s.SetBrush(warp.BrushSettings{Size: 12, Strength: 1})

	s.PointerDown(geometry.Point2D{X: 8, Y: 8})
	s.PointerMove(geometry.Point2D{X: 9, Y: 8})
	s.PointerLeave()

	if s.ActiveLayer().Raster.Equal(original) {
		t.Error("leave did not bake the pending stroke")
	}
	if !s.CanUndo() {
		t.Error("leave did not commit the stroke")
	}
}

func TestSetToolFinishesActiveGesture(t *testing.T) {
	s, original := newTestSession(t)
	s.SetTool(ToolWarp)
	s.SetBrush(warp.BrushSettings{Size: 8, Strength: 1})

	s.PointerDown(geometry.Point2D{X: 7, Y: 8})
	s.PointerMove(geometry.Point2D{X: 8, Y: 8})
	s.SetTool(ToolLasso)

	if s.ActiveLayer().Raster.Equal(original) {
		t.Error("tool switch mid-stroke did not bake the stroke")
	}
	if s.Tool() != ToolLasso {
		t.Errorf("Tool = %v after switch", s.Tool())
	}
}

func TestLassoMasksAlpha(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetTool(ToolLasso)

	// Left-half rectangle.
	s.PointerDown(geometry.Point2D{X: 0, Y: 0})
	s.PointerMove(geometry.Point2D{X: 8, Y: 0})
	s.PointerMove(geometry.Point2D{X: 8, Y: 16})
	s.PointerMove(geometry.Point2D{X: 0, Y: 16})
	s.PointerUp(geometry.Point2D{X: 0, Y: 16})

	r := s.ActiveLayer().Raster
	if got := r.At(4, 8).A; got != 255 {
		t.Errorf("inside alpha = %d, want 255", got)
	}
	if got := r.At(12, 8).A; got != 0 {
		t.Errorf("outside alpha = %d, want 0", got)
	}
	// RGB outside is untouched.
	if got := r.At(12, 8).R; got != 12*16 {
		t.Errorf("outside red = %d, want %d", got, 12*16)
	}
	if !s.CanUndo() {
		t.Error("lasso was not committed")
	}
}

func TestShortLassoIsNoOp(t *testing.T) {
	s, original := newTestSession(t)
	s.SetTool(ToolLasso)

	canUndo := s.CanUndo()
	s.PointerDown(geometry.Point2D{X: 2, Y: 2})
	s.PointerMove(geometry.Point2D{X: 6, Y: 6})
	s.PointerUp(geometry.Point2D{X: 6, Y: 6})

	if !s.ActiveLayer().Raster.Equal(original) {
		t.Error("two-point lasso changed pixels")
	}
	if s.CanUndo() != canUndo {
		t.Error("two-point lasso created a history entry")
	}
}

func TestDegenerateLassoIsNoOp(t *testing.T) {
	// A collinear path encloses no area and would otherwise clear the
	// whole layer's alpha.
	s, original := newTestSession(t)
	s.SetTool(ToolLasso)

	canUndo := s.CanUndo()
	s.PointerDown(geometry.Point2D{X: 2, Y: 2})
	s.PointerMove(geometry.Point2D{X: 6, Y: 6})
	s.PointerMove(geometry.Point2D{X: 10, Y: 10})
	s.PointerMove(geometry.Point2D{X: 4, Y: 4})
	s.PointerUp(geometry.Point2D{X: 4, Y: 4})

	if !s.ActiveLayer().Raster.Equal(original) {
		t.Error("zero-area lasso changed pixels")
	}
	if s.CanUndo() != canUndo {
		t.Error("zero-area lasso created a history entry")
	}
}

func TestTransformBodyDrag(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetTool(ToolTransform)

	s.PointerDown(geometry.Point2D{X: 8, Y: 8})
	s.PointerMove(geometry.Point2D{X: 12, Y: 10})
	s.PointerUp(geometry.Point2D{X: 12, Y: 10})

	tr := s.ActiveLayer().Transform
	if tr.X != 4 || tr.Y != 2 {
		t.Errorf("transform after body drag = (%v, %v), want (4, 2)", tr.X, tr.Y)
	}
	if !s.CanUndo() {
		t.Error("transform drag was not committed")
	}

	s.Undo()
	tr = s.ActiveLayer().Transform
	if tr.X != 0 || tr.Y != 0 {
		t.Errorf("undo did not restore placement, got (%v, %v)", tr.X, tr.Y)
	}
}

func TestTransformPressOutsideIsNoOp(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetTool(ToolTransform)

	canUndo := s.CanUndo()
	s.PointerDown(geometry.Point2D{X: 200, Y: 200})
	s.PointerMove(geometry.Point2D{X: 210, Y: 210})
	s.PointerUp(geometry.Point2D{X: 210, Y: 210})

	if s.CanUndo() != canUndo {
		t.Error("press outside the layer created a history entry")
	}
}

func TestRenderShowsPreviewDuringStroke(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetTool(ToolWarp)
	s.SetBrush(warp.BrushSettings{Size: 8, Strength: 1})

	before := s.Render(16, 16)

	s.PointerDown(geometry.Point2D{X: 7, Y: 8})
	s.PointerMove(geometry.Point2D{X: 8, Y: 8})
	during := s.Render(16, 16)

	same := true
	for i := range before.Pix {
		if before.Pix[i] != during.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("render during stroke shows no preview of the pending warp")
	}

	s.PointerUp(geometry.Point2D{X: 8, Y: 8})
}

func TestUndoWithoutHistory(t *testing.T) {
	s := New(10, 1)
	if s.Undo() {
		t.Error("Undo on empty session should return false")
	}
	if s.Redo() {
		t.Error("Redo on empty session should return false")
	}
}

func TestSetActiveLayerInvalidatesGesture(t *testing.T) {
	s, _ := newTestSession(t)
	second := s.AddLayerFromImage("second", testImage())

	first := s.Stack().Layers[0]
	s.SetActiveLayer(first.ID)
	if s.ActiveLayer().ID != first.ID {
		t.Fatal("SetActiveLayer failed")
	}
	s.SetActiveLayer(second.ID)
	if s.ActiveLayer().ID != second.ID {
		t.Fatal("SetActiveLayer back failed")
	}
	// Switching to the already-active layer is a no-op.
	canUndo := s.CanUndo()
	s.SetActiveLayer(second.ID)
	_ = canUndo
}

func TestLayerPropertySetters(t *testing.T) {
	s, _ := newTestSession(t)
	l := s.ActiveLayer()

	s.SetLayerOpacity(l.ID, 2.5)
	if l.Opacity != 1 {
		t.Errorf("opacity not clamped high: %v", l.Opacity)
	}
	s.SetLayerOpacity(l.ID, -1)
	if l.Opacity != 0 {
		t.Errorf("opacity not clamped low: %v", l.Opacity)
	}

	s.SetLayerVisible(l.ID, false)
	if l.Visible {
		t.Error("SetLayerVisible failed")
	}

	s.RenameLayer(l.ID, "renamed")
	if l.Name != "renamed" {
		t.Error("RenameLayer failed")
	}

	// Unknown id is ignored.
	s.SetLayerOpacity("missing", 0.5)
}

func TestSetLayerTransformRejectsZeroScale(t *testing.T) {
	s, _ := newTestSession(t)
	l := s.ActiveLayer()
	before := l.Transform

	s.SetLayerTransform(l.ID, geometry.LayerTransform{Scale: 0})
	if l.Transform != before {
		t.Error("zero-scale transform was applied")
	}

	s.SetLayerTransform(l.ID, geometry.LayerTransform{X: 3, Y: 4, Scale: 2})
	if l.Transform.Scale != 2 || l.Transform.X != 3 {
		t.Error("valid transform was not applied")
	}
}

func TestBrushSettingsClamped(t *testing.T) {
	s := New(10, 1)
	s.SetBrush(warp.BrushSettings{Size: 50, Strength: 3})
	if got := s.Brush().Strength; got != 1 {
		t.Errorf("strength not clamped: %v", got)
	}
	s.SetBrush(warp.BrushSettings{Size: 50, Strength: -1})
	if got := s.Brush().Strength; got != 0 {
		t.Errorf("strength not clamped low: %v", got)
	}
}

func TestEvents(t *testing.T) {
	s := New(10, 1)
	var stackEvents, histEvents int
	s.On(EventStackChanged, func(interface{}) { stackEvents++ })
	s.On(EventHistoryChanged, func(interface{}) { histEvents++ })

	s.AddLayerFromImage("a", testImage())
	if stackEvents != 1 || histEvents != 1 {
		t.Errorf("events after add: stack=%d hist=%d, want 1/1", stackEvents, histEvents)
	}

	s.AddLayerFromImage("b", testImage())
	s.Undo()
	if stackEvents != 3 || histEvents != 3 {
		t.Errorf("events after undo: stack=%d hist=%d, want 3/3", stackEvents, histEvents)
	}
}
