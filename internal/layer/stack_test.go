package layer

import (
	"testing"

	"github.com/jaysonragasa/liquifylab/internal/raster"
)

func solidLayer(t *testing.T, name string, w, h int, r, g, b, a uint8) *Layer {
	t.Helper()
	l := NewLayer(name)
	ra, err := raster.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	pix := ra.Pix()
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = a
	}
	l.Raster = ra
	return l
}

func TestStackAddMakesActive(t *testing.T) {
	s := NewStack()
	a := NewLayer("a")
	b := NewLayer("b")
	s.Add(a)
	s.Add(b)

	if s.ActiveID != b.ID {
		t.Errorf("ActiveID = %q, want %q", s.ActiveID, b.ID)
	}
	if s.Active() != b {
		t.Error("Active() did not return the last added layer")
	}
	if s.IndexOf(a.ID) != 0 || s.IndexOf(b.ID) != 1 {
		t.Error("paint order does not match add order")
	}
}

func TestStackRemove(t *testing.T) {
	s := NewStack()
	a := NewLayer("a")
	b := NewLayer("b")
	c := NewLayer("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	if !s.Remove(c.ID) {
		t.Fatal("Remove(top) failed")
	}
	// Topmost remaining layer becomes active.
	if s.ActiveID != b.ID {
		t.Errorf("after removing active top, ActiveID = %q, want %q", s.ActiveID, b.ID)
	}

	if !s.Remove(a.ID) {
		t.Fatal("Remove(bottom) failed")
	}
	// Removing a non-active layer keeps the active selection.
	if s.ActiveID != b.ID {
		t.Errorf("removing non-active layer changed ActiveID to %q", s.ActiveID)
	}

	if s.Remove("missing") {
		t.Error("Remove of unknown id should return false")
	}
}

func TestStackRemoveLast(t *testing.T) {
	s := NewStack()
	a := NewLayer("a")
	s.Add(a)
	s.Remove(a.ID)
	if s.ActiveID != "" {
		t.Errorf("empty stack ActiveID = %q", s.ActiveID)
	}
	if s.Active() != nil {
		t.Error("Active() on empty stack should be nil")
	}
}

func TestStackMove(t *testing.T) {
	s := NewStack()
	a := NewLayer("a")
	b := NewLayer("b")
	c := NewLayer("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	if !s.Move(a.ID, 2) {
		t.Fatal("Move to top failed")
	}
	if s.IndexOf(a.ID) != 2 || s.IndexOf(b.ID) != 0 || s.IndexOf(c.ID) != 1 {
		t.Errorf("order after move: a=%d b=%d c=%d",
			s.IndexOf(a.ID), s.IndexOf(b.ID), s.IndexOf(c.ID))
	}

	// Out-of-range indices clamp.
	if !s.Move(a.ID, -5) {
		t.Fatal("Move with clamped index failed")
	}
	if s.IndexOf(a.ID) != 0 {
		t.Errorf("clamped move put a at %d", s.IndexOf(a.ID))
	}

	// Moving to the current position is a no-op.
	if s.Move(a.ID, 0) {
		t.Error("Move to same index should return false")
	}
}

func TestStackCloneIsDeep(t *testing.T) {
	s := NewStack()
	l := solidLayer(t, "a", 2, 2, 10, 20, 30, 255)
	s.Add(l)

	c := s.Clone()
	if c.ActiveID != s.ActiveID || len(c.Layers) != 1 {
		t.Fatal("clone shape mismatch")
	}

	// Mutating the original raster must not affect the clone.
	l.Raster.Pix()[0] = 99
	if c.Layers[0].Raster.Pix()[0] == 99 {
		t.Error("Clone() shares pixel buffers with the original")
	}

	// Mutating original metadata must not affect the clone either.
	l.Name = "renamed"
	if c.Layers[0].Name == "renamed" {
		t.Error("Clone() shares layer structs with the original")
	}
}

func TestDuplicateGetsFreshID(t *testing.T) {
	l := solidLayer(t, "a", 2, 2, 1, 2, 3, 255)
	d := l.Duplicate()
	if d.ID == l.ID {
		t.Error("Duplicate() reused the layer id")
	}
	if d.Name != "a copy" {
		t.Errorf("Duplicate() name = %q", d.Name)
	}
	if !d.Raster.Equal(l.Raster) {
		t.Error("Duplicate() pixel content differs")
	}
	d.Raster.Pix()[0] = 77
	if l.Raster.Pix()[0] == 77 {
		t.Error("Duplicate() shares the pixel buffer")
	}
}
