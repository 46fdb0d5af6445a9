package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

func TestProjectSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// A project layer needs pixels on disk.
	imgPath := filepath.Join(dir, "photo.png")
	if err := layer.ExportPNG(testImage(), imgPath); err != nil {
		t.Fatalf("write test image: %v", err)
	}

	s := New(10, 1)
	if err := s.AddLayerFromFile(imgPath); err != nil {
		t.Fatalf("AddLayerFromFile: %v", err)
	}
	l := s.ActiveLayer()
	s.SetLayerOpacity(l.ID, 0.6)
	s.SetLayerBlend(l.ID, layer.BlendScreen)
	s.SetLayerTransform(l.ID, geometry.LayerTransform{X: 5, Y: -3, Scale: 1.5, Rotation: 0.2})

	projPath := filepath.Join(dir, "test.liquify")
	if err := s.SaveProject(projPath); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if s.Modified() {
		t.Error("session still modified after save")
	}
	if s.ProjectPath() != projPath {
		t.Errorf("ProjectPath = %q", s.ProjectPath())
	}

	loaded := New(10, 1)
	if err := loaded.LoadProject(projPath); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}

	ll := loaded.ActiveLayer()
	if ll == nil {
		t.Fatal("no active layer after load")
	}
	if ll.Name != "photo" {
		t.Errorf("layer name = %q", ll.Name)
	}
	if ll.Opacity != 0.6 || ll.Blend != layer.BlendScreen {
		t.Errorf("layer settings = opacity %v blend %v", ll.Opacity, ll.Blend)
	}
	if ll.Transform.X != 5 || ll.Transform.Scale != 1.5 {
		t.Errorf("transform = %+v", ll.Transform)
	}
	if !ll.Raster.Equal(l.Raster) {
		t.Error("loaded pixels differ from saved layer")
	}
	if loaded.CanUndo() {
		t.Error("freshly loaded project should have no undo past its initial state")
	}
}

func TestLoadProjectMissingImageAborts(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "photo.png")
	if err := layer.ExportPNG(testImage(), imgPath); err != nil {
		t.Fatal(err)
	}

	s := New(10, 1)
	if err := s.AddLayerFromFile(imgPath); err != nil {
		t.Fatal(err)
	}
	projPath := filepath.Join(dir, "test.liquify")
	if err := s.SaveProject(projPath); err != nil {
		t.Fatal(err)
	}

	// Break the image reference, then load into a session that already
	// has content: the failed load must leave it untouched.
	if err := os.Remove(imgPath); err != nil {
		t.Fatal(err)
	}

	victim := New(10, 1)
	victim.AddLayerFromImage("existing", testImage())
	if err := victim.LoadProject(projPath); err == nil {
		t.Fatal("LoadProject with a missing image should fail")
	}
	if got := len(victim.Stack().Layers); got != 1 {
		t.Errorf("failed load modified the stack, %d layers", got)
	}
	if victim.ActiveLayer().Name != "existing" {
		t.Error("failed load replaced the existing layer")
	}
}

func TestLoadProjectBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.liquify")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := New(10, 1)
	if err := s.LoadProject(path); err == nil {
		t.Error("LoadProject of invalid JSON should fail")
	}
}
