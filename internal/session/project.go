package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jaysonragasa/liquifylab/internal/history"
	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

// ProjectFile represents the JSON structure of a .liquify project file.
// Pixel data is not embedded; layers reference their source images by
// path relative to the project file.
type ProjectFile struct {
	Version     int           `json:"version"`
	Name        string        `json:"name,omitempty"`
	Created     time.Time     `json:"created"`
	Modified    time.Time     `json:"modified"`
	Layers      []LayerRecord `json:"layers"`
	ActiveIndex int           `json:"active_index"`
}

// LayerRecord is the serialized form of one layer.
type LayerRecord struct {
	Name       string                  `json:"name"`
	SourcePath string                  `json:"source_path"`
	Visible    bool                    `json:"visible"`
	Opacity    float64                 `json:"opacity"`
	Blend      layer.BlendMode         `json:"blend"`
	Transform  geometry.LayerTransform `json:"transform"`
}

// ProjectPath returns the current project file path, if any.
func (s *Session) ProjectPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectPath
}

// SaveProject writes the layer stack to a project file. Layers without
// a source path (generated imagery not yet exported) are written with
// an empty path and restored as empty layers on load.
func (s *Session) SaveProject(path string) error {
	s.mu.RLock()
	proj := ProjectFile{
		Version:     1,
		Name:        filepath.Base(path),
		Created:     time.Now(),
		Modified:    time.Now(),
		ActiveIndex: s.stack.IndexOf(s.stack.ActiveID),
	}

	projectDir := filepath.Dir(path)
	for _, l := range s.stack.Layers {
		rec := LayerRecord{
			Name:      l.Name,
			Visible:   l.Visible,
			Opacity:   l.Opacity,
			Blend:     l.Blend,
			Transform: l.Transform,
		}
		if l.SourcePath != "" {
			if rel, err := filepath.Rel(projectDir, l.SourcePath); err == nil {
				rec.SourcePath = rel
			} else {
				rec.SourcePath = l.SourcePath
			}
		}
		proj.Layers = append(proj.Layers, rec)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	s.mu.Lock()
	s.projectPath = path
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// LoadProject replaces the layer stack with the contents of a project
// file and resets history. A layer whose source image fails to load
// aborts the whole load so no partial stack is installed.
func (s *Session) LoadProject(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	var proj ProjectFile
	if err := json.Unmarshal(data, &proj); err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	projectDir := filepath.Dir(path)
	stack := layer.NewStack()
	for _, rec := range proj.Layers {
		var l *layer.Layer
		if rec.SourcePath != "" {
			src := rec.SourcePath
			if !filepath.IsAbs(src) {
				src = filepath.Join(projectDir, src)
			}
			l, err = layer.Load(src)
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}
		} else {
			l = layer.NewLayer(rec.Name)
		}
		l.Name = rec.Name
		l.Visible = rec.Visible
		l.Opacity = rec.Opacity
		l.Blend = rec.Blend
		l.Transform = rec.Transform
		if l.Transform.Scale <= 0 {
			l.Transform = geometry.IdentityLayerTransform()
		}
		stack.Add(l)
	}

	if proj.ActiveIndex >= 0 && proj.ActiveIndex < len(stack.Layers) {
		stack.ActiveID = stack.Layers[proj.ActiveIndex].ID
	}

	s.mu.Lock()
	s.stack = stack
	s.invalidateMapLocked()
	s.hist = history.New(s.hist.MaxSteps())
	s.hist.Commit(s.stack)
	s.projectPath = path
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	s.Emit(EventStackChanged, nil)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventModified, false)
	return nil
}
