// Package layer provides image layers, the ordered layer stack, and the
// software compositor that blends them.
package layer

import (
	"fmt"
	"sync/atomic"

	"github.com/jaysonragasa/liquifylab/internal/raster"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

var idCounter atomic.Int64

func nextID() string {
	return fmt.Sprintf("layer-%d", idCounter.Add(1))
}

// Layer is a single image layer. Its raster is replaced wholesale by
// editing operations (bake, mask), never mutated in place; the affine
// placement composes at render time, independent of any pending warp.
type Layer struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Visible   bool                    `json:"visible"`
	Opacity   float64                 `json:"opacity"`
	Blend     BlendMode               `json:"blend"`
	Transform geometry.LayerTransform `json:"transform"`

	// Raster is nil until image data is loaded or generated.
	Raster *raster.Raster `json:"-"`

	// SourcePath records where the pixels came from, for project files.
	SourcePath string `json:"source_path,omitempty"`
}

// NewLayer creates an empty layer with default settings and a fresh id.
func NewLayer(name string) *Layer {
	return &Layer{
		ID:        nextID(),
		Name:      name,
		Visible:   true,
		Opacity:   1.0,
		Blend:     BlendNormal,
		Transform: geometry.IdentityLayerTransform(),
	}
}

// Width returns the raster width, or 0 when no image is loaded.
func (l *Layer) Width() int {
	if l.Raster == nil {
		return 0
	}
	return l.Raster.Width()
}

// Height returns the raster height, or 0 when no image is loaded.
func (l *Layer) Height() int {
	if l.Raster == nil {
		return 0
	}
	return l.Raster.Height()
}

// Clone returns a deep copy including the pixel buffer. History
// snapshots rely on this: the live layer keeps being mutated after a
// commit, so snapshots must not share rasters with it.
func (l *Layer) Clone() *Layer {
	c := *l
	if l.Raster != nil {
		c.Raster = l.Raster.Clone()
	}
	return &c
}

// Duplicate returns a deep copy under a new id, named like the original.
func (l *Layer) Duplicate() *Layer {
	c := l.Clone()
	c.ID = nextID()
	c.Name = l.Name + " copy"
	return c
}

// LocalBounds returns the raster rectangle in layer-local coordinates.
func (l *Layer) LocalBounds() geometry.Rect {
	return geometry.NewRect(0, 0, float64(l.Width()), float64(l.Height()))
}
