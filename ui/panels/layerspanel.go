// Package panels provides the side panel widgets: layer management and
// tool settings.
package panels

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/internal/session"
)

const (
	thumbWidth  = 48
	thumbHeight = 36
)

// LayersPanel displays the layer stack with per-layer controls. The
// list is shown top layer first, matching paint order as the user sees
// it.
type LayersPanel struct {
	sess   *session.Session
	window fyne.Window

	list         *widget.List
	opacitySlide *widget.Slider
	blendSelect  *widget.Select
	nameEntry    *widget.Entry

	// updating suppresses control callbacks while the panel itself is
	// writing widget values.
	updating bool

	box *fyne.Container
}

// NewLayersPanel creates the layers panel bound to a session.
func NewLayersPanel(sess *session.Session, window fyne.Window) *LayersPanel {
	lp := &LayersPanel{sess: sess, window: window}

	lp.list = widget.NewList(
		func() int { return len(sess.Stack().Layers) },
		lp.createRow,
		lp.updateRow,
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		l := lp.layerAt(id)
		if l != nil {
			lp.sess.SetActiveLayer(l.ID)
		}
	}

	lp.nameEntry = widget.NewEntry()
	lp.nameEntry.OnSubmitted = func(name string) {
		if lp.updating || name == "" {
			return
		}
		if l := lp.sess.ActiveLayer(); l != nil {
			lp.sess.RenameLayer(l.ID, name)
		}
	}

	lp.opacitySlide = widget.NewSlider(0, 100)
	lp.opacitySlide.Step = 1
	lp.opacitySlide.OnChanged = func(v float64) {
		if lp.updating {
			return
		}
		if l := lp.sess.ActiveLayer(); l != nil {
			lp.sess.SetLayerOpacity(l.ID, v/100)
		}
	}

	blendNames := make([]string, 0, len(layer.BlendModes()))
	for _, m := range layer.BlendModes() {
		blendNames = append(blendNames, m.String())
	}
	lp.blendSelect = widget.NewSelect(blendNames, func(name string) {
		if lp.updating {
			return
		}
		l := lp.sess.ActiveLayer()
		if l == nil {
			return
		}
		for _, m := range layer.BlendModes() {
			if m.String() == name {
				lp.sess.SetLayerBlend(l.ID, m)
				return
			}
		}
	})

	buttons := container.NewHBox(
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), lp.onDuplicate),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), lp.onDelete),
		widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { lp.onMove(+1) }),
		widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { lp.onMove(-1) }),
	)

	detail := container.NewVBox(
		lp.nameEntry,
		container.NewBorder(nil, nil, widget.NewLabel("Opacity"), nil, lp.opacitySlide),
		container.NewBorder(nil, nil, widget.NewLabel("Blend"), nil, lp.blendSelect),
		buttons,
	)

	lp.box = container.NewBorder(
		widget.NewLabelWithStyle("Layers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		detail, nil, nil,
		lp.list,
	)

	sess.On(session.EventStackChanged, func(interface{}) {
		lp.Refresh()
	})

	lp.Refresh()
	return lp
}

// Widget returns the panel's root object.
func (lp *LayersPanel) Widget() fyne.CanvasObject {
	return lp.box
}

// Refresh reloads the list and detail controls from the session.
func (lp *LayersPanel) Refresh() {
	lp.updating = true
	defer func() { lp.updating = false }()

	lp.list.Refresh()

	stack := lp.sess.Stack()
	if idx := stack.IndexOf(stack.ActiveID); idx >= 0 {
		lp.list.Select(lp.rowForIndex(idx))
	}

	l := lp.sess.ActiveLayer()
	if l == nil {
		lp.nameEntry.SetText("")
		return
	}
	lp.nameEntry.SetText(l.Name)
	lp.opacitySlide.SetValue(l.Opacity * 100)
	lp.blendSelect.SetSelected(l.Blend.String())
}

// layerAt maps a list row back to its layer. Row 0 is the topmost
// layer.
func (lp *LayersPanel) layerAt(row widget.ListItemID) *layer.Layer {
	layers := lp.sess.Stack().Layers
	idx := len(layers) - 1 - int(row)
	if idx < 0 || idx >= len(layers) {
		return nil
	}
	return layers[idx]
}

func (lp *LayersPanel) rowForIndex(idx int) widget.ListItemID {
	return widget.ListItemID(len(lp.sess.Stack().Layers) - 1 - idx)
}

func (lp *LayersPanel) createRow() fyne.CanvasObject {
	thumb := fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight)))
	thumb.FillMode = fynecanvas.ImageFillContain
	thumb.SetMinSize(fyne.NewSize(thumbWidth, thumbHeight))

	visible := widget.NewCheck("", nil)
	name := widget.NewLabel("layer")
	name.Truncation = fyne.TextTruncateEllipsis

	return container.NewBorder(nil, nil, container.NewHBox(visible, thumb), nil, name)
}

func (lp *LayersPanel) updateRow(row widget.ListItemID, obj fyne.CanvasObject) {
	l := lp.layerAt(row)
	if l == nil {
		return
	}

	border := obj.(*fyne.Container)
	lead := border.Objects[0].(*fyne.Container)
	name := border.Objects[1].(*widget.Label)
	visible := lead.Objects[0].(*widget.Check)
	thumb := lead.Objects[1].(*fynecanvas.Image)

	name.SetText(l.Name)

	visible.OnChanged = nil
	visible.SetChecked(l.Visible)
	visible.OnChanged = func(v bool) {
		lp.sess.SetLayerVisible(l.ID, v)
	}

	thumb.Image = thumbnail(l)
	thumb.Refresh()
}

// thumbnail downsamples the layer raster for the list row.
func thumbnail(l *layer.Layer) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	if l.Raster == nil {
		return out
	}
	src := l.Raster.ToRGBA()

	// Fit inside the thumb box preserving aspect.
	sw, sh := float64(l.Width()), float64(l.Height())
	scale := thumbWidth / sw
	if s := thumbHeight / sh; s < scale {
		scale = s
	}
	dw := int(sw * scale)
	dh := int(sh * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	ox := (thumbWidth - dw) / 2
	oy := (thumbHeight - dh) / 2
	xdraw.ApproxBiLinear.Scale(out, image.Rect(ox, oy, ox+dw, oy+dh), src, src.Bounds(), xdraw.Src, nil)
	return out
}

func (lp *LayersPanel) onDuplicate() {
	if l := lp.sess.ActiveLayer(); l != nil {
		lp.sess.DuplicateLayer(l.ID)
	}
}

func (lp *LayersPanel) onDelete() {
	l := lp.sess.ActiveLayer()
	if l == nil {
		return
	}
	dialog.ShowConfirm("Delete Layer",
		fmt.Sprintf("Delete layer %q?", l.Name),
		func(ok bool) {
			if ok {
				lp.sess.DeleteLayer(l.ID)
			}
		}, lp.window)
}

// onMove shifts the active layer in paint order. delta +1 raises it.
func (lp *LayersPanel) onMove(delta int) {
	l := lp.sess.ActiveLayer()
	if l == nil {
		return
	}
	idx := lp.sess.Stack().IndexOf(l.ID)
	lp.sess.MoveLayer(l.ID, idx+delta)
}
