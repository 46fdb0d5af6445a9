// Package canvas provides the editor canvas: composited layer display
// with pan/zoom, pointer routing into the editing session, and tool
// overlays.
package canvas

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"github.com/jaysonragasa/liquifylab/internal/session"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	minDocWidth  = 400
	minDocHeight = 300
)

// EditorCanvas displays the composited layer stack and feeds pointer
// gestures into the session.
type EditorCanvas struct {
	widget.BaseWidget

	sess *session.Session

	raster  *fynecanvas.Raster
	content *pointerContent
	scroll  *zoomScroll

	zoom     float64
	imgSize  fyne.Size
	dragging bool

	// Last pointer position in world space, for the brush cursor.
	pointerWorld geometry.Point2D
	pointerIn    bool

	onZoomChange func(zoom float64)
}

// New creates an editor canvas bound to a session.
func New(sess *session.Session) *EditorCanvas {
	ec := &EditorCanvas{
		sess:    sess,
		zoom:    1.0,
		imgSize: fyne.NewSize(minDocWidth, minDocHeight),
	}

	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.raster.ScaleMode = fynecanvas.ImageScalePixels
	ec.raster.SetMinSize(ec.imgSize)

	ec.content = newPointerContent(ec, ec.raster)
	ec.scroll = newZoomScroll(ec.content, ec)

	sess.On(session.EventStackChanged, func(interface{}) {
		ec.updateContentSize()
		ec.Refresh()
	})

	ec.ExtendBaseWidget(ec)
	return ec
}

// CreateRenderer implements fyne.Widget.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ec.scroll)
}

// Refresh redraws the composite.
func (ec *EditorCanvas) Refresh() {
	ec.raster.Refresh()
	ec.BaseWidget.Refresh()
}

// Zoom returns the current zoom factor.
func (ec *EditorCanvas) Zoom() float64 {
	return ec.zoom
}

// SetZoom sets the zoom level, clamped to the supported range.
func (ec *EditorCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	if zoom == ec.zoom {
		return
	}
	ec.zoom = zoom
	ec.sess.SetZoom(zoom)
	ec.updateContentSize()
	ec.Refresh()
	if ec.onZoomChange != nil {
		ec.onZoomChange(zoom)
	}
}

// ZoomIn increases zoom by one step.
func (ec *EditorCanvas) ZoomIn() {
	ec.SetZoom(ec.zoom * zoomStep)
}

// ZoomOut decreases zoom by one step.
func (ec *EditorCanvas) ZoomOut() {
	ec.SetZoom(ec.zoom / zoomStep)
}

// ActualSize resets zoom to 1:1.
func (ec *EditorCanvas) ActualSize() {
	ec.SetZoom(1.0)
}

// OnZoomChange registers a zoom listener for the status bar.
func (ec *EditorCanvas) OnZoomChange(f func(zoom float64)) {
	ec.onZoomChange = f
}

// docSize returns the world-space document extent: the union of all
// transformed layer bounds, with a floor so an empty stack still shows
// a canvas.
func (ec *EditorCanvas) docSize() (int, int) {
	w, h := float64(minDocWidth), float64(minDocHeight)
	for _, l := range ec.sess.Stack().Layers {
		if l.Raster == nil {
			continue
		}
		t := l.Transform.ToAffine()
		lw := float64(l.Width())
		lh := float64(l.Height())
		for _, c := range []geometry.Point2D{
			t.Apply(geometry.Point2D{X: 0, Y: 0}),
			t.Apply(geometry.Point2D{X: lw, Y: 0}),
			t.Apply(geometry.Point2D{X: lw, Y: lh}),
			t.Apply(geometry.Point2D{X: 0, Y: lh}),
		} {
			w = math.Max(w, c.X)
			h = math.Max(h, c.Y)
		}
	}
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// updateContentSize resizes the scrollable content to the zoomed
// document extent.
func (ec *EditorCanvas) updateContentSize() {
	dw, dh := ec.docSize()
	ec.imgSize = fyne.NewSize(float32(float64(dw)*ec.zoom), float32(float64(dh)*ec.zoom))
	ec.raster.SetMinSize(ec.imgSize)
	ec.content.Refresh()
	ec.scroll.Refresh()
}

// draw renders the frame fyne asks for: composite at document
// resolution, scale to the zoomed size, then draw the tool overlays in
// screen space.
func (ec *EditorCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	dw, dh := ec.docSize()
	frame := ec.sess.Render(dw, dh)

	var out *image.RGBA
	if ec.zoom == 1.0 && dw == w && dh == h {
		out = frame
	} else {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
		dstW := int(float64(dw) * ec.zoom)
		dstH := int(float64(dh) * ec.zoom)
		if dstW > w {
			dstW = w
		}
		if dstH > h {
			dstH = h
		}
		xdraw.ApproxBiLinear.Scale(out, image.Rect(0, 0, dstW, dstH), frame, frame.Bounds(), xdraw.Src, nil)
	}

	ec.drawOverlays(out)
	return out
}

// worldPos converts a widget-relative pointer position into world
// coordinates.
func (ec *EditorCanvas) worldPos(pos fyne.Position) geometry.Point2D {
	off := ec.scroll.Offset()
	return geometry.Point2D{
		X: float64(pos.X+off.X) / ec.zoom,
		Y: float64(pos.Y+off.Y) / ec.zoom,
	}
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *EditorCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *EditorCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// pointerContent wraps the raster and routes pointer events into the
// session's gesture state machine.
type pointerContent struct {
	widget.BaseWidget
	canvas *EditorCanvas
	raster *fynecanvas.Raster
}

func newPointerContent(ec *EditorCanvas, raster *fynecanvas.Raster) *pointerContent {
	pc := &pointerContent{canvas: ec, raster: raster}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (pc *pointerContent) CreateRenderer() fyne.WidgetRenderer {
	return &pointerContentRenderer{content: pc}
}

func (pc *pointerContent) MinSize() fyne.Size {
	return pc.raster.MinSize()
}

// Dragged drives the Active state: the first event opens the gesture,
// subsequent events feed move segments.
func (pc *pointerContent) Dragged(ev *fyne.DragEvent) {
	ec := pc.canvas
	world := ec.worldPos(ev.Position)
	ec.pointerWorld = world
	ec.pointerIn = true

	if !ec.dragging {
		ec.dragging = true
		// Open the gesture at the position before this delta so the
		// first segment is not lost.
		start := ec.worldPos(fyne.Position{
			X: ev.Position.X - ev.Dragged.DX,
			Y: ev.Position.Y - ev.Dragged.DY,
		})
		ec.sess.PointerDown(start)
	}
	ec.sess.PointerMove(world)
	ec.Refresh()
}

// DragEnd closes the gesture; the session commits per tool.
func (pc *pointerContent) DragEnd() {
	ec := pc.canvas
	if !ec.dragging {
		return
	}
	ec.dragging = false
	ec.sess.PointerUp(ec.pointerWorld)
	ec.Refresh()
}

// MouseMoved tracks the hover position for the brush cursor overlay.
func (pc *pointerContent) MouseMoved(ev *desktop.MouseEvent) {
	ec := pc.canvas
	ec.pointerWorld = ec.worldPos(ev.Position)
	ec.pointerIn = true
	if ec.sess.Tool().IsBrush() {
		ec.Refresh()
	}
}

func (pc *pointerContent) MouseIn(ev *desktop.MouseEvent) {
	pc.canvas.pointerIn = true
}

// MouseOut is treated like a release so a gesture leaving the canvas
// still reaches Idle.
func (pc *pointerContent) MouseOut() {
	ec := pc.canvas
	ec.pointerIn = false
	if ec.dragging {
		ec.dragging = false
		ec.sess.PointerLeave()
		ec.Refresh()
	}
}

type pointerContentRenderer struct {
	content *pointerContent
}

func (r *pointerContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *pointerContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *pointerContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *pointerContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *pointerContentRenderer) Destroy() {}
