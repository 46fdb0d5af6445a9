package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/jaysonragasa/liquifylab/pkg/geometry"
)

var (
	brushCursorColor = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	lassoColor       = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	handleColor      = color.RGBA{R: 255, G: 180, B: 40, A: 255}
	frameColor       = color.RGBA{R: 255, G: 180, B: 40, A: 160}
)

const handleDrawSize = 7 // square handle side in screen pixels

// drawOverlays paints tool feedback over the composited frame: the
// lasso path while it is being drawn, the transform frame and handles,
// and the brush cursor circle.
func (ec *EditorCanvas) drawOverlays(img *image.RGBA) {
	ec.drawLassoOverlay(img)
	ec.drawTransformOverlay(img)
	ec.drawBrushCursor(img)
}

func (ec *EditorCanvas) drawLassoOverlay(img *image.RGBA) {
	path := ec.sess.LassoPath()
	if len(path) < 2 {
		return
	}
	l := ec.sess.ActiveLayer()
	if l == nil {
		return
	}

	// The path is stored in layer-local coordinates; project each point
	// into screen space through the layer placement and the view zoom.
	prev := ec.toScreen(l.Transform.ToWorld(path[0]))
	for _, p := range path[1:] {
		cur := ec.toScreen(l.Transform.ToWorld(p))
		drawLine(img, prev, cur, lassoColor)
		prev = cur
	}
	// Closing edge preview back to the start.
	drawLine(img, prev, ec.toScreen(l.Transform.ToWorld(path[0])), lassoColor)
}

func (ec *EditorCanvas) drawTransformOverlay(img *image.RGBA) {
	corners, rotate, ok := ec.sess.TransformHandles()
	if !ok {
		return
	}

	var sc [4]screenPoint
	for i, c := range corners {
		sc[i] = ec.toScreen(c)
	}
	for i := range sc {
		drawLine(img, sc[i], sc[(i+1)%4], frameColor)
	}
	for _, p := range sc {
		drawHandle(img, p, handleColor)
	}

	sr := ec.toScreen(rotate)
	top := screenPoint{
		X: (sc[0].X + sc[1].X) / 2,
		Y: (sc[0].Y + sc[1].Y) / 2,
	}
	drawLine(img, top, sr, frameColor)
	drawCircle(img, sr, float64(handleDrawSize)/2, handleColor)
}

func (ec *EditorCanvas) drawBrushCursor(img *image.RGBA) {
	if !ec.pointerIn || !ec.sess.Tool().IsBrush() {
		return
	}
	// Brush size is already a screen-space diameter.
	r := ec.sess.Brush().Size / 2
	if r < 1 {
		return
	}
	drawCircle(img, ec.toScreen(ec.pointerWorld), r, brushCursorColor)
}

type screenPoint struct {
	X, Y int
}

func (ec *EditorCanvas) toScreen(world geometry.Point2D) screenPoint {
	return screenPoint{
		X: int(math.Round(world.X * ec.zoom)),
		Y: int(math.Round(world.Y * ec.zoom)),
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	img.SetRGBA(x, y, c)
}

// drawLine plots a line with the integer Bresenham walk.
func drawLine(img *image.RGBA, a, b screenPoint, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		setPixel(img, x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// drawCircle plots a circle outline as short line segments.
func drawCircle(img *image.RGBA, center screenPoint, radius float64, c color.RGBA) {
	steps := int(math.Max(12, radius))
	prev := screenPoint{X: center.X + int(math.Round(radius)), Y: center.Y}
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		cur := screenPoint{
			X: center.X + int(math.Round(radius*math.Cos(a))),
			Y: center.Y + int(math.Round(radius*math.Sin(a))),
		}
		drawLine(img, prev, cur, c)
		prev = cur
	}
}

// drawHandle fills a small square centered on the point.
func drawHandle(img *image.RGBA, p screenPoint, c color.RGBA) {
	half := handleDrawSize / 2
	for y := p.Y - half; y <= p.Y+half; y++ {
		for x := p.X - half; x <= p.X+half; x++ {
			setPixel(img, x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
