package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/jaysonragasa/liquifylab/internal/session"
	"github.com/jaysonragasa/liquifylab/internal/warp"
)

// toolOrder lists the selectable tools in display order.
var toolOrder = []session.Tool{
	session.ToolWarp,
	session.ToolBloat,
	session.ToolPucker,
	session.ToolTwirl,
	session.ToolTurbulence,
	session.ToolReconstruct,
	session.ToolLasso,
	session.ToolTransform,
}

// ToolPanel selects the active tool and edits brush settings.
type ToolPanel struct {
	sess *session.Session

	toolRadio     *widget.RadioGroup
	sizeSlide     *widget.Slider
	sizeLabel     *widget.Label
	strengthSlide *widget.Slider
	strengthLabel *widget.Label

	updating bool
	box      *fyne.Container

	// OnToolChanged lets the window react to tool switches, e.g. to
	// redraw overlays.
	OnToolChanged func(t session.Tool)
}

// NewToolPanel creates the tool panel bound to a session.
func NewToolPanel(sess *session.Session) *ToolPanel {
	tp := &ToolPanel{sess: sess}

	names := make([]string, len(toolOrder))
	for i, t := range toolOrder {
		names[i] = t.String()
	}
	tp.toolRadio = widget.NewRadioGroup(names, func(name string) {
		if tp.updating || name == "" {
			return
		}
		for _, t := range toolOrder {
			if t.String() == name {
				tp.sess.SetTool(t)
				if tp.OnToolChanged != nil {
					tp.OnToolChanged(t)
				}
				return
			}
		}
	})

	tp.sizeLabel = widget.NewLabel("")
	tp.sizeSlide = widget.NewSlider(4, 600)
	tp.sizeSlide.Step = 2
	tp.sizeSlide.OnChanged = func(v float64) {
		if tp.updating {
			return
		}
		b := tp.sess.Brush()
		b.Size = v
		tp.sess.SetBrush(b)
		tp.sizeLabel.SetText(fmt.Sprintf("%.0f px", v))
	}

	tp.strengthLabel = widget.NewLabel("")
	tp.strengthSlide = widget.NewSlider(0, 100)
	tp.strengthSlide.Step = 1
	tp.strengthSlide.OnChanged = func(v float64) {
		if tp.updating {
			return
		}
		b := tp.sess.Brush()
		b.Strength = v / 100
		tp.sess.SetBrush(b)
		tp.strengthLabel.SetText(fmt.Sprintf("%.0f%%", v))
	}

	tp.box = container.NewVBox(
		widget.NewLabelWithStyle("Tool", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tp.toolRadio,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, widget.NewLabel("Size"), tp.sizeLabel, tp.sizeSlide),
		container.NewBorder(nil, nil, widget.NewLabel("Strength"), tp.strengthLabel, tp.strengthSlide),
	)

	tp.Refresh()
	return tp
}

// Widget returns the panel's root object.
func (tp *ToolPanel) Widget() fyne.CanvasObject {
	return tp.box
}

// Refresh reloads the controls from the session.
func (tp *ToolPanel) Refresh() {
	tp.updating = true
	defer func() { tp.updating = false }()

	tp.toolRadio.SetSelected(tp.sess.Tool().String())
	b := tp.sess.Brush()
	tp.sizeSlide.SetValue(b.Size)
	tp.sizeLabel.SetText(fmt.Sprintf("%.0f px", b.Size))
	tp.strengthSlide.SetValue(b.Strength * 100)
	tp.strengthLabel.SetText(fmt.Sprintf("%.0f%%", b.Strength*100))
}

// SetBrushDefaults applies configured defaults once at startup.
func (tp *ToolPanel) SetBrushDefaults(size, strength float64) {
	tp.sess.SetBrush(warp.BrushSettings{Size: size, Strength: strength})
	tp.Refresh()
}
