// Package mainwindow implements the application's main window: menu,
// toolbar, editor canvas, side panels, and status bar.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/jaysonragasa/liquifylab/internal/config"
	"github.com/jaysonragasa/liquifylab/internal/layer"
	"github.com/jaysonragasa/liquifylab/internal/session"
	"github.com/jaysonragasa/liquifylab/internal/version"
	"github.com/jaysonragasa/liquifylab/pkg/geometry"
	"github.com/jaysonragasa/liquifylab/ui/canvas"
	"github.com/jaysonragasa/liquifylab/ui/panels"
)

const (
	projectExt     = ".liquify"
	prefKeyLastDir = "lastDir"
)

// MainWindow is the application's main window.
type MainWindow struct {
	fyne.Window

	app  fyne.App
	sess *session.Session
	conf config.Config

	canvas      *canvas.EditorCanvas
	toolPanel   *panels.ToolPanel
	layersPanel *panels.LayersPanel
	statusBar   *widget.Label
	zoomLabel   *widget.Label

	undoItem *fyne.MenuItem
	redoItem *fyne.MenuItem
	mainMenu *fyne.MainMenu
}

// New creates the main window.
func New(app fyne.App, sess *session.Session, conf config.Config) *MainWindow {
	mw := &MainWindow{
		Window: app.NewWindow(version.AppName),
		app:    app,
		sess:   sess,
		conf:   conf,
	}

	mw.Resize(fyne.NewSize(float32(conf.WindowWidth), float32(conf.WindowHeight)))
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.toolPanel.SetBrushDefaults(conf.BrushSize, conf.BrushStrength)
	return mw
}

// setupUI builds the window layout: canvas center, panels right,
// toolbar top, status bar bottom.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.sess)
	mw.toolPanel = panels.NewToolPanel(mw.sess)
	mw.layersPanel = panels.NewLayersPanel(mw.sess, mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.toolPanel.OnToolChanged = func(t session.Tool) {
		mw.updateStatus("Tool: " + t.String())
		mw.canvas.Refresh()
	}

	sidePanel := container.NewVSplit(
		mw.toolPanel.Widget(),
		mw.layersPanel.Widget(),
	)
	sidePanel.SetOffset(0.45)

	split := container.NewHSplit(mw.canvas, sidePanel)
	split.SetOffset(0.78)

	statusRow := container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)

	content := container.NewBorder(
		mw.createToolbar(),
		statusRow,
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar builds the top toolbar.
func (mw *MainWindow) createToolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpenProject),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), mw.onSaveProject),
		widget.NewToolbarAction(theme.ContentAddIcon(), mw.onAddLayer),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), mw.onUndo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), mw.onRedo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), mw.canvas.ZoomIn),
		widget.NewToolbarAction(theme.ZoomOutIcon(), mw.canvas.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), mw.canvas.ActualSize),
	)
}

// setupMenus builds the main menu.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Layer from Image...", mw.onAddLayer),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
	)

	mw.undoItem = fyne.NewMenuItem("Undo", mw.onUndo)
	mw.redoItem = fyne.NewMenuItem("Redo", mw.onRedo)
	editMenu := fyne.NewMenu("Edit",
		mw.undoItem,
		mw.redoItem,
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", mw.canvas.ActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
	mw.refreshUndoRedo()
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.sess.On(session.EventStackChanged, func(interface{}) {
		mw.canvas.Refresh()
	})

	mw.sess.On(session.EventLayerPreview, func(interface{}) {
		mw.canvas.Refresh()
	})

	mw.sess.On(session.EventHistoryChanged, func(interface{}) {
		mw.refreshUndoRedo()
	})

	mw.sess.On(session.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok {
			mw.refreshTitle(modified)
		}
	})

	mw.sess.On(session.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Project loaded: " + path)
			mw.refreshTitle(false)
		}
	})

	mw.sess.On(session.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Project saved: " + path)
			mw.refreshTitle(false)
		}
	})
}

func (mw *MainWindow) refreshUndoRedo() {
	mw.undoItem.Disabled = !mw.sess.CanUndo()
	mw.redoItem.Disabled = !mw.sess.CanRedo()
	mw.mainMenu.Refresh()
}

func (mw *MainWindow) refreshTitle(modified bool) {
	title := version.AppName
	if path := mw.sess.ProjectPath(); path != "" {
		title += " - " + filepath.Base(path)
	}
	if modified {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	if !mw.sess.Modified() {
		mw.sess.Reset()
		mw.refreshTitle(false)
		return
	}
	dialog.ShowConfirm("New Project",
		"Discard unsaved changes?",
		func(ok bool) {
			if ok {
				mw.sess.Reset()
				mw.refreshTitle(false)
			}
		}, mw.Window)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.sess.LoadProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{projectExt}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProject() {
	if mw.sess.ProjectPath() == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.sess.SaveProject(mw.sess.ProjectPath()); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != projectExt {
			path += projectExt
		}
		mw.saveLastDir(path)
		if err := mw.sess.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("project" + projectExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAddLayer() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.sess.AddLayerFromFile(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Added layer: " + filepath.Base(path))
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(layer.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".png" {
			path += ".png"
		}
		mw.saveLastDir(path)
		w, h := mw.canvasExtent()
		if err := mw.sess.ExportPNG(path, w, h); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported: " + path)
	}, mw.Window)
	fd.SetFileName("export.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// canvasExtent returns the export size: the union of all transformed
// layer bounds.
func (mw *MainWindow) canvasExtent() (int, int) {
	w, h := 1, 1
	for _, l := range mw.sess.Stack().Layers {
		if l.Raster == nil {
			continue
		}
		t := l.Transform.ToAffine()
		lw := float64(l.Width())
		lh := float64(l.Height())
		box := geometry.BoundingBox([]geometry.Point2D{
			t.Apply(geometry.Point2D{X: 0, Y: 0}),
			t.Apply(geometry.Point2D{X: lw, Y: 0}),
			t.Apply(geometry.Point2D{X: lw, Y: lh}),
			t.Apply(geometry.Point2D{X: 0, Y: lh}),
		})
		if int(box.X+box.Width) > w {
			w = int(box.X + box.Width)
		}
		if int(box.Y+box.Height) > h {
			h = int(box.Y + box.Height)
		}
	}
	return w, h
}

func (mw *MainWindow) onUndo() {
	if mw.sess.Undo() {
		mw.updateStatus("Undo")
	}
}

func (mw *MainWindow) onRedo() {
	if mw.sess.Redo() {
		mw.updateStatus("Redo")
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.AppName,
		fmt.Sprintf("%s v%s\n\n"+
			"An interactive image liquify editor.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.AppName, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
