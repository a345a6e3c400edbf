// Package mainwindow provides the main application window: two linked
// chart views, the drawing toolbar, and keyboard shortcuts.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"chart-annotator/internal/app"
	"chart-annotator/internal/crosshair"
	"chart-annotator/internal/drawing"
	"chart-annotator/internal/series"
	"chart-annotator/ui/overlay"
	"chart-annotator/ui/prefs"
)

var log = logrus.WithField("component", "mainwindow")

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	modes *crosshair.Coordinator

	primary   *overlay.ChartView
	secondary *overlay.ChartView
	statusBar *widget.Label
	modeBtn   *widget.Button
}

// New creates the main window over the given state and preferences.
func New(fyneApp fyne.App, state *app.State, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Chart Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  appPrefs,
		modes:  crosshair.NewCoordinator(state.Options.Crosshair.ModeSwitchLockDelay),
	}
	mw.modes.SetMode(crosshair.Mode(appPrefs.CrosshairMode))

	mw.setupUI()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.restoreAnnotations()

	win.Resize(fyne.NewSize(float32(appPrefs.WindowWidth), float32(appPrefs.WindowHeight)))
	return mw
}

// setupUI creates the chart views and surrounding chrome.
func (mw *MainWindow) setupUI() {
	mw.primary = overlay.NewChartView(mw.state.Series, mw.state.Options, mw.modes)
	mw.secondary = overlay.NewChartView(mw.state.Series, mw.state.Options, mw.modes)

	mw.statusBar = widget.NewLabel("Ready")
	toolbar := mw.createToolbar()

	split := container.NewHSplit(mw.primary, mw.secondary)
	split.SetOffset(0.5)

	mw.SetContent(container.NewBorder(
		toolbar,      // top
		mw.statusBar, // bottom
		nil,
		nil,
		split,
	))
}

func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeBtn = widget.NewButton(modeLabel(mw.modes.CurrentMode()), func() {
		mw.modes.RequestSwitch()
	})

	tools := []struct {
		label string
		tool  drawing.ToolType
	}{
		{"Ray", drawing.ToolHorizontalRay},
		{"H-Line", drawing.ToolHorizontalLine},
		{"Trend", drawing.ToolTrendline},
		{"Angle", drawing.ToolAngleBox},
		{"Rect", drawing.ToolRectangle},
		{"Channel", drawing.ToolPriceChannel},
	}
	items := []fyne.CanvasObject{mw.modeBtn, widget.NewSeparator()}
	for _, t := range tools {
		tool := t.tool
		items = append(items, widget.NewButton(t.label, func() {
			mw.primary.Drawing().SetTool(tool)
			mw.prefs.SetLastTool(string(tool))
			mw.updateStatus("Tool: " + string(tool))
		}))
	}
	items = append(items,
		widget.NewSeparator(),
		widget.NewButton("Select", func() {
			mw.primary.Drawing().SetDrawingMode(true)
			mw.primary.Drawing().SetTool(drawing.ToolNone)
		}),
		widget.NewButton("Done", func() {
			mw.primary.Drawing().SetDrawingMode(false)
		}),
		widget.NewSeparator(),
		widget.NewButton("Undo", func() { mw.primary.Drawing().Undo() }),
		widget.NewButton("Redo", func() { mw.primary.Drawing().Redo() }),
		widget.NewButton("Clear", func() { mw.primary.Drawing().ClearAll() }),
	)
	return container.NewHBox(items...)
}

// setupShortcuts wires Tab, Escape, Delete, Ctrl+Z, and Ctrl+Y.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		d := mw.primary.Drawing()
		switch ev.Name {
		case fyne.KeyTab:
			d.CycleType()
		case fyne.KeyEscape:
			if d.ActiveTool() != drawing.ToolNone {
				d.SetTool(drawing.ToolNone)
			} else {
				d.SetDrawingMode(false)
			}
		case fyne.KeyDelete, fyne.KeyBackspace:
			d.DeleteSelected()
		}
	})

	undo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(undo, func(fyne.Shortcut) {
		mw.primary.Drawing().Undo()
	})
	redo := &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(redo, func(fyne.Shortcut) {
		mw.primary.Drawing().Redo()
	})
}

// setupEventHandlers links the two views and wires persistence.
func (mw *MainWindow) setupEventHandlers() {
	link := func(from, to *overlay.ChartView) {
		from.Crosshair().OnPositionChange = func(date *string) {
			to.Crosshair().SetPositionByDate(date)
			mw.state.Emit(app.EventCrosshairMoved, date)
		}
	}
	link(mw.primary, mw.secondary)
	link(mw.secondary, mw.primary)

	mw.primary.Crosshair().OnDataUpdate = func(bar *series.Bar) {
		if bar == nil {
			mw.updateStatus("Ready")
			return
		}
		mw.updateStatus(fmt.Sprintf("%s  O %.2f  H %.2f  L %.2f  C %.2f  V %.0f",
			bar.TradeDate, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
	}

	mw.primary.Drawing().OnDrawingUpdate = func(list []*drawing.Drawing) {
		mw.state.Emit(app.EventDrawingsChanged, list)
		mw.state.SetModified(true)
		mw.saveAnnotations(list)
	}
	mw.primary.Drawing().OnToolChange = func(tool drawing.ToolType) {
		mw.state.Emit(app.EventModeChanged, tool)
	}

	mw.modes.Subscribe(func(m crosshair.Mode) {
		mw.modeBtn.SetText(modeLabel(m))
		mw.prefs.SetCrosshairMode(int(m))
	})

	// The title tracks unsaved annotation changes.
	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, _ := data.(bool); modified {
			mw.SetTitle("Chart Annotator *")
		} else {
			mw.SetTitle("Chart Annotator")
		}
	})

	mw.SetOnClosed(func() {
		size := mw.Canvas().Size()
		mw.prefs.SetWindowSize(float64(size.Width), float64(size.Height))
		if err := mw.prefs.Save(); err != nil {
			log.WithError(err).Warn("failed to save preferences")
		}
		mw.primary.Destroy()
		mw.secondary.Destroy()
	})
}

// restoreAnnotations loads the annotation file into the primary view.
func (mw *MainWindow) restoreAnnotations() {
	if mw.state.AnnotationsPath == "" {
		return
	}
	file, err := app.LoadAnnotations(mw.state.AnnotationsPath)
	if err != nil {
		return
	}
	mw.primary.Drawing().SetDrawings(file.Restore(mw.primary.Coords()))
	mw.state.Emit(app.EventAnnotationsLoaded, file)
	log.WithField("count", len(file.Drawings)).Info("annotations restored")
}

// saveAnnotations persists the drawing list after each mutation.
func (mw *MainWindow) saveAnnotations(list []*drawing.Drawing) {
	if mw.state.AnnotationsPath == "" {
		return
	}
	file := app.NewAnnotationFile("")
	file.SetDrawings(list)
	if err := file.Save(mw.state.AnnotationsPath); err != nil {
		log.WithError(err).Warn("failed to save annotations")
		return
	}
	mw.state.SetModified(false)
	mw.state.Emit(app.EventAnnotationsSaved, mw.state.AnnotationsPath)
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func modeLabel(m crosshair.Mode) string {
	return "Mode: " + m.String()
}
