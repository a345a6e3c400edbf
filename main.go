// Package main provides the entry point for the Chart Annotator
// application: two linked chart views with crosshair and drawing
// overlays on generated OHLCV data.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"chart-annotator/internal/app"
	"chart-annotator/internal/config"
	"chart-annotator/internal/series"
	"chart-annotator/internal/version"
	"chart-annotator/ui/mainwindow"
	"chart-annotator/ui/prefs"
)

func main() {
	configPath := flag.String("config", "chart-annotator.yaml", "engine options file")
	annotations := flag.String("annotations", "annotations.chann", "annotation file")
	bars := flag.Int("bars", 180, "number of generated bars")
	seed := flag.Int64("seed", 42, "random walk seed")
	verbose := flag.Bool("v", false, "debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	setupLogging(*verbose)
	logrus.WithField("version", version.Version).Info("starting chart annotator")

	opts, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Warn("config load failed, using defaults")
	}

	state := app.NewState(opts)
	state.AnnotationsPath = *annotations
	state.SetSeries(series.New(series.Generate(*bars, 100, *seed)))

	appPrefs := prefs.Load()

	fyneApp := fyneapp.New()
	win := mainwindow.New(fyneApp, state, appPrefs)
	win.ShowAndRun()
}

// setupLogging sends logs to a rotating file and, with -v, to stderr.
func setupLogging(verbose bool) {
	logDir, err := os.UserCacheDir()
	if err != nil {
		logDir = "."
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "chart-annotator", "annotator.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
	} else {
		logrus.SetOutput(rotator)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
