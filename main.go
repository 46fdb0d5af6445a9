// Package main provides the entry point for the LiquifyLab application.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/jaysonragasa/liquifylab/internal/app"
	"github.com/jaysonragasa/liquifylab/internal/config"
	"github.com/jaysonragasa/liquifylab/internal/session"
	"github.com/jaysonragasa/liquifylab/internal/version"
	"github.com/jaysonragasa/liquifylab/ui/mainwindow"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", version.AppName, version.Version)

	conf, err := config.Load()
	if err != nil {
		log.Printf("Config: using defaults: %v", err)
	}

	fyneApp := fyneapp.NewWithID("com.jaysonragasa.liquifylab")
	sess := session.New(conf.HistorySteps, uint64(time.Now().UnixNano()))

	win := mainwindow.New(fyneApp, sess, conf)

	// Open a project or image given on the command line.
	if len(os.Args) > 1 {
		path := os.Args[1]
		var loadErr error
		if filepath.Ext(path) == ".liquify" {
			loadErr = sess.LoadProject(path)
		} else {
			loadErr = sess.AddLayerFromFile(path)
		}
		if loadErr != nil {
			log.Printf("Failed to open %s: %v", path, loadErr)
		}
	}

	setupHotReload(win, sess, conf)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary
// is recompiled, and uses the watcher tick for periodic autosave.
func setupHotReload(win *mainwindow.MainWindow, sess *session.Session, conf config.Config) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		if conf.AutosaveOnExit && sess.Modified() && sess.ProjectPath() != "" {
			if err := sess.SaveProject(sess.ProjectPath()); err != nil {
				log.Printf("Autosave failed: %v", err)
			}
		}
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if restart {
					if sess.Modified() && sess.ProjectPath() != "" {
						if err := sess.SaveProject(sess.ProjectPath()); err != nil {
							log.Printf("Save before restart failed: %v", err)
						}
					}
					log.Println("Hot reload: restarting...")
					if err := reloader.Restart(); err != nil {
						log.Printf("Hot reload: restart failed: %v", err)
					}
				} else {
					reloader.ResetBaseline()
					reloader.Start()
				}
			}, win.Window)
	})

	reloader.Start()
}
