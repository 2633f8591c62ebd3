package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/milk9111/tmxviewer/config"
	"github.com/milk9111/tmxviewer/levels"
	"github.com/milk9111/tmxviewer/report"
	"github.com/milk9111/tmxviewer/tmx"
	"github.com/milk9111/tmxviewer/view"
	"github.com/milk9111/tmxviewer/watch"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := config.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	colored := false
	if f, ok := stdout.(*os.File); ok {
		colored = report.ColorOutput(f)
	}
	printer, err := report.NewPrinter(stdout, report.Options{Locale: opts.Locale, Color: colored})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	// a map that cannot be shown is reported and the viewer exits quietly
	m, err := levels.Load(opts.Map)
	if err != nil {
		printer.LoadError(err)
		return 0
	}
	printer.Map(m)
	if opts.NoWindow {
		return 0
	}

	v, err := view.New(m, view.Options{
		Width:      opts.Window.Width,
		Height:     opts.Window.Height,
		Background: opts.Background.Color,
		WheelSpeed: opts.Scroll.WheelSpeed,
		CacheSize:  opts.CacheSize,
		InfoBar:    opts.InfoBar,
		Debug:      opts.Debug,
	})
	if err != nil {
		printer.LoadError(err)
		return 0
	}

	if opts.Watch && levels.Bundled(opts.Map) {
		log.Printf("watch: %s is the bundled copy, not watching", opts.Map)
	} else if opts.Watch {
		w, err := watch.New(opts.Map, watchDirs(m)...)
		if err != nil {
			log.Printf("watch %s: %v", opts.Map, err)
		} else {
			defer w.Close()
			go func() {
				for err := range w.Errors {
					log.Printf("watch: %v", err)
				}
			}()
			v.Watch(w.Events, func() (*tmx.Map, error) {
				return tmx.ReadMap(opts.Map)
			})
			if opts.Debug {
				log.Printf("watching %s for changes", opts.Map)
			}
		}
	}

	if err := v.Run(opts.Window.Title); err != nil {
		log.Printf("viewer: %v", err)
		return 1
	}
	return 0
}

// watchDirs lists the directories of external tile-sets and tile images that
// m was built from.
func watchDirs(m *tmx.Map) []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(path string) {
		if path == "" {
			return
		}
		dir := filepath.Dir(path)
		if seen[dir] {
			return
		}
		seen[dir] = true
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	for _, ts := range m.Tilesets() {
		add(ts.Source())
		if img := ts.Image(); img != nil {
			add(img.Source)
		}
		for _, t := range ts.Tiles() {
			if img := t.Image(); img != nil {
				add(img.Source)
			}
		}
	}
	return dirs
}
