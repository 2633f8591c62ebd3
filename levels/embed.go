// Package levels bundles the sample map so the viewer has something to show
// when started without one on disk.
package levels

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/tmxviewer/tmx"
)

//go:embed *.tmx *.png
var LevelsFS embed.FS

// Load reads the map at name from disk. When no such file exists and name
// matches a bundled map, the bundled copy is read instead.
func Load(name string) (*tmx.Map, error) {
	m, err := tmx.ReadMap(name)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return m, err
	}
	// only the map itself may fall back; a missing tile-set is a real error
	if _, statErr := os.Stat(name); !errors.Is(statErr, fs.ErrNotExist) {
		return nil, err
	}
	clean := cleanLevelPath(name)
	if _, statErr := fs.Stat(LevelsFS, clean); statErr != nil {
		return nil, err
	}
	return tmx.ReadMapFS(LevelsFS, clean)
}

// Bundled reports whether name would be served from the bundled maps.
func Bundled(name string) bool {
	if _, err := os.Stat(name); err == nil {
		return false
	}
	_, err := fs.Stat(LevelsFS, cleanLevelPath(name))
	return err == nil
}

func cleanLevelPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		return after
	}
	return s
}
