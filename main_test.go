package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milk9111/tmxviewer/tmx"
)

func TestRunReportOnly(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantCode int
		stdout   []string
		stderr   string
	}{
		{
			name:     "report",
			args:     []string{"-no-window", "tmx/testdata/ortho.tmx"},
			wantCode: 0,
			stdout:   []string{"Map[4x3x3][16x16] loaded\n", "map width = 4\n", "type of the tile at (0,0) on layer 0 = grass\n"},
		},
		{
			name:     "french",
			args:     []string{"-no-window", "-locale", "fr", "tmx/testdata/ortho.tmx"},
			wantCode: 0,
			stdout:   []string{"largeur de la map = 4\n"},
		},
		{
			// no window is opened: the error is printed and the run ends normally
			name:     "missing_map",
			args:     []string{"testdata/does-not-exist.tmx"},
			wantCode: 0,
			stdout:   []string{"Error while reading the map:\n", "does-not-exist.tmx"},
		},
		{
			name:     "missing_tileset",
			args:     []string{"tmx/testdata/missing_tileset.tmx"},
			wantCode: 0,
			stdout:   []string{"Error while reading the map:\n", "nowhere.tsx"},
		},
		{
			name:     "bad_flag",
			args:     []string{"-frobnicate"},
			wantCode: 1,
			stderr:   "flag provided but not defined",
		},
		{
			name:     "bad_locale",
			args:     []string{"-locale", "xx", "tmx/testdata/ortho.tmx"},
			wantCode: 1,
			stderr:   "unknown locale",
		},
		{
			name:     "help",
			args:     []string{"-h"},
			wantCode: 0,
			stderr:   "usage: tmxviewer",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(c.args, &stdout, &stderr); code != c.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, c.wantCode, stderr.String())
			}
			for _, s := range c.stdout {
				if !strings.Contains(stdout.String(), s) {
					t.Fatalf("stdout %q does not contain %q", stdout.String(), s)
				}
			}
			if !strings.Contains(stderr.String(), c.stderr) {
				t.Fatalf("stderr %q does not contain %q", stderr.String(), c.stderr)
			}
		})
	}
}

func TestWatchDirs(t *testing.T) {
	m, err := tmx.ReadMap("tmx/testdata/external.tmx")
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}
	// the image directory does not exist and is left out
	dirs := watchDirs(m)
	if len(dirs) != 1 || dirs[0] != filepath.Join("tmx", "testdata", "tilesets") {
		t.Fatalf("watchDirs = %v", dirs)
	}
}
