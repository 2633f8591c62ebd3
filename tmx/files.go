package tmx

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// files resolves and reads the map file and everything it references.
// Paths handed out by resolve are valid arguments to ReadFile.
type files interface {
	ReadFile(name string) ([]byte, error)
	resolve(base, ref string) string
}

type osFiles struct{}

func (osFiles) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osFiles) resolve(base, ref string) string {
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

type fsFiles struct {
	fsys fs.FS
}

func (f fsFiles) ReadFile(name string) ([]byte, error) { return fs.ReadFile(f.fsys, name) }

// resolve treats an absolute ref as rooted at the top of the file system.
func (fsFiles) resolve(base, ref string) string {
	if ref == "" {
		return ref
	}
	if path.IsAbs(ref) {
		return path.Clean(ref[1:])
	}
	return path.Join(path.Dir(base), ref)
}
