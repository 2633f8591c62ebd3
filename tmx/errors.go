package tmx

import (
	"errors"
	"fmt"
)

var errNoSource = errors.New("map was not read from a file system")

// IOError reports a map or tile-set file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tmx: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports malformed or unsupported map content.
type ParseError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	if e.Err != nil {
		return fmt.Sprintf("tmx: parse %s: %s: %v", path, e.Msg, e.Err)
	}
	return fmt.Sprintf("tmx: parse %s: %s", path, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
