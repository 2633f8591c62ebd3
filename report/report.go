// Package report prints the console summary of a loaded map.
package report

import (
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/term"

	"github.com/milk9111/tmxviewer/tmx"
)

//go:embed locales/*.po
var localeFS embed.FS

type Options struct {
	Locale string
	// Color highlights values with ANSI colours.
	Color bool
}

// ColorOutput reports whether f is a terminal worth colouring.
func ColorOutput(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes report lines in one language.
type Printer struct {
	w     io.Writer
	po    *gotext.Po
	color bool
}

func NewPrinter(w io.Writer, opts Options) (*Printer, error) {
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}
	b, err := localeFS.ReadFile("locales/" + locale + ".po")
	if err != nil {
		return nil, fmt.Errorf("report: unknown locale %q: %w", locale, err)
	}
	po := gotext.NewPo()
	po.Parse(b)
	return &Printer{w: w, po: po, color: opts.Color}, nil
}

func (p *Printer) value(v any) string {
	s := fmt.Sprint(v)
	if p.color {
		return color.Cyan.Sprint(s)
	}
	return s
}

func (p *Printer) line(key string, v any) {
	fmt.Fprintf(p.w, "%s = %s\n", p.po.Get(key), p.value(v))
}

// Map prints the map attributes and the attributes of the tile at (0,0) on
// the first layer.
func (p *Printer) Map(m *tmx.Map) {
	name := m.String()
	if p.color {
		name = color.Bold.Sprint(name)
	}
	fmt.Fprintln(p.w, p.po.Get("MAP_LOADED", name))

	p.line("MAP_WIDTH", m.Width())
	p.line("MAP_HEIGHT", m.Height())
	p.line("MAP_TILE_WIDTH", m.TileWidth())
	p.line("MAP_TILE_HEIGHT", m.TileHeight())
	p.line("MAP_LAYER_COUNT", m.LayerCount())

	var tile *tmx.Tile
	if l, ok := m.Layer(0).(*tmx.TileLayer); ok {
		tile = l.TileAt(0, 0)
	}
	if tile == nil {
		fmt.Fprintln(p.w, p.po.Get("NO_TILE"))
		return
	}
	p.line("TILE_ID", tile.ID())
	p.line("TILE_HEIGHT", tile.Height())
	p.line("TILE_WIDTH", tile.Width())
	p.line("TILE_PROBABILITY", tile.Probability())
	p.line("TILE_SOURCE", tile.Source())
	p.line("TILE_TERRAIN", tile.Terrain())
	p.line("TILE_TYPE", tile.Type())
}

// LoadError prints a failed load the way the viewer reports it before
// exiting.
func (p *Printer) LoadError(err error) {
	fmt.Fprintln(p.w, p.po.Get("LOAD_ERROR"))
	msg := err.Error()
	if p.color {
		msg = color.Red.Sprint(msg)
	}
	fmt.Fprintln(p.w, msg)
}
