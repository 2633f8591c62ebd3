// Command tileset previews the tile-sets of a TMX map, every tile laid out
// in a grid in local id order.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/tmxviewer/levels"
	"github.com/milk9111/tmxviewer/tmx"
	"github.com/milk9111/tmxviewer/view"
)

const (
	pad     = 4
	labelH  = 16
	maxCols = 8
)

// cell is one tile placed in the preview sheet.
type cell struct {
	tile *tmx.Tile
	at   image.Rectangle
}

type preview struct {
	images  *view.TileImages
	face    ebtext.Face
	cells   []cell
	names   []string
	headers []image.Point
	size    image.Point
}

// layout places the tiles of every tile-set in rows of at most maxCols,
// each tile-set starting on a new row under its name.
func layout(sets []*tmx.Tileset) ([]cell, []image.Point, image.Point) {
	var cells []cell
	var headers []image.Point
	y := pad
	width := 0
	for _, ts := range sets {
		headers = append(headers, image.Pt(pad, y))
		y += labelH
		x := pad
		rowH := 0
		col := 0
		for _, t := range ts.Tiles() {
			if col == maxCols {
				col = 0
				x = pad
				y += rowH + pad
				rowH = 0
			}
			r := image.Rect(x, y, x+t.Width(), y+t.Height())
			cells = append(cells, cell{tile: t, at: r})
			x = r.Max.X + pad
			rowH = max(rowH, t.Height())
			width = max(width, x)
			col++
		}
		y += rowH + pad
	}
	return cells, headers, image.Pt(max(width, 160), y)
}

func (p *preview) Update() error { return nil }

func (p *preview) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x30, 0x30, 0x30, 0xff})
	for _, c := range p.cells {
		img := p.images.Tile(c.tile)
		op := &ebiten.DrawImageOptions{}
		b := img.Bounds()
		op.GeoM.Scale(float64(c.at.Dx())/float64(b.Dx()), float64(c.at.Dy())/float64(b.Dy()))
		op.GeoM.Translate(float64(c.at.Min.X), float64(c.at.Min.Y))
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(img, op)
	}
	for i, at := range p.headers {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(float64(at.X), float64(at.Y))
		op.ColorScale.ScaleWithColor(color.White)
		ebtext.Draw(screen, p.names[i], p.face, op)
	}
}

func (p *preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.size.X, p.size.Y
}

func main() {
	cacheSize := flag.Int("cache", 1024, "tile image cache size")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: tileset [flags] map.tmx")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	m, err := levels.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	sets := m.Tilesets()
	if len(sets) == 0 {
		log.Fatalf("%s has no tile-sets", flag.Arg(0))
	}

	cells, headers, size := layout(sets)
	names := make([]string, len(sets))
	for i, ts := range sets {
		names[i] = fmt.Sprintf("%s (first gid %d, %d tiles)", ts.Name(), ts.FirstGID(), ts.TileCount())
	}
	g := &preview{
		images:  view.NewTileImages(m, *cacheSize),
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
		cells:   cells,
		names:   names,
		headers: headers,
		size:    size,
	}

	ebiten.SetWindowSize(size.X, size.Y)
	ebiten.SetWindowTitle("Tile-sets of " + flag.Arg(0))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
