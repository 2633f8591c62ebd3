// Package render projects TMX map layers into screen-space drawing commands.
//
// A Renderer never draws pixels itself. It works out where each tile and
// object goes and hands that to a Surface, which owns the actual images.
// All coordinates are map pixels with the origin at the top-left of the
// rendered map; scrolling is the Surface's concern.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/milk9111/tmxviewer/tmx"
)

// ErrUnsupportedOrientation is returned by New for orientations without a renderer.
var ErrUnsupportedOrientation = errors.New("render: unsupported orientation")

// Surface receives drawing commands.
type Surface interface {
	// Clip is the region that needs painting, in map pixels.
	Clip() image.Rectangle
	// DrawTile draws the cell's tile scaled into dst.
	DrawTile(cell tmx.Cell, dst image.Rectangle)
	// DrawObject draws a shape object. points holds absolute vertices for
	// polygons and polylines and is nil otherwise.
	DrawObject(obj *tmx.Object, dst image.Rectangle, points []image.Point)
}

// LayerSurface is implemented by surfaces that need to know which layer is
// being painted, e.g. to apply its opacity.
type LayerSurface interface {
	Surface
	BeginLayer(l tmx.Layer)
}

// Renderer paints a map for one orientation.
type Renderer interface {
	PaintTileLayer(s Surface, layer *tmx.TileLayer)
	PaintObjectGroup(s Surface, group *tmx.ObjectGroup)
	// MapSize is the pixel size of the whole rendered map.
	MapSize() image.Point
	// TileToScreen returns the top-left of the bounding box of tile x,y
	// (the top corner of the diamond for isometric maps).
	TileToScreen(x, y int) image.Point
	// ScreenToTile returns the tile containing the pixel px,py. The result
	// may lie outside the map.
	ScreenToTile(px, py float64) image.Point
}

// New picks the renderer for the map's orientation.
func New(m *tmx.Map) (Renderer, error) {
	switch m.Orientation() {
	case tmx.Orthogonal:
		return NewOrthogonal(m), nil
	case tmx.Isometric:
		return NewIsometric(m), nil
	case tmx.Hexagonal:
		return NewHexagonal(m), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOrientation, m.Orientation())
}

// PaintMap paints every visible layer of m bottom to top.
func PaintMap(r Renderer, s Surface, m *tmx.Map) {
	ls, _ := s.(LayerSurface)
	for _, l := range m.Layers() {
		if !l.Visible() {
			continue
		}
		if ls != nil {
			ls.BeginLayer(l)
		}
		switch l := l.(type) {
		case *tmx.TileLayer:
			r.PaintTileLayer(s, l)
		case *tmx.ObjectGroup:
			r.PaintObjectGroup(s, l)
		}
	}
}

// tileDst places a tile image whose cell has its bottom-left corner at
// left,bottom. Tiles taller or wider than the grid grow up and to the right.
func tileDst(t *tmx.Tile, left, bottom float64) image.Rectangle {
	ox, oy := t.Tileset().TileOffset()
	x := floor(left + float64(ox))
	y := floor(bottom - float64(t.Height()) + float64(oy))
	return image.Rect(x, y, x+t.Width(), y+t.Height())
}

func floor(v float64) int { return int(math.Floor(v)) }

func ceil(v float64) int { return int(math.Ceil(v)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// overhang returns how many extra cells a tile of size tile can reach beyond
// a grid cell of size cell.
func overhang(tile, cell int) int {
	if tile <= cell || cell <= 0 {
		return 0
	}
	return ceil(float64(tile-cell) / float64(cell))
}

// tileRange is an inclusive range of tile coordinates.
type tileRange struct {
	minX, minY, maxX, maxY int
}

func (tr tileRange) empty() bool { return tr.minX > tr.maxX || tr.minY > tr.maxY }

// cornerRange converts the corners of a pixel rectangle to tiles and returns
// the bounding range, grown by pad tiles and clamped to the map.
func cornerRange(r Renderer, rect image.Rectangle, pad, w, h int) tileRange {
	corners := [4][2]float64{
		{float64(rect.Min.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Min.Y)},
		{float64(rect.Min.X), float64(rect.Max.Y)},
		{float64(rect.Max.X), float64(rect.Max.Y)},
	}
	tr := tileRange{minX: math.MaxInt, minY: math.MaxInt, maxX: math.MinInt, maxY: math.MinInt}
	for _, c := range corners {
		p := r.ScreenToTile(c[0], c[1])
		tr.minX = min(tr.minX, p.X)
		tr.minY = min(tr.minY, p.Y)
		tr.maxX = max(tr.maxX, p.X)
		tr.maxY = max(tr.maxY, p.Y)
	}
	tr.minX = clampInt(tr.minX-pad, 0, w-1)
	tr.minY = clampInt(tr.minY-pad, 0, h-1)
	tr.maxX = clampInt(tr.maxX+pad, 0, w-1)
	tr.maxY = clampInt(tr.maxY+pad, 0, h-1)
	return tr
}

// layerClip moves the surface clip into the layer's unshifted coordinates.
func layerClip(s Surface, l tmx.Layer) image.Rectangle {
	ox, oy := l.Offset()
	return s.Clip().Sub(image.Pt(floor(ox), floor(oy)))
}
