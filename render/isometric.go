package render

import (
	"image"
	"math"

	"github.com/milk9111/tmxviewer/tmx"
)

// Isometric renders diamond-projected maps. Tile 0,0 sits at the top corner
// of the map; x grows down-right and y grows down-left.
type Isometric struct {
	m *tmx.Map
}

func NewIsometric(m *tmx.Map) *Isometric {
	return &Isometric{m: m}
}

func (r *Isometric) MapSize() image.Point {
	span := r.m.Width() + r.m.Height()
	return image.Pt(span*r.m.TileWidth()/2, span*r.m.TileHeight()/2)
}

func (r *Isometric) originX() int {
	return r.m.Height() * r.m.TileWidth() / 2
}

func (r *Isometric) TileToScreen(x, y int) image.Point {
	tw, th := r.m.TileWidth(), r.m.TileHeight()
	return image.Pt((x-y)*tw/2+r.originX(), (x+y)*th/2)
}

func (r *Isometric) ScreenToTile(px, py float64) image.Point {
	tw, th := float64(r.m.TileWidth()), float64(r.m.TileHeight())
	px -= float64(r.originX())
	my := py / th
	mx := px / tw
	return image.Pt(int(math.Floor(my+mx)), int(math.Floor(my-mx)))
}

func (r *Isometric) PaintTileLayer(s Surface, l *tmx.TileLayer) {
	clip := s.Clip()
	if clip.Empty() {
		return
	}
	tw, th := r.m.TileWidth(), r.m.TileHeight()
	maxW, maxH := r.m.MaxTileSize()
	ox, oy := l.Offset()

	// grow the clip by the largest tile so overhanging tiles are not culled
	local := layerClip(s, l)
	local.Min.X -= maxW
	local.Max.X += maxW
	local.Max.Y += maxH
	tr := cornerRange(r, local, 1, r.m.Width(), r.m.Height())
	if tr.empty() {
		return
	}

	// row by row, left to right, keeps nearer tiles on top
	for y := tr.minY; y <= tr.maxY; y++ {
		for x := tr.minX; x <= tr.maxX; x++ {
			cell := l.CellAt(x, y)
			if cell.Empty() {
				continue
			}
			top := r.TileToScreen(x, y)
			dst := tileDst(cell.Tile, float64(top.X-tw/2)+ox, float64(top.Y+th)+oy)
			if dst.Overlaps(clip) {
				s.DrawTile(cell, dst)
			}
		}
	}
}

func (r *Isometric) PaintObjectGroup(s Surface, g *tmx.ObjectGroup) {
	paintObjects(s, g)
}
