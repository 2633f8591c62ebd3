package render

import (
	"image"
	"math"

	"github.com/milk9111/tmxviewer/tmx"
)

// Orthogonal renders square grids.
type Orthogonal struct {
	m *tmx.Map
}

func NewOrthogonal(m *tmx.Map) *Orthogonal {
	return &Orthogonal{m: m}
}

func (r *Orthogonal) MapSize() image.Point {
	return image.Pt(r.m.Width()*r.m.TileWidth(), r.m.Height()*r.m.TileHeight())
}

func (r *Orthogonal) TileToScreen(x, y int) image.Point {
	return image.Pt(x*r.m.TileWidth(), y*r.m.TileHeight())
}

func (r *Orthogonal) ScreenToTile(px, py float64) image.Point {
	return image.Pt(
		int(math.Floor(px/float64(r.m.TileWidth()))),
		int(math.Floor(py/float64(r.m.TileHeight()))),
	)
}

func (r *Orthogonal) PaintTileLayer(s Surface, l *tmx.TileLayer) {
	clip := s.Clip()
	if clip.Empty() {
		return
	}
	tw, th := r.m.TileWidth(), r.m.TileHeight()
	maxW, maxH := r.m.MaxTileSize()
	ox, oy := l.Offset()

	// oversized tiles reach right and up out of their cell, so cells left of
	// and below the clip can still land inside it
	local := layerClip(s, l)
	start := r.ScreenToTile(float64(local.Min.X), float64(local.Min.Y))
	end := r.ScreenToTile(float64(local.Max.X-1), float64(local.Max.Y-1))
	tr := tileRange{
		minX: clampInt(start.X-overhang(maxW, tw)-1, 0, r.m.Width()-1),
		minY: clampInt(start.Y-1, 0, r.m.Height()-1),
		maxX: clampInt(end.X+1, 0, r.m.Width()-1),
		maxY: clampInt(end.Y+overhang(maxH, th)+1, 0, r.m.Height()-1),
	}
	if tr.empty() {
		return
	}

	xs := span(tr.minX, tr.maxX, r.m.RenderOrder() == tmx.LeftDown || r.m.RenderOrder() == tmx.LeftUp)
	ys := span(tr.minY, tr.maxY, r.m.RenderOrder() == tmx.RightUp || r.m.RenderOrder() == tmx.LeftUp)
	for _, y := range ys {
		for _, x := range xs {
			cell := l.CellAt(x, y)
			if cell.Empty() {
				continue
			}
			dst := tileDst(cell.Tile, float64(x*tw)+ox, float64((y+1)*th)+oy)
			if dst.Overlaps(clip) {
				s.DrawTile(cell, dst)
			}
		}
	}
}

func (r *Orthogonal) PaintObjectGroup(s Surface, g *tmx.ObjectGroup) {
	paintObjects(s, g)
}

// span lists lo..hi inclusive, reversed when desc is set.
func span(lo, hi int, desc bool) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	if desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
