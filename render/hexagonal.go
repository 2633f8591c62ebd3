package render

import (
	"image"
	"math"

	"github.com/milk9111/tmxviewer/tmx"
)

// Hexagonal renders staggered hexagon grids. Every other row (stagger axis y)
// or column (stagger axis x) is shifted by half a hexagon.
type Hexagonal struct {
	m *tmx.Map

	tileW, tileH       int
	staggerX, even     bool
	sideLenX, sideLenY int
	sideOffX, sideOffY int
	columnW, rowH      int
}

func NewHexagonal(m *tmx.Map) *Hexagonal {
	r := &Hexagonal{
		m:        m,
		tileW:    m.TileWidth() &^ 1,
		tileH:    m.TileHeight() &^ 1,
		staggerX: m.StaggerAxis() == tmx.StaggerX,
		even:     m.StaggerIndex() == tmx.StaggerEven,
	}
	if r.staggerX {
		r.sideLenX = m.HexSideLength()
	} else {
		r.sideLenY = m.HexSideLength()
	}
	r.sideOffX = (r.tileW - r.sideLenX) / 2
	r.sideOffY = (r.tileH - r.sideLenY) / 2
	r.columnW = r.sideOffX + r.sideLenX
	r.rowH = r.sideOffY + r.sideLenY
	return r
}

func (r *Hexagonal) staggered(i int) bool {
	return (i&1 == 1) != r.even
}

func (r *Hexagonal) MapSize() image.Point {
	w, h := r.m.Width(), r.m.Height()
	if r.staggerX {
		size := image.Pt(w*r.columnW+r.sideOffX, h*(r.tileH+r.sideLenY))
		if w > 1 {
			size.Y += r.rowH
		}
		return size
	}
	size := image.Pt(w*(r.tileW+r.sideLenX), h*r.rowH+r.sideOffY)
	if h > 1 {
		size.X += r.columnW
	}
	return size
}

func (r *Hexagonal) TileToScreen(x, y int) image.Point {
	if r.staggerX {
		py := y * (r.tileH + r.sideLenY)
		if r.staggered(x) {
			py += r.rowH
		}
		return image.Pt(x*r.columnW, py)
	}
	px := x * (r.tileW + r.sideLenX)
	if r.staggered(y) {
		px += r.columnW
	}
	return image.Pt(px, y*r.rowH)
}

func (r *Hexagonal) ScreenToTile(px, py float64) image.Point {
	if r.staggerX {
		if r.even {
			px -= float64(r.tileW)
		} else {
			px -= float64(r.sideOffX)
		}
	} else {
		if r.even {
			py -= float64(r.tileH)
		} else {
			py -= float64(r.sideOffY)
		}
	}

	cw, rh := float64(r.columnW), float64(r.rowH)
	refX := math.Floor(px / (cw * 2))
	refY := math.Floor(py / (rh * 2))
	relX := px - refX*cw*2
	relY := py - refY*rh*2

	ref := image.Pt(int(refX), int(refY))
	var centers [4][2]float64
	var offsets [4]image.Point
	if r.staggerX {
		ref.X *= 2
		if r.even {
			ref.X++
		}
		left := float64(r.sideLenX) / 2
		cx := left + cw
		cy := float64(r.tileH) / 2
		centers = [4][2]float64{{left, cy}, {cx, cy - rh}, {cx, cy + rh}, {cx + cw, cy}}
		offsets = [4]image.Point{{0, 0}, {1, -1}, {1, 0}, {2, 0}}
	} else {
		ref.Y *= 2
		if r.even {
			ref.Y++
		}
		top := float64(r.sideLenY) / 2
		cx := float64(r.tileW) / 2
		cy := top + rh
		centers = [4][2]float64{{cx, top}, {cx - cw, cy}, {cx + cw, cy}, {cx, cy + rh}}
		offsets = [4]image.Point{{0, 0}, {-1, 1}, {0, 1}, {0, 2}}
	}

	nearest := 0
	best := math.Inf(1)
	for i, c := range centers {
		dx, dy := c[0]-relX, c[1]-relY
		if d := dx*dx + dy*dy; d < best {
			best = d
			nearest = i
		}
	}
	return ref.Add(offsets[nearest])
}

func (r *Hexagonal) PaintTileLayer(s Surface, l *tmx.TileLayer) {
	clip := s.Clip()
	if clip.Empty() {
		return
	}
	maxW, maxH := r.m.MaxTileSize()
	ox, oy := l.Offset()

	local := layerClip(s, l)
	local.Min.X -= maxW
	local.Max.Y += maxH
	tr := cornerRange(r, local, 1, r.m.Width(), r.m.Height())
	if tr.empty() {
		return
	}

	draw := func(x, y int) {
		cell := l.CellAt(x, y)
		if cell.Empty() {
			return
		}
		p := r.TileToScreen(x, y)
		dst := tileDst(cell.Tile, float64(p.X)+ox, float64(p.Y+r.tileH)+oy)
		if dst.Overlaps(clip) {
			s.DrawTile(cell, dst)
		}
	}

	for y := tr.minY; y <= tr.maxY; y++ {
		if !r.staggerX {
			for x := tr.minX; x <= tr.maxX; x++ {
				draw(x, y)
			}
			continue
		}
		// shifted columns sit lower, so they go after the row's other columns
		for _, pass := range [2]bool{false, true} {
			for x := tr.minX; x <= tr.maxX; x++ {
				if r.staggered(x) == pass {
					draw(x, y)
				}
			}
		}
	}
}

func (r *Hexagonal) PaintObjectGroup(s Surface, g *tmx.ObjectGroup) {
	paintObjects(s, g)
}
