package render

import (
	"image"
	"sort"

	"github.com/milk9111/tmxviewer/tmx"
)

// paintObjects draws the objects of g at their stored pixel positions. The
// grid projection is not applied, only the layer offset.
func paintObjects(s Surface, g *tmx.ObjectGroup) {
	clip := s.Clip()
	ox, oy := g.Offset()

	objs := g.Objects()
	if g.DrawOrder() != "index" {
		sort.SliceStable(objs, func(i, j int) bool {
			_, yi := objs[i].Position()
			_, yj := objs[j].Position()
			return yi < yj
		})
	}

	for _, o := range objs {
		if !o.Visible() {
			continue
		}
		x, y := o.Position()
		x += ox
		y += oy
		w, h := o.Size()

		if cell := o.Cell(); !cell.Empty() {
			// tile objects are anchored at their bottom-left corner
			dst := image.Rect(floor(x), floor(y-h), ceil(x+w), ceil(y))
			if dst.Overlaps(clip) {
				s.DrawTile(cell, dst)
			}
			continue
		}

		var dst image.Rectangle
		var pts []image.Point
		switch o.Shape() {
		case tmx.ShapePolygon, tmx.ShapePolyline:
			for _, p := range o.Points() {
				pts = append(pts, image.Pt(floor(x+p.X), floor(y+p.Y)))
			}
			dst = bounds(pts)
		case tmx.ShapePoint:
			dst = image.Rect(floor(x), floor(y), floor(x), floor(y))
		default:
			dst = image.Rect(floor(x), floor(y), ceil(x+w), ceil(y+h))
		}
		// grow by a pixel so zero-sized points and lines still hit the clip
		if !dst.Inset(-1).Overlaps(clip) {
			continue
		}
		s.DrawObject(o, dst, pts)
	}
}

func bounds(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
