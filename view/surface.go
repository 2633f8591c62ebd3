package view

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/tmxviewer/tmx"
)

// default object colour when a group sets none
var objectGrey = color.NRGBA{R: 0xa0, G: 0xa0, B: 0xa4, A: 0xff}

// ImageSurface paints render commands onto an ebiten image. Map pixel
// view.Min lands on the top-left pixel of dst.
type ImageSurface struct {
	dst    *ebiten.Image
	view   image.Rectangle
	images *TileImages
	face   ebtext.Face

	opacity  float32
	objColor color.Color
}

func NewImageSurface(dst *ebiten.Image, view image.Rectangle, images *TileImages, face ebtext.Face) *ImageSurface {
	return &ImageSurface{
		dst:      dst,
		view:     view,
		images:   images,
		face:     face,
		opacity:  1,
		objColor: objectGrey,
	}
}

func (s *ImageSurface) Clip() image.Rectangle { return s.view }

// BeginLayer picks up the opacity and object colour of the next layer.
func (s *ImageSurface) BeginLayer(l tmx.Layer) {
	s.opacity = float32(l.Opacity())
	s.objColor = objectGrey
	if g, ok := l.(*tmx.ObjectGroup); ok {
		if c, ok := g.Color(); ok {
			s.objColor = c
		}
	}
}

func (s *ImageSurface) DrawTile(cell tmx.Cell, dst image.Rectangle) {
	img := s.images.Tile(cell.Tile)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = flipGeoM(cell.Flip, img.Bounds().Size(), dst.Size())
	op.GeoM.Translate(float64(dst.Min.X-s.view.Min.X), float64(dst.Min.Y-s.view.Min.Y))
	op.ColorScale.ScaleAlpha(s.opacity)
	op.Filter = ebiten.FilterNearest
	s.dst.DrawImage(img, op)
}

// flipGeoM maps a src-sized image onto a dst-sized box at the origin,
// applying the diagonal flip first and then the horizontal and vertical ones.
func flipGeoM(f tmx.Flip, src, dst image.Point) ebiten.GeoM {
	var g ebiten.GeoM
	w, h := float64(src.X), float64(src.Y)
	if f&tmx.FlipDiagonal != 0 {
		g.SetElement(0, 0, 0)
		g.SetElement(0, 1, 1)
		g.SetElement(1, 0, 1)
		g.SetElement(1, 1, 0)
		w, h = h, w
	}
	if f&tmx.FlipHorizontal != 0 {
		g.Scale(-1, 1)
		g.Translate(w, 0)
	}
	if f&tmx.FlipVertical != 0 {
		g.Scale(1, -1)
		g.Translate(0, h)
	}
	if w > 0 && h > 0 {
		g.Scale(float64(dst.X)/w, float64(dst.Y)/h)
	}
	return g
}

func (s *ImageSurface) DrawObject(obj *tmx.Object, dst image.Rectangle, pts []image.Point) {
	clr := s.color()
	at := func(p image.Point) (float32, float32) {
		return float32(p.X - s.view.Min.X), float32(p.Y - s.view.Min.Y)
	}
	x, y := at(dst.Min)
	w, h := float32(dst.Dx()), float32(dst.Dy())

	switch obj.Shape() {
	case tmx.ShapePolygon, tmx.ShapePolyline:
		n := len(pts)
		last := n - 1
		if obj.Shape() == tmx.ShapePolygon {
			last = n
		}
		for i := 0; i < last; i++ {
			x0, y0 := at(pts[i])
			x1, y1 := at(pts[(i+1)%n])
			vector.StrokeLine(s.dst, x0, y0, x1, y1, 1, clr, true)
		}
	case tmx.ShapeEllipse:
		s.strokeEllipse(x+w/2, y+h/2, w/2, h/2, clr)
	case tmx.ShapePoint:
		vector.StrokeCircle(s.dst, x, y, 3, 1, clr, true)
	case tmx.ShapeText:
		if s.face != nil {
			op := &ebtext.DrawOptions{}
			op.GeoM.Translate(float64(x), float64(y))
			op.ColorScale.ScaleWithColor(clr)
			ebtext.Draw(s.dst, obj.Text(), s.face, op)
		}
	default:
		if w == 0 && h == 0 {
			vector.StrokeCircle(s.dst, x, y, 3, 1, clr, true)
			return
		}
		vector.StrokeRect(s.dst, x, y, w, h, 1, clr, false)
	}
}

func (s *ImageSurface) strokeEllipse(cx, cy, rx, ry float32, clr color.Color) {
	const segments = 32
	px, py := cx+rx, cy
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		nx := cx + rx*float32(math.Cos(a))
		ny := cy + ry*float32(math.Sin(a))
		vector.StrokeLine(s.dst, px, py, nx, ny, 1, clr, true)
		px, py = nx, ny
	}
}

func (s *ImageSurface) color() color.Color {
	r, g, b, a := s.objColor.RGBA()
	k := float64(s.opacity)
	return color.RGBA64{
		R: uint16(float64(r) * k),
		G: uint16(float64(g) * k),
		B: uint16(float64(b) * k),
		A: uint16(float64(a) * k),
	}
}
