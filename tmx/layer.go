package tmx

import (
	"image"
	"image/color"
)

// Layer is a tile layer or an object group. Group layers are flattened by the
// reader, so a Map only ever holds these two kinds.
type Layer interface {
	Name() string
	Visible() bool
	Opacity() float64
	// Offset returns the pixel offset accumulated from the layer and every
	// enclosing group.
	Offset() (float64, float64)
	Properties() Properties

	isLayer()
}

type layerBase struct {
	id         int
	name       string
	visible    bool
	opacity    float64
	offsetX    float64
	offsetY    float64
	properties Properties
}

func (l *layerBase) ID() int                    { return l.id }
func (l *layerBase) Name() string               { return l.name }
func (l *layerBase) Visible() bool              { return l.visible }
func (l *layerBase) Opacity() float64           { return l.opacity }
func (l *layerBase) Offset() (float64, float64) { return l.offsetX, l.offsetY }
func (l *layerBase) Properties() Properties     { return l.properties }
func (l *layerBase) isLayer()                   {}

// Flip holds the flip flags stored in the top bits of a gid.
type Flip uint8

const (
	FlipHorizontal Flip = 1 << iota
	FlipVertical
	FlipDiagonal
)

const (
	gidFlipHorizontal uint32 = 0x80000000
	gidFlipVertical   uint32 = 0x40000000
	gidFlipDiagonal   uint32 = 0x20000000
	gidRotatedHex120  uint32 = 0x10000000

	flipMask = gidFlipHorizontal | gidFlipVertical | gidFlipDiagonal | gidRotatedHex120
)

func flipFromGID(gid uint32) Flip {
	var f Flip
	if gid&gidFlipHorizontal != 0 {
		f |= FlipHorizontal
	}
	if gid&gidFlipVertical != 0 {
		f |= FlipVertical
	}
	if gid&gidFlipDiagonal != 0 {
		f |= FlipDiagonal
	}
	return f
}

// Cell is one grid position of a tile layer.
type Cell struct {
	Tile *Tile
	Flip Flip
}

// Empty reports whether the cell holds no tile.
func (c Cell) Empty() bool { return c.Tile == nil }

// TileLayer is a grid of cells the same size as its map.
type TileLayer struct {
	layerBase
	width  int
	height int
	cells  []Cell
}

// Bounds returns the layer extent in tiles.
func (l *TileLayer) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.width, l.height)
}

// CellAt returns the cell at x,y; out-of-range positions yield an empty cell.
func (l *TileLayer) CellAt(x, y int) Cell {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return Cell{}
	}
	return l.cells[y*l.width+x]
}

// TileAt returns the tile at x,y or nil when the cell is empty or out of range.
func (l *TileLayer) TileAt(x, y int) *Tile {
	return l.CellAt(x, y).Tile
}

// ObjectGroup is a layer of freely positioned objects.
type ObjectGroup struct {
	layerBase
	color     *color.NRGBA
	drawOrder string
	objects   []*Object
}

// Color returns the display colour of the group, if set.
func (g *ObjectGroup) Color() (color.NRGBA, bool) {
	if g.color == nil {
		return color.NRGBA{}, false
	}
	return *g.color, true
}

// DrawOrder is "topdown" (default) or "index".
func (g *ObjectGroup) DrawOrder() string { return g.drawOrder }

func (g *ObjectGroup) Objects() []*Object {
	out := make([]*Object, len(g.objects))
	copy(out, g.objects)
	return out
}

// Shape is the geometry of an object.
type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeEllipse
	ShapePoint
	ShapePolygon
	ShapePolyline
	ShapeText
)

// Point is an object vertex relative to the object position.
type Point struct {
	X, Y float64
}

// Object is a free-form positioned map object.
type Object struct {
	id         int
	name       string
	typ        string
	x, y       float64
	width      float64
	height     float64
	rotation   float64
	visible    bool
	shape      Shape
	points     []Point
	text       string
	cell       Cell
	properties Properties
}

func (o *Object) ID() int                      { return o.id }
func (o *Object) Name() string                 { return o.name }
func (o *Object) Type() string                 { return o.typ }
func (o *Object) Position() (float64, float64) { return o.x, o.y }
func (o *Object) Size() (float64, float64)     { return o.width, o.height }
func (o *Object) Rotation() float64            { return o.rotation }
func (o *Object) Visible() bool                { return o.visible }
func (o *Object) Shape() Shape                 { return o.shape }
func (o *Object) Text() string                 { return o.text }
func (o *Object) Properties() Properties       { return o.properties }

// Points returns polygon/polyline vertices relative to Position.
func (o *Object) Points() []Point {
	out := make([]Point, len(o.points))
	copy(out, o.points)
	return out
}

// Cell returns the tile of a tile object; the cell is empty for shapes.
func (o *Object) Cell() Cell { return o.cell }
