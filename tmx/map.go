// Package tmx reads Tiled TMX maps into an immutable in-memory model.
//
// A Map is fully populated by ReadMap / ReadMapFS / Decode and is never
// modified afterwards, so it can be shared between the loading goroutine and
// the render loop without locking.
package tmx

import (
	"fmt"
	"image/color"
	"sort"
)

// Orientation is the projection style of a map.
type Orientation int

const (
	Orthogonal Orientation = iota
	Isometric
	Staggered
	Hexagonal
)

func (o Orientation) String() string {
	switch o {
	case Orthogonal:
		return "orthogonal"
	case Isometric:
		return "isometric"
	case Staggered:
		return "staggered"
	case Hexagonal:
		return "hexagonal"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

func parseOrientation(s string) (Orientation, bool) {
	switch s {
	case "", "orthogonal":
		return Orthogonal, true
	case "isometric":
		return Isometric, true
	case "staggered":
		return Staggered, true
	case "hexagonal":
		return Hexagonal, true
	}
	return 0, false
}

// RenderOrder is the order in which tiles of a tile layer are drawn.
type RenderOrder int

const (
	RightDown RenderOrder = iota
	RightUp
	LeftDown
	LeftUp
)

func (r RenderOrder) String() string {
	switch r {
	case RightDown:
		return "right-down"
	case RightUp:
		return "right-up"
	case LeftDown:
		return "left-down"
	case LeftUp:
		return "left-up"
	}
	return fmt.Sprintf("RenderOrder(%d)", int(r))
}

func parseRenderOrder(s string) (RenderOrder, bool) {
	switch s {
	case "", "right-down":
		return RightDown, true
	case "right-up":
		return RightUp, true
	case "left-down":
		return LeftDown, true
	case "left-up":
		return LeftUp, true
	}
	return 0, false
}

// StaggerAxis selects which axis is staggered on hexagonal and staggered maps.
type StaggerAxis int

const (
	StaggerY StaggerAxis = iota
	StaggerX
)

// StaggerIndex selects whether odd or even rows/columns are shifted.
type StaggerIndex int

const (
	StaggerOdd StaggerIndex = iota
	StaggerEven
)

// Map is a decoded TMX map.
type Map struct {
	path string
	src  files

	orientation   Orientation
	renderOrder   RenderOrder
	width         int
	height        int
	tileWidth     int
	tileHeight    int
	hexSideLength int
	staggerAxis   StaggerAxis
	staggerIndex  StaggerIndex
	background    *color.NRGBA
	properties    Properties

	tilesets []*Tileset
	layers   []Layer

	maxTileW int
	maxTileH int
}

// Path returns the file the map was read from; empty for Decode.
func (m *Map) Path() string { return m.path }

func (m *Map) Orientation() Orientation { return m.orientation }

func (m *Map) RenderOrder() RenderOrder { return m.renderOrder }

// Width returns the map width in tiles.
func (m *Map) Width() int { return m.width }

// Height returns the map height in tiles.
func (m *Map) Height() int { return m.height }

// TileWidth returns the grid cell width in pixels.
func (m *Map) TileWidth() int { return m.tileWidth }

// TileHeight returns the grid cell height in pixels.
func (m *Map) TileHeight() int { return m.tileHeight }

func (m *Map) HexSideLength() int { return m.hexSideLength }

func (m *Map) StaggerAxis() StaggerAxis { return m.staggerAxis }

func (m *Map) StaggerIndex() StaggerIndex { return m.staggerIndex }

// BackgroundColor returns the map background colour, if the map declares one.
func (m *Map) BackgroundColor() (color.NRGBA, bool) {
	if m.background == nil {
		return color.NRGBA{}, false
	}
	return *m.background, true
}

func (m *Map) Properties() Properties { return m.properties }

// Tilesets returns the map's tile-sets ordered by first gid.
func (m *Map) Tilesets() []*Tileset {
	out := make([]*Tileset, len(m.tilesets))
	copy(out, m.tilesets)
	return out
}

// LayerCount returns the number of layers after group flattening.
func (m *Map) LayerCount() int { return len(m.layers) }

// Layer returns the layer at index i (bottom first) or nil when out of range.
func (m *Map) Layer(i int) Layer {
	if i < 0 || i >= len(m.layers) {
		return nil
	}
	return m.layers[i]
}

// Layers returns all layers, bottom first.
func (m *Map) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

func (m *Map) TileLayers() []*TileLayer {
	var out []*TileLayer
	for _, l := range m.layers {
		if tl, ok := l.(*TileLayer); ok {
			out = append(out, tl)
		}
	}
	return out
}

func (m *Map) ObjectGroups() []*ObjectGroup {
	var out []*ObjectGroup
	for _, l := range m.layers {
		if og, ok := l.(*ObjectGroup); ok {
			out = append(out, og)
		}
	}
	return out
}

// TileByGID resolves a global tile id (flip bits ignored) to its tile.
// It returns nil for gid 0 and for ids outside every tile-set.
func (m *Map) TileByGID(gid uint32) *Tile {
	gid &^= flipMask
	if gid == 0 {
		return nil
	}
	// tilesets are sorted by firstGID; pick the last one starting at or before gid
	i := sort.Search(len(m.tilesets), func(i int) bool {
		return m.tilesets[i].firstGID > gid
	})
	if i == 0 {
		return nil
	}
	ts := m.tilesets[i-1]
	return ts.Tile(int(gid - ts.firstGID))
}

// MaxTileSize returns the largest tile width and height used by any tile-set,
// never smaller than the grid cell size. Renderers use it to widen their
// clip range for tiles that overhang their cell.
func (m *Map) MaxTileSize() (int, int) {
	return m.maxTileW, m.maxTileH
}

// ReadFile reads a file referenced by the map (an Image source, for example)
// from the same place the map itself was read from.
func (m *Map) ReadFile(name string) ([]byte, error) {
	if m.src == nil {
		return nil, &IOError{Path: name, Err: errNoSource}
	}
	b, err := m.src.ReadFile(name)
	if err != nil {
		return nil, &IOError{Path: name, Err: err}
	}
	return b, nil
}

func (m *Map) String() string {
	return fmt.Sprintf("Map[%dx%dx%d][%dx%d]", m.width, m.height, len(m.layers), m.tileWidth, m.tileHeight)
}
