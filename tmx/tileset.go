package tmx

import (
	"image"
	"image/color"
	"sort"
)

// Image is an image reference inside a tile-set or on a single tile.
type Image struct {
	// Source is resolved against the file that referenced it and can be
	// passed to Map.ReadFile.
	Source string
	Width  int
	Height int
	// Trans is the colour to treat as transparent, if any.
	Trans *color.NRGBA
}

// Tileset is a registry of tiles sharing a gid range.
type Tileset struct {
	firstGID   uint32
	name       string
	source     string
	tileWidth  int
	tileHeight int
	spacing    int
	margin     int
	tileCount  int
	columns    int
	offsetX    int
	offsetY    int
	image      *Image
	properties Properties

	tiles map[int]*Tile
}

func (ts *Tileset) FirstGID() uint32 { return ts.firstGID }
func (ts *Tileset) Name() string     { return ts.name }

// Source returns the external .tsx path, or "" for an embedded tile-set.
func (ts *Tileset) Source() string { return ts.source }

func (ts *Tileset) TileWidth() int  { return ts.tileWidth }
func (ts *Tileset) TileHeight() int { return ts.tileHeight }
func (ts *Tileset) Spacing() int    { return ts.spacing }
func (ts *Tileset) Margin() int     { return ts.margin }
func (ts *Tileset) TileCount() int  { return ts.tileCount }
func (ts *Tileset) Columns() int    { return ts.columns }

// TileOffset is the drawing offset applied to every tile of the set.
func (ts *Tileset) TileOffset() (int, int) { return ts.offsetX, ts.offsetY }

// Image returns the shared tile-set image, nil for image collections.
func (ts *Tileset) Image() *Image { return ts.image }

func (ts *Tileset) Properties() Properties { return ts.properties }

// Tile returns the tile with the given local id, or nil.
func (ts *Tileset) Tile(id int) *Tile {
	return ts.tiles[id]
}

// Tiles returns every tile ordered by local id.
func (ts *Tileset) Tiles() []*Tile {
	out := make([]*Tile, 0, len(ts.tiles))
	for _, t := range ts.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ImageRect returns the sub-rectangle of the tile-set image used by the tile
// with local id. The rectangle is empty for image collections.
func (ts *Tileset) ImageRect(id int) image.Rectangle {
	if ts.image == nil || ts.columns <= 0 || id < 0 {
		return image.Rectangle{}
	}
	col := id % ts.columns
	row := id / ts.columns
	x := ts.margin + col*(ts.tileWidth+ts.spacing)
	y := ts.margin + row*(ts.tileHeight+ts.spacing)
	return image.Rect(x, y, x+ts.tileWidth, y+ts.tileHeight)
}

// Tile is a single tile definition.
type Tile struct {
	id          int
	tileset     *Tileset
	image       *Image
	width       int
	height      int
	terrain     string
	typ         string
	probability float64
	properties  Properties
}

// ID returns the local id of the tile within its tile-set.
func (t *Tile) ID() int { return t.id }

func (t *Tile) Tileset() *Tileset { return t.tileset }

// GID returns the global id the map uses for this tile.
func (t *Tile) GID() uint32 { return t.tileset.firstGID + uint32(t.id) }

// Image returns the per-tile image of an image collection tile, or nil.
func (t *Tile) Image() *Image { return t.image }

// Width returns the tile width in pixels: the explicit override, the per-tile
// image width, or the tile-set tile width, in that order.
func (t *Tile) Width() int {
	if t.width > 0 {
		return t.width
	}
	if t.image != nil && t.image.Width > 0 {
		return t.image.Width
	}
	return t.tileset.tileWidth
}

// Height mirrors Width for the vertical axis.
func (t *Tile) Height() int {
	if t.height > 0 {
		return t.height
	}
	if t.image != nil && t.image.Height > 0 {
		return t.image.Height
	}
	return t.tileset.tileHeight
}

// Source returns the image file the tile is drawn from.
func (t *Tile) Source() string {
	if t.image != nil {
		return t.image.Source
	}
	if t.tileset.image != nil {
		return t.tileset.image.Source
	}
	return ""
}

// ImageRect returns the source rectangle of the tile inside Source.
func (t *Tile) ImageRect() image.Rectangle {
	if t.image != nil {
		return image.Rect(0, 0, t.Width(), t.Height())
	}
	r := t.tileset.ImageRect(t.id)
	if t.width > 0 || t.height > 0 {
		r.Max = r.Min.Add(image.Pt(t.Width(), t.Height()))
	}
	return r
}

// Terrain returns the raw terrain corner list, "" if unset.
func (t *Tile) Terrain() string { return t.terrain }

// Type returns the tile type (class in newer Tiled versions).
func (t *Tile) Type() string { return t.typ }

// Probability is the random-fill weight; metadata only.
func (t *Tile) Probability() float64 { return t.probability }

func (t *Tile) Properties() Properties { return t.properties }
