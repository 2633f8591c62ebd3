package tmx

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ReadMap reads the TMX file at path, along with any external tile-sets it
// references. Failures are *IOError or *ParseError.
func ReadMap(path string) (*Map, error) {
	return readMap(osFiles{}, path)
}

// ReadMapFS reads a TMX file from fsys. External tile-sets and image sources
// are resolved relative to name inside the same file system.
func ReadMapFS(fsys fs.FS, name string) (*Map, error) {
	return readMap(fsFiles{fsys: fsys}, name)
}

// Decode reads a self-contained map from r. Maps that reference external
// tile-sets need ReadMap or ReadMapFS.
func Decode(r io.Reader) (*Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Path: "<input>", Err: err}
	}
	rd := &reader{}
	return rd.decodeMap(b)
}

func readMap(src files, name string) (*Map, error) {
	b, err := src.ReadFile(name)
	if err != nil {
		return nil, &IOError{Path: name, Err: err}
	}
	rd := &reader{src: src, path: name}
	return rd.decodeMap(b)
}

type reader struct {
	src  files
	path string
}

func (r *reader) errorf(path string, err error, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

func parseDocument(b []byte, root string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, err
	}
	el := doc.Root()
	if el == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if el.Tag != root {
		return nil, fmt.Errorf("root element is <%s>, expected <%s>", el.Tag, root)
	}
	return el, nil
}

func (r *reader) decodeMap(b []byte) (*Map, error) {
	root, err := parseDocument(b, "map")
	if err != nil {
		return nil, r.errorf(r.path, err, "malformed map")
	}

	m := &Map{path: r.path, src: r.src}
	a := attrs{el: root}

	orientation := a.str("orientation", "orthogonal")
	o, ok := parseOrientation(orientation)
	if !ok {
		return nil, r.errorf(r.path, nil, "unknown orientation %q", orientation)
	}
	m.orientation = o

	order := a.str("renderorder", "")
	ro, ok := parseRenderOrder(order)
	if !ok {
		return nil, r.errorf(r.path, nil, "unknown render order %q", order)
	}
	m.renderOrder = ro

	m.width = a.intAttr("width", 0)
	m.height = a.intAttr("height", 0)
	m.tileWidth = a.intAttr("tilewidth", 0)
	m.tileHeight = a.intAttr("tileheight", 0)
	m.hexSideLength = a.intAttr("hexsidelength", 0)
	infinite := a.boolAttr("infinite", false)
	if a.err != nil {
		return nil, r.errorf(r.path, a.err, "bad map attribute")
	}
	if infinite {
		return nil, r.errorf(r.path, nil, "infinite maps are not supported")
	}
	// width*height must fit a cell index on every platform
	if m.width <= 0 || m.height <= 0 || m.width > math.MaxInt32/m.height {
		return nil, r.errorf(r.path, nil, "invalid map dimensions: %dx%d", m.width, m.height)
	}
	if m.tileWidth <= 0 || m.tileHeight <= 0 {
		return nil, r.errorf(r.path, nil, "invalid tile size: %dx%d", m.tileWidth, m.tileHeight)
	}

	switch axis := a.str("staggeraxis", "y"); axis {
	case "y":
		m.staggerAxis = StaggerY
	case "x":
		m.staggerAxis = StaggerX
	default:
		return nil, r.errorf(r.path, nil, "unknown stagger axis %q", axis)
	}
	switch index := a.str("staggerindex", "odd"); index {
	case "odd":
		m.staggerIndex = StaggerOdd
	case "even":
		m.staggerIndex = StaggerEven
	default:
		return nil, r.errorf(r.path, nil, "unknown stagger index %q", index)
	}

	if bg := a.str("backgroundcolor", ""); bg != "" {
		c, err := parseColor(bg)
		if err != nil {
			return nil, r.errorf(r.path, err, "bad background colour")
		}
		m.background = c
	}

	// tile-sets first: layers resolve gids against the complete registry
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "properties":
			m.properties = parseProperties(el)
		case "tileset":
			ts, err := r.tileset(el)
			if err != nil {
				return nil, err
			}
			m.tilesets = append(m.tilesets, ts)
		}
	}
	sort.SliceStable(m.tilesets, func(i, j int) bool {
		return m.tilesets[i].firstGID < m.tilesets[j].firstGID
	})
	m.maxTileW, m.maxTileH = maxTileSize(m)

	if err := r.layers(m, root, groupState{visible: true, opacity: 1}); err != nil {
		return nil, err
	}
	return m, nil
}

func maxTileSize(m *Map) (int, int) {
	w, h := m.tileWidth, m.tileHeight
	for _, ts := range m.tilesets {
		for _, t := range ts.tiles {
			if tw := t.Width(); tw > w {
				w = tw
			}
			if th := t.Height(); th > h {
				h = th
			}
		}
	}
	return w, h
}

// groupState carries what enclosing <group> elements contribute to a layer.
type groupState struct {
	offsetX float64
	offsetY float64
	opacity float64
	visible bool
}

func (r *reader) layers(m *Map, parent *etree.Element, g groupState) error {
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "layer":
			l, err := r.tileLayer(m, el, g)
			if err != nil {
				return err
			}
			m.layers = append(m.layers, l)
		case "objectgroup":
			og, err := r.objectGroup(m, el, g)
			if err != nil {
				return err
			}
			m.layers = append(m.layers, og)
		case "group":
			base, err := r.layerBase(el, g)
			if err != nil {
				return err
			}
			inner := groupState{
				offsetX: base.offsetX,
				offsetY: base.offsetY,
				opacity: base.opacity,
				visible: base.visible,
			}
			if err := r.layers(m, el, inner); err != nil {
				return err
			}
		case "imagelayer":
			log.Printf("tmx: skipping image layer %q in %s", el.SelectAttrValue("name", ""), r.path)
		}
	}
	return nil
}

func (r *reader) layerBase(el *etree.Element, g groupState) (layerBase, error) {
	a := attrs{el: el}
	base := layerBase{
		id:      a.intAttr("id", 0),
		name:    a.str("name", ""),
		visible: a.boolAttr("visible", true) && g.visible,
		opacity: a.floatAttr("opacity", 1) * g.opacity,
		offsetX: a.floatAttr("offsetx", 0) + g.offsetX,
		offsetY: a.floatAttr("offsety", 0) + g.offsetY,
	}
	if a.err != nil {
		return base, r.errorf(r.path, a.err, "layer %q", base.name)
	}
	if p := el.SelectElement("properties"); p != nil {
		base.properties = parseProperties(p)
	}
	return base, nil
}

func (r *reader) tileLayer(m *Map, el *etree.Element, g groupState) (*TileLayer, error) {
	base, err := r.layerBase(el, g)
	if err != nil {
		return nil, err
	}

	a := attrs{el: el}
	w := a.intAttr("width", m.width)
	h := a.intAttr("height", m.height)
	if a.err != nil {
		return nil, r.errorf(r.path, a.err, "layer %q", base.name)
	}
	if w != m.width || h != m.height {
		return nil, r.errorf(r.path, nil, "layer %q is %dx%d, map is %dx%d", base.name, w, h, m.width, m.height)
	}

	data := el.SelectElement("data")
	if data == nil {
		return nil, r.errorf(r.path, nil, "layer %q has no data", base.name)
	}
	gids, err := decodeData(data, w*h)
	if err != nil {
		return nil, r.errorf(r.path, err, "layer %q", base.name)
	}

	l := &TileLayer{layerBase: base, width: w, height: h, cells: make([]Cell, len(gids))}
	for i, gid := range gids {
		if gid&^flipMask == 0 {
			continue
		}
		t := m.TileByGID(gid)
		if t == nil {
			return nil, r.errorf(r.path, nil, "layer %q: gid %d at (%d,%d) is outside every tile-set",
				base.name, gid&^flipMask, i%w, i/w)
		}
		l.cells[i] = Cell{Tile: t, Flip: flipFromGID(gid)}
	}
	return l, nil
}

func (r *reader) objectGroup(m *Map, el *etree.Element, g groupState) (*ObjectGroup, error) {
	base, err := r.layerBase(el, g)
	if err != nil {
		return nil, err
	}

	og := &ObjectGroup{
		layerBase: base,
		drawOrder: el.SelectAttrValue("draworder", "topdown"),
	}
	if c := el.SelectAttrValue("color", ""); c != "" {
		col, err := parseColor(c)
		if err != nil {
			return nil, r.errorf(r.path, err, "object group %q: bad colour", base.name)
		}
		og.color = col
	}

	for _, oe := range el.SelectElements("object") {
		o, err := r.object(m, oe)
		if err != nil {
			return nil, r.errorf(r.path, err, "object group %q", base.name)
		}
		og.objects = append(og.objects, o)
	}
	return og, nil
}

func (r *reader) object(m *Map, el *etree.Element) (*Object, error) {
	a := attrs{el: el}
	o := &Object{
		id:       a.intAttr("id", 0),
		name:     a.str("name", ""),
		typ:      a.str("type", a.str("class", "")),
		x:        a.floatAttr("x", 0),
		y:        a.floatAttr("y", 0),
		width:    a.floatAttr("width", 0),
		height:   a.floatAttr("height", 0),
		rotation: a.floatAttr("rotation", 0),
		visible:  a.boolAttr("visible", true),
		shape:    ShapeRectangle,
	}
	gid := a.uintAttr("gid", 0)
	if a.err != nil {
		return nil, fmt.Errorf("object %d: %w", o.id, a.err)
	}

	if gid&^flipMask != 0 {
		t := m.TileByGID(gid)
		if t == nil {
			return nil, fmt.Errorf("object %d: gid %d is outside every tile-set", o.id, gid&^flipMask)
		}
		o.cell = Cell{Tile: t, Flip: flipFromGID(gid)}
		if o.width == 0 {
			o.width = float64(t.Width())
		}
		if o.height == 0 {
			o.height = float64(t.Height())
		}
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "ellipse":
			o.shape = ShapeEllipse
		case "point":
			o.shape = ShapePoint
		case "polygon", "polyline":
			o.shape = ShapePolygon
			if child.Tag == "polyline" {
				o.shape = ShapePolyline
			}
			pts, err := parsePoints(child.SelectAttrValue("points", ""))
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", o.id, err)
			}
			o.points = pts
		case "text":
			o.shape = ShapeText
			o.text = child.Text()
		case "properties":
			o.properties = parseProperties(child)
		}
	}
	return o, nil
}

func (r *reader) tileset(el *etree.Element) (*Tileset, error) {
	a := attrs{el: el}
	firstGID := a.uintAttr("firstgid", 0)
	if a.err != nil {
		return nil, r.errorf(r.path, a.err, "tile-set")
	}
	if firstGID == 0 {
		return nil, r.errorf(r.path, nil, "tile-set %q has no firstgid", el.SelectAttrValue("name", ""))
	}

	source := el.SelectAttrValue("source", "")
	if source == "" {
		ts := &Tileset{firstGID: firstGID}
		if err := r.fillTileset(ts, el, r.path); err != nil {
			return nil, err
		}
		return ts, nil
	}

	if r.src == nil {
		return nil, r.errorf(r.path, nil, "external tile-set %q cannot be resolved without a file system", source)
	}
	p := r.src.resolve(r.path, source)
	b, err := r.src.ReadFile(p)
	if err != nil {
		return nil, &IOError{Path: p, Err: err}
	}
	root, err := parseDocument(b, "tileset")
	if err != nil {
		return nil, r.errorf(p, err, "malformed tile-set")
	}
	ts := &Tileset{firstGID: firstGID, source: p}
	if err := r.fillTileset(ts, root, p); err != nil {
		return nil, err
	}
	return ts, nil
}

// fillTileset reads a <tileset> body; base is the file its paths are relative to.
func (r *reader) fillTileset(ts *Tileset, el *etree.Element, base string) error {
	a := attrs{el: el}
	ts.name = a.str("name", "")
	ts.tileWidth = a.intAttr("tilewidth", 0)
	ts.tileHeight = a.intAttr("tileheight", 0)
	ts.spacing = a.intAttr("spacing", 0)
	ts.margin = a.intAttr("margin", 0)
	ts.tileCount = a.intAttr("tilecount", 0)
	ts.columns = a.intAttr("columns", 0)
	if a.err != nil {
		return r.errorf(base, a.err, "tile-set %q", ts.name)
	}
	ts.tiles = make(map[int]*Tile)

	if off := el.SelectElement("tileoffset"); off != nil {
		oa := attrs{el: off}
		ts.offsetX = oa.intAttr("x", 0)
		ts.offsetY = oa.intAttr("y", 0)
		if oa.err != nil {
			return r.errorf(base, oa.err, "tile-set %q", ts.name)
		}
	}
	if p := el.SelectElement("properties"); p != nil {
		ts.properties = parseProperties(p)
	}

	if ie := el.SelectElement("image"); ie != nil {
		img, err := r.image(ie, base)
		if err != nil {
			return r.errorf(base, err, "tile-set %q", ts.name)
		}
		ts.image = img
		if err := ts.layoutGrid(); err != nil {
			return r.errorf(base, err, "tile-set %q", ts.name)
		}
		for id := 0; id < ts.tileCount; id++ {
			ts.tiles[id] = &Tile{id: id, tileset: ts, probability: 1}
		}
	}

	for _, te := range el.SelectElements("tile") {
		if err := r.tile(ts, te, base); err != nil {
			return r.errorf(base, err, "tile-set %q", ts.name)
		}
	}
	if ts.tileCount == 0 {
		ts.tileCount = len(ts.tiles)
	}
	return nil
}

// layoutGrid derives columns and tile count from the image size when the
// tile-set does not declare them.
func (ts *Tileset) layoutGrid() error {
	if ts.tileWidth <= 0 || ts.tileHeight <= 0 {
		return fmt.Errorf("invalid tile size %dx%d", ts.tileWidth, ts.tileHeight)
	}
	if ts.columns == 0 {
		if ts.image.Width <= 0 {
			return fmt.Errorf("image %q has no width and the tile-set declares no columns", ts.image.Source)
		}
		ts.columns = (ts.image.Width - 2*ts.margin + ts.spacing) / (ts.tileWidth + ts.spacing)
	}
	if ts.tileCount == 0 {
		if ts.image.Height <= 0 {
			return fmt.Errorf("image %q has no height and the tile-set declares no tile count", ts.image.Source)
		}
		rows := (ts.image.Height - 2*ts.margin + ts.spacing) / (ts.tileHeight + ts.spacing)
		ts.tileCount = ts.columns * rows
	}
	return nil
}

func (r *reader) tile(ts *Tileset, el *etree.Element, base string) error {
	a := attrs{el: el}
	id := a.intAttr("id", -1)
	if a.err != nil {
		return a.err
	}
	if id < 0 {
		return fmt.Errorf("tile without id")
	}

	t := ts.tiles[id]
	if t == nil {
		t = &Tile{id: id, tileset: ts, probability: 1}
		ts.tiles[id] = t
	}
	t.typ = a.str("type", a.str("class", ""))
	t.terrain = a.str("terrain", "")
	t.probability = a.floatAttr("probability", 1)
	t.width = a.intAttr("width", 0)
	t.height = a.intAttr("height", 0)
	if a.err != nil {
		return fmt.Errorf("tile %d: %w", id, a.err)
	}

	if ie := el.SelectElement("image"); ie != nil {
		img, err := r.image(ie, base)
		if err != nil {
			return fmt.Errorf("tile %d: %w", id, err)
		}
		t.image = img
	}
	if p := el.SelectElement("properties"); p != nil {
		t.properties = parseProperties(p)
	}
	return nil
}

func (r *reader) image(el *etree.Element, base string) (*Image, error) {
	a := attrs{el: el}
	img := &Image{
		Source: a.str("source", ""),
		Width:  a.intAttr("width", 0),
		Height: a.intAttr("height", 0),
	}
	if a.err != nil {
		return nil, fmt.Errorf("image: %w", a.err)
	}
	if img.Source != "" && r.src != nil {
		img.Source = r.src.resolve(base, img.Source)
	}
	if trans := a.str("trans", ""); trans != "" {
		c, err := parseColor(trans)
		if err != nil {
			return nil, fmt.Errorf("image %q: bad trans colour: %w", img.Source, err)
		}
		img.Trans = c
	}
	return img, nil
}

func parseProperties(el *etree.Element) Properties {
	var props Properties
	for _, pe := range el.SelectElements("property") {
		p := Property{
			Name: pe.SelectAttrValue("name", ""),
			Type: pe.SelectAttrValue("type", "string"),
		}
		if v := pe.SelectAttr("value"); v != nil {
			p.Value = v.Value
		} else {
			// multi-line string properties keep their value as element text
			p.Value = pe.Text()
		}
		props = append(props, p)
	}
	return props
}

func parsePoints(s string) ([]Point, error) {
	var pts []Point
	for _, pair := range strings.Fields(s) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("bad point %q", pair)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("bad point %q: %w", pair, err)
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}

// parseColor accepts #RRGGBB, #AARRGGBB and the same without the leading '#'.
func parseColor(s string) (*color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("colour %q is not #RRGGBB or #AARRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("colour %q: %w", s, err)
	}
	c := &color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
	if len(hex) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, nil
}

// attrs reads typed attributes, keeping the first conversion error.
type attrs struct {
	el  *etree.Element
	err error
}

func (a *attrs) str(name, def string) string {
	return a.el.SelectAttrValue(name, def)
}

func (a *attrs) raw(name string) (string, bool) {
	attr := a.el.SelectAttr(name)
	if attr == nil || a.err != nil {
		return "", false
	}
	return strings.TrimSpace(attr.Value), true
}

func (a *attrs) fail(name, v string, err error) {
	a.err = fmt.Errorf("<%s> attribute %s=%q: %w", a.el.Tag, name, v, err)
}

func (a *attrs) intAttr(name string, def int) int {
	v, ok := a.raw(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		a.fail(name, v, err)
		return def
	}
	return n
}

func (a *attrs) uintAttr(name string, def uint32) uint32 {
	v, ok := a.raw(name)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		a.fail(name, v, err)
		return def
	}
	return uint32(n)
}

func (a *attrs) floatAttr(name string, def float64) float64 {
	v, ok := a.raw(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		a.fail(name, v, err)
		return def
	}
	return f
}

func (a *attrs) boolAttr(name string, def bool) bool {
	v, ok := a.raw(name)
	if !ok {
		return def
	}
	switch v {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	a.fail(name, v, fmt.Errorf("not a boolean"))
	return def
}
