package tmx

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestReadMapOrthogonal(t *testing.T) {
	m, err := ReadMap("testdata/ortho.tmx")
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}

	if m.Orientation() != Orthogonal || m.RenderOrder() != RightDown {
		t.Fatalf("orientation/order = %v/%v", m.Orientation(), m.RenderOrder())
	}
	if m.Width() != 4 || m.Height() != 3 || m.TileWidth() != 16 || m.TileHeight() != 16 {
		t.Fatalf("dimensions = %dx%d@%dx%d", m.Width(), m.Height(), m.TileWidth(), m.TileHeight())
	}
	if m.LayerCount() != 3 {
		t.Fatalf("expected 3 layers after flattening, got %d", m.LayerCount())
	}
	if got := m.String(); got != "Map[4x3x3][16x16]" {
		t.Fatalf("String() = %q", got)
	}
	if bg, ok := m.BackgroundColor(); !ok || bg != (color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}) {
		t.Fatalf("background = %v, %v", bg, ok)
	}
	if m.Properties().String("title", "") != "Trou" || m.Properties().Int("level", 0) != 3 {
		t.Fatalf("map properties = %+v", m.Properties())
	}
	if w, h := m.MaxTileSize(); w != 24 || h != 32 {
		t.Fatalf("MaxTileSize = %dx%d", w, h)
	}

	t.Run("tile_layer", func(t *testing.T) {
		ground, ok := m.Layer(0).(*TileLayer)
		if !ok {
			t.Fatalf("layer 0 is %T", m.Layer(0))
		}
		if ground.Name() != "ground" || !ground.Visible() || ground.Opacity() != 1 {
			t.Fatalf("ground layer = %q visible=%v opacity=%v", ground.Name(), ground.Visible(), ground.Opacity())
		}
		if ground.Bounds() != image.Rect(0, 0, 4, 3) {
			t.Fatalf("bounds = %v", ground.Bounds())
		}

		cases := []struct {
			x, y int
			id   int
			flip Flip
		}{
			{0, 0, 0, 0},
			{3, 0, 3, 0},
			{1, 1, 5, 0},
			{0, 2, 0, FlipHorizontal},
			{2, 2, 2, FlipVertical},
		}
		for _, c := range cases {
			cell := ground.CellAt(c.x, c.y)
			if cell.Empty() {
				t.Fatalf("cell (%d,%d) is empty", c.x, c.y)
			}
			if cell.Tile.ID() != c.id || cell.Flip != c.flip {
				t.Fatalf("cell (%d,%d) = id %d flip %v, want id %d flip %v", c.x, c.y, cell.Tile.ID(), cell.Flip, c.id, c.flip)
			}
		}
		if ground.TileAt(1, 2) != nil || ground.TileAt(3, 2) != nil {
			t.Fatalf("expected empty cells at (1,2) and (3,2)")
		}
		if ground.TileAt(-1, 0) != nil || ground.TileAt(4, 0) != nil || ground.TileAt(0, 3) != nil {
			t.Fatalf("out-of-range cells must be empty")
		}
	})

	t.Run("tile_metadata", func(t *testing.T) {
		tile := m.Layer(0).(*TileLayer).TileAt(0, 0)
		if tile.Type() != "grass" || tile.Terrain() != "0,0,0,0" || tile.Probability() != 0.5 {
			t.Fatalf("tile (0,0) metadata = type %q terrain %q probability %v", tile.Type(), tile.Terrain(), tile.Probability())
		}
		if !tile.Properties().Bool("walkable", false) {
			t.Fatalf("tile (0,0) should be walkable")
		}
		if tile.Width() != 16 || tile.Height() != 16 {
			t.Fatalf("tile size = %dx%d", tile.Width(), tile.Height())
		}
		if tile.Source() != "testdata/ground.png" {
			t.Fatalf("tile source = %q", tile.Source())
		}
		if tile.GID() != 1 {
			t.Fatalf("tile gid = %d", tile.GID())
		}

		water := m.TileByGID(6)
		if water == nil || water.Type() != "water" || water.Probability() != 1 {
			t.Fatalf("gid 6 = %+v", water)
		}
		if r := water.ImageRect(); r != image.Rect(18, 18, 34, 34) {
			t.Fatalf("gid 6 image rect = %v", r)
		}
	})

	t.Run("tileset", func(t *testing.T) {
		ts := m.Tilesets()
		if len(ts) != 2 {
			t.Fatalf("expected 2 tile-sets, got %d", len(ts))
		}
		ground := ts[0]
		if ground.Name() != "ground" || ground.TileCount() != 8 || ground.Columns() != 4 {
			t.Fatalf("ground tile-set = %q count %d columns %d", ground.Name(), ground.TileCount(), ground.Columns())
		}
		if x, y := ground.TileOffset(); x != 0 || y != 2 {
			t.Fatalf("tile offset = %d,%d", x, y)
		}
		img := ground.Image()
		if img == nil || img.Width != 69 || img.Height != 35 {
			t.Fatalf("image = %+v", img)
		}
		if img.Trans == nil || *img.Trans != (color.NRGBA{R: 0xff, B: 0xff, A: 0xff}) {
			t.Fatalf("trans = %v", img.Trans)
		}

		props := ts[1]
		if props.Image() != nil || props.TileCount() != 2 || len(props.Tiles()) != 2 {
			t.Fatalf("props tile-set = image %v count %d", props.Image(), props.TileCount())
		}
		tree := m.TileByGID(9)
		if tree.Source() != "testdata/props/tree.png" || tree.Width() != 16 || tree.Height() != 32 {
			t.Fatalf("tree = %q %dx%d", tree.Source(), tree.Width(), tree.Height())
		}
		if m.TileByGID(10) != nil {
			t.Fatalf("gid 10 has no tile definition")
		}
		if rock := m.TileByGID(12); rock == nil || rock.Width() != 24 {
			t.Fatalf("gid 12 = %+v", rock)
		}
	})

	t.Run("group_flattening", func(t *testing.T) {
		trees, ok := m.Layer(1).(*TileLayer)
		if !ok {
			t.Fatalf("layer 1 is %T", m.Layer(1))
		}
		if trees.Visible() {
			t.Fatalf("trees layer should be hidden")
		}
		if trees.Opacity() != 0.5 {
			t.Fatalf("opacity = %v", trees.Opacity())
		}
		if x, y := trees.Offset(); x != 5 || y != -2 {
			t.Fatalf("offset = %v,%v", x, y)
		}
		if trees.TileAt(1, 0).GID() != 9 || trees.TileAt(3, 0).GID() != 12 || trees.TileAt(3, 2).GID() != 9 {
			t.Fatalf("xml-encoded cells decoded wrongly")
		}
	})

	t.Run("objects", func(t *testing.T) {
		groups := m.ObjectGroups()
		if len(groups) != 1 {
			t.Fatalf("expected 1 object group, got %d", len(groups))
		}
		g := groups[0]
		if c, ok := g.Color(); !ok || c != (color.NRGBA{R: 0xff, A: 0xa0}) {
			t.Fatalf("group colour = %v", c)
		}
		objs := g.Objects()
		if len(objs) != 5 {
			t.Fatalf("expected 5 objects, got %d", len(objs))
		}

		shapes := []Shape{ShapeRectangle, ShapeEllipse, ShapePolyline, ShapeRectangle, ShapePoint}
		for i, o := range objs {
			if o.Shape() != shapes[i] {
				t.Fatalf("object %d shape = %v, want %v", o.ID(), o.Shape(), shapes[i])
			}
		}
		if objs[0].Type() != "start" || objs[4].Type() != "poi" {
			t.Fatalf("types = %q, %q", objs[0].Type(), objs[4].Type())
		}
		if objs[2].Visible() {
			t.Fatalf("path object should be hidden")
		}
		if want := []Point{{0, 0}, {16, 0}, {16, 16}}; !reflect.DeepEqual(objs[2].Points(), want) {
			t.Fatalf("points = %v", objs[2].Points())
		}
		tree := objs[3]
		if tree.Cell().Empty() || tree.Cell().Tile.GID() != 9 {
			t.Fatalf("tree object should reference gid 9")
		}
		if w, h := tree.Size(); w != 16 || h != 32 {
			t.Fatalf("tile object size = %vx%v", w, h)
		}
		if x, y := objs[4].Position(); x != 10.5 || y != 20.25 {
			t.Fatalf("marker position = %v,%v", x, y)
		}
		if note := objs[4].Properties().String("note", ""); note != "line one\nline two" {
			t.Fatalf("note = %q", note)
		}
	})
}

func TestReadMapExternalTileset(t *testing.T) {
	cases := []struct {
		name    string
		read    func() (*Map, error)
		tsx     string
		imgPath string
	}{
		{
			name:    "os",
			read:    func() (*Map, error) { return ReadMap("testdata/external.tmx") },
			tsx:     "testdata/tilesets/terrain.tsx",
			imgPath: "testdata/images/terrain.png",
		},
		{
			name:    "fs",
			read:    func() (*Map, error) { return ReadMapFS(os.DirFS("testdata"), "external.tmx") },
			tsx:     "tilesets/terrain.tsx",
			imgPath: "images/terrain.png",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := c.read()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if m.Orientation() != Isometric {
				t.Fatalf("orientation = %v", m.Orientation())
			}
			ts := m.Tilesets()[0]
			if ts.Source() != c.tsx || ts.Name() != "terrain" {
				t.Fatalf("tile-set source = %q name %q", ts.Source(), ts.Name())
			}
			if ts.Image().Source != c.imgPath {
				t.Fatalf("image source = %q, want %q", ts.Image().Source, c.imgPath)
			}
			sand := m.TileByGID(3)
			if sand.Type() != "sand" || sand.Probability() != 0.25 {
				t.Fatalf("gid 3 = %q %v", sand.Type(), sand.Probability())
			}
			base := m.Layer(0).(*TileLayer)
			if base.TileAt(0, 0).ID() != 0 || base.TileAt(1, 1) != nil {
				t.Fatalf("unexpected base layer cells")
			}
		})
	}
}

func TestReadMapDeterministic(t *testing.T) {
	a, err := ReadMap("testdata/ortho.tmx")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	b, err := ReadMap("testdata/ortho.tmx")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated reads produced different maps")
	}
}

func TestReadMapErrors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		_, err := ReadMap("testdata/does-not-exist.tmx")
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("expected *IOError, got %T: %v", err, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("IOError should wrap fs.ErrNotExist: %v", err)
		}
		if ioErr.Path != "testdata/does-not-exist.tmx" {
			t.Fatalf("path = %q", ioErr.Path)
		}
	})

	t.Run("missing_tileset", func(t *testing.T) {
		_, err := ReadMap("testdata/missing_tileset.tmx")
		var ioErr *IOError
		if !errors.As(err, &ioErr) || ioErr.Path != "testdata/nowhere.tsx" {
			t.Fatalf("expected IOError for nowhere.tsx, got %v", err)
		}
	})

	header := `<map orientation="orthogonal" width="2" height="1" tilewidth="8" tileheight="8">
<tileset firstgid="1" name="t" tilewidth="8" tileheight="8" tilecount="2" columns="2"><image source="t.png" width="16" height="8"/></tileset>`

	parseCases := []struct {
		name string
		doc  string
		msg  string
	}{
		{"not_xml", "this is not xml", "malformed map"},
		{"wrong_root", `<tileset name="x"/>`, "expected <map>"},
		{"bad_orientation", `<map orientation="spherical" width="1" height="1" tilewidth="8" tileheight="8"/>`, "unknown orientation"},
		{"zero_size", `<map width="0" height="1" tilewidth="8" tileheight="8"/>`, "invalid map dimensions"},
		{"huge_size", `<map width="4294967296" height="4294967296" tilewidth="16" tileheight="16"><layer name="a" width="4294967296" height="4294967296"><data encoding="csv"></data></layer></map>`, "invalid map dimensions"},
		{"area_overflow", `<map width="65536" height="65536" tilewidth="16" tileheight="16"/>`, "invalid map dimensions"},
		{"bad_width", `<map width="abc" height="1" tilewidth="8" tileheight="8"/>`, "bad map attribute"},
		{"infinite", `<map width="1" height="1" tilewidth="8" tileheight="8" infinite="1"/>`, "infinite"},
		{"cell_count", header + `<layer name="a" width="2" height="1"><data encoding="csv">1,2,1</data></layer></map>`, "expected 2"},
		{"layer_size", header + `<layer name="a" width="3" height="1"><data encoding="csv">1,2,1</data></layer></map>`, "map is 2x1"},
		{"unknown_gid", header + `<layer name="a" width="2" height="1"><data encoding="csv">1,7</data></layer></map>`, "outside every tile-set"},
		{"bad_encoding", header + `<layer name="a" width="2" height="1"><data encoding="hex">0102</data></layer></map>`, "unknown data encoding"},
		{"zstd", header + `<layer name="a" width="2" height="1"><data encoding="base64" compression="zstd">AAAA</data></layer></map>`, "unsupported compression"},
		{"no_data", header + `<layer name="a" width="2" height="1"></layer></map>`, "has no data"},
		{"external_without_fs", `<map width="1" height="1" tilewidth="8" tileheight="8"><tileset firstgid="1" source="x.tsx"/></map>`, "without a file system"},
	}
	for _, c := range parseCases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(c.doc))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Fatalf("error %q does not mention %q", err.Error(), c.msg)
			}
		})
	}
}

func TestReadMapFSImageResolution(t *testing.T) {
	cases := []struct {
		name string
		ref  string
	}{
		{"relative", "../art/t.png"},
		{"absolute", "/art/t.png"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"maps/level.tmx": {Data: []byte(`<map width="1" height="1" tilewidth="8" tileheight="8">
<tileset firstgid="1" name="t" tilewidth="8" tileheight="8"><image source="` + c.ref + `" width="8" height="8"/></tileset>
<layer name="a" width="1" height="1"><data encoding="csv">1</data></layer></map>`)},
				"art/t.png": {Data: []byte("png bytes")},
			}
			m, err := ReadMapFS(fsys, "maps/level.tmx")
			if err != nil {
				t.Fatalf("ReadMapFS: %v", err)
			}
			src := m.Layer(0).(*TileLayer).TileAt(0, 0).Source()
			if src != "art/t.png" {
				t.Fatalf("source = %q", src)
			}
			b, err := m.ReadFile(src)
			if err != nil || string(b) != "png bytes" {
				t.Fatalf("ReadFile = %q, %v", b, err)
			}
			if _, err := m.ReadFile("art/missing.png"); !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("expected not-exist error, got %v", err)
			}
		})
	}
}

func TestResolveReferences(t *testing.T) {
	cases := []struct {
		name  string
		files files
		base  string
		ref   string
		want  string
	}{
		{"fs_relative", fsFiles{}, "maps/level.tmx", "tiles/t.png", "maps/tiles/t.png"},
		{"fs_parent", fsFiles{}, "maps/level.tmx", "../t.png", "t.png"},
		{"fs_absolute", fsFiles{}, "maps/level.tmx", "/art/t.png", "art/t.png"},
		{"fs_empty", fsFiles{}, "maps/level.tmx", "", ""},
		{"os_relative", osFiles{}, "maps/level.tmx", "tiles/t.png", filepath.Join("maps", "tiles", "t.png")},
		{"os_absolute", osFiles{}, "maps/level.tmx", "/art/t.png", "/art/t.png"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.name == "os_absolute" && !filepath.IsAbs(c.ref) {
				t.Skip("not an absolute path on this platform")
			}
			if got := c.files.resolve(c.base, c.ref); got != c.want {
				t.Fatalf("resolve(%q, %q) = %q, want %q", c.base, c.ref, got, c.want)
			}
		})
	}
}
