package view

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/zyedidia/generic/cache"
	"github.com/zyedidia/generic/mapset"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/milk9111/tmxviewer/tmx"
)

var missingColor = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// TileImages resolves tiles to ebiten images. Source images are decoded once;
// per-tile sub-images live in a bounded LRU keyed by gid.
type TileImages struct {
	m           *tmx.Map
	sources     map[string]*ebiten.Image
	tiles       *cache.Cache[uint32, *ebiten.Image]
	missing     mapset.Set[string]
	placeholder *ebiten.Image
}

// NewTileImages prepares image lookup for m. size bounds the number of cached
// tile sub-images.
func NewTileImages(m *tmx.Map, size int) *TileImages {
	if size <= 0 {
		size = 1024
	}
	ph := ebiten.NewImage(m.TileWidth(), m.TileHeight())
	ph.Fill(missingColor)
	return &TileImages{
		m:           m,
		sources:     make(map[string]*ebiten.Image),
		tiles:       cache.New[uint32, *ebiten.Image](size),
		missing:     mapset.New[string](),
		placeholder: ph,
	}
}

// Tile returns the image for t, or the magenta placeholder when its source
// cannot be loaded or does not cover the tile.
func (ti *TileImages) Tile(t *tmx.Tile) *ebiten.Image {
	if img, ok := ti.tiles.Get(t.GID()); ok {
		return img
	}
	img := ti.resolve(t)
	ti.tiles.Put(t.GID(), img)
	return img
}

func (ti *TileImages) resolve(t *tmx.Tile) *ebiten.Image {
	src := t.Source()
	if src == "" {
		return ti.placeholder
	}
	info := t.Image()
	if info == nil {
		info = t.Tileset().Image()
	}
	var trans *color.NRGBA
	if info != nil {
		trans = info.Trans
	}
	sheet := ti.source(src, trans)
	if sheet == nil {
		return ti.placeholder
	}
	if t.Image() != nil {
		return sheet
	}
	r := t.ImageRect()
	if !r.In(sheet.Bounds()) {
		ti.warn(fmt.Sprintf("%s#%d", src, t.ID()), "tile %d of %q lies outside %s", t.ID(), t.Tileset().Name(), src)
		return ti.placeholder
	}
	if sub, ok := sheet.SubImage(r).(*ebiten.Image); ok {
		return sub
	}
	return ti.placeholder
}

func (ti *TileImages) source(name string, trans *color.NRGBA) *ebiten.Image {
	if img, ok := ti.sources[name]; ok {
		return img
	}
	b, err := ti.m.ReadFile(name)
	if err != nil {
		ti.warn(name, "tile image: %v", err)
		ti.sources[name] = nil
		return nil
	}
	decoded, err := decodeImage(b, trans)
	if err != nil {
		ti.warn(name, "tile image %s: %v", name, err)
		ti.sources[name] = nil
		return nil
	}
	img := ebiten.NewImageFromImage(decoded)
	ti.sources[name] = img
	return img
}

// warn logs a missing image problem once per key.
func (ti *TileImages) warn(key, format string, args ...any) {
	if ti.missing.Has(key) {
		return
	}
	ti.missing.Put(key)
	log.Printf(format, args...)
}

// Missing returns how many distinct images could not be used.
func (ti *TileImages) Missing() int { return ti.missing.Size() }

// Dispose frees every decoded source image.
func (ti *TileImages) Dispose() {
	for _, img := range ti.sources {
		if img != nil {
			img.Deallocate()
		}
	}
	ti.placeholder.Deallocate()
}

// decodeImage decodes an image file and makes pixels of the transparent
// colour fully transparent.
func decodeImage(b []byte, trans *color.NRGBA) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if trans == nil {
		return img, nil
	}
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	key := color.NRGBA{R: trans.R, G: trans.G, B: trans.B, A: 0xff}
	for i := 0; i < len(out.Pix); i += 4 {
		p := color.NRGBA{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2], A: out.Pix[i+3]}
		if p == key {
			out.Pix[i+3] = 0
		}
	}
	return out, nil
}
