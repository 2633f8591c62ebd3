// Package view shows a TMX map in a scrollable ebiten window.
package view

import (
	"image"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/milk9111/tmxviewer/render"
	"github.com/milk9111/tmxviewer/tmx"
)

// key repeat, in ticks
const (
	repeatDelay    = 24
	repeatInterval = 3
)

// Options configures a MapView.
type Options struct {
	Width, Height int
	Background    color.Color
	WheelSpeed    float64
	CacheSize     int
	InfoBar       bool
	Debug         bool
}

// MapView is the ebiten.Game that displays a map. It owns the map and picks
// the renderer for it.
type MapView struct {
	opts   Options
	m      *tmx.Map
	r      render.Renderer
	images *TileImages
	cam    *Camera
	face   ebtext.Face
	info   *InfoBar

	events <-chan string
	load   func() (*tmx.Map, error)
}

// New creates a view of m. It fails when m's orientation has no renderer.
func New(m *tmx.Map, opts Options) (*MapView, error) {
	if opts.Background == nil {
		opts.Background = color.NRGBA{R: 100, G: 100, B: 100, A: 0xff}
	}
	if opts.WheelSpeed <= 0 {
		opts.WheelSpeed = 1
	}
	face := newFace()
	v := &MapView{
		opts: opts,
		cam:  NewCamera(opts.Width, opts.Height, m.TileWidth(), m.TileHeight()),
		face: face,
		info: NewInfoBar(face, opts.InfoBar),
	}
	if err := v.Reload(m); err != nil {
		return nil, err
	}
	return v, nil
}

// Map returns the map currently shown.
func (v *MapView) Map() *tmx.Map { return v.m }

// Reload replaces the shown map. The scroll position is kept where the new
// map allows it.
func (v *MapView) Reload(m *tmx.Map) error {
	r, err := render.New(m)
	if err != nil {
		return err
	}
	if v.images != nil {
		v.images.Dispose()
	}
	v.m = m
	v.r = r
	v.images = NewTileImages(m, v.opts.CacheSize)
	v.cam.SetTileSize(m.TileWidth(), m.TileHeight())
	size := r.MapSize()
	v.cam.SetWorldSize(size.X, size.Y)
	v.info.SetMap(m)
	if v.opts.Debug {
		log.Printf("view: %v, %dx%d pixels", m, size.X, size.Y)
	}
	return nil
}

// Watch makes Update reload the map through load whenever events delivers
// a changed path.
func (v *MapView) Watch(events <-chan string, load func() (*tmx.Map, error)) {
	v.events = events
	v.load = load
}

func (v *MapView) Update() error {
	v.drainEvents()
	v.handleInput()

	cx, cy := ebiten.CursorPosition()
	px, py := v.cam.ScreenToWorld(cx, cy)
	v.info.SetCursor(v.m, v.r.ScreenToTile(px, py))
	v.info.Update()
	return nil
}

func (v *MapView) drainEvents() {
	if v.events == nil {
		return
	}
	changed := ""
drain:
	for {
		select {
		case name, ok := <-v.events:
			if !ok {
				v.events = nil
				break drain
			}
			changed = name
		default:
			break drain
		}
	}
	if changed == "" {
		return
	}
	m, err := v.load()
	if err != nil {
		log.Printf("reload after change to %s: %v", changed, err)
		return
	}
	if err := v.Reload(m); err != nil {
		log.Printf("reload %s: %v", m.Path(), err)
		return
	}
	log.Printf("reloaded %s", m.Path())
}

func (v *MapView) handleInput() {
	dx, dy := 0, 0
	if repeating(ebiten.KeyArrowLeft) || repeating(ebiten.KeyA) {
		dx--
	}
	if repeating(ebiten.KeyArrowRight) || repeating(ebiten.KeyD) {
		dx++
	}
	if repeating(ebiten.KeyArrowUp) || repeating(ebiten.KeyW) {
		dy--
	}
	if repeating(ebiten.KeyArrowDown) || repeating(ebiten.KeyS) {
		dy++
	}
	v.cam.ScrollUnits(dx, dy)

	bx, by := 0, 0
	if repeating(ebiten.KeyPageUp) {
		by--
	}
	if repeating(ebiten.KeyPageDown) {
		by++
	}
	if repeating(ebiten.KeyHome) {
		bx--
	}
	if repeating(ebiten.KeyEnd) {
		bx++
	}
	v.cam.ScrollBlocks(bx, by)

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		uw, uh := v.cam.UnitIncrement()
		k := v.opts.WheelSpeed
		v.cam.ScrollBy(int(math.Round(-wx*k*float64(uw))), int(math.Round(-wy*k*float64(uh))))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		v.info.SetVisible(!v.info.Visible())
	}
}

// repeating reports a key press on the first tick and then at the repeat
// rate while the key is held.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	if d == 1 {
		return true
	}
	return d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func (v *MapView) Draw(screen *ebiten.Image) {
	screen.Fill(v.opts.Background)

	view := v.cam.View()
	if bg, ok := v.m.BackgroundColor(); ok {
		area := image.Rectangle{Max: v.r.MapSize()}.Intersect(view).Sub(view.Min)
		if !area.Empty() {
			screen.SubImage(area).(*ebiten.Image).Fill(bg)
		}
	}

	s := NewImageSurface(screen, view, v.images, v.face)
	render.PaintMap(v.r, s, v.m)

	v.info.Draw(screen)
}

func (v *MapView) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.cam.SetViewSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func (v *MapView) Run(title string) error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(v.opts.Width, v.opts.Height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(v)
}
