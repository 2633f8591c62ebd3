package view

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/tmxviewer/tmx"
)

// InfoBar is the strip along the bottom of the window showing the map
// summary and the tile under the cursor.
type InfoBar struct {
	ui      *ebitenui.UI
	panel   *widget.Container
	summary *widget.Text
	cursor  *widget.Text
	visible bool
}

func newFace() ebtext.Face {
	return ebtext.NewGoXFace(basicfont.Face7x13)
}

func NewInfoBar(face ebtext.Face, visible bool) *InfoBar {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	summary := widget.NewText(widget.TextOpts.Text("", &face, white))
	cursor := widget.NewText(widget.TextOpts.Text("", &face, color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}))

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(24),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 4, Bottom: 4, Left: 8, Right: 8}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
				StretchHorizontal:  true,
			}),
		),
	)
	panel.AddChild(summary)
	panel.AddChild(cursor)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)

	b := &InfoBar{
		ui:      &ebitenui.UI{Container: root},
		panel:   panel,
		summary: summary,
		cursor:  cursor,
	}
	b.SetVisible(visible)
	return b
}

func (b *InfoBar) Visible() bool { return b.visible }

func (b *InfoBar) SetVisible(v bool) {
	b.visible = v
	if v {
		b.panel.GetWidget().Visibility = widget.Visibility_Show
	} else {
		b.panel.GetWidget().Visibility = widget.Visibility_Hide
	}
}

func (b *InfoBar) SetMap(m *tmx.Map) {
	b.summary.Label = summaryLine(m)
}

func (b *InfoBar) SetCursor(m *tmx.Map, tile image.Point) {
	b.cursor.Label = cursorLine(m, tile)
}

func (b *InfoBar) Update() {
	if b.visible {
		b.ui.Update()
	}
}

func (b *InfoBar) Draw(screen *ebiten.Image) {
	if b.visible {
		b.ui.Draw(screen)
	}
}

func summaryLine(m *tmx.Map) string {
	name := "<input>"
	if m.Path() != "" {
		name = filepath.Base(m.Path())
	}
	return fmt.Sprintf("%s  %s %dx%d tiles of %dx%d  %d layers",
		name, m.Orientation(), m.Width(), m.Height(), m.TileWidth(), m.TileHeight(), m.LayerCount())
}

// cursorLine describes the topmost visible tile at tile, or just the
// coordinates when nothing is there.
func cursorLine(m *tmx.Map, tile image.Point) string {
	if tile.X < 0 || tile.Y < 0 || tile.X >= m.Width() || tile.Y >= m.Height() {
		return ""
	}
	layers := m.TileLayers()
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !l.Visible() {
			continue
		}
		t := l.TileAt(tile.X, tile.Y)
		if t == nil {
			continue
		}
		line := fmt.Sprintf("(%d,%d) %s: gid %d", tile.X, tile.Y, l.Name(), t.GID())
		if t.Type() != "" {
			line += " " + t.Type()
		}
		return line
	}
	return fmt.Sprintf("(%d,%d)", tile.X, tile.Y)
}
