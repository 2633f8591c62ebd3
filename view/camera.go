package view

import "image"

// Camera is the scroll position of the map view. X and Y are the map pixel
// shown at the top-left corner of the window.
type Camera struct {
	X, Y int

	viewW, viewH   int
	worldW, worldH int
	unitW, unitH   int
}

// NewCamera creates a camera for a view of the given size scrolling over a
// map made of tileW x tileH cells.
func NewCamera(viewW, viewH, tileW, tileH int) *Camera {
	c := &Camera{viewW: viewW, viewH: viewH}
	c.SetTileSize(tileW, tileH)
	return c
}

// SetViewSize updates the window size and re-clamps the scroll position.
func (c *Camera) SetViewSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if c.viewW == w && c.viewH == h {
		return
	}
	c.viewW = w
	c.viewH = h
	c.clampPos()
}

// SetWorldSize sets the pixel size of the rendered map.
func (c *Camera) SetWorldSize(w, h int) {
	c.worldW = w
	c.worldH = h
	c.clampPos()
}

// SetTileSize sets the unit scroll increment.
func (c *Camera) SetTileSize(w, h int) {
	c.unitW = max(w, 1)
	c.unitH = max(h, 1)
}

// UnitIncrement is the scroll step for arrow keys and the wheel: one tile.
func (c *Camera) UnitIncrement() (int, int) {
	return c.unitW, c.unitH
}

// BlockIncrement is the scroll step for page keys: the number of whole tiles
// that fit in the view, less one, and never below one tile.
func (c *Camera) BlockIncrement() (int, int) {
	return block(c.viewW, c.unitW), block(c.viewH, c.unitH)
}

func block(view, unit int) int {
	return max(view/unit-1, 1) * unit
}

// ScrollBy moves the view by dx,dy pixels.
func (c *Camera) ScrollBy(dx, dy int) {
	c.X += dx
	c.Y += dy
	c.clampPos()
}

// ScrollUnits moves the view by whole unit increments.
func (c *Camera) ScrollUnits(dx, dy int) {
	c.ScrollBy(dx*c.unitW, dy*c.unitH)
}

// ScrollBlocks moves the view by whole block increments.
func (c *Camera) ScrollBlocks(dx, dy int) {
	bw, bh := c.BlockIncrement()
	c.ScrollBy(dx*bw, dy*bh)
}

// View returns the visible region in map pixels.
func (c *Camera) View() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.viewW, c.Y+c.viewH)
}

// ScreenToWorld converts a window position to map pixels.
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	return float64(c.X + sx), float64(c.Y + sy)
}

func (c *Camera) clampPos() {
	c.X = clampAxis(c.X, c.viewW, c.worldW)
	c.Y = clampAxis(c.Y, c.viewH, c.worldH)
}

func clampAxis(pos, view, world int) int {
	if world <= view {
		// world smaller than view: center on world
		return -(view - world) / 2
	}
	return clamp(pos, 0, world-view)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
