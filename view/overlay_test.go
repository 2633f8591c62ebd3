package view

import (
	"image"
	"testing"

	"github.com/milk9111/tmxviewer/tmx"
)

func TestInfoLines(t *testing.T) {
	m, err := tmx.ReadMap("../tmx/testdata/ortho.tmx")
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}

	if got, want := summaryLine(m), "ortho.tmx  orthogonal 4x3 tiles of 16x16  3 layers"; got != want {
		t.Fatalf("summaryLine = %q, want %q", got, want)
	}

	cases := []struct {
		name string
		at   image.Point
		want string
	}{
		// the trees layer above is hidden, so ground shows through
		{"typed_tile", image.Pt(0, 0), "(0,0) ground: gid 1 grass"},
		{"class_tile", image.Pt(1, 1), "(1,1) ground: gid 6 water"},
		{"plain_tile", image.Pt(2, 0), "(2,0) ground: gid 3"},
		{"empty_cell", image.Pt(1, 2), "(1,2)"},
		{"outside", image.Pt(4, 0), ""},
		{"negative", image.Pt(-1, 1), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := cursorLine(m, c.at); got != c.want {
				t.Fatalf("cursorLine(%v) = %q, want %q", c.at, got, c.want)
			}
		})
	}
}
