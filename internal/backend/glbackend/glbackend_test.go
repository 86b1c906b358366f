package glbackend

import (
	"testing"

	"mini-vox/internal/render"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

func TestAcquireStatus(t *testing.T) {
	chain := render.Extent{Width: 800, Height: 600}
	tests := []struct {
		fb   render.Extent
		want render.AcquireStatus
	}{
		{render.Extent{Width: 800, Height: 600}, render.AcquireReady},
		{render.Extent{Width: 801, Height: 600}, render.AcquireOutOfDate},
		{render.Extent{Width: 0, Height: 0}, render.AcquireOutOfDate},
		{render.Extent{Width: 800, Height: 0}, render.AcquireOutOfDate},
	}
	for _, tt := range tests {
		if got := acquireStatus(tt.fb, chain); got != tt.want {
			t.Errorf("acquireStatus(%v) = %v, want %v", tt.fb, got, tt.want)
		}
	}
}

func TestImageCount(t *testing.T) {
	for _, tt := range []struct{ min, want int }{{0, 2}, {1, 2}, {2, 2}, {3, 3}, {5, 5}} {
		if got := imageCount(tt.min); got != tt.want {
			t.Errorf("imageCount(%d) = %d, want %d", tt.min, got, tt.want)
		}
	}
}

func TestFlipRows(t *testing.T) {
	pix := []byte{
		1, 1,
		2, 2,
		3, 3,
	}
	flipRows(pix, 2, 3)
	want := []byte{3, 3, 2, 2, 1, 1}
	for i := range want {
		if pix[i] != want[i] {
			t.Fatalf("flipRows = %v, want %v", pix, want)
		}
	}
}

func testAtlas(t *testing.T) *fontAtlas {
	t.Helper()
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: overlayPixels, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	defer face.Close()
	return bakeAtlas(face)
}

func TestBakeAtlas(t *testing.T) {
	a := testAtlas(t)
	if len(a.glyphs) != int(lastGlyph-firstGlyph+1) {
		t.Errorf("baked %d glyphs, want %d", len(a.glyphs), lastGlyph-firstGlyph+1)
	}
	h := a.img.Rect.Dy()
	if h&(h-1) != 0 {
		t.Errorf("atlas height %d is not a power of two", h)
	}
	for r, g := range a.glyphs {
		if g.x+g.w > float32(atlasWidth) || g.y+g.h > float32(h) {
			t.Errorf("glyph %q at %v,%v size %vx%v escapes the atlas", r, g.x, g.y, g.w, g.h)
		}
	}
	if a.glyphs[' '].w != 0 || a.glyphs[' '].advance <= 0 {
		t.Errorf("space glyph = %+v", a.glyphs[' '])
	}
}

func TestLayoutEmitsSixVerticesPerVisibleGlyph(t *testing.T) {
	a := testAtlas(t)
	verts := a.layout([]string{"fps 60", "q 3"}, 0, 16, 20)
	visible := len("fps60") + len("q3")
	if got := len(verts) / 4; got != visible*6 {
		t.Fatalf("layout produced %d vertices, want %d", got, visible*6)
	}
	for i := 2; i < len(verts); i += 4 {
		if verts[i] < 0 || verts[i] > 1 || verts[i+1] < 0 || verts[i+1] > 1 {
			t.Fatalf("uv %v,%v outside [0,1]", verts[i], verts[i+1])
		}
	}
}
