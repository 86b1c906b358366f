package glbackend

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"mini-vox/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	overlayPixels = 16
	atlasWidth    = 512
	firstGlyph    = rune(32)
	lastGlyph     = rune(126)
)

// glyph is a character's placement in the atlas and its metrics, in pixels.
type glyph struct {
	x, y     float32
	w, h     float32
	bearingX float32
	bearingY float32
	advance  float32
}

type fontAtlas struct {
	img    *image.Alpha
	glyphs map[rune]glyph
}

// bakeAtlas renders printable ASCII from face into a single-channel atlas,
// packing glyphs in rows.
func bakeAtlas(face font.Face) *fontAtlas {
	const padding = 1
	type placed struct {
		r     rune
		dr    image.Rectangle
		mask  image.Image
		maskp image.Point
		adv   fixed.Int26_6
	}

	var glyphs []placed
	x, y, rowH := 0, 0, 0
	for r := firstGlyph; r <= lastGlyph; r++ {
		dr, mask, maskp, adv, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		if x+dr.Dx() > atlasWidth {
			x, y = 0, y+rowH+padding
			rowH = 0
		}
		glyphs = append(glyphs, placed{r: r, dr: dr, mask: mask, maskp: maskp, adv: adv})
		x += dr.Dx() + padding
		rowH = max(rowH, dr.Dy())
	}
	height := 1
	for height < y+rowH {
		height <<= 1
	}

	atlas := &fontAtlas{
		img:    image.NewAlpha(image.Rect(0, 0, atlasWidth, height)),
		glyphs: make(map[rune]glyph, len(glyphs)),
	}
	x, y, rowH = 0, 0, 0
	for _, g := range glyphs {
		gw, gh := g.dr.Dx(), g.dr.Dy()
		if x+gw > atlasWidth {
			x, y = 0, y+rowH+padding
			rowH = 0
		}
		if gw > 0 && gh > 0 {
			draw.Draw(atlas.img, image.Rect(x, y, x+gw, y+gh), g.mask, g.maskp, draw.Src)
		}
		atlas.glyphs[g.r] = glyph{
			x: float32(x), y: float32(y),
			w: float32(gw), h: float32(gh),
			bearingX: float32(g.dr.Min.X),
			bearingY: float32(-g.dr.Min.Y),
			advance:  float32(math.Round(float64(g.adv) / 64.0)),
		}
		x += gw + padding
		rowH = max(rowH, gh)
	}
	return atlas
}

// layout builds position/uv quads for lines starting at (x, y) with the
// baseline moving down by step per line.
func (a *fontAtlas) layout(lines []string, x, y, step float32) []float32 {
	aw := float32(a.img.Rect.Dx())
	ah := float32(a.img.Rect.Dy())
	var out []float32
	for _, line := range lines {
		pen := x
		for _, r := range line {
			g, ok := a.glyphs[r]
			if !ok {
				g = a.glyphs[' ']
			}
			if g.w > 0 && g.h > 0 {
				x0, y0 := pen+g.bearingX, y-g.bearingY
				x1, y1 := x0+g.w, y0+g.h
				u0, v0 := g.x/aw, g.y/ah
				u1, v1 := (g.x+g.w)/aw, (g.y+g.h)/ah
				out = append(out,
					x0, y1, u0, v1,
					x0, y0, u0, v0,
					x1, y0, u1, v0,
					x0, y1, u0, v1,
					x1, y0, u1, v0,
					x1, y1, u1, v1,
				)
			}
			pen += g.advance
		}
		y += step
	}
	return out
}

type overlay struct {
	atlas   *fontAtlas
	shader  *Shader
	texture uint32
	vao     uint32
	vbo     uint32
}

func newOverlay() (*overlay, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: overlayPixels, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	shader, err := loadShader("text")
	if err != nil {
		return nil, err
	}
	o := &overlay{atlas: bakeAtlas(face), shader: shader}

	img := o.atlas.img
	gl.GenTextures(1, &o.texture)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return o, nil
}

// draw renders lines into the default framebuffer's top-left corner.
func (o *overlay) draw(lines []string, ext render.Extent) {
	verts := o.atlas.layout(lines, 8, overlayPixels+4, overlayPixels+4)
	if len(verts) == 0 {
		return
	}
	projection := mgl32.Ortho(0, float32(ext.Width), float32(ext.Height), 0, -1, 1)

	gl.Viewport(0, 0, int32(ext.Width), int32(ext.Height))
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.shader.Use()
	o.shader.SetVector3("textColor", 1, 1, 1)
	o.shader.SetMatrix4("projection", &projection[0])
	o.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)

	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	size := len(verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(verts)/4))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
}

func (o *overlay) release() {
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteTextures(1, &o.texture)
	o.shader.Delete()
}
