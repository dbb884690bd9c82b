/*
Package preview renders a text sample with the glyph pair adjustments of a
font asset applied, to judge the effect of a set of glyph group pairs.

No shaping is performed. Characters are mapped to glyphs through the source
font's cmap, each glyph advances the pen by its nominal advance, and for every
two consecutive glyphs with a pair adjustment record in the asset, the
record's placement and advance adjustments are applied. This is what a text
engine using the asset's pair adjustment table does at runtime.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/fontasset"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/norm"
)

// tracer traces with key 'thaifix.preview'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.preview")
}

// Options control rendering.
type Options struct {
	PPEM       int  // pixels per em
	Width      int  // image width in pixels
	Height     int  // image height in pixels
	ShowBBoxes bool // outline glyph bounding boxes
}

// DefaultOptions returns options for a mid-sized preview image.
func DefaultOptions() Options {
	return Options{PPEM: 96, Width: 800, Height: 240}
}

// GlyphPos is a glyph of a laid out sample, with the pair adjustments
// applicable to it, in design units.
type GlyphPos struct {
	Rune     rune
	Glyph    fontasset.GlyphIndex // 0 if the font has no glyph for Rune
	XOffset  float64
	YOffset  float64
	XAdvance float64
	YAdvance float64
}

// Layout maps a text sample to glyphs and collects pair adjustments. The
// sample is NFC normalized first. Layout does not change the asset's
// pair table; characters missing in the character table are added if the
// source font supports them.
func Layout(asset *fontasset.Asset, text string) ([]GlyphPos, error) {
	if _, err := asset.Source(); err != nil {
		return nil, err
	}
	text = norm.NFC.String(text)
	glyphs := make([]GlyphPos, 0, len(text))
	for _, r := range text {
		g, _ := asset.GlyphIndex(r)
		glyphs = append(glyphs, GlyphPos{Rune: r, Glyph: g})
	}
	for i := 1; i < len(glyphs); i++ {
		prev, cur := &glyphs[i-1], &glyphs[i]
		if prev.Glyph == 0 || cur.Glyph == 0 {
			continue
		}
		rec, ok := asset.Features.Get(prev.Glyph, cur.Glyph)
		if !ok {
			continue
		}
		tracer().Debugf("pair %c%c: %v %v", prev.Rune, cur.Rune, rec.First.Value, rec.Second.Value)
		prev.adjust(rec.First.Value)
		cur.adjust(rec.Second.Value)
	}
	return glyphs, nil
}

func (gp *GlyphPos) adjust(v fontasset.ValueRecord) {
	gp.XOffset += v.XPlacement
	gp.YOffset += v.YPlacement
	gp.XAdvance += v.XAdvance
	gp.YAdvance += v.YAdvance
}

// Render draws a text sample, black on white, centered in the image.
func Render(asset *fontasset.Asset, text string, opts Options) (*image.RGBA, error) {
	if opts.PPEM <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid preview dimensions %dx%d at %d ppem", opts.Width, opts.Height, opts.PPEM)
	}
	glyphs, err := Layout(asset, text)
	if err != nil {
		return nil, err
	}
	if len(glyphs) == 0 {
		return nil, errors.New("empty text sample")
	}
	src, _ := asset.Source()
	sf := src.SFNT
	upem := float32(sf.UnitsPerEm())
	if upem <= 0 {
		return nil, errors.New("invalid units-per-em")
	}
	scale := float32(opts.PPEM) / upem

	type glyphPath struct {
		segs sfnt.Segments
		dx   float32
		dy   float32
	}
	paths := make([]glyphPath, 0, len(glyphs))
	var (
		penX, penY             float32
		minX, minY, maxX, maxY float32
		have                   bool
		buf                    sfnt.Buffer
	)
	for _, gp := range glyphs {
		gid := sfnt.GlyphIndex(gp.Glyph)
		segs, err := sf.LoadGlyph(&buf, gid, fixed.I(opts.PPEM), nil)
		if err == nil {
			// segments are invalidated by the next call using buf
			segs = append(sfnt.Segments(nil), segs...)
			dx := penX + float32(gp.XOffset)*scale
			dy := penY - float32(gp.YOffset)*scale
			paths = append(paths, glyphPath{segs: segs, dx: dx, dy: dy})
			b := segs.Bounds()
			x0, y0 := float32(b.Min.X)/64+dx, float32(b.Min.Y)/64+dy
			x1, y1 := float32(b.Max.X)/64+dx, float32(b.Max.Y)/64+dy
			if !have {
				minX, minY, maxX, maxY = x0, y0, x1, y1
				have = true
			} else {
				minX, minY = min(minX, x0), min(minY, y0)
				maxX, maxY = max(maxX, x1), max(maxY, y1)
			}
		}
		if adv, err := sf.GlyphAdvance(&buf, gid, fixed.I(opts.PPEM), font.HintingNone); err == nil {
			penX += float32(adv) / 64
		}
		penX += float32(gp.XAdvance) * scale
		penY -= float32(gp.YAdvance) * scale
	}
	if len(paths) == 0 {
		return nil, errors.New("no drawable glyph paths found")
	}
	shiftX := (float32(opts.Width)-(maxX-minX))/2 - minX
	shiftY := (float32(opts.Height)-(maxY-minY))/2 - minY

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	rast := vector.NewRasterizer(opts.Width, opts.Height)
	rast.DrawOp = draw.Over
	for _, p := range paths {
		ox, oy := shiftX+p.dx, shiftY+p.dy
		pt := func(q fixed.Point26_6) (float32, float32) {
			return ox + float32(q.X)/64, oy + float32(q.Y)/64
		}
		for _, seg := range p.segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				rast.MoveTo(pt(seg.Args[0]))
			case sfnt.SegmentOpLineTo:
				rast.LineTo(pt(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				rast.QuadTo(x1, y1, x2, y2)
			case sfnt.SegmentOpCubeTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				x3, y3 := pt(seg.Args[2])
				rast.CubeTo(x1, y1, x2, y2, x3, y3)
			}
		}
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})
	if opts.ShowBBoxes {
		for _, p := range paths {
			b := p.segs.Bounds()
			ox, oy := int(shiftX+p.dx), int(shiftY+p.dy)
			drawRectOutline(img, b.Min.X.Floor()+ox, b.Min.Y.Floor()+oy,
				b.Max.X.Ceil()+ox, b.Max.Y.Ceil()+oy, color.RGBA{255, 0, 0, 255})
		}
	}
	tracer().Debugf("rendered %d glyphs", len(paths))
	return img, nil
}

// WritePNG renders a sample and encodes it as PNG.
func WritePNG(w io.Writer, asset *fontasset.Asset, text string, opts Options) error {
	img, err := Render(asset, text, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}

// SavePNG renders a sample into a PNG file, creating its directory if
// necessary.
func SavePNG(outPath string, asset *fontasset.Asset, text string, opts Options) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := WritePNG(f, asset, text, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawRectOutline(img *image.RGBA, minX, minY, maxX, maxY int, c color.RGBA) {
	b := img.Bounds()
	minX, minY = max(minX, b.Min.X), max(minY, b.Min.Y)
	maxX, maxY = min(maxX, b.Max.X), min(maxY, b.Max.Y)
	if minX >= maxX || minY >= maxY {
		return
	}
	for x := minX; x < maxX; x++ {
		img.SetRGBA(x, minY, c)
		img.SetRGBA(x, maxY-1, c)
	}
	for y := minY; y < maxY; y++ {
		img.SetRGBA(minX, y, c)
		img.SetRGBA(maxX-1, y, c)
	}
}
