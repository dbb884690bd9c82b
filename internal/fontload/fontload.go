package fontload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'thaifix.asset'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.asset")
}

// ScalableFont is a parsed scalable font with original bytes and SFNT view.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("cannot parse font %s: %w", fontfile, err)
	}
	if abs, err := filepath.Abs(fontfile); err == nil {
		f.Filepath = abs
	} else {
		f.Filepath = fontfile
	}
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil {
		f.Fontname = ""
	}
	return f, nil
}

// Locate resolves a font reference to a file path. A reference naming an
// existing file is returned as is. Otherwise the reference is treated as the
// name of an installed system font.
func Locate(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty font reference")
	}
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		return ref, nil
	}
	fpath, err := findfont.Find(ref)
	if err != nil {
		return "", fmt.Errorf("font %q not found: %w", ref, err)
	}
	tracer().Debugf("%s is a system font at %s", ref, fpath)
	return fpath, nil
}

// Resolve locates a font by path or system font name and loads it.
func Resolve(ref string) (*ScalableFont, error) {
	fpath, err := Locate(ref)
	if err != nil {
		return nil, err
	}
	f, err := LoadOpenTypeFont(fpath)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loaded SFNT font = %s", f.Fontname)
	return f, nil
}

// GlyphIndex returns the glyph index for rune r. Glyph 0 (.notdef) counts as
// not present.
func (f *ScalableFont) GlyphIndex(r rune) (uint16, bool) {
	if f == nil || f.SFNT == nil {
		return 0, false
	}
	var buf sfnt.Buffer
	gid, err := f.SFNT.GlyphIndex(&buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return uint16(gid), true
}

// GlyphName returns the PostScript name of a glyph, or "" if the font does
// not carry glyph names.
func (f *ScalableFont) GlyphName(gid uint16) string {
	if f == nil || f.SFNT == nil {
		return ""
	}
	var buf sfnt.Buffer
	name, err := f.SFNT.GlyphName(&buf, sfnt.GlyphIndex(gid))
	if err != nil {
		return ""
	}
	return name
}

// UnitsPerEm returns the font's design units per em.
func (f *ScalableFont) UnitsPerEm() int {
	if f == nil || f.SFNT == nil {
		return 0
	}
	return int(f.SFNT.UnitsPerEm())
}
