/*
Package fontasset implements the font asset edited by the Thai glyph fixer.

A font asset is bound to an OpenType source font. It carries a character
table, mapping runes to glyph indices of the source font, and a feature
table of glyph pair adjustment records. Pair adjustment records are keyed by
an ordered pair of glyph indices; for every such pair there is at most one
record.

Assets are persisted as JSON documents. The source font is attached lazily,
whenever a character not yet in the character table is requested.

An Asset is not safe for concurrent use.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontasset

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/internal/fontload"
	"github.com/npillmayer/thaifix/thai"
)

// tracer traces with key 'thaifix.asset'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.asset")
}

// ErrNoSource is returned if an operation needs the source font of an asset,
// but the asset has none or it cannot be loaded.
var ErrNoSource = errors.New("font asset has no usable source font")

// GlyphIndex is a glyph ID of the source font. Glyph 0 (.notdef) is never
// entered into the character table.
type GlyphIndex uint16

// Asset is a font asset.
type Asset struct {
	Name       string               // display name, by default the source font's file name
	GUID       string               // stable identifier, derived from the source path
	SourcePath string               // absolute path of the OpenType source font
	UnitsPerEm int                  // design units of the source font
	Characters map[rune]GlyphIndex // character table
	Features   *PairTable           // glyph pair adjustment records

	path      string // file the asset has been loaded from or saved to
	source    *fontload.ScalableFont
	sourceErr error
	dirty     bool
}

// New creates an empty asset for a source font. The font is not loaded
// until it is needed.
func New(name, sourcePath string) *Asset {
	if abs, err := filepath.Abs(sourcePath); err == nil && sourcePath != "" {
		sourcePath = abs
	}
	return &Asset{
		Name:       name,
		GUID:       GUIDFor(sourcePath),
		SourcePath: sourcePath,
		Characters: make(map[rune]GlyphIndex),
		Features:   NewPairTable(),
		dirty:      true,
	}
}

// FromFont creates an asset from an OpenType font, given either as a file
// path or as the name of an installed font. The character table is seeded
// with every Thai character of the glyph groups which the font supports.
func FromFont(ref string) (*Asset, error) {
	f, err := fontload.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("cannot create font asset: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(f.Filepath), filepath.Ext(f.Filepath))
	a := New(name, f.Filepath)
	a.attach(f)
	added, missing := a.AddCharacters(allGroupRunes())
	tracer().Infof("font asset %s: %d Thai characters, %d missing in font", name, added, len(missing))
	return a, nil
}

// GUIDFor derives an asset identifier from a source font path.
func GUIDFor(sourcePath string) string {
	sum := md5.Sum([]byte(filepath.ToSlash(sourcePath)))
	return hex.EncodeToString(sum[:])
}

// Path returns the file the asset was last loaded from or saved to.
func (a *Asset) Path() string {
	return a.path
}

// Dirty is true if the asset has been modified since it was last saved.
func (a *Asset) Dirty() bool {
	return a.dirty || a.Features.changed
}

// MarkDirty flags the asset as modified.
func (a *Asset) MarkDirty() {
	a.dirty = true
}

func (a *Asset) clean() {
	a.dirty = false
	a.Features.changed = false
}

// Source returns the source font, loading it on first use. A failure to
// load is remembered and reported on subsequent calls.
func (a *Asset) Source() (*fontload.ScalableFont, error) {
	if a.source != nil {
		return a.source, nil
	}
	if a.sourceErr != nil {
		return nil, a.sourceErr
	}
	if a.SourcePath == "" {
		a.sourceErr = ErrNoSource
		return nil, a.sourceErr
	}
	f, err := fontload.LoadOpenTypeFont(a.SourcePath)
	if err != nil {
		a.sourceErr = fmt.Errorf("%w: %v", ErrNoSource, err)
		tracer().Errorf("font asset %s: %v", a.Name, a.sourceErr)
		return nil, a.sourceErr
	}
	a.attach(f)
	return f, nil
}

func (a *Asset) attach(f *fontload.ScalableFont) {
	a.source = f
	a.sourceErr = nil
	if upem := f.UnitsPerEm(); upem > 0 && a.UnitsPerEm != upem {
		a.UnitsPerEm = upem
		a.dirty = true
	}
}

// GlyphIndex resolves a character to a glyph index. Characters not yet in
// the character table are looked up in the source font and added if the font
// supports them. The second return value is false if the character is absent.
func (a *Asset) GlyphIndex(r rune) (GlyphIndex, bool) {
	if g, ok := a.Characters[r]; ok {
		return g, true
	}
	src, err := a.Source()
	if err != nil {
		return 0, false
	}
	gid, ok := src.GlyphIndex(r)
	if !ok {
		return 0, false
	}
	a.Characters[r] = GlyphIndex(gid)
	a.dirty = true
	tracer().Debugf("added character %#U as glyph %d", r, gid)
	return GlyphIndex(gid), true
}

// AddCharacters tries to add runes to the character table. It returns the
// number of characters added and the runes the source font does not support.
func (a *Asset) AddCharacters(runes []rune) (int, []rune) {
	added := 0
	var missing []rune
	for _, r := range runes {
		if _, ok := a.Characters[r]; ok {
			continue
		}
		if _, ok := a.GlyphIndex(r); ok {
			added++
		} else {
			missing = append(missing, r)
		}
	}
	return added, missing
}

// PairRecord returns the adjustment record for a glyph pair, creating an
// empty one if none exists. The second return value is true if the record
// has been created.
func (a *Asset) PairRecord(left, right GlyphIndex) (*PairAdjustmentRecord, bool) {
	return a.Features.fetchOrCreate(left, right)
}

// Glyphs returns the distinct glyph indices of the character table, sorted.
func (a *Asset) Glyphs() []GlyphIndex {
	seen := make(map[GlyphIndex]bool, len(a.Characters))
	glyphs := make([]GlyphIndex, 0, len(a.Characters))
	for _, g := range a.Characters {
		if !seen[g] {
			seen[g] = true
			glyphs = append(glyphs, g)
		}
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	return glyphs
}

// Runes returns the characters mapped to glyph g, sorted.
func (a *Asset) Runes(g GlyphIndex) []rune {
	var rr []rune
	for r, gid := range a.Characters {
		if gid == g {
			rr = append(rr, r)
		}
	}
	sort.Slice(rr, func(i, j int) bool { return rr[i] < rr[j] })
	return rr
}

func allGroupRunes() []rune {
	var all []rune
	seen := make(map[rune]bool)
	for _, g := range thai.Groups() {
		for _, r := range thai.Glyphs(g) {
			if !seen[r] {
				seen[r] = true
				all = append(all, r)
			}
		}
	}
	return all
}
