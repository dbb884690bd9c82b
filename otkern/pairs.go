/*
Package otkern reads and writes OpenType pair positioning data (GPOS lookup
type 2). It is the bridge between a font asset's glyph pair adjustment table
and OpenType fonts:

  - ReadPairs extracts pair adjustments from an existing GPOS table.
  - EncodeGPOS builds a GPOS table from a list of pair adjustments.
  - WriteFeatureFile writes the same list in AFDKO feature file syntax.

Only the value record fields for placement and advance are supported.
Device tables are ignored when reading and never written.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otkern

import (
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thaifix.asset'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.asset")
}

// GlyphIndex is a glyph ID within a font.
type GlyphIndex uint16

// ValueFormat is the bit set describing which fields a GPOS value record
// carries.
type ValueFormat uint16

// Value record fields.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
const (
	ValueFormatXPlacement ValueFormat = 0x0001
	ValueFormatYPlacement ValueFormat = 0x0002
	ValueFormatXAdvance   ValueFormat = 0x0004
	ValueFormatYAdvance   ValueFormat = 0x0008
	ValueFormatXPlaDevice ValueFormat = 0x0010
	ValueFormatYPlaDevice ValueFormat = 0x0020
	ValueFormatXAdvDevice ValueFormat = 0x0040
	ValueFormatYAdvDevice ValueFormat = 0x0080
)

// size returns the size in bytes of a value record of this format.
func (f ValueFormat) size() int {
	n := 0
	for bit := ValueFormat(1); bit <= ValueFormatYAdvDevice; bit <<= 1 {
		if f&bit != 0 {
			n += 2
		}
	}
	return n
}

// ValueRecord holds the adjustments for one glyph of a pair, in font
// design units.
type ValueRecord struct {
	XPlacement float64
	YPlacement float64
	XAdvance   float64
	YAdvance   float64
}

// IsZero is true if the record carries no adjustment.
func (vr ValueRecord) IsZero() bool {
	return vr == ValueRecord{}
}

// format returns the fields of vr which are non-zero.
func (vr ValueRecord) format() ValueFormat {
	var f ValueFormat
	if vr.XPlacement != 0 {
		f |= ValueFormatXPlacement
	}
	if vr.YPlacement != 0 {
		f |= ValueFormatYPlacement
	}
	if vr.XAdvance != 0 {
		f |= ValueFormatXAdvance
	}
	if vr.YAdvance != 0 {
		f |= ValueFormatYAdvance
	}
	return f
}

func (vr ValueRecord) String() string {
	return fmt.Sprintf("<%g %g %g %g>", vr.XPlacement, vr.YPlacement, vr.XAdvance, vr.YAdvance)
}

// PairValue is the adjustment of an ordered pair of glyphs.
type PairValue struct {
	Left, Right   GlyphIndex
	First, Second ValueRecord
}

// SortPairs orders pairs by left, then right glyph.
func SortPairs(pairs []PairValue) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Left != pairs[j].Left {
			return pairs[i].Left < pairs[j].Left
		}
		return pairs[i].Right < pairs[j].Right
	})
}
