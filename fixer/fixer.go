/*
Package fixer applies glyph group pairs to the glyph pair adjustment table of
a font asset.

For every enabled pair, every character of the left group is combined with
every character of the right group. Both characters are resolved to glyph
indices, the adjustment record for the glyph pair is fetched or created, and
the placement offsets of the pair are written into the record. Advance
adjustments of existing records are left untouched.

Characters the font does not support are skipped. If several pairs address
the same glyph pair, the pair coming last in the list wins.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fixer

import (
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
)

// tracer traces with key 'thaifix.fixer'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.fixer")
}

// Asset is the part of a font asset the fixer operates on.
type Asset interface {
	GlyphIndex(r rune) (fontasset.GlyphIndex, bool)
	PairRecord(left, right fontasset.GlyphIndex) (*fontasset.PairAdjustmentRecord, bool)
}

// Report summarizes a run of Apply or Fix.
type Report struct {
	Pairs      int    // pairs considered
	Disabled   int    // pairs skipped as disabled
	Created    int    // adjustment records created
	Updated    int    // adjustment records overwritten
	Cleared    int    // records removed before applying, Fix only
	Unresolved []rune // characters without a glyph in the font, sorted
}

// Touched is the number of record writes.
func (r Report) Touched() int {
	return r.Created + r.Updated
}

// Apply writes the offsets of all enabled pairs into the asset's pair
// adjustment records.
func Apply(asset Asset, pairs []glyphpair.Pair) Report {
	var report Report
	missing := make(map[rune]bool)
	resolve := func(r rune) (fontasset.GlyphIndex, bool) {
		g, ok := asset.GlyphIndex(r)
		if !ok && !missing[r] {
			missing[r] = true
			tracer().Debugf("character %#U not in font, skipped", r)
		}
		return g, ok
	}
	for i, pair := range pairs {
		report.Pairs++
		if !pair.Enabled {
			report.Disabled++
			continue
		}
		tracer().Debugf("pair #%d %s", i, pair)
		for _, l := range pair.Left.Glyphs() {
			left, ok := resolve(l)
			if !ok {
				continue
			}
			for _, r := range pair.Right.Glyphs() {
				right, ok := resolve(r)
				if !ok {
					continue
				}
				rec, created := asset.PairRecord(left, right)
				rec.First.Value.XPlacement = pair.Left.Offset.X
				rec.First.Value.YPlacement = pair.Left.Offset.Y
				rec.Second.Value.XPlacement = pair.Right.Offset.X
				rec.Second.Value.YPlacement = pair.Right.Offset.Y
				if created {
					report.Created++
				} else {
					report.Updated++
				}
			}
		}
	}
	for r := range missing {
		report.Unresolved = append(report.Unresolved, r)
	}
	sort.Slice(report.Unresolved, func(i, j int) bool {
		return report.Unresolved[i] < report.Unresolved[j]
	})
	tracer().Infof("applied %d of %d glyph pairs: %d records created, %d updated, %d characters unresolved",
		report.Pairs-report.Disabled, report.Pairs, report.Created, report.Updated, len(report.Unresolved))
	return report
}

// Fix rebuilds the pair adjustment table of an asset from pairs: the table
// is cleared, then Apply is run. The asset is marked as modified.
func Fix(asset *fontasset.Asset, pairs []glyphpair.Pair) Report {
	cleared := asset.Features.Len()
	asset.Features.Clear()
	report := Apply(asset, pairs)
	report.Cleared = cleared
	asset.MarkDirty()
	return report
}
