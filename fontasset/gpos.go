package fontasset

import (
	"errors"
	"fmt"

	"github.com/npillmayer/thaifix/otkern"
	"github.com/npillmayer/thaifix/sfntio"
)

// ImportGPOS seeds the feature table from the pair positioning lookups of
// the source font's GPOS table. Only pairs between glyphs of the character
// table are imported, and records already present in the table are kept.
// It returns the number of records added. A font without a GPOS table
// yields no records and no error.
func (a *Asset) ImportGPOS() (int, error) {
	src, err := a.Source()
	if err != nil {
		return 0, err
	}
	gpos, err := sfntio.Table(src.Binary, "GPOS")
	if errors.Is(err, sfntio.ErrTableNotFound) {
		tracer().Infof("font %s has no GPOS table", src.Fontname)
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	glyphs := a.Glyphs()
	universe := make([]otkern.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		universe[i] = otkern.GlyphIndex(g)
	}
	pairs, err := otkern.ReadPairs(gpos, universe)
	if err != nil {
		var perr otkern.ParseErrors
		if !errors.As(err, &perr) {
			return 0, fmt.Errorf("cannot import GPOS of %s: %w", src.Fontname, err)
		}
		tracer().Errorf("font %s: %v", src.Fontname, err)
	}
	n := 0
	for _, p := range pairs {
		l, r := GlyphIndex(p.Left), GlyphIndex(p.Right)
		if _, exists := a.Features.Get(l, r); exists {
			continue
		}
		a.Features.Upsert(PairAdjustmentRecord{
			First:  GlyphAdjustmentRecord{GlyphIndex: l, Value: ValueRecord(p.First)},
			Second: GlyphAdjustmentRecord{GlyphIndex: r, Value: ValueRecord(p.Second)},
		})
		n++
	}
	tracer().Infof("imported %d glyph pairs from GPOS of %s", n, src.Fontname)
	return n, nil
}

// KernPairs returns the feature table as GPOS pair values, in table order.
func (a *Asset) KernPairs() []otkern.PairValue {
	pairs := make([]otkern.PairValue, 0, a.Features.Len())
	a.Features.Each(func(rec *PairAdjustmentRecord) {
		pairs = append(pairs, otkern.PairValue{
			Left:   otkern.GlyphIndex(rec.First.GlyphIndex),
			Right:  otkern.GlyphIndex(rec.Second.GlyphIndex),
			First:  otkern.ValueRecord(rec.First.Value),
			Second: otkern.ValueRecord(rec.Second.Value),
		})
	})
	return pairs
}

// BuildFont returns the source font's binary with a GPOS table rebuilt from
// the feature table. If the source font already has a GPOS table, replace
// must be set, as the existing table will be lost.
func (a *Asset) BuildFont(opts otkern.Options, replace bool) ([]byte, error) {
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	if _, err := sfntio.Table(src.Binary, "GPOS"); err == nil && !replace {
		return nil, fmt.Errorf("font %s already has a GPOS table, refusing to replace it", src.Fontname)
	}
	gpos, err := otkern.EncodeGPOS(a.KernPairs(), opts)
	if err != nil {
		return nil, err
	}
	return sfntio.ReplaceTable(src.Binary, "GPOS", gpos)
}
