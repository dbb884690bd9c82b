package otkern

import (
	"fmt"
	"math"
	"sort"
)

// Options control the structure of an encoded GPOS table.
type Options struct {
	Feature string   // feature tag, defaults to "kern"
	Scripts []string // script tags, default to "DFLT" and "thai"
}

func (o Options) normalize() Options {
	if o.Feature == "" {
		o.Feature = "kern"
	}
	if len(o.Scripts) == 0 {
		o.Scripts = []string{"DFLT", "thai"}
	}
	scripts := append([]string{}, o.Scripts...)
	sort.Strings(scripts)
	o.Scripts = scripts
	return o
}

const maxOffset = 0xFFFF

// EncodeGPOS builds a GPOS table (version 1.0) containing a single pair
// adjustment lookup, referenced by one feature for every script in opts.
//
// Pairs are written as PairPos format 1 subtables. If a glyph pair occurs
// more than once in pairs, the last occurrence is used. Both value formats
// carry at least the x and y placement; advance fields are added if any
// pair uses them. Values are rounded to integer design units and must fit
// into 16 bits. Large lookups are split into several subtables, which are
// wrapped into extension subtables if they do not fit into 16-bit offsets.
// A pair set which cannot be placed within 16-bit reach of its subtable
// header yields ErrOffsetOverflow; this cannot happen for the first set of
// a subtable, so in practice every valid input is encodable.
func EncodeGPOS(pairs []PairValue, opts Options) ([]byte, error) {
	opts = opts.normalize()
	for _, tag := range append([]string{opts.Feature}, opts.Scripts...) {
		if len(tag) == 0 || len(tag) > 4 {
			return nil, fmt.Errorf("invalid OpenType tag %q", tag)
		}
	}
	sets, vf1, vf2, err := groupPairs(pairs)
	if err != nil {
		return nil, err
	}
	lookup, err := encodeLookup(sets, vf1, vf2)
	if err != nil {
		return nil, err
	}
	scriptList := encodeScriptList(opts.Scripts)
	featureList := encodeFeatureList(opts.Feature)
	var lookupList table
	lookupList.u16(1)
	lookupList.u16(4)
	lookupList = append(lookupList, lookup...)

	var gpos table
	gpos.u16(1) // major version
	gpos.u16(0) // minor version
	gpos.u16(10)
	gpos.u16(uint16(10 + len(scriptList)))
	gpos.u16(uint16(10 + len(scriptList) + len(featureList)))
	gpos = append(gpos, scriptList...)
	gpos = append(gpos, featureList...)
	gpos = append(gpos, lookupList...)
	tracer().Debugf("encoded GPOS table of %d bytes for %d glyph pairs", len(gpos), len(pairs))
	return gpos, nil
}

// pairSet holds the pairs sharing a first glyph, sorted by second glyph.
type pairSet struct {
	first GlyphIndex
	pairs []encodedPair
}

type encodedPair struct {
	second GlyphIndex
	v1, v2 [4]int16
}

func groupPairs(pairs []PairValue) ([]pairSet, ValueFormat, ValueFormat, error) {
	vf1 := ValueFormatXPlacement | ValueFormatYPlacement
	vf2 := vf1
	last := make(map[uint32]int, len(pairs))
	for i, p := range pairs {
		last[uint32(p.Left)<<16|uint32(p.Right)] = i
		vf1 |= p.First.format()
		vf2 |= p.Second.format()
	}
	byFirst := make(map[GlyphIndex][]encodedPair)
	for i, p := range pairs {
		if last[uint32(p.Left)<<16|uint32(p.Right)] != i {
			continue
		}
		v1, err := roundValues(p.First)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("pair %d/%d: %w", p.Left, p.Right, err)
		}
		v2, err := roundValues(p.Second)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("pair %d/%d: %w", p.Left, p.Right, err)
		}
		byFirst[p.Left] = append(byFirst[p.Left], encodedPair{second: p.Right, v1: v1, v2: v2})
	}
	sets := make([]pairSet, 0, len(byFirst))
	for first, pp := range byFirst {
		sort.Slice(pp, func(i, j int) bool { return pp[i].second < pp[j].second })
		sets = append(sets, pairSet{first: first, pairs: pp})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].first < sets[j].first })
	return sets, vf1, vf2, nil
}

func roundValues(vr ValueRecord) ([4]int16, error) {
	var out [4]int16
	for i, v := range [4]float64{vr.XPlacement, vr.YPlacement, vr.XAdvance, vr.YAdvance} {
		r := math.Round(v)
		if math.IsNaN(r) || r < math.MinInt16 || r > math.MaxInt16 {
			return out, fmt.Errorf("value %g does not fit into 16 bits", v)
		}
		out[i] = int16(r)
	}
	return out, nil
}

func writeValues(t *table, v [4]int16, format ValueFormat) {
	for i, bit := range [4]ValueFormat{ValueFormatXPlacement, ValueFormatYPlacement,
		ValueFormatXAdvance, ValueFormatYAdvance} {
		if format&bit != 0 {
			t.i16(v[i])
		}
	}
}

// encodeLookup writes a lookup of type 2, splitting the pair sets into as
// many subtables as needed to keep subtable-internal offsets in range.
// If the subtables cannot be reached from the lookup, the lookup is
// written as type 9 instead.
func encodeLookup(sets []pairSet, vf1, vf2 ValueFormat) (table, error) {
	recSize := 2 + vf1.size() + vf2.size()
	var subtables []table
	for start := 0; start < len(sets); {
		end, size := start, 0
		for end < len(sets) {
			n := end - start + 1
			setSize := 2 + len(sets[end].pairs)*recSize
			// offset of this pair set, if it were part of the subtable
			at := 10 + 2*n + 4 + 2*n + size
			if at > maxOffset {
				break
			}
			size += setSize
			end++
		}
		if end == start {
			return nil, fmt.Errorf("pair set of glyph %d: %w", sets[start].first, ErrOffsetOverflow)
		}
		subtables = append(subtables, encodePairPosFormat1(sets[start:end], vf1, vf2))
		start = end
	}
	// offset of the last subtable
	last := 6 + 2*len(subtables)
	for i := 0; i < len(subtables)-1; i++ {
		last += len(subtables[i])
	}
	if last > maxOffset {
		return encodeExtensionLookup(subtables), nil
	}
	var lookup table
	lookup.u16(2) // pair adjustment
	lookup.u16(0) // flags
	lookup.u16(uint16(len(subtables)))
	at := 6 + 2*len(subtables)
	for _, st := range subtables {
		lookup.u16(uint16(at))
		at += len(st)
	}
	for _, st := range subtables {
		lookup = append(lookup, st...)
	}
	return lookup, nil
}

// encodeExtensionLookup writes a lookup of type 9, wrapping every pair
// adjustment subtable in an extension subtable with a 32-bit offset.
func encodeExtensionLookup(subtables []table) table {
	const extSize = 8
	n := len(subtables)
	var lookup table
	lookup.u16(9) // extension positioning
	lookup.u16(0) // flags
	lookup.u16(uint16(n))
	for i := range subtables {
		lookup.u16(uint16(6 + 2*n + extSize*i))
	}
	at := 6 + 2*n + extSize*n // start of first pair adjustment subtable
	for i, st := range subtables {
		lookup.u16(1) // extension format
		lookup.u16(2) // pair adjustment
		lookup.u32(uint32(at - (6 + 2*n + extSize*i)))
		at += len(st)
	}
	for _, st := range subtables {
		lookup = append(lookup, st...)
	}
	tracer().Debugf("GPOS lookup of %d bytes uses %d extension subtables", at, n)
	return lookup
}

func encodePairPosFormat1(sets []pairSet, vf1, vf2 ValueFormat) table {
	n := len(sets)
	var st table
	st.u16(1)
	st.u16(uint16(10 + 2*n)) // coverage follows the pair set offsets
	st.u16(uint16(vf1))
	st.u16(uint16(vf2))
	st.u16(uint16(n))
	offsetsAt := len(st)
	for range sets {
		st.u16(0)
	}
	st.u16(1) // coverage format 1
	st.u16(uint16(n))
	for _, s := range sets {
		st.u16(uint16(s.first))
	}
	for i, s := range sets {
		st.putU16(offsetsAt+2*i, uint16(len(st)))
		st.u16(uint16(len(s.pairs)))
		for _, p := range s.pairs {
			st.u16(uint16(p.second))
			writeValues(&st, p.v1, vf1)
			writeValues(&st, p.v2, vf2)
		}
	}
	return st
}

func encodeScriptList(scripts []string) table {
	const scriptSize = 12 // script table with its default language system
	var sl table
	sl.u16(uint16(len(scripts)))
	for i, s := range scripts {
		sl.tag(s)
		sl.u16(uint16(2 + 6*len(scripts) + scriptSize*i))
	}
	for range scripts {
		sl.u16(4)      // default LangSys offset
		sl.u16(0)      // LangSys count
		sl.u16(0)      // lookupOrder, reserved
		sl.u16(0xFFFF) // no required feature
		sl.u16(1)
		sl.u16(0) // feature index
	}
	return sl
}

func encodeFeatureList(feature string) table {
	var fl table
	fl.u16(1)
	fl.tag(feature)
	fl.u16(8)
	fl.u16(0) // feature params
	fl.u16(1)
	fl.u16(0) // lookup index
	return fl
}
