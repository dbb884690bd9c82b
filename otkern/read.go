package otkern

import (
	"fmt"
	"sort"
)

// ReadPairs extracts all pair adjustments from a GPOS table.
//
// Every lookup of type 2 (pair adjustment) is read, including those wrapped
// in type 9 extension lookups; all other lookup types are skipped. Feature
// and script assignments are not evaluated.
//
// If glyphs is non-empty, only pairs where both glyphs are members of glyphs
// are returned. Class based subtables (format 2) are expanded over glyphs;
// with an empty glyphs argument they are expanded over the glyphs explicitly
// assigned to a class.
//
// When a pair is defined more than once, the first definition in lookup
// order wins, as in a shaping engine. Subtables which cannot be read are
// skipped and reported by a ParseErrors error; the pairs of all intact
// subtables are returned nevertheless.
func ReadPairs(gpos []byte, glyphs []GlyphIndex) ([]PairValue, error) {
	b := binarySegm(gpos)
	if _, err := b.view(0, 10); err != nil {
		return nil, fmt.Errorf("GPOS header: %w", err)
	}
	if major := b.U16(0); major != 1 {
		return nil, fmt.Errorf("unsupported GPOS version %d.%d", major, b.U16(2))
	}
	r := newPairReader(glyphs)
	llOffset := int(b.U16(8))
	ll, err := b.from(llOffset)
	if err != nil {
		return nil, fmt.Errorf("GPOS lookup list: %w", err)
	}
	count, err := ll.u16(0)
	if err != nil {
		return nil, fmt.Errorf("GPOS lookup list: %w", err)
	}
	if _, err := ll.view(2, 2*int(count)); err != nil {
		return nil, fmt.Errorf("GPOS lookup list of %d entries: %w", count, err)
	}
	for i := 0; i < int(count); i++ {
		off := int(ll.U16(2 + 2*i))
		lookup, err := ll.from(off)
		if err != nil {
			r.ec.addError("LookupList", fmt.Sprintf("lookup %d out of bounds", i), SeverityMajor, llOffset+off)
			continue
		}
		r.readLookup(lookup, i, llOffset+off)
	}
	tracer().Debugf("read %d glyph pairs from GPOS", len(r.pairs))
	return r.pairs, r.ec.result()
}

type pairReader struct {
	universe map[GlyphIndex]bool
	seconds  []GlyphIndex
	seen     map[uint32]bool
	pairs    []PairValue
	ec       errorCollector
}

func newPairReader(glyphs []GlyphIndex) *pairReader {
	r := &pairReader{seen: make(map[uint32]bool)}
	if len(glyphs) > 0 {
		r.universe = make(map[GlyphIndex]bool, len(glyphs))
		for _, g := range glyphs {
			if !r.universe[g] {
				r.universe[g] = true
				r.seconds = append(r.seconds, g)
			}
		}
	}
	return r
}

func (r *pairReader) member(g GlyphIndex) bool {
	return r.universe == nil || r.universe[g]
}

func (r *pairReader) add(left, right GlyphIndex, v1, v2 ValueRecord) {
	key := uint32(left)<<16 | uint32(right)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.pairs = append(r.pairs, PairValue{Left: left, Right: right, First: v1, Second: v2})
}

func (r *pairReader) readLookup(lookup binarySegm, inx int, at int) {
	section := fmt.Sprintf("Lookup[%d]", inx)
	if _, err := lookup.view(0, 6); err != nil {
		r.ec.addError(section, "lookup header truncated", SeverityMajor, at)
		return
	}
	lookupType := lookup.U16(0)
	n := int(lookup.U16(4))
	if _, err := lookup.view(6, 2*n); err != nil {
		r.ec.addError(section, "subtable offsets truncated", SeverityMajor, at)
		return
	}
	for i := 0; i < n; i++ {
		off := int(lookup.U16(6 + 2*i))
		sub, err := lookup.from(off)
		if err != nil {
			r.ec.addError(section, fmt.Sprintf("subtable %d out of bounds", i), SeverityMajor, at+off)
			continue
		}
		switch lookupType {
		case 2:
			r.readPairPos(sub, at+off)
		case 9:
			if _, err := sub.view(0, 8); err != nil || sub.U16(0) != 1 {
				r.ec.addError(section, "invalid extension subtable", SeverityMajor, at+off)
				continue
			}
			if sub.U16(2) != 2 {
				continue
			}
			extOff := int(sub.U32(4))
			ext, err := sub.from(extOff)
			if err != nil {
				r.ec.addError(section, "extension offset out of bounds", SeverityMajor, at+off)
				continue
			}
			r.readPairPos(ext, at+off+extOff)
		default:
			return
		}
	}
}

func (r *pairReader) readPairPos(sub binarySegm, at int) {
	if _, err := sub.view(0, 8); err != nil {
		r.ec.addError("PairPos", "subtable header truncated", SeverityMajor, at)
		return
	}
	format := sub.U16(0)
	coverage, err := parseCoverage(sub, int(sub.U16(2)))
	if err != nil {
		r.ec.addError("PairPos", "coverage: "+err.Error(), SeverityMajor, at)
		return
	}
	vf1, vf2 := ValueFormat(sub.U16(4)), ValueFormat(sub.U16(6))
	switch format {
	case 1:
		r.readPairPosFormat1(sub, at, coverage, vf1, vf2)
	case 2:
		r.readPairPosFormat2(sub, at, coverage, vf1, vf2)
	default:
		r.ec.addError("PairPos", fmt.Sprintf("unknown format %d", format), SeverityMajor, at)
	}
}

func (r *pairReader) readPairPosFormat1(sub binarySegm, at int, coverage []GlyphIndex, vf1, vf2 ValueFormat) {
	count := int(sub.U16(8))
	if _, err := sub.view(10, 2*count); err != nil {
		r.ec.addError("PairPos/1", "pair set offsets truncated", SeverityMajor, at)
		return
	}
	if count != len(coverage) {
		r.ec.addError("PairPos/1", fmt.Sprintf("%d pair sets for %d covered glyphs", count, len(coverage)),
			SeverityMinor, at)
	}
	recSize := 2 + vf1.size() + vf2.size()
	for i, first := range coverage {
		if i >= count {
			break
		}
		if !r.member(first) {
			continue
		}
		off := int(sub.U16(10 + 2*i))
		ps, err := sub.from(off)
		if err != nil {
			r.ec.addError("PairPos/1", "pair set out of bounds", SeverityMajor, at+off)
			continue
		}
		n := int(ps.U16(0))
		if _, err := ps.view(2, n*recSize); err != nil {
			r.ec.addError("PairPos/1", "pair value records truncated", SeverityMajor, at+off)
			continue
		}
		pos := 2
		for j := 0; j < n; j++ {
			second := GlyphIndex(ps.U16(pos))
			v1, n1 := parseValueRecord(ps, pos+2, vf1)
			v2, _ := parseValueRecord(ps, pos+2+n1, vf2)
			pos += recSize
			if r.member(second) {
				r.add(first, second, v1, v2)
			}
		}
	}
}

func (r *pairReader) readPairPosFormat2(sub binarySegm, at int, coverage []GlyphIndex, vf1, vf2 ValueFormat) {
	if _, err := sub.view(0, 16); err != nil {
		r.ec.addError("PairPos/2", "subtable header truncated", SeverityMajor, at)
		return
	}
	cd1, err1 := parseClassDef(sub, int(sub.U16(8)))
	cd2, err2 := parseClassDef(sub, int(sub.U16(10)))
	if err1 != nil || err2 != nil {
		r.ec.addError("PairPos/2", "invalid class definition", SeverityMajor, at)
		return
	}
	c1count, c2count := int(sub.U16(12)), int(sub.U16(14))
	recSize := vf1.size() + vf2.size()
	if _, err := sub.view(16, c1count*c2count*recSize); err != nil {
		r.ec.addError("PairPos/2", "class records truncated", SeverityMajor, at)
		return
	}
	seconds := r.seconds
	if r.universe == nil {
		seconds = cd2.glyphs()
	}
	for _, first := range coverage {
		if !r.member(first) {
			continue
		}
		c1 := int(cd1[first])
		if c1 >= c1count {
			r.ec.addError("PairPos/2", fmt.Sprintf("class %d of glyph %d out of range", c1, first), SeverityMinor, at)
			continue
		}
		for _, second := range seconds {
			c2 := int(cd2[second])
			if c2 >= c2count {
				continue
			}
			pos := 16 + (c1*c2count+c2)*recSize
			v1, n1 := parseValueRecord(sub, pos, vf1)
			v2, _ := parseValueRecord(sub, pos+n1, vf2)
			if v1.IsZero() && v2.IsZero() {
				continue
			}
			r.add(first, second, v1, v2)
		}
	}
}

// parseValueRecord reads a value record of the given format at offset and
// returns it together with the number of bytes consumed. Device table
// offsets are skipped.
func parseValueRecord(b binarySegm, offset int, format ValueFormat) (ValueRecord, int) {
	vr := ValueRecord{}
	pos := offset
	if format&ValueFormatXPlacement != 0 {
		vr.XPlacement = float64(int16(b.U16(pos)))
		pos += 2
	}
	if format&ValueFormatYPlacement != 0 {
		vr.YPlacement = float64(int16(b.U16(pos)))
		pos += 2
	}
	if format&ValueFormatXAdvance != 0 {
		vr.XAdvance = float64(int16(b.U16(pos)))
		pos += 2
	}
	if format&ValueFormatYAdvance != 0 {
		vr.YAdvance = float64(int16(b.U16(pos)))
		pos += 2
	}
	pos += (format & 0x00F0).size()
	return vr, pos - offset
}

// parseCoverage returns the covered glyphs in coverage index order.
func parseCoverage(b binarySegm, at int) ([]GlyphIndex, error) {
	cov, err := b.from(at)
	if err != nil {
		return nil, err
	}
	format, _ := cov.u16(0)
	count := int(cov.U16(2))
	switch format {
	case 1:
		if _, err := cov.view(4, 2*count); err != nil {
			return nil, err
		}
		glyphs := make([]GlyphIndex, count)
		for i := range glyphs {
			glyphs[i] = GlyphIndex(cov.U16(4 + 2*i))
		}
		return glyphs, nil
	case 2:
		if _, err := cov.view(4, 6*count); err != nil {
			return nil, err
		}
		var glyphs []GlyphIndex
		for i := 0; i < count; i++ {
			start, end := int(cov.U16(4+6*i)), int(cov.U16(6+6*i))
			for g := start; g <= end; g++ {
				glyphs = append(glyphs, GlyphIndex(g))
			}
		}
		return glyphs, nil
	}
	return nil, fmt.Errorf("unknown coverage format %d", format)
}

// classDef maps glyphs to classes. Glyphs not in the map are of class 0.
type classDef map[GlyphIndex]uint16

func (cd classDef) glyphs() []GlyphIndex {
	glyphs := make([]GlyphIndex, 0, len(cd))
	for g := range cd {
		glyphs = append(glyphs, g)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	return glyphs
}

func parseClassDef(b binarySegm, at int) (classDef, error) {
	cdb, err := b.from(at)
	if err != nil {
		return nil, err
	}
	cd := classDef{}
	switch format, _ := cdb.u16(0); format {
	case 1:
		start := int(cdb.U16(2))
		n := int(cdb.U16(4))
		if _, err := cdb.view(6, 2*n); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if c := cdb.U16(6 + 2*i); c != 0 {
				cd[GlyphIndex(start+i)] = c
			}
		}
	case 2:
		n := int(cdb.U16(2))
		if _, err := cdb.view(4, 6*n); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			rec := 4 + 6*i
			start, end, c := int(cdb.U16(rec)), int(cdb.U16(rec+2)), cdb.U16(rec+4)
			if c == 0 {
				continue
			}
			for g := start; g <= end; g++ {
				cd[GlyphIndex(g)] = c
			}
		}
	default:
		return nil, fmt.Errorf("unknown class definition format %d", format)
	}
	return cd, nil
}
