package otkern

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/thaifix/sfntio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// --- Synthetic GPOS tables -------------------------------------------------

func putU16(b []byte, vals ...uint16) []byte {
	for _, v := range vals {
		b = append(b, byte(v>>8), byte(v))
	}
	return b
}

type testLookup struct {
	typ       uint16
	subtables [][]byte
}

func (l testLookup) bytes() []byte {
	b := putU16(nil, l.typ, 0, uint16(len(l.subtables)))
	at := 6 + 2*len(l.subtables)
	var body []byte
	for _, st := range l.subtables {
		b = putU16(b, uint16(at+len(body)))
		body = append(body, st...)
	}
	return append(b, body...)
}

// buildGPOS assembles a GPOS table with empty script and feature lists.
func buildGPOS(lookups ...testLookup) []byte {
	b := putU16(nil, 1, 0, 10, 10, 10)
	ll := putU16(nil, uint16(len(lookups)))
	at := 2 + 2*len(lookups)
	var body []byte
	for _, l := range lookups {
		ll = putU16(ll, uint16(at+len(body)))
		body = append(body, l.bytes()...)
	}
	return append(append(b, ll...), body...)
}

func extension(st []byte) []byte {
	b := putU16(nil, 1, 2, 0, 8)
	return append(b, st...)
}

// glyph 10 (class 1) followed by glyphs 20..22 (class 1) gets xAdvance -50
var pairPosClasses = putU16(nil,
	2, 24, 0x0004, 0x0000, 32, 42, 2, 2, // header
	0, 0, 0, 0xFFCE, // class records [c1][c2]
	1, 2, 10, 11, // coverage format 1
	1, 10, 2, 1, 0, // class def 1, format 1
	2, 1, 20, 22, 1, // class def 2, format 2
)

// glyph 11 followed by 20 or 21, x/y placement on the first glyph
var pairPosGlyphs = putU16(nil,
	1, 12, 0x0003, 0x0000, 1, 18,
	1, 1, 11,
	2, 20, 5, 0xFFF9, 21, 1, 2,
)

// redefines pair 10/20, must lose against the class based definition
var pairPosShadowed = putU16(nil,
	1, 12, 0x0001, 0x0000, 1, 18,
	1, 1, 10,
	1, 20, 99,
)

func findPair(pairs []PairValue, l, r GlyphIndex) (PairValue, bool) {
	for _, p := range pairs {
		if p.Left == l && p.Right == r {
			return p, true
		}
	}
	return PairValue{}, false
}

// --- Tests -----------------------------------------------------------------

func TestReadPairsClassBased(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	gpos := buildGPOS(testLookup{typ: 2, subtables: [][]byte{pairPosClasses}})
	pairs, err := ReadPairs(gpos, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for i, r := range []GlyphIndex{20, 21, 22} {
		assert.Equal(t, GlyphIndex(10), pairs[i].Left)
		assert.Equal(t, r, pairs[i].Right)
		assert.Equal(t, -50.0, pairs[i].First.XAdvance)
		assert.True(t, pairs[i].Second.IsZero())
	}

	pairs, err = ReadPairs(gpos, []GlyphIndex{10, 21, 30})
	require.NoError(t, err)
	require.Len(t, pairs, 1, "expansion must be restricted to the glyph universe")
	assert.Equal(t, GlyphIndex(21), pairs[0].Right)
}

func TestReadPairsFirstDefinitionWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	gpos := buildGPOS(
		testLookup{typ: 2, subtables: [][]byte{pairPosClasses}},
		testLookup{typ: 9, subtables: [][]byte{extension(pairPosGlyphs), extension(pairPosShadowed)}},
		testLookup{typ: 4, subtables: [][]byte{putU16(nil, 1, 0, 0)}},
	)
	pairs, err := ReadPairs(gpos, nil)
	require.NoError(t, err)
	assert.Len(t, pairs, 5)

	p, ok := findPair(pairs, 10, 20)
	require.True(t, ok)
	assert.Equal(t, -50.0, p.First.XAdvance)
	assert.Zero(t, p.First.XPlacement)

	p, ok = findPair(pairs, 11, 20)
	require.True(t, ok, "pair from extension lookup expected")
	assert.Equal(t, ValueRecord{XPlacement: 5, YPlacement: -7}, p.First)
}

func TestReadPairsDamaged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	_, err := ReadPairs([]byte{0, 1, 0}, nil)
	assert.Error(t, err)
	_, err = ReadPairs(putU16(nil, 2, 0, 10, 10, 10, 0), nil)
	assert.Error(t, err, "GPOS version 2 is unsupported")

	truncated := pairPosGlyphs[:len(pairPosGlyphs)-4] // must be last in the table
	gpos := buildGPOS(
		testLookup{typ: 2, subtables: [][]byte{pairPosClasses}},
		testLookup{typ: 2, subtables: [][]byte{truncated}},
	)
	pairs, err := ReadPairs(gpos, nil)
	var perr ParseErrors
	require.True(t, errors.As(err, &perr), "expected ParseErrors, got %v", err)
	assert.Equal(t, SeverityMajor, perr[0].Severity)
	assert.Len(t, pairs, 3, "intact subtables are still read")
}

func TestEncodeRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	in := []PairValue{
		{Left: 40, Right: 7, Second: ValueRecord{XPlacement: -20.4, YPlacement: -50}},
		{Left: 3, Right: 9, First: ValueRecord{XAdvance: 2.5}, Second: ValueRecord{YPlacement: 12}},
		{Left: 3, Right: 8, Second: ValueRecord{XPlacement: 1}},
		{Left: 40, Right: 7, Second: ValueRecord{XPlacement: -30}}, // overrides first entry
	}
	gpos, err := EncodeGPOS(in, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 0}, gpos[:4])

	out, err := ReadPairs(gpos, nil)
	require.NoError(t, err)
	want := []PairValue{
		{Left: 3, Right: 8, Second: ValueRecord{XPlacement: 1}},
		{Left: 3, Right: 9, First: ValueRecord{XAdvance: 3}, Second: ValueRecord{YPlacement: 12}},
		{Left: 40, Right: 7, Second: ValueRecord{XPlacement: -30}},
	}
	assert.Equal(t, want, out)
}

func TestEncodedTableIsAcceptedBySFNT(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	gpos, err := EncodeGPOS([]PairValue{
		{Left: 36, Right: 37, Second: ValueRecord{YPlacement: -40}},
	}, Options{Feature: "kern", Scripts: []string{"thai", "DFLT", "latn"}})
	require.NoError(t, err)
	font, err := sfntio.ReplaceTable(goregular.TTF, "GPOS", gpos)
	require.NoError(t, err)
	_, err = sfnt.Parse(font)
	assert.NoError(t, err)
}

func TestEncodeErrors(t *testing.T) {
	_, err := EncodeGPOS([]PairValue{{Left: 1, Right: 2, First: ValueRecord{XPlacement: 40000}}}, Options{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrOffsetOverflow))

	_, err = EncodeGPOS(nil, Options{Feature: "toolong"})
	assert.Error(t, err)
}

func TestEncodeLargePairSet(t *testing.T) {
	var wide []PairValue
	for r := 1; r <= 7000; r++ {
		wide = append(wide, PairValue{Left: 1, Right: GlyphIndex(r), Second: ValueRecord{YPlacement: 1}})
	}
	gpos, err := EncodeGPOS(wide, Options{})
	require.NoError(t, err, "records of a pair set are not addressed by offsets")
	out, err := ReadPairs(gpos, nil)
	require.NoError(t, err)
	assert.Equal(t, wide, out)
}

func TestEncodeSplitsSubtables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	for _, lefts := range []int{2, 8, 20} {
		var pairs []PairValue
		for l := 1; l <= lefts; l++ {
			for r := 1; r <= 1000; r++ {
				pairs = append(pairs, PairValue{Left: GlyphIndex(l), Right: GlyphIndex(r),
					First: ValueRecord{XPlacement: float64(l)}, Second: ValueRecord{YPlacement: float64(-r)}})
			}
		}
		gpos, err := EncodeGPOS(pairs, Options{})
		require.NoError(t, err, "%d left glyphs", lefts)
		ll := int(binary.BigEndian.Uint16(gpos[8:]))
		lookup := ll + int(binary.BigEndian.Uint16(gpos[ll+2:]))
		lookupType := binary.BigEndian.Uint16(gpos[lookup:])
		if lefts == 2 {
			assert.Equal(t, uint16(2), lookupType)
		} else {
			assert.Equal(t, uint16(9), lookupType, "%d left glyphs need extension subtables", lefts)
		}
		out, err := ReadPairs(gpos, nil)
		require.NoError(t, err)
		assert.Equal(t, pairs, out, "%d left glyphs", lefts)
	}
}

type namer map[uint16]string

func (n namer) GlyphName(gid uint16) string { return n[gid] }

func TestWriteFeatureFile(t *testing.T) {
	pairs := []PairValue{
		{Left: 10, Right: 20, Second: ValueRecord{XPlacement: -12, YPlacement: -50}},
		{Left: 10, Right: 21, First: ValueRecord{XAdvance: 4}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFeatureFile(&buf, pairs, namer{10: "uni0E1B", 21: "bad name"}, Options{}))
	fea := buf.String()
	t.Log(fea)
	assert.True(t, strings.HasPrefix(fea, "languagesystem DFLT dflt;\nlanguagesystem thai dflt;\n"))
	assert.Contains(t, fea, "feature kern {\n")
	assert.Contains(t, fea, "    pos uni0E1B <0 0 0 0> glyph00020 <-12 -50 0 0>;\n")
	assert.Contains(t, fea, "    pos uni0E1B <0 0 4 0> glyph00021 <0 0 0 0>;\n")
	assert.True(t, strings.HasSuffix(fea, "} kern;\n"))
}
