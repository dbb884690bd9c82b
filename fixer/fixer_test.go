package fixer

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"github.com/npillmayer/thaifix/thai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Asset = (*fontasset.Asset)(nil)

// testAsset has no source font, so only the characters listed are known.
func testAsset() *fontasset.Asset {
	a := fontasset.New("test", "")
	for r, g := range map[rune]fontasset.GlyphIndex{
		'ก': 1, 'ข': 2, 'ป': 3,
		'่': 10, '้': 11,
		'ิ': 20,
	} {
		a.Characters[r] = g
	}
	return a
}

func pair(left, right thai.GroupType, lx, ly, rx, ry float64) glyphpair.Pair {
	return glyphpair.Pair{
		Enabled: true,
		Left:    glyphpair.GlyphGroup{Type: left, Offset: glyphpair.Offset{X: lx, Y: ly}},
		Right:   glyphpair.GlyphGroup{Type: right, Offset: glyphpair.Offset{X: rx, Y: ry}},
	}
}

func TestApplyWritesPlacements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	a := testAsset()
	report := Apply(a, []glyphpair.Pair{pair(thai.AllConsonants, thai.ToneMarks, 1, 2, -15, -40)})
	assert.Equal(t, 1, report.Pairs)
	assert.Equal(t, 6, report.Created, "3 consonants × 2 tone marks known to the font")
	assert.Equal(t, 6, a.Features.Len())
	rec, ok := a.Features.Get(3, 11)
	require.True(t, ok)
	assert.Equal(t, fontasset.ValueRecord{XPlacement: 1, YPlacement: 2}, rec.First.Value)
	assert.Equal(t, fontasset.ValueRecord{XPlacement: -15, YPlacement: -40}, rec.Second.Value)
}

func TestApplyIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	pairs := []glyphpair.Pair{
		pair(thai.AllConsonants, thai.ToneMarks, 0, 0, 0, -40),
		pair(thai.AscenderConsonants, thai.UpperVowels, 0, 0, -60, 0),
	}
	a := testAsset()
	first := Apply(a, pairs)
	snapshot := a.Features.Records()
	second := Apply(a, pairs)
	assert.Equal(t, snapshot, a.Features.Records())
	assert.Equal(t, first.Touched(), second.Touched())
	assert.Zero(t, second.Created)
}

func TestAbsentCharactersAreSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	a := testAsset()
	report := Apply(a, []glyphpair.Pair{pair(thai.AllConsonants, thai.AllUpperGlyphs, 0, 0, 0, -30)})
	known := map[fontasset.GlyphIndex]bool{}
	for _, g := range a.Characters {
		known[g] = true
	}
	for _, rec := range a.Features.Records() {
		l, r := rec.Key()
		assert.True(t, known[l] && known[r], "record %d/%d references an absent glyph", l, r)
	}
	assert.Equal(t, 9, report.Created)
	assert.Contains(t, report.Unresolved, 'ฮ')
	assert.Contains(t, report.Unresolved, '๋')
	assert.NotContains(t, report.Unresolved, 'ก')
}

func TestDisabledPairsAreExcluded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	p := pair(thai.AllConsonants, thai.ToneMarks, 0, 0, 0, -40)
	p.Enabled = false
	a := testAsset()
	report := Apply(a, []glyphpair.Pair{p})
	assert.Equal(t, 1, report.Disabled)
	assert.Zero(t, report.Touched())
	assert.Zero(t, a.Features.Len())
	assert.Empty(t, report.Unresolved, "disabled pairs must not even be resolved")
}

func TestLastWriteWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	a := testAsset()
	Apply(a, []glyphpair.Pair{
		pair(thai.AllConsonants, thai.ToneMarks, 0, 0, 0, -10),
		pair(thai.AscenderConsonants, thai.ToneMarks, 0, 0, -30, 0),
	})
	rec, ok := a.Features.Get(3, 10) // ป + ่
	require.True(t, ok)
	assert.Equal(t, -30.0, rec.Second.Value.XPlacement)
	assert.Equal(t, 0.0, rec.Second.Value.YPlacement)
	rec, ok = a.Features.Get(1, 10) // ก + ่
	require.True(t, ok)
	assert.Equal(t, -10.0, rec.Second.Value.YPlacement)
}

func TestApplyPreservesAdvances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	a := testAsset()
	a.Features.Upsert(fontasset.PairAdjustmentRecord{
		First:  fontasset.GlyphAdjustmentRecord{GlyphIndex: 1, Value: fontasset.ValueRecord{XAdvance: 50, XPlacement: 9}},
		Second: fontasset.GlyphAdjustmentRecord{GlyphIndex: 20},
	})
	report := Apply(a, []glyphpair.Pair{pair(thai.AllConsonants, thai.UpperVowels, 0, 0, -5, 0)})
	assert.Equal(t, 1, report.Updated)
	rec, _ := a.Features.Get(1, 20)
	assert.Equal(t, 50.0, rec.First.Value.XAdvance)
	assert.Equal(t, 0.0, rec.First.Value.XPlacement)
	assert.Equal(t, -5.0, rec.Second.Value.XPlacement)
}

func TestFixClearsTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.fixer")
	defer teardown()

	a := testAsset()
	a.Features.Upsert(fontasset.PairAdjustmentRecord{
		First:  fontasset.GlyphAdjustmentRecord{GlyphIndex: 99},
		Second: fontasset.GlyphAdjustmentRecord{GlyphIndex: 98},
	})
	report := Fix(a, []glyphpair.Pair{pair(thai.LowerVowels, thai.ToneMarks, 0, 0, 0, 0)})
	assert.Equal(t, 1, report.Cleared)
	assert.Zero(t, a.Features.Len(), "no lower vowels in font, nothing to create")
	_, ok := a.Features.Get(99, 98)
	assert.False(t, ok)
	assert.True(t, a.Dirty())
}
