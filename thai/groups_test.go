package thai

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGroupSizes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.glyphs")
	defer teardown()

	sizes := map[GroupType]int{
		AllConsonants:       44,
		AscenderConsonants:  4,
		DescenderConsonants: 4,
		AllUpperGlyphs:      11,
		UpperVowels:         6,
		ToneMarks:           4,
		ThanThaKhaat:        1,
		LeadingVowels:       5,
		AllFollowingVowels:  4,
		SaraAum:             1,
		LowerVowels:         2,
		None:                0,
	}
	for g, n := range sizes {
		assert.Len(t, Glyphs(g), n, "size of group %s", g)
	}
	assert.Empty(t, Glyphs(GroupType(99)))
}

func TestGroupWireOrder(t *testing.T) {
	assert.Equal(t, 0, int(AllConsonants))
	assert.Equal(t, 5, int(ToneMarks))
	assert.Equal(t, 10, int(LowerVowels))
	assert.Equal(t, 11, int(None))
	assert.Len(t, Groups(), GroupCount)
}

func TestGroupsAreSubsets(t *testing.T) {
	for _, sub := range []GroupType{AscenderConsonants, DescenderConsonants} {
		for _, r := range Glyphs(sub) {
			assert.True(t, Contains(AllConsonants, r), "%c of %s should be a consonant", r, sub)
		}
	}
	for _, sub := range []GroupType{UpperVowels, ToneMarks, ThanThaKhaat} {
		for _, r := range Glyphs(sub) {
			assert.True(t, Contains(AllUpperGlyphs, r), "%c of %s should be an upper glyph", r, sub)
		}
	}
	assert.True(t, Contains(AllFollowingVowels, 'ำ'))
}

func TestGlyphsReturnsCopy(t *testing.T) {
	gg := Glyphs(ToneMarks)
	gg[0] = 'x'
	assert.Equal(t, '่', Glyphs(ToneMarks)[0])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, []GroupType{AllConsonants, AscenderConsonants}, Classify('ป'))
	assert.Equal(t, []GroupType{AllUpperGlyphs, ToneMarks}, Classify('้'))
	assert.Equal(t, []GroupType{AllFollowingVowels, SaraAum}, Classify('ำ'))
	assert.Empty(t, Classify('A'))
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "สระล่าง", GroupName(LowerVowels, language.Thai))
	assert.Equal(t, "Lower Vowels", GroupName(LowerVowels, language.English))
	assert.Equal(t, "Tone Marks", GroupName(ToneMarks, language.German))
	assert.Equal(t, "ทัณฑฆาต", GroupName(ThanThaKhaat, language.MustParse("th-TH")))
	assert.Equal(t, "", GroupName(None, language.English))
}

func TestDisplayString(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"   ":   "",
		"ุ":     "-ุ",
		"้":     "-้",
		"า":     "-า",
		"เ":     "เ-",
		" ไ ":   "ไ-",
		"ก":     "ก",
		"กข":    "กข",
		"x":     "x",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayString(in), "display string of %q", in)
	}
}

func TestParseGroupType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.glyphs")
	defer teardown()

	ok := map[string]GroupType{
		"ToneMarks":      ToneMarks,
		"tonemarks":      ToneMarks,
		"Tone Marks":     ToneMarks,
		"วรรณยุกต์":      ToneMarks,
		"5":              ToneMarks,
		"tone":           ToneMarks,
		"sara":           SaraAum,
		"lower":          LowerVowels,
		"AllConsonants":  AllConsonants,
		"0":              AllConsonants,
		"None":           None,
		"ThanThaKhaat":   ThanThaKhaat,
		"All Following":  AllFollowingVowels,
	}
	for in, want := range ok {
		g, err := ParseGroupType(in)
		require.NoError(t, err, "parsing %q", in)
		assert.Equal(t, want, g, "parsing %q", in)
	}
	for _, in := range []string{"", "all", "12", "-1", "xyz"} {
		_, err := ParseGroupType(in)
		assert.Error(t, err, "parsing %q should fail", in)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "THAI CHARACTER SARA U", Describe('ุ'))
	assert.Equal(t, "THAI CHARACTER KO KAI", Describe('ก'))
}
