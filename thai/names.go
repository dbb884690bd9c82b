package thai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derekparker/trie"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/runenames"
)

type groupNames struct {
	thai, english string
}

var names = [GroupCount]groupNames{
	AllConsonants:       {"พยัญชนะทั้งหมด", "All Consonants"},
	AscenderConsonants:  {"พยัญชนะหางบน", "Ascender Consonants"},
	DescenderConsonants: {"พยัญชนะหางล่าง", "Descender Consonants"},
	AllUpperGlyphs:      {"อักขระด้านบน", "All Upper Glyphs"},
	UpperVowels:         {"สระบน", "Upper Vowels"},
	ToneMarks:           {"วรรณยุกต์", "Tone Marks"},
	ThanThaKhaat:        {"ทัณฑฆาต", "ThanThaKhaat"},
	LeadingVowels:       {"สระหน้า", "Leading Vowels"},
	AllFollowingVowels:  {"สระหลัง", "All Following Vowels"},
	SaraAum:             {"สระอำ", "SaraAum"},
	LowerVowels:         {"สระล่าง", "Lower Vowels"},
	None:                {"", ""},
}

// GroupName returns the display name of a group in the given language.
// Thai names are used for Thai, English names for every other language.
// None and unknown groups have an empty name.
func GroupName(g GroupType, lang language.Tag) string {
	if !g.Valid() {
		return ""
	}
	if IsThai(lang) {
		return names[g].thai
	}
	return names[g].english
}

// IsThai is true if the base language of tag is Thai.
func IsThai(lang language.Tag) bool {
	base, _ := lang.Base()
	return base.String() == "th"
}

// DisplayString decorates a single character for display, showing on which
// side of its base consonant it is written: "-ุ" for characters placed behind,
// above or below a base, "เ-" for leading vowels. Strings of more than one
// character are returned unchanged, as are characters of no such class.
// Input is trimmed; an empty input yields "".
func DisplayString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rr := []rune(s)
	if len(rr) > 1 {
		return s
	}
	r := rr[0]
	switch {
	case Contains(AllFollowingVowels, r) || Contains(LowerVowels, r) || Contains(AllUpperGlyphs, r):
		return "-" + s
	case Contains(LeadingVowels, r):
		return s + "-"
	}
	return s
}

// Describe returns the Unicode character name of r, e.g.
// "THAI CHARACTER SARA U".
func Describe(r rune) string {
	return runenames.Name(r)
}

// --- Parsing group types ---------------------------------------------------

var lookup *trie.Trie

func init() {
	lookup = trie.New()
	for g := AllConsonants; g <= None; g++ {
		lookup.Add(strings.ToLower(g.String()), g)
	}
}

// ParseGroupType interprets s as a group type. It accepts the identifier
// ("ToneMarks"), the English or Thai display name, the ordinal ("5") or a
// unique case-insensitive prefix of the identifier ("tone").
func ParseGroupType(s string) (GroupType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("empty glyph group name")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if g := GroupType(n); g.Valid() {
			return g, nil
		}
		return None, fmt.Errorf("glyph group ordinal %d out of range", n)
	}
	for g := AllConsonants; g < None; g++ {
		if s == names[g].thai || strings.EqualFold(s, names[g].english) {
			return g, nil
		}
	}
	key := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if node, ok := lookup.Find(key); ok {
		return node.Meta().(GroupType), nil
	}
	candidates := lookup.PrefixSearch(key)
	switch len(candidates) {
	case 0:
		return None, fmt.Errorf("unknown glyph group %q", s)
	case 1:
		node, _ := lookup.Find(candidates[0])
		g := node.Meta().(GroupType)
		tracer().Debugf("glyph group prefix %q resolves to %s", s, g)
		return g, nil
	}
	return None, fmt.Errorf("glyph group %q is ambiguous: %d candidates", s, len(candidates))
}
