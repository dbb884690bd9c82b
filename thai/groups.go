/*
Package thai holds the Thai character collection: a fixed set of glyph groups,
each naming a category of Thai characters that interact when stacked or
placed next to each other.

Groups are identified by a GroupType. Its ordinal value is part of the preset
file format and must not be reordered.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package thai

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thaifix.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.glyphs")
}

// GroupType identifies a glyph group.
type GroupType int

// Glyph groups, in wire order.
const (
	AllConsonants GroupType = iota
	AscenderConsonants
	DescenderConsonants
	AllUpperGlyphs
	UpperVowels
	ToneMarks
	ThanThaKhaat
	LeadingVowels
	AllFollowingVowels
	SaraAum
	LowerVowels
	None
)

// GroupCount is the number of glyph groups, including None.
const GroupCount = int(None) + 1

var groupIdentifiers = [GroupCount]string{
	"AllConsonants",
	"AscenderConsonants",
	"DescenderConsonants",
	"AllUpperGlyphs",
	"UpperVowels",
	"ToneMarks",
	"ThanThaKhaat",
	"LeadingVowels",
	"AllFollowingVowels",
	"SaraAum",
	"LowerVowels",
	"None",
}

// String returns the identifier of a group type, e.g. "ToneMarks".
func (g GroupType) String() string {
	if !g.Valid() {
		return "GroupType(?)"
	}
	return groupIdentifiers[g]
}

// Valid is true for the declared group types.
func (g GroupType) Valid() bool {
	return g >= AllConsonants && g <= None
}

// Groups returns all group types in wire order, including None.
func Groups() []GroupType {
	gg := make([]GroupType, GroupCount)
	for i := range gg {
		gg[i] = GroupType(i)
	}
	return gg
}

// Character sets. Order within a group is the iteration order of the fixer.
var (
	consonants = []rune("กขฃคฅฆงจฉชซฌญฎฏฐฑฒณดตถทธนบปผฝพฟภมยรลวศษสหฬอฮ")
	ascenders  = []rune("ปฝฟฬ")
	descenders = []rune("ญฎฏฐ")
	upperVowel = []rune{'ิ', 'ี', 'ึ', 'ื', '็', 'ั'}
	toneMarks  = []rune{'่', '้', '๊', '๋'}
	thanThaKh  = []rune{'์'}
	leading    = []rune("เแโไใ")
	following  = []rune{'ะ', 'ำ', 'า', 'ๅ'}
	saraAum    = []rune{'ำ'}
	lowerVowel = []rune{'ุ', 'ู'}
	upperAll   = concat(upperVowel, thanThaKh, toneMarks)
)

var groupGlyphs = [GroupCount][]rune{
	AllConsonants:       consonants,
	AscenderConsonants:  ascenders,
	DescenderConsonants: descenders,
	AllUpperGlyphs:      upperAll,
	UpperVowels:         upperVowel,
	ToneMarks:           toneMarks,
	ThanThaKhaat:        thanThaKh,
	LeadingVowels:       leading,
	AllFollowingVowels:  following,
	SaraAum:             saraAum,
	LowerVowels:         lowerVowel,
	None:                nil,
}

// Glyphs returns the characters of a group. The returned slice is a copy.
// Unknown group types and None yield an empty slice.
func Glyphs(g GroupType) []rune {
	if !g.Valid() {
		tracer().Debugf("no glyphs for unknown group type %d", int(g))
		return []rune{}
	}
	return append([]rune{}, groupGlyphs[g]...)
}

// Contains reports whether rune r is a member of group g.
func Contains(g GroupType, r rune) bool {
	if !g.Valid() {
		return false
	}
	for _, c := range groupGlyphs[g] {
		if c == r {
			return true
		}
	}
	return false
}

// Classify returns every group that contains r, in wire order.
func Classify(r rune) []GroupType {
	var gg []GroupType
	for g := AllConsonants; g < None; g++ {
		if Contains(g, r) {
			gg = append(gg, g)
		}
	}
	return gg
}

func concat(sets ...[]rune) []rune {
	var all []rune
	for _, s := range sets {
		all = append(all, s...)
	}
	return all
}
