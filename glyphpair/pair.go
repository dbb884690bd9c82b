/*
Package glyphpair models the user configuration of the Thai glyph fixer: pairs
of glyph groups, each side carrying a placement offset, and presets which
store lists of such pairs.

A Pair says "whenever a character of the left group is followed by a character
of the right group, shift the left glyph by Left.Offset and the right glyph by
Right.Offset". Pairs are applied by package fixer.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphpair

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/thai"
	"golang.org/x/text/language"
)

// tracer traces with key 'thaifix.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.glyphs")
}

// Offset is a placement offset in font design units.
type Offset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsZero is true for a (0,0) offset.
func (o Offset) IsZero() bool {
	return o.X == 0 && o.Y == 0
}

func (o Offset) String() string {
	return fmt.Sprintf("(%g,%g)", o.X, o.Y)
}

// GlyphGroup is one side of a pair: a glyph group and the offset to apply to
// glyphs of this group.
type GlyphGroup struct {
	Type   thai.GroupType
	Offset Offset
}

// Glyphs returns the characters of the group.
func (gg GlyphGroup) Glyphs() []rune {
	return thai.Glyphs(gg.Type)
}

// Count returns the number of characters in the group.
func (gg GlyphGroup) Count() int {
	return len(thai.Glyphs(gg.Type))
}

// SetGroup changes the group type and keeps the offset.
func (gg *GlyphGroup) SetGroup(t thai.GroupType) {
	gg.Type = t
}

// Name lists the characters of the group for display. A group of a single
// character is shown as that character, larger groups as "[ a, b, c ]".
func (gg GlyphGroup) Name() string {
	glyphs := gg.Glyphs()
	if len(glyphs) == 1 {
		return thai.DisplayString(string(glyphs[0]))
	}
	parts := make([]string, len(glyphs))
	for i, r := range glyphs {
		parts[i] = thai.DisplayString(string(r))
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

// Side selects the left or right group of a pair.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// ParseSide accepts "l", "left", "r" or "right", case-insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return Left, fmt.Errorf("invalid pair side %q, expected left or right", s)
}

// Pair is a configured combination of two glyph groups.
type Pair struct {
	Enabled bool
	Left    GlyphGroup
	Right   GlyphGroup
}

// NewPair returns a pair in its initial state: enabled, consonants on both
// sides, no offsets.
func NewPair() Pair {
	return Pair{
		Enabled: true,
		Left:    GlyphGroup{Type: thai.AllConsonants},
		Right:   GlyphGroup{Type: thai.AllConsonants},
	}
}

// Side returns a pointer to the left or right group of p.
func (p *Pair) Side(s Side) *GlyphGroup {
	if s == Right {
		return &p.Right
	}
	return &p.Left
}

// Name shows the characters of both sides, e.g. "[ ก, ข ] + -่".
func (p Pair) Name() string {
	return p.Left.Name() + " + " + p.Right.Name()
}

// FormalName shows the group names of both sides in a given language, e.g.
// "All Consonants + Tone Marks".
func (p Pair) FormalName(lang language.Tag) string {
	return thai.GroupName(p.Left.Type, lang) + " + " + thai.GroupName(p.Right.Type, lang)
}

// Count is the number of character combinations the pair covers.
func (p Pair) Count() int {
	return p.Left.Count() * p.Right.Count()
}

// Clone returns a copy of p. Pairs hold no references, the copy is
// independent of p.
func (p Pair) Clone() Pair {
	return p
}

func (p Pair) String() string {
	mark := " "
	if p.Enabled {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s%v + %s%v", mark, p.Left.Type, p.Left.Offset, p.Right.Type, p.Right.Offset)
}

// Record is a preset: an ordered list of pairs.
type Record struct {
	Pairs []Pair
}

// Clone copies the pair list.
func (r Record) Clone() Record {
	if r.Pairs == nil {
		return Record{}
	}
	return Record{Pairs: append([]Pair{}, r.Pairs...)}
}

// Enabled returns the number of enabled pairs.
func (r Record) Enabled() int {
	n := 0
	for _, p := range r.Pairs {
		if p.Enabled {
			n++
		}
	}
	return n
}
