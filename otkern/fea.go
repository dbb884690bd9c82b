package otkern

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

// GlyphNamer supplies glyph names, e.g. from a font's 'post' table.
type GlyphNamer interface {
	GlyphName(gid uint16) string
}

var feaGlyphName = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.\-]{0,62}$`)

// WriteFeatureFile writes pairs as a pair positioning feature in AFDKO
// feature file syntax. Glyphs are named by names; glyphs without a usable
// name, or all glyphs if names is nil, are written as "glyphNNNNN".
func WriteFeatureFile(w io.Writer, pairs []PairValue, names GlyphNamer, opts Options) error {
	opts = opts.normalize()
	sets, _, _, err := groupPairs(pairs)
	if err != nil {
		return err
	}
	nameOf := glyphNamer(names)
	bw := bufio.NewWriter(w)
	for _, s := range opts.Scripts {
		fmt.Fprintf(bw, "languagesystem %s dflt;\n", s)
	}
	fmt.Fprintf(bw, "\nfeature %s {\n", opts.Feature)
	for _, s := range sets {
		for _, p := range s.pairs {
			fmt.Fprintf(bw, "    pos %s %s %s %s;\n",
				nameOf(s.first), feaValue(p.v1), nameOf(p.second), feaValue(p.v2))
		}
	}
	fmt.Fprintf(bw, "} %s;\n", opts.Feature)
	return bw.Flush()
}

func glyphNamer(names GlyphNamer) func(GlyphIndex) string {
	used := make(map[string]GlyphIndex)
	cache := make(map[GlyphIndex]string)
	return func(g GlyphIndex) string {
		if n, ok := cache[g]; ok {
			return n
		}
		n := ""
		if names != nil {
			n = names.GlyphName(uint16(g))
		}
		if other, dup := used[n]; n == "" || !feaGlyphName.MatchString(n) || (dup && other != g) {
			n = fmt.Sprintf("glyph%05d", g)
		}
		used[n] = g
		cache[g] = n
		return n
	}
}

// feaValue formats a value record in the full <x y xAdv yAdv> notation.
func feaValue(v [4]int16) string {
	return fmt.Sprintf("<%d %d %d %d>", v[0], v[1], v[2], v[3])
}
