package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/thaifix"
	"github.com/npillmayer/thaifix/internal/fontload"
	"github.com/npillmayer/thaifix/otkern"
	"github.com/npillmayer/thaifix/sfntio"
	"github.com/npillmayer/thaifix/thai"
	"github.com/thatisuday/commando"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	fontRef := strings.TrimSpace(args["font"].Value)
	if fontRef == "" {
		fatalf("font is required")
	}
	f, err := fontload.Resolve(fontRef)
	if err != nil {
		fatalf("%v", err)
	}
	dir, err := sfntio.ReadDirectory(f.Binary)
	if err != nil {
		fatalf("cannot read table directory of %s: %v", f.Filepath, err)
	}

	fmt.Printf("Path: %s\n", f.Filepath)
	fmt.Printf("Name: %s\n", f.Fontname)
	family, sub := thaifix.FamilyName(f.SFNT)
	if family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	if sub != "" {
		fmt.Printf("Subfamily: %s\n", sub)
	}
	fmt.Printf("Glyphs: %d, units per em: %d\n", f.SFNT.NumGlyphs(), f.UnitsPerEm())

	tags := dir.Tags()
	fmt.Printf("Tables (%d): %s\n", len(tags), strings.Join(tags, " "))

	supported, total := 0, 0
	for _, g := range thai.Groups() {
		for _, r := range thai.Glyphs(g) {
			total++
			if _, ok := f.GlyphIndex(r); ok {
				supported++
			}
		}
	}
	fmt.Printf("Thai: %d of %d group characters\n", supported, total)

	if len(args["tables"].Value) > 0 {
		printSelectedTables(dir, args["tables"].Value)
	}
	gpos, err := sfntio.Table(f.Binary, "GPOS")
	if errors.Is(err, sfntio.ErrTableNotFound) {
		fmt.Println("GPOS: none")
		return
	}
	pairs, err := otkern.ReadPairs(gpos, nil)
	fmt.Printf("GPOS: %d glyph pairs\n", len(pairs))
	if err != nil && mustFlagBool(flags["errors"], "errors") {
		var perr otkern.ParseErrors
		if errors.As(err, &perr) {
			for _, e := range perr {
				fmt.Printf("error: %s\n", e.Error())
			}
		} else {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func printSelectedTables(dir sfntio.Directory, raw string) {
	for _, t := range splitCSVSpace(raw) {
		tagName := strings.TrimSpace(t)
		if tagName == "" {
			continue
		}
		rec, ok := dir.Lookup(tagName)
		if !ok {
			fmt.Printf("table %s: missing\n", tagName)
			continue
		}
		fmt.Printf("table %s: offset=%d size=%d checksum=%08x\n", tagName, rec.Offset, rec.Length, rec.Checksum)
	}
}
