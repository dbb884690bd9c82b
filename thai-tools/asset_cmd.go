package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/npillmayer/thaifix"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/thai"
	"github.com/thatisuday/commando"
	"golang.org/x/text/language"
)

func runGroupsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	lang, err := language.Parse(mustFlagString(flags["lang"], "lang"))
	if err != nil {
		fatalf("invalid --lang flag: %v", err)
	}
	describe := mustFlagBool(flags["describe"], "describe")
	for _, g := range thai.Groups() {
		fmt.Printf("%2d %-20s %s\n", int(g), g.String(), thai.GroupName(g, lang))
		glyphs := thai.Glyphs(g)
		if !describe {
			parts := make([]string, len(glyphs))
			for i, r := range glyphs {
				parts[i] = thai.DisplayString(string(r))
			}
			fmt.Printf("   %s\n", strings.Join(parts, " "))
			continue
		}
		for _, r := range glyphs {
			fmt.Printf("   %-3s %U %s\n", thai.DisplayString(string(r)), r, thai.Describe(r))
		}
	}
}

func runCreateCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	fontRef := strings.TrimSpace(args["font"].Value)
	if fontRef == "" {
		fatalf("font is required")
	}
	out := optFlagString(flags["out"], "out")
	if out == "" {
		out = strings.TrimSuffix(filepath.Base(fontRef), filepath.Ext(fontRef)) + ".asset.json"
	}
	a, imported, err := thaifix.CreateAsset(fontRef, out, mustFlagBool(flags["gpos"], "gpos"))
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Asset: %s (%s)\n", out, a.GUID)
	fmt.Printf("Source: %s\n", a.SourcePath)
	fmt.Printf("Characters: %d\n", len(a.Characters))
	fmt.Printf("Records: %d imported\n", imported)
}

func runFixCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	assetPath := strings.TrimSpace(args["asset"].Value)
	presetPath := strings.TrimSpace(args["preset"].Value)
	if assetPath == "" || presetPath == "" {
		fatalf("asset and preset are required")
	}
	report, err := thaifix.FixAsset(assetPath, presetPath)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Pairs: %d (%d disabled)\n", report.Pairs, report.Disabled)
	fmt.Printf("Records: created=%d updated=%d cleared=%d\n", report.Created, report.Updated, report.Cleared)
	if len(report.Unresolved) > 0 {
		fmt.Printf("Missing in font: %s\n", string(report.Unresolved))
	}
}

func runRecordsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	a := mustLoadAsset(args["asset"].Value)
	fmt.Printf("Asset: %s, %d characters, %d records\n", a.Name, len(a.Characters), a.Features.Len())
	a.Features.Each(func(rec *fontasset.PairAdjustmentRecord) {
		fmt.Printf("%s %s  %s %s\n",
			glyphLabel(a, rec.First.GlyphIndex), rec.First.Value,
			glyphLabel(a, rec.Second.GlyphIndex), rec.Second.Value)
	})
}

func glyphLabel(a *fontasset.Asset, g fontasset.GlyphIndex) string {
	runes := a.Runes(g)
	if len(runes) == 0 {
		return fmt.Sprintf("%5d", g)
	}
	return fmt.Sprintf("%5d %-3s", g, thai.DisplayString(string(runes[0])))
}
