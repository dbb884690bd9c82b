package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/otkern"
	"github.com/npillmayer/thaifix/preview"
	"github.com/thatisuday/commando"
)

func runExportFeaCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	a := mustLoadAsset(args["asset"].Value)
	out := optFlagString(flags["out"], "out")
	if err := exportFeatureFile(a, out, encodeOptions(flags)); err != nil {
		fatalf("%v", err)
	}
}

// exportFeatureFile writes the asset's pairs as a feature file to out, or to
// stdout if out is empty. Nothing is written if the export fails.
func exportFeatureFile(a *fontasset.Asset, out string, opts otkern.Options) error {
	// glyph names are taken from the source font if it is available
	var names otkern.GlyphNamer
	if src, err := a.Source(); err == nil {
		names = src
	}
	var buf bytes.Buffer
	if err := otkern.WriteFeatureFile(&buf, a.KernPairs(), names, opts); err != nil {
		return err
	}
	if out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write feature file: %w", err)
	}
	return nil
}

func runExportFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	a := mustLoadAsset(args["asset"].Value)
	if a.Features.Len() == 0 {
		fatalf("font asset %s has no pair adjustment records", a.Name)
	}
	data, err := a.BuildFont(encodeOptions(flags), mustFlagBool(flags["replace"], "replace"))
	if err != nil {
		fatalf("%v", err)
	}
	out := optFlagString(flags["out"], "out")
	if out == "" {
		ext := filepath.Ext(a.SourcePath)
		out = strings.TrimSuffix(filepath.Base(a.SourcePath), ext) + "-thaifix" + ext
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("cannot write font: %v", err)
	}
	fmt.Printf("wrote %s (%d pair records, %d bytes)\n", out, a.Features.Len(), len(data))
}

func runPreviewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	a := mustLoadAsset(args["asset"].Value)
	text := strings.ReplaceAll(args["text"].Value, ",", " ")
	if strings.TrimSpace(text) == "" {
		fatalf("text is required")
	}
	opts := preview.Options{
		PPEM:       mustFlagInt(flags["ppem"], "ppem"),
		Width:      mustFlagInt(flags["width"], "width"),
		Height:     mustFlagInt(flags["height"], "height"),
		ShowBBoxes: mustFlagBool(flags["show-bboxes"], "show-bboxes"),
	}
	outPath := mustFlagString(flags["output"], "output")
	if err := preview.SavePNG(outPath, a, text, opts); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s\n", outPath)
}
