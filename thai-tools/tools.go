package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/otkern"
	"github.com/thatisuday/commando"
)

var traceKeys = []string{
	"thaifix", "thaifix.fixer", "thaifix.asset", "thaifix.glyphs", "thaifix.preview",
}

func main() {
	commando.
		SetExecutableName("thai-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for fixing the placement of Thai glyphs in font assets.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("groups").
		SetDescription("List the Thai glyph groups with their characters.").
		SetShortDescription("list glyph groups").
		AddFlag("lang,l", "language of group names (th|en)", commando.String, "en").
		AddFlag("describe,d", "print Unicode names of characters", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runGroupsCommand)

	commando.
		Register("create").
		SetDescription("Create a font asset from an OpenType font file or installed font.").
		SetShortDescription("create font asset").
		AddArgument("font", "OpenType font file path or font name", "").
		AddFlag("out,o", "output asset file (default <font>.asset.json)", commando.String, "-").
		AddFlag("gpos,g", "import pair adjustments from the font's GPOS table", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runCreateCommand)

	commando.
		Register("fix").
		SetDescription("Apply the glyph pairs of a preset (JSON or YAML) to a font asset.").
		SetShortDescription("apply preset").
		AddArgument("asset", "font asset file", "").
		AddArgument("preset", "preset file", "").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runFixCommand)

	commando.
		Register("records").
		SetDescription("Print the pair adjustment records of a font asset.").
		SetShortDescription("print pair records").
		AddArgument("asset", "font asset file", "").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runRecordsCommand)

	commando.
		Register("export-fea").
		SetDescription("Write the pair adjustment records of a font asset as an AFDKO feature file.").
		SetShortDescription("export feature file").
		AddArgument("asset", "font asset file", "").
		AddFlag("out,o", "output file (default stdout)", commando.String, "-").
		AddFlag("feature,f", "feature tag", commando.String, "kern").
		AddFlag("scripts,s", "script tags (comma separated)", commando.String, "DFLT,thai").
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runExportFeaCommand)

	commando.
		Register("export-font").
		SetDescription("Write the asset's source font with a GPOS table built from the pair adjustment records.").
		SetShortDescription("export font").
		AddArgument("asset", "font asset file", "").
		AddFlag("out,o", "output font file (default <font>-thaifix.<ext>)", commando.String, "-").
		AddFlag("feature,f", "feature tag", commando.String, "kern").
		AddFlag("scripts,s", "script tags (comma separated)", commando.String, "DFLT,thai").
		AddFlag("replace,r", "replace an existing GPOS table", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runExportFontCommand)

	commando.
		Register("preview").
		SetDescription("Render a text sample with the asset's pair adjustments to a PNG image.").
		SetShortDescription("render preview").
		AddArgument("asset", "font asset file", "").
		AddArgument("text...", "text to render (variadic argument parts joined by comma by commando)", "").
		AddFlag("output,o", "output PNG file", commando.String, "thai-tools-preview.png").
		AddFlag("show-bboxes,B", "draw red bounding-box outlines per rendered glyph", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em", commando.Int, 96).
		AddFlag("width,W", "image width in pixels", commando.Int, 800).
		AddFlag("height,H", "image height in pixels", commando.Int, 240).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runPreviewCommand)

	commando.
		Register("font").
		SetDescription("Print diagnostics and table information for an OpenType font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "OpenType font file path or font name", "").
		AddArgument("tables...", "optional list of table tags (e.g. GPOS,head)", "").
		AddFlag("errors,e", "print GPOS parse errors", commando.Bool, nil).
		AddFlag("trace,T", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runFontCommand)

	commando.Parse(nil)
}

// setupTracing routes tracing to the Go logger at the level given by the
// --trace flag.
func setupTracing(flags map[string]commando.FlagValue) {
	level := "Error"
	if f, ok := flags["trace"]; ok {
		if s, err := f.GetString(); err == nil {
			level = s
		}
	}
	switch level {
	case "Debug", "Info", "Error":
	default:
		fatalf("invalid trace level: %s", level)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	lvl := tracing.TraceLevelFromString(level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(lvl)
	}
}

func mustLoadAsset(path string) *fontasset.Asset {
	path = strings.TrimSpace(path)
	if path == "" {
		fatalf("asset path is required")
	}
	a, err := fontasset.Load(path)
	if err != nil {
		fatalf("cannot load font asset %s: %v", path, err)
	}
	return a
}

func encodeOptions(flags map[string]commando.FlagValue) otkern.Options {
	return otkern.Options{
		Feature: mustFlagString(flags["feature"], "feature"),
		Scripts: splitCSVSpace(mustFlagString(flags["scripts"], "scripts")),
	}
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// optFlagString returns a string flag, with "-" meaning unset.
func optFlagString(flag commando.FlagValue, name string) string {
	s := strings.TrimSpace(mustFlagString(flag, name))
	if s == "-" {
		return ""
	}
	return s
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "thai-tools: "+format+"\n", args...)
	os.Exit(1)
}
