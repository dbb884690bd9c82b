/*
Package thaifix repairs the placement of Thai combining glyphs in fonts.

Thai script stacks tone marks, upper vowels and lower vowels on top of or
below consonants. Fonts lacking proper mark positioning render these marks
overlapping ascenders of tall consonants or colliding with each other. Package
thaifix fixes this by writing glyph pair adjustment records into a font asset:
for every pair of glyph groups configured by the user, every combination of a
glyph of the left group followed by a glyph of the right group gets the
configured placement offsets.

We will stick to the following nomenclature:

▪︎ A "glyph group" is a class of Thai characters with similar placement,
e.g. "tone marks" or "ascender consonants" (package thai).

▪︎ A "glyph pair" is a pair of glyph groups with an offset for each side
(package glyphpair). A list of glyph pairs may be stored as a "preset".

▪︎ A "font asset" is a font's character table together with a table of pair
adjustment records (package fontasset). It may be compiled into the GPOS
table of its source font.

Sub-packages otkern and sfntio read and write the binary OpenType
structures involved; package session holds the state of an editing session.

# Links

OpenType GPOS table:
https://docs.microsoft.com/en-us/typography/opentype/spec/gpos

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package thaifix

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/fixer"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'thaifix'
func tracer() tracing.Trace {
	return tracing.Select("thaifix")
}

// FixAsset applies the glyph pairs of a preset file to the font asset stored
// at assetPath and saves the asset. Existing pair adjustment records of the
// asset are replaced.
func FixAsset(assetPath, presetPath string) (fixer.Report, error) {
	asset, err := fontasset.Load(assetPath)
	if err != nil {
		return fixer.Report{}, err
	}
	preset, err := glyphpair.Load(presetPath)
	if err != nil {
		return fixer.Report{}, fmt.Errorf("cannot read preset: %w", err)
	}
	report := fixer.Fix(asset, preset.Pairs)
	if err := asset.Save(assetPath); err != nil {
		return report, err
	}
	tracer().Infof("fixed font asset %s with %d glyph pairs", asset.Name, len(preset.Pairs))
	return report, nil
}

// CreateAsset creates a font asset for an OpenType font, given as a path or
// as the name of an installed font, and saves it to assetPath. If importGPOS
// is set, pair adjustments already present in the font's GPOS table are
// copied into the asset. It returns the number of pair records imported.
func CreateAsset(fontRef, assetPath string, importGPOS bool) (*fontasset.Asset, int, error) {
	asset, err := fontasset.FromFont(fontRef)
	if err != nil {
		return nil, 0, err
	}
	imported := 0
	if importGPOS {
		if imported, err = asset.ImportGPOS(); err != nil {
			return nil, 0, err
		}
	}
	if err := asset.Save(assetPath); err != nil {
		return nil, imported, err
	}
	return asset, imported, nil
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist.
func FamilyName(f *sfnt.Font) (family, subfamily string) {
	var buf sfnt.Buffer
	family, _ = f.Name(&buf, sfnt.NameIDFamily)
	subfamily, _ = f.Name(&buf, sfnt.NameIDSubfamily)
	return
}
