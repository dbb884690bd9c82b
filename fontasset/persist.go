package fontasset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type assetFile struct {
	Name       string                 `json:"name"`
	GUID       string                 `json:"guid"`
	SourcePath string                 `json:"sourceFontFile"`
	UnitsPerEm int                    `json:"unitsPerEm"`
	Characters []characterRecord      `json:"characterTable"`
	Pairs      []PairAdjustmentRecord `json:"glyphPairAdjustmentRecords"`
}

type characterRecord struct {
	Unicode    rune       `json:"unicode"`
	GlyphIndex GlyphIndex `json:"glyphIndex"`
}

// Load reads an asset from a JSON file. A relative source font path is
// interpreted relative to the asset file.
func Load(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var af assetFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("font asset %s: %w", path, err)
	}
	src := af.SourcePath
	if src != "" && !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(path), src)
	}
	a := &Asset{
		Name:       af.Name,
		GUID:       af.GUID,
		SourcePath: src,
		UnitsPerEm: af.UnitsPerEm,
		Characters: make(map[rune]GlyphIndex, len(af.Characters)),
		Features:   NewPairTable(),
		path:       path,
	}
	if a.GUID == "" {
		a.GUID = GUIDFor(src)
	}
	for _, c := range af.Characters {
		if c.GlyphIndex == 0 {
			continue
		}
		a.Characters[c.Unicode] = c.GlyphIndex
	}
	for _, rec := range af.Pairs {
		if !a.Features.Upsert(rec) {
			l, r := rec.Key()
			tracer().Infof("font asset %s: duplicate record for glyph pair %d/%d", a.Name, l, r)
		}
	}
	a.clean()
	tracer().Infof("loaded font asset %s with %d characters and %d pair records",
		a.Name, len(a.Characters), a.Features.Len())
	return a, nil
}

// Save writes the asset as JSON. An empty path saves to the file the asset
// was loaded from.
func (a *Asset) Save(path string) error {
	if path == "" {
		path = a.path
	}
	if path == "" {
		return errors.New("no file name for font asset")
	}
	af := assetFile{
		Name:       a.Name,
		GUID:       a.GUID,
		SourcePath: a.SourcePath,
		UnitsPerEm: a.UnitsPerEm,
		Characters: make([]characterRecord, 0, len(a.Characters)),
		Pairs:      a.Features.Records(),
	}
	for r, g := range a.Characters {
		af.Characters = append(af.Characters, characterRecord{Unicode: r, GlyphIndex: g})
	}
	sort.Slice(af.Characters, func(i, j int) bool {
		return af.Characters[i].Unicode < af.Characters[j].Unicode
	})
	data, err := json.MarshalIndent(af, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot save font asset: %w", err)
	}
	a.path = path
	a.clean()
	tracer().Debugf("saved font asset %s to %s", a.Name, path)
	return nil
}
