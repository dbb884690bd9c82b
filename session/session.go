/*
Package session holds the state of an interactive glyph fixing session: the
selected font asset, its list of glyph group pairs and the display language.

Session state survives restarts. The selected asset and the language are
kept in a cache file, and the pair list of every asset is kept in a cache
file named after the asset's GUID. Edits which change the outcome of a fix
(toggling, removing, resetting) re-run the fix immediately.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/thaifix/fixer"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"github.com/npillmayer/thaifix/thai"
	"golang.org/x/text/language"
)

// tracer traces with key 'thaifix.session'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.session")
}

// ErrNoAsset is returned by operations which need a selected font asset.
var ErrNoAsset = errors.New("no font asset selected")

const (
	cacheFileName    = "ThaiFontFixerCache.json"
	recordFileSuffix = "_ThaiGlyphRecord.json"
	assetFileSuffix  = ".asset.json"
)

// Language is the display language for glyph group names.
type Language int

const (
	Thai Language = iota
	English
)

// Tag returns the language tag for a display language.
func (l Language) Tag() language.Tag {
	if l == Thai {
		return language.Thai
	}
	return language.English
}

func (l Language) String() string {
	if l == Thai {
		return "Thai"
	}
	return "English"
}

// ParseLanguage accepts "th", "thai", "en" and "english", or any language
// tag, which is mapped to Thai or English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thai", "ไทย":
		return Thai, nil
	case "english":
		return English, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return English, fmt.Errorf("unknown language %q", s)
	}
	if thai.IsThai(tag) {
		return Thai, nil
	}
	return English, nil
}

// CacheData is the persistent session state.
type CacheData struct {
	FontAssetGUID string   `json:"fontAssetGuid"`
	FontAssetPath string   `json:"fontAssetPath"`
	Language      Language `json:"language"`
}

// Session is an editing session. It is not safe for concurrent use.
type Session struct {
	Asset      *fontasset.Asset
	Pairs      []glyphpair.Pair
	Language   Language
	LastReport fixer.Report
	conf       Config
}

// New creates a session, creating the cache directory if necessary.
func New(conf Config) (*Session, error) {
	conf, err := conf.Normalize()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(conf.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory: %w", err)
	}
	tracer().Debugf("session cache is %s", conf.CacheDir)
	return &Session{conf: conf, Language: English}, nil
}

// Config returns the normalized session configuration.
func (s *Session) Config() Config {
	return s.conf
}

// Restore re-opens the asset and language of the previous session. A
// missing cache file is not an error.
func (s *Session) Restore() error {
	data, err := os.ReadFile(s.cachePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	var cache CacheData
	if err := json.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("corrupt session cache %s: %w", s.cachePath(), err)
	}
	s.Language = cache.Language
	if cache.FontAssetPath == "" {
		return nil
	}
	if err := s.SelectAsset(cache.FontAssetPath); err != nil {
		tracer().Errorf("cannot restore font asset: %v", err)
		return err
	}
	if s.Asset.GUID != cache.FontAssetGUID {
		tracer().Infof("font asset %s has changed identity", cache.FontAssetPath)
	}
	return nil
}

// SelectAsset opens a font asset and makes it the session's asset. If path
// names an OpenType font instead of an asset file, the asset
// "<name>.asset.json" next to the font is opened. If there is none yet, it
// is created from the font and saved.
// The pair list last used with the asset is loaded from the cache.
func (s *Session) SelectAsset(path string) error {
	var a *fontasset.Asset
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		assetPath := strings.TrimSuffix(path, filepath.Ext(path)) + assetFileSuffix
		if _, err = os.Stat(assetPath); err == nil {
			tracer().Debugf("font %s already has asset %s", path, assetPath)
			if a, err = fontasset.Load(assetPath); err != nil {
				return err
			}
			break
		}
		if a, err = fontasset.FromFont(path); err != nil {
			return err
		}
		if err = a.Save(assetPath); err != nil {
			return err
		}
	default:
		if a, err = fontasset.Load(path); err != nil {
			return err
		}
	}
	s.Asset = a
	s.LastReport = fixer.Report{}
	if err := s.saveCache(); err != nil {
		return err
	}
	return s.loadPairs()
}

// SetLanguage changes the display language.
func (s *Session) SetLanguage(lang Language) error {
	s.Language = lang
	return s.saveCache()
}

// Add appends a pair; without an argument, a new default pair is appended.
func (s *Session) Add(pairs ...glyphpair.Pair) error {
	if s.Asset == nil {
		return ErrNoAsset
	}
	if len(pairs) == 0 {
		pairs = []glyphpair.Pair{glyphpair.NewPair()}
	}
	s.Pairs = append(s.Pairs, pairs...)
	return s.savePairs()
}

// Remove deletes the pair at index i and re-runs the fix.
func (s *Session) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Pairs = append(s.Pairs[:i], s.Pairs[i+1:]...)
	return s.update()
}

// SetEnabled enables or disables the pair at index i and re-runs the fix.
func (s *Session) SetEnabled(i int, enabled bool) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Pairs[i].Enabled = enabled
	return s.update()
}

// SetGroup changes the glyph group of one side of pair i.
func (s *Session) SetGroup(i int, side glyphpair.Side, g thai.GroupType) error {
	if err := s.check(i); err != nil {
		return err
	}
	if !g.Valid() {
		return fmt.Errorf("invalid glyph group %d", int(g))
	}
	s.Pairs[i].Side(side).SetGroup(g)
	return s.savePairs()
}

// SetOffset changes the placement offset of one side of pair i.
func (s *Session) SetOffset(i int, side glyphpair.Side, x, y float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.Pairs[i].Side(side).Offset = glyphpair.Offset{X: x, Y: y}
	return s.savePairs()
}

// Reset removes all pairs and re-runs the fix, which leaves the asset
// without pair adjustments.
func (s *Session) Reset() error {
	if s.Asset == nil {
		return ErrNoAsset
	}
	s.Pairs = nil
	return s.update()
}

// Fix rebuilds the asset's pair adjustment table from the pair list and
// saves both the asset and the pair list.
func (s *Session) Fix() (fixer.Report, error) {
	if s.Asset == nil {
		return fixer.Report{}, ErrNoAsset
	}
	s.LastReport = fixer.Fix(s.Asset, s.Pairs)
	if err := s.Asset.Save(""); err != nil {
		return s.LastReport, err
	}
	return s.LastReport, s.savePairs()
}

// ExtractPreset writes the pair list into directory dir as
// "<asset name>_ThaiGlyphRecord.json" and returns the file's path.
func (s *Session) ExtractPreset(dir string) (string, error) {
	if s.Asset == nil {
		return "", ErrNoAsset
	}
	path := filepath.Join(dir, s.Asset.Name+recordFileSuffix)
	if err := glyphpair.Save(path, s.record()); err != nil {
		return "", err
	}
	return path, nil
}

// LoadPreset replaces the pair list with the pairs of a preset file and
// re-runs the fix.
func (s *Session) LoadPreset(path string) error {
	if s.Asset == nil {
		return ErrNoAsset
	}
	rec, err := glyphpair.Load(path)
	if err != nil {
		return err
	}
	s.Pairs = rec.Pairs
	return s.update()
}

// PairsPath returns the cache file holding the asset's pair list.
func (s *Session) PairsPath() string {
	if s.Asset == nil {
		return ""
	}
	return filepath.Join(s.conf.CacheDir, s.Asset.GUID+recordFileSuffix)
}

// update is run after edits which change the outcome of a fix.
func (s *Session) update() error {
	_, err := s.Fix()
	return err
}

func (s *Session) check(i int) error {
	if s.Asset == nil {
		return ErrNoAsset
	}
	if i < 0 || i >= len(s.Pairs) {
		return fmt.Errorf("no glyph pair #%d, have %d", i, len(s.Pairs))
	}
	return nil
}

func (s *Session) record() glyphpair.Record {
	return glyphpair.Record{Pairs: s.Pairs}
}

func (s *Session) cachePath() string {
	return filepath.Join(s.conf.CacheDir, cacheFileName)
}

func (s *Session) saveCache() error {
	cache := CacheData{Language: s.Language}
	if s.Asset != nil {
		cache.FontAssetGUID = s.Asset.GUID
		if abs, err := filepath.Abs(s.Asset.Path()); err == nil {
			cache.FontAssetPath = abs
		}
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cachePath(), data, 0o644)
}

func (s *Session) savePairs() error {
	if s.Asset == nil {
		return ErrNoAsset
	}
	return glyphpair.Save(s.PairsPath(), s.record())
}

func (s *Session) loadPairs() error {
	rec, err := glyphpair.Load(s.PairsPath())
	if errors.Is(err, os.ErrNotExist) {
		s.Pairs = nil
		return nil
	} else if err != nil {
		return err
	}
	s.Pairs = rec.Pairs
	tracer().Infof("restored %d glyph pairs for font asset %s", len(s.Pairs), s.Asset.Name)
	return nil
}
