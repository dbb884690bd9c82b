package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"github.com/npillmayer/thaifix/thai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"
)

type SessionTestEnviron struct {
	suite.Suite
	dir       string
	assetPath string
	conf      Config
	teardown  func()
}

func TestSessionFunctions(t *testing.T) {
	suite.Run(t, new(SessionTestEnviron))
}

func (env *SessionTestEnviron) SetupTest() {
	env.teardown = gotestingadapter.QuickConfig(env.T(), "thaifix.session")
	env.dir = env.T().TempDir()
	env.conf = Config{CacheDir: filepath.Join(env.dir, "cache")}
	// asset without a source font: only these characters are known
	a := fontasset.New("sarabun", "")
	a.GUID = "0123456789abcdef0123456789abcdef"
	for r, g := range map[rune]fontasset.GlyphIndex{'ก': 1, 'ข': 2, '่': 10, '้': 11} {
		a.Characters[r] = g
	}
	env.assetPath = filepath.Join(env.dir, "sarabun.asset.json")
	env.Require().NoError(a.Save(env.assetPath))
}

func (env *SessionTestEnviron) TearDownTest() {
	env.teardown()
}

func (env *SessionTestEnviron) open() *Session {
	s, err := New(env.conf)
	env.Require().NoError(err)
	return s
}

func (env *SessionTestEnviron) TestRestoreWithoutCache() {
	s := env.open()
	env.NoError(s.Restore())
	env.Nil(s.Asset)
	env.Equal(English, s.Language)
	env.ErrorIs(s.Add(), ErrNoAsset)
	_, err := s.Fix()
	env.ErrorIs(err, ErrNoAsset)
}

func (env *SessionTestEnviron) TestSelectAssetWritesCache() {
	s := env.open()
	env.Require().NoError(s.SelectAsset(env.assetPath))
	env.Empty(s.Pairs)
	env.Require().NoError(s.SetLanguage(English))

	data, err := os.ReadFile(filepath.Join(env.conf.CacheDir, "ThaiFontFixerCache.json"))
	env.Require().NoError(err)
	var cache CacheData
	env.Require().NoError(json.Unmarshal(data, &cache))
	env.Equal("0123456789abcdef0123456789abcdef", cache.FontAssetGUID)
	env.Equal(env.assetPath, cache.FontAssetPath)
	env.Equal(English, cache.Language)
}

func (env *SessionTestEnviron) TestEditsSurviveRestart() {
	s := env.open()
	env.Require().NoError(s.SelectAsset(env.assetPath))
	env.Require().NoError(s.Add())
	env.Require().NoError(s.SetGroup(0, glyphpair.Right, thai.ToneMarks))
	env.Require().NoError(s.SetOffset(0, glyphpair.Right, 0, -40))
	env.Require().NoError(s.SetLanguage(English))
	env.FileExists(s.PairsPath())
	env.Zero(s.Asset.Features.Len(), "editing groups and offsets does not fix")

	t := env.open()
	env.Require().NoError(t.Restore())
	env.Require().NotNil(t.Asset)
	env.Equal("sarabun", t.Asset.Name)
	env.Equal(English, t.Language)
	env.Require().Len(t.Pairs, 1)
	env.Equal(thai.ToneMarks, t.Pairs[0].Right.Type)
	env.Equal(glyphpair.Offset{Y: -40}, t.Pairs[0].Right.Offset)
}

func (env *SessionTestEnviron) TestFixSavesAsset() {
	s := env.open()
	env.Require().NoError(s.SelectAsset(env.assetPath))
	p := glyphpair.NewPair()
	p.Right.SetGroup(thai.ToneMarks)
	p.Right.Offset = glyphpair.Offset{Y: -40}
	env.Require().NoError(s.Add(p))
	report, err := s.Fix()
	env.Require().NoError(err)
	env.Equal(4, report.Created)
	env.False(s.Asset.Dirty())

	reloaded, err := fontasset.Load(env.assetPath)
	env.Require().NoError(err)
	rec, ok := reloaded.Features.Get(2, 11)
	env.Require().True(ok)
	env.Equal(-40.0, rec.Second.Value.YPlacement)
}

func (env *SessionTestEnviron) TestToggleRemoveAndResetRefix() {
	s := env.open()
	env.Require().NoError(s.SelectAsset(env.assetPath))
	p := glyphpair.NewPair()
	p.Right.SetGroup(thai.ToneMarks)
	env.Require().NoError(s.Add(p, p))
	_, err := s.Fix()
	env.Require().NoError(err)
	env.Equal(4, s.Asset.Features.Len())

	env.Require().NoError(s.SetEnabled(0, false))
	env.Equal(4, s.Asset.Features.Len(), "second pair still enabled")
	env.Require().NoError(s.Remove(1))
	env.Len(s.Pairs, 1)
	env.Zero(s.Asset.Features.Len())
	env.Equal(1, s.LastReport.Disabled)

	env.Require().NoError(s.SetEnabled(0, true))
	env.Equal(4, s.Asset.Features.Len())
	env.Require().NoError(s.Reset())
	env.Empty(s.Pairs)
	env.Zero(s.Asset.Features.Len())

	env.Error(s.Remove(0))
	env.Error(s.SetEnabled(-1, true))
}

func (env *SessionTestEnviron) TestPresetExtractAndLoad() {
	s := env.open()
	env.Require().NoError(s.SelectAsset(env.assetPath))
	p := glyphpair.NewPair()
	p.Right.SetGroup(thai.ToneMarks)
	p.Right.Offset = glyphpair.Offset{X: -5, Y: -30}
	env.Require().NoError(s.Add(p))

	out := env.T().TempDir()
	path, err := s.ExtractPreset(out)
	env.Require().NoError(err)
	env.Equal(filepath.Join(out, "sarabun_ThaiGlyphRecord.json"), path)

	env.Require().NoError(s.Reset())
	env.Require().NoError(s.LoadPreset(path))
	env.Require().Len(s.Pairs, 1)
	env.Equal(glyphpair.Offset{X: -5, Y: -30}, s.Pairs[0].Right.Offset)
	env.Equal(4, s.Asset.Features.Len(), "loading a preset fixes the asset")

	env.Error(s.LoadPreset(filepath.Join(out, "missing.json")))
	env.Len(s.Pairs, 1)
}

func (env *SessionTestEnviron) TestReselectFontKeepsAsset() {
	fontPath := filepath.Join(env.dir, "go.ttf")
	env.Require().NoError(os.WriteFile(fontPath, goregular.TTF, 0o644))
	s := env.open()
	env.Require().NoError(s.SelectAsset(fontPath))
	assetPath := filepath.Join(env.dir, "go.asset.json")
	env.Equal(assetPath, s.Asset.Path())
	rec, created := s.Asset.PairRecord(36, 57)
	env.Require().True(created)
	rec.Second.Value.YPlacement = -25
	env.Require().NoError(s.Asset.Save(""))
	p := glyphpair.NewPair()
	p.Right.SetGroup(thai.ToneMarks)
	env.Require().NoError(s.Add(p))

	t := env.open()
	env.Require().NoError(t.SelectAsset(fontPath))
	env.Equal(assetPath, t.Asset.Path())
	env.Equal(s.Asset.GUID, t.Asset.GUID)
	env.Equal(1, t.Asset.Features.Len(), "pair records on disk are kept")
	kept, ok := t.Asset.Features.Get(36, 57)
	env.Require().True(ok)
	env.Equal(-25.0, kept.Second.Value.YPlacement)
	env.Require().Len(t.Pairs, 1)
	env.Equal(thai.ToneMarks, t.Pairs[0].Right.Type)
}

func (env *SessionTestEnviron) TestSelectMissingFont() {
	s := env.open()
	err := s.SelectAsset(filepath.Join(env.dir, "nonexistent.ttf"))
	env.Error(err)
	env.Nil(s.Asset)
}

func TestLanguage(t *testing.T) {
	for in, want := range map[string]Language{
		"th": Thai, "thai": Thai, "th-TH": Thai, "ไทย": Thai,
		"en": English, "English": English, "de": English,
	} {
		l, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, l, in)
	}
	_, err := ParseLanguage("!!")
	assert.Error(t, err)
	assert.Equal(t, language.Thai, Thai.Tag())
	assert.Equal(t, "English", English.String())
}

func TestConfigFrom(t *testing.T) {
	conf := testconfig.Conf{"cache-dir": "/tmp/thaifix-test"}
	c := ConfigFrom(conf)
	assert.Equal(t, "/tmp/thaifix-test", c.CacheDir)
	c, err := c.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultAppKey, c.AppKey)
	assert.Equal(t, "/tmp/thaifix-test", c.CacheDir)

	c = ConfigFrom(testconfig.Conf{"app-key": "fixer"})
	assert.Equal(t, "fixer", c.AppKey)
	assert.Empty(t, c.CacheDir)
}
