package thaifix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"github.com/npillmayer/thaifix/thai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestFamilyName(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)
	family, sub := FamilyName(f)
	assert.Equal(t, "Go", family)
	assert.Equal(t, "Regular", sub)
}

func TestCreateAsset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix", "thaifix.asset")
	defer teardown()

	dir := t.TempDir()
	fontPath := filepath.Join(dir, "go.ttf")
	require.NoError(t, os.WriteFile(fontPath, goregular.TTF, 0o644))
	assetPath := filepath.Join(dir, "go.asset.json")
	a, n, err := CreateAsset(fontPath, assetPath, true)
	require.NoError(t, err)
	assert.Zero(t, n, "Go Regular has no GPOS table")
	assert.Equal(t, "go", a.Name)
	assert.FileExists(t, assetPath)

	_, _, err = CreateAsset(filepath.Join(dir, "missing.ttf"), assetPath, false)
	assert.Error(t, err)
}

func TestFixAsset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix", "thaifix.fixer")
	defer teardown()

	dir := t.TempDir()
	a := fontasset.New("thai", "")
	a.Characters['ป'] = 3
	a.Characters['่'] = 10
	a.Characters['้'] = 11
	assetPath := filepath.Join(dir, "thai.asset.json")
	require.NoError(t, a.Save(assetPath))

	p := glyphpair.NewPair()
	p.Left.SetGroup(thai.AscenderConsonants)
	p.Right.SetGroup(thai.ToneMarks)
	p.Right.Offset = glyphpair.Offset{X: -20, Y: 0}
	presetPath := filepath.Join(dir, "preset.yaml")
	require.NoError(t, glyphpair.Save(presetPath, glyphpair.Record{Pairs: []glyphpair.Pair{p}}))

	report, err := FixAsset(assetPath, presetPath)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	fixed, err := fontasset.Load(assetPath)
	require.NoError(t, err)
	rec, ok := fixed.Features.Get(3, 10)
	require.True(t, ok)
	assert.Equal(t, -20.0, rec.Second.Value.XPlacement)

	_, err = FixAsset(assetPath, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
