package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/otkern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFeatureFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	dir := t.TempDir()
	a := fontasset.New("sarabun", "")
	rec, _ := a.PairRecord(3, 10)
	rec.Second.Value.YPlacement = -40

	out := filepath.Join(dir, "kern.fea")
	require.NoError(t, exportFeatureFile(a, out, otkern.Options{}))
	fea, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(fea), "pos glyph00003 <0 0 0 0> glyph00010 <0 -40 0 0>;")
}

func TestFailedExportWritesNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "thaifix.asset")
	defer teardown()

	dir := t.TempDir()
	a := fontasset.New("sarabun", "")
	rec, _ := a.PairRecord(3, 10)
	rec.Second.Value.YPlacement = 40000 // does not fit into 16 bits

	out := filepath.Join(dir, "kern.fea")
	assert.Error(t, exportFeatureFile(a, out, otkern.Options{}))
	assert.NoFileExists(t, out)

	old := filepath.Join(dir, "old.fea")
	require.NoError(t, os.WriteFile(old, []byte("feature kern {} kern;\n"), 0o644))
	assert.Error(t, exportFeatureFile(a, old, otkern.Options{}))
	content, err := os.ReadFile(old)
	require.NoError(t, err)
	assert.Equal(t, "feature kern {} kern;\n", string(content), "existing file is left alone")
}
