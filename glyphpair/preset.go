package glyphpair

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/thaifix/thai"
	"gopkg.in/yaml.v3"
)

// Format is the serialization format of a preset file.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatOf derives the preset format from a file name extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return JSON, fmt.Errorf("unsupported preset file type %q", filepath.Ext(path))
}

// --- Wire format -----------------------------------------------------------

// The JSON layout is the one written by the game-engine editor plugin:
//
//	{"glyphGroupPairs":[{"IsEnabled":true,
//	   "Left":{"typeEnum":0,"offset":{"x":0,"y":0}},
//	   "Right":{"typeEnum":5,"offset":{"x":0,"y":-40}}}]}
//
// YAML uses lower-case keys and group identifiers instead of ordinals.

type wireRecord struct {
	Pairs []wirePair `json:"glyphGroupPairs" yaml:"pairs"`
}

type wirePair struct {
	Enabled bool      `json:"IsEnabled" yaml:"enabled"`
	Left    wireGroup `json:"Left" yaml:"left"`
	Right   wireGroup `json:"Right" yaml:"right"`
}

// defaultWirePair is the starting point for decoding a pair. Fields missing
// from a preset keep these values.
func defaultWirePair() wirePair {
	return wirePair{
		Enabled: true,
		Left:    wireGroup{Type: groupRef(thai.None)},
		Right:   wireGroup{Type: groupRef(thai.None)},
	}
}

func (p *wirePair) UnmarshalJSON(b []byte) error {
	type plain wirePair
	w := plain(defaultWirePair())
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = wirePair(w)
	return nil
}

func (p *wirePair) UnmarshalYAML(node *yaml.Node) error {
	type plain wirePair
	w := plain(defaultWirePair())
	if err := node.Decode(&w); err != nil {
		return err
	}
	*p = wirePair(w)
	return nil
}

type wireGroup struct {
	Type   groupRef `json:"typeEnum" yaml:"group"`
	Offset Offset   `json:"offset" yaml:"offset"`
}

// groupRef is written as an ordinal to JSON and as an identifier to YAML.
// Both forms are accepted when reading.
type groupRef thai.GroupType

func (g groupRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(g))
}

func (g *groupRef) UnmarshalJSON(b []byte) error {
	var s string
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	t, err := thai.ParseGroupType(s)
	if err != nil {
		return err
	}
	*g = groupRef(t)
	return nil
}

func (g groupRef) MarshalYAML() (interface{}, error) {
	return thai.GroupType(g).String(), nil
}

func (g *groupRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: glyph group must be a scalar", node.Line)
	}
	t, err := thai.ParseGroupType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*g = groupRef(t)
	return nil
}

func toWire(rec Record) wireRecord {
	w := wireRecord{Pairs: make([]wirePair, len(rec.Pairs))}
	for i, p := range rec.Pairs {
		w.Pairs[i] = wirePair{
			Enabled: p.Enabled,
			Left:    wireGroup{Type: groupRef(p.Left.Type), Offset: p.Left.Offset},
			Right:   wireGroup{Type: groupRef(p.Right.Type), Offset: p.Right.Offset},
		}
	}
	return w
}

func fromWire(w wireRecord) Record {
	rec := Record{Pairs: make([]Pair, len(w.Pairs))}
	for i, p := range w.Pairs {
		rec.Pairs[i] = Pair{
			Enabled: p.Enabled,
			Left:    GlyphGroup{Type: thai.GroupType(p.Left.Type), Offset: p.Left.Offset},
			Right:   GlyphGroup{Type: thai.GroupType(p.Right.Type), Offset: p.Right.Offset},
		}
	}
	return rec
}

// --- Reading and writing ---------------------------------------------------

// Decode reads a preset in the given format.
func Decode(r io.Reader, format Format) (Record, error) {
	var w wireRecord
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&w); err != nil {
			return Record{}, fmt.Errorf("cannot decode JSON preset: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&w); err != nil && err != io.EOF {
			return Record{}, fmt.Errorf("cannot decode YAML preset: %w", err)
		}
	default:
		return Record{}, fmt.Errorf("unknown preset format %d", format)
	}
	rec := fromWire(w)
	tracer().Debugf("decoded preset with %d pairs", len(rec.Pairs))
	return rec, nil
}

// Encode writes a preset in the given format.
func Encode(w io.Writer, format Format, rec Record) error {
	wire := toWire(rec)
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(wire)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wire); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown preset format %d", format)
}

// Load reads a preset file. The format is chosen by file extension.
func Load(path string) (Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Record{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()
	rec, err := Decode(f, format)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Infof("loaded %d glyph pairs from %s", len(rec.Pairs), path)
	return rec, nil
}

// Save writes a preset file. The format is chosen by file extension.
func Save(path string, rec Record) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, rec); err != nil {
		return fmt.Errorf("cannot encode preset: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	tracer().Infof("saved %d glyph pairs to %s", len(rec.Pairs), path)
	return nil
}
