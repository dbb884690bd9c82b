/*
Package sfntio reads the table directory of an SFNT font file (TrueType or
OpenType) and rebuilds a font file with a table added or replaced.

Only single fonts are supported; font collections ('ttcf') are rejected.
Table contents are treated as opaque bytes, with the exception of table
'head', whose checkSumAdjustment field is recomputed on rebuild.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package sfntio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'thaifix.asset'
func tracer() tracing.Trace {
	return tracing.Select("thaifix.asset")
}

// ErrTableNotFound is returned if a font does not contain a requested table.
var ErrTableNotFound = errors.New("font table not found")

var errBufferBounds = errors.New("font data too short")

const (
	headerSize      = 12
	tableRecordSize = 16
	checksumMagic   = 0xB1B0AFBA
)

// TableRecord is an entry of the SFNT table directory.
type TableRecord struct {
	Tag      string
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Directory is the SFNT table directory of a font.
type Directory struct {
	Version uint32 // 0x00010000 for TrueType outlines, 'OTTO' for CFF
	Tables  []TableRecord
}

// Lookup finds the record for a table tag.
func (d Directory) Lookup(tag string) (TableRecord, bool) {
	for _, rec := range d.Tables {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return TableRecord{}, false
}

// Tags lists the table tags in directory order.
func (d Directory) Tags() []string {
	tags := make([]string, len(d.Tables))
	for i, rec := range d.Tables {
		tags[i] = rec.Tag
	}
	return tags
}

// ReadDirectory parses the table directory of a font file. Every table record
// is checked to lie within data.
func ReadDirectory(data []byte) (Directory, error) {
	if len(data) < headerSize {
		return Directory{}, errBufferBounds
	}
	dir := Directory{Version: binary.BigEndian.Uint32(data)}
	switch dir.Version {
	case 0x00010000, 0x4F54544F, 0x74727565: // 1.0, 'OTTO', 'true'
	case 0x74746366: // 'ttcf'
		return Directory{}, errors.New("font collections are not supported")
	default:
		return Directory{}, fmt.Errorf("unknown SFNT version 0x%08x", dir.Version)
	}
	n := int(binary.BigEndian.Uint16(data[4:]))
	if len(data) < headerSize+n*tableRecordSize {
		return Directory{}, fmt.Errorf("table directory of %d entries: %w", n, errBufferBounds)
	}
	dir.Tables = make([]TableRecord, n)
	for i := 0; i < n; i++ {
		rec := data[headerSize+i*tableRecordSize:]
		dir.Tables[i] = TableRecord{
			Tag:      string(rec[:4]),
			Checksum: binary.BigEndian.Uint32(rec[4:]),
			Offset:   binary.BigEndian.Uint32(rec[8:]),
			Length:   binary.BigEndian.Uint32(rec[12:]),
		}
		end := uint64(dir.Tables[i].Offset) + uint64(dir.Tables[i].Length)
		if end > uint64(len(data)) {
			return Directory{}, fmt.Errorf("table %q exceeds font data: %w", dir.Tables[i].Tag, errBufferBounds)
		}
	}
	tracer().Debugf("SFNT directory has %d tables", n)
	return dir, nil
}

// Table returns the bytes of a table. The result aliases data.
func Table(data []byte, tag string) ([]byte, error) {
	dir, err := ReadDirectory(data)
	if err != nil {
		return nil, err
	}
	rec, ok := dir.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%q: %w", tag, ErrTableNotFound)
	}
	return data[rec.Offset : rec.Offset+rec.Length], nil
}

// ReplaceTable returns a new font file with table tag set to table. All
// other tables are copied unchanged. Tables are written sorted by tag and
// 4-byte aligned, checksums are recomputed and, if the font has a 'head'
// table, its checkSumAdjustment is fixed.
func ReplaceTable(data []byte, tag string, table []byte) ([]byte, error) {
	if len(tag) != 4 {
		return nil, fmt.Errorf("invalid table tag %q", tag)
	}
	dir, err := ReadDirectory(data)
	if err != nil {
		return nil, err
	}
	tables := make(map[string][]byte, len(dir.Tables)+1)
	for _, rec := range dir.Tables {
		tables[rec.Tag] = data[rec.Offset : rec.Offset+rec.Length]
	}
	if _, exists := tables[tag]; exists {
		tracer().Debugf("replacing table %q", tag)
	} else {
		tracer().Debugf("adding table %q", tag)
	}
	tables[tag] = table
	return assemble(dir.Version, tables)
}

func assemble(version uint32, tables map[string][]byte) ([]byte, error) {
	tags := make([]string, 0, len(tables))
	size := 0
	for t, b := range tables {
		tags = append(tags, t)
		size += pad4(len(b))
	}
	sort.Strings(tags)
	n := len(tags)
	dirSize := headerSize + n*tableRecordSize
	out := make([]byte, dirSize+size)

	binary.BigEndian.PutUint32(out, version)
	sr, es, rs := searchParams(n)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	binary.BigEndian.PutUint16(out[6:], sr)
	binary.BigEndian.PutUint16(out[8:], es)
	binary.BigEndian.PutUint16(out[10:], rs)

	offset := dirSize
	headOffset := -1
	for i, t := range tags {
		b := tables[t]
		copy(out[offset:], b)
		if t == "head" {
			if len(b) < 12 {
				return nil, fmt.Errorf("table 'head' of length %d: %w", len(b), errBufferBounds)
			}
			headOffset = offset
			binary.BigEndian.PutUint32(out[offset+8:], 0)
		}
		rec := out[headerSize+i*tableRecordSize:]
		copy(rec, t)
		binary.BigEndian.PutUint32(rec[4:], Checksum(out[offset:offset+len(b)]))
		binary.BigEndian.PutUint32(rec[8:], uint32(offset))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(b)))
		offset += pad4(len(b))
	}
	if headOffset >= 0 {
		adj := checksumMagic - Checksum(out)
		binary.BigEndian.PutUint32(out[headOffset+8:], adj)
	}
	return out, nil
}

// Checksum computes an SFNT table checksum: the sum of big-endian uint32
// words, with a short final word padded by zeros.
func Checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var last [4]byte
		copy(last[:], b)
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

func searchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	p, e := 1, 0
	for p*2 <= n {
		p *= 2
		e++
	}
	searchRange = uint16(p * tableRecordSize)
	entrySelector = uint16(e)
	rangeShift = uint16(n*tableRecordSize) - searchRange
	return
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
