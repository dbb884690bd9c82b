package fontasset

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// ValueRecord holds the positional adjustment of one glyph, in design units.
type ValueRecord struct {
	XPlacement float64 `json:"xPlacement"`
	YPlacement float64 `json:"yPlacement"`
	XAdvance   float64 `json:"xAdvance"`
	YAdvance   float64 `json:"yAdvance"`
}

func (v ValueRecord) String() string {
	return fmt.Sprintf("<%g %g %g %g>", v.XPlacement, v.YPlacement, v.XAdvance, v.YAdvance)
}

// GlyphAdjustmentRecord is the adjustment of one glyph of a pair.
type GlyphAdjustmentRecord struct {
	GlyphIndex GlyphIndex  `json:"glyphIndex"`
	Value      ValueRecord `json:"glyphValueRecord"`
}

// PairAdjustmentRecord adjusts an ordered pair of glyphs.
type PairAdjustmentRecord struct {
	First  GlyphAdjustmentRecord `json:"firstAdjustmentRecord"`
	Second GlyphAdjustmentRecord `json:"secondAdjustmentRecord"`
}

// Key returns the glyph pair of a record.
func (rec PairAdjustmentRecord) Key() (left, right GlyphIndex) {
	return rec.First.GlyphIndex, rec.Second.GlyphIndex
}

func pairKey(left, right GlyphIndex) uint32 {
	return uint32(left)<<16 | uint32(right)
}

// PairTable holds pair adjustment records, ordered by left glyph, then right
// glyph. It contains at most one record per glyph pair.
type PairTable struct {
	records *treemap.Map // pairKey → *PairAdjustmentRecord
	changed bool
}

// NewPairTable creates an empty table.
func NewPairTable() *PairTable {
	return &PairTable{records: treemap.NewWith(utils.UInt32Comparator)}
}

// Len returns the number of records.
func (t *PairTable) Len() int {
	return t.records.Size()
}

// Get returns the record for a glyph pair. The record is owned by the table.
func (t *PairTable) Get(left, right GlyphIndex) (*PairAdjustmentRecord, bool) {
	v, ok := t.records.Get(pairKey(left, right))
	if !ok {
		return nil, false
	}
	return v.(*PairAdjustmentRecord), true
}

// Upsert stores a copy of rec, replacing any record for the same glyph pair.
// It returns true if no such record existed before.
func (t *PairTable) Upsert(rec PairAdjustmentRecord) bool {
	key := pairKey(rec.Key())
	_, exists := t.records.Get(key)
	t.records.Put(key, &rec)
	t.changed = true
	return !exists
}

func (t *PairTable) fetchOrCreate(left, right GlyphIndex) (*PairAdjustmentRecord, bool) {
	t.changed = true
	if rec, ok := t.Get(left, right); ok {
		return rec, false
	}
	rec := &PairAdjustmentRecord{
		First:  GlyphAdjustmentRecord{GlyphIndex: left},
		Second: GlyphAdjustmentRecord{GlyphIndex: right},
	}
	t.records.Put(pairKey(left, right), rec)
	return rec, true
}

// Remove deletes the record for a glyph pair, if present.
func (t *PairTable) Remove(left, right GlyphIndex) bool {
	key := pairKey(left, right)
	if _, ok := t.records.Get(key); !ok {
		return false
	}
	t.records.Remove(key)
	t.changed = true
	return true
}

// Clear removes all records.
func (t *PairTable) Clear() {
	if t.records.Size() > 0 {
		t.changed = true
	}
	t.records.Clear()
}

// Each calls f for every record in table order. f may modify the record,
// but must not add or remove records.
func (t *PairTable) Each(f func(rec *PairAdjustmentRecord)) {
	it := t.records.Iterator()
	for it.Next() {
		f(it.Value().(*PairAdjustmentRecord))
	}
}

// Records returns copies of all records in table order.
func (t *PairTable) Records() []PairAdjustmentRecord {
	recs := make([]PairAdjustmentRecord, 0, t.Len())
	t.Each(func(rec *PairAdjustmentRecord) {
		recs = append(recs, *rec)
	})
	return recs
}
