package otkern

import (
	"encoding/binary"
	"errors"
)

var errBufferBounds = errors.New("GPOS data out of bounds")

// binarySegm is a segment of GPOS table data. Accessors return 0 for reads
// outside the segment; parsing code checks sizes with view before relying
// on a read.
type binarySegm []byte

func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) U32(i int) uint32 {
	if i < 0 || i+4 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint32(b[i:])
}

// view returns n bytes at the given offset, as a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// from returns the tail of b starting at offset.
func (b binarySegm) from(offset int) (binarySegm, error) {
	if offset < 0 || offset > len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// --- Writing ---------------------------------------------------------------

// table is a growing buffer for building a binary table.
type table []byte

func (t *table) u16(n uint16) {
	*t = binary.BigEndian.AppendUint16(*t, n)
}

func (t *table) u32(n uint32) {
	*t = binary.BigEndian.AppendUint32(*t, n)
}

func (t *table) i16(n int16) {
	t.u16(uint16(n))
}

func (t *table) tag(s string) {
	var b [4]byte
	copy(b[:], s+"    ")
	*t = append(*t, b[:]...)
}

// putU16 overwrites a previously reserved 16-bit slot.
func (t table) putU16(at int, n uint16) {
	binary.BigEndian.PutUint16(t[at:], n)
}
