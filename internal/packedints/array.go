// Package packedints implements an arbitrary-bit-width packed integer
// array, the Go analogue of the int_vector<0> structures the original
// GBWT implementation bit-packs its sample values, dictionary offsets,
// and sort permutations into. It adapts the width-selection idea behind
// the teacher's sstable/colblk.UintBuilder (choose the narrowest
// representation that fits every value) but packs at bit granularity
// rather than byte granularity, since spec.md requires values packed
// to exactly ceil(log2(max+1)) bits.
package packedints

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// BitsFor returns the number of bits needed to represent any value in
// [0, maxValue], i.e. ceil(log2(maxValue+1)). BitsFor(0) is 0: an
// array whose only possible value is zero needs no storage bits.
func BitsFor(maxValue uint64) uint {
	return uint(bits.Len64(maxValue))
}

// Array is a fixed-length array of fixed-width unsigned integers,
// packed into a []uint64 backing store with no gaps between elements.
type Array struct {
	data   []uint64
	width  uint
	length int
}

// New allocates a zeroed Array of length elements, each width bits
// wide. width must be in [0, 64].
func New(length int, width uint) *Array {
	total := uint64(length) * uint64(width)
	nWords := (total + 63) / 64
	return &Array{data: make([]uint64, nWords), width: width, length: length}
}

// FromValues packs values into an Array whose width is the minimum
// needed to hold the largest value present.
func FromValues(values []uint64) *Array {
	var max uint64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	a := New(len(values), BitsFor(max))
	for i, v := range values {
		a.Set(i, v)
	}
	return a
}

// Len returns the number of elements.
func (a *Array) Len() int { return a.length }

// Width returns the number of bits used per element.
func (a *Array) Width() uint { return a.width }

func (a *Array) mask() uint64 {
	return uint64(1)<<a.width - 1
}

// Get returns the value at index i.
func (a *Array) Get(i int) uint64 {
	if a.width == 0 {
		return 0
	}
	bitPos := uint64(i) * uint64(a.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64
	v := a.data[wordIdx] >> bitOff
	if bitOff+uint64(a.width) > 64 {
		v |= a.data[wordIdx+1] << (64 - bitOff)
	}
	return v & a.mask()
}

// Set stores value at index i. value must fit within Width() bits;
// higher bits are silently discarded.
func (a *Array) Set(i int, value uint64) {
	if a.width == 0 {
		return
	}
	mask := a.mask()
	value &= mask
	bitPos := uint64(i) * uint64(a.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64
	a.data[wordIdx] &^= mask << bitOff
	a.data[wordIdx] |= value << bitOff
	if bitOff+uint64(a.width) > 64 {
		spillBits := bitOff + uint64(a.width) - 64
		spillMask := uint64(1)<<spillBits - 1
		a.data[wordIdx+1] &^= spillMask
		a.data[wordIdx+1] |= value >> (uint64(a.width) - spillBits)
	}
}

// WriteTo serializes the array's length, width, and packed words.
func (a *Array) WriteTo(w io.Writer) (int64, error) {
	var header [24]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(a.length))
	binary.LittleEndian.PutUint64(header[8:16], uint64(a.width))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(a.data)))
	if _, err := w.Write(header[:]); err != nil {
		return 0, errors.Wrap(err, "packedints: writing array header")
	}
	n := int64(len(header))

	buf := make([]byte, 8*len(a.data))
	for i, word := range a.data {
		binary.LittleEndian.PutUint64(buf[8*i:8*i+8], word)
	}
	if _, err := w.Write(buf); err != nil {
		return n, errors.Wrap(err, "packedints: writing array words")
	}
	return n + int64(len(buf)), nil
}

// ReadArray loads an array previously written by WriteTo.
func ReadArray(r io.Reader) (*Array, error) {
	var header [24]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "packedints: reading array header")
	}
	length := int(binary.LittleEndian.Uint64(header[0:8]))
	width := uint(binary.LittleEndian.Uint64(header[8:16]))
	numWords := int(binary.LittleEndian.Uint64(header[16:24]))

	data := make([]uint64, numWords)
	if numWords > 0 {
		buf := make([]byte, 8*numWords)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "packedints: reading array words")
		}
		for i := range data {
			data[i] = binary.LittleEndian.Uint64(buf[8*i : 8*i+8])
		}
	}
	return &Array{data: data, width: width, length: length}, nil
}

// Slice returns every element as a plain []uint64, for callers that
// need to iterate without repeated bit-unpacking overhead.
func (a *Array) Slice() []uint64 {
	out := make([]uint64, a.length)
	for i := range out {
		out[i] = a.Get(i)
	}
	return out
}
