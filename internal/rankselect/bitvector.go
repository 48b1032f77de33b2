// Package rankselect implements a bit-packed bitvector with O(1) rank,
// logarithmic select, and word-at-a-time successor/predecessor
// queries. It backs every sparse and dense bitvector spec.md calls for:
// RecordArray's record-start index and DASamples's three bitvectors.
//
// The bit-trick core of Successor/Predecessor (mask off the bits on the
// far side of the query index and count trailing/leading zeros) is
// adapted from the teacher's sstable/colblk.Bitmap. Successor also
// consults a one-bit-per-word summary to skip runs of all-zero words;
// Predecessor scans the words backward one at a time.
package rankselect

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/cockroachdb/errors"
)

const wordBits = 64

// Builder accumulates set bits over a fixed universe before the
// bitvector is frozen into its read-only, rank/select-capable form.
// Bits must only be set while building; once Build returns, the
// resulting BitVector is immutable, matching spec.md §5's rule that
// select support is constructed once and read concurrently afterward.
type Builder struct {
	words []uint64
	size  int
}

// NewBuilder allocates a builder for a bitvector over [0, size).
func NewBuilder(size int) *Builder {
	if size < 0 {
		size = 0
	}
	return &Builder{words: make([]uint64, (size+wordBits-1)/wordBits), size: size}
}

// Set marks bit i. i must be in [0, size).
func (b *Builder) Set(i int) {
	b.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Build freezes the builder into a BitVector, computing the rank
// blocks used by Rank1/Select1 and the word-nonzero summary used by
// Successor.
func (b *Builder) Build() *BitVector {
	words := b.words
	rankBlocks := make([]uint32, len(words)+1)
	var ones uint32
	for i, w := range words {
		rankBlocks[i] = ones
		ones += uint32(bits.OnesCount64(w))
	}
	rankBlocks[len(words)] = ones

	summary := make([]uint64, (len(words)+wordBits-1)/wordBits)
	for i, w := range words {
		if w != 0 {
			summary[i/wordBits] |= 1 << uint(i%wordBits)
		}
	}

	return &BitVector{
		words:      words,
		summary:    summary,
		size:       b.size,
		ones:       int(ones),
		rankBlocks: rankBlocks,
	}
}

// BitVector is an immutable bit-packed bitvector supporting rank1,
// select1, successor and predecessor queries.
type BitVector struct {
	words      []uint64
	summary    []uint64
	size       int
	ones       int
	rankBlocks []uint32
}

// Size returns the universe size (number of logical bits).
func (v *BitVector) Size() int { return v.size }

// Ones returns the number of set bits.
func (v *BitVector) Ones() int { return v.ones }

// Get reports whether bit i is set.
func (v *BitVector) Get(i int) bool {
	return v.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Rank1 returns the number of set bits in [0, i). Rank1(Size()) equals
// Ones().
func (v *BitVector) Rank1(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= v.size {
		return v.ones
	}
	wordIdx := i / wordBits
	rank := int(v.rankBlocks[wordIdx])
	if bit := uint(i % wordBits); bit > 0 {
		rank += bits.OnesCount64(v.words[wordIdx] & ((1 << bit) - 1))
	}
	return rank
}

// Select1 returns the position of the k-th set bit, using a 1-indexed
// k (k=1 is the first set bit), matching spec.md's select1(i+1)
// convention. Select1 returns Size() if k is out of [1, Ones()].
func (v *BitVector) Select1(k int) int {
	if k < 1 || k > v.ones {
		return v.size
	}
	// Binary search for the word whose cumulative rank first reaches k.
	lo, hi := 0, len(v.words)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if int(v.rankBlocks[mid+1]) >= k {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	wordIdx := lo
	remaining := k - int(v.rankBlocks[wordIdx])
	word := v.words[wordIdx]
	for {
		tz := bits.TrailingZeros64(word)
		remaining--
		if remaining == 0 {
			return wordIdx*wordBits + tz
		}
		word &= word - 1 // clear the lowest set bit
	}
}

// nextInWord returns the index of the smallest set bit >= bit within
// word, or 64 if there is none.
func nextInWord(word uint64, bit uint) int {
	return bits.TrailingZeros64(word &^ ((1 << bit) - 1))
}

// prevInWord returns the index of the largest set bit <= bit within
// word, or -1 if there is none.
func prevInWord(word uint64, bit uint) int {
	if bit >= 63 {
		if word == 0 {
			return -1
		}
		return 63 - bits.LeadingZeros64(word)
	}
	return 63 - bits.LeadingZeros64(word&((1<<(bit+1))-1))
}

// Successor returns the smallest set bit >= i, or Size() if none
// exists.
func (v *BitVector) Successor(i int) int {
	if i < 0 {
		i = 0
	}
	if i >= v.size {
		return v.size
	}
	wordIdx := i / wordBits
	if next := nextInWord(v.words[wordIdx], uint(i%wordBits)); next < wordBits {
		pos := wordIdx*wordBits + next
		if pos < v.size {
			return pos
		}
		return v.size
	}
	for sw := wordIdx + 1; sw < len(v.words); sw++ {
		// Consult the summary a word at a time; skip whole runs of
		// all-zero data words by scanning the summary bitmap instead.
		sWordIdx, sBit := sw/wordBits, uint(sw%wordBits)
		if sBit == 0 && v.summary[sWordIdx] == 0 {
			// Whole summary word covers all-zero data words; jump ahead.
			sw += wordBits - 1
			continue
		}
		if v.words[sw] != 0 {
			pos := sw*wordBits + bits.TrailingZeros64(v.words[sw])
			if pos < v.size {
				return pos
			}
			return v.size
		}
	}
	return v.size
}

// WriteTo serializes the bitvector's universe size and raw words; the
// rank/select support (rankBlocks, summary) is not persisted and is
// rebuilt by ReadBitVector, since it is pure derived state.
func (v *BitVector) WriteTo(w io.Writer) (int64, error) {
	var header [16]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(v.size))
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(v.words)))
	if _, err := w.Write(header[:]); err != nil {
		return 0, errors.Wrap(err, "rankselect: writing bitvector header")
	}
	n := int64(len(header))

	buf := make([]byte, 8*len(v.words))
	for i, word := range v.words {
		binary.LittleEndian.PutUint64(buf[8*i:8*i+8], word)
	}
	if _, err := w.Write(buf); err != nil {
		return n, errors.Wrap(err, "rankselect: writing bitvector words")
	}
	return n + int64(len(buf)), nil
}

// ReadBitVector loads a bitvector previously written by WriteTo,
// recomputing its rank/select support from the raw words.
func ReadBitVector(r io.Reader) (*BitVector, error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "rankselect: reading bitvector header")
	}
	size := int(binary.LittleEndian.Uint64(header[0:8]))
	numWords := int(binary.LittleEndian.Uint64(header[8:16]))

	buf := make([]byte, 8*numWords)
	if numWords > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "rankselect: reading bitvector words")
		}
	}
	words := make([]uint64, numWords)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(buf[8*i : 8*i+8])
	}

	builder := &Builder{words: words, size: size}
	return builder.Build(), nil
}

// Predecessor returns the largest set bit <= i, or -1 if none exists.
func (v *BitVector) Predecessor(i int) int {
	if i >= v.size {
		i = v.size - 1
	}
	if i < 0 {
		return -1
	}
	wordIdx := i / wordBits
	if prev := prevInWord(v.words[wordIdx], uint(i%wordBits)); prev >= 0 {
		return wordIdx*wordBits + prev
	}
	for sw := wordIdx - 1; sw >= 0; sw-- {
		if v.words[sw] != 0 {
			return sw*wordBits + 63 - bits.LeadingZeros64(v.words[sw])
		}
	}
	return -1
}
