package rankselect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func referenceRank1(bits []bool, i int) int {
	n := 0
	for j := 0; j < i && j < len(bits); j++ {
		if bits[j] {
			n++
		}
	}
	return n
}

func referenceSelect1(bits []bool, k int) int {
	n := 0
	for i, b := range bits {
		if b {
			n++
			if n == k {
				return i
			}
		}
	}
	return len(bits)
}

func buildFromPattern(t *testing.T, pattern []bool) *BitVector {
	t.Helper()
	b := NewBuilder(len(pattern))
	for i, set := range pattern {
		if set {
			b.Set(i)
		}
	}
	return b.Build()
}

func TestBitVectorRankSelect(t *testing.T) {
	size := 500
	pattern := make([]bool, size)
	for i := range pattern {
		// Irregular spacing, including long runs of zeros and a dense
		// cluster, to exercise both the fast path and the summary scan.
		switch {
		case i%97 == 0:
			pattern[i] = true
		case i > 300 && i < 320:
			pattern[i] = true
		}
	}
	bv := buildFromPattern(t, pattern)

	ones := 0
	for _, b := range pattern {
		if b {
			ones++
		}
	}
	require.Equal(t, ones, bv.Ones())

	for i := 0; i <= size; i++ {
		require.Equalf(t, referenceRank1(pattern, i), bv.Rank1(i), "rank1(%d)", i)
	}
	for k := 1; k <= ones; k++ {
		require.Equalf(t, referenceSelect1(pattern, k), bv.Select1(k), "select1(%d)", k)
	}
	require.Equal(t, size, bv.Select1(ones+1))
	require.Equal(t, size, bv.Select1(0))
}

func TestBitVectorSuccessorPredecessor(t *testing.T) {
	pattern := make([]bool, 260)
	set := map[int]bool{0: true, 5: true, 63: true, 64: true, 200: true, 259: true}
	for i := range pattern {
		pattern[i] = set[i]
	}
	bv := buildFromPattern(t, pattern)

	require.Equal(t, 0, bv.Successor(0))
	require.Equal(t, 5, bv.Successor(1))
	require.Equal(t, 63, bv.Successor(6))
	require.Equal(t, 64, bv.Successor(64))
	require.Equal(t, 200, bv.Successor(65))
	require.Equal(t, 259, bv.Successor(201))
	require.Equal(t, 260, bv.Successor(260))

	require.Equal(t, -1, bv.Predecessor(-1))
	require.Equal(t, 0, bv.Predecessor(0))
	require.Equal(t, 0, bv.Predecessor(4))
	require.Equal(t, 64, bv.Predecessor(100))
	require.Equal(t, 259, bv.Predecessor(1000))
}

func TestEmptyBitVector(t *testing.T) {
	bv := NewBuilder(0).Build()
	require.Equal(t, 0, bv.Size())
	require.Equal(t, 0, bv.Ones())
	require.Equal(t, 0, bv.Select1(1))
	require.Equal(t, -1, bv.Predecessor(0))
	require.Equal(t, 0, bv.Successor(0))
}
