package packedints

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitsFor(t *testing.T) {
	cases := []struct {
		max  uint64
		want uint
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {7, 3}, {8, 4}, {255, 8}, {256, 9},
	}
	for _, c := range cases {
		require.Equalf(t, c.want, BitsFor(c.max), "BitsFor(%d)", c.max)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	for _, width := range []uint{0, 1, 3, 5, 7, 8, 13, 31, 32, 63, 64} {
		n := 200
		a := New(n, width)
		var mask uint64
		if width > 0 {
			mask = uint64(1)<<width - 1
		}
		values := make([]uint64, n)
		for i := 0; i < n; i++ {
			v := (uint64(i)*2654435761 + 7) & mask
			values[i] = v
			a.Set(i, v)
		}
		for i := 0; i < n; i++ {
			require.Equalf(t, values[i], a.Get(i), "width=%d i=%d", width, i)
		}
	}
}

func TestFromValues(t *testing.T) {
	values := []uint64{5, 0, 17, 3, 17}
	a := FromValues(values)
	require.Equal(t, BitsFor(17), a.Width())
	for i, v := range values {
		require.Equal(t, v, a.Get(i))
	}
}
