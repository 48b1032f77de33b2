package gbwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVByteRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7F, 0x80, 0xFF, 1 << 20, 1 << 40, ^uint64(0)}
	var buf []byte
	for _, v := range values {
		buf = AppendVByte(buf, v)
	}
	pos := 0
	for _, want := range values {
		got, next := ReadVByte(buf, pos)
		require.Equal(t, want, got)
		pos = next
	}
	require.Equal(t, len(buf), pos)
}

func TestRunCodecSingleSymbolAlphabet(t *testing.T) {
	buf := AppendRun(nil, 1, Run{Rank: 0, Length: 5})
	require.Equal(t, []byte{0x04}, buf)
	run, next := ReadRun(buf, 0, 1)
	require.Equal(t, Run{Rank: 0, Length: 5}, run)
	require.Equal(t, len(buf), next)
}

func TestRunCodecShortRun(t *testing.T) {
	// sigma=3, run (2, 80): threshold = 256/3 = 85, 80 < 85.
	buf := AppendRun(nil, 3, Run{Rank: 2, Length: 80})
	require.Equal(t, []byte{0xEF}, buf)
	run, next := ReadRun(buf, 0, 3)
	require.Equal(t, Run{Rank: 2, Length: 80}, run)
	require.Equal(t, len(buf), next)
}

func TestRunCodecLongRun(t *testing.T) {
	// sigma=3, run (1, 200): byte 1+3*84=253, then VByte(200-85=115).
	buf := AppendRun(nil, 3, Run{Rank: 1, Length: 200})
	require.Equal(t, []byte{0xFD, 0x73}, buf)
	run, next := ReadRun(buf, 0, 3)
	require.Equal(t, Run{Rank: 1, Length: 200}, run)
	require.Equal(t, len(buf), next)
}

func TestRunCodecRoundTripManyAlphabets(t *testing.T) {
	for sigma := 1; sigma <= 256; sigma *= 2 {
		var buf []byte
		var runs []Run
		for rank := 0; rank < sigma; rank++ {
			for _, length := range []uint64{1, 2, 50, 200, 1000} {
				runs = append(runs, Run{Rank: uint32(rank), Length: length})
			}
		}
		for _, r := range runs {
			buf = AppendRun(buf, sigma, r)
		}
		pos := 0
		for _, want := range runs {
			got, next := ReadRun(buf, pos, sigma)
			require.Equalf(t, want, got, "sigma=%d", sigma)
			pos = next
		}
		require.Equal(t, len(buf), pos)
	}
}
