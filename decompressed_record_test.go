package gbwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecompressedRecordFromDynamicMatchesDynamic(t *testing.T) {
	_, dyn := sampleRecord()
	dec := NewDecompressedRecordFromDynamic(dyn)

	require.Equal(t, dyn.Size(), dec.Size())
	require.Equal(t, dyn.Runs(), dec.Runs())
	for i := uint64(0); i < dyn.Size(); i++ {
		wantEdge, wantEnd := dyn.RunLF(i)
		gotEdge, gotEnd := dec.RunLF(i)
		require.Equalf(t, wantEdge, gotEdge, "position %d", i)
		require.Equalf(t, wantEnd, gotEnd, "position %d", i)
		require.Equal(t, dyn.At(i), dec.At(i))
	}
	require.Equal(t, InvalidEdge, dec.LF(dyn.Size()))
}

func TestDecompressedRecordFromCompressedMatchesCompressed(t *testing.T) {
	rec, _ := sampleRecord()
	dec := NewDecompressedRecordFromCompressed(rec)

	require.Equal(t, rec.Size(), dec.Size())
	require.Equal(t, rec.Runs(), dec.Runs())
	for i := uint64(0); i < rec.Size(); i++ {
		wantEdge, wantEnd := rec.RunLF(i)
		gotEdge, gotEnd := dec.RunLF(i)
		require.Equalf(t, wantEdge, gotEdge, "position %d", i)
		require.Equalf(t, wantEnd, gotEnd, "position %d", i)
	}
}

func TestDecompressedRecordEmpty(t *testing.T) {
	dec := NewDecompressedRecordFromDynamic(&DynamicRecord{})
	require.True(t, dec.Empty())
	require.Equal(t, uint64(0), dec.Size())
	require.Equal(t, 0, dec.Runs())
	require.Equal(t, InvalidEdge, dec.LF(0))
	require.Equal(t, Node(ENDMARKER), dec.At(0))
}
