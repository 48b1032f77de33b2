package gbwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildRecordBytes writes a minimal single-record byte stream (outgoing
// table followed by run body) the way RecordArray would concatenate it,
// and returns the byte slice; the record ends at len of that slice.
func buildRecordBytes(outgoing []Edge, runs []Run) []byte {
	var buf []byte
	buf = AppendVByte(buf, uint64(len(outgoing)))
	var prev Node
	for _, e := range outgoing {
		buf = AppendVByte(buf, uint64(e.Node-prev))
		prev = e.Node
		buf = AppendVByte(buf, e.Offset)
	}
	sigma := len(outgoing)
	if sigma > 0 {
		for _, r := range runs {
			buf = AppendRun(buf, sigma, r)
		}
	}
	return buf
}

func sampleRecord() (CompressedRecord, *DynamicRecord) {
	outgoing := []Edge{{Node: 2, Offset: 0}, {Node: 4, Offset: 3}, {Node: 6, Offset: 1}}
	runs := []Run{{Rank: 0, Length: 3}, {Rank: 1, Length: 2}, {Rank: 2, Length: 1}, {Rank: 0, Length: 4}}
	data := buildRecordBytes(outgoing, runs)

	dyn := &DynamicRecord{}
	for _, e := range outgoing {
		dyn.AddOutgoing(e)
	}
	for _, r := range runs {
		dyn.AddRun(r)
	}

	return ReadCompressedRecord(data, 0, len(data)), dyn
}

func TestCompressedRecordSizeAndRuns(t *testing.T) {
	rec, dyn := sampleRecord()
	require.Equal(t, dyn.Size(), rec.Size())
	require.Equal(t, dyn.Runs(), rec.Runs())
	require.Equal(t, 3, rec.Outdegree())
}

func TestCompressedRecordEmpty(t *testing.T) {
	data := buildRecordBytes(nil, nil)
	rec := ReadCompressedRecord(data, 0, len(data))
	require.True(t, rec.Empty())
	require.True(t, IsEmptyCompressedRecord(data, 0))
	require.Equal(t, uint64(0), rec.Size())
	require.Equal(t, 0, rec.Runs())
	require.Equal(t, InvalidEdge, rec.LF(0))
	require.Equal(t, Node(ENDMARKER), rec.At(0))
}

func TestCompressedRecordLFMatchesDynamic(t *testing.T) {
	rec, dyn := sampleRecord()
	for i := uint64(0); i < dyn.Size(); i++ {
		wantEdge, wantEnd := dyn.RunLF(i)
		gotEdge, gotEnd := rec.RunLF(i)
		require.Equalf(t, wantEdge, gotEdge, "position %d", i)
		require.Equalf(t, wantEnd, gotEnd, "position %d", i)
		require.Equal(t, dyn.At(i), rec.At(i))
	}
	require.Equal(t, InvalidEdge, rec.LF(dyn.Size()))
}

func TestCompressedRecordLFToMatchesDynamic(t *testing.T) {
	rec, dyn := sampleRecord()
	targets := []Node{2, 4, 6, 8}
	for _, to := range targets {
		for i := uint64(0); i <= dyn.Size(); i++ {
			require.Equalf(t, dyn.LFTo(i, to), rec.LFTo(i, to), "to=%d i=%d", to, i)
		}
	}
}

func TestCompressedRecordLFRangeMatchesDynamic(t *testing.T) {
	rec, dyn := sampleRecord()
	targets := []Node{2, 4, 6}
	ranges := []Range{{Start: 0, End: 9}, {Start: 1, End: 4}, {Start: 3, End: 3}, EmptyRange()}
	for _, to := range targets {
		for _, r := range ranges {
			require.Equalf(t, dyn.LFRange(r, to), rec.LFRange(r, to), "to=%d range=%v", to, r)
		}
	}
}

func TestCompressedRecordBdLFMatchesDynamic(t *testing.T) {
	rec, dyn := sampleRecord()
	targets := []Node{2, 3, 4, 5, 6, 7}
	ranges := []Range{{Start: 0, End: 9}, {Start: 2, End: 6}, {Start: 0, End: 0}}
	for _, to := range targets {
		for _, r := range ranges {
			wantRange, wantOffset := dyn.BdLF(r, to)
			gotRange, gotOffset := rec.BdLF(r, to)
			require.Equalf(t, wantRange, gotRange, "to=%d range=%v", to, r)
			require.Equalf(t, wantOffset, gotOffset, "to=%d range=%v", to, r)
		}
	}
}

func TestCompressedRecordHasEdge(t *testing.T) {
	rec, dyn := sampleRecord()
	for _, to := range []Node{2, 4, 6, 8, 0} {
		require.Equal(t, dyn.HasEdge(to), rec.HasEdge(to))
	}
}
