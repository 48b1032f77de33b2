package gbwt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildDynamicRecord(outgoing []Edge, runs []Run) *DynamicRecord {
	d := &DynamicRecord{}
	for _, e := range outgoing {
		d.AddOutgoing(e)
	}
	for _, r := range runs {
		d.AddRun(r)
	}
	return d
}

func sampleBWT() []*DynamicRecord {
	endmarker := buildDynamicRecord([]Edge{{Node: 2, Offset: 0}, {Node: 4, Offset: 0}}, []Run{{Rank: 0, Length: 1}, {Rank: 1, Length: 1}})
	node2 := buildDynamicRecord([]Edge{{Node: 6, Offset: 0}}, []Run{{Rank: 0, Length: 1}})
	node4 := buildDynamicRecord(nil, nil)
	node6 := buildDynamicRecord([]Edge{{Node: ENDMARKER, Offset: 0}}, []Run{{Rank: 0, Length: 1}})
	return []*DynamicRecord{endmarker, node2, node4, node6}
}

func TestRecordArrayDirectConstruction(t *testing.T) {
	bwt := sampleBWT()
	arr := NewRecordArray(bwt)
	require.Equal(t, len(bwt), arr.Records())

	for i, want := range bwt {
		rec := arr.Record(i)
		require.Equal(t, want.Outdegree(), rec.Outdegree())
		require.Equal(t, want.Size(), rec.Size())
		require.Equal(t, want.Empty(), rec.Empty())
		require.Equal(t, want.Empty(), arr.IsEmptyRecord(i))
		for pos := uint64(0); pos < want.Size(); pos++ {
			require.Equal(t, want.At(pos), rec.At(pos))
		}
	}
}

func TestRecordArrayStartLimitContiguous(t *testing.T) {
	bwt := sampleBWT()
	arr := NewRecordArray(bwt)
	for i := 0; i < arr.Records()-1; i++ {
		require.Equal(t, arr.start(i+1), arr.limit(i))
	}
	require.Equal(t, arr.DataSize(), arr.limit(arr.Records()-1))
	require.Equal(t, 0, arr.start(0))
}

func TestRecordArraySerializeRoundTrip(t *testing.T) {
	arr := NewRecordArray(sampleBWT())
	var buf bytes.Buffer
	_, err := arr.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := ReadRecordArray(&buf)
	require.NoError(t, err)
	require.Equal(t, arr.Records(), loaded.Records())
	require.Equal(t, arr.DataSize(), loaded.DataSize())
	for i := 0; i < arr.Records(); i++ {
		require.Equal(t, arr.Record(i).Outgoing(), loaded.Record(i).Outgoing())
	}
}

func TestRecordArrayMergeEndmarkerConcatenates(t *testing.T) {
	// Two independent single-node graphs, each with its own endmarker
	// pointing at one real node. Merging must concatenate both
	// endmarker bodies with the second source's rank shifted past the
	// first source's outgoing count.
	// record 0 of each source is comp 0, the ENDMARKER's own record,
	// whose outgoing edge points at that source's single real node;
	// record 1 is that real node's own record, pointing back to
	// ENDMARKER.
	srcA := NewRecordArray([]*DynamicRecord{
		buildDynamicRecord([]Edge{{Node: 2, Offset: 0}}, []Run{{Rank: 0, Length: 3}}),
		buildDynamicRecord([]Edge{{Node: ENDMARKER, Offset: 0}}, []Run{{Rank: 0, Length: 3}}),
	})
	srcB := NewRecordArray([]*DynamicRecord{
		buildDynamicRecord([]Edge{{Node: 4, Offset: 0}}, []Run{{Rank: 0, Length: 2}}),
		buildDynamicRecord([]Edge{{Node: ENDMARKER, Offset: 0}}, []Run{{Rank: 0, Length: 2}}),
	})

	// Destination alphabet: comp 0 = ENDMARKER, comp 1 = node 2 (from A),
	// comp 2 = node 4 (from B).
	origins := []int{-1, 0, 1}
	recordOffsets := []int{0, 1}

	merged := NewMergedRecordArray([]*RecordArray{srcA, srcB}, origins, recordOffsets)
	require.Equal(t, 3, merged.Records())

	endmarker := merged.Record(0)
	require.Equal(t, 2, endmarker.Outdegree())
	require.Equal(t, Node(2), endmarker.Successor(0))
	require.Equal(t, Node(4), endmarker.Successor(1))
	require.Equal(t, uint64(5), endmarker.Size())

	require.Equal(t, uint64(3), merged.Record(1).Size())
	require.Equal(t, uint64(2), merged.Record(2).Size())
}

// TestNewMergedRecordArrayIsAssociative checks that merging three
// sources in one call produces the same result as pre-merging two of
// them and then merging the third in, as long as the destination
// alphabet layout is kept consistent between the two groupings.
func TestNewMergedRecordArrayIsAssociative(t *testing.T) {
	newSrc := func(node Node, length uint64) *RecordArray {
		return NewRecordArray([]*DynamicRecord{
			buildDynamicRecord([]Edge{{Node: node, Offset: 0}}, []Run{{Rank: 0, Length: length}}),
			buildDynamicRecord([]Edge{{Node: ENDMARKER, Offset: 0}}, []Run{{Rank: 0, Length: length}}),
		})
	}
	srcA := newSrc(Node(2), 3)
	srcB := newSrc(Node(4), 2)
	srcC := newSrc(Node(6), 4)

	// Destination alphabet shared by both groupings: comp 0 =
	// ENDMARKER, comp 1 = node 2 (A), comp 2 = node 4 (B), comp 3 =
	// node 6 (C).
	direct := NewMergedRecordArray(
		[]*RecordArray{srcA, srcB, srcC},
		[]int{-1, 0, 1, 2},
		[]int{0, 1, 2},
	)

	mergedBC := NewMergedRecordArray(
		[]*RecordArray{srcB, srcC},
		[]int{-1, 0, 1},
		[]int{0, 1},
	)
	nested := NewMergedRecordArray(
		[]*RecordArray{srcA, mergedBC},
		[]int{-1, 0, 1, 1},
		[]int{0, 1},
	)

	require.Equal(t, direct.Records(), nested.Records())
	for i := 0; i < direct.Records(); i++ {
		directRec, nestedRec := direct.Record(i), nested.Record(i)
		require.Equal(t, directRec.Outgoing(), nestedRec.Outgoing(), "record %d outgoing", i)
		require.Equal(t, directRec.Size(), nestedRec.Size(), "record %d size", i)
		for pos := uint64(0); pos < directRec.Size(); pos++ {
			require.Equal(t, directRec.At(pos), nestedRec.At(pos), "record %d position %d", i, pos)
		}
	}
}
