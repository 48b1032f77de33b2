package gbwt

// DecompressedRecord is a fully expanded per-node BWT column: each
// position's successor edge is materialized, with per-successor
// within-target offsets already resolved. It trades memory for O(1)
// random access and is used by queries that touch the same record
// repeatedly, where re-decoding a CompressedRecord's runs each time
// would dominate.
type DecompressedRecord struct {
	outgoing []Edge
	body     []Edge
}

// NewDecompressedRecordFromDynamic expands source's run-length body
// into one Edge per BWT position.
func NewDecompressedRecordFromDynamic(source *DynamicRecord) DecompressedRecord {
	outgoing := make([]Edge, len(source.Outgoing()))
	copy(outgoing, source.Outgoing())
	after := make([]Edge, len(outgoing))
	copy(after, outgoing)

	body := make([]Edge, 0, source.Size())
	for _, run := range source.Body() {
		for i := uint64(0); i < run.Length; i++ {
			body = append(body, after[run.Rank])
			after[run.Rank].Offset++
		}
	}
	return DecompressedRecord{outgoing: outgoing, body: body}
}

// NewDecompressedRecordFromCompressed expands source the same way as
// NewDecompressedRecordFromDynamic, decoding source's run body first.
func NewDecompressedRecordFromCompressed(source CompressedRecord) DecompressedRecord {
	outgoing := make([]Edge, source.Outdegree())
	copy(outgoing, source.Outgoing())
	after := make([]Edge, len(outgoing))
	copy(after, outgoing)

	body := make([]Edge, 0, source.Size())
	cur := source.cursor()
	for {
		run, ok := cur.next()
		if !ok {
			break
		}
		for i := uint64(0); i < run.Length; i++ {
			body = append(body, after[run.Rank])
			after[run.Rank].Offset++
		}
	}
	return DecompressedRecord{outgoing: outgoing, body: body}
}

// Size returns the number of BWT positions in the record.
func (d DecompressedRecord) Size() uint64 { return uint64(len(d.body)) }

// Empty reports whether the record has no outgoing edges.
func (d DecompressedRecord) Empty() bool { return len(d.outgoing) == 0 }

// Outdegree returns the number of outgoing edges.
func (d DecompressedRecord) Outdegree() int { return len(d.outgoing) }

// Successor returns the target node of outgoing edge rank.
func (d DecompressedRecord) Successor(rank int) Node { return d.outgoing[rank].Node }

// Outgoing returns the outgoing-edge list. Callers must not mutate
// the returned slice.
func (d DecompressedRecord) Outgoing() []Edge { return d.outgoing }

// Runs returns the number of maximal same-successor runs in body,
// counted directly from the expanded positions rather than carried
// over from the source record.
func (d DecompressedRecord) Runs() int {
	if d.Empty() {
		return 0
	}
	result := 0
	prev := InvalidNode
	for _, edge := range d.body {
		if edge.Node != prev {
			result++
			prev = edge.Node
		}
	}
	return result
}

// LF returns the edge at position i, or InvalidEdge if i is out of
// range.
func (d DecompressedRecord) LF(i uint64) Edge {
	if i >= d.Size() {
		return InvalidEdge
	}
	return d.body[i]
}

// RunLF is LF, additionally returning the last position of the
// maximal same-successor run containing i.
func (d DecompressedRecord) RunLF(i uint64) (Edge, uint64) {
	if i >= d.Size() {
		return InvalidEdge, 0
	}
	runEnd := i
	for runEnd+1 < d.Size() && d.body[runEnd+1].Node == d.body[i].Node {
		runEnd++
	}
	return d.body[i], runEnd
}

// At returns the successor node at BWT position i, or ENDMARKER if i
// is out of range.
func (d DecompressedRecord) At(i uint64) Node {
	if i >= d.Size() {
		return ENDMARKER
	}
	return d.body[i].Node
}

// HasEdge reports whether "to" is an outgoing successor.
func (d DecompressedRecord) HasEdge(to Node) bool {
	for rank := 0; rank < d.Outdegree(); rank++ {
		if d.Successor(rank) == to {
			return true
		}
	}
	return false
}
