package gbwt

import "slices"

// MaxOutdegreeForArray is the outdegree threshold at or below which
// RunLF implementations use a small stack-resident cumulative-offset
// array instead of a heap-allocated one. It mirrors
// MAX_OUTDEGREE_FOR_ARRAY in the original implementation.
const MaxOutdegreeForArray = 8

// DynamicRecord is the mutable per-node BWT column used during
// construction and merging. It is not safe for concurrent mutation.
type DynamicRecord struct {
	bodySize uint64
	incoming []Edge
	outgoing []Edge
	body     []Run
	ids      []Sample
}

// Size returns the number of BWT positions in the record (the sum of
// its run lengths).
func (d *DynamicRecord) Size() uint64 { return d.bodySize }

// Runs returns the number of physical runs in the body.
func (d *DynamicRecord) Runs() int { return len(d.body) }

// Empty reports whether the record has no outgoing edges.
func (d *DynamicRecord) Empty() bool { return len(d.outgoing) == 0 }

// Outdegree returns the number of outgoing edges.
func (d *DynamicRecord) Outdegree() int { return len(d.outgoing) }

// Indegree returns the number of incoming edges.
func (d *DynamicRecord) Indegree() int { return len(d.incoming) }

// Samples returns the number of stored samples.
func (d *DynamicRecord) Samples() int { return len(d.ids) }

// Outgoing returns the outgoing-edge list. Callers must not mutate the
// returned slice.
func (d *DynamicRecord) Outgoing() []Edge { return d.outgoing }

// Incoming returns the incoming-edge list. Callers must not mutate the
// returned slice.
func (d *DynamicRecord) Incoming() []Edge { return d.incoming }

// Body returns the run sequence. Callers must not mutate the returned
// slice.
func (d *DynamicRecord) Body() []Run { return d.body }

// Ids returns the sample list. Callers must not mutate the returned
// slice.
func (d *DynamicRecord) Ids() []Sample { return d.ids }

// Successor returns the target node of outgoing edge rank.
func (d *DynamicRecord) Successor(rank int) Node { return d.outgoing[rank].Node }

// Offset returns the cumulative LF base offset stored for outgoing
// edge rank.
func (d *DynamicRecord) Offset(rank int) uint64 { return d.outgoing[rank].Offset }

// Predecessor returns the source node of incoming edge rank.
func (d *DynamicRecord) Predecessor(rank int) Node { return d.incoming[rank].Node }

// Count returns the path count stored for incoming edge rank.
func (d *DynamicRecord) Count(rank int) uint64 { return d.incoming[rank].Offset }

// AddRun appends a run to the body, updating bodySize. It does not
// sort or validate the run's rank against outgoing; callers building a
// record from scratch append runs and outgoing edges in whatever order
// is convenient and call Recode() before querying.
func (d *DynamicRecord) AddRun(run Run) {
	d.body = append(d.body, run)
	d.bodySize += run.Length
}

// AddOutgoing appends an edge to the outgoing list without sorting it.
func (d *DynamicRecord) AddOutgoing(e Edge) {
	d.outgoing = append(d.outgoing, e)
}

// AddIncoming appends inedge to the incoming list and re-sorts it by
// predecessor node, matching the original implementation's
// addIncoming.
func (d *DynamicRecord) AddIncoming(inedge Edge) {
	d.incoming = append(d.incoming, inedge)
	slices.SortFunc(d.incoming, func(a, b Edge) int { return cmpNode(a.Node, b.Node) })
}

// AddSample appends a sample. Callers are responsible for keeping ids
// sorted by offset with unique keys; Recode does not touch ids.
func (d *DynamicRecord) AddSample(s Sample) {
	d.ids = append(d.ids, s)
}

func cmpNode(a, b Node) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isOutgoingSorted(outgoing []Edge) bool {
	for i := 1; i < len(outgoing); i++ {
		if outgoing[i].Node < outgoing[i-1].Node {
			return false
		}
	}
	return true
}

// Recode restores the outgoing-sorted invariant: it replaces each body
// run's rank with the corresponding successor node, sorts outgoing by
// node, and rewrites each run's rank by binary-searching the new
// outgoing list. It is a no-op if outgoing is already sorted. Recode
// does not merge adjacent runs that become same-symbol after sorting;
// CompressedRecord.Runs() therefore counts physical, not logical, runs.
func (d *DynamicRecord) Recode() {
	if d.Empty() || isOutgoingSorted(d.outgoing) {
		return
	}

	// Stage the successor node each run actually refers to in a
	// separate slice rather than overwriting Run.Rank in place: Rank
	// is sized to hold an outgoing-list index, not an arbitrary Node
	// value, so the two can't safely share storage mid-recode.
	nodes := make([]Node, len(d.body))
	for i, run := range d.body {
		nodes[i] = d.Successor(int(run.Rank))
	}
	slices.SortFunc(d.outgoing, func(a, b Edge) int { return cmpNode(a.Node, b.Node) })
	for i, node := range nodes {
		d.body[i].Rank = uint32(d.edgeToRank(node))
	}
}

// RemoveUnusedEdges scans the body to find which outgoing ranks are
// actually referenced, compacts outgoing in place to keep only those
// (preserving relative order), and recodes the body's ranks against
// the compacted list.
func (d *DynamicRecord) RemoveUnusedEdges() {
	used := make([]bool, d.Outdegree())
	nodes := make([]Node, len(d.body))
	for i, run := range d.body {
		used[run.Rank] = true
		nodes[i] = d.Successor(int(run.Rank))
	}

	tail := 0
	for i := 0; i < len(d.outgoing); i++ {
		d.outgoing[tail] = d.outgoing[i]
		if used[i] {
			tail++
		}
	}
	d.outgoing = d.outgoing[:tail]

	for i, node := range nodes {
		d.body[i].Rank = uint32(d.edgeToRank(node))
	}
}

// edgeTo returns the rank of the outgoing edge to "to" via binary
// search, or Outdegree() if to is not a successor. outgoing must be
// sorted.
func (d *DynamicRecord) edgeTo(to Node) int {
	return edgeToRank(to, d.outgoing)
}

// edgeToRank binary-searches a sorted outgoing-edge slice for the rank
// of the edge to "to", returning len(outgoing) if absent. Both
// DynamicRecord.edgeTo and CompressedRecord.hasEdge delegate to it.
func edgeToRank(to Node, outgoing []Edge) int {
	lo, hi := 0, len(outgoing)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case outgoing[mid].Node == to:
			return mid
		case outgoing[mid].Node > to:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return len(outgoing)
}

func (d *DynamicRecord) edgeToRank(to Node) int {
	return edgeToRank(to, d.outgoing)
}

// EdgeTo returns the rank of the outgoing edge to "to", or Outdegree()
// if to is not a successor. outgoing must already be sorted (call
// Recode first if it might not be).
func (d *DynamicRecord) EdgeTo(to Node) int {
	return d.edgeTo(to)
}

// EdgeToLinear returns the rank of the outgoing edge to "to" using a
// linear scan, for use when outgoing is not yet known to be sorted.
func (d *DynamicRecord) EdgeToLinear(to Node) int {
	for rank := 0; rank < d.Outdegree(); rank++ {
		if d.Successor(rank) == to {
			return rank
		}
	}
	return d.Outdegree()
}

// HasEdge reports whether "to" is an outgoing successor.
func (d *DynamicRecord) HasEdge(to Node) bool {
	for rank := 0; rank < d.Outdegree(); rank++ {
		if d.Successor(rank) == to {
			return true
		}
	}
	return false
}

// At returns the successor node at BWT position i, or ENDMARKER if i
// is out of range.
func (d *DynamicRecord) At(i uint64) Node {
	if i >= d.Size() {
		return ENDMARKER
	}
	var offset uint64
	for _, run := range d.body {
		offset += run.Length
		if offset > i {
			return d.Successor(int(run.Rank))
		}
	}
	return ENDMARKER
}

// CountBefore returns the sum of incoming counts for predecessors
// strictly below "from".
func (d *DynamicRecord) CountBefore(from Node) uint64 {
	var result uint64
	for rank := 0; rank < d.Indegree() && d.Predecessor(rank) < from; rank++ {
		result += d.Count(rank)
	}
	return result
}

// CountUntil returns the sum of incoming counts for predecessors at or
// below "from".
func (d *DynamicRecord) CountUntil(from Node) uint64 {
	var result uint64
	for rank := 0; rank < d.Indegree() && d.Predecessor(rank) <= from; rank++ {
		result += d.Count(rank)
	}
	return result
}

// Increment adds one to the incoming count from "from", inserting a
// new incoming edge (and re-sorting) if none exists yet.
func (d *DynamicRecord) Increment(from Node) {
	for rank := 0; rank < d.Indegree(); rank++ {
		if d.Predecessor(rank) == from {
			d.incoming[rank].Offset++
			return
		}
	}
	d.AddIncoming(Edge{Node: from, Offset: 1})
}

// NextSample returns the first sample with offset >= i, and whether
// one was found.
func (d *DynamicRecord) NextSample(i uint64) (Sample, bool) {
	for _, s := range d.ids {
		if s.Offset >= i {
			return s, true
		}
	}
	return Sample{}, false
}

// bwtSize returns the exact number of bytes WriteBWT will append for
// this record, so WriteBWT can grow its destination buffer once
// instead of repeatedly while writing.
func (d *DynamicRecord) bwtSize() int {
	n := sizeVByte(uint64(d.Outdegree()))
	var prev Node
	for _, e := range d.outgoing {
		n += sizeVByte(uint64(e.Node - prev))
		prev = e.Node
		n += sizeVByte(e.Offset)
	}
	if d.Outdegree() > 0 {
		sigma := d.Outdegree()
		for _, run := range d.body {
			n += sizeRun(sigma, run)
		}
	}
	return n
}

// WriteBWT encodes the record's BWT column (outgoing table plus run
// body) and appends it to buf, returning the extended slice. This is
// the byte layout RecordArray concatenates across all of a node's
// records.
func (d *DynamicRecord) WriteBWT(buf []byte) []byte {
	if want := len(buf) + d.bwtSize(); cap(buf) < want {
		grown := make([]byte, len(buf), want)
		copy(grown, buf)
		buf = grown
	}

	buf = AppendVByte(buf, uint64(d.Outdegree()))
	var prev Node
	for _, e := range d.outgoing {
		buf = AppendVByte(buf, uint64(e.Node-prev))
		prev = e.Node
		buf = AppendVByte(buf, e.Offset)
	}
	if d.Outdegree() > 0 {
		sigma := d.Outdegree()
		for _, run := range d.body {
			buf = AppendRun(buf, sigma, run)
		}
	}
	return buf
}

// LF returns the edge reached by extending position i one node
// forward: the successor of the run containing i, paired with that
// successor's within-target offset. It returns InvalidEdge if
// i >= Size().
func (d *DynamicRecord) LF(i uint64) Edge {
	edge, _ := d.RunLF(i)
	return edge
}

// RunLF is LF, additionally returning the last position of the run
// containing i.
func (d *DynamicRecord) RunLF(i uint64) (Edge, uint64) {
	if i >= d.Size() {
		return InvalidEdge, 0
	}

	var result []Edge
	if d.Outdegree() <= MaxOutdegreeForArray {
		var stack [MaxOutdegreeForArray]Edge
		result = stack[:d.Outdegree()]
	} else {
		result = make([]Edge, d.Outdegree())
	}
	copy(result, d.outgoing)

	var lastRank uint32
	var offset uint64
	for _, run := range d.body {
		lastRank = run.Rank
		result[run.Rank].Offset += run.Length
		offset += run.Length
		if offset > i {
			break
		}
	}
	result[lastRank].Offset -= offset - i
	return result[lastRank], offset - 1
}

// lfScanner walks the body accumulating, for a single fixed target
// outrank, the LF result at query position i: the target's base
// offset plus the count of outrank occurrences strictly before i (with
// the run straddling i trimmed back). pos/offset/result/run carry
// state across repeated calls so LF(range, to) can reuse the scan for
// both endpoints without rewinding.
type lfScanner struct {
	body    []Run
	pos     int
	outrank uint32
	run     Run
	offset  uint64
	result  uint64
}

func newLFScanner(body []Run, outrank int, base uint64) *lfScanner {
	return &lfScanner{body: body, outrank: uint32(outrank), result: base}
}

func (s *lfScanner) advanceTo(i uint64) uint64 {
	for s.pos < len(s.body) && s.offset < i {
		s.run = s.body[s.pos]
		s.pos++
		s.offset += s.run.Length
		if s.run.Rank == s.outrank {
			s.result += s.run.Length
		}
	}
	if s.run.Rank == s.outrank {
		return s.result - (s.offset - i)
	}
	return s.result
}

// LFTo returns the within-target offset reached by extending position
// i through successor "to", or InvalidOffset if "to" is not a
// successor.
func (d *DynamicRecord) LFTo(i uint64, to Node) uint64 {
	outrank := d.edgeTo(to)
	if outrank >= d.Outdegree() {
		return InvalidOffset
	}
	scanner := newLFScanner(d.body, outrank, d.Offset(outrank))
	return scanner.advanceTo(i)
}

// LFRange projects a closed range through successor "to", returning
// [LF(range.Start, to), LF(range.End+1, to)-1], or EmptyRange if the
// input is empty or "to" is not a successor.
func (d *DynamicRecord) LFRange(r Range, to Node) Range {
	if r.IsEmpty() {
		return EmptyRange()
	}
	outrank := d.edgeTo(to)
	if outrank >= d.Outdegree() {
		return EmptyRange()
	}
	scanner := newLFScanner(d.body, outrank, d.Offset(outrank))
	start := scanner.advanceTo(r.Start)
	end := scanner.advanceTo(r.End+1) - 1
	return Range{Start: start, End: end}
}

// BdLF is the bidirectional LF used by bidirectional search: it
// returns the forward-mapped range (as LFRange would) and sets
// reverseOffset to the count of positions in the input range whose
// reversed successor is strictly less than reverse(to).
func (d *DynamicRecord) BdLF(r Range, to Node) (Range, uint64) {
	if r.IsEmpty() {
		return EmptyRange(), 0
	}
	outrank := d.edgeTo(to)
	if outrank >= d.Outdegree() {
		return EmptyRange(), 0
	}

	scanner := newLFScanner(d.body, outrank, d.Offset(outrank))
	sp := scanner.advanceTo(r.Start)

	reverseRank := d.edgeTo(Reverse(to))
	subtractEqual := false
	if reverseRank >= d.Outdegree() {
		reverseRank = outrank
	} else if !to.IsReverse() {
		reverseRank++
		subtractEqual = true
	}

	// The run straddling r.Start may extend past it; account for the
	// portion of that run already consumed.
	var equal, reverseOffset uint64
	if int(scanner.run.Rank) == outrank {
		equal = scanner.offset - r.Start
	}
	if int(scanner.run.Rank) < reverseRank {
		reverseOffset = scanner.offset - r.Start
	}

	end := r.End + 1
	for scanner.pos < len(scanner.body) && scanner.offset < end {
		scanner.run = scanner.body[scanner.pos]
		scanner.pos++
		scanner.offset += scanner.run.Length
		if int(scanner.run.Rank) == outrank {
			equal += scanner.run.Length
		}
		if int(scanner.run.Rank) < reverseRank {
			reverseOffset += scanner.run.Length
		}
	}

	if int(scanner.run.Rank) == outrank {
		equal -= scanner.offset - end
	}
	if int(scanner.run.Rank) < reverseRank {
		reverseOffset -= scanner.offset - end
	}
	if subtractEqual {
		reverseOffset -= equal
	}

	return Range{Start: sp, End: sp + equal - 1}, reverseOffset
}
