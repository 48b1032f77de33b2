package gbwt

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/jltsiren/gbwt/internal/invariants"
	"github.com/jltsiren/gbwt/internal/packedints"
	"github.com/jltsiren/gbwt/internal/rankselect"
)

// DASamples stores document-array samples (sequence ids recorded at
// chosen BWT offsets) for a RecordArray, decoupled from the BWT body
// itself so samples can be looked up without decoding runs.
type DASamples struct {
	sampledRecords *rankselect.BitVector // one bit per record; set iff the record has >=1 sample.
	bwtRanges      *rankselect.BitVector // universe = total size of sampled records; one bit per sampled record's start.
	sampledOffsets *rankselect.BitVector // same universe as bwtRanges; one bit per sampled position.
	array          *packedints.Array     // sequence id for each set bit of sampledOffsets, in offset order.
}

// NewDASamples builds samples directly from dynamic records, in two
// passes: the first sizes the bitvectors by counting sampled records,
// their total size, and their total sample count; the second fills
// them in.
func NewDASamples(bwt []*DynamicRecord) *DASamples {
	recBuilder := rankselect.NewBuilder(len(bwt))
	var bwtOffsets, sampleCount int
	for i, record := range bwt {
		if record.Samples() > 0 {
			recBuilder.Set(i)
			bwtOffsets += int(record.Size())
			sampleCount += record.Samples()
		}
	}
	sampledRecords := recBuilder.Build()

	rangeBuilder := rankselect.NewBuilder(bwtOffsets)
	offsetBuilder := rankselect.NewBuilder(bwtOffsets)
	values := make([]uint64, 0, sampleCount)
	offset := 0
	for _, record := range bwt {
		if record.Samples() == 0 {
			continue
		}
		rangeBuilder.Set(offset)
		for _, sample := range record.Ids() {
			offsetBuilder.Set(offset + int(sample.Offset))
			values = append(values, sample.Sequence)
		}
		offset += int(record.Size())
	}

	return &DASamples{
		sampledRecords: sampledRecords,
		bwtRanges:      rangeBuilder.Build(),
		sampledOffsets: offsetBuilder.Build(),
		array:          packedints.FromValues(values),
	}
}

// NewEmptyDASamples returns a DASamples with no sampled records.
func NewEmptyDASamples() *DASamples {
	return &DASamples{
		sampledRecords: rankselect.NewBuilder(0).Build(),
		bwtRanges:      rankselect.NewBuilder(0).Build(),
		sampledOffsets: rankselect.NewBuilder(0).Build(),
		array:          packedints.FromValues(nil),
	}
}

// IsSampled reports whether record has at least one stored sample.
func (d *DASamples) IsSampled(record int) bool {
	if record < 0 || record >= d.sampledRecords.Size() {
		return false
	}
	return d.sampledRecords.Get(record)
}

func (d *DASamples) recordRank(record int) int {
	return d.sampledRecords.Rank1(record)
}

// start returns the offset within bwtRanges/sampledOffsets at which
// record's samples begin. record must be sampled.
func (d *DASamples) start(record int) int {
	return d.bwtRanges.Select1(d.recordRank(record) + 1)
}

// limit returns the offset one past the end of the sampled record
// whose rank (among sampled records) is rank, or the universe size
// for the last one.
func (d *DASamples) limit(rank int) int {
	rankLimit := d.sampledRecords.Ones()
	if rank+1 < rankLimit {
		return d.bwtRanges.Select1(rank + 2)
	}
	return d.bwtRanges.Size()
}

// TryLocate returns the sequence id sampled at (record, offset), or
// InvalidSequence if record is unsampled or offset carries no sample.
func (d *DASamples) TryLocate(record int, offset uint64) uint64 {
	if !d.IsSampled(record) {
		return InvalidSequence
	}
	recordStart := d.start(record)
	pos := recordStart + int(offset)
	invariants.Assert(pos >= 0 && pos < d.sampledOffsets.Size(), "gbwt: DASamples.TryLocate: position %d out of range [0, %d)", pos, d.sampledOffsets.Size())
	if d.sampledOffsets.Get(pos) {
		return d.array.Get(d.sampledOffsets.Rank1(pos))
	}
	return InvalidSequence
}

// NextSample returns the first sample at or after offset within
// record, and whether one was found. A candidate sample belonging to
// the next sampled record (because this record has no more samples
// past offset) does not count as "within record".
func (d *DASamples) NextSample(record int, offset uint64) (Sample, bool) {
	if !d.IsSampled(record) {
		return InvalidSample, false
	}
	recordStart := d.start(record)
	recordLimit := d.limit(d.recordRank(record))
	rank := d.sampledOffsets.Rank1(recordStart + int(offset))
	if rank >= d.array.Len() {
		return InvalidSample, false
	}
	pos := d.sampledOffsets.Select1(rank + 1)
	if pos >= recordLimit {
		return InvalidSample, false
	}
	return Sample{Offset: uint64(pos - recordStart), Sequence: d.array.Get(rank)}, true
}

// sampleSourceCursor walks one merge source's samples in order,
// tracking both the flat sample index (for array/offset lookups) and
// the record-range index (for start/limit lookups), mirroring the
// original implementation's paired SampleIterator/SampleRangeIterator.
type sampleSourceCursor struct {
	source *DASamples

	sampleIdx    int
	sampleOffset int

	rangeRank  int
	rangeStart int
	rangeEnd   int
}

func newSampleSourceCursor(source *DASamples) *sampleSourceCursor {
	c := &sampleSourceCursor{source: source, rangeRank: 0, rangeStart: 0, rangeEnd: source.limit(0)}
	c.loadSample()
	return c
}

func (c *sampleSourceCursor) loadSample() {
	if c.sampleIdx < c.source.array.Len() {
		c.sampleOffset = c.source.sampledOffsets.Select1(c.sampleIdx + 1)
	}
}

func (c *sampleSourceCursor) sampleEnd() bool { return c.sampleIdx >= c.source.array.Len() }

func (c *sampleSourceCursor) sampleValue() uint64 { return c.source.array.Get(c.sampleIdx) }

func (c *sampleSourceCursor) advanceSample() {
	c.sampleIdx++
	c.loadSample()
}

func (c *sampleSourceCursor) advanceRange() {
	c.rangeRank++
	c.rangeStart = c.rangeEnd
	c.rangeEnd = c.source.limit(c.rangeRank)
}

func (c *sampleSourceCursor) rangeLength() int { return c.rangeEnd - c.rangeStart }

// NewMergedDASamples builds samples by merging sources under the same
// destination alphabet NewMergedRecordArray would use. sequenceCounts[i]
// is the number of sequences contributed by source i; the destination
// sequence id for a sample from source i is offset by the sum of
// sequenceCounts[0:i].
func NewMergedDASamples(sources []*DASamples, origins []int, recordOffsets []int, sequenceCounts []int) *DASamples {
	sequenceOffsets := make([]int, len(sources))
	totalSequences := 0
	for i := range sources {
		sequenceOffsets[i] = totalSequences
		totalSequences += sequenceCounts[i]
	}

	rangeCursors := make([]*sampleSourceCursor, len(sources))
	for i, source := range sources {
		rangeCursors[i] = newSampleSourceCursor(source)
	}

	recBuilder := rankselect.NewBuilder(len(origins))
	sampleEndmarker := false
	for origin, source := range sources {
		if source.IsSampled(int(ENDMARKER)) {
			sampleEndmarker = true
			rangeCursors[origin].advanceRange()
		}
	}

	bwtOffsets := 0
	if sampleEndmarker {
		bwtOffsets += totalSequences
		recBuilder.Set(int(ENDMARKER))
	}
	for i := 1; i < len(origins); i++ {
		origin := origins[i]
		if origin >= len(sources) {
			continue
		}
		if sources[origin].IsSampled(i - recordOffsets[origin]) {
			bwtOffsets += rangeCursors[origin].rangeLength()
			recBuilder.Set(i)
			rangeCursors[origin].advanceRange()
		}
	}
	sampledRecords := recBuilder.Build()

	for i, source := range sources {
		rangeCursors[i] = newSampleSourceCursor(source)
	}
	sampleCursors := make([]*sampleSourceCursor, len(sources))
	for i, source := range sources {
		sampleCursors[i] = newSampleSourceCursor(source)
	}

	rangeBuilder := rankselect.NewBuilder(bwtOffsets)
	offsetBuilder := rankselect.NewBuilder(bwtOffsets)
	var values []uint64

	recordStart := 0
	if sampleEndmarker {
		rangeBuilder.Set(recordStart)
		for origin, source := range sources {
			if !source.IsSampled(int(ENDMARKER)) {
				continue
			}
			for !sampleCursors[origin].sampleEnd() && sampleCursors[origin].sampleOffset < rangeCursors[origin].rangeEnd {
				offsetBuilder.Set(sampleCursors[origin].sampleOffset + sequenceOffsets[origin])
				values = append(values, sampleCursors[origin].sampleValue()+uint64(sequenceOffsets[origin]))
				sampleCursors[origin].advanceSample()
			}
			rangeCursors[origin].advanceRange()
		}
		recordStart += totalSequences
	}

	for i := 1; i < len(origins); i++ {
		if !sampledRecords.Get(i) {
			continue
		}
		origin := origins[i]
		rangeBuilder.Set(recordStart)
		for !sampleCursors[origin].sampleEnd() && sampleCursors[origin].sampleOffset < rangeCursors[origin].rangeEnd {
			offsetBuilder.Set(sampleCursors[origin].sampleOffset - rangeCursors[origin].rangeStart + recordStart)
			values = append(values, sampleCursors[origin].sampleValue()+uint64(sequenceOffsets[origin]))
			sampleCursors[origin].advanceSample()
		}
		recordStart += rangeCursors[origin].rangeLength()
		rangeCursors[origin].advanceRange()
	}

	return &DASamples{
		sampledRecords: sampledRecords,
		bwtRanges:      rangeBuilder.Build(),
		sampledOffsets: offsetBuilder.Build(),
		array:          packedints.FromValues(values),
	}
}

// WriteTo serializes the three bitvectors and the packed sample array.
func (d *DASamples) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, part := range []io.WriterTo{d.sampledRecords, d.bwtRanges, d.sampledOffsets, d.array} {
		written, err := part.WriteTo(w)
		n += written
		if err != nil {
			return n, errors.Wrap(err, "gbwt: writing DASamples")
		}
	}
	return n, nil
}

// ReadDASamples loads samples previously written by WriteTo.
func ReadDASamples(r io.Reader) (*DASamples, error) {
	sampledRecords, err := rankselect.ReadBitVector(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading DASamples.sampledRecords")
	}
	bwtRanges, err := rankselect.ReadBitVector(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading DASamples.bwtRanges")
	}
	sampledOffsets, err := rankselect.ReadBitVector(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading DASamples.sampledOffsets")
	}
	array, err := packedints.ReadArray(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading DASamples.array")
	}
	return &DASamples{sampledRecords: sampledRecords, bwtRanges: bwtRanges, sampledOffsets: sampledOffsets, array: array}, nil
}
