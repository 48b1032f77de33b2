package gbwt

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/jltsiren/gbwt/internal/invariants"
	"github.com/jltsiren/gbwt/internal/rankselect"
)

// RecordArray concatenates many records' encoded BWT columns into a
// single byte blob, indexed by a sparse bitvector of record-start
// offsets. A record's byte range is looked up via select1 rather than
// stored per record.
type RecordArray struct {
	records int
	index   *rankselect.BitVector
	data    []byte
}

// NewRecordArray builds a RecordArray directly from dynamic records,
// writing each record's encoded BWT column in order and recording its
// starting offset.
func NewRecordArray(bwt []*DynamicRecord) *RecordArray {
	offsets := make([]int, len(bwt))
	var data []byte
	for i, record := range bwt {
		offsets[i] = len(data)
		data = record.WriteBWT(data)
	}
	result := &RecordArray{records: len(bwt), data: data}
	result.buildIndex(offsets)
	return result
}

// NewEmptyRecordArray returns a RecordArray with no records, the
// starting point for a merge build.
func NewEmptyRecordArray() *RecordArray {
	result := &RecordArray{}
	result.buildIndex(nil)
	return result
}

func (r *RecordArray) buildIndex(offsets []int) {
	builder := rankselect.NewBuilder(len(r.data))
	for _, offset := range offsets {
		builder.Set(offset)
	}
	r.index = builder.Build()
}

// Records returns the number of records in the array.
func (r *RecordArray) Records() int { return r.records }

// Empty reports whether the array holds no records at all (as
// opposed to holding records that are themselves empty).
func (r *RecordArray) Empty() bool { return r.records == 0 }

// DataSize returns the length of the underlying byte blob.
func (r *RecordArray) DataSize() int { return len(r.data) }

// start returns the byte offset at which record i begins.
func (r *RecordArray) start(i int) int {
	return r.index.Select1(i + 1)
}

// limit returns the byte offset one past the end of record i, or
// DataSize() for the last record.
func (r *RecordArray) limit(i int) int {
	return r.index.Select1(i + 2)
}

// Record returns a CompressedRecord view over record i's byte range.
// The view borrows this array's data and must not outlive it.
func (r *RecordArray) Record(i int) CompressedRecord {
	invariants.Assert(i >= 0 && i < r.records, "gbwt: RecordArray.Record: index %d out of range [0, %d)", i, r.records)
	start, limit := r.start(i), r.limit(i)
	invariants.Assert(start <= limit, "gbwt: RecordArray.Record: start %d > limit %d", start, limit)
	return ReadCompressedRecord(r.data, start, limit)
}

// IsEmptyRecord reports whether record i has outdegree 0, without
// decoding the rest of it.
func (r *RecordArray) IsEmptyRecord(i int) bool {
	invariants.Assert(i >= 0 && i < r.records, "gbwt: RecordArray.IsEmptyRecord: index %d out of range [0, %d)", i, r.records)
	return IsEmptyCompressedRecord(r.data, r.start(i))
}

// mergeEndmarkers builds the merged ENDMARKER (node 0) record by
// concatenating every non-empty source's endmarker body, shifting
// each source's ranks by the merged outgoing list's size so far, then
// recoding the result into outgoing-sorted order. limits[i] is set to
// the end of source i's endmarker record so the caller can resume
// copying from there.
func mergeEndmarkers(sources []*RecordArray, limits []int) []byte {
	merged := &DynamicRecord{}
	for i, source := range sources {
		if source.Empty() {
			continue
		}
		start := source.start(int(ENDMARKER))
		limit := source.limit(int(ENDMARKER))
		record := ReadCompressedRecord(source.data, start, limit)
		shift := uint32(merged.Outdegree())
		cur := record.cursor()
		for {
			run, ok := cur.next()
			if !ok {
				break
			}
			merged.AddRun(Run{Rank: run.Rank + shift, Length: run.Length})
		}
		for _, edge := range record.Outgoing() {
			merged.AddOutgoing(edge)
		}
		limits[i] = limit
	}
	merged.Recode()
	return merged.WriteBWT(nil)
}

// NewMergedRecordArray builds a RecordArray by merging sources under
// a shared destination alphabet. origins[comp] names which source (an
// index into sources) owns destination node comp; a value >=
// len(sources) marks comp as an empty destination record.
// recordOffsets[i] is the amount subtracted from a destination node id
// to get source i's local record index for that node. origins has one
// entry per destination record, including node 0; the ENDMARKER's
// record is built separately by mergeEndmarkers and origins[0] is
// ignored.
func NewMergedRecordArray(sources []*RecordArray, origins []int, recordOffsets []int) *RecordArray {
	result := &RecordArray{records: len(origins)}

	limits := make([]int, len(sources))
	endmarker := mergeEndmarkers(sources, limits)

	dataSize := len(endmarker)
	for _, source := range sources {
		dataSize += source.DataSize()
	}

	data := make([]byte, 0, dataSize)
	data = append(data, endmarker...)

	offsets := make([]int, len(origins))
	for comp := 1; comp < len(origins); comp++ {
		offsets[comp] = len(data)
		origin := origins[comp]
		if origin >= len(sources) {
			data = append(data, 0)
			continue
		}
		start := limits[origin]
		limit := sources[origin].limit(comp - recordOffsets[origin])
		limits[origin] = limit
		data = append(data, sources[origin].data[start:limit]...)
	}

	result.data = data
	result.buildIndex(offsets)
	return result
}

// WriteTo serializes the array to w: the record count, the offset
// bitvector (its raw words only; the select1 support is rebuilt when
// it is read back), then the raw data bytes.
func (r *RecordArray) WriteTo(w io.Writer) (int64, error) {
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(r.records))
	if _, err := w.Write(header[:]); err != nil {
		return 0, errors.Wrap(err, "gbwt: writing RecordArray header")
	}
	n := int64(len(header))

	bn, err := r.index.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(err, "gbwt: writing RecordArray index")
	}
	n += bn

	if _, err := w.Write(r.data); err != nil {
		return n, errors.Wrap(err, "gbwt: writing RecordArray data")
	}
	n += int64(len(r.data))
	return n, nil
}

// ReadRecordArray loads a RecordArray previously written by WriteTo.
func ReadRecordArray(r io.Reader) (*RecordArray, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, truncatedf("RecordArray header: %v", err)
	}
	result := &RecordArray{records: int(binary.LittleEndian.Uint64(header[:]))}

	index, err := rankselect.ReadBitVector(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading RecordArray index")
	}
	result.index = index

	data := make([]byte, index.Size())
	if len(data) > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, truncatedf("RecordArray data: %v", err)
		}
	}
	result.data = data
	return result, nil
}
