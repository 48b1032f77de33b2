package gbwt

import (
	"encoding/binary"
	"io"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/jltsiren/gbwt/internal/base"
	"github.com/jltsiren/gbwt/internal/packedints"
)

// Dictionary is a binary-searchable table of strings: the concatenated
// bytes in data, partitioned by offsets, with sortedIDs holding a
// permutation of [0, size) sorted by lexicographic comparison of the
// strings. find looks up a string's original id via that permutation
// without ever materializing a separate sorted copy of the strings
// themselves.
type Dictionary struct {
	data      []byte
	offsets   *packedints.Array // size()+1 entries; offsets[i] is the start of string i, offsets[size()] is len(data).
	sortedIDs *packedints.Array // size() entries; a permutation of [0, size()).
}

// NewDictionary builds a dictionary from source, in insertion order.
// The returned dictionary's ids therefore equal the indices into
// source. A warning is logged (not an error) if source contains
// duplicate strings; both occurrences keep their id, but Find resolves
// to whichever sorts first.
func NewDictionary(source []string, logger base.Logger) *Dictionary {
	logger = base.OrDiscard(logger)
	if len(source) == 0 {
		return NewEmptyDictionary()
	}

	totalLength := 0
	for _, s := range source {
		totalLength += len(s)
	}

	offsets := packedints.New(len(source)+1, packedints.BitsFor(uint64(totalLength)))
	sortedIDs := packedints.New(len(source), packedints.BitsFor(uint64(len(source)-1)))
	data := make([]byte, 0, totalLength)

	offset := 0
	for i, s := range source {
		offsets.Set(i, uint64(offset))
		sortedIDs.Set(i, uint64(i))
		data = append(data, s...)
		offset += len(s)
	}
	offsets.Set(len(source), uint64(totalLength))

	d := &Dictionary{data: data, offsets: offsets, sortedIDs: sortedIDs}
	d.sortAndWarn(logger, "NewDictionary")
	return d
}

// NewEmptyDictionary returns a dictionary with no entries.
func NewEmptyDictionary() *Dictionary {
	return &Dictionary{
		data:      nil,
		offsets:   packedints.New(1, 0),
		sortedIDs: packedints.New(0, 0),
	}
}

// Size returns the number of strings in the dictionary.
func (d *Dictionary) Size() int { return d.sortedIDs.Len() }

// Empty reports whether the dictionary has no entries.
func (d *Dictionary) Empty() bool { return d.Size() == 0 }

// stringRange returns the byte range of string i in data.
func (d *Dictionary) stringRange(i int) (int, int) {
	return int(d.offsets.Get(i)), int(d.offsets.Get(i + 1))
}

// sortedRange returns the byte range of the string occupying rank
// position among the sorted ids.
func (d *Dictionary) sortedRange(rank int) (int, int) {
	return d.stringRange(int(d.sortedIDs.Get(rank)))
}

// bytesAt returns the string occupying sorted rank position.
func (d *Dictionary) bytesAt(rank int) []byte {
	start, limit := d.sortedRange(rank)
	return d.data[start:limit]
}

// smaller reports whether the string at sorted rank a compares less
// than the string at sorted rank b, by strict byte-lexicographic
// order (a prefix of the other is smaller).
func (d *Dictionary) smaller(a, b int) bool {
	return compareBytes(d.bytesAt(a), d.bytesAt(b)) < 0
}

// compareBytes implements strict lexicographic order on raw bytes: a
// string that is a prefix of the other compares smaller.
func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// sortAndWarn sorts sortedIDs by lexicographic string order and logs a
// warning (once) if any two adjacent sorted entries compare equal.
func (d *Dictionary) sortAndWarn(logger base.Logger, caller string) {
	ids := d.sortedIDs.Slice()
	slices.SortFunc(ids, func(a, b uint64) int {
		return compareBytes(d.bytesFor(a), d.bytesFor(b))
	})
	for i, id := range ids {
		d.sortedIDs.Set(i, id)
	}

	for i := 0; i+1 < d.Size(); i++ {
		if !d.smaller(i, i+1) {
			logger.Infof("gbwt.Dictionary.%s: %v", caller, ErrDuplicateDictionaryEntry)
			break
		}
	}
}

// bytesFor returns the string with original id id.
func (d *Dictionary) bytesFor(id uint64) []byte {
	start, limit := d.stringRange(int(id))
	return d.data[start:limit]
}

// Find returns the original id of s, or Size() if s is not present.
// If s occurs more than once (a logged-but-tolerated duplicate), the
// lower-sorted occurrence's id is returned.
func (d *Dictionary) Find(s string) int {
	b := []byte(s)
	start, limit := 0, d.Size()
	for start < limit {
		mid := start + (limit-start)/2
		if compareBytes(d.bytesAt(mid), b) < 0 {
			start = mid + 1
		} else {
			limit = mid
		}
	}
	if start < d.Size() && compareBytes(d.bytesAt(start), b) == 0 {
		return int(d.sortedIDs.Get(start))
	}
	return d.Size()
}

// At returns the string with original id id.
func (d *Dictionary) At(id int) string {
	start, limit := d.stringRange(id)
	return string(d.data[start:limit])
}

// Append concatenates source's strings onto d, in source's insertion
// order, assigning them new ids starting at d.Size(). sortedIDs is
// rebuilt from scratch over the combined size and re-sorted, and the
// duplicate check runs again over the merged dictionary.
//
// This is the corrected offset-extension formula: the reference
// implementation writes every new offset entry to the same fixed
// index (new_offsets[this->size() + 1]) instead of advancing it by i,
// leaving every extended slot but the last at zero. The formula below
// writes new_offsets[old_size + i] = old_data_size + source.offsets[i]
// for i in [0, source.Size()], which is what the concatenation
// actually requires.
func (d *Dictionary) Append(source *Dictionary, logger base.Logger) {
	logger = base.OrDiscard(logger)
	if source.Empty() {
		return
	}

	oldDataSize := len(d.data)
	oldSize := d.Size()
	newSize := oldSize + source.Size()

	newData := make([]byte, 0, len(d.data)+len(source.data))
	newData = append(newData, d.data...)
	newData = append(newData, source.data...)
	d.data = newData

	newOffsets := packedints.New(newSize+1, packedints.BitsFor(uint64(len(d.data))))
	for i := 0; i < oldSize; i++ {
		newOffsets.Set(i, d.offsets.Get(i))
	}
	for i := 0; i <= source.Size(); i++ {
		newOffsets.Set(oldSize+i, uint64(oldDataSize)+source.offsets.Get(i))
	}
	d.offsets = newOffsets

	d.sortedIDs = packedints.New(newSize, packedints.BitsFor(uint64(newSize-1)))
	for i := 0; i < newSize; i++ {
		d.sortedIDs.Set(i, uint64(i))
	}
	d.sortAndWarn(logger, "Append")
}

// WriteTo serializes the dictionary's offsets, sortedIDs, and raw data
// bytes.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	var n int64
	written, err := d.offsets.WriteTo(w)
	n += written
	if err != nil {
		return n, errors.Wrap(err, "gbwt: writing Dictionary.offsets")
	}
	written, err = d.sortedIDs.WriteTo(w)
	n += written
	if err != nil {
		return n, errors.Wrap(err, "gbwt: writing Dictionary.sortedIDs")
	}

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(d.data)))
	if _, err := w.Write(header[:]); err != nil {
		return n, errors.Wrap(err, "gbwt: writing Dictionary.data length")
	}
	n += int64(len(header))
	if _, err := w.Write(d.data); err != nil {
		return n, errors.Wrap(err, "gbwt: writing Dictionary.data")
	}
	return n + int64(len(d.data)), nil
}

// ReadDictionary loads a dictionary previously written by WriteTo.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	offsets, err := packedints.ReadArray(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading Dictionary.offsets")
	}
	sortedIDs, err := packedints.ReadArray(r)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: reading Dictionary.sortedIDs")
	}

	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "gbwt: reading Dictionary.data length")
	}
	dataLen := binary.LittleEndian.Uint64(header[:])
	data := make([]byte, dataLen)
	if dataLen > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errors.Wrap(err, "gbwt: reading Dictionary.data")
		}
	}
	return &Dictionary{data: data, offsets: offsets, sortedIDs: sortedIDs}, nil
}
