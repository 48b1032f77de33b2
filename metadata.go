package gbwt

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/jltsiren/gbwt/internal/base"
)

const (
	metadataTag     uint32 = 0x6B375E8B
	metadataVersion uint32 = 5

	// metadataInitialVersion is the oldest version Check accepts; it
	// predates contig names, so it only allows the path- and
	// sample-name flag bits.
	metadataInitialVersion uint32 = 1
)

// Metadata flag bits, governing which optional sections are present in
// a serialized Metadata.
const (
	FlagPathNames    uint32 = 1 << 0
	FlagSampleNames  uint32 = 1 << 1
	FlagContigNames  uint32 = 1 << 2
	metadataFullMask        = FlagPathNames | FlagSampleNames | FlagContigNames
	metadataInitialMask     = FlagPathNames | FlagSampleNames
)

// PathName records the sample, contig, haplotype phase, and running
// count of a single indexed path, in the order paths were added.
type PathName struct {
	Sample uint64
	Contig uint64
	Phase  uint64
	Count  uint64
}

// Metadata carries the descriptive information layered on top of a
// GBWT index: how many samples, haplotypes, and contigs it covers, and
// three optional sections (path names, sample-name dictionary,
// contig-name dictionary) present iff their flag bit is set.
type Metadata struct {
	tag     uint32
	version uint32

	sampleCount    uint64
	haplotypeCount uint64
	contigCount    uint64
	flags          uint32

	pathNames   []PathName
	sampleNames *Dictionary
	contigNames *Dictionary
}

// NewMetadata returns an empty Metadata with no samples, haplotypes,
// contigs, or optional sections.
func NewMetadata() *Metadata {
	return &Metadata{tag: metadataTag, version: metadataVersion}
}

// Check reports whether the header is well-formed: a recognized tag,
// a recognized version, and a flag bitmask that version allows. The
// current version allows every flag; the initial version predates
// contig names and rejects FlagContigNames.
func (m *Metadata) Check() bool {
	if m.tag != metadataTag {
		return false
	}
	switch m.version {
	case metadataVersion:
		return m.flags&metadataFullMask == m.flags
	case metadataInitialVersion:
		return m.flags&metadataInitialMask == m.flags
	default:
		return false
	}
}

// Samples returns the number of samples.
func (m *Metadata) Samples() uint64 { return m.sampleCount }

// Haplotypes returns the number of haplotypes.
func (m *Metadata) Haplotypes() uint64 { return m.haplotypeCount }

// Contigs returns the number of contigs.
func (m *Metadata) Contigs() uint64 { return m.contigCount }

// Paths returns the number of indexed paths.
func (m *Metadata) Paths() int { return len(m.pathNames) }

// HasPathNames reports whether the path-names section is present.
func (m *Metadata) HasPathNames() bool { return m.flags&FlagPathNames != 0 }

// HasSampleNames reports whether the sample-names section is present.
func (m *Metadata) HasSampleNames() bool { return m.flags&FlagSampleNames != 0 }

// HasContigNames reports whether the contig-names section is present.
func (m *Metadata) HasContigNames() bool { return m.flags&FlagContigNames != 0 }

// Path returns the i-th path name.
func (m *Metadata) Path(i int) PathName { return m.pathNames[i] }

// SampleName returns the name of sample id.
func (m *Metadata) SampleName(id int) string { return m.sampleNames.At(id) }

// ContigName returns the name of contig id.
func (m *Metadata) ContigName(id int) string { return m.contigNames.At(id) }

// SetSamples sets the sample count directly, without touching sample
// names. If sample names are already present, this logs a warning:
// the count and the names are now out of sync.
func (m *Metadata) SetSamples(n uint64, logger base.Logger) {
	if m.HasSampleNames() {
		base.OrDiscard(logger).Infof("gbwt.Metadata.SetSamples: changing sample count without changing sample names")
	}
	m.sampleCount = n
}

// SetHaplotypes sets the haplotype count.
func (m *Metadata) SetHaplotypes(n uint64) { m.haplotypeCount = n }

// SetContigs sets the contig count directly, without touching contig
// names. If contig names are already present, this logs a warning.
func (m *Metadata) SetContigs(n uint64, logger base.Logger) {
	if m.HasContigNames() {
		base.OrDiscard(logger).Infof("gbwt.Metadata.SetContigs: changing contig count without changing contig names")
	}
	m.contigCount = n
}

// SetSampleNames replaces the sample-name dictionary and sets the
// sample count to len(names). An empty names clears sample names
// instead.
func (m *Metadata) SetSampleNames(names []string, logger base.Logger) {
	if len(names) == 0 {
		m.ClearSampleNames()
		return
	}
	m.SetSamples(uint64(len(names)), logger)
	m.flags |= FlagSampleNames
	m.sampleNames = NewDictionary(names, logger)
}

// ClearSampleNames drops the sample-name section without changing the
// sample count.
func (m *Metadata) ClearSampleNames() {
	m.flags &^= FlagSampleNames
	m.sampleNames = nil
}

// SetContigNames replaces the contig-name dictionary and sets the
// contig count to len(names). An empty names clears contig names
// instead.
func (m *Metadata) SetContigNames(names []string, logger base.Logger) {
	if len(names) == 0 {
		m.ClearContigNames()
		return
	}
	m.SetContigs(uint64(len(names)), logger)
	m.flags |= FlagContigNames
	m.contigNames = NewDictionary(names, logger)
}

// ClearContigNames drops the contig-name section without changing the
// contig count.
func (m *Metadata) ClearContigNames() {
	m.flags &^= FlagContigNames
	m.contigNames = nil
}

// AddPath appends a path name, setting the path-names flag.
func (m *Metadata) AddPath(path PathName) {
	m.flags |= FlagPathNames
	m.pathNames = append(m.pathNames, path)
}

// ClearPathNames drops the path-names section.
func (m *Metadata) ClearPathNames() {
	m.flags &^= FlagPathNames
	m.pathNames = nil
}

// FindPaths returns the indices of every path matching both sample
// and contig.
func (m *Metadata) FindPaths(sample, contig uint64) []int {
	var result []int
	for i, p := range m.pathNames {
		if p.Sample == sample && p.Contig == contig {
			result = append(result, i)
		}
	}
	return result
}

// PathsForSample returns the indices of every path with the given
// sample.
func (m *Metadata) PathsForSample(sample uint64) []int {
	var result []int
	for i, p := range m.pathNames {
		if p.Sample == sample {
			result = append(result, i)
		}
	}
	return result
}

// PathsForContig returns the indices of every path with the given
// contig.
func (m *Metadata) PathsForContig(contig uint64) []int {
	var result []int
	for i, p := range m.pathNames {
		if p.Contig == contig {
			result = append(result, i)
		}
	}
	return result
}

// Merge folds source's samples, haplotypes, contigs, and path names
// into m.
//
// When sameSamples is true, m and source are assumed to describe the
// same sample set: mismatched counts only log a warning, and m adopts
// source's sample names only if m has none and source does. When
// false, m's sample and haplotype counts grow by source's, every path
// name copied from source has its sample field shifted by m's
// pre-merge sample count, and m's sample names are extended from
// source's (or dropped entirely if source lacks them while m has
// them). Contigs are handled symmetrically under sameContigs. Path
// names are copied from source (with both shifts applied) only if m
// already has path names; if source lacks path names, m's are
// dropped instead of left stale.
func (m *Metadata) Merge(source *Metadata, sameSamples, sameContigs bool, logger base.Logger) {
	logger = base.OrDiscard(logger)
	var sourceSampleOffset, sourceContigOffset uint64

	if sameSamples {
		if m.Samples() != source.Samples() || m.Haplotypes() != source.Haplotypes() {
			logger.Infof("gbwt.Metadata.Merge: sample/haplotype counts do not match")
		}
		if !m.HasSampleNames() && source.HasSampleNames() {
			logger.Infof("gbwt.Metadata.Merge: taking sample names from the source")
			m.sampleNames = source.sampleNames
			m.flags |= FlagSampleNames
		}
	} else {
		sourceSampleOffset = m.Samples()
		m.sampleCount += source.Samples()
		m.haplotypeCount += source.Haplotypes()
		if m.HasSampleNames() {
			if source.HasSampleNames() {
				m.sampleNames.Append(source.sampleNames, logger)
			} else {
				logger.Infof("gbwt.Metadata.Merge: clearing sample names: the source has no sample names")
				m.ClearSampleNames()
			}
		}
	}

	if sameContigs {
		if m.Contigs() != source.Contigs() {
			logger.Infof("gbwt.Metadata.Merge: contig counts do not match")
		}
		if !m.HasContigNames() && source.HasContigNames() {
			logger.Infof("gbwt.Metadata.Merge: taking contig names from the source")
			m.contigNames = source.contigNames
			m.flags |= FlagContigNames
		}
	} else {
		sourceContigOffset = m.Contigs()
		m.contigCount += source.Contigs()
		if m.HasContigNames() {
			if source.HasContigNames() {
				m.contigNames.Append(source.contigNames, logger)
			} else {
				logger.Infof("gbwt.Metadata.Merge: clearing contig names: the source has no contig names")
				m.ClearContigNames()
			}
		}
	}

	if m.HasPathNames() {
		if source.HasPathNames() {
			for _, p := range source.pathNames {
				p.Sample += sourceSampleOffset
				p.Contig += sourceContigOffset
				m.pathNames = append(m.pathNames, p)
			}
		} else {
			logger.Infof("gbwt.Metadata.Merge: clearing path names: the source has no path names")
			m.ClearPathNames()
		}
	}
}

// MergeAll merges every source into m in order, under one same_samples
// / same_contigs policy shared across all of them.
func (m *Metadata) MergeAll(sources []*Metadata, sameSamples, sameContigs bool, logger base.Logger) {
	for _, source := range sources {
		m.Merge(source, sameSamples, sameContigs, logger)
	}
}

// WriteTo serializes the header followed by whichever optional
// sections the flags select. The header lays out tag, version,
// sample_count, haplotype_count, contig_count, flags, in that order,
// matching the field order Metadata exposes them in.
func (m *Metadata) WriteTo(w io.Writer) (int64, error) {
	var header [36]byte
	binary.LittleEndian.PutUint32(header[0:4], m.tag)
	binary.LittleEndian.PutUint32(header[4:8], m.version)
	binary.LittleEndian.PutUint64(header[8:16], m.sampleCount)
	binary.LittleEndian.PutUint64(header[16:24], m.haplotypeCount)
	binary.LittleEndian.PutUint64(header[24:32], m.contigCount)
	binary.LittleEndian.PutUint32(header[32:36], m.flags)
	if _, err := w.Write(header[:]); err != nil {
		return 0, errors.Wrap(err, "gbwt: writing Metadata header")
	}
	n := int64(len(header))

	if m.HasPathNames() {
		var countBuf [8]byte
		binary.LittleEndian.PutUint64(countBuf[:], uint64(len(m.pathNames)))
		if _, err := w.Write(countBuf[:]); err != nil {
			return n, errors.Wrap(err, "gbwt: writing Metadata.path_names count")
		}
		n += int64(len(countBuf))

		buf := make([]byte, 32*len(m.pathNames))
		for i, p := range m.pathNames {
			binary.LittleEndian.PutUint64(buf[32*i:32*i+8], p.Sample)
			binary.LittleEndian.PutUint64(buf[32*i+8:32*i+16], p.Contig)
			binary.LittleEndian.PutUint64(buf[32*i+16:32*i+24], p.Phase)
			binary.LittleEndian.PutUint64(buf[32*i+24:32*i+32], p.Count)
		}
		if _, err := w.Write(buf); err != nil {
			return n, errors.Wrap(err, "gbwt: writing Metadata.path_names")
		}
		n += int64(len(buf))
	}
	if m.HasSampleNames() {
		written, err := m.sampleNames.WriteTo(w)
		n += written
		if err != nil {
			return n, errors.Wrap(err, "gbwt: writing Metadata.sample_names")
		}
	}
	if m.HasContigNames() {
		written, err := m.contigNames.WriteTo(w)
		n += written
		if err != nil {
			return n, errors.Wrap(err, "gbwt: writing Metadata.contig_names")
		}
	}
	return n, nil
}

// ReadMetadata loads a Metadata previously written by WriteTo,
// rejecting it with ErrVersionMismatch if the header's tag, version,
// or flag bits fail Check.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	var header [36]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "gbwt: reading Metadata header")
	}
	m := &Metadata{
		tag:            binary.LittleEndian.Uint32(header[0:4]),
		version:        binary.LittleEndian.Uint32(header[4:8]),
		sampleCount:    binary.LittleEndian.Uint64(header[8:16]),
		haplotypeCount: binary.LittleEndian.Uint64(header[16:24]),
		contigCount:    binary.LittleEndian.Uint64(header[24:32]),
		flags:          binary.LittleEndian.Uint32(header[32:36]),
	}
	if !m.Check() {
		return nil, errors.Wrapf(ErrVersionMismatch, "gbwt: tag=%#x version=%d flags=%#x", m.tag, m.version, m.flags)
	}

	if m.HasPathNames() {
		var countBuf [8]byte
		if _, err := io.ReadFull(r, countBuf[:]); err != nil {
			return nil, errors.Wrap(err, "gbwt: reading Metadata.path_names count")
		}
		count := binary.LittleEndian.Uint64(countBuf[:])
		buf := make([]byte, 32*count)
		if count > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, errors.Wrap(err, "gbwt: reading Metadata.path_names")
			}
		}
		m.pathNames = make([]PathName, count)
		for i := range m.pathNames {
			m.pathNames[i] = PathName{
				Sample: binary.LittleEndian.Uint64(buf[32*i : 32*i+8]),
				Contig: binary.LittleEndian.Uint64(buf[32*i+8 : 32*i+16]),
				Phase:  binary.LittleEndian.Uint64(buf[32*i+16 : 32*i+24]),
				Count:  binary.LittleEndian.Uint64(buf[32*i+24 : 32*i+32]),
			}
		}
	}
	if m.HasSampleNames() {
		sampleNames, err := ReadDictionary(r)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt: reading Metadata.sample_names")
		}
		m.sampleNames = sampleNames
	}
	if m.HasContigNames() {
		contigNames, err := ReadDictionary(r)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt: reading Metadata.contig_names")
		}
		m.contigNames = contigNames
	}
	return m, nil
}
