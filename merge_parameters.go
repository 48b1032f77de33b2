package gbwt

// Default and bound constants for MergeParameters. The original
// header defining these is not part of the retrieved source; the
// values below are chosen to be reasonable defaults in the same units
// (megabytes for buffer sizes, counts otherwise) and are recorded as
// an assumption rather than a literal transcription.
const (
	defaultPosBufferSize    = 64
	defaultThreadBufferSize = 256
	defaultMergeBuffers     = 6
	defaultChunkSize        = 1
	defaultMergeJobs        = 4

	maxBufferSize   = 16384
	maxMergeBuffers = 16
	maxMergeJobs    = 16
)

// MergeParameters carries the tunables a GBWT merge operation reads to
// size its buffers and parallelism, without itself scheduling any
// threads.
type MergeParameters struct {
	posBufferSize    int
	threadBufferSize int
	mergeBuffers     int
	chunkSize        int
	mergeJobs        int
}

// NewMergeParameters returns a MergeParameters with the default
// tunables.
func NewMergeParameters() *MergeParameters {
	return &MergeParameters{
		posBufferSize:    defaultPosBufferSize,
		threadBufferSize: defaultThreadBufferSize,
		mergeBuffers:     defaultMergeBuffers,
		chunkSize:        defaultChunkSize,
		mergeJobs:        defaultMergeJobs,
	}
}

// PosBufferSize returns the position buffer size, in megabytes.
func (p *MergeParameters) PosBufferSize() int { return p.posBufferSize }

// ThreadBufferSize returns the per-thread buffer size, in megabytes.
func (p *MergeParameters) ThreadBufferSize() int { return p.threadBufferSize }

// MergeBuffers returns the number of merge buffers.
func (p *MergeParameters) MergeBuffers() int { return p.mergeBuffers }

// ChunkSize returns the merge chunk size.
func (p *MergeParameters) ChunkSize() int { return p.chunkSize }

// MergeJobs returns the number of concurrent merge jobs.
func (p *MergeParameters) MergeJobs() int { return p.mergeJobs }

func bound(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// SetPosBufferSize sets the position buffer size in megabytes, clamped
// to [1, maxBufferSize].
func (p *MergeParameters) SetPosBufferSize(megabytes int) {
	p.posBufferSize = bound(megabytes, 1, maxBufferSize)
}

// SetThreadBufferSize sets the per-thread buffer size in megabytes,
// clamped to [1, maxBufferSize].
func (p *MergeParameters) SetThreadBufferSize(megabytes int) {
	p.threadBufferSize = bound(megabytes, 1, maxBufferSize)
}

// SetMergeBuffers sets the number of merge buffers, clamped to
// [1, maxMergeBuffers].
func (p *MergeParameters) SetMergeBuffers(n int) {
	p.mergeBuffers = bound(n, 1, maxMergeBuffers)
}

// SetChunkSize sets the merge chunk size, floored at 1.
func (p *MergeParameters) SetChunkSize(n int) {
	if n < 1 {
		n = 1
	}
	p.chunkSize = n
}

// SetMergeJobs sets the number of concurrent merge jobs, clamped to
// [1, maxMergeJobs].
func (p *MergeParameters) SetMergeJobs(n int) {
	p.mergeJobs = bound(n, 1, maxMergeJobs)
}
