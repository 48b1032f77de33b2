package gbwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeParametersDefaults(t *testing.T) {
	p := NewMergeParameters()
	require.Equal(t, defaultPosBufferSize, p.PosBufferSize())
	require.Equal(t, defaultThreadBufferSize, p.ThreadBufferSize())
	require.Equal(t, defaultMergeBuffers, p.MergeBuffers())
	require.Equal(t, defaultChunkSize, p.ChunkSize())
	require.Equal(t, defaultMergeJobs, p.MergeJobs())
}

func TestMergeParametersBoundedSetters(t *testing.T) {
	p := NewMergeParameters()

	p.SetPosBufferSize(0)
	require.Equal(t, 1, p.PosBufferSize())
	p.SetPosBufferSize(maxBufferSize + 100)
	require.Equal(t, maxBufferSize, p.PosBufferSize())
	p.SetPosBufferSize(32)
	require.Equal(t, 32, p.PosBufferSize())

	p.SetThreadBufferSize(-5)
	require.Equal(t, 1, p.ThreadBufferSize())
	p.SetThreadBufferSize(maxBufferSize + 1)
	require.Equal(t, maxBufferSize, p.ThreadBufferSize())

	p.SetMergeBuffers(0)
	require.Equal(t, 1, p.MergeBuffers())
	p.SetMergeBuffers(maxMergeBuffers + 1)
	require.Equal(t, maxMergeBuffers, p.MergeBuffers())

	p.SetChunkSize(0)
	require.Equal(t, 1, p.ChunkSize())
	p.SetChunkSize(500)
	require.Equal(t, 500, p.ChunkSize())

	p.SetMergeJobs(0)
	require.Equal(t, 1, p.MergeJobs())
	p.SetMergeJobs(maxMergeJobs + 1)
	require.Equal(t, maxMergeJobs, p.MergeJobs())
}
