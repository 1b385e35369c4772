package chunkuploader

import (
	"fmt"
)

// Range is a byte range of a payload.
type Range struct {
	Offset int64
	Length int64
}

// RangeChunkProvider serves sub-slices of a single immutable payload.
// Safe for concurrent use, every chunk is a read-only view of the payload.
type RangeChunkProvider struct {
	data   []byte
	ranges []Range
}

// NewRangeChunkProvider creates a ChunkProvider with one chunk per range.
func NewRangeChunkProvider(data []byte, ranges []Range) *RangeChunkProvider {
	return &RangeChunkProvider{data: data, ranges: ranges}
}

// NumChunks returns the total number of chunks.
func (p *RangeChunkProvider) NumChunks() int {
	return len(p.ranges)
}

// ChunkSize returns the size of the chunk at the given index.
func (p *RangeChunkProvider) ChunkSize(index int) int64 {
	if index < 0 || index >= len(p.ranges) {
		return 0
	}
	return p.ranges[index].Length
}

// GetChunk returns the bytes of the chunk at the given index.
func (p *RangeChunkProvider) GetChunk(index int) ([]byte, error) {
	if index < 0 || index >= len(p.ranges) {
		return nil, fmt.Errorf("chunk index %d out of range [0, %d)", index, len(p.ranges))
	}

	r := p.ranges[index]
	end := r.Offset + r.Length
	if r.Offset < 0 || r.Length < 0 || end > int64(len(p.data)) {
		return nil, fmt.Errorf("range [%d, %d) of chunk %d is outside of the %d byte payload", r.Offset, end, index+1, len(p.data))
	}

	return p.data[r.Offset:end:end], nil
}
