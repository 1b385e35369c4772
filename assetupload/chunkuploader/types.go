// Package chunkuploader transfers the chunks of an in-memory payload to presigned URLs.
// Chunks are independent: they may be sent concurrently and in any order, and the
// first failed transfer cancels the rest.
package chunkuploader

import (
	"context"
	"fmt"
	"net/http"
)

// UploadURL is a presigned target for a single chunk. Method and Header are sent
// exactly as given, the URL is only valid for that combination.
type UploadURL struct {
	Method string
	URL    string
	Header http.Header
}

// ChunkProvider provides chunk data for upload.
type ChunkProvider interface {
	// NumChunks returns the total number of chunks.
	NumChunks() int

	// ChunkSize returns the size of the chunk at the given index.
	ChunkSize(index int) int64

	// GetChunk returns the bytes of the chunk at the given index.
	// The returned slice must not be modified.
	GetChunk(index int) ([]byte, error)
}

// Transport performs the raw transfer of one chunk.
type Transport interface {
	UploadChunk(ctx context.Context, url UploadURL, data []byte) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url UploadURL, data []byte) error

// UploadChunk ...
func (f TransportFunc) UploadChunk(ctx context.Context, url UploadURL, data []byte) error {
	return f(ctx, url, data)
}

// ChunkError is returned by Upload when a chunk could not be transferred.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %s", e.Index+1, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
