package assetupload

import (
	"context"
	"errors"
	"net/http"

	"github.com/bitrise-io/go-assetupload/assetupload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Transferer sends the bytes of a reserved asset to its upload operations.
type Transferer struct {
	binaryUploader BinaryUploader
	config         chunkuploader.Config
	logger         log.Logger
}

// NewTransferer ...
func NewTransferer(binaryUploader BinaryUploader, config chunkuploader.Config, logger log.Logger) Transferer {
	return Transferer{binaryUploader: binaryUploader, config: config, logger: logger}
}

// Transfer executes every operation exactly as described by the reservation.
// The first failing operation is reported as a *ChunkTransferError.
// The returned stats cover the chunks that finished, also on failure.
func (t Transferer) Transfer(ctx context.Context, asset LocalAsset, operations []UploadOperation) (*chunkuploader.Stats, error) {
	ranges := make([]chunkuploader.Range, 0, len(operations))
	urls := make([]chunkuploader.UploadURL, 0, len(operations))
	for _, op := range operations {
		ranges = append(ranges, chunkuploader.Range{Offset: op.Offset, Length: op.Length})
		urls = append(urls, chunkuploader.UploadURL{
			Method: op.Method,
			URL:    op.URL,
			Header: requestHeader(op.RequestHeaders),
		})
	}

	transport := chunkuploader.TransportFunc(func(ctx context.Context, url chunkuploader.UploadURL, data []byte) error {
		return t.binaryUploader.UploadBinaryToURL(ctx, url.Method, url.URL, data, url.Header)
	})

	uploader := chunkuploader.New(t.config, transport, t.logger)
	err := uploader.Upload(ctx, chunkuploader.NewRangeChunkProvider(asset.Data, ranges), urls)
	if err != nil {
		var chunkErr *chunkuploader.ChunkError
		if errors.As(err, &chunkErr) {
			return uploader.Stats(), &ChunkTransferError{
				Index:     chunkErr.Index,
				Operation: operations[chunkErr.Index],
				Err:       chunkErr.Err,
			}
		}
		return uploader.Stats(), err
	}

	return uploader.Stats(), nil
}

// requestHeader keeps the declared order of values for repeated header names.
// http.Header.Add canonicalizes names, so x-amz-meta-id goes on the wire as
// X-Amz-Meta-Id; header names are case-insensitive in HTTP.
func requestHeader(headers []RequestHeader) http.Header {
	h := make(http.Header, len(headers))
	for _, header := range headers {
		h.Add(header.Name, header.Value)
	}
	return h
}
