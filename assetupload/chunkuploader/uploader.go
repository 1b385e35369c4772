package chunkuploader

import (
	"context"
	"fmt"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"golang.org/x/sync/errgroup"
)

// Uploader sends every chunk of a provider to its upload URL.
type Uploader struct {
	config    Config
	transport Transport
	logger    log.Logger
	stats     *Stats
}

// New creates a new Uploader with the given configuration.
func New(config Config, transport Transport, logger log.Logger) *Uploader {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	return &Uploader{
		config:    config,
		transport: transport,
		logger:    logger,
		stats:     NewStats(),
	}
}

// Upload transfers chunk i of the provider to urls[i], for every chunk.
// It returns once all transfers succeeded, or with a *ChunkError for the first failed
// one, in which case the transfers still in flight are cancelled.
func (u *Uploader) Upload(ctx context.Context, provider ChunkProvider, urls []UploadURL) error {
	numChunks := provider.NumChunks()
	if numChunks != len(urls) {
		return fmt.Errorf("chunk count mismatch: provider has %d chunks, but %d URLs provided", numChunks, len(urls))
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(u.config.Concurrency)

	for i := 0; i < numChunks; i++ {
		index, url := i, urls[i]
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return &ChunkError{Index: index, Err: err}
			}
			if err := u.uploadChunk(groupCtx, provider, url, index, numChunks); err != nil {
				return &ChunkError{Index: index, Err: err}
			}
			return nil
		})
	}

	return g.Wait()
}

// Stats returns the upload statistics.
func (u *Uploader) Stats() *Stats {
	return u.stats
}

func (u *Uploader) uploadChunk(ctx context.Context, provider ChunkProvider, url UploadURL, index, totalChunks int) error {
	data, err := provider.GetChunk(index)
	if err != nil {
		return fmt.Errorf("get chunk: %w", err)
	}

	if expected := provider.ChunkSize(index); expected != int64(len(data)) {
		u.logger.Warnf("Chunk %d size mismatch, expected %d, got %d", index+1, expected, len(data))
	}

	u.logger.Debugf("Uploading chunk %d/%d (%d bytes) [finished=%d]", index+1, totalChunks, len(data), u.stats.FinishedCount())

	start := time.Now()
	if err := u.transport.UploadChunk(ctx, url, data); err != nil {
		return err
	}
	took := time.Since(start)
	u.stats.Update(took, int64(len(data)))
	u.logger.Debugf("Chunk %d uploaded in %v", index+1, took.Round(time.Millisecond))

	return nil
}
