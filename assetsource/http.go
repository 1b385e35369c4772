package assetsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/melbahja/got"
)

func (l *Loader) loadHTTP(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "asset-download")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			l.logger.Warnf("failed to remove %s: %s", tmpDir, err)
		}
	}()

	dest := filepath.Join(tmpDir, "asset")
	downloader := got.New()
	downloader.Client = l.httpClient

	l.logger.Debugf("Downloading %s", src)
	if err := downloader.Do(got.NewDownload(ctx, src, dest)); err != nil {
		return nil, fmt.Errorf("download %s: %w", src, err)
	}

	return l.loadFile(dest)
}
