// Package assetsource loads upload payloads from local paths, http(s) URLs and S3 objects.
package assetsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-assetupload/assetupload"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"github.com/klauspost/compress/zstd"
)

const (
	fileScheme     = "file://"
	zstdExtension  = ".zst"
	defaultMaxSize = 500 * 1024 * 1024
)

// Config ...
type Config struct {
	// HTTPClient is used for http(s) sources. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// S3 holds the credentials for s3:// sources.
	S3 S3Config
	// MaxSize rejects larger assets. Default: 500 MB
	MaxSize int64
}

// Loader reads assets into memory. It implements assetupload.AssetLoader.
type Loader struct {
	httpClient *http.Client
	s3Config   S3Config
	s3         s3Downloader
	maxSize    int64
	logger     log.Logger
}

// NewLoader ...
func NewLoader(config Config, logger log.Logger) *Loader {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	maxSize := config.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	return &Loader{
		httpClient: httpClient,
		s3Config:   config.S3,
		maxSize:    maxSize,
		logger:     logger,
	}
}

// Load reads the asset at src. Supported sources are local paths, file:// and
// http(s):// URLs and s3://bucket/key objects. Sources ending in .zst are
// decompressed, the extension is dropped from the asset's file name.
func (l *Loader) Load(ctx context.Context, src string) (assetupload.LocalAsset, error) {
	var (
		data     []byte
		fileName string
		err      error
	)

	switch {
	case strings.HasPrefix(src, "s3://"):
		bucket, key, parseErr := parseS3URL(src)
		if parseErr != nil {
			return assetupload.LocalAsset{}, parseErr
		}
		fileName = path.Base(key)
		data, err = l.loadS3(ctx, bucket, key)
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		u, parseErr := url.Parse(src)
		if parseErr != nil {
			return assetupload.LocalAsset{}, fmt.Errorf("parse url: %w", parseErr)
		}
		fileName = path.Base(u.Path)
		data, err = l.loadHTTP(ctx, src)
	default:
		localPath := strings.TrimPrefix(src, fileScheme)
		fileName = filepath.Base(localPath)
		data, err = l.loadFile(localPath)
	}
	if err != nil {
		return assetupload.LocalAsset{}, err
	}

	if strings.HasSuffix(fileName, zstdExtension) {
		data, err = l.decompress(data)
		if err != nil {
			return assetupload.LocalAsset{}, fmt.Errorf("decompress %s: %w", fileName, err)
		}
		fileName = strings.TrimSuffix(fileName, zstdExtension)
	}

	if fileName == "" || fileName == "." || fileName == "/" {
		return assetupload.LocalAsset{}, fmt.Errorf("can't determine file name of %s", src)
	}
	if int64(len(data)) > l.maxSize {
		return assetupload.LocalAsset{}, fmt.Errorf("%s is %s, larger than the allowed %s", fileName,
			units.HumanSizeWithPrecision(float64(len(data)), 3), units.HumanSizeWithPrecision(float64(l.maxSize), 3))
	}

	l.logger.Debugf("Loaded %s (%s) from %s", fileName, units.HumanSizeWithPrecision(float64(len(data)), 3), src)

	return assetupload.LocalAsset{FileName: fileName, Data: data}, nil
}

func (l *Loader) loadFile(pth string) ([]byte, error) {
	info, err := os.Stat(pth)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", pth)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("%s is %s, larger than the allowed %s", pth,
			units.HumanSizeWithPrecision(float64(info.Size()), 3), units.HumanSizeWithPrecision(float64(l.maxSize), 3))
	}

	return os.ReadFile(pth)
}

// decompress stops reading once the output grows past maxSize.
func (l *Loader) decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(uint64(l.maxSize)))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer decoder.Close()

	decompressed, err := io.ReadAll(io.LimitReader(decoder, l.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(decompressed)) > l.maxSize {
		return nil, fmt.Errorf("decompressed size exceeds the allowed %s", units.HumanSizeWithPrecision(float64(l.maxSize), 3))
	}

	return decompressed, nil
}
