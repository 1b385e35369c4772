package assetupload

import (
	"context"
	"net/http"
)

// ResourceClient talks to a JSON resource API. Bodies are marshalled to JSON,
// responses are decoded into out (which may be nil).
type ResourceClient interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Patch(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string) error
}

// BinaryUploader sends raw bytes to a presigned URL.
type BinaryUploader interface {
	UploadBinaryToURL(ctx context.Context, method, url string, data []byte, header http.Header) error
}

// AssetLoader reads a local asset from a path or URL.
type AssetLoader interface {
	Load(ctx context.Context, path string) (LocalAsset, error)
}
