package assetupload

import (
	"context"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Committer marks a reserved asset as uploaded.
type Committer struct {
	client ResourceClient
	logger log.Logger
}

// NewCommitter ...
func NewCommitter(client ResourceClient, logger log.Logger) Committer {
	return Committer{client: client, logger: logger}
}

// Commit attaches the checksum and sets the uploaded flag, which starts server side processing.
// The returned Asset reflects the state at commit time, processing is not awaited.
func (c Committer) Commit(ctx context.Context, kind AssetKind, id, checksum string) (Asset, error) {
	request := commitRequest{
		Data: commitData{
			Type: kind.ResourceType,
			ID:   id,
			Attributes: commitAttributes{
				SourceFileChecksum: checksum,
				Uploaded:           true,
			},
		},
	}

	var response assetResponse
	path := fmt.Sprintf("/%s/%s", kind.ResourceType, id)
	if err := c.client.Patch(ctx, path, request, &response); err != nil {
		return Asset{}, fmt.Errorf("commit %s %s: %w", kind.ResourceType, id, err)
	}

	asset := response.Data.asset()
	if asset.ID == "" {
		asset.ID = id
	}
	if asset.Type == "" {
		asset.Type = kind.ResourceType
	}

	return asset, nil
}
