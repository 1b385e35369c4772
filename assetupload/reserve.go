package assetupload

import (
	"context"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Reserver allocates a new asset resource and returns where to send its bytes.
type Reserver struct {
	client ResourceClient
	logger log.Logger
}

// NewReserver ...
func NewReserver(client ResourceClient, logger log.Logger) Reserver {
	return Reserver{client: client, logger: logger}
}

// Reserve asks the API for an upload slot of the given size inside the asset set.
// A response without upload operations is rejected with ErrNoUploadOperations,
// and one whose byte ranges don't add up with ErrInvalidUploadOperations.
func (r Reserver) Reserve(ctx context.Context, kind AssetKind, setID, fileName string, size int64) (Reservation, error) {
	request := reserveRequest{
		Data: reserveData{
			Type: kind.ResourceType,
			Attributes: reserveAttributes{
				FileName: fileName,
				FileSize: size,
			},
			Relationships: map[string]relationship{
				kind.SetRelationship: {
					Data: relationshipData{Type: kind.SetType, ID: setID},
				},
			},
		},
	}

	var response assetResponse
	if err := r.client.Post(ctx, "/"+kind.ResourceType, request, &response); err != nil {
		return Reservation{}, fmt.Errorf("reserve %s: %w", kind.ResourceType, err)
	}

	operations := response.Data.Attributes.UploadOperations
	if len(operations) == 0 {
		return Reservation{}, ErrNoUploadOperations
	}
	if err := ValidateCoverage(operations, size); err != nil {
		return Reservation{}, fmt.Errorf("%w: %s", ErrInvalidUploadOperations, err)
	}

	r.logger.Debugf("Reserved %s %s with %d upload operation(s)", kind.ResourceType, response.Data.ID, len(operations))

	return Reservation{
		ID:         response.Data.ID,
		Operations: operations,
	}, nil
}
