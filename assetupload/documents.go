package assetupload

type relationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type reserveAttributes struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type reserveData struct {
	Type          string                  `json:"type"`
	Attributes    reserveAttributes       `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type reserveRequest struct {
	Data reserveData `json:"data"`
}

type commitAttributes struct {
	SourceFileChecksum string `json:"sourceFileChecksum"`
	Uploaded           bool   `json:"uploaded"`
}

type commitData struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes commitAttributes `json:"attributes"`
}

type commitRequest struct {
	Data commitData `json:"data"`
}

type assetAttributes struct {
	FileSize           int64               `json:"fileSize"`
	FileName           string              `json:"fileName"`
	SourceFileChecksum string              `json:"sourceFileChecksum,omitempty"`
	ImageAsset         *ImageAsset         `json:"imageAsset,omitempty"`
	AssetDeliveryState *AssetDeliveryState `json:"assetDeliveryState,omitempty"`
	UploadOperations   []UploadOperation   `json:"uploadOperations,omitempty"`
}

type assetResource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes assetAttributes `json:"attributes"`
}

type assetResponse struct {
	Data assetResource `json:"data"`
}

func (r assetResource) asset() Asset {
	return Asset{
		ID:                 r.ID,
		Type:               r.Type,
		FileSize:           r.Attributes.FileSize,
		FileName:           r.Attributes.FileName,
		SourceFileChecksum: r.Attributes.SourceFileChecksum,
		ImageAsset:         r.Attributes.ImageAsset,
		AssetDeliveryState: r.Attributes.AssetDeliveryState,
	}
}
