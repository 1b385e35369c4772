package assetupload

import (
	"fmt"
	"sort"
)

// AssetKind describes which App Store Connect resource family an upload belongs to.
// Screenshots and app previews share the same reservation protocol, only the
// resource names differ.
type AssetKind struct {
	ResourceType    string
	SetType         string
	SetRelationship string
}

var (
	// KindScreenshot ...
	KindScreenshot = AssetKind{
		ResourceType:    "appScreenshots",
		SetType:         "appScreenshotSets",
		SetRelationship: "appScreenshotSet",
	}
	// KindPreview ...
	KindPreview = AssetKind{
		ResourceType:    "appPreviews",
		SetType:         "appPreviewSets",
		SetRelationship: "appPreviewSet",
	}
)

// ParseAssetKind maps a short name (screenshot, preview) to its AssetKind.
func ParseAssetKind(name string) (AssetKind, error) {
	switch name {
	case "", "screenshot", "screenshots":
		return KindScreenshot, nil
	case "preview", "previews":
		return KindPreview, nil
	default:
		return AssetKind{}, fmt.Errorf("unknown asset kind: %s", name)
	}
}

// LocalAsset is the binary payload of a single upload.
type LocalAsset struct {
	FileName string
	Data     []byte
}

// Size ...
func (a LocalAsset) Size() int64 {
	return int64(len(a.Data))
}

// RequestHeader is a single header the presigned upload URL was signed with.
type RequestHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UploadOperation tells where and how to send one byte range of the asset.
type UploadOperation struct {
	Method         string          `json:"method"`
	URL            string          `json:"url"`
	Offset         int64           `json:"offset"`
	Length         int64           `json:"length"`
	RequestHeaders []RequestHeader `json:"requestHeaders"`
}

// End returns the exclusive end of the operation's byte range.
func (o UploadOperation) End() int64 {
	return o.Offset + o.Length
}

// Reservation is the result of reserving an asset upload.
type Reservation struct {
	ID         string
	Operations []UploadOperation
}

// ImageAsset ...
type ImageAsset struct {
	TemplateURL string `json:"templateUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// DeliveryError ...
type DeliveryError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// AssetDeliveryState is the server side processing state of a committed asset.
type AssetDeliveryState struct {
	State  string          `json:"state"`
	Errors []DeliveryError `json:"errors,omitempty"`
}

// Failed reports whether the server rejected the processed asset.
func (s *AssetDeliveryState) Failed() bool {
	return s != nil && s.State == "FAILED"
}

// Asset is the remote representation of an uploaded asset, as returned by the commit call.
type Asset struct {
	ID                 string
	Type               string
	FileSize           int64
	FileName           string
	SourceFileChecksum string
	ImageAsset         *ImageAsset
	AssetDeliveryState *AssetDeliveryState
}

// ValidateCoverage checks that the operations' byte ranges cover [0, size) exactly,
// without gaps or overlaps. Operations may come in any order.
func ValidateCoverage(operations []UploadOperation, size int64) error {
	sorted := make([]UploadOperation, len(operations))
	copy(sorted, operations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	var next int64
	for _, op := range sorted {
		if op.Offset < 0 || op.Length <= 0 {
			return fmt.Errorf("invalid range offset=%d length=%d", op.Offset, op.Length)
		}
		if op.Offset > next {
			return fmt.Errorf("gap in byte ranges: [%d, %d) is not covered", next, op.Offset)
		}
		if op.Offset < next {
			return fmt.Errorf("overlapping byte ranges at offset %d", op.Offset)
		}
		next = op.End()
	}
	if next != size {
		return fmt.Errorf("byte ranges cover %d bytes, asset has %d", next, size)
	}

	return nil
}
