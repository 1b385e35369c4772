package assetbatch

import (
	"time"

	"github.com/bitrise-io/go-assetupload/assetupload"
	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

type batchTracker struct {
	tracker analytics.Tracker
}

// NewTracker creates the analytics tracker used for batch upload events.
func NewTracker(envRepo env.Repository, logger log.Logger) analytics.Tracker {
	p := analytics.Properties{
		"build_slug":  envRepo.Get("BITRISE_BUILD_SLUG"),
		"app_slug":    envRepo.Get("BITRISE_APP_SLUG"),
		"workflow":    envRepo.Get("BITRISE_TRIGGERED_WORKFLOW_ID"),
		"is_pr_build": envRepo.Get("IS_PR") == "true",
	}
	return analytics.NewDefaultTracker(logger, p)
}

func (t batchTracker) logAssetUploaded(kind assetupload.AssetKind, asset assetupload.Asset, uploadTime time.Duration) {
	properties := analytics.Properties{
		"asset_type":        kind.ResourceType,
		"upload_time_ms":    uploadTime.Milliseconds(),
		"upload_size_bytes": asset.FileSize,
	}
	if asset.AssetDeliveryState != nil {
		properties["delivery_state"] = asset.AssetDeliveryState.State
	}
	t.tracker.Enqueue("asset_uploaded", properties)
}

func (t batchTracker) logAssetUploadFailed(kind assetupload.AssetKind, err error) {
	properties := analytics.Properties{
		"asset_type": kind.ResourceType,
	}
	if stage, ok := assetupload.StageOf(err); ok {
		properties["stage"] = string(stage)
	}
	t.tracker.Enqueue("asset_upload_failed", properties)
}

func (t batchTracker) wait() {
	t.tracker.Wait()
}
