// Package assetbatch uploads every asset matched by a list of paths into one asset set.
package assetbatch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bitrise-io/go-assetupload/ascapi"
	"github.com/bitrise-io/go-assetupload/assetsource"
	"github.com/bitrise-io/go-assetupload/assetupload"
	"github.com/bitrise-io/go-assetupload/assetupload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/log"
)

type fileUploader interface {
	UploadFile(ctx context.Context, kind assetupload.AssetKind, setID, path string) (assetupload.Asset, error)
}

// UploadedAsset ...
type UploadedAsset struct {
	Path  string
	Asset assetupload.Asset
}

// Summary lists the outcome of every asset in the batch.
type Summary struct {
	Uploaded []UploadedAsset
	Failed   MultiError
}

// Uploader ...
type Uploader struct {
	config     Config
	uploader   fileUploader
	tracker    batchTracker
	workingDir string
	logger     log.Logger
}

// NewUploader wires the App Store Connect client, the asset loader and the upload workflow.
func NewUploader(config Config, tracker analytics.Tracker, logger log.Logger) (*Uploader, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	client := ascapi.NewClient(config.APIBaseURL, config.APIToken, logger)
	loader := assetsource.NewLoader(assetsource.Config{S3: config.S3}, logger)
	uploader := assetupload.NewUploader(client, client, logger,
		assetupload.WithLoader(loader),
		assetupload.WithChunkConfig(chunkuploader.Config{Concurrency: config.Concurrency}),
		assetupload.WithObserver(func(t assetupload.Transition) {
			logger.Debugf("Upload state: %s -> %s", t.From, t.To)
		}),
	)

	return newUploader(config, uploader, tracker, workingDir, logger), nil
}

func newUploader(config Config, uploader fileUploader, tracker analytics.Tracker, workingDir string, logger log.Logger) *Uploader {
	return &Uploader{
		config:     config,
		uploader:   uploader,
		tracker:    batchTracker{tracker: tracker},
		workingDir: workingDir,
		logger:     logger,
	}
}

// Upload uploads the assets one after the other, in the order of the configured paths.
// A failed asset doesn't stop the batch: failures are collected in Summary.Failed,
// which is also returned as the error.
func (u *Uploader) Upload(ctx context.Context) (Summary, error) {
	defer u.tracker.wait()

	paths := expandPaths(u.workingDir, u.config.Paths, u.logger)
	if len(paths) == 0 {
		return Summary{}, fmt.Errorf("no assets found for paths: %v", u.config.Paths)
	}

	u.logger.Infof("Uploading %d %s into %s %s", len(paths), u.config.Kind.ResourceType, u.config.Kind.SetType, u.config.SetID)

	var summary Summary
	for i, pth := range paths {
		u.logger.Println()
		u.logger.Infof("(%d/%d) %s", i+1, len(paths), pth)

		startTime := time.Now()
		asset, err := u.uploader.UploadFile(ctx, u.config.Kind, u.config.SetID, pth)
		if err != nil {
			u.logger.Errorf("Upload failed: %s", err)
			u.tracker.logAssetUploadFailed(u.config.Kind, err)
			summary.Failed = append(summary.Failed, &AssetError{Path: pth, Err: err})
			if ctx.Err() != nil {
				break
			}
			continue
		}

		uploadTime := time.Since(startTime)
		u.tracker.logAssetUploaded(u.config.Kind, asset, uploadTime)
		u.logger.Donef("Uploaded %s (%s) in %s", asset.FileName, asset.ID, uploadTime.Round(time.Millisecond))
		logDeliveryState(asset, u.logger)

		summary.Uploaded = append(summary.Uploaded, UploadedAsset{Path: pth, Asset: asset})
	}

	if len(summary.Failed) > 0 {
		return summary, summary.Failed
	}
	return summary, nil
}

func logDeliveryState(asset assetupload.Asset, logger log.Logger) {
	state := asset.AssetDeliveryState
	if state == nil {
		return
	}

	loggerFn := logger.Printf
	if state.Failed() {
		loggerFn = logger.Warnf
	}
	loggerFn("Delivery state: %s", state.State)
	for _, deliveryErr := range state.Errors {
		loggerFn("- %s: %s", deliveryErr.Code, deliveryErr.Description)
	}
}
