package assetupload

import (
	"context"
	"fmt"
	"time"

	"github.com/bitrise-io/go-assetupload/assetupload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
)

// Params describes a single asset upload.
type Params struct {
	Kind  AssetKind
	SetID string
	Asset LocalAsset
}

// Uploader runs the reserve, transfer, commit workflow for one asset at a time.
// It holds no state between uploads, a failed upload has to be started over.
type Uploader struct {
	reserver   Reserver
	transferer Transferer
	committer  Committer
	loader     AssetLoader
	observer   Observer
	logger     log.Logger
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithObserver registers a callback for workflow state transitions.
func WithObserver(observer Observer) Option {
	return func(u *Uploader) {
		u.observer = observer
	}
}

// WithLoader sets the AssetLoader used by UploadFile.
func WithLoader(loader AssetLoader) Option {
	return func(u *Uploader) {
		u.loader = loader
	}
}

// WithChunkConfig overrides the chunk transfer configuration.
func WithChunkConfig(config chunkuploader.Config) Option {
	return func(u *Uploader) {
		u.transferer.config = config
	}
}

// NewUploader creates an Uploader. Chunks are sent one at a time unless
// WithChunkConfig sets a higher concurrency.
func NewUploader(client ResourceClient, binaryUploader BinaryUploader, logger log.Logger, opts ...Option) *Uploader {
	u := &Uploader{
		reserver:   NewReserver(client, logger),
		transferer: NewTransferer(binaryUploader, chunkuploader.Config{Concurrency: 1}, logger),
		committer:  NewCommitter(client, logger),
		loader:     fileLoader{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadFile loads the asset at path and uploads it into the given asset set.
// Load failures are reported with StageRead.
func (u *Uploader) UploadFile(ctx context.Context, kind AssetKind, setID, path string) (Asset, error) {
	asset, err := u.loader.Load(ctx, path)
	if err != nil {
		return Asset{}, newWorkflow(u.observer).fail(StageRead, fmt.Errorf("load %s: %w", path, err))
	}

	return u.Upload(ctx, Params{Kind: kind, SetID: setID, Asset: asset})
}

// Upload reserves the asset, transfers its bytes and commits it with the checksum of
// the bytes given in params. Any failure aborts the workflow and is returned as an
// *UploadError tagged with the failed Stage. Commit is only attempted after every
// chunk has been transferred.
func (u *Uploader) Upload(ctx context.Context, params Params) (Asset, error) {
	w := newWorkflow(u.observer)

	asset := params.Asset
	if asset.FileName == "" {
		return Asset{}, w.fail(StageRead, fmt.Errorf("asset file name is empty"))
	}
	checksum := Checksum(asset.Data)
	w.moveTo(StateChecksumComputed)
	u.logger.Debugf("%s: %s, checksum %s", asset.FileName, units.HumanSizeWithPrecision(float64(asset.Size()), 3), checksum)

	reservation, err := u.reserver.Reserve(ctx, params.Kind, params.SetID, asset.FileName, asset.Size())
	if err != nil {
		return Asset{}, w.fail(StageReserve, err)
	}
	w.moveTo(StateReserved)

	w.moveTo(StateTransferring)
	transferStartTime := time.Now()
	stats, err := u.transferer.Transfer(ctx, asset, reservation.Operations)
	if err != nil {
		return Asset{}, w.fail(StageTransfer, err)
	}
	u.logger.Debugf("Transferred %s in %d chunk(s) in %s (average chunk time: %s)",
		units.HumanSizeWithPrecision(float64(stats.TransferredBytes()), 3),
		stats.FinishedCount(),
		time.Since(transferStartTime).Round(time.Millisecond),
		stats.Average().Round(time.Millisecond))

	committed, err := u.committer.Commit(ctx, params.Kind, reservation.ID, checksum)
	if err != nil {
		return Asset{}, w.fail(StageCommit, err)
	}
	w.moveTo(StateCommitted)

	return committed, nil
}

type fileLoader struct{}

func (fileLoader) Load(_ context.Context, path string) (LocalAsset, error) {
	return ReadLocalAsset(path)
}
