package assetupload

import (
	"errors"
	"fmt"
)

// Stage identifies the workflow step an upload failed in.
type Stage string

const (
	StageRead     Stage = "read"
	StageReserve  Stage = "reserve"
	StageTransfer Stage = "transfer"
	StageCommit   Stage = "commit"
)

// ErrNoUploadOperations is returned when the reservation response carries no upload operations.
var ErrNoUploadOperations = errors.New("no upload operations returned from reservation")

// ErrInvalidUploadOperations is returned when the reserved byte ranges don't cover the asset exactly.
var ErrInvalidUploadOperations = errors.New("upload operations don't cover the asset")

// UploadError is the single failure surfaced by Uploader.Upload.
type UploadError struct {
	Stage Stage
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ChunkTransferError identifies the upload operation whose transfer failed.
type ChunkTransferError struct {
	Index     int
	Operation UploadOperation
	Err       error
}

func (e *ChunkTransferError) Error() string {
	return fmt.Sprintf("upload operation %d (offset %d, length %d): %s", e.Index, e.Operation.Offset, e.Operation.Length, e.Err)
}

func (e *ChunkTransferError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage an upload error happened in.
func StageOf(err error) (Stage, bool) {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Stage, true
	}
	return "", false
}

func failed(stage Stage, err error) error {
	return &UploadError{Stage: stage, Err: err}
}
