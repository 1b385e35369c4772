package assetupload

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bitrise-io/go-assetupload/assetupload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const setID = "set-1"

func TestUploader_Upload_SingleOperation(t *testing.T) {
	payload := []byte("0123456789")
	checksum := Checksum(payload)

	client := newFakeResourceClient()
	client.responses["POST /appScreenshots"] = reservationResponse("shot-1", `[{
		"method":"PUT",
		"url":"https://upload.example.com/1",
		"offset":0,
		"length":10,
		"requestHeaders":[{"name":"Content-Type","value":"image/png"},{"name":"x-amz-meta-id","value":"abc"}]
	}]`)
	client.responses["PATCH /appScreenshots/shot-1"] = commitResponse("shot-1", checksum)
	binaryUploader := &fakeBinaryUploader{}

	var states []State
	uploader := NewUploader(client, binaryUploader, log.NewLogger(), WithObserver(func(t Transition) {
		states = append(states, t.To)
	}))

	asset, err := uploader.Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: payload},
	})
	require.NoError(t, err)

	require.Len(t, binaryUploader.calls, 1)
	call := binaryUploader.calls[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "https://upload.example.com/1", call.url)
	assert.Equal(t, payload, call.data)
	assert.Equal(t, http.Header{
		"Content-Type":  {"image/png"},
		"X-Amz-Meta-Id": {"abc"},
	}, call.header)

	reserveCalls := client.callsTo(http.MethodPost)
	require.Len(t, reserveCalls, 1)
	assert.Equal(t, map[string]interface{}{
		"data": map[string]interface{}{
			"type": "appScreenshots",
			"attributes": map[string]interface{}{
				"fileName": "shot.png",
				"fileSize": float64(10),
			},
			"relationships": map[string]interface{}{
				"appScreenshotSet": map[string]interface{}{
					"data": map[string]interface{}{"type": "appScreenshotSets", "id": setID},
				},
			},
		},
	}, reserveCalls[0].body)

	commitCalls := client.callsTo(http.MethodPatch)
	require.Len(t, commitCalls, 1)
	assert.Equal(t, map[string]interface{}{
		"data": map[string]interface{}{
			"type": "appScreenshots",
			"id":   "shot-1",
			"attributes": map[string]interface{}{
				"sourceFileChecksum": checksum,
				"uploaded":           true,
			},
		},
	}, commitCalls[0].body)

	assert.Equal(t, "shot-1", asset.ID)
	assert.Equal(t, checksum, asset.SourceFileChecksum)
	require.NotNil(t, asset.ImageAsset)
	assert.Equal(t, 1284, asset.ImageAsset.Width)
	require.NotNil(t, asset.AssetDeliveryState)
	assert.Equal(t, "UPLOAD_COMPLETE", asset.AssetDeliveryState.State)

	assert.Equal(t, []State{StateChecksumComputed, StateReserved, StateTransferring, StateCommitted}, states)
}

func TestUploader_Upload_TwoOperations(t *testing.T) {
	payload := []byte("0123456789abcdefghij")

	client := newFakeResourceClient()
	client.responses["POST /appScreenshots"] = reservationResponse("shot-2", `[
		{"method":"PUT","url":"https://upload.example.com/b","offset":10,"length":10,"requestHeaders":[]},
		{"method":"PUT","url":"https://upload.example.com/a","offset":0,"length":10,"requestHeaders":[]}
	]`)
	client.responses["PATCH /appScreenshots/shot-2"] = commitResponse("shot-2", Checksum(payload))
	binaryUploader := &fakeBinaryUploader{}

	uploader := NewUploader(client, binaryUploader, log.NewLogger(), WithChunkConfig(chunkuploader.Config{Concurrency: 2}))
	_, err := uploader.Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: payload},
	})
	require.NoError(t, err)

	require.Len(t, binaryUploader.calls, 2)
	sort.Slice(binaryUploader.calls, func(i, j int) bool {
		return binaryUploader.calls[i].url < binaryUploader.calls[j].url
	})
	assert.Equal(t, []byte("0123456789"), binaryUploader.calls[0].data)
	assert.Equal(t, []byte("abcdefghij"), binaryUploader.calls[1].data)

	commitCalls := client.callsTo(http.MethodPatch)
	require.Len(t, commitCalls, 1)
	attributes := commitCalls[0].body["data"].(map[string]interface{})["attributes"].(map[string]interface{})
	assert.Equal(t, Checksum(payload), attributes["sourceFileChecksum"], "chunking must not change the checksum")
}

func TestUploader_Upload_NoUploadOperations(t *testing.T) {
	for name, operations := range map[string]string{
		"empty list": `[]`,
		"null":       `null`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newFakeResourceClient()
			client.responses["POST /appScreenshots"] = reservationResponse("shot-3", operations)
			binaryUploader := &fakeBinaryUploader{}

			_, err := NewUploader(client, binaryUploader, log.NewLogger()).Upload(context.Background(), Params{
				Kind:  KindScreenshot,
				SetID: setID,
				Asset: LocalAsset{FileName: "shot.png", Data: []byte("0123456789")},
			})

			require.ErrorIs(t, err, ErrNoUploadOperations)
			stage, ok := StageOf(err)
			require.True(t, ok)
			assert.Equal(t, StageReserve, stage)
			assert.Empty(t, binaryUploader.calls)
			assert.Empty(t, client.callsTo(http.MethodPatch))
		})
	}
}

func TestUploader_Upload_InvalidCoverage(t *testing.T) {
	client := newFakeResourceClient()
	client.responses["POST /appScreenshots"] = reservationResponse("shot-4", `[
		{"method":"PUT","url":"https://upload.example.com/a","offset":0,"length":5,"requestHeaders":[]}
	]`)
	binaryUploader := &fakeBinaryUploader{}

	_, err := NewUploader(client, binaryUploader, log.NewLogger()).Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: []byte("0123456789")},
	})

	require.ErrorIs(t, err, ErrInvalidUploadOperations)
	assert.Empty(t, binaryUploader.calls)
}

func TestUploader_Upload_ReservationFails(t *testing.T) {
	client := newFakeResourceClient()
	client.errors["POST /appScreenshots"] = errors.New("HTTP 409: ENTITY_ERROR.ATTRIBUTE.INVALID")
	binaryUploader := &fakeBinaryUploader{}

	_, err := NewUploader(client, binaryUploader, log.NewLogger()).Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: []byte("0123456789")},
	})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageReserve, stage)
	assert.Contains(t, err.Error(), "ENTITY_ERROR")
	assert.Empty(t, binaryUploader.calls)
}

func TestUploader_Upload_SecondChunkFails(t *testing.T) {
	payload := []byte("0123456789abcdefghij")

	client := newFakeResourceClient()
	client.responses["POST /appScreenshots"] = reservationResponse("shot-5", `[
		{"method":"PUT","url":"https://upload.example.com/a","offset":0,"length":10,"requestHeaders":[]},
		{"method":"PUT","url":"https://upload.example.com/b","offset":10,"length":10,"requestHeaders":[]}
	]`)
	binaryUploader := &fakeBinaryUploader{failURL: "https://upload.example.com/b"}

	var failure Transition
	uploader := NewUploader(client, binaryUploader, log.NewLogger(), WithObserver(func(t Transition) {
		if t.To == StateFailed {
			failure = t
		}
	}))
	_, err := uploader.Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: payload},
	})

	var chunkErr *ChunkTransferError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 1, chunkErr.Index)
	assert.Equal(t, "https://upload.example.com/b", chunkErr.Operation.URL)
	assert.Equal(t, int64(10), chunkErr.Operation.Offset)

	stage, _ := StageOf(err)
	assert.Equal(t, StageTransfer, stage)
	assert.Equal(t, StateTransferring, failure.From)
	assert.Equal(t, StageTransfer, failure.Stage)

	assert.Empty(t, client.callsTo(http.MethodPatch))
}

func TestUploader_Upload_CommitFails(t *testing.T) {
	client := newFakeResourceClient()
	client.responses["POST /appScreenshots"] = reservationResponse("shot-6", `[
		{"method":"PUT","url":"https://upload.example.com/a","offset":0,"length":10,"requestHeaders":[]}
	]`)
	client.errors["PATCH /appScreenshots/shot-6"] = errors.New("HTTP 409: checksum mismatch")

	_, err := NewUploader(client, &fakeBinaryUploader{}, log.NewLogger()).Upload(context.Background(), Params{
		Kind:  KindScreenshot,
		SetID: setID,
		Asset: LocalAsset{FileName: "shot.png", Data: []byte("0123456789")},
	})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageCommit, stage)
}

func TestUploader_UploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	client := newFakeResourceClient()
	client.responses["POST /appPreviews"] = reservationResponse("preview-1", `[
		{"method":"PUT","url":"https://upload.example.com/a","offset":0,"length":10,"requestHeaders":[]}
	]`)
	client.responses["PATCH /appPreviews/preview-1"] = commitResponse("preview-1", Checksum([]byte("0123456789")))

	_, err := NewUploader(client, &fakeBinaryUploader{}, log.NewLogger()).UploadFile(context.Background(), KindPreview, setID, path)
	require.NoError(t, err)

	reserveCalls := client.callsTo(http.MethodPost)
	require.Len(t, reserveCalls, 1)
	data := reserveCalls[0].body["data"].(map[string]interface{})
	assert.Equal(t, "preview.png", data["attributes"].(map[string]interface{})["fileName"])
	assert.Contains(t, data["relationships"], "appPreviewSet")
}

func TestUploader_UploadFile_ReadError(t *testing.T) {
	client := newFakeResourceClient()
	loader := fakeLoader{err: os.ErrNotExist}

	_, err := NewUploader(client, &fakeBinaryUploader{}, log.NewLogger(), WithLoader(loader)).
		UploadFile(context.Background(), KindScreenshot, setID, "missing.png")

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageRead, stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, client.calls)
}
