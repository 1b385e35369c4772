package assetupload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

type resourceCall struct {
	method string
	path   string
	body   map[string]interface{}
}

// fakeResourceClient answers JSON calls with canned documents, keyed by "METHOD path".
type fakeResourceClient struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	calls     []resourceCall
}

func newFakeResourceClient() *fakeResourceClient {
	return &fakeResourceClient{
		responses: map[string]string{},
		errors:    map[string]error{},
	}
}

func (c *fakeResourceClient) do(method, path string, body, out interface{}) error {
	call := resourceCall{method: method, path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(b, &call.body); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()

	key := method + " " + path
	if err, ok := c.errors[key]; ok {
		return err
	}
	response, ok := c.responses[key]
	if !ok {
		return fmt.Errorf("unexpected call: %s", key)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(response), out)
}

func (c *fakeResourceClient) Get(_ context.Context, path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *fakeResourceClient) Post(_ context.Context, path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *fakeResourceClient) Patch(_ context.Context, path string, body, out interface{}) error {
	return c.do(http.MethodPatch, path, body, out)
}

func (c *fakeResourceClient) Delete(_ context.Context, path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *fakeResourceClient) callsTo(method string) []resourceCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	var calls []resourceCall
	for _, call := range c.calls {
		if call.method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

type binaryCall struct {
	method string
	url    string
	data   []byte
	header http.Header
}

type fakeBinaryUploader struct {
	mu      sync.Mutex
	calls   []binaryCall
	failURL string
}

func (u *fakeBinaryUploader) UploadBinaryToURL(_ context.Context, method, url string, data []byte, header http.Header) error {
	if url == u.failURL {
		return errors.New("HTTP 403: request has expired")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, binaryCall{
		method: method,
		url:    url,
		data:   append([]byte(nil), data...),
		header: header.Clone(),
	})
	return nil
}

type fakeLoader struct {
	asset LocalAsset
	err   error
}

func (l fakeLoader) Load(context.Context, string) (LocalAsset, error) {
	return l.asset, l.err
}

func reservationResponse(id string, operations string) string {
	return fmt.Sprintf(`{"data":{"type":"appScreenshots","id":%q,"attributes":{"fileName":"shot.png","fileSize":0,"uploadOperations":%s}}}`, id, operations)
}

func commitResponse(id, checksum string) string {
	return fmt.Sprintf(`{"data":{"type":"appScreenshots","id":%q,"attributes":{
		"fileName":"shot.png",
		"fileSize":10,
		"sourceFileChecksum":%q,
		"imageAsset":{"templateUrl":"https://is1-ssl.mzstatic.com/image/{w}x{h}bb.{f}","width":1284,"height":2778},
		"assetDeliveryState":{"state":"UPLOAD_COMPLETE","errors":[]}
	}}}`, id, checksum)
}
