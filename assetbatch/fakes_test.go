package assetbatch

import (
	"context"
	"fmt"

	"github.com/bitrise-io/go-assetupload/assetupload"
	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/stretchr/testify/mock"
)

type fakeEnvRepo struct {
	envVars map[string]string
}

func (repo fakeEnvRepo) Get(key string) string {
	value, ok := repo.envVars[key]
	if ok {
		return value
	} else {
		return ""
	}
}

func (repo fakeEnvRepo) Set(key, value string) error {
	repo.envVars[key] = value
	return nil
}

func (repo fakeEnvRepo) Unset(key string) error {
	repo.envVars[key] = ""
	return nil
}

func (repo fakeEnvRepo) List() []string {
	envs := []string{}
	for k, v := range repo.envVars {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	return envs
}

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) Enqueue(eventName string, properties ...analytics.Properties) {
	m.Called(eventName, properties)
}

func (m *mockTracker) Wait() {
	m.Called()
}

type fakeFileUploader struct {
	failures map[string]error
	uploaded []string
}

func (u *fakeFileUploader) UploadFile(_ context.Context, kind assetupload.AssetKind, setID, path string) (assetupload.Asset, error) {
	if err, ok := u.failures[path]; ok {
		return assetupload.Asset{}, err
	}
	u.uploaded = append(u.uploaded, path)
	return assetupload.Asset{
		ID:       fmt.Sprintf("asset-%d", len(u.uploaded)),
		Type:     kind.ResourceType,
		FileName: path,
		AssetDeliveryState: &assetupload.AssetDeliveryState{
			State: "UPLOAD_COMPLETE",
		},
	}, nil
}
