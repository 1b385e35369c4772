package assetbatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-assetupload/assetsource"
	"github.com/bitrise-io/go-assetupload/assetupload"
	"github.com/bitrise-io/go-assetupload/assetupload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/env"
)

const (
	apiURLEnvKey            = "ASC_API_URL"
	apiTokenEnvKey          = "ASC_API_TOKEN"
	uploadConcurrencyEnvKey = "ASC_UPLOAD_CONCURRENCY"
	setIDEnvKey             = "ASSET_SET_ID"
	kindEnvKey              = "ASSET_KIND"
	pathsEnvKey             = "ASSET_PATHS"
	awsRegionEnvKey         = "AWS_REGION"
	awsAccessKeyIDEnvKey    = "AWS_ACCESS_KEY_ID"
	awsSecretKeyEnvKey      = "AWS_SECRET_ACCESS_KEY"
)

// Config describes a batch of assets uploaded into the same asset set.
type Config struct {
	APIBaseURL string
	APIToken   string
	SetID      string
	Kind       assetupload.AssetKind
	// Paths are local paths, doublestar glob patterns (`screenshots/**/*.png`) or
	// remote sources understood by assetsource (https://, s3://).
	Paths []string
	// Concurrency is the number of chunks of a single asset transferred in parallel.
	// Defaults to chunkuploader.DefaultConcurrency when ASC_UPLOAD_CONCURRENCY is unset.
	Concurrency int
	S3          assetsource.S3Config
}

// ConfigFromEnv reads the batch configuration from the environment.
func ConfigFromEnv(envRepo env.Repository) (Config, error) {
	token := envRepo.Get(apiTokenEnvKey)
	if token == "" {
		return Config{}, fmt.Errorf("the secret '%s' is not defined", apiTokenEnvKey)
	}

	setID := strings.TrimSpace(envRepo.Get(setIDEnvKey))
	if setID == "" {
		return Config{}, fmt.Errorf("%s should not be empty", setIDEnvKey)
	}

	kind, err := assetupload.ParseAssetKind(strings.TrimSpace(envRepo.Get(kindEnvKey)))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", kindEnvKey, err)
	}

	paths := parsePaths(envRepo.Get(pathsEnvKey))
	if len(paths) == 0 {
		return Config{}, fmt.Errorf("%s should not be empty", pathsEnvKey)
	}

	concurrency := chunkuploader.DefaultConfig().Concurrency
	if value := strings.TrimSpace(envRepo.Get(uploadConcurrencyEnvKey)); value != "" {
		concurrency, err = strconv.Atoi(value)
		if err != nil || concurrency < 1 {
			return Config{}, fmt.Errorf("%s should be a positive integer, got: %s", uploadConcurrencyEnvKey, value)
		}
	}

	return Config{
		APIBaseURL:  envRepo.Get(apiURLEnvKey),
		APIToken:    token,
		SetID:       setID,
		Kind:        kind,
		Paths:       paths,
		Concurrency: concurrency,
		S3: assetsource.S3Config{
			Region:          envRepo.Get(awsRegionEnvKey),
			AccessKeyID:     envRepo.Get(awsAccessKeyIDEnvKey),
			SecretAccessKey: envRepo.Get(awsSecretKeyEnvKey),
		},
	}, nil
}

func parsePaths(value string) []string {
	var paths []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
