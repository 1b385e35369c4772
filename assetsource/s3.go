package assetsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config ...
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ErrS3ObjectNotFound ...
var ErrS3ObjectNotFound = errors.New("object not found in s3 bucket")

type s3Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

func parseS3URL(src string) (string, string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 url %s, expected s3://bucket/key", src)
	}
	return u.Host, key, nil
}

func (l *Loader) loadS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if l.s3 == nil {
		cfg, err := loadAWSCredentials(ctx, l.s3Config)
		if err != nil {
			return nil, fmt.Errorf("load aws credentials: %w", err)
		}
		if l.s3Config.AccessKeyID != "" {
			l.logger.Debugf("aws credentials provided, using them...")
		}
		l.s3 = manager.NewDownloader(s3.NewFromConfig(*cfg))
	}

	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := l.s3.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) {
			switch apiError.(type) {
			case *types.NoSuchKey, *types.NotFound:
				return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrS3ObjectNotFound)
			}
		}
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}

	return buf.Bytes(), nil
}

func loadAWSCredentials(ctx context.Context, s3Config S3Config) (*aws.Config, error) {
	if s3Config.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3Config.Region),
	}

	if s3Config.AccessKeyID != "" && s3Config.SecretAccessKey != "" {
		opts = append(opts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s3Config.AccessKeyID, s3Config.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %v", err)
	}

	return &cfg, nil
}
