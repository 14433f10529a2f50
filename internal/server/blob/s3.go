package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/avicente/cardholder/internal/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client used here, extracted for tests.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes avatars to an S3 bucket. When baseEndpoint is set the store
// targets an S3-compatible backend (e.g. MinIO) and shapes locators from that
// endpoint instead of the AWS URL form.
type S3Store struct {
	client       S3API
	bucket       string
	region       string
	baseEndpoint string
}

func NewS3Store(client S3API, bucket, region, baseEndpoint string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, baseEndpoint: baseEndpoint}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: putting object: %v", common.ErrorDependency, err)
	}
	return s.locator(key), nil
}

func (s *S3Store) locator(key string) string {
	if s.baseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.baseEndpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
