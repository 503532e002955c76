package upload

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores images in a bucket that is publicly readable at PublicURL.
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3 loads the default AWS configuration for region. publicURL defaults
// to the bucket's virtual-hosted endpoint.
func NewS3(ctx context.Context, bucket, region, publicURL string) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3{client: s3.NewFromConfig(cfg), bucket: bucket, publicURL: publicURL}, nil
}

func (s *S3) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, name, err)
	}
	return nil
}

func (s *S3) URL(_, name string) string {
	return strings.TrimSuffix(s.publicURL, "/") + "/" + name
}

func (s *S3) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, name, err)
	}
	return nil
}
