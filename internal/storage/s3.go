package storage

import (
	"bitwise74/emotube/config"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	minMultipartSize = 12 << 20
	maxDeleteKeys    = 1000
)

// S3 stores media in an S3 compatible bucket. Setting s3.endpoint points it at
// R2 or any other compatible provider.
type S3 struct {
	C         *s3.Client
	Bucket    *string
	PublicURL string
}

func NewS3(ctx context.Context, c *config.Config) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3.AccessKeyID,
			c.S3.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(c.S3.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = c.S3.Region
		if c.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:         client,
		Bucket:    bucket,
		PublicURL: strings.TrimSuffix(c.Storage.PublicURL, "/"),
	}, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = uploader.Upload(ctx, input)
	} else {
		_, err = s.C.PutObject(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("failed to upload %s, %w", key, err)
	}

	return nil
}

// Delete removes keys in batches, DeleteObjects takes at most
// maxDeleteKeys per request. Every batch is attempted even if one fails.
func (s *S3) Delete(ctx context.Context, keys ...string) error {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}
	}

	var errs []error
	for batch := range slices.Chunk(objects, maxDeleteKeys) {
		if err := s.deleteBatch(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *S3) deleteBatch(ctx context.Context, objects []types.ObjectIdentifier) error {
	out, err := s.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: s.Bucket,
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects, %w", err)
	}

	for _, e := range out.Errors {
		zap.L().Error("Failed to delete object", zap.String("key", aws.ToString(e.Key)), zap.String("error", aws.ToString(e.Message)))
	}

	if len(out.Errors) > 0 {
		return fmt.Errorf("failed to delete %d objects", len(out.Errors))
	}

	return nil
}

func (s *S3) URL(key string) string {
	return s.PublicURL + "/" + key
}
