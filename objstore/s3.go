package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 store.
type S3Config struct {
	// Region overrides the region from the environment.
	Region string

	// Endpoint points at an S3-compatible service such as MinIO.
	Endpoint string

	// UsePathStyle addresses buckets as path segments, which most
	// S3-compatible services need.
	UsePathStyle bool
}

// S3 is a Store backed by Amazon S3.
type S3 struct {
	client S3API
}

// NewS3 builds a store from the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3FromClient(client), nil
}

// NewS3FromClient wraps an existing client.
func NewS3FromClient(client S3API) *S3 {
	return &S3{client: client}
}

// Get downloads an object.
func (s *S3) Get(ctx context.Context, bucket, key string) (Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return Object{}, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return Object{}, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Object{}, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}

	return Object{
		Bucket:      bucket,
		Key:         key,
		Data:        data,
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// Put uploads an object.
func (s *S3) Put(ctx context.Context, obj Object) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
		Body:   bytes.NewReader(obj.Data),
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return nil
}
