package embeddings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Params carries credentials and addressing for an S3 (or S3-compatible)
// bucket. Endpoint is optional, set it for MinIO-style deployments.
type S3Params struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store reads embedding blobs from an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Store(ctx context.Context, params S3Params) (*S3Store, error) {
	if params.AccessKeyID == "" {
		return nil, fmt.Errorf("access key ID cannot be empty")
	}
	if params.SecretAccessKey == "" {
		return nil, fmt.Errorf("secret access key cannot be empty")
	}
	if params.Region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("bucket ID cannot be empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKeyID,
			params.SecretAccessKey,
			"",
		)),
		config.WithRegion(params.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if params.Endpoint != "" {
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(params.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some custom endpoints
		})
	} else {
		client = s3.NewFromConfig(cfg)
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(params.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", params.Bucket, err)
	}

	return &S3Store{
		client: client,
		bucket: params.Bucket,
		prefix: params.Prefix,
	}, nil
}

func (s *S3Store) key(id int64) string {
	return path.Join(s.prefix, IDToPath(id))
}

func (s *S3Store) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking embedding %d: %w", id, err)
}

func (s *S3Store) Fetch(ctx context.Context, id int64) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("opening embedding %d: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading embedding %d: %w", id, err)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}); err != nil {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

func (s *S3Store) Type() string {
	return "s3"
}
