package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore reads embedding blobs from a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

func NewGCSStore(ctx context.Context, credentialsJSON, bucketID, prefix string) (*GCSStore, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("credentials JSON string cannot be empty")
	}
	if bucketID == "" {
		return nil, fmt.Errorf("bucket ID cannot be empty")
	}

	var creds map[string]interface{}
	if err := json.Unmarshal([]byte(credentialsJSON), &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON format: %w", err)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	bucket := client.Bucket(bucketID)
	if _, err := bucket.Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to access bucket %s: %w", bucketID, err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *GCSStore) object(id int64) *storage.ObjectHandle {
	return s.bucket.Object(path.Join(s.prefix, IDToPath(id)))
}

func (s *GCSStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.object(id).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking embedding %d: %w", id, err)
}

func (s *GCSStore) Fetch(ctx context.Context, id int64) ([]byte, error) {
	reader, err := s.object(id).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("opening embedding %d: %w", id, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading embedding %d: %w", id, err)
	}
	return data, nil
}

func (s *GCSStore) Delete(ctx context.Context, id int64) error {
	if err := s.object(id).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

func (s *GCSStore) Type() string {
	return "gcs"
}

func (s *GCSStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
