package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/pkg/logger"
)

// MinioObjectStore 以 JSON 读写对象
type MinioObjectStore struct {
	client *minio.Client
	bucket string
}

func NewMinioObjectStore(client *minio.Client, bucket string) *MinioObjectStore {
	return &MinioObjectStore{client: client, bucket: bucket}
}

func (s *MinioObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %s failed: %w", path, err)
}

func (s *MinioObjectStore) ReadJSON(ctx context.Context, path string, out interface{}) error {
	object, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return s.readError(path, err)
	}
	defer object.Close()

	if _, err := object.Stat(); err != nil {
		return s.readError(path, err)
	}
	if err := json.NewDecoder(object).Decode(out); err != nil {
		return fmt.Errorf("decode object %s failed: %w", path, err)
	}
	return nil
}

func (s *MinioObjectStore) WriteJSON(ctx context.Context, path string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode object %s failed: %w", path, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		logger.Error("Failed to upload object to MinIO", map[string]interface{}{
			"bucket":     s.bucket,
			"object_key": path,
			"error":      err.Error(),
		})
		return fmt.Errorf("put object %s failed: %w", path, err)
	}
	logger.Info("Object uploaded", map[string]interface{}{
		"bucket":     s.bucket,
		"object_key": path,
		"size":       len(body),
	})
	return nil
}

func (s *MinioObjectStore) readError(path string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", path, gateway.ErrObjectNotFound)
	}
	return fmt.Errorf("get object %s failed: %w", path, err)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound
}
