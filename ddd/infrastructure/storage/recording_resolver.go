package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/errno"
)

// PresignedRecordingResolver 为录像生成限时下载地址，供转写服务直接拉取
type PresignedRecordingResolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewPresignedRecordingResolver(client *minio.Client, bucket string, expiry time.Duration) *PresignedRecordingResolver {
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	return &PresignedRecordingResolver{client: client, bucket: bucket, expiry: expiry}
}

func (r *PresignedRecordingResolver) ResolveRecordingURL(ctx context.Context, livestream *entity.LivestreamEntity) (string, error) {
	if livestream.RecordingToken() == "" {
		return "", errno.New(errno.ErrRecordingTokenMissing, livestream.ID(), nil)
	}
	key := vo.RecordingObjectPath(livestream.ID(), livestream.RecordingToken())
	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign recording %s failed: %w", key, err)
	}
	return u.String(), nil
}
