package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

const fileNameMetaKey = "X-Amz-Meta-Filename"

// S3Provider serves the feed from a self-hosted bucket instead of the
// hosted file service. The original file name travels in object user
// metadata so renames do not move objects.
type S3Provider struct {
	client *minio.Client
	bucket string
}

func NewS3Provider(client *minio.Client, bucket string) *S3Provider {
	return &S3Provider{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (p *S3Provider) ListFiles(ctx context.Context, limit int) ([]FileRecord, error) {
	if p.client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	records := make([]FileRecord, 0, limit)
	objects := p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{
		Recursive:    true,
		WithMetadata: true,
	})

	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("list bucket objects: %w", object.Err)
		}

		records = append(records, FileRecord{
			Key:        object.Key,
			Name:       objectFileName(object),
			Size:       object.Size,
			UploadedAt: FlexTime{Value: object.LastModified.UTC()},
		})
		if len(records) >= limit {
			break
		}
	}

	return records, nil
}

// RenameFile rewrites the object's filename metadata in place via a
// server-side copy. The object key, and therefore all generated URLs,
// stays stable.
func (p *S3Provider) RenameFile(ctx context.Context, key, newName string) error {
	if p.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if key == "" || strings.TrimSpace(newName) == "" {
		return fmt.Errorf("rename requires key and new name")
	}

	_, err := p.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          p.bucket,
			Object:          key,
			UserMetadata:    map[string]string{"filename": newName},
			ReplaceMetadata: true,
		},
		minio.CopySrcOptions{
			Bucket: p.bucket,
			Object: key,
		},
	)
	if err != nil {
		return fmt.Errorf("rewrite object metadata: %w", err)
	}

	return nil
}

func (p *S3Provider) DeleteFile(ctx context.Context, key string) error {
	if p.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if key == "" {
		return nil
	}
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func objectFileName(object minio.ObjectInfo) string {
	if name := object.UserMetadata[fileNameMetaKey]; name != "" {
		return name
	}
	return path.Base(object.Key)
}

var _ Provider = (*S3Provider)(nil)
