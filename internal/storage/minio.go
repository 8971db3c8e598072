// Package storage stores rendered videos and intermediate artifacts in a
// MinIO (S3-compatible) bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DJIMIGA/latigue/internal/config"
)

// Categories group a job's objects under its prefix.
const (
	CategoryFinal    = "final"
	CategorySegments = "segments"
	CategoryAudio    = "audio"
	CategoryAssets   = "assets"
)

// Client wraps a MinIO connection scoped to one bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient connects to MinIO and ensures the bucket exists. Bucket creation
// is idempotent; two services booting at once both succeed.
func NewClient(ctx context.Context, cfg config.Settings) (*Client, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT must be set")
	}

	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to minio: %w", err)
	}

	c := &Client{mc: mc, bucket: cfg.MinioBucket}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		// Lost a creation race; the bucket being there is all that matters.
		exists, checkErr := c.mc.BucketExists(ctx, c.bucket)
		if checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}
	config.Log.WithField("bucket", c.bucket).Info("Created storage bucket")
	return nil
}

// ObjectKey builds the canonical key for a job artifact:
// jobs/<job id>/<category>/<name stem>_<timestamp><ext>. The timestamp keeps
// re-uploads from clobbering earlier renders.
func ObjectKey(jobID, category, filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	ts := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("jobs/%s/%s/%s_%s%s", jobID, category, stem, ts, ext)
}

// UploadFile stores a local file and returns its object key.
func (c *Client) UploadFile(ctx context.Context, jobID, category, localPath string) (string, error) {
	key := ObjectKey(jobID, category, localPath)
	_, err := c.mc.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}
	config.Log.WithFields(map[string]interface{}{
		"bucket": c.bucket,
		"key":    key,
	}).Info("Uploaded object")
	return key, nil
}

// UploadBytes stores an in-memory artifact under the given filename.
func (c *Client) UploadBytes(ctx context.Context, jobID, category, filename string, data []byte) (string, error) {
	key := ObjectKey(jobID, category, filename)
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeFor(filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return key, nil
}

// DownloadFile fetches an object to a local path.
func (c *Client) DownloadFile(ctx context.Context, key, localPath string) error {
	if err := c.mc.FGetObject(ctx, c.bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ListJobObjects lists all keys stored under one job's prefix.
func (c *Client) ListJobObjects(ctx context.Context, jobID string) ([]string, error) {
	prefix := fmt.Sprintf("jobs/%s/", jobID)
	var keys []string
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects for job %s: %w", jobID, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// PresignedURL returns a time-limited download URL for an object.
func (c *Client) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".srt":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
