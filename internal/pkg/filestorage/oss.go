package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// OSSConfig holds Alibaba Cloud OSS settings
type OSSConfig struct {
	Endpoint      string
	AccessKeyID   string
	AccessSecret  string
	Bucket        string
	PublicBaseURL string
}

// OSSStore uploads media to an OSS bucket
type OSSStore struct {
	bucket *oss.Bucket
	cfg    OSSConfig
	opts   ImageOptions
}

// NewOSSStore connects to the bucket
func NewOSSStore(cfg OSSConfig, opts ImageOptions) (*OSSStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return &OSSStore{bucket: bucket, cfg: cfg, opts: opts}, nil
}

// Upload writes the file to folder/yyyy/mm/<uuid>.<ext> and returns its public URL
func (s *OSSStore) Upload(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	prepared, err := PrepareImage(fileHeader, s.opts)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, time.Now(), prepared.Ext)
	err = s.bucket.PutObject(key, bytes.NewReader(prepared.Data),
		oss.WithContext(ctx),
		oss.ContentType(prepared.ContentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("OSS upload failed")
		return "", fmt.Errorf("oss upload: %w", err)
	}
	return publicURL(s.cfg, key), nil
}

func objectKey(folder string, now time.Time, ext string) string {
	return path.Join(strings.Trim(folder, "/"), now.Format("2006/01"), uuid.New().String()+ext)
}

func publicURL(cfg OSSConfig, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", cfg.Bucket, end, key)
}
