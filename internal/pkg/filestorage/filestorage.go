// Package filestorage uploads student media (photos, signatures, guardian photos)
// to a hosted store and returns the public URL.
package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/svpddu/studentrecords/internal/config"
)

// MediaStore persists an uploaded file under folder and returns its public URL
type MediaStore interface {
	Upload(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error)
}

// ImageOptions controls how uploads are normalised before storage
type ImageOptions struct {
	MaxDimension int
	JPEGQuality  int
}

func imageOptionsFrom(cfg *config.Config) ImageOptions {
	return ImageOptions{
		MaxDimension: cfg.Media.MaxDimension,
		JPEGQuality:  cfg.Media.JPEGQuality,
	}
}

// NewMediaStore builds the store selected by media.provider
func NewMediaStore(cfg *config.Config) (MediaStore, error) {
	opts := imageOptionsFrom(cfg)

	switch cfg.Media.Provider {
	case config.MediaCloudinary:
		c := cfg.Media.Cloudinary
		return NewCloudinaryStore(c.CloudName, c.APIKey, c.APISecret, opts)
	case config.MediaOSS:
		o := cfg.Media.OSS
		return NewOSSStore(OSSConfig{
			Endpoint:      o.Endpoint,
			AccessKeyID:   o.AccessKeyID,
			AccessSecret:  o.AccessSecret,
			Bucket:        o.Bucket,
			PublicBaseURL: o.PublicBaseURL,
		}, opts)
	case config.MediaLocal:
		return NewLocalStorage(cfg.Media.Local.StoragePath, cfg.Media.Local.BaseURL, opts)
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Media.Provider)
	}
}
