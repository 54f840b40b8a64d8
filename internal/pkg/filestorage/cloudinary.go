package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// CloudinaryStore uploads media to a Cloudinary account
type CloudinaryStore struct {
	cld  *cloudinary.Cloudinary
	opts ImageOptions
}

// NewCloudinaryStore creates a store from account credentials
func NewCloudinaryStore(cloudName, apiKey, apiSecret string, opts ImageOptions) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, opts: opts}, nil
}

// Upload sends the normalised file to folder and returns its secure URL
func (s *CloudinaryStore) Upload(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	prepared, err := PrepareImage(fileHeader, s.opts)
	if err != nil {
		return "", err
	}

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(prepared.Data), uploader.UploadParams{Folder: folder})
	if err != nil {
		logger.Error().Err(err).Str("folder", folder).Str("filename", fileHeader.Filename).Msg("Cloudinary upload failed")
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		logger.Error().Str("folder", folder).Str("cloudinaryError", res.Error.Message).Msg("Cloudinary rejected upload")
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}
