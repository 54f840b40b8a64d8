package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// LocalStorage saves media to the local filesystem, served under /uploads
type LocalStorage struct {
	basePath string
	baseURL  string
	opts     ImageOptions
}

// NewLocalStorage creates a new LocalStorage instance.
// baseURL is optional; without it relative "uploads/..." paths are returned.
func NewLocalStorage(basePath, baseURL string, opts ImageOptions) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath, baseURL: baseURL, opts: opts}, nil
}

// Upload stores the file under folder with a random name
func (ls *LocalStorage) Upload(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prepared, err := PrepareImage(fileHeader, ls.opts)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + prepared.Ext
	dstPath := filepath.Join(dir, name)
	if err := os.WriteFile(dstPath, prepared.Data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := path.Join(folder, name)
	var url string
	if ls.baseURL != "" {
		url = strings.TrimRight(ls.baseURL, "/") + "/" + rel
	} else {
		url = path.Join("uploads", rel)
	}

	logger.Debug().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved locally")
	return url, nil
}
