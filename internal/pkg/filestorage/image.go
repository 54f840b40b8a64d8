package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// PreparedFile is an upload ready to be written to a store
type PreparedFile struct {
	Data        []byte
	ContentType string
	Ext         string
}

// PrepareImage reads the upload, fixes EXIF orientation and shrinks it to fit
// MaxDimension. PNG stays PNG so signatures keep transparency, other images are
// re-encoded as JPEG. Files that are not decodable images are passed through.
func PrepareImage(fileHeader *multipart.FileHeader, opts ImageOptions) (*PreparedFile, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("uploaded file %q is empty", fileHeader.Filename)
	}

	contentType := http.DetectContentType(raw)
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return &PreparedFile{Data: raw, ContentType: contentType, Ext: strings.ToLower(filepath.Ext(fileHeader.Filename))}, nil
	}

	if limit := opts.MaxDimension; limit > 0 {
		b := img.Bounds()
		if b.Dx() > limit || b.Dy() > limit {
			img = imaging.Fit(img, limit, limit, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if contentType == "image/png" {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
		return &PreparedFile{Data: buf.Bytes(), ContentType: "image/png", Ext: ".png"}, nil
	}

	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return &PreparedFile{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: ".jpg"}, nil
}
