package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hallday/hallday-api/internal/gallery"
	"github.com/hallday/hallday-api/internal/pkg/imaging"
)

// PhotoUploader adapts a Storage backend to the gallery's upload contract.
// It validates staged files from content, downscales oversized images, and
// stores them under unique keys.
type PhotoUploader struct {
	storage   Storage
	processor *imaging.Processor
	maxSize   int64
}

// NewPhotoUploader creates a photo uploader over the given backend.
func NewPhotoUploader(st Storage, processor *imaging.Processor, maxSize int64) *PhotoUploader {
	return &PhotoUploader{
		storage:   st,
		processor: processor,
		maxSize:   maxSize,
	}
}

// Upload validates, processes and stores one staged file, returning its
// public URL. destPath is a logical hint ("halls/12/main"); the final key adds
// a random component so replacing a photo never overwrites the old object.
func (u *PhotoUploader) Upload(ctx context.Context, file *gallery.File, destPath string) (string, error) {
	reader, err := file.Reader()
	if err != nil {
		return "", err
	}

	data, mimeType, err := ValidateImage(reader, u.maxSize)
	if err != nil {
		return "", fmt.Errorf("invalid photo %q: %w", file.Name, err)
	}

	if u.processor != nil {
		processed, err := u.processor.Process(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to process photo %q: %w", file.Name, err)
		}
		data = processed.Data
		mimeType = processed.ContentType
	}

	key := path.Join(destPath, uuid.New().String()+ExtensionForMime(mimeType))

	if err := u.storage.Put(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return "", err
	}

	url := u.storage.GetURL(key)

	log.Debug().
		Str("key", key).
		Str("content_type", mimeType).
		Int("size", len(data)).
		Msg("Photo uploaded")

	return url, nil
}
