package storage

import (
	"bytes"
	"errors"
	"testing"
)

// Minimal JPEG magic bytes followed by padding so DetectContentType sniffs
// image/jpeg.
func jpegBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

func TestValidateImage(t *testing.T) {
	data, mime, err := ValidateImage(bytes.NewReader(jpegBytes(512)), 1024)
	if err != nil {
		t.Fatalf("ValidateImage() error = %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
	if len(data) != 512 {
		t.Errorf("buffered %d bytes, want 512", len(data))
	}
}

func TestValidateImageTooLarge(t *testing.T) {
	_, _, err := ValidateImage(bytes.NewReader(jpegBytes(2048)), 1024)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("error = %v, want ErrFileTooLarge", err)
	}
}

func TestValidateImageEmpty(t *testing.T) {
	_, _, err := ValidateImage(bytes.NewReader(nil), 1024)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("error = %v, want ErrEmptyFile", err)
	}
}

func TestValidateImageRejectsNonImages(t *testing.T) {
	_, _, err := ValidateImage(bytes.NewReader([]byte("<!DOCTYPE html><html></html>")), 1024)
	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("error = %v, want ErrInvalidMimeType", err)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"text/plain": "",
	}
	for mime, want := range cases {
		if got := ExtensionForMime(mime); got != want {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", mime, got, want)
		}
	}
}
