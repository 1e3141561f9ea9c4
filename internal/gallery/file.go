package gallery

import (
	"fmt"
	"io"
)

// File is a photo file staged for upload. It owns the underlying reader for
// the lifetime of its slot: Release closes the reader exactly once, when the
// slot leaves the pending state (replaced, removed) or the editor is closed.
type File struct {
	Name        string
	Size        int64
	ContentType string

	reader   io.ReadCloser
	released bool
}

// NewFile wraps a staged upload. The editor takes ownership of the reader.
func NewFile(name string, size int64, contentType string, reader io.ReadCloser) *File {
	return &File{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		reader:      reader,
	}
}

// Reader returns the file content positioned at the start. Multipart uploads
// are seekable, so a resolution retry after a failed upload re-reads the same
// staged bytes without the client re-selecting the file.
func (f *File) Reader() (io.Reader, error) {
	if f.released {
		return nil, fmt.Errorf("staged file %q already released", f.Name)
	}
	if seeker, ok := f.reader.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind staged file %q: %w", f.Name, err)
		}
	}
	return f.reader, nil
}

// Release closes the underlying reader. Safe to call more than once; only the
// first call closes.
func (f *File) Release() {
	if f.released {
		return
	}
	f.released = true
	if f.reader != nil {
		f.reader.Close()
	}
}

// Released reports whether the file has been released.
func (f *File) Released() bool { return f.released }
