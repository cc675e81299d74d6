package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Storage is an object store addressed by key.
type Storage interface {
	Put(ctx context.Context, key string, u *Upload) error
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a fully buffered file whose type has been sniffed.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Size returns the number of bytes in the upload.
func (u *Upload) Size() int64 { return int64(len(u.Data)) }

// Reader returns a fresh seekable reader over the data.
func (u *Upload) Reader() *bytes.Reader { return bytes.NewReader(u.Data) }

// Inspect buffers r up to maxSize bytes and checks the sniffed MIME type
// against allowed. An empty allowed list accepts everything.
func Inspect(r io.Reader, maxSize int64, allowed ...string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	if len(allowed) > 0 && !mimetype.EqualsAny(mt.String(), allowed...) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMIME, mt.String())
	}

	ct, _, _ := strings.Cut(mt.String(), ";")
	return &Upload{Data: data, ContentType: ct, Extension: mt.Extension()}, nil
}

// NewKey returns "<prefix>/<uuid><ext>".
func NewKey(prefix, ext string) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
}
