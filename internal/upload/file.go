// Package upload implements the single-file drug-scan lifecycle: validation
// of the selected image, a revocable preview for it, and one asynchronous
// recognition request at a time.
package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the largest accepted upload.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrInvalidType = errors.New("please select a valid image file")
	ErrTooLarge    = errors.New("file size must be less than 10MB")
	ErrNotSelected = errors.New("no file selected")
	ErrInFlight    = errors.New("a submission is already in progress")
	ErrSuperseded  = errors.New("submission superseded by a newer selection")
	ErrClosed      = errors.New("upload session closed")
)

// File is a selected upload held in memory.
type File struct {
	Name        string
	ContentType string // as declared by the browser
	Data        []byte
}

// Size returns the file length in bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Validate checks that f is an image no larger than maxBytes. Both the
// declared type and the sniffed content must be image/*. It returns the
// sniffed MIME type on success.
func Validate(f File, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	declared := strings.ToLower(strings.TrimSpace(f.ContentType))
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", ErrInvalidType
	}
	if f.Size() > maxBytes {
		if maxBytes == DefaultMaxBytes {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, maxBytes)
	}
	if f.Size() == 0 {
		return "", ErrInvalidType
	}
	sniffed := mimetype.Detect(f.Data)
	if !strings.HasPrefix(sniffed.String(), "image/") {
		return "", ErrInvalidType
	}
	return sniffed.String(), nil
}
