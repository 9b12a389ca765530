// Package validate holds the upload policy: a fixed allow-list of raster
// image types and the strict size ceiling applied before any processing.
// Check is a pure function over declared metadata, it never inspects pixels.
package validate

import (
	"fmt"

	"github.com/communitycms/media-service/pkg/types/errs"
)

const (
	// MaxFileSize is the strict processing ceiling. The HTTP body limit is
	// looser (50 MB) so large originals can still be compressed down.
	MaxFileSize int64 = 10 * 1024 * 1024

	MinQuality int = 1
	MaxQuality int = 100

	MinMaxWidth int = 16
	MaxMaxWidth int = 10000
)

var (
	AllowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}

	AllowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

// Check validates declared media type and byte length against policy.
func Check(contentType string, size int64) error {
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s", errs.ErrInvalidMediaType, contentType)
	}

	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", errs.ErrFileTooLarge, size, MaxFileSize)
	}

	return nil
}
