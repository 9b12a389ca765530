package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// webp decode support for image.Decode
	_ "golang.org/x/image/webp"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/pkg/types/errs"
)

const (
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"

	// quality floor for the target-size search
	minSearchQuality = 40
)

type Transformer struct {
}

func New() *Transformer {
	return &Transformer{}
}

// Transform decodes the validated buffer (EXIF orientation applied),
// shrinks it to fit inside MaxWidth x MaxHeight without upscaling or
// cropping, re-encodes it into the target format and, when requested,
// derives a thumbnail from the already-encoded output.
func (t *Transformer) Transform(ctx context.Context, data []byte, opts dto.ProcessOptions) (*dto.TransformResult, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("Transformer - Transform - decodeImage: %w", err)
	}

	img = fitInside(img, opts.MaxWidth, opts.MaxHeight)

	encoded, err := t.encodeToTarget(img, opts)
	if err != nil {
		return nil, fmt.Errorf("Transformer - Transform - t.encodeToTarget: %w", err)
	}

	bounds := img.Bounds()
	result := &dto.TransformResult{
		Data:   encoded,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: opts.OutputFormat,
	}

	if opts.GenerateThumbnail {
		thumb, err := t.thumbnail(encoded, opts)
		if err != nil {
			return nil, fmt.Errorf("Transformer - Transform - t.thumbnail: %w", err)
		}
		result.Thumbnail = thumb
	}

	return result, nil
}

// thumbnail re-decodes the encoded main output, so it inherits the main
// asset's dimensions and format instead of the original upload's.
func (t *Transformer) thumbnail(encoded []byte, opts dto.ProcessOptions) (*dto.ThumbnailResult, error) {
	src, err := decodeImage(encoded)
	if err != nil {
		return nil, fmt.Errorf("Transformer - thumbnail - decodeImage: %w", err)
	}

	if src.Bounds().Dx() > opts.ThumbnailWidth {
		src = imaging.Resize(src, opts.ThumbnailWidth, 0, imaging.Lanczos)
	}

	data, err := encodeImage(src, opts.OutputFormat, opts.ThumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("Transformer - thumbnail - encodeImage: %w", err)
	}

	bounds := src.Bounds()

	return &dto.ThumbnailResult{
		Data:   data,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// encodeToTarget encodes at the requested quality; when TargetSizeKB is set
// for a lossy format it binary-searches quality down to minSearchQuality,
// keeping the best encoding that fits. If even the floor exceeds the target
// the floor encoding is returned and the caller reports the true size.
func (t *Transformer) encodeToTarget(img image.Image, opts dto.ProcessOptions) ([]byte, error) {
	encoded, err := encodeImage(img, opts.OutputFormat, opts.Quality)
	if err != nil {
		return nil, err
	}

	if opts.TargetSizeKB <= 0 || !lossy(opts.OutputFormat) {
		return encoded, nil
	}

	target := opts.TargetSizeKB * 1024
	if len(encoded) <= target {
		return encoded, nil
	}

	lo, hi := minSearchQuality, opts.Quality-1
	var best []byte

	for lo <= hi {
		mid := (lo + hi) / 2

		candidate, err := encodeImage(img, opts.OutputFormat, mid)
		if err != nil {
			return nil, err
		}

		if len(candidate) <= target {
			best = candidate
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if best != nil {
		return best, nil
	}

	// nothing fits, return the floor encoding
	return encodeImage(img, opts.OutputFormat, minSearchQuality)
}

// fitInside shrinks img so neither dimension exceeds the bounding box,
// preserving aspect ratio. Smaller-than-target images pass through.
func fitInside(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth && bounds.Dy() <= maxHeight {
		return img
	}

	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

func lossy(format string) bool {
	return format == FormatWebP || format == FormatJPEG
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("Transformer - decodeImage - imaging.Decode: %w: %v", errs.ErrDecode, err)
	}

	return img, nil
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, fmt.Errorf("Transformer - encodeImage - encoder.NewLossyEncoderOptions: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("Transformer - encodeImage - webp.Encode: %w", err)
		}
	case FormatJPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("Transformer - encodeImage - imaging.Encode: %w", err)
		}
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("Transformer - encodeImage - imaging.Encode: %w", err)
		}
	case FormatGIF:
		if err := imaging.Encode(&buf, img, imaging.GIF); err != nil {
			return nil, fmt.Errorf("Transformer - encodeImage - imaging.Encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("Transformer - encodeImage: %w: %s", errs.ErrUnknownFormat, format)
	}

	return buf.Bytes(), nil
}
