package transform

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/communitycms/media-service/internal/dto"
	"github.com/communitycms/media-service/pkg/types/errs"
)

// testImage encodes a width x height image with some pixel variance so that
// lossy quality levels actually change the output size.
func testImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	return buf.Bytes()
}

func jpegImage(t *testing.T, width, height int) []byte {
	t.Helper()
	return testImage(t, width, height, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	})
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	return testImage(t, width, height, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}

	return cfg.Width, cfg.Height
}

func TestTransform_ShrinksToFit(t *testing.T) {
	tr := New()

	result, err := tr.Transform(context.Background(), jpegImage(t, 3200, 1600), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatJPEG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Width != 1600 || result.Height != 800 {
		t.Errorf("expected 1600x800, got %dx%d", result.Width, result.Height)
	}

	w, h := decodeDims(t, result.Data)
	if w != result.Width || h != result.Height {
		t.Errorf("reported dimensions %dx%d disagree with encoded %dx%d", result.Width, result.Height, w, h)
	}

	if result.Format != FormatJPEG {
		t.Errorf("expected format %q, got %q", FormatJPEG, result.Format)
	}
}

func TestTransform_NeverUpscales(t *testing.T) {
	tr := New()

	result, err := tr.Transform(context.Background(), pngImage(t, 300, 200), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatPNG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Width != 300 || result.Height != 200 {
		t.Errorf("small image was resized to %dx%d", result.Width, result.Height)
	}
}

func TestTransform_ExactBoundaryPassesThrough(t *testing.T) {
	tr := New()

	result, err := tr.Transform(context.Background(), jpegImage(t, 1600, 1600), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatJPEG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Width != 1600 || result.Height != 1600 {
		t.Errorf("boundary image was resized to %dx%d", result.Width, result.Height)
	}
}

func TestTransform_Thumbnail(t *testing.T) {
	tr := New()

	result, err := tr.Transform(context.Background(), jpegImage(t, 2000, 1000), dto.ProcessOptions{
		MaxWidth:          1600,
		MaxHeight:         1600,
		Quality:           80,
		OutputFormat:      FormatJPEG,
		GenerateThumbnail: true,
		ThumbnailWidth:    500,
		ThumbnailQuality:  75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Thumbnail == nil {
		t.Fatal("expected a thumbnail")
	}

	if result.Thumbnail.Width != 500 {
		t.Errorf("expected thumbnail width 500, got %d", result.Thumbnail.Width)
	}

	if result.Thumbnail.Height != 250 {
		t.Errorf("expected thumbnail height 250, got %d", result.Thumbnail.Height)
	}
}

func TestTransform_ThumbnailNotUpscaled(t *testing.T) {
	tr := New()

	result, err := tr.Transform(context.Background(), jpegImage(t, 400, 300), dto.ProcessOptions{
		MaxWidth:          1600,
		MaxHeight:         1600,
		Quality:           80,
		OutputFormat:      FormatJPEG,
		GenerateThumbnail: true,
		ThumbnailWidth:    500,
		ThumbnailQuality:  75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Thumbnail == nil {
		t.Fatal("expected a thumbnail")
	}

	if result.Thumbnail.Width != 400 || result.Thumbnail.Height != 300 {
		t.Errorf("thumbnail was upscaled to %dx%d", result.Thumbnail.Width, result.Thumbnail.Height)
	}
}

func TestTransform_TargetSize(t *testing.T) {
	tr := New()

	unconstrained, err := tr.Transform(context.Background(), jpegImage(t, 1600, 1600), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      95,
		OutputFormat: FormatJPEG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	targetKB := len(unconstrained.Data) / 2048 // half the unconstrained size
	if targetKB < 1 {
		t.Skip("unconstrained encoding too small to constrain further")
	}

	constrained, err := tr.Transform(context.Background(), jpegImage(t, 1600, 1600), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      95,
		OutputFormat: FormatJPEG,
		TargetSizeKB: targetKB,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(constrained.Data) >= len(unconstrained.Data) {
		t.Errorf("target size had no effect: %d >= %d bytes", len(constrained.Data), len(unconstrained.Data))
	}
}

func TestTransform_TargetSizeIgnoredForLossless(t *testing.T) {
	tr := New()

	a, err := tr.Transform(context.Background(), pngImage(t, 800, 800), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatPNG,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := tr.Transform(context.Background(), pngImage(t, 800, 800), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatPNG,
		TargetSizeKB: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.Data) != len(b.Data) {
		t.Errorf("lossless output changed under a size target: %d vs %d bytes", len(a.Data), len(b.Data))
	}
}

func TestTransform_RejectsGarbage(t *testing.T) {
	tr := New()

	_, err := tr.Transform(context.Background(), []byte("definitely not an image"), dto.ProcessOptions{
		MaxWidth:     1600,
		MaxHeight:    1600,
		Quality:      80,
		OutputFormat: FormatJPEG,
	})
	if !errors.Is(err, errs.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestEncodeImage_UnknownFormat(t *testing.T) {
	_, err := encodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), "tiff", 80)
	if !errors.Is(err, errs.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
