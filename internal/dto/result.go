package dto

// TransformResult carries the re-encoded bytes plus the measured pixel
// dimensions of what was actually encoded.
type TransformResult struct {
	Data   []byte
	Width  int
	Height int
	Format string

	Thumbnail *ThumbnailResult
}

type ThumbnailResult struct {
	Data   []byte
	Width  int
	Height int
}
