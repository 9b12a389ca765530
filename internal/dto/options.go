package dto

// ProcessOptions controls one transformation pass.
type ProcessOptions struct {
	MaxWidth          int
	MaxHeight         int
	Quality           int // 1-100, lossy encoder parameter
	OutputFormat      string
	GenerateThumbnail bool
	ThumbnailWidth    int
	ThumbnailQuality  int
	TargetSizeKB      int // 0 disables the quality search
}
