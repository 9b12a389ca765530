package entity

// ProcessedAsset is the durable output of one transformation. Content
// records reference it by URL only and never own it; the asset lives until
// an explicit delete keyed on that URL.
type ProcessedAsset struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`

	Thumbnail *ThumbnailAsset `json:"thumbnail,omitempty"`
}

// ThumbnailAsset is always derived from the already-transformed full-size
// bytes, so it can never exceed the main asset's dimensions.
type ThumbnailAsset struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
