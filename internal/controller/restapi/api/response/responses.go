package response

import "github.com/communitycms/media-service/internal/entity"

type Error struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Upload struct {
	Success bool       `json:"success"`
	Data    UploadData `json:"data"`
}

type UploadData struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Format       string `json:"format"`
}

type Migration struct {
	Message string                    `json:"message"`
	Total   int                       `json:"total"`
	Fixed   int                       `json:"fixed"`
	Failed  int                       `json:"failed"`
	Results []entity.MigrationOutcome `json:"results"`
}
