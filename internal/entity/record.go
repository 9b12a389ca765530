package entity

// ContentRecord is the narrow view of an external CMS row this service is
// allowed to see: the row id and its media column value, which holds either
// a canonical /api/uploads URL or a legacy inline data URI.
type ContentRecord struct {
	ID    int64  `json:"id"`
	Media string `json:"media"`
}
