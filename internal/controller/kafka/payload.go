package kafka

// DeleteCommandPayload is published by the CMS when a content record drops
// or replaces a media reference; url is the asset's canonical URL.
type DeleteCommandPayload struct {
	URL string `json:"url"`
}
