package dto

// DeletePhotosRequest asks the server to remove photos from object storage
// on behalf of a client that only holds delivery URLs.
type DeletePhotosRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,url"`
}

// DeletePhotoResult reports the outcome for a single URL.
type DeletePhotoResult struct {
	URL     string `json:"url"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// DeletePhotosResponse aggregates per-URL outcomes.
type DeletePhotosResponse struct {
	Results []DeletePhotoResult `json:"results"`
}
