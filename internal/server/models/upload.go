package models

// Upload describes a stored (or about to be stored) object and a presigned URL
// for it.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
