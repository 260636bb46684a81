package model

import "time"

// Dataset is an uploaded multivariate time series.
// This is a pure domain model with no database-specific dependencies or tags.
// The raw CSV lives in object storage at StoragePath; Dimensions, Length and Labels
// describe the parsed series.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Layout      string    `json:"layout"`
	Dimensions  int       `json:"dimensions"`
	Length      int       `json:"length"`
	Labels      []string  `json:"labels"`
	CreatedAt   time.Time `json:"created_at"`
}
