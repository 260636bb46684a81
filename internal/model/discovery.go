package model

import (
	"time"

	"motifapi/internal/discovery"
)

// DiscoveryStatus is the lifecycle state of a discovery run.
type DiscoveryStatus string

const (
	StatusPending   DiscoveryStatus = "pending"
	StatusRunning   DiscoveryStatus = "running"
	StatusSucceeded DiscoveryStatus = "succeeded"
	StatusFailed    DiscoveryStatus = "failed"
)

// Terminal reports whether the run has finished.
func (s DiscoveryStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Discovery is a motif discovery run on a dataset. BestLength, Elbows and ResultPath
// are only set once the run succeeded; Error only once it failed.
type Discovery struct {
	ID         string           `json:"id"`
	DatasetID  string           `json:"dataset_id"`
	Mode       discovery.Mode   `json:"mode"`
	Status     DiscoveryStatus  `json:"status"`
	Params     discovery.Params `json:"params"`
	BestLength *int             `json:"best_length,omitempty"`
	Elbows     []int            `json:"elbows,omitempty"`
	ResultPath string           `json:"result_path,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}
