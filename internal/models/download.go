package models

import "time"

// DownloadRecord tracks the lifecycle of one simulated file download.
// Transitions are forward only: queued -> in_progress -> completed/failed.
// A failed record may go back to queued via an explicit retry, which
// resets the byte counters.
type DownloadRecord struct {
	ID         string    `boltholdKey:"ID" json:"id"`
	Title      string    `json:"title"`
	MediaType  MediaType `json:"media_type"`
	PosterPath string    `json:"poster_path,omitempty"`
	SourceURL  string    `json:"source_url"`

	Status        DownloadStatus `boltholdIndex:"Status" json:"status"`
	BytesReceived int64          `json:"bytes_received"`
	BytesTotal    int64          `json:"bytes_total"` // <= 0 means unknown
	Throughput    float64        `json:"throughput"`  // bytes/sec, sampled
	FailureReason string         `json:"failure_reason,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Percent returns the completion percentage and whether it is defined.
// It is undefined when the total size is unknown.
func (r *DownloadRecord) Percent() (float64, bool) {
	if r.BytesTotal <= 0 {
		return 0, false
	}
	return float64(r.BytesReceived) / float64(r.BytesTotal) * 100, true
}
