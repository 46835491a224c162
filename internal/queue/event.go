// Package queue defines message payloads exchanged over the message broker.
package queue

// PosterUploadedEvent is published when a poster has been ingested and its
// puzzle activated. It carries enough information for downstream consumers
// to log or trigger notifications without querying the primary database.
type PosterUploadedEvent struct {
	PosterID      int64  `json:"poster_id"`
	PuzzleID      int64  `json:"puzzle_id"`
	Filename      string `json:"filename"`
	MashupTitle   string `json:"mashup_title"`
	SizeBytes     int64  `json:"size_bytes"`
	Optimized     bool   `json:"optimized"`
	OptimizedSize int64  `json:"optimized_size,omitempty"`
	UploadedAt    string `json:"uploaded_at"`
}
