package domain

import (
	"time"
)

// JobID is a unique identifier for an acquisition job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobStatus represents the current state of an acquisition job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents one queued reel acquisition, created when a webhook update
// carries a reel link and consumed by the worker pool.
type Job struct {
	ID        JobID
	ChatID    int64
	MessageID int64 // message that contained the link, replied to on delivery
	// StatusMessageID is the "downloading..." message the bot posts while
	// working; edited in place on failure, deleted on success.
	StatusMessageID int64
	RawURL          string
	Shortcode       string
	Status          JobStatus
	Strategy        string // winning strategy, set on completion
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewJob creates a new acquisition job for a reel link.
func NewJob(id JobID, chatID, messageID int64, rawURL, shortcode string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		ChatID:    chatID,
		MessageID: messageID,
		RawURL:    rawURL,
		Shortcode: shortcode,
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessing transitions the job to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted transitions the job to completed.
func (j *Job) MarkCompleted(strategy string) {
	j.Status = JobStatusCompleted
	j.Strategy = strategy
	j.LastError = ""
	j.UpdatedAt = time.Now()
}

// MarkFailed transitions the job to failed with its final error text.
func (j *Job) MarkFailed(errText string) {
	j.Status = JobStatusFailed
	j.LastError = errText
	j.UpdatedAt = time.Now()
}
