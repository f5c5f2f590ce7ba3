package repository

import (
	"context"

	"github.com/iconidentify/reelgrab/internal/domain"
)

// JobRepository manages the acquisition job queue.
type JobRepository interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next queued job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Update modifies job state.
	Update(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// FindActive returns the queued or processing job for a shortcode in a
	// chat, if one exists. Used to suppress duplicate requests.
	FindActive(ctx context.Context, chatID int64, shortcode string) (*domain.Job, error)

	// List returns the most recent jobs, newest first.
	List(ctx context.Context, limit int) ([]*domain.Job, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains job queue statistics.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
