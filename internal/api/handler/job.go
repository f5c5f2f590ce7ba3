package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/reelgrab/internal/domain"
	"github.com/iconidentify/reelgrab/internal/repository"
)

// JobHandler exposes acquisition job state over the API.
type JobHandler struct {
	jobRepo repository.JobRepository
	logger  *slog.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobRepo repository.JobRepository, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// JobResponse represents a job in API responses. Chat identifiers stay
// internal; this surface is for operators, not chat users.
type JobResponse struct {
	ID        string    `json:"id"`
	Shortcode string    `json:"shortcode"`
	RawURL    string    `json:"raw_url"`
	Status    string    `json:"status"`
	Strategy  string    `json:"strategy,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:        string(job.ID),
		Shortcode: job.Shortcode,
		RawURL:    job.RawURL,
		Status:    string(job.Status),
		Strategy:  job.Strategy,
		LastError: job.LastError,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

// JobListResponse contains a list of recent jobs.
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

// List handles GET /api/v1/jobs - most recent jobs, newest first.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	jobs, err := h.jobRepo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("job list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	resp := JobListResponse{Jobs: make([]JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, toJobResponse(job))
	}
	resp.Count = len(resp.Jobs)

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/jobs/{jobID}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobRepo.Get(r.Context(), domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("job lookup failed", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up job")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(job))
}
