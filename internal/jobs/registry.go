package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samkofte/youtube-api/internal/models"

	"github.com/google/uuid"
)

// CreateParams are the immutable request parameters recorded on a new job.
type CreateParams struct {
	VideoURL   string
	Format     models.FormatKind
	Quality    string
	OutputPath string
}

// Registry is the single source of truth for job state. All reads return
// copies, all writes happen under one lock acquisition, so pollers never
// observe a half-applied progress event.
type Registry struct {
	mu      sync.RWMutex
	jobs    map[string]*models.Job
	cancels map[string]context.CancelFunc
}

func NewRegistry() *Registry {
	return &Registry{
		jobs:    make(map[string]*models.Job),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create inserts a fresh queued job and returns a copy of it. The record is
// visible to Get/List before Create returns.
func (r *Registry) Create(params CreateParams) models.Job {
	job := &models.Job{
		ID:         uuid.New().String(),
		Status:     models.StatusQueued,
		Speed:      "0 MB/s",
		Message:    fmt.Sprintf("%s download queued", params.Format),
		VideoURL:   params.VideoURL,
		Format:     params.Format,
		Quality:    params.Quality,
		OutputPath: params.OutputPath,
		StartTime:  time.Now(),
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	return *job
}

// Get returns a snapshot copy of one job.
func (r *Registry) Get(id string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// List returns snapshot copies of every job. Order is not significant.
func (r *Registry) List() []models.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	return out
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Update applies fn to the job under the write lock. It is a no-op when the
// handle is unknown.
func (r *Registry) Update(id string, fn func(*models.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// UpdateActive is Update restricted to non-terminal jobs. Progress hooks and
// worker transitions go through here so a cancelled or finished record is
// never mutated again.
func (r *Registry) UpdateActive(id string, fn func(*models.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return false
	}
	fn(job)
	return true
}

// Finalize moves the job into a terminal status, applying fn to fill in the
// final message and related fields. A job that is already terminal is left
// untouched: a worker finishing after the client cancelled loses the race.
func (r *Registry) Finalize(id string, status models.Status, fn func(*models.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return false
	}
	job.Status = status
	if fn != nil {
		fn(job)
	}
	delete(r.cancels, id)
	return true
}

// SetCancel registers the cancel func for a job's worker context.
func (r *Registry) SetCancel(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()
}

// MarkCancelled flags the job as cancelled and fires its worker's cancel
// func when one is registered. Cancellation is cooperative: an engine call
// that ignores its context keeps running, but its later writes are dropped
// because the record is already terminal.
func (r *Registry) MarkCancelled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	if !job.Status.IsTerminal() {
		job.Status = models.StatusCancelled
		job.Message = "Download cancelled"
	}
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	return true
}

// Delete removes one job record, cancelling its worker if still running.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return false
	}
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	delete(r.jobs, id)
	return true
}

// ClearTerminal removes every completed, errored or cancelled job and
// returns how many were removed. Active jobs are retained untouched.
func (r *Registry) ClearTerminal() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, job := range r.jobs {
		if job.Status.IsTerminal() {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// ClearAll removes every job unconditionally, cancelling running workers.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.jobs)
	for id, cancel := range r.cancels {
		cancel()
		delete(r.cancels, id)
	}
	r.jobs = make(map[string]*models.Job)
	return removed
}
