package utils

import (
	"sync"
	"time"

	"wardrobe-backend/dtos"

	"github.com/google/uuid"
)

// JobStore tracks bulk import jobs in memory.
type JobStore struct {
	jobs map[uuid.UUID]*dtos.BatchJob
	mu   sync.RWMutex
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[uuid.UUID]*dtos.BatchJob)}
}

// CleanupOldJobs removes completed/failed jobs older than 1 hour.
func (js *JobStore) CleanupOldJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, job := range js.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(js.jobs, id)
		} else if job.StartedAt.Before(cutoff) && (job.Status == dtos.JobStatusCompleted || job.Status == dtos.JobStatusFailed) {
			delete(js.jobs, id)
		}
	}
}

// CreateJob registers a new import job.
func (js *JobStore) CreateJob(total int) *dtos.BatchJob {
	js.CleanupOldJobs()

	js.mu.Lock()
	defer js.mu.Unlock()

	job := &dtos.BatchJob{
		ID:        uuid.New(),
		Status:    dtos.JobStatusPending,
		Total:     total,
		Errors:    []dtos.JobError{},
		StartedAt: time.Now(),
	}

	js.jobs[job.ID] = job
	return job
}

// GetJob returns a snapshot of the job so readers never race the worker.
func (js *JobStore) GetJob(id uuid.UUID) (dtos.BatchJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[id]
	if !exists {
		return dtos.BatchJob{}, false
	}
	snapshot := *job
	snapshot.Errors = append([]dtos.JobError(nil), job.Errors...)
	return snapshot, true
}

// UpdateJob applies updates under the store lock.
func (js *JobStore) UpdateJob(id uuid.UUID, update func(*dtos.BatchJob)) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		update(job)
		if job.Total > 0 {
			job.Progress = job.Processed * 100 / job.Total
		}
	}
}

// CompleteJob marks a job finished with the given status.
func (js *JobStore) CompleteJob(id uuid.UUID, status string) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		job.Status = status
		job.Progress = 100
		now := time.Now()
		job.CompletedAt = &now
	}
}
