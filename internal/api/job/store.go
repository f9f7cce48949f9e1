package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hindsightlab/hindsight/internal/core"
)

// Status represents job status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Job represents an async simulation job.
type Job struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Status    Status      `json:"status"`
	Result    any         `json:"result,omitempty"`
	Error     *core.Error `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store manages async jobs in memory. Finished jobs are kept until they
// expire or the store reaches capacity, oldest first.
type Store struct {
	jobs    map[string]*Job
	order   []string
	maxSize int
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewStore creates a new job store.
func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		jobs:    make(map[string]*Job),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Create creates a new pending job and returns a copy of it.
func (s *Store) Create(jobType string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneExpiredLocked()

	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(s.jobs) >= s.maxSize {
		s.evictLocked()
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	return *job
}

// Get retrieves a copy of a job by ID.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, core.ErrJobNotFound
	}
	return *job, nil
}

// Update modifies a job using an update function.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.ErrJobNotFound
	}

	fn(job)
	job.UpdatedAt = time.Now()
	return nil
}

// List returns copies of all live jobs.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Job, 0, len(s.jobs))
	for _, id := range s.order {
		result = append(result, *s.jobs[id])
	}
	return result
}

// ActiveCount returns the number of pending or running jobs.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, job := range s.jobs {
		if job.Status == StatusPending || job.Status == StatusRunning {
			n++
		}
	}
	return n
}

// evictLocked removes the oldest finished job. Pending and running jobs
// still have a client waiting on them, so they are skipped; only when every
// job is active does the oldest one go regardless.
func (s *Store) evictLocked() {
	if len(s.order) == 0 {
		return
	}

	victim := -1
	for i, id := range s.order {
		st := s.jobs[id].Status
		if st == StatusComplete || st == StatusFailed {
			victim = i
			break
		}
	}
	if victim < 0 {
		victim = 0
	}

	delete(s.jobs, s.order[victim])
	s.order = append(s.order[:victim], s.order[victim+1:]...)
}

// pruneExpiredLocked drops finished jobs older than the TTL. Pending and
// running jobs are never pruned.
func (s *Store) pruneExpiredLocked() {
	if s.ttl <= 0 {
		return
	}

	cutoff := time.Now().Add(-s.ttl)
	kept := s.order[:0]
	for _, id := range s.order {
		job := s.jobs[id]
		finished := job.Status == StatusComplete || job.Status == StatusFailed
		if finished && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
