package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DJIMIGA/latigue/internal/models"
)

// Memory is an in-process Store used by tests and by CLI runs without
// database credentials.
type Memory struct {
	mu           sync.RWMutex
	jobs         map[string]models.Job
	segments     map[string][]models.Segment // keyed by job id
	assets       map[string][]models.SegmentAsset
	publications map[string][]models.Publication
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:         make(map[string]models.Job),
		segments:     make(map[string][]models.Segment),
		assets:       make(map[string][]models.SegmentAsset),
		publications: make(map[string][]models.Publication),
	}
}

func (m *Memory) CreateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	m.jobs[job.ID] = *job
	return nil
}

func (m *Memory) GetJob(ctx context.Context, id string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (m *Memory) ListJobs(ctx context.Context) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]models.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (m *Memory) UpdateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	if !models.ValidJobTransition(current.Status, job.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, job.Status)
	}
	job.CreatedAt = current.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	m.jobs[job.ID] = *job
	return nil
}

func (m *Memory) SetJobStatus(ctx context.Context, id string, status models.JobStatus, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !models.ValidJobTransition(job.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, status)
	}
	job.Status = status
	if errorMessage != "" {
		job.ErrorMessage = &errorMessage
	}
	job.UpdatedAt = time.Now().UTC()
	m.jobs[id] = job
	return nil
}

func (m *Memory) CreateSegments(ctx context.Context, segments []models.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	byJob := make(map[string][]models.Segment)
	for i := range segments {
		segments[i].CreatedAt = now
		byJob[segments[i].JobID] = append(byJob[segments[i].JobID], segments[i])
	}
	// Replace, never append: order indices must stay unique per job.
	for jobID, list := range byJob {
		m.segments[jobID] = list
	}
	return nil
}

func (m *Memory) ListSegments(ctx context.Context, jobID string) ([]models.Segment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	segments := append([]models.Segment(nil), m.segments[jobID]...)
	sort.Slice(segments, func(i, j int) bool { return segments[i].Order < segments[j].Order })
	return segments, nil
}

func (m *Memory) UpdateSegment(ctx context.Context, segment *models.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.segments[segment.JobID]
	for i := range list {
		if list[i].ID == segment.ID {
			list[i] = *segment
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) UpsertAsset(ctx context.Context, asset *models.SegmentAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset.CreatedAt = time.Now().UTC()
	list := m.assets[asset.JobID]
	for i := range list {
		if list[i].SegmentIndex == asset.SegmentIndex {
			list[i] = *asset
			return nil
		}
	}
	m.assets[asset.JobID] = append(list, *asset)
	return nil
}

func (m *Memory) GetAsset(ctx context.Context, jobID string, segmentIndex int) (*models.SegmentAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, asset := range m.assets[jobID] {
		if asset.SegmentIndex == segmentIndex {
			found := asset
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListAssets(ctx context.Context, jobID string) ([]models.SegmentAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assets := append([]models.SegmentAsset(nil), m.assets[jobID]...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].SegmentIndex < assets[j].SegmentIndex })
	return assets, nil
}

func (m *Memory) CreatePublication(ctx context.Context, pub *models.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.publications[pub.JobID] {
		if existing.Platform == pub.Platform {
			return fmt.Errorf("publication for platform %s already exists on job %s", pub.Platform, pub.JobID)
		}
	}
	m.publications[pub.JobID] = append(m.publications[pub.JobID], *pub)
	return nil
}

func (m *Memory) ListPublications(ctx context.Context, jobID string) ([]models.Publication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Publication(nil), m.publications[jobID]...), nil
}

func (m *Memory) UpdatePublication(ctx context.Context, pub *models.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.publications[pub.JobID]
	for i := range list {
		if list[i].ID == pub.ID {
			list[i] = *pub
			return nil
		}
	}
	return ErrNotFound
}

var _ Store = (*Memory)(nil)
